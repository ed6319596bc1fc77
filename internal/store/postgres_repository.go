/**
 * @description
 * PostgreSQL implementation of the `Repository` interface. Lookup queries
 * map pgx.ErrNoRows to the package sentinels; CommitSettlement wraps every
 * side effect of one settlement in a single pgx transaction with a
 * row-version guard on each account update.
 *
 * @dependencies
 * - context, time, errors: Standard Go libraries.
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - github.com/shopspring/decimal: numeric columns are selected as text and
 *   parsed to avoid float rounding on percentages.
 * - internal/domain: Contains the domain models used for data transfer.
 */

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/corebank/settlement-service/internal/domain"
)

// PostgresRepository is a concrete implementation of the Repository interface for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const accountColumns = `id, account_number, customer_id, branch_id, branch_name, product_id,
	display_name, legal_form, status, balance, previous_balance, blocked_amount, balance_code,
	is_minor, version, created_at, updated_at`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	err := row.Scan(
		&a.ID, &a.AccountNumber, &a.CustomerID, &a.BranchID, &a.BranchName, &a.ProductID,
		&a.DisplayName, &a.LegalForm, &a.Status, &a.Balance, &a.PreviousBalance, &a.BlockedAmount, &a.BalanceCode,
		&a.IsMinor, &a.Version, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &a, nil
}

// FindAccountByNumber retrieves a customer account by its account number.
func (r *PostgresRepository) FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE account_number = btrim($1)`, accountColumns)
	return scanAccount(r.db.QueryRow(ctx, query, accountNumber))
}

// FindTillAccountByTeller retrieves the cash-custody till account of a teller.
func (r *PostgresRepository) FindTillAccountByTeller(ctx context.Context, tellerID uuid.UUID) (*domain.Account, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM accounts
		WHERE id = (SELECT till_account_id FROM tellers WHERE id = $1)`, accountColumns)
	account, err := scanAccount(r.db.QueryRow(ctx, query, tellerID))
	if err == ErrAccountNotFound {
		return nil, ErrTillNotFound
	}
	return account, err
}

// FindProductByID retrieves a product configuration with its limit table.
func (r *PostgresRepository) FindProductByID(ctx context.Context, productID uuid.UUID) (*domain.Product, error) {
	var p domain.Product
	var destPct, hoPct, netPct string
	query := `
		SELECT id, name, allow_direct_deposit, allow_inter_branch, require_withdrawal_notice,
			notice_threshold, minimum_balance_physical, minimum_balance_moral,
			destination_branch_percent::text, head_office_percent::text, network_percent::text
		FROM products WHERE id = $1`
	err := r.db.QueryRow(ctx, query, productID).Scan(
		&p.ID, &p.Name, &p.AllowDirectDeposit, &p.AllowInterBranch, &p.RequireWithdrawalNotice,
		&p.NoticeThreshold, &p.MinimumBalancePhysical, &p.MinimumBalanceMoral,
		&destPct, &hoPct, &netPct,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if p.Commission.DestinationBranchPercent, err = decimal.NewFromString(destPct); err != nil {
		return nil, fmt.Errorf("invalid destination branch percent for product %s: %w", productID, err)
	}
	if p.Commission.HeadOfficePercent, err = decimal.NewFromString(hoPct); err != nil {
		return nil, fmt.Errorf("invalid head office percent for product %s: %w", productID, err)
	}
	if p.Commission.NetworkPercent, err = decimal.NewFromString(netPct); err != nil {
		return nil, fmt.Errorf("invalid network percent for product %s: %w", productID, err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT kind, min_amount, max_amount FROM product_operation_limits WHERE product_id = $1`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var limit domain.OperationLimit
		if err := rows.Scan(&limit.Kind, &limit.MinAmount, &limit.MaxAmount); err != nil {
			return nil, err
		}
		p.Limits = append(p.Limits, limit)
	}
	return &p, rows.Err()
}

// FindFeeSchedule resolves the schedule for one (product, operation, holiday, legal form) tuple.
func (r *PostgresRepository) FindFeeSchedule(ctx context.Context, productID uuid.UUID, kind domain.OperationKind, holiday bool, legalForm domain.LegalForm) (*domain.FeeSchedule, error) {
	var s domain.FeeSchedule
	var rate, penaltyPct string
	var bandsJSON []byte
	query := `
		SELECT id, product_id, kind, holiday, legal_form, mode,
			rate::text, bands, form_charge, notification_penalty_percent::text
		FROM fee_schedules
		WHERE product_id = $1 AND kind = $2 AND holiday = $3 AND legal_form = $4`
	err := r.db.QueryRow(ctx, query, productID, kind, holiday, legalForm).Scan(
		&s.ID, &s.ProductID, &s.Kind, &s.Holiday, &s.LegalForm, &s.Mode,
		&rate, &bandsJSON, &s.FormCharge, &penaltyPct,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrFeeScheduleNotFound
		}
		return nil, err
	}
	if s.Rate, err = decimal.NewFromString(rate); err != nil {
		return nil, fmt.Errorf("invalid rate for fee schedule %s: %w", s.ID, err)
	}
	if s.NotificationPenaltyPercent, err = decimal.NewFromString(penaltyPct); err != nil {
		return nil, fmt.Errorf("invalid notification penalty percent for fee schedule %s: %w", s.ID, err)
	}
	if len(bandsJSON) > 0 {
		if err := json.Unmarshal(bandsJSON, &s.Bands); err != nil {
			return nil, fmt.Errorf("invalid band table for fee schedule %s: %w", s.ID, err)
		}
	}
	return &s, nil
}

// IsHoliday reports whether the given date appears in the holiday calendar.
func (r *PostgresRepository) IsHoliday(ctx context.Context, date time.Time) (bool, error) {
	var holiday bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM holiday_calendar WHERE day = $1::date)`, date).Scan(&holiday)
	return holiday, err
}

// FindActiveWaiver returns the customer's pending, time-valid charge waiver, or nil.
func (r *PostgresRepository) FindActiveWaiver(ctx context.Context, customerID uuid.UUID, at time.Time) (*domain.ChargeWaiver, error) {
	var w domain.ChargeWaiver
	query := `
		SELECT id, customer_id, amount, status, valid_from, valid_until
		FROM charge_waivers
		WHERE customer_id = $1 AND status = 'pending' AND valid_from <= $2 AND valid_until >= $2
		ORDER BY valid_until ASC
		LIMIT 1`
	err := r.db.QueryRow(ctx, query, customerID, at).Scan(
		&w.ID, &w.CustomerID, &w.Amount, &w.Status, &w.ValidFrom, &w.ValidUntil,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &w, nil
}

// FindPendingNotification returns the pending withdrawal notice covering the
// amount, or nil when none was registered.
func (r *PostgresRepository) FindPendingNotification(ctx context.Context, accountID uuid.UUID, amount int64) (*domain.WithdrawalNotification, error) {
	var n domain.WithdrawalNotification
	query := `
		SELECT id, account_id, amount, status, notified_at
		FROM withdrawal_notifications
		WHERE account_id = $1 AND status = 'pending' AND amount >= $2
		ORDER BY notified_at ASC
		LIMIT 1`
	err := r.db.QueryRow(ctx, query, accountID, amount).Scan(
		&n.ID, &n.AccountID, &n.Amount, &n.Status, &n.NotifiedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

// FindTransactionsByAccountNumber lists ledger rows for an account, newest first.
func (r *PostgresRepository) FindTransactionsByAccountNumber(ctx context.Context, accountNumber string, limit, offset int) ([]domain.Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := `
		SELECT id, reference, account_id, account_number, counterparty_account_id, branch_id, teller_id,
			kind, direction, signed_amount, previous_balance, balance,
			service_charge, form_charge, notification_penalty, total_charges,
			commission_source, commission_destination, commission_head_office, commission_network,
			narrative, created_at
		FROM transactions
		WHERE account_number = btrim($1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, accountNumber, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(
			&t.ID, &t.Reference, &t.AccountID, &t.AccountNumber, &t.CounterpartyAccountID, &t.BranchID, &t.TellerID,
			&t.Kind, &t.Direction, &t.SignedAmount, &t.PreviousBalance, &t.Balance,
			&t.Fees.ServiceCharge, &t.Fees.FormCharge, &t.Fees.NotificationPenalty, &t.TotalCharges,
			&t.Commission.SourceBranch, &t.Commission.DestinationBranch, &t.Commission.HeadOffice, &t.Commission.Network,
			&t.Narrative, &t.CreatedAt,
		); err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// CommitSettlement persists all pending changes of one settlement in one
// database transaction. Each account update asserts the version the engine
// read; a mismatch rolls back everything with ErrStaleAccount.
func (r *PostgresRepository) CommitSettlement(ctx context.Context, commit *SettlementCommit) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to begin settlement transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, account := range commit.Accounts {
		tag, err := tx.Exec(ctx, `
			UPDATE accounts
			SET balance = $1, previous_balance = $2, blocked_amount = $3, balance_code = $4,
				status = $5, display_name = $6, branch_name = $7, version = version + 1, updated_at = NOW()
			WHERE id = $8 AND version = $9`,
			account.Balance, account.PreviousBalance, account.BlockedAmount, account.BalanceCode,
			account.Status, account.DisplayName, account.BranchName, account.ID, account.Version,
		)
		if err != nil {
			return fmt.Errorf("failed to update account %s: %w", account.AccountNumber, err)
		}
		if tag.RowsAffected() == 0 {
			return ErrStaleAccount
		}
	}

	for _, t := range commit.Transactions {
		_, err := tx.Exec(ctx, `
			INSERT INTO transactions (
				id, reference, account_id, account_number, counterparty_account_id, branch_id, teller_id,
				kind, direction, signed_amount, previous_balance, balance,
				service_charge, form_charge, notification_penalty, total_charges,
				commission_source, commission_destination, commission_head_office, commission_network,
				narrative, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)`,
			t.ID, t.Reference, t.AccountID, t.AccountNumber, t.CounterpartyAccountID, t.BranchID, t.TellerID,
			t.Kind, t.Direction, t.SignedAmount, t.PreviousBalance, t.Balance,
			t.Fees.ServiceCharge, t.Fees.FormCharge, t.Fees.NotificationPenalty, t.TotalCharges,
			t.Commission.SourceBranch, t.Commission.DestinationBranch, t.Commission.HeadOffice, t.Commission.Network,
			t.Narrative, t.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", t.ID, err)
		}
	}

	for _, op := range commit.TellerOperations {
		_, err := tx.Exec(ctx, `
			INSERT INTO teller_operations (
				id, transaction_id, till_account_id, direction, amount,
				previous_balance, balance, description, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			op.ID, op.TransactionID, op.TillAccountID, op.Direction, op.Amount,
			op.PreviousBalance, op.Balance, op.Description, op.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert teller operation %s: %w", op.ID, err)
		}
	}

	if commit.ConsumedWaiverID != nil {
		tag, err := tx.Exec(ctx,
			`UPDATE charge_waivers SET status = 'used', updated_at = NOW() WHERE id = $1 AND status = 'pending'`,
			*commit.ConsumedWaiverID)
		if err != nil {
			return fmt.Errorf("failed to consume charge waiver %s: %w", *commit.ConsumedWaiverID, err)
		}
		if tag.RowsAffected() == 0 {
			// Another settlement consumed it between read and commit.
			return ErrStaleAccount
		}
	}

	if commit.ConsumedNotificationID != nil {
		tag, err := tx.Exec(ctx,
			`UPDATE withdrawal_notifications SET status = 'used', updated_at = NOW() WHERE id = $1 AND status = 'pending'`,
			*commit.ConsumedNotificationID)
		if err != nil {
			return fmt.Errorf("failed to consume withdrawal notification %s: %w", *commit.ConsumedNotificationID, err)
		}
		if tag.RowsAffected() == 0 {
			return ErrStaleAccount
		}
	}

	return tx.Commit(ctx)
}
