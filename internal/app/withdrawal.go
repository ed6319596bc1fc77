/**
 * @description
 * Withdrawal orchestration. Sequence: validate limits → resolve withdrawal
 * notice and waiver → compute charge → check the balance floor and the
 * till's cash sufficiency → verify balance integrity → build the ledger row
 * → mutate customer account and till → commit atomically. The engine never
 * clamps a withdrawal; a floor breach rejects the whole operation.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/corebank/settlement-service/internal/domain"
	"github.com/corebank/settlement-service/internal/store"
)

// Withdraw settles a cash withdrawal from a customer account.
func (e *Engine) Withdraw(ctx context.Context, deps WithdrawalDeps, tellerID uuid.UUID, req domain.WithdrawalRequest) (*domain.SettlementResult, error) {
	if req.Amount <= 0 {
		return nil, domain.NewValidationFailed("withdrawal amount must be positive, got %d", req.Amount)
	}
	kind := req.Kind
	if kind == "" {
		kind = domain.OpWithdrawal
	}

	account, err := deps.FindAccountByNumber(ctx, req.AccountNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", req.AccountNumber, err)
	}
	if err := requireActive(account); err != nil {
		return nil, err
	}

	till, err := deps.FindTillAccountByTeller(ctx, tellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to find till account for teller %s: %w", tellerID, err)
	}

	product, err := deps.FindProductByID(ctx, account.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to find product for account %s: %w", req.AccountNumber, err)
	}

	if err := ValidateLimits(LimitInput{
		Amount:  req.Amount,
		Kind:    kind,
		Product: product,
	}); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	holiday, err := deps.IsHoliday(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve holiday calendar: %w", err)
	}

	schedule, err := deps.FindFeeSchedule(ctx, product.ID, kind, holiday, account.LegalForm)
	if err != nil {
		if errors.Is(err, store.ErrFeeScheduleNotFound) {
			return nil, domain.NewConfigurationMissing(
				"no fee schedule for product %q, operation %s, holiday=%t, legal form %s",
				product.Name, kind, holiday, account.LegalForm)
		}
		return nil, fmt.Errorf("failed to resolve fee schedule: %w", err)
	}

	noticeRequired := product.RequireWithdrawalNotice && req.Amount >= product.NoticeThreshold
	var notice *domain.WithdrawalNotification
	if noticeRequired {
		notice, err = deps.FindPendingNotification(ctx, account.ID, req.Amount)
		if err != nil {
			return nil, fmt.Errorf("failed to look up withdrawal notification: %w", err)
		}
	}

	waiver, err := deps.FindActiveWaiver(ctx, account.CustomerID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to look up charge waiver: %w", err)
	}

	fees, err := ComputeFees(FeeInput{
		Amount:         req.Amount,
		Schedule:       schedule,
		ManualCharge:   req.ManualCharge,
		IsMinor:        account.IsMinor,
		Waiver:         waiver,
		NoticeRequired: noticeRequired,
		Notice:         notice,
	})
	if err != nil {
		return nil, err
	}

	if err := ValidateDebitFloor(account, product, req.Amount, fees.Total()); err != nil {
		return nil, err
	}
	if err := CheckTillSufficiency(till, req.Amount); err != nil {
		return nil, err
	}
	if err := e.guard.Verify(account); err != nil {
		return nil, err
	}

	commission, err := SplitCommission(fees.Total(), product.Commission, false)
	if err != nil {
		return nil, err
	}
	netDebit := req.Amount + fees.Total()

	tx := BuildTransaction(LegSpec{
		Account:    account,
		Kind:       kind,
		Direction:  domain.Debit,
		Amount:     req.Amount,
		NetDelta:   -netDebit,
		Fees:       fees,
		Commission: commission,
		Reference:  NewReference(),
		TellerID:   tellerID,
	}, now)

	if err := e.mutator.Debit(account, netDebit); err != nil {
		return nil, err
	}

	moves := []TillMove{{
		Direction:   domain.Debit,
		Amount:      req.Amount,
		Description: principalDescription(kind, account.AccountNumber),
	}}
	if !req.ChargeInclusive && fees.Total() > 0 {
		// Charge collected in cash at the counter gets its own row.
		moves = append(moves, TillMove{
			Direction:   domain.Credit,
			Amount:      fees.Total(),
			Description: feeDescription(kind, account.AccountNumber),
		})
	}
	ops, err := e.teller.Apply(till, tx.ID, moves, now)
	if err != nil {
		return nil, err
	}

	commit := &store.SettlementCommit{
		Accounts:         []*domain.Account{account, till},
		Transactions:     []*domain.Transaction{tx},
		TellerOperations: ops,
	}
	if waiver != nil {
		id := waiver.ID
		commit.ConsumedWaiverID = &id
	}
	if noticeRequired && notice != nil {
		id := notice.ID
		commit.ConsumedNotificationID = &id
	}
	if err := deps.CommitSettlement(ctx, commit); err != nil {
		return nil, fmt.Errorf("failed to commit withdrawal settlement: %w", err)
	}

	return &domain.SettlementResult{
		Reference:     tx.Reference,
		TransactionID: tx.ID,
		Kind:          kind,
		SignedAmount:  tx.SignedAmount,
		Balance:       account.Balance,
		Fees:          fees,
		TotalCharges:  fees.Total(),
		Commission:    commission,
		Narrative:     tx.Narrative,
	}, nil
}
