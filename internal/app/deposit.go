/**
 * @description
 * Deposit orchestration. Sequence: validate limits → compute charge →
 * verify/mutate the customer account (activating a pending account on its
 * funding transaction) → mutate the till and emit its rows → commit
 * everything atomically. Any failure before the mutation step leaves zero
 * persisted side effects; the commit itself is all-or-nothing.
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

// Deposit settles a cash deposit into a customer account.
func (e *Engine) Deposit(ctx context.Context, deps DepositDeps, tellerID uuid.UUID, req domain.DepositRequest) (*domain.SettlementResult, error) {
	if req.Amount <= 0 {
		return nil, domain.NewValidationFailed("deposit amount must be positive, got %d", req.Amount)
	}
	kind := req.Kind
	if kind == "" {
		kind = domain.OpDeposit
	}

	account, err := deps.FindAccountByNumber(ctx, req.AccountNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", req.AccountNumber, err)
	}
	activating := account.Status == domain.AccountPending
	if !activating {
		if err := requireActive(account); err != nil {
			return nil, err
		}
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
		Amount:        req.Amount,
		Kind:          kind,
		Product:       product,
		DirectDeposit: req.DirectDeposit,
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

	waiver, err := deps.FindActiveWaiver(ctx, account.CustomerID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to look up charge waiver: %w", err)
	}

	fees, err := ComputeFees(FeeInput{
		Amount:       req.Amount,
		Schedule:     schedule,
		ManualCharge: req.ManualCharge,
		IsMinor:      account.IsMinor,
		Waiver:       waiver,
	})
	if err != nil {
		return nil, err
	}

	netCredit := req.Amount
	if req.ChargeInclusive {
		netCredit = req.Amount - fees.Total()
		if netCredit <= 0 {
			return nil, domain.NewValidationFailed(
				"charges %d consume the entire deposit of %d", fees.Total(), req.Amount)
		}
	}

	commission, err := SplitCommission(fees.Total(), product.Commission, false)
	if err != nil {
		return nil, err
	}

	tx := BuildTransaction(LegSpec{
		Account:    account,
		Kind:       kind,
		Direction:  domain.Credit,
		Amount:     req.Amount,
		NetDelta:   netCredit,
		Fees:       fees,
		Commission: commission,
		Reference:  NewReference(),
		TellerID:   tellerID,
	}, now)

	if activating {
		// The funding transaction sets the balance directly; the row must
		// reflect the forced zero previous balance.
		tx.PreviousBalance = 0
		tx.Balance = netCredit
		e.mutator.ActivatePending(account, netCredit, e.activationInfo(ctx, account))
	} else {
		e.mutator.Credit(account, netCredit)
	}

	moves := []TillMove{{
		Direction:   domain.Credit,
		Amount:      req.Amount,
		Description: principalDescription(kind, account.AccountNumber),
	}}
	if !req.ChargeInclusive && fees.Total() > 0 {
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
	if err := deps.CommitSettlement(ctx, commit); err != nil {
		return nil, fmt.Errorf("failed to commit deposit settlement: %w", err)
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
