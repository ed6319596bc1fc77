/**
 * @description
 * Transfer orchestration, covering local, inter-branch (third-party) and
 * mobile-money transfers. A transfer always produces two ledger legs — the
 * sender's debit and the receiver's credit — sharing one reference and each
 * carrying the counterparty's account id. The fee is borne entirely by the
 * sender leg; the principal deltas of the two legs net to zero. Same-account
 * transfers are rejected before anything is loaded.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/corebank/settlement-service/internal/domain"
	"github.com/corebank/settlement-service/internal/store"
)

// Transfer settles a transfer between two customer accounts.
func (e *Engine) Transfer(ctx context.Context, deps TransferDeps, tellerID uuid.UUID, req domain.TransferRequest) (*domain.SettlementResult, error) {
	if req.Amount <= 0 {
		return nil, domain.NewValidationFailed("transfer amount must be positive, got %d", req.Amount)
	}
	if strings.TrimSpace(req.SenderAccountNumber) == strings.TrimSpace(req.ReceiverAccountNumber) {
		return nil, domain.NewValidationFailed(
			"sender and receiver account %s must differ", req.SenderAccountNumber)
	}

	sender, err := deps.FindAccountByNumber(ctx, req.SenderAccountNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to find sender account %s: %w", req.SenderAccountNumber, err)
	}
	if err := requireActive(sender); err != nil {
		return nil, err
	}

	receiver, err := deps.FindAccountByNumber(ctx, req.ReceiverAccountNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to find receiver account %s: %w", req.ReceiverAccountNumber, err)
	}
	receiverActivating := receiver.Status == domain.AccountPending
	if !receiverActivating {
		if err := requireActive(receiver); err != nil {
			return nil, err
		}
	}

	till, err := deps.FindTillAccountByTeller(ctx, tellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to find till account for teller %s: %w", tellerID, err)
	}

	product, err := deps.FindProductByID(ctx, sender.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to find product for account %s: %w", req.SenderAccountNumber, err)
	}

	interBranch := sender.BranchID != receiver.BranchID
	kind := req.Kind
	if kind == "" {
		if interBranch {
			kind = domain.OpTransferInterBranch
		} else {
			kind = domain.OpTransferLocal
		}
	}

	if err := ValidateLimits(LimitInput{
		Amount:      req.Amount,
		Kind:        kind,
		Product:     product,
		InterBranch: interBranch,
	}); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	holiday, err := deps.IsHoliday(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve holiday calendar: %w", err)
	}

	schedule, err := deps.FindFeeSchedule(ctx, product.ID, kind, holiday, sender.LegalForm)
	if err != nil {
		if errors.Is(err, store.ErrFeeScheduleNotFound) {
			return nil, domain.NewConfigurationMissing(
				"no fee schedule for product %q, operation %s, holiday=%t, legal form %s",
				product.Name, kind, holiday, sender.LegalForm)
		}
		return nil, fmt.Errorf("failed to resolve fee schedule: %w", err)
	}

	waiver, err := deps.FindActiveWaiver(ctx, sender.CustomerID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to look up charge waiver: %w", err)
	}

	fees, err := ComputeFees(FeeInput{
		Amount:       req.Amount,
		Schedule:     schedule,
		ManualCharge: req.ManualCharge,
		IsMinor:      sender.IsMinor,
		Waiver:       waiver,
	})
	if err != nil {
		return nil, err
	}

	if err := ValidateDebitFloor(sender, product, req.Amount, fees.Total()); err != nil {
		return nil, err
	}
	if err := e.guard.Verify(sender); err != nil {
		return nil, err
	}

	commission, err := SplitCommission(fees.Total(), product.Commission, interBranch)
	if err != nil {
		return nil, err
	}
	netDebit := req.Amount + fees.Total()
	reference := NewReference()

	senderLeg := BuildTransaction(LegSpec{
		Account:      sender,
		Counterparty: receiver,
		Kind:         kind,
		Direction:    domain.Debit,
		Amount:       req.Amount,
		NetDelta:     -netDebit,
		Fees:         fees,
		Commission:   commission,
		Reference:    reference,
		TellerID:     tellerID,
		Label:        counterpartyLabel(receiver),
	}, now)
	receiverLeg := BuildTransaction(LegSpec{
		Account:      receiver,
		Counterparty: sender,
		Kind:         kind,
		Direction:    domain.Credit,
		Amount:       req.Amount,
		NetDelta:     req.Amount,
		Reference:    reference,
		TellerID:     tellerID,
		Label:        counterpartyLabel(sender),
	}, now)

	if err := e.mutator.Debit(sender, netDebit); err != nil {
		return nil, err
	}
	if receiverActivating {
		receiverLeg.PreviousBalance = 0
		receiverLeg.Balance = req.Amount
		e.mutator.ActivatePending(receiver, req.Amount, e.activationInfo(ctx, receiver))
	} else {
		e.mutator.Credit(receiver, req.Amount)
	}

	// A book transfer moves no cash; only the charge touches the till.
	var ops []*domain.TellerOperation
	accounts := []*domain.Account{sender, receiver}
	if fees.Total() > 0 {
		ops, err = e.teller.Apply(till, senderLeg.ID, []TillMove{{
			Direction:   domain.Credit,
			Amount:      fees.Total(),
			Description: feeDescription(kind, sender.AccountNumber),
		}}, now)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, till)
	}

	commit := &store.SettlementCommit{
		Accounts:         accounts,
		Transactions:     []*domain.Transaction{senderLeg, receiverLeg},
		TellerOperations: ops,
	}
	if waiver != nil {
		id := waiver.ID
		commit.ConsumedWaiverID = &id
	}
	if err := deps.CommitSettlement(ctx, commit); err != nil {
		return nil, fmt.Errorf("failed to commit transfer settlement: %w", err)
	}

	return &domain.SettlementResult{
		Reference:     reference,
		TransactionID: senderLeg.ID,
		Kind:          kind,
		SignedAmount:  senderLeg.SignedAmount,
		Balance:       sender.Balance,
		Fees:          fees,
		TotalCharges:  fees.Total(),
		Commission:    commission,
		Narrative:     senderLeg.Narrative,
	}, nil
}

// counterpartyLabel prefers the display name, falling back to the account
// number.
func counterpartyLabel(account *domain.Account) string {
	if account.DisplayName != "" {
		return account.DisplayName
	}
	return account.AccountNumber
}
