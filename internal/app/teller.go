/**
 * @description
 * Till-side ledger. Every settlement mirrors its cash effect onto the
 * teller's till account: deposits credit the till, withdrawals debit it,
 * transfer fees credit it. When a charge is not inclusive of the principal
 * it is collected in cash and produces its own row with its own description
 * and balance snapshot. Till mutations reuse the account mutator so the
 * till balance carries the same integrity protection as customer accounts.
 */

package app

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/corebank/settlement-service/internal/domain"
)

// TellerLedger emits till operation rows while mutating the till account.
type TellerLedger struct {
	mutator *AccountMutator
}

// NewTellerLedger creates a ledger backed by the given mutator.
func NewTellerLedger(mutator *AccountMutator) *TellerLedger {
	return &TellerLedger{mutator: mutator}
}

// TillMove describes one cash movement to mirror on the till.
type TillMove struct {
	Direction   domain.Direction
	Amount      int64
	Description string
}

// Apply mutates the till account for each move and returns the mirrored
// rows, each carrying its own pre/post balance snapshot. Till debits verify
// the till's integrity code like any other debit.
func (l *TellerLedger) Apply(till *domain.Account, txID uuid.UUID, moves []TillMove, now time.Time) ([]*domain.TellerOperation, error) {
	ops := make([]*domain.TellerOperation, 0, len(moves))
	for _, move := range moves {
		if move.Amount == 0 {
			continue
		}
		previous := till.Balance
		switch move.Direction {
		case domain.Credit:
			l.mutator.Credit(till, move.Amount)
		case domain.Debit:
			if err := l.mutator.Debit(till, move.Amount); err != nil {
				return nil, err
			}
		}
		ops = append(ops, &domain.TellerOperation{
			ID:              uuid.New(),
			TransactionID:   txID,
			TillAccountID:   till.ID,
			Direction:       move.Direction,
			Amount:          move.Amount,
			PreviousBalance: previous,
			Balance:         till.Balance,
			Description:     move.Description,
			CreatedAt:       now,
		})
	}
	return ops, nil
}

// CheckTillSufficiency verifies the till holds enough cash for an outgoing
// movement before any mutation happens.
func CheckTillSufficiency(till *domain.Account, amount int64) error {
	if till.Balance < amount {
		return domain.NewValidationFailed(
			"teller till %s holds %d, insufficient for cash-out of %d",
			till.AccountNumber, till.Balance, amount)
	}
	return nil
}

// feeDescription renders the description for a standalone fee row.
func feeDescription(kind domain.OperationKind, accountNumber string) string {
	return fmt.Sprintf("Charges on %s for account %s", kind, accountNumber)
}

// principalDescription renders the description for a principal cash row.
func principalDescription(kind domain.OperationKind, accountNumber string) string {
	return fmt.Sprintf("%s cash for account %s", kind, accountNumber)
}
