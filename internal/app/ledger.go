/**
 * @description
 * Transaction row construction. The factory snapshots the account balance
 * before and after the mutation, stamps the fee and commission breakdowns,
 * and renders the receipt narrative from the per-operation template. Rows
 * are immutable once built; transfer legs share one reference but carry
 * their own IDs and each other's account id.
 */

package app

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/corebank/settlement-service/internal/domain"
)

// narrativeTemplates maps (operation kind, direction) to the receipt title
// template. The single %s placeholder is the counterparty or account label.
var narrativeTemplates = map[domain.OperationKind]map[domain.Direction]string{
	domain.OpDeposit: {
		domain.Credit: "Cash deposit to account %s",
	},
	domain.OpWithdrawal: {
		domain.Debit: "Cash withdrawal from account %s",
	},
	domain.OpTransferLocal: {
		domain.Debit:  "Transfer to %s",
		domain.Credit: "Transfer from %s",
	},
	domain.OpTransferInterBranch: {
		domain.Debit:  "Inter-branch transfer to %s",
		domain.Credit: "Inter-branch transfer from %s",
	},
	domain.OpMobileMoney: {
		domain.Debit:  "Mobile money transfer to %s",
		domain.Credit: "Mobile money transfer from %s",
	},
	domain.OpLoanRepayment: {
		domain.Debit: "Loan repayment from account %s",
	},
	domain.OpRemittanceIn: {
		domain.Credit: "Remittance cash-in for %s",
	},
	domain.OpRemittanceOut: {
		domain.Debit: "Remittance cash-out for %s",
	},
}

// Narrative renders the receipt title for an operation leg.
func Narrative(kind domain.OperationKind, direction domain.Direction, label string) string {
	if byDir, ok := narrativeTemplates[kind]; ok {
		if tmpl, ok := byDir[direction]; ok {
			return fmt.Sprintf(tmpl, label)
		}
	}
	return fmt.Sprintf("%s %s %s", kind, direction, label)
}

// LegSpec describes one customer-facing ledger leg to build.
type LegSpec struct {
	Account      *domain.Account
	Counterparty *domain.Account // nil except for transfers
	Kind         domain.OperationKind
	Direction    domain.Direction
	Amount       int64 // principal, always positive
	// NetDelta is the signed change applied to the account balance,
	// including fees per the operation's accounting convention.
	NetDelta   int64
	Fees       domain.FeeBreakdown
	Commission domain.CommissionSplit
	Reference  string
	TellerID   uuid.UUID
	Label      string // narrative placeholder; falls back to the account number
}

// BuildTransaction creates the immutable ledger row for one leg. The
// account must not have been mutated yet: the row captures the pre-mutation
// balance and the projected post-mutation balance.
func BuildTransaction(spec LegSpec, now time.Time) *domain.Transaction {
	label := spec.Label
	if label == "" {
		label = spec.Account.AccountNumber
	}

	signed := spec.Amount
	if spec.Direction == domain.Debit {
		signed = -spec.Amount
	}

	tx := &domain.Transaction{
		ID:              uuid.New(),
		Reference:       spec.Reference,
		AccountID:       spec.Account.ID,
		AccountNumber:   spec.Account.AccountNumber,
		BranchID:        spec.Account.BranchID,
		TellerID:        spec.TellerID,
		Kind:            spec.Kind,
		Direction:       spec.Direction,
		SignedAmount:    signed,
		PreviousBalance: spec.Account.Balance,
		Balance:         spec.Account.Balance + spec.NetDelta,
		Fees:            spec.Fees,
		TotalCharges:    spec.Fees.Total(),
		Commission:      spec.Commission,
		Narrative:       Narrative(spec.Kind, spec.Direction, label),
		CreatedAt:       now,
	}
	if spec.Counterparty != nil {
		id := spec.Counterparty.ID
		tx.CounterpartyAccountID = &id
	}
	return tx
}

// NewReference produces the external reference shared by all legs of one
// settlement.
func NewReference() string {
	return uuid.NewString()
}
