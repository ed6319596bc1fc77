/**
 * @description
 * Read-only product configuration: per-operation limit tables, eligibility
 * flags, commission share percentages and minimum-balance floors. These
 * structs are loaded per settlement and are never attached to the mutable
 * account aggregate.
 */

package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OperationKind identifies the settlement operation being performed. Limit
// tables, fee schedules and narrative templates are keyed by it.
type OperationKind string

const (
	OpDeposit             OperationKind = "deposit"
	OpWithdrawal          OperationKind = "withdrawal"
	OpTransferLocal       OperationKind = "transfer_local"
	OpTransferInterBranch OperationKind = "transfer_interbranch"
	OpMobileMoney         OperationKind = "mobile_money"
	OpLoanRepayment       OperationKind = "loan_repayment"
	OpRemittanceIn        OperationKind = "remittance_in"
	OpRemittanceOut       OperationKind = "remittance_out"
)

// Direction is the sign of a ledger movement.
type Direction string

const (
	Credit Direction = "credit"
	Debit  Direction = "debit"
)

// OperationLimit is one row of a product's per-operation limit table.
type OperationLimit struct {
	Kind      OperationKind `json:"kind"`
	MinAmount int64         `json:"min_amount"` // in minor units
	MaxAmount int64         `json:"max_amount"` // in minor units
}

// CommissionShares holds the configured split percentages applied to the
// total charge of an inter-branch operation. Percentages are expressed as
// 0-100 decimals; they do not have to sum to 100 — the residual always lands
// on the originating branch.
type CommissionShares struct {
	DestinationBranchPercent decimal.Decimal `json:"destination_branch_percent"`
	HeadOfficePercent        decimal.Decimal `json:"head_office_percent"`
	NetworkPercent           decimal.Decimal `json:"network_percent"`
}

// Product is the read-only configuration resolved for the account under
// settlement.
type Product struct {
	ID                      uuid.UUID        `json:"id"`
	Name                    string           `json:"name"`
	AllowDirectDeposit      bool             `json:"allow_direct_deposit"`
	AllowInterBranch        bool             `json:"allow_inter_branch"`
	RequireWithdrawalNotice bool             `json:"require_withdrawal_notice"`
	NoticeThreshold         int64            `json:"notice_threshold"` // amounts >= threshold need prior notice
	MinimumBalancePhysical  int64            `json:"minimum_balance_physical"`
	MinimumBalanceMoral     int64            `json:"minimum_balance_moral"`
	Commission              CommissionShares `json:"commission"`
	Limits                  []OperationLimit `json:"limits"`
}

// LimitFor returns the limit row for an operation kind, or nil when the
// product carries no entry for it.
func (p *Product) LimitFor(kind OperationKind) *OperationLimit {
	for i := range p.Limits {
		if p.Limits[i].Kind == kind {
			return &p.Limits[i]
		}
	}
	return nil
}

// MinimumBalanceFor returns the balance floor applicable to a legal form.
func (p *Product) MinimumBalanceFor(form LegalForm) int64 {
	if form == LegalFormMoral {
		return p.MinimumBalanceMoral
	}
	return p.MinimumBalancePhysical
}
