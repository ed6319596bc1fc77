/**
 * @description
 * Amount and eligibility validation for one settlement. Checks run in a
 * fixed order: limit table presence, amount bounds, product eligibility,
 * inter-branch permission, and — for debit-bearing operations — the
 * post-transaction minimum-balance floor. A floor breach is rejected
 * outright; withdrawals are never clamped to a partial amount.
 */

package app

import (
	"github.com/corebank/settlement-service/internal/domain"
)

// LimitInput carries the validation context for one settlement.
type LimitInput struct {
	Amount      int64
	Kind        domain.OperationKind
	Product     *domain.Product
	InterBranch bool
	// DirectDeposit marks deposits made by a third party rather than the
	// account holder.
	DirectDeposit bool
}

// ValidateLimits enforces the per-operation limit table and product
// eligibility flags.
func ValidateLimits(in LimitInput) error {
	limit := in.Product.LimitFor(in.Kind)
	if limit == nil {
		return domain.NewConfigurationMissing(
			"no amount limits configured for product %q and operation %s", in.Product.Name, in.Kind)
	}
	if in.Amount < limit.MinAmount || in.Amount > limit.MaxAmount {
		return domain.NewValidationFailed(
			"amount %d is outside the allowed range [%d, %d] for operation %s",
			in.Amount, limit.MinAmount, limit.MaxAmount, in.Kind)
	}
	if in.DirectDeposit && !in.Product.AllowDirectDeposit {
		return domain.NewValidationFailed("product %q does not allow direct deposits", in.Product.Name)
	}
	if in.InterBranch && !in.Product.AllowInterBranch {
		return domain.NewValidationFailed("product %q does not allow inter-branch operations", in.Product.Name)
	}
	return nil
}

// ValidateDebitFloor checks that the post-transaction balance stays at or
// above the legal-form minimum-balance floor, net of charges and blocked
// funds.
func ValidateDebitFloor(account *domain.Account, product *domain.Product, amount, charges int64) error {
	floor := product.MinimumBalanceFor(account.LegalForm)
	projected := account.Balance - amount - charges - account.BlockedAmount
	if projected < floor {
		return domain.NewInsufficientFunds(
			"account %s would fall to %d, below the minimum balance of %d",
			account.AccountNumber, account.Balance-amount-charges, floor)
	}
	return nil
}
