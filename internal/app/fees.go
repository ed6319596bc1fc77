/**
 * @description
 * Fee computation for one settlement. The calculator resolves the charge
 * from a schedule already scoped to (operation, holiday, legal form),
 * applies waivers and withdrawal-notice rules, and validates manual/offline
 * charges. It fails closed: a missing schedule or an amount outside every
 * band is a configuration defect, never a zero fee.
 *
 * @dependencies
 * - github.com/shopspring/decimal: exact percentage arithmetic; fees are
 *   rounded half away from zero to the minor unit.
 */

package app

import (
	"github.com/shopspring/decimal"

	"github.com/corebank/settlement-service/internal/domain"
)

var oneHundred = decimal.NewFromInt(100)

// percentOf applies a 0-100 percentage to an amount in minor units, rounded
// half away from zero.
func percentOf(amount int64, percent decimal.Decimal) int64 {
	return decimal.NewFromInt(amount).Mul(percent).Div(oneHundred).Round(0).IntPart()
}

// FeeInput carries everything the calculator needs for one settlement.
type FeeInput struct {
	Amount   int64
	Schedule *domain.FeeSchedule // resolved for (product, operation, holiday, legal form)
	// ManualCharge is an offline/teller-entered total charge. It must equal
	// the computed total exactly unless the account belongs to a minor.
	ManualCharge *int64
	IsMinor      bool
	// Waiver is the active charge waiver for the customer, if any.
	Waiver *domain.ChargeWaiver
	// NoticeRequired is true when the product demands prior notification
	// for this operation and amount.
	NoticeRequired bool
	// Notice is the matching pending withdrawal notification, if any.
	Notice *domain.WithdrawalNotification
}

// ComputeFees resolves the fee breakdown for one settlement.
func ComputeFees(in FeeInput) (domain.FeeBreakdown, error) {
	if in.Schedule == nil {
		return domain.FeeBreakdown{}, domain.NewConfigurationMissing(
			"no fee schedule configured for this product/operation/holiday combination")
	}

	service, err := scheduleCharge(in.Schedule, in.Amount)
	if err != nil {
		return domain.FeeBreakdown{}, err
	}

	fees := domain.FeeBreakdown{
		ServiceCharge: service,
		FormCharge:    in.Schedule.FormCharge,
	}

	if in.NoticeRequired {
		if in.Notice != nil {
			// A registered notice removes both the penalty and the form charge.
			fees.NotificationPenalty = 0
			fees.FormCharge = 0
		} else {
			fees.NotificationPenalty = percentOf(in.Amount, in.Schedule.NotificationPenaltyPercent)
		}
	}

	// An active waiver replaces the service charge and zeroes every
	// ancillary charge, possibly down to a zero total.
	if in.Waiver != nil {
		fees.ServiceCharge = in.Waiver.Amount
		fees.FormCharge = 0
		fees.NotificationPenalty = 0
	}

	if in.ManualCharge != nil && !in.IsMinor {
		if *in.ManualCharge != fees.Total() {
			return domain.FeeBreakdown{}, domain.NewFeeMismatch(
				"manual charge %d does not match expected charge %d (discrepancy %d)",
				*in.ManualCharge, fees.Total(), *in.ManualCharge-fees.Total())
		}
	}

	return fees, nil
}

// scheduleCharge evaluates the Rate or Range variant for an amount.
func scheduleCharge(s *domain.FeeSchedule, amount int64) (int64, error) {
	switch s.Mode {
	case domain.FeeModeRate:
		return percentOf(amount, s.Rate), nil
	case domain.FeeModeRange:
		for _, band := range s.Bands {
			if amount >= band.AmountFrom && amount <= band.AmountTo {
				return band.Charge, nil
			}
		}
		return 0, domain.NewConfigurationMissing(
			"amount %d falls outside every configured fee band", amount)
	default:
		return 0, domain.NewConfigurationMissing("unknown fee schedule mode %q", s.Mode)
	}
}
