/**
 * @description
 * Commission allocation across the parties of a settlement. Local
 * operations attribute the entire charge to the originating branch. For
 * inter-branch operations the destination, head-office and network shares
 * are computed from configured percentages; the originating branch receives
 * the residual, so the shares sum to the total charge exactly with no
 * currency loss regardless of rounding.
 */

package app

import (
	"github.com/shopspring/decimal"

	"github.com/corebank/settlement-service/internal/domain"
)

var hundredPercent = decimal.NewFromInt(100)

// SplitCommission allocates the total charge of one settlement. Configured
// share percentages summing above 100 would book a negative residual to the
// originating branch, so they fail closed as a configuration defect.
func SplitCommission(totalCharge int64, shares domain.CommissionShares, interBranch bool) (domain.CommissionSplit, error) {
	if !interBranch || totalCharge == 0 {
		return domain.CommissionSplit{SourceBranch: totalCharge}, nil
	}

	percentSum := shares.DestinationBranchPercent.Add(shares.HeadOfficePercent).Add(shares.NetworkPercent)
	if percentSum.GreaterThan(hundredPercent) {
		return domain.CommissionSplit{}, domain.NewConfigurationMissing(
			"commission shares sum to %s percent; the originating branch residual would be negative",
			percentSum.String())
	}

	split := domain.CommissionSplit{
		DestinationBranch: percentOf(totalCharge, shares.DestinationBranchPercent),
		HeadOffice:        percentOf(totalCharge, shares.HeadOfficePercent),
		Network:           percentOf(totalCharge, shares.NetworkPercent),
	}
	// Residual to the originating branch; never let rounding lose a unit.
	split.SourceBranch = totalCharge - split.DestinationBranch - split.HeadOffice - split.Network
	return split, nil
}
