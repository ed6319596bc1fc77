/**
 * @description
 * Fee schedule models. A schedule is resolved for one
 * (product, operation, holiday, legal form) tuple and is either a Rate
 * (percentage of amount) or a Range (contiguous amount bands mapping to flat
 * charges). Missing schedules are a configuration defect and settlement
 * fails closed — a zero fee is never assumed.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FeeMode selects between the two schedule variants.
type FeeMode string

const (
	FeeModeRate  FeeMode = "rate"
	FeeModeRange FeeMode = "range"
)

// FeeBand is one row of a Range schedule. Bands are contiguous and
// non-overlapping; both bounds are inclusive.
type FeeBand struct {
	AmountFrom int64 `json:"amount_from"` // in minor units
	AmountTo   int64 `json:"amount_to"`   // in minor units
	Charge     int64 `json:"charge"`      // in minor units
}

// FeeSchedule is the charge policy resolved for one settlement.
type FeeSchedule struct {
	ID        uuid.UUID     `json:"id"`
	ProductID uuid.UUID     `json:"product_id"`
	Kind      OperationKind `json:"kind"`
	Holiday   bool          `json:"holiday"`
	LegalForm LegalForm     `json:"legal_form"`
	Mode      FeeMode       `json:"mode"`
	// Rate is the percentage applied to the amount when Mode is "rate",
	// expressed as 0-100 (e.g. 1 means 1%).
	Rate decimal.Decimal `json:"rate"`
	// Bands is the ordered band table when Mode is "range".
	Bands []FeeBand `json:"bands"`
	// FormCharge is a flat stationery/slip charge added on top of the
	// service charge; waived when a withdrawal notice or charge waiver
	// applies.
	FormCharge int64 `json:"form_charge"`
	// NotificationPenaltyPercent is applied to the amount when a required
	// withdrawal notice is missing, expressed as 0-100.
	NotificationPenaltyPercent decimal.Decimal `json:"notification_penalty_percent"`
}

// FeeBreakdown is the computed charge decomposition for one settlement.
type FeeBreakdown struct {
	ServiceCharge       int64 `json:"service_charge"`       // in minor units
	FormCharge          int64 `json:"form_charge"`          // in minor units
	NotificationPenalty int64 `json:"notification_penalty"` // in minor units
}

// Total returns the sum of all charge components.
func (f FeeBreakdown) Total() int64 {
	return f.ServiceCharge + f.FormCharge + f.NotificationPenalty
}

// ChargeWaiver is a customer-scoped, single-use, time-bounded override that
// replaces the computed service charge and zeroes ancillary charges. It is
// created outside this service and consumed here during settlement.
type ChargeWaiver struct {
	ID         uuid.UUID `json:"id"`
	CustomerID uuid.UUID `json:"customer_id"`
	Amount     int64     `json:"amount"` // replacement service charge, possibly zero
	Status     string    `json:"status"` // 'pending', 'used'
	ValidFrom  time.Time `json:"valid_from"`
	ValidUntil time.Time `json:"valid_until"`
}

// ActiveAt reports whether the waiver can be applied at the given instant.
func (w *ChargeWaiver) ActiveAt(at time.Time) bool {
	return w.Status == "pending" && !at.Before(w.ValidFrom) && !at.After(w.ValidUntil)
}

// WithdrawalNotification is a pre-registered intent to withdraw a given
// amount. Its presence removes the withdrawal-without-notice penalty and the
// form charge; it is consumed on use.
type WithdrawalNotification struct {
	ID         uuid.UUID `json:"id"`
	AccountID  uuid.UUID `json:"account_id"`
	Amount     int64     `json:"amount"` // in minor units
	Status     string    `json:"status"` // 'pending', 'used'
	NotifiedAt time.Time `json:"notified_at"`
}
