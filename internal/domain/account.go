/**
 * @description
 * This file defines the customer account aggregate and its enumerations.
 * The account is the only mutable entity in the settlement engine; its
 * balance is moved exclusively through the credit/debit mutators in
 * internal/app, which also maintain the tamper-evident balance code.
 *
 * @notes
 * - Amounts are stored as `int64` in the smallest currency unit, which
 *   avoids floating-point inaccuracies with financial data.
 * - The account carries only `ProductID`; product and fee configuration are
 *   loaded into separate read-only structs so the persisted aggregate never
 *   drags configuration rows into a write.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// AccountStatus enumerates the lifecycle states of a customer account.
type AccountStatus string

const (
	AccountPending AccountStatus = "pending"
	AccountActive  AccountStatus = "active"
	AccountBlocked AccountStatus = "blocked"
	AccountClosed  AccountStatus = "closed"
)

// LegalForm distinguishes natural persons from corporate customers. Fee
// schedules and minimum-balance floors are scoped by it.
type LegalForm string

const (
	LegalFormPhysical LegalForm = "physical"
	LegalFormMoral    LegalForm = "moral"
)

// Account represents a customer ledger account.
type Account struct {
	ID              uuid.UUID     `json:"id"`
	AccountNumber   string        `json:"account_number"`
	CustomerID      uuid.UUID     `json:"customer_id"`
	BranchID        uuid.UUID     `json:"branch_id"`
	BranchName      string        `json:"branch_name"` // display name, backfilled on activation
	ProductID       uuid.UUID     `json:"product_id"`
	DisplayName     string        `json:"display_name"`
	LegalForm       LegalForm     `json:"legal_form"`
	Status          AccountStatus `json:"status"`
	Balance         int64         `json:"balance"`          // in minor units
	PreviousBalance int64         `json:"previous_balance"` // in minor units
	BlockedAmount   int64         `json:"blocked_amount"`   // in minor units
	BalanceCode     string        `json:"-"`                // HMAC binding Balance to AccountNumber
	IsMinor         bool          `json:"is_minor"`
	Version         int64         `json:"version"` // optimistic concurrency row-stamp
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}
