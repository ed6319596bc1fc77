/**
 * @description
 * This file defines the ledger row models and the settlement DTOs. Both
 * `Transaction` and `TellerOperation` are append-only: they are built once
 * by the settlement engine, persisted in the same storage transaction as the
 * account mutation, and never updated afterwards.
 *
 * @notes
 * - Using distinct types for API requests, ledger rows, and results keeps
 *   the persisted shape independent from the transport shape.
 * - Amounts are stored as `int64` in the smallest currency unit.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// CommissionSplit is the allocation of a total charge across the parties of
// an operation. Shares always sum exactly to the total charge.
type CommissionSplit struct {
	SourceBranch      int64 `json:"source_branch"`      // in minor units
	DestinationBranch int64 `json:"destination_branch"` // in minor units
	HeadOffice        int64 `json:"head_office"`        // in minor units
	Network           int64 `json:"network"`            // in minor units
}

// Total returns the sum of all party shares.
func (c CommissionSplit) Total() int64 {
	return c.SourceBranch + c.DestinationBranch + c.HeadOffice + c.Network
}

// Transaction is the customer-facing ledger row for one settlement leg.
// Transfers produce two legs sharing one Reference but carrying distinct IDs,
// each pointing at the counterparty account.
type Transaction struct {
	ID                    uuid.UUID       `json:"id"`
	Reference             string          `json:"reference"` // shared across transfer legs
	AccountID             uuid.UUID       `json:"account_id"`
	AccountNumber         string          `json:"account_number"`
	CounterpartyAccountID *uuid.UUID      `json:"counterparty_account_id,omitempty"`
	BranchID              uuid.UUID       `json:"branch_id"`
	TellerID              uuid.UUID       `json:"teller_id"`
	Kind                  OperationKind   `json:"kind"`
	Direction             Direction       `json:"direction"`
	SignedAmount          int64           `json:"signed_amount"`    // principal, negative for debits
	PreviousBalance       int64           `json:"previous_balance"` // account balance before mutation
	Balance               int64           `json:"balance"`          // account balance after mutation
	Fees                  FeeBreakdown    `json:"fees"`
	TotalCharges          int64           `json:"total_charges"`
	Commission            CommissionSplit `json:"commission"`
	Narrative             string          `json:"narrative"`
	CreatedAt             time.Time       `json:"created_at"`
}

// TellerOperation mirrors the cash effect of a settlement on the teller's
// till account. A non-inclusive charge produces its own row next to the
// principal movement.
type TellerOperation struct {
	ID              uuid.UUID `json:"id"`
	TransactionID   uuid.UUID `json:"transaction_id"`
	TillAccountID   uuid.UUID `json:"till_account_id"`
	Direction       Direction `json:"direction"`
	Amount          int64     `json:"amount"`           // in minor units
	PreviousBalance int64     `json:"previous_balance"` // till balance before this row
	Balance         int64     `json:"balance"`          // till balance after this row
	Description     string    `json:"description"`
	CreatedAt       time.Time `json:"created_at"`
}

// DepositRequest is the DTO for incoming deposit API requests.
type DepositRequest struct {
	AccountNumber string        `json:"account_number"`
	Amount        int64         `json:"amount"` // in minor units
	Kind          OperationKind `json:"kind,omitempty"`
	// ManualCharge, when set, must equal the computed total charge exactly
	// unless the account belongs to a minor.
	ManualCharge *int64 `json:"manual_charge,omitempty"`
	// ChargeInclusive indicates the fee is taken out of the deposited
	// amount instead of being collected in cash on top of it.
	ChargeInclusive bool `json:"charge_inclusive"`
	// DirectDeposit marks a deposit made by a third party rather than the
	// account holder; products can disallow those.
	DirectDeposit bool   `json:"direct_deposit"`
	Description   string `json:"description,omitempty"`
}

// WithdrawalRequest is the DTO for incoming withdrawal API requests.
type WithdrawalRequest struct {
	AccountNumber   string        `json:"account_number"`
	Amount          int64         `json:"amount"` // in minor units
	Kind            OperationKind `json:"kind,omitempty"`
	ManualCharge    *int64        `json:"manual_charge,omitempty"`
	ChargeInclusive bool          `json:"charge_inclusive"`
	Description     string        `json:"description,omitempty"`
}

// TransferRequest is the DTO for incoming transfer API requests. It covers
// local, inter-branch (third-party) and mobile-money transfers; the engine
// resolves the effective operation kind from the two accounts' branches
// unless a mobile-money kind is requested explicitly.
type TransferRequest struct {
	SenderAccountNumber   string        `json:"sender_account_number"`
	ReceiverAccountNumber string        `json:"receiver_account_number"`
	Amount                int64         `json:"amount"` // in minor units
	Kind                  OperationKind `json:"kind,omitempty"`
	ManualCharge          *int64        `json:"manual_charge,omitempty"`
	Description           string        `json:"description,omitempty"`
}

// SettlementResult is returned to the caller after a successful settlement.
type SettlementResult struct {
	Reference     string          `json:"reference"`
	TransactionID uuid.UUID       `json:"transaction_id"`
	Kind          OperationKind   `json:"kind"` // as settled, e.g. a transfer resolved to inter-branch
	SignedAmount  int64           `json:"signed_amount"`
	Balance       int64           `json:"balance"` // resulting customer balance
	Fees          FeeBreakdown    `json:"fees"`
	TotalCharges  int64           `json:"total_charges"`
	Commission    CommissionSplit `json:"commission"`
	Narrative     string          `json:"narrative"`
}
