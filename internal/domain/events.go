/**
 * @description
 * Message payloads published to RabbitMQ after settlement. Completed
 * settlements emit a routed event per operation kind; integrity failures
 * emit a security alert that downstream monitoring treats as an incident.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// SettlementCompletedPayload is published on `settlement.<kind>.completed`.
type SettlementCompletedPayload struct {
	Reference     string        `json:"reference"`
	TransactionID uuid.UUID     `json:"transaction_id"`
	AccountNumber string        `json:"account_number"`
	Kind          OperationKind `json:"kind"`
	SignedAmount  int64         `json:"signed_amount"`
	TotalCharges  int64         `json:"total_charges"`
	TellerID      uuid.UUID     `json:"teller_id"`
	Timestamp     time.Time     `json:"timestamp"`
}

// IntegrityAlertPayload is published on `settlement.integrity.violation`
// when a stored balance fails tamper verification.
type IntegrityAlertPayload struct {
	AccountNumber string    `json:"account_number"`
	TellerID      uuid.UUID `json:"teller_id"`
	Detail        string    `json:"detail"`
	Timestamp     time.Time `json:"timestamp"`
}
