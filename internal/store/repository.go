/**
 * @description
 * This file defines the `Repository` interface, the contract for all data
 * access the settlement engine needs. Lookups are narrow and read-only; the
 * single mutating entry point is CommitSettlement, which persists every
 * side effect of one settlement in one database transaction so a partial
 * commit is impossible by construction.
 *
 * @dependencies
 * - context, time: Standard Go libraries.
 * - github.com/google/uuid: For UUID handling.
 * - internal/domain: For the service's domain models.
 */

package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/corebank/settlement-service/internal/domain"
)

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrTillNotFound        = errors.New("teller till account not found")
	ErrFeeScheduleNotFound = errors.New("fee schedule not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrStaleAccount is returned by CommitSettlement when an account's
	// row version moved under us; the whole commit rolls back.
	ErrStaleAccount = errors.New("account was modified concurrently")
)

// SettlementCommit gathers every entity touched by one settlement. Accounts
// are updated with a version check; everything else is append-only inserts
// and consumption flips.
type SettlementCommit struct {
	Accounts               []*domain.Account
	Transactions           []*domain.Transaction
	TellerOperations       []*domain.TellerOperation
	ConsumedWaiverID       *uuid.UUID
	ConsumedNotificationID *uuid.UUID
}

// Repository defines the set of methods for interacting with the database.
type Repository interface {
	FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error)
	FindTillAccountByTeller(ctx context.Context, tellerID uuid.UUID) (*domain.Account, error)
	FindProductByID(ctx context.Context, productID uuid.UUID) (*domain.Product, error)
	FindFeeSchedule(ctx context.Context, productID uuid.UUID, kind domain.OperationKind, holiday bool, legalForm domain.LegalForm) (*domain.FeeSchedule, error)
	IsHoliday(ctx context.Context, date time.Time) (bool, error)
	FindActiveWaiver(ctx context.Context, customerID uuid.UUID, at time.Time) (*domain.ChargeWaiver, error)
	FindPendingNotification(ctx context.Context, accountID uuid.UUID, amount int64) (*domain.WithdrawalNotification, error)

	FindTransactionsByAccountNumber(ctx context.Context, accountNumber string, limit, offset int) ([]domain.Transaction, error)

	// CommitSettlement persists all pending changes of one settlement
	// atomically. Account updates are guarded by the row version.
	CommitSettlement(ctx context.Context, commit *SettlementCommit) error
}
