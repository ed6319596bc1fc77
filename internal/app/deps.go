/**
 * @description
 * Capability interfaces consumed by the settlement orchestrators. Each
 * orchestrator kind declares the composition it needs instead of taking the
 * full repository, which keeps test fakes small and makes each operation's
 * data footprint explicit. `store.Repository` satisfies all of them.
 */

package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/corebank/settlement-service/internal/domain"
	"github.com/corebank/settlement-service/internal/store"
)

// AccountDirectory resolves the accounts touched by a settlement.
type AccountDirectory interface {
	FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error)
	FindTillAccountByTeller(ctx context.Context, tellerID uuid.UUID) (*domain.Account, error)
}

// PolicyDirectory resolves product, fee and holiday configuration.
type PolicyDirectory interface {
	FindProductByID(ctx context.Context, productID uuid.UUID) (*domain.Product, error)
	FindFeeSchedule(ctx context.Context, productID uuid.UUID, kind domain.OperationKind, holiday bool, legalForm domain.LegalForm) (*domain.FeeSchedule, error)
	IsHoliday(ctx context.Context, date time.Time) (bool, error)
}

// ReliefDirectory resolves charge waivers and withdrawal notices.
type ReliefDirectory interface {
	FindActiveWaiver(ctx context.Context, customerID uuid.UUID, at time.Time) (*domain.ChargeWaiver, error)
	FindPendingNotification(ctx context.Context, accountID uuid.UUID, amount int64) (*domain.WithdrawalNotification, error)
}

// Committer persists one settlement atomically.
type Committer interface {
	CommitSettlement(ctx context.Context, commit *store.SettlementCommit) error
}

// DepositDeps is the capability set of the deposit orchestrator.
type DepositDeps interface {
	AccountDirectory
	PolicyDirectory
	ReliefDirectory
	Committer
}

// WithdrawalDeps is the capability set of the withdrawal orchestrator.
type WithdrawalDeps interface {
	AccountDirectory
	PolicyDirectory
	ReliefDirectory
	Committer
}

// TransferDeps is the capability set of the transfer orchestrator.
type TransferDeps interface {
	AccountDirectory
	PolicyDirectory
	ReliefDirectory
	Committer
}

// BranchDirectory looks up customer and branch display metadata from the
// branch directory service. Used to backfill a pending account on its
// funding transaction; a nil directory degrades to keeping existing names.
type BranchDirectory interface {
	CustomerName(ctx context.Context, customerID uuid.UUID) (string, error)
	BranchName(ctx context.Context, branchID uuid.UUID) (string, error)
}
