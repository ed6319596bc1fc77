/**
 * @description
 * The settlement engine bundles the integrity guard, account mutator and
 * till ledger shared by the three orchestrators. The engine only mutates
 * in-memory entity graphs; every orchestrator hands its accumulated changes
 * to the caller's single CommitSettlement boundary, so either everything of
 * a settlement persists or nothing does.
 */

package app

import (
	"context"
	"log"

	"github.com/corebank/settlement-service/internal/domain"
)

// Engine hosts the pure settlement components.
type Engine struct {
	guard     *IntegrityGuard
	mutator   *AccountMutator
	teller    *TellerLedger
	directory BranchDirectory // optional
}

// NewEngine creates an engine keyed with the balance integrity secret.
func NewEngine(integritySecret []byte, directory BranchDirectory) *Engine {
	guard := NewIntegrityGuard(integritySecret)
	mutator := NewAccountMutator(guard)
	return &Engine{
		guard:     guard,
		mutator:   mutator,
		teller:    NewTellerLedger(mutator),
		directory: directory,
	}
}

// Guard exposes the integrity guard for seeding and verification outside
// the settlement path (e.g. account provisioning tooling).
func (e *Engine) Guard() *IntegrityGuard { return e.guard }

// activationInfo resolves the display metadata backfilled onto a pending
// account when its funding transaction activates it. Lookup failures only
// degrade the backfill; they never fail the settlement.
func (e *Engine) activationInfo(ctx context.Context, account *domain.Account) ActivationInfo {
	info := ActivationInfo{}
	if e.directory == nil {
		return info
	}
	name, err := e.directory.CustomerName(ctx, account.CustomerID)
	if err != nil {
		log.Printf("level=warn component=engine msg=\"customer name lookup failed; keeping existing display name\" customer_id=%s err=%v",
			account.CustomerID, err)
	} else {
		info.DisplayName = name
	}
	branch, err := e.directory.BranchName(ctx, account.BranchID)
	if err != nil {
		log.Printf("level=warn component=engine msg=\"branch name lookup failed; keeping existing branch name\" branch_id=%s err=%v",
			account.BranchID, err)
	} else {
		info.BranchName = branch
	}
	return info
}

// requireActive rejects settlement against blocked or closed accounts.
// Pending accounts are allowed only on the deposit funding path.
func requireActive(account *domain.Account) error {
	if account.Status != domain.AccountActive {
		return domain.NewValidationFailed("account %s is %s and cannot be operated on",
			account.AccountNumber, account.Status)
	}
	return nil
}
