/**
 * @description
 * Account balance mutation. All balance movement funnels through
 * CreditAccount/DebitAccount so the previous balance is always captured and
 * the integrity code always re-derived. Debits verify the stored code
 * first. Funding a pending account activates it atomically with the
 * mutation: the balance is set directly to the net amount rather than
 * added, and display metadata is backfilled from the branch directory.
 */

package app

import (
	"github.com/corebank/settlement-service/internal/domain"
)

// AccountMutator applies signed deltas to accounts under integrity
// protection.
type AccountMutator struct {
	guard *IntegrityGuard
}

// NewAccountMutator creates a mutator backed by the given guard.
func NewAccountMutator(guard *IntegrityGuard) *AccountMutator {
	return &AccountMutator{guard: guard}
}

// Credit increases the account balance by amount and reseals the code.
func (m *AccountMutator) Credit(account *domain.Account, amount int64) {
	account.PreviousBalance = account.Balance
	account.Balance += amount
	m.guard.Reseal(account)
}

// Debit verifies the stored code, then decreases the balance by amount and
// reseals. An integrity failure aborts the settlement before any mutation.
func (m *AccountMutator) Debit(account *domain.Account, amount int64) error {
	if err := m.guard.Verify(account); err != nil {
		return err
	}
	account.PreviousBalance = account.Balance
	account.Balance -= amount
	m.guard.Reseal(account)
	return nil
}

// ActivationInfo carries the metadata backfilled onto a pending account
// when its funding transaction activates it. Empty fields leave the
// provisioned values untouched.
type ActivationInfo struct {
	DisplayName string
	BranchName  string
}

// ActivatePending funds a pending account: status flips to active, the
// previous balance is forced to zero and the balance is set directly to the
// net amount, bypassing the incremental path.
func (m *AccountMutator) ActivatePending(account *domain.Account, netAmount int64, info ActivationInfo) {
	account.Status = domain.AccountActive
	if info.DisplayName != "" {
		account.DisplayName = info.DisplayName
	}
	if info.BranchName != "" {
		account.BranchName = info.BranchName
	}
	account.PreviousBalance = 0
	account.Balance = netAmount
	m.guard.Reseal(account)
}
