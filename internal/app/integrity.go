/**
 * @description
 * Tamper-evident balance protection. Every stored balance is bound to its
 * account number by an HMAC-SHA256 code keyed with a service secret; the
 * code is re-derived on every mutation and verified before any debit-path
 * mutation. Verification failure is a security incident: the settlement
 * aborts, nothing is persisted, and an alert event is published by the
 * orchestrator. The code is one-way — nothing ever reads a balance back out
 * of it.
 */

package app

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/corebank/settlement-service/internal/domain"
)

// IntegrityGuard encodes and verifies account balance codes.
type IntegrityGuard struct {
	secret []byte
}

// NewIntegrityGuard creates a guard keyed with the given secret.
func NewIntegrityGuard(secret []byte) *IntegrityGuard {
	return &IntegrityGuard{secret: secret}
}

// Encode derives the balance code for (accountNumber, balance).
func (g *IntegrityGuard) Encode(accountNumber string, balance int64) string {
	mac := hmac.New(sha256.New, g.secret)
	fmt.Fprintf(mac, "%s|%d", accountNumber, balance)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks the stored code against the stored balance. Failure means
// the row was altered outside the settlement engine.
func (g *IntegrityGuard) Verify(account *domain.Account) error {
	expected := g.Encode(account.AccountNumber, account.Balance)
	if !hmac.Equal([]byte(expected), []byte(account.BalanceCode)) {
		return domain.NewIntegrityViolation(
			"balance integrity check failed for account %s", account.AccountNumber)
	}
	return nil
}

// Reseal recomputes the balance code after a mutation.
func (g *IntegrityGuard) Reseal(account *domain.Account) {
	account.BalanceCode = g.Encode(account.AccountNumber, account.Balance)
}
