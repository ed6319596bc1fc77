/**
 * @description
 * Typed domain errors for the settlement engine. Every failure is raised at
 * the point of detection and bubbles unhandled to the orchestrator boundary;
 * the API layer maps kinds to HTTP statuses. Nothing here is retried
 * internally.
 */

package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a settlement failure.
type ErrorKind string

const (
	// KindConfigurationMissing marks an operator/setup defect: no fee or
	// limit table exists for the resolved tuple. Fatal, fail closed.
	KindConfigurationMissing ErrorKind = "configuration_missing"
	// KindValidationFailed marks a rejected request: amount out of range,
	// ineligible product, same-account transfer.
	KindValidationFailed ErrorKind = "validation_failed"
	// KindInsufficientFunds is the ValidationFailed subtype raised when the
	// post-transaction balance would breach the minimum-balance floor.
	KindInsufficientFunds ErrorKind = "insufficient_funds"
	// KindFeeMismatch is the ValidationFailed subtype raised when a manual
	// charge does not equal the computed total for a non-minor account.
	KindFeeMismatch ErrorKind = "fee_mismatch"
	// KindIntegrityViolation marks a stored balance failing tamper
	// verification. Treated as a security incident, never corrected.
	KindIntegrityViolation ErrorKind = "integrity_violation"
)

// DomainError carries a machine-readable kind and a human-readable message.
type DomainError struct {
	Kind    ErrorKind
	Message string
}

func (e *DomainError) Error() string { return e.Message }

// NewConfigurationMissing builds a ConfigurationMissing error.
func NewConfigurationMissing(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: KindConfigurationMissing, Message: fmt.Sprintf(format, args...)}
}

// NewValidationFailed builds a ValidationFailed error.
func NewValidationFailed(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: KindValidationFailed, Message: fmt.Sprintf(format, args...)}
}

// NewInsufficientFunds builds an InsufficientFunds error.
func NewInsufficientFunds(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: KindInsufficientFunds, Message: fmt.Sprintf(format, args...)}
}

// NewFeeMismatch builds a FeeMismatch error.
func NewFeeMismatch(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: KindFeeMismatch, Message: fmt.Sprintf(format, args...)}
}

// NewIntegrityViolation builds an IntegrityViolation error.
func NewIntegrityViolation(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: KindIntegrityViolation, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the error kind, or an empty string for non-domain errors.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsValidation reports whether the error belongs to the ValidationFailed
// family, including its InsufficientFunds and FeeMismatch subtypes.
func IsValidation(err error) bool {
	switch KindOf(err) {
	case KindValidationFailed, KindInsufficientFunds, KindFeeMismatch:
		return true
	}
	return false
}
