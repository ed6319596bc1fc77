/**
 * @description
 * This file contains the service facade for the settlement engine. The
 * `Service` struct wires the engine to the repository, the branch
 * directory client, the event producer and the optional teller rate
 * limiter, and is what the API layer talks to.
 *
 * Key features:
 * - Runs each settlement end to end and publishes the completed event.
 * - Surfaces integrity violations as security alert events before
 *   propagating the error; nothing is ever retried internally.
 * - Applies a per-teller fixed-window rate limit when Redis is available.
 *
 * @dependencies
 * - context, fmt, log, time: Standard Go libraries.
 * - github.com/google/uuid: For UUID handling.
 * - internal/domain, internal/store: For domain models and data access.
 * - pkg/rabbitmq: For event publishing.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/corebank/settlement-service/internal/domain"
	"github.com/corebank/settlement-service/internal/store"
	"github.com/corebank/settlement-service/pkg/rabbitmq"
)

const settlementExchange = "settlement.events"

// RateLimitedError is returned when a teller exceeds the settlement
// throttle. The API layer maps it to 429 with a Retry-After header.
type RateLimitedError struct {
	RetryAfterSeconds int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("settlement rate limit exceeded, retry after %ds", e.RetryAfterSeconds)
}

// TellerRateLimiter is the throttle consulted before each settlement.
type TellerRateLimiter interface {
	ConsumeRateLimit(ctx context.Context, scope, subject string, limit int, window time.Duration) (count int, retryAfterSeconds int, err error)
}

// Service provides the settlement use cases to the API layer.
type Service struct {
	repo          store.Repository
	engine        *Engine
	eventProducer rabbitmq.Publisher
	rateLimiter   TellerRateLimiter
	rateLimit     int
	rateWindow    time.Duration
}

// NewService creates a new settlement service instance.
func NewService(repo store.Repository, engine *Engine, producer rabbitmq.Publisher) *Service {
	return &Service{
		repo:          repo,
		engine:        engine,
		eventProducer: producer,
	}
}

// SetTellerRateLimiter enables per-teller throttling.
func (s *Service) SetTellerRateLimiter(limiter TellerRateLimiter, perMinute int) {
	s.rateLimiter = limiter
	s.rateLimit = perMinute
	s.rateWindow = time.Minute
}

// Deposit settles a cash deposit and publishes the completion event.
func (s *Service) Deposit(ctx context.Context, tellerID uuid.UUID, req domain.DepositRequest) (*domain.SettlementResult, error) {
	if err := s.consumeRateLimit(ctx, "deposit", tellerID); err != nil {
		return nil, err
	}
	result, err := s.engine.Deposit(ctx, s.repo, tellerID, req)
	if err != nil {
		s.reportFailure(ctx, tellerID, req.AccountNumber, err)
		return nil, err
	}
	s.publishCompleted(ctx, tellerID, req.AccountNumber, result)
	return result, nil
}

// Withdraw settles a cash withdrawal and publishes the completion event.
func (s *Service) Withdraw(ctx context.Context, tellerID uuid.UUID, req domain.WithdrawalRequest) (*domain.SettlementResult, error) {
	if err := s.consumeRateLimit(ctx, "withdrawal", tellerID); err != nil {
		return nil, err
	}
	result, err := s.engine.Withdraw(ctx, s.repo, tellerID, req)
	if err != nil {
		s.reportFailure(ctx, tellerID, req.AccountNumber, err)
		return nil, err
	}
	s.publishCompleted(ctx, tellerID, req.AccountNumber, result)
	return result, nil
}

// Transfer settles a transfer and publishes the completion event.
func (s *Service) Transfer(ctx context.Context, tellerID uuid.UUID, req domain.TransferRequest) (*domain.SettlementResult, error) {
	if err := s.consumeRateLimit(ctx, "transfer", tellerID); err != nil {
		return nil, err
	}
	result, err := s.engine.Transfer(ctx, s.repo, tellerID, req)
	if err != nil {
		s.reportFailure(ctx, tellerID, req.SenderAccountNumber, err)
		return nil, err
	}
	s.publishCompleted(ctx, tellerID, req.SenderAccountNumber, result)
	return result, nil
}

// Transactions lists ledger history for an account.
func (s *Service) Transactions(ctx context.Context, accountNumber string, limit, offset int) ([]domain.Transaction, error) {
	return s.repo.FindTransactionsByAccountNumber(ctx, accountNumber, limit, offset)
}

// consumeRateLimit applies the per-teller throttle when configured.
func (s *Service) consumeRateLimit(ctx context.Context, scope string, tellerID uuid.UUID) error {
	if s.rateLimiter == nil || s.rateLimit <= 0 {
		return nil
	}
	count, retryAfter, err := s.rateLimiter.ConsumeRateLimit(ctx, scope, tellerID.String(), s.rateLimit, s.rateWindow)
	if err != nil {
		// A broken limiter must not block the counter.
		log.Printf("level=warn component=service msg=\"rate limiter unavailable; allowing settlement\" teller_id=%s err=%v", tellerID, err)
		return nil
	}
	if count > s.rateLimit {
		log.Printf("level=warn component=service msg=\"teller settlement rate limit exceeded\" teller_id=%s scope=%s count=%d limit=%d",
			tellerID, scope, count, s.rateLimit)
		return &RateLimitedError{RetryAfterSeconds: retryAfter}
	}
	return nil
}

// publishCompleted emits the settlement completed event, routed by the kind
// the engine actually settled (a transfer request without an explicit kind
// may resolve to inter-branch). Publish failures are logged, never surfaced:
// the settlement is already committed.
func (s *Service) publishCompleted(ctx context.Context, tellerID uuid.UUID, accountNumber string, result *domain.SettlementResult) {
	if s.eventProducer == nil {
		return
	}
	payload := domain.SettlementCompletedPayload{
		Reference:     result.Reference,
		TransactionID: result.TransactionID,
		AccountNumber: accountNumber,
		Kind:          result.Kind,
		SignedAmount:  result.SignedAmount,
		TotalCharges:  result.TotalCharges,
		TellerID:      tellerID,
		Timestamp:     time.Now().UTC(),
	}
	routingKey := fmt.Sprintf("settlement.%s.completed", result.Kind)
	if err := s.eventProducer.Publish(ctx, settlementExchange, routingKey, payload); err != nil {
		log.Printf("level=warn component=service msg=\"settlement event publish failed\" reference=%s err=%v", result.Reference, err)
	}
}

// reportFailure publishes a security alert for integrity violations and
// logs every other failure at the orchestrator boundary.
func (s *Service) reportFailure(ctx context.Context, tellerID uuid.UUID, accountNumber string, err error) {
	var de *domain.DomainError
	if errors.As(err, &de) && de.Kind == domain.KindIntegrityViolation {
		log.Printf("level=error component=service msg=\"balance integrity violation\" account=%s teller_id=%s err=%v",
			accountNumber, tellerID, err)
		if s.eventProducer != nil {
			alert := domain.IntegrityAlertPayload{
				AccountNumber: accountNumber,
				TellerID:      tellerID,
				Detail:        de.Message,
				Timestamp:     time.Now().UTC(),
			}
			if pubErr := s.eventProducer.Publish(ctx, settlementExchange, "settlement.integrity.violation", alert); pubErr != nil {
				log.Printf("level=error component=service msg=\"integrity alert publish failed\" account=%s err=%v", accountNumber, pubErr)
			}
		}
		return
	}
	log.Printf("level=info component=service msg=\"settlement rejected\" account=%s teller_id=%s err=%v",
		accountNumber, tellerID, err)
}
