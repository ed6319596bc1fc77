package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebank/settlement-service/internal/domain"
)

type recordedEvent struct {
	exchange   string
	routingKey string
	body       interface{}
}

type fakePublisher struct {
	events []recordedEvent
	err    error
}

func (p *fakePublisher) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, recordedEvent{exchange: exchange, routingKey: routingKey, body: body})
	return nil
}

func (p *fakePublisher) Close() {}

type fakeLimiter struct {
	count      int
	retryAfter int
	err        error
	calls      int
}

func (l *fakeLimiter) ConsumeRateLimit(ctx context.Context, scope, subject string, limit int, window time.Duration) (int, int, error) {
	l.calls++
	return l.count, l.retryAfter, l.err
}

func TestServiceDepositPublishesCompletedEvent(t *testing.T) {
	w := seedWorld()
	publisher := &fakePublisher{}
	svc := NewService(w.repo, w.engine, publisher)

	result, err := svc.Deposit(context.Background(), w.tellerID, domain.DepositRequest{
		AccountNumber: w.account.AccountNumber,
		Amount:        10000,
	})
	require.NoError(t, err)

	require.Len(t, publisher.events, 1)
	event := publisher.events[0]
	assert.Equal(t, "settlement.events", event.exchange)
	assert.Equal(t, "settlement.deposit.completed", event.routingKey)

	payload, ok := event.body.(domain.SettlementCompletedPayload)
	require.True(t, ok)
	assert.Equal(t, result.Reference, payload.Reference)
	assert.Equal(t, w.tellerID, payload.TellerID)
	assert.Equal(t, int64(10000), payload.SignedAmount)
}

func TestServiceTransferEventCarriesResolvedKind(t *testing.T) {
	w := seedWorld()
	w.addReceiver(uuid.New(), domain.AccountActive)
	publisher := &fakePublisher{}
	svc := NewService(w.repo, w.engine, publisher)

	// No kind on the request: the engine resolves inter-branch from the
	// branch mismatch and the event must be routed by that resolved kind.
	result, err := svc.Transfer(context.Background(), w.tellerID, domain.TransferRequest{
		SenderAccountNumber:   w.account.AccountNumber,
		ReceiverAccountNumber: "0002-000456",
		Amount:                10000,
	})
	require.NoError(t, err)
	require.Equal(t, domain.OpTransferInterBranch, result.Kind)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, "settlement.transfer_interbranch.completed", publisher.events[0].routingKey)
	payload, ok := publisher.events[0].body.(domain.SettlementCompletedPayload)
	require.True(t, ok)
	assert.Equal(t, domain.OpTransferInterBranch, payload.Kind)
}

func TestServicePublishFailureDoesNotFailSettlement(t *testing.T) {
	w := seedWorld()
	publisher := &fakePublisher{err: errors.New("broker down")}
	svc := NewService(w.repo, w.engine, publisher)

	_, err := svc.Deposit(context.Background(), w.tellerID, domain.DepositRequest{
		AccountNumber: w.account.AccountNumber,
		Amount:        10000,
	})
	require.NoError(t, err)
	assert.NotNil(t, w.repo.lastCommit())
}

func TestServiceIntegrityViolationAlert(t *testing.T) {
	w := seedWorld()
	publisher := &fakePublisher{}
	svc := NewService(w.repo, w.engine, publisher)

	// Out-of-band balance edit trips the withdrawal's integrity check.
	w.account.Balance = 900000

	_, err := svc.Withdraw(context.Background(), w.tellerID, domain.WithdrawalRequest{
		AccountNumber: w.account.AccountNumber,
		Amount:        10000,
	})
	require.Error(t, err)
	assert.Equal(t, domain.KindIntegrityViolation, domain.KindOf(err))

	require.Len(t, publisher.events, 1)
	assert.Equal(t, "settlement.integrity.violation", publisher.events[0].routingKey)
	alert, ok := publisher.events[0].body.(domain.IntegrityAlertPayload)
	require.True(t, ok)
	assert.Equal(t, w.account.AccountNumber, alert.AccountNumber)
}

func TestServiceValidationFailureEmitsNoEvent(t *testing.T) {
	w := seedWorld()
	publisher := &fakePublisher{}
	svc := NewService(w.repo, w.engine, publisher)

	_, err := svc.Deposit(context.Background(), w.tellerID, domain.DepositRequest{
		AccountNumber: w.account.AccountNumber,
		Amount:        -1,
	})
	require.Error(t, err)
	assert.Empty(t, publisher.events)
}

func TestServiceRateLimit(t *testing.T) {
	t.Run("over the limit returns RateLimitedError", func(t *testing.T) {
		w := seedWorld()
		svc := NewService(w.repo, w.engine, &fakePublisher{})
		svc.SetTellerRateLimiter(&fakeLimiter{count: 61, retryAfter: 17}, 60)

		_, err := svc.Deposit(context.Background(), w.tellerID, domain.DepositRequest{
			AccountNumber: w.account.AccountNumber,
			Amount:        10000,
		})
		var rle *RateLimitedError
		require.ErrorAs(t, err, &rle)
		assert.Equal(t, 17, rle.RetryAfterSeconds)
		assert.Nil(t, w.repo.lastCommit())
	})

	t.Run("under the limit settles normally", func(t *testing.T) {
		w := seedWorld()
		svc := NewService(w.repo, w.engine, &fakePublisher{})
		limiter := &fakeLimiter{count: 5}
		svc.SetTellerRateLimiter(limiter, 60)

		_, err := svc.Deposit(context.Background(), w.tellerID, domain.DepositRequest{
			AccountNumber: w.account.AccountNumber,
			Amount:        10000,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, limiter.calls)
	})

	t.Run("limiter failure lets the settlement through", func(t *testing.T) {
		w := seedWorld()
		svc := NewService(w.repo, w.engine, &fakePublisher{})
		svc.SetTellerRateLimiter(&fakeLimiter{err: errors.New("redis down")}, 60)

		_, err := svc.Deposit(context.Background(), w.tellerID, domain.DepositRequest{
			AccountNumber: w.account.AccountNumber,
			Amount:        10000,
		})
		require.NoError(t, err)
	})
}

func TestServiceTransactions(t *testing.T) {
	w := seedWorld()
	svc := NewService(w.repo, w.engine, &fakePublisher{})

	_, err := svc.Deposit(context.Background(), w.tellerID, domain.DepositRequest{
		AccountNumber: w.account.AccountNumber,
		Amount:        10000,
	})
	require.NoError(t, err)

	rows, err := svc.Transactions(context.Background(), w.account.AccountNumber, 20, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(10000), rows[0].SignedAmount)
}
