package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/Vedant-1724/Ai-Finance-Assistant/internal/entities"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAnomalyLoop(t *testing.T) (*AnomalyLoop, *fakeAnomalyStore, *fakeMailer, context.CancelFunc) {
	t.Helper()
	anomalies := newFakeAnomalyStore()
	companies := newFakeCompanyStore()
	users := newFakeUserStore()
	mailer := &fakeMailer{}

	owner := &entities.User{Email: "owner@x.io"}
	users.put(owner)
	companies.put(&entities.Company{ID: 7, OwnerID: owner.ID, Name: "Acme", Currency: "USD"})

	notifier := NewNotifier(companies, users, mailer, "AI Finance Assistant")
	ctx, cancel := context.WithCancel(context.Background())
	notifier.Start(ctx)

	clock := newFixedClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	return NewAnomalyLoop(anomalies, notifier, clock), anomalies, mailer, cancel
}

func waitForMail(t *testing.T, mailer *fakeMailer, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if mailer.sentCount() >= want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.Equal(t, want, mailer.sentCount())
}

func TestHandleMessagePersistsAndNotifiesOnce(t *testing.T) {
	loop, store, mailer, cancel := newTestAnomalyLoop(t)
	defer cancel()

	loop.HandleMessage([]byte(`{"companyId":7,"anomalies":[{"id":42,"amount":-999999},{"id":null,"amount":123.45}]}`))

	saved, err := store.ListByCompany(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, saved, 2)

	require.NotNil(t, saved[0].TransactionID)
	assert.Equal(t, int64(42), *saved[0].TransactionID)
	assert.True(t, saved[0].Amount.Equal(decimal.RequireFromString("-999999")))
	assert.Equal(t, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC), saved[0].DetectedAt)

	assert.Nil(t, saved[1].TransactionID, "orphan anomaly keeps a null transaction id")

	// one batch => at most one notification
	waitForMail(t, mailer, 1)
	assert.Equal(t, []string{"owner@x.io"}, mailer.sent)
	assert.Contains(t, mailer.subjects[0], "2 Anomalies Detected in Acme")
}

func TestHandleMessageEmptyBatch(t *testing.T) {
	loop, store, mailer, cancel := newTestAnomalyLoop(t)
	defer cancel()

	loop.HandleMessage([]byte(`{"companyId":7,"anomalies":[]}`))
	loop.HandleMessage([]byte(`{"companyId":7}`))

	saved, err := store.ListByCompany(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, saved)
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, mailer.sentCount())
}

func TestHandleMessageUnparseableDropped(t *testing.T) {
	loop, store, _, cancel := newTestAnomalyLoop(t)
	defer cancel()

	// must not panic; message is dropped and would still be acked
	loop.HandleMessage([]byte(`{not json`))

	saved, err := store.ListByCompany(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestHandleMessageInsertFailureKeepsGoing(t *testing.T) {
	loop, store, mailer, cancel := newTestAnomalyLoop(t)
	defer cancel()
	store.failNext = true

	loop.HandleMessage([]byte(`{"companyId":7,"anomalies":[{"id":1,"amount":-10},{"id":2,"amount":-20}]}`))

	saved, err := store.ListByCompany(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, saved, 1, "second insert survives the first failure")
	require.NotNil(t, saved[0].TransactionID)
	assert.Equal(t, int64(2), *saved[0].TransactionID)

	waitForMail(t, mailer, 1)
}

func TestNotifierUnknownCompanySwallowed(t *testing.T) {
	loop, _, mailer, cancel := newTestAnomalyLoop(t)
	defer cancel()

	loop.HandleMessage([]byte(`{"companyId":999,"anomalies":[{"id":1,"amount":-10}]}`))

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, mailer.sentCount(), "missing company is logged, never fatal")
}
