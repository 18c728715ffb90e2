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

func newTestTransactionUsecase() (*TransactionUsecase, *fakeTransactionStore, *fakePublisher, *ReportCache) {
	store := newFakeTransactionStore()
	publisher := &fakePublisher{}
	cache := NewReportCache()
	clock := newFixedClock(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	reports := NewReportingUsecase(store, cache, clock)
	return NewTransactionUsecase(store, publisher, reports), store, publisher, cache
}

func TestCreateTransaction(t *testing.T) {
	uc, store, publisher, cache := newTestTransactionUsecase()
	cache.Put(7, "month", &PnLReport{})
	cache.Put(7, "year", &PnLReport{})

	view, err := uc.Create(context.Background(), 7, CreateTransactionInput{
		Date:        "2026-03-05",
		Amount:      decimal.RequireFromString("50000"),
		Description: "Client Payment",
	})
	require.NoError(t, err)
	assert.NotZero(t, view.ID)
	assert.Equal(t, "2026-03-05", view.Date)
	assert.True(t, view.Amount.Equal(decimal.RequireFromString("50000")))

	stored, err := store.FindByID(context.Background(), view.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, entities.SourceManual, stored.Source)
	assert.Equal(t, int64(7), stored.CompanyID)

	// cache evicted, event published
	_, ok := cache.Get(7, "month")
	assert.False(t, ok)
	_, ok = cache.Get(7, "year")
	assert.False(t, ok)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, []int64{view.ID}, publisher.events[0])
}

func TestCreateTransactionRejectsBadDate(t *testing.T) {
	uc, _, publisher, _ := newTestTransactionUsecase()

	_, err := uc.Create(context.Background(), 7, CreateTransactionInput{
		Date:        "05-03-2026",
		Amount:      decimal.NewFromInt(10),
		Description: "x",
	})
	var validation entities.ValidationError
	assert.ErrorAs(t, err, &validation)
	assert.Empty(t, publisher.events, "no event for a rejected write")
}

func TestListNewestFirst(t *testing.T) {
	uc, store, _, _ := newTestTransactionUsecase()
	seedTxn(t, store, 7, "2026-03-01", "100", nil)
	seedTxn(t, store, 7, "2026-03-09", "300", nil)
	seedTxn(t, store, 7, "2026-03-05", "-200", nil)

	views, err := uc.List(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, "2026-03-09", views[0].Date)
	assert.Equal(t, "2026-03-05", views[1].Date)
	assert.Equal(t, "2026-03-01", views[2].Date)
}

func TestDeleteTransaction(t *testing.T) {
	uc, store, _, cache := newTestTransactionUsecase()
	seedTxn(t, store, 7, "2026-03-01", "100", nil)
	cache.Put(7, "month", &PnLReport{})

	err := uc.Delete(context.Background(), 7, 1)
	require.NoError(t, err)

	gone, err := store.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, gone)
	_, ok := cache.Get(7, "month")
	assert.False(t, ok)
}

func TestDeleteTransactionNotFound(t *testing.T) {
	uc, _, _, _ := newTestTransactionUsecase()
	err := uc.Delete(context.Background(), 7, 42)
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestDeleteTransactionCrossTenantForbidden(t *testing.T) {
	uc, store, _, _ := newTestTransactionUsecase()
	seedTxn(t, store, 9, "2026-03-01", "100", nil)

	err := uc.Delete(context.Background(), 7, 1)
	assert.ErrorIs(t, err, entities.ErrForbidden)

	// row untouched
	kept, err := store.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, kept)
}
