package ledger

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/centavohq/centavo/internal/common"
	"github.com/centavohq/centavo/internal/model"
	"github.com/centavohq/centavo/internal/service"
	"github.com/centavohq/centavo/internal/storage"
)

func newTestLedger(t *testing.T) (*Ledger, *storage.SQLiteStorage, *model.User) {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))

	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	user, err := model.NewUser("Maria", "maria@example.com", "", decimal.NewFromInt(100), now)
	require.NoError(t, err)
	require.NoError(t, store.CreateUser(context.Background(), user))

	clock := common.FixedClock{Instant: time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)}
	return New(store, clock), store, user
}

func TestLedger_Record(t *testing.T) {
	ledger, store, user := newTestLedger(t)
	ctx := context.Background()

	txn, err := ledger.Record(ctx, service.RecordRequest{
		UserID:      user.ID,
		Amount:      decimal.NewFromInt(30),
		Direction:   model.DirectionExpense,
		Category:    "food",
		Source:      model.SourceManual,
		Description: "groceries",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, txn.ID)
	assert.Equal(t, time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC), txn.OccurredAt)

	got, err := store.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.CurrentBalance.Equal(decimal.NewFromInt(70)))
}

func TestLedger_Record_UnknownUser(t *testing.T) {
	ledger, _, _ := newTestLedger(t)

	_, err := ledger.Record(context.Background(), service.RecordRequest{
		UserID:    "ghost",
		Amount:    decimal.NewFromInt(10),
		Direction: model.DirectionExpense,
		Category:  "food",
		Source:    model.SourceManual,
	})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestLedger_Record_InvalidInput(t *testing.T) {
	ledger, _, user := newTestLedger(t)

	_, err := ledger.Record(context.Background(), service.RecordRequest{
		UserID:    user.ID,
		Amount:    decimal.Zero,
		Direction: model.DirectionExpense,
		Category:  "food",
		Source:    model.SourceManual,
	})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestLedger_Delete_ReversesBalance(t *testing.T) {
	ledger, store, user := newTestLedger(t)
	ctx := context.Background()

	txn, err := ledger.Record(ctx, service.RecordRequest{
		UserID:    user.ID,
		Amount:    decimal.NewFromInt(40),
		Direction: model.DirectionExpense,
		Category:  "transport",
		Source:    model.SourceTelegram,
	})
	require.NoError(t, err)

	require.NoError(t, ledger.Delete(ctx, txn.ID))

	got, err := store.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.CurrentBalance.Equal(decimal.NewFromInt(100)))

	assert.ErrorIs(t, ledger.Delete(ctx, txn.ID), common.ErrNotFound)
}

func TestLedger_ConcurrentRecords_NoLostUpdates(t *testing.T) {
	ledger, store, user := newTestLedger(t)
	ctx := context.Background()

	const workers = 10
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := ledger.Record(ctx, service.RecordRequest{
				UserID:    user.ID,
				Amount:    decimal.NewFromInt(1),
				Direction: model.DirectionExpense,
				Category:  "coffee",
				Source:    model.SourceManual,
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := store.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.CurrentBalance.Equal(decimal.NewFromInt(90)),
		"every delta must be applied exactly once, got %s", got.CurrentBalance)
}
