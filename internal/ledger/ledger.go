// Package ledger records wallet transactions and keeps the owner's running
// balance in step with them.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/centavohq/centavo/internal/common"
	"github.com/centavohq/centavo/internal/model"
	"github.com/centavohq/centavo/internal/service"
)

// Ledger creates and deletes transactions. Balance-mutating operations are
// serialized per user so two concurrent spends cannot both pass a stale
// balance read and jointly overdraw.
type Ledger struct {
	storage service.Storage
	clock   common.Clock
	locks   sync.Map // userID -> *sync.Mutex
}

// Compile-time interface check.
var _ service.Ledger = (*Ledger)(nil)

// New creates a ledger backed by the given storage.
func New(storage service.Storage, clock common.Clock) *Ledger {
	return &Ledger{
		storage: storage,
		clock:   clock,
	}
}

func (l *Ledger) userLock(userID string) *sync.Mutex {
	lock, _ := l.locks.LoadOrStore(userID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// Record validates the owning user, appends the transaction, and applies its
// balance delta.
func (l *Ledger) Record(ctx context.Context, req service.RecordRequest) (*model.Transaction, error) {
	occurredAt := l.clock.Now()
	if req.OccurredAt != nil {
		occurredAt = *req.OccurredAt
	}

	txn, err := model.NewTransaction(req.UserID, req.Amount, req.Direction, req.Category,
		occurredAt, req.Source, req.Description)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}

	lock := l.userLock(req.UserID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := l.storage.GetUser(ctx, req.UserID); err != nil {
		return nil, fmt.Errorf("record transaction: %w", err)
	}

	if err := l.storage.RecordTransaction(ctx, txn); err != nil {
		return nil, fmt.Errorf("record transaction: %w", err)
	}

	slog.Info("Transaction recorded",
		"transaction_id", txn.ID,
		"user_id", txn.UserID,
		"direction", txn.Direction,
		"amount", txn.Amount,
		"source", txn.Source)

	return txn, nil
}

// Delete removes a transaction and reverses its balance effect.
func (l *Ledger) Delete(ctx context.Context, id string) error {
	txn, err := l.storage.GetTransaction(ctx, id)
	if err != nil {
		return err
	}

	lock := l.userLock(txn.UserID)
	lock.Lock()
	defer lock.Unlock()

	if err := l.storage.DeleteTransaction(ctx, id); err != nil {
		return err
	}

	slog.Info("Transaction deleted",
		"transaction_id", id,
		"user_id", txn.UserID,
		"reversed_amount", txn.Amount)

	return nil
}
