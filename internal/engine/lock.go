package engine

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerline/backend/internal/models"
)

// lockTable serializes mutating operations per budget.
//
// All allocations under one budget share a logical lock so that two
// concurrent postings cannot both read a stale ratio and independently
// decide whether a threshold was crossed.
type lockTable struct {
	mu    sync.Mutex
	locks map[uuid.UUID]chan struct{}
}

func newLockTable() *lockTable {
	return &lockTable{
		locks: make(map[uuid.UUID]chan struct{}),
	}
}

// acquire takes the lock for a budget, waiting at most the timeout.
// It returns ErrBudgetLocked when the wait is exceeded, the caller is
// expected to surface this as a retryable error.
func (t *lockTable) acquire(id uuid.UUID, timeout time.Duration) error {
	t.mu.Lock()
	ch, ok := t.locks[id]
	if !ok {
		ch = make(chan struct{}, 1)
		t.locks[id] = ch
	}
	t.mu.Unlock()

	select {
	case ch <- struct{}{}:
		return nil
	case <-time.After(timeout):
		return models.ErrBudgetLocked
	}
}

// release gives the lock for a budget back.
func (t *lockTable) release(id uuid.UUID) {
	t.mu.Lock()
	ch := t.locks[id]
	t.mu.Unlock()

	if ch != nil {
		<-ch
	}
}
