// Package transaction keeps flow scoped LIFO stacks of compensating holds.
//
// A flow annotated with @transaction(undo=F) begins a transaction; effect-bearing
// actions register holds while it is active; on failure the holds are drained in
// reverse order with best effort and the transaction is discarded.
package transaction

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Hold compensates one completed step.
type Hold interface {
	Name() string
	Undo(ctx context.Context) error
}

type hold struct {
	name string
	fn   func(ctx context.Context) error
}

func (h *hold) Name() string { return h.name }

func (h *hold) Undo(ctx context.Context) error { return h.fn(ctx) }

// NewHold wraps a compensating function.
func NewHold(name string, fn func(ctx context.Context) error) Hold {
	return &hold{name: name, fn: fn}
}

// Transaction is one open scope.
type Transaction struct {
	Name  string
	holds []Hold
}

// Holds returns registered holds in registration order.
func (t *Transaction) Holds() []Hold {
	return append([]Hold{}, t.holds...)
}

// Manager owns the stack of open transactions of a run.
type Manager struct {
	mu     sync.Mutex
	stack  []*Transaction
	logger *zap.SugaredLogger
}

// Begin opens a transaction nested in the current one.
func (m *Manager) Begin(name string) *Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &Transaction{Name: name}
	m.stack = append(m.stack, tx)
	m.logger.Debugw("transaction begin", "name", name, "depth", len(m.stack))
	return tx
}

// Active returns the innermost open transaction.
func (m *Manager) Active() *Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.stack) == 0 {
		return nil
	}
	return m.stack[len(m.stack)-1]
}

// Register pushes a hold onto the innermost transaction; it reports false when none is open.
func (m *Manager) Register(h Hold) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.stack) == 0 {
		return false
	}
	tx := m.stack[len(m.stack)-1]
	tx.holds = append(tx.holds, h)
	return true
}

// Commit closes tx and forgets its holds.
func (m *Manager) Commit(tx *Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.remove(tx)
	m.logger.Debugw("transaction commit", "name", tx.Name, "holds", len(tx.holds))
}

// Rollback closes tx and runs its holds in reverse order; failing holds are logged and skipped.
func (m *Manager) Rollback(ctx context.Context, tx *Transaction) []error {
	m.mu.Lock()
	m.remove(tx)
	holds := tx.holds
	tx.holds = nil
	m.mu.Unlock()

	var errs []error
	for i := len(holds) - 1; i >= 0; i-- {
		h := holds[i]
		if err := h.Undo(context.WithoutCancel(ctx)); err != nil {
			m.logger.Warnw("undo failed", "transaction", tx.Name, "hold", h.Name(), "error", err)
			errs = append(errs, fmt.Errorf("undo %s: %w", h.Name(), err))
			continue
		}
		m.logger.Debugw("undo", "transaction", tx.Name, "hold", h.Name())
	}
	return errs
}

// Depth returns the number of open transactions.
func (m *Manager) Depth() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stack)
}

func (m *Manager) remove(tx *Transaction) {
	for i := len(m.stack) - 1; i >= 0; i-- {
		if m.stack[i] == tx {
			m.stack = append(m.stack[:i], m.stack[i+1:]...)
			return
		}
	}
}

// New creates a transaction manager.
func New(logger *zap.SugaredLogger) *Manager {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Manager{logger: logger}
}
