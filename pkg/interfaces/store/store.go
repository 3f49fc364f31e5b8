package store

import (
	"context"
	"sync"
)

// TransactionManager coordinates repository work inside a single transaction.
type TransactionManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// NopTransactionManager executes callbacks immediately without persistence.
type NopTransactionManager struct{}

var _ TransactionManager = (*NopTransactionManager)(nil)

func (n *NopTransactionManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// SerialTransactionManager runs callbacks one at a time. Stores without real
// transactions use it so multi-record updates never interleave. Nested calls
// on the same context run inline.
type SerialTransactionManager struct {
	mu sync.Mutex
}

var _ TransactionManager = (*SerialTransactionManager)(nil)

type serialTxKey struct{}

func (m *SerialTransactionManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if fn == nil {
		return nil
	}
	if owner, _ := ctx.Value(serialTxKey{}).(*SerialTransactionManager); owner == m {
		return fn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(context.WithValue(ctx, serialTxKey{}, m))
}
