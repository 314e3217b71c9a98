package db

import (
	"fmt"

	"github.com/mezonai/powchain/logx"
)

// DBTxManager runs a group of writes as one batch on the shared provider.
type DBTxManager struct {
	provider DatabaseProvider
}

// NewDBTxManager creates a new transaction manager with the given provider
func NewDBTxManager(provider DatabaseProvider) *DBTxManager {
	return &DBTxManager{provider: provider}
}

// WithBatch executes fn within a batch context.
// If fn returns nil, the batch is committed; otherwise, it's discarded.
func (tm *DBTxManager) WithBatch(fn func(batch DatabaseBatch) error) error {
	batch := tm.provider.Batch()
	defer func() {
		if err := batch.Close(); err != nil {
			logx.Error("TX_MANAGER", "Failed to close batch:", err)
		}
	}()

	if err := fn(batch); err != nil {
		batch.Reset()
		return fmt.Errorf("transaction failed: %w", err)
	}

	if err := batch.Write(); err != nil {
		return fmt.Errorf("commit failed: %w", err)
	}

	return nil
}
