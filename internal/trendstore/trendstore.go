// Package trendstore persists all engine-owned state behind the TrendStore
// contract, with SQLite, MySQL and PostgreSQL backends.
package trendstore

import (
	"fmt"
	"os"
	"sync"

	"github.com/newsradar/trendwatch/internal/contract"
	"github.com/newsradar/trendwatch/schema"
)

// TrendStoreManager hands out the process-wide trend store.
type TrendStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	store        contract.TrendStore
}

var _ contract.StoreManager = &TrendStoreManager{} // Compile-time check

// TrendStore returns the configured trend store.
func (mgr *TrendStoreManager) TrendStore() contract.TrendStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.store
}

// SetStore swaps the store; used by tests to install a mock.
func (mgr *TrendStoreManager) SetStore(store contract.TrendStore) {
	mgr.Lock()
	defer mgr.Unlock()
	mgr.store = store
}

// Global Manager instance for main logic.
var (
	Manager   = &TrendStoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// InitStores initializes the global store manager. Safe for concurrent calls;
// the store opens exactly once per process.
func InitStores(backend schema.DatabaseBackend, connStr string) error {
	var initErr error

	initOnce.Do(func() {
		store, err := NewTrendStore(backend, connStr)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize trend store: %w", err)
			return
		}
		Manager.SetStore(store)
	})

	return initErr
}

// CloseStores should be called on application shutdown.
func CloseStores() { // called in main defer
	closeOnce.Do(func() {
		if store := Manager.TrendStore(); store != nil {
			_ = store.Close()
		}
	})
}

// ClearStore removes all persisted state for the given backend. For SQLite it
// deletes the database file; for SQL backends it drops the engine tables.
func ClearStore(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		if dbFilePath == "" {
			return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
		}
		// Remove the file; ignore if it doesn't exist
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend:
		return dropTables("mysql", connStr)

	case schema.PostgreSQLBackend:
		return dropTables("pgx", connStr)

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported store backend for clearing: %s", backend)
	}
}
