package testutil

import (
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/pathways/core"
	"github.com/trezcool/pathways/core/kv"
	"github.com/trezcool/pathways/core/namespace"
	"github.com/trezcool/pathways/storage/database"
	"github.com/trezcool/pathways/storage/kvstore/inmem"
)

// PrepareDB returns a migrated in-memory SQLite database, closed when the test ends.
func PrepareDB(t *testing.T) *sqlx.DB {
	db, err := database.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	return db
}

// NewRegistry returns namespaces over an empty in-memory store.
func NewRegistry(t *testing.T, logger core.Logger, quota ...int) (*namespace.Registry, *inmemkv.Store) {
	var q int
	if len(quota) > 0 {
		q = quota[0]
	}
	store := inmemkv.Open(q)
	return namespace.NewRegistry(kv.NewAdapter(store, logger)), store
}

// Logger discards everything but remembers the messages it got.
type Logger struct {
	mu       sync.Mutex
	messages []string
}

var _ core.Logger = (*Logger)(nil)

func (l *Logger) log(msg string) {
	l.mu.Lock()
	l.messages = append(l.messages, msg)
	l.mu.Unlock()
}

func (l *Logger) Messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.messages...)
}

func (l *Logger) Debug(msg string, _ ...interface{}) { l.log(msg) }
func (l *Logger) Info(msg string, _ ...interface{})  { l.log(msg) }
func (l *Logger) Warn(msg string, _ ...interface{})  { l.log(msg) }
func (l *Logger) Error(msg string, _ ...interface{}) { l.log(msg) }
func (l *Logger) Fatal(msg string, _ ...interface{}) { l.log(msg) }
