package sqlkv

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/pathways/core"
	"github.com/trezcool/pathways/core/kv"
)

const (
	selectQuery   = `SELECT data FROM kv_store WHERE name = ?`
	upsertQuery   = `INSERT INTO kv_store (name, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`
	deleteQuery   = `DELETE FROM kv_store WHERE name = ?`
	keysQuery     = `SELECT name FROM kv_store ORDER BY name`
	versionsQuery = `SELECT name, updated_at FROM kv_store`
)

// DefaultPollInterval is how often Watch looks for writes made by other processes.
const DefaultPollInterval = 2 * time.Second

// Store keeps documents in the kv_store table of a postgres or sqlite database.
type Store struct {
	db           *sqlx.DB
	pollInterval time.Duration

	mu      sync.Mutex
	written map[string]*string // last document this Store wrote per key; nil when it deleted the key
}

var (
	_ kv.Store   = (*Store)(nil) // interface compliance check
	_ kv.Watcher = (*Store)(nil)
)

// New returns a Store on db. The kv_store table must have been migrated.
func New(db *sqlx.DB) *Store {
	return &Store{db: db, pollInterval: DefaultPollInterval, written: make(map[string]*string)}
}

// WithPollInterval sets how often Watch polls the table (DefaultPollInterval when d <= 0).
func (s *Store) WithPollInterval(d time.Duration) *Store {
	if d > 0 {
		s.pollInterval = d
	}
	return s
}

func (s *Store) remember(key string, data *string) {
	s.mu.Lock()
	s.written[key] = data
	s.mu.Unlock()
}

// ownWrite reports whether data (nil: key deleted) is what this Store last wrote under key.
func (s *Store) ownWrite(key string, data *string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	last, ok := s.written[key]
	if !ok {
		return false
	}
	if last == nil || data == nil {
		return last == nil && data == nil
	}
	return *last == *data
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data string
	if err := s.db.GetContext(ctx, &data, s.db.Rebind(selectQuery), key); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, errors.Wrap(err, "selecting document")
	}
	return []byte(data), true, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	data := string(value)
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(upsertQuery), key, data, core.NowFunc().UTC()); err != nil {
		return errors.Wrap(err, "upserting document")
	}
	s.remember(key, &data)
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(deleteQuery), key); err != nil {
		return errors.Wrap(err, "deleting document")
	}
	s.remember(key, nil)
	return nil
}

func (s *Store) Keys(ctx context.Context) ([]string, error) {
	keys := make([]string, 0)
	if err := s.db.SelectContext(ctx, &keys, keysQuery); err != nil {
		return nil, errors.Wrap(err, "selecting keys")
	}
	return keys, nil
}

type version struct {
	Name      string `db:"name"`
	UpdatedAt string `db:"updated_at"`
}

// versions returns the updated_at of every key.
func (s *Store) versions(ctx context.Context) (map[string]string, error) {
	rows := make([]version, 0)
	if err := s.db.SelectContext(ctx, &rows, versionsQuery); err != nil {
		return nil, errors.Wrap(err, "selecting versions")
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.Name] = r.UpdatedAt
	}
	return out, nil
}

// Watch polls the table and publishes the writes made by other processes to hub until ctx is done.
// Documents written or deleted by this Store are not reported.
func (s *Store) Watch(ctx context.Context, hub *kv.Hub) error {
	seen, err := s.versions(ctx)
	if err != nil {
		return err
	}
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			// a failed poll is retried on the next tick
			if next, err := s.poll(ctx, hub, seen); err == nil {
				seen = next
			}
		}
	}
}

// poll publishes the changes since seen and returns the current versions.
func (s *Store) poll(ctx context.Context, hub *kv.Hub, seen map[string]string) (map[string]string, error) {
	current, err := s.versions(ctx)
	if err != nil {
		return nil, err
	}
	for key, updatedAt := range current {
		if prev, ok := seen[key]; ok && prev == updatedAt {
			continue
		}
		val, found, err := s.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if !found {
			continue // deleted meanwhile: reported by the next poll
		}
		data := string(val)
		if s.ownWrite(key, &data) {
			continue
		}
		hub.Publish(kv.Change{Key: key, Value: val, Remote: true})
	}
	for key := range seen {
		if _, ok := current[key]; ok || s.ownWrite(key, nil) {
			continue
		}
		hub.Publish(kv.Change{Key: key, Deleted: true, Remote: true})
	}
	return current, nil
}

func (s *Store) Close() error { return s.db.Close() }
