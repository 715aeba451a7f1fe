package inmemkv

import (
	"context"
	"sort"
	"sync"

	"github.com/trezcool/pathways/core/kv"
)

// Store keeps documents in memory.
// With a quota, writes that would grow the total size of keys and values above it fail with kv.ErrQuotaExceeded.
type Store struct {
	mutex sync.RWMutex
	table map[string][]byte
	size  int
	quota int
}

var _ kv.Store = (*Store)(nil) // interface compliance check

// Open returns an empty Store. quota <= 0 means unlimited.
func Open(quota int) *Store {
	return &Store{
		table: make(map[string][]byte),
		quota: quota,
	}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	val, ok := s.table[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(val))
	copy(cp, val)
	return cp, true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	newSize := s.size + len(value)
	if old, ok := s.table[key]; ok {
		newSize -= len(old)
	} else {
		newSize += len(key)
	}
	if s.quota > 0 && newSize > s.quota {
		return kv.ErrQuotaExceeded
	}

	cp := make([]byte, len(value))
	copy(cp, value)
	s.table[key] = cp
	s.size = newSize
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if old, ok := s.table[key]; ok {
		s.size -= len(key) + len(old)
		delete(s.table, key)
	}
	return nil
}

func (s *Store) Keys(_ context.Context) ([]string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	keys := make([]string, 0, len(s.table))
	for k := range s.table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Size returns the number of bytes used by keys and values.
func (s *Store) Size() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.size
}

func (s *Store) Close() error { return nil }
