// Package dashboard implements the list/modal controllers behind every entity management screen:
// a collection is loaded once (seeded when absent), filtered in memory and mutated through
// whole-collection saves of a freshly read copy.
package dashboard

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/pathways/core"
	"github.com/trezcool/pathways/core/catalog"
	"github.com/trezcool/pathways/core/kv"
)

// Collection is the persisted side of a controller, eg. a *namespace.Namespace.
type Collection[T any] interface {
	Key() string
	Get(ctx context.Context, defaultValue []T) ([]T, error)
	Save(ctx context.Context, coll []T) error
}

// Controller keeps an in-memory view of a collection in lockstep with its persisted state:
// a mutation only becomes visible once it has been saved.
type Controller[T catalog.Record[T]] struct {
	coll   Collection[T]
	seed   []T
	logger core.Logger

	mu      sync.RWMutex
	items   []T
	mounted bool
}

func New[T catalog.Record[T]](coll Collection[T], seed []T, logger core.Logger) *Controller[T] {
	return &Controller[T]{coll: coll, seed: seed, logger: logger}
}

func (c *Controller[T]) Key() string { return c.coll.Key() }

// Mount (re)loads the collection, seeding it on first access.
func (c *Controller[T]) Mount(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mount(ctx)
}

func (c *Controller[T]) mount(ctx context.Context) error {
	items, err := c.coll.Get(ctx, c.seed)
	if err != nil {
		return errors.Wrapf(err, "mounting %s", c.coll.Key())
	}
	c.items = items
	c.mounted = true
	return nil
}

// reload re-reads the collection before a mutation so that writes made by other
// processes since the last mount are not overwritten. c.mu must be held for writing.
func (c *Controller[T]) reload(ctx context.Context) error {
	return c.mount(ctx)
}

// ensure mounts the controller if needed. c.mu must be held for writing.
func (c *Controller[T]) ensure(ctx context.Context) error {
	if c.mounted {
		return nil
	}
	return c.mount(ctx)
}

func (c *Controller[T]) snapshot(ctx context.Context) ([]T, error) {
	c.mu.RLock()
	if c.mounted {
		items := append([]T(nil), c.items...)
		c.mu.RUnlock()
		return items, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensure(ctx); err != nil {
		return nil, err
	}
	return append([]T(nil), c.items...), nil
}

// List returns a copy of the whole collection in display order.
func (c *Controller[T]) List(ctx context.Context) ([]T, error) {
	items, err := c.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Filter returns the records matching q, sorted by orderings (display order when none).
func (c *Controller[T]) Filter(ctx context.Context, q catalog.Query, orderings ...core.Ordering) ([]T, error) {
	items, err := c.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	q.Clean()
	matches := make([]T, 0, len(items))
	for _, item := range items {
		if item.Matches(q) {
			matches = append(matches, item)
		}
	}
	Sort(matches, orderings...)
	return matches, nil
}

// Get returns the record with the given id.
func (c *Controller[T]) Get(ctx context.Context, id int64) (T, bool, error) {
	var zero T
	items, err := c.snapshot(ctx)
	if err != nil {
		return zero, false, err
	}
	if i := indexOf(items, id); i >= 0 {
		return items[i], true, nil
	}
	return zero, false, nil
}

// Create gives rec a new id, appends it and saves the collection.
func (c *Controller[T]) Create(ctx context.Context, rec T) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	if err := c.reload(ctx); err != nil {
		return zero, err
	}
	rec = rec.WithID(core.NextID())
	if err := conflicts(rec, c.items); err != nil {
		return zero, err
	}
	next := make([]T, 0, len(c.items)+1)
	next = append(next, c.items...)
	next = append(next, rec)
	if err := c.save(ctx, next); err != nil {
		return zero, err
	}
	return rec, nil
}

// Update replaces the record with the given id by edit(record) and saves the collection.
// It is a no-op (found=false) when no such record exists anymore.
func (c *Controller[T]) Update(ctx context.Context, id int64, edit func(orig T) T) (T, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	if err := c.reload(ctx); err != nil {
		return zero, false, err
	}
	i := indexOf(c.items, id)
	if i < 0 {
		return zero, false, nil
	}
	orig := c.items[i]
	rec := edit(orig).WithID(id)
	others := make([]T, 0, len(c.items)-1)
	others = append(others, c.items[:i]...)
	others = append(others, c.items[i+1:]...)
	// a record already clashing before the edit is not blocked from other changes
	if conflicts(orig, others) == nil {
		if err := conflicts(rec, others); err != nil {
			return zero, true, err
		}
	}
	next := append([]T(nil), c.items...)
	next[i] = rec
	if err := c.save(ctx, next); err != nil {
		return zero, true, err
	}
	return rec, true, nil
}

// Delete removes the record with the given id and saves the collection.
// Nothing happens until the deletion is confirmed. An unknown id is a no-op (found=false).
func (c *Controller[T]) Delete(ctx context.Context, id int64, confirmed bool) (bool, error) {
	if !confirmed {
		return false, core.ErrConfirmationRequired
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.reload(ctx); err != nil {
		return false, err
	}
	if indexOf(c.items, id) < 0 {
		return false, nil
	}
	next := make([]T, 0, len(c.items))
	for _, item := range c.items {
		if item.RecordID() != id {
			next = append(next, item)
		}
	}
	if err := c.save(ctx, next); err != nil {
		return true, err
	}
	return true, nil
}

// save persists next and makes it the in-memory view. c.mu must be held for writing.
func (c *Controller[T]) save(ctx context.Context, next []T) error {
	if err := c.coll.Save(ctx, next); err != nil {
		return errors.Wrapf(err, "saving %s", c.coll.Key())
	}
	c.items = next
	return nil
}

// Watch keeps the in-memory view in sync with changes made by other writers until ctx is done.
// The subscription is made before Watch returns; changes are then handled in the background.
// Changes are not applied from their payload: the collection is re-read, so a late notification
// of an older save cannot roll the view back.
func (c *Controller[T]) Watch(ctx context.Context, hub *kv.Hub) {
	changes, cancel := hub.Subscribe(c.coll.Key())
	go c.run(ctx, changes, cancel)
}

func (c *Controller[T]) run(ctx context.Context, changes <-chan kv.Change, cancel func()) {
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-changes:
			if !ok {
				return
			}
			c.apply(ctx, change)
		}
	}
}

func (c *Controller[T]) apply(ctx context.Context, change kv.Change) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if change.Deleted {
		// reseeded on next access
		c.items = nil
		c.mounted = false
		return
	}
	if err := c.mount(ctx); err != nil {
		c.logger.Warn("resync failed", err, map[string]interface{}{"key": change.Key, "remote": change.Remote})
	}
}

// conflicts reports whether rec clashes with others, for records with uniqueness rules.
func conflicts[T catalog.Record[T]](rec T, others []T) error {
	if u, ok := interface{}(rec).(catalog.Unique[T]); ok {
		return u.Conflicts(others)
	}
	return nil
}

func indexOf[T catalog.Record[T]](items []T, id int64) int {
	for i, item := range items {
		if item.RecordID() == id {
			return i
		}
	}
	return -1
}
