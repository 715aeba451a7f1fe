package kv

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/pathways/core"
)

// Adapter stores JSON documents in a Store.
type Adapter struct {
	store  Store
	hub    *Hub
	logger core.Logger
}

func NewAdapter(store Store, logger core.Logger) *Adapter {
	return &Adapter{
		store:  store,
		hub:    NewHub(),
		logger: logger,
	}
}

func (a *Adapter) Hub() *Hub { return a.hub }

func (a *Adapter) Store() Store { return a.store }

// Get decodes the document stored under key into out.
//
// When key is absent, defaultValue is written under key and decoded into out, so the
// default only ever applies on first access. A stored document that is not valid JSON
// is left untouched and out receives defaultValue.
func (a *Adapter) Get(ctx context.Context, key string, defaultValue, out interface{}) error {
	if key == "" {
		return ErrEmptyKey
	}
	seed, err := json.Marshal(defaultValue)
	if err != nil {
		return errors.Wrapf(err, "encoding default of %q", key)
	}

	data, ok, err := a.store.Get(ctx, key)
	if err != nil {
		return errors.Wrapf(err, "reading %q", key)
	}

	if !ok {
		if err = a.write(ctx, key, seed); err != nil {
			// the default is still served; seeding is retried on next access
			a.logger.Error(fmt.Sprintf("seeding %q: %v", key, err), err)
		}
		return errors.Wrapf(json.Unmarshal(seed, out), "decoding default of %q", key)
	}

	if err = json.Unmarshal(data, out); err != nil {
		a.logger.Warn(fmt.Sprintf("malformed document under %q, serving default", key), err)
		return errors.Wrapf(json.Unmarshal(seed, out), "decoding default of %q", key)
	}
	return nil
}

// Save writes value under key, replacing any previous document.
func (a *Adapter) Save(ctx context.Context, key string, value interface{}) error {
	if key == "" {
		return ErrEmptyKey
	}
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "encoding %q", key)
	}
	return a.write(ctx, key, data)
}

// Raw returns the bytes stored under key as they are, without seeding.
func (a *Adapter) Raw(ctx context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, ErrEmptyKey
	}
	data, ok, err := a.store.Get(ctx, key)
	return data, ok, errors.Wrapf(err, "reading %q", key)
}

// SetRaw writes data under key. data must be valid JSON.
func (a *Adapter) SetRaw(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	if !json.Valid(data) {
		return core.NewValidationError(errors.Errorf("value of %q is not valid JSON", key))
	}
	return a.write(ctx, key, data)
}

func (a *Adapter) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if err := a.store.Delete(ctx, key); err != nil {
		return errors.Wrap(ErrNotSaved, fmt.Sprintf("deleting %q: %v", key, err))
	}
	a.hub.Publish(Change{Key: key, Deleted: true})
	return nil
}

func (a *Adapter) Keys(ctx context.Context) ([]string, error) {
	keys, err := a.store.Keys(ctx)
	return keys, errors.Wrap(err, "listing keys")
}

func (a *Adapter) write(ctx context.Context, key string, data []byte) error {
	if err := a.store.Set(ctx, key, data); err != nil {
		return &saveError{key: key, err: err}
	}
	a.hub.Publish(Change{Key: key, Value: data})
	return nil
}

// saveError keeps the backend failure while matching ErrNotSaved via errors.Cause.
type saveError struct {
	key string
	err error
}

func (e *saveError) Error() string {
	return fmt.Sprintf("writing %q: %v: %v", e.key, ErrNotSaved, e.err)
}

func (e *saveError) Cause() error { return ErrNotSaved }

func (e *saveError) Unwrap() error { return e.err }

// IsNotSaved reports whether err means a write did not reach the store.
func IsNotSaved(err error) bool {
	return errors.Cause(err) == ErrNotSaved
}
