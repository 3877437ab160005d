// ABOUTME: Typed whole-collection and singleton access over the key-value store
// ABOUTME: Read-modify-write runs under a per-key mutex; corrupt documents read as empty

package records

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/2389/schoolbook/internal/store"
)

// Collection gives typed access to the sequence stored under one key.
type Collection[T any] struct {
	repos *Repositories
	key   store.Key
}

// NewCollection binds a collection of T to key.
func NewCollection[T any](r *Repositories, key store.Key) *Collection[T] {
	return &Collection[T]{repos: r, key: key}
}

// Key returns the store key backing the collection.
func (c *Collection[T]) Key() store.Key {
	return c.key
}

// GetAll returns every item in insertion order. An absent or unreadable
// document yields an empty slice.
func (c *Collection[T]) GetAll(ctx context.Context) ([]T, error) {
	return c.load(ctx)
}

// SaveAll replaces the whole collection.
func (c *Collection[T]) SaveAll(ctx context.Context, items []T) error {
	unlock := c.repos.lock(c.key)
	defer unlock()
	return c.save(ctx, items)
}

// Update reads the collection, applies fn, and writes the result back while
// holding the key's lock. An error from fn aborts without writing.
func (c *Collection[T]) Update(ctx context.Context, fn func(items []T) ([]T, error)) error {
	unlock := c.repos.lock(c.key)
	defer unlock()

	items, err := c.load(ctx)
	if err != nil {
		return err
	}
	updated, err := fn(items)
	if err != nil {
		return err
	}
	return c.save(ctx, updated)
}

func (c *Collection[T]) load(ctx context.Context) ([]T, error) {
	raw, err := c.repos.store.Get(ctx, c.key)
	if errors.Is(err, store.ErrAbsent) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", c.key, err)
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		c.repos.logger.Warn("unreadable collection treated as empty", "key", c.key, "error", err)
		return []T{}, nil
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (c *Collection[T]) save(ctx context.Context, items []T) error {
	raw, err := encodeCollection(items)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", c.key, err)
	}
	if err := c.repos.store.Put(ctx, c.key, raw); err != nil {
		return fmt.Errorf("writing %s: %w", c.key, err)
	}
	c.repos.logger.Debug("saved collection", "key", c.key, "count", len(items))
	return nil
}

func encodeCollection[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	return json.Marshal(items)
}

// Document gives typed access to a singleton stored under one key.
type Document[T any] struct {
	repos *Repositories
	key   store.Key
}

// NewDocument binds a singleton of T to key.
func NewDocument[T any](r *Repositories, key store.Key) *Document[T] {
	return &Document[T]{repos: r, key: key}
}

// Get returns the stored value, or nil when absent or unreadable.
func (d *Document[T]) Get(ctx context.Context) (*T, error) {
	raw, err := d.repos.store.Get(ctx, d.key)
	if errors.Is(err, store.ErrAbsent) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", d.key, err)
	}

	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		d.repos.logger.Warn("unreadable document treated as absent", "key", d.key, "error", err)
		return nil, nil
	}
	return &v, nil
}

// Put replaces the stored value.
func (d *Document[T]) Put(ctx context.Context, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", d.key, err)
	}

	unlock := d.repos.lock(d.key)
	defer unlock()

	if err := d.repos.store.Put(ctx, d.key, raw); err != nil {
		return fmt.Errorf("writing %s: %w", d.key, err)
	}
	return nil
}

// Clear removes the stored value.
func (d *Document[T]) Clear(ctx context.Context) error {
	unlock := d.repos.lock(d.key)
	defer unlock()

	if err := d.repos.store.Delete(ctx, d.key); err != nil {
		return fmt.Errorf("clearing %s: %w", d.key, err)
	}
	return nil
}
