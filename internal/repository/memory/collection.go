// Package memory implements the repository contracts on top of process memory.
// Each repository serializes writers behind one RWMutex and hands out copies,
// so concurrent requests never observe or corrupt a half-applied edit.
package memory

import (
	"context"
	"sync"

	"github.com/maxviazov/pokemon-battle-service/internal/repository"
)

// collection is an id-ordered slice guarded by a RWMutex with sequential id assignment.
type collection[T any] struct {
	mu     sync.RWMutex
	items  []T
	nextID int64

	idOf  func(T) int64
	setID func(*T, int64)
	clone func(T) T
}

func newCollection[T any](idOf func(T) int64, setID func(*T, int64), clone func(T) T) *collection[T] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	return &collection[T]{nextID: 1, idOf: idOf, setID: setID, clone: clone}
}

func (c *collection[T]) insert(ctx context.Context, v T) (T, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.insertLocked(v), nil
}

// insertLocked assigns the next id; callers hold the write lock.
func (c *collection[T]) insertLocked(v T) T {
	c.setID(&v, c.nextID)
	c.nextID++
	c.items = append(c.items, c.clone(v))
	return c.clone(v)
}

func (c *collection[T]) get(ctx context.Context, id int64) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	i := c.indexLocked(id)
	if i < 0 {
		return zero, repository.ErrNotFound
	}
	return c.clone(c.items[i]), nil
}

// find returns the first item matching pred in id order.
func (c *collection[T]) find(ctx context.Context, pred func(T) bool) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, it := range c.items {
		if pred(it) {
			return c.clone(it), nil
		}
	}
	return zero, repository.ErrNotFound
}

// filter copies every item matching pred; a nil pred selects everything.
func (c *collection[T]) filter(ctx context.Context, pred func(T) bool) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, 0, len(c.items))
	for _, it := range c.items {
		if pred == nil || pred(it) {
			out = append(out, c.clone(it))
		}
	}
	return out, nil
}

// update applies fn to a scratch copy and commits it only when fn succeeds.
func (c *collection[T]) update(ctx context.Context, id int64, fn repository.Mutation[T]) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexLocked(id)
	if i < 0 {
		return zero, repository.ErrNotFound
	}
	scratch := c.clone(c.items[i])
	if err := fn(&scratch); err != nil {
		return zero, err
	}
	// the id is owned by the repository
	c.setID(&scratch, id)
	c.items[i] = scratch
	return c.clone(scratch), nil
}

func (c *collection[T]) remove(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexLocked(id)
	if i < 0 {
		return repository.ErrNotFound
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return nil
}

func (c *collection[T]) indexLocked(id int64) int {
	for i, it := range c.items {
		if c.idOf(it) == id {
			return i
		}
	}
	return -1
}
