// Package collection provides the ordered, id-keyed store every story entity
// kind is kept in. A Collection is not safe for concurrent use; one editing
// session owns it.
package collection

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrNilItem   = errors.New("nil item")
	ErrIDChanged = errors.New("id changed after save")
)

type Identifiable interface {
	comparable
	EntityID() string
	// AssignID sets the id only when none is set yet.
	AssignID(id string)
}

type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	kind := e.Kind
	if kind == "" {
		kind = "item"
	}
	return fmt.Sprintf("%s %q not found", kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// Reader is the read-only view of a Collection.
type Reader[T Identifiable] interface {
	Get(id string) (T, bool)
	GetMany(ids []string) []T
	GetOrFail(id, kind string) (T, error)
	Has(id string) bool
	Items() []T
	IDs() []string
	Len() int
}

type Collection[T Identifiable] struct {
	items []T
	ids   []string
	index map[string]int
	slots map[T]int
	newID func() string
}

type Option func(*options)

type options struct {
	newID func() string
}

// WithIDGenerator replaces the UUID generator, mainly so tests can force
// collisions.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		o.newID = fn
	}
}

func New[T Identifiable](opts ...Option) *Collection[T] {
	o := options{newID: uuid.NewString}
	for _, opt := range opts {
		opt(&o)
	}
	return &Collection[T]{
		index: make(map[string]int),
		slots: make(map[T]int),
		newID: o.newID,
	}
}

func (c *Collection[T]) Get(id string) (T, bool) {
	if c == nil {
		var zero T
		return zero, false
	}
	pos, ok := c.index[id]
	if !ok {
		var zero T
		return zero, false
	}
	return c.items[pos], true
}

// GetMany returns one slot per requested id, in order. Missing ids leave the
// zero value in their slot; the result is never shorter than ids.
func (c *Collection[T]) GetMany(ids []string) []T {
	out := make([]T, len(ids))
	for i, id := range ids {
		if item, ok := c.Get(id); ok {
			out[i] = item
		}
	}
	return out
}

func (c *Collection[T]) GetOrFail(id, kind string) (T, error) {
	item, ok := c.Get(id)
	if !ok {
		return item, &NotFoundError{Kind: kind, ID: id}
	}
	return item, nil
}

func (c *Collection[T]) Has(id string) bool {
	if c == nil {
		return false
	}
	_, ok := c.index[id]
	return ok
}

// Save stores item and returns its id. An item without an id gets a fresh
// one; an item whose id is already present replaces the stored item at the
// same position. An item already stored under another id is rejected with
// ErrIDChanged.
func (c *Collection[T]) Save(item T) (string, error) {
	var zero T
	if item == zero {
		return "", ErrNilItem
	}

	id := item.EntityID()
	if pos, ok := c.slots[item]; ok && c.ids[pos] != id {
		return "", fmt.Errorf("%q saved as %q: %w", id, c.ids[pos], ErrIDChanged)
	}
	if id == "" {
		id = c.uniqueID()
		item.AssignID(id)
	}

	if pos, ok := c.index[id]; ok {
		delete(c.slots, c.items[pos])
		c.items[pos] = item
		c.slots[item] = pos
		return id, nil
	}

	c.index[id] = len(c.items)
	c.slots[item] = len(c.items)
	c.items = append(c.items, item)
	c.ids = append(c.ids, id)
	return id, nil
}

// SaveMany saves items in order and stops at the first error. Items saved
// before the failure stay saved.
func (c *Collection[T]) SaveMany(items []T) ([]string, error) {
	ids := make([]string, 0, len(items))
	for i, item := range items {
		id, err := c.Save(item)
		if err != nil {
			return ids, fmt.Errorf("saving item %d: %w", i, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Remove deletes the item with id and reports whether it was present.
func (c *Collection[T]) Remove(id string) bool {
	pos, ok := c.index[id]
	if !ok {
		return false
	}
	delete(c.slots, c.items[pos])
	c.items = append(c.items[:pos], c.items[pos+1:]...)
	c.ids = append(c.ids[:pos], c.ids[pos+1:]...)
	delete(c.index, id)
	for i := pos; i < len(c.items); i++ {
		c.index[c.ids[i]] = i
		c.slots[c.items[i]] = i
	}
	return true
}

func (c *Collection[T]) Items() []T {
	if c == nil {
		return nil
	}
	return append([]T(nil), c.items...)
}

func (c *Collection[T]) IDs() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.ids...)
}

func (c *Collection[T]) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// uniqueID loops until the generator yields an id not already in use.
func (c *Collection[T]) uniqueID() string {
	for {
		id := c.newID()
		if id == "" {
			continue
		}
		if _, exists := c.index[id]; !exists {
			return id
		}
	}
}
