package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"staff_records/internal/domain"
)

// MemoryStore is an in-process Store. It enforces the same constraints as the
// SQL schema: unique usernames, unique note titles, note owners must exist and
// accounts that still own notes cannot be deleted.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts *memCollection[domain.Account]
	notes    *memCollection[domain.Note]
}

// NewMemoryStore returns an empty store
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{}
	s.accounts = &memCollection[domain.Account]{
		mu:     &s.mu,
		unique: []string{"username"},
		onDelete: func(id string) error {
			if s.notes.anyLocked("owner_id", id) {
				return ErrForeignKey
			}
			return nil
		},
	}
	s.notes = &memCollection[domain.Note]{
		mu:     &s.mu,
		unique: []string{"title"},
		onWrite: func(n *domain.Note) error {
			if _, ok := s.accounts.rows[n.OwnerID]; !ok {
				return ErrForeignKey
			}
			return nil
		},
	}
	return s
}

func (s *MemoryStore) Accounts() Collection[domain.Account] { return s.accounts }
func (s *MemoryStore) Notes() Collection[domain.Note]       { return s.notes }

type memCollection[T Record] struct {
	mu       *sync.RWMutex
	rows     map[string]T
	order    []string
	unique   []string
	onWrite  func(*T) error
	onDelete func(id string) error
}

func (c *memCollection[T]) Insert(_ context.Context, rec *T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := (*rec).RecordID()
	if _, ok := c.rows[id]; ok {
		return fmt.Errorf("insert: %w", ErrDuplicate)
	}
	if err := c.check(rec, id); err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	stamp(rec, true)
	if c.rows == nil {
		c.rows = make(map[string]T)
	}
	c.rows[id] = *rec
	c.order = append(c.order, id)
	return nil
}

func (c *memCollection[T]) FindAll(_ context.Context) ([]T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.rows[id])
	}
	return out, nil
}

func (c *memCollection[T]) FindOne(_ context.Context, filter Filter) (*T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, id := range c.order {
		rec := c.rows[id]
		if matches(rec, filter) {
			return &rec, nil
		}
	}
	return nil, ErrNotFound
}

func (c *memCollection[T]) FindByID(_ context.Context, id string) (*T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rec, ok := c.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (c *memCollection[T]) Update(_ context.Context, rec *T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := (*rec).RecordID()
	if _, ok := c.rows[id]; !ok {
		return ErrNotFound
	}
	if err := c.check(rec, id); err != nil {
		return fmt.Errorf("update: %w", err)
	}
	stamp(rec, false)
	c.rows[id] = *rec
	return nil
}

func (c *memCollection[T]) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.rows[id]; !ok {
		return ErrNotFound
	}
	if c.onDelete != nil {
		if err := c.onDelete(id); err != nil {
			return fmt.Errorf("delete: %w", err)
		}
	}
	delete(c.rows, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// check runs the unique and reference constraints. Caller holds the lock.
func (c *memCollection[T]) check(rec *T, id string) error {
	for _, col := range c.unique {
		val := (*rec).Column(col)
		for otherID, other := range c.rows {
			if otherID != id && other.Column(col) == val {
				return ErrDuplicate
			}
		}
	}
	if c.onWrite != nil {
		return c.onWrite(rec)
	}
	return nil
}

// anyLocked reports whether some row has col == val. Caller holds the lock.
func (c *memCollection[T]) anyLocked(col string, val any) bool {
	for _, rec := range c.rows {
		if rec.Column(col) == val {
			return true
		}
	}
	return false
}

func matches[T Record](rec T, filter Filter) bool {
	for col, want := range filter {
		if rec.Column(col) != want {
			return false
		}
	}
	return true
}

// stamp sets the gorm-style timestamps on the known models
func stamp[T Record](rec *T, created bool) {
	now := time.Now()
	switch r := any(rec).(type) {
	case *domain.Account:
		if created && r.CreatedAt.IsZero() {
			r.CreatedAt = now
		}
		r.UpdatedAt = now
	case *domain.Note:
		if created && r.CreatedAt.IsZero() {
			r.CreatedAt = now
		}
		r.UpdatedAt = now
	}
}
