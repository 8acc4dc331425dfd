// Package store is the record store used by the managers: one collection per
// record kind, equality filters only, and the uniqueness and restrict-delete
// constraints enforced below the managers.
package store

import (
	"context"
	"errors"

	"staff_records/internal/domain"
)

// Store errors. Implementations translate their driver errors into these.
var (
	ErrNotFound   = errors.New("record not found")
	ErrDuplicate  = errors.New("duplicate key")
	ErrForeignKey = errors.New("foreign key violation")
)

// Filter is a set of column = value predicates joined with AND
type Filter map[string]any

// Record is implemented by every stored model
type Record interface {
	RecordID() string
	Column(name string) any
}

// Collection is the set of operations supported for one record kind
type Collection[T Record] interface {
	Insert(ctx context.Context, rec *T) error
	FindAll(ctx context.Context) ([]T, error)
	FindOne(ctx context.Context, filter Filter) (*T, error)
	FindByID(ctx context.Context, id string) (*T, error)
	Update(ctx context.Context, rec *T) error
	Delete(ctx context.Context, id string) error
}

// Store gives access to the account and note collections
type Store interface {
	Accounts() Collection[domain.Account]
	Notes() Collection[domain.Note]
}
