package store

import (
	"context"
	"errors"
	"fmt"

	"staff_records/internal/domain"

	"gorm.io/gorm"
)

// GormStore keeps records in a SQL database through gorm. The database must
// be opened with TranslateError enabled so constraint violations surface as
// gorm.ErrDuplicatedKey and gorm.ErrForeignKeyViolated.
type GormStore struct {
	accounts *gormCollection[domain.Account]
	notes    *gormCollection[domain.Note]
}

// NewGormStore wraps an open gorm connection
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		accounts: &gormCollection[domain.Account]{db: db},
		notes:    &gormCollection[domain.Note]{db: db},
	}
}

func (s *GormStore) Accounts() Collection[domain.Account] { return s.accounts }
func (s *GormStore) Notes() Collection[domain.Note]       { return s.notes }

type gormCollection[T Record] struct {
	db *gorm.DB
}

func (c *gormCollection[T]) Insert(ctx context.Context, rec *T) error {
	if err := c.db.WithContext(ctx).Create(rec).Error; err != nil {
		return translate(err, "insert")
	}
	return nil
}

func (c *gormCollection[T]) FindAll(ctx context.Context) ([]T, error) {
	var out []T
	if err := c.db.WithContext(ctx).Order("created_at asc").Order("id asc").Find(&out).Error; err != nil {
		return nil, translate(err, "find all")
	}
	return out, nil
}

func (c *gormCollection[T]) FindOne(ctx context.Context, filter Filter) (*T, error) {
	var out T
	if err := c.db.WithContext(ctx).Where(map[string]any(filter)).Take(&out).Error; err != nil {
		return nil, translate(err, "find one")
	}
	return &out, nil
}

func (c *gormCollection[T]) FindByID(ctx context.Context, id string) (*T, error) {
	var out T
	if err := c.db.WithContext(ctx).Where("id = ?", id).Take(&out).Error; err != nil {
		return nil, translate(err, "find by id")
	}
	return &out, nil
}

// Update overwrites every column of the stored record, zero values included
func (c *gormCollection[T]) Update(ctx context.Context, rec *T) error {
	res := c.db.WithContext(ctx).Model(rec).Select("*").Omit("created_at").Updates(rec)
	if res.Error != nil {
		return translate(res.Error, "update")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *gormCollection[T]) Delete(ctx context.Context, id string) error {
	res := c.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return translate(res.Error, "delete")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func translate(err error, op string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", op, ErrDuplicate)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%s: %w", op, ErrForeignKey)
	}
	return fmt.Errorf("%s: %w", op, err)
}
