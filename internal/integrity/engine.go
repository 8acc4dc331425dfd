// Package integrity holds the checks shared by the account and note managers:
// field uniqueness, dependent-record lookup and structural validation of
// request payloads. Every check reads the current state of the store.
package integrity

import (
	"context"
	"errors"
	"fmt"

	"staff_records/internal/domain"
	"staff_records/internal/store"

	"github.com/go-playground/validator/v10"
)

// Engine runs integrity checks against a store
type Engine struct {
	store    store.Store
	validate *validator.Validate
}

// NewEngine creates an engine reading from s
func NewEngine(s store.Store) *Engine {
	return &Engine{
		store:    s,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

type uniqueField struct {
	kind  domain.Kind
	field string
}

var conflictMessages = map[uniqueField]string{
	{domain.KindAccount, "username"}: "Duplicate username",
	{domain.KindNote, "title"}:       "Duplicate note title",
}

// ConflictMessage is the message reported when field of kind collides
func ConflictMessage(kind domain.Kind, field string) string {
	if msg, ok := conflictMessages[uniqueField{kind, field}]; ok {
		return msg
	}
	return "Duplicate " + field
}

// AssertUnique fails with a Conflict if a record of kind other than excludeID
// already has field equal to value. Pass an empty excludeID on create.
func (e *Engine) AssertUnique(ctx context.Context, kind domain.Kind, field string, value any, excludeID string) error {
	id, err := e.findID(ctx, kind, store.Filter{field: value})
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("check unique %s.%s: %w", kind, field, err)
	}
	if excludeID != "" && id == excludeID {
		return nil
	}
	return domain.Conflict(ConflictMessage(kind, field))
}

// AssertReferenced reports whether any note is owned by ownerID
func (e *Engine) AssertReferenced(ctx context.Context, ownerID string) (bool, error) {
	_, err := e.store.Notes().FindOne(ctx, store.Filter{"owner_id": ownerID})
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check dependents of %s: %w", ownerID, err)
	}
	return true, nil
}

// AssertRequiredFields validates payload against its `validate` struct tags.
// Any failure is reported as a ValidationError carrying message.
func (e *Engine) AssertRequiredFields(payload any, message string) error {
	if err := e.validate.Struct(payload); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return fmt.Errorf("validate payload: %w", err)
		}
		return domain.Validation(message)
	}
	return nil
}

func (e *Engine) findID(ctx context.Context, kind domain.Kind, filter store.Filter) (string, error) {
	switch kind {
	case domain.KindAccount:
		acc, err := e.store.Accounts().FindOne(ctx, filter)
		if err != nil {
			return "", err
		}
		return acc.ID, nil
	case domain.KindNote:
		note, err := e.store.Notes().FindOne(ctx, filter)
		if err != nil {
			return "", err
		}
		return note.ID, nil
	}
	return "", fmt.Errorf("unknown record kind %q", kind)
}
