package service

import (
	"context"
	"errors"
	"fmt"

	"staff_records/internal/domain"
	"staff_records/internal/integrity"
	"staff_records/internal/store"
	"staff_records/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CreateNoteInput is the payload of a note creation request
type CreateNoteInput struct {
	Owner string `json:"owner" validate:"required"`
	Title string `json:"title" validate:"required"`
	Text  string `json:"text" validate:"required"`
}

// UpdateNoteInput is the payload of a note update request
type UpdateNoteInput struct {
	ID        string `json:"id" validate:"required"`
	Owner     string `json:"owner" validate:"required"`
	Title     string `json:"title" validate:"required"`
	Text      string `json:"text" validate:"required"`
	Completed *bool  `json:"completed" validate:"required"`
}

// NoteManager implements CRUD over notes
type NoteManager struct {
	store store.Store
	rules *integrity.Engine
	locks utils.KeyLocker
}

// NewNoteManager wires a note manager
func NewNoteManager(s store.Store, rules *integrity.Engine, locks utils.KeyLocker) *NoteManager {
	return &NoteManager{store: s, rules: rules, locks: locks}
}

func titleKey(title string) string { return "note:title:" + title }

var errNoteNotFound = domain.NotFound("Note not found")

// ListAll returns every note with its owner's username
func (m *NoteManager) ListAll(ctx context.Context) ([]domain.NoteView, error) {
	notes, err := m.store.Notes().FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	if len(notes) == 0 {
		return nil, domain.NotFound("No notes found")
	}

	usernames := make(map[string]string)
	views := make([]domain.NoteView, len(notes))
	for i, n := range notes {
		name, ok := usernames[n.OwnerID]
		if !ok {
			owner, err := m.store.Accounts().FindByID(ctx, n.OwnerID)
			switch {
			case err == nil:
				name = owner.Username
			case !errors.Is(err, store.ErrNotFound):
				return nil, fmt.Errorf("load note owner %s: %w", n.OwnerID, err)
			}
			usernames[n.OwnerID] = name
		}
		views[i] = domain.NoteView{Note: n, Username: name}
	}
	return views, nil
}

// GetOne returns a single note
func (m *NoteManager) GetOne(ctx context.Context, id string) (domain.Note, error) {
	if id == "" {
		return domain.Note{}, domain.Validation("Note ID required")
	}
	note, err := m.load(ctx, id)
	if err != nil {
		return domain.Note{}, err
	}
	return *note, nil
}

// Create stores a new note owned by an existing account
func (m *NoteManager) Create(ctx context.Context, in CreateNoteInput) (Confirmation, error) {
	if err := m.rules.AssertRequiredFields(in, "All fields are required"); err != nil {
		return Confirmation{}, err
	}

	release, err := m.locks.Lock(ctx, dependentsKey(in.Owner), titleKey(in.Title))
	if err != nil {
		return Confirmation{}, fmt.Errorf("create note: %w", err)
	}
	defer release()

	if err := m.assertOwner(ctx, in.Owner); err != nil {
		return Confirmation{}, err
	}
	if err := m.rules.AssertUnique(ctx, domain.KindNote, "title", in.Title, ""); err != nil {
		return Confirmation{}, err
	}

	note := &domain.Note{
		ID:      uuid.NewString(),
		OwnerID: in.Owner,
		Title:   in.Title,
		Text:    in.Text,
	}
	if err := m.store.Notes().Insert(ctx, note); err != nil {
		return Confirmation{}, m.writeError(err, "insert note")
	}

	m.log(note).Info("Note created")
	return Confirmation{Message: "New note created", ID: note.ID}, nil
}

// Update overwrites every field of an existing note
func (m *NoteManager) Update(ctx context.Context, in UpdateNoteInput) (Confirmation, error) {
	if err := m.rules.AssertRequiredFields(in, "All fields are required"); err != nil {
		return Confirmation{}, err
	}

	note, err := m.load(ctx, in.ID)
	if err != nil {
		return Confirmation{}, err
	}

	release, err := m.locks.Lock(ctx, dependentsKey(in.Owner), titleKey(in.Title))
	if err != nil {
		return Confirmation{}, fmt.Errorf("update note: %w", err)
	}
	defer release()

	if err := m.assertOwner(ctx, in.Owner); err != nil {
		return Confirmation{}, err
	}
	if err := m.rules.AssertUnique(ctx, domain.KindNote, "title", in.Title, note.ID); err != nil {
		return Confirmation{}, err
	}

	note.OwnerID = in.Owner
	note.Title = in.Title
	note.Text = in.Text
	note.Completed = *in.Completed
	if err := m.store.Notes().Update(ctx, note); err != nil {
		return Confirmation{}, m.writeError(err, "update note")
	}

	m.log(note).Info("Note updated")
	return Confirmation{Message: fmt.Sprintf("'%s' updated", note.Title), ID: note.ID}, nil
}

// Delete removes a note. Notes have no dependents so this is never refused.
func (m *NoteManager) Delete(ctx context.Context, id string) (Confirmation, error) {
	if id == "" {
		return Confirmation{}, domain.Validation("Note ID required")
	}
	note, err := m.load(ctx, id)
	if err != nil {
		return Confirmation{}, err
	}
	if err := m.store.Notes().Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Confirmation{}, errNoteNotFound
		}
		return Confirmation{}, fmt.Errorf("delete note: %w", err)
	}

	m.log(note).Info("Note deleted")
	return Confirmation{Message: fmt.Sprintf("Note '%s' with ID %s deleted", note.Title, note.ID), ID: note.ID}, nil
}

func (m *NoteManager) assertOwner(ctx context.Context, ownerID string) error {
	_, err := m.store.Accounts().FindByID(ctx, ownerID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.NotFound("Owner account not found")
	}
	if err != nil {
		return fmt.Errorf("load note owner %s: %w", ownerID, err)
	}
	return nil
}

func (m *NoteManager) load(ctx context.Context, id string) (*domain.Note, error) {
	note, err := m.store.Notes().FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, errNoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load note %s: %w", id, err)
	}
	return note, nil
}

// writeError maps store constraint violations on insert and update
func (m *NoteManager) writeError(err error, op string) error {
	switch {
	case errors.Is(err, store.ErrDuplicate):
		return domain.Conflict(integrity.ConflictMessage(domain.KindNote, "title"))
	case errors.Is(err, store.ErrForeignKey):
		return domain.NotFound("Owner account not found")
	case errors.Is(err, store.ErrNotFound):
		return errNoteNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (m *NoteManager) log(n *domain.Note) *logrus.Entry {
	return logrus.WithFields(logrus.Fields{
		"note_id":   n.ID,
		"owner_id":  n.OwnerID,
		"title":     n.Title,
		"completed": n.Completed,
	})
}
