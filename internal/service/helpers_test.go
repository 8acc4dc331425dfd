package service

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"staff_records/internal/domain"
	"staff_records/internal/integrity"
	"staff_records/internal/store"
	"staff_records/internal/utils"

	"github.com/stretchr/testify/require"
)

// fakeHasher is a salted, non-cryptographic hasher for fast tests
type fakeHasher struct {
	calls atomic.Int64
}

func (h *fakeHasher) Hash(plaintext string) (string, error) {
	if len(plaintext) > utils.MaxPasswordBytes {
		return "", utils.ErrPasswordTooLong
	}
	n := h.calls.Add(1)
	return fmt.Sprintf("$fake$%d$%s", n, plaintext), nil
}

func fakePlaintext(digest string) string {
	parts := strings.SplitN(digest, "$", 4)
	return parts[len(parts)-1]
}

type fixture struct {
	store     *store.MemoryStore
	employees *AccountManager
	users     *AccountManager
	notes     *NoteManager
	hasher    *fakeHasher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := store.NewMemoryStore()
	rules := integrity.NewEngine(s)
	locks := utils.NewLocalLocker(time.Second)
	hasher := &fakeHasher{}
	return &fixture{
		store:     s,
		employees: NewAccountManager(AccountScope{Label: "employee", AllowedRoles: []string{"employee", "manager", "admin"}}, s, rules, hasher, locks),
		users:     NewAccountManager(AccountScope{Label: "user", AllowedRoles: []string{"member", "manager", "admin"}}, s, rules, hasher, locks),
		notes:     NewNoteManager(s, rules, locks),
		hasher:    hasher,
	}
}

func (f *fixture) createEmployee(t *testing.T, username string) domain.Account {
	t.Helper()
	conf, err := f.employees.Create(context.Background(), CreateAccountInput{
		Username: username,
		Password: "secret1",
		Roles:    []string{"employee"},
	})
	require.NoError(t, err)
	acc, err := f.store.Accounts().FindByID(context.Background(), conf.ID)
	require.NoError(t, err)
	return *acc
}

func (f *fixture) createNote(t *testing.T, owner, title string) domain.Note {
	t.Helper()
	conf, err := f.notes.Create(context.Background(), CreateNoteInput{Owner: owner, Title: title, Text: "body"})
	require.NoError(t, err)
	note, err := f.store.Notes().FindByID(context.Background(), conf.ID)
	require.NoError(t, err)
	return *note
}

func boolPtr(b bool) *bool { return &b }
