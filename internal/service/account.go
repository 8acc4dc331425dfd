package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"staff_records/internal/domain"
	"staff_records/internal/integrity"
	"staff_records/internal/store"
	"staff_records/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AccountScope is the route family an AccountManager serves
type AccountScope struct {
	Label        string   // "employee" or "user", used in messages
	AllowedRoles []string // Roles this scope may assign and act on, empty allows any
}

// CreateAccountInput is the payload of an account creation request
type CreateAccountInput struct {
	Username string   `json:"username" validate:"required"`
	Password string   `json:"password" validate:"required"`
	Roles    []string `json:"roles" validate:"required,min=1,dive,required"`
}

// UpdateAccountInput is the payload of an account update request. An empty
// Password keeps the stored digest.
type UpdateAccountInput struct {
	ID       string   `json:"id" validate:"required"`
	Username string   `json:"username" validate:"required"`
	Roles    []string `json:"roles" validate:"required,min=1,dive,required"`
	Active   *bool    `json:"active" validate:"required"`
	Password string   `json:"password"`
}

// Confirmation acknowledges a successful mutation
type Confirmation struct {
	Message  string `json:"message"`
	ID       string `json:"id,omitempty"`
	Username string `json:"username,omitempty"`
}

// AccountManager implements CRUD over principal accounts
type AccountManager struct {
	scope  AccountScope
	store  store.Store
	rules  *integrity.Engine
	hasher utils.PasswordHasher
	locks  utils.KeyLocker
}

// NewAccountManager wires a manager for one scope
func NewAccountManager(scope AccountScope, s store.Store, rules *integrity.Engine, hasher utils.PasswordHasher, locks utils.KeyLocker) *AccountManager {
	return &AccountManager{scope: scope, store: s, rules: rules, hasher: hasher, locks: locks}
}

func usernameKey(username string) string { return "account:username:" + username }
func dependentsKey(accountID string) string { return "account:notes:" + accountID }

// ListAll returns every account of the scope without password digests
func (m *AccountManager) ListAll(ctx context.Context) ([]domain.AccountView, error) {
	accounts, err := m.store.Accounts().FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	views := make([]domain.AccountView, 0, len(accounts))
	for _, a := range accounts {
		if m.inScope(&a) {
			views = append(views, a.View())
		}
	}
	if len(views) == 0 {
		return nil, domain.NotFound(fmt.Sprintf("No %s found", m.scope.Label))
	}
	return views, nil
}

// GetOne returns a single account without its password digest
func (m *AccountManager) GetOne(ctx context.Context, id string) (domain.AccountView, error) {
	if id == "" {
		return domain.AccountView{}, domain.Validation(fmt.Sprintf("%s ID required", m.title()))
	}
	acc, err := m.load(ctx, id)
	if err != nil {
		return domain.AccountView{}, err
	}
	return acc.View(), nil
}

// Create stores a new active account with a hashed password
func (m *AccountManager) Create(ctx context.Context, in CreateAccountInput) (Confirmation, error) {
	if err := m.rules.AssertRequiredFields(in, "All fields are required"); err != nil {
		return Confirmation{}, err
	}
	if err := m.checkRoles(in.Roles); err != nil {
		return Confirmation{}, err
	}

	release, err := m.locks.Lock(ctx, usernameKey(in.Username))
	if err != nil {
		return Confirmation{}, fmt.Errorf("create account: %w", err)
	}
	defer release()

	if err := m.rules.AssertUnique(ctx, domain.KindAccount, "username", in.Username, ""); err != nil {
		return Confirmation{}, err
	}
	digest, err := m.hash(in.Password)
	if err != nil {
		return Confirmation{}, err
	}

	acc := &domain.Account{
		ID:       uuid.NewString(),
		Username: in.Username,
		Password: digest,
		Roles:    slices.Clone(in.Roles),
		Active:   true,
	}
	if err := m.store.Accounts().Insert(ctx, acc); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return Confirmation{}, domain.Conflict(integrity.ConflictMessage(domain.KindAccount, "username"))
		}
		return Confirmation{}, fmt.Errorf("insert account: %w", err)
	}

	m.log(acc).Info("Account created")
	return Confirmation{
		Message:  fmt.Sprintf("New %s %s created", m.scope.Label, acc.Username),
		ID:       acc.ID,
		Username: acc.Username,
	}, nil
}

// Update replaces username, roles and active flag, and rehashes the password when one is given
func (m *AccountManager) Update(ctx context.Context, in UpdateAccountInput) (Confirmation, error) {
	if err := m.rules.AssertRequiredFields(in, "All fields except password are required"); err != nil {
		return Confirmation{}, err
	}
	if err := m.checkRoles(in.Roles); err != nil {
		return Confirmation{}, err
	}

	acc, err := m.load(ctx, in.ID)
	if err != nil {
		return Confirmation{}, err
	}

	release, err := m.locks.Lock(ctx, usernameKey(in.Username))
	if err != nil {
		return Confirmation{}, fmt.Errorf("update account: %w", err)
	}
	defer release()

	if err := m.rules.AssertUnique(ctx, domain.KindAccount, "username", in.Username, acc.ID); err != nil {
		return Confirmation{}, err
	}

	acc.Username = in.Username
	acc.Roles = slices.Clone(in.Roles)
	acc.Active = *in.Active
	if in.Password != "" {
		digest, err := m.hash(in.Password)
		if err != nil {
			return Confirmation{}, err
		}
		acc.Password = digest
	}

	if err := m.store.Accounts().Update(ctx, acc); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicate):
			return Confirmation{}, domain.Conflict(integrity.ConflictMessage(domain.KindAccount, "username"))
		case errors.Is(err, store.ErrNotFound):
			return Confirmation{}, m.notFound()
		}
		return Confirmation{}, fmt.Errorf("update account: %w", err)
	}

	m.log(acc).WithField("password_changed", in.Password != "").Info("Account updated")
	return Confirmation{Message: fmt.Sprintf("%s updated", acc.Username), ID: acc.ID, Username: acc.Username}, nil
}

// Delete removes an account. It is refused while any note references the account.
func (m *AccountManager) Delete(ctx context.Context, id string) (Confirmation, error) {
	if id == "" {
		return Confirmation{}, domain.Validation(fmt.Sprintf("%s ID required", m.title()))
	}

	release, err := m.locks.Lock(ctx, dependentsKey(id))
	if err != nil {
		return Confirmation{}, fmt.Errorf("delete account: %w", err)
	}
	defer release()

	// Accounts of another scope are reported as missing before the notes check
	acc, err := m.store.Accounts().FindByID(ctx, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		acc = nil
	case err != nil:
		return Confirmation{}, fmt.Errorf("load account %s: %w", id, err)
	case !m.inScope(acc):
		return Confirmation{}, m.notFound()
	}

	hasNotes, err := m.rules.AssertReferenced(ctx, id)
	if err != nil {
		return Confirmation{}, err
	}
	if hasNotes {
		return Confirmation{}, m.hasNotes()
	}
	if acc == nil {
		return Confirmation{}, m.notFound()
	}

	if err := m.store.Accounts().Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, store.ErrForeignKey):
			return Confirmation{}, m.hasNotes()
		case errors.Is(err, store.ErrNotFound):
			return Confirmation{}, m.notFound()
		}
		return Confirmation{}, fmt.Errorf("delete account: %w", err)
	}

	m.log(acc).Info("Account deleted")
	return Confirmation{
		Message:  fmt.Sprintf("Username %s with ID %s deleted", acc.Username, acc.ID),
		ID:       acc.ID,
		Username: acc.Username,
	}, nil
}

func (m *AccountManager) load(ctx context.Context, id string) (*domain.Account, error) {
	acc, err := m.store.Accounts().FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, m.notFound()
	}
	if err != nil {
		return nil, fmt.Errorf("load account %s: %w", id, err)
	}
	if !m.inScope(acc) {
		return nil, m.notFound()
	}
	return acc, nil
}

// inScope reports whether acc holds at least one role of the scope
func (m *AccountManager) inScope(acc *domain.Account) bool {
	if len(m.scope.AllowedRoles) == 0 {
		return true
	}
	for _, r := range acc.Roles {
		if slices.Contains(m.scope.AllowedRoles, r) {
			return true
		}
	}
	return false
}

func (m *AccountManager) hash(password string) (string, error) {
	digest, err := m.hasher.Hash(password)
	if errors.Is(err, utils.ErrPasswordTooLong) {
		return "", domain.Validation(fmt.Sprintf("Password must be at most %d bytes", utils.MaxPasswordBytes))
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return digest, nil
}

func (m *AccountManager) checkRoles(roles []string) error {
	if len(m.scope.AllowedRoles) == 0 {
		return nil
	}
	for _, r := range roles {
		if !slices.Contains(m.scope.AllowedRoles, r) {
			return domain.Validation(fmt.Sprintf("Invalid roles for %s", m.scope.Label))
		}
	}
	return nil
}

func (m *AccountManager) title() string {
	if m.scope.Label == "" {
		return "Account"
	}
	return strings.ToUpper(m.scope.Label[:1]) + m.scope.Label[1:]
}

func (m *AccountManager) notFound() error {
	return domain.NotFound(fmt.Sprintf("%s not found", m.title()))
}

func (m *AccountManager) hasNotes() error {
	return domain.Conflict(fmt.Sprintf("%s has assigned notes", m.title()))
}

func (m *AccountManager) log(acc *domain.Account) *logrus.Entry {
	return logrus.WithFields(logrus.Fields{
		"scope":      m.scope.Label,
		"account_id": acc.ID,
		"username":   acc.Username,
		"roles":      acc.Roles,
		"active":     acc.Active,
	})
}
