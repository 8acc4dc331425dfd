package domain

import "time"

// Kind names a record type held by the store
type Kind string

const (
	KindAccount Kind = "Account" // Principal records (employees and users)
	KindNote    Kind = "Note"    // Dependent records owned by an Account
)

// Account Model
type Account struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`                     // Opaque identifier, assigned at creation
	Username  string    `gorm:"size:191;uniqueIndex;not null" json:"username"`    // Unique username, exact match
	Password  string    `gorm:"size:255;not null" json:"-"`                       // Bcrypt digest, never serialized
	Roles     []string  `gorm:"type:text;serializer:json;not null" json:"roles"` // Role labels, never empty
	Active    bool      `gorm:"not null" json:"active"`                           // Account enabled flag
	CreatedAt time.Time `json:"created_at"`                                       // Creation timestamp
	UpdatedAt time.Time `json:"updated_at"`                                       // Last update timestamp
}

// RecordID returns the account identifier
func (a Account) RecordID() string { return a.ID }

// Column returns the value stored under the given column name
func (a Account) Column(name string) any {
	switch name {
	case "id":
		return a.ID
	case "username":
		return a.Username
	case "active":
		return a.Active
	}
	return nil
}

// View strips the password digest from the account
func (a Account) View() AccountView {
	return AccountView{
		ID:        a.ID,
		Username:  a.Username,
		Roles:     append([]string(nil), a.Roles...),
		Active:    a.Active,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// AccountView is the read shape of an Account. It has no password field.
type AccountView struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Roles     []string  `json:"roles"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasRole reports whether the account holds any of the given roles
func (a Account) HasRole(roles ...string) bool {
	for _, have := range a.Roles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}
