package domain

import "time"

// Note Model
type Note struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`                  // Opaque identifier
	OwnerID   string    `gorm:"size:36;not null;index" json:"owner"`           // Weak reference to Account.ID
	Title     string    `gorm:"size:191;uniqueIndex;not null" json:"title"`    // Unique note title
	Text      string    `gorm:"type:text;not null" json:"text"`                // Note body
	Completed bool      `gorm:"not null" json:"completed"`                     // Ticket status
	CreatedAt time.Time `json:"created_at"`                                    // Creation timestamp
	UpdatedAt time.Time `json:"updated_at"`                                    // Last update timestamp

	// Deleting an account that still owns notes is refused by the store
	Owner *Account `gorm:"foreignKey:OwnerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

// RecordID returns the note identifier
func (n Note) RecordID() string { return n.ID }

// Column returns the value stored under the given column name
func (n Note) Column(name string) any {
	switch name {
	case "id":
		return n.ID
	case "owner_id":
		return n.OwnerID
	case "title":
		return n.Title
	case "completed":
		return n.Completed
	}
	return nil
}

// NoteView is a note as returned by list operations, with its owner's username attached
type NoteView struct {
	Note
	Username string `json:"username"`
}
