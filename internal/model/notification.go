package model

import "time"

// Notification is one entry in a recipient's message log. Exactly one
// of UserID and ShelterID is set. Read defaults to false and only ever
// flips to true; entries are created solely as side effects of state
// transitions elsewhere, never directly by an actor.
type Notification struct {
	ID        uint64
	Message   string
	Read      bool
	UserID    *uint64
	ShelterID *uint64
	CreatedAt time.Time
}

// Recipient identifies the single target of a notification: either a
// user (including admins) or a shelter, never both. Exactly one field
// is nonzero.
type Recipient struct {
	UserID    uint64
	ShelterID uint64
}

// UserRecipient addresses a user or admin account.
func UserRecipient(id uint64) Recipient { return Recipient{UserID: id} }

// ShelterRecipient addresses a shelter account.
func ShelterRecipient(id uint64) Recipient { return Recipient{ShelterID: id} }
