package model

import "time"

// Animal is a listing posted by an approved shelter. Image holds the
// opaque blob-store reference returned on upload; the core never
// interprets it. Age is stored as text ("2 years", "6 months") the way
// shelters enter it.
type Animal struct {
	ID          uint64
	ShelterID   uint64
	Name        string
	Age         string
	Breed       string
	Gender      string
	Type        string
	Description string
	Image       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
