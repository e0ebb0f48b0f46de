package model

import "time"

// Roles carried in the JWT "role" claim. USER and ADMIN accounts live in
// the `users` table; SHELTER accounts live in the `shelters` table.
const (
	RoleUser    = "USER"
	RoleShelter = "SHELTER"
	RoleAdmin   = "ADMIN"
)

// User represents a regular user or admin record as stored in the
// `users` table. Age, address, contact and gender start out empty and
// must all be filled in before the user may submit an adoption request.
//
// Fields:
//  ID           – primary key identifier of the user.
//  FirstName    – given name.
//  LastName     – family name.
//  Username     – unique handle.
//  Email        – unique email address.
//  Contact      – phone number; empty until the profile is completed.
//  Address      – postal address; empty until the profile is completed.
//  Age          – age in years; nil until the profile is completed.
//  Gender       – free-form gender string; empty until completed.
//  Role         – USER or ADMIN.
//  PasswordHash – bcrypt hashed password.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64
	FirstName    string
	LastName     string
	Username     string
	Email        string
	Contact      string
	Address      string
	Age          *int
	Gender       string
	Role         string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProfileComplete reports whether the adoption-precondition fields are
// all set. Empty strings and a nil age count as unset.
func (u *User) ProfileComplete() bool {
	return u.Age != nil && u.Address != "" && u.Contact != "" && u.Gender != ""
}

// FullName joins first and last name for display in notifications.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.Username
	}
	return u.FirstName + " " + u.LastName
}

// ApprovalState is the admin-controlled lifecycle state of a shelter.
// PENDING shelters cannot log in yet; REJECTED shelters may re-register
// under the same email, which purges the rejected record.
type ApprovalState string

const (
	ApprovalPending  ApprovalState = "PENDING"
	ApprovalApproved ApprovalState = "APPROVED"
	ApprovalRejected ApprovalState = "REJECTED"
)

// Shelter mirrors the `shelters` table. A shelter owns its animals;
// deleting the shelter removes all of them along with their adoption
// requests.
type Shelter struct {
	ID              uint64
	Name            string
	Description     string
	Address         string
	ContactNumber   string
	Email           string
	Website         *string
	DateEstablished string
	ShelterType     string
	Approval        ApprovalState
	PasswordHash    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
