// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current actor is not
// authorized to perform an operation on a resource owned by someone
// else, while ErrConflict signals that an operation cannot proceed due
// to conflicting state (e.g. deleting an animal that already has an
// approved adoption).
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own or lacks the role for. Handlers should
// translate this into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an update or delete cannot be performed
// because of conflicting state, such as approving a request that is no
// longer pending. Handlers should translate this into an HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrDuplicateRequest is returned when a user already has an adoption
// request for the animal. At most one request per (user, animal) pair
// may exist.
var ErrDuplicateRequest = errors.New("adoption request already exists")

// ErrProfileIncomplete is returned when a user tries to submit an
// adoption request before filling in age, address, contact and gender.
var ErrProfileIncomplete = errors.New("profile incomplete")

// ErrEmailExists is returned when a registration email is already
// reserved by a user or by a pending/approved shelter.
var ErrEmailExists = errors.New("email already exists")

// ErrUsernameExists is returned when a registration username is taken.
var ErrUsernameExists = errors.New("username already exists")

// Not-found sentinels, one per entity so handlers can report which
// reference was dangling.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrShelterNotFound = errors.New("shelter not found")
	ErrAnimalNotFound  = errors.New("animal not found")
	ErrRequestNotFound = errors.New("adoption request not found")
)
