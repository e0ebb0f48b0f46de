package model

import "time"

// RequestStatus is the lifecycle state of an adoption request.
// PENDING may move to APPROVED, REJECTED or CANCELED; all three are
// terminal. Approving one request cancels every other pending request
// for the same animal, which is how the at-most-one-approved-per-animal
// invariant is kept.
type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestApproved RequestStatus = "APPROVED"
	RequestRejected RequestStatus = "REJECTED"
	RequestCanceled RequestStatus = "CANCELED"
)

// AdoptionRequest links one user to one animal. Both references are
// immutable after creation and at most one request may exist per
// (user, animal) pair.
type AdoptionRequest struct {
	ID        uint64
	UserID    uint64
	AnimalID  uint64
	Reason    string
	Status    RequestStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
