// Package adoption implements the adoption request lifecycle: submission,
// shelter approval/rejection, user self-cancel and single-animal
// deletion. Approval carries the cascade that keeps the
// one-approved-request-per-animal invariant: every other pending request
// for the animal is canceled and its user notified, inside the same unit
// of work as the approval itself.
package adoption

import (
	"context"

	"github.com/pawssion/shelter-adoption/internal/model"
	"github.com/pawssion/shelter-adoption/internal/repository"
)

// UserStore is the slice of user persistence the service needs.
type UserStore interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// ShelterStore resolves shelters for notification texts.
type ShelterStore interface {
	GetByID(ctx context.Context, id uint64) (model.Shelter, error)
}

// AnimalStore resolves and removes animal listings.
type AnimalStore interface {
	GetByID(ctx context.Context, id uint64) (model.Animal, error)
	Delete(ctx context.Context, id uint64) error
}

// RequestStore persists adoption requests.
type RequestStore interface {
	Create(ctx context.Context, ar *model.AdoptionRequest) (uint64, error)
	GetByID(ctx context.Context, id uint64) (model.AdoptionRequest, error)
	ExistsForUserAndAnimal(ctx context.Context, userID, animalID uint64) (bool, error)
	HasApprovedForAnimal(ctx context.Context, animalID uint64) (bool, error)
	SetStatus(ctx context.Context, id uint64, status model.RequestStatus) error
	ListPendingByAnimalExcept(ctx context.Context, animalID, exceptID uint64) ([]model.AdoptionRequest, error)
	Delete(ctx context.Context, id uint64) error
	DeleteByAnimal(ctx context.Context, animalID uint64) error
}

// NotificationStore appends ledger entries.
type NotificationStore interface {
	Add(ctx context.Context, rec model.Recipient, message string) error
}

// Tx is the unit-of-work boundary. Implementations wrap a database
// transaction or, in-memory, a coarse lock.
type Tx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service orchestrates adoption request transitions.
type Service struct {
	users    UserStore
	shelters ShelterStore
	animals  AnimalStore
	requests RequestStore
	notes    NotificationStore
	tx       Tx
}

func NewService(users UserStore, shelters ShelterStore, animals AnimalStore, requests RequestStore, notes NotificationStore, tx Tx) *Service {
	return &Service{users: users, shelters: shelters, animals: animals, requests: requests, notes: notes, tx: tx}
}

// Submit creates a pending request from a profile-complete user for an
// animal they have not yet requested. Two notifications are emitted:
// one to the owning shelter and an acknowledgment to the user.
func (s *Service) Submit(ctx context.Context, userID, animalID uint64, reason string) (model.AdoptionRequest, error) {
	var req model.AdoptionRequest
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if !user.ProfileComplete() {
			return repository.ErrProfileIncomplete
		}
		animal, err := s.animals.GetByID(ctx, animalID)
		if err != nil {
			return err
		}
		exists, err := s.requests.ExistsForUserAndAnimal(ctx, userID, animalID)
		if err != nil {
			return err
		}
		if exists {
			return repository.ErrDuplicateRequest
		}
		req = model.AdoptionRequest{UserID: userID, AnimalID: animalID, Reason: reason}
		if _, err := s.requests.Create(ctx, &req); err != nil {
			return err
		}
		if err := s.notes.Add(ctx, model.ShelterRecipient(animal.ShelterID), newRequestMessage(&user, &animal)); err != nil {
			return err
		}
		return s.notes.Add(ctx, model.UserRecipient(userID), submittedMessage(&animal))
	})
	return req, err
}

// ApprovalResult reports what an approval cascade did, for the caller's
// response and the event side channel.
type ApprovalResult struct {
	Request  model.AdoptionRequest
	Animal   model.Animal
	Shelter  model.Shelter
	Canceled []model.AdoptionRequest
}

// Approve transitions a pending request to approved on behalf of the
// shelter owning the animal, and atomically cancels every other pending
// request for the same animal. One notification goes to each superseded
// user plus one approval confirmation to the winner; nothing is
// observable unless the whole cascade commits.
func (s *Service) Approve(ctx context.Context, requestID, shelterID uint64) (*ApprovalResult, error) {
	var res ApprovalResult
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		req, animal, err := s.ownedRequest(ctx, requestID, shelterID)
		if err != nil {
			return err
		}
		if req.Status != model.RequestPending {
			return repository.ErrConflict
		}
		shelter, err := s.shelters.GetByID(ctx, shelterID)
		if err != nil {
			return err
		}
		if err := s.requests.SetStatus(ctx, req.ID, model.RequestApproved); err != nil {
			return err
		}
		req.Status = model.RequestApproved

		others, err := s.requests.ListPendingByAnimalExcept(ctx, animal.ID, req.ID)
		if err != nil {
			return err
		}
		for i := range others {
			if err := s.requests.SetStatus(ctx, others[i].ID, model.RequestCanceled); err != nil {
				return err
			}
			others[i].Status = model.RequestCanceled
			if err := s.notes.Add(ctx, model.UserRecipient(others[i].UserID), supersededMessage(&animal)); err != nil {
				return err
			}
		}
		if err := s.notes.Add(ctx, model.UserRecipient(req.UserID), approvedMessage(&animal, &shelter)); err != nil {
			return err
		}
		res = ApprovalResult{Request: req, Animal: animal, Shelter: shelter, Canceled: others}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Reject transitions a pending request to rejected and notifies the
// requesting user. Other pending requests for the animal are untouched.
func (s *Service) Reject(ctx context.Context, requestID, shelterID uint64) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		req, animal, err := s.ownedRequest(ctx, requestID, shelterID)
		if err != nil {
			return err
		}
		if req.Status != model.RequestPending {
			return repository.ErrConflict
		}
		shelter, err := s.shelters.GetByID(ctx, shelterID)
		if err != nil {
			return err
		}
		if err := s.requests.SetStatus(ctx, req.ID, model.RequestRejected); err != nil {
			return err
		}
		return s.notes.Add(ctx, model.UserRecipient(req.UserID), rejectedMessage(&animal, &shelter))
	})
}

// Cancel removes the requesting user's own pending request. Approved
// requests can never be canceled, no matter who asks. The record is
// hard-deleted rather than flagged so the user may re-request the same
// animal later.
func (s *Service) Cancel(ctx context.Context, requestID, userID uint64) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		req, err := s.requests.GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		if req.UserID != userID {
			return repository.ErrForbidden
		}
		if req.Status == model.RequestApproved {
			return repository.ErrForbidden
		}
		return s.requests.Delete(ctx, req.ID)
	})
}

// DeleteAnimal removes a single listing owned by the shelter, refusing
// when an approved adoption exists. Remaining requests are deleted
// without notifications; the shelter-level deletion cascade is the one
// that notifies, since there the users lose requests they could not
// have seen coming.
func (s *Service) DeleteAnimal(ctx context.Context, animalID, shelterID uint64) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		animal, err := s.animals.GetByID(ctx, animalID)
		if err != nil {
			return err
		}
		if animal.ShelterID != shelterID {
			return repository.ErrForbidden
		}
		approved, err := s.requests.HasApprovedForAnimal(ctx, animalID)
		if err != nil {
			return err
		}
		if approved {
			return repository.ErrConflict
		}
		if err := s.requests.DeleteByAnimal(ctx, animalID); err != nil {
			return err
		}
		return s.animals.Delete(ctx, animalID)
	})
}

// ownedRequest loads a request and its animal, enforcing that the
// animal belongs to the acting shelter.
func (s *Service) ownedRequest(ctx context.Context, requestID, shelterID uint64) (model.AdoptionRequest, model.Animal, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return model.AdoptionRequest{}, model.Animal{}, err
	}
	animal, err := s.animals.GetByID(ctx, req.AnimalID)
	if err != nil {
		return model.AdoptionRequest{}, model.Animal{}, err
	}
	if animal.ShelterID != shelterID {
		return model.AdoptionRequest{}, model.Animal{}, repository.ErrForbidden
	}
	return req, animal, nil
}
