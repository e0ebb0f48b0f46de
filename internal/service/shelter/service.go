// Package shelter implements the shelter account lifecycle: pending
// registration, admin approval/rejection and the administrative
// deletion cascade that removes a shelter, its animals and every
// adoption request referencing them in one unit of work.
package shelter

import (
	"context"
	"fmt"

	"github.com/pawssion/shelter-adoption/internal/model"
	"github.com/pawssion/shelter-adoption/internal/repository"
)

// ShelterStore persists shelter accounts and approval state.
type ShelterStore interface {
	Create(ctx context.Context, s *model.Shelter, password string, cost int) (uint64, error)
	GetByID(ctx context.Context, id uint64) (model.Shelter, error)
	EmailReserved(ctx context.Context, email string) (bool, error)
	PurgeRejectedByEmail(ctx context.Context, email string) error
	SetApproval(ctx context.Context, id uint64, state model.ApprovalState) error
	Delete(ctx context.Context, id uint64) error
}

// UserStore supplies admin fan-out targets and the cross-table email
// reservation check.
type UserStore interface {
	EmailTaken(ctx context.Context, email string) (bool, error)
	ListAdmins(ctx context.Context) ([]model.User, error)
}

// AnimalStore lists and removes a shelter's animals during deletion.
type AnimalStore interface {
	ListByShelter(ctx context.Context, shelterID uint64) ([]model.Animal, error)
	Delete(ctx context.Context, id uint64) error
}

// RequestStore lists and removes requests referencing an animal.
type RequestStore interface {
	ListByAnimal(ctx context.Context, animalID uint64) ([]model.AdoptionRequest, error)
	Delete(ctx context.Context, id uint64) error
}

// NotificationStore appends ledger entries.
type NotificationStore interface {
	Add(ctx context.Context, rec model.Recipient, message string) error
}

// Tx is the unit-of-work boundary shared with the adoption service.
type Tx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service owns the shelter approval state machine. Role checks (admin
// for approve/reject/delete) happen in the routing layer; the service
// assumes an authorized caller.
type Service struct {
	shelters ShelterStore
	users    UserStore
	animals  AnimalStore
	requests RequestStore
	notes    NotificationStore
	tx       Tx
}

func NewService(shelters ShelterStore, users UserStore, animals AnimalStore, requests RequestStore, notes NotificationStore, tx Tx) *Service {
	return &Service{shelters: shelters, users: users, animals: animals, requests: requests, notes: notes, tx: tx}
}

// Register creates a pending shelter account. A rejected record holding
// the same email is purged first, which is what makes rejected emails
// re-registrable; pending/approved shelter emails and user emails stay
// reserved. Every admin is notified of the new registration.
func (s *Service) Register(ctx context.Context, sh *model.Shelter, password string, cost int) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.shelters.PurgeRejectedByEmail(ctx, sh.Email); err != nil {
			return err
		}
		taken, err := s.users.EmailTaken(ctx, sh.Email)
		if err != nil {
			return err
		}
		if !taken {
			taken, err = s.shelters.EmailReserved(ctx, sh.Email)
			if err != nil {
				return err
			}
		}
		if taken {
			return repository.ErrEmailExists
		}
		if _, err := s.shelters.Create(ctx, sh, password, cost); err != nil {
			return err
		}
		return s.notifyAdmins(ctx, fmt.Sprintf("New shelter registered: %s. Pending approval.", sh.Name))
	})
}

// Approve transitions a pending shelter to approved, notifying every
// admin and the shelter itself. Re-approving an already approved
// shelter is a no-op so the operation is idempotent and cannot emit
// duplicate notifications.
func (s *Service) Approve(ctx context.Context, shelterID uint64) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		sh, err := s.shelters.GetByID(ctx, shelterID)
		if err != nil {
			return err
		}
		if sh.Approval == model.ApprovalApproved {
			return nil
		}
		if err := s.shelters.SetApproval(ctx, shelterID, model.ApprovalApproved); err != nil {
			return err
		}
		if err := s.notifyAdmins(ctx, fmt.Sprintf("Approved shelter: %s.", sh.Name)); err != nil {
			return err
		}
		return s.notes.Add(ctx, model.ShelterRecipient(shelterID),
			"Your shelter has been approved! You can now log in and access your dashboard.")
	})
}

// Reject transitions a pending shelter to rejected. Only admins are
// notified; the shelter finds out on its next login or registration
// attempt, where the rejected state yields its own distinguishable
// outcome. An approved shelter cannot be rejected: it holds animals
// and live requests, so the only way out of approved is the deletion
// cascade.
func (s *Service) Reject(ctx context.Context, shelterID uint64) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		sh, err := s.shelters.GetByID(ctx, shelterID)
		if err != nil {
			return err
		}
		if sh.Approval == model.ApprovalRejected {
			return nil
		}
		if sh.Approval == model.ApprovalApproved {
			return repository.ErrConflict
		}
		if err := s.shelters.SetApproval(ctx, shelterID, model.ApprovalRejected); err != nil {
			return err
		}
		return s.notifyAdmins(ctx, fmt.Sprintf("Shelter rejected: %s.", sh.Name))
	})
}

// Delete removes the shelter with full cascade: for every animal, each
// adoption request (any status, approved included since this is the
// administrative override) is notified to its user and removed, then
// the animal is removed; finally the admins get a summary and the
// shelter record goes away. The whole cascade is one transaction: a
// failure anywhere rolls back everything.
func (s *Service) Delete(ctx context.Context, shelterID uint64) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		sh, err := s.shelters.GetByID(ctx, shelterID)
		if err != nil {
			return err
		}
		animals, err := s.animals.ListByShelter(ctx, shelterID)
		if err != nil {
			return err
		}
		for _, animal := range animals {
			reqs, err := s.requests.ListByAnimal(ctx, animal.ID)
			if err != nil {
				return err
			}
			for _, req := range reqs {
				msg := fmt.Sprintf("Your adoption request for %s has been canceled because the shelter '%s' was deleted.",
					animalName(&animal), sh.Name)
				if err := s.notes.Add(ctx, model.UserRecipient(req.UserID), msg); err != nil {
					return err
				}
				if err := s.requests.Delete(ctx, req.ID); err != nil {
					return err
				}
			}
			if err := s.animals.Delete(ctx, animal.ID); err != nil {
				return err
			}
		}
		summary := fmt.Sprintf("The shelter '%s' and all its animals were deleted.", sh.Name)
		if err := s.notifyAdmins(ctx, summary); err != nil {
			return err
		}
		return s.shelters.Delete(ctx, shelterID)
	})
}

func (s *Service) notifyAdmins(ctx context.Context, message string) error {
	admins, err := s.users.ListAdmins(ctx)
	if err != nil {
		return err
	}
	for _, admin := range admins {
		if err := s.notes.Add(ctx, model.UserRecipient(admin.ID), message); err != nil {
			return err
		}
	}
	return nil
}

func animalName(a *model.Animal) string {
	if a.Name != "" {
		return a.Name
	}
	return a.Type
}
