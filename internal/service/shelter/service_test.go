package shelter_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/pawssion/shelter-adoption/internal/model"
	"github.com/pawssion/shelter-adoption/internal/repository"
	"github.com/pawssion/shelter-adoption/internal/repository/memory"
	"github.com/pawssion/shelter-adoption/internal/service/shelter"
)

type ShelterServiceSuite struct {
	suite.Suite

	ctx   context.Context
	store *memory.Store
	svc   *shelter.Service

	adminID uint64
}

func TestShelterServiceSuite(t *testing.T) {
	suite.Run(t, new(ShelterServiceSuite))
}

func (s *ShelterServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.NewStore()
	s.svc = shelter.NewService(
		s.store.Shelters(), s.store.Users(), s.store.Animals(),
		s.store.Requests(), s.store.Notifications(), s.store,
	)

	s.Require().NoError(s.store.Users().EnsureAdmin(s.ctx, "admin@example.com", "secret123", 4))
	admin, err := s.store.Users().GetByEmail(s.ctx, "admin@example.com")
	s.Require().NoError(err)
	s.adminID = admin.ID
}

func (s *ShelterServiceSuite) register(name, email string) uint64 {
	sh := &model.Shelter{Name: name, Email: email, ShelterType: "Dog"}
	s.Require().NoError(s.svc.Register(s.ctx, sh, "secret123", 4))
	return sh.ID
}

func (s *ShelterServiceSuite) adminNotes() []model.Notification {
	notes, err := s.store.Notifications().ListFor(s.ctx, model.UserRecipient(s.adminID))
	s.Require().NoError(err)
	return notes
}

func (s *ShelterServiceSuite) TestRegisterStartsPendingAndNotifiesAdmins() {
	id := s.register("Happy Paws", "paws@example.com")

	got, err := s.store.Shelters().GetByID(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(model.ApprovalPending, got.Approval)

	notes := s.adminNotes()
	s.Require().Len(notes, 1)
	s.Contains(notes[0].Message, "Happy Paws")
	s.Contains(notes[0].Message, "Pending approval")
}

func (s *ShelterServiceSuite) TestRegisterNotifiesEveryAdmin() {
	age := 40
	other := &model.User{Username: "admin2", Email: "admin2@example.com",
		Role: model.RoleAdmin, Age: &age}
	otherID, err := s.store.Users().Create(s.ctx, other, "secret123", 4)
	s.Require().NoError(err)

	s.register("Happy Paws", "paws@example.com")

	s.Len(s.adminNotes(), 1)
	notes, err := s.store.Notifications().ListFor(s.ctx, model.UserRecipient(otherID))
	s.Require().NoError(err)
	s.Len(notes, 1)
}

func (s *ShelterServiceSuite) TestRegisterRejectsReservedEmail() {
	s.register("Happy Paws", "paws@example.com")

	dup := &model.Shelter{Name: "Copy Cat", Email: "paws@example.com"}
	err := s.svc.Register(s.ctx, dup, "secret123", 4)
	s.ErrorIs(err, repository.ErrEmailExists)
}

func (s *ShelterServiceSuite) TestRegisterRejectsUserEmail() {
	dup := &model.Shelter{Name: "Sneaky", Email: "admin@example.com"}
	err := s.svc.Register(s.ctx, dup, "secret123", 4)
	s.ErrorIs(err, repository.ErrEmailExists)
}

func (s *ShelterServiceSuite) TestRejectedEmailMayRegisterAgain() {
	first := s.register("Happy Paws", "paws@example.com")
	s.Require().NoError(s.svc.Reject(s.ctx, first))

	fresh := &model.Shelter{Name: "Second Chance", Email: "paws@example.com"}
	s.Require().NoError(s.svc.Register(s.ctx, fresh, "secret123", 4))

	// The rejected record is gone, replaced by the new pending one.
	_, err := s.store.Shelters().GetByID(s.ctx, first)
	s.ErrorIs(err, repository.ErrShelterNotFound)
	got, err := s.store.Shelters().GetByID(s.ctx, fresh.ID)
	s.Require().NoError(err)
	s.Equal(model.ApprovalPending, got.Approval)
}

func (s *ShelterServiceSuite) TestApproveNotifiesAdminsAndShelter() {
	id := s.register("Happy Paws", "paws@example.com")

	s.Require().NoError(s.svc.Approve(s.ctx, id))

	got, err := s.store.Shelters().GetByID(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(model.ApprovalApproved, got.Approval)

	notes := s.adminNotes()
	s.Require().Len(notes, 2) // registration + approval
	s.Contains(notes[0].Message, "Approved shelter")

	shNotes, err := s.store.Notifications().ListFor(s.ctx, model.ShelterRecipient(id))
	s.Require().NoError(err)
	s.Require().Len(shNotes, 1)
	s.Contains(shNotes[0].Message, "approved")
}

func (s *ShelterServiceSuite) TestApproveIsIdempotent() {
	id := s.register("Happy Paws", "paws@example.com")
	s.Require().NoError(s.svc.Approve(s.ctx, id))
	s.Require().NoError(s.svc.Approve(s.ctx, id))

	// No duplicate notifications from the second approve.
	s.Len(s.adminNotes(), 2)
	shNotes, err := s.store.Notifications().ListFor(s.ctx, model.ShelterRecipient(id))
	s.Require().NoError(err)
	s.Len(shNotes, 1)
}

func (s *ShelterServiceSuite) TestRejectNotifiesAdminsOnly() {
	id := s.register("Happy Paws", "paws@example.com")

	s.Require().NoError(s.svc.Reject(s.ctx, id))

	got, err := s.store.Shelters().GetByID(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(model.ApprovalRejected, got.Approval)

	notes := s.adminNotes()
	s.Require().Len(notes, 2)
	s.Contains(notes[0].Message, "Shelter rejected")

	shNotes, err := s.store.Notifications().ListFor(s.ctx, model.ShelterRecipient(id))
	s.Require().NoError(err)
	s.Empty(shNotes)
}

func (s *ShelterServiceSuite) TestRejectApprovedShelterIsConflict() {
	id := s.register("Happy Paws", "paws@example.com")
	s.Require().NoError(s.svc.Approve(s.ctx, id))
	before := len(s.adminNotes())

	s.ErrorIs(s.svc.Reject(s.ctx, id), repository.ErrConflict)

	// The shelter stays approved and nothing new was emitted; only a
	// deletion may move a shelter out of approved.
	got, err := s.store.Shelters().GetByID(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(model.ApprovalApproved, got.Approval)
	s.Len(s.adminNotes(), before)
}

func (s *ShelterServiceSuite) TestApproveUnknownShelter() {
	s.ErrorIs(s.svc.Approve(s.ctx, 404), repository.ErrShelterNotFound)
}

func (s *ShelterServiceSuite) TestDeleteCascadesAnimalsRequestsNotifications() {
	id := s.register("Happy Paws", "paws@example.com")
	s.Require().NoError(s.svc.Approve(s.ctx, id))

	// Two animals, three requests across two users, mixed statuses.
	rex := &model.Animal{ShelterID: id, Name: "Rex", Type: "Dog"}
	rexID, err := s.store.Animals().Create(s.ctx, rex)
	s.Require().NoError(err)
	milo := &model.Animal{ShelterID: id, Name: "Milo", Type: "Cat"}
	miloID, err := s.store.Animals().Create(s.ctx, milo)
	s.Require().NoError(err)

	age := 30
	u1 := &model.User{Username: "u1", Email: "u1@example.com", Role: model.RoleUser, Age: &age}
	u1ID, err := s.store.Users().Create(s.ctx, u1, "secret123", 4)
	s.Require().NoError(err)
	u2 := &model.User{Username: "u2", Email: "u2@example.com", Role: model.RoleUser, Age: &age}
	u2ID, err := s.store.Users().Create(s.ctx, u2, "secret123", 4)
	s.Require().NoError(err)

	mk := func(userID, animalID uint64, status model.RequestStatus) {
		req := &model.AdoptionRequest{UserID: userID, AnimalID: animalID}
		reqID, err := s.store.Requests().Create(s.ctx, req)
		s.Require().NoError(err)
		if status != model.RequestPending {
			s.Require().NoError(s.store.Requests().SetStatus(s.ctx, reqID, status))
		}
	}
	mk(u1ID, rexID, model.RequestApproved)
	mk(u2ID, rexID, model.RequestCanceled)
	mk(u1ID, miloID, model.RequestPending)

	s.Require().NoError(s.svc.Delete(s.ctx, id))

	_, err = s.store.Shelters().GetByID(s.ctx, id)
	s.ErrorIs(err, repository.ErrShelterNotFound)
	_, err = s.store.Animals().GetByID(s.ctx, rexID)
	s.ErrorIs(err, repository.ErrAnimalNotFound)
	_, err = s.store.Animals().GetByID(s.ctx, miloID)
	s.ErrorIs(err, repository.ErrAnimalNotFound)

	// One notification per request, approved and canceled included.
	u1Notes, err := s.store.Notifications().ListFor(s.ctx, model.UserRecipient(u1ID))
	s.Require().NoError(err)
	s.Require().Len(u1Notes, 2)
	s.Contains(u1Notes[0].Message, "shelter 'Happy Paws' was deleted")
	u2Notes, err := s.store.Notifications().ListFor(s.ctx, model.UserRecipient(u2ID))
	s.Require().NoError(err)
	s.Len(u2Notes, 1)

	// Admin summary on top of registration + approval.
	notes := s.adminNotes()
	s.Require().Len(notes, 3)
	s.Contains(notes[0].Message, "all its animals were deleted")
}

func (s *ShelterServiceSuite) TestDeleteEmptyShelter() {
	id := s.register("Empty Nest", "empty@example.com")

	s.Require().NoError(s.svc.Delete(s.ctx, id))

	_, err := s.store.Shelters().GetByID(s.ctx, id)
	s.ErrorIs(err, repository.ErrShelterNotFound)
	s.Len(s.adminNotes(), 2) // registration + deletion summary
}
