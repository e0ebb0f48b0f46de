package adoption_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/pawssion/shelter-adoption/internal/model"
	"github.com/pawssion/shelter-adoption/internal/repository"
	"github.com/pawssion/shelter-adoption/internal/repository/memory"
	"github.com/pawssion/shelter-adoption/internal/service/adoption"
)

type AdoptionServiceSuite struct {
	suite.Suite

	ctx   context.Context
	store *memory.Store
	svc   *adoption.Service

	shelterID uint64
	animalID  uint64
}

func TestAdoptionServiceSuite(t *testing.T) {
	suite.Run(t, new(AdoptionServiceSuite))
}

func (s *AdoptionServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.NewStore()
	s.svc = adoption.NewService(
		s.store.Users(), s.store.Shelters(), s.store.Animals(),
		s.store.Requests(), s.store.Notifications(), s.store,
	)

	sh := &model.Shelter{Name: "Happy Paws", Email: "paws@example.com"}
	id, err := s.store.Shelters().Create(s.ctx, sh, "secret123", 4)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Shelters().SetApproval(s.ctx, id, model.ApprovalApproved))
	s.shelterID = id

	a := &model.Animal{ShelterID: id, Name: "Rex", Type: "Dog", Breed: "Mix"}
	s.animalID, err = s.store.Animals().Create(s.ctx, a)
	s.Require().NoError(err)
}

func (s *AdoptionServiceSuite) newUser(username string, complete bool) uint64 {
	u := &model.User{
		FirstName: "Test",
		LastName:  "User",
		Username:  username,
		Email:     username + "@example.com",
		Role:      model.RoleUser,
	}
	if complete {
		age := 30
		u.Age = &age
		u.Address = "1 Main St"
		u.Contact = "555-0100"
		u.Gender = "female"
	}
	id, err := s.store.Users().Create(s.ctx, u, "secret123", 4)
	s.Require().NoError(err)
	return id
}

func (s *AdoptionServiceSuite) notificationsFor(rec model.Recipient) []model.Notification {
	notes, err := s.store.Notifications().ListFor(s.ctx, rec)
	s.Require().NoError(err)
	return notes
}

func (s *AdoptionServiceSuite) TestSubmitCreatesPendingAndNotifiesBothSides() {
	userID := s.newUser("alice", true)

	req, err := s.svc.Submit(s.ctx, userID, s.animalID, "big garden")
	s.Require().NoError(err)
	s.Equal(model.RequestPending, req.Status)
	s.Equal(userID, req.UserID)

	shelterNotes := s.notificationsFor(model.ShelterRecipient(s.shelterID))
	s.Require().Len(shelterNotes, 1)
	s.Contains(shelterNotes[0].Message, "Rex")

	userNotes := s.notificationsFor(model.UserRecipient(userID))
	s.Require().Len(userNotes, 1)
	s.Contains(userNotes[0].Message, "pending approval")
}

func (s *AdoptionServiceSuite) TestSubmitRequiresCompleteProfile() {
	userID := s.newUser("bob", false)

	_, err := s.svc.Submit(s.ctx, userID, s.animalID, "please")
	s.Require().ErrorIs(err, repository.ErrProfileIncomplete)

	s.Empty(s.notificationsFor(model.ShelterRecipient(s.shelterID)))
	exists, err := s.store.Requests().ExistsForUserAndAnimal(s.ctx, userID, s.animalID)
	s.Require().NoError(err)
	s.False(exists)
}

func (s *AdoptionServiceSuite) TestSubmitRejectsDuplicateWithoutSideEffects() {
	userID := s.newUser("carol", true)

	_, err := s.svc.Submit(s.ctx, userID, s.animalID, "first")
	s.Require().NoError(err)

	_, err = s.svc.Submit(s.ctx, userID, s.animalID, "second")
	s.Require().ErrorIs(err, repository.ErrDuplicateRequest)

	// Still just the one pair of notifications from the first submit.
	s.Len(s.notificationsFor(model.ShelterRecipient(s.shelterID)), 1)
	s.Len(s.notificationsFor(model.UserRecipient(userID)), 1)
}

func (s *AdoptionServiceSuite) TestApproveCancelsEveryOtherPendingRequest() {
	winner := s.newUser("winner", true)
	loser1 := s.newUser("loser1", true)
	loser2 := s.newUser("loser2", true)

	winReq, err := s.svc.Submit(s.ctx, winner, s.animalID, "")
	s.Require().NoError(err)
	_, err = s.svc.Submit(s.ctx, loser1, s.animalID, "")
	s.Require().NoError(err)
	_, err = s.svc.Submit(s.ctx, loser2, s.animalID, "")
	s.Require().NoError(err)

	res, err := s.svc.Approve(s.ctx, winReq.ID, s.shelterID)
	s.Require().NoError(err)
	s.Equal(model.RequestApproved, res.Request.Status)
	s.Len(res.Canceled, 2)
	for _, c := range res.Canceled {
		s.Equal(model.RequestCanceled, c.Status)
	}

	// Winner: submit ack + approval. Losers: submit ack + cancellation.
	winNotes := s.notificationsFor(model.UserRecipient(winner))
	s.Require().Len(winNotes, 2)
	s.Contains(winNotes[0].Message, "approved by Happy Paws")

	for _, id := range []uint64{loser1, loser2} {
		notes := s.notificationsFor(model.UserRecipient(id))
		s.Require().Len(notes, 2)
		s.Contains(notes[0].Message, "canceled because another request was approved")
	}
}

func (s *AdoptionServiceSuite) TestApproveRequiresPendingStatus() {
	u1 := s.newUser("dave", true)
	u2 := s.newUser("erin", true)

	r1, err := s.svc.Submit(s.ctx, u1, s.animalID, "")
	s.Require().NoError(err)
	r2, err := s.svc.Submit(s.ctx, u2, s.animalID, "")
	s.Require().NoError(err)

	_, err = s.svc.Approve(s.ctx, r1.ID, s.shelterID)
	s.Require().NoError(err)

	// r2 was just canceled by the cascade; approving it must conflict.
	_, err = s.svc.Approve(s.ctx, r2.ID, s.shelterID)
	s.ErrorIs(err, repository.ErrConflict)

	// Re-approving the winner is a conflict too, not a silent success.
	_, err = s.svc.Approve(s.ctx, r1.ID, s.shelterID)
	s.ErrorIs(err, repository.ErrConflict)
}

func (s *AdoptionServiceSuite) TestApproveByOtherShelterForbidden() {
	other := &model.Shelter{Name: "Other", Email: "other@example.com"}
	otherID, err := s.store.Shelters().Create(s.ctx, other, "secret123", 4)
	s.Require().NoError(err)

	userID := s.newUser("frank", true)
	req, err := s.svc.Submit(s.ctx, userID, s.animalID, "")
	s.Require().NoError(err)

	_, err = s.svc.Approve(s.ctx, req.ID, otherID)
	s.ErrorIs(err, repository.ErrForbidden)
}

func (s *AdoptionServiceSuite) TestRejectNotifiesUserAndLeavesOthersPending() {
	u1 := s.newUser("gina", true)
	u2 := s.newUser("hank", true)

	r1, err := s.svc.Submit(s.ctx, u1, s.animalID, "")
	s.Require().NoError(err)
	r2, err := s.svc.Submit(s.ctx, u2, s.animalID, "")
	s.Require().NoError(err)

	s.Require().NoError(s.svc.Reject(s.ctx, r1.ID, s.shelterID))

	got, err := s.store.Requests().GetByID(s.ctx, r1.ID)
	s.Require().NoError(err)
	s.Equal(model.RequestRejected, got.Status)

	other, err := s.store.Requests().GetByID(s.ctx, r2.ID)
	s.Require().NoError(err)
	s.Equal(model.RequestPending, other.Status)

	notes := s.notificationsFor(model.UserRecipient(u1))
	s.Require().Len(notes, 2)
	s.Contains(notes[0].Message, "rejected by Happy Paws")
}

func (s *AdoptionServiceSuite) TestCancelDeletesOwnPendingRequest() {
	userID := s.newUser("iris", true)
	req, err := s.svc.Submit(s.ctx, userID, s.animalID, "")
	s.Require().NoError(err)

	s.Require().NoError(s.svc.Cancel(s.ctx, req.ID, userID))

	_, err = s.store.Requests().GetByID(s.ctx, req.ID)
	s.ErrorIs(err, repository.ErrRequestNotFound)

	// Hard delete frees the pair for a fresh request.
	_, err = s.svc.Submit(s.ctx, userID, s.animalID, "again")
	s.NoError(err)
}

func (s *AdoptionServiceSuite) TestCancelApprovedForbidden() {
	userID := s.newUser("jack", true)
	req, err := s.svc.Submit(s.ctx, userID, s.animalID, "")
	s.Require().NoError(err)
	_, err = s.svc.Approve(s.ctx, req.ID, s.shelterID)
	s.Require().NoError(err)

	err = s.svc.Cancel(s.ctx, req.ID, userID)
	s.ErrorIs(err, repository.ErrForbidden)

	got, err := s.store.Requests().GetByID(s.ctx, req.ID)
	s.Require().NoError(err)
	s.Equal(model.RequestApproved, got.Status)
}

func (s *AdoptionServiceSuite) TestCancelSomeoneElsesRequestForbidden() {
	owner := s.newUser("kate", true)
	stranger := s.newUser("liam", true)
	req, err := s.svc.Submit(s.ctx, owner, s.animalID, "")
	s.Require().NoError(err)

	err = s.svc.Cancel(s.ctx, req.ID, stranger)
	s.ErrorIs(err, repository.ErrForbidden)
}

func (s *AdoptionServiceSuite) TestDeleteAnimalRemovesRequestsSilently() {
	u1 := s.newUser("mona", true)
	u2 := s.newUser("nick", true)
	_, err := s.svc.Submit(s.ctx, u1, s.animalID, "")
	s.Require().NoError(err)
	r2, err := s.svc.Submit(s.ctx, u2, s.animalID, "")
	s.Require().NoError(err)
	s.Require().NoError(s.svc.Reject(s.ctx, r2.ID, s.shelterID))

	before1 := len(s.notificationsFor(model.UserRecipient(u1)))
	before2 := len(s.notificationsFor(model.UserRecipient(u2)))

	s.Require().NoError(s.svc.DeleteAnimal(s.ctx, s.animalID, s.shelterID))

	_, err = s.store.Animals().GetByID(s.ctx, s.animalID)
	s.ErrorIs(err, repository.ErrAnimalNotFound)
	reqs, err := s.store.Requests().ListByAnimal(s.ctx, s.animalID)
	s.Require().NoError(err)
	s.Empty(reqs)

	// No cancellation notifications on single-animal delete.
	s.Len(s.notificationsFor(model.UserRecipient(u1)), before1)
	s.Len(s.notificationsFor(model.UserRecipient(u2)), before2)
}

func (s *AdoptionServiceSuite) TestDeleteAnimalBlockedByApprovedRequest() {
	userID := s.newUser("olga", true)
	req, err := s.svc.Submit(s.ctx, userID, s.animalID, "")
	s.Require().NoError(err)
	_, err = s.svc.Approve(s.ctx, req.ID, s.shelterID)
	s.Require().NoError(err)

	err = s.svc.DeleteAnimal(s.ctx, s.animalID, s.shelterID)
	s.ErrorIs(err, repository.ErrConflict)

	_, err = s.store.Animals().GetByID(s.ctx, s.animalID)
	s.NoError(err)
}

func (s *AdoptionServiceSuite) TestDeleteAnimalOwnershipEnforced() {
	other := &model.Shelter{Name: "Other", Email: "other2@example.com"}
	otherID, err := s.store.Shelters().Create(s.ctx, other, "secret123", 4)
	s.Require().NoError(err)

	err = s.svc.DeleteAnimal(s.ctx, s.animalID, otherID)
	s.ErrorIs(err, repository.ErrForbidden)
}

func TestSubmitUnknownAnimal(t *testing.T) {
	store := memory.NewStore()
	svc := adoption.NewService(store.Users(), store.Shelters(), store.Animals(),
		store.Requests(), store.Notifications(), store)

	age := 25
	u := &model.User{Username: "solo", Email: "solo@example.com", Role: model.RoleUser,
		Age: &age, Address: "x", Contact: "y", Gender: "m"}
	id, err := store.Users().Create(context.Background(), u, "secret123", 4)
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), id, 999, "")
	require.True(t, errors.Is(err, repository.ErrAnimalNotFound))
}
