package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pawssion/shelter-adoption/internal/model"
	"github.com/pawssion/shelter-adoption/internal/queue"
	"github.com/pawssion/shelter-adoption/internal/repository"
	"github.com/pawssion/shelter-adoption/internal/service/adoption"
)

// AdoptionDecider is the shelter-facing slice of the adoption service.
type AdoptionDecider interface {
	Approve(ctx context.Context, requestID, shelterID uint64) (*adoption.ApprovalResult, error)
	Reject(ctx context.Context, requestID, shelterID uint64) error
}

// ShelterRequestStore reads requests targeting a shelter's animals.
type ShelterRequestStore interface {
	GetByID(ctx context.Context, id uint64) (model.AdoptionRequest, error)
	ListByShelterAndStatus(ctx context.Context, shelterID uint64, status model.RequestStatus) ([]model.AdoptionRequest, error)
}

// RequestAnimalStore resolves animals for the ownership check on reads.
type RequestAnimalStore interface {
	GetByID(ctx context.Context, id uint64) (model.Animal, error)
}

// ShelterAdoptionHandler serves the shelter side of the adoption
// lifecycle. Publish is called after a successful approval; failures
// are logged and ignored because the approval is already committed.
type ShelterAdoptionHandler struct {
	Svc      AdoptionDecider
	Requests ShelterRequestStore
	Animals  RequestAnimalStore
	Publish  func(ctx context.Context, ev queue.AdoptionApprovedEvent) error
}

func NewShelterAdoptionHandler(svc AdoptionDecider, requests ShelterRequestStore, animals RequestAnimalStore, publish func(context.Context, queue.AdoptionApprovedEvent) error) *ShelterAdoptionHandler {
	return &ShelterAdoptionHandler{Svc: svc, Requests: requests, Animals: animals, Publish: publish}
}

// List returns requests for the shelter's animals filtered by ?status=
// (default PENDING).
func (h *ShelterAdoptionHandler) List(c echo.Context) error {
	shelterID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	status := model.RequestStatus(strings.ToUpper(strings.TrimSpace(c.QueryParam("status"))))
	switch status {
	case "":
		status = model.RequestPending
	case model.RequestPending, model.RequestApproved, model.RequestRejected, model.RequestCanceled:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	reqs, err := h.Requests.ListByShelterAndStatus(ctx, shelterID, status)
	if err != nil {
		return errJSON(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"requests": toRequestListJSON(reqs)})
}

// Get returns one request if it targets an animal of the caller.
func (h *ShelterAdoptionHandler) Get(c echo.Context) error {
	shelterID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	req, err := h.Requests.GetByID(ctx, id)
	if err != nil {
		return errJSON(c, err)
	}
	animal, err := h.Animals.GetByID(ctx, req.AnimalID)
	if err != nil {
		return errJSON(c, err)
	}
	if animal.ShelterID != shelterID {
		return errJSON(c, repository.ErrRequestNotFound)
	}
	return c.JSON(http.StatusOK, echo.Map{"request": toRequestJSON(req), "animal": toAnimalJSON(animal)})
}

// Approve runs the approval cascade and, once committed, publishes an
// adoption.approved event for downstream consumers.
func (h *ShelterAdoptionHandler) Approve(c echo.Context) error {
	shelterID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	res, err := h.Svc.Approve(ctx, id, shelterID)
	if err != nil {
		return errJSON(c, err)
	}

	if h.Publish != nil {
		ev := queue.AdoptionApprovedEvent{
			RequestID:     res.Request.ID,
			UserID:        res.Request.UserID,
			AnimalID:      res.Animal.ID,
			AnimalName:    res.Animal.Name,
			AnimalType:    res.Animal.Type,
			ShelterID:     res.Shelter.ID,
			ShelterName:   res.Shelter.Name,
			CanceledCount: len(res.Canceled),
			ApprovedAt:    time.Now().UTC().Format(time.RFC3339),
		}
		if err := h.Publish(c.Request().Context(), ev); err != nil {
			c.Logger().Warnf("publish adoption.approved failed for request %d: %v", res.Request.ID, err)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"request":  toRequestJSON(res.Request),
		"canceled": toRequestListJSON(res.Canceled),
	})
}

// Reject declines a pending request and notifies the user.
func (h *ShelterAdoptionHandler) Reject(c echo.Context) error {
	shelterID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Svc.Reject(ctx, id, shelterID); err != nil {
		return errJSON(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "request rejected"})
}

// Approved lists the shelter's completed adoptions.
func (h *ShelterAdoptionHandler) Approved(c echo.Context) error {
	shelterID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	reqs, err := h.Requests.ListByShelterAndStatus(ctx, shelterID, model.RequestApproved)
	if err != nil {
		return errJSON(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"adoptions": toRequestListJSON(reqs)})
}
