package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pawssion/shelter-adoption/internal/model"
	"github.com/pawssion/shelter-adoption/internal/repository"
)

// AdoptionSubmitter is the user-facing slice of the adoption service.
type AdoptionSubmitter interface {
	Submit(ctx context.Context, userID, animalID uint64, reason string) (model.AdoptionRequest, error)
	Cancel(ctx context.Context, requestID, userID uint64) error
}

// UserRequestStore reads a user's own requests.
type UserRequestStore interface {
	GetByID(ctx context.Context, id uint64) (model.AdoptionRequest, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.AdoptionRequest, error)
}

// UserAdoptionHandler serves the user side of the adoption lifecycle.
type UserAdoptionHandler struct {
	Svc      AdoptionSubmitter
	Requests UserRequestStore
}

func NewUserAdoptionHandler(svc AdoptionSubmitter, requests UserRequestStore) *UserAdoptionHandler {
	return &UserAdoptionHandler{Svc: svc, Requests: requests}
}

type adoptReq struct {
	Reason string `json:"reason"`
}

// Adopt submits an adoption request for the animal in the path.
func (h *UserAdoptionHandler) Adopt(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	animalID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid animal id"})
	}
	var req adoptReq
	_ = c.Bind(&req) // reason is optional, an empty body is fine

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	created, err := h.Svc.Submit(ctx, userID, animalID, strings.TrimSpace(req.Reason))
	if err != nil {
		return errJSON(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"request": toRequestJSON(created)})
}

// MyRequests lists the caller's pending and approved requests, newest
// first. Rejected and canceled requests drop out of this feed.
func (h *UserAdoptionHandler) MyRequests(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	reqs, err := h.Requests.ListByUser(ctx, userID)
	if err != nil {
		return errJSON(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"requests": toRequestListJSON(reqs)})
}

// Get returns one of the caller's own requests.
func (h *UserAdoptionHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
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
	if req.UserID != userID {
		// Hide the existence of other users' requests.
		return errJSON(c, repository.ErrRequestNotFound)
	}
	return c.JSON(http.StatusOK, echo.Map{"request": toRequestJSON(req)})
}

// Cancel withdraws the caller's own request. Approved requests cannot
// be withdrawn.
func (h *UserAdoptionHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Svc.Cancel(ctx, id, userID); err != nil {
		return errJSON(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "request canceled"})
}
