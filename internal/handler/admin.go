package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pawssion/shelter-adoption/internal/model"
)

// ShelterAdminService is the admin-facing slice of the shelter service.
type ShelterAdminService interface {
	Approve(ctx context.Context, shelterID uint64) error
	Reject(ctx context.Context, shelterID uint64) error
	Delete(ctx context.Context, shelterID uint64) error
}

// AdminShelterStore reads shelter accounts for review.
type AdminShelterStore interface {
	GetByID(ctx context.Context, id uint64) (model.Shelter, error)
	ListByApproval(ctx context.Context, state model.ApprovalState) ([]model.Shelter, error)
}

// SessionRevoker invalidates every refresh token a principal holds.
type SessionRevoker interface {
	RevokeAllFor(ctx context.Context, principalID uint64, role string) error
}

// AdminHandler serves the admin review endpoints for shelters.
type AdminHandler struct {
	Svc      ShelterAdminService
	Shelters AdminShelterStore
	Sessions SessionRevoker
}

func NewAdminHandler(svc ShelterAdminService, shelters AdminShelterStore, sessions SessionRevoker) *AdminHandler {
	return &AdminHandler{Svc: svc, Shelters: shelters, Sessions: sessions}
}

// List returns shelters filtered by ?state= (default PENDING).
func (h *AdminHandler) List(c echo.Context) error {
	state := model.ApprovalState(strings.ToUpper(strings.TrimSpace(c.QueryParam("state"))))
	switch state {
	case "":
		state = model.ApprovalPending
	case model.ApprovalPending, model.ApprovalApproved, model.ApprovalRejected:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid state"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	shelters, err := h.Shelters.ListByApproval(ctx, state)
	if err != nil {
		return errJSON(c, err)
	}
	out := make([]shelterJSON, 0, len(shelters))
	for _, sh := range shelters {
		out = append(out, toShelterJSON(sh))
	}
	return c.JSON(http.StatusOK, echo.Map{"shelters": out})
}

// Get returns one shelter in any state.
func (h *AdminHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid shelter id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	sh, err := h.Shelters.GetByID(ctx, id)
	if err != nil {
		return errJSON(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"shelter": toShelterJSON(sh)})
}

// Approve moves a shelter to APPROVED. Repeats are no-ops.
func (h *AdminHandler) Approve(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid shelter id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Svc.Approve(ctx, id); err != nil {
		return errJSON(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "shelter approved"})
}

// Reject moves a shelter to REJECTED, freeing its email for a future
// registration.
func (h *AdminHandler) Reject(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid shelter id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Svc.Reject(ctx, id); err != nil {
		return errJSON(c, err)
	}
	if err := h.Sessions.RevokeAllFor(ctx, id, model.RoleShelter); err != nil {
		c.Logger().Warnf("revoke sessions for shelter %d failed: %v", id, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "shelter rejected"})
}

// Delete removes the shelter and everything under it.
func (h *AdminHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid shelter id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Svc.Delete(ctx, id); err != nil {
		return errJSON(c, err)
	}
	if err := h.Sessions.RevokeAllFor(ctx, id, model.RoleShelter); err != nil {
		c.Logger().Warnf("revoke sessions for shelter %d failed: %v", id, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "shelter deleted"})
}
