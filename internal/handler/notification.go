package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pawssion/shelter-adoption/internal/model"
)

// NotificationStore reads and flips the recipient's ledger.
type NotificationStore interface {
	ListFor(ctx context.Context, rec model.Recipient) ([]model.Notification, error)
	MarkAllRead(ctx context.Context, rec model.Recipient) error
}

// NotificationHandler serves the per-principal notification feed for
// every role.
type NotificationHandler struct {
	Notes NotificationStore
}

func NewNotificationHandler(notes NotificationStore) *NotificationHandler {
	return &NotificationHandler{Notes: notes}
}

// List returns the caller's notifications newest first, reporting how
// many were unread at fetch time, then marks the feed read. Viewing is
// what acknowledges.
func (h *NotificationHandler) List(c echo.Context) error {
	id, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	rec := model.UserRecipient(id)
	if role, _ := c.Get("role").(string); role == model.RoleShelter {
		rec = model.ShelterRecipient(id)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	notes, err := h.Notes.ListFor(ctx, rec)
	if err != nil {
		return errJSON(c, err)
	}
	unread := 0
	out := make([]notificationJSON, 0, len(notes))
	for _, n := range notes {
		if !n.Read {
			unread++
		}
		out = append(out, toNotificationJSON(n))
	}
	if unread > 0 {
		if err := h.Notes.MarkAllRead(ctx, rec); err != nil {
			c.Logger().Warnf("mark notifications read failed: %v", err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"notifications": out, "unread": unread})
}
