package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawssion/shelter-adoption/internal/handler"
	"github.com/pawssion/shelter-adoption/internal/model"
	"github.com/pawssion/shelter-adoption/internal/repository/memory"
)

func listNotifications(t *testing.T, h *handler.NotificationHandler, principalID uint64, role string) map[string]any {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/notifications", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", float64(principalID)) // JWT claims arrive as float64
	c.Set("role", role)

	require.NoError(t, h.List(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestNotificationFeedMarksReadOnView(t *testing.T) {
	store := memory.NewStore()
	h := handler.NewNotificationHandler(store.Notifications())
	ctx := context.Background()

	require.NoError(t, store.Notifications().Add(ctx, model.UserRecipient(1), "first"))
	require.NoError(t, store.Notifications().Add(ctx, model.UserRecipient(1), "second"))
	require.NoError(t, store.Notifications().Add(ctx, model.UserRecipient(2), "not yours"))

	body := listNotifications(t, h, 1, model.RoleUser)
	assert.EqualValues(t, 2, body["unread"])
	notes := body["notifications"].([]any)
	require.Len(t, notes, 2)
	// Newest first.
	assert.Equal(t, "second", notes[0].(map[string]any)["message"])

	// Viewing acknowledged the feed.
	body = listNotifications(t, h, 1, model.RoleUser)
	assert.EqualValues(t, 0, body["unread"])

	// The other user's feed is untouched.
	body = listNotifications(t, h, 2, model.RoleUser)
	assert.EqualValues(t, 1, body["unread"])
}

func TestNotificationFeedSeparatesShelterFromUser(t *testing.T) {
	store := memory.NewStore()
	h := handler.NewNotificationHandler(store.Notifications())
	ctx := context.Background()

	// Same numeric id, different principal kinds.
	require.NoError(t, store.Notifications().Add(ctx, model.UserRecipient(5), "for the user"))
	require.NoError(t, store.Notifications().Add(ctx, model.ShelterRecipient(5), "for the shelter"))

	body := listNotifications(t, h, 5, model.RoleShelter)
	notes := body["notifications"].([]any)
	require.Len(t, notes, 1)
	assert.Equal(t, "for the shelter", notes[0].(map[string]any)["message"])

	body = listNotifications(t, h, 5, model.RoleUser)
	notes = body["notifications"].([]any)
	require.Len(t, notes, 1)
	assert.Equal(t, "for the user", notes[0].(map[string]any)["message"])
}
