package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pawssion/shelter-adoption/internal/model"
)

// ProfileStore is the user persistence slice for profile endpoints.
type ProfileStore interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
	UpdateProfile(ctx context.Context, u *model.User) error
}

// ProfileHandler serves the user's own profile. Completing the profile
// (age, address, contact, gender) is what unlocks adoption requests.
type ProfileHandler struct {
	Users ProfileStore
}

func NewProfileHandler(users ProfileStore) *ProfileHandler {
	return &ProfileHandler{Users: users}
}

type profileUpdateReq struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Contact   *string `json:"contact"`
	Address   *string `json:"address"`
	Age       *int    `json:"age"`
	Gender    *string `json:"gender"`
}

// Get returns the caller's profile.
func (h *ProfileHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return errJSON(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": toUserJSON(u)})
}

// Update applies a partial profile update. Only fields present in the
// body change; email, username and role are immutable here.
func (h *ProfileHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req profileUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Age != nil && (*req.Age < 18 || *req.Age > 120) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "age must be between 18 and 120"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return errJSON(c, err)
	}
	if req.FirstName != nil {
		u.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		u.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Contact != nil {
		u.Contact = strings.TrimSpace(*req.Contact)
	}
	if req.Address != nil {
		u.Address = strings.TrimSpace(*req.Address)
	}
	if req.Age != nil {
		u.Age = req.Age
	}
	if req.Gender != nil {
		u.Gender = strings.TrimSpace(*req.Gender)
	}
	if err := h.Users.UpdateProfile(ctx, &u); err != nil {
		return errJSON(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": toUserJSON(u)})
}
