// Package handler defines the HTTP handlers. Handlers depend on small
// store interfaces so tests can run them against the in-memory
// repositories, and translate repository sentinel errors to HTTP
// status codes.
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pawssion/shelter-adoption/internal/model"
	"github.com/pawssion/shelter-adoption/internal/repository"
)

// getUserID extracts the authenticated principal id stored by the JWT
// middleware and converts it to uint64.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses a numeric :id path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}

const dbTimeout = 5 * time.Second

// errJSON maps repository sentinels to HTTP responses. Unrecognized
// errors become 500 with a generic message so internals never leak.
func errJSON(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrShelterNotFound),
		errors.Is(err, repository.ErrAnimalNotFound),
		errors.Is(err, repository.ErrRequestNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrConflict),
		errors.Is(err, repository.ErrDuplicateRequest),
		errors.Is(err, repository.ErrEmailExists),
		errors.Is(err, repository.ErrUsernameExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrProfileIncomplete):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// ----- response DTOs shared across handlers -----

type userJSON struct {
	ID              uint64 `json:"id"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	Contact         string `json:"contact,omitempty"`
	Address         string `json:"address,omitempty"`
	Age             *int   `json:"age,omitempty"`
	Gender          string `json:"gender,omitempty"`
	Role            string `json:"role"`
	ProfileComplete bool   `json:"profile_complete"`
}

func toUserJSON(u model.User) userJSON {
	return userJSON{
		ID:              u.ID,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Username:        u.Username,
		Email:           u.Email,
		Contact:         u.Contact,
		Address:         u.Address,
		Age:             u.Age,
		Gender:          u.Gender,
		Role:            u.Role,
		ProfileComplete: u.ProfileComplete(),
	}
}

type shelterJSON struct {
	ID              uint64  `json:"id"`
	Name            string  `json:"name"`
	Description     string  `json:"description,omitempty"`
	Address         string  `json:"address"`
	ContactNumber   string  `json:"contact_number"`
	Email           string  `json:"email"`
	Website         *string `json:"website,omitempty"`
	DateEstablished string  `json:"date_established,omitempty"`
	ShelterType     string  `json:"shelter_type"`
	State           string  `json:"state"`
}

func toShelterJSON(s model.Shelter) shelterJSON {
	return shelterJSON{
		ID:              s.ID,
		Name:            s.Name,
		Description:     s.Description,
		Address:         s.Address,
		ContactNumber:   s.ContactNumber,
		Email:           s.Email,
		Website:         s.Website,
		DateEstablished: s.DateEstablished,
		ShelterType:     s.ShelterType,
		State:           string(s.Approval),
	}
}

type animalJSON struct {
	ID          uint64 `json:"id"`
	ShelterID   uint64 `json:"shelter_id"`
	Name        string `json:"name"`
	Age         string `json:"age,omitempty"`
	Breed       string `json:"breed,omitempty"`
	Gender      string `json:"gender,omitempty"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`

	// AdoptionStatus is filled only on views that resolve it.
	AdoptionStatus string `json:"adoption_status,omitempty"`
}

func adoptionStatus(adopted bool) string {
	if adopted {
		return "ADOPTED"
	}
	return "AVAILABLE"
}

func toAnimalJSON(a model.Animal) animalJSON {
	return animalJSON{
		ID:          a.ID,
		ShelterID:   a.ShelterID,
		Name:        a.Name,
		Age:         a.Age,
		Breed:       a.Breed,
		Gender:      a.Gender,
		Type:        a.Type,
		Description: a.Description,
		Image:       a.Image,
	}
}

type requestJSON struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"user_id"`
	AnimalID  uint64    `json:"animal_id"`
	Reason    string    `json:"reason,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func toRequestJSON(r model.AdoptionRequest) requestJSON {
	return requestJSON{
		ID:        r.ID,
		UserID:    r.UserID,
		AnimalID:  r.AnimalID,
		Reason:    r.Reason,
		Status:    string(r.Status),
		CreatedAt: r.CreatedAt,
	}
}

func toRequestListJSON(rs []model.AdoptionRequest) []requestJSON {
	out := make([]requestJSON, 0, len(rs))
	for _, r := range rs {
		out = append(out, toRequestJSON(r))
	}
	return out
}

type notificationJSON struct {
	ID        uint64    `json:"id"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func toNotificationJSON(n model.Notification) notificationJSON {
	return notificationJSON{ID: n.ID, Message: n.Message, Read: n.Read, CreatedAt: n.CreatedAt}
}
