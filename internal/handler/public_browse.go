package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pawssion/shelter-adoption/internal/model"
	"github.com/pawssion/shelter-adoption/internal/repository"
)

// BrowseShelterStore reads shelters for the public catalog.
type BrowseShelterStore interface {
	GetByID(ctx context.Context, id uint64) (model.Shelter, error)
	ListByApproval(ctx context.Context, state model.ApprovalState) ([]model.Shelter, error)
}

// BrowseAnimalStore reads animal listings for the public catalog.
type BrowseAnimalStore interface {
	GetByID(ctx context.Context, id uint64) (model.Animal, error)
	ListByShelter(ctx context.Context, shelterID uint64) ([]model.Animal, error)
	ListByShelterAndType(ctx context.Context, shelterID uint64, animalType string) ([]model.Animal, error)
}

// BrowseRequestStore resolves the adopted flag on the animal detail.
type BrowseRequestStore interface {
	HasApprovedForAnimal(ctx context.Context, animalID uint64) (bool, error)
}

// PublicHandler serves the unauthenticated browse endpoints. Only
// approved shelters and their animals are visible; pending and rejected
// shelters do not exist as far as the public API is concerned.
type PublicHandler struct {
	Shelters BrowseShelterStore
	Animals  BrowseAnimalStore
	Requests BrowseRequestStore
}

func NewPublicHandler(shelters BrowseShelterStore, animals BrowseAnimalStore, requests BrowseRequestStore) *PublicHandler {
	return &PublicHandler{Shelters: shelters, Animals: animals, Requests: requests}
}

// ListShelters returns the approved shelter catalog.
func (h *PublicHandler) ListShelters(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	shelters, err := h.Shelters.ListByApproval(ctx, model.ApprovalApproved)
	if err != nil {
		return errJSON(c, err)
	}
	out := make([]shelterJSON, 0, len(shelters))
	for _, sh := range shelters {
		out = append(out, toShelterJSON(sh))
	}
	return c.JSON(http.StatusOK, echo.Map{"shelters": out})
}

// GetShelter returns one approved shelter.
func (h *PublicHandler) GetShelter(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid shelter id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	sh, err := h.approvedShelter(ctx, id)
	if err != nil {
		return errJSON(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"shelter": toShelterJSON(sh)})
}

// ShelterAnimals lists an approved shelter's animals, optionally
// filtered by ?type=.
func (h *PublicHandler) ShelterAnimals(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid shelter id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.approvedShelter(ctx, id); err != nil {
		return errJSON(c, err)
	}

	var (
		animals []model.Animal
		err     error
	)
	if t := strings.TrimSpace(c.QueryParam("type")); t != "" {
		animals, err = h.Animals.ListByShelterAndType(ctx, id, t)
	} else {
		animals, err = h.Animals.ListByShelter(ctx, id)
	}
	if err != nil {
		return errJSON(c, err)
	}
	out := make([]animalJSON, 0, len(animals))
	for _, a := range animals {
		out = append(out, toAnimalJSON(a))
	}
	return c.JSON(http.StatusOK, echo.Map{"animals": out})
}

// GetAnimal returns one animal when its shelter is approved.
func (h *PublicHandler) GetAnimal(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid animal id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	a, err := h.Animals.GetByID(ctx, id)
	if err != nil {
		return errJSON(c, err)
	}
	if _, err := h.approvedShelter(ctx, a.ShelterID); err != nil {
		return errJSON(c, repository.ErrAnimalNotFound)
	}

	adopted, err := h.Requests.HasApprovedForAnimal(ctx, id)
	if err != nil {
		return errJSON(c, err)
	}
	j := toAnimalJSON(a)
	j.AdoptionStatus = adoptionStatus(adopted)
	return c.JSON(http.StatusOK, echo.Map{"animal": j})
}

func (h *PublicHandler) approvedShelter(ctx context.Context, id uint64) (model.Shelter, error) {
	sh, err := h.Shelters.GetByID(ctx, id)
	if err != nil {
		return model.Shelter{}, err
	}
	if sh.Approval != model.ApprovalApproved {
		return model.Shelter{}, repository.ErrShelterNotFound
	}
	return sh, nil
}
