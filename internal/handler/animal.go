package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pawssion/shelter-adoption/internal/model"
	"github.com/pawssion/shelter-adoption/internal/storage"
)

// AnimalStore is the animal persistence slice for shelter listings.
type AnimalStore interface {
	Create(ctx context.Context, a *model.Animal) (uint64, error)
	GetByID(ctx context.Context, id uint64) (model.Animal, error)
	Update(ctx context.Context, a *model.Animal) error
	ListByShelter(ctx context.Context, shelterID uint64) ([]model.Animal, error)
	ListByShelterAndType(ctx context.Context, shelterID uint64, animalType string) ([]model.Animal, error)
}

// AnimalRemover runs the guarded single-animal deletion.
type AnimalRemover interface {
	DeleteAnimal(ctx context.Context, animalID, shelterID uint64) error
}

// AnimalRequestStore resolves whether a listing already has an approved
// adoption.
type AnimalRequestStore interface {
	HasApprovedForAnimal(ctx context.Context, animalID uint64) (bool, error)
}

// AnimalHandler serves the shelter-facing listing endpoints. Animals
// are submitted as multipart forms so the image rides along with the
// metadata.
type AnimalHandler struct {
	Animals  AnimalStore
	Remover  AnimalRemover
	Requests AnimalRequestStore
	Blobs    storage.BlobStore
}

func NewAnimalHandler(animals AnimalStore, remover AnimalRemover, requests AnimalRequestStore, blobs storage.BlobStore) *AnimalHandler {
	return &AnimalHandler{Animals: animals, Remover: remover, Requests: requests, Blobs: blobs}
}

// Create adds a listing owned by the calling shelter. The image part is
// optional; when present it is stored and the returned reference saved
// on the record.
func (h *AnimalHandler) Create(c echo.Context) error {
	shelterID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	a := model.Animal{
		ShelterID:   shelterID,
		Name:        strings.TrimSpace(c.FormValue("name")),
		Age:         strings.TrimSpace(c.FormValue("age")),
		Breed:       strings.TrimSpace(c.FormValue("breed")),
		Gender:      strings.TrimSpace(c.FormValue("gender")),
		Type:        strings.TrimSpace(c.FormValue("type")),
		Description: strings.TrimSpace(c.FormValue("description")),
	}
	if a.Type == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "type required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	ref, err := h.saveImage(ctx, c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store image failed"})
	}
	a.Image = ref

	if _, err := h.Animals.Create(ctx, &a); err != nil {
		return errJSON(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"animal": toAnimalJSON(a)})
}

// Update edits an owned listing. Absent form fields keep their current
// values; a new image replaces the stored reference.
func (h *AnimalHandler) Update(c echo.Context) error {
	shelterID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
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
	if a.ShelterID != shelterID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	setIfPresent(c, "name", &a.Name)
	setIfPresent(c, "age", &a.Age)
	setIfPresent(c, "breed", &a.Breed)
	setIfPresent(c, "gender", &a.Gender)
	setIfPresent(c, "type", &a.Type)
	setIfPresent(c, "description", &a.Description)

	if ref, err := h.saveImage(ctx, c); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store image failed"})
	} else if ref != "" {
		a.Image = ref
	}

	if err := h.Animals.Update(ctx, &a); err != nil {
		return errJSON(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"animal": toAnimalJSON(a)})
}

// Delete removes an owned listing unless an approved adoption exists.
func (h *AnimalHandler) Delete(c echo.Context) error {
	shelterID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid animal id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Remover.DeleteAnimal(ctx, id, shelterID); err != nil {
		return errJSON(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "animal deleted"})
}

// ListMine returns the calling shelter's listings, optionally filtered
// by ?type=.
func (h *AnimalHandler) ListMine(c echo.Context) error {
	shelterID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	var animals []model.Animal
	if t := strings.TrimSpace(c.QueryParam("type")); t != "" {
		animals, err = h.Animals.ListByShelterAndType(ctx, shelterID, t)
	} else {
		animals, err = h.Animals.ListByShelter(ctx, shelterID)
	}
	if err != nil {
		return errJSON(c, err)
	}

	out := make([]animalJSON, 0, len(animals))
	for _, a := range animals {
		j := toAnimalJSON(a)
		adopted, err := h.Requests.HasApprovedForAnimal(ctx, a.ID)
		if err != nil {
			return errJSON(c, err)
		}
		j.AdoptionStatus = adoptionStatus(adopted)
		out = append(out, j)
	}
	return c.JSON(http.StatusOK, echo.Map{"animals": out})
}

func (h *AnimalHandler) saveImage(ctx context.Context, c echo.Context) (string, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		return "", nil // no image part
	}
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()
	return h.Blobs.Save(ctx, fh.Filename, src)
}

func setIfPresent(c echo.Context, field string, dst *string) {
	if v := c.FormValue(field); v != "" {
		*dst = strings.TrimSpace(v)
	}
}
