package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawssion/shelter-adoption/internal/handler"
	"github.com/pawssion/shelter-adoption/internal/model"
	"github.com/pawssion/shelter-adoption/internal/repository/memory"
)

func itoa(id uint64) string { return strconv.FormatUint(id, 10) }

func browseGet(t *testing.T, h echo.HandlerFunc, path, paramName, paramValue string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if paramName != "" {
		c.SetParamNames(paramName)
		c.SetParamValues(paramValue)
	}
	require.NoError(t, h(c))

	var body map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func seedBrowseShelter(t *testing.T, store *memory.Store, state model.ApprovalState) uint64 {
	t.Helper()
	ctx := context.Background()
	sh := model.Shelter{Name: "Paws " + string(state), Email: string(state) + "@paws.test"}
	id, err := store.Shelters().Create(ctx, &sh, "secret123", 4)
	require.NoError(t, err)
	if state != model.ApprovalPending {
		require.NoError(t, store.Shelters().SetApproval(ctx, id, state))
	}
	return id
}

func TestPublicListsOnlyApprovedShelters(t *testing.T) {
	store := memory.NewStore()
	h := handler.NewPublicHandler(store.Shelters(), store.Animals(), store.Requests())

	approved := seedBrowseShelter(t, store, model.ApprovalApproved)
	seedBrowseShelter(t, store, model.ApprovalPending)
	seedBrowseShelter(t, store, model.ApprovalRejected)

	rec, body := browseGet(t, h.ListShelters, "/v1/shelters", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	shelters := body["shelters"].([]any)
	require.Len(t, shelters, 1)
	assert.EqualValues(t, approved, shelters[0].(map[string]any)["id"])
}

func TestPublicHidesUnapprovedShelterAndItsAnimals(t *testing.T) {
	store := memory.NewStore()
	h := handler.NewPublicHandler(store.Shelters(), store.Animals(), store.Requests())
	ctx := context.Background()

	pending := seedBrowseShelter(t, store, model.ApprovalPending)
	a := model.Animal{ShelterID: pending, Name: "Rex", Type: "dog"}
	animalID, err := store.Animals().Create(ctx, &a)
	require.NoError(t, err)

	rec, _ := browseGet(t, h.GetShelter, "/v1/shelters/1", "id", itoa(pending))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// The animal is invisible too, as not-found rather than forbidden.
	rec, _ = browseGet(t, h.GetAnimal, "/v1/animals/1", "id", itoa(animalID))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPublicAnimalDetailCarriesAdoptionStatus(t *testing.T) {
	store := memory.NewStore()
	h := handler.NewPublicHandler(store.Shelters(), store.Animals(), store.Requests())
	ctx := context.Background()

	shelterID := seedBrowseShelter(t, store, model.ApprovalApproved)
	a := model.Animal{ShelterID: shelterID, Name: "Mia", Type: "cat"}
	animalID, err := store.Animals().Create(ctx, &a)
	require.NoError(t, err)

	rec, body := browseGet(t, h.GetAnimal, "/v1/animals/1", "id", itoa(animalID))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "AVAILABLE", body["animal"].(map[string]any)["adoption_status"])

	req := model.AdoptionRequest{UserID: 1, AnimalID: animalID}
	reqID, err := store.Requests().Create(ctx, &req)
	require.NoError(t, err)
	require.NoError(t, store.Requests().SetStatus(ctx, reqID, model.RequestApproved))

	rec, body = browseGet(t, h.GetAnimal, "/v1/animals/1", "id", itoa(animalID))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ADOPTED", body["animal"].(map[string]any)["adoption_status"])
}

func TestPublicShelterAnimalsFiltersByType(t *testing.T) {
	store := memory.NewStore()
	h := handler.NewPublicHandler(store.Shelters(), store.Animals(), store.Requests())
	ctx := context.Background()

	shelterID := seedBrowseShelter(t, store, model.ApprovalApproved)
	for _, a := range []model.Animal{
		{ShelterID: shelterID, Name: "Rex", Type: "dog"},
		{ShelterID: shelterID, Name: "Mia", Type: "cat"},
		{ShelterID: shelterID, Name: "Bo", Type: "dog"},
	} {
		a := a
		_, err := store.Animals().Create(ctx, &a)
		require.NoError(t, err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/shelters/1/animals?type=dog", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(itoa(shelterID))
	require.NoError(t, h.ShelterAnimals(c))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body["animals"].([]any), 2)
}
