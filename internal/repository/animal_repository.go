package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/pawssion/shelter-adoption/internal/model"
)

// AnimalRepo provides persistence for shelter-owned animal listings.
type AnimalRepo struct{ DB *sql.DB }

func NewAnimalRepo(db *sql.DB) *AnimalRepo { return &AnimalRepo{DB: db} }

const animalColumns = `id, shelter_id, name, age, breed, gender, type, description, image, created_at, updated_at`

func scanAnimal(row interface{ Scan(...any) error }) (model.Animal, error) {
	var a model.Animal
	err := row.Scan(&a.ID, &a.ShelterID, &a.Name, &a.Age, &a.Breed, &a.Gender,
		&a.Type, &a.Description, &a.Image, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// Create inserts a new animal listing owned by the given shelter.
func (r *AnimalRepo) Create(ctx context.Context, a *model.Animal) (uint64, error) {
	res, err := q(ctx, r.DB).ExecContext(ctx,
		`INSERT INTO animals (shelter_id, name, age, breed, gender, type, description, image)
		 VALUES (?,?,?,?,?,?,?,?)`,
		a.ShelterID, a.Name, a.Age, a.Breed, a.Gender, a.Type, a.Description, a.Image)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	a.ID = uint64(id)
	return a.ID, nil
}

// GetByID fetches an animal by id.
func (r *AnimalRepo) GetByID(ctx context.Context, id uint64) (model.Animal, error) {
	row := q(ctx, r.DB).QueryRowContext(ctx,
		"SELECT "+animalColumns+" FROM animals WHERE id=? LIMIT 1", id)
	a, err := scanAnimal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return a, ErrAnimalNotFound
	}
	return a, err
}

// Update persists the editable listing fields. Ownership is checked by
// the caller before updating.
func (r *AnimalRepo) Update(ctx context.Context, a *model.Animal) error {
	_, err := q(ctx, r.DB).ExecContext(ctx,
		`UPDATE animals SET name=?, age=?, breed=?, gender=?, type=?, description=?, image=? WHERE id=?`,
		a.Name, a.Age, a.Breed, a.Gender, a.Type, a.Description, a.Image, a.ID)
	return err
}

// Delete removes a single animal record. Request cleanup happens in the
// same unit of work, driven by the service layer.
func (r *AnimalRepo) Delete(ctx context.Context, id uint64) error {
	res, err := q(ctx, r.DB).ExecContext(ctx, "DELETE FROM animals WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAnimalNotFound
	}
	return nil
}

// ListByShelter returns all animals owned by a shelter, newest first.
func (r *AnimalRepo) ListByShelter(ctx context.Context, shelterID uint64) ([]model.Animal, error) {
	rows, err := q(ctx, r.DB).QueryContext(ctx,
		"SELECT "+animalColumns+" FROM animals WHERE shelter_id=? ORDER BY created_at DESC, id DESC", shelterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAnimals(rows)
}

// ListByShelterAndType returns a shelter's animals filtered by type,
// matched case-insensitively, for the public browse view.
func (r *AnimalRepo) ListByShelterAndType(ctx context.Context, shelterID uint64, animalType string) ([]model.Animal, error) {
	rows, err := q(ctx, r.DB).QueryContext(ctx,
		"SELECT "+animalColumns+" FROM animals WHERE shelter_id=? AND LOWER(type)=? ORDER BY created_at DESC, id DESC",
		shelterID, strings.ToLower(animalType))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAnimals(rows)
}

func collectAnimals(rows *sql.Rows) ([]model.Animal, error) {
	var out []model.Animal
	for rows.Next() {
		a, err := scanAnimal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
