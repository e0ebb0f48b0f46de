package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/pawssion/shelter-adoption/internal/model"
)

// AdoptionRepo provides persistence for adoption requests. Status
// transitions that cascade (approval, shelter deletion) are composed by
// the service layer inside a TxRunner unit of work; every method here
// joins the ambient transaction when one is carried in the context.
type AdoptionRepo struct{ DB *sql.DB }

func NewAdoptionRepo(db *sql.DB) *AdoptionRepo { return &AdoptionRepo{DB: db} }

const requestColumns = `id, user_id, animal_id, reason, status, created_at, updated_at`

func scanRequest(row interface{ Scan(...any) error }) (model.AdoptionRequest, error) {
	var ar model.AdoptionRequest
	err := row.Scan(&ar.ID, &ar.UserID, &ar.AnimalID, &ar.Reason, &ar.Status,
		&ar.CreatedAt, &ar.UpdatedAt)
	return ar, err
}

// Create inserts a new pending request. The unique (user_id, animal_id)
// key doubles as a safety net under concurrent duplicate submissions.
func (r *AdoptionRepo) Create(ctx context.Context, ar *model.AdoptionRequest) (uint64, error) {
	res, err := q(ctx, r.DB).ExecContext(ctx,
		"INSERT INTO adoption_requests (user_id, animal_id, reason, status) VALUES (?,?,?,?)",
		ar.UserID, ar.AnimalID, ar.Reason, model.RequestPending)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrDuplicateRequest
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	ar.ID = uint64(id)
	ar.Status = model.RequestPending
	return ar.ID, nil
}

// GetByID fetches a request by id.
func (r *AdoptionRepo) GetByID(ctx context.Context, id uint64) (model.AdoptionRequest, error) {
	row := q(ctx, r.DB).QueryRowContext(ctx,
		"SELECT "+requestColumns+" FROM adoption_requests WHERE id=? LIMIT 1", id)
	ar, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ar, ErrRequestNotFound
	}
	return ar, err
}

// ExistsForUserAndAnimal reports whether the user already has a request
// (any status) for the animal.
func (r *AdoptionRepo) ExistsForUserAndAnimal(ctx context.Context, userID, animalID uint64) (bool, error) {
	var n int
	err := q(ctx, r.DB).QueryRowContext(ctx,
		"SELECT COUNT(*) FROM adoption_requests WHERE user_id=? AND animal_id=?",
		userID, animalID).Scan(&n)
	return n > 0, err
}

// HasApprovedForAnimal reports whether any approved request exists for
// the animal. Guards single-animal deletion.
func (r *AdoptionRepo) HasApprovedForAnimal(ctx context.Context, animalID uint64) (bool, error) {
	var n int
	err := q(ctx, r.DB).QueryRowContext(ctx,
		"SELECT COUNT(*) FROM adoption_requests WHERE animal_id=? AND status=?",
		animalID, model.RequestApproved).Scan(&n)
	return n > 0, err
}

// SetStatus transitions a request's status.
func (r *AdoptionRepo) SetStatus(ctx context.Context, id uint64, status model.RequestStatus) error {
	_, err := q(ctx, r.DB).ExecContext(ctx,
		"UPDATE adoption_requests SET status=? WHERE id=?", status, id)
	return err
}

// ListPendingByAnimalExcept returns the other pending requests for the
// animal, i.e. those the approval cascade must cancel.
func (r *AdoptionRepo) ListPendingByAnimalExcept(ctx context.Context, animalID, exceptID uint64) ([]model.AdoptionRequest, error) {
	rows, err := q(ctx, r.DB).QueryContext(ctx,
		"SELECT "+requestColumns+" FROM adoption_requests WHERE animal_id=? AND id<>? AND status=? ORDER BY id",
		animalID, exceptID, model.RequestPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

// ListByAnimal returns every request for the animal regardless of
// status. Used by the shelter deletion cascade.
func (r *AdoptionRepo) ListByAnimal(ctx context.Context, animalID uint64) ([]model.AdoptionRequest, error) {
	rows, err := q(ctx, r.DB).QueryContext(ctx,
		"SELECT "+requestColumns+" FROM adoption_requests WHERE animal_id=? ORDER BY id", animalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

// ListByUser returns the user's pending and approved requests, newest
// first. Rejected and canceled requests are not shown to the user.
func (r *AdoptionRepo) ListByUser(ctx context.Context, userID uint64) ([]model.AdoptionRequest, error) {
	rows, err := q(ctx, r.DB).QueryContext(ctx,
		"SELECT "+requestColumns+" FROM adoption_requests WHERE user_id=? AND status IN (?,?) ORDER BY created_at DESC, id DESC",
		userID, model.RequestPending, model.RequestApproved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

// ListByShelterAndStatus returns requests for animals owned by the
// shelter in the given status, newest first.
func (r *AdoptionRepo) ListByShelterAndStatus(ctx context.Context, shelterID uint64, status model.RequestStatus) ([]model.AdoptionRequest, error) {
	rows, err := q(ctx, r.DB).QueryContext(ctx,
		`SELECT ar.id, ar.user_id, ar.animal_id, ar.reason, ar.status, ar.created_at, ar.updated_at
		 FROM adoption_requests ar
		 JOIN animals a ON a.id = ar.animal_id
		 WHERE a.shelter_id=? AND ar.status=?
		 ORDER BY ar.created_at DESC, ar.id DESC`,
		shelterID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

// Delete removes a request record entirely. User self-cancel and the
// deletion cascades hard-delete; approve/reject only flag status.
func (r *AdoptionRepo) Delete(ctx context.Context, id uint64) error {
	res, err := q(ctx, r.DB).ExecContext(ctx, "DELETE FROM adoption_requests WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRequestNotFound
	}
	return nil
}

// DeleteByAnimal removes every request referencing the animal.
func (r *AdoptionRepo) DeleteByAnimal(ctx context.Context, animalID uint64) error {
	_, err := q(ctx, r.DB).ExecContext(ctx,
		"DELETE FROM adoption_requests WHERE animal_id=?", animalID)
	return err
}

// isDuplicateKey detects MySQL error 1062 (duplicate entry).
func isDuplicateKey(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "1062")
}

func collectRequests(rows *sql.Rows) ([]model.AdoptionRequest, error) {
	var out []model.AdoptionRequest
	for rows.Next() {
		ar, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ar)
	}
	return out, rows.Err()
}
