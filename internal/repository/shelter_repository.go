package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/pawssion/shelter-adoption/internal/model"
	"github.com/pawssion/shelter-adoption/internal/utils"
)

// ShelterRepo provides persistence for shelter accounts and their
// approval state. A rejected shelter's email becomes available again:
// re-registration purges the rejected record first.
type ShelterRepo struct{ DB *sql.DB }

func NewShelterRepo(db *sql.DB) *ShelterRepo { return &ShelterRepo{DB: db} }

const shelterColumns = `id, name, description, address, contact_number, email, website, date_established, shelter_type, approval_state, password_hash, created_at, updated_at`

func scanShelter(row interface{ Scan(...any) error }) (model.Shelter, error) {
	var s model.Shelter
	var website sql.NullString
	err := row.Scan(&s.ID, &s.Name, &s.Description, &s.Address, &s.ContactNumber,
		&s.Email, &website, &s.DateEstablished, &s.ShelterType, &s.Approval,
		&s.PasswordHash, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return s, err
	}
	if website.Valid {
		w := website.String
		s.Website = &w
	}
	return s, nil
}

// Create inserts a shelter in the PENDING approval state.
func (r *ShelterRepo) Create(ctx context.Context, s *model.Shelter, password string, cost int) (uint64, error) {
	s.Email = strings.ToLower(strings.TrimSpace(s.Email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	var website sql.NullString
	if s.Website != nil {
		website = sql.NullString{String: *s.Website, Valid: true}
	}
	res, err := q(ctx, r.DB).ExecContext(ctx,
		`INSERT INTO shelters (name, description, address, contact_number, email, website, date_established, shelter_type, approval_state, password_hash)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		s.Name, s.Description, s.Address, s.ContactNumber, s.Email, website,
		s.DateEstablished, s.ShelterType, model.ApprovalPending, hash)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	s.ID = uint64(id)
	s.Approval = model.ApprovalPending
	return s.ID, nil
}

// GetByID fetches a shelter by id.
func (r *ShelterRepo) GetByID(ctx context.Context, id uint64) (model.Shelter, error) {
	row := q(ctx, r.DB).QueryRowContext(ctx,
		"SELECT "+shelterColumns+" FROM shelters WHERE id=? LIMIT 1", id)
	s, err := scanShelter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return s, ErrShelterNotFound
	}
	return s, err
}

// GetByEmail fetches a shelter by normalized email.
func (r *ShelterRepo) GetByEmail(ctx context.Context, email string) (model.Shelter, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := q(ctx, r.DB).QueryRowContext(ctx,
		"SELECT "+shelterColumns+" FROM shelters WHERE email=? LIMIT 1", email)
	s, err := scanShelter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return s, ErrShelterNotFound
	}
	return s, err
}

// EmailReserved reports whether the email is held by a pending or
// approved shelter. Rejected shelters do not reserve their email.
func (r *ShelterRepo) EmailReserved(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var n int
	err := q(ctx, r.DB).QueryRowContext(ctx,
		"SELECT COUNT(*) FROM shelters WHERE email=? AND approval_state <> ?",
		email, model.ApprovalRejected).Scan(&n)
	return n > 0, err
}

// PurgeRejectedByEmail removes a rejected shelter record holding the
// given email, freeing it for re-registration. Removing a record that
// does not exist is not an error.
func (r *ShelterRepo) PurgeRejectedByEmail(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	_, err := q(ctx, r.DB).ExecContext(ctx,
		"DELETE FROM shelters WHERE email=? AND approval_state=?",
		email, model.ApprovalRejected)
	return err
}

// SetApproval transitions the shelter's approval state.
func (r *ShelterRepo) SetApproval(ctx context.Context, id uint64, state model.ApprovalState) error {
	res, err := q(ctx, r.DB).ExecContext(ctx,
		"UPDATE shelters SET approval_state=? WHERE id=?", state, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		if err := q(ctx, r.DB).QueryRowContext(ctx,
			"SELECT COUNT(*) FROM shelters WHERE id=?", id).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return ErrShelterNotFound
		}
	}
	return nil
}

// Delete removes the shelter record itself. The caller is responsible
// for cascading animals and requests first, within the same unit of
// work.
func (r *ShelterRepo) Delete(ctx context.Context, id uint64) error {
	res, err := q(ctx, r.DB).ExecContext(ctx, "DELETE FROM shelters WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrShelterNotFound
	}
	return nil
}

// ListByApproval returns shelters in the given approval state, oldest
// first, for the admin review queues and the public browse list.
func (r *ShelterRepo) ListByApproval(ctx context.Context, state model.ApprovalState) ([]model.Shelter, error) {
	rows, err := q(ctx, r.DB).QueryContext(ctx,
		"SELECT "+shelterColumns+" FROM shelters WHERE approval_state=? ORDER BY id", state)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Shelter
	for rows.Next() {
		s, err := scanShelter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
