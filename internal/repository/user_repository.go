package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/pawssion/shelter-adoption/internal/model"
	"github.com/pawssion/shelter-adoption/internal/utils"
)

// UserRepo provides persistence for user and admin accounts.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `id, first_name, last_name, username, email, contact, address, age, gender, role, password_hash, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	var age sql.NullInt64
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Username, &u.Email,
		&u.Contact, &u.Address, &age, &u.Gender, &u.Role, &u.PasswordHash,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return u, err
	}
	if age.Valid {
		n := int(age.Int64)
		u.Age = &n
	}
	return u, nil
}

// Create inserts a user account and returns its ID. Duplicate key
// violations are mapped to ErrEmailExists / ErrUsernameExists.
func (r *UserRepo) Create(ctx context.Context, u *model.User, password string, cost int) (uint64, error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := q(ctx, r.DB).ExecContext(ctx,
		"INSERT INTO users (first_name, last_name, username, email, role, password_hash) VALUES (?,?,?,?,?,?)",
		u.FirstName, u.LastName, u.Username, u.Email, u.Role, hash)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			if strings.Contains(err.Error(), "username") {
				return 0, ErrUsernameExists
			}
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	u.ID = uint64(id)
	u.PasswordHash = hash
	return u.ID, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := q(ctx, r.DB).QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrUserNotFound
	}
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	row := q(ctx, r.DB).QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrUserNotFound
	}
	return u, err
}

// EmailTaken reports whether the email is reserved by any user account.
func (r *UserRepo) EmailTaken(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var n int
	err := q(ctx, r.DB).QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE email=?", email).Scan(&n)
	return n > 0, err
}

// UsernameTaken reports whether the username is already in use.
func (r *UserRepo) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var n int
	err := q(ctx, r.DB).QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE username=?", username).Scan(&n)
	return n > 0, err
}

// UpdateProfile persists the editable profile fields, including the
// adoption-precondition fields (age, address, contact, gender).
func (r *UserRepo) UpdateProfile(ctx context.Context, u *model.User) error {
	var age sql.NullInt64
	if u.Age != nil {
		age = sql.NullInt64{Int64: int64(*u.Age), Valid: true}
	}
	_, err := q(ctx, r.DB).ExecContext(ctx,
		`UPDATE users SET first_name=?, last_name=?, contact=?, address=?, age=?, gender=? WHERE id=?`,
		u.FirstName, u.LastName, u.Contact, u.Address, age, u.Gender, u.ID)
	return err
}

// ListAdmins returns every admin account. Admin notifications fan out
// to all of them.
func (r *UserRepo) ListAdmins(ctx context.Context) ([]model.User, error) {
	rows, err := q(ctx, r.DB).QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE role=? ORDER BY id", model.RoleAdmin)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// EnsureAdmin seeds a default admin account when none exists with the
// given email. Called once at startup.
func (r *UserRepo) EnsureAdmin(ctx context.Context, email, password string, cost int) error {
	taken, err := r.EmailTaken(ctx, email)
	if err != nil || taken {
		return err
	}
	admin := &model.User{Username: "admin", Email: email, Role: model.RoleAdmin}
	_, err = r.Create(ctx, admin, password, cost)
	return err
}
