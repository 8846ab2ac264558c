package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/mfadillah/kostly/internal/model"
)

// UserRepo provides account lookups for authentication and the
// customer details forwarded to the payment gateway.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo returns a new UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = `id, name, email, phone, password_hash, role, created_at, updated_at`

func scanUser(row *sql.Row) (*model.User, error) {
	var m model.User
	err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.PasswordHash, &m.Role, &m.CreatedAt, &m.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByID fetches a user by primary key.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

// GetByEmail fetches a user by unique email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return scanUser(r.db.QueryRowContext(ctx, q, email))
}

// Create inserts a new user and populates the generated ID.  A
// duplicate email surfaces as ErrEmailTaken via the unique key.
func (r *UserRepo) Create(ctx context.Context, m *model.User) error {
	const q = `INSERT INTO users (name, email, phone, password_hash, role) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, m.Name, m.Email, m.Phone, m.PasswordHash, m.Role)
	if err != nil {
		if strings.Contains(err.Error(), "Duplicate entry") {
			return ErrEmailTaken
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}
