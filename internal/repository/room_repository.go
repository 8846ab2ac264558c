package repository

import (
	"context"
	"database/sql"

	"github.com/mfadillah/kostly/internal/model"
)

// RoomRepo provides read access to rooms and transactional status
// updates.  Rooms are created and priced through owner CRUD outside
// the rental workflow; the workflow only flips availability.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo returns a new RoomRepo bound to the given database.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

// DB exposes the underlying handle so services can open transactions.
func (r *RoomRepo) DB() *sql.DB { return r.db }

const roomColumns = `id, name, monthly_rate, status, created_at, updated_at`

func scanRoom(row *sql.Row) (*model.Room, error) {
	var m model.Room
	err := row.Scan(&m.ID, &m.Name, &m.MonthlyRate, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByID fetches a room by primary key.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`
	return scanRoom(r.db.QueryRowContext(ctx, q, id))
}

// GetByIDTx fetches a room inside an open transaction so that the
// availability check and the status flip see the same snapshot.
func (r *RoomRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ? FOR UPDATE`
	return scanRoom(tx.QueryRowContext(ctx, q, id))
}

// ListAvailable returns all AVAILABLE rooms ordered by name.
func (r *RoomRepo) ListAvailable(ctx context.Context) ([]model.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms WHERE status = ? ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q, model.RoomAvailable)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Room
	for rows.Next() {
		var m model.Room
		if err := rows.Scan(&m.ID, &m.Name, &m.MonthlyRate, &m.Status, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// UpdateStatusTx flips a room's availability within a transaction.
func (r *RoomRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string) error {
	const q = `UPDATE rooms SET status = ?, updated_at = NOW() WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, status, id)
	return err
}
