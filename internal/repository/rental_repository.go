package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/mfadillah/kostly/internal/model"
)

// RentalRepo provides CRUD operations for rentals.  A rental is the
// unit the workflow state machine revolves around: bookings create
// one, transfers close one and open another, and reconciliation
// closes or extends them depending on the payment outcome.
type RentalRepo struct {
	db *sql.DB
}

// NewRentalRepo returns a new RentalRepo bound to the given database.
func NewRentalRepo(db *sql.DB) *RentalRepo { return &RentalRepo{db: db} }

// DB exposes the underlying handle so services can open transactions.
func (r *RentalRepo) DB() *sql.DB { return r.db }

const rentalColumns = `id, code, user_id, room_id, start_date, end_date, monthly_rate, duration_months, status, note, created_at, updated_at`

func scanRental(row *sql.Row) (*model.Rental, error) {
	var m model.Rental
	err := row.Scan(&m.ID, &m.Code, &m.UserID, &m.RoomID, &m.StartDate, &m.EndDate,
		&m.MonthlyRate, &m.DurationMonths, &m.Status, &m.Note, &m.CreatedAt, &m.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrRentalNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByID fetches a rental by primary key.
func (r *RentalRepo) GetByID(ctx context.Context, id uint64) (*model.Rental, error) {
	const q = `SELECT ` + rentalColumns + ` FROM rentals WHERE id = ?`
	return scanRental(r.db.QueryRowContext(ctx, q, id))
}

// GetByIDTx fetches a rental inside an open transaction with a row
// lock, so concurrent reconciliation and transfer cannot interleave
// on the same rental.
func (r *RentalRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Rental, error) {
	const q = `SELECT ` + rentalColumns + ` FROM rentals WHERE id = ? FOR UPDATE`
	return scanRental(tx.QueryRowContext(ctx, q, id))
}

// FindActiveByUserTx returns the user's ACTIVE rental, or
// ErrRentalNotFound when the user is not currently renting.
func (r *RentalRepo) FindActiveByUserTx(ctx context.Context, tx *sql.Tx, userID uint64) (*model.Rental, error) {
	const q = `SELECT ` + rentalColumns + ` FROM rentals WHERE user_id = ? AND status = ? LIMIT 1`
	return scanRental(tx.QueryRowContext(ctx, q, userID, model.RentalActive))
}

// FindActiveByRoomTx returns the ACTIVE rental occupying a room, or
// ErrRentalNotFound when the room has none.
func (r *RentalRepo) FindActiveByRoomTx(ctx context.Context, tx *sql.Tx, roomID uint64) (*model.Rental, error) {
	const q = `SELECT ` + rentalColumns + ` FROM rentals WHERE room_id = ? AND status = ? LIMIT 1`
	return scanRental(tx.QueryRowContext(ctx, q, roomID, model.RentalActive))
}

// CreateTx inserts a new rental within an existing transaction and
// populates the generated ID on the provided record.
func (r *RentalRepo) CreateTx(ctx context.Context, tx *sql.Tx, m *model.Rental) error {
	const q = `INSERT INTO rentals (code, user_id, room_id, start_date, end_date, monthly_rate, duration_months, status, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, m.Code, m.UserID, m.RoomID, m.StartDate, m.EndDate,
		m.MonthlyRate, m.DurationMonths, m.Status, m.Note)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// CloseTx transitions a rental to CLOSED at the given end date,
// optionally annotating the note.
func (r *RentalRepo) CloseTx(ctx context.Context, tx *sql.Tx, id uint64, endDate time.Time, note *string) error {
	if note != nil {
		const q = `UPDATE rentals SET status = ?, end_date = ?, note = ?, updated_at = NOW() WHERE id = ?`
		_, err := tx.ExecContext(ctx, q, model.RentalClosed, endDate, *note, id)
		return err
	}
	const q = `UPDATE rentals SET status = ?, end_date = ?, updated_at = NOW() WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, model.RentalClosed, endDate, id)
	return err
}

// ExtendTx advances a rental's end date and duration in place.  Only
// called once the matching extension payment has settled.
func (r *RentalRepo) ExtendTx(ctx context.Context, tx *sql.Tx, id uint64, newEnd time.Time, addMonths int) error {
	const q = `UPDATE rentals SET end_date = ?, duration_months = duration_months + ?, updated_at = NOW() WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, newEnd, addMonths, id)
	return err
}

// ReassertActiveTx re-marks a rental ACTIVE.  Used by the idempotent
// booking confirmation fallback; a no-op when already ACTIVE.
func (r *RentalRepo) ReassertActiveTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	const q = `UPDATE rentals SET status = ?, updated_at = NOW() WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, model.RentalActive, id)
	return err
}
