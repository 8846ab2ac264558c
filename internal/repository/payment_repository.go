package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/mfadillah/kostly/internal/model"
)

// PaymentRepo provides CRUD operations for payments.  Reconciliation
// either promotes a payment to SUCCESS or deletes it together with
// its invoice, so the table mostly holds PENDING and SUCCESS rows.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo returns a new PaymentRepo bound to the given database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// DB exposes the underlying handle so services can open transactions.
func (r *PaymentRepo) DB() *sql.DB { return r.db }

const paymentColumns = `id, code, invoice_id, user_id, rental_id, gross_amount, status, snap_token, redirect_url, transaction_id, method, bank, va_number, paid_at, verified_by, verified_at, created_at, updated_at`

type rowScanner interface{ Scan(dest ...any) error }

func scanPayment(row rowScanner) (*model.Payment, error) {
	var m model.Payment
	err := row.Scan(&m.ID, &m.Code, &m.InvoiceID, &m.UserID, &m.RentalID, &m.GrossAmount, &m.Status,
		&m.SnapToken, &m.RedirectURL, &m.TransactionID, &m.Method, &m.Bank, &m.VANumber,
		&m.PaidAt, &m.VerifiedBy, &m.VerifiedAt, &m.CreatedAt, &m.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByID fetches a payment by primary key.
func (r *PaymentRepo) GetByID(ctx context.Context, id uint64) (*model.Payment, error) {
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE id = ?`
	return scanPayment(r.db.QueryRowContext(ctx, q, id))
}

// GetByCode fetches a payment by its code (the gateway order id).
func (r *PaymentRepo) GetByCode(ctx context.Context, code string) (*model.Payment, error) {
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE code = ?`
	return scanPayment(r.db.QueryRowContext(ctx, q, code))
}

// GetByIDTx fetches a payment inside an open transaction with a row
// lock so a webhook and a sync poll cannot reconcile the same payment
// twice.
func (r *PaymentRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Payment, error) {
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE id = ? FOR UPDATE`
	return scanPayment(tx.QueryRowContext(ctx, q, id))
}

// GetByCodeTx fetches a payment by code inside an open transaction
// with a row lock.
func (r *PaymentRepo) GetByCodeTx(ctx context.Context, tx *sql.Tx, code string) (*model.Payment, error) {
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE code = ? FOR UPDATE`
	return scanPayment(tx.QueryRowContext(ctx, q, code))
}

// Create inserts a PENDING payment and populates the generated ID.
// Payment creation is a single-row write, so it does not need a
// surrounding transaction.
func (r *PaymentRepo) Create(ctx context.Context, m *model.Payment) error {
	const q = `INSERT INTO payments (code, invoice_id, user_id, rental_id, gross_amount, status, snap_token, redirect_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, m.Code, m.InvoiceID, m.UserID, m.RentalID,
		m.GrossAmount, m.Status, m.SnapToken, m.RedirectURL)
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

// SettlementFields carries the gateway-reported details stored when a
// payment settles or while it is still pending.
type SettlementFields struct {
	TransactionID *string
	Method        *string
	Bank          *string
	VANumber      *string
}

// MarkSuccessTx promotes a payment to SUCCESS within a transaction.
func (r *PaymentRepo) MarkSuccessTx(ctx context.Context, tx *sql.Tx, id uint64, paidAt time.Time, f SettlementFields) error {
	const q = `UPDATE payments SET status = ?, paid_at = ?, transaction_id = COALESCE(?, transaction_id),
		method = COALESCE(?, method), bank = COALESCE(?, bank), va_number = COALESCE(?, va_number),
		updated_at = NOW() WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, model.PaymentSuccess, paidAt, f.TransactionID, f.Method, f.Bank, f.VANumber, id)
	return err
}

// MarkVerifiedTx promotes a payment to SUCCESS through the manual
// verification path, recording who verified it and when.
func (r *PaymentRepo) MarkVerifiedTx(ctx context.Context, tx *sql.Tx, id, verifierID uint64, at time.Time) error {
	const q = `UPDATE payments SET status = ?, paid_at = ?, verified_by = ?, verified_at = ?, updated_at = NOW() WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, model.PaymentSuccess, at, verifierID, at, id)
	return err
}

// UpdatePendingFields stores gateway-reported method details on a
// payment that remains PENDING.  No structural change happens here.
func (r *PaymentRepo) UpdatePendingFields(ctx context.Context, id uint64, f SettlementFields) error {
	const q = `UPDATE payments SET transaction_id = COALESCE(?, transaction_id), method = COALESCE(?, method),
		bank = COALESCE(?, bank), va_number = COALESCE(?, va_number), updated_at = NOW() WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, f.TransactionID, f.Method, f.Bank, f.VANumber, id)
	return err
}

// DeleteTx removes a payment row.  Must run before the invoice
// delete because payments reference invoices.
func (r *PaymentRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	const q = `DELETE FROM payments WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, id)
	return err
}

// List returns payments newest first, optionally filtered by user
// and/or status.  userID of zero means all users (owner view).
func (r *PaymentRepo) List(ctx context.Context, userID uint64, status string, limit, offset int) ([]model.Payment, error) {
	q := `SELECT ` + paymentColumns + ` FROM payments WHERE 1=1`
	args := make([]any, 0, 4)
	if userID != 0 {
		q += ` AND user_id = ?`
		args = append(args, userID)
	}
	if status != "" {
		q += ` AND status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// Summary counts payments grouped into total/success/pending/failed
// buckets.  FAILED, EXPIRED and CANCEL collapse into failed.  userID
// of zero aggregates across all users.
func (r *PaymentRepo) Summary(ctx context.Context, userID uint64) (*model.PaymentSummary, error) {
	q := `SELECT COUNT(*),
		COALESCE(SUM(status = 'SUCCESS'), 0),
		COALESCE(SUM(status = 'PENDING'), 0),
		COALESCE(SUM(status IN ('FAILED','EXPIRED','CANCEL')), 0)
		FROM payments`
	args := []any{}
	if userID != 0 {
		q += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	var s model.PaymentSummary
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&s.Total, &s.Success, &s.Pending, &s.Failed); err != nil {
		return nil, err
	}
	return &s, nil
}
