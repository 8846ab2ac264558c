package repository

import (
	"context"
	"database/sql"

	"github.com/mfadillah/kostly/internal/model"
)

// InvoiceRepo provides CRUD operations for invoices.  Invoices are
// created by the rental workflow and either flipped to PAID or
// deleted by payment reconciliation; there is no soft cancel.
type InvoiceRepo struct {
	db *sql.DB
}

// NewInvoiceRepo returns a new InvoiceRepo bound to the given database.
func NewInvoiceRepo(db *sql.DB) *InvoiceRepo { return &InvoiceRepo{db: db} }

const invoiceColumns = `id, code, user_id, rental_id, purpose, extension_months, amount, due_at, status, description, created_at, updated_at`

func scanInvoice(row *sql.Row) (*model.Invoice, error) {
	var m model.Invoice
	err := row.Scan(&m.ID, &m.Code, &m.UserID, &m.RentalID, &m.Purpose, &m.ExtensionMonths,
		&m.Amount, &m.DueAt, &m.Status, &m.Description, &m.CreatedAt, &m.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByID fetches an invoice by primary key.
func (r *InvoiceRepo) GetByID(ctx context.Context, id uint64) (*model.Invoice, error) {
	const q = `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = ?`
	return scanInvoice(r.db.QueryRowContext(ctx, q, id))
}

// GetByIDTx fetches an invoice inside an open transaction.
func (r *InvoiceRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Invoice, error) {
	const q = `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = ? FOR UPDATE`
	return scanInvoice(tx.QueryRowContext(ctx, q, id))
}

// CreateTx inserts an invoice within an existing transaction and
// populates the generated ID on the provided record.
func (r *InvoiceRepo) CreateTx(ctx context.Context, tx *sql.Tx, m *model.Invoice) error {
	const q = `INSERT INTO invoices (code, user_id, rental_id, purpose, extension_months, amount, due_at, status, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, m.Code, m.UserID, m.RentalID, m.Purpose, m.ExtensionMonths,
		m.Amount, m.DueAt, m.Status, m.Description)
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

// Create inserts an invoice outside a transaction.  Used by the
// extension path, whose only write is the invoice itself.
func (r *InvoiceRepo) Create(ctx context.Context, m *model.Invoice) error {
	const q = `INSERT INTO invoices (code, user_id, rental_id, purpose, extension_months, amount, due_at, status, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, m.Code, m.UserID, m.RentalID, m.Purpose, m.ExtensionMonths,
		m.Amount, m.DueAt, m.Status, m.Description)
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

// MarkPaidTx flips an invoice to PAID within a transaction.
func (r *InvoiceRepo) MarkPaidTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	const q = `UPDATE invoices SET status = ?, updated_at = NOW() WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, model.InvoicePaid, id)
	return err
}

// DeleteTx removes an invoice.  The owning payment row must be
// deleted first because payments reference invoices.
func (r *InvoiceRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	const q = `DELETE FROM invoices WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, id)
	return err
}
