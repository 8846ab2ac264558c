package model

import "time"

// Invoice purposes.  The purpose is stored structurally so that
// reconciliation never has to parse the human readable description.
const (
	InvoiceRent               = "RENT"
	InvoiceExtension          = "EXTENSION"
	InvoiceTransferAdjustment = "TRANSFER_ADJUSTMENT"
)

// Invoice statuses.  Invoices are deleted outright when their payment
// fails, expires or is cancelled, so there is no CANCELLED status.
const (
	InvoiceUnpaid = "UNPAID"
	InvoicePaid   = "PAID"
)

// Invoice is a billable demand for payment tied to a rental.
//
// Fields:
//  ID              – primary key identifier.
//  Code            – human readable invoice number (TGH-…), also used
//                    as the gateway item reference.
//  UserID          – tenant who must pay.
//  RentalID        – owning rental.
//  Purpose         – RENT, EXTENSION or TRANSFER_ADJUSTMENT.
//  ExtensionMonths – months to add to the rental end date once an
//                    EXTENSION invoice is paid; zero otherwise.
//  Amount          – amount due in whole rupiah.
//  DueAt           – payment deadline.
//  Status          – UNPAID or PAID.
//  Description     – free text shown to the tenant.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Invoice struct {
	ID              uint64    // invoices.id
	Code            string    // invoices.code
	UserID          uint64    // invoices.user_id
	RentalID        uint64    // invoices.rental_id
	Purpose         string    // invoices.purpose
	ExtensionMonths int       // invoices.extension_months
	Amount          int64     // invoices.amount
	DueAt           time.Time // invoices.due_at
	Status          string    // invoices.status
	Description     string    // invoices.description
	CreatedAt       time.Time // invoices.created_at
	UpdatedAt       time.Time // invoices.updated_at
}
