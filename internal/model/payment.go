package model

import "time"

// Payment statuses.  PENDING is the only non-terminal state.  A
// payment reaching FAILED, EXPIRED or CANCEL is deleted together with
// its invoice as part of the compensating transaction, so terminal
// non-success rows are short lived.
const (
	PaymentPending = "PENDING"
	PaymentSuccess = "SUCCESS"
	PaymentFailed  = "FAILED"
	PaymentExpired = "EXPIRED"
	PaymentCancel  = "CANCEL"
)

// Payment is a gateway-backed attempt to settle one invoice.  The
// Code doubles as the gateway order id, which is how asynchronous
// notifications find their way back to the local record.
//
// Fields:
//  ID            – primary key identifier.
//  Code          – human readable payment code (PAY-…) and gateway
//                  order reference.
//  InvoiceID     – the invoice being settled.
//  UserID        – paying tenant.
//  RentalID      – rental the invoice belongs to, denormalized so the
//                  failure branch can close it without a join.
//  GrossAmount   – amount charged; equals the invoice amount at
//                  creation time.
//  Status        – see constants above.
//  SnapToken     – hosted payment page token from the gateway.
//  RedirectURL   – hosted payment page URL.
//  TransactionID – gateway-side transaction id, set on settlement.
//  Method        – payment method reported by the gateway.
//  Bank          – issuing bank for VA payments.
//  VANumber      – virtual account number for VA payments.
//  PaidAt        – settlement time.
//  VerifiedBy    – owner who manually verified the payment, if any.
//  VerifiedAt    – manual verification time.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Payment struct {
	ID            uint64     // payments.id
	Code          string     // payments.code
	InvoiceID     uint64     // payments.invoice_id
	UserID        uint64     // payments.user_id
	RentalID      uint64     // payments.rental_id
	GrossAmount   int64      // payments.gross_amount
	Status        string     // payments.status
	SnapToken     *string    // payments.snap_token (nullable)
	RedirectURL   *string    // payments.redirect_url (nullable)
	TransactionID *string    // payments.transaction_id (nullable)
	Method        *string    // payments.method (nullable)
	Bank          *string    // payments.bank (nullable)
	VANumber      *string    // payments.va_number (nullable)
	PaidAt        *time.Time // payments.paid_at (nullable)
	VerifiedBy    *uint64    // payments.verified_by (nullable)
	VerifiedAt    *time.Time // payments.verified_at (nullable)
	CreatedAt     time.Time  // payments.created_at
	UpdatedAt     time.Time  // payments.updated_at
}

// PaymentSummary aggregates payment counts by outcome.  Failed
// collapses FAILED, EXPIRED and CANCEL into one bucket.
type PaymentSummary struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Pending int `json:"pending"`
	Failed  int `json:"failed"`
}
