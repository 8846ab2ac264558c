// Package queue defines message payloads exchanged over the message
// broker and the background consumer that turns them into tenant
// notifications.
package queue

// PaymentSucceededEvent is published when a payment settles, whether
// through a gateway webhook, a status sync or manual verification.
// It carries enough information for the consumer to send the
// notification email without querying the primary database.
type PaymentSucceededEvent struct {
	PaymentID      uint64 `json:"payment_id"`
	PaymentCode    string `json:"payment_code"`
	InvoiceCode    string `json:"invoice_code"`
	InvoicePurpose string `json:"invoice_purpose"`
	UserName       string `json:"user_name"`
	UserEmail      string `json:"user_email"`
	Amount         int64  `json:"amount"`
	ManuallyBy     uint64 `json:"manually_verified_by,omitempty"`
	PaidAt         string `json:"paid_at"`
}
