package service

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mfadillah/kostly/internal/apperr"
	"github.com/mfadillah/kostly/internal/gateway"
	"github.com/mfadillah/kostly/internal/model"
	"github.com/mfadillah/kostly/internal/queue"
	"github.com/mfadillah/kostly/internal/repository"
)

type fakeGateway struct {
	session     *gateway.Session
	createErr   error
	status      *gateway.StatusResponse
	statusErr   error
	createCalls int
	statusCalls int
}

func (f *fakeGateway) CreateTransaction(ctx context.Context, req gateway.TransactionRequest) (*gateway.Session, error) {
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.session, nil
}

func (f *fakeGateway) TransactionStatus(ctx context.Context, orderRef string) (*gateway.StatusResponse, error) {
	f.statusCalls++
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return f.status, nil
}

type fakePublisher struct {
	events []queue.PaymentSucceededEvent
	err    error
}

func (f *fakePublisher) PublishPaymentSucceeded(ctx context.Context, event queue.PaymentSucceededEvent) error {
	f.events = append(f.events, event)
	return f.err
}

var invoiceCols = []string{"id", "code", "user_id", "rental_id", "purpose", "extension_months",
	"amount", "due_at", "status", "description", "created_at", "updated_at"}

var paymentCols = []string{"id", "code", "invoice_id", "user_id", "rental_id", "gross_amount",
	"status", "snap_token", "redirect_url", "transaction_id", "method", "bank", "va_number",
	"paid_at", "verified_by", "verified_at", "created_at", "updated_at"}

var userCols = []string{"id", "name", "email", "phone", "password_hash", "role", "created_at", "updated_at"}

func newPaymentService(t *testing.T) (*PaymentService, sqlmock.Sqlmock, *fakeGateway, *fakePublisher) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gw := &fakeGateway{}
	pub := &fakePublisher{}
	svc := NewPaymentService(db,
		repository.NewPaymentRepo(db),
		repository.NewInvoiceRepo(db),
		repository.NewRentalRepo(db),
		repository.NewRoomRepo(db),
		repository.NewUserRepo(db),
		gw, pub, "http://localhost:3000", zap.NewNop())
	return svc, mock, gw, pub
}

func invoiceRow(id, userID, rentalID uint64, purpose string, extMonths int, amount int64, status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(invoiceCols).
		AddRow(id, "TGH-20260101-ABCDEF", userID, rentalID, purpose, extMonths,
			amount, now.AddDate(0, 0, 1), status, "Pembayaran sewa", now, now)
}

func paymentRow(id uint64, code string, invoiceID, userID, rentalID uint64, amount int64, status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(paymentCols).
		AddRow(id, code, invoiceID, userID, rentalID, amount, status,
			nil, nil, nil, nil, nil, nil, nil, nil, nil, now, now)
}

func userRow(id uint64, name, email string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(userCols).
		AddRow(id, name, email, nil, "$2a$10$hash", model.RolePenghuni, now, now)
}

func TestMapGatewayStatus(t *testing.T) {
	cases := []struct {
		transaction string
		fraud       string
		want        string
	}{
		{"settlement", "", model.PaymentSuccess},
		{"settlement", "accept", model.PaymentSuccess},
		{"capture", "accept", model.PaymentSuccess},
		{"capture", "challenge", model.PaymentPending},
		{"settlement", "deny", model.PaymentPending},
		{"cancel", "", model.PaymentFailed},
		{"deny", "", model.PaymentFailed},
		{"expire", "", model.PaymentExpired},
		{"pending", "", model.PaymentPending},
		{"refund", "", model.PaymentPending},
		{"", "", model.PaymentPending},
	}
	for _, tc := range cases {
		got := MapGatewayStatus(tc.transaction, tc.fraud)
		assert.Equal(t, tc.want, got, "transaction=%q fraud=%q", tc.transaction, tc.fraud)
	}
}

func TestCreatePaymentOpensGatewaySession(t *testing.T) {
	svc, mock, gw, _ := newPaymentService(t)
	gw.session = &gateway.Session{Token: "snap-token", RedirectURL: "https://app.sandbox/pay"}

	mock.ExpectQuery(`FROM invoices WHERE id`).
		WithArgs(uint64(42)).
		WillReturnRows(invoiceRow(42, 7, 9, model.InvoiceRent, 0, 6_000_000, model.InvoiceUnpaid))
	mock.ExpectQuery(`FROM users WHERE id`).
		WithArgs(uint64(7)).
		WillReturnRows(userRow(7, "Budi", "budi@example.com"))
	mock.ExpectExec(`INSERT INTO payments`).
		WillReturnResult(sqlmock.NewResult(99, 1))

	res, err := svc.Create(context.Background(), 42, 7)
	require.NoError(t, err)

	assert.Equal(t, 1, gw.createCalls)
	assert.Equal(t, "snap-token", res.SnapToken)
	assert.Equal(t, model.PaymentPending, res.Payment.Status)
	assert.Equal(t, uint64(99), res.Payment.ID)
	assert.Equal(t, uint64(9), res.Payment.RentalID)
	assert.Equal(t, int64(6_000_000), res.Payment.GrossAmount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePaymentPaidInvoiceConflicts(t *testing.T) {
	svc, mock, gw, _ := newPaymentService(t)

	mock.ExpectQuery(`FROM invoices WHERE id`).
		WithArgs(uint64(42)).
		WillReturnRows(invoiceRow(42, 7, 9, model.InvoiceRent, 0, 6_000_000, model.InvoicePaid))

	_, err := svc.Create(context.Background(), 42, 7)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Zero(t, gw.createCalls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePaymentForeignInvoiceForbidden(t *testing.T) {
	svc, mock, gw, _ := newPaymentService(t)

	mock.ExpectQuery(`FROM invoices WHERE id`).
		WithArgs(uint64(42)).
		WillReturnRows(invoiceRow(42, 7, 9, model.InvoiceRent, 0, 6_000_000, model.InvoiceUnpaid))

	_, err := svc.Create(context.Background(), 42, 55)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.Zero(t, gw.createCalls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePaymentGatewayFailure(t *testing.T) {
	svc, mock, gw, _ := newPaymentService(t)
	gw.createErr = assert.AnError

	mock.ExpectQuery(`FROM invoices WHERE id`).
		WithArgs(uint64(42)).
		WillReturnRows(invoiceRow(42, 7, 9, model.InvoiceRent, 0, 6_000_000, model.InvoiceUnpaid))
	mock.ExpectQuery(`FROM users WHERE id`).
		WithArgs(uint64(7)).
		WillReturnRows(userRow(7, "Budi", "budi@example.com"))

	_, err := svc.Create(context.Background(), 42, 7)
	assert.ErrorIs(t, err, apperr.ErrGateway)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncStatusAlreadySuccessSkipsGateway(t *testing.T) {
	svc, mock, gw, _ := newPaymentService(t)

	mock.ExpectQuery(`FROM payments WHERE code`).
		WithArgs("PAY-20260101-ABCDEF").
		WillReturnRows(paymentRow(99, "PAY-20260101-ABCDEF", 42, 7, 9, 6_000_000, model.PaymentSuccess))

	res, err := svc.SyncStatus(context.Background(), "PAY-20260101-ABCDEF")
	require.NoError(t, err)

	assert.Zero(t, gw.statusCalls, "settled payments must not hit the gateway again")
	assert.Equal(t, model.PaymentSuccess, res.Payment.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncStatusGatewayDownReturnsLocalState(t *testing.T) {
	svc, mock, gw, _ := newPaymentService(t)
	gw.statusErr = assert.AnError

	mock.ExpectQuery(`FROM payments WHERE code`).
		WithArgs("PAY-20260101-ABCDEF").
		WillReturnRows(paymentRow(99, "PAY-20260101-ABCDEF", 42, 7, 9, 6_000_000, model.PaymentPending))

	res, err := svc.SyncStatus(context.Background(), "PAY-20260101-ABCDEF")
	require.NoError(t, err, "gateway outage must not fail the sync")

	assert.Equal(t, model.PaymentPending, res.Payment.Status)
	assert.False(t, res.Deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncStatusSettlementAppliesSuccess(t *testing.T) {
	svc, mock, gw, pub := newPaymentService(t)
	gw.status = &gateway.StatusResponse{
		OrderID:           "PAY-20260101-ABCDEF",
		TransactionStatus: "settlement",
		FraudStatus:       "accept",
		TransactionID:     "mt-123",
		PaymentType:       "bank_transfer",
		VANumbers:         []gateway.VANumber{{Bank: "bca", VANumber: "12345678"}},
	}

	mock.ExpectQuery(`FROM payments WHERE code`).
		WithArgs("PAY-20260101-ABCDEF").
		WillReturnRows(paymentRow(99, "PAY-20260101-ABCDEF", 42, 7, 9, 6_000_000, model.PaymentPending))
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM payments WHERE id = .+ FOR UPDATE`).
		WithArgs(uint64(99)).
		WillReturnRows(paymentRow(99, "PAY-20260101-ABCDEF", 42, 7, 9, 6_000_000, model.PaymentPending))
	mock.ExpectQuery(`FROM invoices WHERE id = .+ FOR UPDATE`).
		WithArgs(uint64(42)).
		WillReturnRows(invoiceRow(42, 7, 9, model.InvoiceRent, 0, 6_000_000, model.InvoiceUnpaid))
	mock.ExpectExec(`UPDATE payments SET status`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE invoices SET status`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`FROM users WHERE id`).
		WithArgs(uint64(7)).
		WillReturnRows(userRow(7, "Budi", "budi@example.com"))

	res, err := svc.SyncStatus(context.Background(), "PAY-20260101-ABCDEF")
	require.NoError(t, err)

	assert.Equal(t, model.PaymentSuccess, res.Payment.Status)
	assert.NotNil(t, res.Payment.PaidAt)
	require.Len(t, pub.events, 1)
	assert.Equal(t, "PAY-20260101-ABCDEF", pub.events[0].PaymentCode)
	assert.Equal(t, model.InvoiceRent, pub.events[0].InvoicePurpose)
	assert.Equal(t, "budi@example.com", pub.events[0].UserEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncStatusExtensionSettlementAdvancesEndDate(t *testing.T) {
	svc, mock, gw, pub := newPaymentService(t)
	gw.status = &gateway.StatusResponse{
		OrderID:           "PAY-20260101-ABCDEF",
		TransactionStatus: "settlement",
	}
	end := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM payments WHERE code`).
		WithArgs("PAY-20260101-ABCDEF").
		WillReturnRows(paymentRow(99, "PAY-20260101-ABCDEF", 42, 7, 9, 2_250_000, model.PaymentPending))
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM payments WHERE id = .+ FOR UPDATE`).
		WithArgs(uint64(99)).
		WillReturnRows(paymentRow(99, "PAY-20260101-ABCDEF", 42, 7, 9, 2_250_000, model.PaymentPending))
	mock.ExpectQuery(`FROM invoices WHERE id = .+ FOR UPDATE`).
		WithArgs(uint64(42)).
		WillReturnRows(invoiceRow(42, 7, 9, model.InvoiceExtension, 3, 2_250_000, model.InvoiceUnpaid))
	mock.ExpectExec(`UPDATE payments SET status`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE invoices SET status`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM rentals WHERE id = .+ FOR UPDATE`).
		WithArgs(uint64(9)).
		WillReturnRows(rentalRow(9, 7, 3, 750_000, 6, end, model.RentalActive))
	mock.ExpectExec(`UPDATE rentals SET end_date`).
		WithArgs(end.AddDate(0, 3, 0), 3, uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`FROM users WHERE id`).
		WithArgs(uint64(7)).
		WillReturnRows(userRow(7, "Budi", "budi@example.com"))

	res, err := svc.SyncStatus(context.Background(), "PAY-20260101-ABCDEF")
	require.NoError(t, err)

	assert.Equal(t, model.PaymentSuccess, res.Payment.Status)
	require.Len(t, pub.events, 1)
	assert.Equal(t, model.InvoiceExtension, pub.events[0].InvoicePurpose)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncStatusExpiredCompensatesBooking(t *testing.T) {
	svc, mock, gw, _ := newPaymentService(t)
	gw.status = &gateway.StatusResponse{
		OrderID:           "PAY-20260101-ABCDEF",
		TransactionStatus: "expire",
	}
	end := time.Now().AddDate(0, 6, 0)

	mock.ExpectQuery(`FROM payments WHERE code`).
		WithArgs("PAY-20260101-ABCDEF").
		WillReturnRows(paymentRow(99, "PAY-20260101-ABCDEF", 42, 7, 9, 6_000_000, model.PaymentPending))
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM payments WHERE id = .+ FOR UPDATE`).
		WithArgs(uint64(99)).
		WillReturnRows(paymentRow(99, "PAY-20260101-ABCDEF", 42, 7, 9, 6_000_000, model.PaymentPending))
	mock.ExpectQuery(`FROM invoices WHERE id = .+ FOR UPDATE`).
		WithArgs(uint64(42)).
		WillReturnRows(invoiceRow(42, 7, 9, model.InvoiceRent, 0, 6_000_000, model.InvoiceUnpaid))
	mock.ExpectExec(`DELETE FROM payments`).
		WithArgs(uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM invoices`).
		WithArgs(uint64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM rentals WHERE id = .+ FOR UPDATE`).
		WithArgs(uint64(9)).
		WillReturnRows(rentalRow(9, 7, 3, 500_000, 12, end, model.RentalActive))
	mock.ExpectExec(`UPDATE rentals SET status`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE rooms SET status`).
		WithArgs(model.RoomAvailable, uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := svc.SyncStatus(context.Background(), "PAY-20260101-ABCDEF")
	require.NoError(t, err)

	assert.True(t, res.Deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncStatusExpiredExtensionLeavesRentalAlone(t *testing.T) {
	svc, mock, gw, _ := newPaymentService(t)
	gw.status = &gateway.StatusResponse{
		OrderID:           "PAY-20260101-ABCDEF",
		TransactionStatus: "expire",
	}

	mock.ExpectQuery(`FROM payments WHERE code`).
		WithArgs("PAY-20260101-ABCDEF").
		WillReturnRows(paymentRow(99, "PAY-20260101-ABCDEF", 42, 7, 9, 2_250_000, model.PaymentPending))
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM payments WHERE id = .+ FOR UPDATE`).
		WithArgs(uint64(99)).
		WillReturnRows(paymentRow(99, "PAY-20260101-ABCDEF", 42, 7, 9, 2_250_000, model.PaymentPending))
	mock.ExpectQuery(`FROM invoices WHERE id = .+ FOR UPDATE`).
		WithArgs(uint64(42)).
		WillReturnRows(invoiceRow(42, 7, 9, model.InvoiceExtension, 3, 2_250_000, model.InvoiceUnpaid))
	mock.ExpectExec(`DELETE FROM payments`).
		WithArgs(uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM invoices`).
		WithArgs(uint64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := svc.SyncStatus(context.Background(), "PAY-20260101-ABCDEF")
	require.NoError(t, err)

	assert.True(t, res.Deleted)
	assert.NoError(t, mock.ExpectationsWereMet(), "rental and room must stay untouched")
}

func TestVerifyAppliesFullSuccessMutation(t *testing.T) {
	svc, mock, _, pub := newPaymentService(t)
	end := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM payments WHERE id`).
		WithArgs(uint64(99)).
		WillReturnRows(paymentRow(99, "PAY-20260101-ABCDEF", 42, 7, 9, 2_250_000, model.PaymentPending))
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM payments WHERE id = .+ FOR UPDATE`).
		WithArgs(uint64(99)).
		WillReturnRows(paymentRow(99, "PAY-20260101-ABCDEF", 42, 7, 9, 2_250_000, model.PaymentPending))
	mock.ExpectQuery(`FROM invoices WHERE id = .+ FOR UPDATE`).
		WithArgs(uint64(42)).
		WillReturnRows(invoiceRow(42, 7, 9, model.InvoiceExtension, 3, 2_250_000, model.InvoiceUnpaid))
	mock.ExpectExec(`UPDATE payments SET status`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE invoices SET status`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM rentals WHERE id = .+ FOR UPDATE`).
		WithArgs(uint64(9)).
		WillReturnRows(rentalRow(9, 7, 3, 750_000, 6, end, model.RentalActive))
	mock.ExpectExec(`UPDATE rentals SET end_date`).
		WithArgs(end.AddDate(0, 3, 0), 3, uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`FROM users WHERE id`).
		WithArgs(uint64(7)).
		WillReturnRows(userRow(7, "Budi", "budi@example.com"))

	payment, err := svc.Verify(context.Background(), 99, 2)
	require.NoError(t, err)

	assert.Equal(t, model.PaymentSuccess, payment.Status)
	require.NotNil(t, payment.VerifiedBy)
	assert.Equal(t, uint64(2), *payment.VerifiedBy)
	require.Len(t, pub.events, 1)
	assert.Equal(t, uint64(2), pub.events[0].ManuallyBy)
	assert.NoError(t, mock.ExpectationsWereMet(), "manual verification runs the same extension logic")
}

func TestVerifyAlreadySuccessIsNoOp(t *testing.T) {
	svc, mock, _, pub := newPaymentService(t)

	mock.ExpectQuery(`FROM payments WHERE id`).
		WithArgs(uint64(99)).
		WillReturnRows(paymentRow(99, "PAY-20260101-ABCDEF", 42, 7, 9, 6_000_000, model.PaymentSuccess))
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM payments WHERE id = .+ FOR UPDATE`).
		WithArgs(uint64(99)).
		WillReturnRows(paymentRow(99, "PAY-20260101-ABCDEF", 42, 7, 9, 6_000_000, model.PaymentSuccess))
	mock.ExpectRollback()

	payment, err := svc.Verify(context.Background(), 99, 2)
	require.NoError(t, err)

	assert.Equal(t, model.PaymentSuccess, payment.Status)
	assert.Empty(t, pub.events)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelNonPendingConflicts(t *testing.T) {
	svc, mock, _, _ := newPaymentService(t)

	mock.ExpectQuery(`FROM payments WHERE id`).
		WithArgs(uint64(99)).
		WillReturnRows(paymentRow(99, "PAY-20260101-ABCDEF", 42, 7, 9, 6_000_000, model.PaymentSuccess))

	err := svc.Cancel(context.Background(), 99, 7, model.RolePenghuni)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelForeignPaymentForbiddenForTenant(t *testing.T) {
	svc, mock, _, _ := newPaymentService(t)

	mock.ExpectQuery(`FROM payments WHERE id`).
		WithArgs(uint64(99)).
		WillReturnRows(paymentRow(99, "PAY-20260101-ABCDEF", 42, 7, 9, 6_000_000, model.PaymentPending))

	err := svc.Cancel(context.Background(), 99, 55, model.RolePenghuni)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelPendingDeletesPaymentAndInvoice(t *testing.T) {
	svc, mock, _, _ := newPaymentService(t)
	end := time.Now().AddDate(0, 6, 0)

	mock.ExpectQuery(`FROM payments WHERE id`).
		WithArgs(uint64(99)).
		WillReturnRows(paymentRow(99, "PAY-20260101-ABCDEF", 42, 7, 9, 6_000_000, model.PaymentPending))
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM payments WHERE id = .+ FOR UPDATE`).
		WithArgs(uint64(99)).
		WillReturnRows(paymentRow(99, "PAY-20260101-ABCDEF", 42, 7, 9, 6_000_000, model.PaymentPending))
	mock.ExpectQuery(`FROM invoices WHERE id = .+ FOR UPDATE`).
		WithArgs(uint64(42)).
		WillReturnRows(invoiceRow(42, 7, 9, model.InvoiceRent, 0, 6_000_000, model.InvoiceUnpaid))
	mock.ExpectExec(`DELETE FROM payments`).
		WithArgs(uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM invoices`).
		WithArgs(uint64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM rentals WHERE id = .+ FOR UPDATE`).
		WithArgs(uint64(9)).
		WillReturnRows(rentalRow(9, 7, 3, 500_000, 12, end, model.RentalActive))
	mock.ExpectExec(`UPDATE rentals SET status`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE rooms SET status`).
		WithArgs(model.RoomAvailable, uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := svc.Cancel(context.Background(), 99, 7, model.RolePenghuni)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleNotificationPendingUpdatesFieldsOnly(t *testing.T) {
	svc, mock, _, pub := newPaymentService(t)

	mock.ExpectQuery(`FROM payments WHERE code`).
		WithArgs("PAY-20260101-ABCDEF").
		WillReturnRows(paymentRow(99, "PAY-20260101-ABCDEF", 42, 7, 9, 6_000_000, model.PaymentPending))
	mock.ExpectExec(`UPDATE payments SET transaction_id`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.HandleNotification(context.Background(), &gateway.StatusResponse{
		OrderID:           "PAY-20260101-ABCDEF",
		TransactionStatus: "pending",
		PaymentType:       "bank_transfer",
	})
	require.NoError(t, err)
	assert.Empty(t, pub.events)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryScopesTenantToOwnPayments(t *testing.T) {
	svc, mock, _, _ := newPaymentService(t)
	summaryCols := []string{"total", "success", "pending", "failed"}

	mock.ExpectQuery(`FROM payments WHERE user_id`).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows(summaryCols).AddRow(4, 2, 1, 1))

	s, err := svc.Summary(context.Background(), 7, model.RolePenghuni)
	require.NoError(t, err)
	assert.Equal(t, &model.PaymentSummary{Total: 4, Success: 2, Pending: 1, Failed: 1}, s)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryOwnerSeesEverything(t *testing.T) {
	svc, mock, _, _ := newPaymentService(t)
	summaryCols := []string{"total", "success", "pending", "failed"}

	mock.ExpectQuery(`FROM payments`).
		WillReturnRows(sqlmock.NewRows(summaryCols).AddRow(10, 6, 3, 1))

	s, err := svc.Summary(context.Background(), 2, model.RolePemilik)
	require.NoError(t, err)
	assert.Equal(t, 10, s.Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
