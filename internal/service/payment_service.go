package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mfadillah/kostly/internal/apperr"
	"github.com/mfadillah/kostly/internal/gateway"
	"github.com/mfadillah/kostly/internal/model"
	"github.com/mfadillah/kostly/internal/queue"
	"github.com/mfadillah/kostly/internal/repository"
	"github.com/mfadillah/kostly/internal/utils"
)

// PaymentService creates gateway payments and reconciles their
// asynchronous outcomes into local state.  Two entry points perform
// the identical mapping and mutation: HandleNotification (gateway
// push) and SyncStatus (client-driven poll); Verify is the manual
// override and runs the same success mutation as both.
type PaymentService struct {
	db          *sql.DB
	payments    *repository.PaymentRepo
	invoices    *repository.InvoiceRepo
	rentals     *repository.RentalRepo
	rooms       *repository.RoomRepo
	users       *repository.UserRepo
	gw          gateway.Client
	publisher   EventPublisher
	frontendURL string
	logger      *zap.Logger
}

// NewPaymentService constructs a PaymentService.  The gateway client
// and publisher are injected capabilities so tests can substitute
// fakes.
func NewPaymentService(db *sql.DB, payments *repository.PaymentRepo, invoices *repository.InvoiceRepo,
	rentals *repository.RentalRepo, rooms *repository.RoomRepo, users *repository.UserRepo,
	gw gateway.Client, publisher EventPublisher, frontendURL string, logger *zap.Logger) *PaymentService {
	if db == nil || payments == nil || invoices == nil || rentals == nil || rooms == nil || users == nil || gw == nil {
		panic("nil dependency passed to NewPaymentService")
	}
	return &PaymentService{
		db:          db,
		payments:    payments,
		invoices:    invoices,
		rentals:     rentals,
		rooms:       rooms,
		users:       users,
		gw:          gw,
		publisher:   publisher,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

// MapGatewayStatus translates a gateway transaction status plus fraud
// flag into the domain payment status.  Anything unrecognized stays
// PENDING, which makes unknown gateway states safe no-ops.
func MapGatewayStatus(transactionStatus, fraudStatus string) string {
	switch transactionStatus {
	case "capture", "settlement":
		if fraudStatus == "" || fraudStatus == "accept" {
			return model.PaymentSuccess
		}
		return model.PaymentPending
	case "cancel", "deny":
		return model.PaymentFailed
	case "expire":
		return model.PaymentExpired
	default:
		return model.PaymentPending
	}
}

// PaymentSession is returned by Create: the stored PENDING payment
// plus the hosted payment page handle.
type PaymentSession struct {
	Payment     *model.Payment `json:"payment"`
	SnapToken   string         `json:"snap_token"`
	RedirectURL string         `json:"redirect_url"`
}

// Create opens a gateway transaction for an unpaid invoice owned by
// the calling tenant and stores the PENDING payment.  The payment
// code becomes the gateway order id, which is how notifications and
// sync polls find the record again.
func (s *PaymentService) Create(ctx context.Context, invoiceID, userID uint64) (*PaymentSession, error) {
	invoice, err := s.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, repository.ErrInvoiceNotFound) {
			return nil, apperr.Wrap(apperr.ErrNotFound, "tagihan tidak ditemukan")
		}
		return nil, apperr.Wrap(apperr.ErrInternal, "load invoice: %v", err)
	}
	if invoice.Status == model.InvoicePaid {
		return nil, apperr.Wrap(apperr.ErrConflict, "tagihan sudah lunas")
	}
	if invoice.UserID != userID {
		return nil, apperr.Wrap(apperr.ErrForbidden, "anda tidak memiliki akses ke tagihan ini")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, "load user: %v", err)
	}

	code, err := utils.GenerateCode(utils.PrefixPayment)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, "generate payment code: %v", err)
	}

	phone := ""
	if user.Phone != nil {
		phone = *user.Phone
	}
	session, err := s.gw.CreateTransaction(ctx, gateway.TransactionRequest{
		OrderRef:    code,
		GrossAmount: invoice.Amount,
		Customer:    gateway.Customer{FirstName: user.Name, Email: user.Email, Phone: phone},
		Items: []gateway.Item{{
			ID:       invoice.Code,
			Price:    invoice.Amount,
			Quantity: 1,
			Name:     invoice.Description,
		}},
		FinishURL: s.frontendURL + "/payment/finish",
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrGateway, "gagal membuat transaksi pembayaran")
	}

	payment := &model.Payment{
		Code:        code,
		InvoiceID:   invoice.ID,
		UserID:      userID,
		RentalID:    invoice.RentalID,
		GrossAmount: invoice.Amount,
		Status:      model.PaymentPending,
		SnapToken:   &session.Token,
		RedirectURL: &session.RedirectURL,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, "store payment: %v", err)
	}

	return &PaymentSession{Payment: payment, SnapToken: session.Token, RedirectURL: session.RedirectURL}, nil
}

// HandleNotification processes a gateway webhook payload: it maps the
// reported status to the domain status and applies the corresponding
// mutation.
func (s *PaymentService) HandleNotification(ctx context.Context, payload *gateway.StatusResponse) error {
	payment, err := s.payments.GetByCode(ctx, payload.OrderID)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return apperr.Wrap(apperr.ErrNotFound, "payment tidak ditemukan")
		}
		return apperr.Wrap(apperr.ErrInternal, "load payment: %v", err)
	}

	switch MapGatewayStatus(payload.TransactionStatus, payload.FraudStatus) {
	case model.PaymentSuccess:
		_, err = s.applySuccess(ctx, payment.ID, settlementFields(payload), nil)
		return err
	case model.PaymentFailed:
		return s.applyFailure(ctx, payment.ID, model.PaymentFailed)
	case model.PaymentExpired:
		return s.applyFailure(ctx, payment.ID, model.PaymentExpired)
	default:
		if err := s.payments.UpdatePendingFields(ctx, payment.ID, *settlementFields(payload)); err != nil {
			return apperr.Wrap(apperr.ErrInternal, "update payment: %v", err)
		}
		return nil
	}
}

// SyncResult is returned by SyncStatus.
type SyncResult struct {
	Message       string         `json:"message"`
	Payment       *model.Payment `json:"payment,omitempty"`
	GatewayStatus string         `json:"gateway_status,omitempty"`
	Deleted       bool           `json:"deleted,omitempty"`
}

// SyncStatus polls the gateway for an order's current status and
// applies the same mutation as HandleNotification.  Already-SUCCESS
// payments short-circuit without touching the gateway, and a failed
// gateway query degrades to returning the last known local state
// rather than failing the request.
func (s *PaymentService) SyncStatus(ctx context.Context, orderRef string) (*SyncResult, error) {
	payment, err := s.payments.GetByCode(ctx, orderRef)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return nil, apperr.Wrap(apperr.ErrNotFound, "payment tidak ditemukan")
		}
		return nil, apperr.Wrap(apperr.ErrInternal, "load payment: %v", err)
	}

	if payment.Status == model.PaymentSuccess {
		return &SyncResult{Message: "pembayaran sudah terverifikasi", Payment: payment}, nil
	}

	status, err := s.gw.TransactionStatus(ctx, orderRef)
	if err != nil {
		s.logger.Warn("gateway status query failed, returning local state",
			zap.String("order_ref", orderRef),
			zap.Error(err),
		)
		return &SyncResult{Message: "tidak dapat mengecek status dari gateway", Payment: payment}, nil
	}

	switch MapGatewayStatus(status.TransactionStatus, status.FraudStatus) {
	case model.PaymentSuccess:
		updated, err := s.applySuccess(ctx, payment.ID, settlementFields(status), nil)
		if err != nil {
			return nil, err
		}
		return &SyncResult{
			Message:       "pembayaran berhasil diverifikasi",
			Payment:       updated,
			GatewayStatus: status.TransactionStatus,
		}, nil
	case model.PaymentFailed, model.PaymentExpired:
		domain := MapGatewayStatus(status.TransactionStatus, status.FraudStatus)
		if err := s.applyFailure(ctx, payment.ID, domain); err != nil {
			return nil, err
		}
		return &SyncResult{
			Message:       fmt.Sprintf("pembayaran %s, tagihan dihapus", domain),
			GatewayStatus: status.TransactionStatus,
			Deleted:       true,
		}, nil
	default:
		if err := s.payments.UpdatePendingFields(ctx, payment.ID, *settlementFields(status)); err != nil {
			return nil, apperr.Wrap(apperr.ErrInternal, "update payment: %v", err)
		}
		payment, _ = s.payments.GetByID(ctx, payment.ID)
		return &SyncResult{
			Message:       "pembayaran masih menunggu",
			Payment:       payment,
			GatewayStatus: status.TransactionStatus,
		}, nil
	}
}

// Verify is the owner's manual override: it forces a payment to
// SUCCESS without contacting the gateway, recording who verified it.
// It runs the identical success mutation as the automatic paths, so
// extension invoices advance the rental end date here too.
func (s *PaymentService) Verify(ctx context.Context, paymentID, verifierID uint64) (*model.Payment, error) {
	payment, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return nil, apperr.Wrap(apperr.ErrNotFound, "payment tidak ditemukan")
		}
		return nil, apperr.Wrap(apperr.ErrInternal, "load payment: %v", err)
	}
	return s.applySuccess(ctx, payment.ID, nil, &verifierID)
}

// Cancel terminates a PENDING payment on request of the tenant or the
// owner.  Tenants may cancel only their own payments.  Cancellation
// applies the same compensating deletions as a FAILED outcome.
func (s *PaymentService) Cancel(ctx context.Context, paymentID, actorID uint64, role string) error {
	payment, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return apperr.Wrap(apperr.ErrNotFound, "payment tidak ditemukan")
		}
		return apperr.Wrap(apperr.ErrInternal, "load payment: %v", err)
	}
	if payment.Status != model.PaymentPending {
		return apperr.Wrap(apperr.ErrConflict, "hanya pembayaran PENDING yang dapat dibatalkan")
	}
	if role == model.RolePenghuni && payment.UserID != actorID {
		return apperr.Wrap(apperr.ErrForbidden, "tidak memiliki akses untuk membatalkan pembayaran ini")
	}
	return s.applyFailure(ctx, payment.ID, model.PaymentCancel)
}

// Summary aggregates payment counts.  Tenants see only their own
// payments; owners see everything.
func (s *PaymentService) Summary(ctx context.Context, actorID uint64, role string) (*model.PaymentSummary, error) {
	scope := uint64(0)
	if role == model.RolePenghuni {
		scope = actorID
	}
	summary, err := s.payments.Summary(ctx, scope)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, "payment summary: %v", err)
	}
	return summary, nil
}

// List returns payments newest first with the same role scoping as
// Summary and an optional status filter.
func (s *PaymentService) List(ctx context.Context, actorID uint64, role, status string, page, limit int) ([]model.Payment, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	scope := uint64(0)
	if role == model.RolePenghuni {
		scope = actorID
	}
	payments, err := s.payments.List(ctx, scope, status, limit, (page-1)*limit)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, "list payments: %v", err)
	}
	return payments, nil
}

// GetByID returns one payment; tenants may fetch only their own.
func (s *PaymentService) GetByID(ctx context.Context, paymentID, actorID uint64, role string) (*model.Payment, error) {
	payment, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return nil, apperr.Wrap(apperr.ErrNotFound, "payment tidak ditemukan")
		}
		return nil, apperr.Wrap(apperr.ErrInternal, "load payment: %v", err)
	}
	if role == model.RolePenghuni && payment.UserID != actorID {
		return nil, apperr.Wrap(apperr.ErrForbidden, "tidak memiliki akses ke pembayaran ini")
	}
	return payment, nil
}

func settlementFields(st *gateway.StatusResponse) *repository.SettlementFields {
	f := &repository.SettlementFields{}
	if st.TransactionID != "" {
		f.TransactionID = &st.TransactionID
	}
	if st.PaymentType != "" {
		f.Method = &st.PaymentType
	}
	if len(st.VANumbers) > 0 {
		f.Bank = &st.VANumbers[0].Bank
		f.VANumber = &st.VANumbers[0].VANumber
	}
	return f
}

// applySuccess performs the success mutation in one transaction:
// payment to SUCCESS, invoice to PAID, and for extension invoices the
// rental end date advances by the recorded months.  Re-running on an
// already successful payment is a no-op, which makes webhook plus
// sync races harmless.  The notification event is published after
// commit, best-effort.
func (s *PaymentService) applySuccess(ctx context.Context, paymentID uint64, fields *repository.SettlementFields, verifier *uint64) (*model.Payment, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, "begin transaction: %v", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	payment, err := s.payments.GetByIDTx(ctx, tx, paymentID)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, "lock payment: %v", err)
	}
	if payment.Status == model.PaymentSuccess {
		// Terminal transition already happened through the other
		// entry point; nothing to mutate.
		return payment, nil
	}

	invoice, err := s.invoices.GetByIDTx(ctx, tx, payment.InvoiceID)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, "lock invoice: %v", err)
	}

	now := time.Now()
	if verifier != nil {
		if err := s.payments.MarkVerifiedTx(ctx, tx, paymentID, *verifier, now); err != nil {
			return nil, apperr.Wrap(apperr.ErrInternal, "mark payment verified: %v", err)
		}
	} else {
		f := repository.SettlementFields{}
		if fields != nil {
			f = *fields
		}
		if err := s.payments.MarkSuccessTx(ctx, tx, paymentID, now, f); err != nil {
			return nil, apperr.Wrap(apperr.ErrInternal, "mark payment success: %v", err)
		}
	}
	if err := s.invoices.MarkPaidTx(ctx, tx, invoice.ID); err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, "mark invoice paid: %v", err)
	}

	if invoice.Purpose == model.InvoiceExtension && invoice.ExtensionMonths > 0 {
		rental, err := s.rentals.GetByIDTx(ctx, tx, payment.RentalID)
		if err != nil {
			return nil, apperr.Wrap(apperr.ErrInternal, "lock rental: %v", err)
		}
		newEnd := rental.EndDate.AddDate(0, invoice.ExtensionMonths, 0)
		if err := s.rentals.ExtendTx(ctx, tx, rental.ID, newEnd, invoice.ExtensionMonths); err != nil {
			return nil, apperr.Wrap(apperr.ErrInternal, "extend rental: %v", err)
		}
		s.logger.Info("extension applied",
			zap.String("payment_code", payment.Code),
			zap.Int("months", invoice.ExtensionMonths),
			zap.Time("new_end", newEnd),
		)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, "commit settlement: %v", err)
	}
	committed = true

	payment.Status = model.PaymentSuccess
	payment.PaidAt = &now
	if verifier != nil {
		payment.VerifiedBy = verifier
		payment.VerifiedAt = &now
	}

	s.notifySuccess(ctx, payment, invoice, verifier)
	return payment, nil
}

// notifySuccess publishes the payment-succeeded event.  Failures are
// logged and swallowed; a notification can never roll back a
// settlement.
func (s *PaymentService) notifySuccess(ctx context.Context, payment *model.Payment, invoice *model.Invoice, verifier *uint64) {
	if s.publisher == nil {
		return
	}
	event := queue.PaymentSucceededEvent{
		PaymentID:      payment.ID,
		PaymentCode:    payment.Code,
		InvoiceCode:    invoice.Code,
		InvoicePurpose: invoice.Purpose,
		Amount:         payment.GrossAmount,
		PaidAt:         time.Now().UTC().Format(time.RFC3339),
	}
	if verifier != nil {
		event.ManuallyBy = *verifier
	}
	if user, err := s.users.GetByID(ctx, payment.UserID); err == nil {
		event.UserName = user.Name
		event.UserEmail = user.Email
	} else {
		s.logger.Warn("load user for notification failed",
			zap.Uint64("user_id", payment.UserID),
			zap.Error(err),
		)
	}
	if err := s.publisher.PublishPaymentSucceeded(ctx, event); err != nil {
		s.logger.Warn("publish payment event failed",
			zap.String("payment_code", payment.Code),
			zap.Error(err),
		)
	}
}

// applyFailure performs the compensation for a terminal non-success
// outcome in one transaction.  The payment is deleted before the
// invoice because payments reference invoices.  Extension invoices
// touch nothing else: the rental end date was never advanced.  For
// booking and transfer invoices the rental closes at now and its room
// becomes available again.
func (s *PaymentService) applyFailure(ctx context.Context, paymentID uint64, outcome string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Wrap(apperr.ErrInternal, "begin transaction: %v", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	payment, err := s.payments.GetByIDTx(ctx, tx, paymentID)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			// Already compensated by the other entry point.
			return nil
		}
		return apperr.Wrap(apperr.ErrInternal, "lock payment: %v", err)
	}
	if payment.Status == model.PaymentSuccess {
		return apperr.Wrap(apperr.ErrConflict, "pembayaran sudah berhasil dan tidak dapat dibatalkan")
	}

	invoice, err := s.invoices.GetByIDTx(ctx, tx, payment.InvoiceID)
	if err != nil {
		return apperr.Wrap(apperr.ErrInternal, "lock invoice: %v", err)
	}

	if err := s.payments.DeleteTx(ctx, tx, payment.ID); err != nil {
		return apperr.Wrap(apperr.ErrInternal, "delete payment: %v", err)
	}
	if err := s.invoices.DeleteTx(ctx, tx, invoice.ID); err != nil {
		return apperr.Wrap(apperr.ErrInternal, "delete invoice: %v", err)
	}

	if invoice.Purpose != model.InvoiceExtension {
		rental, err := s.rentals.GetByIDTx(ctx, tx, payment.RentalID)
		if err != nil {
			return apperr.Wrap(apperr.ErrInternal, "lock rental: %v", err)
		}
		if err := s.rentals.CloseTx(ctx, tx, rental.ID, time.Now(), nil); err != nil {
			return apperr.Wrap(apperr.ErrInternal, "close rental: %v", err)
		}
		if err := s.rooms.UpdateStatusTx(ctx, tx, rental.RoomID, model.RoomAvailable); err != nil {
			return apperr.Wrap(apperr.ErrInternal, "free room: %v", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperr.Wrap(apperr.ErrInternal, "commit compensation: %v", err)
	}
	committed = true

	s.logger.Info("payment compensated",
		zap.String("payment_code", payment.Code),
		zap.String("outcome", outcome),
		zap.String("invoice_purpose", invoice.Purpose),
	)
	return nil
}
