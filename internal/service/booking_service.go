// Package service implements the rental workflow and payment
// reconciliation state machines on top of the repository layer.  All
// multi-record mutations run inside a single transaction: every
// constituent write succeeds or none do.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mfadillah/kostly/internal/apperr"
	"github.com/mfadillah/kostly/internal/model"
	"github.com/mfadillah/kostly/internal/prorate"
	"github.com/mfadillah/kostly/internal/repository"
	"github.com/mfadillah/kostly/internal/utils"
)

// Booking duration bounds in months.
const (
	MinBookingMonths   = 1
	MaxBookingMonths   = 24
	MinExtensionMonths = 1
	MaxExtensionMonths = 12
)

// BookingService drives the rental lifecycle: booking creation,
// confirmation, extension requests and room transfers.  The service
// validates business rules inside the transaction that performs the
// writes, so the uniqueness checks and the mutations see one
// snapshot.
type BookingService struct {
	db       *sql.DB
	rooms    *repository.RoomRepo
	rentals  *repository.RentalRepo
	invoices *repository.InvoiceRepo
	dueDays  int
	logger   *zap.Logger
}

// NewBookingService constructs a BookingService.  dueDays is the
// configured window tenants get to pay a freshly created invoice.
func NewBookingService(db *sql.DB, rooms *repository.RoomRepo, rentals *repository.RentalRepo, invoices *repository.InvoiceRepo, dueDays int, logger *zap.Logger) *BookingService {
	if db == nil || rooms == nil || rentals == nil || invoices == nil {
		panic("nil dependency passed to NewBookingService")
	}
	if dueDays < 1 {
		dueDays = 1
	}
	return &BookingService{
		db:       db,
		rooms:    rooms,
		rentals:  rentals,
		invoices: invoices,
		dueDays:  dueDays,
		logger:   logger,
	}
}

// BookingResult is returned by CreateBooking.
type BookingResult struct {
	Rental  *model.Rental  `json:"rental"`
	Invoice *model.Invoice `json:"invoice"`
	Room    *model.Room    `json:"room"`
	Total   int64          `json:"total"`
}

// CreateBooking rents an available room to a tenant for the given
// number of months.  In one transaction it creates the ACTIVE rental
// with the room's current rate locked in, flips the room to OCCUPIED
// and raises the initial RENT invoice.  The tenant then pays the
// invoice through the payment service; a failed or expired payment
// reverts everything via reconciliation's compensation branch.
func (s *BookingService) CreateBooking(ctx context.Context, userID, roomID uint64, months int) (*BookingResult, error) {
	if months < MinBookingMonths || months > MaxBookingMonths {
		return nil, apperr.Wrap(apperr.ErrInvalidArgument, "durasi sewa harus antara %d-%d bulan", MinBookingMonths, MaxBookingMonths)
	}

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

	room, err := s.rooms.GetByIDTx(ctx, tx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, apperr.Wrap(apperr.ErrNotFound, "kamar tidak ditemukan")
		}
		return nil, apperr.Wrap(apperr.ErrInternal, "load room: %v", err)
	}
	if room.Status != model.RoomAvailable {
		return nil, apperr.Wrap(apperr.ErrConflict, "kamar tidak tersedia untuk disewa")
	}
	if !room.Priced() {
		return nil, apperr.Wrap(apperr.ErrInvalidArgument, "harga kamar belum ditentukan")
	}

	// Read-then-check uniqueness; the schema's generated-column
	// unique keys are the backstop under concurrent bookings.
	if _, err := s.rentals.FindActiveByUserTx(ctx, tx, userID); err == nil {
		return nil, apperr.Wrap(apperr.ErrConflict, "anda sudah memiliki sewa aktif")
	} else if !errors.Is(err, repository.ErrRentalNotFound) {
		return nil, apperr.Wrap(apperr.ErrInternal, "check user rental: %v", err)
	}
	if _, err := s.rentals.FindActiveByRoomTx(ctx, tx, roomID); err == nil {
		return nil, apperr.Wrap(apperr.ErrConflict, "kamar ini sedang disewa oleh penghuni lain")
	} else if !errors.Is(err, repository.ErrRentalNotFound) {
		return nil, apperr.Wrap(apperr.ErrInternal, "check room rental: %v", err)
	}

	now := time.Now()
	rate := *room.MonthlyRate
	total := rate * int64(months)

	code, err := utils.GenerateCode(utils.PrefixRental)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, "generate rental code: %v", err)
	}
	rental := &model.Rental{
		Code:           code,
		UserID:         userID,
		RoomID:         roomID,
		StartDate:      now,
		EndDate:        now.AddDate(0, months, 0),
		MonthlyRate:    rate,
		DurationMonths: months,
		Status:         model.RentalActive,
	}
	if err := s.rentals.CreateTx(ctx, tx, rental); err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, "create rental: %v", err)
	}

	if err := s.rooms.UpdateStatusTx(ctx, tx, roomID, model.RoomOccupied); err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, "occupy room: %v", err)
	}

	invCode, err := utils.GenerateCode(utils.PrefixInvoice)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, "generate invoice code: %v", err)
	}
	invoice := &model.Invoice{
		Code:        invCode,
		UserID:      userID,
		RentalID:    rental.ID,
		Purpose:     model.InvoiceRent,
		Amount:      total,
		DueAt:       now.AddDate(0, 0, s.dueDays),
		Status:      model.InvoiceUnpaid,
		Description: fmt.Sprintf("Pembayaran sewa kamar %s untuk %d bulan", room.Name, months),
	}
	if err := s.invoices.CreateTx(ctx, tx, invoice); err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, "create invoice: %v", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, "commit booking: %v", err)
	}
	committed = true

	s.logger.Info("booking created",
		zap.String("rental_code", rental.Code),
		zap.Uint64("user_id", userID),
		zap.Uint64("room_id", roomID),
		zap.Int("months", months),
		zap.Int64("total", total),
	)
	room.Status = model.RoomOccupied
	return &BookingResult{Rental: rental, Invoice: invoice, Room: room, Total: total}, nil
}

// ConfirmBooking idempotently re-asserts that a rental is ACTIVE and
// its room OCCUPIED.  It exists as a fallback confirmation path for
// clients that missed the original booking response.
func (s *BookingService) ConfirmBooking(ctx context.Context, rentalID uint64) error {
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

	rental, err := s.rentals.GetByIDTx(ctx, tx, rentalID)
	if err != nil {
		if errors.Is(err, repository.ErrRentalNotFound) {
			return apperr.Wrap(apperr.ErrNotFound, "booking tidak ditemukan")
		}
		return apperr.Wrap(apperr.ErrInternal, "load rental: %v", err)
	}

	if err := s.rentals.ReassertActiveTx(ctx, tx, rentalID); err != nil {
		return apperr.Wrap(apperr.ErrInternal, "activate rental: %v", err)
	}
	if err := s.rooms.UpdateStatusTx(ctx, tx, rental.RoomID, model.RoomOccupied); err != nil {
		return apperr.Wrap(apperr.ErrInternal, "occupy room: %v", err)
	}

	if err := tx.Commit(); err != nil {
		return apperr.Wrap(apperr.ErrInternal, "commit confirmation: %v", err)
	}
	committed = true
	return nil
}

// ExtendResult is returned by ExtendRental.  EstimatedNewEnd is for
// display only; the authoritative end date moves when the extension
// payment settles.
type ExtendResult struct {
	Rental          *model.Rental  `json:"rental"`
	Invoice         *model.Invoice `json:"invoice"`
	Cost            int64          `json:"cost"`
	CurrentEnd      time.Time      `json:"current_end_date"`
	EstimatedNewEnd time.Time      `json:"estimated_new_end_date"`
}

// ExtendRental raises an EXTENSION invoice for extra months on an
// active rental.  The rental itself is untouched here: its end date
// advances only when reconciliation sees the matching payment reach
// SUCCESS, so an unpaid extension leaves no trace beyond the invoice,
// which the failure branch deletes.
func (s *BookingService) ExtendRental(ctx context.Context, rentalID uint64, months int, userID uint64) (*ExtendResult, error) {
	if months < MinExtensionMonths || months > MaxExtensionMonths {
		return nil, apperr.Wrap(apperr.ErrInvalidArgument, "durasi perpanjangan harus antara %d-%d bulan", MinExtensionMonths, MaxExtensionMonths)
	}

	rental, err := s.rentals.GetByID(ctx, rentalID)
	if err != nil {
		if errors.Is(err, repository.ErrRentalNotFound) {
			return nil, apperr.Wrap(apperr.ErrNotFound, "data sewa tidak ditemukan")
		}
		return nil, apperr.Wrap(apperr.ErrInternal, "load rental: %v", err)
	}
	if rental.UserID != userID {
		return nil, apperr.Wrap(apperr.ErrForbidden, "anda tidak memiliki akses untuk memperpanjang sewa ini")
	}
	if rental.Status != model.RentalActive {
		return nil, apperr.Wrap(apperr.ErrConflict, "hanya sewa aktif yang dapat diperpanjang")
	}

	cost := rental.MonthlyRate * int64(months)
	estimated := rental.EndDate.AddDate(0, months, 0)

	code, err := utils.GenerateCode(utils.PrefixInvoice)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, "generate invoice code: %v", err)
	}
	invoice := &model.Invoice{
		Code:            code,
		UserID:          userID,
		RentalID:        rentalID,
		Purpose:         model.InvoiceExtension,
		ExtensionMonths: months,
		Amount:          cost,
		DueAt:           time.Now().AddDate(0, 0, s.dueDays),
		Status:          model.InvoiceUnpaid,
		Description:     fmt.Sprintf("Perpanjangan sewa %s untuk %d bulan", rental.Code, months),
	}
	if err := s.invoices.Create(ctx, invoice); err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, "create invoice: %v", err)
	}

	s.logger.Info("extension requested",
		zap.String("rental_code", rental.Code),
		zap.Int("months", months),
		zap.Int64("cost", cost),
	)
	return &ExtendResult{
		Rental:          rental,
		Invoice:         invoice,
		Cost:            cost,
		CurrentEnd:      rental.EndDate,
		EstimatedNewEnd: estimated,
	}, nil
}

// TransferResult is returned by TransferRoom.
type TransferResult struct {
	OldRental         *model.Rental       `json:"old_rental"`
	NewRental         *model.Rental       `json:"new_rental"`
	AdjustmentInvoice *model.Invoice      `json:"adjustment_invoice,omitempty"`
	Calculation       prorate.Calculation `json:"calculation"`
}

// TransferRoom moves an active rental to a different room effective
// moveDate (defaulting to now).  In one transaction the current
// rental is closed at the move date, the old room freed, a new ACTIVE
// rental created at the new room's rate running until the original
// end date, and the new room occupied.  When the new room is more
// expensive a TRANSFER_ADJUSTMENT invoice charges the prorated
// difference for the remaining days; a cheaper room yields no invoice
// and no credit.
func (s *BookingService) TransferRoom(ctx context.Context, rentalID, newRoomID uint64, moveDate *time.Time) (*TransferResult, error) {
	move := time.Now()
	if moveDate != nil {
		move = *moveDate
	}

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

	rental, err := s.rentals.GetByIDTx(ctx, tx, rentalID)
	if err != nil {
		if errors.Is(err, repository.ErrRentalNotFound) {
			return nil, apperr.Wrap(apperr.ErrNotFound, "data sewa tidak ditemukan")
		}
		return nil, apperr.Wrap(apperr.ErrInternal, "load rental: %v", err)
	}
	if rental.Status != model.RentalActive {
		return nil, apperr.Wrap(apperr.ErrConflict, "hanya sewa aktif yang dapat dipindahkan")
	}

	newRoom, err := s.rooms.GetByIDTx(ctx, tx, newRoomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, apperr.Wrap(apperr.ErrNotFound, "kamar tujuan tidak ditemukan")
		}
		return nil, apperr.Wrap(apperr.ErrInternal, "load room: %v", err)
	}
	if newRoom.ID == rental.RoomID {
		return nil, apperr.Wrap(apperr.ErrInvalidArgument, "kamar tujuan sama dengan kamar saat ini")
	}
	if newRoom.Status != model.RoomAvailable {
		return nil, apperr.Wrap(apperr.ErrConflict, "kamar tujuan tidak tersedia")
	}
	if !newRoom.Priced() {
		return nil, apperr.Wrap(apperr.ErrConflict, "harga kamar tujuan belum ditentukan")
	}

	calc := prorate.Transfer(rental.MonthlyRate, *newRoom.MonthlyRate, rental.EndDate, move)

	closeNote := fmt.Sprintf("Pindah ke kamar %s pada %s", newRoom.Name, move.Format("02-01-2006"))
	if err := s.rentals.CloseTx(ctx, tx, rentalID, move, &closeNote); err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, "close rental: %v", err)
	}
	if err := s.rooms.UpdateStatusTx(ctx, tx, rental.RoomID, model.RoomAvailable); err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, "free old room: %v", err)
	}

	months := monthsBetween(move, rental.EndDate)
	if months < 1 {
		months = 1
	}
	code, err := utils.GenerateCode(utils.PrefixRental)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, "generate rental code: %v", err)
	}
	openNote := fmt.Sprintf("Pindahan dari kamar sewa %s", rental.Code)
	newRental := &model.Rental{
		Code:           code,
		UserID:         rental.UserID,
		RoomID:         newRoomID,
		StartDate:      move,
		EndDate:        rental.EndDate,
		MonthlyRate:    *newRoom.MonthlyRate,
		DurationMonths: months,
		Status:         model.RentalActive,
		Note:           &openNote,
	}
	if err := s.rentals.CreateTx(ctx, tx, newRental); err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, "create rental: %v", err)
	}
	if err := s.rooms.UpdateStatusTx(ctx, tx, newRoomID, model.RoomOccupied); err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, "occupy new room: %v", err)
	}

	var adjInvoice *model.Invoice
	if calc.Adjustment > 0 {
		invCode, err := utils.GenerateCode(utils.PrefixInvoice)
		if err != nil {
			return nil, apperr.Wrap(apperr.ErrInternal, "generate invoice code: %v", err)
		}
		adjInvoice = &model.Invoice{
			Code:     invCode,
			UserID:   rental.UserID,
			RentalID: newRental.ID,
			Purpose:  model.InvoiceTransferAdjustment,
			Amount:   calc.Adjustment,
			DueAt:    time.Now().AddDate(0, 0, s.dueDays),
			Status:   model.InvoiceUnpaid,
			Description: fmt.Sprintf("Selisih harga pindah kamar ke %s (%d hari sisa periode sewa)",
				newRoom.Name, calc.RemainingDays),
		}
		if err := s.invoices.CreateTx(ctx, tx, adjInvoice); err != nil {
			return nil, apperr.Wrap(apperr.ErrInternal, "create adjustment invoice: %v", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, "commit transfer: %v", err)
	}
	committed = true

	s.logger.Info("room transfer executed",
		zap.String("old_rental", rental.Code),
		zap.String("new_rental", newRental.Code),
		zap.Int64("adjustment", calc.Adjustment),
	)
	rental.Status = model.RentalClosed
	rental.EndDate = move
	rental.Note = &closeNote
	return &TransferResult{
		OldRental:         rental,
		NewRental:         newRental,
		AdjustmentInvoice: adjInvoice,
		Calculation:       calc,
	}, nil
}

// PreviewTransfer computes the transfer adjustment without mutating
// anything, for UI preview.
func (s *BookingService) PreviewTransfer(ctx context.Context, rentalID, newRoomID uint64, moveDate *time.Time) (*prorate.Calculation, error) {
	move := time.Now()
	if moveDate != nil {
		move = *moveDate
	}

	rental, err := s.rentals.GetByID(ctx, rentalID)
	if err != nil {
		if errors.Is(err, repository.ErrRentalNotFound) {
			return nil, apperr.Wrap(apperr.ErrNotFound, "data sewa tidak ditemukan")
		}
		return nil, apperr.Wrap(apperr.ErrInternal, "load rental: %v", err)
	}
	newRoom, err := s.rooms.GetByID(ctx, newRoomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, apperr.Wrap(apperr.ErrNotFound, "kamar tujuan tidak ditemukan")
		}
		return nil, apperr.Wrap(apperr.ErrInternal, "load room: %v", err)
	}

	var newRate int64
	if newRoom.MonthlyRate != nil {
		newRate = *newRoom.MonthlyRate
	}
	calc := prorate.Transfer(rental.MonthlyRate, newRate, rental.EndDate, move)
	return &calc, nil
}

// monthsBetween counts whole calendar months from a to b, clamped at
// zero.
func monthsBetween(a, b time.Time) int {
	months := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	if months < 0 {
		return 0
	}
	return months
}
