package model

import "time"

// Rental statuses.  A rental is created ACTIVE and moves to CLOSED
// when the tenant transfers out or the initial booking payment fails.
// Extensions never change the status; they move EndDate forward once
// the extension payment settles.
const (
	RentalActive = "ACTIVE"
	RentalClosed = "CLOSED"
)

// Rental records one tenancy period of one user in one room.
//
// Fields:
//  ID             – primary key identifier.
//  Code           – human readable code (SWA-…), used in notes and emails.
//  UserID         – tenant who rents the room.
//  RoomID         – the rented room.
//  StartDate      – beginning of the tenancy.
//  EndDate        – end of the tenancy; advanced in place by paid
//                   extensions, set to the move date on transfer-out.
//  MonthlyRate    – rate locked in at creation; may differ from the
//                   room's current rate.
//  DurationMonths – total months booked, incremented by paid extensions.
//  Status         – ACTIVE or CLOSED.
//  Note           – free text annotation (transfer notes).
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Rental struct {
	ID             uint64     // rentals.id
	Code           string     // rentals.code
	UserID         uint64     // rentals.user_id
	RoomID         uint64     // rentals.room_id
	StartDate      time.Time  // rentals.start_date
	EndDate        time.Time  // rentals.end_date
	MonthlyRate    int64      // rentals.monthly_rate
	DurationMonths int        // rentals.duration_months
	Status         string     // rentals.status
	Note           *string    // rentals.note (nullable)
	CreatedAt      time.Time  // rentals.created_at
	UpdatedAt      time.Time  // rentals.updated_at
}
