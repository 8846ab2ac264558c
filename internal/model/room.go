package model

import "time"

// Room availability statuses.  A room is OCCUPIED exactly while one
// ACTIVE rental references it; booking and reconciliation flip the
// status together with the rental inside the same transaction.
const (
	RoomAvailable = "AVAILABLE"
	RoomOccupied  = "OCCUPIED"
)

// Room represents a rentable unit in the boarding house.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – display name shown on invoices and emails.
//  MonthlyRate – monthly rent in rupiah; nil until the owner prices
//                the room.  Unpriced rooms cannot be booked.
//  Status      – AVAILABLE or OCCUPIED.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Room struct {
	ID          uint64     // rooms.id
	Name        string     // rooms.name
	MonthlyRate *int64     // rooms.monthly_rate (nullable)
	Status      string     // rooms.status
	CreatedAt   time.Time  // rooms.created_at
	UpdatedAt   time.Time  // rooms.updated_at
}

// Priced reports whether the room has a monthly rate assigned.
func (r *Room) Priced() bool { return r.MonthlyRate != nil && *r.MonthlyRate > 0 }
