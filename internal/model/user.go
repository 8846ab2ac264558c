package model

import "time"

// Application roles.  PENGHUNI is a tenant, PEMILIK the boarding
// house owner.  Role names match the values stored in the JWT "role"
// claim.
const (
	RolePenghuni = "PENGHUNI"
	RolePemilik  = "PEMILIK"
)

// User represents an application user record as stored in the
// `users` table.  Handlers define separate response types with JSON
// tags; this struct is used by the repository layer only.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – display name, forwarded to the gateway as the
//                 customer name.
//  Email        – unique email address, also the notification target.
//  Phone        – optional phone number for gateway customer details.
//  PasswordHash – bcrypt hashed password.
//  Role         – PENGHUNI or PEMILIK.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	Email        string    // users.email
	Phone        *string   // users.phone (nullable)
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
