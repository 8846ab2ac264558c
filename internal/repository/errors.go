// Package repository implements data access for rooms, rentals,
// invoices, payments and users on top of database/sql.  Every write
// that participates in a workflow has a ...Tx variant taking an
// explicit *sql.Tx; the caller owns commit and rollback.  Per-entity
// not-found sentinels let services distinguish a missing row from a
// database failure without inspecting sql.ErrNoRows at call sites.
package repository

import "errors"

// ErrRoomNotFound is returned when a room lookup matches no row.
var ErrRoomNotFound = errors.New("room not found")

// ErrRentalNotFound is returned when a rental lookup matches no row.
var ErrRentalNotFound = errors.New("rental not found")

// ErrInvoiceNotFound is returned when an invoice lookup matches no row.
var ErrInvoiceNotFound = errors.New("invoice not found")

// ErrPaymentNotFound is returned when a payment lookup matches no row.
var ErrPaymentNotFound = errors.New("payment not found")

// ErrUserNotFound is returned when a user lookup matches no row.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailTaken is returned when registering with an email that
// already exists.
var ErrEmailTaken = errors.New("email already registered")
