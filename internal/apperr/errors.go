// Package apperr defines the error kinds shared between the service
// and handler layers.  Services wrap one of the sentinel kinds with a
// human readable message; handlers use errors.Is to translate the
// kind into an HTTP status code.  This keeps business rules free of
// HTTP concerns while still letting a handler render a precise
// user-facing message.
package apperr

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument marks malformed or out-of-range input, such as a
// rental duration outside 1-24 months or an unpriced room.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrNotFound marks a missing room, rental, invoice or payment.
var ErrNotFound = errors.New("not found")

// ErrForbidden marks an ownership or role mismatch, such as a tenant
// extending somebody else's rental.
var ErrForbidden = errors.New("forbidden")

// ErrConflict marks a business-rule violation on otherwise valid
// input: an occupied room, a duplicate active rental, a non-ACTIVE
// rental being transferred, or a non-PENDING payment being cancelled.
var ErrConflict = errors.New("conflict")

// ErrGateway marks a failed call to the payment gateway.
var ErrGateway = errors.New("payment gateway error")

// ErrInternal marks an unexpected failure, typically a database error
// mid-transaction.  The transaction is rolled back before this is
// returned.
var ErrInternal = errors.New("internal error")

// Wrap attaches a formatted message to one of the sentinel kinds.
// The result satisfies errors.Is(err, kind).
func Wrap(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

// Message strips the kind prefix for rendering to clients.  If the
// error does not carry a prefix the whole text is returned.
func Message(err error) string {
	if err == nil {
		return ""
	}
	for _, kind := range []error{ErrInvalidArgument, ErrNotFound, ErrForbidden, ErrConflict, ErrGateway, ErrInternal} {
		if errors.Is(err, kind) {
			prefix := kind.Error() + ": "
			s := err.Error()
			if len(s) > len(prefix) && s[:len(prefix)] == prefix {
				return s[len(prefix):]
			}
			return s
		}
	}
	return err.Error()
}
