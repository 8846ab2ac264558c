package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Code prefixes for the three record types that carry human readable
// codes.  The payment code doubles as the gateway order id, so codes
// must be unique across the installation.
const (
	PrefixRental  = "SWA"
	PrefixInvoice = "TGH"
	PrefixPayment = "PAY"
)

// GenerateCode returns a code of the form PREFIX-YYYYMMDD-XXXXXX
// where X is uppercase hex from a CSPRNG.  Six random bytes give 48
// bits of entropy, plenty for order references.
func GenerateCode(prefix string) (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%s",
		prefix,
		time.Now().UTC().Format("20060102"),
		strings.ToUpper(hex.EncodeToString(buf)),
	), nil
}
