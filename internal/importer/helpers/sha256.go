package helpers

import (
	"crypto/sha256"
	"fmt"
)

// Sha256String returns the hex representation of the SHA256 hash of the
// input. It is used to derive stable references for ledger rows that do
// not carry one.
func Sha256String(input string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(input)))
}
