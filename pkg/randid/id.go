// Package randid generates short random identifiers from a lowercase
// alphanumeric alphabet.
package randid

import (
	"crypto/rand"
	"math/big"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

var alphabetLen = big.NewInt(int64(len(alphabet)))

// Generate returns a random string of length n drawn from [a-z0-9].
// A non-positive n yields the empty string.
func Generate(n int) string {
	if n <= 0 {
		return ""
	}

	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			// crypto/rand does not fail on supported platforms
			panic("randid: reading random source: " + err.Error())
		}
		b[i] = alphabet[idx.Int64()]
	}
	return string(b)
}
