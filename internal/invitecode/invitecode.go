// Package invitecode generates and normalizes the short codes used to join
// a family. Codes are meant to be read aloud or typed, so the alphabet drops
// characters that transcribe badly (0/O, 1/I/L) and matching is
// case-insensitive.
package invitecode

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// alphabet omits 0, O, 1, I and L to survive manual transcription
const alphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// Length keeps collision odds negligible for the expected number of families
// while staying short enough to read over the phone
const Length = 6

// New generates a random invite code
func New() (string, error) {
	code := make([]byte, Length)
	for i := 0; i < Length; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			return "", err
		}
		code[i] = alphabet[num.Int64()]
	}
	return string(code), nil
}

// Normalize canonicalizes user-entered codes: uppercase, with surrounding
// whitespace and separator characters removed
func Normalize(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	code = strings.ReplaceAll(code, "-", "")
	code = strings.ReplaceAll(code, " ", "")
	return code
}

// Valid reports whether a normalized code has the expected length and alphabet
func Valid(code string) bool {
	if len(code) != Length {
		return false
	}
	for i := 0; i < len(code); i++ {
		if !strings.ContainsRune(alphabet, rune(code[i])) {
			return false
		}
	}
	return true
}
