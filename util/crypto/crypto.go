// Package crypto provides password hashing and verification.
package crypto

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordLen is the longest password bcrypt reads in full.
const MaxPasswordLen = 72

// ErrPasswordTooLong is returned for passwords bcrypt cannot hash (over 72 bytes).
var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

// dummyHash is compared against when no stored hash exists so that a missing
// user costs the same as a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("ragchat-dummy-password"), bcrypt.DefaultCost)

// HashPassword returns a salted bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPasswordHash reports whether password matches hash. Passwords longer
// than MaxPasswordLen never match: bcrypt ignores everything past that length.
func CheckPasswordHash(hash, password string) bool {
	return compare([]byte(hash), password)
}

// BurnPasswordCheck performs a comparison whose result is discarded.
func BurnPasswordCheck(password string) {
	_ = compare(dummyHash, password)
}

// compare always runs the bcrypt comparison so an over-long password costs
// the same as any other mismatch.
func compare(hash []byte, password string) bool {
	err := bcrypt.CompareHashAndPassword(hash, []byte(password))
	return err == nil && len(password) <= MaxPasswordLen
}

// IsTooLong reports whether err came from an over-long password.
func IsTooLong(err error) bool {
	return errors.Is(err, ErrPasswordTooLong)
}
