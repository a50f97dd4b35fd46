// Package cryptox wraps the one-way password hashing used for stored
// credentials. Hashes are bcrypt, salted per call, with an adjustable cost.
package cryptox

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrMismatch is returned by ComparePassword when the password does not
// produce the stored hash.
var ErrMismatch = errors.New("password mismatch")

// HashPassword derives a salted bcrypt hash. Costs outside bcrypt's accepted
// range fall back to bcrypt.DefaultCost.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ComparePassword reports ErrMismatch when password does not match hash and
// any other error when the hash itself is unusable.
func ComparePassword(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatch
	}
	return err
}
