package utils

import (
	"golang.org/x/crypto/bcrypt" // Password hashing
)

const (
	// MinHashCost is the lowest bcrypt work factor accepted for stored passwords
	MinHashCost = 10
	// MaxPasswordBytes is the longest password bcrypt accepts
	MaxPasswordBytes = 72
)

// ErrPasswordTooLong is returned by Hash for passwords over MaxPasswordBytes
var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

// PasswordHasher turns a plaintext password into a salted one-way digest
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
}

// BcryptHasher hashes passwords with bcrypt
type BcryptHasher struct {
	cost int // Work factor
}

// NewBcryptHasher returns a hasher using cost, raised to MinHashCost if lower
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < MinHashCost {
		cost = MinHashCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash returns the bcrypt digest of plaintext
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	if len(plaintext) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}
