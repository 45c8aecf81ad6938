// Package auth holds the server's credential primitives: the bcrypt password
// hasher and the signed session cookie codec.
package auth

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/outreach/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

// BcryptHasher hashes passwords with bcrypt at a fixed cost.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher using cost, which must be within
// [bcrypt.MinCost, bcrypt.MaxCost].
func NewBcryptHasher(cost int) (*BcryptHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, bcrypt.InvalidCostError(cost)
	}
	return &BcryptHasher{cost: cost}, nil
}

// Hash returns a salted digest of plaintext. Empty input and input longer
// than MaxPasswordBytes are rejected with common.ErrInvalidInput.
func (h *BcryptHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if plaintext == "" || len(plaintext) > MaxPasswordBytes {
		return "", common.ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. A malformed digest or an
// unusable plaintext is simply a mismatch.
func (h *BcryptHasher) Verify(ctx context.Context, plaintext, digest string) bool {
	if plaintext == "" || len(plaintext) > MaxPasswordBytes {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
