package cryptox

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor for stored password hashes.
const DefaultCost = 12

// MaxPasswordBytes is the longest input bcrypt will look at.
const MaxPasswordBytes = 72

var (
	ErrMismatch    = errors.New("cryptox: password does not match")
	ErrInvalidHash = errors.New("cryptox: invalid password hash")
	ErrTooLong     = errors.New("cryptox: password exceeds 72 bytes")
)

// Hasher hashes and verifies bcrypt passwords at a fixed cost. It also owns
// a dummy hash of the same cost so that a lookup miss can burn the same CPU
// time as a real comparison.
type Hasher struct {
	cost  int
	dummy []byte
}

// NewHasher returns a Hasher using cost, clamped to bcrypt's valid range.
// The dummy hash is computed here so no login pays for it.
func NewHasher(cost int) *Hasher {
	cost = clampCost(cost)

	buf := make([]byte, 32)
	_, _ = rand.Read(buf)
	dummy, err := bcrypt.GenerateFromPassword([]byte(hex.EncodeToString(buf)), cost)
	if err != nil {
		panic(fmt.Sprintf("cryptox: dummy hash: %v", err))
	}
	return &Hasher{cost: cost, dummy: dummy}
}

func clampCost(cost int) int {
	return min(max(cost, bcrypt.MinCost), bcrypt.MaxCost)
}

// Cost returns the work factor of hashes produced by h.
func (h *Hasher) Cost() int { return h.cost }

// Hash returns the bcrypt hash of password.
func (h *Hasher) Hash(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ErrTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("cryptox: hash password: %w", err)
	}
	return string(hash), nil
}

// Verify compares password against hash. Passwords longer than bcrypt's
// limit never match but still cost one full comparison.
func (h *Hasher) Verify(password, hash string) error {
	if len(password) > MaxPasswordBytes {
		h.VerifyDummy(password)
		return ErrMismatch
	}

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrMismatch
	default:
		return fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
}

// VerifyDummy runs a comparison against the dummy hash and discards the
// result.
func (h *Hasher) VerifyDummy(password string) {
	if len(password) > MaxPasswordBytes {
		password = password[:MaxPasswordBytes]
	}
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(password))
}
