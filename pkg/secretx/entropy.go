package secretx

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/aussiebroadwan/ltcms/pkg/cryptox"
)

var (
	ErrMissing            = errors.New("secretx: secret is missing")
	ErrPlaceholder        = errors.New("secretx: secret is a well-known placeholder")
	ErrTooShort           = errors.New("secretx: secret is too short")
	ErrLowDiversity       = errors.New("secretx: secret uses too few character classes")
	ErrTooFewDistinct     = errors.New("secretx: secret has too few distinct characters")
	ErrAlreadyInitialized = errors.New("secretx: secret already initialized")
	ErrUnknownKind        = errors.New("secretx: unknown secret kind")
)

const (
	BearerMinLength     = 43
	BearerMinClasses    = 3
	CSRFMinLength       = 32
	MinDistinctChars    = 10
	minGeneratedEntropy = 32 // bytes
)

// placeholders are compared case-insensitively after trimming.
var placeholders = map[string]struct{}{
	"secret":                           {},
	"changeme":                         {},
	"change-me":                        {},
	"change_me":                        {},
	"changeit":                         {},
	"password":                         {},
	"default":                          {},
	"your-secret-key":                  {},
	"your_secret_key":                  {},
	"your-jwt-secret":                  {},
	"jwt_secret":                       {},
	"jwt-secret":                       {},
	"csrf_secret":                      {},
	"csrf-secret":                      {},
	"mysecret":                         {},
	"supersecret":                      {},
	"secretkey":                        {},
	"replace-me":                       {},
	"replace_me":                       {},
	"placeholder":                      {},
	"example":                          {},
	"test":                             {},
	"insecure":                         {},
	"development":                      {},
	"dev-secret":                       {},
	"please-change-me":                 {},
	"change-this-in-production":        {},
	"changeme-in-production":           {},
	"xxxxxxxx":                         {},
	"12345678901234567890123456789012": {},
}

// IsPlaceholder reports whether s matches a well-known placeholder value.
func IsPlaceholder(s string) bool {
	_, ok := placeholders[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// Validate trims raw and applies the entropy rules for kind. It returns the
// trimmed value on success.
func Validate(kind Kind, raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrMissing
	}
	if IsPlaceholder(s) {
		return "", ErrPlaceholder
	}

	switch kind {
	case KindBearer:
		if len(s) < BearerMinLength {
			return "", fmt.Errorf("%w: need at least %d characters", ErrTooShort, BearerMinLength)
		}
		if n := characterClasses(s); n < BearerMinClasses {
			return "", fmt.Errorf("%w: found %d of %d required", ErrLowDiversity, n, BearerMinClasses)
		}
	case KindCSRF:
		if len(s) < CSRFMinLength {
			return "", fmt.Errorf("%w: need at least %d characters", ErrTooShort, CSRFMinLength)
		}
	default:
		return "", ErrUnknownKind
	}

	if n := distinctChars(s); n < MinDistinctChars {
		return "", fmt.Errorf("%w: found %d, need %d", ErrTooFewDistinct, n, MinDistinctChars)
	}
	return s, nil
}

// characterClasses counts which of lowercase, uppercase, digit and
// non-alphanumeric appear in s.
func characterClasses(s string) int {
	var lower, upper, digit, other bool
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			other = true
		}
	}

	n := 0
	for _, present := range []bool{lower, upper, digit, other} {
		if present {
			n++
		}
	}
	return n
}

func distinctChars(s string) int {
	seen := make(map[rune]struct{}, len(s))
	for _, r := range s {
		seen[r] = struct{}{}
	}
	return len(seen)
}

// Generate returns a random base64url secret built from size bytes of
// entropy that satisfies both the bearer and CSRF rules. Sizes below 32
// bytes are raised to 32.
func Generate(size int) (string, error) {
	size = max(size, minGeneratedEntropy)

	// A random draw can in theory miss a character class; redraw until it
	// passes both rule sets.
	for {
		s, err := cryptox.GenerateToken(size)
		if err != nil {
			return "", fmt.Errorf("secretx: generate: %w", err)
		}
		if _, err := Validate(KindBearer, s); err != nil {
			continue
		}
		if _, err := Validate(KindCSRF, s); err != nil {
			continue
		}
		return s, nil
	}
}
