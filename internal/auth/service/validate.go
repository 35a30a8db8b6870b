package service

import (
	"errors"
	"regexp"
	"unicode/utf8"
)

const (
	MaxUsernameLength = 50
	MaxPasswordLength = 128
)

var (
	ErrInvalidUsername = errors.New("service: invalid username")
	ErrInvalidPassword = errors.New("service: invalid password")
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,50}$`)

// ValidateCredentials applies the login input rules. It is shared by the
// login path and the admin bootstrap.
func ValidateCredentials(username, password string) error {
	if !usernamePattern.MatchString(username) {
		return ErrInvalidUsername
	}
	if n := utf8.RuneCountInString(password); n == 0 || n > MaxPasswordLength {
		return ErrInvalidPassword
	}
	return nil
}
