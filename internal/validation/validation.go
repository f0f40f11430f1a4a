package validation

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 72 // bcrypt ignores anything longer
	MinNameLength     = 2
	MaxNameLength     = 100
	MaxCustomWords    = 5000
)

var (
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrInvalidPassword = errors.New("invalid password")
	ErrInvalidName     = errors.New("invalid name")
	ErrTooManyWords    = errors.New("too many custom words")
)

// ValidateEmail checks that email is a bare address with a local part and domain
func ValidateEmail(email string) error {
	if email == "" || strings.ContainsAny(email, " \t\r\n") {
		return ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || domain == "" {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePassword enforces length limits
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrInvalidPassword, MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return fmt.Errorf("%w: must be at most %d bytes", ErrInvalidPassword, MaxPasswordLength)
	}
	return nil
}

// ValidateName allows letters, spaces, hyphens and apostrophes
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	if n < MinNameLength || n > MaxNameLength {
		return fmt.Errorf("%w: must be %d-%d characters", ErrInvalidName, MinNameLength, MaxNameLength)
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && r != ' ' && r != '-' && r != '\'' && r != '.' {
			return fmt.Errorf("%w: unexpected character %q", ErrInvalidName, r)
		}
	}
	return nil
}

// ValidateCustomWords bounds the size of a pasted custom word list
func ValidateCustomWords(text string) error {
	if n := len(strings.Fields(text)); n > MaxCustomWords {
		return fmt.Errorf("%w: %d given, limit is %d", ErrTooManyWords, n, MaxCustomWords)
	}
	return nil
}
