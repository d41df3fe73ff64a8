package client

import (
	"errors"
	"strings"
	"unicode"
)

// Client-side mirrors of the server's field validation. The server
// remains the authority; these just catch obvious mistakes before a
// round trip.

var (
	ErrFullNameLength = errors.New("full name must be 2-100 characters")
	ErrInvalidEmail   = errors.New("invalid email address")
	ErrWeakPassword   = errors.New("password must be at least 8 characters with an uppercase letter, a lowercase letter, and a number")
)

func ValidateFullName(fullName string) error {
	n := len(strings.TrimSpace(fullName))

	if n < 2 || n > 100 {
		return ErrFullNameLength
	}

	return nil
}

func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)

	at := strings.Index(email, "@")

	if at < 1 || at == len(email)-1 || !strings.Contains(email[at:], ".") {
		return ErrInvalidEmail
	}

	return nil
}

func ValidatePassword(password string) error {
	if len(password) < 8 {
		return ErrWeakPassword
	}

	var hasUpper, hasLower, hasDigit bool

	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasUpper || !hasLower || !hasDigit {
		return ErrWeakPassword
	}

	return nil
}
