// Package validate holds the email, password and display name rules used by the sign-in and
// sign-up forms, the auth service and the profile routes.
package validate

import (
	"errors"
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MinPasswordLength = 8
	// MaxPasswordLength is bcrypt's input limit in bytes.
	MaxPasswordLength = 72
	// MaxDisplayNameLength counts runes.
	MaxDisplayNameLength = 64
)

var (
	ErrEmailRequired    = errors.New("email is required")
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrPasswordRequired = errors.New("password is required")
	ErrPasswordTooShort = errors.New("password is too short")
	ErrPasswordTooLong  = errors.New("password is too long")
	ErrPasswordTooWeak  = errors.New("password needs at least one letter and one digit")

	ErrDisplayNameRequired = errors.New("display name is required")
	ErrDisplayNameTooLong  = errors.New("display name is too long")
)

// CheckEmail accepts a single bare address such as "ada@example.com".
func CheckEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return ErrEmailRequired
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Name != "" || addr.Address != email {
		return ErrInvalidEmail
	}
	at := strings.LastIndexByte(email, '@')
	if at <= 0 || !strings.Contains(email[at+1:], ".") {
		return ErrInvalidEmail
	}
	return nil
}

// CheckPassword enforces length bounds and a letter+digit mix.
func CheckPassword(password string) error {
	switch {
	case password == "":
		return ErrPasswordRequired
	case len(password) < MinPasswordLength:
		return ErrPasswordTooShort
	case len(password) > MaxPasswordLength:
		return ErrPasswordTooLong
	}
	var letter, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit {
		return ErrPasswordTooWeak
	}
	return nil
}

// CheckDisplayName requires a non-blank name of at most MaxDisplayNameLength runes once
// surrounding spaces are trimmed.
func CheckDisplayName(name string) error {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return ErrDisplayNameRequired
	case utf8.RuneCountInString(name) > MaxDisplayNameLength:
		return ErrDisplayNameTooLong
	}
	return nil
}

// Email reports whether email passes CheckEmail.
func Email(email string) bool { return CheckEmail(email) == nil }

// Password reports whether password passes CheckPassword.
func Password(password string) bool { return CheckPassword(password) == nil }

// DisplayName reports whether name passes CheckDisplayName.
func DisplayName(name string) bool { return CheckDisplayName(name) == nil }

// NormalizeEmail is the form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
