package shared

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

// RequireText checks that value is non-blank and at most max runes long
func RequireText(field, value string, max int) error {
	if strings.TrimSpace(value) == "" {
		return InvalidInputf("%s is required", field)
	}
	return MaxLength(field, value, max)
}

// MaxLength checks an optional text field
func MaxLength(field, value string, max int) error {
	if max > 0 && utf8.RuneCountInString(value) > max {
		return InvalidInputf("%s cannot exceed %d characters", field, max)
	}
	return nil
}

// RequirePositive checks n > 0
func RequirePositive(field string, n int) error {
	if n <= 0 {
		return InvalidInputf("%s must be a positive integer", field)
	}
	return nil
}

// RequireNonNegative checks n >= 0
func RequireNonNegative(field string, n int) error {
	if n < 0 {
		return InvalidInputf("%s cannot be negative", field)
	}
	return nil
}

// RequireID checks that a reference is set
func RequireID(field string, id uint) error {
	if id == 0 {
		return InvalidInputf("%s is required", field)
	}
	return nil
}

// OptionalEmail validates an email address when one is given
func OptionalEmail(field, value string) error {
	if value == "" {
		return nil
	}
	if _, err := mail.ParseAddress(value); err != nil {
		return InvalidInputf("%s must be a valid email address", field)
	}
	return nil
}
