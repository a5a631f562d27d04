package validator

import (
	"errors"
	"strings"
)

// ValidateEmail performs structural validation only. Deliverability is the
// identity provider's concern.
func ValidateEmail(email string) error {
	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return errors.New("invalid email format")
	}
	if !strings.Contains(parts[1], ".") {
		return errors.New("invalid email domain")
	}
	if strings.ContainsAny(email, " \t\n") {
		return errors.New("email must not contain whitespace")
	}
	return nil
}
