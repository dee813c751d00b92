// ABOUTME: Client-side validation of login and registration input
// ABOUTME: Runs before any request so invalid forms never reach the backend

package session

import (
	"strings"
	"unicode/utf8"
)

// MinPasswordLength is the shortest password the registration form accepts
const MinPasswordLength = 6

// ValidationError is a client-side precondition failure; no request was sent
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// RegistrationForm holds the registration inputs as typed by the user
type RegistrationForm struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

// ValidateRegistration checks the form before any network call
func ValidateRegistration(f RegistrationForm) error {
	if strings.TrimSpace(f.Username) == "" || strings.TrimSpace(f.Email) == "" ||
		f.Password == "" || f.ConfirmPassword == "" {
		return &ValidationError{Message: "all fields are required"}
	}
	if f.Password != f.ConfirmPassword {
		return &ValidationError{Field: "confirm", Message: "passwords do not match"}
	}
	if utf8.RuneCountInString(f.Password) < MinPasswordLength {
		return &ValidationError{Field: "password", Message: "password must be at least 6 characters"}
	}
	if !strings.Contains(f.Email, "@") {
		return &ValidationError{Field: "email", Message: "enter a valid email address"}
	}
	return nil
}

// ValidateLogin checks that both credentials were entered
func ValidateLogin(username, password string) error {
	if strings.TrimSpace(username) == "" {
		return &ValidationError{Field: "username", Message: "username is required"}
	}
	if password == "" {
		return &ValidationError{Field: "password", Message: "password is required"}
	}
	return nil
}
