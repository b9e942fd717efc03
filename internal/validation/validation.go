package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"puzzleclash/internal/models"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < 8 {
		return ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	return nil
}

// ValidateName checks if a display name is valid
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if len(name) < 2 {
		return ValidationError{Field: "name", Message: "name must be at least 2 characters"}
	}
	return nil
}

// ValidateGroupName checks if a group name is valid
func ValidateGroupName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "group name is required"}
	}
	if len(name) > 100 {
		return ValidationError{Field: "name", Message: "group name must be at most 100 characters"}
	}
	return nil
}

// ValidateGame checks if game names a tracked puzzle
func ValidateGame(game string) error {
	if !models.ValidGame(game) {
		return ValidationError{Field: "game", Message: "game must be ZIP or QUEENS"}
	}
	return nil
}

// ValidateSinglePoints enforces the win/loss encoding used by the
// single-entry path
func ValidateSinglePoints(points int) error {
	if points < 0 || points > 1 {
		return ValidationError{Field: "points", Message: "points must be 0 or 1"}
	}
	return nil
}

// ValidateBulkPoints rejects negative point values. The upper bound is only
// enforced when strict mode is on; the quick-tracker UI submits accumulated
// win counts.
func ValidateBulkPoints(points int, strict bool) error {
	if strict {
		return ValidateSinglePoints(points)
	}
	if points < 0 {
		return ValidationError{Field: "points", Message: "points must not be negative"}
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD form value
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, ValidationError{Field: "date", Message: "date must be YYYY-MM-DD"}
	}
	return t, nil
}
