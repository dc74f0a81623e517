package registry

import (
	"fmt"
	"net/mail"
)

const (
	minNameLength     = 1
	maxNameLength     = 100
	minPasswordLength = 8
	maxPasswordLength = 100
)

// ValidationError reports the first failing payload check. Validation is
// short-circuiting; nothing is looked up before it passes.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidateLoginRequest checks the payload shape and the path/body name
// consistency. It has no side effects.
func ValidateLoginRequest(username string, req *LoginRequest) *ValidationError {
	if req.Type != "user" {
		return &ValidationError{
			Field:   "type",
			Message: fmt.Sprintf("type must be \"user\", got %q", req.Type),
		}
	}

	if len(req.Name) < minNameLength || len(req.Name) > maxNameLength {
		return &ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("name length must be between %d and %d", minNameLength, maxNameLength),
		}
	}

	// https://docs.npmjs.com/policies/security#password-policies
	if len(req.Password) < minPasswordLength || len(req.Password) > maxPasswordLength {
		return &ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("password length must be between %d and %d", minPasswordLength, maxPasswordLength),
		}
	}

	if req.Email != "" {
		if _, err := mail.ParseAddress(req.Email); err != nil {
			return &ValidationError{
				Field:   "email",
				Message: fmt.Sprintf("invalid email address %q", req.Email),
			}
		}
	}

	if username != req.Name {
		return &ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("username(%s) not match user.name(%s)", username, req.Name),
		}
	}

	return nil
}
