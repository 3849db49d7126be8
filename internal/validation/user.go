package validation

import (
	"strings"

	"github.com/ndewijer/portfolio-tracker/internal/api/request"
)

// ValidateCreateUser validates a user creation request.
func ValidateCreateUser(req request.CreateUserRequest) error {
	errors := make(map[string]string)

	name := strings.TrimSpace(req.Name)
	if name == "" {
		errors["name"] = "name is required."
	} else if len(name) > 100 {
		errors["name"] = "name must be 100 characters or less."
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
