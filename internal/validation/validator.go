package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/church-content-api/internal/models"
	"github.com/google/uuid"
)

var usernameRegex = regexp.MustCompile(`^[a-z0-9._-]{2,40}$`)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Join renders the error list as one message for wrapping
func Join(errs []ValidationError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return strings.Join(parts, "; ")
}

// ValidatePostRequest validates a create/update post payload. The date is
// checked separately by ParseEventDate.
func ValidatePostRequest(req *models.PostRequest) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(req.Title) == "" {
		errors = append(errors, ValidationError{Field: "title", Message: "title is required"})
	}
	if strings.TrimSpace(req.Text) == "" {
		errors = append(errors, ValidationError{Field: "text", Message: "text is required"})
	}

	if req.Category == "" {
		errors = append(errors, ValidationError{Field: "category", Message: "category is required"})
	} else if !models.ValidCategories[req.Category] {
		errors = append(errors, ValidationError{
			Field:   "category",
			Message: fmt.Sprintf("invalid category, must be one of: %s", strings.Join(models.Categories, ", ")),
			Value:   req.Category,
		})
	}

	if req.Date == "" {
		errors = append(errors, ValidationError{Field: "date", Message: "date is required"})
	} else if _, err := ParseEventDate(req.Date); err != nil {
		errors = append(errors, ValidationError{Field: "date", Message: "invalid date, expected YYYY-MM-DD or RFC 3339", Value: req.Date})
	}

	for _, ref := range req.Images {
		if ref == "" {
			errors = append(errors, ValidationError{Field: "images", Message: "image references must be non-empty"})
			break
		}
	}

	return errors
}

// ParseEventDate accepts a calendar date or a full RFC 3339 timestamp
func ParseEventDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// ValidateCreateUser validates an admin user-creation payload
func ValidateCreateUser(req *models.CreateUserRequest) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(req.Name) == "" {
		errors = append(errors, ValidationError{Field: "name", Message: "name is required"})
	}

	username := strings.ToLower(strings.TrimSpace(req.Username))
	if username == "" {
		errors = append(errors, ValidationError{Field: "username", Message: "username is required"})
	} else if !usernameRegex.MatchString(username) {
		errors = append(errors, ValidationError{Field: "username", Message: "username must be 2-40 lowercase letters, digits, dots, dashes or underscores", Value: req.Username})
	}

	if len(req.Password) < 4 {
		errors = append(errors, ValidationError{Field: "password", Message: "password must be at least 4 characters"})
	}

	if req.Role == "" {
		errors = append(errors, ValidationError{Field: "role", Message: "role is required"})
	} else if !models.ValidRoles[req.Role] {
		errors = append(errors, ValidationError{Field: "role", Message: "invalid role, must be one of: admin, editor, viewer", Value: req.Role})
	}

	return errors
}

// ValidateUpdateUser validates an admin user-update payload
func ValidateUpdateUser(req *models.UpdateUserRequest) []ValidationError {
	var errors []ValidationError

	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		errors = append(errors, ValidationError{Field: "name", Message: "name must not be empty"})
	}
	if req.Role != nil && !models.ValidRoles[*req.Role] {
		errors = append(errors, ValidationError{Field: "role", Message: "invalid role, must be one of: admin, editor, viewer", Value: *req.Role})
	}
	if req.Password != nil && len(*req.Password) < 4 {
		errors = append(errors, ValidationError{Field: "password", Message: "password must be at least 4 characters"})
	}

	return errors
}

// IsValidUUID checks if a string is a valid UUID
func IsValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
