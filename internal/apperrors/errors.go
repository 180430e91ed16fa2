package apperrors

import "errors"

// Sentinel errors shared across services, repositories, and transports.
// Transports decide how each one maps to an HTTP status or GraphQL code.
var (
	ErrProductNotFound = errors.New("product not found")
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("insufficient role")
)

// ValidationError reports invalid input values, either from the request
// schema or from an entity invariant.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError with a single message.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}
