package service

import "errors"

// Service-level sentinels. Together with the repository sentinels they form
// the error taxonomy the HTTP layer maps onto status codes.
var (
	// ErrInvalidCredentials covers unknown usernames, wrong passwords and
	// deactivated accounts, without distinguishing them to the caller
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrValidation indicates a missing or malformed required field
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID indicates a syntactically malformed identifier,
	// rejected before any lookup
	ErrInvalidID = errors.New("invalid identifier")

	// ErrUnsupportedMediaType indicates an upload that is not an image
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrTooLarge indicates an upload beyond the size ceiling
	ErrTooLarge = errors.New("file too large")

	// ErrServiceUnavailable indicates the backing store is unreachable
	// and the operation cannot be served in degraded mode
	ErrServiceUnavailable = errors.New("service unavailable")
)
