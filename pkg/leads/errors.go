package leads

import "errors"

// Typed domain errors. The HTTP layer maps these to status codes; everything
// else wraps them with %w so errors.Is works across layers.
var (
	// ErrValidation marks malformed or missing input. Wrap it with detail:
	// fmt.Errorf("%w: first name is required", ErrValidation).
	ErrValidation = errors.New("validation failed")

	// ErrNotFound means the referenced lead does not exist or was deleted.
	ErrNotFound = errors.New("lead not found")

	// ErrAccessDenied means the requester lacks permission for the lead or
	// operation. The HTTP layer surfaces it with one fixed generic body.
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidStatus means the requested status is not in the closed
	// enumeration. Raised before any mutation.
	ErrInvalidStatus = errors.New("invalid status")
)
