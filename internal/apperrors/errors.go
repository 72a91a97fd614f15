// Package apperrors defines the error kinds shared by the stores, the ticket
// generator and the services. Callers wrap them with fmt.Errorf("%w: ...") and
// match them with errors.Is.
package apperrors

import "errors"

var (
	// ErrValidation marks a missing or invalid input field or upload.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks an unknown registration or file.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyValidated is returned by a second validation of the same registration.
	ErrAlreadyValidated = errors.New("registration already validated")

	// ErrStorage marks a file-system or database failure.
	ErrStorage = errors.New("storage error")

	// ErrGeneration marks a QR code or ticket document rendering failure.
	ErrGeneration = errors.New("ticket generation error")

	// ErrAuth marks bad credentials or a missing/invalid admin session.
	ErrAuth = errors.New("authentication error")
)
