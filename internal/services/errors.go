package services

import "errors"

// Typed domain failures. Handlers translate these to HTTP statuses; anything
// else is treated as an internal error.
var (
	// ErrEmailTaken means signup hit an email that an active user already has.
	ErrEmailTaken = errors.New("email already in use")

	// ErrInvalidCredentials covers both unknown email and wrong password, so
	// sign-in failures never reveal which emails are registered.
	ErrInvalidCredentials = errors.New("wrong email or password")

	// ErrInvalidRequest means the caller supplied an unusable combination of
	// arguments (e.g. a user lookup with neither id nor email).
	ErrInvalidRequest = errors.New("invalid request")

	// ErrProductNotFound means the product does not exist or is soft-deleted.
	ErrProductNotFound = errors.New("product not found")

	// ErrNotOwner means the acting user is not the product's creator.
	ErrNotOwner = errors.New("not the owner of this product")
)

// ValidationError reports semantically invalid input with a machine-readable
// code the API exposes alongside the message.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ErrInvalidCurrency rejects currencies outside the supported set.
func ErrInvalidCurrency(currency string) *ValidationError {
	return &ValidationError{Code: "INVALID_CURRENCY", Message: "invalid currency: " + currency}
}
