// Package usecase implements the business logic for the user feature.
package usecase

import "errors"

var (
	// ErrUserNotFound is returned when no user matches the given ID.
	// A malformed ID is reported the same way.
	ErrUserNotFound = errors.New("user not found")

	// ErrMissingRequiredFields is returned when name, email or password is missing or empty on creation.
	ErrMissingRequiredFields = errors.New("missing required fields")

	// ErrNoDataProvided is returned when an update carries no fields.
	ErrNoDataProvided = errors.New("no data provided")

	// ErrImmutableField is returned when an update tries to change the user ID.
	ErrImmutableField = errors.New("field cannot be modified")

	// ErrInvalidFieldName is returned when an update names a field with a '.' or a leading '$'.
	ErrInvalidFieldName = errors.New("invalid field name")
)
