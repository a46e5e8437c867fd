package auth

import "errors"

var (
	// ErrMissingUserInfo is returned when Keycloak claims lack the subject or
	// any usable username.
	ErrMissingUserInfo = errors.New("missing required user information from token")

	// ErrUserNotFound is returned when a user cannot be found in the database.
	ErrUserNotFound = errors.New("user not found")

	// ErrDBNil is returned when the service is constructed without a database.
	ErrDBNil = errors.New("database connection is nil")
)
