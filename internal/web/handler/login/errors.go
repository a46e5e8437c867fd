// Package login provides the token endpoints of the authentication flow.
//
// This file defines exported error values used throughout the login flow.
package login

import "errors"

var (
	// ErrInvalidRequestBody is returned when the submitted credentials cannot
	// be parsed or fail validation.
	ErrInvalidRequestBody = errors.New("invalid request body")

	// ErrInvalidCredentials is returned when the provided username and/or
	// password are rejected by Keycloak.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrMissingRefreshToken is returned when the refresh request carries no
	// refresh token.
	ErrMissingRefreshToken = errors.New("missing refresh token")

	// ErrMissingToken is returned when the exchange request carries no token.
	ErrMissingToken = errors.New("missing token")

	// ErrInvalidToken is returned when Keycloak rejects the submitted token.
	ErrInvalidToken = errors.New("invalid token")
)
