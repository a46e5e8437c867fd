package keycloak

import "errors"

var (
	// ErrInvalidToken is returned when a token fails both local verification
	// and introspection.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrTokenInactive is returned when introspection reports the token as
	// not active.
	ErrTokenInactive = errors.New("token is not active")

	// ErrMissingSubject is returned when a validated token carries no sub claim.
	ErrMissingSubject = errors.New("token has no subject claim")

	// ErrNoIntrospectionEndpoint is returned when the realm's discovery
	// document does not advertise an introspection endpoint.
	ErrNoIntrospectionEndpoint = errors.New("realm does not advertise an introspection endpoint")
)
