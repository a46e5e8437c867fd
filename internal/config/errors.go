package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")

	// ErrWebServerPortOutOfRange error if config webserver listening port is not a valid port number.
	ErrWebServerPortOutOfRange = errors.New("toml config webserver.port must be between 1 and 65535")

	// ErrKeycloakServerURLEmpty error if config keycloak.serverurl is empty.
	ErrKeycloakServerURLEmpty = errors.New("toml config keycloak.serverurl can not be empty")

	// ErrKeycloakRealmEmpty error if config keycloak.realm is empty.
	ErrKeycloakRealmEmpty = errors.New("toml config keycloak.realm can not be empty")

	// ErrKeycloakClientIDEmpty error if config keycloak.clientid is empty.
	ErrKeycloakClientIDEmpty = errors.New("toml config keycloak.clientid can not be empty")
)
