package config

import (
	"time"

	"github.com/dataspace-exchange/dataspace-backend/internal/logger"
)

// Cache holds settings for the validated-token cache.
type Cache struct {
	// ExpiryTime is how long, in seconds, a validated token stays cached
	// before the Keycloak validation runs again.
	ExpiryTime int
}

// Expiry returns the token cache expiry as a duration.
func (c Cache) Expiry() time.Duration {
	return time.Duration(c.ExpiryTime) * time.Second
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Keycloak  Keycloak
	Cache     Cache
	Log       logger.Log
	Title     string
	Webserver Webserver
}

// Webserver implement webserver settings.
type Webserver struct {
	CleanPath      bool   // use clean path middleware to allow multi slash requests
	DisableRecover bool   // disable recover middleware
	Domain         string // domain name for the webserver
	FastShutdown   bool   // skip the drain window and stop immediately on shutdown
	Port           int    // listening port for the webserver
	ShutDownTime   int    // wait time for shutdown
	URL            string // base url for the webserver
}

// Keycloak holds the Keycloak realm connection settings.
type Keycloak struct {
	ServerURL    string // base url of the Keycloak server
	Realm        string // realm name
	ClientID     string // confidential client id
	ClientSecret string // confidential client secret
	DevMode      bool   // skip token validation and act as a fixed admin identity
}
