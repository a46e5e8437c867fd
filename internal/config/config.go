// Package config handles input from etc/*.toml files
package config

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/BurntSushi/toml"
)

const defaultCacheExpirySeconds = 300

// ReadConfig from config file.
func ReadConfig(path string) (Config, error) {
	var (
		c             Config
		JSONConfigEnv string
		err           error
	)

	// Read main configuration
	if path == "" {
		path = "./etc/"
	}

	if _, err = toml.DecodeFile(path+"main.toml", &c); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	// override it from env
	JSONConfigEnv = os.Getenv("DATASPACE_CONFIG_JSON")

	if JSONConfigEnv != "" {
		c, err = decodeAndMergeConfig(c, JSONConfigEnv)
		if err != nil {
			return c, err
		}
	}

	mergeKeycloakEnv(&c)

	return c, validate(&c)
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	err := json.Unmarshal([]byte(configAsJSON), &c)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	return c, nil
}

// mergeKeycloakEnv overlays the well-known KEYCLOAK_* environment variables
// over the TOML keycloak section. Deployments usually carry the realm
// credentials in the environment rather than in the config file.
func mergeKeycloakEnv(c *Config) {
	if v := os.Getenv("KEYCLOAK_SERVER_URL"); v != "" {
		c.Keycloak.ServerURL = v
	}

	if v := os.Getenv("KEYCLOAK_REALM"); v != "" {
		c.Keycloak.Realm = v
	}

	if v := os.Getenv("KEYCLOAK_CLIENT_ID"); v != "" {
		c.Keycloak.ClientID = v
	}

	if v := os.Getenv("KEYCLOAK_CLIENT_SECRET"); v != "" {
		c.Keycloak.ClientSecret = v
	}
}

// DumpConfig config as TOML String.
func DumpConfig(c Config) (string, error) {
	var buffer bytes.Buffer
	t := toml.NewEncoder(&buffer)

	if err := t.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// DumpConfigJSON config as JSON String.
func DumpConfigJSON(c Config) (string, error) {
	var buffer bytes.Buffer
	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// validate minimal config settings for the service and fill defaults.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	if c.Webserver.Port == 0 {
		c.Webserver.Port = 8000 // default service port
	}

	if c.Webserver.Port < 0 || c.Webserver.Port > 65535 {
		return errors.Wrap(ErrWebServerPortOutOfRange, invalidErrMessage)
	}

	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = 5 // set default of 5 seconds
	}

	if c.Cache.ExpiryTime == 0 {
		c.Cache.ExpiryTime = defaultCacheExpirySeconds
	}

	// Keycloak settings are only required outside dev mode; dev mode uses a
	// mock identity and never talks to the realm.
	if !c.Keycloak.DevMode && !c.DevMode {
		if c.Keycloak.ServerURL == "" {
			return errors.Wrap(ErrKeycloakServerURLEmpty, invalidErrMessage)
		}

		if c.Keycloak.Realm == "" {
			return errors.Wrap(ErrKeycloakRealmEmpty, invalidErrMessage)
		}

		if c.Keycloak.ClientID == "" {
			return errors.Wrap(ErrKeycloakClientIDEmpty, invalidErrMessage)
		}
	}

	return nil
}
