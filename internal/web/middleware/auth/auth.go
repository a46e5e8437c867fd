package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/dataspace-exchange/dataspace-backend/internal/auth"
	"github.com/dataspace-exchange/dataspace-backend/internal/config"
	"github.com/dataspace-exchange/dataspace-backend/internal/db/models"
	"github.com/dataspace-exchange/dataspace-backend/internal/keycloak"
	"github.com/dataspace-exchange/dataspace-backend/internal/web/session"
)

const (
	// LocalsUser is the fiber.Locals key holding the current user.
	LocalsUser = "CurrentUser"

	// LocalsRoles is the fiber.Locals key holding the token's role names.
	LocalsRoles = "Roles"

	// HeaderKeycloakToken is the fallback token header checked when the
	// Authorization header carries no bearer token.
	HeaderKeycloakToken = "x-keycloak-token"

	bearerPrefix = "Bearer "
)

// New creates the bearer token middleware. Requests without a valid token
// continue as anonymous; route guards enforce access.
func New(kc *keycloak.Client, authService *auth.Service, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// CORS preflights carry no credentials
		if c.Method() == fiber.MethodOptions {
			return c.Next()
		}

		rawToken := ExtractToken(c)
		if rawToken == "" {
			return c.Next()
		}

		key := session.TokenKey(rawToken)

		cached := new(session.Data)
		if err := cached.Read(key); err == nil && cached.User.ID > 0 {
			c.Locals(LocalsUser, cached.User)
			c.Locals(LocalsRoles, cached.Roles)

			return c.Next()
		}

		info, roles, orgs, err := kc.ValidateToken(c.Context(), rawToken)
		if err != nil {
			log.Debug().Err(err).Msg("token validation failed, continuing as anonymous")

			return c.Next()
		}

		user, err := authService.SyncUser(info, orgs)
		if err != nil {
			log.Error().Err(err).Str("subject", info.Subject).
				Msg("user sync failed, continuing as anonymous")

			return c.Next()
		}

		data := session.Data{User: *user, Roles: roles}
		if err := data.Write(key, cfg.Cache.Expiry()); err != nil {
			log.Error().Err(err).Msg("failed to cache token validation")
		}

		c.Locals(LocalsUser, *user)
		c.Locals(LocalsRoles, roles)

		return c.Next()
	}
}

// ExtractToken pulls the raw bearer token from the request. The
// Authorization header wins; x-keycloak-token is the fallback.
func ExtractToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(header, bearerPrefix) {
		return strings.TrimSpace(header[len(bearerPrefix):])
	}

	return strings.TrimSpace(c.Get(HeaderKeycloakToken))
}

// CurrentUser returns the authenticated user attached to the request, if any.
func CurrentUser(c *fiber.Ctx) (models.User, bool) {
	user, ok := c.Locals(LocalsUser).(models.User)

	return user, ok && user.ID > 0
}

// Roles returns the token role names attached to the request.
func Roles(c *fiber.Ctx) []string {
	roles, _ := c.Locals(LocalsRoles).([]string)

	return roles
}
