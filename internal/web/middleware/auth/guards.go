package auth

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/dataspace-exchange/dataspace-backend/internal/auth"
	"github.com/dataspace-exchange/dataspace-backend/internal/db/models"
)

// RequireAuthenticated rejects anonymous requests with 401.
func RequireAuthenticated(c *fiber.Ctx) error {
	if _, ok := CurrentUser(c); !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	return c.Next()
}

// RequireOrganizationPermission guards a route on the caller's role inside
// the organization named by the route parameter. The checked operation
// follows the HTTP method.
func RequireOrganizationPermission(authService *auth.Service, param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}

		orgID, err := strconv.ParseUint(c.Params(param), 10, 64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid organization id")
		}

		allowed, err := authService.CheckOrganizationPermission(
			user.ID, orgID, models.OperationFromMethod(c.Method()))
		if err != nil {
			log.Error().Err(err).Uint64("organization_id", orgID).
				Msg("organization permission check failed")

			return fiber.ErrInternalServerError
		}

		if !allowed {
			return fiber.NewError(fiber.StatusForbidden, "permission denied")
		}

		return c.Next()
	}
}

// RequireDatasetPermission guards a route on the caller's access to the
// dataset named by the route parameter. Organization roles and dataset
// grants both count.
func RequireDatasetPermission(authService *auth.Service, param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}

		datasetID, err := strconv.ParseUint(c.Params(param), 10, 64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid dataset id")
		}

		allowed, err := authService.CheckDatasetPermission(
			user.ID, datasetID, models.OperationFromMethod(c.Method()))
		if err != nil {
			log.Error().Err(err).Uint64("dataset_id", datasetID).
				Msg("dataset permission check failed")

			return fiber.ErrInternalServerError
		}

		if !allowed {
			return fiber.NewError(fiber.StatusForbidden, "permission denied")
		}

		return c.Next()
	}
}

// RequireSuperuser restricts a route to superusers.
func RequireSuperuser(c *fiber.Ctx) error {
	user, ok := CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	if !user.IsSuperuser {
		return fiber.NewError(fiber.StatusForbidden, "permission denied")
	}

	return c.Next()
}
