// Package userinfo serves the authenticated caller's profile and grants.
package userinfo

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/dataspace-exchange/dataspace-backend/internal/auth"
	"github.com/dataspace-exchange/dataspace-backend/internal/config"
	authmiddleware "github.com/dataspace-exchange/dataspace-backend/internal/web/middleware/auth"
)

const (
	// Path is the path of the userinfo endpoint.
	Path = "/auth/userinfo"
)

// Service is the userinfo handler service.
type Service struct {
	cfg         *config.Config
	authService *auth.Service
}

// Handler is the userinfo handler.
var Handler = Service{}

// response is the userinfo payload.
type response struct {
	ID            uint64                   `json:"id"`
	Username      string                   `json:"username"`
	Email         string                   `json:"email"`
	FirstName     string                   `json:"first_name"`
	LastName      string                   `json:"last_name"`
	IsStaff       bool                     `json:"is_staff"`
	IsSuperuser   bool                     `json:"is_superuser"`
	Roles         []string                 `json:"roles"`
	Organizations []auth.OrganizationGrant `json:"organizations"`
	Datasets      []auth.DatasetGrant      `json:"datasets"`
}

// Init initializes the userinfo handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, authService *auth.Service) error {
	if app == nil || cfg == nil || authService == nil {
		return errors.New("app, cfg or auth service is nil")
	}

	s.cfg = cfg
	s.authService = authService

	app.Get(Path, authmiddleware.RequireAuthenticated, s.Get)

	return nil
}

// Get returns the caller's profile, token roles and database grants.
func (s *Service) Get(c *fiber.Ctx) error {
	user, ok := authmiddleware.CurrentUser(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	orgs, err := s.authService.ListUserOrganizations(user.ID)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", user.ID).Msg("failed to list organizations")

		return fiber.ErrInternalServerError
	}

	datasets, err := s.authService.ListUserDatasets(user.ID)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", user.ID).Msg("failed to list dataset grants")

		return fiber.ErrInternalServerError
	}

	roles := authmiddleware.Roles(c)
	if roles == nil {
		roles = []string{}
	}

	return c.JSON(response{
		ID:            user.ID,
		Username:      user.Username,
		Email:         user.Email,
		FirstName:     user.FirstName,
		LastName:      user.LastName,
		IsStaff:       user.IsStaff,
		IsSuperuser:   user.IsSuperuser,
		Roles:         roles,
		Organizations: orgs,
		Datasets:      datasets,
	})
}
