// Package organization serves the organization CRUD and membership endpoints.
package organization

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/dataspace-exchange/dataspace-backend/internal/auth"
	"github.com/dataspace-exchange/dataspace-backend/internal/config"
	controller "github.com/dataspace-exchange/dataspace-backend/internal/db/controller/organization"
	"github.com/dataspace-exchange/dataspace-backend/internal/db/controller/role"
	"github.com/dataspace-exchange/dataspace-backend/internal/db/models"
	"github.com/dataspace-exchange/dataspace-backend/internal/web/handler"
	authmiddleware "github.com/dataspace-exchange/dataspace-backend/internal/web/middleware/auth"
)

const (
	// Path is the base path of the organization endpoints.
	Path = "/organizations"
)

// Service is the organization handler service.
type Service struct {
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
	validator   *validator.Validate
}

// Handler is the organization handler.
var Handler = Service{}

var _ handler.Service = (*Service)(nil)

// upsertRequest is the create/update request body.
type upsertRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Slug        string `json:"slug" validate:"omitempty,max=255"`
	Description string `json:"description"`
}

// membershipRequest assigns a role to a user inside the organization.
type membershipRequest struct {
	UserID uint64 `json:"user_id" validate:"required"`
	Role   string `json:"role" validate:"required"`
}

// memberResponse is one row of the member listing.
type memberResponse struct {
	UserID   uint64 `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Init initializes the organization handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	if app == nil || cfg == nil || db == nil || authService == nil {
		return errors.New("app, cfg, db or auth service is nil")
	}

	s.cfg = cfg
	s.db = db
	s.authService = authService
	s.validator = validator.New()

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, authmiddleware.RequireAuthenticated, s.List)
		router.Post(handler.RouterRootPath, authmiddleware.RequireSuperuser, s.Create)
		router.Get("/:id", authmiddleware.RequireOrganizationPermission(authService, "id"), s.Get)
		router.Put("/:id", authmiddleware.RequireOrganizationPermission(authService, "id"), s.Update)
		router.Delete("/:id", authmiddleware.RequireOrganizationPermission(authService, "id"), s.Delete)
		router.Get("/:id/members", authmiddleware.RequireOrganizationPermission(authService, "id"), s.Members)
		router.Post("/:id/members", authmiddleware.RequireOrganizationPermission(authService, "id"), s.SetMember)
		router.Delete("/:id/members/:userID", authmiddleware.RequireOrganizationPermission(authService, "id"), s.RemoveMember)
	})

	return nil
}

// List returns all organizations.
func (s *Service) List(c *fiber.Ctx) error {
	orgs, err := controller.GetAll(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to list organizations")

		return fiber.ErrInternalServerError
	}

	return c.JSON(orgs)
}

// Get returns one organization.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	org, err := controller.Get(s.db, id)
	if err != nil {
		if errors.Is(err, controller.ErrOrganizationNotFound) {
			return fiber.ErrNotFound
		}

		log.Error().Err(err).Uint64("organization_id", id).Msg("failed to load organization")

		return fiber.ErrInternalServerError
	}

	return c.JSON(org)
}

// Create creates a new organization.
func (s *Service) Create(c *fiber.Ctx) error {
	req := new(upsertRequest)

	if err := s.parseBody(c, req); err != nil {
		return err
	}

	org := models.Organization{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
	}

	if err := controller.Create(s.db, &org); err != nil {
		if errors.Is(err, controller.ErrOrganizationAlreadyExists) {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}

		log.Error().Err(err).Str("name", req.Name).Msg("failed to create organization")

		return fiber.ErrInternalServerError
	}

	return c.Status(fiber.StatusCreated).JSON(org)
}

// Update updates an organization's metadata.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	req := new(upsertRequest)

	if err := s.parseBody(c, req); err != nil {
		return err
	}

	org, err := controller.Get(s.db, id)
	if err != nil {
		if errors.Is(err, controller.ErrOrganizationNotFound) {
			return fiber.ErrNotFound
		}

		return fiber.ErrInternalServerError
	}

	org.Name = req.Name
	org.Description = req.Description

	if req.Slug != "" {
		org.Slug = req.Slug
	}

	if err := controller.Update(s.db, org); err != nil {
		log.Error().Err(err).Uint64("organization_id", id).Msg("failed to update organization")

		return fiber.ErrInternalServerError
	}

	return c.JSON(org)
}

// Delete removes an organization and its datasets.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := controller.Delete(s.db, id); err != nil {
		if errors.Is(err, controller.ErrOrganizationNotFound) {
			return fiber.ErrNotFound
		}

		log.Error().Err(err).Uint64("organization_id", id).Msg("failed to delete organization")

		return fiber.ErrInternalServerError
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Members lists the organization's members with their roles.
func (s *Service) Members(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	memberships, err := controller.Members(s.db, id)
	if err != nil {
		log.Error().Err(err).Uint64("organization_id", id).Msg("failed to list members")

		return fiber.ErrInternalServerError
	}

	members := make([]memberResponse, 0, len(memberships))

	for i := range memberships {
		m := &memberships[i]
		members = append(members, memberResponse{
			UserID:   m.UserID,
			Username: m.User.Username,
			Email:    m.User.Email,
			Role:     m.Role.Name,
		})
	}

	return c.JSON(members)
}

// SetMember assigns or changes a member's role.
func (s *Service) SetMember(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	req := new(membershipRequest)

	if err := s.parseBody(c, req); err != nil {
		return err
	}

	r, err := role.Get(s.db, req.Role)
	if err != nil {
		if errors.Is(err, role.ErrRoleNotFound) {
			return fiber.NewError(fiber.StatusBadRequest, "unknown role")
		}

		return fiber.ErrInternalServerError
	}

	membership, err := controller.SetMembership(s.db, id, req.UserID, r.ID)
	if err != nil {
		log.Error().Err(err).Uint64("organization_id", id).Uint64("user_id", req.UserID).
			Msg("failed to set membership")

		return fiber.ErrInternalServerError
	}

	return c.JSON(memberResponse{
		UserID: membership.UserID,
		Role:   r.Name,
	})
}

// RemoveMember removes a user from the organization.
func (s *Service) RemoveMember(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	userID, err := paramID(c, "userID")
	if err != nil {
		return err
	}

	if err := controller.RemoveMembership(s.db, id, userID); err != nil {
		if errors.Is(err, controller.ErrMembershipNotFound) {
			return fiber.ErrNotFound
		}

		log.Error().Err(err).Uint64("organization_id", id).Uint64("user_id", userID).
			Msg("failed to remove membership")

		return fiber.ErrInternalServerError
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Service) parseBody(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := s.validator.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return nil
}

func paramID(c *fiber.Ctx, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	return id, nil
}
