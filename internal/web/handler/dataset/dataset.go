// Package dataset serves the dataset CRUD and grant endpoints.
package dataset

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/dataspace-exchange/dataspace-backend/internal/auth"
	"github.com/dataspace-exchange/dataspace-backend/internal/config"
	controller "github.com/dataspace-exchange/dataspace-backend/internal/db/controller/dataset"
	"github.com/dataspace-exchange/dataspace-backend/internal/db/controller/role"
	"github.com/dataspace-exchange/dataspace-backend/internal/db/models"
	"github.com/dataspace-exchange/dataspace-backend/internal/web/handler"
	authmiddleware "github.com/dataspace-exchange/dataspace-backend/internal/web/middleware/auth"
)

const (
	// Path is the base path of the dataset endpoints.
	Path = "/datasets"
)

// Service is the dataset handler service.
type Service struct {
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
	validator   *validator.Validate
}

// Handler is the dataset handler.
var Handler = Service{}

var _ handler.Service = (*Service)(nil)

// createRequest is the dataset creation request body.
type createRequest struct {
	Title          string `json:"title" validate:"required,max=255"`
	Description    string `json:"description"`
	OrganizationID uint64 `json:"organization_id" validate:"required"`
	Published      bool   `json:"published"`
}

// updateRequest is the dataset update request body.
type updateRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description"`
	Published   bool   `json:"published"`
}

// grantRequest assigns a dataset role to a user.
type grantRequest struct {
	UserID uint64 `json:"user_id" validate:"required"`
	Role   string `json:"role" validate:"required"`
}

// Init initializes the dataset handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	if app == nil || cfg == nil || db == nil || authService == nil {
		return errors.New("app, cfg, db or auth service is nil")
	}

	s.cfg = cfg
	s.db = db
	s.authService = authService
	s.validator = validator.New()

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, s.List)
		router.Post(handler.RouterRootPath, authmiddleware.RequireAuthenticated, s.Create)
		router.Get("/:id", s.Get)
		router.Put("/:id", authmiddleware.RequireDatasetPermission(authService, "id"), s.Update)
		router.Delete("/:id", authmiddleware.RequireDatasetPermission(authService, "id"), s.Delete)
		router.Post("/:id/permissions", authmiddleware.RequireDatasetPermission(authService, "id"), s.SetGrant)
		router.Delete("/:id/permissions/:userID", authmiddleware.RequireDatasetPermission(authService, "id"), s.RemoveGrant)
	})

	return nil
}

// List returns the datasets visible to the caller: everything for
// superusers, the caller's organizations plus published datasets for
// authenticated users, published datasets only for anonymous requests.
func (s *Service) List(c *fiber.Ctx) error {
	user, ok := authmiddleware.CurrentUser(c)
	if !ok {
		return s.listPublished(c)
	}

	if user.IsSuperuser {
		datasets, err := controller.ListAll(s.db)
		if err != nil {
			log.Error().Err(err).Msg("failed to list datasets")

			return fiber.ErrInternalServerError
		}

		return c.JSON(datasets)
	}

	orgIDs, err := s.authService.OrganizationIDs(user.ID)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", user.ID).Msg("failed to list organization ids")

		return fiber.ErrInternalServerError
	}

	own, err := controller.ListForOrganizations(s.db, orgIDs)
	if err != nil {
		log.Error().Err(err).Msg("failed to list organization datasets")

		return fiber.ErrInternalServerError
	}

	published, err := controller.ListPublished(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to list published datasets")

		return fiber.ErrInternalServerError
	}

	return c.JSON(mergeDatasets(own, published))
}

// Get returns one dataset. Published datasets are public; everything else
// needs view access.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	ds, err := controller.Get(s.db, id)
	if err != nil {
		if errors.Is(err, controller.ErrDatasetNotFound) {
			return fiber.ErrNotFound
		}

		log.Error().Err(err).Uint64("dataset_id", id).Msg("failed to load dataset")

		return fiber.ErrInternalServerError
	}

	if ds.Published {
		return c.JSON(ds)
	}

	user, ok := authmiddleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	allowed, err := s.authService.CheckDatasetPermission(user.ID, id, models.OperationView)
	if err != nil {
		return fiber.ErrInternalServerError
	}

	if !allowed {
		return fiber.NewError(fiber.StatusForbidden, "permission denied")
	}

	return c.JSON(ds)
}

// Create creates a dataset inside an organization the caller may add to.
func (s *Service) Create(c *fiber.Ctx) error {
	user, _ := authmiddleware.CurrentUser(c)

	req := new(createRequest)

	if err := s.parseBody(c, req); err != nil {
		return err
	}

	allowed, err := s.authService.CheckOrganizationPermission(
		user.ID, req.OrganizationID, models.OperationAdd)
	if err != nil {
		return fiber.ErrInternalServerError
	}

	if !allowed {
		return fiber.NewError(fiber.StatusForbidden, "permission denied")
	}

	ds := models.Dataset{
		Title:          req.Title,
		Description:    req.Description,
		OrganizationID: req.OrganizationID,
		Published:      req.Published,
	}

	if err := controller.Create(s.db, &ds); err != nil {
		log.Error().Err(err).Str("title", req.Title).Msg("failed to create dataset")

		return fiber.ErrInternalServerError
	}

	return c.Status(fiber.StatusCreated).JSON(ds)
}

// Update updates a dataset's metadata.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	req := new(updateRequest)

	if err := s.parseBody(c, req); err != nil {
		return err
	}

	ds, err := controller.Get(s.db, id)
	if err != nil {
		if errors.Is(err, controller.ErrDatasetNotFound) {
			return fiber.ErrNotFound
		}

		return fiber.ErrInternalServerError
	}

	ds.Title = req.Title
	ds.Description = req.Description
	ds.Published = req.Published

	if err := controller.Update(s.db, ds); err != nil {
		log.Error().Err(err).Uint64("dataset_id", id).Msg("failed to update dataset")

		return fiber.ErrInternalServerError
	}

	return c.JSON(ds)
}

// Delete removes a dataset.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := controller.Delete(s.db, id); err != nil {
		if errors.Is(err, controller.ErrDatasetNotFound) {
			return fiber.ErrNotFound
		}

		log.Error().Err(err).Uint64("dataset_id", id).Msg("failed to delete dataset")

		return fiber.ErrInternalServerError
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// SetGrant assigns or changes a user's dataset role.
func (s *Service) SetGrant(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	req := new(grantRequest)

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

	grant, err := controller.SetGrant(s.db, id, req.UserID, r.ID)
	if err != nil {
		log.Error().Err(err).Uint64("dataset_id", id).Uint64("user_id", req.UserID).
			Msg("failed to set dataset grant")

		return fiber.ErrInternalServerError
	}

	return c.JSON(fiber.Map{
		"user_id": grant.UserID,
		"role":    r.Name,
	})
}

// RemoveGrant drops a user's dataset role.
func (s *Service) RemoveGrant(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	userID, err := paramID(c, "userID")
	if err != nil {
		return err
	}

	if err := controller.RemoveGrant(s.db, id, userID); err != nil {
		if errors.Is(err, controller.ErrGrantNotFound) {
			return fiber.ErrNotFound
		}

		log.Error().Err(err).Uint64("dataset_id", id).Uint64("user_id", userID).
			Msg("failed to remove dataset grant")

		return fiber.ErrInternalServerError
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Service) listPublished(c *fiber.Ctx) error {
	datasets, err := controller.ListPublished(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to list published datasets")

		return fiber.ErrInternalServerError
	}

	return c.JSON(datasets)
}

// mergeDatasets deduplicates the caller's organization datasets and the
// published listing.
func mergeDatasets(own, published []models.Dataset) []models.Dataset {
	seen := make(map[uint64]struct{}, len(own))
	merged := make([]models.Dataset, 0, len(own)+len(published))

	for _, ds := range own {
		seen[ds.ID] = struct{}{}
		merged = append(merged, ds)
	}

	for _, ds := range published {
		if _, ok := seen[ds.ID]; ok {
			continue
		}

		merged = append(merged, ds)
	}

	return merged
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
