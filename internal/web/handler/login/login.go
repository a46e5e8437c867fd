package login

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/dataspace-exchange/dataspace-backend/internal/auth"
	"github.com/dataspace-exchange/dataspace-backend/internal/config"
	"github.com/dataspace-exchange/dataspace-backend/internal/db/models"
	"github.com/dataspace-exchange/dataspace-backend/internal/keycloak"
)

const (
	// Path is the base path of the token endpoints.
	Path = "/auth"
)

// Service is the login handler service.
type Service struct {
	cfg         *config.Config
	kc          *keycloak.Client
	authService *auth.Service
	validator   *validator.Validate
}

// Handler is the login handler.
var Handler = Service{}

// loginRequest is the password grant request body.
type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// refreshRequest is the token refresh request body.
type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// exchangeRequest carries a Keycloak-issued token to exchange for the
// local user account.
type exchangeRequest struct {
	Token string `json:"token" validate:"required"`
}

// userResponse is the synced account with its roles and grants.
type userResponse struct {
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

// tokenResponse is the issued token set plus the synced user.
type tokenResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token,omitempty"`
	TokenType    string        `json:"token_type"`
	ExpiresIn    int64         `json:"expires_in,omitempty"`
	User         *userResponse `json:"user,omitempty"`
}

// Init initializes the login handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, kc *keycloak.Client, authService *auth.Service) error {
	if app == nil || cfg == nil || kc == nil || authService == nil {
		return errors.New("app, cfg, keycloak client or auth service is nil")
	}

	s.cfg = cfg
	s.kc = kc
	s.authService = authService
	s.validator = validator.New()

	app.Route(Path, func(router fiber.Router) {
		router.Post("/login", s.PostLogin)
		router.Post("/token", s.PostToken)
		router.Post("/refresh", s.PostRefresh)
	})

	return nil
}

// PostLogin exchanges username and password for a Keycloak token set via the
// resource-owner password grant. The access token is validated and the
// account synced, so the response also carries the user with its grants.
func (s *Service) PostLogin(c *fiber.Ctx) error {
	req := new(loginRequest)

	if err := c.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, ErrInvalidRequestBody.Error())
	}

	if err := s.validator.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, ErrInvalidRequestBody.Error())
	}

	token, err := s.kc.Token(c.Context(), req.Username, req.Password)
	if err != nil {
		log.Debug().Err(err).Str("username", req.Username).Msg("password grant rejected")

		return fiber.NewError(fiber.StatusUnauthorized, ErrInvalidCredentials.Error())
	}

	user, err := s.syncIdentity(c, token.AccessToken)
	if err != nil {
		return err
	}

	resp := newTokenResponse(token.AccessToken, token.RefreshToken, token.Expiry)
	resp.User = user

	return c.JSON(resp)
}

// PostToken accepts a token obtained directly from Keycloak, validates it,
// syncs the account and returns the user with its grants.
func (s *Service) PostToken(c *fiber.Ctx) error {
	req := new(exchangeRequest)

	if err := c.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, ErrInvalidRequestBody.Error())
	}

	if err := s.validator.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, ErrMissingToken.Error())
	}

	user, err := s.syncIdentity(c, req.Token)
	if err != nil {
		return err
	}

	return c.JSON(user)
}

// PostRefresh exchanges a refresh token for a fresh token set.
func (s *Service) PostRefresh(c *fiber.Ctx) error {
	req := new(refreshRequest)

	if err := c.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, ErrInvalidRequestBody.Error())
	}

	if err := s.validator.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, ErrMissingRefreshToken.Error())
	}

	token, err := s.kc.RefreshToken(c.Context(), req.RefreshToken)
	if err != nil {
		log.Debug().Err(err).Msg("token refresh rejected")

		return fiber.NewError(fiber.StatusUnauthorized, ErrInvalidCredentials.Error())
	}

	return c.JSON(newTokenResponse(token.AccessToken, token.RefreshToken, token.Expiry))
}

// syncIdentity validates a raw token, mirrors the identity into the local
// database and assembles the user payload.
func (s *Service) syncIdentity(c *fiber.Ctx, raw string) (*userResponse, error) {
	info, roles, orgs, err := s.kc.ValidateToken(c.Context(), raw)
	if err != nil {
		log.Debug().Err(err).Msg("token validation rejected")

		return nil, fiber.NewError(fiber.StatusUnauthorized, ErrInvalidToken.Error())
	}

	user, err := s.authService.SyncUser(info, orgs)
	if err != nil {
		log.Error().Err(err).Str("keycloak_id", info.Subject).Msg("failed to sync user")

		return nil, fiber.ErrInternalServerError
	}

	return s.newUserResponse(user, roles)
}

func (s *Service) newUserResponse(user *models.User, roles []string) (*userResponse, error) {
	orgs, err := s.authService.ListUserOrganizations(user.ID)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", user.ID).Msg("failed to list organizations")

		return nil, fiber.ErrInternalServerError
	}

	datasets, err := s.authService.ListUserDatasets(user.ID)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", user.ID).Msg("failed to list dataset grants")

		return nil, fiber.ErrInternalServerError
	}

	if roles == nil {
		roles = []string{}
	}

	return &userResponse{
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
	}, nil
}

func newTokenResponse(access, refresh string, expiry time.Time) tokenResponse {
	resp := tokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
	}

	if !expiry.IsZero() {
		resp.ExpiresIn = int64(time.Until(expiry).Seconds())
	}

	return resp
}
