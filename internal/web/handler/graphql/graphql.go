package graphql

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
	"gorm.io/gorm"

	"github.com/dataspace-exchange/dataspace-backend/internal/auth"
	"github.com/dataspace-exchange/dataspace-backend/internal/config"
	"github.com/dataspace-exchange/dataspace-backend/internal/db/models"
	"github.com/dataspace-exchange/dataspace-backend/internal/web/handler"
	authmiddleware "github.com/dataspace-exchange/dataspace-backend/internal/web/middleware/auth"
)

const (
	// Path is the path of the GraphQL endpoint.
	Path = "/graphql"
)

// Service is the GraphQL handler service.
type Service struct {
	cfg    *config.Config
	schema graphql.Schema
}

// Handler is the GraphQL handler.
var Handler = Service{}

var _ handler.Service = (*Service)(nil)

// Init initializes the GraphQL handler and builds the schema.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	if app == nil || cfg == nil || db == nil || authService == nil {
		return errors.New("app, cfg, db or auth service is nil")
	}

	schema, err := newSchema(db, authService)
	if err != nil {
		return err
	}

	s.cfg = cfg
	s.schema = schema

	app.Post(Path, s.Post)

	return nil
}

// Post executes a GraphQL request. The caller's identity, when present, is
// carried into the resolvers through the request context.
func (s *Service) Post(c *fiber.Ctx) error {
	var params struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	if err := c.BodyParser(&params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": []fiber.Map{{"message": "invalid request body"}},
		})
	}

	ctx := context.Background()

	if user, ok := authmiddleware.CurrentUser(c); ok {
		ctx = context.WithValue(ctx, UserKey, user)
		ctx = context.WithValue(ctx, RolesKey, authmiddleware.Roles(c))
	} else {
		ctx = context.WithValue(ctx, UserKey, models.User{})
	}

	result := graphql.Do(graphql.Params{
		Schema:         s.schema,
		RequestString:  params.Query,
		VariableValues: params.Variables,
		OperationName:  params.OperationName,
		Context:        ctx,
	})

	return c.JSON(result)
}
