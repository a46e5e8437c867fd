package graphql

import (
	"context"
	"errors"
	"fmt"

	"github.com/graphql-go/graphql"
	"gorm.io/gorm"

	"github.com/dataspace-exchange/dataspace-backend/internal/auth"
	datasetctl "github.com/dataspace-exchange/dataspace-backend/internal/db/controller/dataset"
	organizationctl "github.com/dataspace-exchange/dataspace-backend/internal/db/controller/organization"
	rolectl "github.com/dataspace-exchange/dataspace-backend/internal/db/controller/role"
	"github.com/dataspace-exchange/dataspace-backend/internal/db/models"
)

var (
	// ErrNotAuthenticated is returned by resolvers that need a caller.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrPermissionDenied is returned when the caller's role does not allow
	// the requested operation.
	ErrPermissionDenied = errors.New("permission denied")
)

type ctxKey string

const (
	// UserKey is the context key holding the caller.
	UserKey ctxKey = "user"

	// RolesKey is the context key holding the caller's token roles.
	RolesKey ctxKey = "roles"
)

// callerFrom extracts the authenticated user from the resolver context.
func callerFrom(ctx context.Context) (models.User, error) {
	user, ok := ctx.Value(UserKey).(models.User)
	if !ok || user.ID == 0 {
		return models.User{}, ErrNotAuthenticated
	}

	return user, nil
}

func rolesFrom(ctx context.Context) []string {
	roles, _ := ctx.Value(RolesKey).([]string)

	return roles
}

// newSchema builds the root schema over the auth service and database.
func newSchema(db *gorm.DB, authService *auth.Service) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name:   "Query",
		Fields: queryFields(db, authService),
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name:   "Mutation",
		Fields: mutationFields(db, authService),
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
	})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("failed to build schema: %w", err)
	}

	return schema, nil
}

func queryFields(db *gorm.DB, authService *auth.Service) graphql.Fields {
	return graphql.Fields{
		"me": &graphql.Field{
			Type: userType,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				user, err := callerFrom(p.Context)
				if err != nil {
					return nil, err
				}

				return userMap(user, rolesFrom(p.Context)), nil
			},
		},
		"organizations": &graphql.Field{
			Type: graphql.NewList(organizationType),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				user, err := callerFrom(p.Context)
				if err != nil {
					return nil, err
				}

				grants, err := authService.ListUserOrganizations(user.ID)
				if err != nil {
					return nil, err
				}

				out := make([]map[string]interface{}, 0, len(grants))
				for _, g := range grants {
					out = append(out, map[string]interface{}{
						"id":   g.ID,
						"name": g.Name,
						"role": g.Role,
						"permissions": map[string]interface{}{
							"can_view":   g.Permissions.CanView,
							"can_add":    g.Permissions.CanAdd,
							"can_change": g.Permissions.CanChange,
							"can_delete": g.Permissions.CanDelete,
						},
					})
				}

				return out, nil
			},
		},
		"datasets": &graphql.Field{
			Type: graphql.NewList(datasetType),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return resolveDatasets(p.Context, db, authService)
			},
		},
		"dataset": &graphql.Field{
			Type: datasetType,
			Args: graphql.FieldConfigArgument{
				"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				id := uint64(p.Args["id"].(int))

				ds, err := datasetctl.Get(db, id)
				if err != nil {
					return nil, err
				}

				if ds.Published {
					return datasetMap(ds), nil
				}

				user, err := callerFrom(p.Context)
				if err != nil {
					return nil, err
				}

				allowed, err := authService.CheckDatasetPermission(user.ID, id, models.OperationView)
				if err != nil {
					return nil, err
				}

				if !allowed {
					return nil, ErrPermissionDenied
				}

				return datasetMap(ds), nil
			},
		},
	}
}

func mutationFields(db *gorm.DB, authService *auth.Service) graphql.Fields {
	return graphql.Fields{
		"createDataset": &graphql.Field{
			Type: datasetType,
			Args: graphql.FieldConfigArgument{
				"title":           &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"description":     &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				"organization_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				"published":       &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: false},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				user, err := callerFrom(p.Context)
				if err != nil {
					return nil, err
				}

				orgID := uint64(p.Args["organization_id"].(int))

				allowed, err := authService.CheckOrganizationPermission(user.ID, orgID, models.OperationAdd)
				if err != nil {
					return nil, err
				}

				if !allowed {
					return nil, ErrPermissionDenied
				}

				ds := models.Dataset{
					Title:          p.Args["title"].(string),
					Description:    p.Args["description"].(string),
					OrganizationID: orgID,
					Published:      p.Args["published"].(bool),
				}

				if err := datasetctl.Create(db, &ds); err != nil {
					return nil, err
				}

				return datasetMap(&ds), nil
			},
		},
		"updateDataset": &graphql.Field{
			Type: datasetType,
			Args: graphql.FieldConfigArgument{
				"id":          &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				"title":       &graphql.ArgumentConfig{Type: graphql.String},
				"description": &graphql.ArgumentConfig{Type: graphql.String},
				"published":   &graphql.ArgumentConfig{Type: graphql.Boolean},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				user, err := callerFrom(p.Context)
				if err != nil {
					return nil, err
				}

				id := uint64(p.Args["id"].(int))

				allowed, err := authService.CheckDatasetPermission(user.ID, id, models.OperationChange)
				if err != nil {
					return nil, err
				}

				if !allowed {
					return nil, ErrPermissionDenied
				}

				ds, err := datasetctl.Get(db, id)
				if err != nil {
					return nil, err
				}

				if title, ok := p.Args["title"].(string); ok {
					ds.Title = title
				}

				if description, ok := p.Args["description"].(string); ok {
					ds.Description = description
				}

				if published, ok := p.Args["published"].(bool); ok {
					ds.Published = published
				}

				if err := datasetctl.Update(db, ds); err != nil {
					return nil, err
				}

				return datasetMap(ds), nil
			},
		},
		"deleteDataset": &graphql.Field{
			Type: graphql.Boolean,
			Args: graphql.FieldConfigArgument{
				"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				user, err := callerFrom(p.Context)
				if err != nil {
					return nil, err
				}

				id := uint64(p.Args["id"].(int))

				allowed, err := authService.CheckDatasetPermission(user.ID, id, models.OperationDelete)
				if err != nil {
					return nil, err
				}

				if !allowed {
					return nil, ErrPermissionDenied
				}

				if err := datasetctl.Delete(db, id); err != nil {
					return nil, err
				}

				return true, nil
			},
		},
		"setMembership": &graphql.Field{
			Type: membershipType,
			Args: graphql.FieldConfigArgument{
				"organization_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				"user_id":         &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				"role":            &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				caller, err := callerFrom(p.Context)
				if err != nil {
					return nil, err
				}

				orgID := uint64(p.Args["organization_id"].(int))

				allowed, err := authService.CheckOrganizationPermission(caller.ID, orgID, models.OperationChange)
				if err != nil {
					return nil, err
				}

				if !allowed {
					return nil, ErrPermissionDenied
				}

				r, err := rolectl.Get(db, p.Args["role"].(string))
				if err != nil {
					return nil, err
				}

				membership, err := organizationctl.SetMembership(
					db, orgID, uint64(p.Args["user_id"].(int)), r.ID)
				if err != nil {
					return nil, err
				}

				return map[string]interface{}{
					"user_id":         membership.UserID,
					"organization_id": membership.OrganizationID,
					"role":            r.Name,
				}, nil
			},
		},
	}
}

// resolveDatasets mirrors the REST listing visibility rules.
func resolveDatasets(ctx context.Context, db *gorm.DB, authService *auth.Service) (interface{}, error) {
	user, err := callerFrom(ctx)
	if err != nil {
		published, err := datasetctl.ListPublished(db)
		if err != nil {
			return nil, err
		}

		return datasetMaps(published), nil
	}

	if user.IsSuperuser {
		all, err := datasetctl.ListAll(db)
		if err != nil {
			return nil, err
		}

		return datasetMaps(all), nil
	}

	orgIDs, err := authService.OrganizationIDs(user.ID)
	if err != nil {
		return nil, err
	}

	own, err := datasetctl.ListForOrganizations(db, orgIDs)
	if err != nil {
		return nil, err
	}

	published, err := datasetctl.ListPublished(db)
	if err != nil {
		return nil, err
	}

	seen := make(map[uint64]struct{}, len(own))
	merged := make([]map[string]interface{}, 0, len(own)+len(published))

	for i := range own {
		seen[own[i].ID] = struct{}{}
		merged = append(merged, datasetMap(&own[i]))
	}

	for i := range published {
		if _, ok := seen[published[i].ID]; ok {
			continue
		}

		merged = append(merged, datasetMap(&published[i]))
	}

	return merged, nil
}

func userMap(user models.User, roles []string) map[string]interface{} {
	if roles == nil {
		roles = []string{}
	}

	return map[string]interface{}{
		"id":           user.ID,
		"username":     user.Username,
		"email":        user.Email,
		"first_name":   user.FirstName,
		"last_name":    user.LastName,
		"is_superuser": user.IsSuperuser,
		"roles":        roles,
	}
}

func datasetMap(ds *models.Dataset) map[string]interface{} {
	return map[string]interface{}{
		"id":              ds.ID,
		"title":           ds.Title,
		"description":     ds.Description,
		"organization_id": ds.OrganizationID,
		"published":       ds.Published,
	}
}

func datasetMaps(datasets []models.Dataset) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(datasets))

	for i := range datasets {
		out = append(out, datasetMap(&datasets[i]))
	}

	return out
}
