// Package graphql serves the GraphQL surface of the exchange API.
//
// This file defines the GraphQL object types mounted in the schema.
package graphql

import (
	"github.com/graphql-go/graphql"
)

// userType represents the authenticated caller.
var userType = graphql.NewObject(graphql.ObjectConfig{
	Name: "User",
	Fields: graphql.Fields{
		"id":           &graphql.Field{Type: graphql.Int},
		"username":     &graphql.Field{Type: graphql.String},
		"email":        &graphql.Field{Type: graphql.String},
		"first_name":   &graphql.Field{Type: graphql.String},
		"last_name":    &graphql.Field{Type: graphql.String},
		"is_superuser": &graphql.Field{Type: graphql.Boolean},
		"roles":        &graphql.Field{Type: graphql.NewList(graphql.String)},
	},
})

// permissionsType represents a role's operation flags.
var permissionsType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Permissions",
	Fields: graphql.Fields{
		"can_view":   &graphql.Field{Type: graphql.Boolean},
		"can_add":    &graphql.Field{Type: graphql.Boolean},
		"can_change": &graphql.Field{Type: graphql.Boolean},
		"can_delete": &graphql.Field{Type: graphql.Boolean},
	},
})

// organizationType represents an organization the caller belongs to.
var organizationType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Organization",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.Int},
		"name":        &graphql.Field{Type: graphql.String},
		"role":        &graphql.Field{Type: graphql.String},
		"permissions": &graphql.Field{Type: permissionsType},
	},
})

// datasetType represents a dataset listing row.
var datasetType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Dataset",
	Fields: graphql.Fields{
		"id":              &graphql.Field{Type: graphql.Int},
		"title":           &graphql.Field{Type: graphql.String},
		"description":     &graphql.Field{Type: graphql.String},
		"organization_id": &graphql.Field{Type: graphql.Int},
		"published":       &graphql.Field{Type: graphql.Boolean},
	},
})

// membershipType represents an organization membership row.
var membershipType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Membership",
	Fields: graphql.Fields{
		"user_id":         &graphql.Field{Type: graphql.Int},
		"organization_id": &graphql.Field{Type: graphql.Int},
		"role":            &graphql.Field{Type: graphql.String},
	},
})
