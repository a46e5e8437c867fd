// Package main provides the entry point for the DataSpace backend service.
// It initializes and runs a web server using the Fiber framework that exposes
// the data exchange REST and GraphQL APIs. Authentication is delegated to a
// Keycloak realm; authorization uses database-backed roles scoped to
// organizations and datasets. The application uses gorm for data persistence.
package main
