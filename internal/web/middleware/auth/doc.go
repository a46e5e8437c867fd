// Package auth provides the bearer token middleware for the web application.
//
// The middleware resolves Keycloak bearer tokens into local user accounts
// and attaches them to the request context. It never rejects a request on
// its own: a missing or invalid token degrades the request to anonymous,
// and the route guards decide what anonymous requests may do.
//
// The middleware performs the following tasks:
//   - Extracts the token from the Authorization header or x-keycloak-token
//   - Skips OPTIONS requests so CORS preflights pass untouched
//   - Serves repeated tokens from the validation cache
//   - Validates fresh tokens against Keycloak and syncs the user record
//   - Adds the current user and roles to fiber.Locals for handler access
//
// Usage:
//
//	app.Use(authmiddleware.New(kc, authService, cfg))
//
// Route guards build on the middleware's locals:
//
//	router.Get("/", authmiddleware.RequireAuthenticated, handlerFunc)
//	router.Put("/:id", authmiddleware.RequireDatasetPermission(authService, "id"), handlerFunc)
package auth
