// Package auth provides the authorization core of the DataSpace backend.
//
// # Authorization model
//
// Authorization is database-backed RBAC scoped to organizations and datasets:
//   - Users belong to organizations through memberships, each carrying a role
//   - Roles carry fixed operation flags (view, add, change, delete)
//   - Datasets belong to organizations; the organization role applies
//   - DatasetPermission rows grant per-dataset roles beyond the organization
//   - Superusers bypass every role check
//
// HTTP methods map onto operations: GET is view, POST is add, PUT/PATCH is
// change, DELETE is delete.
//
// # User synchronization
//
// Accounts mirror Keycloak identities. SyncUser finds the local account by
// Keycloak subject, then email, then username, updating profile fields; a
// missing account is created. New users receive default viewer memberships
// for organizations asserted in their token. Memberships are never removed
// during sync; role management stays in the database.
//
// Example usage:
//
//	authService := auth.NewService(db)
//
//	allowed, err := authService.CheckOrganizationPermission(userID, orgID, models.OperationChange)
//
//	user, err := authService.SyncUser(info, orgs)
package auth
