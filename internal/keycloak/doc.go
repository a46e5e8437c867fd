// Package keycloak implements the Keycloak realm client used for request
// authentication.
//
// Keycloak is consumed strictly as an OIDC provider: the realm's discovery
// document supplies the JWKS for local token verification, the token endpoint
// for the password grant used by the login handler, and the introspection
// endpoint used as a fallback when local verification fails (e.g. opaque
// tokens).
//
// Validation ladder for an incoming bearer token:
//  1. Verify the token signature and expiry locally against the realm JWKS.
//  2. On failure, introspect the token with the confidential client
//     credentials; an inactive result means the token is invalid.
//
// Role and organization information is extracted from the verified claims:
// realm_access.roles merged with resource_access.<client-id>.roles, and
// organization memberships from client roles shaped "org_<id>_<role>" or the
// "organizations" attribute entries shaped "<org>:<role>".
//
// In dev mode validation short-circuits to a fixed admin identity and no
// network traffic to the realm happens at all.
package keycloak
