package keycloak

import (
	"strings"
)

// UserInfo is the identity extracted from a validated token.
type UserInfo struct {
	Subject           string
	Email             string
	PreferredUsername string
	GivenName         string
	FamilyName        string
}

// OrganizationClaim is an organization membership asserted by the token.
type OrganizationClaim struct {
	OrganizationID string
	Role           string
}

// Username returns the preferred username, falling back to the email address.
func (u UserInfo) Username() string {
	if u.PreferredUsername != "" {
		return u.PreferredUsername
	}

	return u.Email
}

// userInfoFromClaims maps raw token claims to a UserInfo.
func userInfoFromClaims(claims map[string]interface{}) UserInfo {
	return UserInfo{
		Subject:           stringClaim(claims, "sub"),
		Email:             stringClaim(claims, "email"),
		PreferredUsername: stringClaim(claims, "preferred_username"),
		GivenName:         stringClaim(claims, "given_name"),
		FamilyName:        stringClaim(claims, "family_name"),
	}
}

// RolesFromClaims merges realm roles (realm_access.roles) with the client
// roles of the given client (resource_access.<clientID>.roles), deduplicated.
func RolesFromClaims(claims map[string]interface{}, clientID string) []string {
	seen := make(map[string]bool)

	var roles []string

	for _, role := range accessRoles(claims, "realm_access") {
		if !seen[role] {
			seen[role] = true

			roles = append(roles, role)
		}
	}

	for _, role := range clientRoles(claims, clientID) {
		if !seen[role] {
			seen[role] = true

			roles = append(roles, role)
		}
	}

	return roles
}

// OrganizationsFromClaims extracts organization memberships from the token.
// Client roles shaped "org_<id>_<role>" are checked first; if none are found
// the "organizations" attribute is consulted, where each entry is "<org>:<role>"
// or a bare organization id defaulting to the viewer role.
func OrganizationsFromClaims(claims map[string]interface{}, clientID string) []OrganizationClaim {
	var orgs []OrganizationClaim

	for _, role := range clientRoles(claims, clientID) {
		if !strings.HasPrefix(role, "org_") {
			continue
		}

		parts := strings.SplitN(role, "_", 3)
		if len(parts) < 3 || parts[1] == "" {
			continue
		}

		orgs = append(orgs, OrganizationClaim{
			OrganizationID: parts[1],
			Role:           parts[2],
		})
	}

	if len(orgs) > 0 {
		return orgs
	}

	for _, attr := range stringSliceClaim(claims, "organizations") {
		if attr == "" {
			continue
		}

		if id, role, found := strings.Cut(attr, ":"); found {
			orgs = append(orgs, OrganizationClaim{OrganizationID: id, Role: role})
		} else {
			orgs = append(orgs, OrganizationClaim{OrganizationID: attr, Role: "viewer"})
		}
	}

	return orgs
}

// accessRoles reads the roles list from a realm_access style claim object.
func accessRoles(claims map[string]interface{}, key string) []string {
	access, ok := claims[key].(map[string]interface{})
	if !ok {
		return nil
	}

	return toStringSlice(access["roles"])
}

// clientRoles reads resource_access.<clientID>.roles.
func clientRoles(claims map[string]interface{}, clientID string) []string {
	resourceAccess, ok := claims["resource_access"].(map[string]interface{})
	if !ok {
		return nil
	}

	client, ok := resourceAccess[clientID].(map[string]interface{})
	if !ok {
		return nil
	}

	return toStringSlice(client["roles"])
}

func stringClaim(claims map[string]interface{}, key string) string {
	s, _ := claims[key].(string)
	return s
}

// stringSliceClaim reads a claim that may be a single string or a list.
func stringSliceClaim(claims map[string]interface{}, key string) []string {
	if s, ok := claims[key].(string); ok {
		return []string{s}
	}

	return toStringSlice(claims[key])
}

func toStringSlice(v interface{}) []string {
	switch vv := v.(type) {
	case []string:
		return vv
	case []interface{}:
		out := make([]string, 0, len(vv))

		for _, item := range vv {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}

		return out
	default:
		return nil
	}
}
