package auth

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataspace-exchange/dataspace-backend/internal/db/models"
	"github.com/dataspace-exchange/dataspace-backend/internal/keycloak"
)

func TestSyncUserCreates(t *testing.T) {
	f := setupFixture(t)

	info := &keycloak.UserInfo{
		Subject:           "kc-new",
		Email:             "new@example.com",
		PreferredUsername: "newuser",
		GivenName:         "New",
		FamilyName:        "User",
	}

	user, err := f.svc.SyncUser(info, nil)
	require.NoError(t, err)

	assert.Equal(t, "newuser", user.Username)
	assert.Equal(t, "kc-new", user.KeycloakID)
	assert.Equal(t, "New", user.FirstName)
	assert.True(t, user.Active)
	assert.False(t, user.IsSuperuser)
	assert.NotZero(t, user.ID)
}

func TestSyncUserLookupOrder(t *testing.T) {
	f := setupFixture(t)

	// match by keycloak subject updates the profile in place
	user, err := f.svc.SyncUser(&keycloak.UserInfo{
		Subject:           "kc-editor",
		Email:             "editor@example.com",
		PreferredUsername: "editor-renamed",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, f.editor.ID, user.ID)
	assert.Equal(t, "editor-renamed", user.Username)
	assert.Equal(t, "editor@example.com", user.Email)

	// match by email adopts the keycloak subject
	existing := models.User{Active: true, Username: "legacy", Email: "legacy@example.com"}
	require.NoError(t, f.db.Create(&existing).Error)

	user, err = f.svc.SyncUser(&keycloak.UserInfo{
		Subject:           "kc-legacy",
		Email:             "legacy@example.com",
		PreferredUsername: "legacy",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, user.ID)
	assert.Equal(t, "kc-legacy", user.KeycloakID)

	// match by username when subject and email miss
	user, err = f.svc.SyncUser(&keycloak.UserInfo{
		Subject:           "kc-other",
		PreferredUsername: "outsider",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, f.outside.ID, user.ID)
	assert.Equal(t, "kc-other", user.KeycloakID)
}

func TestSyncUserReactivates(t *testing.T) {
	f := setupFixture(t)

	require.NoError(t, f.db.Model(&models.User{}).
		Where("id = ?", f.viewer.ID).Update("active", false).Error)

	user, err := f.svc.SyncUser(&keycloak.UserInfo{
		Subject:           "kc-viewer",
		PreferredUsername: "viewer",
	}, nil)
	require.NoError(t, err)
	assert.True(t, user.Active)
}

func TestSyncUserSeedsMemberships(t *testing.T) {
	f := setupFixture(t)

	orgs := []keycloak.OrganizationClaim{
		{OrganizationID: formatID(f.org.ID), Role: "editor"},
		{OrganizationID: "99999", Role: "viewer"},
		{OrganizationID: "not-a-number", Role: "viewer"},
	}

	user, err := f.svc.SyncUser(&keycloak.UserInfo{
		Subject:           "kc-claimed",
		PreferredUsername: "claimed",
	}, orgs)
	require.NoError(t, err)

	var memberships []models.OrganizationMembership

	require.NoError(t, f.db.Preload("Role").
		Where("user_id = ?", user.ID).Find(&memberships).Error)
	require.Len(t, memberships, 1, "unknown and malformed organizations are skipped")

	assert.Equal(t, f.org.ID, memberships[0].OrganizationID)
	assert.Equal(t, models.RoleViewer, memberships[0].Role.Name,
		"seeded memberships always use the viewer role")
}

func TestSyncUserDoesNotReseedExisting(t *testing.T) {
	f := setupFixture(t)

	orgs := []keycloak.OrganizationClaim{{OrganizationID: formatID(f.org.ID), Role: "viewer"}}

	// the editor already holds the editor role; a repeated sync with
	// organization claims must not touch it
	user, err := f.svc.SyncUser(&keycloak.UserInfo{
		Subject:           "kc-editor",
		PreferredUsername: "editor",
	}, orgs)
	require.NoError(t, err)
	assert.Equal(t, f.editor.ID, user.ID)

	var membership models.OrganizationMembership

	require.NoError(t, f.db.Preload("Role").
		Where("user_id = ? AND organization_id = ?", user.ID, f.org.ID).
		First(&membership).Error)
	assert.Equal(t, models.RoleEditor, membership.Role.Name)
}

func TestSyncUserRejectsIncompleteInfo(t *testing.T) {
	f := setupFixture(t)

	testCases := []struct {
		name string
		info *keycloak.UserInfo
	}{
		{name: "nil info", info: nil},
		{name: "missing subject", info: &keycloak.UserInfo{PreferredUsername: "x"}},
		{name: "no username or email", info: &keycloak.UserInfo{Subject: "kc-x"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.SyncUser(tc.info, nil)
			assert.ErrorIs(t, err, ErrMissingUserInfo)
		})
	}
}

func formatID(id uint64) string {
	return strconv.FormatUint(id, 10)
}
