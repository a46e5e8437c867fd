package auth

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dataspace-exchange/dataspace-backend/internal/db/controller/role"
	"github.com/dataspace-exchange/dataspace-backend/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database with all models migrated
// and the default roles seeded.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Organization{},
		&models.OrganizationMembership{},
		&models.Dataset{},
		&models.DatasetPermission{},
	)
	require.NoError(t, err, "failed to migrate test database")

	_, err = role.Seed(db)
	require.NoError(t, err, "failed to seed roles")

	return db
}

type fixture struct {
	db      *gorm.DB
	svc     *Service
	org     models.Organization
	dataset models.Dataset
	editor  models.User
	viewer  models.User
	super   models.User
	outside models.User
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()

	db := setupTestDB(t)

	f := &fixture{db: db, svc: NewService(db)}

	f.org = models.Organization{Name: "acme", Slug: "acme"}
	require.NoError(t, db.Create(&f.org).Error)

	f.dataset = models.Dataset{Title: "weather", OrganizationID: f.org.ID}
	require.NoError(t, db.Create(&f.dataset).Error)

	f.editor = models.User{Active: true, Username: "editor", KeycloakID: "kc-editor"}
	f.viewer = models.User{Active: true, Username: "viewer", KeycloakID: "kc-viewer"}
	f.super = models.User{Active: true, Username: "root", KeycloakID: "kc-root", IsSuperuser: true}
	f.outside = models.User{Active: true, Username: "outsider", KeycloakID: "kc-out"}

	for _, u := range []*models.User{&f.editor, &f.viewer, &f.super, &f.outside} {
		require.NoError(t, db.Create(u).Error)
	}

	editorRole, err := role.Get(db, models.RoleEditor)
	require.NoError(t, err)

	viewerRole, err := role.Get(db, models.RoleViewer)
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.OrganizationMembership{
		UserID: f.editor.ID, OrganizationID: f.org.ID, RoleID: editorRole.ID,
	}).Error)
	require.NoError(t, db.Create(&models.OrganizationMembership{
		UserID: f.viewer.ID, OrganizationID: f.org.ID, RoleID: viewerRole.ID,
	}).Error)

	return f
}

func TestCheckOrganizationPermission(t *testing.T) {
	f := setupFixture(t)

	testCases := []struct {
		name string
		user uint64
		op   models.Operation
		want bool
	}{
		{name: "editor can view", user: f.editor.ID, op: models.OperationView, want: true},
		{name: "editor can add", user: f.editor.ID, op: models.OperationAdd, want: true},
		{name: "editor can change", user: f.editor.ID, op: models.OperationChange, want: true},
		{name: "editor cannot delete", user: f.editor.ID, op: models.OperationDelete, want: false},
		{name: "viewer can view", user: f.viewer.ID, op: models.OperationView, want: true},
		{name: "viewer cannot add", user: f.viewer.ID, op: models.OperationAdd, want: false},
		{name: "superuser bypasses everything", user: f.super.ID, op: models.OperationDelete, want: true},
		{name: "non member denied", user: f.outside.ID, op: models.OperationView, want: false},
		{name: "unknown user denied", user: 99999, op: models.OperationView, want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := f.svc.CheckOrganizationPermission(tc.user, f.org.ID, tc.op)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCheckDatasetPermission(t *testing.T) {
	f := setupFixture(t)

	// organization role applies to the org's datasets
	allowed, err := f.svc.CheckDatasetPermission(f.viewer.ID, f.dataset.ID, models.OperationView)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = f.svc.CheckDatasetPermission(f.viewer.ID, f.dataset.ID, models.OperationChange)
	require.NoError(t, err)
	assert.False(t, allowed)

	// a dataset grant can allow what the org role does not
	editorRole, err := f.roleByName(models.RoleEditor)
	require.NoError(t, err)

	require.NoError(t, f.db.Create(&models.DatasetPermission{
		UserID: f.viewer.ID, DatasetID: f.dataset.ID, RoleID: editorRole.ID,
	}).Error)

	allowed, err = f.svc.CheckDatasetPermission(f.viewer.ID, f.dataset.ID, models.OperationChange)
	require.NoError(t, err)
	assert.True(t, allowed)

	// an outsider with a grant passes without membership
	require.NoError(t, f.db.Create(&models.DatasetPermission{
		UserID: f.outside.ID, DatasetID: f.dataset.ID, RoleID: editorRole.ID,
	}).Error)

	allowed, err = f.svc.CheckDatasetPermission(f.outside.ID, f.dataset.ID, models.OperationView)
	require.NoError(t, err)
	assert.True(t, allowed)

	// unknown dataset denied without error
	allowed, err = f.svc.CheckDatasetPermission(f.editor.ID, 99999, models.OperationView)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func (f *fixture) roleByName(name string) (*models.Role, error) {
	var r models.Role

	err := f.db.Where("name = ?", name).First(&r).Error

	return &r, err
}

func TestListUserOrganizations(t *testing.T) {
	f := setupFixture(t)

	grants, err := f.svc.ListUserOrganizations(f.editor.ID)
	require.NoError(t, err)
	require.Len(t, grants, 1)

	assert.Equal(t, "acme", grants[0].Name)
	assert.Equal(t, "editor", grants[0].Role)
	assert.True(t, grants[0].Permissions.CanChange)
	assert.False(t, grants[0].Permissions.CanDelete)

	grants, err = f.svc.ListUserOrganizations(f.outside.ID)
	require.NoError(t, err)
	assert.Empty(t, grants)
}

func TestListUserDatasets(t *testing.T) {
	f := setupFixture(t)

	ownerRole, err := f.roleByName(models.RoleOwner)
	require.NoError(t, err)

	require.NoError(t, f.db.Create(&models.DatasetPermission{
		UserID: f.viewer.ID, DatasetID: f.dataset.ID, RoleID: ownerRole.ID,
	}).Error)

	grants, err := f.svc.ListUserDatasets(f.viewer.ID)
	require.NoError(t, err)
	require.Len(t, grants, 1)

	assert.Equal(t, "weather", grants[0].Title)
	assert.Equal(t, "owner", grants[0].Role)
	assert.True(t, grants[0].Permissions.CanDelete)
}

func TestIsOrganizationMember(t *testing.T) {
	f := setupFixture(t)

	member, err := f.svc.IsOrganizationMember(f.editor.ID, f.org.ID)
	require.NoError(t, err)
	assert.True(t, member)

	member, err = f.svc.IsOrganizationMember(f.outside.ID, f.org.ID)
	require.NoError(t, err)
	assert.False(t, member)

	member, err = f.svc.IsOrganizationMember(f.super.ID, f.org.ID)
	require.NoError(t, err)
	assert.True(t, member, "superusers count as members everywhere")
}

func TestOperationFromMethod(t *testing.T) {
	testCases := []struct {
		method string
		want   models.Operation
	}{
		{method: "GET", want: models.OperationView},
		{method: "HEAD", want: models.OperationView},
		{method: "POST", want: models.OperationAdd},
		{method: "PUT", want: models.OperationChange},
		{method: "PATCH", want: models.OperationChange},
		{method: "DELETE", want: models.OperationDelete},
		{method: "OPTIONS", want: models.Operation("")},
	}

	for _, tc := range testCases {
		t.Run(tc.method, func(t *testing.T) {
			assert.Equal(t, tc.want, models.OperationFromMethod(tc.method))
		})
	}
}
