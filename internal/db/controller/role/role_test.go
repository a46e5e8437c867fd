package role

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dataspace-exchange/dataspace-backend/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(&models.Role{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func TestSeed(t *testing.T) {
	db := setupTestDB(t)

	results, err := Seed(db)
	require.NoError(t, err)
	require.Len(t, results, 4)

	for _, r := range results {
		assert.True(t, r.Created, "first run should create role %s", r.Name)
	}

	testCases := []struct {
		name      string
		canView   bool
		canAdd    bool
		canChange bool
		canDelete bool
	}{
		{name: "admin", canView: true, canAdd: true, canChange: true, canDelete: true},
		{name: "editor", canView: true, canAdd: true, canChange: true, canDelete: false},
		{name: "viewer", canView: true, canAdd: false, canChange: false, canDelete: false},
		{name: "owner", canView: true, canAdd: true, canChange: true, canDelete: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			role, err := Get(db, tc.name)
			require.NoError(t, err)

			assert.Equal(t, tc.canView, role.CanView)
			assert.Equal(t, tc.canAdd, role.CanAdd)
			assert.Equal(t, tc.canChange, role.CanChange)
			assert.Equal(t, tc.canDelete, role.CanDelete)
			assert.True(t, role.IsSystem)
		})
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	db := setupTestDB(t)

	_, err := Seed(db)
	require.NoError(t, err)

	// tamper with a seeded role, then reseed
	err = db.Model(&models.Role{}).Where("name = ?", "viewer").
		Update("can_delete", true).Error
	require.NoError(t, err)

	results, err := Seed(db)
	require.NoError(t, err)

	for _, r := range results {
		assert.False(t, r.Created, "second run should update role %s", r.Name)
	}

	var count int64
	require.NoError(t, db.Model(&models.Role{}).Count(&count).Error)
	assert.EqualValues(t, 4, count, "reseeding must not duplicate roles")

	viewer, err := Get(db, "viewer")
	require.NoError(t, err)
	assert.False(t, viewer.CanDelete, "reseeding must restore the fixed flags")
}

func TestGet(t *testing.T) {
	db := setupTestDB(t)

	_, err := Seed(db)
	require.NoError(t, err)

	testCases := []struct {
		name          string
		dbParam       *gorm.DB
		roleName      string
		expectedError error
	}{
		{
			name:          "nil database",
			dbParam:       nil,
			roleName:      "admin",
			expectedError: ErrDBNil,
		},
		{
			name:          "empty name",
			dbParam:       db,
			roleName:      "",
			expectedError: ErrRoleNameEmpty,
		},
		{
			name:          "role not found",
			dbParam:       db,
			roleName:      "nonexistent",
			expectedError: ErrRoleNotFound,
		},
		{
			name:     "successful get",
			dbParam:  db,
			roleName: "admin",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			role, err := Get(tc.dbParam, tc.roleName)

			if tc.expectedError != nil {
				assert.ErrorIs(t, err, tc.expectedError)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.roleName, role.Name)
		})
	}
}

func TestGetAll(t *testing.T) {
	db := setupTestDB(t)

	_, err := Seed(db)
	require.NoError(t, err)

	roles, err := GetAll(db)
	require.NoError(t, err)
	require.Len(t, roles, 4)

	// ordered by name
	assert.Equal(t, "admin", roles[0].Name)
	assert.Equal(t, "viewer", roles[3].Name)
}
