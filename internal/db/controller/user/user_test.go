package user

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dataspace-exchange/dataspace-backend/internal/db/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(&models.User{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func seedUser(t *testing.T, db *gorm.DB) models.User {
	t.Helper()

	u := models.User{
		Active:     true,
		Username:   "jane",
		Email:      "jane@example.org",
		KeycloakID: "kc-jane",
	}
	require.NoError(t, db.Create(&u).Error)

	return u
}

func TestFind(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db)

	testCases := []struct {
		name          string
		dbParam       *gorm.DB
		identifier    string
		expectedError error
	}{
		{name: "nil database", dbParam: nil, identifier: "jane", expectedError: ErrDBNil},
		{name: "empty identifier", dbParam: db, identifier: "", expectedError: ErrIdentifierEmpty},
		{name: "not found", dbParam: db, identifier: "nobody", expectedError: ErrUserNotFound},
		{name: "by username", dbParam: db, identifier: "jane"},
		{name: "by email", dbParam: db, identifier: "jane@example.org"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			u, err := Find(tc.dbParam, tc.identifier)

			if tc.expectedError != nil {
				assert.ErrorIs(t, err, tc.expectedError)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "jane", u.Username)
		})
	}
}

func TestGetByKeycloakID(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db)

	u, err := GetByKeycloakID(db, "kc-jane")
	require.NoError(t, err)
	assert.Equal(t, "jane", u.Username)

	_, err = GetByKeycloakID(db, "kc-unknown")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = GetByKeycloakID(db, "")
	assert.ErrorIs(t, err, ErrIdentifierEmpty)
}

func TestPromote(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db)

	u, err := Promote(db, "jane@example.org")
	require.NoError(t, err)
	assert.True(t, u.IsStaff)
	assert.True(t, u.IsSuperuser)

	// persisted
	stored, err := GetByID(db, u.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsSuperuser)

	_, err = Promote(db, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
