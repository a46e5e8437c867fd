// Package user provides lookup and administrative operations for user accounts.
package user

import (
	"errors"

	"gorm.io/gorm"

	"github.com/dataspace-exchange/dataspace-backend/internal/db/models"
)

var (
	// ErrUserNotFound is returned when a user cannot be found.
	ErrUserNotFound = errors.New("user not found")
	// ErrIdentifierEmpty is returned when a lookup identifier is empty.
	ErrIdentifierEmpty = errors.New("identifier cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// GetByID retrieves a user by primary key.
func GetByID(db *gorm.DB, id uint64) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var user models.User

	result := db.First(&user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, result.Error
	}

	return &user, nil
}

// GetByKeycloakID retrieves a user by the Keycloak subject.
func GetByKeycloakID(db *gorm.DB, keycloakID string) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if keycloakID == "" {
		return nil, ErrIdentifierEmpty
	}

	var user models.User

	result := db.Where("keycloak_id = ?", keycloakID).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, result.Error
	}

	return &user, nil
}

// Find retrieves a user by username or, failing that, by email.
func Find(db *gorm.DB, identifier string) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if identifier == "" {
		return nil, ErrIdentifierEmpty
	}

	var user models.User

	result := db.Where("username = ?", identifier).First(&user)
	if result.Error == nil {
		return &user, nil
	}

	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, result.Error
	}

	result = db.Where("email = ?", identifier).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, result.Error
	}

	return &user, nil
}

// Promote grants a user, found by username or email, staff and superuser status.
func Promote(db *gorm.DB, identifier string) (*models.User, error) {
	user, err := Find(db, identifier)
	if err != nil {
		return nil, err
	}

	user.IsStaff = true
	user.IsSuperuser = true

	if err := db.Save(user).Error; err != nil {
		return nil, err //nolint:wrapcheck
	}

	return user, nil
}
