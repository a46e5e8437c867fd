// Package organization provides CRUD operations for organizations and their memberships.
package organization

import (
	"errors"

	"gorm.io/gorm"

	"github.com/dataspace-exchange/dataspace-backend/internal/db/models"
)

var (
	// ErrOrganizationNotFound is returned when an organization is not found.
	ErrOrganizationNotFound = errors.New("organization not found")
	// ErrOrganizationNameEmpty is returned when attempting to create an organization with an empty name.
	ErrOrganizationNameEmpty = errors.New("organization name cannot be empty")
	// ErrOrganizationAlreadyExists is returned when the organization name is taken.
	ErrOrganizationAlreadyExists = errors.New("organization already exists")
	// ErrMembershipNotFound is returned when a membership is not found.
	ErrMembershipNotFound = errors.New("membership not found")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Get retrieves an organization by ID.
func Get(db *gorm.DB, id uint64) (*models.Organization, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var org models.Organization

	result := db.First(&org, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}

		return nil, result.Error
	}

	return &org, nil
}

// GetAll retrieves all organizations.
func GetAll(db *gorm.DB) ([]models.Organization, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var orgs []models.Organization

	result := db.Order("name").Find(&orgs)
	if result.Error != nil {
		return nil, result.Error
	}

	return orgs, nil
}

// Create creates a new organization.
func Create(db *gorm.DB, org *models.Organization) error {
	if db == nil {
		return ErrDBNil
	}

	if org.Name == "" {
		return ErrOrganizationNameEmpty
	}

	var existing models.Organization

	result := db.Where("name = ?", org.Name).First(&existing)
	if result.Error == nil {
		return ErrOrganizationAlreadyExists
	}

	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}

	return db.Create(org).Error //nolint:wrapcheck
}

// Update saves changes to an existing organization.
func Update(db *gorm.DB, org *models.Organization) error {
	if db == nil {
		return ErrDBNil
	}

	if org.Name == "" {
		return ErrOrganizationNameEmpty
	}

	result := db.Save(org)
	if result.Error != nil {
		return result.Error
	}

	return nil
}

// Delete deletes an organization by ID.
func Delete(db *gorm.DB, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Delete(&models.Organization{}, id)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrOrganizationNotFound
	}

	return nil
}

// Members retrieves all memberships of an organization with users and roles preloaded.
func Members(db *gorm.DB, orgID uint64) ([]models.OrganizationMembership, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var memberships []models.OrganizationMembership

	result := db.Preload("User").Preload("Role").
		Where("organization_id = ?", orgID).
		Find(&memberships)
	if result.Error != nil {
		return nil, result.Error
	}

	return memberships, nil
}

// SetMembership creates or updates the membership of a user in an organization.
func SetMembership(db *gorm.DB, orgID, userID uint64, roleID uint) (*models.OrganizationMembership, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var membership models.OrganizationMembership

	result := db.Where("organization_id = ? AND user_id = ?", orgID, userID).First(&membership)

	switch {
	case errors.Is(result.Error, gorm.ErrRecordNotFound):
		membership = models.OrganizationMembership{
			OrganizationID: orgID,
			UserID:         userID,
			RoleID:         roleID,
		}

		if err := db.Create(&membership).Error; err != nil {
			return nil, err //nolint:wrapcheck
		}
	case result.Error != nil:
		return nil, result.Error
	default:
		membership.RoleID = roleID

		if err := db.Save(&membership).Error; err != nil {
			return nil, err //nolint:wrapcheck
		}
	}

	return &membership, nil
}

// RemoveMembership deletes the membership of a user in an organization.
func RemoveMembership(db *gorm.DB, orgID, userID uint64) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Where("organization_id = ? AND user_id = ?", orgID, userID).
		Delete(&models.OrganizationMembership{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrMembershipNotFound
	}

	return nil
}
