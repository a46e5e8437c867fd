// Package dataset provides CRUD operations for datasets and dataset grants.
package dataset

import (
	"errors"

	"gorm.io/gorm"

	"github.com/dataspace-exchange/dataspace-backend/internal/db/models"
)

var (
	// ErrDatasetNotFound is returned when a dataset is not found.
	ErrDatasetNotFound = errors.New("dataset not found")
	// ErrDatasetTitleEmpty is returned when attempting to create a dataset with an empty title.
	ErrDatasetTitleEmpty = errors.New("dataset title cannot be empty")
	// ErrGrantNotFound is returned when a dataset grant is not found.
	ErrGrantNotFound = errors.New("dataset grant not found")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Get retrieves a dataset by ID with the owning organization preloaded.
func Get(db *gorm.DB, id uint64) (*models.Dataset, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var ds models.Dataset

	result := db.Preload("Organization").First(&ds, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrDatasetNotFound
		}

		return nil, result.Error
	}

	return &ds, nil
}

// ListForOrganizations retrieves all datasets owned by the given organizations.
func ListForOrganizations(db *gorm.DB, orgIDs []uint64) ([]models.Dataset, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if len(orgIDs) == 0 {
		return nil, nil
	}

	var datasets []models.Dataset

	result := db.Where("organization_id IN ?", orgIDs).Order("title").Find(&datasets)
	if result.Error != nil {
		return nil, result.Error
	}

	return datasets, nil
}

// ListPublished retrieves all published datasets.
func ListPublished(db *gorm.DB) ([]models.Dataset, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var datasets []models.Dataset

	result := db.Where("published = ?", true).Order("title").Find(&datasets)
	if result.Error != nil {
		return nil, result.Error
	}

	return datasets, nil
}

// ListAll retrieves every dataset. Reserved for superusers.
func ListAll(db *gorm.DB) ([]models.Dataset, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var datasets []models.Dataset

	result := db.Order("title").Find(&datasets)
	if result.Error != nil {
		return nil, result.Error
	}

	return datasets, nil
}

// Create creates a new dataset.
func Create(db *gorm.DB, ds *models.Dataset) error {
	if db == nil {
		return ErrDBNil
	}

	if ds.Title == "" {
		return ErrDatasetTitleEmpty
	}

	return db.Create(ds).Error //nolint:wrapcheck
}

// Update saves changes to an existing dataset.
func Update(db *gorm.DB, ds *models.Dataset) error {
	if db == nil {
		return ErrDBNil
	}

	if ds.Title == "" {
		return ErrDatasetTitleEmpty
	}

	result := db.Save(ds)
	if result.Error != nil {
		return result.Error
	}

	return nil
}

// Delete deletes a dataset by ID.
func Delete(db *gorm.DB, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Delete(&models.Dataset{}, id)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrDatasetNotFound
	}

	return nil
}

// SetGrant creates or updates the dataset grant of a user.
func SetGrant(db *gorm.DB, datasetID, userID uint64, roleID uint) (*models.DatasetPermission, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var grant models.DatasetPermission

	result := db.Where("dataset_id = ? AND user_id = ?", datasetID, userID).First(&grant)

	switch {
	case errors.Is(result.Error, gorm.ErrRecordNotFound):
		grant = models.DatasetPermission{
			DatasetID: datasetID,
			UserID:    userID,
			RoleID:    roleID,
		}

		if err := db.Create(&grant).Error; err != nil {
			return nil, err //nolint:wrapcheck
		}
	case result.Error != nil:
		return nil, result.Error
	default:
		grant.RoleID = roleID

		if err := db.Save(&grant).Error; err != nil {
			return nil, err //nolint:wrapcheck
		}
	}

	return &grant, nil
}

// RemoveGrant deletes the dataset grant of a user.
func RemoveGrant(db *gorm.DB, datasetID, userID uint64) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Where("dataset_id = ? AND user_id = ?", datasetID, userID).
		Delete(&models.DatasetPermission{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrGrantNotFound
	}

	return nil
}
