// Package role provides CRUD and seeding operations for roles.
package role

import (
	"errors"

	"gorm.io/gorm"

	"github.com/dataspace-exchange/dataspace-backend/internal/db/models"
)

const (
	nameQueryPattern = "name = ?"
)

var (
	// ErrRoleNotFound is returned when a role is not found.
	ErrRoleNotFound = errors.New("role not found")
	// ErrRoleNameEmpty is returned when attempting to look up a role with an empty name.
	ErrRoleNameEmpty = errors.New("role name cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// SeedResult reports what Seed did for one role.
type SeedResult struct {
	Name    string
	Created bool
}

// defaultRoles are the fixed roles created by the init-roles command.
// Flags follow the view/add/change/delete model.
var defaultRoles = []models.Role{
	{
		Name:        models.RoleAdmin,
		Description: "Administrator with full access",
		CanView:     true,
		CanAdd:      true,
		CanChange:   true,
		CanDelete:   true,
		IsSystem:    true,
	},
	{
		Name:        models.RoleEditor,
		Description: "Editor with ability to view, add, and change content",
		CanView:     true,
		CanAdd:      true,
		CanChange:   true,
		CanDelete:   false,
		IsSystem:    true,
	},
	{
		Name:        models.RoleViewer,
		Description: "Viewer with read-only access",
		CanView:     true,
		CanAdd:      false,
		CanChange:   false,
		CanDelete:   false,
		IsSystem:    true,
	},
	{
		Name:        models.RoleOwner,
		Description: "Owner with full access",
		CanView:     true,
		CanAdd:      true,
		CanChange:   true,
		CanDelete:   true,
		IsSystem:    true,
	},
}

// Seed creates or updates the default roles. Running it twice leaves exactly
// one row per role name with the fixed flag set.
func Seed(db *gorm.DB) ([]SeedResult, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	results := make([]SeedResult, 0, len(defaultRoles))

	for _, want := range defaultRoles {
		var existing models.Role

		result := db.Where(nameQueryPattern, want.Name).First(&existing)

		switch {
		case errors.Is(result.Error, gorm.ErrRecordNotFound):
			created := want
			if err := db.Create(&created).Error; err != nil {
				return nil, err //nolint:wrapcheck
			}

			results = append(results, SeedResult{Name: want.Name, Created: true})
		case result.Error != nil:
			return nil, result.Error
		default:
			existing.Description = want.Description
			existing.CanView = want.CanView
			existing.CanAdd = want.CanAdd
			existing.CanChange = want.CanChange
			existing.CanDelete = want.CanDelete
			existing.IsSystem = true

			if err := db.Save(&existing).Error; err != nil {
				return nil, err //nolint:wrapcheck
			}

			results = append(results, SeedResult{Name: want.Name, Created: false})
		}
	}

	return results, nil
}

// Get retrieves a role by its name.
func Get(db *gorm.DB, name string) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if name == "" {
		return nil, ErrRoleNameEmpty
	}

	var role models.Role

	result := db.Where(nameQueryPattern, name).First(&role)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}

		return nil, result.Error
	}

	return &role, nil
}

// GetByID retrieves a role by its ID.
func GetByID(db *gorm.DB, id uint) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var role models.Role

	result := db.First(&role, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}

		return nil, result.Error
	}

	return &role, nil
}

// GetAll retrieves all roles from the database.
func GetAll(db *gorm.DB) ([]models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var roles []models.Role

	result := db.Order("name").Find(&roles)
	if result.Error != nil {
		return nil, result.Error
	}

	return roles, nil
}
