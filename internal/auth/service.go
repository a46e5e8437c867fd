package auth

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/dataspace-exchange/dataspace-backend/internal/db/models"
)

// Service provides authorization checks and grant listings.
type Service struct {
	db *gorm.DB
}

// NewService creates a new auth service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// RoleFlags is the operation flag set of a role, as exposed in API payloads.
type RoleFlags struct {
	CanView   bool `json:"can_view"`
	CanAdd    bool `json:"can_add"`
	CanChange bool `json:"can_change"`
	CanDelete bool `json:"can_delete"`
}

// OrganizationGrant describes a user's role inside one organization.
type OrganizationGrant struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	Permissions RoleFlags `json:"permissions"`
}

// DatasetGrant describes a user's dataset-specific role.
type DatasetGrant struct {
	ID          uint64    `json:"id"`
	Title       string    `json:"title"`
	Role        string    `json:"role"`
	Permissions RoleFlags `json:"permissions"`
}

func flagsOf(role *models.Role) RoleFlags {
	return RoleFlags{
		CanView:   role.CanView,
		CanAdd:    role.CanAdd,
		CanChange: role.CanChange,
		CanDelete: role.CanDelete,
	}
}

// CheckOrganizationPermission checks if a user may perform an operation on an
// organization's resources. Superusers bypass the role check.
func (s *Service) CheckOrganizationPermission(userID, orgID uint64, op models.Operation) (bool, error) {
	isSuper, err := s.isSuperuser(userID)
	if err != nil {
		return false, err
	}

	if isSuper {
		return true, nil
	}

	var membership models.OrganizationMembership

	err = s.db.Preload("Role").
		Where("user_id = ? AND organization_id = ?", userID, orgID).
		First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}

		return false, fmt.Errorf("failed to load membership: %w", err)
	}

	return membership.Role.Allows(op), nil
}

// CheckDatasetPermission checks if a user may perform an operation on a
// dataset. The organization role of the owning organization is checked first;
// a dataset-specific grant can allow the operation when the organization role
// does not.
func (s *Service) CheckDatasetPermission(userID, datasetID uint64, op models.Operation) (bool, error) {
	var ds models.Dataset

	if err := s.db.First(&ds, datasetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}

		return false, fmt.Errorf("failed to load dataset: %w", err)
	}

	allowed, err := s.CheckOrganizationPermission(userID, ds.OrganizationID, op)
	if err != nil {
		return false, err
	}

	if allowed {
		return true, nil
	}

	var grant models.DatasetPermission

	err = s.db.Preload("Role").
		Where("user_id = ? AND dataset_id = ?", userID, datasetID).
		First(&grant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}

		return false, fmt.Errorf("failed to load dataset grant: %w", err)
	}

	return grant.Role.Allows(op), nil
}

// IsOrganizationMember reports whether the user belongs to the organization.
// Superusers count as members everywhere.
func (s *Service) IsOrganizationMember(userID, orgID uint64) (bool, error) {
	isSuper, err := s.isSuperuser(userID)
	if err != nil {
		return false, err
	}

	if isSuper {
		return true, nil
	}

	var count int64

	err = s.db.Model(&models.OrganizationMembership{}).
		Where("user_id = ? AND organization_id = ?", userID, orgID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}

	return count > 0, nil
}

// ListUserOrganizations returns all organizations the user belongs to with
// their role names and flags.
func (s *Service) ListUserOrganizations(userID uint64) ([]OrganizationGrant, error) {
	var memberships []models.OrganizationMembership

	err := s.db.Preload("Organization").Preload("Role").
		Where("user_id = ?", userID).
		Find(&memberships).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}

	grants := make([]OrganizationGrant, 0, len(memberships))

	for i := range memberships {
		m := &memberships[i]
		grants = append(grants, OrganizationGrant{
			ID:          m.Organization.ID,
			Name:        m.Organization.Name,
			Role:        m.Role.Name,
			Permissions: flagsOf(&m.Role),
		})
	}

	return grants, nil
}

// ListUserDatasets returns all datasets the user has specific grants for.
func (s *Service) ListUserDatasets(userID uint64) ([]DatasetGrant, error) {
	var perms []models.DatasetPermission

	err := s.db.Preload("Dataset").Preload("Role").
		Where("user_id = ?", userID).
		Find(&perms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list dataset grants: %w", err)
	}

	grants := make([]DatasetGrant, 0, len(perms))

	for i := range perms {
		p := &perms[i]
		grants = append(grants, DatasetGrant{
			ID:          p.Dataset.ID,
			Title:       p.Dataset.Title,
			Role:        p.Role.Name,
			Permissions: flagsOf(&p.Role),
		})
	}

	return grants, nil
}

// OrganizationIDs returns the IDs of all organizations the user belongs to.
func (s *Service) OrganizationIDs(userID uint64) ([]uint64, error) {
	var ids []uint64

	err := s.db.Model(&models.OrganizationMembership{}).
		Where("user_id = ?", userID).
		Pluck("organization_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list organization ids: %w", err)
	}

	return ids, nil
}

// DB exposes the underlying database handle for handlers that combine
// authorization checks with entity access.
func (s *Service) DB() *gorm.DB {
	return s.db
}

func (s *Service) isSuperuser(userID uint64) (bool, error) {
	var user models.User

	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}

		return false, fmt.Errorf("failed to load user: %w", err)
	}

	return user.IsSuperuser, nil
}
