package models

import "time"

// OrganizationMembership links a user to an organization with a role.
// A user holds at most one role per organization.
type OrganizationMembership struct {
	// ID is the unique identifier for the membership.
	ID uint64 `gorm:"primaryKey"`
	// UserID is the member's user ID.
	UserID uint64 `gorm:"uniqueIndex:idx_org_member;not null"`
	// OrganizationID is the organization the user belongs to.
	OrganizationID uint64 `gorm:"uniqueIndex:idx_org_member;not null"`
	// RoleID is the role the user holds inside the organization.
	RoleID uint `gorm:"not null"`
	// User is the associated user (loaded via foreign key).
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	// Organization is the associated organization (loaded via foreign key).
	Organization Organization `gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE"`
	// Role is the associated role (loaded via foreign key).
	Role Role `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE"`
	// CreatedAt is the timestamp when the membership was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the membership was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the OrganizationMembership model.
func (OrganizationMembership) TableName() string {
	return "organization_memberships"
}
