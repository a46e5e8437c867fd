package models

import "time"

// Organization represents a data-providing or data-consuming organization.
// Users belong to organizations through OrganizationMembership rows, each
// carrying the role the user holds inside that organization.
type Organization struct {
	// ID is the unique identifier for the organization.
	ID uint64 `gorm:"primaryKey"`
	// Name is the unique organization name.
	Name string `gorm:"unique;size:255;not null"`
	// Slug is the URL friendly identifier.
	Slug string `gorm:"uniqueIndex;size:255"`
	// Description provides a human-readable description.
	Description string
	// CreatedAt is the timestamp when the organization was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the organization was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Organization model.
func (Organization) TableName() string {
	return "organizations"
}
