package models

import "time"

// Dataset represents a dataset offered on the exchange.
// Every dataset is owned by exactly one organization; access follows the
// organization role unless a DatasetPermission grants more.
type Dataset struct {
	// ID is the unique identifier for the dataset.
	ID uint64 `gorm:"primaryKey"`
	// Title is the dataset title.
	Title string `gorm:"size:255;not null"`
	// Description provides a human-readable description.
	Description string
	// OrganizationID is the owning organization.
	OrganizationID uint64 `gorm:"index;not null"`
	// Organization is the owning organization (loaded via foreign key).
	Organization Organization `gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE"`
	// Published indicates the dataset is visible to anonymous users.
	Published bool `gorm:"default:false"`
	// CreatedAt is the timestamp when the dataset was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the dataset was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Dataset model.
func (Dataset) TableName() string {
	return "datasets"
}
