package models

import "time"

// DatasetPermission grants a user a role on a single dataset, independent of
// any organization membership. The dataset check passes when either the
// organization role or a dataset grant allows the operation.
type DatasetPermission struct {
	// ID is the unique identifier for the grant.
	ID uint64 `gorm:"primaryKey"`
	// UserID is the grantee's user ID.
	UserID uint64 `gorm:"uniqueIndex:idx_dataset_grant;not null"`
	// DatasetID is the dataset the grant applies to.
	DatasetID uint64 `gorm:"uniqueIndex:idx_dataset_grant;not null"`
	// RoleID is the role granted on the dataset.
	RoleID uint `gorm:"not null"`
	// User is the associated user (loaded via foreign key).
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	// Dataset is the associated dataset (loaded via foreign key).
	Dataset Dataset `gorm:"foreignKey:DatasetID;constraint:OnDelete:CASCADE"`
	// Role is the associated role (loaded via foreign key).
	Role Role `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE"`
	// CreatedAt is the timestamp when the grant was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the grant was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the DatasetPermission model.
func (DatasetPermission) TableName() string {
	return "dataset_permissions"
}
