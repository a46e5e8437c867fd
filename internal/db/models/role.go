package models

import "time"

// Role names seeded by the init-roles command.
const (
	// RoleAdmin has full access to organization resources.
	RoleAdmin = "admin"
	// RoleEditor can view, add and change content but not delete it.
	RoleEditor = "editor"
	// RoleViewer has read-only access.
	RoleViewer = "viewer"
	// RoleOwner has full access, including deletion.
	RoleOwner = "owner"
)

// Role represents a role in the role-based access control (RBAC) system.
// A role carries a fixed set of operation flags; users get a role per
// organization membership or per dataset grant.
type Role struct {
	// ID is the unique identifier for the role.
	ID uint `gorm:"primaryKey"`
	// Name is the unique name of the role (e.g., "admin", "viewer").
	Name string `gorm:"unique;size:50;not null"`
	// Description provides a human-readable description of the role's purpose.
	Description string `gorm:"size:255"`
	// CanView allows reading resources.
	CanView bool `gorm:"default:true"`
	// CanAdd allows creating resources.
	CanAdd bool `gorm:"default:false"`
	// CanChange allows updating resources.
	CanChange bool `gorm:"default:false"`
	// CanDelete allows deleting resources.
	CanDelete bool `gorm:"default:false"`
	// IsSystem indicates if this is a seeded role that cannot be deleted.
	IsSystem bool `gorm:"default:false"`
	// CreatedAt is the timestamp when the role was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the role was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Role model.
// This overrides GORM's default pluralized table naming.
func (Role) TableName() string {
	return "roles"
}

// Allows reports whether the role permits the given operation.
func (r *Role) Allows(op Operation) bool {
	switch op {
	case OperationView:
		return r.CanView
	case OperationAdd:
		return r.CanAdd
	case OperationChange:
		return r.CanChange
	case OperationDelete:
		return r.CanDelete
	default:
		return false
	}
}

// Operation is a coarse action class checked against role flags.
type Operation string

const (
	// OperationView covers read access.
	OperationView Operation = "view"
	// OperationAdd covers resource creation.
	OperationAdd Operation = "add"
	// OperationChange covers resource modification.
	OperationChange Operation = "change"
	// OperationDelete covers resource deletion.
	OperationDelete Operation = "delete"
)

// OperationFromMethod maps an HTTP method to the operation checked against
// role flags. Unknown methods map to the empty operation, which no role
// allows.
func OperationFromMethod(method string) Operation {
	switch method {
	case "GET", "HEAD":
		return OperationView
	case "POST":
		return OperationAdd
	case "PUT", "PATCH":
		return OperationChange
	case "DELETE":
		return OperationDelete
	default:
		return ""
	}
}
