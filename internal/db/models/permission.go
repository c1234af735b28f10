package models

import "time"

// Permission represents a specific permission in the authorization system.
// Permissions define granular access rights to platform features. They are
// assigned to roles, which are then assigned to users.
type Permission struct {
	// ID is the unique identifier for the permission.
	ID uint `gorm:"primaryKey"`
	// Name is the unique permission identifier in category.action format (e.g., "webtoons.create").
	Name string `gorm:"unique;size:100;not null"`
	// Category is the catalog category this permission belongs to. It is always
	// the substring of Name before the first dot and is never changed after creation.
	Category string `gorm:"size:100;not null"`
	// Description provides a human-readable explanation of what this permission grants.
	Description string `gorm:"size:255"`
	// CreatedAt is the timestamp when the permission was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the permission was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Permission model.
// This overrides GORM's default pluralized table naming.
func (Permission) TableName() string {
	return "permissions"
}
