package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserStatus describes the lifecycle state of an account.
type UserStatus string

const (
	StatusPending     UserStatus = "pending"
	StatusActive      UserStatus = "active"
	StatusSuspended   UserStatus = "suspended"
	StatusDeactivated UserStatus = "deactivated"
)

// User is an account in the system. Memories and conversations reference it
// by its string form of ID.
type User struct {
	gorm.Model

	Username  string `gorm:"unique;not null"`
	Email     string `gorm:"uniqueIndex;not null"`
	Password  string `gorm:"size:255" json:"-"` // bcrypt hash, never serialized
	AvatarURL string

	Status      UserStatus `gorm:"type:varchar(20);default:'active';not null"`
	LastLoginAt *time.Time
	Settings    datatypes.JSON
}

func (User) TableName() string {
	return "users"
}
