package models

import (
	"gorm.io/datatypes"
)

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

type User struct {
	BaseModel
	Name         string   `gorm:"not null" json:"name"`
	Email        string   `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string   `gorm:"not null" json:"-"`
	Role         UserRole `gorm:"type:varchar(20);not null;default:'user'" json:"role"`

	// Properties lists the property slugs this user may access. Empty for
	// admins, who implicitly see everything.
	Properties datatypes.JSONSlice[string] `json:"properties"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// CanAccessProperty checks the user's entitlements against a property slug.
func (u *User) CanAccessProperty(slug string) bool {
	if u.IsAdmin() {
		return true
	}
	for _, s := range u.Properties {
		if s == slug {
			return true
		}
	}
	return false
}
