package models

import "time"

type SystemRole string

const (
	RoleAppManager    SystemRole = "App Manager"
	RoleAppOwner      SystemRole = "App Owner"
	RoleBusinessOwner SystemRole = "Business Owner"
	RoleAdmin         SystemRole = "Admin"
)

// ValidSystemRole reports whether r is one of the four dashboard roles.
func ValidSystemRole(r SystemRole) bool {
	switch r {
	case RoleAppManager, RoleAppOwner, RoleBusinessOwner, RoleAdmin:
		return true
	}
	return false
}

// SystemUser is a dashboard account. It has no link to AccessRecords.
type SystemUser struct {
	ID           string          `gorm:"primaryKey;size:64" json:"id"`
	Name         string          `gorm:"size:200;not null" json:"name"`
	Email        string          `gorm:"uniqueIndex;size:255;not null" json:"email"`
	AvatarURL    string          `gorm:"size:512" json:"avatarUrl"`
	Role         SystemRole      `gorm:"size:32;not null" json:"role"`
	Department   string          `gorm:"size:200" json:"department"`
	Status       LifecycleStatus `gorm:"size:16;default:Active" json:"status"`
	LastLogin    *time.Time      `json:"lastLogin,omitempty"`
	PasswordHash string          `gorm:"size:255" json:"-"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}
