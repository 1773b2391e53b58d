package models

import "time"

// Application is a registry entry. AccessRecords refer to it by Name only.
type Application struct {
	ID          string          `gorm:"primaryKey;size:64" json:"id"`
	Name        string          `gorm:"uniqueIndex;size:200;not null" json:"name"`
	Owner       string          `gorm:"size:200" json:"owner"`
	Description string          `gorm:"type:text" json:"description"`
	UserCount   int             `json:"userCount"`
	Status      LifecycleStatus `gorm:"size:16;default:Active" json:"status"`
	LastUpdated time.Time       `gorm:"autoUpdateTime" json:"lastUpdated"`
	CreatedAt   time.Time       `json:"createdAt"`
}
