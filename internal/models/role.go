package models

import "time"

// Role is an access role label that can be granted on an application,
// e.g. "Admin" or "Viewer".
type Role struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:200;not null" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
