package models

import (
	"time"

	"gorm.io/datatypes"
)

type AuditLog struct {
	ID            int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Action        string         `gorm:"size:200;not null" json:"action"` // e.g. "access_record.review", "system_user.delete"
	ResourceType  string         `gorm:"size:100" json:"resourceType"`
	ResourceID    string         `gorm:"size:64;index" json:"resourceId"`
	Metadata      datatypes.JSON `gorm:"type:json" json:"metadata,omitempty"`
	IP            string         `gorm:"size:64" json:"ip"`
	InitiatorName string         `gorm:"size:255" json:"initiatorName"`
	UserAgent     string         `gorm:"size:255" json:"userAgent"`
	CreatedAt     time.Time      `json:"createdAt"`
}
