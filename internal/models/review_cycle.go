package models

import "time"

type CycleStatus string

const (
	CycleActive    CycleStatus = "Active"
	CycleCompleted CycleStatus = "Completed"
	CycleUpcoming  CycleStatus = "Upcoming"
)

// ReviewCycle is a time-boxed review campaign. It is informational only.
type ReviewCycle struct {
	ID        string      `gorm:"primaryKey;size:64" json:"id"`
	Name      string      `gorm:"size:200;not null" json:"name"`
	StartDate time.Time   `json:"startDate"`
	EndDate   time.Time   `json:"endDate"`
	Status    CycleStatus `gorm:"size:16;not null" json:"status"`
	Progress  int         `json:"progress"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}
