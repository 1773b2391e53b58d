package models

import "time"

// ReviewStatus is the position of an AccessRecord in the review workflow.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "Pending"
	ReviewRetained ReviewStatus = "Retained"
	ReviewRevoked  ReviewStatus = "Revoked"
	ReviewModified ReviewStatus = "Modified"
	ReviewApproved ReviewStatus = "Approved"
	ReviewRejected ReviewStatus = "Rejected"
)

// Recommendation is the first-stage decision carried to the business owner.
type Recommendation string

const (
	RecommendRetain Recommendation = "Retain"
	RecommendRevoke Recommendation = "Revoke"
	RecommendModify Recommendation = "Modify"
)

// HistoryEntry is one line of a record's review trail.
type HistoryEntry struct {
	Action string `json:"action"`
	Date   string `json:"date"`
	Actor  string `json:"actor"`
}

// AccessRecord is one user's grant of access to one application.
type AccessRecord struct {
	ID             string          `gorm:"primaryKey;size:64" json:"id"`
	UserName       string          `gorm:"size:200;not null" json:"userName"`
	UserEmail      string          `gorm:"size:255;index;not null" json:"userEmail"`
	UserAvatar     string          `gorm:"size:512" json:"userAvatar"`
	BusinessUserID string          `gorm:"size:64;index" json:"businessUserId,omitempty"`
	Application    string          `gorm:"size:200;index;not null" json:"application"`
	Role           string          `gorm:"size:200" json:"role"`
	Manager        string          `gorm:"size:200" json:"manager"`
	Status         LifecycleStatus `gorm:"size:16;default:Active" json:"status"`
	LastLogin      *time.Time      `json:"lastLogin,omitempty"`

	ReviewStatus   ReviewStatus   `gorm:"size:16;index;not null" json:"reviewStatus"`
	ReviewComment  string         `gorm:"type:text" json:"reviewComment,omitempty"`
	Recommendation Recommendation `gorm:"size:16" json:"recommendation,omitempty"`
	DateSubmitted  *time.Time     `json:"dateSubmitted,omitempty"`
	History        []HistoryEntry `gorm:"serializer:json;type:text" json:"history"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a copy that shares no mutable state with r.
func (r AccessRecord) Clone() AccessRecord {
	out := r
	out.History = append(make([]HistoryEntry, 0, len(r.History)), r.History...)
	if r.LastLogin != nil {
		t := *r.LastLogin
		out.LastLogin = &t
	}
	if r.DateSubmitted != nil {
		t := *r.DateSubmitted
		out.DateSubmitted = &t
	}
	return out
}
