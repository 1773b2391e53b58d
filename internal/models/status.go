package models

// LifecycleStatus is the live/not-live state of a registry entity or of the
// access behind an AccessRecord. It is independent of the review workflow.
type LifecycleStatus string

const (
	StatusActive      LifecycleStatus = "Active"
	StatusInactive    LifecycleStatus = "Inactive"
	StatusMaintenance LifecycleStatus = "Maintenance"
)

// ValidAccessStatus reports whether s may be used for users and access records.
func ValidAccessStatus(s LifecycleStatus) bool {
	return s == StatusActive || s == StatusInactive
}

// ValidApplicationStatus reports whether s may be used for applications.
func ValidApplicationStatus(s LifecycleStatus) bool {
	return ValidAccessStatus(s) || s == StatusMaintenance
}
