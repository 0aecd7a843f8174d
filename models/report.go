package models

import "gorm.io/gorm"

// Issue types riders can report. The set is closed per deployment. The
// "everything is fine" acknowledgment shown on the reporting page is a
// client-only state and is never stored as a report.
const (
	IssueStoppedUnexpectedly = "stopped_unexpectedly"
	IssueRumbledOccupied     = "rumbled_occupied"
	IssueRumbledArrival      = "rumbled_arrival"
)

// ValidIssueTypes lists every persistable issue type.
var ValidIssueTypes = []string{
	IssueStoppedUnexpectedly,
	IssueRumbledOccupied,
	IssueRumbledArrival,
}

// IsValidIssueType reports whether t is a member of the deployment's issue
// type set.
func IsValidIssueType(t string) bool {
	for _, valid := range ValidIssueTypes {
		if t == valid {
			return true
		}
	}
	return false
}

// Report is a rider-submitted issue event. Immutable after creation except
// for ReporterName (attached by the rider right after submitting) and
// Suspicious (toggled by admins during triage). Deleted only when its
// elevator is deleted.
type Report struct {
	gorm.Model

	PublicID   string `gorm:"uniqueIndex;size:36;not null" json:"id"`
	ElevatorID uint   `gorm:"not null;index:idx_reports_elevator_device" json:"-"`
	IssueType  string `gorm:"size:50;not null" json:"issue_type"`

	// DeviceHash is a weak, client-computed fingerprint used only to
	// deduplicate rapid repeat submissions. Not an identity.
	DeviceHash *string `gorm:"size:64;index:idx_reports_elevator_device" json:"-"`

	ReporterName *string `gorm:"size:255" json:"reporter_name,omitempty"`

	// IPAddress is the server-observed origin address; client-supplied
	// addresses are never trusted.
	IPAddress  string `gorm:"size:45;index" json:"-"`
	Suspicious bool   `gorm:"default:false" json:"suspicious"`

	// Relations
	Elevator Elevator `json:"-"`
}
