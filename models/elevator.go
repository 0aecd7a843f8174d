package models

import (
	"strings"

	"gorm.io/gorm"
)

// DefaultLanguage is applied when an elevator is created without any
// language codes for its public reporting page.
const DefaultLanguage = "en"

// Elevator is an owned resource. Riders reach its public reporting page by
// scanning a QR code that encodes the PublicID; the numeric primary key
// never leaves the server.
type Elevator struct {
	gorm.Model

	PublicID string  `gorm:"uniqueIndex;size:36;not null" json:"id"`
	Name     string  `gorm:"size:255;not null" json:"name"`
	Location *string `gorm:"size:500" json:"location,omitempty"`

	// Languages holds a comma-separated, non-empty set of language codes
	// the reporting page is offered in.
	Languages string `gorm:"size:255;not null;default:'en'" json:"languages"`

	// AdminID is the creating admin. Access for further admins is granted
	// through ElevatorAccess rows.
	AdminID uint `gorm:"not null;index" json:"-"`

	// Relations
	Admin       Admin            `json:"-"`
	Reports     []Report         `gorm:"foreignKey:ElevatorID;constraint:OnDelete:CASCADE" json:"reports,omitempty"`
	Memberships []ElevatorAccess `gorm:"foreignKey:ElevatorID;constraint:OnDelete:CASCADE" json:"members,omitempty"`
}

// LanguageList returns the language codes as a slice.
func (e *Elevator) LanguageList() []string {
	if e.Languages == "" {
		return []string{DefaultLanguage}
	}
	return strings.Split(e.Languages, ",")
}

// SetLanguages stores the given codes, falling back to the default language
// when none are supplied. The stored set is never empty.
func (e *Elevator) SetLanguages(codes []string) {
	cleaned := make([]string, 0, len(codes))
	for _, code := range codes {
		code = strings.TrimSpace(strings.ToLower(code))
		if code != "" {
			cleaned = append(cleaned, code)
		}
	}
	if len(cleaned) == 0 {
		cleaned = []string{DefaultLanguage}
	}
	e.Languages = strings.Join(cleaned, ",")
}

// Membership roles.
const (
	RoleOwner = "owner"
	RoleAdmin = "admin"
)

// ElevatorAccess grants an admin access to one elevator. The creating admin
// gets a role=owner row at elevator creation; invited admins get role=admin.
// Unique per (elevator, admin) pair.
type ElevatorAccess struct {
	gorm.Model

	ElevatorID uint   `gorm:"not null;uniqueIndex:idx_elevator_access_pair" json:"elevator_id"`
	AdminID    uint   `gorm:"not null;uniqueIndex:idx_elevator_access_pair" json:"admin_id"`
	Role       string `gorm:"size:20;not null;default:'admin'" json:"role"`

	// Relations
	Elevator Elevator `json:"-"`
	Admin    Admin    `json:"-"`
}
