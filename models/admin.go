package models

import (
	"time"

	"gorm.io/gorm"
)

// Admin represents a building manager account. Admins sign in with emailed
// magic links; there is no password.
type Admin struct {
	gorm.Model

	Email       string `gorm:"uniqueIndex;not null" json:"email"`
	InvitedByID *uint  `json:"invited_by,omitempty"`
	InvitedBy   *Admin `gorm:"foreignKey:InvitedByID" json:"-"`

	// Relations
	Elevators   []Elevator       `gorm:"foreignKey:AdminID" json:"elevators,omitempty"`
	MagicLinks  []MagicLink      `gorm:"foreignKey:AdminID" json:"-"`
	Memberships []ElevatorAccess `gorm:"foreignKey:AdminID" json:"-"`
}

// Magic link lifetimes. Signup links are short-lived; invite links give the
// recipient a day to accept.
const (
	MagicLinkSignupExpiry = 15 * time.Minute
	MagicLinkInviteExpiry = 24 * time.Hour
)

// MagicLink is a single-use login credential emailed to an admin.
type MagicLink struct {
	gorm.Model

	AdminID   uint       `gorm:"not null;index" json:"admin_id"`
	Token     string     `gorm:"uniqueIndex;size:64;not null" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`

	// ElevatorID records the elevator the recipient was invited to manage.
	// The membership itself is granted when the invite is sent, so this is
	// informational; verify does not read it.
	ElevatorID *uint `gorm:"index" json:"elevator_id,omitempty"`

	// Relations
	Admin Admin `json:"-"`
}

// Usable reports whether the link can still authenticate a login.
func (ml *MagicLink) Usable(now time.Time) bool {
	return ml.UsedAt == nil && now.Before(ml.ExpiresAt)
}
