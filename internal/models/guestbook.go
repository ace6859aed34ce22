package models

import (
	"fmt"
	"strings"
)

// Attendance is a guest's RSVP answer.
type Attendance string

const (
	// AttendanceYes means the guest will attend.
	AttendanceYes Attendance = "yes"
	// AttendanceNo means the guest will not attend.
	AttendanceNo Attendance = "no"
	// AttendanceMaybe means the guest has not decided yet.
	AttendanceMaybe Attendance = "maybe"
)

// Valid reports whether a is one of yes, no or maybe.
func (a Attendance) Valid() bool {
	switch a {
	case AttendanceYes, AttendanceNo, AttendanceMaybe:
		return true
	}
	return false
}

// ParseAttendance parses s exactly. Case and surrounding whitespace are not
// forgiven: anything other than "yes", "no" or "maybe" is an error.
func ParseAttendance(s string) (Attendance, error) {
	a := Attendance(s)
	if !a.Valid() {
		return "", fmt.Errorf("invalid attendance %q: must be one of %s", s,
			strings.Join([]string{string(AttendanceYes), string(AttendanceNo), string(AttendanceMaybe)}, ", "))
	}
	return a, nil
}

// Comment is a guest book entry left on an invitation.
// Comments are immutable once created.
type Comment struct {
	// ID is the unique identifier (UUID format).
	ID string `json:"id,omitempty"`

	// InvitationID references the owning invitation.
	InvitationID string `json:"invitation_id" validate:"required"`

	Name       string     `json:"name" validate:"required,max=120"`
	Message    string     `json:"message" validate:"max=2000"`
	Attendance Attendance `json:"attendance" validate:"attendance"`

	// CreatedAt is the Unix timestamp when the comment was posted.
	CreatedAt int64 `json:"created_at,omitempty"`
}

// Gift is a guest's notice of a transfer to one of the invitation's bank
// accounts. Only Confirmed ever changes after creation, and only from false
// to true.
type Gift struct {
	// ID is the unique identifier (UUID format).
	ID string `json:"id,omitempty"`

	// InvitationID references the owning invitation.
	InvitationID string `json:"invitation_id" validate:"required"`

	SenderName string  `json:"sender_name" validate:"required,max=120"`
	Amount     float64 `json:"amount" validate:"gte=0"`
	Message    string  `json:"message" validate:"max=2000"`

	// BankAccount is free text naming the account the gift went to.
	// It is not a structural link to Invitation.BankAccounts.
	BankAccount string `json:"bank_account" validate:"max=200"`

	// CreatedAt is the Unix timestamp when the gift was recorded.
	CreatedAt int64 `json:"created_at,omitempty"`

	// Confirmed is set by the invitation owner once the transfer arrived.
	Confirmed bool `json:"confirmed"`
}

// AttendanceSummary counts comments per attendance answer.
type AttendanceSummary struct {
	Yes   int `json:"yes"`
	No    int `json:"no"`
	Maybe int `json:"maybe"`
}

// Add counts one answer.
func (s *AttendanceSummary) Add(a Attendance) {
	switch a {
	case AttendanceYes:
		s.Yes++
	case AttendanceNo:
		s.No++
	case AttendanceMaybe:
		s.Maybe++
	}
}

// Total returns the number of counted answers.
func (s AttendanceSummary) Total() int {
	return s.Yes + s.No + s.Maybe
}
