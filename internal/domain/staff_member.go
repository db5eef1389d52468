package domain

import (
	"strings"
	"time"
)

// StaffRole enumerates dashboard access roles.
type StaffRole string

const (
	StaffRoleOfficer StaffRole = "OFFICER"
	StaffRoleWarden  StaffRole = "WARDEN"
	StaffRoleAdmin   StaffRole = "ADMIN"
)

// ControlRoomOfficerPosition is the reserved position text of a control room officer.
const ControlRoomOfficerPosition = "prison control room officer"

// StaffMember models a facility employee as reported by the staff directory.
type StaffMember struct {
	ID            string
	Name          string
	Email         string
	PasswordHash  string
	Role          StaffRole
	Position      string
	Department    Department
	AssignedBlock string
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsControlRoomOfficer reports whether the position is the reserved CRO role.
func (s StaffMember) IsControlRoomOfficer() bool {
	return strings.ToLower(strings.TrimSpace(s.Position)) == ControlRoomOfficerPosition
}

// BlockKey returns the assigned block reduced to lowercase letters ("Block-A" -> "blocka").
func (s StaffMember) BlockKey() string {
	return NormalizeBlock(s.AssignedBlock)
}

// NormalizeBlock lowercases the input and drops every non-letter rune.
func NormalizeBlock(block string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(block) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
