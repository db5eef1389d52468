package dto

import (
	"github.com/facilityops/facility-ops/internal/domain"
)

// StaffLoginRequest payload.
type StaffLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AssignBlockRequest moves a staff member to a housing block. An empty block clears it.
type AssignBlockRequest struct {
	Block string `json:"block" validate:"max=64"`
}

// StaffResponse response representation.
type StaffResponse struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Email         string            `json:"email"`
	Role          domain.StaffRole  `json:"role"`
	Position      string            `json:"position"`
	Department    domain.Department `json:"department"`
	AssignedBlock string            `json:"assigned_block,omitempty"`
	Active        bool              `json:"active"`
}

// AvailableStaffResponse is the operator's picker list.
type AvailableStaffResponse struct {
	Date                 string          `json:"date"`
	StartTime            string          `json:"start_time"`
	EndTime              string          `json:"end_time"`
	Location             domain.Location `json:"location,omitempty"`
	Staff                []StaffResponse `json:"staff"`
	DirectoryUnavailable bool            `json:"directory_unavailable"`
}
