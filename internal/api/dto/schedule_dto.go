package dto

import (
	"time"

	"github.com/facilityops/facility-ops/internal/domain"
)

// ScheduleRequest is the payload for create, update and validate. Clock and location
// rules are checked by the scheduling engine so operators see its messages verbatim.
type ScheduleRequest struct {
	Title         string                  `json:"title" validate:"required,max=200"`
	Type          domain.ScheduleType     `json:"schedule_type" validate:"omitempty,oneof=Security Medical Rehabilitation Work Visitation Maintenance Education Recreation"`
	Date          string                  `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime     string                  `json:"start_time" validate:"required"`
	EndTime       string                  `json:"end_time" validate:"required"`
	Location      string                  `json:"location" validate:"required"`
	AssignedStaff []string                `json:"assigned_staff" validate:"max=50"`
	Priority      domain.SchedulePriority `json:"priority" validate:"omitempty,oneof=High Medium Low"`
	Status        domain.ScheduleStatus   `json:"status" validate:"omitempty,oneof=Scheduled 'In Progress' Completed Cancelled Postponed"`
	Description   string                  `json:"description" validate:"max=2000"`
}

// ScheduleResponse response representation.
type ScheduleResponse struct {
	ID            string                  `json:"id"`
	Title         string                  `json:"title"`
	Type          domain.ScheduleType     `json:"schedule_type"`
	Date          string                  `json:"date"`
	StartTime     string                  `json:"start_time"`
	EndTime       string                  `json:"end_time"`
	Location      domain.Location         `json:"location"`
	AssignedStaff []string                `json:"assigned_staff"`
	Priority      domain.SchedulePriority `json:"priority"`
	Status        domain.ScheduleStatus   `json:"status"`
	Description   string                  `json:"description,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

// CoverageActionResponse is one corrective write.
type CoverageActionResponse struct {
	Kind      string           `json:"kind"`
	Invariant string           `json:"invariant"`
	Entry     ScheduleResponse `json:"entry"`
}

// CoverageFailureResponse is an invariant left violated.
type CoverageFailureResponse struct {
	Invariant string          `json:"invariant"`
	Location  domain.Location `json:"location"`
	Reason    string          `json:"reason"`
}

// CoverageReportResponse summarizes an enforcement sweep.
type CoverageReportResponse struct {
	Date     string                    `json:"date"`
	Changed  bool                      `json:"changed"`
	Actions  []CoverageActionResponse  `json:"actions"`
	Failures []CoverageFailureResponse `json:"failures"`
}

// CommitResponse is returned by create and update. PreviousDateEnforcement is the
// sweep of the date an update moved the entry away from.
type CommitResponse struct {
	Entry                   ScheduleResponse        `json:"entry"`
	Enforcement             *CoverageReportResponse `json:"enforcement,omitempty"`
	PreviousDateEnforcement *CoverageReportResponse `json:"previous_date_enforcement,omitempty"`
	SweepError              string                  `json:"sweep_error,omitempty"`
}

// DaySummaryResponse feeds the headcount panel.
type DaySummaryResponse struct {
	Date                 string                          `json:"date"`
	Entries              int                             `json:"entries"`
	OnDuty               []string                        `json:"on_duty"`
	Headcount            map[domain.Location]int         `json:"headcount"`
	Coverage             map[domain.LocationCategory]int `json:"coverage"`
	NeedsSweep           bool                            `json:"needs_sweep"`
	FreeStaff            int                             `json:"free_staff"`
	DirectoryUnavailable bool                            `json:"directory_unavailable"`
}
