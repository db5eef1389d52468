package domain

import "time"

// ScheduleType classifies the duty an entry represents.
type ScheduleType string

const (
	ScheduleTypeSecurity       ScheduleType = "Security"
	ScheduleTypeMedical        ScheduleType = "Medical"
	ScheduleTypeRehabilitation ScheduleType = "Rehabilitation"
	ScheduleTypeWork           ScheduleType = "Work"
	ScheduleTypeVisitation     ScheduleType = "Visitation"
	ScheduleTypeMaintenance    ScheduleType = "Maintenance"
	ScheduleTypeEducation      ScheduleType = "Education"
	ScheduleTypeRecreation     ScheduleType = "Recreation"
)

// SchedulePriority expresses operator urgency.
type SchedulePriority string

const (
	SchedulePriorityHigh   SchedulePriority = "High"
	SchedulePriorityMedium SchedulePriority = "Medium"
	SchedulePriorityLow    SchedulePriority = "Low"
)

// ScheduleStatus is descriptive metadata; the engine never transitions it.
type ScheduleStatus string

const (
	ScheduleStatusScheduled  ScheduleStatus = "Scheduled"
	ScheduleStatusInProgress ScheduleStatus = "In Progress"
	ScheduleStatusCompleted  ScheduleStatus = "Completed"
	ScheduleStatusCancelled  ScheduleStatus = "Cancelled"
	ScheduleStatusPostponed  ScheduleStatus = "Postponed"
)

// ScheduleEntry is one duty assignment of staff to a location for a window on a date.
type ScheduleEntry struct {
	ID            string
	Title         string
	Type          ScheduleType
	Date          string
	StartTime     string
	EndTime       string
	Location      Location
	AssignedStaff []string
	Priority      SchedulePriority
	Status        ScheduleStatus
	Description   string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Window parses the entry's start and end times.
func (e ScheduleEntry) Window() (TimeWindow, error) {
	return ParseWindow(e.StartTime, e.EndTime)
}

// IsSecurity reports whether the entry counts toward coverage invariants.
func (e ScheduleEntry) IsSecurity() bool {
	return e.Type == ScheduleTypeSecurity
}

// HasStaff reports whether staffID is assigned to the entry.
func (e ScheduleEntry) HasStaff(staffID string) bool {
	for _, id := range e.AssignedStaff {
		if id == staffID {
			return true
		}
	}
	return false
}

// Clone returns a copy that does not share the staff slice.
func (e ScheduleEntry) Clone() ScheduleEntry {
	cp := e
	cp.AssignedStaff = append([]string(nil), e.AssignedStaff...)
	return cp
}
