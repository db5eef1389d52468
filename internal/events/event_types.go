package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/facilityops/facility-ops/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventScheduleEntryCreated  EventType = "schedule_entry_created"
	EventScheduleEntryUpdated  EventType = "schedule_entry_updated"
	EventScheduleEntryDeleted  EventType = "schedule_entry_deleted"
	EventCoverageRepaired      EventType = "coverage_repaired"
	EventCoverageUnsatisfiable EventType = "coverage_unsatisfiable"
	EventCoverageSatisfied     EventType = "coverage_satisfied"
	EventStaffBlockAssigned    EventType = "staff_block_assigned"
)

// Actor encapsulates actor metadata for an event. System-initiated events have no StaffID.
type Actor struct {
	Type    domain.SubjectType `json:"type"`
	StaffID *string            `json:"staff_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Date      string      `json:"date"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// NewEvent stamps an event with a fresh ID and the current time.
func NewEvent(eventType EventType, date string, actor Actor, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Date:      date,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// ScheduleEntryPayload carries the entry affected by a create, update or delete.
type ScheduleEntryPayload struct {
	EntryID       string          `json:"entry_id"`
	Title         string          `json:"title"`
	Location      domain.Location `json:"location"`
	StartTime     string          `json:"start_time"`
	EndTime       string          `json:"end_time"`
	AssignedStaff []string        `json:"assigned_staff"`
}

// CoverageAction is one corrective write reported in a CoverageRepairedPayload.
type CoverageAction struct {
	Kind      string          `json:"kind"`
	Invariant string          `json:"invariant"`
	EntryID   string          `json:"entry_id"`
	Location  domain.Location `json:"location"`
	Staff     []string        `json:"staff"`
}

// CoverageRepairedPayload lists the writes a sweep made.
type CoverageRepairedPayload struct {
	Actions []CoverageAction `json:"actions"`
}

// CoverageUnsatisfiablePayload lists invariants a sweep could not repair.
type CoverageUnsatisfiablePayload struct {
	Invariants []string `json:"invariants"`
	Reasons    []string `json:"reasons"`
}

// StaffBlockAssignedPayload records a block reassignment.
type StaffBlockAssignedPayload struct {
	StaffID  string `json:"staff_id"`
	OldBlock string `json:"old_block"`
	NewBlock string `json:"new_block"`
}
