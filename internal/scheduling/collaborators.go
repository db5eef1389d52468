// Package scheduling decides which staff may cover a facility location, validates
// proposed schedule entries, and repairs coverage invariants for a single day.
//
// Every operation runs synchronously and holds no state between calls; the only
// shared state lives behind StaffDirectory and ScheduleRepository.
package scheduling

import (
	"context"

	"github.com/facilityops/facility-ops/internal/domain"
)

// StaffDirectory is the source of truth for staff attributes and availability.
type StaffDirectory interface {
	// GetAvailableStaff returns staff with no commitment overlapping [start, end) on date.
	GetAvailableStaff(ctx context.Context, date, startTime, endTime string) ([]string, error)
	// ListStaff returns a full roster snapshot.
	ListStaff(ctx context.Context) ([]domain.StaffMember, error)
}

// ScheduleRepository persists schedule entries. Create fills entry.ID.
type ScheduleRepository interface {
	Create(ctx context.Context, entry *domain.ScheduleEntry) error
	Update(ctx context.Context, entry *domain.ScheduleEntry) error
	Delete(ctx context.Context, id string) error
	ListByDate(ctx context.Context, date string) ([]domain.ScheduleEntry, error)
}

// SweepLocker serializes enforcement sweeps for one date across processes.
type SweepLocker interface {
	Lock(ctx context.Context, date string) (unlock func(context.Context) error, err error)
}

func rosterIndex(roster []domain.StaffMember) map[string]domain.StaffMember {
	index := make(map[string]domain.StaffMember, len(roster))
	for _, member := range roster {
		index[member.ID] = member
	}
	return index
}
