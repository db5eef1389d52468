package scheduling

import "github.com/facilityops/facility-ops/internal/domain"

// OnDuty returns the distinct staff IDs assigned across entries, in first-seen order.
func OnDuty(entries []domain.ScheduleEntry) []string {
	seen := make(map[string]struct{})
	result := make([]string, 0)
	for _, entry := range entries {
		for _, id := range entry.AssignedStaff {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			result = append(result, id)
		}
	}
	return result
}

// Headcount returns the number of distinct staff per location.
func Headcount(entries []domain.ScheduleEntry) map[domain.Location]int {
	perLocation := make(map[domain.Location]map[string]struct{})
	for _, entry := range entries {
		set, ok := perLocation[entry.Location]
		if !ok {
			set = make(map[string]struct{})
			perLocation[entry.Location] = set
		}
		for _, id := range entry.AssignedStaff {
			set[id] = struct{}{}
		}
	}
	counts := make(map[domain.Location]int, len(perLocation))
	for loc, set := range perLocation {
		counts[loc] = len(set)
	}
	return counts
}

// FreeCount is the number of roster members not on duty in entries.
func FreeCount(roster []domain.StaffMember, entries []domain.ScheduleEntry) int {
	onDuty := make(map[string]struct{})
	for _, id := range OnDuty(entries) {
		onDuty[id] = struct{}{}
	}
	free := 0
	for _, member := range roster {
		if _, busy := onDuty[member.ID]; !busy {
			free++
		}
	}
	return free
}

// CoverageSnapshot totals Security-type assigned staff per coverage category for one date.
type CoverageSnapshot struct {
	Date   string
	Totals map[domain.LocationCategory]int
}

// Snapshot aggregates entries dated date. Entries at unknown locations are ignored.
func Snapshot(date string, entries []domain.ScheduleEntry) CoverageSnapshot {
	snap := CoverageSnapshot{Date: date, Totals: make(map[domain.LocationCategory]int)}
	for _, entry := range entries {
		if entry.Date != date || !entry.IsSecurity() {
			continue
		}
		category, ok := entry.Location.Category()
		if !ok {
			continue
		}
		snap.Totals[category] += len(entry.AssignedStaff)
	}
	return snap
}

// NeedsSweep reports whether the counts alone show a possible invariant violation.
// A single non-CRO in the Control Room is not visible from counts.
func (s CoverageSnapshot) NeedsSweep() bool {
	if s.Totals[domain.CategoryControlRoom] != 1 {
		return true
	}
	for _, block := range domain.Blocks {
		if s.Totals[block.Category()] == 0 {
			return true
		}
	}
	return false
}
