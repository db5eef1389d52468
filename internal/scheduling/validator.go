package scheduling

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/facilityops/facility-ops/internal/domain"
	apperrors "github.com/facilityops/facility-ops/pkg/util/errorutil"
)

// Rejection checks, reported in the "check" detail of a VALIDATION_REJECTED error.
const (
	CheckStructural  = "structural"
	CheckEligibility = "eligibility"
	CheckCapacity    = "capacity"
	CheckOverlap     = "overlap"
)

// AssignmentValidator vets a proposed entry before it is persisted. It has no side effects.
type AssignmentValidator struct {
	directory        StaffDirectory
	resolver         *AvailabilityResolver
	capacityFallback int
	logger           *zap.Logger
}

// ValidatorOptions tunes validation.
type ValidatorOptions struct {
	// CapacityFallback replaces an availability ceiling of zero when positive.
	CapacityFallback int
}

// NewAssignmentValidator builds a validator over the directory.
func NewAssignmentValidator(directory StaffDirectory, resolver *AvailabilityResolver, opts ValidatorOptions, logger *zap.Logger) *AssignmentValidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentValidator{
		directory:        directory,
		resolver:         resolver,
		capacityFallback: opts.CapacityFallback,
		logger:           logger,
	}
}

// Validate runs the structural, eligibility, capacity and overlap checks in that
// order and returns the first failure. existing holds the persisted entries for
// entry.Date; an entry sharing entry.ID is treated as the record being replaced.
func (v *AssignmentValidator) Validate(ctx context.Context, entry domain.ScheduleEntry, existing []domain.ScheduleEntry) error {
	window, err := CheckStructure(entry)
	if err != nil {
		return err
	}

	roster, err := v.directory.ListStaff(ctx)
	if err != nil {
		return apperrors.NewDirectoryUnavailable(err)
	}
	if err := checkEligibility(entry, roster); err != nil {
		return err
	}

	replaced := replacedEntry(entry, existing)
	if err := v.checkCapacity(ctx, entry, window, replaced); err != nil {
		return err
	}

	return checkOverlap(entry, window, existing)
}

// CheckStructure validates the entry's shape and returns its parsed window.
func CheckStructure(entry domain.ScheduleEntry) (domain.TimeWindow, error) {
	if _, err := domain.ParseDate(entry.Date); err != nil {
		return domain.TimeWindow{}, apperrors.NewRejected(CheckStructural, err.Error(), map[string]any{"date": entry.Date})
	}
	if _, ok := entry.Location.Category(); !ok {
		return domain.TimeWindow{}, apperrors.NewRejected(CheckStructural,
			fmt.Sprintf("Unknown location %q.", entry.Location),
			map[string]any{"location": string(entry.Location)})
	}
	window, err := entry.Window()
	if err != nil {
		msg := err.Error()
		if errors.Is(err, domain.ErrEmptyWindow) {
			msg = "Start time and end time cannot be the same."
		}
		return domain.TimeWindow{}, apperrors.NewRejected(CheckStructural, msg, map[string]any{
			"start_time": entry.StartTime,
			"end_time":   entry.EndTime,
		})
	}
	seen := make(map[string]struct{}, len(entry.AssignedStaff))
	for _, id := range entry.AssignedStaff {
		if strings.TrimSpace(id) == "" {
			return domain.TimeWindow{}, apperrors.NewRejected(CheckStructural, "Assigned staff IDs cannot be blank.", nil)
		}
		if _, dup := seen[id]; dup {
			return domain.TimeWindow{}, apperrors.NewRejected(CheckStructural,
				fmt.Sprintf("Staff %s is assigned more than once.", id),
				map[string]any{"staff_id": id})
		}
		seen[id] = struct{}{}
	}
	return window, nil
}

func checkEligibility(entry domain.ScheduleEntry, roster []domain.StaffMember) error {
	index := rosterIndex(roster)
	for _, id := range entry.AssignedStaff {
		member, ok := index[id]
		if !ok {
			return apperrors.NewRejected(CheckEligibility,
				fmt.Sprintf("Staff %s was not found in the staff directory.", id),
				map[string]any{"staff_id": id})
		}
		if reason := Ineligibility(member, entry.Location); reason != "" {
			return apperrors.NewRejected(CheckEligibility, reason, map[string]any{
				"staff_id": id,
				"location": string(entry.Location),
			})
		}
	}
	return nil
}

func (v *AssignmentValidator) checkCapacity(ctx context.Context, entry domain.ScheduleEntry, window domain.TimeWindow, replaced *domain.ScheduleEntry) error {
	available, err := v.resolver.Resolve(ctx, entry.Date, window)
	if err != nil {
		return err
	}

	// Staff on the record being replaced only look busy because of that record.
	pool := make(map[string]struct{}, len(available))
	for _, id := range available {
		pool[id] = struct{}{}
	}
	if replaced != nil {
		for _, id := range replaced.AssignedStaff {
			pool[id] = struct{}{}
		}
	}

	ceiling := len(pool)
	if ceiling == 0 && v.capacityFallback > 0 {
		v.logger.Debug("availability ceiling fell back to configured capacity",
			zap.String("date", entry.Date),
			zap.Int("fallback", v.capacityFallback))
		ceiling = v.capacityFallback
	}

	requested := len(entry.AssignedStaff)
	if requested > ceiling {
		return apperrors.NewRejected(CheckCapacity,
			fmt.Sprintf("Requested %d staff but only %d available for %s on %s.", requested, ceiling, window, entry.Date),
			map[string]any{"requested": requested, "available": ceiling})
	}
	return nil
}

func checkOverlap(entry domain.ScheduleEntry, window domain.TimeWindow, existing []domain.ScheduleEntry) error {
	for _, id := range entry.AssignedStaff {
		for _, other := range existing {
			if other.Date != entry.Date || (entry.ID != "" && other.ID == entry.ID) {
				continue
			}
			if !other.HasStaff(id) {
				continue
			}
			otherWindow, err := other.Window()
			if err != nil {
				continue
			}
			if window.Overlaps(otherWindow) {
				return apperrors.NewRejected(CheckOverlap,
					fmt.Sprintf("Staff %s is already assigned to %q at %s (%s) on %s.", id, other.Title, other.Location, otherWindow, entry.Date),
					map[string]any{"staff_id": id, "conflicting_entry_id": other.ID})
			}
		}
	}
	return nil
}

func replacedEntry(entry domain.ScheduleEntry, existing []domain.ScheduleEntry) *domain.ScheduleEntry {
	if entry.ID == "" {
		return nil
	}
	for i := range existing {
		if existing[i].ID == entry.ID {
			return &existing[i]
		}
	}
	return nil
}
