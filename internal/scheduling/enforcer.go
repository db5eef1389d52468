package scheduling

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/facilityops/facility-ops/internal/domain"
	apperrors "github.com/facilityops/facility-ops/pkg/util/errorutil"
)

// Invariant names a coverage rule the enforcer repairs.
type Invariant string

const (
	InvariantControlRoom Invariant = "control_room_single_cro"
	InvariantBlockA      Invariant = "block_a_security"
	InvariantBlockB      Invariant = "block_b_security"
)

func blockInvariant(block domain.Block) Invariant {
	if block == domain.BlockB {
		return InvariantBlockB
	}
	return InvariantBlockA
}

// ActionKind describes a corrective write.
type ActionKind string

const (
	ActionDeleted ActionKind = "deleted"
	ActionCreated ActionKind = "created"
)

// Action is one write the sweep performed.
type Action struct {
	Kind      ActionKind
	Invariant Invariant
	Entry     domain.ScheduleEntry
}

// Failure is an invariant the sweep found violated and could not repair.
type Failure struct {
	Invariant Invariant
	Location  domain.Location
	Reason    string
}

// Report summarizes one sweep.
type Report struct {
	Date     string
	Actions  []Action
	Failures []Failure
}

// Changed reports whether the sweep wrote anything.
func (r Report) Changed() bool {
	return len(r.Actions) > 0
}

// Err returns a COVERAGE_UNSATISFIABLE error when any invariant was left violated.
func (r Report) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	reasons := make([]string, 0, len(r.Failures))
	invariants := make([]string, 0, len(r.Failures))
	for _, f := range r.Failures {
		reasons = append(reasons, f.Reason)
		invariants = append(invariants, string(f.Invariant))
	}
	return apperrors.NewCoverageUnsatisfiable(strings.Join(reasons, " "), map[string]any{
		"date":       r.Date,
		"invariants": invariants,
	})
}

// CoverageEnforcer repairs the Control Room and housing block invariants for a date.
//
// A sweep is read-modify-write and not atomic: if a corrective delete succeeds and
// the following create fails, the location stays uncovered until the next sweep.
// Running a second sweep converges on the same repaired state.
type CoverageEnforcer struct {
	repo      ScheduleRepository
	directory StaffDirectory
	resolver  *AvailabilityResolver
	locker    SweepLocker
	window    domain.TimeWindow
	logger    *zap.Logger
}

// EnforcerDependencies bundles the enforcer's collaborators. Locker is optional;
// without it concurrent sweeps for one date may race. Window is the corrective
// duty window and defaults to DefaultCoverageWindow.
type EnforcerDependencies struct {
	Repo      ScheduleRepository
	Directory StaffDirectory
	Resolver  *AvailabilityResolver
	Locker    SweepLocker
	Window    domain.TimeWindow
	Logger    *zap.Logger
}

// DefaultCoverageWindow is the full-day window used for corrective entries.
var DefaultCoverageWindow = domain.TimeWindow{Start: 9 * 60, End: 21 * 60}

// NewCoverageEnforcer constructs the enforcer.
func NewCoverageEnforcer(deps EnforcerDependencies) *CoverageEnforcer {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	window := deps.Window
	if window.Validate() != nil {
		window = DefaultCoverageWindow
	}
	resolver := deps.Resolver
	if resolver == nil {
		resolver = NewAvailabilityResolver(deps.Directory, logger)
	}
	return &CoverageEnforcer{
		repo:      deps.Repo,
		directory: deps.Directory,
		resolver:  resolver,
		locker:    deps.Locker,
		window:    window,
		logger:    logger,
	}
}

// Enforce runs one sweep over date. Invariant failures are recorded in the report,
// not returned as errors; repository and roster errors abort the sweep and are
// returned alongside the actions already applied.
func (e *CoverageEnforcer) Enforce(ctx context.Context, date string) (Report, error) {
	report := Report{Date: date}
	if _, err := domain.ParseDate(date); err != nil {
		return report, apperrors.NewValidationError(err.Error(), map[string]any{"date": date})
	}

	if e.locker != nil {
		unlock, err := e.locker.Lock(ctx, date)
		if err != nil {
			return report, err
		}
		defer func() {
			if unlockErr := unlock(context.WithoutCancel(ctx)); unlockErr != nil {
				e.logger.Warn("release sweep lock", zap.String("date", date), zap.Error(unlockErr))
			}
		}()
	}

	roster, err := e.directory.ListStaff(ctx)
	if err != nil {
		return report, apperrors.NewDirectoryUnavailable(err)
	}
	index := rosterIndex(roster)

	entries, err := e.repo.ListByDate(ctx, date)
	if err != nil {
		return report, apperrors.NewRepositoryError("list", err)
	}

	if err := e.enforceControlRoom(ctx, date, entries, index, &report); err != nil {
		return report, err
	}
	for _, block := range domain.Blocks {
		if err := e.enforceBlock(ctx, date, block, entries, index, &report); err != nil {
			return report, err
		}
	}

	e.logger.Info("coverage sweep finished",
		zap.String("date", date),
		zap.Int("actions", len(report.Actions)),
		zap.Int("failures", len(report.Failures)))
	return report, nil
}

func (e *CoverageEnforcer) enforceControlRoom(ctx context.Context, date string, entries []domain.ScheduleEntry, index map[string]domain.StaffMember, report *Report) error {
	var controlRoom, security []domain.ScheduleEntry
	for _, entry := range entries {
		if entry.Location != domain.LocationControlRoom {
			continue
		}
		controlRoom = append(controlRoom, entry)
		if entry.IsSecurity() {
			security = append(security, entry)
		}
	}

	staff := OnDuty(security)
	allCRO := true
	for _, id := range staff {
		member, ok := index[id]
		if !ok || !member.IsControlRoomOfficer() {
			allCRO = false
			break
		}
	}
	if len(staff) == 1 && allCRO {
		return nil
	}

	e.logger.Info("control room coverage violated",
		zap.String("date", date),
		zap.Int("assigned", len(staff)),
		zap.Bool("all_cro", allCRO))

	for _, entry := range controlRoom {
		if err := e.repo.Delete(ctx, entry.ID); err != nil {
			return apperrors.NewRepositoryError("delete", err)
		}
		report.Actions = append(report.Actions, Action{Kind: ActionDeleted, Invariant: InvariantControlRoom, Entry: entry})
		e.logger.Info("deleted control room entry", zap.String("date", date), zap.String("entry_id", entry.ID))
	}

	available, resolveErr := e.resolver.Resolve(ctx, date, e.window)
	candidates := make([]string, 0, len(available))
	for _, id := range available {
		if member, ok := index[id]; ok && EligibleForCategory(member, domain.CategoryControlRoom) {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		e.recordFailure(report, InvariantControlRoom, domain.LocationControlRoom,
			fmt.Sprintf("No Prison Control Room Officer available for Control Room on %s %s.", date, e.window), resolveErr)
		return nil
	}

	corrective := domain.ScheduleEntry{
		Title:         "Control Room Coverage",
		Type:          domain.ScheduleTypeSecurity,
		Date:          date,
		StartTime:     e.window.StartClock(),
		EndTime:       e.window.EndClock(),
		Location:      domain.LocationControlRoom,
		AssignedStaff: []string{candidates[0]},
		Priority:      domain.SchedulePriorityHigh,
		Status:        domain.ScheduleStatusScheduled,
		Description:   "Auto-assigned by coverage enforcement: Control Room requires exactly one Prison Control Room Officer.",
	}
	return e.create(ctx, corrective, InvariantControlRoom, report)
}

func (e *CoverageEnforcer) enforceBlock(ctx context.Context, date string, block domain.Block, entries []domain.ScheduleEntry, index map[string]domain.StaffMember, report *Report) error {
	invariant := blockInvariant(block)
	covered := 0
	for _, entry := range entries {
		if entry.IsSecurity() && entry.Location.InBlock(block) {
			covered += len(entry.AssignedStaff)
		}
	}
	if covered > 0 {
		return nil
	}

	location := block.CellsLocation()
	e.logger.Info("block coverage violated", zap.String("date", date), zap.String("block", string(block)))

	available, resolveErr := e.resolver.Resolve(ctx, date, e.window)
	var chosen string
	for _, id := range available {
		if member, ok := index[id]; ok && Eligible(member, location) {
			chosen = id
			break
		}
	}
	if chosen == "" {
		e.recordFailure(report, invariant, location,
			fmt.Sprintf("No Security staff assigned to %s available on %s %s.", block, date, e.window), resolveErr)
		return nil
	}

	corrective := domain.ScheduleEntry{
		Title:         fmt.Sprintf("%s Security Coverage", block),
		Type:          domain.ScheduleTypeSecurity,
		Date:          date,
		StartTime:     e.window.StartClock(),
		EndTime:       e.window.EndClock(),
		Location:      location,
		AssignedStaff: []string{chosen},
		Priority:      domain.SchedulePriorityHigh,
		Status:        domain.ScheduleStatusScheduled,
		Description:   fmt.Sprintf("Auto-assigned by coverage enforcement: %s requires security coverage.", block),
	}
	return e.create(ctx, corrective, invariant, report)
}

func (e *CoverageEnforcer) create(ctx context.Context, entry domain.ScheduleEntry, invariant Invariant, report *Report) error {
	if err := e.repo.Create(ctx, &entry); err != nil {
		return apperrors.NewRepositoryError("create", err)
	}
	report.Actions = append(report.Actions, Action{Kind: ActionCreated, Invariant: invariant, Entry: entry})
	e.logger.Info("created corrective entry",
		zap.String("date", entry.Date),
		zap.String("entry_id", entry.ID),
		zap.String("location", string(entry.Location)),
		zap.Strings("staff", entry.AssignedStaff))
	return nil
}

func (e *CoverageEnforcer) recordFailure(report *Report, invariant Invariant, location domain.Location, reason string, cause error) {
	if cause != nil {
		reason = fmt.Sprintf("%s (%v)", reason, cause)
	}
	report.Failures = append(report.Failures, Failure{Invariant: invariant, Location: location, Reason: reason})
	e.logger.Warn("coverage unsatisfiable",
		zap.String("date", report.Date),
		zap.String("invariant", string(invariant)),
		zap.String("reason", reason))
}
