package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/facilityops/facility-ops/internal/config"
	"github.com/facilityops/facility-ops/internal/domain"
	"github.com/facilityops/facility-ops/internal/events"
	"github.com/facilityops/facility-ops/internal/observability"
	"github.com/facilityops/facility-ops/internal/repository"
	"github.com/facilityops/facility-ops/internal/scheduling"
	apperrors "github.com/facilityops/facility-ops/pkg/util/errorutil"
)

// ScheduleService runs the validate, commit and enforce pipeline for schedule entries.
type ScheduleService struct {
	schedules   repository.ScheduleRepository
	staff       repository.StaffRepository
	validator   *scheduling.AssignmentValidator
	enforcer    *scheduling.CoverageEnforcer
	dispatcher  events.Dispatcher
	metrics     *observability.Metrics
	logger      *zap.Logger
	autoEnforce bool
}

// ScheduleDependencies bundles collaborators for the schedule service.
type ScheduleDependencies struct {
	ScheduleRepo repository.ScheduleRepository
	StaffRepo    repository.StaffRepository
	Locker       scheduling.SweepLocker
	Dispatcher   events.Dispatcher
	Metrics      *observability.Metrics
	Logger       *zap.Logger
}

// ScheduleInput is a proposed entry as submitted by an operator.
type ScheduleInput struct {
	Title         string
	Type          domain.ScheduleType
	Date          string
	StartTime     string
	EndTime       string
	Location      string
	AssignedStaff []string
	Priority      domain.SchedulePriority
	Status        domain.ScheduleStatus
	Description   string
}

// CommitResult is the outcome of a create or update. Report is set when the
// post-commit sweep ran; PreviousDateReport when an update moved the entry off a
// date and that date was swept too. SweepErr holds a sweep failure that did not
// undo the commit.
type CommitResult struct {
	Entry              domain.ScheduleEntry
	Report             *scheduling.Report
	PreviousDateReport *scheduling.Report
	SweepErr           error
}

// DaySummary drives the schedule view's headcount panel.
type DaySummary struct {
	Date                 string
	Entries              int
	OnDuty               []string
	Headcount            map[domain.Location]int
	Coverage             scheduling.CoverageSnapshot
	NeedsSweep           bool
	FreeStaff            int
	DirectoryUnavailable bool
}

// NewScheduleService constructs the service.
func NewScheduleService(cfg config.Config, deps ScheduleDependencies) *ScheduleService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	window, err := cfg.Scheduling.CoverageWindow()
	if err != nil {
		window = scheduling.DefaultCoverageWindow
	}

	resolver := scheduling.NewAvailabilityResolver(deps.StaffRepo, logger)
	return &ScheduleService{
		schedules: deps.ScheduleRepo,
		staff:     deps.StaffRepo,
		validator: scheduling.NewAssignmentValidator(deps.StaffRepo, resolver, scheduling.ValidatorOptions{
			CapacityFallback: cfg.Scheduling.CapacityFallback,
		}, logger),
		enforcer: scheduling.NewCoverageEnforcer(scheduling.EnforcerDependencies{
			Repo:      deps.ScheduleRepo,
			Directory: deps.StaffRepo,
			Resolver:  resolver,
			Locker:    deps.Locker,
			Window:    window,
			Logger:    logger,
		}),
		dispatcher:  deps.Dispatcher,
		metrics:     deps.Metrics,
		logger:      logger,
		autoEnforce: cfg.Scheduling.AutoEnforce,
	}
}

// List returns the entries for date.
func (s *ScheduleService) List(ctx context.Context, date string) ([]domain.ScheduleEntry, error) {
	if _, err := domain.ParseDate(date); err != nil {
		return nil, apperrors.NewValidationError(err.Error(), map[string]any{"date": date})
	}
	entries, err := s.schedules.ListByDate(ctx, date)
	if err != nil {
		return nil, apperrors.NewRepositoryError("list", err)
	}
	return entries, nil
}

// Get fetches one entry.
func (s *ScheduleService) Get(ctx context.Context, id string) (*domain.ScheduleEntry, error) {
	entry, err := s.schedules.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "schedule entry", id)
	}
	return entry, nil
}

// Validate is a dry run of the checks Create and Update apply. id is empty for a new entry.
func (s *ScheduleService) Validate(ctx context.Context, id string, input ScheduleInput) error {
	entry := buildEntry(input)
	entry.ID = id
	return s.validate(ctx, entry)
}

// Create validates and persists a new entry, then sweeps coverage when needed.
func (s *ScheduleService) Create(ctx context.Context, actor *domain.StaffMember, input ScheduleInput) (*CommitResult, error) {
	entry := buildEntry(input)
	if err := s.validate(ctx, entry); err != nil {
		return nil, err
	}
	if err := s.schedules.Create(ctx, &entry); err != nil {
		return nil, apperrors.NewRepositoryError("create", err)
	}
	s.logger.Info("schedule entry created",
		zap.String("entry_id", entry.ID),
		zap.String("date", entry.Date),
		zap.String("location", string(entry.Location)))
	s.publish(ctx, events.EventScheduleEntryCreated, entry.Date, actorOf(actor), entryPayload(entry))

	result := &CommitResult{Entry: entry}
	s.afterCommit(ctx, actor, entry, result)
	return result, nil
}

// Update replaces an existing entry after validating it against the rest of its date.
func (s *ScheduleService) Update(ctx context.Context, actor *domain.StaffMember, id string, input ScheduleInput) (*CommitResult, error) {
	current, err := s.schedules.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "schedule entry", id)
	}

	entry := buildEntry(input)
	entry.ID = id
	entry.CreatedAt = current.CreatedAt
	if err := s.validate(ctx, entry); err != nil {
		return nil, err
	}
	if err := s.schedules.Update(ctx, &entry); err != nil {
		return nil, notFoundOr(err, "schedule entry", id)
	}
	s.logger.Info("schedule entry updated", zap.String("entry_id", entry.ID), zap.String("date", entry.Date))
	s.publish(ctx, events.EventScheduleEntryUpdated, entry.Date, actorOf(actor), entryPayload(entry))

	result := &CommitResult{Entry: entry}
	s.afterCommit(ctx, actor, entry, result)
	if s.autoEnforce && current.Date != entry.Date && result.SweepErr == nil {
		// Moving an entry off a date can leave the old date uncovered.
		result.PreviousDateReport, result.SweepErr = s.sweepIfNeeded(ctx, actor, *current)
	}
	return result, nil
}

// Delete removes an entry. Deletion does not trigger a sweep.
func (s *ScheduleService) Delete(ctx context.Context, actor *domain.StaffMember, id string) error {
	current, err := s.schedules.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "schedule entry", id)
	}
	if err := s.schedules.Delete(ctx, id); err != nil {
		return notFoundOr(err, "schedule entry", id)
	}
	s.logger.Info("schedule entry deleted", zap.String("entry_id", id), zap.String("date", current.Date))
	s.publish(ctx, events.EventScheduleEntryDeleted, current.Date, actorOf(actor), entryPayload(*current))
	return nil
}

// Enforce runs an explicit coverage sweep for date.
func (s *ScheduleService) Enforce(ctx context.Context, actor *domain.StaffMember, date string) (scheduling.Report, error) {
	report, err := s.enforcer.Enforce(ctx, date)
	s.recordSweep(ctx, actor, report, err)
	return report, err
}

// Summary aggregates the entries of date. A failed roster lookup leaves FreeStaff at zero.
func (s *ScheduleService) Summary(ctx context.Context, date string) (*DaySummary, error) {
	entries, err := s.List(ctx, date)
	if err != nil {
		return nil, err
	}
	coverage := scheduling.Snapshot(date, entries)
	summary := &DaySummary{
		Date:       date,
		Entries:    len(entries),
		OnDuty:     scheduling.OnDuty(entries),
		Headcount:  scheduling.Headcount(entries),
		Coverage:   coverage,
		NeedsSweep: coverage.NeedsSweep(),
	}

	roster, err := s.staff.ListStaff(ctx)
	if err != nil {
		s.logger.Warn("roster lookup failed for summary", zap.String("date", date), zap.Error(err))
		summary.DirectoryUnavailable = true
		return summary, nil
	}
	summary.FreeStaff = scheduling.FreeCount(roster, entries)
	return summary, nil
}

func (s *ScheduleService) validate(ctx context.Context, entry domain.ScheduleEntry) error {
	if _, err := scheduling.CheckStructure(entry); err != nil {
		s.recordValidation(err)
		return err
	}
	existing, err := s.schedules.ListByDate(ctx, entry.Date)
	if err != nil {
		return apperrors.NewRepositoryError("list", err)
	}
	err = s.validator.Validate(ctx, entry, existing)
	s.recordValidation(err)
	if err != nil {
		s.logger.Info("schedule entry rejected",
			zap.String("date", entry.Date),
			zap.String("location", string(entry.Location)),
			zap.Error(err))
	}
	return err
}

func (s *ScheduleService) afterCommit(ctx context.Context, actor *domain.StaffMember, entry domain.ScheduleEntry, result *CommitResult) {
	if !s.autoEnforce {
		return
	}
	result.Report, result.SweepErr = s.sweepIfNeeded(ctx, actor, entry)
}

// sweepIfNeeded runs Enforce on the entry's date when counts show a possible violation
// or the entry touches the Control Room, where a lone non-CRO is invisible to counts.
// The report is nil when no sweep ran.
func (s *ScheduleService) sweepIfNeeded(ctx context.Context, actor *domain.StaffMember, entry domain.ScheduleEntry) (*scheduling.Report, error) {
	entries, err := s.schedules.ListByDate(ctx, entry.Date)
	if err != nil {
		return nil, apperrors.NewRepositoryError("list", err)
	}
	if !scheduling.Snapshot(entry.Date, entries).NeedsSweep() && entry.Location != domain.LocationControlRoom {
		return nil, nil
	}

	report, err := s.enforcer.Enforce(ctx, entry.Date)
	s.recordSweep(ctx, actor, report, err)
	if err != nil {
		s.logger.Error("post-commit coverage sweep failed", zap.String("date", entry.Date), zap.Error(err))
	}
	return &report, err
}

func (s *ScheduleService) recordValidation(err error) {
	outcome := "accepted"
	if err != nil {
		domainErr := apperrors.ToDomainError(err)
		outcome = strings.ToLower(domainErr.Code)
		if check, ok := domainErr.Details["check"].(string); ok {
			outcome = check
		}
	}
	s.metrics.RecordValidation(outcome)
}

func (s *ScheduleService) recordSweep(ctx context.Context, actor *domain.StaffMember, report scheduling.Report, err error) {
	switch {
	case err != nil:
		s.metrics.RecordSweep(observability.SweepFailed)
	case len(report.Failures) > 0:
		s.metrics.RecordSweep(observability.SweepUnsatisfiable)
	case report.Changed():
		s.metrics.RecordSweep(observability.SweepRepaired)
	default:
		s.metrics.RecordSweep(observability.SweepClean)
	}

	eventActor := systemActor(actor)
	if err == nil && !report.Changed() && len(report.Failures) == 0 {
		s.publish(ctx, events.EventCoverageSatisfied, report.Date, eventActor, nil)
		return
	}
	if report.Changed() {
		payload := events.CoverageRepairedPayload{Actions: make([]events.CoverageAction, 0, len(report.Actions))}
		for _, action := range report.Actions {
			payload.Actions = append(payload.Actions, events.CoverageAction{
				Kind:      string(action.Kind),
				Invariant: string(action.Invariant),
				EntryID:   action.Entry.ID,
				Location:  action.Entry.Location,
				Staff:     action.Entry.AssignedStaff,
			})
		}
		s.publish(ctx, events.EventCoverageRepaired, report.Date, eventActor, payload)
	}
	if len(report.Failures) > 0 {
		payload := events.CoverageUnsatisfiablePayload{}
		for _, failure := range report.Failures {
			payload.Invariants = append(payload.Invariants, string(failure.Invariant))
			payload.Reasons = append(payload.Reasons, failure.Reason)
		}
		s.publish(ctx, events.EventCoverageUnsatisfiable, report.Date, eventActor, payload)
	}
}

func (s *ScheduleService) publish(ctx context.Context, eventType events.EventType, date string, actor events.Actor, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, events.NewEvent(eventType, date, actor, payload)); err != nil {
		s.logger.Warn("publish event", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}

func buildEntry(input ScheduleInput) domain.ScheduleEntry {
	location := domain.Location(strings.TrimSpace(input.Location))
	if parsed, ok := domain.ParseLocation(input.Location); ok {
		location = parsed
	}
	entry := domain.ScheduleEntry{
		Title:         strings.TrimSpace(input.Title),
		Type:          input.Type,
		Date:          strings.TrimSpace(input.Date),
		StartTime:     strings.TrimSpace(input.StartTime),
		EndTime:       strings.TrimSpace(input.EndTime),
		Location:      location,
		AssignedStaff: append([]string{}, input.AssignedStaff...),
		Priority:      input.Priority,
		Status:        input.Status,
		Description:   input.Description,
	}
	if entry.Type == "" {
		entry.Type = domain.ScheduleTypeSecurity
	}
	if entry.Priority == "" {
		entry.Priority = domain.SchedulePriorityMedium
	}
	if entry.Status == "" {
		entry.Status = domain.ScheduleStatusScheduled
	}
	return entry
}

func entryPayload(entry domain.ScheduleEntry) events.ScheduleEntryPayload {
	return events.ScheduleEntryPayload{
		EntryID:       entry.ID,
		Title:         entry.Title,
		Location:      entry.Location,
		StartTime:     entry.StartTime,
		EndTime:       entry.EndTime,
		AssignedStaff: entry.AssignedStaff,
	}
}

func actorOf(actor *domain.StaffMember) events.Actor {
	if actor == nil {
		return events.Actor{Type: domain.SubjectTypeSystem}
	}
	id := actor.ID
	return events.Actor{Type: domain.SubjectTypeStaff, StaffID: &id}
}

// systemActor attributes sweep events to the system, keeping the triggering staff ID when known.
func systemActor(actor *domain.StaffMember) events.Actor {
	a := actorOf(actor)
	a.Type = domain.SubjectTypeSystem
	return a
}

// notFoundOr maps a missing record to NOT_FOUND and anything else to a repository error.
func notFoundOr(err error, resource, id string) error {
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	if apperrors.ToDomainError(err).Code == apperrors.CodeNotFound {
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return apperrors.NewRepositoryError("lookup", err)
}
