package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/facilityops/facility-ops/internal/domain"
	"github.com/facilityops/facility-ops/internal/events"
	"github.com/facilityops/facility-ops/internal/repository"
	"github.com/facilityops/facility-ops/internal/scheduling"
	apperrors "github.com/facilityops/facility-ops/pkg/util/errorutil"
)

// StaffService exposes the roster and the operator's staff picker.
type StaffService struct {
	staff      repository.StaffRepository
	resolver   *scheduling.AvailabilityResolver
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// StaffDependencies encapsulates collaborators required for staff queries.
type StaffDependencies struct {
	StaffRepo  repository.StaffRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// StaffListFilters define listing parameters.
type StaffListFilters struct {
	Role          *domain.StaffRole
	Department    *domain.Department
	AssignedBlock *string
	Active        *bool
	Limit         int
	Offset        int
}

// AvailableQuery asks who can be offered for a location and window.
type AvailableQuery struct {
	Date      string
	StartTime string
	EndTime   string
	Location  string
}

// AvailableStaff is the picker list. When the directory could not be reached the
// list is empty and DirectoryUnavailable is set.
type AvailableStaff struct {
	Staff                []domain.StaffMember
	Location             domain.Location
	DirectoryUnavailable bool
}

// NewStaffService constructs the service.
func NewStaffService(deps StaffDependencies) *StaffService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StaffService{
		staff:      deps.StaffRepo,
		resolver:   scheduling.NewAvailabilityResolver(deps.StaffRepo, logger),
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// ListStaffMembers lists staff with filters.
func (s *StaffService) ListStaffMembers(ctx context.Context, filters StaffListFilters) ([]domain.StaffMember, error) {
	members, err := s.staff.List(ctx, repository.StaffFilter{
		Role:          filters.Role,
		Department:    filters.Department,
		AssignedBlock: filters.AssignedBlock,
		Active:        filters.Active,
		Limit:         filters.Limit,
		Offset:        filters.Offset,
	})
	if err != nil {
		return nil, apperrors.NewDirectoryUnavailable(err)
	}
	return members, nil
}

// GetStaffMemberByID fetches staff.
func (s *StaffService) GetStaffMemberByID(ctx context.Context, id string) (*domain.StaffMember, error) {
	member, err := s.staff.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "staff member", id)
	}
	return member, nil
}

// Available returns free staff for the window, narrowed to those eligible for the
// location when one is given. Directory failures yield an empty list, not an error.
func (s *StaffService) Available(ctx context.Context, query AvailableQuery) (*AvailableStaff, error) {
	if _, err := domain.ParseDate(query.Date); err != nil {
		return nil, apperrors.NewValidationError(err.Error(), map[string]any{"date": query.Date})
	}
	window, err := domain.ParseWindow(query.StartTime, query.EndTime)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), map[string]any{
			"start_time": query.StartTime,
			"end_time":   query.EndTime,
		})
	}

	result := &AvailableStaff{Staff: []domain.StaffMember{}}
	if strings.TrimSpace(query.Location) != "" {
		location, ok := domain.ParseLocation(query.Location)
		if !ok {
			return nil, apperrors.NewValidationError("unknown location", map[string]any{"location": query.Location})
		}
		result.Location = location
	}

	ids, err := s.resolver.Resolve(ctx, query.Date, window)
	if err != nil {
		result.DirectoryUnavailable = true
		return result, nil
	}
	roster, err := s.staff.ListStaff(ctx)
	if err != nil {
		s.logger.Warn("roster lookup failed", zap.Error(err))
		result.DirectoryUnavailable = true
		return result, nil
	}

	if result.Location != "" {
		ids = scheduling.FilterEligible(ids, roster, result.Location)
	}
	index := make(map[string]domain.StaffMember, len(roster))
	for _, member := range roster {
		index[member.ID] = member
	}
	for _, id := range ids {
		if member, ok := index[id]; ok {
			result.Staff = append(result.Staff, member)
		}
	}
	return result, nil
}

// AssignBlock moves a staff member to a housing block through the directory.
// An empty block clears the assignment.
func (s *StaffService) AssignBlock(ctx context.Context, actor *domain.StaffMember, staffID, block string) (*domain.StaffMember, error) {
	member, err := s.staff.GetByID(ctx, staffID)
	if err != nil {
		return nil, notFoundOr(err, "staff member", staffID)
	}
	block = strings.TrimSpace(block)
	if block != "" && !knownBlock(block) {
		return nil, apperrors.NewValidationError("unknown block", map[string]any{"block": block})
	}

	old := member.AssignedBlock
	if err := s.staff.AssignBlock(ctx, staffID, block); err != nil {
		return nil, notFoundOr(err, "staff member", staffID)
	}
	member.AssignedBlock = block

	s.logger.Info("staff assigned to block",
		zap.String("staff_id", staffID),
		zap.String("old_block", old),
		zap.String("new_block", block))
	if s.dispatcher != nil {
		event := events.NewEvent(events.EventStaffBlockAssigned, "", actorOf(actor), events.StaffBlockAssignedPayload{
			StaffID:  staffID,
			OldBlock: old,
			NewBlock: block,
		})
		if err := s.dispatcher.Publish(ctx, event); err != nil {
			s.logger.Warn("publish event", zap.Error(err))
		}
	}
	return member, nil
}

func knownBlock(block string) bool {
	key := domain.NormalizeBlock(block)
	for _, b := range domain.Blocks {
		if key == b.Key() {
			return true
		}
	}
	return false
}
