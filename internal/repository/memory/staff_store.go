package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/facilityops/facility-ops/internal/domain"
	"github.com/facilityops/facility-ops/internal/repository"
)

// StaffStore is an in-memory staff directory. Availability is derived from the
// schedule store it is paired with.
type StaffStore struct {
	mu        sync.RWMutex
	staff     []domain.StaffMember
	schedules *ScheduleStore
	now       func() time.Time
}

var _ repository.StaffRepository = (*StaffStore)(nil)

// NewStaffStore returns a directory seeded with roster, kept in the given order.
func NewStaffStore(schedules *ScheduleStore, roster ...domain.StaffMember) *StaffStore {
	s := &StaffStore{schedules: schedules, now: time.Now}
	for _, member := range roster {
		if member.ID == "" {
			member.ID = uuid.NewString()
		}
		s.staff = append(s.staff, member)
	}
	return s
}

func (s *StaffStore) Create(_ context.Context, staff *domain.StaffMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if staff.ID == "" {
		staff.ID = uuid.NewString()
	}
	staff.CreatedAt = s.now().UTC()
	staff.UpdatedAt = staff.CreatedAt
	s.staff = append(s.staff, *staff)
	return nil
}

func (s *StaffStore) Update(_ context.Context, staff *domain.StaffMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(staff.ID)
	if i < 0 {
		return pgx.ErrNoRows
	}
	staff.CreatedAt = s.staff[i].CreatedAt
	staff.UpdatedAt = s.now().UTC()
	s.staff[i] = *staff
	return nil
}

func (s *StaffStore) GetByID(_ context.Context, id string) (*domain.StaffMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, pgx.ErrNoRows
	}
	member := s.staff[i]
	return &member, nil
}

func (s *StaffStore) GetByEmail(_ context.Context, email string) (*domain.StaffMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, member := range s.staff {
		if strings.EqualFold(member.Email, email) {
			m := member
			return &m, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *StaffStore) List(_ context.Context, filter repository.StaffFilter) ([]domain.StaffMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []domain.StaffMember
	for _, member := range s.staff {
		if filter.Role != nil && member.Role != *filter.Role {
			continue
		}
		if filter.Department != nil && !strings.EqualFold(string(member.Department), string(*filter.Department)) {
			continue
		}
		if filter.AssignedBlock != nil && member.AssignedBlock != *filter.AssignedBlock {
			continue
		}
		if filter.Active != nil && member.Active != *filter.Active {
			continue
		}
		matched = append(matched, member)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(matched) {
		return []domain.StaffMember{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

// ListStaff returns the active roster in seed order.
func (s *StaffStore) ListStaff(context.Context) ([]domain.StaffMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.StaffMember, 0, len(s.staff))
	for _, member := range s.staff {
		if member.Active {
			result = append(result, member)
		}
	}
	return result, nil
}

// GetAvailableStaff returns active staff not committed to an overlapping entry on date.
func (s *StaffStore) GetAvailableStaff(ctx context.Context, date, startTime, endTime string) ([]string, error) {
	window, err := domain.ParseWindow(startTime, endTime)
	if err != nil {
		return nil, err
	}
	if _, err := domain.ParseDate(date); err != nil {
		return nil, err
	}

	busy := map[string]struct{}{}
	if s.schedules != nil {
		busy = s.schedules.busy(date, window)
	}

	roster, _ := s.ListStaff(ctx)
	ids := make([]string, 0, len(roster))
	for _, member := range roster {
		if _, taken := busy[member.ID]; !taken {
			ids = append(ids, member.ID)
		}
	}
	return ids, nil
}

func (s *StaffStore) AssignBlock(_ context.Context, id, block string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return pgx.ErrNoRows
	}
	s.staff[i].AssignedBlock = block
	s.staff[i].UpdatedAt = s.now().UTC()
	return nil
}

func (s *StaffStore) indexOf(id string) int {
	for i := range s.staff {
		if s.staff[i].ID == id {
			return i
		}
	}
	return -1
}
