// Package memory provides in-process repositories used when no database is configured.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/facilityops/facility-ops/internal/domain"
	"github.com/facilityops/facility-ops/internal/repository"
)

// ScheduleStore keeps schedule entries in memory. Missing records are reported as
// pgx.ErrNoRows so callers map them the same way as the Postgres store.
type ScheduleStore struct {
	mu      sync.RWMutex
	entries map[string]domain.ScheduleEntry
	seq     int64
	order   map[string]int64
	now     func() time.Time
}

var _ repository.ScheduleRepository = (*ScheduleStore)(nil)

// NewScheduleStore returns an empty store.
func NewScheduleStore() *ScheduleStore {
	return &ScheduleStore{
		entries: make(map[string]domain.ScheduleEntry),
		order:   make(map[string]int64),
		now:     time.Now,
	}
}

func (s *ScheduleStore) Create(_ context.Context, entry *domain.ScheduleEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.ID = uuid.NewString()
	entry.CreatedAt = s.now().UTC()
	entry.UpdatedAt = entry.CreatedAt
	s.seq++
	s.order[entry.ID] = s.seq
	s.entries[entry.ID] = entry.Clone()
	return nil
}

func (s *ScheduleStore) Update(_ context.Context, entry *domain.ScheduleEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.entries[entry.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	entry.CreatedAt = current.CreatedAt
	entry.UpdatedAt = s.now().UTC()
	s.entries[entry.ID] = entry.Clone()
	return nil
}

func (s *ScheduleStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.entries, id)
	delete(s.order, id)
	return nil
}

func (s *ScheduleStore) GetByID(_ context.Context, id string) (*domain.ScheduleEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := entry.Clone()
	return &clone, nil
}

// ListByDate returns copies ordered by start time, then insertion order.
func (s *ScheduleStore) ListByDate(_ context.Context, date string) ([]domain.ScheduleEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.ScheduleEntry, 0)
	for _, entry := range s.entries {
		if entry.Date == date {
			result = append(result, entry.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].StartTime != result[j].StartTime {
			return result[i].StartTime < result[j].StartTime
		}
		return s.order[result[i].ID] < s.order[result[j].ID]
	})
	return result, nil
}

// busy returns the staff committed to an entry on date overlapping window.
func (s *ScheduleStore) busy(date string, window domain.TimeWindow) map[string]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	busy := make(map[string]struct{})
	for _, entry := range s.entries {
		if entry.Date != date {
			continue
		}
		w, err := entry.Window()
		if err != nil || !w.Overlaps(window) {
			continue
		}
		for _, id := range entry.AssignedStaff {
			busy[id] = struct{}{}
		}
	}
	return busy
}
