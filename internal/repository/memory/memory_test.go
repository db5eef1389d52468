package memory

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facilityops/facility-ops/internal/domain"
	"github.com/facilityops/facility-ops/internal/repository"
)

const rosterYAML = `
staff:
  - id: cro-1
    name: Dana Reyes
    email: dana@facility.test
    role: WARDEN
    position: Prison Control Room Officer
    department: Security
  - id: sec-a1
    name: Sam Ortiz
    email: sam@facility.test
    position: Security Officer
    department: Security
    assignedBlock: Block A
  - id: med-1
    name: Kim Lee
    email: kim@facility.test
    position: Nurse
    department: Medical
  - id: gone
    name: Old Timer
    email: old@facility.test
    position: Security Officer
    department: Security
    inactive: true
`

func newEntry(date, start, end string, staff ...string) *domain.ScheduleEntry {
	return &domain.ScheduleEntry{
		Title:         "duty",
		Type:          domain.ScheduleTypeSecurity,
		Date:          date,
		StartTime:     start,
		EndTime:       end,
		Location:      domain.LocationKitchen,
		AssignedStaff: staff,
	}
}

func TestParseRoster(t *testing.T) {
	members, err := ParseRoster([]byte(rosterYAML))
	require.NoError(t, err)
	require.Len(t, members, 4)

	assert.Equal(t, "cro-1", members[0].ID)
	assert.Equal(t, domain.StaffRoleWarden, members[0].Role)
	assert.True(t, members[0].IsControlRoomOfficer())
	assert.Equal(t, domain.StaffRoleOfficer, members[1].Role)
	assert.Equal(t, "Block A", members[1].AssignedBlock)
	assert.Equal(t, domain.DepartmentMedical, members[2].Department)
	assert.False(t, members[3].Active)
}

func TestParseRoster_Invalid(t *testing.T) {
	_, err := ParseRoster([]byte("staff:\n  - name: No Email\n    position: Nurse\n    department: Medical\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")

	_, err = ParseRoster([]byte("staff:\n  - id: x\n    name: A\n    email: a@x.test\n    position: P\n    department: D\n  - id: x\n    name: B\n    email: b@x.test\n    position: P\n    department: D\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate staff id")

	_, err = ParseRoster([]byte("staff: [unterminated"))
	assert.Error(t, err)
}

func TestLoadRoster(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	require.NoError(t, os.WriteFile(path, []byte(rosterYAML), 0o600))

	members, err := LoadRoster(path)
	require.NoError(t, err)
	assert.Len(t, members, 4)

	_, err = LoadRoster(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestScheduleStore_CRUD(t *testing.T) {
	ctx := context.Background()
	store := NewScheduleStore()

	e := newEntry("2024-06-01", "09:00", "12:00", "a")
	require.NoError(t, store.Create(ctx, e))
	require.NotEmpty(t, e.ID)
	assert.False(t, e.CreatedAt.IsZero())

	got, err := store.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got.AssignedStaff)

	got.AssignedStaff[0] = "mutated"
	again, _ := store.GetByID(ctx, e.ID)
	assert.Equal(t, []string{"a"}, again.AssignedStaff, "store hands out copies")

	e.EndTime = "13:00"
	require.NoError(t, store.Update(ctx, e))
	again, _ = store.GetByID(ctx, e.ID)
	assert.Equal(t, "13:00", again.EndTime)

	require.NoError(t, store.Delete(ctx, e.ID))
	_, err = store.GetByID(ctx, e.ID)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
	assert.ErrorIs(t, store.Delete(ctx, e.ID), pgx.ErrNoRows)
	assert.ErrorIs(t, store.Update(ctx, e), pgx.ErrNoRows)
}

func TestScheduleStore_ListByDateOrdersByStart(t *testing.T) {
	ctx := context.Background()
	store := NewScheduleStore()
	late := newEntry("2024-06-01", "14:00", "15:00")
	early := newEntry("2024-06-01", "08:00", "09:00")
	tie := newEntry("2024-06-01", "14:00", "16:00")
	other := newEntry("2024-06-02", "08:00", "09:00")
	for _, e := range []*domain.ScheduleEntry{late, early, tie, other} {
		require.NoError(t, store.Create(ctx, e))
	}

	list, err := store.ListByDate(ctx, "2024-06-01")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, early.ID, list[0].ID)
	assert.Equal(t, late.ID, list[1].ID)
	assert.Equal(t, tie.ID, list[2].ID)

	empty, err := store.ListByDate(ctx, "2030-01-01")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestStaffStore_AvailabilityExcludesCommittedAndInactive(t *testing.T) {
	ctx := context.Background()
	roster, err := ParseRoster([]byte(rosterYAML))
	require.NoError(t, err)
	schedules := NewScheduleStore()
	staff := NewStaffStore(schedules, roster...)

	require.NoError(t, schedules.Create(ctx, newEntry("2024-06-01", "09:00", "12:00", "sec-a1")))

	ids, err := staff.GetAvailableStaff(ctx, "2024-06-01", "11:00", "13:00")
	require.NoError(t, err)
	assert.Equal(t, []string{"cro-1", "med-1"}, ids)

	ids, err = staff.GetAvailableStaff(ctx, "2024-06-01", "12:00", "13:00")
	require.NoError(t, err)
	assert.Equal(t, []string{"cro-1", "sec-a1", "med-1"}, ids, "adjacent window frees the staff member")

	ids, err = staff.GetAvailableStaff(ctx, "2024-06-02", "09:00", "12:00")
	require.NoError(t, err)
	assert.Len(t, ids, 3)

	_, err = staff.GetAvailableStaff(ctx, "2024-06-01", "13:00", "12:00")
	assert.Error(t, err)
}

func TestStaffStore_LookupsAndBlockAssignment(t *testing.T) {
	ctx := context.Background()
	roster, err := ParseRoster([]byte(rosterYAML))
	require.NoError(t, err)
	staff := NewStaffStore(nil, roster...)

	member, err := staff.GetByEmail(ctx, "KIM@facility.test")
	require.NoError(t, err)
	assert.Equal(t, "med-1", member.ID)

	_, err = staff.GetByID(ctx, "nobody")
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	require.NoError(t, staff.AssignBlock(ctx, "sec-a1", "Block B"))
	member, err = staff.GetByID(ctx, "sec-a1")
	require.NoError(t, err)
	assert.Equal(t, "Block B", member.AssignedBlock)
	assert.ErrorIs(t, staff.AssignBlock(ctx, "nobody", "Block B"), pgx.ErrNoRows)

	active, err := staff.ListStaff(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 3)

	security := domain.DepartmentSecurity
	filtered, err := staff.List(ctx, repository.StaffFilter{Department: &security, Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "sec-a1", filtered[0].ID)
}

func TestStaffStore_CreateAssignsID(t *testing.T) {
	staff := NewStaffStore(nil)
	member := &domain.StaffMember{Name: "New", Email: "new@facility.test", Active: true}
	require.NoError(t, staff.Create(context.Background(), member))
	assert.NotEmpty(t, member.ID)

	member.Position = "Nurse"
	require.NoError(t, staff.Update(context.Background(), member))
	got, err := staff.GetByID(context.Background(), member.ID)
	require.NoError(t, err)
	assert.Equal(t, "Nurse", got.Position)
}

func TestScheduleStore_ConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	store := NewScheduleStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Create(ctx, newEntry("2024-06-01", "09:00", "10:00"))
		}()
	}
	wg.Wait()

	list, err := store.ListByDate(ctx, "2024-06-01")
	require.NoError(t, err)
	assert.Len(t, list, 20)
}
