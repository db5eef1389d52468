package scheduling

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/facilityops/facility-ops/internal/domain"
)

const testDate = "2024-06-01"

var errBoom = errors.New("boom")

func cro(id string) domain.StaffMember {
	return domain.StaffMember{ID: id, Name: id, Position: "Prison Control Room Officer", Department: domain.DepartmentSecurity}
}

func guard(id, block string) domain.StaffMember {
	return domain.StaffMember{ID: id, Name: id, Position: "Security Guard", Department: domain.DepartmentSecurity, AssignedBlock: block}
}

func nurse(id string) domain.StaffMember {
	return domain.StaffMember{ID: id, Name: id, Position: "Nurse", Department: domain.DepartmentMedical}
}

func clerk(id string) domain.StaffMember {
	return domain.StaffMember{ID: id, Name: id, Position: "Clerk", Department: domain.DepartmentAdministration}
}

func entry(id string, loc domain.Location, start, end string, staff ...string) domain.ScheduleEntry {
	return domain.ScheduleEntry{
		ID:            id,
		Title:         fmt.Sprintf("%s duty", loc),
		Type:          domain.ScheduleTypeSecurity,
		Date:          testDate,
		StartTime:     start,
		EndTime:       end,
		Location:      loc,
		AssignedStaff: staff,
		Priority:      domain.SchedulePriorityMedium,
		Status:        domain.ScheduleStatusScheduled,
	}
}

// fakeRepo keeps entries in insertion order.
type fakeRepo struct {
	entries   []domain.ScheduleEntry
	nextID    int
	createErr error
	deleteErr error
	listErr   error
	creates   int
	deletes   int
}

func newFakeRepo(entries ...domain.ScheduleEntry) *fakeRepo {
	return &fakeRepo{entries: entries, nextID: len(entries) + 1}
}

func (r *fakeRepo) Create(_ context.Context, e *domain.ScheduleEntry) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.creates++
	e.ID = fmt.Sprintf("auto-%d", r.nextID)
	r.nextID++
	r.entries = append(r.entries, e.Clone())
	return nil
}

func (r *fakeRepo) Update(_ context.Context, e *domain.ScheduleEntry) error {
	for i := range r.entries {
		if r.entries[i].ID == e.ID {
			r.entries[i] = e.Clone()
			return nil
		}
	}
	return errors.New("not found")
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	for i := range r.entries {
		if r.entries[i].ID == id {
			r.deletes++
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

func (r *fakeRepo) ListByDate(_ context.Context, date string) ([]domain.ScheduleEntry, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []domain.ScheduleEntry
	for _, e := range r.entries {
		if e.Date == date {
			out = append(out, e.Clone())
		}
	}
	return out, nil
}

func (r *fakeRepo) ids() []string {
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.ID)
	}
	sort.Strings(out)
	return out
}

// fakeDirectory derives availability from the fake repository, in roster order.
type fakeDirectory struct {
	roster       []domain.StaffMember
	repo         *fakeRepo
	availableErr error
	listErr      error
	calls        int
}

func (d *fakeDirectory) GetAvailableStaff(_ context.Context, date, start, end string) ([]string, error) {
	d.calls++
	if d.availableErr != nil {
		return nil, d.availableErr
	}
	window, err := domain.ParseWindow(start, end)
	if err != nil {
		return nil, err
	}
	busy := map[string]bool{}
	if d.repo != nil {
		for _, e := range d.repo.entries {
			w, err := e.Window()
			if e.Date != date || err != nil || !w.Overlaps(window) {
				continue
			}
			for _, id := range e.AssignedStaff {
				busy[id] = true
			}
		}
	}
	var out []string
	for _, m := range d.roster {
		if !busy[m.ID] {
			out = append(out, m.ID)
		}
	}
	return out, nil
}

func (d *fakeDirectory) ListStaff(context.Context) ([]domain.StaffMember, error) {
	if d.listErr != nil {
		return nil, d.listErr
	}
	return d.roster, nil
}

type fakeLocker struct {
	locked   []string
	unlocked []string
	err      error
}

func (l *fakeLocker) Lock(_ context.Context, date string) (func(context.Context) error, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.locked = append(l.locked, date)
	return func(context.Context) error {
		l.unlocked = append(l.unlocked, date)
		return nil
	}, nil
}
