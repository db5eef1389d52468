package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/facilityops/facility-ops/internal/auth"
	"github.com/facilityops/facility-ops/internal/config"
	"github.com/facilityops/facility-ops/internal/domain"
	"github.com/facilityops/facility-ops/internal/events"
	"github.com/facilityops/facility-ops/internal/observability"
	"github.com/facilityops/facility-ops/internal/repository/memory"
	"github.com/facilityops/facility-ops/internal/scheduling"
	apperrors "github.com/facilityops/facility-ops/pkg/util/errorutil"
)

const day = "2024-06-01"

var errDirectoryDown = errors.New("directory down")

type testEnv struct {
	schedules *memory.ScheduleStore
	staff     *memory.StaffStore
	metrics   *observability.Metrics
	published []events.Event
	service   *ScheduleService
	staffSvc  *StaffService
	warden    *domain.StaffMember
}

func member(id, position string, dept domain.Department, block string) domain.StaffMember {
	return domain.StaffMember{
		ID:            id,
		Name:          id,
		Email:         id + "@facility.test",
		Role:          domain.StaffRoleOfficer,
		Position:      position,
		Department:    dept,
		AssignedBlock: block,
		Active:        true,
	}
}

func defaultRoster() []domain.StaffMember {
	warden := member("w1", "Warden", domain.DepartmentAdministration, "")
	warden.Role = domain.StaffRoleWarden
	return []domain.StaffMember{
		member("c1", "Prison Control Room Officer", domain.DepartmentSecurity, ""),
		member("ga", "Security Officer", domain.DepartmentSecurity, "Block A"),
		member("gb", "Security Officer", domain.DepartmentSecurity, "Block-B"),
		member("g3", "Security Officer", domain.DepartmentSecurity, ""),
		member("n1", "Nurse", domain.DepartmentMedical, ""),
		warden,
	}
}

func testConfig(autoEnforce bool) config.Config {
	return config.Config{
		Auth: config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 5, BcryptCost: bcrypt.MinCost},
		Scheduling: config.SchedulingConfig{
			DefaultStart: "09:00",
			DefaultEnd:   "21:00",
			AutoEnforce:  autoEnforce,
		},
	}
}

func newTestEnv(t *testing.T, autoEnforce bool, roster ...domain.StaffMember) *testEnv {
	t.Helper()
	if len(roster) == 0 {
		roster = defaultRoster()
	}
	env := &testEnv{metrics: observability.NewMetrics()}
	env.schedules = memory.NewScheduleStore()
	env.staff = memory.NewStaffStore(env.schedules, roster...)

	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	for _, eventType := range []events.EventType{
		events.EventScheduleEntryCreated,
		events.EventScheduleEntryUpdated,
		events.EventScheduleEntryDeleted,
		events.EventCoverageRepaired,
		events.EventCoverageUnsatisfiable,
		events.EventCoverageSatisfied,
		events.EventStaffBlockAssigned,
	} {
		dispatcher.Subscribe(eventType, func(_ context.Context, e events.Event) error {
			env.published = append(env.published, e)
			return nil
		})
	}

	env.service = NewScheduleService(testConfig(autoEnforce), ScheduleDependencies{
		ScheduleRepo: env.schedules,
		StaffRepo:    env.staff,
		Dispatcher:   dispatcher,
		Metrics:      env.metrics,
		Logger:       zap.NewNop(),
	})
	env.staffSvc = NewStaffService(StaffDependencies{StaffRepo: env.staff, Dispatcher: dispatcher, Logger: zap.NewNop()})
	env.warden, _ = env.staff.GetByID(context.Background(), "w1")
	return env
}

func (e *testEnv) eventTypes() []events.EventType {
	types := make([]events.EventType, 0, len(e.published))
	for _, ev := range e.published {
		types = append(types, ev.Type)
	}
	return types
}

func (e *testEnv) entries(t *testing.T) []domain.ScheduleEntry {
	t.Helper()
	list, err := e.schedules.ListByDate(context.Background(), day)
	require.NoError(t, err)
	return list
}

func input(location, start, end string, staff ...string) ScheduleInput {
	return ScheduleInput{
		Title:         location + " shift",
		Type:          domain.ScheduleTypeSecurity,
		Date:          day,
		StartTime:     start,
		EndTime:       end,
		Location:      location,
		AssignedStaff: staff,
	}
}

func TestCreate_RejectsNonCROInControlRoom(t *testing.T) {
	env := newTestEnv(t, true)

	_, err := env.service.Create(context.Background(), env.warden, input("Control Room", "09:00", "17:00", "g3"))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidationRejected))
	assert.Contains(t, err.Error(), "Only Prison Control Room Officer can work in Control Room.")
	assert.Empty(t, env.entries(t))
	assert.Empty(t, env.published)
	assert.Equal(t, int64(1), env.metrics.Snapshot().Validations[scheduling.CheckEligibility])
}

func TestCreate_SweepsCoverageAfterCommit(t *testing.T) {
	env := newTestEnv(t, true)

	result, err := env.service.Create(context.Background(), env.warden, input("block a - yard", "09:00", "12:00", "ga"))
	require.NoError(t, err)
	assert.NotEmpty(t, result.Entry.ID)
	assert.Equal(t, domain.LocationBlockAYard, result.Entry.Location, "location text is normalized to the catalogue")
	assert.Equal(t, domain.SchedulePriorityMedium, result.Entry.Priority)
	assert.NoError(t, result.SweepErr)

	require.NotNil(t, result.Report)
	require.Len(t, result.Report.Actions, 2)
	assert.Equal(t, scheduling.InvariantControlRoom, result.Report.Actions[0].Invariant)
	assert.Equal(t, []string{"c1"}, result.Report.Actions[0].Entry.AssignedStaff)
	assert.Equal(t, domain.LocationBlockBCells, result.Report.Actions[1].Entry.Location)
	assert.Equal(t, []string{"gb"}, result.Report.Actions[1].Entry.AssignedStaff)

	assert.Len(t, env.entries(t), 3)
	assert.Equal(t, []events.EventType{events.EventScheduleEntryCreated, events.EventCoverageRepaired}, env.eventTypes())
	assert.Equal(t, int64(1), env.metrics.Snapshot().Sweeps[observability.SweepRepaired])

	// The repaired date no longer needs a sweep.
	again, err := env.service.Create(context.Background(), env.warden, input("Kitchen", "13:00", "15:00", "g3"))
	require.NoError(t, err)
	assert.Nil(t, again.Report)
}

func TestCreate_OverlapAndUpdateOfSelf(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	first, err := env.service.Create(ctx, env.warden, input("Block A - Yard", "09:00", "12:00", "ga"))
	require.NoError(t, err)
	assert.Nil(t, first.Report, "auto enforcement disabled")

	_, err = env.service.Create(ctx, env.warden, input("Block A - Cells", "11:00", "14:00", "ga"))
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, apperrors.CodeValidationRejected, domainErr.Code)
	assert.Equal(t, scheduling.CheckOverlap, domainErr.Details["check"])

	_, err = env.service.Create(ctx, env.warden, input("Block A - Cells", "12:00", "14:00", "ga"))
	assert.NoError(t, err, "adjacent windows do not conflict")

	updated, err := env.service.Update(ctx, env.warden, first.Entry.ID, input("Block A - Yard", "08:00", "12:00", "ga"))
	require.NoError(t, err)
	assert.Equal(t, "08:00", updated.Entry.StartTime)

	_, err = env.service.Update(ctx, env.warden, first.Entry.ID, input("Block A - Yard", "08:00", "13:00", "ga"))
	require.Error(t, err)
	assert.Equal(t, scheduling.CheckOverlap, apperrors.ToDomainError(err).Details["check"])
}

func TestUpdate_MovingEntryOffDateRepairsPreviousDate(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()

	created, err := env.service.Create(ctx, env.warden, input("Block A - Yard", "09:00", "12:00", "ga"))
	require.NoError(t, err)
	require.NotNil(t, created.Report)
	require.Len(t, env.entries(t), 3)

	moved := input("Block A - Yard", "09:00", "12:00", "ga")
	moved.Date = "2024-06-02"
	result, err := env.service.Update(ctx, env.warden, created.Entry.ID, moved)
	require.NoError(t, err)
	require.NoError(t, result.SweepErr)
	assert.Equal(t, "2024-06-02", result.Entry.Date)

	require.NotNil(t, result.Report)
	assert.Equal(t, "2024-06-02", result.Report.Date)
	assert.Len(t, result.Report.Actions, 2, "new date gets a CRO and Block B coverage")

	require.NotNil(t, result.PreviousDateReport)
	assert.Equal(t, day, result.PreviousDateReport.Date)
	require.Len(t, result.PreviousDateReport.Actions, 1)
	action := result.PreviousDateReport.Actions[0]
	assert.Equal(t, scheduling.ActionCreated, action.Kind)
	assert.Equal(t, scheduling.InvariantBlockA, action.Invariant)
	assert.Equal(t, domain.LocationBlockACells, action.Entry.Location)
	assert.Equal(t, []string{"ga"}, action.Entry.AssignedStaff)
	assert.Empty(t, result.PreviousDateReport.Failures)

	old := env.entries(t)
	assert.Len(t, old, 3)
	assert.False(t, scheduling.Snapshot(day, old).NeedsSweep())
}

func TestUpdate_MovingEntryWithoutAutoEnforceLeavesDatesAlone(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	created, err := env.service.Create(ctx, env.warden, input("Block A - Yard", "09:00", "12:00", "ga"))
	require.NoError(t, err)

	moved := input("Block A - Yard", "09:00", "12:00", "ga")
	moved.Date = "2024-06-02"
	result, err := env.service.Update(ctx, env.warden, created.Entry.ID, moved)
	require.NoError(t, err)
	assert.Nil(t, result.Report)
	assert.Nil(t, result.PreviousDateReport)
	assert.NoError(t, result.SweepErr)

	assert.Empty(t, env.entries(t))
	next, err := env.schedules.ListByDate(ctx, "2024-06-02")
	require.NoError(t, err)
	assert.Len(t, next, 1)
	assert.NotContains(t, env.eventTypes(), events.EventCoverageRepaired)
	assert.Empty(t, env.metrics.Snapshot().Sweeps)
}

func TestEnforce_CleanSweepPublishesSatisfied(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()
	_, err := env.service.Create(ctx, env.warden, input("Block A - Yard", "09:00", "12:00", "ga"))
	require.NoError(t, err)

	report, err := env.service.Enforce(ctx, env.warden, day)
	require.NoError(t, err)
	assert.False(t, report.Changed())
	assert.Empty(t, report.Failures)
	assert.Equal(t, events.EventCoverageSatisfied, env.published[len(env.published)-1].Type)
	assert.Equal(t, int64(1), env.metrics.Snapshot().Sweeps[observability.SweepClean])
}

func TestValidate_OverlapWithExistingEntry(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	_, err := env.service.Create(ctx, env.warden, input("Kitchen", "09:00", "12:00", "g3"))
	require.NoError(t, err)

	err = env.service.Validate(ctx, "", input("Workshop", "11:00", "14:00", "g3"))
	require.Error(t, err)
	assert.Equal(t, scheduling.CheckOverlap, apperrors.ToDomainError(err).Details["check"])
	assert.Len(t, env.entries(t), 1, "validate never persists")
}

func TestUpdate_NotFound(t *testing.T) {
	env := newTestEnv(t, false)
	_, err := env.service.Update(context.Background(), env.warden, "missing", input("Kitchen", "09:00", "10:00", "g3"))
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestDelete_DoesNotSweep(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()
	created, err := env.service.Create(ctx, env.warden, input("Control Room", "09:00", "21:00", "c1"))
	require.NoError(t, err)
	before := len(env.entries(t))

	var controlRoomID string
	for _, e := range env.entries(t) {
		if e.Location == domain.LocationControlRoom {
			controlRoomID = e.ID
		}
	}
	require.Equal(t, created.Entry.ID, controlRoomID)

	require.NoError(t, env.service.Delete(ctx, env.warden, controlRoomID))
	assert.Len(t, env.entries(t), before-1)
	assert.Equal(t, events.EventScheduleEntryDeleted, env.published[len(env.published)-1].Type)
	assert.True(t, apperrors.IsCode(env.service.Delete(ctx, env.warden, controlRoomID), apperrors.CodeNotFound))
}

func TestEnforce_UnsatisfiableIsReportedAndPublished(t *testing.T) {
	roster := []domain.StaffMember{member("ga", "Security Officer", domain.DepartmentSecurity, "Block A")}
	env := newTestEnv(t, false, roster...)

	report, err := env.service.Enforce(context.Background(), nil, day)
	require.NoError(t, err)
	require.Len(t, report.Failures, 2, "control room and block B cannot be staffed")
	assert.True(t, apperrors.IsCode(report.Err(), apperrors.CodeCoverageUnsatisfied))
	assert.Contains(t, env.eventTypes(), events.EventCoverageUnsatisfiable)
	assert.Contains(t, env.eventTypes(), events.EventCoverageRepaired)

	snap := env.metrics.Snapshot()
	assert.Equal(t, int64(1), snap.Sweeps[observability.SweepUnsatisfiable])
}

func TestEnforce_InvalidDate(t *testing.T) {
	env := newTestEnv(t, false)
	_, err := env.service.Enforce(context.Background(), env.warden, "tomorrow")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidationFailed))
	assert.Equal(t, int64(1), env.metrics.Snapshot().Sweeps[observability.SweepFailed])
}

func TestSummary(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	_, err := env.service.Create(ctx, env.warden, input("Kitchen", "09:00", "12:00", "g3", "ga"))
	require.NoError(t, err)
	_, err = env.service.Create(ctx, env.warden, input("Kitchen", "13:00", "15:00", "g3"))
	require.NoError(t, err)

	summary, err := env.service.Summary(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Entries)
	assert.Equal(t, []string{"g3", "ga"}, summary.OnDuty)
	assert.Equal(t, 2, summary.Headcount[domain.LocationKitchen])
	assert.Equal(t, 4, summary.FreeStaff)
	assert.True(t, summary.NeedsSweep)

	_, err = env.service.Summary(ctx, "01-06-2024")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidationFailed))
}

func TestStaffAvailable_FiltersByLocation(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	all, err := env.staffSvc.Available(ctx, AvailableQuery{Date: day, StartTime: "09:00", EndTime: "12:00"})
	require.NoError(t, err)
	assert.Len(t, all.Staff, 6)

	blockA, err := env.staffSvc.Available(ctx, AvailableQuery{Date: day, StartTime: "09:00", EndTime: "12:00", Location: "block a - cells"})
	require.NoError(t, err)
	require.Len(t, blockA.Staff, 1)
	assert.Equal(t, "ga", blockA.Staff[0].ID)
	assert.Equal(t, domain.LocationBlockACells, blockA.Location)

	controlRoom, err := env.staffSvc.Available(ctx, AvailableQuery{Date: day, StartTime: "09:00", EndTime: "12:00", Location: "Control Room"})
	require.NoError(t, err)
	require.Len(t, controlRoom.Staff, 1)
	assert.Equal(t, "c1", controlRoom.Staff[0].ID)

	_, err = env.staffSvc.Available(ctx, AvailableQuery{Date: day, StartTime: "09:00", EndTime: "12:00", Location: "Roof"})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidationFailed))

	_, err = env.staffSvc.Available(ctx, AvailableQuery{Date: day, StartTime: "12:00", EndTime: "12:00"})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidationFailed))
}

type unreachableDirectory struct {
	*memory.StaffStore
}

func (unreachableDirectory) GetAvailableStaff(context.Context, string, string, string) ([]string, error) {
	return nil, errDirectoryDown
}

func (unreachableDirectory) ListStaff(context.Context) ([]domain.StaffMember, error) {
	return nil, errDirectoryDown
}

func TestStaffAvailable_DirectoryFailureIsFailClosed(t *testing.T) {
	store := memory.NewStaffStore(memory.NewScheduleStore(), defaultRoster()...)
	svc := NewStaffService(StaffDependencies{StaffRepo: unreachableDirectory{store}})

	result, err := svc.Available(context.Background(), AvailableQuery{Date: day, StartTime: "09:00", EndTime: "12:00", Location: "Kitchen"})
	require.NoError(t, err)
	assert.True(t, result.DirectoryUnavailable)
	assert.NotNil(t, result.Staff)
	assert.Empty(t, result.Staff)
}

func TestCreate_DirectoryFailureRejects(t *testing.T) {
	schedules := memory.NewScheduleStore()
	store := memory.NewStaffStore(schedules, defaultRoster()...)
	svc := NewScheduleService(testConfig(true), ScheduleDependencies{ScheduleRepo: schedules, StaffRepo: unreachableDirectory{store}})

	_, err := svc.Create(context.Background(), nil, input("Kitchen", "09:00", "10:00", "g3"))
	assert.True(t, apperrors.IsCode(err, apperrors.CodeDirectoryUnavailable))
	list, _ := schedules.ListByDate(context.Background(), day)
	assert.Empty(t, list)
}

func TestAssignBlock(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	moved, err := env.staffSvc.AssignBlock(ctx, env.warden, "g3", "Block B")
	require.NoError(t, err)
	assert.Equal(t, "Block B", moved.AssignedBlock)
	assert.Equal(t, events.EventStaffBlockAssigned, env.published[len(env.published)-1].Type)

	blockB, err := env.staffSvc.Available(ctx, AvailableQuery{Date: day, StartTime: "09:00", EndTime: "10:00", Location: "Block B - Yard"})
	require.NoError(t, err)
	assert.Len(t, blockB.Staff, 2)

	_, err = env.staffSvc.AssignBlock(ctx, env.warden, "g3", "Block Z")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidationFailed))
	_, err = env.staffSvc.AssignBlock(ctx, env.warden, "nobody", "Block A")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestLoginStaff(t *testing.T) {
	hash, err := auth.HashPassword("correct horse", bcrypt.MinCost)
	require.NoError(t, err)
	roster := defaultRoster()
	roster[5].PasswordHash = hash
	store := memory.NewStaffStore(nil, roster...)
	svc := NewAuthService(testConfig(false), AuthDependencies{StaffRepo: store})
	ctx := context.Background()

	staff, token, _, err := svc.LoginStaff(ctx, "W1@facility.test", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "w1", staff.ID)
	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, domain.StaffRoleWarden, claims.Role)

	_, _, _, err = svc.LoginStaff(ctx, "w1@facility.test", "wrong")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
	_, _, _, err = svc.LoginStaff(ctx, "ghost@facility.test", "x")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
	_, _, _, err = svc.LoginStaff(ctx, "c1@facility.test", "x")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized), "accounts without a password cannot log in")

	require.NoError(t, svc.SetPassword(ctx, "c1", "s3cret"))
	_, _, _, err = svc.LoginStaff(ctx, "c1@facility.test", "s3cret")
	assert.NoError(t, err)
}
