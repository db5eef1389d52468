package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/facilityops/facility-ops/internal/api/dto"
	"github.com/facilityops/facility-ops/internal/domain"
	"github.com/facilityops/facility-ops/internal/scheduling"
	"github.com/facilityops/facility-ops/internal/service"
	"github.com/facilityops/facility-ops/internal/worker"
)

// ScheduleHandler manages schedule entries and coverage enforcement.
type ScheduleHandler struct {
	service   *service.ScheduleService
	alerts    *worker.AlertLog
	validator *dto.Validator
}

// NewScheduleHandler constructs handler. alerts may be nil when no worker runs.
func NewScheduleHandler(scheduleService *service.ScheduleService, alerts *worker.AlertLog, validator *dto.Validator) *ScheduleHandler {
	return &ScheduleHandler{service: scheduleService, alerts: alerts, validator: validator}
}

// List GET /schedules?date=.
func (h *ScheduleHandler) List(c *fiber.Ctx) error {
	date, err := requireQuery(c, "date")
	if err != nil {
		return err
	}
	entries, err := h.service.List(c.UserContext(), date)
	if err != nil {
		return err
	}
	items := make([]dto.ScheduleResponse, 0, len(entries))
	for i := range entries {
		items = append(items, scheduleResponse(&entries[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /schedules/:id.
func (h *ScheduleHandler) Get(c *fiber.Ctx) error {
	entry, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": scheduleResponse(entry)})
}

// Create POST /schedules.
func (h *ScheduleHandler) Create(c *fiber.Ctx) error {
	var req dto.ScheduleRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	result, err := h.service.Create(c.UserContext(), actorFrom(c), scheduleInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": commitResponse(result)})
}

// Update PUT /schedules/:id.
func (h *ScheduleHandler) Update(c *fiber.Ctx) error {
	var req dto.ScheduleRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	result, err := h.service.Update(c.UserContext(), actorFrom(c), c.Params("id"), scheduleInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": commitResponse(result)})
}

// Delete DELETE /schedules/:id.
func (h *ScheduleHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), actorFrom(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Validate POST /schedules/validate. Pass ?id= to dry-run an update of that entry.
func (h *ScheduleHandler) Validate(c *fiber.Ctx) error {
	var req dto.ScheduleRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	if err := h.service.Validate(c.UserContext(), c.Query("id"), scheduleInput(req)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"valid": true}})
}

// Enforce POST /schedules/enforce?date=. Unsatisfiable invariants are listed in the
// report's failures; the response is still 200 since repairs may have been applied.
func (h *ScheduleHandler) Enforce(c *fiber.Ctx) error {
	date, err := requireQuery(c, "date")
	if err != nil {
		return err
	}
	report, err := h.service.Enforce(c.UserContext(), actorFrom(c), date)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": reportResponse(report)})
}

// Summary GET /schedules/summary?date=.
func (h *ScheduleHandler) Summary(c *fiber.Ctx) error {
	date, err := requireQuery(c, "date")
	if err != nil {
		return err
	}
	summary, err := h.service.Summary(c.UserContext(), date)
	if err != nil {
		return err
	}
	onDuty := summary.OnDuty
	if onDuty == nil {
		onDuty = []string{}
	}
	return c.JSON(fiber.Map{"data": dto.DaySummaryResponse{
		Date:                 summary.Date,
		Entries:              summary.Entries,
		OnDuty:               onDuty,
		Headcount:            summary.Headcount,
		Coverage:             summary.Coverage.Totals,
		NeedsSweep:           summary.NeedsSweep,
		FreeStaff:            summary.FreeStaff,
		DirectoryUnavailable: summary.DirectoryUnavailable,
	}})
}

// Alerts GET /schedules/alerts?date=. Without date every retained alert is returned.
func (h *ScheduleHandler) Alerts(c *fiber.Ctx) error {
	alerts := []worker.Alert{}
	if h.alerts != nil {
		alerts = h.alerts.Recent(c.Query("date"))
	}
	return c.JSON(fiber.Map{"data": alerts})
}

func scheduleInput(req dto.ScheduleRequest) service.ScheduleInput {
	return service.ScheduleInput{
		Title:         req.Title,
		Type:          req.Type,
		Date:          req.Date,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Location:      req.Location,
		AssignedStaff: req.AssignedStaff,
		Priority:      req.Priority,
		Status:        req.Status,
		Description:   req.Description,
	}
}

func scheduleResponse(entry *domain.ScheduleEntry) dto.ScheduleResponse {
	staff := entry.AssignedStaff
	if staff == nil {
		staff = []string{}
	}
	return dto.ScheduleResponse{
		ID:            entry.ID,
		Title:         entry.Title,
		Type:          entry.Type,
		Date:          entry.Date,
		StartTime:     entry.StartTime,
		EndTime:       entry.EndTime,
		Location:      entry.Location,
		AssignedStaff: staff,
		Priority:      entry.Priority,
		Status:        entry.Status,
		Description:   entry.Description,
		CreatedAt:     entry.CreatedAt,
		UpdatedAt:     entry.UpdatedAt,
	}
}

func commitResponse(result *service.CommitResult) dto.CommitResponse {
	resp := dto.CommitResponse{Entry: scheduleResponse(&result.Entry)}
	if result.Report != nil {
		report := reportResponse(*result.Report)
		resp.Enforcement = &report
	}
	if result.PreviousDateReport != nil {
		report := reportResponse(*result.PreviousDateReport)
		resp.PreviousDateEnforcement = &report
	}
	if result.SweepErr != nil {
		resp.SweepError = result.SweepErr.Error()
	}
	return resp
}

func reportResponse(report scheduling.Report) dto.CoverageReportResponse {
	resp := dto.CoverageReportResponse{
		Date:     report.Date,
		Changed:  report.Changed(),
		Actions:  make([]dto.CoverageActionResponse, 0, len(report.Actions)),
		Failures: make([]dto.CoverageFailureResponse, 0, len(report.Failures)),
	}
	for i := range report.Actions {
		action := report.Actions[i]
		resp.Actions = append(resp.Actions, dto.CoverageActionResponse{
			Kind:      string(action.Kind),
			Invariant: string(action.Invariant),
			Entry:     scheduleResponse(&action.Entry),
		})
	}
	for _, failure := range report.Failures {
		resp.Failures = append(resp.Failures, dto.CoverageFailureResponse{
			Invariant: string(failure.Invariant),
			Location:  failure.Location,
			Reason:    failure.Reason,
		})
	}
	return resp
}
