package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/facilityops/facility-ops/internal/api/dto"
	"github.com/facilityops/facility-ops/internal/domain"
	"github.com/facilityops/facility-ops/internal/scheduling"
	"github.com/facilityops/facility-ops/internal/service"
)

// StaffHandler exposes staff login, the roster and the availability picker.
type StaffHandler struct {
	authService  *service.AuthService
	staffService *service.StaffService
	validator    *dto.Validator
}

// NewStaffHandler constructs handler.
func NewStaffHandler(authService *service.AuthService, staffService *service.StaffService, validator *dto.Validator) *StaffHandler {
	return &StaffHandler{authService: authService, staffService: staffService, validator: validator}
}

// Login handles POST /auth/staff/login.
func (h *StaffHandler) Login(c *fiber.Ctx) error {
	var req dto.StaffLoginRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	staff, token, exp, err := h.authService.LoginStaff(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"staff": staffResponse(staff),
			"auth":  dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// ListStaff handles GET /staff.
func (h *StaffHandler) ListStaff(c *fiber.Ctx) error {
	members, err := h.staffService.ListStaffMembers(c.UserContext(), parseStaffListFilters(c))
	if err != nil {
		return err
	}
	resp := make([]dto.StaffResponse, 0, len(members))
	for i := range members {
		resp = append(resp, staffResponse(&members[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// GetStaff handles GET /staff/:id.
func (h *StaffHandler) GetStaff(c *fiber.Ctx) error {
	member, err := h.staffService.GetStaffMemberByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": staffResponse(member)})
}

// Available handles GET /staff/available. A directory outage yields an empty list
// with directory_unavailable set, not an error.
func (h *StaffHandler) Available(c *fiber.Ctx) error {
	date, err := requireQuery(c, "date")
	if err != nil {
		return err
	}
	query := service.AvailableQuery{
		Date:      date,
		StartTime: c.Query("start", scheduling.DefaultCoverageWindow.StartClock()),
		EndTime:   c.Query("end", scheduling.DefaultCoverageWindow.EndClock()),
		Location:  c.Query("location"),
	}
	result, err := h.staffService.Available(c.UserContext(), query)
	if err != nil {
		return err
	}

	resp := dto.AvailableStaffResponse{
		Date:                 query.Date,
		StartTime:            query.StartTime,
		EndTime:              query.EndTime,
		Location:             result.Location,
		Staff:                make([]dto.StaffResponse, 0, len(result.Staff)),
		DirectoryUnavailable: result.DirectoryUnavailable,
	}
	for i := range result.Staff {
		resp.Staff = append(resp.Staff, staffResponse(&result.Staff[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// AssignBlock handles PUT /staff/:id/block.
func (h *StaffHandler) AssignBlock(c *fiber.Ctx) error {
	var req dto.AssignBlockRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	member, err := h.staffService.AssignBlock(c.UserContext(), actorFrom(c), c.Params("id"), req.Block)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"data": staffResponse(member)})
}

func parseStaffListFilters(c *fiber.Ctx) service.StaffListFilters {
	filters := service.StaffListFilters{}
	if role := c.Query("role"); role != "" {
		r := domain.StaffRole(role)
		filters.Role = &r
	}
	if dept := c.Query("department"); dept != "" {
		d := domain.Department(dept)
		filters.Department = &d
	}
	if block := c.Query("block"); block != "" {
		filters.AssignedBlock = &block
	}
	if active := c.Query("active"); active != "" {
		if val, err := strconv.ParseBool(active); err == nil {
			filters.Active = &val
		}
	}
	page := parseIntQuery(c, "page", 1)
	pageSize := parseIntQuery(c, "page_size", 50)
	filters.Offset = (page - 1) * pageSize
	filters.Limit = pageSize
	return filters
}

func staffResponse(staff *domain.StaffMember) dto.StaffResponse {
	return dto.StaffResponse{
		ID:            staff.ID,
		Name:          staff.Name,
		Email:         staff.Email,
		Role:          staff.Role,
		Position:      staff.Position,
		Department:    staff.Department,
		AssignedBlock: staff.AssignedBlock,
		Active:        staff.Active,
	}
}
