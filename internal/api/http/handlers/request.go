package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/facilityops/facility-ops/internal/api/dto"
	"github.com/facilityops/facility-ops/internal/auth"
	"github.com/facilityops/facility-ops/internal/domain"
	apperrors "github.com/facilityops/facility-ops/pkg/util/errorutil"
)

// bind parses the JSON body into req and checks its validation tags.
func bind(c *fiber.Ctx, v *dto.Validator, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return v.Validate(req)
}

// actorFrom returns the authenticated staff member, or nil on unauthenticated routes.
func actorFrom(c *fiber.Ctx) *domain.StaffMember {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil
	}
	return principal.Staff
}

func parseIntQuery(c *fiber.Ctx, key string, defaultVal int) int {
	if val := c.Query(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultVal
}

func requireQuery(c *fiber.Ctx, key string) (string, error) {
	val := c.Query(key)
	if val == "" {
		return "", apperrors.NewValidationError(key+" query parameter required", map[string]any{"parameter": key})
	}
	return val, nil
}
