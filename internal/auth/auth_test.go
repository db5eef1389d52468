package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/facilityops/facility-ops/internal/domain"
	apperrors "github.com/facilityops/facility-ops/pkg/util/errorutil"
)

type staffByID map[string]domain.StaffMember

func (s staffByID) GetByID(_ context.Context, id string) (*domain.StaffMember, error) {
	member, ok := s[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &member, nil
}

func newTestApp(tokens *TokenManager, staff StaffLookup, guards ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).SendString(domainErr.Code)
		},
	})
	handlers := append([]fiber.Handler{NewAuthMiddleware(tokens, staff).Handle}, guards...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		principal, _ := PrincipalFromContext(c)
		return c.SendString(principal.StaffID())
	})
	app.Get("/", handlers...)
	return app
}

func bearer(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	return req
}

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	token, expires, err := tm.GenerateToken(domain.StaffMember{ID: "s1", Role: domain.StaffRoleWarden})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), expires, time.Minute)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "s1", claims.StaffID)
	assert.Equal(t, domain.SubjectTypeStaff, claims.Subject)
	assert.Equal(t, domain.StaffRoleWarden, claims.Role)

	_, err = NewTokenManager("other", 5).ParseToken(token)
	assert.Error(t, err)
}

func TestTokenExpired(t *testing.T) {
	tm := NewTokenManager("secret", 1)
	tm.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := tm.GenerateToken(domain.StaffMember{ID: "s1"})
	require.NoError(t, err)

	_, err = tm.ParseToken(token)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "hunter2"))
	assert.Error(t, ComparePassword(hash, "wrong"))

	_, err = HashPassword("", bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestMiddleware(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	staff := staffByID{
		"warden":  {ID: "warden", Role: domain.StaffRoleWarden, Active: true},
		"officer": {ID: "officer", Role: domain.StaffRoleOfficer, Active: true},
		"retired": {ID: "retired", Role: domain.StaffRoleAdmin, Active: false},
	}
	token := func(id string) string {
		tok, _, err := tm.GenerateToken(domain.StaffMember{ID: id, Role: staff[id].Role})
		require.NoError(t, err)
		return tok
	}
	app := newTestApp(tm, staff, RequireScheduler())

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"garbage token", "not-a-jwt", http.StatusUnauthorized},
		{"unknown staff", token("ghost"), http.StatusUnauthorized},
		{"inactive staff", token("retired"), http.StatusUnauthorized},
		{"officer cannot schedule", token("officer"), http.StatusForbidden},
		{"warden can schedule", token("warden"), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(bearer(tt.token))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestRequireStaffRole_NoPrincipal(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(apperrors.ToDomainError(err).HTTPStatus).SendString("")
		},
	})
	app.Get("/", RequireStaffRole(), func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
