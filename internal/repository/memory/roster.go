package memory

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/facilityops/facility-ops/internal/domain"
)

// RosterMember is one staff record in a YAML roster file.
type RosterMember struct {
	ID            string `yaml:"id"`
	Name          string `yaml:"name" validate:"required"`
	Email         string `yaml:"email" validate:"required,email"`
	PasswordHash  string `yaml:"passwordHash,omitempty"`
	Role          string `yaml:"role,omitempty" validate:"omitempty,oneof=OFFICER WARDEN ADMIN"`
	Position      string `yaml:"position" validate:"required"`
	Department    string `yaml:"department" validate:"required"`
	AssignedBlock string `yaml:"assignedBlock,omitempty"`
	Inactive      bool   `yaml:"inactive,omitempty"`
}

// Roster is the top-level shape of a roster file.
type Roster struct {
	Staff []RosterMember `yaml:"staff" validate:"dive"`
}

var validate = validator.New()

// LoadRoster reads and validates a YAML roster file.
func LoadRoster(path string) ([]domain.StaffMember, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster file: %w", err)
	}
	return ParseRoster(data)
}

// ParseRoster decodes roster YAML into staff members, in file order.
func ParseRoster(data []byte) ([]domain.StaffMember, error) {
	var roster Roster
	if err := yaml.Unmarshal(data, &roster); err != nil {
		return nil, fmt.Errorf("failed to parse roster file: %w", err)
	}
	if err := validate.Struct(&roster); err != nil {
		return nil, fmt.Errorf("roster validation failed: %w", err)
	}

	seen := make(map[string]struct{}, len(roster.Staff))
	members := make([]domain.StaffMember, 0, len(roster.Staff))
	for i, m := range roster.Staff {
		if m.ID != "" {
			if _, dup := seen[m.ID]; dup {
				return nil, fmt.Errorf("duplicate staff id %q at staff[%d]", m.ID, i)
			}
			seen[m.ID] = struct{}{}
		}
		role := domain.StaffRole(m.Role)
		if role == "" {
			role = domain.StaffRoleOfficer
		}
		members = append(members, domain.StaffMember{
			ID:            m.ID,
			Name:          m.Name,
			Email:         m.Email,
			PasswordHash:  m.PasswordHash,
			Role:          role,
			Position:      m.Position,
			Department:    domain.Department(m.Department),
			AssignedBlock: m.AssignedBlock,
			Active:        !m.Inactive,
		})
	}
	return members, nil
}
