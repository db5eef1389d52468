package scheduling

import (
	"fmt"
	"strings"

	"github.com/facilityops/facility-ops/internal/domain"
)

const croOnlyInControlRoom = "Prison Control Room Officer can only work in Control Room."

type eligibilityRule struct {
	allows    func(staff domain.StaffMember) bool
	rejection func(location domain.Location) string
}

func isSecurity(staff domain.StaffMember) bool {
	return staff.Department.Folded() == strings.ToLower(string(domain.DepartmentSecurity))
}

func blockRule(block domain.Block) eligibilityRule {
	return eligibilityRule{
		allows: func(staff domain.StaffMember) bool {
			return isSecurity(staff) && strings.Contains(staff.BlockKey(), block.Key())
		},
		rejection: func(domain.Location) string {
			return fmt.Sprintf("Only Security staff assigned to %s can work in %s.", block, block)
		},
	}
}

// CRO exclusion is applied before any rule below runs.
var eligibilityRules = map[domain.LocationCategory]eligibilityRule{
	domain.CategoryControlRoom: {
		allows: domain.StaffMember.IsControlRoomOfficer,
		rejection: func(domain.Location) string {
			return "Only Prison Control Room Officer can work in Control Room."
		},
	},
	domain.CategoryMedical: {
		allows: func(staff domain.StaffMember) bool {
			return strings.Contains(staff.Department.Folded(), "medical")
		},
		rejection: func(loc domain.Location) string {
			return fmt.Sprintf("Only Medical staff can work in %s.", loc)
		},
	},
	domain.CategoryAdmin: {
		allows: func(staff domain.StaffMember) bool {
			return strings.Contains(staff.Department.Folded(), "administration")
		},
		rejection: func(loc domain.Location) string {
			return fmt.Sprintf("Only Administration staff can work in %s.", loc)
		},
	},
	domain.CategoryBlockA: blockRule(domain.BlockA),
	domain.CategoryBlockB: blockRule(domain.BlockB),
	domain.CategoryCentral: {
		allows: isSecurity,
		rejection: func(loc domain.Location) string {
			return fmt.Sprintf("Only Security staff can work in %s.", loc)
		},
	},
}

// Eligible reports whether staff may be assigned to location. Locations outside
// the catalogue admit nobody.
func Eligible(staff domain.StaffMember, location domain.Location) bool {
	return Ineligibility(staff, location) == ""
}

// EligibleForCategory applies the rule table directly to a category.
func EligibleForCategory(staff domain.StaffMember, category domain.LocationCategory) bool {
	rule, ok := eligibilityRules[category]
	if !ok {
		return false
	}
	if category != domain.CategoryControlRoom && staff.IsControlRoomOfficer() {
		return false
	}
	return rule.allows(staff)
}

// Ineligibility returns the operator-facing reason staff cannot work at location,
// or "" when they can.
func Ineligibility(staff domain.StaffMember, location domain.Location) string {
	category, ok := location.Category()
	if !ok {
		return fmt.Sprintf("Unknown location %q.", location)
	}
	if category != domain.CategoryControlRoom && staff.IsControlRoomOfficer() {
		return croOnlyInControlRoom
	}
	rule := eligibilityRules[category]
	if rule.allows(staff) {
		return ""
	}
	return rule.rejection(location)
}

// FilterEligible keeps the IDs whose roster entry is eligible for location, in input order.
// IDs missing from the roster are dropped.
func FilterEligible(ids []string, roster []domain.StaffMember, location domain.Location) []string {
	index := rosterIndex(roster)
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		member, ok := index[id]
		if !ok {
			continue
		}
		if Eligible(member, location) {
			result = append(result, id)
		}
	}
	return result
}
