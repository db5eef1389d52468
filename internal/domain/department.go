package domain

import "strings"

// Department is the organizational unit a staff member belongs to.
type Department string

const (
	DepartmentSecurity       Department = "Security"
	DepartmentMedical        Department = "Medical"
	DepartmentAdministration Department = "Administration"
	DepartmentWork           Department = "Work"
	DepartmentRehabilitation Department = "Rehabilitation"
)

// Departments lists every known department.
var Departments = []Department{
	DepartmentSecurity,
	DepartmentMedical,
	DepartmentAdministration,
	DepartmentWork,
	DepartmentRehabilitation,
}

// Folded returns the case-folded, trimmed department text used by rule matching.
func (d Department) Folded() string {
	return strings.ToLower(strings.TrimSpace(string(d)))
}

// IsValid reports whether d matches a known department, ignoring case.
func (d Department) IsValid() bool {
	for _, known := range Departments {
		if strings.EqualFold(strings.TrimSpace(string(d)), string(known)) {
			return true
		}
	}
	return false
}
