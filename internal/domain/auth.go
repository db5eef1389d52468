package domain

// SubjectType identifies the kind of principal a token was issued to or an event was raised by.
type SubjectType string

const (
	SubjectTypeStaff  SubjectType = "STAFF"
	SubjectTypeSystem SubjectType = "SYSTEM"
)
