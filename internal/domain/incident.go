package domain

import (
	"strings"
	"time"
)

// DefaultPriority is applied when neither caller nor classifier set one.
const DefaultPriority = 2

// IncidentStatus is the lifecycle state of an incident. Values outside the
// known set are kept verbatim as legacy statuses.
type IncidentStatus string

const (
	StatusOpen       IncidentStatus = "Open"
	StatusInProgress IncidentStatus = "In Progress"
	StatusResolved   IncidentStatus = "Resolved"
)

var knownStatuses = []IncidentStatus{StatusOpen, StatusInProgress, StatusResolved}

// ParseStatus maps free-form input onto a known status, ignoring case and
// treating '_' and '-' as spaces. Unknown input is returned trimmed.
func ParseStatus(raw string) IncidentStatus {
	trimmed := strings.TrimSpace(raw)
	key := statusKey(trimmed)
	for _, known := range knownStatuses {
		if statusKey(string(known)) == key {
			return known
		}
	}
	return IncidentStatus(trimmed)
}

// Known reports whether the status is one of the canonical values.
func (s IncidentStatus) Known() bool {
	for _, known := range knownStatuses {
		if s == known {
			return true
		}
	}
	return false
}

func statusKey(raw string) string {
	raw = strings.ToLower(raw)
	raw = strings.NewReplacer("_", " ", "-", " ").Replace(raw)
	return strings.Join(strings.Fields(raw), " ")
}

// Category groups incidents by technical area. Values outside the known set
// are kept verbatim as legacy categories.
type Category string

// CategoryGeneral is the fallback category.
const CategoryGeneral Category = "GENERAL"

// ParseCategory canonicalizes known categories to upper case.
func ParseCategory(raw string) Category {
	trimmed := strings.TrimSpace(raw)
	if strings.EqualFold(trimmed, string(CategoryGeneral)) {
		return CategoryGeneral
	}
	if spec, err := ParseSpecialization(trimmed); err == nil {
		return Category(spec)
	}
	return Category(trimmed)
}

// Known reports whether the category is GENERAL or a specialization.
func (c Category) Known() bool {
	if c == CategoryGeneral {
		return true
	}
	_, err := ParseSpecialization(string(c))
	return err == nil && strings.ToUpper(string(c)) == string(c)
}

// Incident is a trackable support ticket. Reporter and AssignedTechnician are
// weak references: they may hold only an ID until resolved.
type Incident struct {
	ID                 string
	Title              string
	Description        string
	CreationDate       time.Time
	Status             IncidentStatus
	Priority           int
	Category           Category
	Reporter           *User
	AssignedTechnician *User
}

// ReporterID returns the reporter identifier, or "" when unset.
func (i *Incident) ReporterID() string {
	if i == nil || i.Reporter == nil {
		return ""
	}
	return i.Reporter.ID
}

// TechnicianID returns the assigned technician identifier, or "" when unset.
func (i *Incident) TechnicianID() string {
	if i == nil || i.AssignedTechnician == nil {
		return ""
	}
	return i.AssignedTechnician.ID
}
