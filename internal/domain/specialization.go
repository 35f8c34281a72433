package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSpecialization is returned for tags outside the closed set.
var ErrInvalidSpecialization = errors.New("invalid specialization")

// Specialization enumerates the technical areas a technician covers.
type Specialization string

const (
	SpecializationNetwork  Specialization = "NETWORK"
	SpecializationHardware Specialization = "HARDWARE"
	SpecializationSoftware Specialization = "SOFTWARE"
	SpecializationDatabase Specialization = "DATABASE"
	SpecializationSecurity Specialization = "SECURITY"
)

// Specializations lists every accepted tag in declaration order.
var Specializations = []Specialization{
	SpecializationNetwork,
	SpecializationHardware,
	SpecializationSoftware,
	SpecializationDatabase,
	SpecializationSecurity,
}

// ParseSpecialization accepts a tag in any letter case.
func ParseSpecialization(raw string) (Specialization, error) {
	candidate := Specialization(strings.ToUpper(strings.TrimSpace(raw)))
	for _, known := range Specializations {
		if candidate == known {
			return known, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSpecialization, raw)
}

// ParseSpecializations parses a list of tags, collapsing duplicates.
func ParseSpecializations(raw []string) ([]Specialization, error) {
	result := make([]Specialization, 0, len(raw))
	seen := make(map[Specialization]struct{}, len(raw))
	for _, value := range raw {
		spec, err := ParseSpecialization(value)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[spec]; dup {
			continue
		}
		seen[spec] = struct{}{}
		result = append(result, spec)
	}
	return result, nil
}

// Wire returns the lower-case form used in API payloads.
func (s Specialization) Wire() string {
	return strings.ToLower(string(s))
}
