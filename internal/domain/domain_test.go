package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSpecialization(t *testing.T) {
	spec, err := ParseSpecialization(" network ")
	require.NoError(t, err)
	assert.Equal(t, SpecializationNetwork, spec)
	assert.Equal(t, "network", spec.Wire())

	_, err = ParseSpecialization("plumbing")
	assert.ErrorIs(t, err, ErrInvalidSpecialization)
}

func TestParseSpecializationsCollapsesDuplicates(t *testing.T) {
	specs, err := ParseSpecializations([]string{"Software", "SOFTWARE", "security"})
	require.NoError(t, err)
	assert.Equal(t, []Specialization{SpecializationSoftware, SpecializationSecurity}, specs)
}

func TestNewUser(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		specs   []string
		wantErr error
		check   func(t *testing.T, u *User)
	}{
		{
			name: "plain user",
			role: "user",
			check: func(t *testing.T, u *User) {
				assert.Equal(t, RoleUser, u.Role)
				assert.False(t, u.IsTechnician())
				assert.Nil(t, u.Specializations)
			},
		},
		{
			name:  "technician any case",
			role:  "Technician",
			specs: []string{"database"},
			check: func(t *testing.T, u *User) {
				assert.True(t, u.IsTechnician())
				assert.True(t, u.HasSpecialization(SpecializationDatabase))
			},
		},
		{
			name: "technician without specializations",
			role: "technician",
			check: func(t *testing.T, u *User) {
				assert.NotNil(t, u.Specializations)
				assert.Empty(t, u.Specializations)
			},
		},
		{name: "unknown role", role: "admin", wantErr: ErrInvalidRole},
		{name: "user with specializations", role: "user", specs: []string{"network"}, wantErr: ErrSpecializationsForUser},
		{name: "bad specialization", role: "technician", specs: []string{"printers"}, wantErr: ErrInvalidSpecialization},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := NewUser("sam", "pw", "sam@example.com", tt.role, tt.specs)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, u)
		})
	}

	_, err := NewUser("  ", "pw", "", "user", nil)
	assert.ErrorIs(t, err, ErrUsernameRequired)
}

func TestParseStatus(t *testing.T) {
	assert.Equal(t, StatusOpen, ParseStatus("open"))
	assert.Equal(t, StatusInProgress, ParseStatus("IN_PROGRESS"))
	assert.Equal(t, StatusInProgress, ParseStatus("in  progress"))
	assert.Equal(t, StatusResolved, ParseStatus("Resolved"))

	legacy := ParseStatus(" Waiting on vendor ")
	assert.Equal(t, IncidentStatus("Waiting on vendor"), legacy)
	assert.False(t, legacy.Known())
	assert.True(t, StatusOpen.Known())
}

func TestParseCategory(t *testing.T) {
	assert.Equal(t, CategoryGeneral, ParseCategory("general"))
	assert.Equal(t, Category("HARDWARE"), ParseCategory("Hardware"))
	assert.True(t, ParseCategory("security").Known())

	legacy := ParseCategory("Printers")
	assert.Equal(t, Category("Printers"), legacy)
	assert.False(t, legacy.Known())
}

func TestIncidentReferenceIDs(t *testing.T) {
	var nilIncident *Incident
	assert.Empty(t, nilIncident.ReporterID())

	incident := &Incident{Reporter: Ref("u-1")}
	assert.Equal(t, "u-1", incident.ReporterID())
	assert.Empty(t, incident.TechnicianID())
}
