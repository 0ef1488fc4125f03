package policy

import (
	"testing"

	"volunteerhub/pkg/types"

	"github.com/stretchr/testify/assert"
)

func TestCanManageOpportunity(t *testing.T) {
	opp := &types.Opportunity{ID: "o1", CreatorID: "org-1"}

	assert.True(t, CanManageOpportunity("org-1", opp))
	assert.False(t, CanManageOpportunity("org-2", opp))
	assert.False(t, CanManageOpportunity("", &types.Opportunity{}))
	assert.False(t, CanManageOpportunity("org-1", nil))
}

func TestCanReviewApplication(t *testing.T) {
	assert.True(t, CanReviewApplication("org-1", "org-1"))
	assert.False(t, CanReviewApplication("org-2", "org-1"))
	assert.False(t, CanReviewApplication("", ""))
}

func TestCanViewApplication(t *testing.T) {
	app := &types.Application{ID: "a1", VolunteerID: "vol-1"}

	assert.True(t, CanViewApplication("vol-1", app, "org-1"))
	assert.True(t, CanViewApplication("org-1", app, "org-1"))
	assert.False(t, CanViewApplication("someone", app, "org-1"))
	assert.False(t, CanViewApplication("vol-1", nil, "org-1"))
}

func TestRoleGates(t *testing.T) {
	volunteer := &types.User{Role: types.RoleVolunteer}
	organizer := &types.User{Role: types.RoleOrganizer}

	assert.True(t, CanApply(volunteer))
	assert.False(t, CanApply(organizer))
	assert.False(t, CanApply(nil))

	assert.True(t, CanCreateOpportunity(organizer))
	assert.False(t, CanCreateOpportunity(volunteer))
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to types.ApplicationStatus
		want     bool
	}{
		{types.ApplicationStatusPending, types.ApplicationStatusApproved, true},
		{types.ApplicationStatusPending, types.ApplicationStatusRejected, true},
		{types.ApplicationStatusPending, types.ApplicationStatusPending, false},
		{types.ApplicationStatusApproved, types.ApplicationStatusPending, false},
		{types.ApplicationStatusRejected, types.ApplicationStatusPending, false},
		{types.ApplicationStatusApproved, types.ApplicationStatusRejected, false},
		{types.ApplicationStatusPending, types.ApplicationStatus("withdrawn"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}
