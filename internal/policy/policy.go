// Package policy holds the authorization rules shared by every route: who
// may change an opportunity, who may review or read an application, and
// which status transitions an application allows.
package policy

import (
	"volunteerhub/pkg/types"
)

// CanManageOpportunity reports whether actor may edit or delete opp.
func CanManageOpportunity(actorID string, opp *types.Opportunity) bool {
	return actorID != "" && opp != nil && opp.CreatorID == actorID
}

// CanReviewApplication reports whether actor may change the status of an
// application whose opportunity was created by opportunityCreatorID.
func CanReviewApplication(actorID, opportunityCreatorID string) bool {
	return actorID != "" && actorID == opportunityCreatorID
}

// CanViewApplication allows the applicant and the opportunity's creator.
func CanViewApplication(actorID string, app *types.Application, opportunityCreatorID string) bool {
	if actorID == "" || app == nil {
		return false
	}
	return app.VolunteerID == actorID || opportunityCreatorID == actorID
}

// CanCreateOpportunity gates opportunity creation to organizers.
func CanCreateOpportunity(user *types.User) bool {
	return user != nil && user.Role == types.RoleOrganizer
}

// CanApply gates application submission to volunteers.
func CanApply(user *types.User) bool {
	return user != nil && user.Role == types.RoleVolunteer
}

// CanTransition reports whether an application may move from -> to.
// Only pending applications move, and only to approved or rejected.
func CanTransition(from, to types.ApplicationStatus) bool {
	if from != types.ApplicationStatusPending {
		return false
	}
	return to == types.ApplicationStatusApproved || to == types.ApplicationStatusRejected
}
