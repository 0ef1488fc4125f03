package server

import (
	"errors"
	"net/http"
	"strings"

	"volunteerhub/internal/policy"
	"volunteerhub/pkg/types"

	"github.com/sirupsen/logrus"
)

// handleGetOrganizationApplications lists applications for every opportunity
// the caller created, each merged with its volunteer and opportunity.
func (s *Service) handleGetOrganizationApplications(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	opportunities, err := s.opportunityRepo.OpportunitiesByCreator(ctx, userID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("failed to fetch owned opportunities")
		s.internalServerError(w)
		return
	}

	results := make([]*types.OrganizationApplication, 0)
	if len(opportunities) == 0 {
		s.writeJSON(w, http.StatusOK, results)
		return
	}

	opportunityMap := make(map[string]*types.Opportunity, len(opportunities))
	opportunityIDs := make([]string, 0, len(opportunities))
	for _, opp := range opportunities {
		opportunityMap[opp.ID] = opp
		opportunityIDs = append(opportunityIDs, opp.ID)
	}

	applications, err := s.applicationRepo.ApplicationsByOpportunityIDs(ctx, opportunityIDs)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("failed to fetch applications for owned opportunities")
		s.internalServerError(w)
		return
	}

	volunteerIDs := make([]string, 0, len(applications))
	seen := make(map[string]bool, len(applications))
	for _, app := range applications {
		if !seen[app.VolunteerID] {
			seen[app.VolunteerID] = true
			volunteerIDs = append(volunteerIDs, app.VolunteerID)
		}
	}

	volunteerMap := make(map[string]*types.User, len(volunteerIDs))
	if len(volunteerIDs) > 0 {
		volunteers, err := s.userRepo.UsersByIDs(ctx, volunteerIDs)
		if err != nil {
			s.logger.WithError(err).Warn("failed to fetch volunteers for applications")
		}
		for _, volunteer := range volunteers {
			volunteerMap[volunteer.ID] = volunteer
		}
	}

	for _, app := range applications {
		results = append(results, &types.OrganizationApplication{
			Application: app,
			Volunteer:   volunteerMap[app.VolunteerID],
			Opportunity: opportunityMap[app.OpportunityID],
		})
	}

	s.writeJSON(w, http.StatusOK, results)
}

type reviewRequest struct {
	ApplicationID string                  `json:"applicationId" validate:"required"`
	Status        types.ApplicationStatus `json:"status" validate:"required"`
}

func (s *Service) handlePatchOrganizationApplication(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req reviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.ApplicationID = strings.TrimSpace(req.ApplicationID)
	req.Status = types.ApplicationStatus(strings.ToLower(strings.TrimSpace(string(req.Status))))

	if err := validate.Struct(req); err != nil {
		s.writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	application, creatorID, err := s.applicationRepo.ApplicationWithCreator(ctx, req.ApplicationID)
	if err != nil {
		s.applicationLookupError(w, err, req.ApplicationID)
		return
	}

	if !policy.CanReviewApplication(userID, creatorID) {
		s.writeError(w, http.StatusForbidden, "only the opportunity's organizer can review this application")
		return
	}

	if req.Status != types.ApplicationStatusApproved && req.Status != types.ApplicationStatusRejected {
		s.writeError(w, http.StatusBadRequest, "status must be one of: approved rejected")
		return
	}

	if !policy.CanTransition(application.Status, req.Status) {
		s.writeError(w, http.StatusConflict, types.ErrInvalidTransition.Error())
		return
	}

	updated, err := s.applicationRepo.UpdateStatus(ctx, application.ID, req.Status, userID)
	if err != nil {
		if errors.Is(err, types.ErrInvalidTransition) {
			s.writeError(w, http.StatusConflict, err.Error())
			return
		}
		s.logger.WithError(err).WithField("application_id", application.ID).Error("failed to update application status")
		s.internalServerError(w)
		return
	}

	s.logger.WithFields(logrus.Fields{
		"application_id": updated.ID,
		"status":         updated.Status,
		"reviewed_by":    userID,
	}).Info("application reviewed")

	s.writeJSON(w, http.StatusOK, applicationResponse{Application: updated})
}
