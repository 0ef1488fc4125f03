package server

import (
	"net/http"
	"testing"

	"volunteerhub/internal/utils"
	"volunteerhub/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reviewPaths = []string{"/api/applications/organization", "/api/organization/applications"}

func reviewHarness(t *testing.T) *harness {
	h := newHarness(t)
	h.addUser("org-1", types.RoleOrganizer)
	h.addUser("org-2", types.RoleOrganizer)
	h.addUser("vol-1", types.RoleVolunteer)
	h.addUser("vol-2", types.RoleVolunteer)
	h.addOpportunity("opp-1", "org-1")
	h.addOpportunity("opp-2", "org-2")
	h.addApplication("app-1", "opp-1", "vol-1", types.ApplicationStatusPending)
	h.addApplication("app-2", "opp-1", "vol-2", types.ApplicationStatusPending)
	h.addApplication("app-3", "opp-2", "vol-1", types.ApplicationStatusPending)
	return h
}

func review(t *testing.T, h *harness, path, userID, applicationID, status string) int {
	t.Helper()
	req := jsonRequest(t, http.MethodPatch, path, map[string]string{
		"applicationId": applicationID,
		"status":        status,
	})
	return h.do(h.authenticate(t, req, userID)).Code
}

func TestReview_NonOwnerForbiddenAndStatusUnchanged(t *testing.T) {
	for _, path := range reviewPaths {
		t.Run(path, func(t *testing.T) {
			h := reviewHarness(t)

			assert.Equal(t, http.StatusForbidden, review(t, h, path, "org-2", "app-1", "approved"))
			assert.Equal(t, http.StatusForbidden, review(t, h, path, "vol-1", "app-1", "approved"))

			stored := h.applications.items["app-1"]
			assert.Equal(t, types.ApplicationStatusPending, stored.Status)
			assert.Nil(t, stored.ReviewedBy)
		})
	}
}

func TestReview_ApprovedStaysApproved(t *testing.T) {
	for _, path := range reviewPaths {
		t.Run(path, func(t *testing.T) {
			h := reviewHarness(t)

			req := jsonRequest(t, http.MethodPatch, path, map[string]string{"applicationId": "app-1", "status": "approved"})
			rec := h.do(h.authenticate(t, req, "org-1"))
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var resp applicationResponse
			decodeResponse(t, rec, &resp)
			assert.Equal(t, types.ApplicationStatusApproved, resp.Application.Status)
			assert.Equal(t, "org-1", utils.PtrString(resp.Application.ReviewedBy))
			assert.NotNil(t, resp.Application.ReviewedAt)

			assert.Equal(t, http.StatusConflict, review(t, h, path, "org-1", "app-1", "rejected"))
			assert.Equal(t, http.StatusConflict, review(t, h, path, "org-1", "app-1", "approved"))
			assert.Equal(t, types.ApplicationStatusApproved, h.applications.items["app-1"].Status)
		})
	}
}

func TestReview_Reject(t *testing.T) {
	h := reviewHarness(t)

	assert.Equal(t, http.StatusOK, review(t, h, reviewPaths[0], "org-1", "app-2", "Rejected"))
	assert.Equal(t, types.ApplicationStatusRejected, h.applications.items["app-2"].Status)
}

func TestReview_InvalidStatus(t *testing.T) {
	h := reviewHarness(t)

	assert.Equal(t, http.StatusBadRequest, review(t, h, reviewPaths[0], "org-1", "app-1", "pending"))
	assert.Equal(t, http.StatusBadRequest, review(t, h, reviewPaths[0], "org-1", "app-1", "maybe"))
	assert.Equal(t, http.StatusBadRequest, review(t, h, reviewPaths[0], "org-1", "app-1", ""))
	assert.Equal(t, types.ApplicationStatusPending, h.applications.items["app-1"].Status)
}

func TestReview_NotFound(t *testing.T) {
	h := reviewHarness(t)

	assert.Equal(t, http.StatusNotFound, review(t, h, reviewPaths[1], "org-1", "app-missing", "approved"))
}

func TestReview_Unauthenticated(t *testing.T) {
	h := reviewHarness(t)

	req := jsonRequest(t, http.MethodPatch, reviewPaths[0], map[string]string{"applicationId": "app-1", "status": "approved"})
	assert.Equal(t, http.StatusUnauthorized, h.do(req).Code)
}

func TestOrganizationApplications_SameShapeOnBothPaths(t *testing.T) {
	h := reviewHarness(t)

	var bodies []string
	for _, path := range reviewPaths {
		rec := h.do(h.authenticate(t, jsonRequest(t, http.MethodGet, path, nil), "org-1"))
		require.Equal(t, http.StatusOK, rec.Code)
		bodies = append(bodies, rec.Body.String())

		var entries []*types.OrganizationApplication
		decodeResponse(t, rec, &entries)
		require.Len(t, entries, 2)

		for _, entry := range entries {
			require.NotNil(t, entry.Application)
			require.NotNil(t, entry.Volunteer)
			require.NotNil(t, entry.Opportunity)
			assert.Equal(t, "opp-1", entry.Opportunity.ID)
			assert.Equal(t, entry.Application.VolunteerID, entry.Volunteer.ID)
		}
	}

	assert.Equal(t, bodies[0], bodies[1])
}

func TestOrganizationApplications_NoOpportunities(t *testing.T) {
	h := reviewHarness(t)
	h.addUser("org-3", types.RoleOrganizer)

	rec := h.do(h.authenticate(t, jsonRequest(t, http.MethodGet, reviewPaths[0], nil), "org-3"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}
