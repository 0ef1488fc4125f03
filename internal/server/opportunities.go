package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"volunteerhub/internal/policy"
	"volunteerhub/internal/sanitize"
	"volunteerhub/internal/utils"
	"volunteerhub/pkg/types"

	"github.com/sirupsen/logrus"
)

const dateLayout = "2006-01-02"

type opportunityRequest struct {
	Title            string   `json:"title"`
	Category         string   `json:"category"`
	OrganizationName string   `json:"organizationName"`
	Description      string   `json:"description"`
	Location         string   `json:"location"`
	Date             string   `json:"date" validate:"omitempty,datetime=2006-01-02"`
	StartTime        string   `json:"startTime"`
	EndTime          string   `json:"endTime"`
	MaximumVolunteer *int     `json:"maximumVolunteer" validate:"omitempty,gte=1"`
	ContactEmail     string   `json:"contactEmail" validate:"omitempty,email"`
	Photo            string   `json:"photo"`
	Skills           []string `json:"skills"`
}

func (req *opportunityRequest) normalize() {
	req.Title = sanitize.Text(req.Title)
	req.Category = sanitize.Text(req.Category)
	req.OrganizationName = sanitize.Text(req.OrganizationName)
	req.Description = sanitize.Text(req.Description)
	req.Location = sanitize.Text(req.Location)
	req.Date = strings.TrimSpace(req.Date)
	req.StartTime = strings.TrimSpace(req.StartTime)
	req.EndTime = strings.TrimSpace(req.EndTime)
	req.ContactEmail = strings.TrimSpace(req.ContactEmail)
	req.Photo = strings.TrimSpace(req.Photo)
	req.Skills = sanitize.Texts(req.Skills)
}

type opportunityResponse struct {
	Opportunity *types.Opportunity `json:"opportunity"`
	Warnings    []string           `json:"warnings,omitempty"`
}

func (s *Service) handleGetOpportunities(w http.ResponseWriter, r *http.Request) {
	opportunities, err := s.opportunityRepo.AllOpportunities(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to fetch opportunities")
		s.internalServerError(w)
		return
	}

	s.writeJSON(w, http.StatusOK, opportunities)
}

func (s *Service) handleGetOpportunity(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()
	opportunityID := r.PathValue("id")

	opportunity, err := s.opportunityRepo.Opportunity(ctx, opportunityID)
	if err != nil {
		s.opportunityLookupError(w, err, opportunityID)
		return
	}

	skills, err := s.skillRepo.SkillsByOpportunity(ctx, opportunityID)
	if err != nil {
		s.logger.WithError(err).WithField("opportunity_id", opportunityID).Warn("failed to fetch expected skills")
		skills = []*types.Skill{}
	}

	s.writeJSON(w, http.StatusOK, types.OpportunityDetail{Opportunity: opportunity, Skills: skills})
}

func (s *Service) handlePostOpportunity(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req opportunityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.normalize()

	if err := validate.Struct(req); err != nil {
		s.writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	if req.Title == "" {
		s.writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Category == "" {
		s.writeError(w, http.StatusBadRequest, "category is required")
		return
	}

	user, err := s.userRepo.User(ctx, userID)
	if err != nil && !errors.Is(err, types.ErrUserNotFound) {
		s.logger.WithError(err).WithField("user_id", userID).Error("failed to fetch user profile")
		s.internalServerError(w)
		return
	}

	if !policy.CanCreateOpportunity(user) {
		s.writeError(w, http.StatusForbidden, "only organizers can create opportunities")
		return
	}

	category, err := s.categoryRepo.CategoryByName(ctx, req.Category)
	if err != nil {
		if errors.Is(err, types.ErrCategoryNotFound) {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown category %q", req.Category))
			return
		}
		s.logger.WithError(err).Error("failed to resolve category")
		s.internalServerError(w)
		return
	}

	opportunity := &types.Opportunity{
		Title:            req.Title,
		OrganizationName: utils.NonEmpty(req.OrganizationName),
		CategoryID:       utils.StringPtr(category.ID),
		Description:      utils.NonEmpty(req.Description),
		Location:         utils.NonEmpty(req.Location),
		StartTime:        utils.NonEmpty(req.StartTime),
		EndTime:          utils.NonEmpty(req.EndTime),
		MaximumVolunteer: req.MaximumVolunteer,
		ContactEmail:     utils.NonEmpty(req.ContactEmail),
		Photo:            utils.NonEmpty(req.Photo),
		CreatorID:        userID,
	}
	if opportunity.OrganizationName == nil {
		opportunity.OrganizationName = user.OrganizationName
	}
	if opportunity.ContactEmail == nil {
		opportunity.ContactEmail = user.Email
	}
	if req.Date != "" {
		date, _ := time.Parse(dateLayout, req.Date)
		opportunity.Date = utils.TimePtr(date)
	}

	if err := s.opportunityRepo.CreateOpportunity(ctx, opportunity); err != nil {
		s.logger.WithError(err).Error("failed to create opportunity")
		s.internalServerError(w)
		return
	}

	warnings := s.linkOpportunitySkills(r, opportunity.ID, req.Skills)

	s.logger.WithFields(logrus.Fields{
		"opportunity_id": opportunity.ID,
		"creator_id":     userID,
	}).Info("opportunity created")

	s.writeJSON(w, http.StatusCreated, opportunityResponse{Opportunity: opportunity, Warnings: warnings})
}

// linkOpportunitySkills records expected skills. Failures become warnings and
// never undo the opportunity.
func (s *Service) linkOpportunitySkills(r *http.Request, opportunityID string, labels []string) []string {
	if len(labels) == 0 {
		return nil
	}

	var warnings []string

	skills, err := s.skillRepo.SkillsByNames(r.Context(), labels)
	if err != nil {
		s.logger.WithError(err).WithField("opportunity_id", opportunityID).Warn("failed to resolve skills")
		return []string{"skills could not be saved"}
	}

	warnings = append(warnings, unknownSkillWarnings(labels, skills)...)

	if len(skills) == 0 {
		return warnings
	}

	if err := s.skillRepo.LinkOpportunitySkills(r.Context(), opportunityID, skillIDs(skills)); err != nil {
		s.logger.WithError(err).WithField("opportunity_id", opportunityID).Warn("failed to link skills")
		warnings = append(warnings, "skills could not be saved")
	}

	return warnings
}

func (s *Service) handlePatchOpportunity(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()
	opportunityID := r.PathValue("id")

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	opportunity, err := s.opportunityRepo.Opportunity(ctx, opportunityID)
	if err != nil {
		s.opportunityLookupError(w, err, opportunityID)
		return
	}

	if !policy.CanManageOpportunity(userID, opportunity) {
		s.writeError(w, http.StatusForbidden, "you do not own this opportunity")
		return
	}

	var req opportunityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.normalize()

	// zero means not provided on patch
	if utils.PtrInt(req.MaximumVolunteer) == 0 {
		req.MaximumVolunteer = nil
	}

	if err := validate.Struct(req); err != nil {
		s.writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	if req.Title != "" {
		opportunity.Title = req.Title
	}

	if req.Category != "" {
		category, err := s.categoryRepo.CategoryByName(ctx, req.Category)
		if err != nil {
			if errors.Is(err, types.ErrCategoryNotFound) {
				s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown category %q", req.Category))
				return
			}
			s.logger.WithError(err).Error("failed to resolve category")
			s.internalServerError(w)
			return
		}
		opportunity.CategoryID = utils.StringPtr(category.ID)
	}

	utils.SetIfProvided(&opportunity.OrganizationName, req.OrganizationName)
	utils.SetIfProvided(&opportunity.Description, req.Description)
	utils.SetIfProvided(&opportunity.Location, req.Location)
	utils.SetIfProvided(&opportunity.StartTime, req.StartTime)
	utils.SetIfProvided(&opportunity.EndTime, req.EndTime)
	utils.SetIfProvided(&opportunity.ContactEmail, req.ContactEmail)
	utils.SetIfProvided(&opportunity.Photo, req.Photo)

	if n := utils.PtrInt(req.MaximumVolunteer); n > 0 {
		opportunity.MaximumVolunteer = utils.IntPtr(n)
	}
	if req.Date != "" {
		date, _ := time.Parse(dateLayout, req.Date)
		opportunity.Date = utils.TimePtr(date)
	}

	if err := s.opportunityRepo.UpdateOpportunity(ctx, opportunityID, opportunity); err != nil {
		s.opportunityLookupError(w, err, opportunityID)
		return
	}

	warnings := s.linkOpportunitySkills(r, opportunityID, req.Skills)

	s.writeJSON(w, http.StatusOK, opportunityResponse{Opportunity: opportunity, Warnings: warnings})
}

func (s *Service) handleDeleteOpportunity(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()
	opportunityID := r.PathValue("id")

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	opportunity, err := s.opportunityRepo.Opportunity(ctx, opportunityID)
	if err != nil {
		s.opportunityLookupError(w, err, opportunityID)
		return
	}

	if !policy.CanManageOpportunity(userID, opportunity) {
		s.writeError(w, http.StatusForbidden, "you do not own this opportunity")
		return
	}

	if err := s.opportunityRepo.DeleteOpportunity(ctx, opportunityID); err != nil {
		s.logger.WithError(err).WithField("opportunity_id", opportunityID).Error("failed to delete opportunity")
		s.internalServerError(w)
		return
	}

	s.writeJSON(w, http.StatusOK, messageResponse{Message: "opportunity deleted"})
}

func (s *Service) opportunityLookupError(w http.ResponseWriter, err error, opportunityID string) {
	if errors.Is(err, types.ErrOpportunityNotFound) {
		s.writeError(w, http.StatusNotFound, "opportunity not found")
		return
	}
	s.logger.WithError(err).WithField("opportunity_id", opportunityID).Error("failed to fetch opportunity")
	s.internalServerError(w)
}

func skillIDs(skills []*types.Skill) []string {
	ids := make([]string, 0, len(skills))
	for _, skill := range skills {
		ids = append(ids, skill.ID)
	}
	return ids
}

// unknownSkillWarnings names every requested label that matched no skill.
func unknownSkillWarnings(labels []string, skills []*types.Skill) []string {
	known := make(map[string]bool, len(skills)*2)
	for _, skill := range skills {
		known[skill.ID] = true
		known[skill.Slug] = true
	}

	var warnings []string
	for _, label := range labels {
		if !known[label] && !known[utils.Slugify(label)] {
			warnings = append(warnings, fmt.Sprintf("unknown skill %q", label))
		}
	}
	return warnings
}
