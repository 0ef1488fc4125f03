package server

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"volunteerhub/internal/policy"
	"volunteerhub/internal/sanitize"
	"volunteerhub/internal/utils"
	"volunteerhub/pkg/types"

	"github.com/sirupsen/logrus"
)

type applicationForm struct {
	OpportunityID      string   `form:"opportunityId" validate:"required"`
	Motivation         string   `form:"motivation" validate:"required"`
	RelevantExperience string   `form:"relevantExperience"`
	EmergencyContact   string   `form:"emergencyContact" validate:"required"`
	EmergencyPhone     string   `form:"emergencyPhone" validate:"required"`
	Skills             []string `form:"skills"`
	SkillIDs           []string `form:"skillIds"`
}

func (f *applicationForm) normalize() {
	f.OpportunityID = strings.TrimSpace(f.OpportunityID)
	f.Motivation = sanitize.Text(f.Motivation)
	f.RelevantExperience = sanitize.Text(f.RelevantExperience)
	f.EmergencyContact = sanitize.Text(f.EmergencyContact)
	f.EmergencyPhone = sanitize.Text(f.EmergencyPhone)
	f.Skills = sanitize.Texts(append(f.Skills, f.SkillIDs...))
	f.SkillIDs = nil
}

type applicationResponse struct {
	Application *types.Application `json:"application"`
	Skills      []*types.Skill     `json:"skills,omitempty"`
}

var resumeContentTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":  "text/plain",
}

func (s *Service) handlePostApplication(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(s.config.MaxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		s.writeError(w, http.StatusBadRequest, "invalid form submission")
		return
	}

	var form applicationForm
	if err := decoder.Decode(&form, r.Form); err != nil {
		s.logger.WithError(err).Info("failed to decode application form")
		s.writeError(w, http.StatusBadRequest, "invalid form submission")
		return
	}
	form.normalize()

	if err := validate.Struct(form); err != nil {
		s.writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	user, err := s.userRepo.User(ctx, userID)
	if err != nil && !errors.Is(err, types.ErrUserNotFound) {
		s.logger.WithError(err).WithField("user_id", userID).Error("failed to fetch user profile")
		s.internalServerError(w)
		return
	}

	if !policy.CanApply(user) {
		s.writeError(w, http.StatusForbidden, "only volunteers can apply to opportunities")
		return
	}

	if _, err := s.opportunityRepo.Opportunity(ctx, form.OpportunityID); err != nil {
		s.opportunityLookupError(w, err, form.OpportunityID)
		return
	}

	_, err = s.applicationRepo.ApplicationByVolunteerAndOpportunity(ctx, userID, form.OpportunityID)
	switch {
	case err == nil:
		s.writeError(w, http.StatusConflict, types.ErrDuplicateApplication.Error())
		return
	case !errors.Is(err, types.ErrApplicationNotFound):
		s.logger.WithError(err).Error("failed to check for an existing application")
		s.internalServerError(w)
		return
	}

	application := &types.Application{
		ID:                    utils.NanoID(),
		OpportunityID:         form.OpportunityID,
		VolunteerID:           userID,
		Motivation:            form.Motivation,
		RelevantExperience:    utils.NonEmpty(form.RelevantExperience),
		EmergencyContactName:  form.EmergencyContact,
		EmergencyContactPhone: form.EmergencyPhone,
	}

	file, header, err := r.FormFile("resume")
	switch {
	case err == nil:
		defer file.Close()

		key, url, status, uploadErr := s.uploadResume(r, userID, application.ID, file, header)
		if uploadErr != nil {
			s.writeError(w, status, uploadErr.Error())
			return
		}
		application.ResumeStorageKey = utils.StringPtr(key)
		application.ResumeFileURL = utils.StringPtr(url)
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		s.writeError(w, http.StatusBadRequest, "invalid resume upload")
		return
	}

	if err := s.applicationRepo.CreateApplication(ctx, application); err != nil {
		if application.ResumeStorageKey != nil {
			if delErr := s.objects.Delete(ctx, *application.ResumeStorageKey); delErr != nil {
				s.logger.WithError(delErr).WithField("key", *application.ResumeStorageKey).Error("failed to remove orphaned resume")
			}
		}

		if errors.Is(err, types.ErrDuplicateApplication) {
			s.writeError(w, http.StatusConflict, err.Error())
			return
		}
		s.logger.WithError(err).Error("failed to create application")
		s.internalServerError(w)
		return
	}

	s.linkApplicationSkills(r, application.ID, form.Skills)

	s.logger.WithFields(logrus.Fields{
		"application_id": application.ID,
		"opportunity_id": application.OpportunityID,
		"volunteer_id":   userID,
	}).Info("application submitted")

	s.writeJSON(w, http.StatusCreated, applicationResponse{Application: application})
}

// uploadResume stores the file under resumes/<volunteer>/<application>/ and
// returns the key, the public URL, and on failure the status to answer with.
func (s *Service) uploadResume(r *http.Request, volunteerID, applicationID string, file multipart.File, header *multipart.FileHeader) (string, string, int, error) {
	if header.Size > s.config.MaxUploadBytes {
		return "", "", http.StatusBadRequest, fmt.Errorf("resume exceeds the %d byte limit", s.config.MaxUploadBytes)
	}

	filename := safeFilename(header.Filename)
	contentType, ok := resumeContentTypes[strings.ToLower(path.Ext(filename))]
	if !ok {
		return "", "", http.StatusBadRequest, errors.New("resume must be a pdf, doc, docx or txt file")
	}

	key := fmt.Sprintf("resumes/%s/%s/%s", volunteerID, applicationID, filename)

	url, err := s.objects.Upload(r.Context(), key, file, contentType)
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Error("failed to upload resume")
		return "", "", http.StatusInternalServerError, errors.New("failed to upload resume")
	}

	return key, url, 0, nil
}

func (s *Service) linkApplicationSkills(r *http.Request, applicationID string, labels []string) {
	if len(labels) == 0 {
		return
	}

	entry := s.logger.WithField("application_id", applicationID)

	skills, err := s.skillRepo.SkillsByNames(r.Context(), labels)
	if err != nil {
		entry.WithError(err).Warn("failed to resolve application skills")
		return
	}

	for _, warning := range unknownSkillWarnings(labels, skills) {
		entry.Warn(warning)
	}

	if len(skills) == 0 {
		return
	}

	if err := s.skillRepo.LinkApplicationSkills(r.Context(), applicationID, skillIDs(skills)); err != nil {
		entry.WithError(err).Warn("failed to link application skills")
	}
}

func (s *Service) handleGetApplications(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	applications, err := s.applicationRepo.ApplicationsByVolunteer(ctx, userID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("failed to fetch applications")
		s.internalServerError(w)
		return
	}

	s.writeJSON(w, http.StatusOK, applications)
}

func (s *Service) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()
	applicationID := r.PathValue("id")

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	application, creatorID, err := s.applicationRepo.ApplicationWithCreator(ctx, applicationID)
	if err != nil {
		s.applicationLookupError(w, err, applicationID)
		return
	}

	if !policy.CanViewApplication(userID, application, creatorID) {
		s.writeError(w, http.StatusForbidden, "you cannot view this application")
		return
	}

	skills, err := s.skillRepo.SkillsByApplication(ctx, applicationID)
	if err != nil {
		s.logger.WithError(err).WithField("application_id", applicationID).Warn("failed to fetch application skills")
		skills = nil
	}

	s.writeJSON(w, http.StatusOK, applicationResponse{Application: application, Skills: skills})
}

func (s *Service) applicationLookupError(w http.ResponseWriter, err error, applicationID string) {
	if errors.Is(err, types.ErrApplicationNotFound) {
		s.writeError(w, http.StatusNotFound, "application not found")
		return
	}
	s.logger.WithError(err).WithField("application_id", applicationID).Error("failed to fetch application")
	s.internalServerError(w)
}

// safeFilename keeps the base name of an uploaded file and replaces anything
// that would need escaping in an object key.
func safeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "file"
	}
	return out
}
