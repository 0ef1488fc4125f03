package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"volunteerhub/internal/sanitize"
	"volunteerhub/internal/utils"
	"volunteerhub/pkg/types"
)

type profileResponse struct {
	User   *types.User    `json:"user"`
	Skills []*types.Skill `json:"skills"`
}

func (s *Service) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := s.userRepo.User(ctx, userID)
	if err != nil {
		s.userLookupError(w, err, userID)
		return
	}

	skills, err := s.skillRepo.SkillsByVolunteer(ctx, userID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("failed to fetch volunteer skills")
		skills = []*types.Skill{}
	}

	s.writeJSON(w, http.StatusOK, profileResponse{User: user, Skills: skills})
}

// profileRequest carries the editable profile fields. Role and email are not
// editable here.
type profileRequest struct {
	FirstName        string    `json:"firstName"`
	LastName         string    `json:"lastName"`
	Phone            string    `json:"phone"`
	Location         string    `json:"location"`
	OrganizationName string    `json:"organizationName"`
	Bio              string    `json:"bio"`
	ProfileImageURL  string    `json:"profileImageUrl"`
	Skills           *[]string `json:"skills"`
}

// handlePutProfile merges the request into the stored profile. Empty values
// leave the stored value unchanged.
func (s *Service) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req profileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := s.userRepo.User(ctx, userID)
	if err != nil {
		s.userLookupError(w, err, userID)
		return
	}

	utils.SetIfProvided(&user.FirstName, sanitize.Text(req.FirstName))
	utils.SetIfProvided(&user.LastName, sanitize.Text(req.LastName))
	utils.SetIfProvided(&user.Phone, sanitize.Text(req.Phone))
	utils.SetIfProvided(&user.Location, sanitize.Text(req.Location))
	utils.SetIfProvided(&user.OrganizationName, sanitize.Text(req.OrganizationName))
	utils.SetIfProvided(&user.Bio, sanitize.Text(req.Bio))
	utils.SetIfProvided(&user.ProfileImageURL, strings.TrimSpace(req.ProfileImageURL))

	if err := s.userRepo.Update(ctx, userID, user); err != nil {
		s.userLookupError(w, err, userID)
		return
	}

	if req.Skills != nil && user.Role == types.RoleVolunteer {
		s.replaceVolunteerSkills(r, userID, sanitize.Texts(*req.Skills))
	}

	s.writeJSON(w, http.StatusOK, userResponse{User: user})
}

func (s *Service) replaceVolunteerSkills(r *http.Request, userID string, labels []string) {
	entry := s.logger.WithField("user_id", userID)

	skills := []*types.Skill{}
	if len(labels) > 0 {
		var err error
		skills, err = s.skillRepo.SkillsByNames(r.Context(), labels)
		if err != nil {
			entry.WithError(err).Warn("failed to resolve volunteer skills")
			return
		}
	}

	for _, warning := range unknownSkillWarnings(labels, skills) {
		entry.Warn(warning)
	}

	if err := s.skillRepo.ReplaceVolunteerSkills(r.Context(), userID, skillIDs(skills)); err != nil {
		entry.WithError(err).Warn("failed to replace volunteer skills")
	}
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type profileImageResponse struct {
	ProfileImageURL string `json:"profileImageUrl"`
}

func (s *Service) handlePostProfileImage(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes+(1<<20))

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "an image file is required")
		return
	}
	defer file.Close()

	if header.Size > s.config.MaxUploadBytes {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("image exceeds the %d byte limit", s.config.MaxUploadBytes))
		return
	}

	// Sniff the content rather than trusting the client's header.
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		s.writeError(w, http.StatusBadRequest, "failed to read image")
		return
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	ext, ok := imageExtensions[contentType]
	if !ok {
		s.writeError(w, http.StatusBadRequest, "image must be jpeg, png, gif or webp")
		return
	}

	key := fmt.Sprintf("profile-images/%s/%s%s", userID, utils.NanoID(), ext)

	url, err := s.objects.Upload(ctx, key, io.MultiReader(bytes.NewReader(head), file), contentType)
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Error("failed to upload profile image")
		s.internalServerError(w)
		return
	}

	s.writeJSON(w, http.StatusOK, profileImageResponse{ProfileImageURL: url})
}

func (s *Service) userLookupError(w http.ResponseWriter, err error, userID string) {
	if errors.Is(err, types.ErrUserNotFound) {
		s.writeError(w, http.StatusNotFound, "profile not found")
		return
	}
	s.logger.WithError(err).WithField("user_id", userID).Error("failed to fetch user profile")
	s.internalServerError(w)
}
