package server

import (
	"net/http"
)

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Service) handleGetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.categoryRepo.AllCategories(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to fetch categories")
		s.internalServerError(w)
		return
	}

	s.writeJSON(w, http.StatusOK, categories)
}

func (s *Service) handleGetSkills(w http.ResponseWriter, r *http.Request) {
	skills, err := s.skillRepo.AllSkills(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to fetch skills")
		s.internalServerError(w)
		return
	}

	s.writeJSON(w, http.StatusOK, skills)
}
