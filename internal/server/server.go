package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"volunteerhub/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/sirupsen/logrus"
)

var decoder = form.NewDecoder()

type Service struct {
	logger *logrus.Logger
	config *types.Config

	cognito  CognitoAPI
	verifier TokenVerifier
	cookie   *securecookie.SecureCookie
	objects  ObjectStore

	userRepo        UserStore
	opportunityRepo OpportunityStore
	applicationRepo ApplicationStore
	categoryRepo    CategoryStore
	skillRepo       SkillStore

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	cognito CognitoAPI,
	verifier TokenVerifier,
	objects ObjectStore,
	userRepo UserStore,
	opportunityRepo OpportunityStore,
	applicationRepo ApplicationStore,
	categoryRepo CategoryStore,
	skillRepo SkillStore,
) (*Service, error) {
	mux := flow.New()

	cookie, err := newSecureCookie(config, logger)
	if err != nil {
		return nil, err
	}

	s := &Service{
		logger:   logger,
		config:   config,
		cognito:  cognito,
		verifier: verifier,
		cookie:   cookie,
		objects:  objects,

		userRepo:        userRepo,
		opportunityRepo: opportunityRepo,
		applicationRepo: applicationRepo,
		categoryRepo:    categoryRepo,
		skillRepo:       skillRepo,

		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	s.buildRouter(mux)

	// Unmatched paths never reach per-route middleware, so these wrap the mux.
	s.server.Handler = s.LoggingMiddleware(s.StripTrailingSlash(mux))

	return s, nil
}

// newSecureCookie decodes the configured keys. Without keys a random pair is
// generated, which invalidates every session on restart.
func newSecureCookie(config *types.Config, logger *logrus.Logger) (*securecookie.SecureCookie, error) {
	if config.CookieHashKey == "" || config.CookieBlockKey == "" {
		logger.Warn("cookie keys not configured, generating ephemeral keys")
		return securecookie.New(securecookie.GenerateRandomKey(64), securecookie.GenerateRandomKey(32)), nil
	}

	hashKey, err := base64.StdEncoding.DecodeString(config.CookieHashKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode cookie hash key: %w", err)
	}

	blockKey, err := base64.StdEncoding.DecodeString(config.CookieBlockKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode cookie block key: %w", err)
	}

	return securecookie.New(hashKey, blockKey), nil
}

// Handler exposes the router, mostly for tests.
func (s *Service) Handler() http.Handler {
	return s.server.Handler
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)

	r.HandleFunc("/api/auth/register", s.handlePostRegister, http.MethodPost)
	r.HandleFunc("/api/auth/login", s.handlePostLogin, http.MethodPost)
	r.HandleFunc("/api/auth/logout", s.handlePostLogout, http.MethodPost)
	r.HandleFunc("/api/auth/email-verify", s.handlePostVerifyEmail, http.MethodPost)
	r.HandleFunc("/api/auth/verify-email", s.handlePostVerifyEmail, http.MethodPost)
	r.HandleFunc("/api/auth/resend-verification", s.handlePostResendVerification, http.MethodPost)
	r.HandleFunc("/api/auth/forgot-password", s.handlePostForgotPassword, http.MethodPost)
	r.HandleFunc("/api/auth/reset-password", s.handlePostResetPassword, http.MethodPost)

	r.HandleFunc("/api/categories", s.handleGetCategories, http.MethodGet)
	r.HandleFunc("/api/skills", s.handleGetSkills, http.MethodGet)

	r.HandleFunc("/api/opportunities", s.handleGetOpportunities, http.MethodGet)
	r.HandleFunc("/api/opportunities/:id", s.handleGetOpportunity, http.MethodGet)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)

		r.HandleFunc("/api/opportunities", s.handlePostOpportunity, http.MethodPost)
		r.HandleFunc("/api/opportunities/:id", s.handlePatchOpportunity, http.MethodPatch)
		r.HandleFunc("/api/opportunities/:id", s.handleDeleteOpportunity, http.MethodDelete)

		// Organizer review routes are registered before /api/applications/:id
		// so the literal segment wins.
		r.HandleFunc("/api/applications/organization", s.handleGetOrganizationApplications, http.MethodGet)
		r.HandleFunc("/api/applications/organization", s.handlePatchOrganizationApplication, http.MethodPatch)
		r.HandleFunc("/api/organization/applications", s.handleGetOrganizationApplications, http.MethodGet)
		r.HandleFunc("/api/organization/applications", s.handlePatchOrganizationApplication, http.MethodPatch)

		r.HandleFunc("/api/applications", s.handlePostApplication, http.MethodPost)
		r.HandleFunc("/api/applications", s.handleGetApplications, http.MethodGet)
		r.HandleFunc("/api/applications/:id", s.handleGetApplication, http.MethodGet)

		r.HandleFunc("/api/profile", s.handleGetProfile, http.MethodGet)
		r.HandleFunc("/api/profile", s.handlePutProfile, http.MethodPut)
		r.HandleFunc("/api/profile/upload-image", s.handlePostProfileImage, http.MethodPost)
	})
}

func (s *Service) userIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(contextKeyUserID).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user id not found in context")
	}
	return userID, nil
}
