package server

import (
	"errors"
	"net/http"
	"strings"

	"volunteerhub/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	ctypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/aws/smithy-go"
)

type loginRequest struct {
	Email    string     `json:"email" validate:"required,email"`
	Password string     `json:"password" validate:"required"`
	Role     types.Role `json:"role" validate:"required,oneof=volunteer organizer"`
}

type userResponse struct {
	User    *types.User `json:"user,omitempty"`
	Message string      `json:"message,omitempty"`
}

func (s *Service) handlePostLogin(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	if err := validate.Struct(req); err != nil {
		s.writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	input := &cognitoidentityprovider.InitiateAuthInput{
		AuthFlow: ctypes.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(s.config.CognitoClientID),
		AuthParameters: map[string]string{
			"USERNAME": req.Email,
			"PASSWORD": req.Password,
		},
	}

	resp, err := s.cognito.InitiateAuth(ctx, input)
	if err != nil {
		s.logger.WithError(err).WithField("email", req.Email).Info("login rejected by identity provider")
		status, msg := cognitoError(err)
		s.writeError(w, status, msg)
		return
	}

	if resp.AuthenticationResult == nil || resp.AuthenticationResult.AccessToken == nil {
		s.writeError(w, http.StatusUnauthorized, "login failed")
		return
	}

	accessToken := aws.ToString(resp.AuthenticationResult.AccessToken)

	identity, err := s.cognito.GetUser(ctx, &cognitoidentityprovider.GetUserInput{
		AccessToken: aws.String(accessToken),
	})
	if err != nil {
		s.logger.WithError(err).Error("failed to resolve identity for access token")
		status, msg := cognitoError(err)
		s.writeError(w, status, msg)
		return
	}

	userID := subjectFromAttributes(identity.UserAttributes)
	if userID == "" {
		userID = aws.ToString(identity.Username)
	}

	user, err := s.userRepo.User(ctx, userID)
	if err != nil {
		if errors.Is(err, types.ErrUserNotFound) {
			s.writeError(w, http.StatusUnauthorized, "no profile exists for this account")
			return
		}
		s.logger.WithError(err).WithField("user_id", userID).Error("failed to fetch user profile")
		s.internalServerError(w)
		return
	}

	if user.Role != req.Role {
		s.logger.WithField("user_id", userID).Info("login role does not match stored role")
		s.writeError(w, http.StatusUnauthorized, "invalid role for this account")
		return
	}

	maxAge := int(resp.AuthenticationResult.ExpiresIn)
	if maxAge <= 0 {
		maxAge = s.config.SessionMaxAgeSec
	}

	if err := s.setSessionCookie(w, accessToken, maxAge); err != nil {
		s.logger.WithError(err).Error("failed to encrypt access token")
		s.internalServerError(w)
		return
	}

	s.writeJSON(w, http.StatusOK, userResponse{User: user})
}

func (s *Service) handlePostLogout(w http.ResponseWriter, r *http.Request) {
	accessToken, err := s.accessTokenFromRequest(r)
	if err == nil {
		_, err = s.cognito.GlobalSignOut(r.Context(), &cognitoidentityprovider.GlobalSignOutInput{
			AccessToken: aws.String(accessToken),
		})
		if err != nil {
			s.logger.WithError(err).Warn("failed to sign out of identity provider")
		}
	}

	s.clearSessionCookie(w)
	s.writeJSON(w, http.StatusOK, messageResponse{Message: "logged out"})
}

func (s *Service) setSessionCookie(w http.ResponseWriter, accessToken string, maxAge int) error {
	encryptedToken, err := s.cookie.Encode(s.config.CookieName, accessToken)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.config.CookieName,
		Value:    encryptedToken,
		HttpOnly: true,
		Secure:   s.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
		Path:     "/",
	})

	return nil
}

func (s *Service) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.CookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   s.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}

func (s *Service) accessTokenFromRequest(r *http.Request) (string, error) {
	cookie, err := r.Cookie(s.config.CookieName)
	if err != nil {
		return "", err
	}

	var accessToken string
	if err := s.cookie.Decode(s.config.CookieName, cookie.Value, &accessToken); err != nil {
		return "", err
	}

	return accessToken, nil
}

func subjectFromAttributes(attrs []ctypes.AttributeType) string {
	for _, attr := range attrs {
		if aws.ToString(attr.Name) == "sub" {
			return aws.ToString(attr.Value)
		}
	}
	return ""
}

// cognitoError maps an identity provider failure to a status code and the
// provider's own message.
func cognitoError(err error) (int, string) {
	msg := "identity provider request failed"

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorMessage() != "" {
		msg = apiErr.ErrorMessage()
	}

	switch {
	case errors.As(err, new(*ctypes.NotAuthorizedException)),
		errors.As(err, new(*ctypes.UserNotConfirmedException)),
		errors.As(err, new(*ctypes.UserNotFoundException)),
		errors.As(err, new(*ctypes.PasswordResetRequiredException)):
		return http.StatusUnauthorized, msg
	case errors.As(err, new(*ctypes.InvalidPasswordException)),
		errors.As(err, new(*ctypes.UsernameExistsException)),
		errors.As(err, new(*ctypes.InvalidParameterException)),
		errors.As(err, new(*ctypes.CodeMismatchException)),
		errors.As(err, new(*ctypes.ExpiredCodeException)),
		errors.As(err, new(*ctypes.LimitExceededException)),
		errors.As(err, new(*ctypes.TooManyRequestsException)):
		return http.StatusBadRequest, msg
	}

	return http.StatusInternalServerError, msg
}
