package server

import (
	"errors"
	"net/http"
	"strings"

	"volunteerhub/internal/sanitize"
	"volunteerhub/internal/utils"
	"volunteerhub/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	ctypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/sirupsen/logrus"
)

type registerRequest struct {
	FirstName        string     `json:"firstName" validate:"required"`
	LastName         string     `json:"lastName" validate:"required"`
	Email            string     `json:"email" validate:"required,email"`
	Password         string     `json:"password" validate:"required,min=8"`
	Role             types.Role `json:"role" validate:"required,oneof=volunteer organizer"`
	Phone            string     `json:"phone"`
	Location         string     `json:"location"`
	OrganizationName string     `json:"organizationName" validate:"required_if=Role organizer"`
}

func (req *registerRequest) normalize() {
	req.FirstName = sanitize.Text(req.FirstName)
	req.LastName = sanitize.Text(req.LastName)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = sanitize.Text(req.Phone)
	req.Location = sanitize.Text(req.Location)
	req.OrganizationName = sanitize.Text(req.OrganizationName)
}

func (s *Service) handlePostRegister(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.normalize()

	if err := validate.Struct(req); err != nil {
		s.logger.WithError(err).Info("validation errors during registration")
		s.writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	input := &cognitoidentityprovider.SignUpInput{
		ClientId: aws.String(s.config.CognitoClientID),
		Username: aws.String(req.Email), // use email as username
		Password: aws.String(req.Password),
		UserAttributes: []ctypes.AttributeType{
			{Name: aws.String("email"), Value: aws.String(req.Email)},
			{Name: aws.String("given_name"), Value: aws.String(req.FirstName)},
			{Name: aws.String("family_name"), Value: aws.String(req.LastName)},
		},
	}

	resp, err := s.cognito.SignUp(ctx, input)
	if err != nil {
		s.logger.WithError(err).Error("failed to signup user")
		status, msg := cognitoError(err)
		s.writeError(w, status, msg)
		return
	}

	user := &types.User{
		ID:               aws.ToString(resp.UserSub),
		FirstName:        utils.StringPtr(req.FirstName),
		LastName:         utils.StringPtr(req.LastName),
		Email:            utils.StringPtr(req.Email),
		Phone:            utils.NonEmpty(req.Phone),
		Location:         utils.NonEmpty(req.Location),
		Role:             req.Role,
		OrganizationName: utils.NonEmpty(req.OrganizationName),
	}

	if err := s.userRepo.UpsertProfile(ctx, user); err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Error("failed to write profile for new identity")
		s.deleteIdentity(r, req.Email)
		s.internalServerError(w)
		return
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("user registered")

	s.writeJSON(w, http.StatusCreated, userResponse{User: user})
}

// deleteIdentity removes an identity whose profile row could not be written.
func (s *Service) deleteIdentity(r *http.Request, email string) {
	_, err := s.cognito.AdminDeleteUser(r.Context(), &cognitoidentityprovider.AdminDeleteUserInput{
		UserPoolId: aws.String(s.config.CognitoUserPoolID),
		Username:   aws.String(email),
	})
	if err != nil {
		s.logger.WithError(err).WithField("email", email).Error("failed to delete orphaned identity")
	}
}

type verifyEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	Token string `json:"token" validate:"required"`
}

func (s *Service) handlePostVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	var req verifyEmailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Token = strings.TrimSpace(req.Token)

	if err := validate.Struct(req); err != nil {
		s.writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	_, err := s.cognito.ConfirmSignUp(ctx, &cognitoidentityprovider.ConfirmSignUpInput{
		ClientId:         aws.String(s.config.CognitoClientID),
		Username:         aws.String(req.Email),
		ConfirmationCode: aws.String(req.Token),
	})
	if err != nil {
		s.logger.WithError(err).Error("failed to confirm user signup")
		s.writeError(w, clientErrorStatus(err), providerMessage(err))
		return
	}

	resp := userResponse{Message: "email verified"}

	user, err := s.userRepo.UserByEmail(ctx, req.Email)
	switch {
	case err == nil:
		resp.User = user
	case errors.Is(err, types.ErrUserNotFound):
	default:
		s.logger.WithError(err).Warn("failed to look up profile after email verification")
	}

	s.writeJSON(w, http.StatusOK, resp)
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (s *Service) handlePostResendVerification(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	if err := validate.Struct(req); err != nil {
		s.writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	_, err := s.cognito.ResendConfirmationCode(r.Context(), &cognitoidentityprovider.ResendConfirmationCodeInput{
		ClientId: aws.String(s.config.CognitoClientID),
		Username: aws.String(req.Email),
	})
	if err != nil {
		s.logger.WithError(err).Error("failed to resend confirmation code")
		s.writeError(w, clientErrorStatus(err), providerMessage(err))
		return
	}

	s.writeJSON(w, http.StatusOK, messageResponse{Message: "verification code sent"})
}

const forgotPasswordMessage = "if an account exists for this email, a reset code has been sent"

// handlePostForgotPassword answers 200 whatever the provider says so the
// endpoint cannot be used to probe for accounts.
func (s *Service) handlePostForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.logger.WithError(err).Info("unreadable forgot password request")
		s.writeJSON(w, http.StatusOK, messageResponse{Message: forgotPasswordMessage})
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	if req.Email != "" {
		_, err := s.cognito.ForgotPassword(r.Context(), &cognitoidentityprovider.ForgotPasswordInput{
			ClientId: aws.String(s.config.CognitoClientID),
			Username: aws.String(req.Email),
		})
		if err != nil {
			s.logger.WithError(err).Warn("forgot password request failed")
		}
	}

	s.writeJSON(w, http.StatusOK, messageResponse{Message: forgotPasswordMessage})
}

type resetPasswordRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Code     string `json:"code" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

func (s *Service) handlePostResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Code = strings.TrimSpace(req.Code)

	if err := validate.Struct(req); err != nil {
		s.writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	_, err := s.cognito.ConfirmForgotPassword(r.Context(), &cognitoidentityprovider.ConfirmForgotPasswordInput{
		ClientId:         aws.String(s.config.CognitoClientID),
		Username:         aws.String(req.Email),
		ConfirmationCode: aws.String(req.Code),
		Password:         aws.String(req.Password),
	})
	if err != nil {
		s.logger.WithError(err).Error("failed to reset password")
		s.writeError(w, clientErrorStatus(err), providerMessage(err))
		return
	}

	s.writeJSON(w, http.StatusOK, messageResponse{Message: "password updated"})
}

// clientErrorStatus is cognitoError for the code-exchange endpoints, where
// every rejection is the caller's to fix.
func clientErrorStatus(err error) int {
	status, _ := cognitoError(err)
	if status == http.StatusInternalServerError {
		return status
	}
	return http.StatusBadRequest
}

func providerMessage(err error) string {
	_, msg := cognitoError(err)
	return msg
}
