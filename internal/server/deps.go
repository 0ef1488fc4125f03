package server

import (
	"context"
	"io"

	"volunteerhub/pkg/types"

	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
)

// CognitoAPI is the subset of the Cognito user pool client the routes call.
type CognitoAPI interface {
	SignUp(ctx context.Context, params *cip.SignUpInput, optFns ...func(*cip.Options)) (*cip.SignUpOutput, error)
	ConfirmSignUp(ctx context.Context, params *cip.ConfirmSignUpInput, optFns ...func(*cip.Options)) (*cip.ConfirmSignUpOutput, error)
	ResendConfirmationCode(ctx context.Context, params *cip.ResendConfirmationCodeInput, optFns ...func(*cip.Options)) (*cip.ResendConfirmationCodeOutput, error)
	InitiateAuth(ctx context.Context, params *cip.InitiateAuthInput, optFns ...func(*cip.Options)) (*cip.InitiateAuthOutput, error)
	GetUser(ctx context.Context, params *cip.GetUserInput, optFns ...func(*cip.Options)) (*cip.GetUserOutput, error)
	ForgotPassword(ctx context.Context, params *cip.ForgotPasswordInput, optFns ...func(*cip.Options)) (*cip.ForgotPasswordOutput, error)
	ConfirmForgotPassword(ctx context.Context, params *cip.ConfirmForgotPasswordInput, optFns ...func(*cip.Options)) (*cip.ConfirmForgotPasswordOutput, error)
	AdminDeleteUser(ctx context.Context, params *cip.AdminDeleteUserInput, optFns ...func(*cip.Options)) (*cip.AdminDeleteUserOutput, error)
	GlobalSignOut(ctx context.Context, params *cip.GlobalSignOutInput, optFns ...func(*cip.Options)) (*cip.GlobalSignOutOutput, error)
}

type UserStore interface {
	User(ctx context.Context, userID string) (*types.User, error)
	UserByEmail(ctx context.Context, email string) (*types.User, error)
	UsersByIDs(ctx context.Context, userIDs []string) ([]*types.User, error)
	UpsertProfile(ctx context.Context, user *types.User) error
	Update(ctx context.Context, userID string, user *types.User) error
}

type OpportunityStore interface {
	Opportunity(ctx context.Context, opportunityID string) (*types.Opportunity, error)
	AllOpportunities(ctx context.Context) ([]*types.Opportunity, error)
	OpportunitiesByCreator(ctx context.Context, creatorID string) ([]*types.Opportunity, error)
	CreateOpportunity(ctx context.Context, opportunity *types.Opportunity) error
	UpdateOpportunity(ctx context.Context, opportunityID string, opportunity *types.Opportunity) error
	DeleteOpportunity(ctx context.Context, opportunityID string) error
}

type ApplicationStore interface {
	ApplicationWithCreator(ctx context.Context, applicationID string) (*types.Application, string, error)
	ApplicationByVolunteerAndOpportunity(ctx context.Context, volunteerID, opportunityID string) (*types.Application, error)
	ApplicationsByVolunteer(ctx context.Context, volunteerID string) ([]*types.VolunteerApplication, error)
	ApplicationsByOpportunityIDs(ctx context.Context, opportunityIDs []string) ([]*types.Application, error)
	CreateApplication(ctx context.Context, application *types.Application) error
	UpdateStatus(ctx context.Context, applicationID string, status types.ApplicationStatus, reviewerID string) (*types.Application, error)
}

type CategoryStore interface {
	AllCategories(ctx context.Context) ([]*types.Category, error)
	CategoryByName(ctx context.Context, name string) (*types.Category, error)
}

type SkillStore interface {
	AllSkills(ctx context.Context) ([]*types.Skill, error)
	SkillsByNames(ctx context.Context, names []string) ([]*types.Skill, error)
	SkillsByOpportunity(ctx context.Context, opportunityID string) ([]*types.Skill, error)
	SkillsByVolunteer(ctx context.Context, userID string) ([]*types.Skill, error)
	SkillsByApplication(ctx context.Context, applicationID string) ([]*types.Skill, error)
	LinkApplicationSkills(ctx context.Context, applicationID string, skillIDs []string) error
	LinkOpportunitySkills(ctx context.Context, opportunityID string, skillIDs []string) error
	ReplaceVolunteerSkills(ctx context.Context, userID string, skillIDs []string) error
}

// ObjectStore holds uploaded resumes and profile images.
type ObjectStore interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// Identity is what a verified access token tells us about the caller.
type Identity struct {
	UserID string
}

type TokenVerifier interface {
	Verify(ctx context.Context, accessToken string) (*Identity, error)
}
