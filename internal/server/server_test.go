package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"volunteerhub/internal/utils"
	"volunteerhub/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	ctypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const testCookieName = "vh_session"

// fakeCognito records calls and answers from canned values.
type fakeCognito struct {
	mu sync.Mutex

	userSub     string
	signUpErr   error
	signUpCalls int
	deleted     []string

	passwords  map[string]string // email -> password
	subs       map[string]string // email -> sub
	getUserErr error

	confirmErr   error
	confirmCalls int
	resendErr    error
	forgotErr    error
	forgotCalls  int
	resetErr     error
	resetCalls   int
	signedOut    []string
}

func newFakeCognito() *fakeCognito {
	return &fakeCognito{
		userSub:   "sub-new",
		passwords: map[string]string{},
		subs:      map[string]string{},
	}
}

func (f *fakeCognito) SignUp(ctx context.Context, in *cip.SignUpInput, _ ...func(*cip.Options)) (*cip.SignUpOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signUpCalls++
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return &cip.SignUpOutput{UserSub: aws.String(f.userSub)}, nil
}

func (f *fakeCognito) ConfirmSignUp(ctx context.Context, in *cip.ConfirmSignUpInput, _ ...func(*cip.Options)) (*cip.ConfirmSignUpOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmCalls++
	if f.confirmErr != nil {
		return nil, f.confirmErr
	}
	return &cip.ConfirmSignUpOutput{}, nil
}

func (f *fakeCognito) ResendConfirmationCode(ctx context.Context, in *cip.ResendConfirmationCodeInput, _ ...func(*cip.Options)) (*cip.ResendConfirmationCodeOutput, error) {
	if f.resendErr != nil {
		return nil, f.resendErr
	}
	return &cip.ResendConfirmationCodeOutput{}, nil
}

func (f *fakeCognito) InitiateAuth(ctx context.Context, in *cip.InitiateAuthInput, _ ...func(*cip.Options)) (*cip.InitiateAuthOutput, error) {
	email := in.AuthParameters["USERNAME"]
	if pw, ok := f.passwords[email]; !ok || pw != in.AuthParameters["PASSWORD"] {
		return nil, &ctypes.NotAuthorizedException{Message: aws.String("Incorrect username or password.")}
	}
	return &cip.InitiateAuthOutput{
		AuthenticationResult: &ctypes.AuthenticationResultType{
			AccessToken: aws.String("access-" + email),
			ExpiresIn:   3600,
		},
	}, nil
}

func (f *fakeCognito) GetUser(ctx context.Context, in *cip.GetUserInput, _ ...func(*cip.Options)) (*cip.GetUserOutput, error) {
	if f.getUserErr != nil {
		return nil, f.getUserErr
	}
	email := strings.TrimPrefix(aws.ToString(in.AccessToken), "access-")
	return &cip.GetUserOutput{
		Username: aws.String(email),
		UserAttributes: []ctypes.AttributeType{
			{Name: aws.String("email"), Value: aws.String(email)},
			{Name: aws.String("sub"), Value: aws.String(f.subs[email])},
		},
	}, nil
}

func (f *fakeCognito) ForgotPassword(ctx context.Context, in *cip.ForgotPasswordInput, _ ...func(*cip.Options)) (*cip.ForgotPasswordOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forgotCalls++
	if f.forgotErr != nil {
		return nil, f.forgotErr
	}
	return &cip.ForgotPasswordOutput{}, nil
}

func (f *fakeCognito) ConfirmForgotPassword(ctx context.Context, in *cip.ConfirmForgotPasswordInput, _ ...func(*cip.Options)) (*cip.ConfirmForgotPasswordOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetCalls++
	if f.resetErr != nil {
		return nil, f.resetErr
	}
	return &cip.ConfirmForgotPasswordOutput{}, nil
}

func (f *fakeCognito) AdminDeleteUser(ctx context.Context, in *cip.AdminDeleteUserInput, _ ...func(*cip.Options)) (*cip.AdminDeleteUserOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, aws.ToString(in.Username))
	return &cip.AdminDeleteUserOutput{}, nil
}

func (f *fakeCognito) GlobalSignOut(ctx context.Context, in *cip.GlobalSignOutInput, _ ...func(*cip.Options)) (*cip.GlobalSignOutOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signedOut = append(f.signedOut, aws.ToString(in.AccessToken))
	return &cip.GlobalSignOutOutput{}, nil
}

type fakeVerifier struct {
	mu     sync.Mutex
	tokens map[string]string // access token -> user id
}

func (f *fakeVerifier) Verify(ctx context.Context, accessToken string) (*Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	userID, ok := f.tokens[accessToken]
	if !ok {
		return nil, errors.New("unknown token")
	}
	return &Identity{UserID: userID}, nil
}

type memUsers struct {
	mu        sync.Mutex
	users     map[string]*types.User
	upsertErr error
}

func (m *memUsers) User(ctx context.Context, userID string) (*types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, types.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (m *memUsers) UserByEmail(ctx context.Context, email string) (*types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(utils.PtrString(u.Email), email) {
			c := *u
			return &c, nil
		}
	}
	return nil, types.ErrUserNotFound
}

func (m *memUsers) UsersByIDs(ctx context.Context, userIDs []string) ([]*types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*types.User, 0, len(userIDs))
	for _, id := range userIDs {
		if u, ok := m.users[id]; ok {
			c := *u
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *memUsers) UpsertProfile(ctx context.Context, user *types.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	c := *user
	m.users[user.ID] = &c
	return nil
}

func (m *memUsers) Update(ctx context.Context, userID string, user *types.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[userID]; !ok {
		return types.ErrUserNotFound
	}
	c := *user
	m.users[userID] = &c
	return nil
}

type memOpportunities struct {
	mu    sync.Mutex
	items map[string]*types.Opportunity
	seq   int
}

func (m *memOpportunities) Opportunity(ctx context.Context, id string) (*types.Opportunity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.items[id]
	if !ok {
		return nil, types.ErrOpportunityNotFound
	}
	c := *o
	return &c, nil
}

func (m *memOpportunities) AllOpportunities(ctx context.Context) ([]*types.Opportunity, error) {
	return m.filter(func(*types.Opportunity) bool { return true }), nil
}

func (m *memOpportunities) OpportunitiesByCreator(ctx context.Context, creatorID string) ([]*types.Opportunity, error) {
	return m.filter(func(o *types.Opportunity) bool { return o.CreatorID == creatorID }), nil
}

func (m *memOpportunities) filter(keep func(*types.Opportunity) bool) []*types.Opportunity {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*types.Opportunity, 0)
	for _, o := range m.items {
		if keep(o) {
			c := *o
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memOpportunities) CreateOpportunity(ctx context.Context, o *types.Opportunity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	o.ID = fmt.Sprintf("opp-new-%d", m.seq)
	c := *o
	m.items[o.ID] = &c
	return nil
}

func (m *memOpportunities) UpdateOpportunity(ctx context.Context, id string, o *types.Opportunity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return types.ErrOpportunityNotFound
	}
	c := *o
	m.items[id] = &c
	return nil
}

func (m *memOpportunities) DeleteOpportunity(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

type memApplications struct {
	mu        sync.Mutex
	items     map[string]*types.Application
	opps      *memOpportunities
	createErr error
}

func (m *memApplications) get(id string) *types.Application {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok {
		return nil
	}
	c := *a
	return &c
}

func (m *memApplications) ApplicationWithCreator(ctx context.Context, id string) (*types.Application, string, error) {
	a := m.get(id)
	if a == nil {
		return nil, "", types.ErrApplicationNotFound
	}
	opp, err := m.opps.Opportunity(ctx, a.OpportunityID)
	if err != nil {
		return nil, "", err
	}
	return a, opp.CreatorID, nil
}

func (m *memApplications) ApplicationByVolunteerAndOpportunity(ctx context.Context, volunteerID, opportunityID string) (*types.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.items {
		if a.VolunteerID == volunteerID && a.OpportunityID == opportunityID {
			c := *a
			return &c, nil
		}
	}
	return nil, types.ErrApplicationNotFound
}

func (m *memApplications) ApplicationsByVolunteer(ctx context.Context, volunteerID string) ([]*types.VolunteerApplication, error) {
	m.mu.Lock()
	apps := make([]*types.Application, 0)
	for _, a := range m.items {
		if a.VolunteerID == volunteerID {
			c := *a
			apps = append(apps, &c)
		}
	}
	m.mu.Unlock()

	out := make([]*types.VolunteerApplication, 0, len(apps))
	for _, a := range apps {
		va := &types.VolunteerApplication{Application: *a}
		if opp, err := m.opps.Opportunity(ctx, a.OpportunityID); err == nil {
			va.OpportunityTitle = opp.Title
			va.OrganizationName = opp.OrganizationName
			va.OpportunityLocation = opp.Location
			va.OpportunityDate = opp.Date
		}
		out = append(out, va)
	}
	return out, nil
}

func (m *memApplications) ApplicationsByOpportunityIDs(ctx context.Context, ids []string) ([]*types.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := make([]*types.Application, 0)
	for _, a := range m.items {
		if want[a.OpportunityID] {
			c := *a
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memApplications) CreateApplication(ctx context.Context, a *types.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.items {
		if existing.VolunteerID == a.VolunteerID && existing.OpportunityID == a.OpportunityID {
			return types.ErrDuplicateApplication
		}
	}
	a.Status = types.ApplicationStatusPending
	a.AppliedAt = time.Now()
	c := *a
	m.items[a.ID] = &c
	return nil
}

func (m *memApplications) UpdateStatus(ctx context.Context, id string, status types.ApplicationStatus, reviewerID string) (*types.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok || a.Status != types.ApplicationStatusPending {
		return nil, types.ErrInvalidTransition
	}
	a.Status = status
	a.ReviewedAt = utils.TimePtr(time.Now())
	a.ReviewedBy = utils.StringPtr(reviewerID)
	c := *a
	return &c, nil
}

type memCategories struct {
	items []*types.Category
}

func (m *memCategories) AllCategories(ctx context.Context) ([]*types.Category, error) {
	return m.items, nil
}

func (m *memCategories) CategoryByName(ctx context.Context, name string) (*types.Category, error) {
	for _, c := range m.items {
		if strings.EqualFold(c.Name, name) || c.Slug == utils.Slugify(name) || c.ID == name {
			return c, nil
		}
	}
	return nil, types.ErrCategoryNotFound
}

type memSkills struct {
	mu        sync.Mutex
	items     []*types.Skill
	links     map[string][]string // owner id -> skill ids
	volunteer map[string][]string
	linkErr   error
}

func (m *memSkills) AllSkills(ctx context.Context) ([]*types.Skill, error) {
	return m.items, nil
}

func (m *memSkills) SkillsByNames(ctx context.Context, names []string) ([]*types.Skill, error) {
	out := make([]*types.Skill, 0)
	for _, s := range m.items {
		for _, n := range names {
			if s.ID == n || s.Slug == utils.Slugify(n) {
				out = append(out, s)
				break
			}
		}
	}
	return out, nil
}

func (m *memSkills) byIDs(ids []string) []*types.Skill {
	out := make([]*types.Skill, 0)
	for _, s := range m.items {
		for _, id := range ids {
			if s.ID == id {
				out = append(out, s)
			}
		}
	}
	return out
}

func (m *memSkills) SkillsByOpportunity(ctx context.Context, id string) ([]*types.Skill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byIDs(m.links[id]), nil
}

func (m *memSkills) SkillsByVolunteer(ctx context.Context, id string) ([]*types.Skill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byIDs(m.volunteer[id]), nil
}

func (m *memSkills) SkillsByApplication(ctx context.Context, id string) ([]*types.Skill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byIDs(m.links[id]), nil
}

func (m *memSkills) LinkApplicationSkills(ctx context.Context, id string, skillIDs []string) error {
	return m.link(id, skillIDs)
}

func (m *memSkills) LinkOpportunitySkills(ctx context.Context, id string, skillIDs []string) error {
	return m.link(id, skillIDs)
}

func (m *memSkills) link(id string, skillIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.linkErr != nil {
		return m.linkErr
	}
	m.links[id] = append(m.links[id], skillIDs...)
	return nil
}

func (m *memSkills) ReplaceVolunteerSkills(ctx context.Context, userID string, skillIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.linkErr != nil {
		return m.linkErr
	}
	m.volunteer[userID] = skillIDs
	return nil
}

type memObjects struct {
	mu           sync.Mutex
	objects      map[string][]byte
	contentTypes map[string]string
	deleted      []string
	uploadErr    error
}

func (m *memObjects) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	if m.uploadErr != nil {
		return "", m.uploadErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	m.contentTypes[key] = contentType
	return "https://cdn.test/" + key, nil
}

func (m *memObjects) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	m.deleted = append(m.deleted, key)
	return nil
}

type harness struct {
	svc           *Service
	cognito       *fakeCognito
	verifier      *fakeVerifier
	users         *memUsers
	opportunities *memOpportunities
	applications  *memApplications
	categories    *memCategories
	skills        *memSkills
	objects       *memObjects
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	config := &types.Config{
		CookieName:        testCookieName,
		SessionMaxAgeSec:  3600,
		MaxUploadBytes:    1 << 20,
		CognitoClientID:   "client-id",
		CognitoUserPoolID: "pool-id",
	}

	opps := &memOpportunities{items: map[string]*types.Opportunity{}}
	h := &harness{
		cognito:       newFakeCognito(),
		verifier:      &fakeVerifier{tokens: map[string]string{}},
		users:         &memUsers{users: map[string]*types.User{}},
		opportunities: opps,
		applications:  &memApplications{items: map[string]*types.Application{}, opps: opps},
		categories: &memCategories{items: []*types.Category{
			{ID: "cat-env", Name: "Environment", Slug: "environment", IsActive: true},
			{ID: "cat-food", Name: "Food & Nutrition", Slug: "food-nutrition", IsActive: true},
		}},
		skills: &memSkills{
			items: []*types.Skill{
				{ID: "sk-aid", Name: "First Aid", Slug: "first-aid"},
				{ID: "sk-drive", Name: "Driving", Slug: "driving"},
			},
			links:     map[string][]string{},
			volunteer: map[string][]string{},
		},
		objects: &memObjects{objects: map[string][]byte{}, contentTypes: map[string]string{}},
	}

	svc, err := New(config, logger, h.cognito, h.verifier, h.objects, h.users, h.opportunities, h.applications, h.categories, h.skills)
	require.NoError(t, err)
	h.svc = svc

	return h
}

func (h *harness) addUser(id string, role types.Role) *types.User {
	u := &types.User{
		ID:        id,
		FirstName: utils.StringPtr("First " + id),
		LastName:  utils.StringPtr("Last"),
		Email:     utils.StringPtr(id + "@example.com"),
		Role:      role,
	}
	if role == types.RoleOrganizer {
		u.OrganizationName = utils.StringPtr("Org " + id)
	}
	h.users.users[id] = u
	return u
}

func (h *harness) addOpportunity(id, creatorID string) *types.Opportunity {
	o := &types.Opportunity{
		ID:         id,
		Title:      "Opportunity " + id,
		CategoryID: utils.StringPtr("cat-env"),
		Location:   utils.StringPtr("Portland"),
		CreatorID:  creatorID,
	}
	h.opportunities.items[id] = o
	return o
}

func (h *harness) addApplication(id, opportunityID, volunteerID string, status types.ApplicationStatus) *types.Application {
	a := &types.Application{
		ID:            id,
		OpportunityID: opportunityID,
		VolunteerID:   volunteerID,
		Motivation:    "I want to help",
		Status:        status,
		AppliedAt:     time.Now(),
	}
	h.applications.items[id] = a
	return a
}

func (h *harness) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.svc.Handler().ServeHTTP(rec, req)
	return rec
}

// authenticate attaches a session cookie that resolves to userID.
func (h *harness) authenticate(t *testing.T, req *http.Request, userID string) *http.Request {
	t.Helper()

	token := "token-" + userID
	h.verifier.mu.Lock()
	h.verifier.tokens[token] = userID
	h.verifier.mu.Unlock()

	value, err := h.svc.cookie.Encode(testCookieName, token)
	require.NoError(t, err)

	req.AddCookie(&http.Cookie{Name: testCookieName, Value: value})
	return req
}

func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

type upload struct {
	field    string
	filename string
	content  []byte
}

func multipartRequest(t *testing.T, path string, fields map[string][]string, file *upload) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for name, values := range fields {
		for _, v := range values {
			require.NoError(t, mw.WriteField(name, v))
		}
	}

	if file != nil {
		fw, err := mw.CreateFormFile(file.field, file.filename)
		require.NoError(t, err)
		_, err = fw.Write(file.content)
		require.NoError(t, err)
	}

	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorResponse
	decodeResponse(t, rec, &body)
	return body.Error
}
