package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aquapulse/internal/domain"
	"aquapulse/internal/dto"
	"aquapulse/internal/service/impl"
)

type stubAuth struct {
	tokens     *impl.TokenServiceImpl
	byEmail    map[string]*domain.Principal
	byID       map[string]*domain.Principal
	loggedOut  []dto.RequestCredentials
	registered []string
}

func (s *stubAuth) ValidateCredentials(_ context.Context, email, password string) (*domain.Principal, error) {
	p, ok := s.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if password != "password123" {
		return nil, nil
	}
	return p, nil
}

func (s *stubAuth) Login(ctx context.Context, p *domain.Principal) (*dto.LoginResponse, error) {
	pair, err := s.tokens.IssuePair(ctx, p)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{User: p, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken, Principal: p}, nil
}

func (s *stubAuth) RegisterUser(_ context.Context, r dto.RegisterUserRequest) (*dto.StatusResponse, error) {
	if _, ok := s.byEmail[r.Email]; ok {
		return nil, domain.ErrEmailExists
	}
	s.registered = append(s.registered, r.Email)
	return &dto.StatusResponse{Success: true, Message: "Registration successful. Please verify your email."}, nil
}

func (s *stubAuth) RegisterSupplier(_ context.Context, r dto.RegisterSupplierRequest) (*dto.StatusResponse, error) {
	if r.Company == "" {
		return nil, domain.Validation("Company is required for suppliers")
	}
	return &dto.StatusResponse{Success: true}, nil
}

func (s *stubAuth) CreateAdmin(context.Context, dto.RegisterUserRequest) (*domain.Principal, error) {
	return nil, domain.Internal("not available")
}

func (s *stubAuth) VerifyEmail(_ context.Context, email, token string) (*dto.StatusResponse, error) {
	if token != "good" {
		return nil, domain.BadRequest("Invalid or expired verification token")
	}
	return &dto.StatusResponse{Success: true, Message: "Email verified successfully."}, nil
}

func (s *stubAuth) ChangePassword(_ context.Context, principalID, oldPassword, _ string) (*dto.MessageResponse, error) {
	if _, ok := s.byID[principalID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	if oldPassword != "password123" {
		return nil, domain.BadRequest("Old password is incorrect")
	}
	return &dto.MessageResponse{Message: "Password updated successfully"}, nil
}

func (s *stubAuth) ForgotPassword(_ context.Context, email string) (*dto.StatusResponse, error) {
	if _, ok := s.byEmail[email]; !ok {
		return nil, domain.ErrUserNotFound
	}
	return &dto.StatusResponse{Success: true}, nil
}

func (s *stubAuth) VerifyResetCode(context.Context, string, string) *dto.StatusResponse {
	return &dto.StatusResponse{Success: false, Message: "Invalid or expired code"}
}

func (s *stubAuth) ResetPassword(_ context.Context, _, code, _ string) (*dto.StatusResponse, error) {
	if code != "123456" {
		return nil, domain.BadRequest("Invalid or expired code")
	}
	return &dto.StatusResponse{Success: true}, nil
}

func (s *stubAuth) GetProfile(_ context.Context, id string) (*domain.Principal, error) {
	p, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return p, nil
}

func (s *stubAuth) Logout(_ context.Context, creds dto.RequestCredentials) error {
	s.loggedOut = append(s.loggedOut, creds)
	return nil
}

type stubResolver struct{ byID map[string]*domain.Principal }

func (r stubResolver) FindByID(_ context.Context, id string) (*domain.Principal, error) {
	return r.byID[id], nil
}

func (r stubResolver) FindByEmail(context.Context, string) (*domain.Principal, error) {
	return nil, nil
}

type fixture struct {
	router   http.Handler
	auth     *stubAuth
	tokens   *impl.TokenServiceImpl
	now      time.Time
	customer *domain.Principal
	supplier *domain.Principal
	admin    *domain.Principal
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	f := &fixture{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	tokens, err := impl.NewTokenServiceHS256(impl.TokenConfig{
		Issuer:        "aquapulse",
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	}, nil)
	require.NoError(t, err)
	f.tokens = tokens.WithClock(func() time.Time { return f.now })

	f.customer = domain.UserPrincipal(&domain.User{ID: uuid.New(), Role: domain.RoleCustomer,
		Credentials: domain.Credentials{Email: "a@x.com"}, FirstName: "A", LastName: "B"})
	f.admin = domain.UserPrincipal(&domain.User{ID: uuid.New(), Role: domain.RoleAdmin,
		Credentials: domain.Credentials{Email: "root@x.com"}, FirstName: "R", LastName: "A"})
	f.supplier = domain.SupplierPrincipal(&domain.Supplier{ID: uuid.New(), Role: domain.RoleSupplier,
		Credentials: domain.Credentials{Email: "s@x.com"}, Company: "Blue Springs"})

	f.auth = &stubAuth{tokens: f.tokens, byEmail: map[string]*domain.Principal{}, byID: map[string]*domain.Principal{}}
	for _, p := range []*domain.Principal{f.customer, f.supplier, f.admin} {
		f.auth.byEmail[p.Email()] = p
		f.auth.byID[p.ID().String()] = p
	}

	cookies := CookieConfig{AccessTTL: time.Hour, RefreshTTL: 7 * 24 * time.Hour}
	authn := impl.NewRequestAuthenticatorImpl(f.tokens, stubResolver{byID: f.auth.byID})
	f.router = NewRouter(NewHandler(f.auth, f.tokens, cookies), authn, opts)
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, m := range mutate {
		m(req)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) pair(t *testing.T, p *domain.Principal) *dto.TokenPair {
	t.Helper()
	pair, err := f.tokens.IssuePair(context.Background(), p)
	require.NoError(t, err)
	return pair
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func bearer(tok string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) }
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestLoginCustomerReturnsTokensInBody(t *testing.T) {
	f := newFixture(t, Options{})
	rec := f.do(t, http.MethodPost, "/api/auth/login", `{"email":"a@x.com","password":"password123"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.NotEmpty(t, body["access_token"])
	assert.NotEmpty(t, body["refresh_token"])
	assert.Equal(t, "a@x.com", body["user"].(map[string]any)["email"])
	assert.Nil(t, cookieNamed(rec, AccessCookie))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestLoginSupplierUsesCookies(t *testing.T) {
	f := newFixture(t, Options{})
	rec := f.do(t, http.MethodPost, "/api/auth/login", `{"email":"s@x.com","password":"password123"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.NotContains(t, body, "access_token")
	assert.NotContains(t, body, "refresh_token")
	assert.Equal(t, "Blue Springs", body["user"].(map[string]any)["company"])

	access := cookieNamed(rec, AccessCookie)
	require.NotNil(t, access)
	assert.True(t, access.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, access.SameSite)
	assert.Equal(t, 3600, access.MaxAge)
	refresh := cookieNamed(rec, RefreshCookie)
	require.NotNil(t, refresh)
	assert.Equal(t, 7*24*3600, refresh.MaxAge)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newFixture(t, Options{})
	for _, body := range []string{
		`{"email":"a@x.com","password":"wrong"}`,
		`{"email":"ghost@x.com","password":"password123"}`,
	} {
		rec := f.do(t, http.MethodPost, "/api/auth/login", body)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"Invalid email or password"}`, rec.Body.String())
	}
}

func TestMeWithoutToken(t *testing.T) {
	f := newFixture(t, Options{})
	rec := f.do(t, http.MethodGet, "/api/auth/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"No token provided"}`, rec.Body.String())
}

func TestMeWithBearer(t *testing.T) {
	f := newFixture(t, Options{})
	pair := f.pair(t, f.customer)

	rec := f.do(t, http.MethodGet, "/api/auth/me", "", bearer(pair.AccessToken))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a@x.com", decode(t, rec)["email"])
	assert.Nil(t, cookieNamed(rec, AccessCookie))
}

func TestMeSilentlyRefreshesFromCookie(t *testing.T) {
	f := newFixture(t, Options{})
	pair := f.pair(t, f.supplier)
	f.now = f.now.Add(20 * time.Minute)

	rec := f.do(t, http.MethodGet, "/api/auth/me", "", func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: AccessCookie, Value: pair.AccessToken})
		r.AddCookie(&http.Cookie{Name: RefreshCookie, Value: pair.RefreshToken})
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "s@x.com", decode(t, rec)["email"])

	fresh := cookieNamed(rec, AccessCookie)
	require.NotNil(t, fresh)
	require.NotEqual(t, pair.AccessToken, fresh.Value)
	payload, err := f.tokens.VerifyAccess(context.Background(), fresh.Value)
	require.NoError(t, err)
	assert.Equal(t, f.supplier.ID().String(), payload.PrincipalID)
}

func TestMeRefreshHeader(t *testing.T) {
	f := newFixture(t, Options{})
	pair := f.pair(t, f.customer)
	f.now = f.now.Add(20 * time.Minute)

	rec := f.do(t, http.MethodGet, "/api/auth/me", "", bearer(pair.AccessToken), func(r *http.Request) {
		r.Header.Set(RefreshHeader, pair.RefreshToken)
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, cookieNamed(rec, AccessCookie))

	rec = f.do(t, http.MethodGet, "/api/auth/me", "", bearer(pair.AccessToken))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid or expired access token"}`, rec.Body.String())
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t, Options{})
	pair := f.pair(t, f.customer)

	rec := f.do(t, http.MethodPost, "/api/auth/change-password", `{"oldPassword":"nope","newPassword":"newpassword1"}`, bearer(pair.AccessToken))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/auth/change-password", `{"oldPassword":"password123","newPassword":"newpassword1"}`, bearer(pair.AccessToken))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Password updated successfully"}`, rec.Body.String())
}

func TestRegisterMapsErrors(t *testing.T) {
	f := newFixture(t, Options{})

	rec := f.do(t, http.MethodPost, "/api/auth/register-user", `{"email":"a@x.com","password":"password123","firstName":"A","lastName":"B"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"Email already exists"}`, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/api/auth/register-user", `{"email":"new@x.com","password":"password123","firstName":"A","lastName":"B"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []string{"new@x.com"}, f.auth.registered)

	rec = f.do(t, http.MethodPost, "/api/auth/register-supplier", `{"email":"s2@x.com","password":"password123"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/auth/register-user", `{"email":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPasswordResetEndpoints(t *testing.T) {
	f := newFixture(t, Options{})

	rec := f.do(t, http.MethodPost, "/api/auth/forgot-password", `{"email":"ghost@x.com"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/auth/verify-reset-code", `{"email":"a@x.com","code":"000000"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Invalid or expired code"}`, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/api/auth/reset-password", `{"email":"a@x.com","code":"000000","newPassword":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = f.do(t, http.MethodPost, "/api/auth/reset-password", `{"email":"a@x.com","code":"123456","newPassword":"brandnew123"}`)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
}

func TestVerifyEmailEndpoint(t *testing.T) {
	f := newFixture(t, Options{})
	rec := f.do(t, http.MethodPost, "/api/auth/verify-email", `{"email":"a@x.com","token":"good"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, http.MethodPost, "/api/auth/verify-email", `{"email":"a@x.com","token":"bad"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoutClearsCookies(t *testing.T) {
	f := newFixture(t, Options{})
	rec := f.do(t, http.MethodPost, "/api/auth/logout", "", bearer("tok-a"), func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: RefreshCookie, Value: "tok-r"})
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Logged out successfully"}`, rec.Body.String())
	for _, name := range []string{AccessCookie, RefreshCookie} {
		c := cookieNamed(rec, name)
		require.NotNil(t, c, name)
		assert.Empty(t, c.Value)
		assert.Negative(t, c.MaxAge)
	}
	require.Len(t, f.auth.loggedOut, 1)
	assert.Equal(t, dto.RequestCredentials{AccessToken: "tok-a", RefreshToken: "tok-r"}, f.auth.loggedOut[0])
}

func TestRefreshTokenEndpoint(t *testing.T) {
	f := newFixture(t, Options{})
	pair := f.pair(t, f.customer)

	rec := f.do(t, http.MethodPost, "/api/auth/refresh-token", `{"refresh_token":"`+pair.RefreshToken+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 900, body["expires_in"])
	assert.NotNil(t, cookieNamed(rec, AccessCookie))

	rec = f.do(t, http.MethodPost, "/api/auth/refresh-token", "", func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: RefreshCookie, Value: pair.AccessToken})
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/auth/refresh-token", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRouteRequiresAdmin(t *testing.T) {
	f := newFixture(t, Options{})
	path := "/api/admin/principals/" + f.supplier.ID().String()

	rec := f.do(t, http.MethodGet, path, "", bearer(f.pair(t, f.customer).AccessToken))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodGet, path, "", bearer(f.pair(t, f.admin).AccessToken))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "s@x.com", decode(t, rec)["email"])

	rec = f.do(t, http.MethodGet, "/api/admin/principals/"+uuid.NewString(), "", bearer(f.pair(t, f.admin).AccessToken))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLoginIsRateLimited(t *testing.T) {
	f := newFixture(t, Options{LoginRateLimit: 2})
	body := `{"email":"a@x.com","password":"password123"}`

	for i := 0; i < 2; i++ {
		rec := f.do(t, http.MethodPost, "/api/auth/login", body)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := f.do(t, http.MethodPost, "/api/auth/login", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/auth/register-user", `{"email":"new@x.com","password":"password123"}`)
	assert.Equal(t, http.StatusCreated, rec.Code, "other routes are not limited")
}

func TestHealthz(t *testing.T) {
	f := newFixture(t, Options{})
	rec := f.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	down := newFixture(t, Options{Ready: func(context.Context) error { return context.DeadlineExceeded }})
	rec = down.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
