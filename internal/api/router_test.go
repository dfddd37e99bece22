package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/myapi/auth-api/internal/api/handler"
	"github.com/myapi/auth-api/internal/core/domain"
	"github.com/myapi/auth-api/internal/core/service"
)

const testSecret = "router-test-secret"

type memoryUsers struct {
	mu      sync.Mutex
	byID    map[string]domain.User
	failAll error
	lookups int
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byID: make(map[string]domain.User)}
}

func (m *memoryUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups++
	if m.failAll != nil {
		return nil, m.failAll
	}
	for _, u := range m.byID {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *memoryUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups++
	if m.failAll != nil {
		return nil, m.failAll
	}
	u, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (m *memoryUsers) ExistsByEmail(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return false, m.failAll
	}
	for _, u := range m.byID {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryUsers) Insert(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return m.failAll
	}
	m.byID[user.ID] = *user
	return nil
}

func (m *memoryUsers) promote(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.byID[id]
	u.Admin = true
	m.byID[id] = u
}

func (m *memoryUsers) lookupCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lookups
}

type testServer struct {
	e      *echo.Echo
	users  *memoryUsers
	tokens *service.TokenService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	log := zerolog.Nop()
	users := newMemoryUsers()
	tokens := service.NewTokenService(testSecret, service.DefaultTokenTTL)
	reg := prometheus.NewRegistry()

	e := NewRouter(Services{
		Auth:   service.NewAuthService(users, service.NewBcryptHasher(bcrypt.MinCost), tokens, nil, log),
		Users:  service.NewUserService(users, log),
		Tokens: tokens,
	}, Options{Registerer: reg, Gatherer: reg}, log)

	return &testServer{e: e, users: users, tokens: tokens}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) postJSON(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return s.do(req)
}

func (s *testServer) get(path, token string) *httptest.ResponseRecorder {
	if token != "" {
		path += "?token=" + url.QueryEscape(token)
	}
	return s.do(httptest.NewRequest(http.MethodGet, path, nil))
}

type session struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Created int64  `json:"created"`
	Token   string `json:"token"`
}

func (s *testServer) register(t *testing.T, name, email string) session {
	t.Helper()
	rec := s.postJSON("/api/v1/users", `{"name":"`+name+`","email":"`+email+`","password":"password123"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var out session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (s *testServer) login(t *testing.T, email string) session {
	t.Helper()
	rec := s.postJSON("/api/v1/auth", `{"email":"`+email+`","password":"password123"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorBody {
	t.Helper()
	var body handler.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestRouter_RegisterThenLogin(t *testing.T) {
	srv := newTestServer(t)

	reg := srv.register(t, "alice", "alice@example.com")
	assert.NotEmpty(t, reg.ID)
	assert.NotEmpty(t, reg.Token)
	assert.NotZero(t, reg.Created)

	logged := srv.login(t, "alice@example.com")
	assert.Equal(t, reg.ID, logged.ID)
	assert.Equal(t, reg.Created, logged.Created)

	id, err := srv.tokens.Verify(logged.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.ID, id.UserID)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), id.ExpiresAt, time.Minute)
}

func TestRouter_RegisterDuplicate(t *testing.T) {
	srv := newTestServer(t)
	srv.register(t, "alice", "alice@example.com")

	rec := srv.postJSON("/api/v1/users", `{"name":"alice2","email":"alice@example.com","password":"password123"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "ALREADY_EXISTS", errorBody(t, rec).Code)
}

func TestRouter_RegisterInvalid(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.postJSON("/api/v1/users", `{"name":"al","email":"alice@example.com","password":"password123"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, handler.ErrorBody{Code: "INVALID_PARAMETERS", Message: "At least one field is invalid. Try again."}, errorBody(t, rec))
}

func TestRouter_RegisterPaddedShortNameRejected(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.postJSON("/api/v1/users", `{"name":"  a  ","email":"alice@example.com","password":"password123"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_PARAMETERS", errorBody(t, rec).Code)

	exists, err := srv.users.ExistsByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRouter_RegisterMultibytePassword(t *testing.T) {
	srv := newTestServer(t)
	password := strings.Repeat("😀", 20)

	body, err := json.Marshal(map[string]string{"name": "emoji", "email": "emoji@example.com", "password": password})
	require.NoError(t, err)

	rec := srv.postJSON("/api/v1/users", string(body))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var reg session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))

	body, err = json.Marshal(map[string]string{"email": "emoji@example.com", "password": password})
	require.NoError(t, err)

	rec = srv.postJSON("/api/v1/auth", string(body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var logged session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &logged))
	assert.Equal(t, reg.ID, logged.ID)
}

func TestRouter_RegisterStoreFailureIsInternal(t *testing.T) {
	srv := newTestServer(t)
	srv.users.failAll = errors.New("connection reset")

	rec := srv.postJSON("/api/v1/users", `{"name":"alice","email":"alice@example.com","password":"password123"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	body := errorBody(t, rec)
	assert.Equal(t, "INTERNAL_ERROR", body.Code)
	assert.NotContains(t, body.Message, "connection reset")
}

func TestRouter_LoginFailuresLookAlike(t *testing.T) {
	srv := newTestServer(t)
	srv.register(t, "alice", "alice@example.com")

	wrongPassword := srv.postJSON("/api/v1/auth", `{"email":"alice@example.com","password":"wrongpass1"}`)
	unknownUser := srv.postJSON("/api/v1/auth", `{"email":"nobody@example.com","password":"password123"}`)

	for _, rec := range []*httptest.ResponseRecorder{wrongPassword, unknownUser} {
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, handler.ErrorBody{Code: "INVALID_PARAMETERS", Message: "Your credentials are not valid"}, errorBody(t, rec))
	}
	assert.Equal(t, wrongPassword.Body.String(), unknownUser.Body.String())
}

func TestRouter_Me(t *testing.T) {
	srv := newTestServer(t)
	reg := srv.register(t, "alice", "alice@example.com")

	rec := srv.get("/api/v1/users/me", reg.Token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var profile map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, reg.ID, profile["id"])
	assert.Equal(t, "alice@example.com", profile["email"])
	assert.NotContains(t, profile, "password")
	assert.NotContains(t, profile, "token")
}

func TestRouter_MeWithCookie(t *testing.T) {
	srv := newTestServer(t)
	reg := srv.register(t, "alice", "alice@example.com")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.AddCookie(&http.Cookie{Name: handler.SessionCookieName, Value: reg.Token})
	rec := srv.do(req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_AuthenticationErrors(t *testing.T) {
	srv := newTestServer(t)

	anonymous := srv.get("/api/v1/users/me", "")
	assert.Equal(t, http.StatusUnauthorized, anonymous.Code)
	assert.Equal(t, "UNAUTHENTICATED", errorBody(t, anonymous).Code)

	garbage := srv.get("/api/v1/users/me", "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, garbage.Code)
	assert.Equal(t, handler.ErrorBody{Code: "INVALID_TOKEN", Message: "Invalid token"}, errorBody(t, garbage))

	other := service.NewTokenService("another-secret", service.DefaultTokenTTL)
	forged, _, err := other.Issue(&domain.User{ID: "u-1"})
	require.NoError(t, err)
	rec := srv.get("/api/v1/users/me", forged)
	assert.Equal(t, "INVALID_TOKEN", errorBody(t, rec).Code)

	// A bad token is rejected even on routes that do not require a login.
	rec = srv.do(func() *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth?token=bogus", strings.NewReader(`{"email":"a@example.com","password":"password123"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		return req
	}())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_TOKEN", errorBody(t, rec).Code)
}

func TestRouter_GetByIDRequiresAdmin(t *testing.T) {
	srv := newTestServer(t)
	alice := srv.register(t, "alice", "alice@example.com")
	bob := srv.register(t, "bob", "bob@example.com")

	before := srv.users.lookupCount()
	for _, id := range []string{bob.ID, alice.ID, "does-not-exist"} {
		rec := srv.get("/api/v1/users/"+id, alice.Token)
		assert.Equal(t, http.StatusForbidden, rec.Code, id)
		assert.Equal(t, "FORBIDDEN", errorBody(t, rec).Code)
	}
	assert.Equal(t, before, srv.users.lookupCount(), "store must not be consulted before authorization")

	anonymous := srv.get("/api/v1/users/"+bob.ID, "")
	assert.Equal(t, http.StatusUnauthorized, anonymous.Code)
}

func TestRouter_GetByIDAsAdmin(t *testing.T) {
	srv := newTestServer(t)
	admin := srv.register(t, "root", "root@example.com")
	bob := srv.register(t, "bob", "bob@example.com")

	// The flag is read at login, so the old token stays non-admin.
	srv.users.promote(admin.ID)
	assert.Equal(t, http.StatusForbidden, srv.get("/api/v1/users/"+bob.ID, admin.Token).Code)

	fresh := srv.login(t, "root@example.com")

	rec := srv.get("/api/v1/users/"+bob.ID, fresh.Token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var profile map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, bob.ID, profile["id"])

	missing := srv.get("/api/v1/users/does-not-exist", fresh.Token)
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Equal(t, "NOT_FOUND", errorBody(t, missing).Code)
}

func TestRouter_OperationalEndpoints(t *testing.T) {
	srv := newTestServer(t)

	assert.Equal(t, http.StatusOK, srv.get("/health", "").Code)
	assert.Equal(t, http.StatusOK, srv.get("/health/ready", "").Code)

	srv.get("/health", "")
	metrics := srv.get("/metrics", "")
	assert.Equal(t, http.StatusOK, metrics.Code)
	assert.Contains(t, metrics.Body.String(), "http_requests_total")

	miss := srv.get("/nowhere", "")
	assert.Equal(t, http.StatusNotFound, miss.Code)
	assert.Equal(t, "NOT_FOUND", errorBody(t, miss).Code)
}
