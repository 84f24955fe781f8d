package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ekingoksan/docker-cmd-studio/internal/boundaries/in/mocks"
	"github.com/ekingoksan/docker-cmd-studio/internal/domain"
	"github.com/ekingoksan/docker-cmd-studio/pkg/dockerrun"
)

const testID = "6f1c2a8e-3b7d-4c55-9a41-0d2e5f7b8c90"

var testUser = domain.User{ID: "user-1", Name: "Admin", Email: "admin@example.com"}

type observation struct {
	method, route string
	status        int
}

type fakeMetrics struct {
	mu   sync.Mutex
	seen []observation
}

func (f *fakeMetrics) ObserveRequest(method, route string, status int, _ float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, observation{method, route, status})
}

func (f *fakeMetrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("dcs_renders_total 1\n"))
	})
}

type testServer struct {
	e       *echo.Echo
	configs *mocks.MockConfigService
	auth    *mocks.MockAuthService
	metrics *fakeMetrics
	health  error
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{
		configs: new(mocks.MockConfigService),
		auth:    new(mocks.MockAuthService),
		metrics: &fakeMetrics{},
	}
	ts.e = NewRouter(Options{
		Configs:  ts.configs,
		Auth:     ts.auth,
		Sessions: sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef")),
		Metrics:  ts.metrics,
		Health:   func(context.Context) error { return ts.health },
		Log:      zerolog.Nop(),
	})
	return ts
}

func (ts *testServer) do(method, target, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	return rec
}

// login signs testUser in and returns the session cookies.
func (ts *testServer) login(t *testing.T) []*http.Cookie {
	t.Helper()
	ts.auth.On("Login", mock.Anything, "admin@example.com", "secret123", "192.0.2.1").Return(testUser, nil).Once()

	rec := ts.do(http.MethodPost, "/api/auth/login", `{"email":"admin@example.com","password":"secret123"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func storedWeb() domain.StoredConfig {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return domain.StoredConfig{
		ID:        testID,
		Config:    dockerrun.Config{Name: "web", Image: "nginx", Tag: "1.25"},
		Command:   "docker run -d --name web nginx:1.25",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestRouter_RequiresSession(t *testing.T) {
	ts := newTestServer(t)

	for _, target := range []string{"/api/configs", "/api/configs/" + testID, "/api/profile"} {
		rec := ts.do(http.MethodGet, target, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
		assert.Equal(t, "unauthorized", decode(t, rec)["error"])
	}
	ts.configs.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestRouter_LoginSessionLogout(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/auth/session", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["authenticated"])

	cookies := ts.login(t)

	ts.auth.On("Profile", mock.Anything, "user-1").Return(testUser, nil)
	rec = ts.do(http.MethodGet, "/api/auth/session", "", cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["authenticated"])
	assert.Equal(t, "admin@example.com", body["user"].(map[string]any)["email"])
	assert.NotContains(t, rec.Body.String(), "password")

	rec = ts.do(http.MethodPost, "/api/auth/logout", "", cookies)
	require.Equal(t, http.StatusNoContent, rec.Code)
	cleared := rec.Result().Cookies()
	require.NotEmpty(t, cleared)
	assert.True(t, cleared[0].MaxAge < 0)
}

func TestRouter_LoginErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"bad credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{"rate limited", domain.ErrRateLimited, http.StatusTooManyRequests},
		{"store failure", errors.New("disk I/O error"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.auth.On("Login", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(domain.User{}, tt.err)

			rec := ts.do(http.MethodPost, "/api/auth/login", `{"email":"a@example.com","password":"x"}`, nil)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Empty(t, rec.Result().Cookies())
			assert.NotContains(t, rec.Body.String(), "disk")
		})
	}
}

func TestRouter_CreateConfig(t *testing.T) {
	ts := newTestServer(t)
	cookies := ts.login(t)

	ts.configs.On("Create", mock.Anything, mock.MatchedBy(func(raw any) bool {
		obj, ok := raw.(map[string]any)
		if !ok {
			return false
		}
		ports := obj["ports"].([]any)
		return obj["name"] == "web" && ports[0].(map[string]any)["container"] == json.Number("80")
	})).Return(storedWeb(), nil)

	rec := ts.do(http.MethodPost, "/api/configs",
		`{"name":"web","image":"nginx","tag":"1.25","ports":[{"container":80}]}`, cookies)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "docker run -d --name web nginx:1.25", body["command"])
	item := body["item"].(map[string]any)
	assert.Equal(t, testID, item["id"])
	assert.Equal(t, "docker run -d --name web nginx:1.25", item["generatedCommand"])
}

func TestRouter_WriteErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantFields map[string]any
	}{
		{
			name:       "validation",
			err:        &dockerrun.ValidationError{Fields: map[string]string{"name": "is required", "ports[0].host": "must be a non-negative integer"}},
			wantStatus: http.StatusBadRequest,
			wantFields: map[string]any{"name": "is required", "ports[0].host": "must be a non-negative integer"},
		},
		{
			name:       "name taken",
			err:        fmt.Errorf("failed to insert: %w", domain.ErrConfigNameTaken),
			wantStatus: http.StatusConflict,
		},
		{
			name:       "unexpected",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			cookies := ts.login(t)
			ts.configs.On("Create", mock.Anything, mock.Anything).Return(domain.StoredConfig{}, tt.err)

			rec := ts.do(http.MethodPost, "/api/configs", `{"image":"nginx"}`, cookies)
			require.Equal(t, tt.wantStatus, rec.Code)
			body := decode(t, rec)
			if tt.wantFields != nil {
				assert.Equal(t, "validation failed", body["error"])
				assert.Equal(t, tt.wantFields, body["fields"])
			}
		})
	}
}

func TestRouter_InvalidBody(t *testing.T) {
	ts := newTestServer(t)
	cookies := ts.login(t)

	rec := ts.do(http.MethodPost, "/api/configs", `{"name":`, cookies)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid JSON body", decode(t, rec)["error"])

	big := `{"name":"` + strings.Repeat("a", 2<<20) + `"}`
	rec = ts.do(http.MethodPost, "/api/configs", big, cookies)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	ts.configs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRouter_IDRoutes(t *testing.T) {
	ts := newTestServer(t)
	cookies := ts.login(t)

	ts.configs.On("Get", mock.Anything, testID).Return(storedWeb(), nil)
	ts.configs.On("Delete", mock.Anything, testID).Return(domain.ErrConfigNotFound)
	dup := storedWeb()
	dup.Config.Name = "web-copy"
	ts.configs.On("Duplicate", mock.Anything, testID).Return(dup, nil)
	ts.configs.On("Update", mock.Anything, testID, mock.Anything).Return(storedWeb(), nil)

	rec := ts.do(http.MethodGet, "/api/configs/"+testID, "", cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "web", decode(t, rec)["config"].(map[string]any)["name"])

	rec = ts.do(http.MethodPut, "/api/configs/"+testID, `{"name":"web","image":"nginx","tag":"1.25"}`, cookies)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(http.MethodDelete, "/api/configs/"+testID, "", cookies)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(http.MethodPost, "/api/configs/"+testID+"/duplicate", "", cookies)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "web-copy", decode(t, rec)["item"].(map[string]any)["config"].(map[string]any)["name"])

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		rec = ts.do(method, "/api/configs/not-a-uuid", "", cookies)
		assert.Equal(t, http.StatusBadRequest, rec.Code, method)
		assert.Equal(t, "invalid id", decode(t, rec)["error"])
	}
}

func TestRouter_ListConfigs(t *testing.T) {
	ts := newTestServer(t)
	cookies := ts.login(t)

	ts.configs.On("List", mock.Anything, domain.ListQuery{Search: "nginx", Page: 2, PageSize: 5}).
		Return(domain.ConfigPage{Items: []domain.StoredConfig{storedWeb()}, Page: 2, PageSize: 5, Total: 6, TotalPages: 2}, nil)
	ts.configs.On("List", mock.Anything, domain.ListQuery{}).
		Return(domain.ConfigPage{Page: 1, PageSize: 10, TotalPages: 1}, nil)

	rec := ts.do(http.MethodGet, "/api/configs?q=nginx&page=2&pageSize=5", "", cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(6), body["total"])
	assert.Equal(t, float64(2), body["totalPages"])
	assert.Len(t, body["items"], 1)

	rec = ts.do(http.MethodGet, "/api/configs?page=abc", "", cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{}, decode(t, rec)["items"])
}

func TestRouter_PreviewAndImport(t *testing.T) {
	ts := newTestServer(t)
	cookies := ts.login(t)

	ts.configs.On("Preview", mock.Anything, mock.Anything).Return(domain.Preview{
		Compact:   "docker run -d --name web nginx:latest",
		Multiline: "docker run -d --name web \\\n  nginx:latest",
	}, nil)
	ts.configs.On("Import", mock.Anything, "docker run -d --name web nginx:1.25").Return(storedWeb(), nil)
	ts.configs.On("Import", mock.Anything, "ls -la").
		Return(domain.StoredConfig{}, fmt.Errorf("%w: %v", domain.ErrInvalidCommand, dockerrun.ErrNotRunCommand))

	rec := ts.do(http.MethodPost, "/api/configs/preview", `{"name":"web","image":"nginx"}`, cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "docker run -d --name web nginx:latest", decode(t, rec)["compact"])

	rec = ts.do(http.MethodPost, "/api/configs/import", `{"command":"docker run -d --name web nginx:1.25"}`, cookies)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(http.MethodPost, "/api/configs/import", `{"command":"ls -la"}`, cookies)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_Profile(t *testing.T) {
	ts := newTestServer(t)
	cookies := ts.login(t)

	ts.auth.On("Profile", mock.Anything, "user-1").Return(testUser, nil)
	rec := ts.do(http.MethodGet, "/api/profile", "", cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Admin", decode(t, rec)["name"])

	updated := testUser
	updated.Email = "new@example.com"
	ts.auth.On("UpdateProfile", mock.Anything, "user-1", domain.ProfileUpdate{Name: "Admin", Email: "new@example.com"}).
		Return(domain.ProfileResult{User: updated}, nil)
	ts.auth.On("UpdateProfile", mock.Anything, "user-1", domain.ProfileUpdate{Name: "A", Email: "bad"}).
		Return(domain.ProfileResult{}, &domain.ProfileError{Fields: map[string]string{"name": "is too short", "email": "is invalid"}})

	rec = ts.do(http.MethodPut, "/api/profile", `{"name":"Admin","email":"new@example.com"}`, cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["passwordUpdated"])
	assert.Equal(t, "new@example.com", body["user"].(map[string]any)["email"])

	rec = ts.do(http.MethodPut, "/api/profile", `{"name":"A","email":"bad"}`, cookies)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, map[string]any{"name": "is too short", "email": "is invalid"}, decode(t, rec)["fields"])
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	ts.health = errors.New("database is closed")
	rec = ts.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = ts.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "dcs_renders_total")

	rec = ts.do(http.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Contains(t, ts.metrics.seen, observation{http.MethodGet, "/healthz", http.StatusOK})
	assert.Contains(t, ts.metrics.seen, observation{http.MethodGet, "/healthz", http.StatusServiceUnavailable})
}
