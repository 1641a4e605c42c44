package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xela07ax/ams-passport/internal/console/handler"
	"github.com/xela07ax/ams-passport/internal/domain"
	"github.com/xela07ax/ams-passport/internal/infra/auth"
)

var testSecret = []byte("server-test-secret-0123456789abcdef!")

// fakeAuthService выпускает настоящие HS256-токены, но сверяет пароль
// простым сравнением: пайплайн логина тестируется в пакете service.
type fakeAuthService struct {
	issuer   *auth.TokenIssuer
	password string
	info     *domain.AdminLoginInfo
}

func (f *fakeAuthService) Login(_ context.Context, username, password string) (*domain.TokenResponse, error) {
	if username != f.info.Username || password != f.password {
		return nil, domain.ErrInvalidCredentials
	}
	token, err := f.issuer.Issue(f.info)
	if err != nil {
		return nil, err
	}
	return &domain.TokenResponse{AccessToken: token, TokenType: "Bearer", ExpiresIn: 3600}, nil
}

type fakeAdminService struct {
	admins []*domain.Admin
}

func (f *fakeAdminService) AddNew(context.Context, *domain.AdminAddRequest) (int64, error) {
	return 77, nil
}
func (f *fakeAdminService) SetEnabled(context.Context, int64, bool) error { return nil }
func (f *fakeAdminService) DeleteByID(context.Context, int64) error       { return nil }
func (f *fakeAdminService) List(context.Context) ([]*domain.Admin, error) {
	return f.admins, nil
}

type fakeRoleService struct{}

func (fakeRoleService) List(context.Context) ([]*domain.Role, error) {
	return []*domain.Role{{ID: 1, Name: "superadmin"}}, nil
}

func newTestServer() *ConsoleServer {
	logger := zap.NewNop()
	issuer := auth.NewTokenIssuer(testSecret, time.Hour)
	validator := auth.NewBaseValidator(testSecret)

	authSvc := &fakeAuthService{
		issuer:   issuer,
		password: "correct horse",
		info: &domain.AdminLoginInfo{
			ID:          1,
			Username:    "root",
			Enabled:     true,
			Permissions: []string{domain.PermAdminRead},
		},
	}
	adminSvc := &fakeAdminService{admins: []*domain.Admin{{ID: 1, Username: "root"}}}

	return NewConsoleServer(
		logger,
		NewMetrics(nil),
		validator,
		handler.NewAuthHandler(authSvc, logger),
		handler.NewAdminHandler(adminSvc, logger),
		handler.NewRoleHandler(fakeRoleService{}, logger),
		nil,
	)
}

func issueToken(t *testing.T, ttl time.Duration, perms []string) string {
	t.Helper()
	token, err := auth.NewTokenIssuer(testSecret, ttl).Issue(&domain.AdminLoginInfo{
		ID: 1, Username: "root", Enabled: true, Permissions: perms,
	})
	require.NoError(t, err)
	return token
}

func doRequest(t *testing.T, srv http.Handler, method, path, token string, body []byte) (*httptest.ResponseRecorder, handler.JsonResult) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	var result handler.JsonResult
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	}
	return rec, result
}

func TestConsoleServer_LoginAndUseToken(t *testing.T) {
	srv := newTestServer()

	body, _ := json.Marshal(domain.LoginRequest{Username: "root", Password: "correct horse"})
	rec, result := doRequest(t, srv, http.MethodPost, "/admins/login", "", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.CodeOK, result.State)

	var resp struct {
		Data domain.TokenResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.AccessToken)
	assert.Equal(t, "Bearer", resp.Data.TokenType)

	// Выданный токен открывает защищенный маршрут
	rec, result = doRequest(t, srv, http.MethodGet, "/admins", resp.Data.AccessToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.CodeOK, result.State)
}

func TestConsoleServer_BadCredentials(t *testing.T) {
	srv := newTestServer()

	body, _ := json.Marshal(domain.LoginRequest{Username: "root", Password: "wrong"})
	rec, result := doRequest(t, srv, http.MethodPost, "/admins/login", "", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, domain.CodeUnauthorized, result.State)
}

func TestConsoleServer_ProtectedWithoutToken(t *testing.T) {
	srv := newTestServer()

	rec, result := doRequest(t, srv, http.MethodGet, "/admins", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, domain.CodeUnauthorized, result.State)
}

func TestConsoleServer_ExpiredToken(t *testing.T) {
	srv := newTestServer()

	token := issueToken(t, -time.Minute, []string{domain.PermAdminRead})
	rec, result := doRequest(t, srv, http.MethodGet, "/admins", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, domain.CodeUnauthorized, result.State)
}

func TestConsoleServer_InsufficientPermission(t *testing.T) {
	srv := newTestServer()

	// read-токен не дает права на добавление
	token := issueToken(t, time.Hour, []string{domain.PermAdminRead})
	body, _ := json.Marshal(domain.AdminAddRequest{Username: "eve", Password: "pw"})
	rec, result := doRequest(t, srv, http.MethodPost, "/admins/add-new", token, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, domain.CodeForbidden, result.State)
}

func TestConsoleServer_PermissionGatesPerRoute(t *testing.T) {
	srv := newTestServer()
	token := issueToken(t, time.Hour, []string{domain.PermAdminUpdate})

	// update-право открывает enable/disable...
	rec, _ := doRequest(t, srv, http.MethodPost, "/admins/5/enable", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = doRequest(t, srv, http.MethodPost, "/admins/5/disable", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// ...но не удаление и не чтение
	rec, _ = doRequest(t, srv, http.MethodPost, "/admins/5/delete", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec, _ = doRequest(t, srv, http.MethodGet, "/admins", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestConsoleServer_RolesRequireOnlyAuthentication(t *testing.T) {
	srv := newTestServer()

	rec, _ := doRequest(t, srv, http.MethodGet, "/roles", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Токен без единого права — для чтения ролей достаточно
	token := issueToken(t, time.Hour, nil)
	rec, result := doRequest(t, srv, http.MethodGet, "/roles", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.CodeOK, result.State)
}

func TestConsoleServer_NonNumericIDNotRouted(t *testing.T) {
	srv := newTestServer()

	// Паттерн маршрута принимает только цифры, до хендлера не доходим
	req := httptest.NewRequest(http.MethodPost, "/admins/abc/delete", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, time.Hour, []string{domain.PermAdminDelete}))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestConsoleServer_HealthAndTraceID(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	// Trace-ID проставляется каждому ответу
	assert.NotEmpty(t, rec.Header().Get("X-Trace-ID"))

	// Пришедший от прокси ID не перегенерируется
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Trace-ID", "upstream-trace-1")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, "upstream-trace-1", rec.Header().Get("X-Trace-ID"))
}

func TestConsoleServer_LoginValidation(t *testing.T) {
	srv := newTestServer()

	rec, result := doRequest(t, srv, http.MethodPost, "/admins/login", "", []byte(`{"username":"root"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, domain.CodeBadRequest, result.State)

	rec, result = doRequest(t, srv, http.MethodPost, "/admins/login", "", []byte(`{broken`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, domain.CodeBadRequest, result.State)
}
