package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/xela07ax/ams-passport/internal/domain"
	"github.com/xela07ax/ams-passport/internal/infra/auth"
)

type fakeCredentialStore struct {
	accounts  map[string]*domain.AdminLoginInfo
	lookupErr error

	recordedLogins []int64
}

func (f *fakeCredentialStore) GetLoginInfoByUsername(_ context.Context, username string) (*domain.AdminLoginInfo, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	info, ok := f.accounts[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return info, nil
}

func (f *fakeCredentialStore) RecordLogin(_ context.Context, id int64) error {
	f.recordedLogins = append(f.recordedLogins, id)
	return nil
}

var testSecret = []byte("service-test-secret-0123456789abcdef")

func newTestAuthService(t *testing.T, store *fakeCredentialStore) *AuthService {
	t.Helper()
	encoder := auth.NewPasswordEncoder(bcrypt.MinCost)
	issuer := auth.NewTokenIssuer(testSecret, time.Hour)
	validator := auth.NewBaseValidator(testSecret)
	// Высокий лимит: rate limiting проверяется отдельным тестом
	return NewAuthService(store, encoder, issuer, validator, 1000, 1000, nil, zap.NewNop())
}

func seedAccount(t *testing.T, store *fakeCredentialStore, username, password string, enabled bool, perms []string) *domain.AdminLoginInfo {
	t.Helper()
	hash, err := auth.NewPasswordEncoder(bcrypt.MinCost).Hash(password)
	require.NoError(t, err)
	info := &domain.AdminLoginInfo{
		ID:           int64(len(store.accounts) + 1),
		Username:     username,
		PasswordHash: hash,
		Enabled:      enabled,
		Permissions:  perms,
	}
	if store.accounts == nil {
		store.accounts = make(map[string]*domain.AdminLoginInfo)
	}
	store.accounts[username] = info
	return info
}

func TestAuthService_LoginSuccess(t *testing.T) {
	store := &fakeCredentialStore{}
	seedAccount(t, store, "root", "correct horse", true, []string{domain.PermAdminRead})
	svc := newTestAuthService(t, store)

	resp, err := svc.Login(context.Background(), "root", "correct horse")
	require.NoError(t, err)

	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	// Выданный токен проверяется тем же секретом и несет те же claims
	claims, err := svc.VerifyToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "root", claims.Username)
	perms, err := claims.PermissionList()
	require.NoError(t, err)
	assert.Equal(t, []string{domain.PermAdminRead}, perms)

	// Бухгалтерия входа отработала
	assert.Equal(t, []int64{1}, store.recordedLogins)
}

func TestAuthService_UnknownUsername(t *testing.T) {
	store := &fakeCredentialStore{}
	svc := newTestAuthService(t, store)

	_, err := svc.Login(context.Background(), "ghost", "whatever")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.Empty(t, store.recordedLogins)
}

func TestAuthService_WrongPassword(t *testing.T) {
	store := &fakeCredentialStore{}
	seedAccount(t, store, "root", "correct horse", true, nil)
	svc := newTestAuthService(t, store)

	_, err := svc.Login(context.Background(), "root", "battery staple")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.Empty(t, store.recordedLogins)
}

func TestAuthService_DisabledAccount(t *testing.T) {
	store := &fakeCredentialStore{}
	seedAccount(t, store, "former", "correct horse", false, nil)
	svc := newTestAuthService(t, store)

	// С верным паролем — честный ответ «аккаунт отключен»
	_, err := svc.Login(context.Background(), "former", "correct horse")
	assert.ErrorIs(t, err, domain.ErrAccountDisabled)

	// С неверным — обычный отказ: отключенность не раскрываем
	_, err = svc.Login(context.Background(), "former", "battery staple")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthService_StoreFailurePropagates(t *testing.T) {
	store := &fakeCredentialStore{lookupErr: errors.New("connection refused")}
	svc := newTestAuthService(t, store)

	_, err := svc.Login(context.Background(), "root", "pw")
	require.Error(t, err)
	// Сбой хранилища не маскируется под неверные учетные данные
	assert.NotErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthService_RateLimited(t *testing.T) {
	store := &fakeCredentialStore{}
	seedAccount(t, store, "root", "correct horse", true, nil)

	encoder := auth.NewPasswordEncoder(bcrypt.MinCost)
	issuer := auth.NewTokenIssuer(testSecret, time.Hour)
	validator := auth.NewBaseValidator(testSecret)
	// burst=1: второй мгновенный запрос обязан упереться в лимит
	svc := NewAuthService(store, encoder, issuer, validator, 1, 1, nil, zap.NewNop())

	_, err := svc.Login(context.Background(), "root", "correct horse")
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "root", "correct horse")
	assert.ErrorIs(t, err, domain.ErrRateLimited)
}
