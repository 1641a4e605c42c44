package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xela07ax/ams-passport/internal/domain"
)

var testSecret = []byte("unit-test-secret-key-0123456789abcdef")

func testLoginInfo() *domain.AdminLoginInfo {
	return &domain.AdminLoginInfo{
		ID:       42,
		Username: "root",
		Enabled:  true,
		Permissions: []string{
			domain.PermAdminRead,
			domain.PermAdminDelete,
		},
	}
}

func TestTokenIssuer_IssueAndVerify(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	validator := NewBaseValidator(testSecret)

	signed, err := issuer.Issue(testLoginInfo())
	require.NoError(t, err)

	claims, err := validator.VerifyToken(signed)
	require.NoError(t, err)

	assert.Equal(t, int64(42), claims.AdminID)
	assert.Equal(t, "root", claims.Username)
	assert.Equal(t, "root", claims.Subject)

	perms, err := claims.PermissionList()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{domain.PermAdminRead, domain.PermAdminDelete}, perms)
}

func TestBaseValidator_BearerPrefixStripped(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	validator := NewBaseValidator(testSecret)

	signed, err := issuer.Issue(testLoginInfo())
	require.NoError(t, err)

	claims, err := validator.VerifyToken("Bearer " + signed)
	require.NoError(t, err)
	assert.Equal(t, "root", claims.Username)
}

func TestTokenIssuer_NilPermissionsBecomeEmptyList(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	validator := NewBaseValidator(testSecret)

	info := testLoginInfo()
	info.Permissions = nil

	signed, err := issuer.Issue(info)
	require.NoError(t, err)

	claims, err := validator.VerifyToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "[]", claims.Permissions)

	perms, err := claims.PermissionList()
	require.NoError(t, err)
	assert.Empty(t, perms)
}

func TestBaseValidator_ExpiredToken(t *testing.T) {
	// Отрицательный TTL: токен рождается уже истекшим
	issuer := NewTokenIssuer(testSecret, -time.Minute)
	validator := NewBaseValidator(testSecret)

	signed, err := issuer.Issue(testLoginInfo())
	require.NoError(t, err)

	_, err = validator.VerifyToken(signed)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestBaseValidator_WrongSecret(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	validator := NewBaseValidator([]byte("a-completely-different-secret-key!!!"))

	signed, err := issuer.Issue(testLoginInfo())
	require.NoError(t, err)

	_, err = validator.VerifyToken(signed)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestBaseValidator_TamperedToken(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	validator := NewBaseValidator(testSecret)

	signed, err := issuer.Issue(testLoginInfo())
	require.NoError(t, err)

	// Портим один байт payload: подпись перестает сходиться
	raw := []byte(signed)
	mid := len(raw) / 2
	if raw[mid] == 'A' {
		raw[mid] = 'B'
	} else {
		raw[mid] = 'A'
	}

	_, err = validator.VerifyToken(string(raw))
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestBaseValidator_RejectsNoneAlgorithm(t *testing.T) {
	validator := NewBaseValidator(testSecret)

	claims := &domain.CustomClaims{AdminID: 42, Username: "root", Permissions: "[]"}
	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	unsigned, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = validator.VerifyToken(unsigned)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestBaseValidator_Garbage(t *testing.T) {
	validator := NewBaseValidator(testSecret)

	for _, tok := range []string{"", "garbage", "a.b.c", "Bearer "} {
		_, err := validator.VerifyToken(tok)
		assert.Error(t, err, "token %q", tok)
	}
}
