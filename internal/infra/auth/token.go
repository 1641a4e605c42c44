package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/xela07ax/ams-passport/internal/domain"
)

var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// TokenIssuer формирует подписанный JWT для прошедшего аутентификацию
// администратора. Секрет и TTL — общие с валидатором (один процесс,
// одна конфигурация), иначе все выданные токены станут невалидными.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secret, ttl: ttl}
}

// TTL возвращает окно действия выдаваемых токенов.
func (i *TokenIssuer) TTL() time.Duration { return i.ttl }

// Issue выпускает токен с claims: id, username и сериализованным
// списком прав. Пустой набор прав — валидный случай (claim = "[]").
func (i *TokenIssuer) Issue(info *domain.AdminLoginInfo) (string, error) {
	perms := info.Permissions
	if perms == nil {
		perms = []string{}
	}
	permsJSON, err := json.Marshal(perms)
	if err != nil {
		return "", fmt.Errorf("failed to serialize permissions: %w", err)
	}

	now := time.Now()
	claims := &domain.CustomClaims{
		AdminID:     info.ID,
		Username:    info.Username,
		Permissions: string(permsJSON),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   info.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// BaseValidator содержит общую логику проверки HS256.
type BaseValidator struct {
	secret []byte
}

func NewBaseValidator(secret []byte) *BaseValidator {
	return &BaseValidator{secret: secret}
}

// VerifyToken проверяет подпись и срок действия JWT и возвращает claims.
// Истекший токен отличаем от битого: middleware и метрики считают их
// по-разному, но для клиента оба случая — Unauthenticated.
func (v *BaseValidator) VerifyToken(tokenStr string) (*domain.CustomClaims, error) {
	tokenStr = strings.TrimPrefix(tokenStr, "Bearer ")
	tokenStr = strings.TrimSpace(tokenStr)

	token, err := jwt.ParseWithClaims(tokenStr, &domain.CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Принимаем только симметричный HMAC: подмена alg на none/RS256
		// не должна проходить проверку.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*domain.CustomClaims)
	if !ok {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
