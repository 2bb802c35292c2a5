// auth проверяет админские bearer-токены (HS256), выпущенные auth-service,
// и превращает их в models.Principal.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pribylovaa/news-digest/internal/config"
	"github.com/pribylovaa/news-digest/internal/models"
)

var (
	// ErrInvalidToken — подпись, алгоритм, issuer/audience или формат не прошли проверку.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired — срок действия токена истёк.
	ErrTokenExpired = errors.New("token expired")
)

type claims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Verifier проверяет access-токены общим секретом.
type Verifier struct {
	secret   []byte
	issuer   string
	audience string
	leeway   time.Duration
	now      func() time.Time
}

// NewVerifier создаёт Verifier из конфигурации.
// Пустой секрет допустим: тогда любой токен отклоняется.
func NewVerifier(cfg config.AuthConfig) *Verifier {
	return &Verifier{
		secret:   []byte(cfg.JWTSecret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		leeway:   cfg.Leeway,
		now:      time.Now,
	}
}

// Verify валидирует токен и возвращает субъекта.
// uid берётся из claim "uid", при его отсутствии — из "sub".
func (v *Verifier) Verify(tokenStr string) (models.Principal, error) {
	const op = "auth.jwt.Verify"

	if len(v.secret) == 0 || strings.TrimSpace(tokenStr) == "" {
		return models.Principal{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(v.leeway),
		jwt.WithTimeFunc(v.now),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	token, err := jwt.ParseWithClaims(tokenStr, &claims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
			}
			return v.secret, nil
		},
		opts...,
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.Principal{}, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}
		return models.Principal{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return models.Principal{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	uid := c.UserID
	if uid == "" {
		uid = c.Subject
	}
	if uid == "" {
		return models.Principal{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return models.Principal{UserID: uid, Role: strings.ToUpper(c.Role)}, nil
}
