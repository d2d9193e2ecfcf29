package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/resolvease/complaint-service/internal/config"
	"github.com/resolvease/complaint-service/internal/domain"
	apperrors "github.com/resolvease/complaint-service/pkg/util/errorutil"
)

// TokenManager handles issuing and validating JWT tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a new manager from injected auth configuration.
func NewTokenManager(cfg config.AuthConfig) *TokenManager {
	return &TokenManager{secret: []byte(cfg.JWTSecret), ttl: cfg.TokenTTL(), now: time.Now}
}

// Claims describes JWT payload.
type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// Issue signs a bearer credential bound to userID.
func (tm *TokenManager) Issue(userID string) (domain.Token, error) {
	issuedAt := tm.now()
	expiresAt := issuedAt.Add(tm.ttl)
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return domain.Token{}, err
	}
	return domain.Token{Value: tokenString, SubjectID: userID, IssuedAt: issuedAt, ExpiresAt: expiresAt}, nil
}

// Verify validates the credential and returns the bound user id.
func (tm *TokenManager) Verify(tokenStr string) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	}, jwt.WithTimeFunc(tm.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", apperrors.NewInvalidToken("token expired")
		}
		return "", apperrors.NewInvalidToken("invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return "", apperrors.NewInvalidToken("invalid token claims")
	}
	return claims.Subject, nil
}
