package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/collegehub-edu/portal-service/internal/config"
	"github.com/collegehub-edu/portal-service/internal/models"
)

const refreshTokenType = "refresh"

var (
	// ErrInvalidToken covers bad signatures, malformed tokens and expiry.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrWrongTokenType is returned when a refresh token is presented where
	// an access token is expected, or vice versa.
	ErrWrongTokenType = errors.New("wrong token type")
)

type AccessClaims struct {
	Role  models.UserRole `json:"role"`
	Email string          `json:"email"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// TokenService mints and verifies the two token kinds. It is stateless and
// never touches storage. Access and refresh tokens are signed with distinct
// secrets so a leaked access secret cannot forge long-lived sessions.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenService(cfg config.AuthConfig) *TokenService {
	return &TokenService{
		accessSecret:  []byte(cfg.AccessTokenSecret),
		refreshSecret: []byte(cfg.RefreshTokenSecret),
		accessTTL:     cfg.AccessTokenTTL,
		refreshTTL:    cfg.RefreshTokenTTL,
	}
}

func (s *TokenService) AccessTTL() time.Duration  { return s.accessTTL }
func (s *TokenService) RefreshTTL() time.Duration { return s.refreshTTL }

func (s *TokenService) IssueAccessToken(user *models.User) (string, error) {
	now := time.Now().UTC()
	claims := AccessClaims{
		Role:  user.Role,
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.accessSecret)
}

func (s *TokenService) IssueRefreshToken(user *models.User) (string, error) {
	now := time.Now().UTC()
	claims := RefreshClaims{
		TokenType: refreshTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.refreshSecret)
}

func (s *TokenService) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.accessSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *TokenService) VerifyRefreshToken(tokenString string) (*RefreshClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &RefreshClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.refreshSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*RefreshClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != refreshTokenType {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}
