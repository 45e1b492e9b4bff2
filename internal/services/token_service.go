package services

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"newsreader/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
)

// TokenService signs and verifies the access/refresh token pair.
// Access tokens carry the user id in the "sub" claim; refresh tokens
// carry the same subject plus a "refresh" token type claim so one kind
// cannot be replayed as the other.
type TokenService struct {
	secret        []byte
	accessExpire  time.Duration
	refreshExpire time.Duration
}

var tokenService *TokenService

// GetTokenService returns the token service singleton.
func GetTokenService() *TokenService {
	if tokenService == nil {
		cfg := config.Get()
		tokenService = &TokenService{
			secret:        []byte(cfg.JWTSecret),
			accessExpire:  cfg.AccessExpire,
			refreshExpire: cfg.RefreshExpire,
		}
	}
	return tokenService
}

// NewTokenService builds a service with explicit settings, used by tests.
func NewTokenService(secret string, accessExpire, refreshExpire time.Duration) *TokenService {
	return &TokenService{
		secret:        []byte(secret),
		accessExpire:  accessExpire,
		refreshExpire: refreshExpire,
	}
}

type tokenClaims struct {
	TokenType string `json:"typ,omitempty"`
	jwt.RegisteredClaims
}

func (s *TokenService) generate(userID uint, tokenType string, expire time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expire)),
			Issuer:    "newsreader",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// GenerateAccessToken issues a short-lived access token for userID.
func (s *TokenService) GenerateAccessToken(userID uint) (string, error) {
	return s.generate(userID, "", s.accessExpire)
}

// GenerateRefreshToken issues a long-lived refresh token for userID.
func (s *TokenService) GenerateRefreshToken(userID uint) (string, error) {
	return s.generate(userID, "refresh", s.refreshExpire)
}

// GeneratePair issues the access+refresh token pair returned by login,
// verify and the Google sign-in flows.
func (s *TokenService) GeneratePair(userID uint) (access string, refresh string, err error) {
	if access, err = s.GenerateAccessToken(userID); err != nil {
		return "", "", err
	}
	if refresh, err = s.GenerateRefreshToken(userID); err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (s *TokenService) parse(tokenString string) (*tokenClaims, error) {
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		default:
			return nil, ErrTokenMalformed
		}
	}
	return claims, nil
}

// VerifyAccessToken validates an access token and returns the user id.
func (s *TokenService) VerifyAccessToken(tokenString string) (uint, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return 0, err
	}
	if claims.TokenType == "refresh" {
		return 0, ErrTokenMalformed
	}
	return subjectID(claims)
}

// VerifyRefreshToken validates a refresh token and returns the user id.
func (s *TokenService) VerifyRefreshToken(tokenString string) (uint, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return 0, err
	}
	if claims.TokenType != "refresh" {
		return 0, ErrTokenMalformed
	}
	return subjectID(claims)
}

func subjectID(claims *tokenClaims) (uint, error) {
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrTokenMalformed
	}
	return uint(id), nil
}
