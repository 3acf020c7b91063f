package service

import (
	"alcyxob/coach-app/internal/domain"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrTokenExpired         = errors.New("token has expired")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
)

// AuthService verifies identity provider tokens and maps them to users.
type AuthService interface {
	// Authenticate validates token and resolves its subject to a user,
	// creating the user on first sight.
	Authenticate(ctx context.Context, token string) (*domain.User, error)
	// IssueToken signs a token for externalID. Used by local tooling and tests;
	// production tokens come from the identity provider.
	IssueToken(externalID string, ttl time.Duration) (string, error)
}

type authService struct {
	profiles ProfileService
	secret   []byte
	issuer   string
}

func NewAuthService(profiles ProfileService, jwtSecret, issuer string) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty")
	}
	return &authService{profiles: profiles, secret: []byte(jwtSecret), issuer: issuer}
}

func (s *authService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrAuthenticationFailed)
	}
	if s.issuer != "" && !claims.VerifyIssuer(s.issuer, true) {
		return nil, fmt.Errorf("%w: unexpected issuer %q", ErrAuthenticationFailed, claims.Issuer)
	}
	return s.profiles.ResolveUser(ctx, claims.Subject)
}

func (s *authService) IssueToken(externalID string, ttl time.Duration) (string, error) {
	if externalID == "" {
		return "", invalidf("external id is required")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   externalID,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}
	return signed, nil
}
