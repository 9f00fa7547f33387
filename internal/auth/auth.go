// Package auth signs admins in and out of the console and resolves
// sessions from bearer tokens. Only admin profiles may hold a session;
// customer and rider accounts are turned away at sign-in.
package auth

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/rjdelacruz/go-fuel-console.git/internal/gateway"
	"github.com/rjdelacruz/go-fuel-console.git/internal/orders"
)

// CredentialSource looks up stored credentials by email.
type CredentialSource interface {
	FindCredentialsByEmail(ctx context.Context, email string) (*gateway.Credentials, error)
}

// RevocationList tracks signed-out sessions by token id until they expire
// on their own.
type RevocationList interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Session is an authenticated admin session.
type Session struct {
	Token     string      `json:"token"`
	ProfileID string      `json:"profile_id"`
	FullName  string      `json:"full_name"`
	Role      orders.Role `json:"role"`
	ExpiresAt time.Time   `json:"expires_at"`
}

type Service struct {
	creds   CredentialSource
	tokens  *TokenService
	revoked RevocationList
}

func NewService(creds CredentialSource, tokens *TokenService, revoked RevocationList) *Service {
	return &Service{creds: creds, tokens: tokens, revoked: revoked}
}

// SignIn checks credentials and the admin role gate, then issues a session.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, &orders.AuthError{Reason: "email and password are required"}
	}

	c, err := s.creds.FindCredentialsByEmail(ctx, email)
	if err != nil {
		return nil, &orders.AuthError{Reason: "credential lookup failed", Err: err}
	}
	if c == nil {
		return nil, &orders.AuthError{Reason: "invalid email or password"}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, &orders.AuthError{Reason: "invalid email or password"}
		}
		return nil, &orders.AuthError{Reason: "password check failed", Err: err}
	}

	if c.Profile.Role != orders.RoleAdmin {
		return nil, &orders.AuthError{Reason: "access denied: admin privileges required"}
	}
	if !c.Profile.Active {
		return nil, &orders.AuthError{Reason: "account is deactivated"}
	}

	token, expiresAt, err := s.tokens.Generate(c.Profile.ID)
	if err != nil {
		return nil, &orders.AuthError{Reason: "issuing session token", Err: err}
	}

	return &Session{
		Token:     token,
		ProfileID: c.Profile.ID,
		FullName:  c.Profile.FullName,
		Role:      c.Profile.Role,
		ExpiresAt: expiresAt,
	}, nil
}

// SignOut revokes the session behind a bearer token. Revoking an already
// expired token is not an error.
func (s *Service) SignOut(ctx context.Context, token string) error {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return nil
		}
		return &orders.AuthError{Reason: "invalid session token", Err: err}
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := s.revoked.Revoke(ctx, claims.ID, ttl); err != nil {
		return &orders.AuthError{Reason: "revoking session", Err: err}
	}
	return nil
}

// CurrentSession resolves a bearer token into the profile id it belongs to.
func (s *Service) CurrentSession(ctx context.Context, token string) (string, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return "", &orders.AuthError{Reason: "invalid session token", Err: err}
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return "", &orders.AuthError{Reason: "revocation check failed", Err: err}
	}
	if revoked {
		return "", &orders.AuthError{Reason: "session has been signed out"}
	}
	return claims.Subject, nil
}

// HashPassword produces a bcrypt hash for storing new rider or admin
// credentials.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
