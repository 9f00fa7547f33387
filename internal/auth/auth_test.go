package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rjdelacruz/go-fuel-console.git/internal/gateway"
	"github.com/rjdelacruz/go-fuel-console.git/internal/orders"
)

type fakeCreds struct {
	byEmail map[string]*gateway.Credentials
}

func (f *fakeCreds) FindCredentialsByEmail(_ context.Context, email string) (*gateway.Credentials, error) {
	return f.byEmail[email], nil
}

type memRevocations struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func newMemRevocations() *memRevocations {
	return &memRevocations{revoked: map[string]bool{}}
}

func (m *memRevocations) Revoke(_ context.Context, jti string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[jti] = true
	return nil
}

func (m *memRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revoked[jti], nil
}

func newTestService(t *testing.T, profiles ...gateway.Credentials) *Service {
	t.Helper()
	creds := &fakeCreds{byEmail: map[string]*gateway.Credentials{}}
	for i := range profiles {
		creds.byEmail[profiles[i].Profile.Email] = &profiles[i]
	}
	return NewService(creds, NewTokenService("test-secret"), newMemRevocations())
}

func adminCredentials(t *testing.T, email, password string) gateway.Credentials {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	return gateway.Credentials{
		Profile: orders.Profile{
			ID:       "admin-1",
			FullName: "Site Admin",
			Email:    email,
			Role:     orders.RoleAdmin,
			Active:   true,
		},
		PasswordHash: hash,
	}
}

func TestSignInIssuesSession(t *testing.T) {
	svc := newTestService(t, adminCredentials(t, "admin@example.com", "secret123"))

	sess, err := svc.SignIn(context.Background(), "admin@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "admin-1", sess.ProfileID)
	assert.Equal(t, orders.RoleAdmin, sess.Role)
	assert.NotEmpty(t, sess.Token)
	assert.True(t, sess.ExpiresAt.After(time.Now()))

	profileID, err := svc.CurrentSession(context.Background(), sess.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", profileID)
}

func TestSignInWrongPassword(t *testing.T) {
	svc := newTestService(t, adminCredentials(t, "admin@example.com", "secret123"))

	_, err := svc.SignIn(context.Background(), "admin@example.com", "wrong")
	var authErr *orders.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "invalid email or password", authErr.Reason)
}

func TestSignInUnknownEmail(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.SignIn(context.Background(), "nobody@example.com", "secret123")
	var authErr *orders.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "invalid email or password", authErr.Reason)
}

func TestSignInNonAdminDenied(t *testing.T) {
	c := adminCredentials(t, "rider@example.com", "secret123")
	c.Profile.Role = orders.RoleRider
	svc := newTestService(t, c)

	_, err := svc.SignIn(context.Background(), "rider@example.com", "secret123")
	var authErr *orders.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "access denied: admin privileges required", authErr.Reason)
}

func TestSignInDeactivatedDenied(t *testing.T) {
	c := adminCredentials(t, "admin@example.com", "secret123")
	c.Profile.Active = false
	svc := newTestService(t, c)

	_, err := svc.SignIn(context.Background(), "admin@example.com", "secret123")
	var authErr *orders.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "account is deactivated", authErr.Reason)
}

func TestSignOutRevokesSession(t *testing.T) {
	svc := newTestService(t, adminCredentials(t, "admin@example.com", "secret123"))

	sess, err := svc.SignIn(context.Background(), "admin@example.com", "secret123")
	require.NoError(t, err)

	require.NoError(t, svc.SignOut(context.Background(), sess.Token))

	_, err = svc.CurrentSession(context.Background(), sess.Token)
	var authErr *orders.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "session has been signed out", authErr.Reason)
}

func TestCurrentSessionRejectsGarbageToken(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CurrentSession(context.Background(), "not-a-token")
	var authErr *orders.AuthError
	require.ErrorAs(t, err, &authErr)
}

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokenService("test-secret")

	token, expiresAt, err := tokens.Generate("profile-42")
	require.NoError(t, err)

	claims, err := tokens.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "profile-42", claims.Subject)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, expiresAt, claims.ExpiresAt.Time, time.Second)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, _, err := NewTokenService("secret-a").Generate("profile-42")
	require.NoError(t, err)

	_, err = NewTokenService("secret-b").Validate(token)
	assert.Error(t, err)
}
