package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studysync/studysync/internal/model"
	"github.com/studysync/studysync/internal/repository"
)

const testPassword = "plum-orchard-42-kite"

func newAuthService(t *testing.T) *AuthService {
	t.Helper()

	database := testDB(t)
	return NewAuthService(repository.NewUserRepository(database), "test-secret", time.Hour)
}

func TestSignupAndLogin(t *testing.T) {
	svc := newAuthService(t)

	user, err := svc.Signup("Ada Lovelace", "Ada@Example.com", testPassword)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.True(t, user.HasPassword())

	got, err := svc.Login("ada@example.com", testPassword)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Login("ada@example.com", "wrong-password-entirely")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login("nobody@example.com", testPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignupValidation(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.Signup("  ", "a@example.com", testPassword)
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = svc.Signup("Ada", "not-an-email", testPassword)
	assert.Error(t, err)

	_, err = svc.Signup("Ada", "a@example.com", "short")
	assert.Error(t, err)
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.Signup("Ada", "ada@example.com", testPassword)
	require.NoError(t, err)

	_, err = svc.Signup("Other Ada", "ADA@example.com", testPassword)
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestAuthenticateOAuthProvisionsOnce(t *testing.T) {
	svc := newAuthService(t)

	user, err := svc.AuthenticateOAuth("grace@example.com", "Grace Hopper")
	require.NoError(t, err)
	assert.False(t, user.HasPassword())
	assert.Equal(t, model.RoleUser, user.Role)

	again, err := svc.AuthenticateOAuth("Grace@Example.com", "Grace Hopper")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)

	// password login is not available for OAuth-only accounts
	_, err = svc.Login("grace@example.com", testPassword)
	assert.Error(t, err)
}

func TestJWTRoundTrip(t *testing.T) {
	svc := newAuthService(t)

	user, err := svc.Signup("Ada", "ada@example.com", testPassword)
	require.NoError(t, err)

	token, err := svc.GenerateJWT(user)
	require.NoError(t, err)

	claims, err := svc.VerifyJWT(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims["user_id"])
	assert.Equal(t, user.Email, claims["email"])

	_, err = svc.VerifyJWT(token + "tampered")
	assert.Error(t, err)

	other := NewAuthService(repository.NewUserRepository(testDB(t)), "different-secret", time.Hour)
	_, err = other.VerifyJWT(token)
	assert.Error(t, err)
}
