package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/maumlab/maum/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture() (*memUserRepo, *memTokenRepo, *AuthService) {
	users := newMemUserRepo()
	tokens := newMemTokenRepo()
	return users, tokens, NewAuthService(users, tokens, "access-secret", "refresh-secret")
}

func TestOAuthLoginCreatesUserOnce(t *testing.T) {
	users, _, svc := newAuthFixture()

	input := OAuthLoginInput{Provider: "kakao", ProviderUserID: "k-123", Email: "a@example.com"}

	first, err := svc.OAuthLogin(context.Background(), input)
	require.NoError(t, err)
	assert.NotEmpty(t, first.AccessToken)
	assert.NotEmpty(t, first.RefreshToken)
	assert.Equal(t, domain.UserStatusActive, first.User.Status)
	assert.Len(t, users.users, 1)

	second, err := svc.OAuthLogin(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID, "same provider identity maps to the same user")
	assert.Len(t, users.users, 1)
}

func TestOAuthLoginDeletedAccount(t *testing.T) {
	users, _, svc := newAuthFixture()

	input := OAuthLoginInput{Provider: "kakao", ProviderUserID: "k-123", Email: "a@example.com"}
	resp, err := svc.OAuthLogin(context.Background(), input)
	require.NoError(t, err)

	gone := time.Now()
	users.users[resp.User.ID].DeletedAt = &gone

	_, err = svc.OAuthLogin(context.Background(), input)
	assert.ErrorIs(t, err, ErrAccountDeleted)
}

func TestRefreshRoundTrip(t *testing.T) {
	_, _, svc := newAuthFixture()

	login, err := svc.OAuthLogin(context.Background(), OAuthLoginInput{
		Provider: "apple", ProviderUserID: "a-9", Email: "b@example.com",
	})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, login.User.ID, refreshed.User.ID)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Empty(t, refreshed.RefreshToken, "refresh does not rotate the refresh token")

	// The new access token carries the user as subject.
	token, err := jwt.Parse(refreshed.AccessToken, func(t *jwt.Token) (any, error) {
		return []byte("access-secret"), nil
	})
	require.NoError(t, err)
	sub, err := token.Claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, login.User.ID.String(), sub)
}

func TestRefreshRejectsBadTokens(t *testing.T) {
	_, tokens, svc := newAuthFixture()

	_, err := svc.Refresh(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidRefresh)

	login, err := svc.OAuthLogin(context.Background(), OAuthLoginInput{
		Provider: "apple", ProviderUserID: "a-9", Email: "b@example.com",
	})
	require.NoError(t, err)

	// Revoking the stored row invalidates the presented token.
	for id := range tokens.tokens {
		require.NoError(t, tokens.Delete(context.Background(), id))
	}
	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestRefreshExpiredRow(t *testing.T) {
	_, tokens, svc := newAuthFixture()

	login, err := svc.OAuthLogin(context.Background(), OAuthLoginInput{
		Provider: "apple", ProviderUserID: "a-9", Email: "b@example.com",
	})
	require.NoError(t, err)

	for _, row := range tokens.tokens {
		row.ExpiresAt = time.Now().Add(-time.Minute)
	}
	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestHashSecretRoundTrip(t *testing.T) {
	hash, err := hashSecret("tok-123")
	require.NoError(t, err)
	assert.Contains(t, hash, ":")

	assert.True(t, verifySecret("tok-123", hash))
	assert.False(t, verifySecret("tok-456", hash))
	assert.False(t, verifySecret("tok-123", "garbage"))

	// Salted: hashing twice never repeats.
	again, err := hashSecret("tok-123")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again)
}
