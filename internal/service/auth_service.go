package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/maumlab/maum/internal/domain"
	"github.com/maumlab/maum/internal/repository"
	"golang.org/x/crypto/argon2"
)

var (
	ErrAccountDeleted = errors.New("account has been deleted")
	ErrInvalidRefresh = errors.New("invalid or expired refresh token")
)

const (
	accessTokenTTL  = time.Hour
	refreshTokenTTL = 30 * 24 * time.Hour
)

type AuthService struct {
	userRepo      repository.UserRepository
	tokenRepo     repository.RefreshTokenRepository
	jwtSecret     []byte
	refreshSecret []byte
}

func NewAuthService(userRepo repository.UserRepository, tokenRepo repository.RefreshTokenRepository, jwtSecret, refreshSecret string) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		tokenRepo:     tokenRepo,
		jwtSecret:     []byte(jwtSecret),
		refreshSecret: []byte(refreshSecret),
	}
}

type OAuthLoginInput struct {
	Provider       string `json:"provider"`
	ProviderUserID string `json:"providerUserId"`
	Email          string `json:"email"`
}

type AuthResponse struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token,omitempty"`
}

// OAuthLogin finds or creates the user for an already-verified provider
// identity. Verifying the provider's token happens upstream; this layer
// trusts the (provider, providerUserId) pair it is handed.
func (s *AuthService) OAuthLogin(ctx context.Context, input OAuthLoginInput) (*AuthResponse, error) {
	user, err := s.userRepo.GetByProvider(ctx, input.Provider, input.ProviderUserID)
	if err != nil {
		return nil, err
	}
	if user != nil && user.DeletedAt != nil {
		return nil, ErrAccountDeleted
	}

	if user == nil {
		now := time.Now()
		user = &domain.User{
			ID:             uuid.New(),
			Email:          input.Email,
			Provider:       input.Provider,
			ProviderUserID: input.ProviderUserID,
			Status:         domain.UserStatusActive,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("creating user: %w", err)
		}
	}

	access, err := s.generateAccessToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generating access token: %w", err)
	}
	refresh, err := s.issueRefreshToken(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("issuing refresh token: %w", err)
	}

	return &AuthResponse{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh exchanges a refresh token for a new access token. The token's
// jti must match a stored row whose hash verifies against the presented
// token, so a leaked database alone can't mint refreshes.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (any, error) {
		return s.refreshSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidRefresh
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidRefresh
	}
	jti, _ := claims["jti"].(string)
	tokenID, err := uuid.Parse(jti)
	if err != nil {
		return nil, ErrInvalidRefresh
	}

	stored, err := s.tokenRepo.GetByID(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	if stored == nil || time.Now().After(stored.ExpiresAt) || !verifySecret(refreshToken, stored.TokenHash) {
		return nil, ErrInvalidRefresh
	}

	user, err := s.userRepo.GetByID(ctx, stored.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.DeletedAt != nil {
		return nil, ErrAccountDeleted
	}

	access, err := s.generateAccessToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generating access token: %w", err)
	}

	return &AuthResponse{User: user, AccessToken: access}, nil
}

func (s *AuthService) generateAccessToken(userID uuid.UUID) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID.String(),
		"exp": time.Now().Add(accessTokenTTL).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *AuthService) issueRefreshToken(ctx context.Context, userID uuid.UUID) (string, error) {
	tokenID := uuid.New()
	expiresAt := time.Now().Add(refreshTokenTTL)

	claims := jwt.MapClaims{
		"sub": userID.String(),
		"jti": tokenID.String(),
		"exp": expiresAt.Unix(),
		"iat": time.Now().Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.refreshSecret)
	if err != nil {
		return "", err
	}

	hash, err := hashSecret(signed)
	if err != nil {
		return "", err
	}

	record := &domain.RefreshToken{
		ID:        tokenID,
		UserID:    userID,
		TokenHash: hash,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	if err := s.tokenRepo.Create(ctx, record); err != nil {
		return "", err
	}

	return signed, nil
}

func hashSecret(secret string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(secret), salt, 1, 64*1024, 4, 32)

	return fmt.Sprintf("%s:%s",
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

func verifySecret(secret, encoded string) bool {
	saltB64, hashB64, ok := strings.Cut(encoded, ":")
	if !ok {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(saltB64)
	if err != nil {
		return false
	}

	expectedHash, err := base64.RawStdEncoding.DecodeString(hashB64)
	if err != nil {
		return false
	}

	hash := argon2.IDKey([]byte(secret), salt, 1, 64*1024, 4, 32)
	return subtle.ConstantTimeCompare(hash, expectedHash) == 1
}
