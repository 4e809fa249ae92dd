package services

import (
	"context"
	"testing"
	"time"

	"github.com/ArowuTest/memebox-backend/internal/models"
	"github.com/ArowuTest/memebox-backend/internal/repositories/memory"
	"github.com/ArowuTest/memebox-backend/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService() (*AuthServiceImpl, *jwt.TokenService) {
	tokens := jwt.NewTokenService("secret", time.Hour)
	s := NewAuthService(memory.NewUserRepository(), tokens)
	s.cost = bcrypt.MinCost
	return s, tokens
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	s, tokens := newAuthService()

	user, err := s.Register(ctx, &models.RegisterRequest{DisplayName: "Ada", Email: "ada@example.com", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, models.RolePlayer, user.Role)
	assert.NotEqual(t, "password1", user.Password)

	_, err = s.Register(ctx, &models.RegisterRequest{DisplayName: "Ada", Email: "ada@example.com", Password: "password2"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = s.Login(ctx, &models.LoginRequest{Email: "ada@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = s.Login(ctx, &models.LoginRequest{Email: "bob@example.com", Password: "password1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	resp, err := s.Login(ctx, &models.LoginRequest{Email: "ada@example.com", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, 3600, resp.ExpiresIn)
	claims, err := tokens.Parse(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.Subject)
	assert.Equal(t, models.RolePlayer, claims.Role)
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	s, _ := newAuthService()

	require.NoError(t, s.EnsureAdmin(ctx, "", ""))
	require.NoError(t, s.EnsureAdmin(ctx, "root@example.com", "rootpass"))
	require.NoError(t, s.EnsureAdmin(ctx, "root@example.com", "rootpass"))

	resp, err := s.Login(ctx, &models.LoginRequest{Email: "root@example.com", Password: "rootpass"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, resp.User.Role)
}
