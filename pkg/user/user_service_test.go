package user

import (
	"context"
	"testing"
	"time"

	"WA-Order-Bot/domain"
	"WA-Order-Bot/internal/testutil"
	"WA-Order-Bot/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUserService(t *testing.T) (UserService, jwt.JWTService) {
	db := testutil.NewTestDB(t)
	jwtService := jwt.NewJWTService("secret", time.Hour)
	return NewUserService(NewUserRepository(db), jwtService), jwtService
}

func TestEnsureAdminAndLogin(t *testing.T) {
	svc, jwtService := newTestUserService(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "Owner", "Owner@Shop.test", "s3cretpass"))
	// second call keeps the existing account
	require.NoError(t, svc.EnsureAdmin(ctx, "Owner", "owner@shop.test", "different1"))

	res, err := svc.Login(ctx, domain.LoginRequest{Email: "owner@shop.test", Password: "s3cretpass"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, res.Role)
	assert.Equal(t, 3600, res.ExpiresIn)

	userID, _, err := jwtService.GetUserIDByToken(res.Token)
	require.NoError(t, err)

	me, err := svc.Me(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "owner@shop.test", me.Email)
	assert.Equal(t, "Owner", me.Name)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc, _ := newTestUserService(t)
	ctx := context.Background()
	require.NoError(t, svc.EnsureAdmin(ctx, "Owner", "owner@shop.test", "s3cretpass"))

	_, err := svc.Login(ctx, domain.LoginRequest{Email: "owner@shop.test", Password: "wrongpass"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, domain.LoginRequest{Email: "nobody@shop.test", Password: "s3cretpass"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}
