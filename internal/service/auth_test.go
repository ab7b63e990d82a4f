package service_test

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/pokemon-battle-service/internal/auth"
	"github.com/maxviazov/pokemon-battle-service/internal/model"
	"github.com/maxviazov/pokemon-battle-service/internal/repository"
	"github.com/maxviazov/pokemon-battle-service/internal/repository/memory"
	"github.com/maxviazov/pokemon-battle-service/internal/service"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newAuthService(t *testing.T) (service.AuthService, repository.UserRepository) {
	t.Helper()
	tokens, err := auth.NewTokenService(auth.TokenConfig{Secret: testSecret, Issuer: "test", Audience: "test-clients", Expiry: time.Hour})
	require.NoError(t, err)
	users := memory.NewUserRepository()
	svc := service.NewAuthService(users, tokens, auth.NewPasswordHasher(4), zerolog.New(io.Discard),
		service.WithLoginDelay(func(context.Context) error { return nil }))
	return svc, users
}

func register(t *testing.T, svc service.AuthService, username, email string) model.AuthResult {
	t.Helper()
	res, err := svc.Register(context.Background(), service.RegisterInput{
		Username: username, Password: "secret1", ConfirmPassword: "secret1", Email: email,
	})
	require.NoError(t, err)
	return res
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc, _ := newAuthService(t)
	_, err := svc.Register(context.Background(), service.RegisterInput{
		Username: "ab", Password: "12345", ConfirmPassword: "54321", Email: "not-an-email",
	})
	require.ErrorIs(t, err, service.ErrInvalidInput)
	for _, f := range []string{"username", "password", "confirm_password", "email"} {
		assert.True(t, hasField(err, f), "missing field error %s", f)
	}
}

func TestAuthService_Register_IssuesValidToken(t *testing.T) {
	svc, _ := newAuthService(t)
	res := register(t, svc, "ash", "ash@pallet.town")

	assert.Equal(t, model.RoleUser, res.User.Role)
	assert.Empty(t, res.User.PasswordHash)
	assert.True(t, res.User.IsActive)
	assert.Nil(t, res.User.LastLoginAt)

	claims, err := svc.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.Equal(t, "ash", claims.Username)
	assert.Equal(t, model.RoleUser, claims.Role)
}

func TestAuthService_Register_CaseInsensitiveConflict(t *testing.T) {
	svc, _ := newAuthService(t)
	register(t, svc, "Ash", "ash@pallet.town")

	_, err := svc.Register(context.Background(), service.RegisterInput{
		Username: "ASH", Password: "secret1", ConfirmPassword: "secret1", Email: "other@pallet.town",
	})
	assert.ErrorIs(t, err, repository.ErrAlreadyExists)
	assert.Equal(t, "username", service.TakenField(err))

	_, err = svc.Register(context.Background(), service.RegisterInput{
		Username: "gary", Password: "secret1", ConfirmPassword: "secret1", Email: "ASH@pallet.town",
	})
	assert.ErrorIs(t, err, repository.ErrAlreadyExists)
	assert.Equal(t, "email", service.TakenField(err))
}

func TestAuthService_Register_ConcurrentSameUsername(t *testing.T) {
	svc, users := newAuthService(t)
	ctx := context.Background()

	const n = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := "ash"
			if i%2 == 1 {
				name = "ASH"
			}
			_, err := svc.Register(ctx, service.RegisterInput{
				Username: name, Password: "secret1", ConfirmPassword: "secret1",
				Email: fmt.Sprintf("ash%d@pallet.town", i),
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
				return
			}
			if assert.ErrorIs(t, err, repository.ErrAlreadyExists) {
				conflicts++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, n-1, conflicts)
	all, err := users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAuthService_Login(t *testing.T) {
	svc, users := newAuthService(t)
	reg := register(t, svc, "misty", "misty@cerulean.gym")
	ctx := context.Background()

	_, err := svc.Login(ctx, "", "")
	require.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = svc.Login(ctx, "misty", "wrong-password")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "brock", "secret1")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)

	res, err := svc.Login(ctx, "MISTY", "secret1")
	require.NoError(t, err)
	require.NotNil(t, res.User.LastLoginAt)
	assert.NotEmpty(t, res.Token)

	_, err = users.Update(ctx, reg.User.ID, func(u *model.User) error {
		u.IsActive = false
		return nil
	})
	require.NoError(t, err)
	_, err = svc.Login(ctx, "misty", "secret1")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestAuthService_Login_HonoursContext(t *testing.T) {
	tokens, err := auth.NewTokenService(auth.TokenConfig{Secret: testSecret, Issuer: "test", Audience: "test-clients", Expiry: time.Hour})
	require.NoError(t, err)
	svc := service.NewAuthService(memory.NewUserRepository(), tokens, auth.NewPasswordHasher(4), zerolog.New(io.Discard))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.Login(ctx, "anyone", "whatever")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAuthService_ChangePassword(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()
	reg := register(t, svc, "brock", "brock@pewter.gym")

	err := svc.ChangePassword(ctx, reg.User.ID, "secret1", "123")
	require.ErrorIs(t, err, service.ErrInvalidInput)

	err = svc.ChangePassword(ctx, reg.User.ID, "nope", "onix-rocks")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(ctx, reg.User.ID, "secret1", "onix-rocks"))
	_, err = svc.Login(ctx, "brock", "onix-rocks")
	assert.NoError(t, err)

	assert.ErrorIs(t, svc.ChangePassword(ctx, 404, "a", "abcdefg"), repository.ErrNotFound)
}

func TestAuthService_UpdateUserRole(t *testing.T) {
	svc, users := newAuthService(t)
	ctx := context.Background()
	reg := register(t, svc, "dawn", "dawn@sinnoh.region")

	_, err := svc.UpdateUserRole(ctx, reg.User.ID, model.Role("Champion"))
	require.ErrorIs(t, err, service.ErrInvalidInput)

	ok, err := svc.UpdateUserRole(ctx, reg.User.ID, model.RoleTrainer)
	require.NoError(t, err)
	assert.True(t, ok)
	u, _ := svc.GetUserByID(ctx, reg.User.ID)
	assert.Equal(t, model.RoleTrainer, u.Role)

	ok, err = svc.UpdateUserRole(ctx, 404, model.RoleAdmin)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _ = users.Update(ctx, reg.User.ID, func(u *model.User) error { u.IsActive = false; return nil })
	ok, err = svc.UpdateUserRole(ctx, reg.User.ID, model.RoleAdmin)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthService_ListUsersAndRefresh(t *testing.T) {
	svc, users := newAuthService(t)
	ctx := context.Background()
	a := register(t, svc, "serena", "serena@kalos.region")
	b := register(t, svc, "chloe", "chloe@galar.region")
	_, _ = users.Update(ctx, b.User.ID, func(u *model.User) error { u.IsActive = false; return nil })

	list, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "serena", list[0].Username)
	assert.Empty(t, list[0].PasswordHash)

	exists, err := svc.UserExists(ctx, "SERENA")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = svc.UserExists(ctx, "iris")
	require.NoError(t, err)
	assert.False(t, exists)

	claims, err := svc.ValidateToken(a.Token)
	require.NoError(t, err)
	refreshed, err := svc.Refresh(ctx, claims)
	require.NoError(t, err)
	assert.Equal(t, a.User.ID, refreshed.User.ID)

	claimsB, err := svc.ValidateToken(b.Token)
	require.NoError(t, err)
	_, err = svc.Refresh(ctx, claimsB)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
