package service

import (
	"context"
	"testing"
	"time"

	"storefront-api/internal/config"
	"storefront-api/internal/dto"
	"storefront-api/internal/model"
	"storefront-api/internal/testutil/memstore"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "test-secret"

func register(t *testing.T, a *AuthService, name, email string) *model.User {
	t.Helper()
	u, token, err := a.Register(context.Background(), dto.RegisterRequest{Name: name, Email: email, Password: "secret1"})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	return u
}

func TestRegisterAndLogin(t *testing.T) {
	users := memstore.NewUsers()
	a := NewAuthService(users, testSecret, time.Hour)
	ctx := context.Background()

	u := register(t, a, " Asha ", "Asha@Shop.Test")
	assert.Equal(t, "Asha", u.Name)
	assert.Equal(t, "asha@shop.test", u.Email)
	assert.NotEqual(t, "secret1", u.Password)
	assert.False(t, u.IsAdmin)

	_, _, err := a.Register(ctx, dto.RegisterRequest{Name: "Dup", Email: "asha@shop.test", Password: "secret1"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	got, token, err := a.Login(ctx, dto.LoginRequest{Email: "ASHA@shop.test", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	claims, err := a.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID.Hex(), claims.UserID)

	_, _, err = a.Login(ctx, dto.LoginRequest{Email: "asha@shop.test", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = a.Login(ctx, dto.LoginRequest{Email: "nobody@shop.test", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestParseTokenErrors(t *testing.T) {
	users := memstore.NewUsers()
	a := NewAuthService(users, testSecret, time.Hour)
	u := &model.User{ID: primitive.NewObjectID(), IsAdmin: true}

	issued := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return issued }
	token, err := a.IssueToken(u)
	require.NoError(t, err)

	claims, err := a.ParseToken(token)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin)

	a.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = a.ParseToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)

	_, err = a.ParseToken("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewAuthService(users, "other-secret", time.Hour)
	other.now = func() time.Time { return issued }
	_, err = other.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: u.ID.Hex()})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	a.now = func() time.Time { return issued }
	_, err = a.ParseToken(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticate(t *testing.T) {
	users := memstore.NewUsers()
	a := NewAuthService(users, testSecret, time.Hour)
	ctx := context.Background()
	u := register(t, a, "Asha", "asha@shop.test")

	token, err := a.IssueToken(u)
	require.NoError(t, err)
	got, err := a.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)

	ghost, err := a.IssueToken(&model.User{ID: primitive.NewObjectID()})
	require.NoError(t, err)
	_, err = a.Authenticate(ctx, ghost)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserProfileAndPassword(t *testing.T) {
	users := memstore.NewUsers()
	orders := memstore.NewOrders()
	a := NewAuthService(users, testSecret, time.Hour)
	s := NewUserService(users, orders)
	ctx := context.Background()

	asha := register(t, a, "Asha", "asha@shop.test")
	register(t, a, "Ravi", "ravi@shop.test")

	_, err := s.UpdateProfile(ctx, asha.ID.Hex(), dto.UpdateProfileRequest{Email: "ravi@shop.test"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	got, err := s.UpdateProfile(ctx, asha.ID.Hex(), dto.UpdateProfileRequest{Phone: "9876543210", City: "Pune", Email: "ASHA@shop.test"})
	require.NoError(t, err)
	assert.Equal(t, "Asha", got.Name)
	assert.Equal(t, "Pune", got.City)
	assert.Equal(t, "asha@shop.test", got.Email)

	err = s.ChangePassword(ctx, asha.ID.Hex(), dto.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "secret2"})
	assert.ErrorIs(t, err, ErrWrongPassword)
	require.NoError(t, s.ChangePassword(ctx, asha.ID.Hex(), dto.ChangePasswordRequest{CurrentPassword: "secret1", NewPassword: "secret2"}))

	_, _, err = a.Login(ctx, dto.LoginRequest{Email: "asha@shop.test", Password: "secret2"})
	assert.NoError(t, err)

	_, err = s.Profile(ctx, primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserStats(t *testing.T) {
	users := memstore.NewUsers()
	orders := memstore.NewOrders()
	s := NewUserService(users, orders)
	ctx := context.Background()

	u := &model.User{Name: "Asha", Email: "asha@shop.test", CreatedAt: time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, users.Insert(ctx, u))
	require.NoError(t, orders.Insert(ctx, &model.Order{UserID: u.ID, TotalAmount: 1399}))
	require.NoError(t, orders.Insert(ctx, &model.Order{UserID: u.ID, TotalAmount: 599}))
	require.NoError(t, orders.Insert(ctx, &model.Order{UserID: primitive.NewObjectID(), TotalAmount: 10}))

	stats, err := s.Stats(ctx, u.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalOrders)
	assert.Equal(t, 1998.0, stats.TotalSpent)
	assert.Equal(t, "Feb 2024", stats.MemberSince)
}

func TestEnsureAdminAndPromote(t *testing.T) {
	users := memstore.NewUsers()
	s := NewUserService(users, memstore.NewOrders())
	ctx := context.Background()
	cfg := config.AdminConfig{Name: "Owner", Email: "owner@shop.test", Password: "supersecret"}

	u, created, err := s.EnsureAdmin(ctx, cfg)
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, u.IsAdmin)

	_, created, err = s.EnsureAdmin(ctx, cfg)
	require.NoError(t, err)
	assert.False(t, created)

	require.NoError(t, users.Insert(ctx, &model.User{Name: "Staff", Email: "staff@shop.test"}))
	p, err := s.Promote(ctx, "Staff@shop.test")
	require.NoError(t, err)
	assert.True(t, p.IsAdmin)

	_, err = s.Promote(ctx, "ghost@shop.test")
	assert.ErrorIs(t, err, ErrUserNotFound)

	admins, err := s.Admins(ctx)
	require.NoError(t, err)
	assert.Len(t, admins, 2)

	a := NewAuthService(users, testSecret, time.Hour)
	_, _, err = a.Login(ctx, dto.LoginRequest{Email: cfg.Email, Password: cfg.Password})
	assert.NoError(t, err)
}
