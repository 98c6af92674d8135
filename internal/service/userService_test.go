package service

import (
	"context"
	"testing"
	"time"

	"github.com/gericht/reservation-service/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestUserService() (UserService, *fakeUserRepo, *fakeReservationRepo, *TokenManager) {
	userRepo := newFakeUserRepo()
	reservationRepo := newFakeReservationRepo()
	tokens := NewTokenManager("test-secret", time.Hour)
	return NewUserService(userRepo, reservationRepo, tokens), userRepo, reservationRepo, tokens
}

// TestRegister — успешная регистрация выдает роль customer, хеш пароля и
// валидный токен
func TestRegister(t *testing.T) {
	svc, _, _, tokens := newTestUserService()

	result, err := svc.Register(context.Background(), &RegisterRequest{
		FirstName: "John",
		LastName:  "Doe",
		Email:     "John@Example.com",
		Password:  "supersecret",
	})
	require.NoError(t, err)
	require.NotNil(t, result.User)

	assert.Equal(t, entity.RoleCustomer, result.User.Role)
	assert.Equal(t, "john@example.com", result.User.Email)
	assert.NotEqual(t, "supersecret", result.User.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(result.User.Password), []byte("supersecret")))

	claims, err := tokens.Parse(result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)
	assert.Equal(t, entity.RoleCustomer, claims.Role)
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _, _ := newTestUserService()
	ctx := context.Background()

	tests := []struct {
		name string
		req  *RegisterRequest
	}{
		{"без имени", &RegisterRequest{Email: "a@b.com", Password: "supersecret"}},
		{"без email", &RegisterRequest{FirstName: "John", Password: "supersecret"}},
		{"без пароля", &RegisterRequest{FirstName: "John", Email: "a@b.com"}},
		{"короткий пароль", &RegisterRequest{FirstName: "John", Email: "a@b.com", Password: "1234567"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.req)
			assert.ErrorIs(t, err, entity.ErrInvalidInput)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _, _ := newTestUserService()
	ctx := context.Background()

	req := &RegisterRequest{FirstName: "John", Email: "a@b.com", Password: "supersecret"}
	_, err := svc.Register(ctx, req)
	require.NoError(t, err)

	_, err = svc.Register(ctx, req)
	assert.ErrorIs(t, err, entity.ErrUserAlreadyExists)
}

// TestLogin — неверный пароль и неизвестный email дают одну и ту же ошибку
func TestLogin(t *testing.T) {
	svc, _, _, _ := newTestUserService()
	ctx := context.Background()

	_, err := svc.Register(ctx, &RegisterRequest{
		FirstName: "John", Email: "a@b.com", Password: "supersecret",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &LoginRequest{Email: "a@b.com", Password: "wrongpass"})
	assert.ErrorIs(t, err, entity.ErrInvalidCredentials)

	_, err = svc.Login(ctx, &LoginRequest{Email: "nobody@b.com", Password: "supersecret"})
	assert.ErrorIs(t, err, entity.ErrInvalidCredentials)

	result, err := svc.Login(ctx, &LoginRequest{Email: "A@B.com", Password: "supersecret"})
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", result.User.Email)
	assert.NotEmpty(t, result.Token)
}

func TestCreateAdmin(t *testing.T) {
	svc, _, _, _ := newTestUserService()

	user, err := svc.CreateAdmin(context.Background(), &RegisterRequest{
		FirstName: "Root", Email: "admin@b.com", Password: "supersecret",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, user.Role)
	assert.True(t, user.IsAdmin())
}

// TestSyncUserNames — в брони копируется только first name, пользователи
// без имени пропускаются
func TestSyncUserNames(t *testing.T) {
	svc, userRepo, reservationRepo, _ := newTestUserService()
	ctx := context.Background()

	require.NoError(t, userRepo.Create(ctx, &entity.User{
		ID: "u1", FirstName: "John", LastName: "Doe", Email: "a@b.com",
	}))
	require.NoError(t, userRepo.Create(ctx, &entity.User{
		ID: "u2", Email: "b@b.com",
	}))

	seed := []*entity.Reservation{
		{UserID: "u1", Date: "2025-06-10", Time: "19:00", PartySize: 2, Status: entity.ReservationStatusPending},
		{UserID: "u1", Date: "2025-06-11", Time: "20:00", PartySize: 4, Status: entity.ReservationStatusConfirmed},
		{UserID: "u2", CustomerName: "Old", Date: "2025-06-12", Time: "18:00", PartySize: 3, Status: entity.ReservationStatusPending},
	}
	for _, r := range seed {
		_, err := reservationRepo.Create(ctx, r)
		require.NoError(t, err)
	}

	updated, err := svc.SyncUserNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, updated)

	all, err := reservationRepo.GetByUserID(ctx, "u1")
	require.NoError(t, err)
	for _, r := range all {
		assert.Equal(t, "John", r.CustomerName)
	}

	other, err := reservationRepo.GetByUserID(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, "Old", other[0].CustomerName)
}

// TestTokenRoundtrip — выпущенный токен разбирается, подделанный отклоняется
func TestTokenRoundtrip(t *testing.T) {
	tokens := NewTokenManager("test-secret", time.Hour)
	user := &entity.User{ID: "u1", FirstName: "John", Role: entity.RoleAdmin}

	token, err := tokens.Issue(user)
	require.NoError(t, err)

	claims, err := tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, entity.RoleAdmin, claims.Role)

	_, err = tokens.Parse(token + "x")
	assert.ErrorIs(t, err, entity.ErrInvalidInput)

	other := NewTokenManager("another-secret", time.Hour)
	foreign, err := other.Issue(user)
	require.NoError(t, err)
	_, err = tokens.Parse(foreign)
	assert.Error(t, err)
}
