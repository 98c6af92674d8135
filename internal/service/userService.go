package service

import (
	"context"
	"fmt"
	"strings"

	postgres "github.com/gericht/reservation-service/internal/database/postgres"
	redisrepo "github.com/gericht/reservation-service/internal/database/redis"
	"github.com/gericht/reservation-service/internal/entity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type userService struct {
	userRepo        redisrepo.UserRepository
	reservationRepo postgres.ReservationRepository
	tokens          *TokenManager
}

// NewUserService создает новый экземпляр UserService
func NewUserService(
	userRepo redisrepo.UserRepository,
	reservationRepo postgres.ReservationRepository,
	tokens *TokenManager,
) UserService {
	return &userService{
		userRepo:        userRepo,
		reservationRepo: reservationRepo,
		tokens:          tokens,
	}
}

// Register регистрирует нового клиента и сразу выдает токен.
func (s *userService) Register(ctx context.Context, req *RegisterRequest) (*AuthResult, error) {
	user, err := s.createUser(ctx, req, entity.RoleCustomer)
	if err != nil {
		return nil, err
	}

	return s.issueAuth(user)
}

// Login проверяет учетные данные и выдает токен.
func (s *userService) Login(ctx context.Context, req *LoginRequest) (*AuthResult, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", entity.ErrInvalidInput)
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		// Не раскрываем, существует ли пользователь.
		if err == entity.ErrUserNotFound {
			return nil, entity.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, entity.ErrInvalidCredentials
	}

	return s.issueAuth(user)
}

// CreateAdmin создает пользователя с ролью admin. Проверка ключа создания
// выполняется на уровне транспорта.
func (s *userService) CreateAdmin(ctx context.Context, req *RegisterRequest) (*entity.User, error) {
	return s.createUser(ctx, req, entity.RoleAdmin)
}

func (s *userService) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// SyncUserNames проставляет в бронированиях имя клиента из карточки
// пользователя. Копируется только first name, как и раньше.
func (s *userService) SyncUserNames(ctx context.Context) (int, error) {
	users, err := s.userRepo.GetAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("ошибка при чтении пользователей: %w", err)
	}

	updated := 0
	for _, user := range users {
		if user.FirstName == "" {
			continue
		}

		affected, err := s.reservationRepo.UpdateCustomerNameByUser(ctx, user.ID, user.FirstName)
		if err != nil {
			return updated, fmt.Errorf("failed to sync name for user %s: %w", user.ID, err)
		}

		updated += int(affected)
	}

	logrus.Infof("User name sync updated %d reservations", updated)
	return updated, nil
}

func (s *userService) createUser(ctx context.Context, req *RegisterRequest, role string) (*entity.User, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if req.FirstName == "" || email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: first name, email and password are required", entity.ErrInvalidInput)
	}
	if len(req.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", entity.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		ID:        uuid.NewString(),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     email,
		Password:  string(hash),
		Role:      role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *userService) issueAuth(user *entity.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &AuthResult{Token: token, User: user}, nil
}
