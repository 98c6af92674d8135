package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gericht/reservation-service/internal/entity"

	"github.com/go-redis/redis/v8"
)

// Key layout: user:{id} holds the JSON document, users:all indexes every id,
// users:email:{email} maps the lowercased email to the id for uniqueness and
// login lookups.
type userRepository struct {
	client *redis.Client
}

func NewUserRepository(client *redis.Client) (UserRepository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &userRepository{client: client}, nil
}

func userKey(id string) string {
	return "user:" + id
}

func emailKey(email string) string {
	return "users:email:" + strings.ToLower(email)
}

// storedUser is the persisted document shape. entity.User hides the
// password hash from JSON responses, here it has to survive the round trip.
type storedUser struct {
	entity.User
	Password string `json:"password"`
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	data, err := json.Marshal(&storedUser{User: *user, Password: user.Password})
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	// SetNX on the email index is the uniqueness check.
	ok, err := r.client.SetNX(ctx, emailKey(user.Email), user.ID, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to index user email: %w", err)
	}
	if !ok {
		return entity.ErrUserAlreadyExists
	}

	if err := r.client.Set(ctx, userKey(user.ID), data, 0).Err(); err != nil {
		r.client.Del(ctx, emailKey(user.Email))
		return fmt.Errorf("failed to store user: %w", err)
	}

	if err := r.client.SAdd(ctx, "users:all", user.ID).Err(); err != nil {
		return fmt.Errorf("failed to index user: %w", err)
	}

	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	data, err := r.client.Get(ctx, userKey(id)).Bytes()
	if err == redis.Nil {
		return nil, entity.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var stored storedUser
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}

	user := stored.User
	user.Password = stored.Password
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	id, err := r.client.Get(ctx, emailKey(email)).Result()
	if err == redis.Nil {
		return nil, entity.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user email: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *userRepository) GetAll(ctx context.Context) ([]*entity.User, error) {
	ids, err := r.client.SMembers(ctx, "users:all").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	var users []*entity.User
	for _, id := range ids {
		user, err := r.GetByID(ctx, id)
		if err == entity.ErrUserNotFound {
			// Stale index entry, skip it.
			continue
		}
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	user, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := r.client.Del(ctx, userKey(id), emailKey(user.Email)).Err(); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if err := r.client.SRem(ctx, "users:all", id).Err(); err != nil {
		return fmt.Errorf("failed to unindex user: %w", err)
	}

	return nil
}
