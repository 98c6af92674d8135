package redis

import (
	"context"

	"github.com/gericht/reservation-service/internal/entity"
)

// UserRepository is the identity store: user documents kept outside the
// relational database.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetAll(ctx context.Context) ([]*entity.User, error)
	Delete(ctx context.Context, id string) error
}
