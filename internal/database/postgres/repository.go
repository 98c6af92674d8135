package repository

import (
	"context"

	"github.com/gericht/reservation-service/internal/entity"
)

type ReservationRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, reservation *entity.Reservation) (int64, error)
	GetByID(ctx context.Context, id int64) (*entity.Reservation, error)
	Update(ctx context.Context, id int64, date, timeOfDay string, partySize int, specialRequests string) error
	UpdateAdmin(ctx context.Context, id int64, reservation *entity.Reservation, includeUserID bool) error
	UpdateStatus(ctx context.Context, id int64, status entity.ReservationStatus) error
	Delete(ctx context.Context, id int64) error

	// Query operations
	GetByUserID(ctx context.Context, userID string) ([]*entity.Reservation, error)
	GetAll(ctx context.Context, filter *entity.ReservationFilter) ([]*entity.Reservation, error)
	GetWithEmail(ctx context.Context) ([]*entity.Reservation, error)
	CountByDateTime(ctx context.Context, date, timeOfDay string) (int, error)

	// Review operations
	AddReview(ctx context.Context, id int64, rating int, comment string) error

	// Sync operations
	UpdateCustomerNameByUser(ctx context.Context, userID, customerName string) (int64, error)

	// Statistical operations
	GetStats(ctx context.Context) ([]*entity.ReservationStat, error)
}

type BotpressReservationRepository interface {
	Create(ctx context.Context, reservation *entity.BotpressReservation) (int64, error)
	GetByID(ctx context.Context, id int64) (*entity.BotpressReservation, error)
	FindByEmailAndDatetime(ctx context.Context, email, datetime string) (*entity.BotpressReservation, error)
	GetAll(ctx context.Context) ([]*entity.BotpressReservation, error)
	Update(ctx context.Context, id int64, datetime string, partySize int, status entity.ReservationStatus, confNumber *int) error
	UpdateStatus(ctx context.Context, id int64, status entity.ReservationStatus) error
	Delete(ctx context.Context, id int64) error
}
