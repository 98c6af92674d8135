package service

import (
	"context"
	"time"

	"github.com/gericht/reservation-service/internal/entity"
)

// ReservationService owns the reservation lifecycle: the three creation
// paths, edits, status transitions, reviews, deletion and the advisory
// availability check.
type ReservationService interface {
	// Creation paths
	CreateFromCustomer(ctx context.Context, userID string, req *CreateReservationRequest) (*entity.Reservation, error)
	CreateFromBot(ctx context.Context, req *BotCreateRequest) (*entity.Reservation, error)
	CreateFromBotpress(ctx context.Context, req *BotpressCreateRequest) (*BotpressCreateResult, error)

	// Queries
	GetByID(ctx context.Context, id int64) (*entity.Reservation, error)
	GetUserReservations(ctx context.Context, userID string) ([]*entity.Reservation, error)
	GetAll(ctx context.Context, filter *entity.ReservationFilter) ([]*entity.Reservation, error)

	// Mutations
	Update(ctx context.Context, id int64, userID string, req *UpdateReservationRequest) error
	UpdateAdmin(ctx context.Context, id int64, req *AdminUpdateRequest) error
	UpdateStatus(ctx context.Context, id int64, status entity.ReservationStatus) error
	SubmitReview(ctx context.Context, id int64, userID string, rating int, comment string) error
	Delete(ctx context.Context, id int64) error

	// Capacity and reporting
	CheckAvailability(ctx context.Context, date, timeOfDay string, partySize int) (*AvailabilityResult, error)
	GetStats(ctx context.Context) (*ReservationStats, error)
}

// BotpressSyncService reconciles the local stores with the external
// Botpress table store and manages mirror records.
type BotpressSyncService interface {
	SyncToBotpress(ctx context.Context) (int, error)
	SyncFromBotpress(ctx context.Context) (int, error)

	GetAllBotpressReservations(ctx context.Context) ([]*entity.BotpressReservation, error)
	UpdateBotpressStatus(ctx context.Context, id int64, status entity.ReservationStatus) error
	DeleteBotpressReservation(ctx context.Context, id int64) error
}

// UserService covers identity: registration, login, the one-time admin
// bootstrap and the name sync into denormalized reservation rows.
type UserService interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResult, error)
	CreateAdmin(ctx context.Context, req *RegisterRequest) (*entity.User, error)
	GetByID(ctx context.Context, id string) (*entity.User, error)

	// SyncUserNames returns the number of reservations updated before any
	// failure.
	SyncUserNames(ctx context.Context) (int, error)
}

// CreateReservationRequest carries the customer-supplied booking fields.
// Name and email always come from the identity record, never from here.
type CreateReservationRequest struct {
	Date            string `json:"date" binding:"required"`
	Time            string `json:"time" binding:"required"`
	PartySize       int    `json:"partySize" binding:"required,min=1"`
	Phone           string `json:"phone"`
	SpecialRequests string `json:"specialRequests"`
}

// BotCreateRequest is the unauthenticated bot creation payload. Unlike the
// customer path the display name is taken from the payload.
type BotCreateRequest struct {
	CustomerName    string `json:"customerName"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	Date            string `json:"date" binding:"required"`
	Time            string `json:"time" binding:"required"`
	PartySize       int    `json:"partySize" binding:"required,min=1"`
	SpecialRequests string `json:"special_requests"`
}

// BotpressCreateRequest is the normalized chatbot payload: the transport
// layer has already collapsed the datetime/dateTime and customerName/name
// aliases.
type BotpressCreateRequest struct {
	Email        string
	RawDateTime  string
	PartySize    int
	CustomerName string
}

// BotpressCreateResult reports both halves of the chatbot creation.
type BotpressCreateResult struct {
	BotpressReservationID int64  `json:"id"`
	ReservationID         int64  `json:"reservationId"`
	Email                 string `json:"email"`
	Datetime              string `json:"datetime"`
	PartySize             int    `json:"partySize"`
	ConfNumber            int    `json:"confNumber"`
	CustomerName          string `json:"customerName"`
}

type UpdateReservationRequest struct {
	Date            string `json:"date" binding:"required"`
	Time            string `json:"time" binding:"required"`
	PartySize       int    `json:"partySize" binding:"required,min=1"`
	SpecialRequests string `json:"specialRequests"`
}

type AdminUpdateRequest struct {
	CustomerName    string                   `json:"customerName"`
	Phone           string                   `json:"phone"`
	Email           string                   `json:"email"`
	Date            string                   `json:"date"`
	Time            string                   `json:"time"`
	PartySize       int                      `json:"partySize"`
	SpecialRequests string                   `json:"specialRequests"`
	Status          entity.ReservationStatus `json:"status"`
}

type AvailabilityResult struct {
	Available bool   `json:"available"`
	Message   string `json:"message"`
}

// ReservationStats is the admin dashboard aggregation: totals per status and
// per-day breakdowns over the last 30 days.
type ReservationStats struct {
	StatusCounts map[entity.ReservationStatus]int            `json:"statusCounts"`
	DailyStats   map[string]map[entity.ReservationStatus]int `json:"dailyStats"`
	RawStats     []*entity.ReservationStat                   `json:"rawStats"`
}

type RegisterRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResult struct {
	Token string       `json:"token"`
	User  *entity.User `json:"user"`
}

// TaskPublisher publishes background work to the queue.
type TaskPublisher interface {
	Publish(ctx context.Context, task *Task) error
}

// Task mirrors the queue task shape without importing the queue package.
type Task struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	ExecuteAt  time.Time              `json:"execute_at"`
	MaxRetries int                    `json:"max_retries"`
	Attempts   int                    `json:"attempts"`
}

// Task type constants
const (
	TaskTypeSyncUsers        = "sync_users"
	TaskTypeSyncToBotpress   = "sync_to_botpress"
	TaskTypeSyncFromBotpress = "sync_from_botpress"
)
