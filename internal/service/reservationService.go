package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	repository "github.com/gericht/reservation-service/internal/database/postgres"
	redisrepo "github.com/gericht/reservation-service/internal/database/redis"
	"github.com/gericht/reservation-service/internal/entity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const defaultSlotCapacity = 5

type reservationService struct {
	reservationRepo repository.ReservationRepository
	botpressRepo    repository.BotpressReservationRepository
	userRepo        redisrepo.UserRepository
	queue           TaskPublisher
	slotCapacity    int
	autoSync        bool
}

// NewReservationService создает новый экземпляр ReservationService
func NewReservationService(
	reservationRepo repository.ReservationRepository,
	botpressRepo repository.BotpressReservationRepository,
	userRepo redisrepo.UserRepository,
	queue TaskPublisher,
	slotCapacity int,
	autoSync bool,
) ReservationService {
	if slotCapacity <= 0 {
		slotCapacity = defaultSlotCapacity
	}
	return &reservationService{
		reservationRepo: reservationRepo,
		botpressRepo:    botpressRepo,
		userRepo:        userRepo,
		queue:           queue,
		slotCapacity:    slotCapacity,
		autoSync:        autoSync,
	}
}

// CreateFromCustomer создает бронирование от авторизованного пользователя.
// Name and email are resolved from the identity record, so the request body
// cannot impersonate another customer.
func (s *reservationService) CreateFromCustomer(ctx context.Context, userID string, req *CreateReservationRequest) (*entity.Reservation, error) {
	if err := validateSlot(req.Date, req.Time, req.PartySize); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("пользователь не найден: %w", err)
	}

	reservation := &entity.Reservation{
		UserID:          userID,
		CustomerName:    user.FirstName,
		Email:           user.Email,
		Phone:           req.Phone,
		Date:            req.Date,
		Time:            req.Time,
		PartySize:       req.PartySize,
		SpecialRequests: req.SpecialRequests,
		Status:          entity.ReservationStatusPending,
	}

	if _, err := s.reservationRepo.Create(ctx, reservation); err != nil {
		return nil, fmt.Errorf("ошибка при создании бронирования: %w", err)
	}

	logrus.Infof("Reservation created: ID=%d, User=%s, Date=%s %s, PartySize=%d",
		reservation.ID, userID, reservation.Date, reservation.Time, reservation.PartySize)

	return reservation, nil
}

// CreateFromBot handles the unauthenticated bot path: the display name comes
// from the payload and no mirror record is written.
func (s *reservationService) CreateFromBot(ctx context.Context, req *BotCreateRequest) (*entity.Reservation, error) {
	if err := validateSlot(req.Date, req.Time, req.PartySize); err != nil {
		return nil, err
	}

	reservation := &entity.Reservation{
		UserID:          entity.BotpressUserID,
		CustomerName:    req.CustomerName,
		Phone:           req.Phone,
		Email:           req.Email,
		Date:            req.Date,
		Time:            req.Time,
		PartySize:       req.PartySize,
		SpecialRequests: req.SpecialRequests,
		Status:          entity.ReservationStatusPending,
	}

	if _, err := s.reservationRepo.Create(ctx, reservation); err != nil {
		return nil, fmt.Errorf("ошибка при создании бронирования: %w", err)
	}

	return reservation, nil
}

// CreateFromBotpress создает бронирование из данных чат-бота: каноническую
// запись плюс зеркальную строку botpress_reservations с номером
// подтверждения. The two inserts are not one transaction: if the mirror
// insert fails the canonical reservation stays and the error is surfaced.
func (s *reservationService) CreateFromBotpress(ctx context.Context, req *BotpressCreateRequest) (*BotpressCreateResult, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.PartySize <= 0 {
		return nil, fmt.Errorf("%w: missing or invalid fields: email or partySize", entity.ErrInvalidInput)
	}

	datetime, err := entity.ParseDatetime(req.RawDateTime)
	if err != nil {
		return nil, err
	}
	date, timeOfDay, _ := entity.SplitDatetime(req.RawDateTime)

	customerName := strings.TrimSpace(req.CustomerName)
	if customerName == "" {
		customerName = nameFromEmail(email)
	}

	reservation := &entity.Reservation{
		UserID:       entity.BotpressUserID,
		CustomerName: customerName,
		Email:        email,
		Date:         date,
		Time:         timeOfDay,
		PartySize:    req.PartySize,
		Status:       entity.ReservationStatusPending,
	}

	reservationID, err := s.reservationRepo.Create(ctx, reservation)
	if err != nil {
		return nil, fmt.Errorf("failed to create main reservation: %w", err)
	}

	confNumber := rand.Intn(10000)

	mirror := &entity.BotpressReservation{
		Email:         email,
		Datetime:      datetime,
		PartySize:     req.PartySize,
		ReservationID: &reservationID,
		ConfNumber:    &confNumber,
		Status:        entity.ReservationStatusPending,
	}

	botpressID, err := s.botpressRepo.Create(ctx, mirror)
	if err != nil {
		// Канон уже создан и остается: зеркальная запись best-effort.
		logrus.Errorf("Failed to create botpress reservation for reservation %d: %v", reservationID, err)
		return nil, fmt.Errorf("failed to create botpress reservation: %w", err)
	}

	logrus.Infof("Botpress reservation created: ID=%d, ReservationID=%d, ConfNumber=%d",
		botpressID, reservationID, confNumber)

	s.enqueuePushSync(ctx)

	return &BotpressCreateResult{
		BotpressReservationID: botpressID,
		ReservationID:         reservationID,
		Email:                 email,
		Datetime:              datetime,
		PartySize:             req.PartySize,
		ConfNumber:            confNumber,
		CustomerName:          customerName,
	}, nil
}

func (s *reservationService) GetByID(ctx context.Context, id int64) (*entity.Reservation, error) {
	return s.reservationRepo.GetByID(ctx, id)
}

func (s *reservationService) GetUserReservations(ctx context.Context, userID string) ([]*entity.Reservation, error) {
	return s.reservationRepo.GetByUserID(ctx, userID)
}

func (s *reservationService) GetAll(ctx context.Context, filter *entity.ReservationFilter) ([]*entity.Reservation, error) {
	return s.reservationRepo.GetAll(ctx, filter)
}

// Update изменяет поля, доступные клиенту. Only the owner may edit.
func (s *reservationService) Update(ctx context.Context, id int64, userID string, req *UpdateReservationRequest) error {
	if err := validateSlot(req.Date, req.Time, req.PartySize); err != nil {
		return err
	}

	reservation, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if reservation.UserID != userID {
		return entity.ErrForbidden
	}

	return s.reservationRepo.Update(ctx, id, req.Date, req.Time, req.PartySize, req.SpecialRequests)
}

// UpdateAdmin перезаписывает все поля. When the email resolves to a known
// user the owner reference is reassigned to that identity.
func (s *reservationService) UpdateAdmin(ctx context.Context, id int64, req *AdminUpdateRequest) error {
	if err := validateSlot(req.Date, req.Time, req.PartySize); err != nil {
		return err
	}
	if req.Status != "" && !entity.ValidStatus(req.Status) {
		return fmt.Errorf("%w: %s", entity.ErrInvalidStatus, req.Status)
	}

	reservation := &entity.Reservation{
		CustomerName:    req.CustomerName,
		Phone:           req.Phone,
		Email:           req.Email,
		Date:            req.Date,
		Time:            req.Time,
		PartySize:       req.PartySize,
		SpecialRequests: req.SpecialRequests,
		Status:          req.Status,
	}

	includeUserID := false
	if req.Email != "" {
		if user, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
			reservation.UserID = user.ID
			includeUserID = true
		} else if err != entity.ErrUserNotFound {
			logrus.Warnf("Failed to resolve user for email %s: %v", req.Email, err)
		}
	}

	return s.reservationRepo.UpdateAdmin(ctx, id, reservation, includeUserID)
}

func (s *reservationService) UpdateStatus(ctx context.Context, id int64, status entity.ReservationStatus) error {
	if !entity.ValidStatus(status) {
		return fmt.Errorf("%w: %s", entity.ErrInvalidStatus, status)
	}

	return s.reservationRepo.UpdateStatus(ctx, id, status)
}

// SubmitReview ставит отзыв. Requires ownership and completed status; the
// store itself does not enforce the invariant.
func (s *reservationService) SubmitReview(ctx context.Context, id int64, userID string, rating int, comment string) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", entity.ErrInvalidInput)
	}

	reservation, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if reservation.UserID != userID {
		return entity.ErrForbidden
	}

	if reservation.Status != entity.ReservationStatusCompleted {
		return entity.ErrReviewNotAllowed
	}

	return s.reservationRepo.AddReview(ctx, id, rating, comment)
}

func (s *reservationService) Delete(ctx context.Context, id int64) error {
	return s.reservationRepo.Delete(ctx, id)
}

// CheckAvailability считает брони на слот. Advisory only: two concurrent
// check-then-create sequences can both pass, the capacity is best effort.
func (s *reservationService) CheckAvailability(ctx context.Context, date, timeOfDay string, partySize int) (*AvailabilityResult, error) {
	if date == "" || timeOfDay == "" {
		return nil, fmt.Errorf("%w: date and time are required", entity.ErrInvalidInput)
	}

	count, err := s.reservationRepo.CountByDateTime(ctx, date, timeOfDay)
	if err != nil {
		return nil, fmt.Errorf("ошибка при проверке доступности: %w", err)
	}

	if count < s.slotCapacity {
		return &AvailabilityResult{
			Available: true,
			Message:   "Tables are available for your party!",
		}, nil
	}

	return &AvailabilityResult{
		Available: false,
		Message:   "Sorry, no tables available at that time.",
	}, nil
}

// GetStats собирает статистику для админ-панели.
func (s *reservationService) GetStats(ctx context.Context) (*ReservationStats, error) {
	raw, err := s.reservationRepo.GetStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении статистики: %w", err)
	}

	stats := &ReservationStats{
		StatusCounts: make(map[entity.ReservationStatus]int),
		DailyStats:   make(map[string]map[entity.ReservationStatus]int),
		RawStats:     raw,
	}

	for _, stat := range raw {
		stats.StatusCounts[stat.Status] += stat.Count

		if _, ok := stats.DailyStats[stat.Date]; !ok {
			stats.DailyStats[stat.Date] = make(map[entity.ReservationStatus]int)
		}
		stats.DailyStats[stat.Date][stat.Status] = stat.Count
	}

	return stats, nil
}

// enqueuePushSync schedules a best-effort push sync after chatbot-originated
// creations. Failures only log, the reservation is already persisted.
func (s *reservationService) enqueuePushSync(ctx context.Context) {
	if !s.autoSync || s.queue == nil {
		return
	}

	task := &Task{
		ID:         uuid.NewString(),
		Type:       TaskTypeSyncToBotpress,
		Data:       map[string]interface{}{},
		ExecuteAt:  time.Now(),
		MaxRetries: 3,
	}

	if err := s.queue.Publish(ctx, task); err != nil {
		logrus.Errorf("Failed to enqueue botpress push sync: %v", err)
	}
}

func validateSlot(date, timeOfDay string, partySize int) error {
	if date == "" || timeOfDay == "" {
		return fmt.Errorf("%w: date and time are required", entity.ErrInvalidInput)
	}
	if partySize <= 0 {
		return fmt.Errorf("%w: party size must be positive", entity.ErrInvalidInput)
	}
	return nil
}

// nameFromEmail derives a display name from the local part of the email,
// falling back to a generic placeholder.
func nameFromEmail(email string) string {
	if email == "" {
		return "Botpress User"
	}
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return "Botpress User"
}
