package transport

import (
	"context"

	"github.com/gericht/reservation-service/internal/entity"
	"github.com/gericht/reservation-service/internal/service"
)

// stubReservationService позволяет задавать поведение каждого метода
// отдельно в конкретном тесте.
type stubReservationService struct {
	createFromCustomerFn func(ctx context.Context, userID string, req *service.CreateReservationRequest) (*entity.Reservation, error)
	createFromBotFn      func(ctx context.Context, req *service.BotCreateRequest) (*entity.Reservation, error)
	createFromBotpressFn func(ctx context.Context, req *service.BotpressCreateRequest) (*service.BotpressCreateResult, error)
	getByIDFn            func(ctx context.Context, id int64) (*entity.Reservation, error)
	getUserFn            func(ctx context.Context, userID string) ([]*entity.Reservation, error)
	getAllFn             func(ctx context.Context, filter *entity.ReservationFilter) ([]*entity.Reservation, error)
	updateFn             func(ctx context.Context, id int64, userID string, req *service.UpdateReservationRequest) error
	updateAdminFn        func(ctx context.Context, id int64, req *service.AdminUpdateRequest) error
	updateStatusFn       func(ctx context.Context, id int64, status entity.ReservationStatus) error
	submitReviewFn       func(ctx context.Context, id int64, userID string, rating int, comment string) error
	deleteFn             func(ctx context.Context, id int64) error
	availabilityFn       func(ctx context.Context, date, timeOfDay string, partySize int) (*service.AvailabilityResult, error)
	statsFn              func(ctx context.Context) (*service.ReservationStats, error)
}

func (s *stubReservationService) CreateFromCustomer(ctx context.Context, userID string, req *service.CreateReservationRequest) (*entity.Reservation, error) {
	return s.createFromCustomerFn(ctx, userID, req)
}

func (s *stubReservationService) CreateFromBot(ctx context.Context, req *service.BotCreateRequest) (*entity.Reservation, error) {
	return s.createFromBotFn(ctx, req)
}

func (s *stubReservationService) CreateFromBotpress(ctx context.Context, req *service.BotpressCreateRequest) (*service.BotpressCreateResult, error) {
	return s.createFromBotpressFn(ctx, req)
}

func (s *stubReservationService) GetByID(ctx context.Context, id int64) (*entity.Reservation, error) {
	return s.getByIDFn(ctx, id)
}

func (s *stubReservationService) GetUserReservations(ctx context.Context, userID string) ([]*entity.Reservation, error) {
	return s.getUserFn(ctx, userID)
}

func (s *stubReservationService) GetAll(ctx context.Context, filter *entity.ReservationFilter) ([]*entity.Reservation, error) {
	return s.getAllFn(ctx, filter)
}

func (s *stubReservationService) Update(ctx context.Context, id int64, userID string, req *service.UpdateReservationRequest) error {
	return s.updateFn(ctx, id, userID, req)
}

func (s *stubReservationService) UpdateAdmin(ctx context.Context, id int64, req *service.AdminUpdateRequest) error {
	return s.updateAdminFn(ctx, id, req)
}

func (s *stubReservationService) UpdateStatus(ctx context.Context, id int64, status entity.ReservationStatus) error {
	return s.updateStatusFn(ctx, id, status)
}

func (s *stubReservationService) SubmitReview(ctx context.Context, id int64, userID string, rating int, comment string) error {
	return s.submitReviewFn(ctx, id, userID, rating, comment)
}

func (s *stubReservationService) Delete(ctx context.Context, id int64) error {
	return s.deleteFn(ctx, id)
}

func (s *stubReservationService) CheckAvailability(ctx context.Context, date, timeOfDay string, partySize int) (*service.AvailabilityResult, error) {
	return s.availabilityFn(ctx, date, timeOfDay, partySize)
}

func (s *stubReservationService) GetStats(ctx context.Context) (*service.ReservationStats, error) {
	return s.statsFn(ctx)
}

type stubSyncService struct {
	syncToFn       func(ctx context.Context) (int, error)
	syncFromFn     func(ctx context.Context) (int, error)
	getAllFn       func(ctx context.Context) ([]*entity.BotpressReservation, error)
	updateStatusFn func(ctx context.Context, id int64, status entity.ReservationStatus) error
	deleteFn       func(ctx context.Context, id int64) error
}

func (s *stubSyncService) SyncToBotpress(ctx context.Context) (int, error) {
	return s.syncToFn(ctx)
}

func (s *stubSyncService) SyncFromBotpress(ctx context.Context) (int, error) {
	return s.syncFromFn(ctx)
}

func (s *stubSyncService) GetAllBotpressReservations(ctx context.Context) ([]*entity.BotpressReservation, error) {
	return s.getAllFn(ctx)
}

func (s *stubSyncService) UpdateBotpressStatus(ctx context.Context, id int64, status entity.ReservationStatus) error {
	return s.updateStatusFn(ctx, id, status)
}

func (s *stubSyncService) DeleteBotpressReservation(ctx context.Context, id int64) error {
	return s.deleteFn(ctx, id)
}
