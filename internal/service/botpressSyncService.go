package service

import (
	"context"
	"fmt"
	"strconv"

	repository "github.com/gericht/reservation-service/internal/database/postgres"
	"github.com/gericht/reservation-service/internal/entity"
	"github.com/gericht/reservation-service/pkg/botpress"

	"github.com/sirupsen/logrus"
)

// BotpressClient is the external table store surface the sync needs.
type BotpressClient interface {
	ListRows(ctx context.Context) ([]botpress.TableRow, error)
	CreateRow(ctx context.Context, row botpress.TableRow) error
}

type botpressSyncService struct {
	reservationRepo repository.ReservationRepository
	botpressRepo    repository.BotpressReservationRepository
	client          BotpressClient
}

// NewBotpressSyncService создает новый экземпляр BotpressSyncService
func NewBotpressSyncService(
	reservationRepo repository.ReservationRepository,
	botpressRepo repository.BotpressReservationRepository,
	client BotpressClient,
) BotpressSyncService {
	return &botpressSyncService{
		reservationRepo: reservationRepo,
		botpressRepo:    botpressRepo,
		client:          client,
	}
}

// SyncToBotpress пушит локальные брони во внешнюю таблицу Botpress.
//
// Dedupe key here is the email alone. The pull direction dedupes on
// email+datetime; the asymmetry is inherited behavior and kept on purpose:
// unifying the keys would change observable sync counts. A second push with
// no external changes syncs zero rows.
func (s *botpressSyncService) SyncToBotpress(ctx context.Context) (int, error) {
	reservations, err := s.reservationRepo.GetWithEmail(ctx)
	if err != nil {
		return 0, fmt.Errorf("ошибка при чтении бронирований: %w", err)
	}

	rows, err := s.client.ListRows(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list botpress rows: %w", err)
	}

	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		seen[row.Email] = true
	}

	synced := 0
	for _, reservation := range reservations {
		if seen[reservation.Email] {
			continue
		}

		row := botpress.TableRow{
			Email:     reservation.Email,
			DateTime:  reservation.Date + "T" + reservation.Time + ":00",
			PartySize: strconv.Itoa(reservation.PartySize),
		}

		// Любая ошибка прерывает цикл: построчного восстановления нет.
		if err := s.client.CreateRow(ctx, row); err != nil {
			return synced, fmt.Errorf("failed to push reservation %d to botpress: %w", reservation.ID, err)
		}

		synced++
	}

	logrus.Infof("Synced %d reservations to Botpress", synced)
	return synced, nil
}

// SyncFromBotpress тянет строки из внешней таблицы Botpress и создает
// недостающие локальные записи: каноническую бронь со статусом confirmed
// (в отличие от вебхука, который создает pending) и зеркальную строку.
// Dedupe key is email+datetime against the mirror table.
func (s *botpressSyncService) SyncFromBotpress(ctx context.Context) (int, error) {
	rows, err := s.client.ListRows(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list botpress rows: %w", err)
	}

	synced := 0
	for _, row := range rows {
		// Неполные строки пропускаем молча, как и оригинал.
		if row.Email == "" || row.DateTime == "" || row.PartySize == "" {
			continue
		}

		datetime, err := entity.ParseDatetime(row.DateTime)
		if err != nil {
			return synced, fmt.Errorf("failed to parse botpress datetime %q: %w", row.DateTime, err)
		}
		date, timeOfDay, _ := entity.SplitDatetime(row.DateTime)

		partySize, err := strconv.Atoi(row.PartySize)
		if err != nil {
			return synced, fmt.Errorf("%w: invalid party size %q", entity.ErrInvalidInput, row.PartySize)
		}

		existing, err := s.botpressRepo.FindByEmailAndDatetime(ctx, row.Email, datetime)
		if err != nil {
			return synced, err
		}
		if existing != nil {
			continue
		}

		reservation := &entity.Reservation{
			UserID:       entity.BotpressUserID,
			CustomerName: nameFromEmail(row.Email),
			Email:        row.Email,
			Date:         date,
			Time:         timeOfDay,
			PartySize:    partySize,
			Status:       entity.ReservationStatusConfirmed,
		}

		reservationID, err := s.reservationRepo.Create(ctx, reservation)
		if err != nil {
			return synced, fmt.Errorf("failed to create reservation during sync: %w", err)
		}

		mirror := &entity.BotpressReservation{
			Email:         row.Email,
			Datetime:      datetime,
			PartySize:     partySize,
			ReservationID: &reservationID,
		}

		if _, err := s.botpressRepo.Create(ctx, mirror); err != nil {
			return synced, fmt.Errorf("failed to create botpress reservation during sync: %w", err)
		}

		synced++
	}

	logrus.Infof("Synced %d reservations from Botpress", synced)
	return synced, nil
}

func (s *botpressSyncService) GetAllBotpressReservations(ctx context.Context) ([]*entity.BotpressReservation, error) {
	return s.botpressRepo.GetAll(ctx)
}

func (s *botpressSyncService) UpdateBotpressStatus(ctx context.Context, id int64, status entity.ReservationStatus) error {
	if !entity.ValidStatus(status) {
		return fmt.Errorf("%w: %s", entity.ErrInvalidStatus, status)
	}

	return s.botpressRepo.UpdateStatus(ctx, id, status)
}

func (s *botpressSyncService) DeleteBotpressReservation(ctx context.Context, id int64) error {
	return s.botpressRepo.Delete(ctx, id)
}
