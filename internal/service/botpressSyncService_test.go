package service

import (
	"context"
	"testing"

	"github.com/gericht/reservation-service/internal/entity"
	"github.com/gericht/reservation-service/pkg/botpress"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSyncToBotpress — пуш отправляет только брони с email, которых еще нет
// во внешней таблице, и повторный запуск ничего не шлет
func TestSyncToBotpress(t *testing.T) {
	ctx := context.Background()

	reservationRepo := newFakeReservationRepo()
	seed := []*entity.Reservation{
		{UserID: "u1", Email: "a@b.com", Date: "2025-06-10", Time: "19:00", PartySize: 2, Status: entity.ReservationStatusPending},
		{UserID: "u2", Email: "c@d.com", Date: "2025-06-11", Time: "20:00", PartySize: 4, Status: entity.ReservationStatusConfirmed},
		{UserID: "u3", Date: "2025-06-12", Time: "18:00", PartySize: 3, Status: entity.ReservationStatusPending}, // без email
	}
	for _, r := range seed {
		_, err := reservationRepo.Create(ctx, r)
		require.NoError(t, err)
	}

	client := &fakeBotpressClient{
		rows: []botpress.TableRow{
			{Email: "c@d.com", DateTime: "2025-06-11T20:00:00", PartySize: "4"},
		},
	}

	svc := NewBotpressSyncService(reservationRepo, newFakeBotpressRepo(), client)

	synced, err := svc.SyncToBotpress(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, synced)
	require.Len(t, client.rows, 2)
	assert.Equal(t, "a@b.com", client.rows[1].Email)
	assert.Equal(t, "2025-06-10T19:00:00", client.rows[1].DateTime)
	assert.Equal(t, "2", client.rows[1].PartySize)

	// Идемпотентность по ключу дедупликации
	synced, err = svc.SyncToBotpress(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, synced)
}

// TestSyncToBotpressDedupeByEmailOnly — две локальные брони с одним email и
// разным временем считаются одной записью: ключ дедупликации только email
func TestSyncToBotpressDedupeByEmailOnly(t *testing.T) {
	ctx := context.Background()

	reservationRepo := newFakeReservationRepo()
	seed := []*entity.Reservation{
		{UserID: "u1", Email: "a@b.com", Date: "2025-06-10", Time: "19:00", PartySize: 2, Status: entity.ReservationStatusPending},
		{UserID: "u1", Email: "a@b.com", Date: "2025-07-01", Time: "21:00", PartySize: 6, Status: entity.ReservationStatusPending},
	}
	for _, r := range seed {
		_, err := reservationRepo.Create(ctx, r)
		require.NoError(t, err)
	}

	client := &fakeBotpressClient{
		rows: []botpress.TableRow{
			{Email: "a@b.com", DateTime: "2025-06-10T19:00:00", PartySize: "2"},
		},
	}

	svc := NewBotpressSyncService(reservationRepo, newFakeBotpressRepo(), client)

	synced, err := svc.SyncToBotpress(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, synced)
	assert.Len(t, client.rows, 1)
}

// TestSyncToBotpressRowFailure — первая ошибка создания строки прерывает
// цикл, частичный прогресс возвращается вместе с ошибкой
func TestSyncToBotpressRowFailure(t *testing.T) {
	ctx := context.Background()

	reservationRepo := newFakeReservationRepo()
	_, err := reservationRepo.Create(ctx, &entity.Reservation{
		UserID: "u1", Email: "a@b.com", Date: "2025-06-10", Time: "19:00", PartySize: 2,
		Status: entity.ReservationStatusPending,
	})
	require.NoError(t, err)

	client := &fakeBotpressClient{failCreate: errStoreDown}
	svc := NewBotpressSyncService(reservationRepo, newFakeBotpressRepo(), client)

	synced, err := svc.SyncToBotpress(ctx)
	require.Error(t, err)
	assert.Equal(t, 0, synced)
}

// TestSyncFromBotpress — пул создает канон confirmed и зеркало для каждой
// внешней строки без локального совпадения email+datetime
func TestSyncFromBotpress(t *testing.T) {
	ctx := context.Background()

	reservationRepo := newFakeReservationRepo()
	botpressRepo := newFakeBotpressRepo()

	client := &fakeBotpressClient{
		rows: []botpress.TableRow{
			{Email: "x@y.com", DateTime: "2024-01-01T12:00:00", PartySize: "2"},
		},
	}

	svc := NewBotpressSyncService(reservationRepo, botpressRepo, client)

	synced, err := svc.SyncFromBotpress(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, synced)

	reservations, err := reservationRepo.GetAll(ctx, nil)
	require.NoError(t, err)
	require.Len(t, reservations, 1)
	assert.Equal(t, entity.ReservationStatusConfirmed, reservations[0].Status)
	assert.Equal(t, entity.BotpressUserID, reservations[0].UserID)
	assert.Equal(t, "2024-01-01", reservations[0].Date)
	assert.Equal(t, "12:00", reservations[0].Time)
	assert.Equal(t, "x", reservations[0].CustomerName)

	mirror, err := botpressRepo.FindByEmailAndDatetime(ctx, "x@y.com", "2024-01-01 12:00:00")
	require.NoError(t, err)
	require.NotNil(t, mirror)
	require.NotNil(t, mirror.ReservationID)
	assert.Equal(t, reservations[0].ID, *mirror.ReservationID)

	// Повторный пул тот же набор строк не создает дубликатов
	synced, err = svc.SyncFromBotpress(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, synced)

	reservations, err = reservationRepo.GetAll(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, reservations, 1)
}

// TestSyncFromBotpressSkipsIncompleteRows — строки без email/dateTime/
// partySize молча пропускаются
func TestSyncFromBotpressSkipsIncompleteRows(t *testing.T) {
	ctx := context.Background()

	reservationRepo := newFakeReservationRepo()
	client := &fakeBotpressClient{
		rows: []botpress.TableRow{
			{DateTime: "2024-01-01T12:00:00", PartySize: "2"},
			{Email: "x@y.com", PartySize: "2"},
			{Email: "x@y.com", DateTime: "2024-01-01T12:00:00"},
			{Email: "ok@y.com", DateTime: "2024-01-02T12:00:00", PartySize: "3"},
		},
	}

	svc := NewBotpressSyncService(reservationRepo, newFakeBotpressRepo(), client)

	synced, err := svc.SyncFromBotpress(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, synced)

	reservations, err := reservationRepo.GetAll(ctx, nil)
	require.NoError(t, err)
	require.Len(t, reservations, 1)
	assert.Equal(t, "ok@y.com", reservations[0].Email)
}

func TestSyncFromBotpressInvalidDatetime(t *testing.T) {
	client := &fakeBotpressClient{
		rows: []botpress.TableRow{
			{Email: "x@y.com", DateTime: "someday", PartySize: "2"},
		},
	}

	svc := NewBotpressSyncService(newFakeReservationRepo(), newFakeBotpressRepo(), client)

	synced, err := svc.SyncFromBotpress(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 0, synced)
}

// TestDedupeAsymmetry фиксирует унаследованную асимметрию ключей: пуш
// дедуплицирует по email, пул — по email+datetime
func TestDedupeAsymmetry(t *testing.T) {
	ctx := context.Background()

	reservationRepo := newFakeReservationRepo()
	botpressRepo := newFakeBotpressRepo()

	// Зеркало уже знает a@b.com на одно время
	_, err := botpressRepo.Create(ctx, &entity.BotpressReservation{
		Email: "a@b.com", Datetime: "2025-06-10 19:00:00", PartySize: 2,
	})
	require.NoError(t, err)

	client := &fakeBotpressClient{
		rows: []botpress.TableRow{
			{Email: "a@b.com", DateTime: "2025-06-10T19:00:00", PartySize: "2"},
			{Email: "a@b.com", DateTime: "2025-08-01T20:00:00", PartySize: "2"},
		},
	}

	svc := NewBotpressSyncService(reservationRepo, botpressRepo, client)

	// Пул создает запись для того же email на другое время
	synced, err := svc.SyncFromBotpress(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, synced)

	// Пуш при этом не отправил бы вторую бронь того же email вовсе —
	// email уже есть во внешней таблице
	_, err = reservationRepo.Create(ctx, &entity.Reservation{
		UserID: "u1", Email: "a@b.com", Date: "2025-09-15", Time: "18:00", PartySize: 3,
		Status: entity.ReservationStatusPending,
	})
	require.NoError(t, err)

	pushed, err := svc.SyncToBotpress(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, pushed)
}

func TestUpdateBotpressStatus(t *testing.T) {
	ctx := context.Background()

	botpressRepo := newFakeBotpressRepo()
	id, err := botpressRepo.Create(ctx, &entity.BotpressReservation{
		Email: "a@b.com", Datetime: "2025-06-10 19:00:00", PartySize: 2,
	})
	require.NoError(t, err)

	svc := NewBotpressSyncService(newFakeReservationRepo(), botpressRepo, &fakeBotpressClient{})

	assert.ErrorIs(t, svc.UpdateBotpressStatus(ctx, id, "teleported"), entity.ErrInvalidStatus)

	require.NoError(t, svc.UpdateBotpressStatus(ctx, id, entity.ReservationStatusConfirmed))
	stored, err := botpressRepo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationStatusConfirmed, stored.Status)

	assert.ErrorIs(t, svc.DeleteBotpressReservation(ctx, 999), entity.ErrBotpressReservationNotFound)
	require.NoError(t, svc.DeleteBotpressReservation(ctx, id))
}
