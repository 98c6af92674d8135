package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/gericht/reservation-service/internal/service"

	"github.com/sirupsen/logrus"
)

// UserSyncWorker периодически переносит имена пользователей в их бронирования.
// Используется, когда очередь задач не сконфигурирована.
type UserSyncWorker struct {
	userService service.UserService
	interval    time.Duration
	running     atomic.Bool
}

func NewUserSyncWorker(userService service.UserService, interval time.Duration) *UserSyncWorker {
	return &UserSyncWorker{
		userService: userService,
		interval:    interval,
	}
}

func (w *UserSyncWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logrus.Info("User sync worker started")

	for {
		select {
		case <-ctx.Done():
			logrus.Info("User sync worker stopped")
			return
		case <-ticker.C:
			w.syncUserNames(ctx)
		}
	}
}

// syncUserNames выполняет один проход синхронизации имен
func (w *UserSyncWorker) syncUserNames(ctx context.Context) {
	// Пропускаем тик, если предыдущий проход еще не завершился
	if !w.running.CompareAndSwap(false, true) {
		logrus.Warn("Previous user sync still in progress, skipping tick")
		return
	}
	defer w.running.Store(false)

	logrus.Info("Starting user name sync")

	updated, err := w.userService.SyncUserNames(ctx)
	if err != nil {
		logrus.Errorf("Failed to sync user names: %v", err)
		return
	}

	if updated == 0 {
		logrus.Info("No reservations needed a name update")
		return
	}

	logrus.Infof("User name sync completed: %d reservations updated", updated)
}

// Stop останавливает воркер (дополнительный метод для graceful shutdown)
func (w *UserSyncWorker) Stop() {
	logrus.Info("User sync worker stopping...")
}

// GetStats возвращает статистику работы воркера (дополнительный метод)
func (w *UserSyncWorker) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"worker_type": "user_sync",
		"interval":    w.interval.String(),
		"status":      "running",
	}
}
