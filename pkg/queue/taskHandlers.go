package queue

import (
	"context"
	"fmt"
	"log"
)

// UserSyncer переносит имена пользователей в их бронирования.
type UserSyncer interface {
	SyncUserNames(ctx context.Context) (int, error)
}

// BotpressSyncer синхронизирует бронирования с внешней таблицей Botpress.
type BotpressSyncer interface {
	SyncToBotpress(ctx context.Context) (int, error)
	SyncFromBotpress(ctx context.Context) (int, error)
}

// TaskHandler обрабатывает задачи из очереди
type TaskHandler struct {
	userSync     UserSyncer
	botpressSync BotpressSyncer
}

// NewTaskHandler создает новый обработчик задач
func NewTaskHandler(userSync UserSyncer, botpressSync BotpressSyncer) *TaskHandler {
	return &TaskHandler{
		userSync:     userSync,
		botpressSync: botpressSync,
	}
}

// HandleTask обрабатывает задачу
func (h *TaskHandler) HandleTask(task *Task) error {
	log.Printf("Обработка задачи %s типа %s (попытка %d/%d)",
		task.ID, task.Type, task.Attempts, task.MaxRetries)

	switch task.Type {
	case TaskTypeSyncUsers:
		return h.handleSyncUsers(task)
	case TaskTypeSyncToBotpress:
		return h.handleSyncToBotpress(task)
	case TaskTypeSyncFromBotpress:
		return h.handleSyncFromBotpress(task)
	default:
		return fmt.Errorf("неизвестный тип задачи: %s", task.Type)
	}
}

// handleSyncUsers переносит имена пользователей в бронирования
func (h *TaskHandler) handleSyncUsers(task *Task) error {
	ctx := context.Background()

	if h.userSync == nil {
		return fmt.Errorf("user sync service is not configured")
	}

	updated, err := h.userSync.SyncUserNames(ctx)
	if err != nil {
		return fmt.Errorf("не удалось синхронизировать имена пользователей: %v", err)
	}

	log.Printf("Синхронизация имен завершена, обновлено %d бронирований", updated)
	return nil
}

// handleSyncToBotpress пушит локальные бронирования в Botpress
func (h *TaskHandler) handleSyncToBotpress(task *Task) error {
	ctx := context.Background()

	if h.botpressSync == nil {
		return fmt.Errorf("botpress sync service is not configured")
	}

	synced, err := h.botpressSync.SyncToBotpress(ctx)
	if err != nil {
		return fmt.Errorf("не удалось отправить бронирования в Botpress: %v", err)
	}

	log.Printf("В Botpress отправлено %d бронирований", synced)
	return nil
}

// handleSyncFromBotpress тянет бронирования из Botpress
func (h *TaskHandler) handleSyncFromBotpress(task *Task) error {
	ctx := context.Background()

	if h.botpressSync == nil {
		return fmt.Errorf("botpress sync service is not configured")
	}

	synced, err := h.botpressSync.SyncFromBotpress(ctx)
	if err != nil {
		return fmt.Errorf("не удалось получить бронирования из Botpress: %v", err)
	}

	log.Printf("Из Botpress получено %d бронирований", synced)
	return nil
}
