package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/gericht/reservation-service/pkg/queue"
)

// Scheduler периодически публикует задачу синхронизации имен пользователей.
type Scheduler struct {
	queue    queue.Queue
	interval time.Duration
}

func NewScheduler(q queue.Queue, interval time.Duration) *Scheduler {
	return &Scheduler{
		queue:    q,
		interval: interval,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			task := &queue.Task{Type: queue.TaskTypeSyncUsers}
			if err := s.queue.Publish(ctx, task); err != nil {
				fmt.Printf("Error publishing user sync task: %v\n", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
