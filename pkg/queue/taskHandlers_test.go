package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeUserSyncer struct {
	calls int
	err   error
}

func (f *fakeUserSyncer) SyncUserNames(ctx context.Context) (int, error) {
	f.calls++
	return 2, f.err
}

type fakeBotpressSyncer struct {
	toCalls   int
	fromCalls int
	err       error
}

func (f *fakeBotpressSyncer) SyncToBotpress(ctx context.Context) (int, error) {
	f.toCalls++
	return 1, f.err
}

func (f *fakeBotpressSyncer) SyncFromBotpress(ctx context.Context) (int, error) {
	f.fromCalls++
	return 1, f.err
}

// TestHandleTask — каждый тип задачи уходит своему сервису
func TestHandleTask(t *testing.T) {
	userSync := &fakeUserSyncer{}
	botpressSync := &fakeBotpressSyncer{}
	handler := NewTaskHandler(userSync, botpressSync)

	assert.NoError(t, handler.HandleTask(&Task{ID: "1", Type: TaskTypeSyncUsers}))
	assert.NoError(t, handler.HandleTask(&Task{ID: "2", Type: TaskTypeSyncToBotpress}))
	assert.NoError(t, handler.HandleTask(&Task{ID: "3", Type: TaskTypeSyncFromBotpress}))

	assert.Equal(t, 1, userSync.calls)
	assert.Equal(t, 1, botpressSync.toCalls)
	assert.Equal(t, 1, botpressSync.fromCalls)

	assert.Error(t, handler.HandleTask(&Task{ID: "4", Type: "unknown_type"}))
}

func TestHandleTaskServiceFailure(t *testing.T) {
	handler := NewTaskHandler(&fakeUserSyncer{err: errors.New("redis down")}, &fakeBotpressSyncer{})

	err := handler.HandleTask(&Task{ID: "1", Type: TaskTypeSyncUsers})
	assert.Error(t, err)
}

func TestHandleTaskNilServices(t *testing.T) {
	handler := NewTaskHandler(nil, nil)

	assert.Error(t, handler.HandleTask(&Task{ID: "1", Type: TaskTypeSyncUsers}))
	assert.Error(t, handler.HandleTask(&Task{ID: "2", Type: TaskTypeSyncToBotpress}))
	assert.Error(t, handler.HandleTask(&Task{ID: "3", Type: TaskTypeSyncFromBotpress}))
}
