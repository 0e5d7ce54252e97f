package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cgm-ai-eval/events"
	"cgm-ai-eval/internal/eventbus"
	"cgm-ai-eval/models"
)

type fakeLogStore struct {
	logs map[string]models.AILog
	err  error
}

func (f *fakeLogStore) InsertOnce(ctx context.Context, log models.AILog) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.logs == nil {
		f.logs = map[string]models.AILog{}
	}
	if _, ok := f.logs[log.EventID]; ok {
		return false, nil
	}
	f.logs[log.EventID] = log
	return true, nil
}

func completed(id string) events.EvaluationCompletedEvent {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return events.EvaluationCompletedEvent{
		BaseEvent:   events.BaseEvent{ID: id, Type: events.EvaluationCompleted, Timestamp: at},
		RequestID:   "req-1",
		ModelName:   "gpt-4o",
		Mode:        "primary",
		TotalTokens: 42,
		Success:     true,
		RequestedAt: at.Add(-time.Second),
		CompletedAt: at,
	}
}

func TestHandleEvaluationCompletedStoresOnce(t *testing.T) {
	store := &fakeLogStore{}
	h := NewEventHandlers(store)

	ev := completed("evt-1")
	require.NoError(t, h.HandleEvaluationCompleted(context.Background(), ev, eventbus.Event{ID: "evt-1"}))
	require.NoError(t, h.HandleEvaluationCompleted(context.Background(), ev, eventbus.Event{ID: "evt-1", Retry: 1}))

	require.Len(t, store.logs, 1)
	log := store.logs["evt-1"]
	assert.Equal(t, int64(42), log.TotalTokens)
	assert.Nil(t, log.ErrorMessage)
}

func TestHandleEvaluationCompletedFailureEvent(t *testing.T) {
	store := &fakeLogStore{}
	h := NewEventHandlers(store)

	ev := completed("")
	ev.Success = false
	ev.ErrorKind = "upstream"
	ev.ErrorMessage = "llm.send: upstream returned 503"
	require.NoError(t, h.HandleEvaluationCompleted(context.Background(), ev, eventbus.Event{ID: "meta-id"}))

	log, ok := store.logs["meta-id"]
	require.True(t, ok)
	require.NotNil(t, log.ErrorMessage)
	assert.Equal(t, ev.ErrorMessage, *log.ErrorMessage)
}

func TestHandleEvaluationCompletedSkipsOtherTypes(t *testing.T) {
	store := &fakeLogStore{}
	h := NewEventHandlers(store)

	ev := completed("evt-2")
	ev.Type = "ai.something_else"
	require.NoError(t, h.HandleEvaluationCompleted(context.Background(), ev, eventbus.Event{ID: "evt-2"}))
	assert.Empty(t, store.logs)
}

func TestHandleEvaluationCompletedPropagatesStoreError(t *testing.T) {
	h := NewEventHandlers(&fakeLogStore{err: errors.New("mongo down")})

	err := h.HandleEvaluationCompleted(context.Background(), completed("evt-3"), eventbus.Event{ID: "evt-3"})
	assert.Error(t, err)
}
