package handlers

import (
	"context"

	"cgm-ai-eval/events"
	"cgm-ai-eval/internal/eventbus"
	"cgm-ai-eval/internal/logger"
	"cgm-ai-eval/models"
)

// AILogStore 는 감사 로그를 한 번만 저장한다.
type AILogStore interface {
	InsertOnce(ctx context.Context, log models.AILog) (bool, error)
}

// EventHandlers 는 평가 완료 이벤트를 ai_logs 에 적재한다.
type EventHandlers struct {
	logs AILogStore
}

func NewEventHandlers(logs AILogStore) *EventHandlers {
	return &EventHandlers{logs: logs}
}

// HandleEvaluationCompleted 의 에러는 eventbus 가 retry 토픽으로 보낸다.
func (h *EventHandlers) HandleEvaluationCompleted(ctx context.Context, ev events.EvaluationCompletedEvent, meta eventbus.Event) error {
	if ev.Type != "" && ev.Type != events.EvaluationCompleted {
		logger.DebugWithFields("skip unrelated event", logger.Fields{"event_id": meta.ID, "event_type": ev.Type})
		return nil
	}

	eventID := ev.ID
	if eventID == "" {
		eventID = meta.ID
	}
	inserted, err := h.logs.InsertOnce(ctx, toAILog(eventID, ev))
	if err != nil {
		logger.ErrorWithFields("failed to store ai log", logger.Fields{
			"event_id": eventID,
			"retry":    meta.Retry,
			"error":    err.Error(),
		})
		return err
	}
	logger.InfoWithFields("ai log stored", logger.Fields{
		"event_id":   eventID,
		"request_id": ev.RequestID,
		"success":    ev.Success,
		"duplicate":  !inserted,
	})
	return nil
}

func toAILog(eventID string, ev events.EvaluationCompletedEvent) models.AILog {
	log := models.AILog{
		EventID:          eventID,
		RequestID:        ev.RequestID,
		Provider:         ev.Provider,
		ModelName:        ev.ModelName,
		Mode:             ev.Mode,
		PromptTokens:     ev.PromptTokens,
		CompletionTokens: ev.CompletionTokens,
		TotalTokens:      ev.TotalTokens,
		DurationMs:       ev.DurationMs,
		Success:          ev.Success,
		ErrorKind:        ev.ErrorKind,
		ResponseExcerpt:  ev.ResponseExcerpt,
		RequestedAt:      ev.RequestedAt,
		CompletedAt:      ev.CompletedAt,
	}
	if ev.ErrorMessage != "" {
		msg := ev.ErrorMessage
		log.ErrorMessage = &msg
	}
	return log
}
