package events

import (
	"time"
)

type EventType string

const (
	EvaluationCompleted EventType = "ai.evaluation_completed"
)

// BaseEvent 모든 이벤트의 공통 메타데이터
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
}

// EvaluationCompletedEvent 는 /ai_eval 호출 1건의 결과 요약이다.
// 프롬프트 본문과 CGM 데이터는 담지 않는다.
type EvaluationCompletedEvent struct {
	BaseEvent
	RequestID        string    `json:"request_id"`
	Provider         string    `json:"provider"`
	ModelName        string    `json:"model_name"`
	Mode             string    `json:"mode"`
	PromptTokens     int64     `json:"prompt_tokens"`
	CompletionTokens int64     `json:"completion_tokens"`
	TotalTokens      int64     `json:"total_tokens"`
	DurationMs       int64     `json:"duration_ms"`
	Success          bool      `json:"success"`
	ErrorKind        string    `json:"error_kind,omitempty"`
	ErrorMessage     string    `json:"error_message,omitempty"`
	ResponseExcerpt  string    `json:"response_excerpt,omitempty"`
	RequestedAt      time.Time `json:"requested_at"`
	CompletedAt      time.Time `json:"completed_at"`
}
