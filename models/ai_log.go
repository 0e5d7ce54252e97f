package models

import "time"

// AILog stores one LLM evaluation for auditing (system monitoring purpose).
// Collection: ai_logs, _id = evaluation event id
type AILog struct {
	EventID          string    `bson:"_id" json:"event_id"`
	RequestID        string    `bson:"request_id,omitempty" json:"request_id,omitempty"`
	Provider         string    `bson:"provider" json:"provider"`
	ModelName        string    `bson:"model_name" json:"model_name"`
	Mode             string    `bson:"mode" json:"mode"`
	PromptTokens     int64     `bson:"prompt_tokens" json:"prompt_tokens"`
	CompletionTokens int64     `bson:"completion_tokens" json:"completion_tokens"`
	TotalTokens      int64     `bson:"total_tokens" json:"total_tokens"`
	DurationMs       int64     `bson:"duration_ms" json:"duration_ms"`
	Success          bool      `bson:"success" json:"success"`
	ErrorKind        string    `bson:"error_kind,omitempty" json:"error_kind,omitempty"`
	ErrorMessage     *string   `bson:"error_message,omitempty" json:"error_message,omitempty"`
	ResponseExcerpt  string    `bson:"response_excerpt" json:"response_excerpt"`
	RequestedAt      time.Time `bson:"requested_at" json:"requested_at"`
	CompletedAt      time.Time `bson:"completed_at" json:"completed_at"`
}
