package dto

import (
	"encoding/json"
	"time"
)

// RecordUsageRequestDTO 는 POST /ai_usage/record 요청 바디다.
// tokens_used 는 숫자여야 하므로 원본 JSON 을 받아 핸들러에서 검증한다.
type RecordUsageRequestDTO struct {
	TokensUsed json.RawMessage `json:"tokens_used" swaggertype:"number" example:"1532"`
}

type DayUsageDTO struct {
	Date           string `json:"date" example:"2024-03-05"`
	TotalTokensDay int64  `json:"total_tokens_day" example:"4200"`
	APICallsDay    int64  `json:"api_calls_day" example:"3"`
}

// MonthlyUsageDTO 는 월 단위 사용량이다. daily_usage 는 날짜 오름차순이다.
type MonthlyUsageDTO struct {
	Month            string        `json:"_id" example:"2024-03"`
	TotalTokensMonth int64         `json:"total_tokens_month" example:"120000"`
	APICallsMonth    int64         `json:"api_calls_month" example:"85"`
	DailyUsage       []DayUsageDTO `json:"daily_usage"`
	LastUpdated      time.Time     `json:"last_updated"`
}
