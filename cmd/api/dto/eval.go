package dto

import "encoding/json"

// EvaluateRequestDTO 는 POST /ai_eval 요청 바디다. reportOptions/daysData 는 해석하지 않고
// 그대로 {{CGMDATA}} 자리에 직렬화된다.
type EvaluateRequestDTO struct {
	ReportOptions json.RawMessage `json:"reportOptions" swaggertype:"object"`
	DaysData      json.RawMessage `json:"daysData" swaggertype:"object"`
	Mode          string          `json:"mode,omitempty" enums:"primary,interim"`
	Debug         bool            `json:"debug,omitempty"`
}

type DebugPromptsDTO struct {
	SystemPrompt string `json:"system_prompt"`
	UserPrompt   string `json:"user_prompt"`
	Model        string `json:"model"`
}

type TokenUsageDTO struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

type EvaluateResponseDTO struct {
	HTMLContent  string           `json:"html_content"`
	DebugPrompts *DebugPromptsDTO `json:"debug_prompts,omitempty"`
	Usage        *TokenUsageDTO   `json:"usage,omitempty"`
}

// UpstreamErrorDetailsDTO 는 LLM 이 non-2xx 를 돌려줬을 때 details 로 내려간다.
type UpstreamErrorDetailsDTO struct {
	UpstreamStatus int    `json:"upstream_status"`
	Body           string `json:"body,omitempty"`
}
