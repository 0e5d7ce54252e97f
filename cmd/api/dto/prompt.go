package dto

// PromptSettingsDTO 는 GET /ai_settings/prompts 응답이다. 설정이 없으면 모두 빈 문자열이다.
type PromptSettingsDTO struct {
	SystemPrompt              string `json:"system_prompt"`
	UserPromptTemplate        string `json:"user_prompt_template"`
	SystemInterimPrompt       string `json:"system_interim_prompt"`
	UserInterimPromptTemplate string `json:"user_interim_prompt_template"`
}

// UpdatePromptSettingsRequestDTO 는 POST /ai_settings/prompts 요청 바디다.
// 네 필드 모두 필수지만 빈 문자열은 허용하므로 누락 여부를 포인터로 구분한다.
type UpdatePromptSettingsRequestDTO struct {
	SystemPrompt              *string `json:"system_prompt"`
	UserPromptTemplate        *string `json:"user_prompt_template"`
	SystemInterimPrompt       *string `json:"system_interim_prompt"`
	UserInterimPromptTemplate *string `json:"user_interim_prompt_template"`
}
