package dto

// ErrorResponseDTO 는 공통 에러 응답 형식이다. Details 에는 API 키가 포함되지 않는다.
type ErrorResponseDTO struct {
	Error   string `json:"error" example:"AI evaluation failed"`
	Details any    `json:"details,omitempty"`
}

// MessageResponseDTO 는 단순 메시지 응답 형식이다.
type MessageResponseDTO struct {
	Message string `json:"message" example:"AI prompt settings saved"`
}
