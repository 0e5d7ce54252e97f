// Package docs registers the Swagger document served on /swagger/*any.
// Regenerate with: swag init -g cmd/api/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/ai_eval": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["ai_eval"],
                "summary": "CGM 데이터 AI 평가",
                "parameters": [
                    {"description": "evaluation request", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.EvaluateRequestDTO"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.EvaluateResponseDTO"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponseDTO"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponseDTO"}}
                }
            }
        },
        "/ai_settings/prompts": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["ai_settings"],
                "summary": "프롬프트 설정 조회",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.PromptSettingsDTO"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponseDTO"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["ai_settings"],
                "summary": "프롬프트 설정 저장",
                "parameters": [
                    {"description": "prompt settings", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.PromptSettingsDTO"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.MessageResponseDTO"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponseDTO"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/dto.ErrorResponseDTO"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponseDTO"}}
                }
            }
        },
        "/ai_usage/record": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["ai_usage"],
                "summary": "토큰 사용량 기록",
                "parameters": [
                    {"description": "usage", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.RecordUsageRequestDTO"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.MessageResponseDTO"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponseDTO"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponseDTO"}}
                }
            }
        },
        "/ai_usage/monthly_summary": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["ai_usage"],
                "summary": "월별 사용량 요약",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.MonthlyUsageDTO"}}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponseDTO"}}
                }
            }
        },
        "/ai_usage/monthly/{month}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["ai_usage"],
                "summary": "특정 월 사용량",
                "parameters": [
                    {"type": "string", "description": "YYYY-MM", "name": "month", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.MonthlyUsageDTO"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponseDTO"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "헬스 체크",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.HealthResponseDTO"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/dto.HealthResponseDTO"}}
                }
            }
        }
    },
    "definitions": {
        "dto.DayUsageDTO": {
            "type": "object",
            "properties": {
                "date": {"type": "string", "example": "2024-03-05"},
                "total_tokens_day": {"type": "integer", "example": 4200},
                "api_calls_day": {"type": "integer", "example": 3}
            }
        },
        "dto.DebugPromptsDTO": {
            "type": "object",
            "properties": {
                "system_prompt": {"type": "string"},
                "user_prompt": {"type": "string"},
                "model": {"type": "string"}
            }
        },
        "dto.ErrorResponseDTO": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "AI evaluation failed"},
                "details": {}
            }
        },
        "dto.EvaluateRequestDTO": {
            "type": "object",
            "properties": {
                "reportOptions": {"type": "object"},
                "daysData": {"type": "object"},
                "mode": {"type": "string", "enum": ["primary", "interim"]},
                "debug": {"type": "boolean"}
            }
        },
        "dto.EvaluateResponseDTO": {
            "type": "object",
            "properties": {
                "html_content": {"type": "string"},
                "debug_prompts": {"$ref": "#/definitions/dto.DebugPromptsDTO"},
                "usage": {"$ref": "#/definitions/dto.TokenUsageDTO"}
            }
        },
        "dto.HealthResponseDTO": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "ok"},
                "mongo": {"type": "string", "example": "ok"}
            }
        },
        "dto.MessageResponseDTO": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "AI prompt settings saved"}
            }
        },
        "dto.MonthlyUsageDTO": {
            "type": "object",
            "properties": {
                "_id": {"type": "string", "example": "2024-03"},
                "total_tokens_month": {"type": "integer", "example": 120000},
                "api_calls_month": {"type": "integer", "example": 85},
                "daily_usage": {"type": "array", "items": {"$ref": "#/definitions/dto.DayUsageDTO"}},
                "last_updated": {"type": "string"}
            }
        },
        "dto.PromptSettingsDTO": {
            "type": "object",
            "properties": {
                "system_prompt": {"type": "string"},
                "user_prompt_template": {"type": "string"},
                "system_interim_prompt": {"type": "string"},
                "user_interim_prompt_template": {"type": "string"}
            }
        },
        "dto.RecordUsageRequestDTO": {
            "type": "object",
            "properties": {
                "tokens_used": {"type": "number", "example": 1532}
            }
        },
        "dto.TokenUsageDTO": {
            "type": "object",
            "properties": {
                "prompt_tokens": {"type": "integer"},
                "completion_tokens": {"type": "integer"},
                "total_tokens": {"type": "integer"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "CGM AI Evaluation API",
	Description:      "Prompt settings, LLM evaluation of CGM reports and token usage ledger",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
