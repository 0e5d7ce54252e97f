package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"cgm-ai-eval/apperrors"
	"cgm-ai-eval/cmd/api/dto"
	"cgm-ai-eval/cmd/api/services"
	"cgm-ai-eval/renderer"
)

// evaluationPayload 는 {{CGMDATA}} 자리에 들어가는 JSON 이다.
type evaluationPayload struct {
	ReportOptions json.RawMessage `json:"reportOptions"`
	DaysData      json.RawMessage `json:"daysData"`
}

// EvaluateHandler godoc
// @Summary      CGM 데이터 AI 평가
// @Description  저장된 프롬프트에 reportOptions/daysData 를 넣어 LLM 평가를 요청한다.
// @Description  LLM 이 non-2xx 를 응답하면 500 과 함께 upstream 상태 코드를 details 로 내려준다.
// @Tags         ai_eval
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.EvaluateRequestDTO  true  "evaluation request"
// @Success      200   {object}  dto.EvaluateResponseDTO
// @Failure      400   {object}  dto.ErrorResponseDTO
// @Failure      500   {object}  dto.ErrorResponseDTO
// @Router       /ai_eval [post]
func EvaluateHandler(svc *services.EvaluationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.EvaluateRequestDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, apperrors.Validation("ai_eval", "invalid JSON body"), "invalid_request")
			return
		}
		mode, err := renderer.ParseMode(req.Mode)
		if err != nil {
			writeError(c, err, "invalid_request")
			return
		}

		out, err := svc.Evaluate(c.Request.Context(), services.EvaluateInput{
			Payload: evaluationPayload{ReportOptions: req.ReportOptions, DaysData: req.DaysData},
			Mode:    mode,
			Debug:   req.Debug,
		})
		if err != nil {
			writeError(c, err, "AI evaluation failed")
			return
		}

		resp := dto.EvaluateResponseDTO{HTMLContent: out.Content}
		if out.Debug != nil {
			resp.DebugPrompts = &dto.DebugPromptsDTO{
				SystemPrompt: out.Debug.SystemPrompt,
				UserPrompt:   out.Debug.UserPrompt,
				Model:        out.Debug.Model,
			}
		}
		if out.Usage != nil {
			resp.Usage = &dto.TokenUsageDTO{
				PromptTokens:     out.Usage.PromptTokens,
				CompletionTokens: out.Usage.CompletionTokens,
				TotalTokens:      out.Usage.TotalTokens,
			}
		}
		c.JSON(http.StatusOK, resp)
	}
}
