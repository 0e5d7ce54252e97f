package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cgm-ai-eval/apperrors"
	"cgm-ai-eval/cmd/api/dto"
	"cgm-ai-eval/cmd/api/services"
)

// GetPromptSettingsHandler godoc
// @Summary      프롬프트 설정 조회
// @Description  저장된 프롬프트 4종을 반환한다. 저장된 적이 없으면 모두 빈 문자열이다.
// @Tags         ai_settings
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  dto.PromptSettingsDTO
// @Failure      500  {object}  dto.ErrorResponseDTO
// @Router       /ai_settings/prompts [get]
func GetPromptSettingsHandler(svc *services.PromptService) gin.HandlerFunc {
	return func(c *gin.Context) {
		settings, err := svc.Get(c.Request.Context())
		if err != nil {
			writeError(c, err, "failed to load AI prompt settings")
			return
		}
		c.JSON(http.StatusOK, settings)
	}
}

// UpdatePromptSettingsHandler godoc
// @Summary      프롬프트 설정 저장
// @Description  네 필드 모두 필수다. 빈 문자열은 허용된다.
// @Tags         ai_settings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.UpdatePromptSettingsRequestDTO  true  "prompt settings"
// @Success      200   {object}  dto.MessageResponseDTO
// @Failure      400   {object}  dto.ErrorResponseDTO
// @Failure      403   {object}  dto.ErrorResponseDTO
// @Failure      500   {object}  dto.ErrorResponseDTO
// @Router       /ai_settings/prompts [post]
func UpdatePromptSettingsHandler(svc *services.PromptService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.UpdatePromptSettingsRequestDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, apperrors.Validation("prompt_settings", "invalid JSON body"), "invalid_request")
			return
		}
		if err := svc.Save(c.Request.Context(), req); err != nil {
			writeError(c, err, "failed to save AI prompt settings")
			return
		}
		c.JSON(http.StatusOK, dto.MessageResponseDTO{Message: "AI prompt settings saved"})
	}
}
