package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cgm-ai-eval/apperrors"
	"cgm-ai-eval/cmd/api/dto"
	"cgm-ai-eval/cmd/api/trace"
	"cgm-ai-eval/internal/logger"
)

// writeError 는 apperrors.Kind 에 맞는 상태 코드와 ErrorResponseDTO 를 응답한다.
// validation 은 사유를 그대로, upstream 은 LLM 상태 코드를 details 로 내려준다.
func writeError(c *gin.Context, err error, message string) {
	status := apperrors.HTTPStatus(err)
	resp := dto.ErrorResponseDTO{Error: message}

	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		switch appErr.Kind {
		case apperrors.KindValidation:
			resp.Error = appErr.Message
		case apperrors.KindUpstream:
			resp.Details = dto.UpstreamErrorDetailsDTO{UpstreamStatus: appErr.StatusCode, Body: appErr.Body}
		case apperrors.KindPersistence, apperrors.KindPersistenceUnavailable:
			resp.Details = gin.H{"kind": appErr.Kind, "attempts": appErr.Attempts}
		default:
			resp.Details = appErr.Error()
		}
	}

	if status >= http.StatusInternalServerError {
		logger.ErrorWithFields(message, logger.Fields{
			"request_id": trace.RequestIDFromContext(c.Request.Context()),
			"path":       c.FullPath(),
			"status":     status,
			"error":      err.Error(),
		})
	}
	c.JSON(status, resp)
}
