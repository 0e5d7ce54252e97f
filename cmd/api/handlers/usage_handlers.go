package handlers

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"cgm-ai-eval/apperrors"
	"cgm-ai-eval/cmd/api/dto"
	"cgm-ai-eval/cmd/api/services"
)

// RecordUsageHandler godoc
// @Summary      토큰 사용량 기록
// @Description  평가 1회의 토큰 사용량을 월/일 합계에 더한다. tokens_used 는 0 이상의 정수다.
// @Tags         ai_usage
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.RecordUsageRequestDTO  true  "usage"
// @Success      200   {object}  dto.MessageResponseDTO
// @Failure      400   {object}  dto.ErrorResponseDTO
// @Failure      500   {object}  dto.ErrorResponseDTO
// @Router       /ai_usage/record [post]
func RecordUsageHandler(svc *services.UsageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.RecordUsageRequestDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, apperrors.Validation("usage.record", "invalid JSON body"), "invalid_request")
			return
		}
		tokens, err := parseTokensUsed(req.TokensUsed)
		if err != nil {
			writeError(c, err, "invalid_request")
			return
		}
		if err := svc.Record(c.Request.Context(), tokens); err != nil {
			writeError(c, err, "failed to record AI usage")
			return
		}
		c.JSON(http.StatusOK, dto.MessageResponseDTO{Message: "AI usage recorded"})
	}
}

// maxExactFloatInt 는 float64 로 정확히 표현되는 가장 큰 정수(2^53)다.
const maxExactFloatInt = 1 << 53

// parseTokensUsed 는 JSON 숫자만 받는다. 1532.0, 1e3 처럼 소수부가 0 인 값은 정수로 본다.
// 문자열, 소수, 음수는 거부한다.
func parseTokensUsed(raw json.RawMessage) (int64, error) {
	const op = "usage.record"
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, apperrors.Validation(op, "tokens_used is required")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, apperrors.Validation(op, "tokens_used must be a number")
	}
	num, ok := v.(json.Number)
	if !ok {
		return 0, apperrors.Validation(op, "tokens_used must be a number")
	}
	n, err := num.Int64()
	if err != nil {
		f, ferr := num.Float64()
		if ferr != nil || f != math.Trunc(f) || math.Abs(f) > maxExactFloatInt {
			return 0, apperrors.Validation(op, "tokens_used must be an integer")
		}
		n = int64(f)
	}
	if n < 0 {
		return 0, apperrors.Validation(op, "tokens_used must be non-negative")
	}
	return n, nil
}

// MonthlyUsageSummaryHandler godoc
// @Summary      월별 사용량 요약
// @Description  모든 월을 최신순으로 반환한다. daily_usage 는 날짜 오름차순이다.
// @Tags         ai_usage
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   dto.MonthlyUsageDTO
// @Failure      500  {object}  dto.ErrorResponseDTO
// @Router       /ai_usage/monthly_summary [get]
func MonthlyUsageSummaryHandler(svc *services.UsageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		months, err := svc.MonthlySummary(c.Request.Context())
		if err != nil {
			writeError(c, err, "failed to load AI usage summary")
			return
		}
		c.JSON(http.StatusOK, months)
	}
}

// MonthUsageHandler godoc
// @Summary      특정 월 사용량
// @Tags         ai_usage
// @Security     BearerAuth
// @Param        month  path  string  true  "YYYY-MM"
// @Produce      json
// @Success      200  {object}  dto.MonthlyUsageDTO
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Failure      500  {object}  dto.ErrorResponseDTO
// @Router       /ai_usage/monthly/{month} [get]
func MonthUsageHandler(svc *services.UsageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		month, err := svc.Month(c.Request.Context(), c.Param("month"))
		if err != nil {
			writeError(c, err, "failed to load AI usage")
			return
		}
		c.JSON(http.StatusOK, month)
	}
}
