package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cgm-ai-eval/cmd/api/auth"
	"cgm-ai-eval/cmd/api/clients/llmclient"
	"cgm-ai-eval/cmd/api/metrics"
	"cgm-ai-eval/cmd/api/services"
	"cgm-ai-eval/models"
	"cgm-ai-eval/renderer"
	"cgm-ai-eval/repositories"
)

type memPrompts struct{ cfg models.PromptConfig }

func (m *memPrompts) Get(ctx context.Context) (models.PromptConfig, error) { return m.cfg, nil }
func (m *memPrompts) Set(ctx context.Context, u repositories.PromptConfigUpdate) error {
	return u.Validate()
}

type memUsage struct{}

func (memUsage) Record(ctx context.Context, tokensUsed int64) error { return nil }
func (memUsage) MonthlySummary(ctx context.Context) ([]models.AIUsageMonth, error) {
	return []models.AIUsageMonth{}, nil
}
func (memUsage) Month(ctx context.Context, month string) (models.AIUsageMonth, error) {
	return models.AIUsageMonth{Month: month}, nil
}

type echoSender struct{}

func (echoSender) Send(ctx context.Context, req llmclient.Request) (llmclient.Result, error) {
	return llmclient.Result{Content: req.UserPrompt}, nil
}

func newTestHandler(t *testing.T, parser *auth.JWTManager) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	prompts := &memPrompts{}
	d := Deps{
		Prompts: services.NewPromptService(prompts),
		Usage:   services.NewUsageService(memUsage{}, m),
		Evaluation: services.NewEvaluationService(prompts, echoSender{}, services.EvaluationConfig{
			Endpoint: "http://llm.local",
			APIKey:   "k",
			Model:    "m",
			Defaults: renderer.Defaults{UserTemplate: "Data: {{CGMDATA}}"},
		}, nil, m),
		Metrics:        m,
		Gatherer:       reg,
		Ping:           func(ctx context.Context) error { return nil },
		AllowedOrigins: []string{"https://dashboard.example.com"},
	}
	if parser != nil {
		d.Auth = parser
	}
	return New(d)
}

func request(h http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRoutesWithoutAuth(t *testing.T) {
	h := newTestHandler(t, nil)

	assert.Equal(t, http.StatusOK, request(h, http.MethodGet, "/health", "", "").Code)
	assert.Equal(t, http.StatusOK, request(h, http.MethodGet, "/ai_settings/prompts", "", "").Code)
	assert.Equal(t, http.StatusOK, request(h, http.MethodGet, "/ai_usage/monthly_summary", "", "").Code)

	w := request(h, http.MethodPost, "/ai_eval", `{"reportOptions":{"a":1}}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `Data: {\"reportOptions\":{\"a\":1},\"daysData\":null}`)
}

func TestRoutesEnforceRoles(t *testing.T) {
	t.Setenv("JWT_SECRET", "router-secret")
	manager, err := auth.NewJWTManagerFromEnv("")
	require.NoError(t, err)
	h := newTestHandler(t, manager)

	reader, _ := manager.Sign("dashboard", auth.RoleReader)
	admin, _ := manager.Sign("operator", auth.RoleAdmin)
	body := `{"system_prompt":"","user_prompt_template":"","system_interim_prompt":"","user_interim_prompt_template":""}`

	assert.Equal(t, http.StatusUnauthorized, request(h, http.MethodGet, "/ai_settings/prompts", "", "").Code)
	assert.Equal(t, http.StatusOK, request(h, http.MethodGet, "/ai_settings/prompts", "", reader).Code)
	assert.Equal(t, http.StatusForbidden, request(h, http.MethodPost, "/ai_settings/prompts", body, reader).Code)
	assert.Equal(t, http.StatusOK, request(h, http.MethodPost, "/ai_settings/prompts", body, admin).Code)
	assert.Equal(t, http.StatusOK, request(h, http.MethodPost, "/ai_usage/record", `{"tokens_used":3}`, reader).Code)
	assert.Equal(t, http.StatusOK, request(h, http.MethodGet, "/health", "", "").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestHandler(t, nil)

	request(h, http.MethodPost, "/ai_usage/record", `{"tokens_used":7}`, "")
	w := request(h, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ai_eval_usage_tokens_recorded_total 7")
	assert.Contains(t, w.Body.String(), `ai_eval_http_requests_total{method="POST",route="/ai_usage/record",status="200"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	h := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/ai_eval", nil)
	req.Header.Set("Origin", "https://dashboard.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, "https://dashboard.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}
