package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"cgm-ai-eval/cmd/api/auth"
	"cgm-ai-eval/cmd/api/handlers"
	"cgm-ai-eval/cmd/api/metrics"
	"cgm-ai-eval/cmd/api/middleware"
	"cgm-ai-eval/cmd/api/services"
	_ "cgm-ai-eval/docs"
)

// Deps 는 라우터가 연결하는 서비스와 인프라다.
type Deps struct {
	Prompts    *services.PromptService
	Usage      *services.UsageService
	Evaluation *services.EvaluationService

	// Auth 가 nil 이면 권한 검사를 하지 않는다 (auth.enabled=false).
	Auth middleware.TokenParser

	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Ping     handlers.PingFunc

	AllowedOrigins []string
}

// NewEngine 은 CORS 가 적용되기 전의 gin 엔진을 만든다.
func NewEngine(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestTrace(), middleware.RequestMetrics(d.Metrics))

	r.GET("/health", handlers.HealthHandler(d.Ping))
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	read := middleware.RequireRole(d.Auth, auth.RoleReader)
	admin := middleware.RequireRole(d.Auth, auth.RoleAdmin)

	settings := r.Group("/ai_settings")
	{
		settings.GET("/prompts", read, handlers.GetPromptSettingsHandler(d.Prompts))
		settings.POST("/prompts", admin, handlers.UpdatePromptSettingsHandler(d.Prompts))
	}

	usage := r.Group("/ai_usage", read)
	{
		usage.POST("/record", handlers.RecordUsageHandler(d.Usage))
		usage.GET("/monthly_summary", handlers.MonthlyUsageSummaryHandler(d.Usage))
		usage.GET("/monthly/:month", handlers.MonthUsageHandler(d.Usage))
	}

	r.POST("/ai_eval", read, handlers.EvaluateHandler(d.Evaluation))

	return r
}

// New 는 CORS 핸들러로 감싼 최종 http.Handler 를 반환한다.
func New(d Deps) http.Handler {
	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id", "X-Span-Id"},
		MaxAge:         300,
	})
	return c.Handler(NewEngine(d))
}
