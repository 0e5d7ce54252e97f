package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"cgm-ai-eval/cmd/api/auth"
	"cgm-ai-eval/cmd/api/clients/llmclient"
	"cgm-ai-eval/cmd/api/metrics"
	"cgm-ai-eval/cmd/api/middleware"
	"cgm-ai-eval/cmd/api/router"
	"cgm-ai-eval/cmd/api/services"
	"cgm-ai-eval/config"
	"cgm-ai-eval/db"
	"cgm-ai-eval/internal/eventbus"
	"cgm-ai-eval/internal/logger"
	"cgm-ai-eval/renderer"
	"cgm-ai-eval/repositories"
)

// @title           CGM AI Evaluation API
// @version         1.0
// @description     Prompt settings, LLM evaluation of CGM reports and token usage ledger
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	config.InitApp()
	cfg := config.GetConfig()
	logger.Init(cfg.Logging.Level, cfg.ServiceName)
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := db.Init(ctx); err != nil {
		logger.Log.Fatalf("mongo init failed: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = db.Disconnect(shutdownCtx)
	}()

	m := metrics.New(prometheus.DefaultRegisterer)

	var publisher eventbus.Publisher
	if cfg.EventBus.Enabled {
		bus, err := eventbus.NewKafkaEventBus(cfg.EventBus.Brokers)
		if err != nil {
			logger.Log.Fatalf("kafka init failed: %v", err)
		}
		defer bus.Close()
		if err := eventbus.EnsureTopics(ctx, cfg.EventBus.Brokers, eventbus.TopicAIEvents, 1); err != nil {
			logger.WarnWithFields("ensure topics failed", logger.Fields{"error": err.Error()})
		}
		publisher = bus
	}

	var parser middleware.TokenParser
	if cfg.Auth.Enabled {
		jwtManager, err := auth.NewJWTManagerFromEnv(cfg.Auth.Issuer)
		if err != nil {
			logger.Log.Fatalf("auth init failed: %v", err)
		}
		parser = jwtManager
	} else {
		logger.Log.Warn("auth disabled: every route is open")
	}

	sender, err := llmclient.NewSender(cfg.LLM.Provider, cfg.LLM.Timeout)
	if err != nil {
		logger.Log.Fatalf("llm client init failed: %v", err)
	}

	database := db.Database()
	promptRepo := repositories.NewPromptConfigRepository(database)
	usageRepo := repositories.NewAIUsageRepository(database)

	handler := router.New(router.Deps{
		Prompts: services.NewPromptService(promptRepo),
		Usage:   services.NewUsageService(usageRepo, m),
		Evaluation: services.NewEvaluationService(promptRepo, sender, services.EvaluationConfig{
			Provider: cfg.LLM.Provider,
			Endpoint: cfg.LLM.Endpoint,
			APIKey:   cfg.LLM.APIKey,
			Model:    cfg.LLM.Model,
			Defaults: renderer.Defaults{
				SystemPrompt:        cfg.Prompts.DefaultSystemPrompt,
				UserTemplate:        cfg.Prompts.DefaultUserTemplate,
				InterimSystemPrompt: cfg.Prompts.DefaultInterimSystemPrompt,
				InterimUserTemplate: cfg.Prompts.DefaultInterimUserTemplate,
			},
		}, publisher, m),
		Auth:           parser,
		Metrics:        m,
		Gatherer:       prometheus.DefaultGatherer,
		Ping:           db.Ping,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// LLM 응답 대기 시간보다 길어야 한다.
		WriteTimeout: cfg.LLM.Timeout + 30*time.Second,
	}

	go func() {
		logger.InfoWithFields("api server listening", logger.Fields{
			"addr":         cfg.Server.Addr,
			"llm_provider": cfg.LLM.Provider,
			"llm_model":    cfg.LLM.Model,
			"event_bus":    cfg.EventBus.Enabled,
			"auth":         cfg.Auth.Enabled,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("api server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Log.Info("shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithFields("api server shutdown failed", logger.Fields{"error": err.Error()})
	}
}
