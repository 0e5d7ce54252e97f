package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cgm-ai-eval/cmd/auditworker/handlers"
	"cgm-ai-eval/config"
	"cgm-ai-eval/db"
	"cgm-ai-eval/events"
	"cgm-ai-eval/internal/eventbus"
	"cgm-ai-eval/internal/logger"
	"cgm-ai-eval/repositories"
)

func main() {
	config.InitApp()
	cfg := config.GetConfig()
	logger.Init(cfg.Logging.Level, cfg.ServiceName+"-audit-worker")

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

	brokers := cfg.EventBus.Brokers
	if err := eventbus.EnsureTopics(ctx, brokers, eventbus.TopicAIEvents, 3); err != nil {
		logger.ErrorWithFields("failed to ensure eventbus topics", logger.Fields{
			"topic": eventbus.TopicAIEvents.Base(),
			"error": err.Error(),
		})
	}

	bus, err := eventbus.NewKafkaEventBus(brokers)
	if err != nil {
		logger.Log.Fatalf("failed to create event bus: %v", err)
	}
	defer bus.Close()

	h := handlers.NewEventHandlers(repositories.NewAILogRepository(db.Database()))
	groupID := cfg.EventBus.GroupID + "-audit-worker"

	logger.InfoWithFields("starting audit worker", logger.Fields{
		"topic":    eventbus.TopicAIEvents.Base(),
		"group_id": groupID,
	})
	err = eventbus.SubscribeJSON(ctx, bus, groupID, eventbus.TopicAIEvents,
		func(ctx context.Context, ev events.EvaluationCompletedEvent, meta eventbus.Event) error {
			return h.HandleEvaluationCompleted(ctx, ev, meta)
		})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.ErrorWithFields("audit worker subscription stopped", logger.Fields{"error": err.Error()})
	}
	logger.Log.Info("audit worker stopped")
}
