package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"cgm-ai-eval/config"
	"cgm-ai-eval/internal/eventbus"
	"cgm-ai-eval/internal/logger"
)

func main() {
	config.InitApp()
	cfg := config.GetConfig()
	logger.Init(cfg.Logging.Level, cfg.ServiceName+"-retry-worker")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	brokers := cfg.EventBus.Brokers
	for _, t := range eventbus.AllTopics {
		if err := eventbus.EnsureTopics(ctx, brokers, t, 3); err != nil {
			logger.ErrorWithFields("failed to ensure eventbus topics", logger.Fields{"topic": t.Base(), "error": err.Error()})
		}
	}

	bus, err := eventbus.NewKafkaEventBus(brokers)
	if err != nil {
		logger.Log.Fatalf("failed to create event bus: %v", err)
	}
	defer bus.Close()

	groupID := cfg.EventBus.GroupID + "-retry-worker"
	logger.Log.Info("starting retry worker")

	var wg sync.WaitGroup
	for _, t := range eventbus.AllTopics {
		topic := t
		wg.Add(1)
		go func() {
			defer wg.Done()
			topicGroupID := groupID + "-" + strings.ReplaceAll(topic.Base(), ".", "-")
			if err := bus.StartRetryReinjector(ctx, topicGroupID, topic); err != nil && !errors.Is(err, context.Canceled) {
				logger.ErrorWithFields("retry reinjector stopped", logger.Fields{"topic": topic.Base(), "error": err.Error()})
			}
		}()
	}

	<-ctx.Done()
	logger.Log.Info("received shutdown signal, waiting for reinjectors")
	wg.Wait()
	logger.Log.Info("retry worker stopped")
}
