package services

import (
	"context"
	"sync"

	"cgm-ai-eval/cmd/api/clients/llmclient"
	"cgm-ai-eval/internal/eventbus"
	"cgm-ai-eval/models"
	"cgm-ai-eval/repositories"
)

type fakePromptStore struct {
	cfg    models.PromptConfig
	getErr error
	setErr error
	gets   int
	saved  *repositories.PromptConfigUpdate
}

func (f *fakePromptStore) Get(ctx context.Context) (models.PromptConfig, error) {
	f.gets++
	if f.getErr != nil {
		return models.PromptConfig{}, f.getErr
	}
	return f.cfg, nil
}

func (f *fakePromptStore) Set(ctx context.Context, u repositories.PromptConfigUpdate) error {
	if err := u.Validate(); err != nil {
		return err
	}
	f.saved = &u
	return f.setErr
}

type fakeSender struct {
	result llmclient.Result
	err    error
	reqs   []llmclient.Request
}

func (f *fakeSender) Send(ctx context.Context, req llmclient.Request) (llmclient.Result, error) {
	f.reqs = append(f.reqs, req)
	return f.result, f.err
}

type fakePublisher struct {
	mu     sync.Mutex
	topics []string
	events []eventbus.Event
	err    error
}

func (f *fakePublisher) Publish(ctx context.Context, topic string, event eventbus.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topics = append(f.topics, topic)
	f.events = append(f.events, event)
	return f.err
}

type fakeUsageStore struct {
	recorded []int64
	months   []models.AIUsageMonth
	err      error
}

func (f *fakeUsageStore) Record(ctx context.Context, tokensUsed int64) error {
	if f.err != nil {
		return f.err
	}
	f.recorded = append(f.recorded, tokensUsed)
	return nil
}

func (f *fakeUsageStore) MonthlySummary(ctx context.Context) ([]models.AIUsageMonth, error) {
	return f.months, f.err
}

func (f *fakeUsageStore) Month(ctx context.Context, month string) (models.AIUsageMonth, error) {
	if f.err != nil {
		return models.AIUsageMonth{}, f.err
	}
	for _, m := range f.months {
		if m.Month == month {
			return m, nil
		}
	}
	return models.AIUsageMonth{Month: month}, nil
}
