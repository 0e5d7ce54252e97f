package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"cgm-ai-eval/apperrors"
	"cgm-ai-eval/cmd/api/clients/llmclient"
	"cgm-ai-eval/cmd/api/metrics"
	"cgm-ai-eval/cmd/api/trace"
	"cgm-ai-eval/events"
	"cgm-ai-eval/internal/eventbus"
	"cgm-ai-eval/internal/logger"
	"cgm-ai-eval/models"
	"cgm-ai-eval/renderer"
)

const (
	publishTimeout     = 5 * time.Second
	responseExcerptLen = 200
)

// PromptConfigReader 는 평가 시 프롬프트 설정을 읽는 쪽만 필요로 한다.
type PromptConfigReader interface {
	Get(ctx context.Context) (models.PromptConfig, error)
}

// EvaluationConfig 는 배포 단위 LLM 설정이다.
type EvaluationConfig struct {
	Provider string
	Endpoint string
	APIKey   string
	Model    string
	Defaults renderer.Defaults
}

type EvaluateInput struct {
	// Payload 는 {{CGMDATA}} 자리에 직렬화되는 값이다.
	Payload any
	Mode    renderer.Mode
	Debug   bool
}

type DebugInfo struct {
	SystemPrompt string
	UserPrompt   string
	Model        string
}

type EvaluateOutput struct {
	Content string
	Usage   *llmclient.Usage
	Debug   *DebugInfo
}

type EvaluationService struct {
	prompts   PromptConfigReader
	sender    llmclient.Sender
	cfg       EvaluationConfig
	publisher eventbus.Publisher
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewEvaluationService 의 publisher 와 m 은 nil 일 수 있다.
func NewEvaluationService(prompts PromptConfigReader, sender llmclient.Sender, cfg EvaluationConfig, publisher eventbus.Publisher, m *metrics.Metrics) *EvaluationService {
	return &EvaluationService{
		prompts:   prompts,
		sender:    sender,
		cfg:       cfg,
		publisher: publisher,
		metrics:   m,
		now:       time.Now,
	}
}

// Evaluate 는 ConfigStore -> PromptRenderer -> LLMGateway 순서로 평가를 수행한다.
// 사용량 기록은 호출자가 /ai_usage/record 로 따로 요청한다.
func (s *EvaluationService) Evaluate(ctx context.Context, in EvaluateInput) (EvaluateOutput, error) {
	if in.Mode == "" {
		in.Mode = renderer.ModePrimary
	}
	if err := s.checkConfig(); err != nil {
		logger.ErrorWithFields("ai evaluation not configured", logger.Fields{
			"request_id": trace.RequestIDFromContext(ctx),
			"error":      err.Error(),
		})
		return EvaluateOutput{}, err
	}

	started := s.now()
	out, err := s.evaluate(ctx, in)
	s.finish(ctx, in.Mode, started, out, err)
	return out, err
}

func (s *EvaluationService) checkConfig() error {
	var missing []string
	if strings.TrimSpace(s.cfg.Endpoint) == "" && s.cfg.Provider != llmclient.ProviderGemini {
		missing = append(missing, "endpoint")
	}
	if strings.TrimSpace(s.cfg.APIKey) == "" {
		missing = append(missing, "api key")
	}
	if len(missing) > 0 {
		return apperrors.Configuration("evaluate", "AI evaluation "+strings.Join(missing, " and ")+" not configured")
	}
	return nil
}

func (s *EvaluationService) evaluate(ctx context.Context, in EvaluateInput) (EvaluateOutput, error) {
	cfg, err := s.prompts.Get(ctx)
	if err != nil {
		// 설정 저장소 장애로 평가를 막지 않는다. 기본 프롬프트로 계속 진행한다.
		logger.WarnWithFields("prompt config unavailable, using defaults", logger.Fields{
			"request_id": trace.RequestIDFromContext(ctx),
			"error":      err.Error(),
		})
		cfg = models.PromptConfig{}
	}

	prompts, err := renderer.Render(cfg, in.Payload, in.Mode, s.cfg.Defaults)
	if err != nil {
		return EvaluateOutput{}, err
	}

	res, err := s.sender.Send(ctx, llmclient.Request{
		Endpoint:     s.cfg.Endpoint,
		APIKey:       s.cfg.APIKey,
		Model:        s.cfg.Model,
		SystemPrompt: prompts.SystemPrompt,
		UserPrompt:   prompts.UserPrompt,
	})
	if err != nil {
		return EvaluateOutput{}, err
	}

	out := EvaluateOutput{Content: res.Content, Usage: res.Usage}
	if in.Debug {
		out.Debug = &DebugInfo{
			SystemPrompt: prompts.SystemPrompt,
			UserPrompt:   prompts.UserPrompt,
			Model:        s.cfg.Model,
		}
	}
	return out, nil
}

func (s *EvaluationService) finish(ctx context.Context, mode renderer.Mode, started time.Time, out EvaluateOutput, err error) {
	completed := s.now()
	took := completed.Sub(started)

	outcome := "success"
	fields := logger.Fields{
		"request_id":  trace.RequestIDFromContext(ctx),
		"mode":        string(mode),
		"model":       s.cfg.Model,
		"duration_ms": took.Milliseconds(),
	}
	if err != nil {
		outcome = string(apperrors.KindOf(err))
		if outcome == "" {
			outcome = "unknown"
		}
		fields["error_kind"] = outcome
		fields["error"] = err.Error()
		var appErr *apperrors.Error
		if errors.As(err, &appErr) && appErr.StatusCode != 0 {
			fields["upstream_status"] = appErr.StatusCode
		}
		logger.ErrorWithFields("ai evaluation failed", fields)
	} else {
		if out.Usage != nil {
			fields["total_tokens"] = out.Usage.TotalTokens
			s.metrics.AddLLMTokens(out.Usage.PromptTokens, out.Usage.CompletionTokens)
		}
		logger.InfoWithFields("ai evaluation completed", fields)
	}
	s.metrics.ObserveEvaluation(string(mode), outcome, took)

	if s.publisher != nil {
		s.publish(ctx, s.completedEvent(ctx, mode, started, completed, out, err))
	}
}

func (s *EvaluationService) completedEvent(ctx context.Context, mode renderer.Mode, started, completed time.Time, out EvaluateOutput, err error) events.EvaluationCompletedEvent {
	provider := s.cfg.Provider
	if provider == "" {
		provider = llmclient.ProviderChat
	}
	ev := events.EvaluationCompletedEvent{
		BaseEvent: events.BaseEvent{
			ID:        trace.GenerateID(),
			Type:      events.EvaluationCompleted,
			Timestamp: completed,
			Source:    "api",
			Version:   "1",
		},
		RequestID:   trace.RequestIDFromContext(ctx),
		Provider:    provider,
		ModelName:   s.cfg.Model,
		Mode:        string(mode),
		DurationMs:  completed.Sub(started).Milliseconds(),
		Success:     err == nil,
		RequestedAt: started,
		CompletedAt: completed,
	}
	if out.Usage != nil {
		ev.PromptTokens = out.Usage.PromptTokens
		ev.CompletionTokens = out.Usage.CompletionTokens
		ev.TotalTokens = out.Usage.TotalTokens
	}
	if err != nil {
		ev.ErrorKind = string(apperrors.KindOf(err))
		ev.ErrorMessage = err.Error()
	} else {
		ev.ResponseExcerpt = excerpt(out.Content, responseExcerptLen)
	}
	return ev
}

// publish 실패는 평가 결과에 영향을 주지 않는다.
func (s *EvaluationService) publish(ctx context.Context, ev events.EvaluationCompletedEvent) {
	evt, err := eventbus.NewJSONEvent(ev.ID, string(ev.Type), ev, 0)
	if err != nil {
		logger.ErrorWithFields("failed to build evaluation event", logger.Fields{"error": err.Error()})
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(pubCtx, eventbus.TopicAIEvents.Base(), evt); err != nil {
		logger.WarnWithFields("failed to publish evaluation event", logger.Fields{
			"event_id": ev.ID,
			"error":    err.Error(),
		})
	}
}

func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
