package services

import (
	"context"

	"cgm-ai-eval/cmd/api/dto"
	"cgm-ai-eval/models"
	"cgm-ai-eval/repositories"
)

// PromptConfigStore 는 프롬프트 싱글톤 저장소다. *repositories.PromptConfigRepository 가 구현한다.
type PromptConfigStore interface {
	Get(ctx context.Context) (models.PromptConfig, error)
	Set(ctx context.Context, u repositories.PromptConfigUpdate) error
}

type PromptService struct {
	store PromptConfigStore
}

func NewPromptService(store PromptConfigStore) *PromptService {
	return &PromptService{store: store}
}

func (s *PromptService) Get(ctx context.Context) (dto.PromptSettingsDTO, error) {
	cfg, err := s.store.Get(ctx)
	if err != nil {
		return dto.PromptSettingsDTO{}, err
	}
	return dto.PromptSettingsDTO{
		SystemPrompt:              cfg.SystemPrompt,
		UserPromptTemplate:        cfg.UserPromptTemplate,
		SystemInterimPrompt:       cfg.SystemInterimPrompt,
		UserInterimPromptTemplate: cfg.UserInterimPromptTemplate,
	}, nil
}

// Save 는 필드 누락 검증을 저장소에 맡긴다 (ValidationError).
func (s *PromptService) Save(ctx context.Context, req dto.UpdatePromptSettingsRequestDTO) error {
	return s.store.Set(ctx, repositories.PromptConfigUpdate{
		SystemPrompt:              req.SystemPrompt,
		UserPromptTemplate:        req.UserPromptTemplate,
		SystemInterimPrompt:       req.SystemInterimPrompt,
		UserInterimPromptTemplate: req.UserInterimPromptTemplate,
	})
}
