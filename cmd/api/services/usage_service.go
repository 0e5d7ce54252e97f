package services

import (
	"context"

	"cgm-ai-eval/cmd/api/dto"
	"cgm-ai-eval/cmd/api/metrics"
	"cgm-ai-eval/models"
)

// UsageStore 는 토큰 사용량 원장이다. *repositories.AIUsageRepository 가 구현한다.
type UsageStore interface {
	Record(ctx context.Context, tokensUsed int64) error
	MonthlySummary(ctx context.Context) ([]models.AIUsageMonth, error)
	Month(ctx context.Context, month string) (models.AIUsageMonth, error)
}

type UsageService struct {
	store   UsageStore
	metrics *metrics.Metrics
}

func NewUsageService(store UsageStore, m *metrics.Metrics) *UsageService {
	return &UsageService{store: store, metrics: m}
}

func (s *UsageService) Record(ctx context.Context, tokensUsed int64) error {
	err := s.store.Record(ctx, tokensUsed)
	s.metrics.ObserveUsageRecord(tokensUsed, err)
	return err
}

// MonthlySummary 는 월 내림차순 목록을 반환한다. 비어 있으면 빈 슬라이스다.
func (s *UsageService) MonthlySummary(ctx context.Context) ([]dto.MonthlyUsageDTO, error) {
	months, err := s.store.MonthlySummary(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MonthlyUsageDTO, 0, len(months))
	for _, m := range months {
		out = append(out, toMonthlyUsageDTO(m))
	}
	return out, nil
}

func (s *UsageService) Month(ctx context.Context, month string) (dto.MonthlyUsageDTO, error) {
	m, err := s.store.Month(ctx, month)
	if err != nil {
		return dto.MonthlyUsageDTO{}, err
	}
	return toMonthlyUsageDTO(m), nil
}

func toMonthlyUsageDTO(m models.AIUsageMonth) dto.MonthlyUsageDTO {
	days := make([]dto.DayUsageDTO, 0, len(m.DailyUsage))
	for _, d := range m.DailyUsage {
		days = append(days, dto.DayUsageDTO{
			Date:           d.Date,
			TotalTokensDay: d.TotalTokensDay,
			APICallsDay:    d.APICallsDay,
		})
	}
	return dto.MonthlyUsageDTO{
		Month:            m.Month,
		TotalTokensMonth: m.TotalTokensMonth,
		APICallsMonth:    m.APICallsMonth,
		DailyUsage:       days,
		LastUpdated:      m.LastUpdated,
	}
}
