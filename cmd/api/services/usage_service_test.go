package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cgm-ai-eval/models"
)

func TestUsageServiceRecord(t *testing.T) {
	store := &fakeUsageStore{}
	svc := NewUsageService(store, nil)

	require.NoError(t, svc.Record(context.Background(), 150))
	assert.Equal(t, []int64{150}, store.recorded)
}

func TestUsageServiceMonthlySummaryKeepsOrderAndDays(t *testing.T) {
	store := &fakeUsageStore{months: []models.AIUsageMonth{
		{Month: "2024-03", TotalTokensMonth: 30, APICallsMonth: 3, DailyUsage: []models.AIUsageDay{
			{Date: "2024-03-01", TotalTokensDay: 10, APICallsDay: 1},
			{Date: "2024-03-02", TotalTokensDay: 20, APICallsDay: 2},
		}},
		{Month: "2024-01", TotalTokensMonth: 5, APICallsMonth: 1},
	}}
	svc := NewUsageService(store, nil)

	got, err := svc.MonthlySummary(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-03", got[0].Month)
	assert.Equal(t, "2024-01", got[1].Month)
	require.Len(t, got[0].DailyUsage, 2)
	assert.Equal(t, "2024-03-02", got[0].DailyUsage[1].Date)
	assert.NotNil(t, got[1].DailyUsage)
}

func TestUsageServiceMonthlySummaryEmpty(t *testing.T) {
	got, err := NewUsageService(&fakeUsageStore{}, nil).MonthlySummary(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestUsageServicePropagatesErrors(t *testing.T) {
	svc := NewUsageService(&fakeUsageStore{err: errors.New("down")}, nil)

	assert.Error(t, svc.Record(context.Background(), 1))
	_, err := svc.MonthlySummary(context.Background())
	assert.Error(t, err)
}
