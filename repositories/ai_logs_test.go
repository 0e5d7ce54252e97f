package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"cgm-ai-eval/apperrors"
	"cgm-ai-eval/models"
)

func TestAILogInsertOnceIgnoresRedelivery(t *testing.T) {
	col := newMemCollection()
	repo := &AILogRepository{col: col}
	ctx := context.Background()

	log := models.AILog{
		EventID:     "evt-1",
		RequestID:   "req-1",
		ModelName:   "gpt-4o",
		Mode:        "primary",
		TotalTokens: 120,
		Success:     true,
		CompletedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	inserted, err := repo.InsertOnce(ctx, log)
	require.NoError(t, err)
	assert.True(t, inserted)

	log.TotalTokens = 999
	inserted, err = repo.InsertOnce(ctx, log)
	require.NoError(t, err)
	assert.False(t, inserted)

	doc, ok := col.get("evt-1")
	require.True(t, ok)
	assert.Equal(t, int64(120), doc["total_tokens"])
	assert.Equal(t, "req-1", doc["request_id"])
	assert.NotContains(t, doc, "error_message")
}

func TestAILogInsertOnceStoresFailure(t *testing.T) {
	col := newMemCollection()
	repo := &AILogRepository{col: col}

	msg := "upstream returned 429"
	_, err := repo.InsertOnce(context.Background(), models.AILog{
		EventID:      "evt-2",
		ErrorKind:    "upstream",
		ErrorMessage: &msg,
	})
	require.NoError(t, err)

	doc, ok := col.get("evt-2")
	require.True(t, ok)
	assert.Equal(t, msg, doc["error_message"])
	assert.Equal(t, "upstream", doc["error_kind"])
	assert.Equal(t, false, doc["success"])
}

func TestAILogInsertOnceErrors(t *testing.T) {
	col := newMemCollection()
	repo := &AILogRepository{col: col}

	_, err := repo.InsertOnce(context.Background(), models.AILog{})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	col.updateHook = func(int) (*mongo.UpdateResult, error) { return nil, errors.New("not primary") }
	_, err = repo.InsertOnce(context.Background(), models.AILog{EventID: "evt-3"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindPersistence))
}
