package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cgm-ai-eval/apperrors"
	"cgm-ai-eval/models"
)

type AILogRepository struct {
	col documentCollection
}

func NewAILogRepository(db *mongo.Database) *AILogRepository {
	return &AILogRepository{col: db.Collection("ai_logs")}
}

// InsertOnce stores the log keyed by its event id. Redelivered events hit the
// existing document and leave it untouched. inserted reports whether this call
// created the document.
func (r *AILogRepository) InsertOnce(ctx context.Context, log models.AILog) (inserted bool, err error) {
	if log.EventID == "" {
		return false, apperrors.Validation("ai_log.insert", "event id is required")
	}
	if log.RequestedAt.IsZero() {
		log.RequestedAt = time.Now().UTC()
	}

	doc := bson.M{
		"provider":          log.Provider,
		"model_name":        log.ModelName,
		"mode":              log.Mode,
		"prompt_tokens":     log.PromptTokens,
		"completion_tokens": log.CompletionTokens,
		"total_tokens":      log.TotalTokens,
		"duration_ms":       log.DurationMs,
		"success":           log.Success,
		"response_excerpt":  log.ResponseExcerpt,
		"requested_at":      log.RequestedAt,
		"completed_at":      log.CompletedAt,
	}
	if log.RequestID != "" {
		doc["request_id"] = log.RequestID
	}
	if log.ErrorKind != "" {
		doc["error_kind"] = log.ErrorKind
	}
	if log.ErrorMessage != nil {
		doc["error_message"] = *log.ErrorMessage
	}

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": log.EventID},
		bson.M{"$setOnInsert": doc},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, apperrors.Wrap(apperrors.KindPersistence, "ai_log.insert", err)
	}
	return res.UpsertedCount > 0, nil
}
