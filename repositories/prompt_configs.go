package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cgm-ai-eval/apperrors"
	"cgm-ai-eval/internal/logger"
	"cgm-ai-eval/models"
)

// PromptConfigUpdate carries the four prompt fields of a save request.
// A nil field means the caller omitted it; an empty string is a valid value.
type PromptConfigUpdate struct {
	SystemPrompt              *string
	UserPromptTemplate        *string
	SystemInterimPrompt       *string
	UserInterimPromptTemplate *string
}

// Validate reports every missing field at once.
func (u PromptConfigUpdate) Validate() error {
	var missing []string
	if u.SystemPrompt == nil {
		missing = append(missing, "system_prompt")
	}
	if u.UserPromptTemplate == nil {
		missing = append(missing, "user_prompt_template")
	}
	if u.SystemInterimPrompt == nil {
		missing = append(missing, "system_interim_prompt")
	}
	if u.UserInterimPromptTemplate == nil {
		missing = append(missing, "user_interim_prompt_template")
	}
	if len(missing) > 0 {
		return apperrors.Validation("prompt_config.set", "missing required fields: "+strings.Join(missing, ", "))
	}
	return nil
}

type PromptConfigRepository struct {
	col    documentCollection
	policy RetryPolicy[*mongo.UpdateResult]
	now    func() time.Time
}

func NewPromptConfigRepository(db *mongo.Database) *PromptConfigRepository {
	return newPromptConfigRepository(db.Collection("ai_prompt_configs"), DefaultUpsertPolicy())
}

func newPromptConfigRepository(col documentCollection, policy RetryPolicy[*mongo.UpdateResult]) *PromptConfigRepository {
	return &PromptConfigRepository{col: col, policy: policy, now: time.Now}
}

// Get returns the stored configuration, or an all-empty one when nothing has
// been saved yet.
func (r *PromptConfigRepository) Get(ctx context.Context) (models.PromptConfig, error) {
	var cfg models.PromptConfig
	err := r.col.FindOne(ctx, bson.M{"_id": models.PromptConfigID}).Decode(&cfg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.PromptConfig{}, nil
	}
	if err != nil {
		return models.PromptConfig{}, apperrors.Unavailable("prompt_config.get", err)
	}
	return cfg, nil
}

// Set validates and upserts the singleton configuration, stamping updated_at
// in the same write.
func (r *PromptConfigRepository) Set(ctx context.Context, u PromptConfigUpdate) error {
	if err := u.Validate(); err != nil {
		return err
	}

	filter := bson.M{"_id": models.PromptConfigID}
	update := bson.M{
		"$set": bson.M{
			"system_prompt":                *u.SystemPrompt,
			"user_prompt_template":         *u.UserPromptTemplate,
			"system_interim_prompt":        *u.SystemInterimPrompt,
			"user_interim_prompt_template": *u.UserInterimPromptTemplate,
			"updated_at":                   r.now(),
		},
	}
	opts := options.Update().SetUpsert(true)

	policy := r.policy
	policy.OnRetry = func(attempt int, err error) {
		logger.WarnWithFields("prompt config upsert attempt failed", logger.Fields{
			"attempt": attempt,
			"error":   errString(err),
		})
	}
	_, attempts, err := Retry(ctx, policy, func(ctx context.Context) (*mongo.UpdateResult, error) {
		return r.col.UpdateOne(ctx, filter, update, opts)
	})
	if err != nil {
		logger.ErrorWithFields("prompt config upsert failed", logger.Fields{
			"attempts": attempts,
			"error":    err.Error(),
		})
		return apperrors.Persistence("prompt_config.set", attempts, unwrapRetry(err))
	}
	return nil
}

func errString(err error) string {
	if err == nil {
		return ErrNoUpsertDetail.Error()
	}
	return err.Error()
}

func unwrapRetry(err error) error {
	var re *RetryError
	if errors.As(err, &re) {
		return re.Cause
	}
	return err
}
