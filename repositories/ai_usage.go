package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cgm-ai-eval/apperrors"
	"cgm-ai-eval/internal/logger"
	"cgm-ai-eval/models"
)

// AIUsageRepository maintains monthly token totals in ai_usage and one
// document per day in ai_usage_daily.
//
// Both writes are atomic $inc upserts keyed by _id, so concurrent first calls
// of a day converge on a single day document. The month and day writes are
// separate operations; a crash between them leaves the day total behind the
// month total.
type AIUsageRepository struct {
	months documentCollection
	days   documentCollection
	policy RetryPolicy[*mongo.UpdateResult]
	now    func() time.Time
}

func NewAIUsageRepository(db *mongo.Database) *AIUsageRepository {
	return newAIUsageRepository(db.Collection("ai_usage"), db.Collection("ai_usage_daily"), DefaultUpsertPolicy())
}

func newAIUsageRepository(months, days documentCollection, policy RetryPolicy[*mongo.UpdateResult]) *AIUsageRepository {
	return &AIUsageRepository{months: months, days: days, policy: policy, now: time.Now}
}

// Record adds tokensUsed and one API call to the current month and day.
func (r *AIUsageRepository) Record(ctx context.Context, tokensUsed int64) error {
	if tokensUsed < 0 {
		return apperrors.Validation("usage.record", "tokens_used must be a non-negative number")
	}

	now := r.now()
	month, day := models.UsageKeys(now)
	opts := options.Update().SetUpsert(true)

	monthUpdate := bson.M{
		"$inc": bson.M{"total_tokens_month": tokensUsed, "api_calls_month": int64(1)},
		"$set": bson.M{"last_updated": now},
	}
	if err := r.upsert(ctx, "month", r.months, bson.M{"_id": month}, monthUpdate, opts); err != nil {
		return err
	}

	dayUpdate := bson.M{
		"$inc":         bson.M{"total_tokens_day": tokensUsed, "api_calls_day": int64(1)},
		"$set":         bson.M{"last_updated": now},
		"$setOnInsert": bson.M{"month": month},
	}
	return r.upsert(ctx, "day", r.days, bson.M{"_id": day}, dayUpdate, opts)
}

func (r *AIUsageRepository) upsert(ctx context.Context, scope string, col documentCollection, filter, update bson.M, opts *options.UpdateOptions) error {
	policy := r.policy
	policy.OnRetry = func(attempt int, err error) {
		logger.WarnWithFields("usage upsert attempt failed", logger.Fields{
			"scope":   scope,
			"key":     filter["_id"],
			"attempt": attempt,
			"error":   errString(err),
		})
	}
	_, attempts, err := Retry(ctx, policy, func(ctx context.Context) (*mongo.UpdateResult, error) {
		return col.UpdateOne(ctx, filter, update, opts)
	})
	if err != nil {
		logger.ErrorWithFields("usage upsert failed", logger.Fields{
			"scope":    scope,
			"key":      filter["_id"],
			"attempts": attempts,
			"error":    err.Error(),
		})
		return apperrors.Persistence("usage.record."+scope, attempts, unwrapRetry(err))
	}
	return nil
}

// MonthlySummary returns every month, most recent first, with its days.
func (r *AIUsageRepository) MonthlySummary(ctx context.Context) ([]models.AIUsageMonth, error) {
	cur, err := r.months.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: -1}}))
	if err != nil {
		return nil, apperrors.Unavailable("usage.monthly_summary", err)
	}
	defer cur.Close(ctx)

	months := []models.AIUsageMonth{}
	if err := cur.All(ctx, &months); err != nil {
		return nil, apperrors.Unavailable("usage.monthly_summary", err)
	}
	if len(months) == 0 {
		return months, nil
	}

	days, err := r.findDays(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	byMonth := make(map[string][]models.AIUsageDay, len(months))
	for _, d := range days {
		byMonth[d.Month] = append(byMonth[d.Month], d)
	}
	for i := range months {
		months[i].DailyUsage = byMonth[months[i].Month]
		if months[i].DailyUsage == nil {
			months[i].DailyUsage = []models.AIUsageDay{}
		}
	}
	return months, nil
}

// Month returns a single month with its days. An unknown month yields a
// zero-valued record carrying the requested id.
func (r *AIUsageRepository) Month(ctx context.Context, month string) (models.AIUsageMonth, error) {
	if _, err := time.Parse(models.UsageMonthLayout, month); err != nil {
		return models.AIUsageMonth{}, apperrors.Validation("usage.month", "month must be formatted as YYYY-MM")
	}

	out := models.AIUsageMonth{Month: month}
	err := r.months.FindOne(ctx, bson.M{"_id": month}).Decode(&out)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return models.AIUsageMonth{}, apperrors.Unavailable("usage.month", err)
	}

	days, err := r.findDays(ctx, bson.M{"month": month})
	if err != nil {
		return models.AIUsageMonth{}, err
	}
	out.DailyUsage = days
	return out, nil
}

func (r *AIUsageRepository) findDays(ctx context.Context, filter bson.M) ([]models.AIUsageDay, error) {
	cur, err := r.days.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, apperrors.Unavailable("usage.daily", err)
	}
	defer cur.Close(ctx)

	days := []models.AIUsageDay{}
	if err := cur.All(ctx, &days); err != nil {
		return nil, apperrors.Unavailable("usage.daily", err)
	}
	return days, nil
}
