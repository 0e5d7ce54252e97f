package models

import "time"

const (
	UsageMonthLayout = "2006-01"
	UsageDayLayout   = "2006-01-02"
)

// AIUsageMonth is the monthly token ledger.
// Collection: ai_usage (_id = "YYYY-MM")
//
// DailyUsage is not stored on the month document; it is filled from
// ai_usage_daily when the month is read.
type AIUsageMonth struct {
	Month            string       `bson:"_id" json:"_id"`
	TotalTokensMonth int64        `bson:"total_tokens_month" json:"total_tokens_month"`
	APICallsMonth    int64        `bson:"api_calls_month" json:"api_calls_month"`
	DailyUsage       []AIUsageDay `bson:"-" json:"daily_usage"`
	LastUpdated      time.Time    `bson:"last_updated" json:"last_updated"`
}

// AIUsageDay is one day of token usage.
// Collection: ai_usage_daily (_id = "YYYY-MM-DD", one document per day)
type AIUsageDay struct {
	Date           string    `bson:"_id" json:"date"`
	Month          string    `bson:"month" json:"-"`
	TotalTokensDay int64     `bson:"total_tokens_day" json:"total_tokens_day"`
	APICallsDay    int64     `bson:"api_calls_day" json:"api_calls_day"`
	LastUpdated    time.Time `bson:"last_updated" json:"-"`
}

// UsageKeys returns the month and day identifiers for t in UTC.
func UsageKeys(t time.Time) (month, day string) {
	u := t.UTC()
	return u.Format(UsageMonthLayout), u.Format(UsageDayLayout)
}
