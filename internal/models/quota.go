package models

import "time"

// UserQuota holds per-user usage counters. Windows roll over lazily: the
// ledger resets a counter on read when now has crossed the stored boundary,
// there is no background sweep here.
type UserQuota struct {
	ID     string `bson:"_id,omitempty" json:"id"`
	UserID string `bson:"user_id" json:"user_id"`
	Tier   Tier   `bson:"tier" json:"tier"`

	DailyQuotaUsed   int        `bson:"daily_quota_used" json:"daily_quota_used"`
	DailyResetAt     *time.Time `bson:"daily_reset_at,omitempty" json:"daily_reset_at,omitempty"`
	MonthlyExamCount int        `bson:"monthly_exam_count" json:"monthly_exam_count"`
	MonthStart       *time.Time `bson:"month_start,omitempty" json:"month_start,omitempty"`
	ActiveDownloads  int        `bson:"active_downloads" json:"active_downloads"`

	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// QuotaDecision is the outcome of a limit check. Rejections carry the limit
// and current usage so the caller can render an upgrade prompt.
type QuotaDecision struct {
	Allowed      bool   `json:"allowed"`
	Reason       string `json:"reason,omitempty"`
	Limit        int    `json:"limit"`
	CurrentUsage int    `json:"current_usage"`
}
