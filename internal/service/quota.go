package service

import (
	"context"
	"fmt"
	"time"

	"prep-service/internal/models"
)

// QuotaStore is the persistence slice the ledger needs.
type QuotaStore interface {
	FindOrCreate(ctx context.Context, userID string, tier models.Tier) (*models.UserQuota, error)
	Save(ctx context.Context, quota *models.UserQuota) error
}

// TierQuotaLedger enforces per-tier usage limits. Counter windows reset
// lazily on read. Check and increment are separate calls, so concurrent
// requests from one user can slip past the cap; the quota is a fairness
// mechanism, not a billing guarantee.
type TierQuotaLedger struct {
	quotas QuotaStore
	now    func() time.Time
}

func NewTierQuotaLedger(quotas QuotaStore) *TierQuotaLedger {
	return &TierQuotaLedger{quotas: quotas, now: time.Now}
}

// CheckGenerationLimit reports whether the user may generate another exam
// this calendar month.
func (l *TierQuotaLedger) CheckGenerationLimit(ctx context.Context, userID string, tier models.Tier) (models.QuotaDecision, error) {
	quota, err := l.loadFresh(ctx, userID, tier)
	if err != nil {
		return models.QuotaDecision{}, err
	}

	limits := models.LimitsFor(quota.Tier)
	if limits.MonthlyExams == models.Unlimited {
		return models.QuotaDecision{Allowed: true, Limit: models.Unlimited, CurrentUsage: quota.MonthlyExamCount}, nil
	}
	if quota.MonthlyExamCount >= limits.MonthlyExams {
		return models.QuotaDecision{
			Allowed:      false,
			Reason:       fmt.Sprintf("monthly exam limit of %d reached for tier %s", limits.MonthlyExams, quota.Tier),
			Limit:        limits.MonthlyExams,
			CurrentUsage: quota.MonthlyExamCount,
		}, nil
	}
	return models.QuotaDecision{Allowed: true, Limit: limits.MonthlyExams, CurrentUsage: quota.MonthlyExamCount}, nil
}

// MaxQuestionsPerExam returns the per-composition cap for a tier.
func (l *TierQuotaLedger) MaxQuestionsPerExam(tier models.Tier) int {
	return models.LimitsFor(tier).MaxQuestionsPerExam
}

// RecordGeneration bumps the monthly and daily counters after a successful
// composition.
func (l *TierQuotaLedger) RecordGeneration(ctx context.Context, userID string, tier models.Tier) error {
	quota, err := l.loadFresh(ctx, userID, tier)
	if err != nil {
		return err
	}
	quota.MonthlyExamCount++
	quota.DailyQuotaUsed++
	return l.quotas.Save(ctx, quota)
}

// CheckDownloadLimit reports whether another concurrent download slot is
// free. Slots are not time-windowed: they stay consumed until removed.
func (l *TierQuotaLedger) CheckDownloadLimit(ctx context.Context, userID string, tier models.Tier) (models.QuotaDecision, error) {
	quota, err := l.loadFresh(ctx, userID, tier)
	if err != nil {
		return models.QuotaDecision{}, err
	}

	limits := models.LimitsFor(quota.Tier)
	if quota.ActiveDownloads >= limits.DownloadSlots {
		return models.QuotaDecision{
			Allowed:      false,
			Reason:       fmt.Sprintf("all %d download slots in use for tier %s", limits.DownloadSlots, quota.Tier),
			Limit:        limits.DownloadSlots,
			CurrentUsage: quota.ActiveDownloads,
		}, nil
	}
	return models.QuotaDecision{Allowed: true, Limit: limits.DownloadSlots, CurrentUsage: quota.ActiveDownloads}, nil
}

func (l *TierQuotaLedger) RecordDownload(ctx context.Context, userID string, tier models.Tier) error {
	quota, err := l.loadFresh(ctx, userID, tier)
	if err != nil {
		return err
	}
	quota.ActiveDownloads++
	return l.quotas.Save(ctx, quota)
}

func (l *TierQuotaLedger) RemoveDownload(ctx context.Context, userID string, tier models.Tier) error {
	quota, err := l.loadFresh(ctx, userID, tier)
	if err != nil {
		return err
	}
	if quota.ActiveDownloads > 0 {
		quota.ActiveDownloads--
	}
	return l.quotas.Save(ctx, quota)
}

// loadFresh loads the quota record and rolls any counter whose window has
// elapsed. Rolled counters are persisted immediately so repeated reads in
// the same window see consistent state.
func (l *TierQuotaLedger) loadFresh(ctx context.Context, userID string, tier models.Tier) (*models.UserQuota, error) {
	quota, err := l.quotas.FindOrCreate(ctx, userID, tier)
	if err != nil {
		return nil, fmt.Errorf("failed to load quota for %s: %w", userID, err)
	}

	now := l.now()
	dirty := false

	monthStart := startOfMonth(now)
	if quota.MonthStart == nil || quota.MonthStart.Before(monthStart) {
		quota.MonthStart = &monthStart
		quota.MonthlyExamCount = 0
		dirty = true
	}

	dayStart := startOfDay(now)
	if quota.DailyResetAt == nil || quota.DailyResetAt.Before(dayStart) {
		quota.DailyResetAt = &dayStart
		quota.DailyQuotaUsed = 0
		dirty = true
	}

	if dirty {
		if err := l.quotas.Save(ctx, quota); err != nil {
			return nil, fmt.Errorf("failed to persist quota reset for %s: %w", userID, err)
		}
	}
	return quota, nil
}

// startOfMonth anchors the monthly window to the 1st at midnight, not a
// rolling 30 days.
func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
