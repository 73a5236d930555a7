package service

import (
	"context"
	"testing"
	"time"

	"prep-service/internal/models"
)

type memQuotaStore struct {
	records map[string]*models.UserQuota
	saves   int
}

func (m *memQuotaStore) FindOrCreate(ctx context.Context, userID string, tier models.Tier) (*models.UserQuota, error) {
	if q, ok := m.records[userID]; ok {
		return q, nil
	}
	q := &models.UserQuota{ID: "q-" + userID, UserID: userID, Tier: tier}
	if q.Tier == "" {
		q.Tier = models.TierFree
	}
	m.records[userID] = q
	return q, nil
}

func (m *memQuotaStore) Save(ctx context.Context, quota *models.UserQuota) error {
	m.saves++
	m.records[quota.UserID] = quota
	return nil
}

func ledgerAt(store *memQuotaStore, at time.Time) *TierQuotaLedger {
	l := NewTierQuotaLedger(store)
	l.now = func() time.Time { return at }
	return l
}

func TestGenerationAllowedUpToLimit(t *testing.T) {
	store := &memQuotaStore{records: map[string]*models.UserQuota{}}
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	ledger := ledgerAt(store, now)

	// free tier: 10 exams per month
	for i := 0; i < 9; i++ {
		if err := ledger.RecordGeneration(context.Background(), "user-1", models.TierFree); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}

	decision, err := ledger.CheckGenerationLimit(context.Background(), "user-1", models.TierFree)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("Expected one more generation at usage %d of %d", decision.CurrentUsage, decision.Limit)
	}

	if err := ledger.RecordGeneration(context.Background(), "user-1", models.TierFree); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	decision, err = ledger.CheckGenerationLimit(context.Background(), "user-1", models.TierFree)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if decision.Allowed {
		t.Fatal("Expected rejection at the monthly limit")
	}
	if decision.CurrentUsage != 10 || decision.Limit != 10 {
		t.Errorf("Expected usage 10 of limit 10, got %d of %d", decision.CurrentUsage, decision.Limit)
	}
}

func TestPremiumTierIsUnlimited(t *testing.T) {
	store := &memQuotaStore{records: map[string]*models.UserQuota{}}
	ledger := ledgerAt(store, time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC))

	for i := 0; i < 500; i++ {
		if err := ledger.RecordGeneration(context.Background(), "user-1", models.TierPremium); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}
	decision, err := ledger.CheckGenerationLimit(context.Background(), "user-1", models.TierPremium)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !decision.Allowed {
		t.Error("Premium generation should never be capped")
	}
}

func TestMonthlyCounterResetsLazily(t *testing.T) {
	store := &memQuotaStore{records: map[string]*models.UserQuota{}}
	march := time.Date(2026, 3, 31, 23, 0, 0, 0, time.UTC)
	ledger := ledgerAt(store, march)

	for i := 0; i < 10; i++ {
		if err := ledger.RecordGeneration(context.Background(), "user-1", models.TierFree); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}
	decision, _ := ledger.CheckGenerationLimit(context.Background(), "user-1", models.TierFree)
	if decision.Allowed {
		t.Fatal("Expected exhaustion in March")
	}

	// The window is anchored to the 1st at midnight, so one hour later the
	// counter rolls over on the next read.
	april := time.Date(2026, 4, 1, 0, 0, 1, 0, time.UTC)
	ledger.now = func() time.Time { return april }

	decision, err := ledger.CheckGenerationLimit(context.Background(), "user-1", models.TierFree)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !decision.Allowed {
		t.Fatal("Expected fresh quota after month rollover")
	}
	if decision.CurrentUsage != 0 {
		t.Errorf("Expected usage reset to 0, got %d", decision.CurrentUsage)
	}
}

func TestDownloadSlotsAreNotTimeWindowed(t *testing.T) {
	store := &memQuotaStore{records: map[string]*models.UserQuota{}}
	ledger := ledgerAt(store, time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC))

	// free tier: a single concurrent slot
	if err := ledger.RecordDownload(context.Background(), "user-1", models.TierFree); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	decision, _ := ledger.CheckDownloadLimit(context.Background(), "user-1", models.TierFree)
	if decision.Allowed {
		t.Fatal("Expected slot exhaustion with 1 active download on free tier")
	}

	// A month later the slot is still held; only removal frees it.
	ledger.now = func() time.Time { return time.Date(2026, 4, 20, 12, 0, 0, 0, time.UTC) }
	decision, _ = ledger.CheckDownloadLimit(context.Background(), "user-1", models.TierFree)
	if decision.Allowed {
		t.Fatal("Download slots must not reset with time")
	}

	if err := ledger.RemoveDownload(context.Background(), "user-1", models.TierFree); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	decision, _ = ledger.CheckDownloadLimit(context.Background(), "user-1", models.TierFree)
	if !decision.Allowed {
		t.Fatal("Expected a free slot after removal")
	}
}

func TestDailyCounterResetsAtMidnight(t *testing.T) {
	store := &memQuotaStore{records: map[string]*models.UserQuota{}}
	ledger := ledgerAt(store, time.Date(2026, 3, 15, 23, 30, 0, 0, time.UTC))

	if err := ledger.RecordGeneration(context.Background(), "user-1", models.TierFree); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if store.records["user-1"].DailyQuotaUsed != 1 {
		t.Fatalf("Expected daily usage 1, got %d", store.records["user-1"].DailyQuotaUsed)
	}

	ledger.now = func() time.Time { return time.Date(2026, 3, 16, 0, 30, 0, 0, time.UTC) }
	decision, err := ledger.CheckGenerationLimit(context.Background(), "user-1", models.TierFree)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if store.records["user-1"].DailyQuotaUsed != 0 {
		t.Errorf("Expected daily usage reset, got %d", store.records["user-1"].DailyQuotaUsed)
	}
	// The monthly counter is untouched by the daily rollover.
	if decision.CurrentUsage != 1 {
		t.Errorf("Expected monthly usage 1 to survive the daily reset, got %d", decision.CurrentUsage)
	}
}
