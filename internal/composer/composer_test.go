package composer

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"prep-service/internal/models"
	"prep-service/internal/service"
)

// fakeSampler serves deterministic per-subject pools.
type fakeSampler struct {
	pools      map[string][]models.Question
	usageBumps []string
}

func (f *fakeSampler) CountByScope(ctx context.Context, examBodyID string, subjectIDs []string) (int64, error) {
	var total int64
	for subject, pool := range f.pools {
		if len(subjectIDs) > 0 && !contains(subjectIDs, subject) {
			continue
		}
		total += int64(len(pool))
	}
	return total, nil
}

func (f *fakeSampler) SampleSubject(ctx context.Context, examBodyID, subjectID string, count int, excludeIDs []string) ([]models.Question, error) {
	return takeFrom(f.pools[subjectID], count, excludeIDs), nil
}

func (f *fakeSampler) SamplePool(ctx context.Context, examBodyID string, subjectIDs []string, count int, excludeIDs []string) ([]models.Question, error) {
	combined := []models.Question{}
	for subject, pool := range f.pools {
		if len(subjectIDs) > 0 && !contains(subjectIDs, subject) {
			continue
		}
		combined = append(combined, pool...)
	}
	return takeFrom(combined, count, excludeIDs), nil
}

func (f *fakeSampler) IncrementUsage(ctx context.Context, ids []string) error {
	f.usageBumps = append(f.usageBumps, ids...)
	return nil
}

func takeFrom(pool []models.Question, count int, excludeIDs []string) []models.Question {
	out := []models.Question{}
	for _, q := range pool {
		if len(out) == count {
			break
		}
		if contains(excludeIDs, q.ID) {
			continue
		}
		out = append(out, q)
	}
	return out
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

type fakeExams struct {
	created []*models.Exam
	fail    bool
}

func (f *fakeExams) Create(ctx context.Context, exam *models.Exam) error {
	if f.fail {
		return errors.New("insert failed")
	}
	exam.ID = "exam-1"
	f.created = append(f.created, exam)
	return nil
}

type fakeSubjects struct {
	categories map[string]models.Category
	subjects   []models.Subject
}

func (f *fakeSubjects) FindCategory(ctx context.Context, id string) (*models.Category, error) {
	if c, ok := f.categories[id]; ok {
		return &c, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeSubjects) FindSubject(ctx context.Context, id string) (*models.Subject, error) {
	for _, s := range f.subjects {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeSubjects) FindByCategory(ctx context.Context, categoryID, examBodyID string) ([]models.Subject, error) {
	out := []models.Subject{}
	for _, s := range f.subjects {
		if s.CategoryID == categoryID && s.ExamBodyID == examBodyID {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeRules struct {
	byScope map[string][]models.ExamRule
}

func (f *fakeRules) FindActiveByScope(ctx context.Context, examTypeID, categoryID string) ([]models.ExamRule, error) {
	return f.byScope[examTypeID+"/"+categoryID], nil
}

type fakeQuotas struct {
	records map[string]*models.UserQuota
}

func (f *fakeQuotas) FindOrCreate(ctx context.Context, userID string, tier models.Tier) (*models.UserQuota, error) {
	if q, ok := f.records[userID]; ok {
		return q, nil
	}
	q := &models.UserQuota{ID: "q-" + userID, UserID: userID, Tier: tier}
	if q.Tier == "" {
		q.Tier = models.TierFree
	}
	f.records[userID] = q
	return q, nil
}

func (f *fakeQuotas) Save(ctx context.Context, quota *models.UserQuota) error {
	f.records[quota.UserID] = quota
	return nil
}

func questionPool(subject string, n int) []models.Question {
	pool := make([]models.Question, n)
	for i := range pool {
		pool[i] = models.Question{
			ID:        subject + "-q" + string(rune('0'+i/10)) + string(rune('0'+i%10)),
			SubjectID: subject,
			Status:    models.StatusLive,
			Marks:     1,
		}
	}
	return pool
}

func newTestComposer(sampler *fakeSampler, exams *fakeExams, subjects *fakeSubjects, quotas *fakeQuotas) *Composer {
	return NewComposer(
		sampler,
		exams,
		service.NewSubjectResolver(subjects),
		service.NewRulesEngine(&fakeRules{byScope: map[string][]models.ExamRule{}}),
		service.NewTierQuotaLedger(quotas),
		nil,
	)
}

// Scenario from the WAEC question bank: 3 subjects holding 20/20/5 live
// questions, 30 requested. The stratified pass draws 10/10/5, the 5-short
// gap is backfilled from the remaining pool.
func TestComposeBackfillsShortSubjects(t *testing.T) {
	sampler := &fakeSampler{pools: map[string][]models.Question{
		"math":    questionPool("math", 20),
		"english": questionPool("english", 20),
		"physics": questionPool("physics", 5),
	}}
	exams := &fakeExams{}
	quotas := &fakeQuotas{records: map[string]*models.UserQuota{}}

	c := newTestComposer(sampler, exams, &fakeSubjects{}, quotas)

	result, err := c.Compose(context.Background(), ComposeParams{
		ExamBodyID:    "waec",
		SubjectIDs:    []string{"math", "english", "physics"},
		QuestionCount: 30,
		UserID:        "user-1",
		Tier:          models.TierPremium,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.Success {
		t.Fatalf("Expected success, got: %s", result.Message)
	}
	if result.Realized != 30 {
		t.Errorf("Expected 30 questions, got %d", result.Realized)
	}

	seen := map[string]bool{}
	for _, id := range result.Exam.QuestionIDs {
		if seen[id] {
			t.Errorf("Duplicate question id %s in exam", id)
		}
		seen[id] = true
	}
	if len(exams.created) != 1 {
		t.Fatalf("Expected 1 persisted exam, got %d", len(exams.created))
	}
	if len(sampler.usageBumps) != 30 {
		t.Errorf("Expected 30 usage increments, got %d", len(sampler.usageBumps))
	}
}

func TestComposeShortPoolYieldsWhatIsAvailable(t *testing.T) {
	sampler := &fakeSampler{pools: map[string][]models.Question{
		"math": questionPool("math", 12),
	}}
	exams := &fakeExams{}
	quotas := &fakeQuotas{records: map[string]*models.UserQuota{}}

	c := newTestComposer(sampler, exams, &fakeSubjects{}, quotas)

	result, err := c.Compose(context.Background(), ComposeParams{
		ExamBodyID:    "waec",
		SubjectIDs:    []string{"math"},
		QuestionCount: 30,
		UserID:        "user-1",
		Tier:          models.TierPremium,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.Success {
		t.Fatalf("Expected success, got: %s", result.Message)
	}
	if result.Realized != 12 {
		t.Errorf("Expected 12 questions, got %d", result.Realized)
	}
	if result.Message == "" {
		t.Error("Expected a shortfall message")
	}
}

func TestComposeRejectsOverTierCap(t *testing.T) {
	sampler := &fakeSampler{pools: map[string][]models.Question{
		"math": questionPool("math", 100),
	}}
	exams := &fakeExams{}
	quotas := &fakeQuotas{records: map[string]*models.UserQuota{}}

	c := newTestComposer(sampler, exams, &fakeSubjects{}, quotas)

	result, err := c.Compose(context.Background(), ComposeParams{
		ExamBodyID:    "waec",
		SubjectIDs:    []string{"math"},
		QuestionCount: 50,
		UserID:        "user-1",
		Tier:          models.TierFree,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Success {
		t.Fatal("Expected rejection for over-cap request on free tier")
	}
	if len(exams.created) != 0 {
		t.Error("No exam should be persisted for a rejected request")
	}
}

func TestComposeRejectsWhenMonthlyQuotaExhausted(t *testing.T) {
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	quotas := &fakeQuotas{records: map[string]*models.UserQuota{
		"user-1": {
			ID:               "q-user-1",
			UserID:           "user-1",
			Tier:             models.TierFree,
			MonthlyExamCount: 10,
			MonthStart:       &monthStart,
			DailyResetAt:     &monthStart,
		},
	}}
	sampler := &fakeSampler{pools: map[string][]models.Question{
		"math": questionPool("math", 100),
	}}
	exams := &fakeExams{}

	c := newTestComposer(sampler, exams, &fakeSubjects{}, quotas)

	result, err := c.Compose(context.Background(), ComposeParams{
		ExamBodyID:    "waec",
		SubjectIDs:    []string{"math"},
		QuestionCount: 10,
		UserID:        "user-1",
		Tier:          models.TierFree,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Success {
		t.Fatal("Expected quota rejection")
	}
	if result.Quota == nil {
		t.Fatal("Expected quota decision on rejection")
	}
	if result.Quota.CurrentUsage != 10 || result.Quota.Limit != 10 {
		t.Errorf("Expected usage 10 of limit 10, got %d of %d", result.Quota.CurrentUsage, result.Quota.Limit)
	}
}

func TestComposeEmptyTrackIsTerminal(t *testing.T) {
	subjects := &fakeSubjects{
		categories: map[string]models.Category{
			"science": {ID: "science", ExamBodyID: "waec"},
		},
	}
	sampler := &fakeSampler{pools: map[string][]models.Question{}}
	quotas := &fakeQuotas{records: map[string]*models.UserQuota{}}

	c := newTestComposer(sampler, &fakeExams{}, subjects, quotas)

	result, err := c.Compose(context.Background(), ComposeParams{
		ExamBodyID:    "waec",
		TrackID:       "science",
		QuestionCount: 10,
		UserID:        "user-1",
		Tier:          models.TierPremium,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Success {
		t.Fatal("Expected failure for a track with no subjects")
	}
}

func TestComposeNoQuestionsForExamBody(t *testing.T) {
	sampler := &fakeSampler{pools: map[string][]models.Question{}}
	quotas := &fakeQuotas{records: map[string]*models.UserQuota{}}

	c := newTestComposer(sampler, &fakeExams{}, &fakeSubjects{}, quotas)

	result, err := c.Compose(context.Background(), ComposeParams{
		ExamBodyID:    "waec",
		SubjectIDs:    []string{"math"},
		QuestionCount: 10,
		UserID:        "user-1",
		Tier:          models.TierPremium,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Success {
		t.Fatal("Expected failure for an empty question pool")
	}
}

func TestComposeRecordsGeneration(t *testing.T) {
	sampler := &fakeSampler{pools: map[string][]models.Question{
		"math": questionPool("math", 20),
	}}
	quotas := &fakeQuotas{records: map[string]*models.UserQuota{}}

	c := newTestComposer(sampler, &fakeExams{}, &fakeSubjects{}, quotas)

	_, err := c.Compose(context.Background(), ComposeParams{
		ExamBodyID:    "waec",
		SubjectIDs:    []string{"math"},
		QuestionCount: 10,
		UserID:        "user-1",
		Tier:          models.TierFree,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if quotas.records["user-1"].MonthlyExamCount != 1 {
		t.Errorf("Expected monthly count 1 after generation, got %d", quotas.records["user-1"].MonthlyExamCount)
	}
}
