package composer

import (
	"context"
	"fmt"
	"log"
	"math/rand"

	"prep-service/internal/event"
	"prep-service/internal/models"
	"prep-service/internal/service"
)

// QuestionSampler is the storage slice the composer draws from. Sampling
// is the store's native random primitive, bounded per call; a short pool
// yields fewer questions, not an error.
type QuestionSampler interface {
	CountByScope(ctx context.Context, examBodyID string, subjectIDs []string) (int64, error)
	SampleSubject(ctx context.Context, examBodyID, subjectID string, count int, excludeIDs []string) ([]models.Question, error)
	SamplePool(ctx context.Context, examBodyID string, subjectIDs []string, count int, excludeIDs []string) ([]models.Question, error)
	IncrementUsage(ctx context.Context, ids []string) error
}

// ExamSink persists composed exams.
type ExamSink interface {
	Create(ctx context.Context, exam *models.Exam) error
}

type ComposeParams struct {
	Title         string                 `json:"title"`
	ExamBodyID    string                 `json:"exam_body_id"`
	ExamTypeID    string                 `json:"exam_type_id"`
	TrackID       string                 `json:"track_id"`
	SubjectIDs    []string               `json:"subject_ids"`
	QuestionCount int                    `json:"question_count"`
	Overrides     map[string]interface{} `json:"overrides"`
	IsPractice    bool                   `json:"is_practice"`
	UserID        string                 `json:"user_id"`
	Tier          models.Tier            `json:"tier"`
}

// ComposeResult reports one composition. Business rejections (quota, tier
// cap, empty track, empty pool) come back with Success false and an
// actionable message; only persistence write faults surface as errors.
type ComposeResult struct {
	Success   bool                  `json:"success"`
	Message   string                `json:"message,omitempty"`
	Exam      *models.Exam          `json:"exam,omitempty"`
	Requested int                   `json:"requested"`
	Realized  int                   `json:"realized"`
	Quota     *models.QuotaDecision `json:"quota,omitempty"`
}

// Composer builds exams: rules resolution, track expansion, stratified
// per-subject sampling, backfill, shuffle, persist.
type Composer struct {
	sampler  QuestionSampler
	exams    ExamSink
	resolver *service.SubjectResolver
	rules    *service.RulesEngine
	ledger   *service.TierQuotaLedger
	events   *event.EventPublisher
}

func NewComposer(sampler QuestionSampler, exams ExamSink, resolver *service.SubjectResolver, rules *service.RulesEngine, ledger *service.TierQuotaLedger, events *event.EventPublisher) *Composer {
	return &Composer{
		sampler:  sampler,
		exams:    exams,
		resolver: resolver,
		rules:    rules,
		ledger:   ledger,
		events:   events,
	}
}

func (c *Composer) Compose(ctx context.Context, p ComposeParams) (ComposeResult, error) {
	resolved := c.rules.Resolve(ctx, p.ExamTypeID, p.TrackID, p.Overrides)

	requested := p.QuestionCount
	if requested <= 0 {
		requested = resolved.QuestionCount()
	}

	// Tier cap is enforced before any sampling happens.
	if maxPerExam := c.ledger.MaxQuestionsPerExam(p.Tier); maxPerExam != models.Unlimited && requested > maxPerExam {
		return ComposeResult{
			Success:   false,
			Message:   fmt.Sprintf("requested %d questions exceeds the %d-question limit for tier %s", requested, maxPerExam, p.Tier),
			Requested: requested,
		}, nil
	}

	decision, err := c.ledger.CheckGenerationLimit(ctx, p.UserID, p.Tier)
	if err != nil {
		return ComposeResult{}, err
	}
	if !decision.Allowed {
		c.events.Publish("exam.quota_rejected", map[string]interface{}{
			"user_id": p.UserID,
			"reason":  decision.Reason,
		})
		return ComposeResult{
			Success:   false,
			Message:   decision.Reason,
			Requested: requested,
			Quota:     &decision,
		}, nil
	}

	subjectIDs := p.SubjectIDs
	if p.TrackID != "" {
		subjectIDs = c.resolver.ResolveSubjectIDs(ctx, p.TrackID)
		if len(subjectIDs) == 0 {
			return ComposeResult{
				Success:   false,
				Message:   fmt.Sprintf("no subjects available for track %s", p.TrackID),
				Requested: requested,
			}, nil
		}
	}

	available, err := c.sampler.CountByScope(ctx, p.ExamBodyID, subjectIDs)
	if err != nil {
		log.Printf("composer: pool count for %s failed: %v", p.ExamBodyID, err)
		available = 0
	}
	if available == 0 {
		return ComposeResult{
			Success:   false,
			Message:   fmt.Sprintf("no questions available for exam body %s", p.ExamBodyID),
			Requested: requested,
		}, nil
	}

	selected := c.draw(ctx, p.ExamBodyID, subjectIDs, requested)

	if len(selected) == 0 {
		return ComposeResult{
			Success:   false,
			Message:   fmt.Sprintf("no questions available for exam body %s", p.ExamBodyID),
			Requested: requested,
		}, nil
	}

	rand.Shuffle(len(selected), func(i, j int) {
		selected[i], selected[j] = selected[j], selected[i]
	})

	ids := make([]string, len(selected))
	totalMarks := 0
	for i, q := range selected {
		ids[i] = q.ID
		totalMarks += q.Marks
	}

	exam := &models.Exam{
		Title:       p.Title,
		ExamBodyID:  p.ExamBodyID,
		ExamTypeID:  p.ExamTypeID,
		CategoryID:  p.TrackID,
		QuestionIDs: ids,
		TotalCount:  len(ids),
		TotalMarks:  totalMarks,
		Duration:    resolved.Duration(),
		IsPractice:  p.IsPractice,
		CreatedBy:   p.UserID,
	}
	if err := c.exams.Create(ctx, exam); err != nil {
		return ComposeResult{}, fmt.Errorf("failed to persist exam: %w", err)
	}

	if err := c.sampler.IncrementUsage(ctx, ids); err != nil {
		log.Printf("composer: usage increment failed for exam %s: %v", exam.ID, err)
	}
	if err := c.ledger.RecordGeneration(ctx, p.UserID, p.Tier); err != nil {
		log.Printf("composer: quota increment failed for %s: %v", p.UserID, err)
	}

	c.events.Publish("exam.generated", map[string]interface{}{
		"exam_id":   exam.ID,
		"user_id":   p.UserID,
		"requested": requested,
		"realized":  len(ids),
	})

	result := ComposeResult{
		Success:   true,
		Exam:      exam,
		Requested: requested,
		Realized:  len(ids),
	}
	if result.Realized < requested {
		result.Message = fmt.Sprintf("only %d of %d requested questions were available", result.Realized, requested)
	}
	return result, nil
}

// draw performs the stratified pass and backfills any shortfall from the
// combined remaining pool, excluding already-selected ids.
func (c *Composer) draw(ctx context.Context, examBodyID string, subjectIDs []string, total int) []models.Question {
	selected := []models.Question{}
	seen := map[string]bool{}

	if len(subjectIDs) > 0 {
		for _, target := range EvenTargets(subjectIDs, total) {
			drawn, err := c.sampler.SampleSubject(ctx, examBodyID, target.SubjectID, target.Target, keys(seen))
			if err != nil {
				log.Printf("composer: sampling subject %s failed: %v", target.SubjectID, err)
				continue
			}
			for _, q := range drawn {
				if !seen[q.ID] {
					seen[q.ID] = true
					selected = append(selected, q)
				}
			}
		}
	}

	if shortfall := total - len(selected); shortfall > 0 {
		backfill, err := c.sampler.SamplePool(ctx, examBodyID, subjectIDs, shortfall, keys(seen))
		if err != nil {
			log.Printf("composer: backfill sampling failed: %v", err)
			return selected
		}
		for _, q := range backfill {
			if !seen[q.ID] {
				seen[q.ID] = true
				selected = append(selected, q)
			}
		}
	}
	return selected
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
