package service

import (
	"context"
	"log"

	"prep-service/internal/models"
)

// QuestionSource is the query slice the filter needs.
type QuestionSource interface {
	Filter(ctx context.Context, c models.QuestionCriteria) ([]models.Question, int64, error)
}

// QuestionFilter answers criteria queries over the question bank. It is a
// pure read: storage faults are logged and become empty results so that
// generation pipelines see "insufficient questions" rather than a crash.
type QuestionFilter struct {
	questions QuestionSource
	resolver  *SubjectResolver
}

func NewQuestionFilter(questions QuestionSource, resolver *SubjectResolver) *QuestionFilter {
	return &QuestionFilter{questions: questions, resolver: resolver}
}

// Filter resolves track-based criteria through the subject resolver, then
// queries. An empty track resolution short-circuits to an empty result
// instead of issuing a query with an impossible IN clause.
func (f *QuestionFilter) Filter(ctx context.Context, c models.QuestionCriteria) models.FilterResult {
	// Public-facing default: never surface non-live content unless the
	// caller explicitly asks for other statuses.
	if len(c.Status) == 0 {
		c.Status = []models.QuestionStatus{models.StatusLive}
	}

	applied := appliedFilters(c)

	if c.TrackID != "" {
		subjectIDs := f.resolver.ResolveSubjectIDs(ctx, c.TrackID)
		if len(subjectIDs) == 0 {
			return models.EmptyFilterResult(applied)
		}
		c.SubjectIDs = subjectIDs
		c.TrackID = ""
		applied["resolved_subject_ids"] = subjectIDs
	}

	questions, total, err := f.questions.Filter(ctx, c)
	if err != nil {
		log.Printf("question filter: query failed: %v", err)
		return models.EmptyFilterResult(applied)
	}

	return models.FilterResult{
		Questions:      questions,
		TotalCount:     total,
		AppliedFilters: applied,
	}
}

func appliedFilters(c models.QuestionCriteria) map[string]interface{} {
	applied := map[string]interface{}{
		"status": c.Status,
	}
	if c.ExamBodyID != "" {
		applied["exam_body_id"] = c.ExamBodyID
	}
	if c.TrackID != "" {
		applied["track_id"] = c.TrackID
	}
	if len(c.SubjectIDs) > 0 {
		applied["subject_ids"] = c.SubjectIDs
	}
	if c.SyllabusID != "" {
		applied["syllabus_id"] = c.SyllabusID
	}
	if c.TopicID != "" {
		applied["topic_id"] = c.TopicID
	}
	if c.SubtopicID != "" {
		applied["subtopic_id"] = c.SubtopicID
	}
	if len(c.Difficulty) > 0 {
		applied["difficulty"] = c.Difficulty
	}
	if len(c.Type) > 0 {
		applied["type"] = c.Type
	}
	if c.Year != "" {
		applied["year"] = c.Year
	}
	if c.Source != "" {
		applied["source"] = c.Source
	}
	if len(c.Tags) > 0 {
		applied["tags"] = c.Tags
	}
	if c.Search != "" {
		applied["search"] = c.Search
	}
	if c.OrderBy != "" {
		applied["order_by"] = c.OrderBy
	}
	return applied
}
