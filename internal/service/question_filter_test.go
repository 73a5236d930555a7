package service

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"

	"prep-service/internal/models"
)

type stubQuestionSource struct {
	questions []models.Question
	lastQuery models.QuestionCriteria
	fail      bool
}

func (s *stubQuestionSource) Filter(ctx context.Context, c models.QuestionCriteria) ([]models.Question, int64, error) {
	s.lastQuery = c
	if s.fail {
		return nil, 0, errors.New("socket timeout")
	}
	return s.questions, int64(len(s.questions)), nil
}

type stubSubjectSource struct {
	categories map[string]models.Category
	subjects   []models.Subject
}

func (s *stubSubjectSource) FindCategory(ctx context.Context, id string) (*models.Category, error) {
	if c, ok := s.categories[id]; ok {
		return &c, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (s *stubSubjectSource) FindSubject(ctx context.Context, id string) (*models.Subject, error) {
	for _, sub := range s.subjects {
		if sub.ID == id {
			return &sub, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (s *stubSubjectSource) FindByCategory(ctx context.Context, categoryID, examBodyID string) ([]models.Subject, error) {
	out := []models.Subject{}
	for _, sub := range s.subjects {
		if sub.CategoryID == categoryID && sub.ExamBodyID == examBodyID {
			out = append(out, sub)
		}
	}
	return out, nil
}

func TestFilterDefaultsToLiveStatus(t *testing.T) {
	source := &stubQuestionSource{}
	filter := NewQuestionFilter(source, NewSubjectResolver(&stubSubjectSource{}))

	filter.Filter(context.Background(), models.QuestionCriteria{ExamBodyID: "waec"})

	if len(source.lastQuery.Status) != 1 || source.lastQuery.Status[0] != models.StatusLive {
		t.Errorf("Expected default status {live}, got %v", source.lastQuery.Status)
	}
}

func TestFilterKeepsExplicitStatus(t *testing.T) {
	source := &stubQuestionSource{}
	filter := NewQuestionFilter(source, NewSubjectResolver(&stubSubjectSource{}))

	filter.Filter(context.Background(), models.QuestionCriteria{
		Status: []models.QuestionStatus{models.StatusDraft},
	})

	if len(source.lastQuery.Status) != 1 || source.lastQuery.Status[0] != models.StatusDraft {
		t.Errorf("Expected explicit draft status to be kept, got %v", source.lastQuery.Status)
	}
}

func TestFilterEmptyTrackShortCircuits(t *testing.T) {
	source := &stubQuestionSource{}
	subjects := &stubSubjectSource{
		categories: map[string]models.Category{
			"arts": {ID: "arts", ExamBodyID: "waec"},
		},
	}
	filter := NewQuestionFilter(source, NewSubjectResolver(subjects))

	result := filter.Filter(context.Background(), models.QuestionCriteria{TrackID: "arts"})

	if result.TotalCount != 0 || len(result.Questions) != 0 {
		t.Errorf("Expected empty result for a subject-less track, got %d/%d", len(result.Questions), result.TotalCount)
	}
	// No query is issued with an impossible IN clause.
	if source.lastQuery.TrackID != "" || len(source.lastQuery.SubjectIDs) != 0 {
		t.Error("Expected the storage query to be skipped entirely")
	}
}

func TestFilterExpandsTrackToSubjects(t *testing.T) {
	source := &stubQuestionSource{}
	subjects := &stubSubjectSource{
		categories: map[string]models.Category{
			"science": {ID: "science", ExamBodyID: "waec"},
		},
		subjects: []models.Subject{
			{ID: "math", CategoryID: "science", ExamBodyID: "waec"},
			{ID: "physics", CategoryID: "science", ExamBodyID: "waec"},
			{ID: "history", CategoryID: "arts", ExamBodyID: "waec"},
		},
	}
	filter := NewQuestionFilter(source, NewSubjectResolver(subjects))

	filter.Filter(context.Background(), models.QuestionCriteria{TrackID: "science"})

	if len(source.lastQuery.SubjectIDs) != 2 {
		t.Fatalf("Expected 2 resolved subjects, got %v", source.lastQuery.SubjectIDs)
	}
	if source.lastQuery.TrackID != "" {
		t.Error("Expected track id to be cleared after expansion")
	}
}

func TestFilterFailsOpenOnStorageFault(t *testing.T) {
	source := &stubQuestionSource{fail: true}
	filter := NewQuestionFilter(source, NewSubjectResolver(&stubSubjectSource{}))

	result := filter.Filter(context.Background(), models.QuestionCriteria{ExamBodyID: "waec"})

	if result.TotalCount != 0 {
		t.Errorf("Expected totalCount 0 on fault, got %d", result.TotalCount)
	}
	if result.Questions == nil {
		t.Error("Expected an empty slice, not nil")
	}
}

func TestResolverSubjectScopedByExamBody(t *testing.T) {
	subjects := &stubSubjectSource{
		categories: map[string]models.Category{
			"science": {ID: "science", ExamBodyID: "waec"},
		},
		subjects: []models.Subject{
			{ID: "math", CategoryID: "science", ExamBodyID: "waec"},
			{ID: "math-jamb", CategoryID: "science", ExamBodyID: "jamb"},
		},
	}
	resolver := NewSubjectResolver(subjects)

	ids := resolver.ResolveSubjectIDs(context.Background(), "science")
	if len(ids) != 1 || ids[0] != "math" {
		t.Errorf("Expected only the waec subject, got %v", ids)
	}
}

func TestTracksForSubject(t *testing.T) {
	subjects := &stubSubjectSource{
		categories: map[string]models.Category{
			"science": {ID: "science", Name: "Science", ExamBodyID: "waec"},
		},
		subjects: []models.Subject{
			{ID: "math", CategoryID: "science", ExamBodyID: "waec"},
		},
	}
	resolver := NewSubjectResolver(subjects)

	tracks := resolver.TracksForSubject(context.Background(), "math")
	if len(tracks) != 1 || tracks[0].ID != "science" {
		t.Errorf("Expected the science track, got %v", tracks)
	}

	if got := resolver.TracksForSubject(context.Background(), "missing"); len(got) != 0 {
		t.Errorf("Expected no tracks for an unknown subject, got %v", got)
	}
}
