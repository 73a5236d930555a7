package service

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"prep-service/internal/event"
	"prep-service/internal/models"
)

// validTransitions is the complete editorial state machine. Anything not
// listed here is rejected.
var validTransitions = map[models.QuestionStatus][]models.QuestionStatus{
	models.StatusDraft:    {models.StatusReviewed, models.StatusArchived},
	models.StatusReviewed: {models.StatusDraft, models.StatusApproved, models.StatusArchived},
	models.StatusApproved: {models.StatusLive, models.StatusReviewed},
	models.StatusLive:     {models.StatusArchived},
	models.StatusArchived: {models.StatusDraft},
}

// snapshotStates are the destinations that require a version snapshot of
// the pre-transition state.
var snapshotStates = map[models.QuestionStatus]bool{
	models.StatusApproved: true,
	models.StatusLive:     true,
	models.StatusArchived: true,
}

// IsValidTransition is a pure table lookup.
func IsValidTransition(from, to models.QuestionStatus) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// GetValidTransitions enumerates the legal next states for UI guidance.
func GetValidTransitions(from models.QuestionStatus) []models.QuestionStatus {
	next := validTransitions[from]
	out := make([]models.QuestionStatus, len(next))
	copy(out, next)
	return out
}

// LifecycleStore is the question persistence slice the lifecycle needs.
type LifecycleStore interface {
	FindByID(ctx context.Context, id string) (*models.Question, error)
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
}

// VersionStore persists immutable snapshots.
type VersionStore interface {
	Create(ctx context.Context, v *models.QuestionVersion) error
	FindByVersion(ctx context.Context, questionID string, version int) (*models.QuestionVersion, error)
	FindByQuestion(ctx context.Context, questionID string) ([]models.QuestionVersion, error)
}

// TransitionResult reports a lifecycle operation. Business rejections
// (unknown question, illegal edge, unpublishable content) come back here
// with Success false; only persistence faults surface as errors.
type TransitionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type BulkFailure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// BulkTransitionResult reports a best-effort batch. Prior successes stay
// committed when later items fail.
type BulkTransitionResult struct {
	SucceededCount int           `json:"succeeded_count"`
	Succeeded      []string      `json:"succeeded"`
	Failed         []BulkFailure `json:"failed"`
}

// QuestionLifecycle governs editorial status and versioning.
type QuestionLifecycle struct {
	questions LifecycleStore
	versions  VersionStore
	events    *event.EventPublisher
}

func NewQuestionLifecycle(questions LifecycleStore, versions VersionStore, events *event.EventPublisher) *QuestionLifecycle {
	return &QuestionLifecycle{questions: questions, versions: versions, events: events}
}

// TransitionStatus validates the move against the persisted status,
// snapshots the pre-transition state when entering approved/live/archived,
// then updates status and the role-appropriate actor fields. The snapshot
// and the update are separate writes; a crash between them leaves an
// orphan version, never a lost one.
func (l *QuestionLifecycle) TransitionStatus(ctx context.Context, questionID string, newStatus models.QuestionStatus, userID, reason string) (TransitionResult, error) {
	question, err := l.questions.FindByID(ctx, questionID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return TransitionResult{Success: false, Message: "question not found"}, nil
		}
		return TransitionResult{}, fmt.Errorf("failed to load question %s: %w", questionID, err)
	}

	if !IsValidTransition(question.Status, newStatus) {
		return TransitionResult{
			Success: false,
			Message: fmt.Sprintf("invalid transition from %s to %s", question.Status, newStatus),
		}, nil
	}

	if newStatus == models.StatusLive && !question.CanGoLive() {
		return TransitionResult{
			Success: false,
			Message: "question cannot go live: options or correct answer are incomplete",
		}, nil
	}

	if snapshotStates[newStatus] {
		if err := l.versions.Create(ctx, models.SnapshotOf(question, userID, reason)); err != nil {
			return TransitionResult{}, fmt.Errorf("failed to snapshot question %s: %w", questionID, err)
		}
	}

	fields := map[string]interface{}{"status": newStatus}
	now := time.Now()
	switch newStatus {
	case models.StatusReviewed:
		fields["reviewed_by"] = userID
		fields["reviewed_at"] = now
	case models.StatusApproved:
		fields["approved_by"] = userID
		fields["approved_at"] = now
	case models.StatusArchived:
		fields["archived_by"] = userID
		fields["archived_at"] = now
		fields["archive_reason"] = reason
	}

	if err := l.questions.UpdateFields(ctx, questionID, fields); err != nil {
		return TransitionResult{}, fmt.Errorf("failed to update question %s: %w", questionID, err)
	}

	l.events.Publish("question.transition", map[string]interface{}{
		"question_id": questionID,
		"from":        question.Status,
		"to":          newStatus,
		"user_id":     userID,
	})

	return TransitionResult{Success: true}, nil
}

// BulkTransition applies TransitionStatus across a list, best-effort. It
// is not transactional: items that failed are reported per id, items that
// succeeded stay committed.
func (l *QuestionLifecycle) BulkTransition(ctx context.Context, questionIDs []string, newStatus models.QuestionStatus, userID, reason string) BulkTransitionResult {
	result := BulkTransitionResult{Succeeded: []string{}, Failed: []BulkFailure{}}
	for _, id := range questionIDs {
		res, err := l.TransitionStatus(ctx, id, newStatus, userID, reason)
		if err != nil {
			result.Failed = append(result.Failed, BulkFailure{ID: id, Reason: err.Error()})
			continue
		}
		if !res.Success {
			result.Failed = append(result.Failed, BulkFailure{ID: id, Reason: res.Message})
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}
	result.SucceededCount = len(result.Succeeded)
	return result
}

// RestoreVersion rewinds a question's content to a stored version. The
// current state is snapshotted first so the restore is itself recoverable.
// Options are replaced wholesale from the version; marking guides are not
// restored.
func (l *QuestionLifecycle) RestoreVersion(ctx context.Context, questionID string, versionNumber int, restoredBy string) (TransitionResult, error) {
	question, err := l.questions.FindByID(ctx, questionID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return TransitionResult{Success: false, Message: "question not found"}, nil
		}
		return TransitionResult{}, fmt.Errorf("failed to load question %s: %w", questionID, err)
	}

	target, err := l.versions.FindByVersion(ctx, questionID, versionNumber)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return TransitionResult{Success: false, Message: fmt.Sprintf("version %d not found", versionNumber)}, nil
		}
		return TransitionResult{}, fmt.Errorf("failed to load version %d of %s: %w", versionNumber, questionID, err)
	}

	reason := fmt.Sprintf("pre-restore snapshot before reverting to version %d", versionNumber)
	if err := l.versions.Create(ctx, models.SnapshotOf(question, restoredBy, reason)); err != nil {
		return TransitionResult{}, fmt.Errorf("failed to snapshot question %s: %w", questionID, err)
	}

	opts := make([]models.Option, len(target.Options))
	copy(opts, target.Options)
	fields := map[string]interface{}{
		"text":           target.Text,
		"options":        opts,
		"correct_answer": target.CorrectAnswer,
		"type":           target.Type,
		"difficulty":     target.Difficulty,
		"marks":          target.Marks,
		"exam_body_id":   target.ExamBodyID,
		"exam_type_id":   target.ExamTypeID,
		"subject_id":     target.SubjectID,
		"category_id":    target.CategoryID,
		"syllabus_id":    target.SyllabusID,
		"topic_id":       target.TopicID,
		"subtopic_id":    target.SubtopicID,
	}
	if err := l.questions.UpdateFields(ctx, questionID, fields); err != nil {
		return TransitionResult{}, fmt.Errorf("failed to restore question %s: %w", questionID, err)
	}

	l.events.Publish("question.restore", map[string]interface{}{
		"question_id": questionID,
		"version":     versionNumber,
		"user_id":     restoredBy,
	})

	return TransitionResult{Success: true}, nil
}

// Versions lists a question's snapshot history, newest first.
func (l *QuestionLifecycle) Versions(ctx context.Context, questionID string) ([]models.QuestionVersion, error) {
	return l.versions.FindByQuestion(ctx, questionID)
}
