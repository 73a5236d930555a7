package models

import "time"

type QuestionStatus string

const (
	StatusDraft    QuestionStatus = "draft"
	StatusReviewed QuestionStatus = "reviewed"
	StatusApproved QuestionStatus = "approved"
	StatusLive     QuestionStatus = "live"
	StatusArchived QuestionStatus = "archived"
)

type QuestionType string

const (
	TypeMultipleChoice QuestionType = "multiple-choice"
	TypeTrueFalse      QuestionType = "true-false"
	TypeEssay          QuestionType = "essay"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

type Option struct {
	ID   string `bson:"id" json:"id"`
	Text string `bson:"text" json:"text"`
}

type Question struct {
	ID            string         `bson:"_id,omitempty" json:"id"`
	Text          string         `bson:"text" json:"text"`
	Options       []Option       `bson:"options" json:"options"`
	CorrectAnswer string         `bson:"correct_answer" json:"correct_answer"`
	MarkingGuide  string         `bson:"marking_guide,omitempty" json:"marking_guide,omitempty"`
	Type          QuestionType   `bson:"type" json:"type"`
	Difficulty    Difficulty     `bson:"difficulty" json:"difficulty"`
	Status        QuestionStatus `bson:"status" json:"status"`
	Marks         int            `bson:"marks" json:"marks"`

	ExamBodyID string `bson:"exam_body_id" json:"exam_body_id"`
	ExamTypeID string `bson:"exam_type_id,omitempty" json:"exam_type_id,omitempty"`
	SubjectID  string `bson:"subject_id" json:"subject_id"`
	CategoryID string `bson:"category_id,omitempty" json:"category_id,omitempty"`
	SyllabusID string `bson:"syllabus_id,omitempty" json:"syllabus_id,omitempty"`
	TopicID    string `bson:"topic_id,omitempty" json:"topic_id,omitempty"`
	SubtopicID string `bson:"subtopic_id,omitempty" json:"subtopic_id,omitempty"`

	Year   string   `bson:"year,omitempty" json:"year,omitempty"`
	Source string   `bson:"source,omitempty" json:"source,omitempty"`
	Tags   []string `bson:"tags,omitempty" json:"tags,omitempty"`

	UsageCount int `bson:"usage_count" json:"usage_count"`

	CreatedBy string `bson:"created_by" json:"created_by"`

	ReviewedBy    string     `bson:"reviewed_by,omitempty" json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time `bson:"reviewed_at,omitempty" json:"reviewed_at,omitempty"`
	ApprovedBy    string     `bson:"approved_by,omitempty" json:"approved_by,omitempty"`
	ApprovedAt    *time.Time `bson:"approved_at,omitempty" json:"approved_at,omitempty"`
	ArchivedBy    string     `bson:"archived_by,omitempty" json:"archived_by,omitempty"`
	ArchivedAt    *time.Time `bson:"archived_at,omitempty" json:"archived_at,omitempty"`
	ArchiveReason string     `bson:"archive_reason,omitempty" json:"archive_reason,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasValidAnswer reports whether the correct-answer reference resolves to
// exactly one of the question's own options.
func (q *Question) HasValidAnswer() bool {
	matches := 0
	for _, opt := range q.Options {
		if opt.ID == q.CorrectAnswer {
			matches++
		}
	}
	return matches == 1
}

// CanGoLive checks the structural invariant for publishable questions: a
// multiple-choice question needs at least two options and a resolvable
// correct answer.
func (q *Question) CanGoLive() bool {
	switch q.Type {
	case TypeMultipleChoice:
		return len(q.Options) >= 2 && q.HasValidAnswer()
	case TypeTrueFalse:
		return len(q.Options) == 2 && q.HasValidAnswer()
	default:
		return q.Text != ""
	}
}
