package models

import "time"

// QuestionVersion is an immutable snapshot of a question taken before a
// sensitive lifecycle transition or a restore. Versions are append-only.
type QuestionVersion struct {
	ID         string `bson:"_id,omitempty" json:"id"`
	QuestionID string `bson:"question_id" json:"question_id"`
	Version    int    `bson:"version" json:"version"`

	Text          string       `bson:"text" json:"text"`
	Options       []Option     `bson:"options" json:"options"`
	CorrectAnswer string       `bson:"correct_answer" json:"correct_answer"`
	MarkingGuide  string       `bson:"marking_guide,omitempty" json:"marking_guide,omitempty"`
	Type          QuestionType `bson:"type" json:"type"`
	Difficulty    Difficulty   `bson:"difficulty" json:"difficulty"`
	Marks         int          `bson:"marks" json:"marks"`

	ExamBodyID string `bson:"exam_body_id" json:"exam_body_id"`
	ExamTypeID string `bson:"exam_type_id,omitempty" json:"exam_type_id,omitempty"`
	SubjectID  string `bson:"subject_id" json:"subject_id"`
	CategoryID string `bson:"category_id,omitempty" json:"category_id,omitempty"`
	SyllabusID string `bson:"syllabus_id,omitempty" json:"syllabus_id,omitempty"`
	TopicID    string `bson:"topic_id,omitempty" json:"topic_id,omitempty"`
	SubtopicID string `bson:"subtopic_id,omitempty" json:"subtopic_id,omitempty"`

	EditedBy  string    `bson:"edited_by" json:"edited_by"`
	Reason    string    `bson:"reason,omitempty" json:"reason,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// SnapshotOf copies the versionable fields of a question into a new
// version record. The caller assigns the version number.
func SnapshotOf(q *Question, editedBy, reason string) *QuestionVersion {
	opts := make([]Option, len(q.Options))
	copy(opts, q.Options)
	return &QuestionVersion{
		QuestionID:    q.ID,
		Text:          q.Text,
		Options:       opts,
		CorrectAnswer: q.CorrectAnswer,
		MarkingGuide:  q.MarkingGuide,
		Type:          q.Type,
		Difficulty:    q.Difficulty,
		Marks:         q.Marks,
		ExamBodyID:    q.ExamBodyID,
		ExamTypeID:    q.ExamTypeID,
		SubjectID:     q.SubjectID,
		CategoryID:    q.CategoryID,
		SyllabusID:    q.SyllabusID,
		TopicID:       q.TopicID,
		SubtopicID:    q.SubtopicID,
		EditedBy:      editedBy,
		Reason:        reason,
		CreatedAt:     time.Now(),
	}
}
