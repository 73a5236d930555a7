package models

import "time"

type ExamStatus string

const (
	ExamStatusActive   ExamStatus = "active"
	ExamStatusArchived ExamStatus = "archived"
)

// Exam is a generated instance. The question-id list is frozen at creation;
// the only later mutation is soft archival.
type Exam struct {
	ID          string     `bson:"_id,omitempty" json:"id"`
	Title       string     `bson:"title" json:"title"`
	ExamBodyID  string     `bson:"exam_body_id" json:"exam_body_id"`
	ExamTypeID  string     `bson:"exam_type_id,omitempty" json:"exam_type_id,omitempty"`
	CategoryID  string     `bson:"category_id,omitempty" json:"category_id,omitempty"`
	QuestionIDs []string   `bson:"question_ids" json:"question_ids"`
	TotalCount  int        `bson:"total_count" json:"total_count"`
	TotalMarks  int        `bson:"total_marks" json:"total_marks"`
	Duration    int        `bson:"duration" json:"duration"`
	IsPractice  bool       `bson:"is_practice" json:"is_practice"`
	Status      ExamStatus `bson:"status" json:"status"`
	CreatedBy   string     `bson:"created_by" json:"created_by"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
}
