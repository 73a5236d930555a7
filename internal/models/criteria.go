package models

// Order keys accepted by question filtering.
const (
	OrderCreatedAt  = "createdAt"
	OrderDifficulty = "difficulty"
	OrderUsageCount = "usageCount"
	OrderRandom     = "random"
)

// QuestionCriteria narrows a question query. TrackID and SubjectIDs are
// mutually exclusive; a track is expanded to its subjects before querying.
// Status defaults to {live} when empty so public queries never see drafts
// unless they ask.
type QuestionCriteria struct {
	ExamBodyID string           `json:"exam_body_id,omitempty" form:"exam_body_id"`
	ExamTypeID string           `json:"exam_type_id,omitempty" form:"exam_type_id"`
	TrackID    string           `json:"track_id,omitempty" form:"track_id"`
	SubjectIDs []string         `json:"subject_ids,omitempty" form:"subject_ids"`
	SyllabusID string           `json:"syllabus_id,omitempty" form:"syllabus_id"`
	TopicID    string           `json:"topic_id,omitempty" form:"topic_id"`
	SubtopicID string           `json:"subtopic_id,omitempty" form:"subtopic_id"`
	Difficulty []Difficulty     `json:"difficulty,omitempty" form:"difficulty"`
	Type       []QuestionType   `json:"type,omitempty" form:"type"`
	Status     []QuestionStatus `json:"status,omitempty" form:"status"`
	Year       string           `json:"year,omitempty" form:"year"`
	Source     string           `json:"source,omitempty" form:"source"`
	Tags       []string         `json:"tags,omitempty" form:"tags"`
	Search     string           `json:"search,omitempty" form:"search"`
	Limit      int              `json:"limit,omitempty" form:"limit"`
	Offset     int              `json:"offset,omitempty" form:"offset"`
	OrderBy    string           `json:"order_by,omitempty" form:"order_by"`
	OrderDir   string           `json:"order_dir,omitempty" form:"order_dir"`
}

// FilterResult is always well-formed: a failed or impossible query comes
// back as zero questions with TotalCount 0, never as an error.
type FilterResult struct {
	Questions      []Question             `json:"questions"`
	TotalCount     int64                  `json:"total_count"`
	AppliedFilters map[string]interface{} `json:"applied_filters"`
}

// EmptyFilterResult builds the degenerate result used by short-circuits
// and fail-open paths.
func EmptyFilterResult(applied map[string]interface{}) FilterResult {
	return FilterResult{
		Questions:      []Question{},
		TotalCount:     0,
		AppliedFilters: applied,
	}
}
