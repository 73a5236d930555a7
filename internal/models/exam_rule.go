package models

import "time"

// ExamRule is a prioritized configuration fragment scoped to an exam type
// and optionally a track. The ruleset is free-form; resolution merges
// fragments shallowly in priority order.
type ExamRule struct {
	ID         string                 `bson:"_id,omitempty" json:"id"`
	Name       string                 `bson:"name" json:"name"`
	ExamTypeID string                 `bson:"exam_type_id" json:"exam_type_id"`
	CategoryID string                 `bson:"category_id,omitempty" json:"category_id,omitempty"`
	Priority   int                    `bson:"priority" json:"priority"`
	Ruleset    map[string]interface{} `bson:"ruleset" json:"ruleset"`
	IsActive   bool                   `bson:"is_active" json:"is_active"`
	CreatedBy  string                 `bson:"created_by,omitempty" json:"created_by,omitempty"`
	CreatedAt  time.Time              `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time              `bson:"updated_at" json:"updated_at"`
}

// AppliedRule records one rule's participation in a resolution, for audit.
type AppliedRule struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Priority int    `json:"priority"`
	Source   string `json:"source"`
}

// EffectiveRules is the merged configuration for one exam: exam-type rules,
// then track rules, then caller overrides, later writers winning key by key.
// Nested values (difficultyDistribution and friends) are replaced wholesale,
// never merged field-by-field.
type EffectiveRules struct {
	Config       map[string]interface{} `json:"config"`
	AppliedRules []AppliedRule          `json:"applied_rules"`
}

const (
	DefaultDuration      = 180
	DefaultQuestionCount = 50
	DefaultPassingScore  = 50.0
)

func (r *EffectiveRules) Duration() int {
	return intValue(r.Config["duration"], DefaultDuration)
}

func (r *EffectiveRules) QuestionCount() int {
	return intValue(r.Config["questionCount"], DefaultQuestionCount)
}

func (r *EffectiveRules) PassingScore() float64 {
	return floatValue(r.Config["passingScore"], DefaultPassingScore)
}

func (r *EffectiveRules) Randomization() bool {
	if v, ok := r.Config["randomization"].(bool); ok {
		return v
	}
	return true
}

func (r *EffectiveRules) DifficultyDistribution() map[string]interface{} {
	if v, ok := r.Config["difficultyDistribution"].(map[string]interface{}); ok {
		return v
	}
	return nil
}

// intValue tolerates the numeric types the bson decoder may hand back for a
// free-form ruleset.
func intValue(v interface{}, fallback int) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return fallback
	}
}

func floatValue(v interface{}, fallback float64) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return fallback
	}
}
