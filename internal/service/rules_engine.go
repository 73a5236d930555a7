package service

import (
	"context"
	"fmt"
	"log"

	"prep-service/internal/models"
)

// RuleSource is the persistence slice the engine needs.
type RuleSource interface {
	FindActiveByScope(ctx context.Context, examTypeID, categoryID string) ([]models.ExamRule, error)
}

// RulesEngine resolves one effective configuration per exam by merging
// exam-type rules, track rules and caller overrides, ascending priority.
type RulesEngine struct {
	rules RuleSource
}

func NewRulesEngine(rules RuleSource) *RulesEngine {
	return &RulesEngine{rules: rules}
}

const overridePriority = 999

// Resolve merges three tiers shallowly, later writers winning per key:
// exam-type rules, then track rules, then overrides. Nil ruleset values are
// skipped so a rule can be partial. Nested objects replace wholesale. On
// any storage fault the engine hands back safe defaults rather than
// failing the request.
func (e *RulesEngine) Resolve(ctx context.Context, examTypeID, trackID string, overrides map[string]interface{}) *models.EffectiveRules {
	resolved := &models.EffectiveRules{
		Config:       map[string]interface{}{},
		AppliedRules: []models.AppliedRule{},
	}

	examTypeRules, err := e.rules.FindActiveByScope(ctx, examTypeID, "")
	if err != nil {
		log.Printf("rules engine: exam-type rules for %s failed: %v", examTypeID, err)
		return fallbackRules()
	}
	for _, rule := range examTypeRules {
		applyRule(resolved, rule, "exam-type")
	}

	if trackID != "" {
		trackRules, err := e.rules.FindActiveByScope(ctx, examTypeID, trackID)
		if err != nil {
			log.Printf("rules engine: track rules for %s/%s failed: %v", examTypeID, trackID, err)
			return fallbackRules()
		}
		for _, rule := range trackRules {
			applyRule(resolved, rule, "track")
		}
	}

	if len(overrides) > 0 {
		for k, v := range overrides {
			if v == nil {
				continue
			}
			resolved.Config[k] = v
		}
		resolved.AppliedRules = append(resolved.AppliedRules, models.AppliedRule{
			ID:       "overrides",
			Name:     "caller overrides",
			Priority: overridePriority,
			Source:   "override",
		})
	}

	return resolved
}

func applyRule(resolved *models.EffectiveRules, rule models.ExamRule, source string) {
	for k, v := range rule.Ruleset {
		if v == nil {
			continue
		}
		resolved.Config[k] = v
	}
	resolved.AppliedRules = append(resolved.AppliedRules, models.AppliedRule{
		ID:       rule.ID,
		Name:     rule.Name,
		Priority: rule.Priority,
		Source:   source,
	})
}

func fallbackRules() *models.EffectiveRules {
	return &models.EffectiveRules{
		Config: map[string]interface{}{
			"duration":      models.DefaultDuration,
			"questionCount": models.DefaultQuestionCount,
			"passingScore":  models.DefaultPassingScore,
			"randomization": true,
		},
		AppliedRules: []models.AppliedRule{{
			ID:       "fallback",
			Name:     "engine defaults",
			Priority: 0,
			Source:   "fallback",
		}},
	}
}

// ValidationReport separates blocking violations from advisory warnings.
type ValidationReport struct {
	Valid      bool     `json:"valid"`
	Violations []string `json:"violations"`
	Warnings   []string `json:"warnings"`
}

// ValidateExamConfiguration checks a realized exam against its resolved
// rules. Count mismatches are violations; distribution checks are only
// reported as warnings.
func (e *RulesEngine) ValidateExamConfiguration(rules *models.EffectiveRules, questionIDs []string) ValidationReport {
	report := ValidationReport{Violations: []string{}, Warnings: []string{}}

	want := rules.QuestionCount()
	if len(questionIDs) != want {
		report.Violations = append(report.Violations,
			fmt.Sprintf("question count %d does not match configured count %d", len(questionIDs), want))
	}
	if dist := rules.DifficultyDistribution(); dist != nil {
		report.Warnings = append(report.Warnings, "difficulty distribution not verified against selected questions")
	}

	report.Valid = len(report.Violations) == 0
	return report
}

// ExamResult is the graded outcome of an attempt.
type ExamResult struct {
	Score        float64 `json:"score"`
	Total        float64 `json:"total"`
	Percentage   float64 `json:"percentage"`
	PassingScore float64 `json:"passing_score"`
	Passed       bool    `json:"passed"`
	Grade        string  `json:"grade"`
}

// EvaluateExamResults computes pass/fail against the resolved passing
// score and assigns a letter grade from fixed percentage bands.
func (e *RulesEngine) EvaluateExamResults(rules *models.EffectiveRules, score, total float64) ExamResult {
	result := ExamResult{
		Score:        score,
		Total:        total,
		PassingScore: rules.PassingScore(),
	}
	if total > 0 {
		result.Percentage = score / total * 100
	}
	result.Passed = result.Percentage >= result.PassingScore
	result.Grade = letterGrade(result.Percentage)
	return result
}

func letterGrade(pct float64) string {
	switch {
	case pct >= 90:
		return "A+"
	case pct >= 80:
		return "A"
	case pct >= 70:
		return "B"
	case pct >= 60:
		return "C"
	case pct >= 50:
		return "D"
	default:
		return "F"
	}
}
