package models

import "testing"

func TestHasValidAnswer(t *testing.T) {
	q := &Question{
		Options:       []Option{{ID: "a"}, {ID: "b"}},
		CorrectAnswer: "b",
	}
	if !q.HasValidAnswer() {
		t.Error("Expected a resolvable correct answer")
	}

	q.CorrectAnswer = "z"
	if q.HasValidAnswer() {
		t.Error("Expected an unresolvable answer to be invalid")
	}

	q.Options = []Option{{ID: "b"}, {ID: "b"}}
	q.CorrectAnswer = "b"
	if q.HasValidAnswer() {
		t.Error("Expected an ambiguous answer reference to be invalid")
	}
}

func TestCanGoLive(t *testing.T) {
	mcq := &Question{
		Type:          TypeMultipleChoice,
		Options:       []Option{{ID: "a"}, {ID: "b"}},
		CorrectAnswer: "a",
	}
	if !mcq.CanGoLive() {
		t.Error("Expected a complete multiple-choice question to be publishable")
	}

	mcq.Options = mcq.Options[:1]
	mcq.CorrectAnswer = "a"
	if mcq.CanGoLive() {
		t.Error("A single-option multiple-choice question must not go live")
	}

	essay := &Question{Type: TypeEssay, Text: "Discuss."}
	if !essay.CanGoLive() {
		t.Error("Expected an essay question with text to be publishable")
	}
}

func TestEffectiveRulesDefaults(t *testing.T) {
	r := &EffectiveRules{Config: map[string]interface{}{}}

	if r.Duration() != DefaultDuration {
		t.Errorf("Expected default duration %d, got %d", DefaultDuration, r.Duration())
	}
	if r.QuestionCount() != DefaultQuestionCount {
		t.Errorf("Expected default count %d, got %d", DefaultQuestionCount, r.QuestionCount())
	}
	if r.PassingScore() != DefaultPassingScore {
		t.Errorf("Expected default pass mark %.0f, got %.0f", DefaultPassingScore, r.PassingScore())
	}
	if !r.Randomization() {
		t.Error("Expected randomization to default to true")
	}
}

func TestEffectiveRulesToleratesBsonNumerics(t *testing.T) {
	// The bson decoder hands back int32/int64/float64 depending on how the
	// ruleset was written.
	cases := []interface{}{int32(45), int64(45), float64(45), 45}
	for _, v := range cases {
		r := &EffectiveRules{Config: map[string]interface{}{"duration": v}}
		if r.Duration() != 45 {
			t.Errorf("Expected duration 45 for %T value, got %d", v, r.Duration())
		}
	}
}

func TestLimitsForUnknownTierFallsBackToFree(t *testing.T) {
	if LimitsFor(Tier("enterprise")) != LimitsFor(TierFree) {
		t.Error("Unknown tiers must get free-tier caps")
	}
}
