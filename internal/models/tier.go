package models

type Tier string

const (
	TierFree    Tier = "free"
	TierBasic   Tier = "basic"
	TierPremium Tier = "premium"
)

// Unlimited marks a cap a tier does not enforce.
const Unlimited = -1

// TierLimits gates exam generation per subscription tier. MonthlyExams is a
// calendar-month cap; MaxQuestionsPerExam bounds a single composition;
// DownloadSlots is a concurrent count, not a rate.
type TierLimits struct {
	MonthlyExams        int `json:"monthly_exams"`
	MaxQuestionsPerExam int `json:"max_questions_per_exam"`
	DownloadSlots       int `json:"download_slots"`
}

var tierLimits = map[Tier]TierLimits{
	TierFree:    {MonthlyExams: 10, MaxQuestionsPerExam: 40, DownloadSlots: 1},
	TierBasic:   {MonthlyExams: 100, MaxQuestionsPerExam: 100, DownloadSlots: 5},
	TierPremium: {MonthlyExams: Unlimited, MaxQuestionsPerExam: Unlimited, DownloadSlots: 20},
}

// LimitsFor returns the caps for a tier, falling back to the free tier for
// anything unrecognized.
func LimitsFor(tier Tier) TierLimits {
	if l, ok := tierLimits[tier]; ok {
		return l
	}
	return tierLimits[TierFree]
}
