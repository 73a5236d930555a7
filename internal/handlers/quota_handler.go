package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"prep-service/internal/models"
	"prep-service/internal/service"
)

type QuotaHandler struct {
	Ledger *service.TierQuotaLedger
}

func NewQuotaHandler(ledger *service.TierQuotaLedger) *QuotaHandler {
	return &QuotaHandler{Ledger: ledger}
}

// CheckQuota reports what the caller's tier still allows this period.
// Checking never consumes quota.
func (h *QuotaHandler) CheckQuota(c *gin.Context) {
	id, tier := userID(c), userTier(c)

	generation, err := h.Ledger.CheckGenerationLimit(context.Background(), id, tier)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	downloads, err := h.Ledger.CheckDownloadLimit(context.Background(), id, tier)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	limits := models.LimitsFor(tier)
	c.JSON(http.StatusOK, gin.H{
		"tier":                   tier,
		"generation":             generation,
		"downloads":              downloads,
		"max_questions_per_exam": limits.MaxQuestionsPerExam,
	})
}
