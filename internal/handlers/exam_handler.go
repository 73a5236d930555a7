package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"prep-service/internal/composer"
	"prep-service/internal/repository"
	"prep-service/internal/service"
)

type ExamHandler struct {
	Composer *composer.Composer
	Exams    *repository.ExamRepository
	Ledger   *service.TierQuotaLedger
}

func NewExamHandler(c *composer.Composer, exams *repository.ExamRepository, ledger *service.TierQuotaLedger) *ExamHandler {
	return &ExamHandler{Composer: c, Exams: exams, Ledger: ledger}
}

// ComposeExam builds and persists an exam. Business rejections (quota,
// tier cap, empty pool) come back as 4xx with the composer's message.
func (h *ExamHandler) ComposeExam(c *gin.Context) {
	var params composer.ComposeParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	params.UserID = userID(c)
	params.Tier = userTier(c)

	result, err := h.Composer.Compose(context.Background(), params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !result.Success {
		status := http.StatusUnprocessableEntity
		if result.Quota != nil {
			status = http.StatusPaymentRequired
		}
		c.JSON(status, result)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *ExamHandler) GetExam(c *gin.Context) {
	exam, err := h.Exams.FindByID(context.Background(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Exam not found"})
		return
	}
	c.JSON(http.StatusOK, exam)
}

func (h *ExamHandler) ListMyExams(c *gin.Context) {
	exams, err := h.Exams.FindByUser(context.Background(), userID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, exams)
}

func (h *ExamHandler) ArchiveExam(c *gin.Context) {
	if err := h.Exams.Archive(context.Background(), c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Exam not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"archived": true})
}

// RecordDownload claims a concurrent download slot for an offline copy.
func (h *ExamHandler) RecordDownload(c *gin.Context) {
	decision, err := h.Ledger.CheckDownloadLimit(context.Background(), userID(c), userTier(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !decision.Allowed {
		c.JSON(http.StatusPaymentRequired, decision)
		return
	}
	if err := h.Ledger.RecordDownload(context.Background(), userID(c), userTier(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recorded": true})
}

// RemoveDownload releases a slot when the offline copy is discarded.
func (h *ExamHandler) RemoveDownload(c *gin.Context) {
	if err := h.Ledger.RemoveDownload(context.Background(), userID(c), userTier(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": true})
}
