package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"prep-service/internal/models"
	"prep-service/internal/repository"
	"prep-service/internal/service"
)

type QuestionHandler struct {
	Questions *repository.QuestionRepository
	Versions  *repository.VersionRepository
	Filter    *service.QuestionFilter
	Lifecycle *service.QuestionLifecycle
}

func NewQuestionHandler(questions *repository.QuestionRepository, versions *repository.VersionRepository, filter *service.QuestionFilter, lifecycle *service.QuestionLifecycle) *QuestionHandler {
	return &QuestionHandler{Questions: questions, Versions: versions, Filter: filter, Lifecycle: lifecycle}
}

// FilterQuestions runs a criteria query. The filter itself never errors;
// an empty result is a valid answer.
func (h *QuestionHandler) FilterQuestions(c *gin.Context) {
	var criteria models.QuestionCriteria
	if err := c.ShouldBindQuery(&criteria); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if criteria.TrackID != "" && len(criteria.SubjectIDs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "track_id and subject_ids are mutually exclusive"})
		return
	}
	result := h.Filter.Filter(context.Background(), criteria)
	c.JSON(http.StatusOK, result)
}

func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	question, err := h.Questions.FindByID(context.Background(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Question not found"})
		return
	}
	c.JSON(http.StatusOK, question)
}

// CreateQuestion inserts a new question as a draft regardless of the
// submitted status.
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var question models.Question
	if err := c.ShouldBindJSON(&question); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	question.Status = models.StatusDraft
	question.CreatedBy = userID(c)
	if err := h.Questions.Create(context.Background(), &question); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, question)
}

// UpdateQuestion edits content in place. Only draft and reviewed questions
// are editable this way; everything else goes through the lifecycle.
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	id := c.Param("id")
	question, err := h.Questions.FindByID(context.Background(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Question not found"})
		return
	}
	if question.Status != models.StatusDraft && question.Status != models.StatusReviewed {
		c.JSON(http.StatusConflict, gin.H{"error": "only draft or reviewed questions can be edited directly"})
		return
	}

	var update map[string]interface{}
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// Status and audit fields only move through transitions.
	for _, k := range []string{"status", "reviewed_by", "reviewed_at", "approved_by", "approved_at", "archived_by", "archived_at", "created_by", "usage_count"} {
		delete(update, k)
	}
	if err := h.Questions.UpdateFields(context.Background(), id, update); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

type transitionRequest struct {
	Status models.QuestionStatus `json:"status" binding:"required"`
	Reason string                `json:"reason"`
}

func (h *QuestionHandler) Transition(c *gin.Context) {
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.Lifecycle.TransitionStatus(context.Background(), c.Param("id"), req.Status, userID(c), req.Reason)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !result.Success {
		c.JSON(http.StatusUnprocessableEntity, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

type bulkTransitionRequest struct {
	QuestionIDs []string              `json:"question_ids" binding:"required"`
	Status      models.QuestionStatus `json:"status" binding:"required"`
	Reason      string                `json:"reason"`
}

func (h *QuestionHandler) BulkTransition(c *gin.Context) {
	var req bulkTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result := h.Lifecycle.BulkTransition(context.Background(), req.QuestionIDs, req.Status, userID(c), req.Reason)
	c.JSON(http.StatusOK, result)
}

func (h *QuestionHandler) ValidTransitions(c *gin.Context) {
	question, err := h.Questions.FindByID(context.Background(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Question not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      question.Status,
		"transitions": service.GetValidTransitions(question.Status),
	})
}

func (h *QuestionHandler) ListVersions(c *gin.Context) {
	versions, err := h.Lifecycle.Versions(context.Background(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, versions)
}

type restoreRequest struct {
	Version int `json:"version" binding:"required"`
}

func (h *QuestionHandler) RestoreVersion(c *gin.Context) {
	var req restoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.Lifecycle.RestoreVersion(context.Background(), c.Param("id"), req.Version, userID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !result.Success {
		c.JSON(http.StatusUnprocessableEntity, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// DeleteBySubject removes a subject's questions and versions together.
func (h *QuestionHandler) DeleteBySubject(c *gin.Context) {
	deleted, err := h.Questions.DeleteBySubject(context.Background(), h.Versions, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
