package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"prep-service/internal/models"
	"prep-service/internal/repository"
	"prep-service/internal/service"
)

type RuleHandler struct {
	Rules  *repository.RuleRepository
	Engine *service.RulesEngine
}

func NewRuleHandler(rules *repository.RuleRepository, engine *service.RulesEngine) *RuleHandler {
	return &RuleHandler{Rules: rules, Engine: engine}
}

// ResolveRules returns the effective configuration for an exam type,
// optionally narrowed to a track and adjusted by session overrides.
func (h *RuleHandler) ResolveRules(c *gin.Context) {
	var req struct {
		ExamTypeID string                 `json:"exam_type_id" binding:"required"`
		TrackID    string                 `json:"track_id"`
		Overrides  map[string]interface{} `json:"overrides"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	effective := h.Engine.Resolve(context.Background(), req.ExamTypeID, req.TrackID, req.Overrides)
	c.JSON(http.StatusOK, effective)
}

func (h *RuleHandler) ValidateConfiguration(c *gin.Context) {
	var req struct {
		ExamTypeID  string   `json:"exam_type_id" binding:"required"`
		TrackID     string   `json:"track_id"`
		QuestionIDs []string `json:"question_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rules := h.Engine.Resolve(context.Background(), req.ExamTypeID, req.TrackID, nil)
	report := h.Engine.ValidateExamConfiguration(rules, req.QuestionIDs)
	c.JSON(http.StatusOK, report)
}

func (h *RuleHandler) EvaluateResults(c *gin.Context) {
	var req struct {
		ExamTypeID string  `json:"exam_type_id" binding:"required"`
		TrackID    string  `json:"track_id"`
		Score      float64 `json:"score"`
		Total      float64 `json:"total" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rules := h.Engine.Resolve(context.Background(), req.ExamTypeID, req.TrackID, nil)
	result := h.Engine.EvaluateExamResults(rules, req.Score, req.Total)
	c.JSON(http.StatusOK, result)
}

func (h *RuleHandler) CreateRule(c *gin.Context) {
	var rule models.ExamRule
	if err := c.ShouldBindJSON(&rule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Rules.Create(context.Background(), &rule); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, rule)
}

func (h *RuleHandler) GetRule(c *gin.Context) {
	rule, err := h.Rules.FindByID(context.Background(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Rule not found"})
		return
	}
	c.JSON(http.StatusOK, rule)
}

func (h *RuleHandler) UpdateRule(c *gin.Context) {
	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// Scope and identity are fixed at creation time.
	delete(fields, "_id")
	delete(fields, "id")
	delete(fields, "created_at")
	if err := h.Rules.Update(context.Background(), c.Param("id"), fields); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Rule not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func (h *RuleHandler) DeactivateRule(c *gin.Context) {
	if err := h.Rules.Deactivate(context.Background(), c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Rule not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deactivated": true})
}
