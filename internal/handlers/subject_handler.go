package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"prep-service/internal/repository"
	"prep-service/internal/service"
)

type SubjectHandler struct {
	Subjects *repository.SubjectRepository
	Resolver *service.SubjectResolver
}

func NewSubjectHandler(subjects *repository.SubjectRepository, resolver *service.SubjectResolver) *SubjectHandler {
	return &SubjectHandler{Subjects: subjects, Resolver: resolver}
}

// ListTracks returns the active tracks for an exam body.
func (h *SubjectHandler) ListTracks(c *gin.Context) {
	tracks, err := h.Subjects.FindActiveCategories(context.Background(), c.Query("exam_body_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, tracks)
}

// ListTrackSubjects returns the subjects of one track, ordered for display.
func (h *SubjectHandler) ListTrackSubjects(c *gin.Context) {
	subjects := h.Resolver.SubjectsForTrack(context.Background(), c.Param("id"))
	c.JSON(http.StatusOK, subjects)
}

// TracksForSubject answers the reverse lookup: which tracks include
// this subject.
func (h *SubjectHandler) TracksForSubject(c *gin.Context) {
	tracks := h.Resolver.TracksForSubject(context.Background(), c.Param("id"))
	c.JSON(http.StatusOK, tracks)
}
