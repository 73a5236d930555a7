package service

import (
	"context"
	"log"

	"prep-service/internal/models"
)

// SubjectSource is the persistence slice the resolver needs.
type SubjectSource interface {
	FindCategory(ctx context.Context, id string) (*models.Category, error)
	FindSubject(ctx context.Context, id string) (*models.Subject, error)
	FindByCategory(ctx context.Context, categoryID, examBodyID string) ([]models.Subject, error)
}

// SubjectResolver expands a track (category) to its subject set. Reads fail
// open: a storage fault logs and resolves to empty, so downstream
// composition degrades to "no eligible content" instead of crashing.
type SubjectResolver struct {
	subjects SubjectSource
}

func NewSubjectResolver(subjects SubjectSource) *SubjectResolver {
	return &SubjectResolver{subjects: subjects}
}

// SubjectsForTrack returns the track's active subjects in their configured
// order. A missing track or empty track resolves to an empty slice, not an
// error.
func (r *SubjectResolver) SubjectsForTrack(ctx context.Context, trackID string) []models.Subject {
	category, err := r.subjects.FindCategory(ctx, trackID)
	if err != nil {
		log.Printf("subject resolver: track %s lookup failed: %v", trackID, err)
		return []models.Subject{}
	}

	subjects, err := r.subjects.FindByCategory(ctx, category.ID, category.ExamBodyID)
	if err != nil {
		log.Printf("subject resolver: subjects for track %s failed: %v", trackID, err)
		return []models.Subject{}
	}
	return subjects
}

// ResolveSubjectIDs is SubjectsForTrack reduced to ids.
func (r *SubjectResolver) ResolveSubjectIDs(ctx context.Context, trackID string) []string {
	subjects := r.SubjectsForTrack(ctx, trackID)
	ids := make([]string, 0, len(subjects))
	for _, s := range subjects {
		ids = append(ids, s.ID)
	}
	return ids
}

// TracksForSubject is the reverse lookup. The association is a single
// foreign key on the subject, so the result holds at most one track.
func (r *SubjectResolver) TracksForSubject(ctx context.Context, subjectID string) []models.Category {
	subject, err := r.subjects.FindSubject(ctx, subjectID)
	if err != nil {
		log.Printf("subject resolver: subject %s lookup failed: %v", subjectID, err)
		return []models.Category{}
	}
	if subject.CategoryID == "" {
		return []models.Category{}
	}
	category, err := r.subjects.FindCategory(ctx, subject.CategoryID)
	if err != nil {
		log.Printf("subject resolver: category %s lookup failed: %v", subject.CategoryID, err)
		return []models.Category{}
	}
	return []models.Category{*category}
}
