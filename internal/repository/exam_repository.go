package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"prep-service/internal/models"
)

type ExamRepository struct {
	Col *mongo.Collection
}

func NewExamRepository(db *mongo.Database) *ExamRepository {
	return &ExamRepository{Col: db.Collection("exams")}
}

func (r *ExamRepository) Create(ctx context.Context, exam *models.Exam) error {
	if exam.ID == "" {
		exam.ID = primitive.NewObjectID().Hex()
	}
	exam.CreatedAt = time.Now()
	if exam.Status == "" {
		exam.Status = models.ExamStatusActive
	}
	_, err := r.Col.InsertOne(ctx, exam)
	if err != nil {
		return fmt.Errorf("failed to insert exam: %w", err)
	}
	return nil
}

func (r *ExamRepository) FindByID(ctx context.Context, id string) (*models.Exam, error) {
	var exam models.Exam
	err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&exam)
	if err != nil {
		return nil, err
	}
	return &exam, nil
}

func (r *ExamRepository) FindByUser(ctx context.Context, userID string) ([]models.Exam, error) {
	cur, err := r.Col.Find(ctx, bson.M{"created_by": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	exams := []models.Exam{}
	for cur.Next(ctx) {
		var e models.Exam
		if err := cur.Decode(&e); err != nil {
			return nil, err
		}
		exams = append(exams, e)
	}
	return exams, cur.Err()
}

// Archive is the only mutation an exam supports after creation.
func (r *ExamRepository) Archive(ctx context.Context, id string) error {
	res, err := r.Col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": models.ExamStatusArchived}},
	)
	if err != nil {
		return fmt.Errorf("failed to archive exam: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
