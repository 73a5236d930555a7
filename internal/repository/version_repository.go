package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"prep-service/internal/models"
)

type VersionRepository struct {
	Col *mongo.Collection
}

func NewVersionRepository(db *mongo.Database) *VersionRepository {
	return &VersionRepository{Col: db.Collection("question_versions")}
}

// Create assigns the next version number for the question and inserts the
// snapshot. Versions are never updated or deleted afterwards.
func (r *VersionRepository) Create(ctx context.Context, v *models.QuestionVersion) error {
	next, err := r.nextVersion(ctx, v.QuestionID)
	if err != nil {
		return fmt.Errorf("failed to resolve next version: %w", err)
	}
	v.Version = next
	if v.ID == "" {
		v.ID = primitive.NewObjectID().Hex()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	_, err = r.Col.InsertOne(ctx, v)
	if err != nil {
		return fmt.Errorf("failed to insert version: %w", err)
	}
	return nil
}

func (r *VersionRepository) FindByQuestion(ctx context.Context, questionID string) ([]models.QuestionVersion, error) {
	opts := options.Find().SetSort(bson.D{{Key: "version", Value: -1}})
	cur, err := r.Col.Find(ctx, bson.M{"question_id": questionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	versions := []models.QuestionVersion{}
	for cur.Next(ctx) {
		var v models.QuestionVersion
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, cur.Err()
}

func (r *VersionRepository) FindByVersion(ctx context.Context, questionID string, version int) (*models.QuestionVersion, error) {
	var v models.QuestionVersion
	err := r.Col.FindOne(ctx, bson.M{"question_id": questionID, "version": version}).Decode(&v)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *VersionRepository) nextVersion(ctx context.Context, questionID string) (int, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "version", Value: -1}})
	var latest models.QuestionVersion
	err := r.Col.FindOne(ctx, bson.M{"question_id": questionID}, opts).Decode(&latest)
	if err == mongo.ErrNoDocuments {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return latest.Version + 1, nil
}
