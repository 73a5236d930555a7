package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"prep-service/internal/models"
)

type SubjectRepository struct {
	Subjects   *mongo.Collection
	Categories *mongo.Collection
}

func NewSubjectRepository(db *mongo.Database) *SubjectRepository {
	return &SubjectRepository{
		Subjects:   db.Collection("subjects"),
		Categories: db.Collection("categories"),
	}
}

func (r *SubjectRepository) FindCategory(ctx context.Context, id string) (*models.Category, error) {
	var category models.Category
	err := r.Categories.FindOne(ctx, bson.M{"_id": id}).Decode(&category)
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *SubjectRepository) FindSubject(ctx context.Context, id string) (*models.Subject, error) {
	var subject models.Subject
	err := r.Subjects.FindOne(ctx, bson.M{"_id": id}).Decode(&subject)
	if err != nil {
		return nil, err
	}
	return &subject, nil
}

// FindByCategory returns a track's active subjects. Both the category id
// and the exam body id must match; a subject attached to the category but
// under a different body does not count.
func (r *SubjectRepository) FindByCategory(ctx context.Context, categoryID, examBodyID string) ([]models.Subject, error) {
	filter := bson.M{
		"category_id":  categoryID,
		"exam_body_id": examBodyID,
		"is_active":    true,
	}
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "name", Value: 1}})
	cur, err := r.Subjects.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	subjects := []models.Subject{}
	for cur.Next(ctx) {
		var s models.Subject
		if err := cur.Decode(&s); err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
	}
	return subjects, cur.Err()
}

func (r *SubjectRepository) FindActiveCategories(ctx context.Context, examBodyID string) ([]models.Category, error) {
	filter := bson.M{"is_active": true}
	if examBodyID != "" {
		filter["exam_body_id"] = examBodyID
	}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cur, err := r.Categories.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	categories := []models.Category{}
	for cur.Next(ctx) {
		var c models.Category
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, cur.Err()
}
