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

type RuleRepository struct {
	Col *mongo.Collection
}

func NewRuleRepository(db *mongo.Database) *RuleRepository {
	return &RuleRepository{Col: db.Collection("exam_rules")}
}

// FindActiveByScope returns active rules for one scope tier, priority
// ascending so later application wins. categoryID "" selects the
// exam-type-level rules (those with no track binding).
func (r *RuleRepository) FindActiveByScope(ctx context.Context, examTypeID, categoryID string) ([]models.ExamRule, error) {
	filter := bson.M{
		"exam_type_id": examTypeID,
		"is_active":    true,
	}
	if categoryID == "" {
		filter["$or"] = []bson.M{
			{"category_id": ""},
			{"category_id": bson.M{"$exists": false}},
		}
	} else {
		filter["category_id"] = categoryID
	}

	opts := options.Find().SetSort(bson.D{{Key: "priority", Value: 1}})
	cur, err := r.Col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	rules := []models.ExamRule{}
	for cur.Next(ctx) {
		var rule models.ExamRule
		if err := cur.Decode(&rule); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, cur.Err()
}

func (r *RuleRepository) FindByID(ctx context.Context, id string) (*models.ExamRule, error) {
	var rule models.ExamRule
	err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&rule)
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *RuleRepository) Create(ctx context.Context, rule *models.ExamRule) error {
	if rule.ID == "" {
		rule.ID = primitive.NewObjectID().Hex()
	}
	now := time.Now()
	rule.CreatedAt = now
	rule.UpdatedAt = now
	_, err := r.Col.InsertOne(ctx, rule)
	if err != nil {
		return fmt.Errorf("failed to insert rule: %w", err)
	}
	return nil
}

func (r *RuleRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()
	res, err := r.Col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update rule: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *RuleRepository) Deactivate(ctx context.Context, id string) error {
	return r.Update(ctx, id, map[string]interface{}{"is_active": false})
}
