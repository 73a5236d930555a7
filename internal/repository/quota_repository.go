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

type QuotaRepository struct {
	Col *mongo.Collection
}

func NewQuotaRepository(db *mongo.Database) *QuotaRepository {
	return &QuotaRepository{Col: db.Collection("user_quotas")}
}

// FindOrCreate loads a user's quota record, creating a zeroed one on first
// use.
func (r *QuotaRepository) FindOrCreate(ctx context.Context, userID string, tier models.Tier) (*models.UserQuota, error) {
	var quota models.UserQuota
	err := r.Col.FindOne(ctx, bson.M{"user_id": userID}).Decode(&quota)
	if err == nil {
		if tier != "" && quota.Tier != tier {
			quota.Tier = tier
		}
		return &quota, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("failed to load quota for %s: %w", userID, err)
	}

	quota = models.UserQuota{
		ID:        primitive.NewObjectID().Hex(),
		UserID:    userID,
		Tier:      tier,
		UpdatedAt: time.Now(),
	}
	if quota.Tier == "" {
		quota.Tier = models.TierFree
	}
	if _, err := r.Col.InsertOne(ctx, &quota); err != nil {
		return nil, fmt.Errorf("failed to create quota for %s: %w", userID, err)
	}
	return &quota, nil
}

func (r *QuotaRepository) Save(ctx context.Context, quota *models.UserQuota) error {
	quota.UpdatedAt = time.Now()
	res, err := r.Col.ReplaceOne(ctx, bson.M{"_id": quota.ID}, quota)
	if err != nil {
		return fmt.Errorf("failed to save quota for %s: %w", quota.UserID, err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
