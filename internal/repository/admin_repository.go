package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// AdminRepository backs the admin-email allowlist cache.
type AdminRepository struct {
	Col *mongo.Collection
}

func NewAdminRepository(db *mongo.Database) *AdminRepository {
	return &AdminRepository{Col: db.Collection("admins")}
}

func (r *AdminRepository) ListEmails(ctx context.Context) ([]string, error) {
	cur, err := r.Col.Find(ctx, bson.M{"is_active": true})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	emails := []string{}
	for cur.Next(ctx) {
		var doc struct {
			Email string `bson:"email"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		if doc.Email != "" {
			emails = append(emails, doc.Email)
		}
	}
	return emails, cur.Err()
}
