package models

import "time"

// Category groups subjects under an exam body ("Science", "Arts"). The API
// surface also calls this a track.
type Category struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	ExamBodyID  string    `bson:"exam_body_id" json:"exam_body_id"`
	IsActive    bool      `bson:"is_active" json:"is_active"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// Subject is a neutral entity; its category association lives on the
// subject itself, scoped by exam body.
type Subject struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	Name       string    `bson:"name" json:"name"`
	Code       string    `bson:"code,omitempty" json:"code,omitempty"`
	CategoryID string    `bson:"category_id" json:"category_id"`
	ExamBodyID string    `bson:"exam_body_id" json:"exam_body_id"`
	Order      int       `bson:"order" json:"order"`
	IsActive   bool      `bson:"is_active" json:"is_active"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updated_at"`
}

type ExamBody struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Acronym   string    `bson:"acronym,omitempty" json:"acronym,omitempty"`
	IsActive  bool      `bson:"is_active" json:"is_active"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
