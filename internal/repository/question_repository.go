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

type QuestionRepository struct {
	Col *mongo.Collection
}

func NewQuestionRepository(db *mongo.Database) *QuestionRepository {
	return &QuestionRepository{Col: db.Collection("questions")}
}

func (r *QuestionRepository) FindByID(ctx context.Context, id string) (*models.Question, error) {
	var question models.Question
	err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&question)
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *QuestionRepository) Create(ctx context.Context, question *models.Question) error {
	if question.ID == "" {
		question.ID = primitive.NewObjectID().Hex()
	}
	now := time.Now()
	question.CreatedAt = now
	question.UpdatedAt = now
	if question.Status == "" {
		question.Status = models.StatusDraft
	}
	_, err := r.Col.InsertOne(ctx, question)
	return err
}

func (r *QuestionRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()
	res, err := r.Col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Filter runs a criteria query and returns the matching page plus the
// total match count. Random ordering goes through $sample so large pools
// never get shuffled in memory.
func (r *QuestionRepository) Filter(ctx context.Context, c models.QuestionCriteria) ([]models.Question, int64, error) {
	filter := criteriaFilter(c)

	total, err := r.Col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count questions: %w", err)
	}

	limit := c.Limit
	if limit <= 0 {
		limit = 20
	}

	if c.OrderBy == models.OrderRandom {
		questions, err := r.sample(ctx, filter, limit)
		if err != nil {
			return nil, 0, err
		}
		return questions, total, nil
	}

	opts := options.Find().
		SetSkip(int64(c.Offset)).
		SetLimit(int64(limit)).
		SetSort(sortSpec(c.OrderBy, c.OrderDir))

	cur, err := r.Col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query questions: %w", err)
	}
	defer cur.Close(ctx)

	questions := []models.Question{}
	for cur.Next(ctx) {
		var q models.Question
		if err := cur.Decode(&q); err != nil {
			return nil, 0, err
		}
		questions = append(questions, q)
	}
	return questions, total, cur.Err()
}

// CountByScope counts live questions for an exam body, optionally narrowed
// to a subject set.
func (r *QuestionRepository) CountByScope(ctx context.Context, examBodyID string, subjectIDs []string) (int64, error) {
	filter := bson.M{
		"exam_body_id": examBodyID,
		"status":       models.StatusLive,
	}
	if len(subjectIDs) > 0 {
		filter["subject_id"] = bson.M{"$in": subjectIDs}
	}
	return r.Col.CountDocuments(ctx, filter)
}

// SampleSubject draws up to count live questions for one subject via
// $sample. A short pool yields fewer, not an error.
func (r *QuestionRepository) SampleSubject(ctx context.Context, examBodyID, subjectID string, count int, excludeIDs []string) ([]models.Question, error) {
	filter := bson.M{
		"exam_body_id": examBodyID,
		"subject_id":   subjectID,
		"status":       models.StatusLive,
	}
	if len(excludeIDs) > 0 {
		filter["_id"] = bson.M{"$nin": excludeIDs}
	}
	return r.sample(ctx, filter, count)
}

// SamplePool draws from the whole eligible pool across subjects, used to
// backfill shortfalls.
func (r *QuestionRepository) SamplePool(ctx context.Context, examBodyID string, subjectIDs []string, count int, excludeIDs []string) ([]models.Question, error) {
	filter := bson.M{
		"exam_body_id": examBodyID,
		"status":       models.StatusLive,
	}
	if len(subjectIDs) > 0 {
		filter["subject_id"] = bson.M{"$in": subjectIDs}
	}
	if len(excludeIDs) > 0 {
		filter["_id"] = bson.M{"$nin": excludeIDs}
	}
	return r.sample(ctx, filter, count)
}

// IncrementUsage bumps usage_count on every selected question.
func (r *QuestionRepository) IncrementUsage(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.Col.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{"$inc": bson.M{"usage_count": 1}},
	)
	return err
}

// DeleteBySubject removes a subject's questions and their version
// snapshots in one transaction, so a partial failure cannot orphan either
// side.
func (r *QuestionRepository) DeleteBySubject(ctx context.Context, versions *VersionRepository, subjectID string) (int64, error) {
	session, err := r.Col.Database().Client().StartSession()
	if err != nil {
		return 0, fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	var deleted int64
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		cur, err := r.Col.Find(sc, bson.M{"subject_id": subjectID}, options.Find().SetProjection(bson.M{"_id": 1}))
		if err != nil {
			return nil, err
		}
		var ids []string
		for cur.Next(sc) {
			var doc struct {
				ID string `bson:"_id"`
			}
			if err := cur.Decode(&doc); err != nil {
				cur.Close(sc)
				return nil, err
			}
			ids = append(ids, doc.ID)
		}
		cur.Close(sc)
		if len(ids) == 0 {
			return nil, nil
		}

		if _, err := versions.Col.DeleteMany(sc, bson.M{"question_id": bson.M{"$in": ids}}); err != nil {
			return nil, err
		}
		res, err := r.Col.DeleteMany(sc, bson.M{"_id": bson.M{"$in": ids}})
		if err != nil {
			return nil, err
		}
		deleted = res.DeletedCount
		return nil, nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete questions for subject %s: %w", subjectID, err)
	}
	return deleted, nil
}

func (r *QuestionRepository) sample(ctx context.Context, filter bson.M, count int) ([]models.Question, error) {
	if count <= 0 {
		return []models.Question{}, nil
	}
	pipeline := []bson.M{
		{"$match": filter},
		{"$sample": bson.M{"size": count}},
	}
	cur, err := r.Col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to sample questions: %w", err)
	}
	defer cur.Close(ctx)

	questions := []models.Question{}
	for cur.Next(ctx) {
		var q models.Question
		if err := cur.Decode(&q); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, cur.Err()
}

func criteriaFilter(c models.QuestionCriteria) bson.M {
	filter := bson.M{}
	if c.ExamBodyID != "" {
		filter["exam_body_id"] = c.ExamBodyID
	}
	if c.ExamTypeID != "" {
		filter["exam_type_id"] = c.ExamTypeID
	}
	if len(c.SubjectIDs) > 0 {
		filter["subject_id"] = bson.M{"$in": c.SubjectIDs}
	}
	if c.SyllabusID != "" {
		filter["syllabus_id"] = c.SyllabusID
	}
	if c.TopicID != "" {
		filter["topic_id"] = c.TopicID
	}
	if c.SubtopicID != "" {
		filter["subtopic_id"] = c.SubtopicID
	}
	if len(c.Difficulty) > 0 {
		filter["difficulty"] = bson.M{"$in": c.Difficulty}
	}
	if len(c.Type) > 0 {
		filter["type"] = bson.M{"$in": c.Type}
	}
	if len(c.Status) > 0 {
		filter["status"] = bson.M{"$in": c.Status}
	}
	if c.Year != "" {
		filter["year"] = c.Year
	}
	if c.Source != "" {
		filter["source"] = bson.M{"$regex": c.Source, "$options": "i"}
	}
	if len(c.Tags) > 0 {
		ors := make([]bson.M, 0, len(c.Tags))
		for _, tag := range c.Tags {
			ors = append(ors, bson.M{"tags": bson.M{"$elemMatch": bson.M{"$regex": tag, "$options": "i"}}})
		}
		filter["$or"] = ors
	}
	if c.Search != "" {
		search := []bson.M{
			{"text": bson.M{"$regex": c.Search, "$options": "i"}},
			{"year": bson.M{"$regex": c.Search, "$options": "i"}},
			{"source": bson.M{"$regex": c.Search, "$options": "i"}},
		}
		if existing, ok := filter["$or"]; ok {
			filter["$and"] = []bson.M{
				{"$or": existing},
				{"$or": search},
			}
			delete(filter, "$or")
		} else {
			filter["$or"] = search
		}
	}
	return filter
}

func sortSpec(orderBy, orderDir string) bson.D {
	dir := 1
	if orderDir == "desc" {
		dir = -1
	}
	switch orderBy {
	case models.OrderDifficulty:
		return bson.D{{Key: "difficulty", Value: dir}, {Key: "created_at", Value: -1}}
	case models.OrderUsageCount:
		return bson.D{{Key: "usage_count", Value: dir}, {Key: "created_at", Value: -1}}
	default:
		return bson.D{{Key: "created_at", Value: dir}}
	}
}
