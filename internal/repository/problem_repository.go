package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/adilzhan-s/crowdsolve/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProblemFilter narrows problem listings.
type ProblemFilter struct {
	Category string
	Status   string
	Priority string
	Search   string
	AuthorID *primitive.ObjectID
}

// ProblemRepository handles database operations related to problems.
type ProblemRepository struct {
	collection *mongo.Collection
}

// NewProblemRepository creates a new instance of ProblemRepository.
func NewProblemRepository(db *mongo.Database) *ProblemRepository {
	return &ProblemRepository{
		collection: db.Collection("problems"),
	}
}

// CreateProblem inserts a new problem.
func (r *ProblemRepository) CreateProblem(ctx context.Context, problem *models.Problem) (*models.Problem, error) {
	problem.CreatedAt = time.Now()
	problem.UpdatedAt = problem.CreatedAt
	problem.IsActive = true

	result, err := r.collection.InsertOne(ctx, problem)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert problem")
		return nil, fmt.Errorf("failed to create problem: %v", err)
	}
	problem.ID = result.InsertedID.(primitive.ObjectID)

	logrus.WithField("problemID", problem.ID.Hex()).Info("Problem created")
	return problem, nil
}

func (f ProblemFilter) toBson() bson.M {
	filter := bson.M{"is_active": true}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Priority != "" {
		filter["priority"] = f.Priority
	}
	if f.AuthorID != nil {
		filter["author_id"] = *f.AuthorID
	}
	if f.Search != "" {
		filter["$or"] = []bson.M{
			{"title": bson.M{"$regex": f.Search, "$options": "i"}},
			{"description": bson.M{"$regex": f.Search, "$options": "i"}},
		}
	}
	return filter
}

// GetProblems returns a page of active problems, newest first.
func (r *ProblemRepository) GetProblems(ctx context.Context, filter ProblemFilter, page, limit int64) ([]models.Problem, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter.toBson(), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch problems: %v", err)
	}
	defer cursor.Close(ctx)

	var problems []models.Problem
	if err := cursor.All(ctx, &problems); err != nil {
		return nil, fmt.Errorf("failed to decode problems: %v", err)
	}
	return problems, nil
}

// CountProblems returns the number of problems matching the filter.
func (r *ProblemRepository) CountProblems(ctx context.Context, filter ProblemFilter) (int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter.toBson())
	if err != nil {
		return 0, fmt.Errorf("failed to count problems: %v", err)
	}
	return total, nil
}

// GetProblemByID retrieves a single problem.
func (r *ProblemRepository) GetProblemByID(ctx context.Context, id primitive.ObjectID) (*models.Problem, error) {
	var problem models.Problem
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&problem)
	if err != nil {
		return nil, fmt.Errorf("failed to find problem: %v", err)
	}
	return &problem, nil
}

// IncrementViews bumps the view counter and returns the updated document.
// Soft-deleted problems are never touched.
func (r *ProblemRepository) IncrementViews(ctx context.Context, id primitive.ObjectID) (*models.Problem, error) {
	var problem models.Problem
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id, "is_active": true}, bson.M{"$inc": bson.M{"views": 1}}, opts).Decode(&problem)
	if err != nil {
		return nil, fmt.Errorf("failed to increment views: %v", err)
	}
	return &problem, nil
}

// UpdateProblem applies a partial update and returns the new document.
func (r *ProblemRepository) UpdateProblem(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.Problem, error) {
	update["updated_at"] = time.Now()

	var problem models.Problem
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": update}, opts).Decode(&problem)
	if err != nil {
		logrus.WithField("problemID", id.Hex()).WithError(err).Error("Failed to update problem")
		return nil, fmt.Errorf("failed to update problem: %v", err)
	}
	return &problem, nil
}

// SoftDeleteProblem marks a problem inactive.
func (r *ProblemRepository) SoftDeleteProblem(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"is_active": false}})
	if err != nil {
		return fmt.Errorf("failed to delete problem: %v", err)
	}
	return nil
}

// AddSolutionRef appends a solution id to the problem's solution list.
func (r *ProblemRepository) AddSolutionRef(ctx context.Context, problemID, solutionID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": problemID}, bson.M{"$addToSet": bson.M{"solutions": solutionID}})
	if err != nil {
		return fmt.Errorf("failed to attach solution: %v", err)
	}
	return nil
}

// RemoveSolutionRef detaches a solution id from the problem.
func (r *ProblemRepository) RemoveSolutionRef(ctx context.Context, problemID, solutionID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": problemID}, bson.M{"$pull": bson.M{"solutions": solutionID}})
	if err != nil {
		return fmt.Errorf("failed to detach solution: %v", err)
	}
	return nil
}

// AddUpvote records a user's vote on the problem.
func (r *ProblemRepository) AddUpvote(ctx context.Context, problemID, userID primitive.ObjectID) error {
	upvote := models.Upvote{UserID: userID, CreatedAt: time.Now()}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": problemID}, bson.M{"$push": bson.M{"upvotes": upvote}})
	if err != nil {
		return fmt.Errorf("failed to add upvote: %v", err)
	}
	return nil
}

// RemoveUpvote withdraws a user's vote from the problem.
func (r *ProblemRepository) RemoveUpvote(ctx context.Context, problemID, userID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": problemID}, bson.M{"$pull": bson.M{"upvotes": bson.M{"user_id": userID}}})
	if err != nil {
		return fmt.Errorf("failed to remove upvote: %v", err)
	}
	return nil
}

// SetStatus updates only the problem status.
func (r *ProblemRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}})
	if err != nil {
		return fmt.Errorf("failed to set status: %v", err)
	}
	return nil
}
