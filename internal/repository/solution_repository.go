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

// SolutionRepository handles database operations related to solutions.
type SolutionRepository struct {
	collection *mongo.Collection
}

// NewSolutionRepository creates a new instance of SolutionRepository.
func NewSolutionRepository(db *mongo.Database) *SolutionRepository {
	return &SolutionRepository{
		collection: db.Collection("solutions"),
	}
}

// CreateSolution inserts a new solution.
func (r *SolutionRepository) CreateSolution(ctx context.Context, solution *models.Solution) (*models.Solution, error) {
	solution.CreatedAt = time.Now()
	solution.UpdatedAt = solution.CreatedAt
	solution.IsActive = true

	result, err := r.collection.InsertOne(ctx, solution)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert solution")
		return nil, fmt.Errorf("failed to create solution: %v", err)
	}
	solution.ID = result.InsertedID.(primitive.ObjectID)

	logrus.WithField("solutionID", solution.ID.Hex()).Info("Solution created")
	return solution, nil
}

// GetSolutionsByProblem returns a page of active solutions for a problem,
// accepted first, then by vote count, then newest.
func (r *SolutionRepository) GetSolutionsByProblem(ctx context.Context, problemID primitive.ObjectID, page, limit int64) ([]models.Solution, error) {
	filter := bson.M{"problem_id": problemID, "is_active": true}
	opts := options.Find().
		SetSort(bson.D{
			{Key: "is_accepted", Value: -1},
			{Key: "upvotes", Value: -1},
			{Key: "created_at", Value: -1},
		}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch solutions: %v", err)
	}
	defer cursor.Close(ctx)

	var solutions []models.Solution
	if err := cursor.All(ctx, &solutions); err != nil {
		return nil, fmt.Errorf("failed to decode solutions: %v", err)
	}
	return solutions, nil
}

// CountSolutionsByProblem returns the number of active solutions on a problem.
func (r *SolutionRepository) CountSolutionsByProblem(ctx context.Context, problemID primitive.ObjectID) (int64, error) {
	total, err := r.collection.CountDocuments(ctx, bson.M{"problem_id": problemID, "is_active": true})
	if err != nil {
		return 0, fmt.Errorf("failed to count solutions: %v", err)
	}
	return total, nil
}

// GetSolutionsByAuthor returns a user's active solutions, newest first.
func (r *SolutionRepository) GetSolutionsByAuthor(ctx context.Context, authorID primitive.ObjectID, page, limit int64) ([]models.Solution, error) {
	filter := bson.M{"author_id": authorID, "is_active": true}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch solutions: %v", err)
	}
	defer cursor.Close(ctx)

	var solutions []models.Solution
	if err := cursor.All(ctx, &solutions); err != nil {
		return nil, fmt.Errorf("failed to decode solutions: %v", err)
	}
	return solutions, nil
}

// GetSolutionByID retrieves a single solution.
func (r *SolutionRepository) GetSolutionByID(ctx context.Context, id primitive.ObjectID) (*models.Solution, error) {
	var solution models.Solution
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&solution)
	if err != nil {
		return nil, fmt.Errorf("failed to find solution: %v", err)
	}
	return &solution, nil
}

// UpdateSolution applies a partial update and returns the new document.
func (r *SolutionRepository) UpdateSolution(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.Solution, error) {
	update["updated_at"] = time.Now()

	var solution models.Solution
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": update}, opts).Decode(&solution)
	if err != nil {
		logrus.WithField("solutionID", id.Hex()).WithError(err).Error("Failed to update solution")
		return nil, fmt.Errorf("failed to update solution: %v", err)
	}
	return &solution, nil
}

// SoftDeleteSolution marks a solution inactive.
func (r *SolutionRepository) SoftDeleteSolution(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"is_active": false}})
	if err != nil {
		return fmt.Errorf("failed to delete solution: %v", err)
	}
	return nil
}

// SoftDeleteByProblem marks every solution of a problem inactive, used when
// the parent problem is deleted.
func (r *SolutionRepository) SoftDeleteByProblem(ctx context.Context, problemID primitive.ObjectID) error {
	_, err := r.collection.UpdateMany(ctx, bson.M{"problem_id": problemID}, bson.M{"$set": bson.M{"is_active": false}})
	if err != nil {
		return fmt.Errorf("failed to delete solutions of problem: %v", err)
	}
	return nil
}

// AddCommentRef appends a comment id to the solution's comment list.
func (r *SolutionRepository) AddCommentRef(ctx context.Context, solutionID, commentID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": solutionID}, bson.M{"$addToSet": bson.M{"comments": commentID}})
	if err != nil {
		return fmt.Errorf("failed to attach comment: %v", err)
	}
	return nil
}

// AddUpvote records a user's vote on the solution.
func (r *SolutionRepository) AddUpvote(ctx context.Context, solutionID, userID primitive.ObjectID) error {
	upvote := models.Upvote{UserID: userID, CreatedAt: time.Now()}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": solutionID}, bson.M{"$push": bson.M{"upvotes": upvote}})
	if err != nil {
		return fmt.Errorf("failed to add upvote: %v", err)
	}
	return nil
}

// RemoveUpvote withdraws a user's vote from the solution.
func (r *SolutionRepository) RemoveUpvote(ctx context.Context, solutionID, userID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": solutionID}, bson.M{"$pull": bson.M{"upvotes": bson.M{"user_id": userID}}})
	if err != nil {
		return fmt.Errorf("failed to remove upvote: %v", err)
	}
	return nil
}

// UnacceptAllForProblem clears the accepted flag on every solution of a
// problem. Only one solution may be accepted at a time.
func (r *SolutionRepository) UnacceptAllForProblem(ctx context.Context, problemID primitive.ObjectID) error {
	_, err := r.collection.UpdateMany(ctx, bson.M{"problem_id": problemID}, bson.M{"$set": bson.M{"is_accepted": false}})
	if err != nil {
		return fmt.Errorf("failed to reset accepted solutions: %v", err)
	}
	return nil
}

// SetAccepted marks a solution as the accepted answer.
func (r *SolutionRepository) SetAccepted(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"is_accepted": true, "updated_at": time.Now()}})
	if err != nil {
		return fmt.Errorf("failed to accept solution: %v", err)
	}
	return nil
}
