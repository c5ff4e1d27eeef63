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

// CommentRepository handles database operations related to comments.
type CommentRepository struct {
	collection *mongo.Collection
}

// NewCommentRepository creates a new instance of CommentRepository.
func NewCommentRepository(db *mongo.Database) *CommentRepository {
	return &CommentRepository{
		collection: db.Collection("comments"),
	}
}

// CreateComment inserts a new comment.
func (r *CommentRepository) CreateComment(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	comment.CreatedAt = time.Now()
	comment.UpdatedAt = comment.CreatedAt
	comment.IsActive = true

	result, err := r.collection.InsertOne(ctx, comment)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert comment")
		return nil, fmt.Errorf("failed to create comment: %v", err)
	}
	comment.ID = result.InsertedID.(primitive.ObjectID)
	return comment, nil
}

// GetCommentsBySolution returns a page of active top-level comments for a
// solution, newest first. Replies hang off their parent's Replies list.
func (r *CommentRepository) GetCommentsBySolution(ctx context.Context, solutionID primitive.ObjectID, page, limit int64) ([]models.Comment, error) {
	filter := bson.M{
		"solution_id":       solutionID,
		"is_active":         true,
		"parent_comment_id": nil,
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch comments: %v", err)
	}
	defer cursor.Close(ctx)

	var comments []models.Comment
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, fmt.Errorf("failed to decode comments: %v", err)
	}
	return comments, nil
}

// CountCommentsBySolution returns the number of active top-level comments.
func (r *CommentRepository) CountCommentsBySolution(ctx context.Context, solutionID primitive.ObjectID) (int64, error) {
	filter := bson.M{
		"solution_id":       solutionID,
		"is_active":         true,
		"parent_comment_id": nil,
	}
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count comments: %v", err)
	}
	return total, nil
}

// GetCommentByID retrieves a single comment.
func (r *CommentRepository) GetCommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var comment models.Comment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&comment)
	if err != nil {
		return nil, fmt.Errorf("failed to find comment: %v", err)
	}
	return &comment, nil
}

// UpdateComment applies a partial update and returns the new document.
func (r *CommentRepository) UpdateComment(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.Comment, error) {
	update["updated_at"] = time.Now()

	var comment models.Comment
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": update}, opts).Decode(&comment)
	if err != nil {
		logrus.WithField("commentID", id.Hex()).WithError(err).Error("Failed to update comment")
		return nil, fmt.Errorf("failed to update comment: %v", err)
	}
	return &comment, nil
}

// SoftDeleteComment marks a comment inactive.
func (r *CommentRepository) SoftDeleteComment(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"is_active": false}})
	if err != nil {
		return fmt.Errorf("failed to delete comment: %v", err)
	}
	return nil
}

// AddReplyRef appends a reply id to the parent comment.
func (r *CommentRepository) AddReplyRef(ctx context.Context, parentID, replyID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": parentID}, bson.M{"$addToSet": bson.M{"replies": replyID}})
	if err != nil {
		return fmt.Errorf("failed to attach reply: %v", err)
	}
	return nil
}

// AddUpvote records a user's vote on the comment.
func (r *CommentRepository) AddUpvote(ctx context.Context, commentID, userID primitive.ObjectID) error {
	upvote := models.Upvote{UserID: userID, CreatedAt: time.Now()}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": commentID}, bson.M{"$push": bson.M{"upvotes": upvote}})
	if err != nil {
		return fmt.Errorf("failed to add upvote: %v", err)
	}
	return nil
}

// RemoveUpvote withdraws a user's vote from the comment.
func (r *CommentRepository) RemoveUpvote(ctx context.Context, commentID, userID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": commentID}, bson.M{"$pull": bson.M{"upvotes": bson.M{"user_id": userID}}})
	if err != nil {
		return fmt.Errorf("failed to remove upvote: %v", err)
	}
	return nil
}
