package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is feedback on a solution; replies reference a parent comment.
type Comment struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Content         string               `bson:"content" json:"content"`
	AuthorID        primitive.ObjectID   `bson:"author_id" json:"author"`
	SolutionID      primitive.ObjectID   `bson:"solution_id" json:"solution"`
	ProblemID       primitive.ObjectID   `bson:"problem_id" json:"problem"`
	ParentCommentID *primitive.ObjectID  `bson:"parent_comment_id,omitempty" json:"parentComment,omitempty"`
	Replies         []primitive.ObjectID `bson:"replies,omitempty" json:"replies,omitempty"`
	Upvotes         []Upvote             `bson:"upvotes,omitempty" json:"upvotes,omitempty"`
	IsActive        bool                 `bson:"is_active" json:"isActive"`
	CreatedAt       time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time            `bson:"updated_at" json:"updatedAt"`
}

func (c *Comment) UpvoteCount() int { return len(c.Upvotes) }

func (c *Comment) HasUpvoted(userID primitive.ObjectID) bool {
	for _, u := range c.Upvotes {
		if u.UserID == userID {
			return true
		}
	}
	return false
}
