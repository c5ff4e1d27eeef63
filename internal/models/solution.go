package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Solution is a proposed answer to a problem.
type Solution struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Content    string               `bson:"content" json:"content"`
	Images     []Image              `bson:"images,omitempty" json:"images,omitempty"`
	ProblemID  primitive.ObjectID   `bson:"problem_id" json:"problem"`
	AuthorID   primitive.ObjectID   `bson:"author_id" json:"author"`
	Upvotes    []Upvote             `bson:"upvotes,omitempty" json:"upvotes,omitempty"`
	Comments   []primitive.ObjectID `bson:"comments,omitempty" json:"comments,omitempty"`
	IsAccepted bool                 `bson:"is_accepted" json:"isAccepted"`
	IsActive   bool                 `bson:"is_active" json:"isActive"`
	CreatedAt  time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time            `bson:"updated_at" json:"updatedAt"`
}

func (s *Solution) UpvoteCount() int { return len(s.Upvotes) }

func (s *Solution) HasUpvoted(userID primitive.ObjectID) bool {
	for _, u := range s.Upvotes {
		if u.UserID == userID {
			return true
		}
	}
	return false
}
