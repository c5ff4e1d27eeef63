package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Problem categories accepted on create/update.
var ProblemCategories = []string{"Infrastructure", "Environment", "Safety", "Community", "Transportation", "Other"}

// Problem priorities.
var ProblemPriorities = []string{"Low", "Medium", "High", "Critical"}

// Problem statuses.
var ProblemStatuses = []string{"Open", "In Progress", "Solved", "Closed"}

// Location is a free-form address with optional [lng, lat] coordinates.
type Location struct {
	Address     string    `bson:"address,omitempty" json:"address,omitempty"`
	Coordinates []float64 `bson:"coordinates,omitempty" json:"coordinates,omitempty"`
}

// Image is an uploaded picture reference.
type Image struct {
	URL      string `bson:"url" json:"url"`
	PublicID string `bson:"public_id" json:"publicId"`
}

// Upvote records one user's vote with its timestamp.
type Upvote struct {
	UserID    primitive.ObjectID `bson:"user_id" json:"user"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

// Problem is a community issue reported by a user.
type Problem struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title       string               `bson:"title" json:"title"`
	Description string               `bson:"description" json:"description"`
	Location    *Location            `bson:"location,omitempty" json:"location,omitempty"`
	Images      []Image              `bson:"images,omitempty" json:"images,omitempty"`
	Category    string               `bson:"category" json:"category"`
	Priority    string               `bson:"priority" json:"priority"`
	Status      string               `bson:"status" json:"status"`
	AuthorID    primitive.ObjectID   `bson:"author_id" json:"author"`
	Solutions   []primitive.ObjectID `bson:"solutions,omitempty" json:"solutions,omitempty"`
	Upvotes     []Upvote             `bson:"upvotes,omitempty" json:"upvotes,omitempty"`
	Views       int64                `bson:"views" json:"views"`
	IsActive    bool                 `bson:"is_active" json:"isActive"`
	CreatedAt   time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updated_at" json:"updatedAt"`
}

// UpvoteCount mirrors the virtual the clients render.
func (p *Problem) UpvoteCount() int { return len(p.Upvotes) }

// HasUpvoted reports whether the given user already voted.
func (p *Problem) HasUpvoted(userID primitive.ObjectID) bool {
	for _, u := range p.Upvotes {
		if u.UserID == userID {
			return true
		}
	}
	return false
}

// ValidCategory reports whether c is one of the accepted categories.
func ValidCategory(c string) bool { return contains(ProblemCategories, c) }

// ValidPriority reports whether p is one of the accepted priorities.
func ValidPriority(p string) bool { return contains(ProblemPriorities, p) }

// ValidStatus reports whether s is one of the accepted statuses.
func ValidStatus(s string) bool { return contains(ProblemStatuses, s) }

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
