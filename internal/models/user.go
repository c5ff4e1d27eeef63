package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a registered CrowdSolve account.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username       string             `bson:"username" json:"username"`
	Email          string             `bson:"email" json:"email"`
	HashedPassword string             `bson:"hashed_password" json:"-"`
	Avatar         string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Bio            string             `bson:"bio,omitempty" json:"bio,omitempty"`
	Location       string             `bson:"location,omitempty" json:"location,omitempty"`
	Reputation     int                `bson:"reputation" json:"reputation"`
	ProblemsSolved int                `bson:"problems_solved" json:"problemsSolved"`
	IsActive       bool               `bson:"is_active" json:"isActive"`
	CreatedAt      time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updatedAt"`
}

// PublicUser is the subset of a profile visible to other users.
type PublicUser struct {
	ID             primitive.ObjectID `json:"id"`
	Username       string             `json:"username"`
	Avatar         string             `json:"avatar,omitempty"`
	Bio            string             `json:"bio,omitempty"`
	Location       string             `json:"location,omitempty"`
	Reputation     int                `json:"reputation"`
	ProblemsSolved int                `json:"problemsSolved"`
}

// Public strips the private fields from a user document.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:             u.ID,
		Username:       u.Username,
		Avatar:         u.Avatar,
		Bio:            u.Bio,
		Location:       u.Location,
		Reputation:     u.Reputation,
		ProblemsSolved: u.ProblemsSolved,
	}
}
