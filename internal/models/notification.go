package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types.
const (
	NotificationNewSolution      = "new_solution"
	NotificationNewComment       = "new_comment"
	NotificationSolutionUpvoted  = "solution_upvoted"
	NotificationCommentUpvoted   = "comment_upvoted"
	NotificationCommentReply     = "comment_reply"
	NotificationProblemUpvoted   = "problem_upvoted"
	NotificationSolutionAccepted = "solution_accepted"
)

// NotificationSender is the denormalized sender summary embedded in every
// record, so clients can render who triggered it without a second lookup.
type NotificationSender struct {
	ID       primitive.ObjectID `bson:"id" json:"id"`
	Username string             `bson:"username" json:"username"`
	Avatar   string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
}

// NotificationData carries the references a client needs to deep-link to
// the content that triggered the notification.
type NotificationData struct {
	ProblemID  *primitive.ObjectID `bson:"problem_id,omitempty" json:"problemId,omitempty"`
	SolutionID *primitive.ObjectID `bson:"solution_id,omitempty" json:"solutionId,omitempty"`
	CommentID  *primitive.ObjectID `bson:"comment_id,omitempty" json:"commentId,omitempty"`
	URL        string              `bson:"url,omitempty" json:"url,omitempty"`
}

// Notification is a persisted, queryable unit of user-directed information.
// It is owned by the recipient: only read-state toggles and soft deletes
// mutate it after creation.
type Notification struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RecipientID primitive.ObjectID `bson:"recipient_id" json:"recipient"`
	SenderID    primitive.ObjectID `bson:"sender_id" json:"-"`
	Sender      NotificationSender `bson:"sender" json:"sender"`
	Type        string             `bson:"type" json:"type"`
	Title       string             `bson:"title" json:"title"`
	Message     string             `bson:"message" json:"message"`
	Data        NotificationData   `bson:"data" json:"data"`
	IsRead      bool               `bson:"is_read" json:"isRead"`
	IsActive    bool               `bson:"is_active" json:"isActive"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
}
