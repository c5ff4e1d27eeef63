package realtime

// Event names carried on the wire. These are part of the client contract
// and must not change.
const (
	EventActiveViewersUpdated = "active-viewers-updated"
	EventViewCountUpdated     = "view-count-updated"

	EventNewSolution          = "new-solution"
	EventSolutionUpdated      = "solution-updated"
	EventSolutionDeleted      = "solution-deleted"
	EventSolutionAccepted     = "solution-accepted"
	EventSolutionUpvoteUpdate = "solution-upvote-updated"

	EventNewComment          = "new-comment"
	EventCommentUpdated      = "comment-updated"
	EventCommentDeleted      = "comment-deleted"
	EventCommentUpvoteUpdate = "comment-upvote-updated"

	EventProblemUpvoteUpdate = "problem-upvote-updated"

	EventNewNotification      = "new-notification"
	EventNotificationRead     = "notification-read"
	EventAllNotificationsRead = "all-notifications-read"
)

// Client-issued events on the websocket.
const (
	EventJoinUser     = "join-user"
	EventJoinProblem  = "join-problem"
	EventLeaveProblem = "leave-problem"
)

// Envelope is the outbound websocket frame.
type Envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// ClientMessage is the inbound websocket frame.
type ClientMessage struct {
	Event     string `json:"event"`
	UserID    string `json:"userId,omitempty"`
	ProblemID string `json:"problemId,omitempty"`
}

// ActiveViewersPayload announces a new presence count for a problem room.
type ActiveViewersPayload struct {
	ProblemID     string `json:"problemId"`
	ActiveViewers int    `json:"activeViewers"`
}

// ViewCountPayload announces an updated total view counter.
type ViewCountPayload struct {
	ProblemID string `json:"problemId"`
	Views     int64  `json:"views"`
}

// SolutionPayload wraps a full solution document for create/update events.
type SolutionPayload struct {
	Solution  interface{} `json:"solution"`
	ProblemID string      `json:"problemId"`
}

// SolutionRefPayload references a solution by id for delete/accept events.
type SolutionRefPayload struct {
	SolutionID string `json:"solutionId"`
	ProblemID  string `json:"problemId"`
}

// CommentPayload wraps a full comment document for create/update events.
type CommentPayload struct {
	Comment    interface{} `json:"comment"`
	SolutionID string      `json:"solutionId"`
	ProblemID  string      `json:"problemId"`
}

// CommentRefPayload references a comment by id for delete events.
type CommentRefPayload struct {
	CommentID  string `json:"commentId"`
	SolutionID string `json:"solutionId"`
	ProblemID  string `json:"problemId"`
}

// ProblemUpvotePayload announces a toggled problem upvote.
type ProblemUpvotePayload struct {
	ProblemID   string `json:"problemId"`
	UpvoteCount int    `json:"upvoteCount"`
	HasUpvoted  bool   `json:"hasUpvoted"`
}

// SolutionUpvotePayload announces a toggled solution upvote.
type SolutionUpvotePayload struct {
	SolutionID  string `json:"solutionId"`
	UpvoteCount int    `json:"upvoteCount"`
	HasUpvoted  bool   `json:"hasUpvoted"`
	ProblemID   string `json:"problemId"`
}

// CommentUpvotePayload announces a toggled comment upvote.
type CommentUpvotePayload struct {
	CommentID   string `json:"commentId"`
	UpvoteCount int    `json:"upvoteCount"`
	HasUpvoted  bool   `json:"hasUpvoted"`
	SolutionID  string `json:"solutionId"`
	ProblemID   string `json:"problemId"`
}

// NotificationReadPayload announces read-state changes on the user room.
type NotificationReadPayload struct {
	NotificationID string `json:"notificationId,omitempty"`
	UnreadCount    int64  `json:"unreadCount"`
}
