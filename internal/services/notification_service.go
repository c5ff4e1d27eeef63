package services

import (
	"context"
	"fmt"
	"time"

	"github.com/adilzhan-s/crowdsolve/internal/models"
	"github.com/adilzhan-s/crowdsolve/internal/realtime"
	"github.com/adilzhan-s/crowdsolve/internal/repository"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationService persists notification records and pushes them to the
// recipient's private room when a session is connected. Delivery is
// opportunistic: an offline recipient still finds the record via the REST
// read path.
type NotificationService struct {
	store       repository.NotificationStore
	broadcaster realtime.Broadcaster
}

// NewNotificationService creates a new instance of NotificationService.
func NewNotificationService(store repository.NotificationStore, broadcaster realtime.Broadcaster) *NotificationService {
	return &NotificationService{
		store:       store,
		broadcaster: broadcaster,
	}
}

// Notify persists a notification and fans it out to the recipient's room.
// Self-notifications are suppressed: no record, no broadcast. A persistence
// failure is returned to the caller; the triggering mutation must not treat
// it as fatal.
func (s *NotificationService) Notify(ctx context.Context, recipient primitive.ObjectID, sender *models.User, notifType, title, message string, data models.NotificationData) (*models.Notification, error) {
	if recipient == sender.ID {
		logrus.WithFields(logrus.Fields{
			"user": recipient.Hex(),
			"type": notifType,
		}).Debug("Skipping self-notification")
		return nil, nil
	}

	notif := &models.Notification{
		RecipientID: recipient,
		SenderID:    sender.ID,
		Sender: models.NotificationSender{
			ID:       sender.ID,
			Username: sender.Username,
			Avatar:   sender.Avatar,
		},
		Type:        notifType,
		Title:       title,
		Message:     message,
		Data:        data,
		IsRead:      false,
		IsActive:    true,
	}

	created, err := s.store.Insert(ctx, notif)
	if err != nil {
		return nil, fmt.Errorf("failed to persist notification: %v", err)
	}

	s.broadcaster.Broadcast(realtime.UserTopic(recipient.Hex()), realtime.EventNewNotification, created)
	return created, nil
}

// NotifyNewSolution tells a problem author someone posted a solution.
func (s *NotificationService) NotifyNewSolution(ctx context.Context, problemAuthor primitive.ObjectID, solutionAuthor *models.User, problem *models.Problem, solution *models.Solution) (*models.Notification, error) {
	return s.Notify(ctx, problemAuthor, solutionAuthor,
		models.NotificationNewSolution,
		"New Solution to Your Problem",
		fmt.Sprintf("%s posted a solution to %q", solutionAuthor.Username, problem.Title),
		models.NotificationData{
			ProblemID:  &problem.ID,
			SolutionID: &solution.ID,
			URL:        fmt.Sprintf("/problems/%s", problem.ID.Hex()),
		})
}

// NotifyNewComment tells a solution author someone commented on it.
func (s *NotificationService) NotifyNewComment(ctx context.Context, solutionAuthor primitive.ObjectID, commentAuthor *models.User, solution *models.Solution, comment *models.Comment) (*models.Notification, error) {
	return s.Notify(ctx, solutionAuthor, commentAuthor,
		models.NotificationNewComment,
		"New Comment on Your Solution",
		fmt.Sprintf("%s commented on your solution", commentAuthor.Username),
		models.NotificationData{
			ProblemID:  &solution.ProblemID,
			SolutionID: &solution.ID,
			CommentID:  &comment.ID,
			URL:        fmt.Sprintf("/problems/%s#comment-%s", solution.ProblemID.Hex(), comment.ID.Hex()),
		})
}

// NotifyCommentReply tells a comment author someone replied to them.
func (s *NotificationService) NotifyCommentReply(ctx context.Context, parentAuthor primitive.ObjectID, replyAuthor *models.User, parent *models.Comment, reply *models.Comment) (*models.Notification, error) {
	return s.Notify(ctx, parentAuthor, replyAuthor,
		models.NotificationCommentReply,
		"Someone Replied to Your Comment",
		fmt.Sprintf("%s replied to your comment", replyAuthor.Username),
		models.NotificationData{
			ProblemID:  &parent.ProblemID,
			SolutionID: &parent.SolutionID,
			CommentID:  &reply.ID,
			URL:        fmt.Sprintf("/problems/%s#comment-%s", parent.ProblemID.Hex(), reply.ID.Hex()),
		})
}

// NotifyProblemUpvoted tells a problem author their problem got a vote.
func (s *NotificationService) NotifyProblemUpvoted(ctx context.Context, problemAuthor primitive.ObjectID, upvoter *models.User, problem *models.Problem) (*models.Notification, error) {
	return s.Notify(ctx, problemAuthor, upvoter,
		models.NotificationProblemUpvoted,
		"Your Problem Was Upvoted",
		fmt.Sprintf("%s upvoted your problem %q", upvoter.Username, problem.Title),
		models.NotificationData{
			ProblemID: &problem.ID,
			URL:       fmt.Sprintf("/problems/%s", problem.ID.Hex()),
		})
}

// NotifySolutionUpvoted tells a solution author their solution got a vote.
func (s *NotificationService) NotifySolutionUpvoted(ctx context.Context, solutionAuthor primitive.ObjectID, upvoter *models.User, solution *models.Solution) (*models.Notification, error) {
	return s.Notify(ctx, solutionAuthor, upvoter,
		models.NotificationSolutionUpvoted,
		"Your Solution Was Upvoted",
		fmt.Sprintf("%s upvoted your solution", upvoter.Username),
		models.NotificationData{
			ProblemID:  &solution.ProblemID,
			SolutionID: &solution.ID,
			URL:        fmt.Sprintf("/problems/%s", solution.ProblemID.Hex()),
		})
}

// NotifyCommentUpvoted tells a comment author their comment got a vote.
func (s *NotificationService) NotifyCommentUpvoted(ctx context.Context, commentAuthor primitive.ObjectID, upvoter *models.User, comment *models.Comment) (*models.Notification, error) {
	return s.Notify(ctx, commentAuthor, upvoter,
		models.NotificationCommentUpvoted,
		"Your Comment Was Upvoted",
		fmt.Sprintf("%s upvoted your comment", upvoter.Username),
		models.NotificationData{
			ProblemID:  &comment.ProblemID,
			SolutionID: &comment.SolutionID,
			CommentID:  &comment.ID,
			URL:        fmt.Sprintf("/problems/%s#comment-%s", comment.ProblemID.Hex(), comment.ID.Hex()),
		})
}

// NotifySolutionAccepted tells a solution author their answer was accepted.
func (s *NotificationService) NotifySolutionAccepted(ctx context.Context, solutionAuthor primitive.ObjectID, problemAuthor *models.User, solution *models.Solution) (*models.Notification, error) {
	return s.Notify(ctx, solutionAuthor, problemAuthor,
		models.NotificationSolutionAccepted,
		"Your Solution Was Accepted!",
		fmt.Sprintf("%s marked your solution as the best answer", problemAuthor.Username),
		models.NotificationData{
			ProblemID:  &solution.ProblemID,
			SolutionID: &solution.ID,
			URL:        fmt.Sprintf("/problems/%s", solution.ProblemID.Hex()),
		})
}

// NotificationPage is a listing plus the counters clients render.
type NotificationPage struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int64                 `json:"unreadCount"`
	Total         int64                 `json:"total"`
}

// GetNotifications returns a page of the recipient's notifications.
func (s *NotificationService) GetNotifications(ctx context.Context, recipient primitive.ObjectID, unreadOnly bool, page, limit int64) (*NotificationPage, error) {
	notifications, err := s.store.FindByRecipient(ctx, recipient, unreadOnly, page, limit)
	if err != nil {
		return nil, err
	}
	total, err := s.store.CountByRecipient(ctx, recipient, unreadOnly)
	if err != nil {
		return nil, err
	}
	unread, err := s.store.CountUnread(ctx, recipient)
	if err != nil {
		return nil, err
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	return &NotificationPage{
		Notifications: notifications,
		UnreadCount:   unread,
		Total:         total,
	}, nil
}

// MarkAsRead flips one notification to read and pushes the fresh unread
// count to the recipient's room.
func (s *NotificationService) MarkAsRead(ctx context.Context, id, recipient primitive.ObjectID) (int64, error) {
	if _, err := s.store.GetForRecipient(ctx, id, recipient); err != nil {
		return 0, fmt.Errorf("notification not found: %v", err)
	}
	if err := s.store.MarkRead(ctx, id); err != nil {
		return 0, err
	}

	unread, err := s.store.CountUnread(ctx, recipient)
	if err != nil {
		return 0, err
	}

	s.broadcaster.Broadcast(realtime.UserTopic(recipient.Hex()), realtime.EventNotificationRead, realtime.NotificationReadPayload{
		NotificationID: id.Hex(),
		UnreadCount:    unread,
	})
	return unread, nil
}

// MarkAllAsRead flips every unread notification and announces a zero count.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, recipient primitive.ObjectID) error {
	if err := s.store.MarkAllRead(ctx, recipient); err != nil {
		return err
	}
	s.broadcaster.Broadcast(realtime.UserTopic(recipient.Hex()), realtime.EventAllNotificationsRead, realtime.NotificationReadPayload{
		UnreadCount: 0,
	})
	return nil
}

// DeleteNotification soft-deletes a notification owned by the recipient.
func (s *NotificationService) DeleteNotification(ctx context.Context, id, recipient primitive.ObjectID) error {
	if _, err := s.store.GetForRecipient(ctx, id, recipient); err != nil {
		return fmt.Errorf("notification not found: %v", err)
	}
	return s.store.SoftDelete(ctx, id)
}

// NotificationStats is the per-type breakdown for the stats endpoint.
type NotificationStats struct {
	Total  int64                           `json:"total"`
	Unread int64                           `json:"unread"`
	ByType map[string]repository.TypeCount `json:"byType"`
}

// GetStats returns total/unread counters broken down by type.
func (s *NotificationService) GetStats(ctx context.Context, recipient primitive.ObjectID) (*NotificationStats, error) {
	byType, err := s.store.TypeCounts(ctx, recipient)
	if err != nil {
		return nil, err
	}

	stats := &NotificationStats{ByType: byType}
	for _, counts := range byType {
		stats.Total += counts.Total
		stats.Unread += counts.Unread
	}
	return stats, nil
}

// PurgeStale removes soft-deleted and month-old notifications. Wired to the
// daily retention cron.
func (s *NotificationService) PurgeStale(ctx context.Context) error {
	cutoff := time.Now().Add(-30 * 24 * time.Hour)
	_, err := s.store.PurgeStale(ctx, cutoff)
	return err
}
