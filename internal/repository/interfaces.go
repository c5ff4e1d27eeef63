package repository

import (
	"context"
	"time"

	"github.com/adilzhan-s/crowdsolve/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TypeCount holds per-type notification totals for the stats endpoint.
type TypeCount struct {
	Total  int64 `json:"total"`
	Unread int64 `json:"unread"`
}

// NotificationStore is the persistence contract the notification service
// depends on. Kept as an interface so the service can be exercised in tests
// without a running MongoDB.
type NotificationStore interface {
	// Insert persists a notification and returns it with ID and CreatedAt set.
	Insert(ctx context.Context, notif *models.Notification) (*models.Notification, error)

	// FindByRecipient returns a page of the recipient's active notifications,
	// newest first. With unreadOnly set, read notifications are skipped.
	FindByRecipient(ctx context.Context, recipient primitive.ObjectID, unreadOnly bool, page, limit int64) ([]models.Notification, error)

	// CountByRecipient returns the total matching FindByRecipient's filter.
	CountByRecipient(ctx context.Context, recipient primitive.ObjectID, unreadOnly bool) (int64, error)

	// CountUnread returns the recipient's unread active notification count.
	CountUnread(ctx context.Context, recipient primitive.ObjectID) (int64, error)

	// GetForRecipient fetches one notification, scoped to its owner.
	GetForRecipient(ctx context.Context, id, recipient primitive.ObjectID) (*models.Notification, error)

	// MarkRead flips the read flag on a single notification.
	MarkRead(ctx context.Context, id primitive.ObjectID) error

	// MarkAllRead flips the read flag on all of the recipient's notifications.
	MarkAllRead(ctx context.Context, recipient primitive.ObjectID) error

	// SoftDelete deactivates a notification without removing the document.
	SoftDelete(ctx context.Context, id primitive.ObjectID) error

	// TypeCounts returns per-type totals for the recipient.
	TypeCounts(ctx context.Context, recipient primitive.ObjectID) (map[string]TypeCount, error)

	// PurgeStale hard-deletes soft-deleted and old notifications.
	PurgeStale(ctx context.Context, olderThan time.Time) (int64, error)
}
