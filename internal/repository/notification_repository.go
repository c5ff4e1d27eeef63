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

// NotificationRepository is the MongoDB-backed NotificationStore.
type NotificationRepository struct {
	collection *mongo.Collection
}

var _ NotificationStore = (*NotificationRepository)(nil)

// NewNotificationRepository creates a new instance of NotificationRepository.
func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{
		collection: db.Collection("notifications"),
	}
}

// Insert persists a new notification.
func (r *NotificationRepository) Insert(ctx context.Context, notif *models.Notification) (*models.Notification, error) {
	notif.CreatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, notif)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert notification")
		return nil, fmt.Errorf("failed to create notification: %v", err)
	}
	notif.ID = result.InsertedID.(primitive.ObjectID)
	return notif, nil
}

func recipientFilter(recipient primitive.ObjectID, unreadOnly bool) bson.M {
	filter := bson.M{
		"recipient_id": recipient,
		"is_active":    true,
	}
	if unreadOnly {
		filter["is_read"] = false
	}
	return filter
}

// FindByRecipient returns a page of the recipient's active notifications,
// newest first.
func (r *NotificationRepository) FindByRecipient(ctx context.Context, recipient primitive.ObjectID, unreadOnly bool, page, limit int64) ([]models.Notification, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, recipientFilter(recipient, unreadOnly), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %v", err)
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %v", err)
	}
	return notifications, nil
}

// CountByRecipient returns the number of notifications the listing would match.
func (r *NotificationRepository) CountByRecipient(ctx context.Context, recipient primitive.ObjectID, unreadOnly bool) (int64, error) {
	total, err := r.collection.CountDocuments(ctx, recipientFilter(recipient, unreadOnly))
	if err != nil {
		return 0, fmt.Errorf("failed to count notifications: %v", err)
	}
	return total, nil
}

// CountUnread returns the recipient's unread active notification count.
func (r *NotificationRepository) CountUnread(ctx context.Context, recipient primitive.ObjectID) (int64, error) {
	return r.CountByRecipient(ctx, recipient, true)
}

// GetForRecipient fetches a single notification owned by the recipient.
func (r *NotificationRepository) GetForRecipient(ctx context.Context, id, recipient primitive.ObjectID) (*models.Notification, error) {
	var notif models.Notification
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "recipient_id": recipient}).Decode(&notif)
	if err != nil {
		return nil, fmt.Errorf("failed to find notification: %v", err)
	}
	return &notif, nil
}

// MarkRead sets a notification's read flag.
func (r *NotificationRepository) MarkRead(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"is_read": true}})
	if err != nil {
		return fmt.Errorf("failed to mark notification as read: %v", err)
	}
	return nil
}

// MarkAllRead sets the read flag on every unread notification of the recipient.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipient primitive.ObjectID) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"recipient_id": recipient, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark all notifications as read: %v", err)
	}
	return nil
}

// SoftDelete deactivates a notification.
func (r *NotificationRepository) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"is_active": false}})
	if err != nil {
		return fmt.Errorf("failed to delete notification: %v", err)
	}
	return nil
}

// TypeCounts aggregates total and unread counts per notification type.
func (r *NotificationRepository) TypeCounts(ctx context.Context, recipient primitive.ObjectID) (map[string]TypeCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"recipient_id": recipient, "is_active": true}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$type",
			"total": bson.M{"$sum": 1},
			"unread": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$is_read", false}}, 1, 0},
			}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate notification stats: %v", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Type   string `bson:"_id"`
		Total  int64  `bson:"total"`
		Unread int64  `bson:"unread"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode notification stats: %v", err)
	}

	stats := make(map[string]TypeCount, len(rows))
	for _, row := range rows {
		stats[row.Type] = TypeCount{Total: row.Total, Unread: row.Unread}
	}
	return stats, nil
}

// PurgeStale hard-deletes notifications that were soft-deleted or are older
// than the cutoff. Called by the retention cron job.
func (r *NotificationRepository) PurgeStale(ctx context.Context, olderThan time.Time) (int64, error) {
	filter := bson.M{"$or": []bson.M{
		{"is_active": false},
		{"created_at": bson.M{"$lte": olderThan}},
	}}

	result, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to purge notifications: %v", err)
	}
	logrus.Infof("Purged %d stale notifications", result.DeletedCount)
	return result.DeletedCount, nil
}
