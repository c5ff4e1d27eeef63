package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/adilzhan-s/crowdsolve/internal/models"
	"github.com/adilzhan-s/crowdsolve/internal/realtime"
	"github.com/adilzhan-s/crowdsolve/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// mockNotificationStore implements repository.NotificationStore in memory.
type mockNotificationStore struct {
	notifications []models.Notification
	insertErr     error
}

func (m *mockNotificationStore) Insert(_ context.Context, notif *models.Notification) (*models.Notification, error) {
	if m.insertErr != nil {
		return nil, m.insertErr
	}
	notif.ID = primitive.NewObjectID()
	notif.CreatedAt = time.Now()
	m.notifications = append(m.notifications, *notif)
	return notif, nil
}

func (m *mockNotificationStore) FindByRecipient(_ context.Context, recipient primitive.ObjectID, unreadOnly bool, page, limit int64) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range m.notifications {
		if n.RecipientID != recipient || !n.IsActive {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (m *mockNotificationStore) CountByRecipient(ctx context.Context, recipient primitive.ObjectID, unreadOnly bool) (int64, error) {
	matched, _ := m.FindByRecipient(ctx, recipient, unreadOnly, 1, 0)
	return int64(len(matched)), nil
}

func (m *mockNotificationStore) CountUnread(ctx context.Context, recipient primitive.ObjectID) (int64, error) {
	return m.CountByRecipient(ctx, recipient, true)
}

func (m *mockNotificationStore) GetForRecipient(_ context.Context, id, recipient primitive.ObjectID) (*models.Notification, error) {
	for i := range m.notifications {
		n := m.notifications[i]
		if n.ID == id && n.RecipientID == recipient && n.IsActive {
			return &n, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (m *mockNotificationStore) MarkRead(_ context.Context, id primitive.ObjectID) error {
	for i := range m.notifications {
		if m.notifications[i].ID == id {
			m.notifications[i].IsRead = true
			return nil
		}
	}
	return fmt.Errorf("not found")
}

func (m *mockNotificationStore) MarkAllRead(_ context.Context, recipient primitive.ObjectID) error {
	for i := range m.notifications {
		if m.notifications[i].RecipientID == recipient {
			m.notifications[i].IsRead = true
		}
	}
	return nil
}

func (m *mockNotificationStore) SoftDelete(_ context.Context, id primitive.ObjectID) error {
	for i := range m.notifications {
		if m.notifications[i].ID == id {
			m.notifications[i].IsActive = false
			return nil
		}
	}
	return fmt.Errorf("not found")
}

func (m *mockNotificationStore) TypeCounts(_ context.Context, recipient primitive.ObjectID) (map[string]repository.TypeCount, error) {
	out := make(map[string]repository.TypeCount)
	for _, n := range m.notifications {
		if n.RecipientID != recipient || !n.IsActive {
			continue
		}
		counts := out[n.Type]
		counts.Total++
		if !n.IsRead {
			counts.Unread++
		}
		out[n.Type] = counts
	}
	return out, nil
}

func (m *mockNotificationStore) PurgeStale(_ context.Context, olderThan time.Time) (int64, error) {
	var kept []models.Notification
	var purged int64
	for _, n := range m.notifications {
		if !n.IsActive || n.CreatedAt.Before(olderThan) {
			purged++
			continue
		}
		kept = append(kept, n)
	}
	m.notifications = kept
	return purged, nil
}

// mockBroadcaster records fan-out calls.
type mockBroadcaster struct {
	calls []broadcastCall
}

type broadcastCall struct {
	topic   realtime.Topic
	event   string
	payload interface{}
}

func (m *mockBroadcaster) Broadcast(topic realtime.Topic, event string, payload interface{}) {
	m.calls = append(m.calls, broadcastCall{topic: topic, event: event, payload: payload})
}

func testSender(username string) *models.User {
	return &models.User{
		ID:       primitive.NewObjectID(),
		Username: username,
		Avatar:   "/uploads/avatars/" + username + ".png",
	}
}

func TestNotifyPersistsAndBroadcasts(t *testing.T) {
	store := &mockNotificationStore{}
	broadcaster := &mockBroadcaster{}
	service := NewNotificationService(store, broadcaster)

	recipient := primitive.NewObjectID()
	sender := testSender("alice")

	created, err := service.Notify(context.Background(), recipient, sender,
		models.NotificationNewSolution, "New Solution to Your Problem", "someone posted", models.NotificationData{})
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.False(t, created.IsRead)
	assert.True(t, created.IsActive)
	assert.False(t, created.ID.IsZero())
	assert.False(t, created.CreatedAt.IsZero())

	// the record carries the sender summary clients render
	assert.Equal(t, sender.ID, created.SenderID)
	assert.Equal(t, models.NotificationSender{
		ID:       sender.ID,
		Username: sender.Username,
		Avatar:   sender.Avatar,
	}, created.Sender)

	require.Len(t, broadcaster.calls, 1)
	call := broadcaster.calls[0]
	assert.Equal(t, realtime.UserTopic(recipient.Hex()), call.topic)
	assert.Equal(t, realtime.EventNewNotification, call.event)
	assert.Equal(t, created, call.payload)
}

func TestNotifySuppressesSelfNotification(t *testing.T) {
	store := &mockNotificationStore{}
	broadcaster := &mockBroadcaster{}
	service := NewNotificationService(store, broadcaster)

	user := testSender("bob")

	created, err := service.Notify(context.Background(), user.ID, user,
		models.NotificationProblemUpvoted, "Your Problem Was Upvoted", "you upvoted yourself", models.NotificationData{})
	require.NoError(t, err)
	assert.Nil(t, created)
	assert.Empty(t, store.notifications)
	assert.Empty(t, broadcaster.calls)
}

func TestNotifyOfflineRecipientPersistsOnly(t *testing.T) {
	store := &mockNotificationStore{}
	// real hub with no connected sessions: broadcast is a silent no-op
	service := NewNotificationService(store, realtime.NewHub())

	created, err := service.Notify(context.Background(), primitive.NewObjectID(), testSender("carol"),
		models.NotificationNewSolution, "t", "m", models.NotificationData{})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Len(t, store.notifications, 1)
}

func TestNotifyReturnsStoreError(t *testing.T) {
	store := &mockNotificationStore{insertErr: fmt.Errorf("write timeout")}
	broadcaster := &mockBroadcaster{}
	service := NewNotificationService(store, broadcaster)

	created, err := service.Notify(context.Background(), primitive.NewObjectID(), testSender("dave"),
		models.NotificationNewComment, "New Comment on Your Solution", "msg", models.NotificationData{})
	require.Error(t, err)
	assert.Nil(t, created)

	// nothing was fanned out for a record that never persisted
	assert.Empty(t, broadcaster.calls)
}

func TestMarkAsReadBroadcastsFreshUnreadCount(t *testing.T) {
	store := &mockNotificationStore{}
	broadcaster := &mockBroadcaster{}
	service := NewNotificationService(store, broadcaster)

	recipient := primitive.NewObjectID()
	sender := testSender("eve")

	first, err := service.Notify(context.Background(), recipient, sender,
		models.NotificationNewSolution, "t", "m", models.NotificationData{})
	require.NoError(t, err)
	_, err = service.Notify(context.Background(), recipient, sender,
		models.NotificationNewComment, "t", "m", models.NotificationData{})
	require.NoError(t, err)

	broadcaster.calls = nil
	unread, err := service.MarkAsRead(context.Background(), first.ID, recipient)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	require.Len(t, broadcaster.calls, 1)
	call := broadcaster.calls[0]
	assert.Equal(t, realtime.EventNotificationRead, call.event)
	assert.Equal(t, realtime.NotificationReadPayload{
		NotificationID: first.ID.Hex(),
		UnreadCount:    1,
	}, call.payload)
}

func TestMarkAsReadRejectsForeignNotification(t *testing.T) {
	store := &mockNotificationStore{}
	broadcaster := &mockBroadcaster{}
	service := NewNotificationService(store, broadcaster)

	owner := primitive.NewObjectID()
	notif, err := service.Notify(context.Background(), owner, testSender("frank"),
		models.NotificationNewSolution, "t", "m", models.NotificationData{})
	require.NoError(t, err)

	broadcaster.calls = nil
	_, err = service.MarkAsRead(context.Background(), notif.ID, primitive.NewObjectID())
	require.Error(t, err)
	assert.Empty(t, broadcaster.calls)
}

func TestMarkAllAsRead(t *testing.T) {
	store := &mockNotificationStore{}
	broadcaster := &mockBroadcaster{}
	service := NewNotificationService(store, broadcaster)

	recipient := primitive.NewObjectID()
	sender := testSender("eve")
	for i := 0; i < 3; i++ {
		_, err := service.Notify(context.Background(), recipient, sender,
			models.NotificationNewComment, "t", "m", models.NotificationData{})
		require.NoError(t, err)
	}

	broadcaster.calls = nil
	require.NoError(t, service.MarkAllAsRead(context.Background(), recipient))

	unread, err := store.CountUnread(context.Background(), recipient)
	require.NoError(t, err)
	assert.Zero(t, unread)

	require.Len(t, broadcaster.calls, 1)
	call := broadcaster.calls[0]
	assert.Equal(t, realtime.EventAllNotificationsRead, call.event)
	assert.Equal(t, realtime.NotificationReadPayload{UnreadCount: 0}, call.payload)
}

func TestGetNotificationsUnreadFilter(t *testing.T) {
	store := &mockNotificationStore{}
	broadcaster := &mockBroadcaster{}
	service := NewNotificationService(store, broadcaster)

	recipient := primitive.NewObjectID()
	sender := testSender("eve")

	read, err := service.Notify(context.Background(), recipient, sender,
		models.NotificationNewSolution, "t", "m", models.NotificationData{})
	require.NoError(t, err)
	require.NoError(t, store.MarkRead(context.Background(), read.ID))
	_, err = service.Notify(context.Background(), recipient, sender,
		models.NotificationNewComment, "t", "m", models.NotificationData{})
	require.NoError(t, err)

	page, err := service.GetNotifications(context.Background(), recipient, true, 1, 10)
	require.NoError(t, err)
	assert.Len(t, page.Notifications, 1)
	assert.Equal(t, int64(1), page.UnreadCount)

	all, err := service.GetNotifications(context.Background(), recipient, false, 1, 10)
	require.NoError(t, err)
	assert.Len(t, all.Notifications, 2)
	assert.Equal(t, int64(2), all.Total)
}

func TestDeleteNotification(t *testing.T) {
	store := &mockNotificationStore{}
	broadcaster := &mockBroadcaster{}
	service := NewNotificationService(store, broadcaster)

	recipient := primitive.NewObjectID()
	notif, err := service.Notify(context.Background(), recipient, testSender("grace"),
		models.NotificationNewSolution, "t", "m", models.NotificationData{})
	require.NoError(t, err)

	require.NoError(t, service.DeleteNotification(context.Background(), notif.ID, recipient))

	page, err := service.GetNotifications(context.Background(), recipient, false, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Notifications)

	// deleting someone else's notification fails
	other, err := service.Notify(context.Background(), primitive.NewObjectID(), testSender("grace"),
		models.NotificationNewSolution, "t", "m", models.NotificationData{})
	require.NoError(t, err)
	assert.Error(t, service.DeleteNotification(context.Background(), other.ID, recipient))
}

func TestGetStats(t *testing.T) {
	store := &mockNotificationStore{}
	broadcaster := &mockBroadcaster{}
	service := NewNotificationService(store, broadcaster)

	recipient := primitive.NewObjectID()
	sender := testSender("eve")

	read, err := service.Notify(context.Background(), recipient, sender,
		models.NotificationNewSolution, "t", "m", models.NotificationData{})
	require.NoError(t, err)
	require.NoError(t, store.MarkRead(context.Background(), read.ID))
	_, err = service.Notify(context.Background(), recipient, sender,
		models.NotificationNewSolution, "t", "m", models.NotificationData{})
	require.NoError(t, err)
	_, err = service.Notify(context.Background(), recipient, sender,
		models.NotificationSolutionAccepted, "t", "m", models.NotificationData{})
	require.NoError(t, err)

	stats, err := service.GetStats(context.Background(), recipient)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(2), stats.Unread)
	assert.Equal(t, repository.TypeCount{Total: 2, Unread: 1}, stats.ByType[models.NotificationNewSolution])
	assert.Equal(t, repository.TypeCount{Total: 1, Unread: 1}, stats.ByType[models.NotificationSolutionAccepted])
}
