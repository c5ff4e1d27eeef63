package realtime

import "sync"

// RoomTable maps topics to the set of session ids currently subscribed.
// Joins, leaves and disconnects arrive concurrently from independent
// connections, so every access goes through the mutex.
type RoomTable struct {
	mu    sync.RWMutex
	rooms map[Topic]map[string]struct{}
}

// NewRoomTable returns an empty membership table.
func NewRoomTable() *RoomTable {
	return &RoomTable{rooms: make(map[Topic]map[string]struct{})}
}

// Join adds the session to the topic, creating the room if absent. Joining
// twice has the same effect as joining once; the return value reports
// whether the membership actually changed.
func (t *RoomTable) Join(topic Topic, sessionID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	members, ok := t.rooms[topic]
	if !ok {
		members = make(map[string]struct{})
		t.rooms[topic] = members
	}
	if _, exists := members[sessionID]; exists {
		return false
	}
	members[sessionID] = struct{}{}
	return true
}

// Leave removes the session from the topic. A room left empty is deleted
// entirely so ephemeral topics never accumulate. Returns whether the
// membership actually changed.
func (t *RoomTable) Leave(topic Topic, sessionID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.leaveLocked(topic, sessionID)
}

func (t *RoomTable) leaveLocked(topic Topic, sessionID string) bool {
	members, ok := t.rooms[topic]
	if !ok {
		return false
	}
	if _, exists := members[sessionID]; !exists {
		return false
	}
	delete(members, sessionID)
	if len(members) == 0 {
		delete(t.rooms, topic)
	}
	return true
}

// MemberCount returns the current size of the topic's membership set, or 0
// if the topic does not exist.
func (t *RoomTable) MemberCount(topic Topic) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rooms[topic])
}

// Members returns a snapshot of the session ids subscribed to the topic.
func (t *RoomTable) Members(topic Topic) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	members := t.rooms[topic]
	if len(members) == 0 {
		return nil
	}
	out := make([]string, 0, len(members))
	for id := range members {
		out = append(out, id)
	}
	return out
}

// RemoveSessionEverywhere removes the session from every topic it belongs
// to and returns the topics whose member count changed, so callers can fan
// out updated presence.
func (t *RoomTable) RemoveSessionEverywhere(sessionID string) []Topic {
	t.mu.Lock()
	defer t.mu.Unlock()

	var changed []Topic
	for topic, members := range t.rooms {
		if _, exists := members[sessionID]; !exists {
			continue
		}
		delete(members, sessionID)
		if len(members) == 0 {
			delete(t.rooms, topic)
		}
		changed = append(changed, topic)
	}
	return changed
}
