package realtime

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// Sender delivers one event to one connected session. Implemented by the
// websocket connection wrapper and by test fakes.
type Sender interface {
	Send(event string, payload interface{}) error
}

// Broadcaster is the fan-out handle injected into services and handlers
// that publish content events. The hub satisfies it.
type Broadcaster interface {
	Broadcast(topic Topic, event string, payload interface{})
}

// session tracks one live connection. A session starts unbound and becomes
// identified once a join-user event binds a user id.
type session struct {
	sender Sender
	userID string
}

// Hub owns the room membership table and all session lifecycle transitions.
// Broadcasts are serialized under the hub mutex, which preserves the
// submission order of events within any single topic.
type Hub struct {
	mu       sync.Mutex
	rooms    *RoomTable
	sessions map[string]*session
}

// NewHub returns a hub with no connected sessions.
func NewHub() *Hub {
	return &Hub{
		rooms:    NewRoomTable(),
		sessions: make(map[string]*session),
	}
}

// Connect registers a new session. The session is not joined to any topic
// until the client sends join events.
func (h *Hub) Connect(sessionID string, sender Sender) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[sessionID] = &session{sender: sender}
	log.WithField("sessionID", sessionID).Debug("Session connected")
}

// Disconnect removes the session from every topic it joined and fans out
// updated presence to each affected problem room. User rooms are private,
// no count is published for them.
func (h *Hub) Disconnect(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.sessions[sessionID]; !ok {
		return
	}
	delete(h.sessions, sessionID)

	changed := h.rooms.RemoveSessionEverywhere(sessionID)
	for _, topic := range changed {
		if topic.IsProblem() {
			h.broadcastPresenceLocked(topic)
		}
	}
	log.WithField("sessionID", sessionID).Debug("Session disconnected")
}

// JoinUser binds a user identity to the session and subscribes it to the
// user's private room. Rebinding to a different user leaves the previous
// user room first, so a session never receives two users' notifications.
func (h *Hub) JoinUser(sessionID, userID string) {
	if userID == "" {
		log.WithField("sessionID", sessionID).Warn("join-user with empty user id ignored")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	sess, ok := h.sessions[sessionID]
	if !ok {
		return
	}
	if sess.userID != "" && sess.userID != userID {
		h.rooms.Leave(UserTopic(sess.userID), sessionID)
	}
	sess.userID = userID
	h.rooms.Join(UserTopic(userID), sessionID)
}

// JoinProblem subscribes the session to a problem room and publishes the
// new viewer count to that room.
func (h *Hub) JoinProblem(sessionID, problemID string) {
	if problemID == "" {
		log.WithField("sessionID", sessionID).Warn("join-problem with empty problem id ignored")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.sessions[sessionID]; !ok {
		return
	}
	h.rooms.Join(ProblemTopic(problemID), sessionID)
	h.broadcastPresenceLocked(ProblemTopic(problemID))
}

// LeaveProblem unsubscribes the session from a problem room and publishes
// the new viewer count, 0 if the room emptied.
func (h *Hub) LeaveProblem(sessionID, problemID string) {
	if problemID == "" {
		log.WithField("sessionID", sessionID).Warn("leave-problem with empty problem id ignored")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.rooms.Leave(ProblemTopic(problemID), sessionID) {
		return
	}
	h.broadcastPresenceLocked(ProblemTopic(problemID))
}

// ActiveViewers returns the current presence count for a problem.
func (h *Hub) ActiveViewers(problemID string) int {
	return h.rooms.MemberCount(ProblemTopic(problemID))
}

// Broadcast delivers the payload to every session in the topic. Delivery is
// best-effort: a send failure on one session is treated as that session
// being absent and never aborts delivery to the rest. Broadcasting to an
// empty topic is a silent no-op.
func (h *Hub) Broadcast(topic Topic, event string, payload interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.broadcastLocked(topic, event, payload)
}

func (h *Hub) broadcastLocked(topic Topic, event string, payload interface{}) {
	for _, sessionID := range h.rooms.Members(topic) {
		sess, ok := h.sessions[sessionID]
		if !ok {
			continue
		}
		if err := sess.sender.Send(event, payload); err != nil {
			log.WithFields(log.Fields{
				"sessionID": sessionID,
				"event":     event,
			}).WithError(err).Debug("Dropped event for session")
		}
	}
}

func (h *Hub) broadcastPresenceLocked(topic Topic) {
	h.broadcastLocked(topic, EventActiveViewersUpdated, ActiveViewersPayload{
		ProblemID:     topic.ProblemID(),
		ActiveViewers: h.rooms.MemberCount(topic),
	})
}
