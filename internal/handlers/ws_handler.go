package handlers

import (
	"net/http"
	"sync"

	"github.com/adilzhan-s/crowdsolve/internal/realtime"
	jwtutil "github.com/adilzhan-s/crowdsolve/pkg/jwt"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WSHandler upgrades incoming connections and feeds their join/leave
// events into the hub.
type WSHandler struct {
	Hub       *realtime.Hub
	JWTSecret string
}

// NewWSHandler creates a new instance of WSHandler.
func NewWSHandler(hub *realtime.Hub, jwtSecret string) *WSHandler {
	return &WSHandler{Hub: hub, JWTSecret: jwtSecret}
}

// wsSession wraps a websocket connection behind the hub's Sender interface.
// gorilla connections allow only one concurrent writer, so writes are
// serialized under a mutex.
type wsSession struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *wsSession) Send(event string, payload interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(realtime.Envelope{Event: event, Data: payload})
}

// AttachHandler upgrades the request to a websocket session. A token is
// optional: anonymous sessions can watch problem rooms, but binding a
// private user room requires a valid token, and only for the token's
// own user id.
func (h *WSHandler) AttachHandler(w http.ResponseWriter, r *http.Request) {
	var tokenUserID string
	if token := r.URL.Query().Get("token"); token != "" {
		claims, err := jwtutil.ValidateToken(token, h.JWTSecret)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}
		tokenUserID = claims.UserID
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Error("WebSocket upgrade failed")
		return
	}

	sessionID := uuid.NewString()
	h.Hub.Connect(sessionID, &wsSession{conn: conn})
	log.WithFields(log.Fields{"sessionID": sessionID, "userID": tokenUserID}).Info("WebSocket connected")

	defer func() {
		h.Hub.Disconnect(sessionID)
		conn.Close()
		log.WithField("sessionID", sessionID).Info("WebSocket disconnected")
	}()

	for {
		var msg realtime.ClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Debug("WebSocket read error")
			}
			return
		}

		switch msg.Event {
		case realtime.EventJoinUser:
			// User rooms are private: clients may only bind the identity
			// their token proves.
			if tokenUserID == "" {
				log.WithField("sessionID", sessionID).Warn("join-user rejected: no token presented")
				continue
			}
			if msg.UserID != tokenUserID {
				log.WithFields(log.Fields{
					"sessionID": sessionID,
					"userID":    msg.UserID,
				}).Warn("join-user rejected: id does not match token")
				continue
			}
			h.Hub.JoinUser(sessionID, msg.UserID)
		case realtime.EventJoinProblem:
			h.Hub.JoinProblem(sessionID, msg.ProblemID)
		case realtime.EventLeaveProblem:
			h.Hub.LeaveProblem(sessionID, msg.ProblemID)
		default:
			log.WithFields(log.Fields{
				"sessionID": sessionID,
				"event":     msg.Event,
			}).Debug("Ignoring unknown websocket event")
		}
	}
}
