package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/adilzhan-s/crowdsolve/internal/realtime"
	jwtutil "github.com/adilzhan-s/crowdsolve/pkg/jwt"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wsTestSecret = "ws-test-secret"

func newWSTestServer(t *testing.T) (*httptest.Server, *realtime.Hub) {
	t.Helper()
	hub := realtime.NewHub()
	handler := NewWSHandler(hub, wsTestSecret)
	server := httptest.NewServer(http.HandlerFunc(handler.AttachHandler))
	t.Cleanup(server.Close)
	return server, hub
}

func dialWS(t *testing.T, server *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	if token != "" {
		url += "?token=" + token
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// waitForViewer blocks until the server's read loop has processed a
// join-problem for the given room, which also proves every earlier frame
// on the same connection was handled.
func waitForViewer(t *testing.T, hub *realtime.Hub, problemID string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.ActiveViewers(problemID) == 1 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("session never joined the problem room")
}

func TestWSAnonymousCannotBindUserRoom(t *testing.T) {
	server, hub := newWSTestServer(t)
	conn := dialWS(t, server, "")

	require.NoError(t, conn.WriteJSON(realtime.ClientMessage{Event: realtime.EventJoinUser, UserID: "u1"}))
	require.NoError(t, conn.WriteJSON(realtime.ClientMessage{Event: realtime.EventJoinProblem, ProblemID: "sync"}))
	waitForViewer(t, hub, "sync")

	hub.Broadcast(realtime.UserTopic("u1"), realtime.EventNewNotification, map[string]string{"id": "n1"})

	// the only frame ever delivered is the presence update from join-problem
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env realtime.Envelope
	require.NoError(t, conn.ReadJSON(&env))
	assert.Equal(t, realtime.EventActiveViewersUpdated, env.Event)

	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	assert.Error(t, conn.ReadJSON(&env))
}

func TestWSJoinUserRejectsForeignID(t *testing.T) {
	server, hub := newWSTestServer(t)
	token, err := jwtutil.GenerateToken("u1", "u1@example.com", wsTestSecret, 1)
	require.NoError(t, err)
	conn := dialWS(t, server, token)

	require.NoError(t, conn.WriteJSON(realtime.ClientMessage{Event: realtime.EventJoinUser, UserID: "u2"}))
	require.NoError(t, conn.WriteJSON(realtime.ClientMessage{Event: realtime.EventJoinProblem, ProblemID: "sync"}))
	waitForViewer(t, hub, "sync")

	hub.Broadcast(realtime.UserTopic("u2"), realtime.EventNewNotification, map[string]string{"id": "n1"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env realtime.Envelope
	require.NoError(t, conn.ReadJSON(&env))
	assert.Equal(t, realtime.EventActiveViewersUpdated, env.Event)

	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	assert.Error(t, conn.ReadJSON(&env))
}

func TestWSJoinUserWithMatchingTokenReceivesEvents(t *testing.T) {
	server, hub := newWSTestServer(t)
	token, err := jwtutil.GenerateToken("u1", "u1@example.com", wsTestSecret, 1)
	require.NoError(t, err)
	conn := dialWS(t, server, token)

	require.NoError(t, conn.WriteJSON(realtime.ClientMessage{Event: realtime.EventJoinUser, UserID: "u1"}))
	require.NoError(t, conn.WriteJSON(realtime.ClientMessage{Event: realtime.EventJoinProblem, ProblemID: "sync"}))
	waitForViewer(t, hub, "sync")

	hub.Broadcast(realtime.UserTopic("u1"), realtime.EventNewNotification, map[string]string{"id": "n1"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env realtime.Envelope
	require.NoError(t, conn.ReadJSON(&env))
	assert.Equal(t, realtime.EventActiveViewersUpdated, env.Event)

	require.NoError(t, conn.ReadJSON(&env))
	assert.Equal(t, realtime.EventNewNotification, env.Event)
}

func TestWSRejectsInvalidToken(t *testing.T) {
	server, _ := newWSTestServer(t)
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "?token=garbage"

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
