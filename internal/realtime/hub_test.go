package realtime

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSender captures every event delivered to a session.
type recordingSender struct {
	mu     sync.Mutex
	events []recordedEvent
	fail   bool
}

type recordedEvent struct {
	event   string
	payload interface{}
}

func (s *recordingSender) Send(event string, payload interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return fmt.Errorf("connection gone")
	}
	s.events = append(s.events, recordedEvent{event: event, payload: payload})
	return nil
}

func (s *recordingSender) recorded() []recordedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]recordedEvent, len(s.events))
	copy(out, s.events)
	return out
}

// countEvents returns how many times the sender saw the named event.
func (s *recordingSender) countEvents(name string) int {
	n := 0
	for _, e := range s.recorded() {
		if e.event == name {
			n++
		}
	}
	return n
}

// lastPresence returns the most recent active-viewers-updated payload.
func (s *recordingSender) lastPresence(t *testing.T) ActiveViewersPayload {
	t.Helper()
	events := s.recorded()
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].event == EventActiveViewersUpdated {
			payload, ok := events[i].payload.(ActiveViewersPayload)
			require.True(t, ok)
			return payload
		}
	}
	t.Fatal("no presence event recorded")
	return ActiveViewersPayload{}
}

func TestHubJoinProblemBroadcastsPresence(t *testing.T) {
	hub := NewHub()
	s1 := &recordingSender{}
	s2 := &recordingSender{}

	hub.Connect("s1", s1)
	hub.Connect("s2", s2)

	hub.JoinProblem("s1", "p42")
	assert.Equal(t, ActiveViewersPayload{ProblemID: "p42", ActiveViewers: 1}, s1.lastPresence(t))

	hub.JoinProblem("s2", "p42")
	assert.Equal(t, ActiveViewersPayload{ProblemID: "p42", ActiveViewers: 2}, s1.lastPresence(t))
	assert.Equal(t, ActiveViewersPayload{ProblemID: "p42", ActiveViewers: 2}, s2.lastPresence(t))
	assert.Equal(t, 2, hub.ActiveViewers("p42"))
}

func TestHubDisconnectUpdatesPresence(t *testing.T) {
	hub := NewHub()
	s1 := &recordingSender{}
	s2 := &recordingSender{}

	hub.Connect("s1", s1)
	hub.Connect("s2", s2)
	hub.JoinProblem("s1", "p42")
	hub.JoinProblem("s2", "p42")

	before := s2.countEvents(EventActiveViewersUpdated)
	hub.Disconnect("s1")

	// exactly one more presence event, and it carries the shrunk count
	assert.Equal(t, before+1, s2.countEvents(EventActiveViewersUpdated))
	assert.Equal(t, ActiveViewersPayload{ProblemID: "p42", ActiveViewers: 1}, s2.lastPresence(t))
	assert.Equal(t, 1, hub.ActiveViewers("p42"))

	// disconnecting twice is a no-op
	hub.Disconnect("s1")
	assert.Equal(t, before+1, s2.countEvents(EventActiveViewersUpdated))
}

func TestHubLastViewerLeavingEmptiesRoom(t *testing.T) {
	hub := NewHub()
	s1 := &recordingSender{}

	hub.Connect("s1", s1)
	hub.JoinProblem("s1", "p42")
	hub.LeaveProblem("s1", "p42")

	assert.Equal(t, 0, hub.ActiveViewers("p42"))

	// leaving again changes nothing and publishes nothing
	count := s1.countEvents(EventActiveViewersUpdated)
	hub.LeaveProblem("s1", "p42")
	assert.Equal(t, count, s1.countEvents(EventActiveViewersUpdated))
}

func TestHubDisconnectTouchesEveryJoinedRoom(t *testing.T) {
	hub := NewHub()
	s1 := &recordingSender{}
	watcherA := &recordingSender{}
	watcherB := &recordingSender{}

	hub.Connect("s1", s1)
	hub.Connect("wA", watcherA)
	hub.Connect("wB", watcherB)

	hub.JoinProblem("s1", "pA")
	hub.JoinProblem("s1", "pB")
	hub.JoinProblem("s1", "pC")
	hub.JoinProblem("wA", "pA")
	hub.JoinProblem("wB", "pB")
	hub.JoinUser("s1", "u1")

	hub.Disconnect("s1")

	assert.Equal(t, ActiveViewersPayload{ProblemID: "pA", ActiveViewers: 1}, watcherA.lastPresence(t))
	assert.Equal(t, ActiveViewersPayload{ProblemID: "pB", ActiveViewers: 1}, watcherB.lastPresence(t))
	assert.Equal(t, 0, hub.ActiveViewers("pC"))
}

func TestHubJoinUserDeliversUserEvents(t *testing.T) {
	hub := NewHub()
	s1 := &recordingSender{}
	other := &recordingSender{}

	hub.Connect("s1", s1)
	hub.Connect("other", other)
	hub.JoinUser("s1", "u1")
	hub.JoinUser("other", "u2")

	hub.Broadcast(UserTopic("u1"), EventNewNotification, map[string]string{"id": "n1"})

	assert.Equal(t, 1, s1.countEvents(EventNewNotification))
	assert.Zero(t, other.countEvents(EventNewNotification))
}

func TestHubJoinUserRebindLeavesPriorRoom(t *testing.T) {
	hub := NewHub()
	s1 := &recordingSender{}

	hub.Connect("s1", s1)
	hub.JoinUser("s1", "u1")
	hub.JoinUser("s1", "u2")

	hub.Broadcast(UserTopic("u1"), EventNewNotification, nil)
	assert.Zero(t, s1.countEvents(EventNewNotification))

	hub.Broadcast(UserTopic("u2"), EventNewNotification, nil)
	assert.Equal(t, 1, s1.countEvents(EventNewNotification))
}

func TestHubIgnoresEmptyIDs(t *testing.T) {
	hub := NewHub()
	s1 := &recordingSender{}
	hub.Connect("s1", s1)

	hub.JoinUser("s1", "")
	hub.JoinProblem("s1", "")
	hub.LeaveProblem("s1", "")

	assert.Empty(t, s1.recorded())
}

func TestHubBroadcastToEmptyTopicIsNoOp(t *testing.T) {
	hub := NewHub()
	s1 := &recordingSender{}
	hub.Connect("s1", s1)

	hub.Broadcast(ProblemTopic("nobody"), EventNewSolution, nil)
	assert.Empty(t, s1.recorded())
}

func TestHubFailedSendDoesNotAbortDelivery(t *testing.T) {
	hub := NewHub()
	broken := &recordingSender{fail: true}
	healthy := &recordingSender{}

	hub.Connect("broken", broken)
	hub.Connect("healthy", healthy)
	hub.JoinProblem("broken", "p1")
	hub.JoinProblem("healthy", "p1")

	hub.Broadcast(ProblemTopic("p1"), EventNewSolution, nil)
	assert.Equal(t, 1, healthy.countEvents(EventNewSolution))
}

func TestHubBroadcastOrderingPerTopic(t *testing.T) {
	hub := NewHub()
	s1 := &recordingSender{}
	hub.Connect("s1", s1)
	hub.JoinProblem("s1", "p1")

	hub.Broadcast(ProblemTopic("p1"), EventNewSolution, 1)
	hub.Broadcast(ProblemTopic("p1"), EventSolutionUpdated, 2)
	hub.Broadcast(ProblemTopic("p1"), EventSolutionDeleted, 3)

	events := s1.recorded()
	require.Len(t, events, 4) // presence + three broadcasts
	assert.Equal(t, EventActiveViewersUpdated, events[0].event)
	assert.Equal(t, EventNewSolution, events[1].event)
	assert.Equal(t, EventSolutionUpdated, events[2].event)
	assert.Equal(t, EventSolutionDeleted, events[3].event)
}

func TestHubJoinBeforeConnectIsIgnored(t *testing.T) {
	hub := NewHub()

	hub.JoinProblem("ghost", "p1")
	hub.JoinUser("ghost", "u1")

	assert.Equal(t, 0, hub.ActiveViewers("p1"))
}
