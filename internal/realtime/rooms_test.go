package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoomTableJoinIsIdempotent(t *testing.T) {
	table := NewRoomTable()
	topic := ProblemTopic("p1")

	assert.True(t, table.Join(topic, "s1"))
	assert.False(t, table.Join(topic, "s1"))
	assert.Equal(t, 1, table.MemberCount(topic))
}

func TestRoomTableLeave(t *testing.T) {
	table := NewRoomTable()
	topic := ProblemTopic("p1")

	table.Join(topic, "s1")
	table.Join(topic, "s2")

	assert.True(t, table.Leave(topic, "s1"))
	assert.Equal(t, 1, table.MemberCount(topic))

	// leaving twice changes nothing
	assert.False(t, table.Leave(topic, "s1"))
	assert.Equal(t, 1, table.MemberCount(topic))

	// leaving a room you never joined changes nothing
	assert.False(t, table.Leave(ProblemTopic("other"), "s2"))
}

func TestRoomTableEvictsEmptyRooms(t *testing.T) {
	table := NewRoomTable()
	topic := ProblemTopic("p1")

	table.Join(topic, "s1")
	table.Leave(topic, "s1")

	assert.Equal(t, 0, table.MemberCount(topic))
	assert.Nil(t, table.Members(topic))

	// a fresh join after eviction recreates the room
	assert.True(t, table.Join(topic, "s1"))
	assert.Equal(t, 1, table.MemberCount(topic))
}

func TestRoomTableMembersSnapshot(t *testing.T) {
	table := NewRoomTable()
	topic := ProblemTopic("p1")

	table.Join(topic, "s1")
	table.Join(topic, "s2")
	table.Join(topic, "s3")

	members := table.Members(topic)
	assert.Len(t, members, 3)
	assert.ElementsMatch(t, []string{"s1", "s2", "s3"}, members)
}

func TestRemoveSessionEverywhere(t *testing.T) {
	table := NewRoomTable()

	table.Join(ProblemTopic("p1"), "s1")
	table.Join(ProblemTopic("p2"), "s1")
	table.Join(UserTopic("u1"), "s1")
	table.Join(ProblemTopic("p1"), "s2")

	changed := table.RemoveSessionEverywhere("s1")
	assert.ElementsMatch(t, []Topic{ProblemTopic("p1"), ProblemTopic("p2"), UserTopic("u1")}, changed)

	// the shared room keeps its other member, the rest are gone
	assert.Equal(t, 1, table.MemberCount(ProblemTopic("p1")))
	assert.Equal(t, 0, table.MemberCount(ProblemTopic("p2")))
	assert.Equal(t, 0, table.MemberCount(UserTopic("u1")))

	// removing an unknown session reports no changes
	assert.Empty(t, table.RemoveSessionEverywhere("ghost"))
}

func TestTopicHelpers(t *testing.T) {
	problem := ProblemTopic("64f0")
	user := UserTopic("64f1")

	assert.Equal(t, Topic("problem:64f0"), problem)
	assert.Equal(t, Topic("user:64f1"), user)
	assert.True(t, problem.IsProblem())
	assert.False(t, user.IsProblem())
	assert.Equal(t, "64f0", problem.ProblemID())
}
