package realtime

import "strings"

const (
	problemPrefix = "problem:"
	userPrefix    = "user:"
)

// Topic is a named broadcast channel: either a public per-problem room or a
// private per-user room.
type Topic string

// ProblemTopic returns the public room for a problem.
func ProblemTopic(problemID string) Topic {
	return Topic(problemPrefix + problemID)
}

// UserTopic returns the private room for a user.
func UserTopic(userID string) Topic {
	return Topic(userPrefix + userID)
}

// IsProblem reports whether the topic is a problem room. Presence counts are
// only tracked for problem rooms.
func (t Topic) IsProblem() bool {
	return strings.HasPrefix(string(t), problemPrefix)
}

// ProblemID returns the problem id embedded in a problem topic, or "" for
// any other topic.
func (t Topic) ProblemID() string {
	if !t.IsProblem() {
		return ""
	}
	return strings.TrimPrefix(string(t), problemPrefix)
}
