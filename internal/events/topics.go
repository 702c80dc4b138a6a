package events

import (
	"fmt"
	"strings"
)

// Event types
const (
	TypeProjectCreated = "project.created"
	TypeProjectDeleted = "project.deleted"
	TypeIssueCreated   = "issue.created"
	TypeIssueUpdated   = "issue.updated"
	TypeSprintCreated  = "sprint.created"
	TypeSprintClosed   = "sprint.closed"
	TypeCommentAdded   = "comment.added"
)

// SubscribedPatterns is the set of broker patterns the websocket bridge
// listens on. Extending the tracker with a new aggregate means adding its
// pattern here.
var SubscribedPatterns = []string{"project.*", "issue.*", "sprint.*"}

// ProjectChannel returns the canonical channel for a project stream.
func ProjectChannel(projectID int64) string {
	return fmt.Sprintf("project.%d", projectID)
}

// IssueChannel returns the canonical channel for a per-issue stream.
func IssueChannel(issueID int64) string {
	return fmt.Sprintf("issue.%d", issueID)
}

// SprintChannel returns the canonical channel for a per-sprint stream.
func SprintChannel(sprintID int64) string {
	return fmt.Sprintf("sprint.%d", sprintID)
}

// MatchTopic reports whether a dotted topic matches a subscription pattern.
// `*` matches exactly one segment: "project.*" matches "project.7" but not
// "project.7.members".
func MatchTopic(pattern, topic string) bool {
	if pattern == topic {
		return true
	}
	pp := strings.Split(pattern, ".")
	tp := strings.Split(topic, ".")
	if len(pp) != len(tp) {
		return false
	}
	for i, seg := range pp {
		if seg == "*" {
			continue
		}
		if seg != tp[i] {
			return false
		}
	}
	return true
}
