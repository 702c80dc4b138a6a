package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChannelBuilders(t *testing.T) {
	assert.Equal(t, "project.7", ProjectChannel(7))
	assert.Equal(t, "issue.42", IssueChannel(42))
	assert.Equal(t, "sprint.3", SprintChannel(3))
}

func TestMatchTopic(t *testing.T) {
	cases := []struct {
		pattern string
		topic   string
		want    bool
	}{
		{"project.7", "project.7", true},
		{"project.*", "project.7", true},
		{"project.*", "project.12345", true},
		{"project.*", "issue.7", false},
		{"project.*", "project.7.members", false},
		{"project.7", "project.8", false},
		{"*.7", "project.7", true},
		{"issue.*", "issue.42", true},
		{"sprint.*", "sprint.3", true},
		{"project", "project.7", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, MatchTopic(tc.pattern, tc.topic),
			"pattern %q topic %q", tc.pattern, tc.topic)
	}
}
