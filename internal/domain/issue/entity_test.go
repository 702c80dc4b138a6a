package issue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{StatusTodo, StatusInProgress, true},
		{StatusTodo, StatusDone, false},
		{StatusInProgress, StatusInReview, true},
		{StatusInProgress, StatusTodo, true},
		{StatusInProgress, StatusDone, false},
		{StatusInReview, StatusDone, true},
		{StatusInReview, StatusInProgress, true},
		{StatusInReview, StatusTodo, true},
		{StatusDone, StatusTodo, true},
		{StatusDone, StatusInReview, false},
		{"UNKNOWN", StatusTodo, false},
		{StatusTodo, StatusTodo, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ValidTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}
