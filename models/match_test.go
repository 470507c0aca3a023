package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchStatusTransitions(t *testing.T) {
	tests := []struct {
		current MatchStatus
		next    MatchStatus
		ok      bool
	}{
		{MatchStatusUpcoming, MatchStatusInProgress, true},
		{MatchStatusUpcoming, MatchStatusCompleted, true},
		{MatchStatusUpcoming, MatchStatusCancelled, true},
		{MatchStatusInProgress, MatchStatusCompleted, true},
		{MatchStatusInProgress, MatchStatusCancelled, true},
		{MatchStatusInProgress, MatchStatusUpcoming, false},
		{MatchStatusCompleted, MatchStatusInProgress, false},
		{MatchStatusCompleted, MatchStatusUpcoming, false},
		{MatchStatusCancelled, MatchStatusInProgress, false},
		{MatchStatusCompleted, MatchStatusCompleted, true},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.ok, IsValidMatchStatusTransition(tc.current, tc.next),
			"%s -> %s", tc.current, tc.next)
	}
}

func TestMatchStatusTerminal(t *testing.T) {
	assert.False(t, MatchStatusUpcoming.Terminal())
	assert.False(t, MatchStatusInProgress.Terminal())
	assert.True(t, MatchStatusCompleted.Terminal())
	assert.True(t, MatchStatusCancelled.Terminal())
}

func TestMatchSlotHelpers(t *testing.T) {
	a, b := 7, 8
	m := &Match{TeamAID: &a}

	assert.Equal(t, &a, m.SlotTeamID(SlotA))
	assert.Nil(t, m.SlotTeamID(SlotB))
	assert.False(t, m.HasConcreteTeams())

	m.TeamBID = &b
	assert.True(t, m.HasConcreteTeams())
}
