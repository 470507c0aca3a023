package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencourt/matchday/models"
)

func completedMatch(teamA, teamB, scoreA, scoreB int) *models.Match {
	return &models.Match{
		Type:    models.MatchTypePool,
		TeamAID: &teamA,
		TeamBID: &teamB,
		ScoreA:  &scoreA,
		ScoreB:  &scoreB,
		Status:  models.MatchStatusCompleted,
	}
}

func TestComputeStandingsFourTeamPool(t *testing.T) {
	teams := []TeamSeed{
		{RegistrationID: 1, Name: "Aces"},
		{RegistrationID: 2, Name: "Bears"},
		{RegistrationID: 3, Name: "Comets"},
		{RegistrationID: 4, Name: "Drakes"},
	}
	matches := []*models.Match{
		completedMatch(1, 2, 3, 1),
		completedMatch(1, 3, 2, 0),
		completedMatch(1, 4, 1, 0),
		completedMatch(2, 3, 2, 2),
		completedMatch(2, 4, 4, 1),
		completedMatch(3, 4, 3, 0),
	}

	rows := ComputeStandings(teams, matches, DefaultScoring())
	require.Len(t, rows, 4)

	assert.Equal(t, 1, rows[0].RegistrationID)
	assert.Equal(t, 9, rows[0].Points)
	assert.Equal(t, 3, rows[0].Wins)
	assert.Equal(t, 6, rows[0].GoalsFor)
	assert.Equal(t, 1, rows[0].GoalsAgainst)
	assert.Equal(t, 5, rows[0].GoalDifference)

	assert.Equal(t, 2, rows[1].RegistrationID)
	assert.Equal(t, 4, rows[1].Points)
	assert.Equal(t, 1, rows[1].Draws)

	assert.Equal(t, 3, rows[2].RegistrationID)
	assert.Equal(t, 4, rows[2].Points)

	assert.Equal(t, 4, rows[3].RegistrationID)
	assert.Equal(t, 0, rows[3].Points)
	assert.Equal(t, 3, rows[3].Losses)

	for i, row := range rows {
		assert.Equal(t, i+1, row.Position)
		assert.Equal(t, 3, row.Played)
	}
}

// Bears and Comets finish level on points; Bears have the better goal
// difference and must rank above.
func TestComputeStandingsGoalDifferenceTieBreak(t *testing.T) {
	teams := []TeamSeed{
		{RegistrationID: 1, Name: "Bears"},
		{RegistrationID: 2, Name: "Comets"},
		{RegistrationID: 3, Name: "Drakes"},
	}
	matches := []*models.Match{
		completedMatch(1, 3, 5, 0),
		completedMatch(2, 3, 1, 0),
		completedMatch(1, 2, 1, 1),
	}

	rows := ComputeStandings(teams, matches, DefaultScoring())
	require.Len(t, rows, 3)
	assert.Equal(t, 1, rows[0].RegistrationID)
	assert.Equal(t, 2, rows[1].RegistrationID)
	assert.Equal(t, rows[0].Points, rows[1].Points)
	assert.Greater(t, rows[0].GoalDifference, rows[1].GoalDifference)
}

func TestComputeStandingsGoalsForTieBreak(t *testing.T) {
	teams := []TeamSeed{
		{RegistrationID: 1, Name: "Low"},
		{RegistrationID: 2, Name: "High"},
		{RegistrationID: 3, Name: "Rest"},
	}
	// Teams 1 and 2 are level on points and goal difference, but team 2
	// scored more.
	matches := []*models.Match{
		completedMatch(1, 3, 1, 0),
		completedMatch(2, 3, 3, 2),
		completedMatch(1, 2, 0, 0),
	}

	rows := ComputeStandings(teams, matches, DefaultScoring())
	require.Len(t, rows, 3)
	assert.Equal(t, 2, rows[0].RegistrationID)
	assert.Equal(t, rows[0].Points, rows[1].Points)
	assert.Equal(t, rows[0].GoalDifference, rows[1].GoalDifference)
	assert.Equal(t, 3, rows[0].GoalsFor)
	assert.Equal(t, 1, rows[1].GoalsFor)
}

func TestComputeStandingsNameTieBreakIsCaseInsensitive(t *testing.T) {
	teams := []TeamSeed{
		{RegistrationID: 10, Name: "zephyrs"},
		{RegistrationID: 20, Name: "Aces"},
		{RegistrationID: 30, Name: "bears"},
	}

	rows := ComputeStandings(teams, nil, DefaultScoring())
	require.Len(t, rows, 3)
	assert.Equal(t, "Aces", rows[0].Name)
	assert.Equal(t, "bears", rows[1].Name)
	assert.Equal(t, "zephyrs", rows[2].Name)
}

func TestComputeStandingsIsOrderIndependent(t *testing.T) {
	teams := []TeamSeed{
		{RegistrationID: 1, Name: "Aces"},
		{RegistrationID: 2, Name: "Bears"},
		{RegistrationID: 3, Name: "Comets"},
	}
	matches := []*models.Match{
		completedMatch(1, 2, 2, 1),
		completedMatch(2, 3, 0, 3),
		completedMatch(3, 1, 1, 1),
	}
	reversed := []*models.Match{matches[2], matches[0], matches[1]}

	assert.Equal(t,
		ComputeStandings(teams, matches, DefaultScoring()),
		ComputeStandings(teams, reversed, DefaultScoring()))
}

func TestComputeStandingsSkipsUnfinishedMatches(t *testing.T) {
	teams := []TeamSeed{
		{RegistrationID: 1, Name: "Aces"},
		{RegistrationID: 2, Name: "Bears"},
	}
	score := 2
	matches := []*models.Match{
		{TeamAID: intPtr(1), TeamBID: intPtr(2), ScoreA: &score, ScoreB: &score, Status: models.MatchStatusInProgress},
		{TeamAID: intPtr(1), TeamBID: intPtr(2), Status: models.MatchStatusCompleted},
		{TeamAID: intPtr(1), ScoreA: &score, ScoreB: &score, Status: models.MatchStatusCompleted},
		nil,
	}

	rows := ComputeStandings(teams, matches, DefaultScoring())
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Zero(t, row.Played)
		assert.Zero(t, row.Points)
	}
}

func TestComputeStandingsEmptyPool(t *testing.T) {
	rows := ComputeStandings(nil, nil, DefaultScoring())
	assert.Empty(t, rows)
}

func TestComputeStandingsCustomScoring(t *testing.T) {
	teams := []TeamSeed{
		{RegistrationID: 1, Name: "Aces"},
		{RegistrationID: 2, Name: "Bears"},
		{RegistrationID: 3, Name: "Comets"},
	}
	matches := []*models.Match{
		completedMatch(1, 2, 2, 0),
		completedMatch(1, 3, 1, 1),
	}

	rows := ComputeStandings(teams, matches, ScoringRules{Win: 2, Draw: 1, Loss: 0})
	require.Len(t, rows, 3)
	assert.Equal(t, 1, rows[0].RegistrationID)
	assert.Equal(t, 3, rows[0].Points)
}

func intPtr(v int) *int { return &v }
