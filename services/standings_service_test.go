package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencourt/matchday/models"
)

type standingsFixture struct {
	matches     *fakeMatchRepo
	pools       *fakePoolRepo
	poolTeams   *fakePoolTeamRepo
	regs        *fakeRegistrationRepo
	tournaments *fakeTournamentRepo
	svc         StandingsService
}

func newStandingsFixture() *standingsFixture {
	f := &standingsFixture{
		matches:     newFakeMatchRepo(),
		pools:       newFakePoolRepo(),
		poolTeams:   newFakePoolTeamRepo(),
		regs:        newFakeRegistrationRepo(),
		tournaments: newFakeTournamentRepo(),
	}
	f.tournaments.tournaments[1] = &models.Tournament{ID: 1, Status: models.TournamentStatusActive}
	f.tournaments.tournamentByPhase[2] = 1
	f.pools.tournamentByPhase[2] = 1

	f.svc = NewStandingsService(f.pools, f.poolTeams, f.matches, f.regs, f.tournaments, nil)
	return f
}

func (f *standingsFixture) addPool(poolID int, registrationIDs ...int) {
	f.pools.pools[poolID] = &models.Pool{ID: poolID, PhaseID: 2, Name: "Pool A", OrderNumber: 1}
	for _, regID := range registrationIDs {
		pt := &models.PoolTeam{ID: f.poolTeams.nextID, PoolID: poolID, RegistrationID: regID}
		f.poolTeams.teams[pt.ID] = pt
		f.poolTeams.nextID++
	}
}

func (f *standingsFixture) addPoolMatch(poolID, teamA, teamB, scoreA, scoreB int) {
	f.matches.put(&models.Match{
		PhaseID: 2,
		PoolID:  &poolID,
		Type:    models.MatchTypePool,
		TeamAID: &teamA,
		TeamBID: &teamB,
		ScoreA:  &scoreA,
		ScoreB:  &scoreB,
		Status:  models.MatchStatusCompleted,
	})
}

func TestPoolStandingsRanksCompletedMatches(t *testing.T) {
	f := newStandingsFixture()
	f.regs.add(101, 1, "Aces")
	f.regs.add(102, 1, "Bears")
	f.regs.add(103, 1, "Comets")
	f.addPool(1, 101, 102, 103)

	f.addPoolMatch(1, 101, 102, 3, 0)
	f.addPoolMatch(1, 101, 103, 2, 1)
	f.addPoolMatch(1, 102, 103, 1, 1)

	rows, err := f.svc.PoolStandings(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, 101, rows[0].RegistrationID)
	assert.Equal(t, "Aces", rows[0].Name)
	assert.Equal(t, 6, rows[0].Points)
	assert.Equal(t, 1, rows[0].Position)

	assert.Equal(t, 103, rows[1].RegistrationID)
	assert.Equal(t, 102, rows[2].RegistrationID)
}

func TestPoolStandingsEmptyPool(t *testing.T) {
	f := newStandingsFixture()
	f.pools.pools[1] = &models.Pool{ID: 1, PhaseID: 2, Name: "Pool A", OrderNumber: 1}

	rows, err := f.svc.PoolStandings(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestPoolStandingsUnknownPool(t *testing.T) {
	f := newStandingsFixture()

	_, err := f.svc.PoolStandings(context.Background(), 404)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPoolNotFound)
}

func TestPoolStandingsUsesTournamentScoring(t *testing.T) {
	f := newStandingsFixture()
	settings := `{"scoring":{"win_points":2,"draw_points":1,"loss_points":0}}`
	f.tournaments.tournaments[1].SettingsJSON = &settings

	f.regs.add(101, 1, "Aces")
	f.regs.add(102, 1, "Bears")
	f.addPool(1, 101, 102)
	f.addPoolMatch(1, 101, 102, 3, 0)

	rows, err := f.svc.PoolStandings(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].Points)
}

func TestRecalculatePoolPersistsPositions(t *testing.T) {
	f := newStandingsFixture()
	f.regs.add(101, 1, "Aces")
	f.regs.add(102, 1, "Bears")
	f.addPool(1, 101, 102)
	f.addPoolMatch(1, 101, 102, 4, 2)

	rows, err := f.svc.RecalculatePool(context.Background(), nil, 1)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Len(t, f.poolTeams.updated, 2)

	byRegistration := map[int]*models.PoolTeam{}
	for _, pt := range f.poolTeams.teams {
		byRegistration[pt.RegistrationID] = pt
	}

	winner := byRegistration[101]
	require.NotNil(t, winner.Position)
	assert.Equal(t, 1, *winner.Position)
	assert.Equal(t, 3, winner.Points)
	assert.Equal(t, 1, winner.Wins)
	assert.Equal(t, 2, winner.GoalDifference)

	loser := byRegistration[102]
	require.NotNil(t, loser.Position)
	assert.Equal(t, 2, *loser.Position)
	assert.Equal(t, 1, loser.Losses)
}
