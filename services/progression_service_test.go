package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencourt/matchday/brackets"
	"github.com/opencourt/matchday/models"
)

type progressionFixture struct {
	matches     *fakeMatchRepo
	pools       *fakePoolRepo
	regs        *fakeRegistrationRepo
	tournaments *fakeTournamentRepo
	standings   *fakeStandingsService
	svc         ProgressionService
}

// newProgressionFixture wires the service against in-memory state for one
// tournament (id 1) with one phase (id 2).
func newProgressionFixture() *progressionFixture {
	f := &progressionFixture{
		matches:     newFakeMatchRepo(),
		pools:       newFakePoolRepo(),
		regs:        newFakeRegistrationRepo(),
		tournaments: newFakeTournamentRepo(),
		standings:   &fakeStandingsService{rowsByPool: make(map[int][]brackets.StandingRow)},
	}
	f.tournaments.tournaments[1] = &models.Tournament{ID: 1, Name: "Open", Status: models.TournamentStatusActive}
	f.tournaments.tournamentByPhase[2] = 1
	f.matches.tournamentByPhase[2] = 1
	f.pools.tournamentByPhase[2] = 1

	f.svc = NewProgressionService(
		fakeTxRunner{}, f.matches, f.pools, f.regs, f.tournaments, f.standings, nil)
	return f
}

func (f *progressionFixture) addCompletedMatch(id, teamA, teamB, scoreA, scoreB int) *models.Match {
	m := &models.Match{
		ID:      id,
		PhaseID: 2,
		Type:    models.MatchTypeQualification,
		TeamAID: &teamA,
		TeamBID: &teamB,
		ScoreA:  &scoreA,
		ScoreB:  &scoreB,
		Status:  models.MatchStatusCompleted,
	}
	return f.matches.put(m)
}

func (f *progressionFixture) addEmptyMatch(id int) *models.Match {
	return f.matches.put(&models.Match{
		ID:      id,
		PhaseID: 2,
		Type:    models.MatchTypeBracket,
		Status:  models.MatchStatusUpcoming,
	})
}

func slotPtr(s models.Slot) *models.Slot { return &s }

func skippedContains(outcome *PropagationOutcome, fragment string) bool {
	for _, s := range outcome.Skipped {
		if strings.Contains(s, fragment) {
			return true
		}
	}
	return false
}

func TestPropagateWritesWinnerAndLoser(t *testing.T) {
	f := newProgressionFixture()
	f.regs.add(101, 1, "Aces")
	f.regs.add(102, 1, "Bears")

	winnerDest := f.addEmptyMatch(2)
	loserDest := f.addEmptyMatch(3)

	source := f.addCompletedMatch(1, 101, 102, 21, 15)
	source.WinnerNextMatchID = &winnerDest.ID
	source.WinnerNextSlot = slotPtr(models.SlotA)
	source.LoserNextMatchID = &loserDest.ID
	source.LoserNextSlot = slotPtr(models.SlotB)

	outcome, err := f.svc.Propagate(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.True(t, outcome.Propagated())
	assert.Empty(t, outcome.Skipped)

	require.NotNil(t, outcome.WinnerID)
	assert.Equal(t, 101, *outcome.WinnerID)
	require.NotNil(t, outcome.LoserID)
	assert.Equal(t, 102, *outcome.LoserID)
	require.NotNil(t, outcome.WinnerDestinationID)
	assert.Equal(t, 2, *outcome.WinnerDestinationID)
	require.NotNil(t, outcome.LoserDestinationID)
	assert.Equal(t, 3, *outcome.LoserDestinationID)

	require.NotNil(t, winnerDest.TeamAID)
	assert.Equal(t, 101, *winnerDest.TeamAID)
	require.NotNil(t, winnerDest.LabelA)
	assert.Equal(t, "Aces", *winnerDest.LabelA)

	require.NotNil(t, loserDest.TeamBID)
	assert.Equal(t, 102, *loserDest.TeamBID)
	require.NotNil(t, loserDest.LabelB)
	assert.Equal(t, "Bears", *loserDest.LabelB)
}

func TestPropagateWinnerIsTeamBWhenItScoresMore(t *testing.T) {
	f := newProgressionFixture()
	f.regs.add(101, 1, "Aces")
	f.regs.add(102, 1, "Bears")

	dest := f.addEmptyMatch(2)
	source := f.addCompletedMatch(1, 101, 102, 10, 21)
	source.WinnerNextMatchID = &dest.ID
	source.WinnerNextSlot = slotPtr(models.SlotA)

	outcome, err := f.svc.Propagate(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, outcome.WinnerID)
	assert.Equal(t, 102, *outcome.WinnerID)
	require.NotNil(t, dest.TeamAID)
	assert.Equal(t, 102, *dest.TeamAID)
}

func TestPropagateIsIdempotent(t *testing.T) {
	f := newProgressionFixture()
	f.regs.add(101, 1, "Aces")
	f.regs.add(102, 1, "Bears")

	dest := f.addEmptyMatch(2)
	source := f.addCompletedMatch(1, 101, 102, 21, 15)
	source.WinnerNextMatchID = &dest.ID
	source.WinnerNextSlot = slotPtr(models.SlotA)

	first, err := f.svc.Propagate(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, first.Propagated())

	second, err := f.svc.Propagate(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, second.Propagated())
	assert.True(t, skippedContains(second, "already holds"))
	require.NotNil(t, dest.TeamAID)
	assert.Equal(t, 101, *dest.TeamAID)
}

func TestPropagateFallsBackToFirstFreeSlot(t *testing.T) {
	f := newProgressionFixture()
	f.regs.add(101, 1, "Aces")
	f.regs.add(102, 1, "Bears")

	dest := f.addEmptyMatch(2)
	occupant := 555
	dest.TeamAID = &occupant

	// No configured slot: A is taken, so the winner lands in B.
	source := f.addCompletedMatch(1, 101, 102, 21, 15)
	source.WinnerNextMatchID = &dest.ID

	outcome, err := f.svc.Propagate(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, outcome.Propagated())
	require.NotNil(t, dest.TeamBID)
	assert.Equal(t, 101, *dest.TeamBID)
}

func TestPropagateSkipsOversubscribedSlot(t *testing.T) {
	f := newProgressionFixture()
	f.regs.add(101, 1, "Aces")
	f.regs.add(102, 1, "Bears")

	dest := f.addEmptyMatch(2)
	occupant := 555
	dest.TeamAID = &occupant

	source := f.addCompletedMatch(1, 101, 102, 21, 15)
	source.WinnerNextMatchID = &dest.ID
	source.WinnerNextSlot = slotPtr(models.SlotA)

	outcome, err := f.svc.Propagate(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, outcome.Propagated())
	assert.True(t, skippedContains(outcome, "oversubscribed"))
	assert.Equal(t, 555, *dest.TeamAID)
}

func TestPropagateSkipsFullDestination(t *testing.T) {
	f := newProgressionFixture()
	f.regs.add(101, 1, "Aces")
	f.regs.add(102, 1, "Bears")

	dest := f.addEmptyMatch(2)
	a, b := 555, 556
	dest.TeamAID, dest.TeamBID = &a, &b

	source := f.addCompletedMatch(1, 101, 102, 21, 15)
	source.WinnerNextMatchID = &dest.ID

	outcome, err := f.svc.Propagate(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, outcome.Propagated())
	assert.True(t, skippedContains(outcome, "no free slot"))
}

func TestPropagateSkipsDraw(t *testing.T) {
	f := newProgressionFixture()
	f.addCompletedMatch(1, 101, 102, 2, 2)

	outcome, err := f.svc.Propagate(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, outcome.Propagated())
	assert.True(t, skippedContains(outcome, "draw"))
}

func TestPropagateSkipsUnfinishedMatch(t *testing.T) {
	f := newProgressionFixture()
	m := f.addCompletedMatch(1, 101, 102, 10, 5)
	m.Status = models.MatchStatusInProgress

	outcome, err := f.svc.Propagate(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, outcome.Propagated())
	assert.True(t, skippedContains(outcome, "not completed"))
}

func TestPropagateSkipsCancelledMatch(t *testing.T) {
	f := newProgressionFixture()
	m := f.addCompletedMatch(1, 101, 102, 10, 5)
	m.Status = models.MatchStatusCancelled

	outcome, err := f.svc.Propagate(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, outcome.Propagated())
}

func TestPropagateSkipsMatchWithoutConcreteTeams(t *testing.T) {
	f := newProgressionFixture()
	m := f.addCompletedMatch(1, 101, 102, 10, 5)
	m.TeamBID = nil

	outcome, err := f.svc.Propagate(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, outcome.Propagated())
	assert.True(t, skippedContains(outcome, "missing a concrete team"))
}

func TestPropagateUnknownMatch(t *testing.T) {
	f := newProgressionFixture()

	_, err := f.svc.Propagate(context.Background(), 404)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestSweepPhaseResolvesMatchAndPoolSources(t *testing.T) {
	f := newProgressionFixture()
	f.regs.add(201, 1, "Comets")
	f.regs.add(202, 1, "Drakes")
	f.regs.add(203, 1, "Eagles")

	// Qualification match 1 finished 21-10, so WQ1 resolves to team 201.
	qual := f.addCompletedMatch(1, 201, 202, 21, 10)
	qual.OrderNumber = 1

	// Pool 1 has a final table, so P1-1 resolves to team 203.
	f.pools.pools[1] = &models.Pool{ID: 1, PhaseID: 2, Name: "Pool A", OrderNumber: 1}
	f.standings.rowsByPool[1] = []brackets.StandingRow{
		{RegistrationID: 203, Name: "Eagles", Position: 1},
		{RegistrationID: 202, Name: "Drakes", Position: 2},
	}

	wq1, p11 := "WQ1", "P1-1"
	final := f.addEmptyMatch(5)
	final.SourceA = &wq1
	final.SourceB = &p11

	outcome, err := f.svc.SweepPhase(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, outcome.ResolvedSlots)
	assert.Empty(t, outcome.Unresolved)

	require.NotNil(t, final.TeamAID)
	assert.Equal(t, 201, *final.TeamAID)
	require.NotNil(t, final.TeamBID)
	assert.Equal(t, 203, *final.TeamBID)
	require.NotNil(t, final.LabelA)
	assert.Equal(t, "Comets", *final.LabelA)
}

func TestSweepPhaseLeavesPendingSourcesUnresolved(t *testing.T) {
	f := newProgressionFixture()

	// Qualification match 1 exists but is still running.
	qual := f.addCompletedMatch(1, 201, 202, 5, 3)
	qual.OrderNumber = 1
	qual.Status = models.MatchStatusInProgress

	wq1, wq9, junk := "WQ1", "WQ9", "first semifinalist"
	m := f.addEmptyMatch(5)
	m.SourceA = &wq1
	m.SourceB = &wq9

	other := f.addEmptyMatch(6)
	other.SourceA = &junk

	outcome, err := f.svc.SweepPhase(context.Background(), 2)
	require.NoError(t, err)
	assert.Zero(t, outcome.ResolvedSlots)
	assert.ElementsMatch(t, []string{"WQ1", "WQ9", "first semifinalist"}, outcome.Unresolved)
	assert.Nil(t, m.TeamAID)
}

func TestSweepPhaseIsIdempotent(t *testing.T) {
	f := newProgressionFixture()
	f.regs.add(201, 1, "Comets")
	f.regs.add(202, 1, "Drakes")

	qual := f.addCompletedMatch(1, 201, 202, 21, 10)
	qual.OrderNumber = 1

	wq1 := "WQ1"
	m := f.addEmptyMatch(5)
	m.SourceA = &wq1

	first, err := f.svc.SweepPhase(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 1, first.ResolvedSlots)

	second, err := f.svc.SweepPhase(context.Background(), 2)
	require.NoError(t, err)
	assert.Zero(t, second.ResolvedSlots)
	assert.Empty(t, second.Unresolved)
}

func TestSweepPhaseRefusesDuplicateRegistrationAcrossSlots(t *testing.T) {
	f := newProgressionFixture()
	f.regs.add(201, 1, "Comets")
	f.regs.add(202, 1, "Drakes")

	qual := f.addCompletedMatch(1, 201, 202, 21, 10)
	qual.OrderNumber = 1

	// Slot A already holds the team WQ1 resolves to.
	wq1 := "WQ1"
	winner := 201
	m := f.addEmptyMatch(5)
	m.TeamAID = &winner
	m.SourceB = &wq1

	outcome, err := f.svc.SweepPhase(context.Background(), 2)
	require.NoError(t, err)
	assert.Zero(t, outcome.ResolvedSlots)
	assert.Contains(t, outcome.Unresolved, "WQ1")
	assert.Nil(t, m.TeamBID)
}

func TestSweepPhaseSkipsCancelledMatches(t *testing.T) {
	f := newProgressionFixture()
	f.regs.add(201, 1, "Comets")
	f.regs.add(202, 1, "Drakes")

	qual := f.addCompletedMatch(1, 201, 202, 21, 10)
	qual.OrderNumber = 1

	wq1 := "WQ1"
	m := f.addEmptyMatch(5)
	m.SourceA = &wq1
	m.Status = models.MatchStatusCancelled

	outcome, err := f.svc.SweepPhase(context.Background(), 2)
	require.NoError(t, err)
	assert.Zero(t, outcome.ResolvedSlots)
	assert.Nil(t, m.TeamAID)
}

func TestSweepPhaseUnknownPhase(t *testing.T) {
	f := newProgressionFixture()

	_, err := f.svc.SweepPhase(context.Background(), 404)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPhaseNotFound)
}

func TestResolveSourceMalformedCode(t *testing.T) {
	f := newProgressionFixture()

	id, err := f.svc.ResolveSource(context.Background(), 1, "not a code")
	require.NoError(t, err)
	assert.Nil(t, id)
}

func TestResolveSourceWinnerAndLoser(t *testing.T) {
	f := newProgressionFixture()
	qual := f.addCompletedMatch(1, 201, 202, 21, 10)
	qual.OrderNumber = 3

	winner, err := f.svc.ResolveSource(context.Background(), 1, "WQ3")
	require.NoError(t, err)
	require.NotNil(t, winner)
	assert.Equal(t, 201, *winner)

	loser, err := f.svc.ResolveSource(context.Background(), 1, "LQ3")
	require.NoError(t, err)
	require.NotNil(t, loser)
	assert.Equal(t, 202, *loser)
}

func TestResolveSourcePoolRankBeyondTableSize(t *testing.T) {
	f := newProgressionFixture()
	f.pools.pools[1] = &models.Pool{ID: 1, PhaseID: 2, Name: "Pool A", OrderNumber: 1}
	f.standings.rowsByPool[1] = []brackets.StandingRow{
		{RegistrationID: 203, Position: 1},
	}

	id, err := f.svc.ResolveSource(context.Background(), 1, "P1-5")
	require.NoError(t, err)
	assert.Nil(t, id)
}

func TestResolveSourceUnknownTournament(t *testing.T) {
	f := newProgressionFixture()

	_, err := f.svc.ResolveSource(context.Background(), 404, "WQ1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}
