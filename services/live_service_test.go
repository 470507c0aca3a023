package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencourt/matchday/live"
	"github.com/opencourt/matchday/models"
)

type liveFixture struct {
	matches     *fakeMatchRepo
	tournaments *fakeTournamentRepo
	sports      *fakeSportRepo
	broadcaster *live.Broadcaster
	svc         LiveService
}

func newLiveFixture() *liveFixture {
	f := &liveFixture{
		matches:     newFakeMatchRepo(),
		tournaments: newFakeTournamentRepo(),
		sports:      newFakeSportRepo(),
		broadcaster: live.NewBroadcaster(0, nil),
	}
	f.sports.sports[3] = &models.Sport{ID: 3, Name: "Volleyball", Code: "volley"}
	f.tournaments.tournaments[1] = &models.Tournament{ID: 1, SportID: 3, Status: models.TournamentStatusActive}
	f.tournaments.tournamentByPhase[2] = 1

	f.svc = NewLiveService(f.broadcaster, f.matches, f.tournaments, f.sports, nil)
	return f
}

func (f *liveFixture) addRunningMatch(id int) *models.Match {
	return f.matches.put(&models.Match{
		ID:      id,
		PhaseID: 2,
		Type:    models.MatchTypeQualification,
		Status:  models.MatchStatusInProgress,
	})
}

func TestLivePublishTagsSnapshotWithSportCode(t *testing.T) {
	f := newLiveFixture()
	f.addRunningMatch(7)

	snap, err := f.svc.Publish(context.Background(), 7, json.RawMessage(`{"sets":[25,20]}`))
	require.NoError(t, err)
	assert.Equal(t, 7, snap.MatchID)
	assert.Equal(t, "volley", snap.Sport)

	stored, ok := f.svc.Snapshot(7)
	require.True(t, ok)
	assert.Equal(t, snap, stored)
}

func TestLivePublishRejectsTerminalMatch(t *testing.T) {
	f := newLiveFixture()
	m := f.addRunningMatch(7)
	m.Status = models.MatchStatusCompleted

	_, err := f.svc.Publish(context.Background(), 7, json.RawMessage(`{}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMatchNotLive)

	_, ok := f.svc.Snapshot(7)
	assert.False(t, ok)
}

func TestLivePublishUnknownMatch(t *testing.T) {
	f := newLiveFixture()

	_, err := f.svc.Publish(context.Background(), 404, json.RawMessage(`{}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestLivePublishResultBroadcastsFinalScoreAndClears(t *testing.T) {
	f := newLiveFixture()
	m := f.addRunningMatch(7)

	_, err := f.svc.Publish(context.Background(), 7, json.RawMessage(`{"sets":[25,20]}`))
	require.NoError(t, err)

	ch := f.svc.Subscribe([]int{7})
	defer f.svc.Unsubscribe(ch, []int{7})

	scoreA, scoreB := 25, 20
	m.ScoreA, m.ScoreB = &scoreA, &scoreB
	m.Status = models.MatchStatusCompleted
	f.svc.PublishResult(context.Background(), m)

	select {
	case ev := <-ch:
		assert.Equal(t, 7, ev.MatchID)
		assert.Equal(t, "volley", ev.Sport)
		assert.JSONEq(t, `{"score_a":25,"score_b":20,"status":"completed"}`, string(ev.Payload))
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for final score event")
	}

	_, ok := f.svc.Snapshot(7)
	assert.False(t, ok, "terminal matches keep no snapshot")
}

func TestLivePublishResultCancelledMatchOnlyClears(t *testing.T) {
	f := newLiveFixture()
	m := f.addRunningMatch(7)

	_, err := f.svc.Publish(context.Background(), 7, json.RawMessage(`{"sets":[5,3]}`))
	require.NoError(t, err)

	m.Status = models.MatchStatusCancelled
	f.svc.PublishResult(context.Background(), m)

	_, ok := f.svc.Snapshot(7)
	assert.False(t, ok)
}

func TestLivePublishResultNilMatchIsNoop(t *testing.T) {
	f := newLiveFixture()
	f.svc.PublishResult(context.Background(), nil)
}

func TestLiveSnapshotsReturnsOnlyKnownMatches(t *testing.T) {
	f := newLiveFixture()
	f.addRunningMatch(7)

	_, err := f.svc.Publish(context.Background(), 7, json.RawMessage(`{"sets":[1,0]}`))
	require.NoError(t, err)

	snaps := f.svc.Snapshots([]int{7, 8})
	require.Len(t, snaps, 1)
	assert.Contains(t, snaps, 7)
}
