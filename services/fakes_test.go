package services

import (
	"context"
	"fmt"

	"github.com/opencourt/matchday/brackets"
	"github.com/opencourt/matchday/models"
	"github.com/opencourt/matchday/repositories"
)

// In-memory repository fakes. They share the semantics the services rely
// on: not-found sentinels, write-through updates and executor arguments
// that are simply ignored.

type fakeTxRunner struct{}

func (fakeTxRunner) WithinTx(ctx context.Context, fn func(tx repositories.SQLExecutor) error) error {
	return fn(nil)
}

type fakeMatchRepo struct {
	nextID            int
	matches           map[int]*models.Match
	tournamentByPhase map[int]int
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{
		nextID:            1,
		matches:           make(map[int]*models.Match),
		tournamentByPhase: make(map[int]int),
	}
}

func (f *fakeMatchRepo) put(m *models.Match) *models.Match {
	if m.ID == 0 {
		m.ID = f.nextID
		f.nextID = m.ID + 1
	} else if m.ID >= f.nextID {
		f.nextID = m.ID + 1
	}
	f.matches[m.ID] = m
	return m
}

func (f *fakeMatchRepo) Create(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	f.put(match)
	return nil
}

func (f *fakeMatchRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
	m, ok := f.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return m, nil
}

func (f *fakeMatchRepo) ListByPhase(ctx context.Context, exec repositories.SQLExecutor, phaseID int) ([]*models.Match, error) {
	var matches []*models.Match
	for id := 1; id < f.nextID; id++ {
		if m, ok := f.matches[id]; ok && m.PhaseID == phaseID {
			matches = append(matches, m)
		}
	}
	return matches, nil
}

func (f *fakeMatchRepo) ListByPool(ctx context.Context, exec repositories.SQLExecutor, poolID int) ([]*models.Match, error) {
	var matches []*models.Match
	for id := 1; id < f.nextID; id++ {
		if m, ok := f.matches[id]; ok && m.PoolID != nil && *m.PoolID == poolID {
			matches = append(matches, m)
		}
	}
	return matches, nil
}

func (f *fakeMatchRepo) FindByTypeAndOrder(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, matchType models.MatchType, bracketType *models.BracketType, orderNumber int) (*models.Match, error) {
	for id := 1; id < f.nextID; id++ {
		m, ok := f.matches[id]
		if !ok {
			continue
		}
		if f.tournamentByPhase[m.PhaseID] != tournamentID {
			continue
		}
		if m.Type != matchType || m.OrderNumber != orderNumber {
			continue
		}
		if bracketType != nil && (m.BracketType == nil || *m.BracketType != *bracketType) {
			continue
		}
		return m, nil
	}
	return nil, repositories.ErrMatchNotFound
}

func (f *fakeMatchRepo) UpdateResult(ctx context.Context, exec repositories.SQLExecutor, id int, scoreA, scoreB *int, status models.MatchStatus) error {
	m, ok := f.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.ScoreA, m.ScoreB, m.Status = scoreA, scoreB, status
	return nil
}

func (f *fakeMatchRepo) UpdateSlot(ctx context.Context, exec repositories.SQLExecutor, id int, slot models.Slot, registrationID int, label *string) error {
	m, ok := f.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	if slot == models.SlotA {
		m.TeamAID = &registrationID
		if label != nil {
			m.LabelA = label
		}
	} else {
		m.TeamBID = &registrationID
		if label != nil {
			m.LabelB = label
		}
	}
	return nil
}

func (f *fakeMatchRepo) UpdateDestinations(ctx context.Context, exec repositories.SQLExecutor, id int, winnerTo *int, winnerSlot *models.Slot, loserTo *int, loserSlot *models.Slot) error {
	m, ok := f.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.WinnerNextMatchID, m.WinnerNextSlot = winnerTo, winnerSlot
	m.LoserNextMatchID, m.LoserNextSlot = loserTo, loserSlot
	return nil
}

func (f *fakeMatchRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	if _, ok := f.matches[id]; !ok {
		return repositories.ErrMatchNotFound
	}
	delete(f.matches, id)
	return nil
}

type fakePoolRepo struct {
	pools             map[int]*models.Pool
	tournamentByPhase map[int]int
}

func newFakePoolRepo() *fakePoolRepo {
	return &fakePoolRepo{
		pools:             make(map[int]*models.Pool),
		tournamentByPhase: make(map[int]int),
	}
}

func (f *fakePoolRepo) Create(ctx context.Context, exec repositories.SQLExecutor, pool *models.Pool) error {
	if pool.ID == 0 {
		pool.ID = len(f.pools) + 1
	}
	f.pools[pool.ID] = pool
	return nil
}

func (f *fakePoolRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Pool, error) {
	p, ok := f.pools[id]
	if !ok {
		return nil, repositories.ErrPoolNotFound
	}
	return p, nil
}

func (f *fakePoolRepo) ListByPhase(ctx context.Context, exec repositories.SQLExecutor, phaseID int) ([]*models.Pool, error) {
	var pools []*models.Pool
	for _, p := range f.pools {
		if p.PhaseID == phaseID {
			pools = append(pools, p)
		}
	}
	return pools, nil
}

func (f *fakePoolRepo) FindByTournamentAndOrder(ctx context.Context, exec repositories.SQLExecutor, tournamentID, orderNumber int) (*models.Pool, error) {
	for _, p := range f.pools {
		if f.tournamentByPhase[p.PhaseID] == tournamentID && p.OrderNumber == orderNumber {
			return p, nil
		}
	}
	return nil, repositories.ErrPoolNotFound
}

func (f *fakePoolRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	if _, ok := f.pools[id]; !ok {
		return repositories.ErrPoolNotFound
	}
	delete(f.pools, id)
	return nil
}

type fakePoolTeamRepo struct {
	teams   map[int]*models.PoolTeam
	updated []int
	nextID  int
}

func newFakePoolTeamRepo() *fakePoolTeamRepo {
	return &fakePoolTeamRepo{teams: make(map[int]*models.PoolTeam), nextID: 1}
}

func (f *fakePoolTeamRepo) Add(ctx context.Context, exec repositories.SQLExecutor, pt *models.PoolTeam) error {
	if pt.ID == 0 {
		pt.ID = f.nextID
		f.nextID++
	}
	f.teams[pt.ID] = pt
	return nil
}

func (f *fakePoolTeamRepo) ListByPool(ctx context.Context, exec repositories.SQLExecutor, poolID int) ([]*models.PoolTeam, error) {
	var teams []*models.PoolTeam
	for id := 1; id < f.nextID; id++ {
		if pt, ok := f.teams[id]; ok && pt.PoolID == poolID {
			teams = append(teams, pt)
		}
	}
	return teams, nil
}

func (f *fakePoolTeamRepo) UpdateStanding(ctx context.Context, exec repositories.SQLExecutor, pt *models.PoolTeam) error {
	if _, ok := f.teams[pt.ID]; !ok {
		return repositories.ErrPoolTeamNotFound
	}
	f.teams[pt.ID] = pt
	f.updated = append(f.updated, pt.ID)
	return nil
}

func (f *fakePoolTeamRepo) Remove(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	if _, ok := f.teams[id]; !ok {
		return repositories.ErrPoolTeamNotFound
	}
	delete(f.teams, id)
	return nil
}

type fakePhaseRepo struct {
	phases map[int]*models.Phase
}

func newFakePhaseRepo() *fakePhaseRepo {
	return &fakePhaseRepo{phases: make(map[int]*models.Phase)}
}

func (f *fakePhaseRepo) Create(ctx context.Context, exec repositories.SQLExecutor, phase *models.Phase) error {
	if phase.ID == 0 {
		phase.ID = len(f.phases) + 1
	}
	f.phases[phase.ID] = phase
	return nil
}

func (f *fakePhaseRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Phase, error) {
	p, ok := f.phases[id]
	if !ok {
		return nil, repositories.ErrPhaseNotFound
	}
	return p, nil
}

func (f *fakePhaseRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]*models.Phase, error) {
	var phases []*models.Phase
	for _, p := range f.phases {
		if p.TournamentID == tournamentID {
			phases = append(phases, p)
		}
	}
	return phases, nil
}

func (f *fakePhaseRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	if _, ok := f.phases[id]; !ok {
		return repositories.ErrPhaseNotFound
	}
	delete(f.phases, id)
	return nil
}

type fakeRegistrationRepo struct {
	registrations map[int]*models.Registration
}

func newFakeRegistrationRepo() *fakeRegistrationRepo {
	return &fakeRegistrationRepo{registrations: make(map[int]*models.Registration)}
}

func (f *fakeRegistrationRepo) add(id, tournamentID int, teamName string) {
	f.registrations[id] = &models.Registration{
		ID:           id,
		TournamentID: tournamentID,
		TeamID:       id,
		Team:         &models.Team{ID: id, Name: teamName},
	}
}

func (f *fakeRegistrationRepo) Create(ctx context.Context, exec repositories.SQLExecutor, reg *models.Registration) error {
	for _, existing := range f.registrations {
		if existing.TournamentID == reg.TournamentID && existing.TeamID == reg.TeamID {
			return repositories.ErrRegistrationConflict
		}
	}
	if reg.ID == 0 {
		reg.ID = len(f.registrations) + 1
	}
	f.registrations[reg.ID] = reg
	return nil
}

func (f *fakeRegistrationRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Registration, error) {
	reg, ok := f.registrations[id]
	if !ok {
		return nil, repositories.ErrRegistrationNotFound
	}
	return reg, nil
}

func (f *fakeRegistrationRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]*models.Registration, error) {
	var regs []*models.Registration
	for _, reg := range f.registrations {
		if reg.TournamentID == tournamentID {
			regs = append(regs, reg)
		}
	}
	return regs, nil
}

func (f *fakeRegistrationRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	if _, ok := f.registrations[id]; !ok {
		return repositories.ErrRegistrationNotFound
	}
	delete(f.registrations, id)
	return nil
}

type fakeTournamentRepo struct {
	tournaments       map[int]*models.Tournament
	tournamentByPhase map[int]int
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{
		tournaments:       make(map[int]*models.Tournament),
		tournamentByPhase: make(map[int]int),
	}
}

func (f *fakeTournamentRepo) Create(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) error {
	if t.ID == 0 {
		t.ID = len(f.tournaments) + 1
	}
	f.tournaments[t.ID] = t
	return nil
}

func (f *fakeTournamentRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
	t, ok := f.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return t, nil
}

func (f *fakeTournamentRepo) GetByPhaseID(ctx context.Context, exec repositories.SQLExecutor, phaseID int) (*models.Tournament, error) {
	id, ok := f.tournamentByPhase[phaseID]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return f.GetByID(ctx, exec, id)
}

func (f *fakeTournamentRepo) List(ctx context.Context, exec repositories.SQLExecutor, status *models.TournamentStatus) ([]*models.Tournament, error) {
	var tournaments []*models.Tournament
	for _, t := range f.tournaments {
		if status == nil || t.Status == *status {
			tournaments = append(tournaments, t)
		}
	}
	return tournaments, nil
}

func (f *fakeTournamentRepo) Update(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) error {
	if _, ok := f.tournaments[t.ID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	f.tournaments[t.ID] = t
	return nil
}

func (f *fakeTournamentRepo) UpdateLogoKey(ctx context.Context, exec repositories.SQLExecutor, id int, logoKey *string) error {
	t, ok := f.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.LogoKey = logoKey
	return nil
}

func (f *fakeTournamentRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	if _, ok := f.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(f.tournaments, id)
	return nil
}

type fakeSportRepo struct {
	sports map[int]*models.Sport
}

func newFakeSportRepo() *fakeSportRepo {
	return &fakeSportRepo{sports: make(map[int]*models.Sport)}
}

func (f *fakeSportRepo) Create(ctx context.Context, exec repositories.SQLExecutor, sport *models.Sport) error {
	if sport.ID == 0 {
		sport.ID = len(f.sports) + 1
	}
	f.sports[sport.ID] = sport
	return nil
}

func (f *fakeSportRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Sport, error) {
	s, ok := f.sports[id]
	if !ok {
		return nil, repositories.ErrSportNotFound
	}
	return s, nil
}

func (f *fakeSportRepo) List(ctx context.Context, exec repositories.SQLExecutor) ([]*models.Sport, error) {
	var sports []*models.Sport
	for _, s := range f.sports {
		sports = append(sports, s)
	}
	return sports, nil
}

func (f *fakeSportRepo) UpdateLogoKey(ctx context.Context, exec repositories.SQLExecutor, id int, logoKey *string) error {
	s, ok := f.sports[id]
	if !ok {
		return repositories.ErrSportNotFound
	}
	s.LogoKey = logoKey
	return nil
}

func (f *fakeSportRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	if _, ok := f.sports[id]; !ok {
		return repositories.ErrSportNotFound
	}
	delete(f.sports, id)
	return nil
}

// fakeStandingsService returns canned tables per pool id.
type fakeStandingsService struct {
	rowsByPool   map[int][]brackets.StandingRow
	recalculated []int
}

func (f *fakeStandingsService) PoolStandings(ctx context.Context, poolID int) ([]brackets.StandingRow, error) {
	return f.PoolStandingsTx(ctx, nil, poolID)
}

func (f *fakeStandingsService) PoolStandingsTx(ctx context.Context, exec repositories.SQLExecutor, poolID int) ([]brackets.StandingRow, error) {
	rows, ok := f.rowsByPool[poolID]
	if !ok {
		return nil, fmt.Errorf("%w: pool %d", ErrPoolNotFound, poolID)
	}
	return rows, nil
}

func (f *fakeStandingsService) RecalculatePool(ctx context.Context, exec repositories.SQLExecutor, poolID int) ([]brackets.StandingRow, error) {
	f.recalculated = append(f.recalculated, poolID)
	return f.PoolStandingsTx(ctx, exec, poolID)
}
