package models

import "time"

// Pool groups a subset of registrations for round-robin play inside a
// pools phase. OrderNumber is the pool number referenced by P<p>-<k>
// source codes.
type Pool struct {
	ID               int    `json:"id" db:"id"`
	PhaseID          int    `json:"phase_id" db:"phase_id"`
	Name             string `json:"name" db:"name"`
	OrderNumber      int    `json:"order_number" db:"order_number"`
	QualifyingCount  int    `json:"qualifying_count" db:"qualifying_count"`
	LoserBracketSpot int    `json:"loser_bracket_spots" db:"loser_bracket_spots"`

	Teams   []PoolTeam `json:"teams,omitempty" db:"-"`
	Matches []Match    `json:"matches,omitempty" db:"-"`
}

// PoolTeam is one team's persisted standing row inside a pool. Position is
// recomputed from scratch on every standings recalculation, never patched
// incrementally.
type PoolTeam struct {
	ID             int       `json:"id" db:"id"`
	PoolID         int       `json:"pool_id" db:"pool_id"`
	RegistrationID int       `json:"registration_id" db:"registration_id"`
	Points         int       `json:"points" db:"points"`
	Played         int       `json:"played" db:"played"`
	Wins           int       `json:"wins" db:"wins"`
	Draws          int       `json:"draws" db:"draws"`
	Losses         int       `json:"losses" db:"losses"`
	GoalsFor       int       `json:"goals_for" db:"goals_for"`
	GoalsAgainst   int       `json:"goals_against" db:"goals_against"`
	GoalDifference int       `json:"goal_difference" db:"goal_difference"`
	Position       *int      `json:"position,omitempty" db:"position"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`

	Registration *Registration `json:"registration,omitempty" db:"-"`
}
