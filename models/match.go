package models

import "time"

type MatchStatus string

const (
	MatchStatusUpcoming   MatchStatus = "upcoming"
	MatchStatusInProgress MatchStatus = "in_progress"
	MatchStatusCompleted  MatchStatus = "completed"
	MatchStatusCancelled  MatchStatus = "cancelled"
)

type MatchType string

const (
	MatchTypeQualification MatchType = "qualification"
	MatchTypePool          MatchType = "pool"
	MatchTypeBracket       MatchType = "bracket"
	MatchTypeLoserBracket  MatchType = "loser_bracket"
)

type BracketType string

const (
	BracketQuarterfinal BracketType = "quarterfinal"
	BracketSemifinal    BracketType = "semifinal"
	BracketFinal        BracketType = "final"
	BracketThirdPlace   BracketType = "third_place"
	BracketLoserRound1  BracketType = "loser_round_1"
	BracketLoserRound2  BracketType = "loser_round_2"
	BracketLoserFinal   BracketType = "loser_final"
)

// Slot identifies one of the two team positions of a match.
type Slot string

const (
	SlotA Slot = "A"
	SlotB Slot = "B"
)

// Match is one fixture inside a phase. A team slot either references a
// concrete registration (TeamAID/TeamBID) or carries a symbolic source code
// (SourceA/SourceB) that the progression engine resolves later.
type Match struct {
	ID          int          `json:"id" db:"id"`
	PhaseID     int          `json:"phase_id" db:"phase_id"`
	PoolID      *int         `json:"pool_id,omitempty" db:"pool_id"`
	Type        MatchType    `json:"type" db:"type"`
	BracketType *BracketType `json:"bracket_type,omitempty" db:"bracket_type"`
	OrderNumber int          `json:"order_number" db:"order_number"`
	Position    int          `json:"position" db:"position"`

	TeamAID *int    `json:"team_a_id,omitempty" db:"team_a_id"`
	TeamBID *int    `json:"team_b_id,omitempty" db:"team_b_id"`
	SourceA *string `json:"source_a,omitempty" db:"source_a"`
	SourceB *string `json:"source_b,omitempty" db:"source_b"`
	LabelA  *string `json:"label_a,omitempty" db:"label_a"`
	LabelB  *string `json:"label_b,omitempty" db:"label_b"`

	ScoreA *int        `json:"score_a,omitempty" db:"score_a"`
	ScoreB *int        `json:"score_b,omitempty" db:"score_b"`
	Status MatchStatus `json:"status" db:"status"`

	WinnerNextMatchID *int  `json:"winner_next_match_id,omitempty" db:"winner_next_match_id"`
	WinnerNextSlot    *Slot `json:"winner_next_slot,omitempty" db:"winner_next_slot"`
	LoserNextMatchID  *int  `json:"loser_next_match_id,omitempty" db:"loser_next_match_id"`
	LoserNextSlot     *Slot `json:"loser_next_slot,omitempty" db:"loser_next_slot"`

	CourtID     *int       `json:"court_id,omitempty" db:"court_id"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty" db:"scheduled_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`

	// Linked registrations, populated by services when requested.
	TeamA *Registration `json:"team_a,omitempty" db:"-"`
	TeamB *Registration `json:"team_b,omitempty" db:"-"`
}

// Terminal statuses never transition again.
func (s MatchStatus) Terminal() bool {
	return s == MatchStatusCompleted || s == MatchStatusCancelled
}

func IsValidMatchStatusTransition(current, next MatchStatus) bool {
	if current == next {
		return true
	}
	allowed := map[MatchStatus][]MatchStatus{
		MatchStatusUpcoming:   {MatchStatusInProgress, MatchStatusCompleted, MatchStatusCancelled},
		MatchStatusInProgress: {MatchStatusCompleted, MatchStatusCancelled},
		MatchStatusCompleted:  {},
		MatchStatusCancelled:  {},
	}
	for _, n := range allowed[current] {
		if next == n {
			return true
		}
	}
	return false
}

// SlotTeamID returns the registration id currently occupying the slot.
func (m *Match) SlotTeamID(slot Slot) *int {
	if slot == SlotA {
		return m.TeamAID
	}
	return m.TeamBID
}

// HasConcreteTeams reports whether both slots hold registration ids.
func (m *Match) HasConcreteTeams() bool {
	return m.TeamAID != nil && m.TeamBID != nil
}
