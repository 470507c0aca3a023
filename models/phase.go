package models

type PhaseType string

const (
	PhaseTypeQualification PhaseType = "qualification"
	PhaseTypePools         PhaseType = "pools"
	PhaseTypeBracket       PhaseType = "bracket"
	PhaseTypeLoserBracket  PhaseType = "loser_bracket"
)

// Phase is one stage of a tournament. Pool phases own pools; the other
// phase types own their matches directly.
type Phase struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	Name         string    `json:"name" db:"name"`
	Type         PhaseType `json:"type" db:"type"`
	OrderNumber  int       `json:"order_number" db:"order_number"`

	Pools   []Pool  `json:"pools,omitempty" db:"-"`
	Matches []Match `json:"matches,omitempty" db:"-"`
}
