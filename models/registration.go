package models

import "time"

// Registration is a team's entry into a tournament. Match slots and pool
// standings always reference registrations, not teams, so the same team
// can play several tournaments without its history bleeding between them.
type Registration struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	TeamID       int       `json:"team_id" db:"team_id"`
	Seed         *int      `json:"seed,omitempty" db:"seed"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	Team *Team `json:"team,omitempty" db:"-"`
}

// DisplayName is the label written into destination slots on propagation.
func (r *Registration) DisplayName() string {
	if r == nil {
		return ""
	}
	if r.Team != nil && r.Team.Name != "" {
		return r.Team.Name
	}
	return ""
}
