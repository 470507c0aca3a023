package models

// Court is a playing surface matches can be scheduled on.
type Court struct {
	ID           int    `json:"id" db:"id"`
	TournamentID int    `json:"tournament_id" db:"tournament_id"`
	Name         string `json:"name" db:"name"`
}
