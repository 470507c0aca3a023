package models

import (
	"encoding/json"
	"time"
)

// TournamentStatus mirrors the ENUM in the database.
type TournamentStatus string

const (
	TournamentStatusSoon         TournamentStatus = "soon"
	TournamentStatusRegistration TournamentStatus = "registration"
	TournamentStatusActive       TournamentStatus = "active"
	TournamentStatusCompleted    TournamentStatus = "completed"
	TournamentStatusCanceled     TournamentStatus = "canceled"
)

// ScoringSettings are the per-tournament point values for pool play.
type ScoringSettings struct {
	WinPoints  int `json:"win_points"`
	DrawPoints int `json:"draw_points"`
	LossPoints int `json:"loss_points"`
}

type Tournament struct {
	ID           int              `json:"id" db:"id"`
	Name         string           `json:"name" db:"name"`
	Description  *string          `json:"description,omitempty" db:"description"`
	SportID      int              `json:"sport_id" db:"sport_id"`
	Status       TournamentStatus `json:"status" db:"status"`
	StartDate    time.Time        `json:"start_date" db:"start_date"`
	EndDate      time.Time        `json:"end_date" db:"end_date"`
	Location     *string          `json:"location,omitempty" db:"location"`
	SettingsJSON *string          `json:"-" db:"settings_json"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
	LogoKey      *string          `json:"-" db:"logo_key"`
	LogoURL      *string          `json:"logo_url,omitempty" db:"-"`

	// Optional linked entities, populated by services.
	Sport         *Sport         `json:"sport,omitempty" db:"-"`
	Phases        []Phase        `json:"phases,omitempty" db:"-"`
	Registrations []Registration `json:"registrations,omitempty" db:"-"`
}

// Scoring returns the configured point values, falling back to the
// standard 3/1/0 when the tournament carries no settings or they cannot
// be parsed.
func (t *Tournament) Scoring() ScoringSettings {
	settings := ScoringSettings{WinPoints: 3, DrawPoints: 1, LossPoints: 0}
	if t == nil || t.SettingsJSON == nil || *t.SettingsJSON == "" {
		return settings
	}
	var parsed struct {
		Scoring *ScoringSettings `json:"scoring"`
	}
	if err := json.Unmarshal([]byte(*t.SettingsJSON), &parsed); err != nil || parsed.Scoring == nil {
		return settings
	}
	return *parsed.Scoring
}

func IsValidTournamentStatusTransition(current, next TournamentStatus) bool {
	if current == next {
		return true
	}
	allowed := map[TournamentStatus][]TournamentStatus{
		TournamentStatusSoon:         {TournamentStatusRegistration, TournamentStatusCanceled},
		TournamentStatusRegistration: {TournamentStatusActive, TournamentStatusCanceled},
		TournamentStatusActive:       {TournamentStatusCompleted, TournamentStatusCanceled},
		TournamentStatusCompleted:    {},
		TournamentStatusCanceled:     {},
	}
	for _, n := range allowed[current] {
		if next == n {
			return true
		}
	}
	return false
}
