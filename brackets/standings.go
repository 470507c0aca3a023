package brackets

import (
	"sort"
	"strings"

	"github.com/opencourt/matchday/models"
)

// ScoringRules are the points awarded per pool match result.
type ScoringRules struct {
	Win  int
	Draw int
	Loss int
}

// DefaultScoring is the standard 3/1/0 used when a tournament carries no
// scoring configuration.
func DefaultScoring() ScoringRules {
	return ScoringRules{Win: 3, Draw: 1, Loss: 0}
}

// TeamSeed identifies one pool member for the standings calculation.
type TeamSeed struct {
	RegistrationID int
	Name           string
}

// StandingRow is one ranked line of a pool table.
type StandingRow struct {
	RegistrationID int    `json:"registration_id"`
	Name           string `json:"name"`
	Points         int    `json:"points"`
	Played         int    `json:"played"`
	Wins           int    `json:"wins"`
	Draws          int    `json:"draws"`
	Losses         int    `json:"losses"`
	GoalsFor       int    `json:"goals_for"`
	GoalsAgainst   int    `json:"goals_against"`
	GoalDifference int    `json:"goal_difference"`
	Position       int    `json:"position"`
}

// ComputeStandings builds the ranked table of a pool from its completed
// matches. It is a pure function of its inputs: the match order does not
// influence the result, and previously stored positions are ignored.
//
// Only matches with status completed and both scores present count. Sort
// order is points desc, goal difference desc, goals for desc, then team
// name ascending case-insensitively as the deterministic tie-break.
// Positions are dense 1..N; teams tied on every key receive consecutive
// positions in name order.
func ComputeStandings(teams []TeamSeed, matches []*models.Match, rules ScoringRules) []StandingRow {
	rows := make([]StandingRow, len(teams))
	index := make(map[int]*StandingRow, len(teams))
	for i, t := range teams {
		rows[i] = StandingRow{RegistrationID: t.RegistrationID, Name: t.Name}
		index[t.RegistrationID] = &rows[i]
	}

	for _, m := range matches {
		if m == nil || m.Status != models.MatchStatusCompleted {
			continue
		}
		if m.ScoreA == nil || m.ScoreB == nil || m.TeamAID == nil || m.TeamBID == nil {
			continue
		}
		rowA := index[*m.TeamAID]
		rowB := index[*m.TeamBID]
		if rowA == nil || rowB == nil {
			continue
		}

		scoreA, scoreB := *m.ScoreA, *m.ScoreB

		rowA.Played++
		rowB.Played++
		rowA.GoalsFor += scoreA
		rowA.GoalsAgainst += scoreB
		rowB.GoalsFor += scoreB
		rowB.GoalsAgainst += scoreA

		switch {
		case scoreA > scoreB:
			rowA.Wins++
			rowA.Points += rules.Win
			rowB.Losses++
			rowB.Points += rules.Loss
		case scoreA < scoreB:
			rowB.Wins++
			rowB.Points += rules.Win
			rowA.Losses++
			rowA.Points += rules.Loss
		default:
			rowA.Draws++
			rowB.Draws++
			rowA.Points += rules.Draw
			rowB.Points += rules.Draw
		}
	}

	for i := range rows {
		rows[i].GoalDifference = rows[i].GoalsFor - rows[i].GoalsAgainst
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDifference != b.GoalDifference {
			return a.GoalDifference > b.GoalDifference
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		nameA, nameB := strings.ToLower(a.Name), strings.ToLower(b.Name)
		if nameA != nameB {
			return nameA < nameB
		}
		return a.RegistrationID < b.RegistrationID
	})

	for i := range rows {
		rows[i].Position = i + 1
	}
	return rows
}
