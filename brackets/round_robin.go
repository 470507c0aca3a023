package brackets

import (
	"fmt"
	"sort"

	"github.com/opencourt/matchday/models"
)

// PoolFixtureParams describes the fixtures to generate for one pool.
type PoolFixtureParams struct {
	PhaseID     int
	Pool        *models.Pool
	Teams       []TeamSeed
	DoubleRound bool
	FirstOrder  int // order number of the first generated match
}

// BuildPoolFixtures creates the round-robin fixture list for a pool: each
// member plays every other member once, or twice with sides swapped when
// DoubleRound is set. The returned matches carry no ids; the caller
// persists them.
func BuildPoolFixtures(params PoolFixtureParams) ([]*models.Match, error) {
	teams := params.Teams
	if len(teams) < 2 {
		return nil, fmt.Errorf("pool %d: not enough teams for fixtures (found %d, min 2)", params.Pool.ID, len(teams))
	}

	firstOrder := params.FirstOrder
	if firstOrder <= 0 {
		firstOrder = 1
	}
	legSize := len(teams) * (len(teams) - 1) / 2

	matches := make([]*models.Match, 0, legSize*2)
	order := 0
	for i := 0; i < len(teams); i++ {
		for j := i + 1; j < len(teams); j++ {
			order++
			matches = append(matches, poolMatch(params, teams[i], teams[j], firstOrder+order-1))
			if params.DoubleRound {
				matches = append(matches, poolMatch(params, teams[j], teams[i], firstOrder+order-1+legSize))
			}
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].OrderNumber < matches[j].OrderNumber
	})
	return matches, nil
}

func poolMatch(params PoolFixtureParams, home, away TeamSeed, order int) *models.Match {
	homeID, awayID := home.RegistrationID, away.RegistrationID
	homeName, awayName := home.Name, away.Name
	return &models.Match{
		PhaseID:     params.PhaseID,
		PoolID:      &params.Pool.ID,
		Type:        models.MatchTypePool,
		OrderNumber: order,
		Position:    order,
		TeamAID:     &homeID,
		TeamBID:     &awayID,
		LabelA:      &homeName,
		LabelB:      &awayName,
		Status:      models.MatchStatusUpcoming,
	}
}
