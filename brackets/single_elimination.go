package brackets

import (
	"fmt"

	"github.com/opencourt/matchday/models"
)

// BracketMatch is one node of a generated bracket scaffold. Matches are
// linked to each other by UID because database ids do not exist yet; the
// structure service persists the matches first and rewires the UID links
// into winner/loser destination ids in a second pass.
type BracketMatch struct {
	UID         string
	Bracket     models.BracketType
	OrderNumber int

	// Symbolic source codes for the two slots, e.g. "P1-2" or "WQF3".
	SourceA string
	SourceB string

	WinnerToUID  *string
	WinnerToSlot models.Slot
	LoserToUID   *string
	LoserToSlot  models.Slot
}

// BuildFinalsBracket scaffolds a single-elimination finals bracket from
// the given seed source codes (pool ranks or qualification winners, in
// seeding order). Supported sizes are 2, 4 and 8 seeds; winner and, for
// semifinals, loser destinations are prewired so completed matches
// propagate without manual linking. With withThirdPlace the semifinal
// losers feed a third-place match.
func BuildFinalsBracket(seedSources []string, withThirdPlace bool) ([]*BracketMatch, error) {
	n := len(seedSources)
	switch n {
	case 2, 4, 8:
	default:
		return nil, fmt.Errorf("unsupported finals bracket size %d (want 2, 4 or 8 seeds)", n)
	}

	// Seed i meets seed n-1-i, so the top seeds can only meet late.
	pairs := make([][2]string, 0, n/2)
	for i := 0; i < n/2; i++ {
		pairs = append(pairs, [2]string{seedSources[i], seedSources[n-1-i]})
	}

	matches := make([]*BracketMatch, 0, n)

	if n == 8 {
		for i, p := range pairs {
			matches = append(matches, &BracketMatch{
				UID:         fmt.Sprintf("QF%d", i+1),
				Bracket:     models.BracketQuarterfinal,
				OrderNumber: i + 1,
				SourceA:     p[0],
				SourceB:     p[1],
			})
		}
		pairs = [][2]string{{"WQF1", "WQF2"}, {"WQF3", "WQF4"}}
	}

	if n >= 4 {
		for i, p := range pairs {
			matches = append(matches, &BracketMatch{
				UID:         fmt.Sprintf("SF%d", i+1),
				Bracket:     models.BracketSemifinal,
				OrderNumber: i + 1,
				SourceA:     p[0],
				SourceB:     p[1],
			})
		}
		pairs = [][2]string{{"WSF1", "WSF2"}}
	}

	final := &BracketMatch{
		UID:         "F",
		Bracket:     models.BracketFinal,
		OrderNumber: 1,
		SourceA:     pairs[0][0],
		SourceB:     pairs[0][1],
	}
	matches = append(matches, final)

	if withThirdPlace && n >= 4 {
		matches = append(matches, &BracketMatch{
			UID:         "TP",
			Bracket:     models.BracketThirdPlace,
			OrderNumber: 1,
			SourceA:     "LSF1",
			SourceB:     "LSF2",
		})
	}

	linkByUID(matches)
	return matches, nil
}

// BuildLoserBracket scaffolds the consolation bracket fed by the given
// source codes (typically LQ<n> or LSF<n>). Supported sizes are 2 and 4.
func BuildLoserBracket(seedSources []string) ([]*BracketMatch, error) {
	n := len(seedSources)
	switch n {
	case 2, 4:
	default:
		return nil, fmt.Errorf("unsupported loser bracket size %d (want 2 or 4 seeds)", n)
	}

	matches := make([]*BracketMatch, 0, n)
	finalSources := [2]string{seedSources[0], seedSources[1]}

	if n == 4 {
		for i := 0; i < 2; i++ {
			matches = append(matches, &BracketMatch{
				UID:         fmt.Sprintf("LR1M%d", i+1),
				Bracket:     models.BracketLoserRound1,
				OrderNumber: i + 1,
				SourceA:     seedSources[i],
				SourceB:     seedSources[n-1-i],
			})
		}
		finalSources = [2]string{"LR1M1", "LR1M2"}
	}

	matches = append(matches, &BracketMatch{
		UID:         "LF",
		Bracket:     models.BracketLoserFinal,
		OrderNumber: 1,
		SourceA:     finalSources[0],
		SourceB:     finalSources[1],
	})

	linkByUID(matches)
	return matches, nil
}

// linkByUID wires winner/loser destinations: a match whose UID appears as
// another match's source gets that match as its destination, slot A for
// SourceA and slot B for SourceB. Symbolic codes (WSF1, LSF2, WQF3) are
// matched against the scaffold UIDs they reference so that semifinal
// losers also flow into the third-place match.
func linkByUID(matches []*BracketMatch) {
	byUID := make(map[string]*BracketMatch, len(matches))
	for _, m := range matches {
		byUID[m.UID] = m
	}

	link := func(target *BracketMatch, source string, slot models.Slot) {
		ref, ok := ParseSource(source)
		if !ok {
			// Direct UID reference from a loser-round chain.
			if src, exists := byUID[source]; exists {
				uid := target.UID
				src.WinnerToUID = &uid
				src.WinnerToSlot = slot
			}
			return
		}

		var uid string
		var winner bool
		switch ref.Kind {
		case SourceQuarterfinalWinner:
			uid, winner = fmt.Sprintf("QF%d", ref.Number), true
		case SourceSemifinalWinner:
			uid, winner = fmt.Sprintf("SF%d", ref.Number), true
		case SourceSemifinalLoser:
			uid, winner = fmt.Sprintf("SF%d", ref.Number), false
		default:
			return // pool ranks and qualification codes resolve elsewhere
		}

		src, exists := byUID[uid]
		if !exists {
			return
		}
		targetUID := target.UID
		if winner {
			src.WinnerToUID = &targetUID
			src.WinnerToSlot = slot
		} else {
			src.LoserToUID = &targetUID
			src.LoserToSlot = slot
		}
	}

	for _, m := range matches {
		link(m, m.SourceA, models.SlotA)
		link(m, m.SourceB, models.SlotB)
	}
}
