package brackets

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/opencourt/matchday/models"
)

// SourceKind enumerates the symbolic placeholder grammar. A slot whose
// team is not known yet carries one of these codes instead of a
// registration id:
//
//	WQ<n>  / LQ<n>   winner / loser of qualification match n
//	WQF<n>           winner of quarterfinal n
//	WSF<n> / LSF<n>  winner / loser of semifinal n
//	P<p>-<k>         k-th ranked team of pool p
type SourceKind int

const (
	SourceInvalid SourceKind = iota
	SourceQualificationWinner
	SourceQualificationLoser
	SourceQuarterfinalWinner
	SourceSemifinalWinner
	SourceSemifinalLoser
	SourcePoolRank
)

// SourceRef is the parsed form of a symbolic source code. Number is the
// match order number for match-backed kinds; Pool and Rank are set only
// for SourcePoolRank.
type SourceRef struct {
	Kind   SourceKind
	Number int
	Pool   int
	Rank   int
}

// ParseSource parses a symbolic source code. Malformed codes return
// ok == false, never an error: an unreadable code simply leaves a slot
// unresolved.
func ParseSource(code string) (SourceRef, bool) {
	code = strings.TrimSpace(code)
	if code == "" {
		return SourceRef{}, false
	}

	for _, p := range [...]struct {
		prefix string
		kind   SourceKind
	}{
		{"WQF", SourceQuarterfinalWinner},
		{"WSF", SourceSemifinalWinner},
		{"LSF", SourceSemifinalLoser},
		{"WQ", SourceQualificationWinner},
		{"LQ", SourceQualificationLoser},
	} {
		rest, found := strings.CutPrefix(code, p.prefix)
		if !found {
			continue
		}
		n, err := strconv.Atoi(rest)
		if err != nil || n <= 0 {
			return SourceRef{}, false
		}
		return SourceRef{Kind: p.kind, Number: n}, true
	}

	if rest, found := strings.CutPrefix(code, "P"); found {
		poolPart, rankPart, found := strings.Cut(rest, "-")
		if !found {
			return SourceRef{}, false
		}
		pool, err := strconv.Atoi(poolPart)
		if err != nil || pool <= 0 {
			return SourceRef{}, false
		}
		rank, err := strconv.Atoi(rankPart)
		if err != nil || rank <= 0 {
			return SourceRef{}, false
		}
		return SourceRef{Kind: SourcePoolRank, Pool: pool, Rank: rank}, true
	}

	return SourceRef{}, false
}

// String renders the canonical code for the reference.
func (r SourceRef) String() string {
	switch r.Kind {
	case SourceQualificationWinner:
		return fmt.Sprintf("WQ%d", r.Number)
	case SourceQualificationLoser:
		return fmt.Sprintf("LQ%d", r.Number)
	case SourceQuarterfinalWinner:
		return fmt.Sprintf("WQF%d", r.Number)
	case SourceSemifinalWinner:
		return fmt.Sprintf("WSF%d", r.Number)
	case SourceSemifinalLoser:
		return fmt.Sprintf("LSF%d", r.Number)
	case SourcePoolRank:
		return fmt.Sprintf("P%d-%d", r.Pool, r.Rank)
	}
	return ""
}

// Label renders a human-readable placeholder for display, used as the
// slot label until a concrete team is propagated in.
func (r SourceRef) Label() string {
	switch r.Kind {
	case SourceQualificationWinner:
		return fmt.Sprintf("Winner Q%d", r.Number)
	case SourceQualificationLoser:
		return fmt.Sprintf("Loser Q%d", r.Number)
	case SourceQuarterfinalWinner:
		return fmt.Sprintf("Winner QF%d", r.Number)
	case SourceSemifinalWinner:
		return fmt.Sprintf("Winner SF%d", r.Number)
	case SourceSemifinalLoser:
		return fmt.Sprintf("Loser SF%d", r.Number)
	case SourcePoolRank:
		return fmt.Sprintf("Pool %d #%d", r.Pool, r.Rank)
	}
	return ""
}

// MatchQuery maps a match-backed reference onto the lookup key of the
// source match and whether the winner or the loser is wanted. ok is false
// for pool-rank references, which resolve through standings instead.
func (r SourceRef) MatchQuery() (matchType models.MatchType, bracketType *models.BracketType, order int, winner bool, ok bool) {
	switch r.Kind {
	case SourceQualificationWinner:
		return models.MatchTypeQualification, nil, r.Number, true, true
	case SourceQualificationLoser:
		return models.MatchTypeQualification, nil, r.Number, false, true
	case SourceQuarterfinalWinner:
		bt := models.BracketQuarterfinal
		return models.MatchTypeBracket, &bt, r.Number, true, true
	case SourceSemifinalWinner:
		bt := models.BracketSemifinal
		return models.MatchTypeBracket, &bt, r.Number, true, true
	case SourceSemifinalLoser:
		bt := models.BracketSemifinal
		return models.MatchTypeBracket, &bt, r.Number, false, true
	}
	return "", nil, 0, false, false
}
