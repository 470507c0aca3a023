package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencourt/matchday/models"
)

func TestParseSourceValidCodes(t *testing.T) {
	tests := []struct {
		code string
		want SourceRef
	}{
		{"WQ1", SourceRef{Kind: SourceQualificationWinner, Number: 1}},
		{"WQ12", SourceRef{Kind: SourceQualificationWinner, Number: 12}},
		{"LQ3", SourceRef{Kind: SourceQualificationLoser, Number: 3}},
		{"WQF2", SourceRef{Kind: SourceQuarterfinalWinner, Number: 2}},
		{"WSF1", SourceRef{Kind: SourceSemifinalWinner, Number: 1}},
		{"LSF2", SourceRef{Kind: SourceSemifinalLoser, Number: 2}},
		{"P1-2", SourceRef{Kind: SourcePoolRank, Pool: 1, Rank: 2}},
		{"P10-4", SourceRef{Kind: SourcePoolRank, Pool: 10, Rank: 4}},
		{"  WQ1  ", SourceRef{Kind: SourceQualificationWinner, Number: 1}},
	}

	for _, tc := range tests {
		t.Run(tc.code, func(t *testing.T) {
			ref, ok := ParseSource(tc.code)
			require.True(t, ok)
			assert.Equal(t, tc.want, ref)
		})
	}
}

func TestParseSourceMalformedCodes(t *testing.T) {
	codes := []string{
		"",
		"   ",
		"W3",
		"Q1",
		"WQ",
		"WQ0",
		"WQ-1",
		"WQx",
		"WQF",
		"LSFx",
		"P1",
		"P-2",
		"P0-1",
		"P1-0",
		"Pa-1",
		"P1-b",
		"winner of match 1",
	}

	for _, code := range codes {
		t.Run("code="+code, func(t *testing.T) {
			ref, ok := ParseSource(code)
			assert.False(t, ok)
			assert.Equal(t, SourceRef{}, ref)
		})
	}
}

func TestSourceRefStringRoundTrip(t *testing.T) {
	codes := []string{"WQ1", "LQ4", "WQF3", "WSF2", "LSF1", "P2-3"}

	for _, code := range codes {
		ref, ok := ParseSource(code)
		require.True(t, ok, code)
		assert.Equal(t, code, ref.String())
	}
}

func TestSourceRefLabel(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"WQ1", "Winner Q1"},
		{"LQ2", "Loser Q2"},
		{"WQF3", "Winner QF3"},
		{"WSF1", "Winner SF1"},
		{"LSF2", "Loser SF2"},
		{"P1-2", "Pool 1 #2"},
	}

	for _, tc := range tests {
		ref, ok := ParseSource(tc.code)
		require.True(t, ok, tc.code)
		assert.Equal(t, tc.want, ref.Label())
	}
}

func TestSourceRefMatchQuery(t *testing.T) {
	qf := models.BracketQuarterfinal
	sf := models.BracketSemifinal

	tests := []struct {
		code        string
		matchType   models.MatchType
		bracketType *models.BracketType
		order       int
		winner      bool
	}{
		{"WQ2", models.MatchTypeQualification, nil, 2, true},
		{"LQ2", models.MatchTypeQualification, nil, 2, false},
		{"WQF1", models.MatchTypeBracket, &qf, 1, true},
		{"WSF2", models.MatchTypeBracket, &sf, 2, true},
		{"LSF1", models.MatchTypeBracket, &sf, 1, false},
	}

	for _, tc := range tests {
		t.Run(tc.code, func(t *testing.T) {
			ref, parsed := ParseSource(tc.code)
			require.True(t, parsed)

			matchType, bracketType, order, winner, ok := ref.MatchQuery()
			require.True(t, ok)
			assert.Equal(t, tc.matchType, matchType)
			assert.Equal(t, tc.order, order)
			assert.Equal(t, tc.winner, winner)
			if tc.bracketType == nil {
				assert.Nil(t, bracketType)
			} else {
				require.NotNil(t, bracketType)
				assert.Equal(t, *tc.bracketType, *bracketType)
			}
		})
	}
}

func TestSourceRefMatchQueryPoolRank(t *testing.T) {
	ref, parsed := ParseSource("P1-1")
	require.True(t, parsed)

	_, _, _, _, ok := ref.MatchQuery()
	assert.False(t, ok, "pool ranks resolve through standings, not a match lookup")
}
