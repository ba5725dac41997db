package scoring

import "github.com/demoscope/demoscope/internal/replay"

// neutralScore fills the three categories the legacy generation cannot
// compute. Their detail payloads stay nil so provenance is not faked.
const neutralScore = 50

// ConvertLegacyResult lifts a six-category legacy result into the
// canonical nine-category shape. Movement, awareness, and teamplay get
// the neutral midpoint with no detail payload, recommendations stay empty
// (non-nil), and the result is stamped "1.0-compat".
func ConvertLegacyResult(legacy *LegacyResult) *Result {
	strengths := legacy.Strengths
	if strengths == nil {
		strengths = []string{}
	}
	weaknesses := legacy.Weaknesses
	if weaknesses == nil {
		weaknesses = []string{}
	}

	return &Result{
		Version: replay.VersionLegacyCompat,
		PlayerStats: PlayerPerformance{
			Kills:       legacy.PlayerStats.Kills,
			Deaths:      legacy.PlayerStats.Deaths,
			Assists:     legacy.PlayerStats.Assists,
			Headshots:   legacy.PlayerStats.Headshots,
			HeadshotPct: legacy.PlayerStats.HeadshotPct,
			ADR:         legacy.PlayerStats.ADR,
			KAST:        legacy.PlayerStats.KAST,
			Rating:      legacy.PlayerStats.Rating,
			EntryKills:  legacy.PlayerStats.EntryKills,
			EntryDeaths: legacy.PlayerStats.EntryDeaths,
		},
		Scores: Scores{
			Overall:     legacy.Scores.Overall,
			Aim:         legacy.Scores.Aim,
			Positioning: legacy.Scores.Positioning,
			Utility:     legacy.Scores.Utility,
			Economy:     legacy.Scores.Economy,
			Timing:      legacy.Scores.Timing,
			Decision:    legacy.Scores.Decision,
			Movement:    intPtr(neutralScore),
			Awareness:   intPtr(neutralScore),
			Teamplay:    intPtr(neutralScore),
		},
		Details: Details{
			Aim:         legacy.Details.Aim,
			Positioning: legacy.Details.Positioning,
			Utility:     legacy.Details.Utility,
			Economy:     legacy.Details.Economy,
			Timing:      legacy.Details.Timing,
			Decision:    legacy.Details.Decision,
		},
		Strengths:       strengths,
		Weaknesses:      weaknesses,
		Recommendations: []Recommendation{},
		TotalRounds:     legacy.TotalRounds,
		Map:             legacy.Map,
		Duration:        legacy.Duration,
	}
}
