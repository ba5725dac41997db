package scoring

import (
	"math"
	"sort"

	"github.com/demoscope/demoscope/internal/replay"
)

// Engine is one scoring generation. Both generations emit the canonical
// Result so downstream consumers never branch on which one ran.
type Engine interface {
	Name() string
	Version() string
	Analyze(r *replay.Replay, mainSteamID string) (*Result, error)
}

// SelectEngine picks the generation matching the replay's provenance:
// legacy-compat parses carry too few streams for the nine-category engine.
func SelectEngine(r *replay.Replay) Engine {
	if r.Version == replay.VersionLegacyCompat {
		return NewEngineV1()
	}
	return NewEngineV2()
}

// categoryWeights drives the overall score for the nine-category engine.
var categoryWeights = map[string]float64{
	CategoryAim:         0.20,
	CategoryPositioning: 0.15,
	CategoryUtility:     0.12,
	CategoryEconomy:     0.08,
	CategoryTiming:      0.10,
	CategoryDecision:    0.10,
	CategoryMovement:    0.10,
	CategoryAwareness:   0.08,
	CategoryTeamplay:    0.07,
}

// categoryOrder fixes iteration order so tie-breaking is deterministic.
var categoryOrder = []string{
	CategoryAim,
	CategoryPositioning,
	CategoryUtility,
	CategoryEconomy,
	CategoryTiming,
	CategoryDecision,
	CategoryMovement,
	CategoryAwareness,
	CategoryTeamplay,
}

var categoryLabels = map[string]string{
	CategoryAim:         "Aim and precision",
	CategoryPositioning: "Positioning",
	CategoryUtility:     "Grenade usage",
	CategoryEconomy:     "Economy management",
	CategoryTiming:      "Timing and reactivity",
	CategoryDecision:    "Decision making",
	CategoryMovement:    "Movement and counter-strafing",
	CategoryAwareness:   "Awareness",
	CategoryTeamplay:    "Teamwork",
}

// clampScore rounds and bounds a raw score into [0,100].
func clampScore(v float64) int {
	return int(math.Round(clampFloat(v, 0, 100)))
}

// weightedOverall computes the weighted mean of the present categories,
// renormalizing when the present weights do not sum to one.
func weightedOverall(scores map[string]int) int {
	var weighted, totalWeight float64
	for _, cat := range categoryOrder {
		score, ok := scores[cat]
		if !ok {
			continue
		}
		weight := categoryWeights[cat]
		weighted += float64(score) * weight
		totalWeight += weight
	}
	if totalWeight == 0 {
		return 50
	}
	if totalWeight < 0.99 {
		weighted /= totalWeight
	}
	return int(math.Round(weighted))
}

type categoryScore struct {
	category string
	score    int
}

// orderedScores returns scores in the fixed category order.
func orderedScores(scores map[string]int) []categoryScore {
	out := make([]categoryScore, 0, len(scores))
	for _, cat := range categoryOrder {
		if score, ok := scores[cat]; ok {
			out = append(out, categoryScore{category: cat, score: score})
		}
	}
	return out
}

// identifyStrengthsWeaknesses picks the top three categories at or above
// 60 as strengths and the bottom three below 50 as weaknesses, worst
// first. Ties keep the fixed category order.
func identifyStrengthsWeaknesses(scores map[string]int) (strengths, weaknesses []string) {
	strengths = []string{}
	weaknesses = []string{}

	desc := orderedScores(scores)
	sort.SliceStable(desc, func(i, j int) bool { return desc[i].score > desc[j].score })
	for i := 0; i < len(desc) && i < 3; i++ {
		if desc[i].score >= 60 {
			strengths = append(strengths, categoryLabels[desc[i].category])
		}
	}

	asc := orderedScores(scores)
	sort.SliceStable(asc, func(i, j int) bool { return asc[i].score < asc[j].score })
	for i := 0; i < len(asc) && i < 3; i++ {
		if asc[i].score < 50 {
			weaknesses = append(weaknesses, categoryLabels[asc[i].category])
		}
	}
	return strengths, weaknesses
}

// weakestCategories returns up to n categories sorted worst first.
func weakestCategories(scores map[string]int, n int) []categoryScore {
	asc := orderedScores(scores)
	sort.SliceStable(asc, func(i, j int) bool { return asc[i].score < asc[j].score })
	if len(asc) > n {
		asc = asc[:n]
	}
	return asc
}

func intPtr(v int) *int { return &v }
