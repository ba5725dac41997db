package scoring

import (
	"github.com/demoscope/demoscope/internal/replay"
	"github.com/demoscope/demoscope/internal/stats"
)

// LegacyResult is the six-category output of the legacy generation before
// ConvertLegacyResult lifts it into the canonical shape.
type LegacyResult struct {
	PlayerStats LegacyPlayerStats
	Scores      LegacyScores
	Details     Details
	Strengths   []string
	Weaknesses  []string
	TotalRounds int
	Map         string
	Duration    float64
}

type LegacyPlayerStats struct {
	Kills       int
	Deaths      int
	Assists     int
	Headshots   int
	HeadshotPct float64
	ADR         float64
	KAST        float64
	Rating      float64
	EntryKills  int
	EntryDeaths int
}

type LegacyScores struct {
	Overall     int
	Aim         int
	Positioning int
	Utility     int
	Economy     int
	Timing      int
	Decision    int
}

// legacyWeights is the six-category weighting the legacy generation used.
var legacyWeights = []struct {
	category string
	weight   float64
}{
	{CategoryAim, 0.25},
	{CategoryPositioning, 0.20},
	{CategoryUtility, 0.15},
	{CategoryEconomy, 0.10},
	{CategoryTiming, 0.15},
	{CategoryDecision, 0.15},
}

// EngineV1 scores the six categories computable from the core streams
// alone. It runs when only a legacy-compat parse is available.
type EngineV1 struct{}

func NewEngineV1() *EngineV1 { return &EngineV1{} }

func (e *EngineV1) Name() string    { return "engine-v1" }
func (e *EngineV1) Version() string { return replay.VersionLegacyCompat }

func (e *EngineV1) Analyze(r *replay.Replay, mainSteamID string) (*Result, error) {
	legacy := e.AnalyzeLegacy(r, mainSteamID)
	return ConvertLegacyResult(legacy), nil
}

// AnalyzeLegacy produces the raw six-category result.
func (e *EngineV1) AnalyzeLegacy(r *replay.Replay, mainSteamID string) *LegacyResult {
	box := stats.Extract(r, mainSteamID)
	totalRounds := len(r.Rounds)

	kast := legacyKAST(r, mainSteamID)
	rating := CalculateRating(RatingInput{
		Kills:       box.Kills,
		Deaths:      box.Deaths,
		Assists:     box.Assists,
		ADR:         box.ADR,
		KAST:        kast,
		TotalRounds: totalRounds,
	})

	kpr := 0.0
	survivalRate := 0.0
	if totalRounds > 0 {
		kpr = float64(box.Kills) / float64(totalRounds)
		survived := totalRounds - box.Deaths
		if survived < 0 {
			survived = 0
		}
		survivalRate = float64(survived) / float64(totalRounds) * 100
	}

	aimScore := clampScore(25 + box.HeadshotPct*0.5 + kpr*30)
	aimDetail := &AimDetail{HeadshotPct: box.HeadshotPct, KillsPerRound: kpr}

	posScore := clampScore(30 + survivalRate*0.5)
	posDetail := &PositioningDetail{SurvivalRate: survivalRate, IsolationDeathRate: 100 - survivalRate}

	thrown := 0
	for _, g := range r.Grenades {
		if g.ThrowerSteamID == mainSteamID {
			thrown++
		}
	}
	perRound := 0.0
	if totalRounds > 0 {
		perRound = float64(thrown) / float64(totalRounds)
	}
	utilityDamage := 0
	for _, d := range r.Damages {
		if d.AttackerSteamID != mainSteamID {
			continue
		}
		switch stats.NormalizeWeaponName(d.Weapon) {
		case "HE Grenade", "Molotov", "Incendiary", "Fire":
			utilityDamage += d.Damage
		}
	}
	utilScore := clampScore(35 + minFloat(perRound*30, 40) + minFloat(float64(utilityDamage)/10, 25))
	utilDetail := &UtilityDetail{GrenadesThrown: thrown, GrenadesPerRound: perRound, UtilityDamage: utilityDamage}

	// The legacy format carries no economy stream.
	econScore := 50

	entryWins, entryTotal := box.EntryKills, box.EntryKills+box.EntryDeaths
	entryWinRate := 0.0
	if entryTotal > 0 {
		entryWinRate = float64(entryWins) / float64(entryTotal) * 100
	}
	timingScore := clampScore(40 + entryWinRate*0.3 + kast*0.1)
	timingDetail := &TimingDetail{EntryWinRate: entryWinRate}

	decisionScore := clampScore(40 + entryWinRate*0.25 + survivalRate*0.15)
	decisionDetail := &DecisionDetail{EntryAttempts: entryTotal, EntryWinRate: entryWinRate}

	scores := LegacyScores{
		Aim:         aimScore,
		Positioning: posScore,
		Utility:     utilScore,
		Economy:     econScore,
		Timing:      timingScore,
		Decision:    decisionScore,
	}
	scores.Overall = legacyOverall(scores)

	strengths, weaknesses := legacyStrengthsWeaknesses(scores)

	return &LegacyResult{
		PlayerStats: LegacyPlayerStats{
			Kills:       box.Kills,
			Deaths:      box.Deaths,
			Assists:     box.Assists,
			Headshots:   box.Headshots,
			HeadshotPct: box.HeadshotPct,
			ADR:         box.ADR,
			KAST:        kast,
			Rating:      rating,
			EntryKills:  box.EntryKills,
			EntryDeaths: box.EntryDeaths,
		},
		Scores: scores,
		Details: Details{
			Aim:         aimDetail,
			Positioning: posDetail,
			Utility:     utilDetail,
			Timing:      timingDetail,
			Decision:    decisionDetail,
		},
		Strengths:   strengths,
		Weaknesses:  weaknesses,
		TotalRounds: totalRounds,
		Map:         r.Metadata.Map,
		Duration:    r.Metadata.Duration,
	}
}

// legacyKAST has no trade stream to consult, so a death counts as traded
// when the killer dies within three seconds of it.
func legacyKAST(r *replay.Replay, steamID string) float64 {
	if len(r.Rounds) == 0 {
		return 0
	}
	tickrate := r.Metadata.Tickrate
	if tickrate <= 0 {
		tickrate = 128
	}
	tradeWindow := int(tickrate) * 3

	kastRounds := 0
	for _, round := range r.Rounds {
		hasKill, died := false, false
		var deathTick int
		var killerID string
		for _, k := range r.Kills {
			if k.Round != round.RoundNumber {
				continue
			}
			if k.AttackerSteamID == steamID {
				hasKill = true
			}
			if k.VictimSteamID == steamID {
				died = true
				deathTick = k.Tick
				killerID = k.AttackerSteamID
			}
		}

		traded := false
		if died {
			for _, k := range r.Kills {
				if k.Round == round.RoundNumber &&
					k.VictimSteamID == killerID &&
					k.Tick > deathTick &&
					k.Tick-deathTick < tradeWindow {
					traded = true
					break
				}
			}
		}

		if hasKill || !died || traded {
			kastRounds++
		}
	}
	return float64(kastRounds) / float64(len(r.Rounds)) * 100
}

func legacyOverall(s LegacyScores) int {
	byCategory := map[string]int{
		CategoryAim:         s.Aim,
		CategoryPositioning: s.Positioning,
		CategoryUtility:     s.Utility,
		CategoryEconomy:     s.Economy,
		CategoryTiming:      s.Timing,
		CategoryDecision:    s.Decision,
	}
	var weighted float64
	for _, w := range legacyWeights {
		weighted += float64(byCategory[w.category]) * w.weight
	}
	return clampScore(weighted)
}

// legacyStrengthsWeaknesses uses the legacy thresholds: 70 and above is a
// strength, 40 and below a weakness, listed in fixed category order.
func legacyStrengthsWeaknesses(s LegacyScores) (strengths, weaknesses []string) {
	strengths = []string{}
	weaknesses = []string{}

	byCategory := map[string]int{
		CategoryAim:         s.Aim,
		CategoryPositioning: s.Positioning,
		CategoryUtility:     s.Utility,
		CategoryEconomy:     s.Economy,
		CategoryTiming:      s.Timing,
		CategoryDecision:    s.Decision,
	}

	for _, w := range legacyWeights {
		cat := w.category
		score := byCategory[cat]
		if score >= 70 {
			strengths = append(strengths, categoryLabels[cat])
		} else if score <= 40 {
			weaknesses = append(weaknesses, categoryLabels[cat])
		}
	}
	return strengths, weaknesses
}
