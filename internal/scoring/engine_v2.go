package scoring

import (
	"github.com/demoscope/demoscope/internal/replay"
	"github.com/demoscope/demoscope/internal/stats"
)

// EngineV2 is the nine-category generation. It consumes every canonical
// event stream, refines the main player's KAST and rating, and emits
// recommendations for the weakest categories.
type EngineV2 struct{}

func NewEngineV2() *EngineV2 { return &EngineV2{} }

func (e *EngineV2) Name() string    { return "engine-v2" }
func (e *EngineV2) Version() string { return replay.VersionCanonical }

func (e *EngineV2) Analyze(r *replay.Replay, mainSteamID string) (*Result, error) {
	box := stats.Extract(r, mainSteamID)
	totalRounds := len(r.Rounds)
	playerTeam := stats.PlayerTeam(r, mainSteamID)

	kast := calculateKAST(r, mainSteamID)
	rating := CalculateRating(RatingInput{
		Kills:       box.Kills,
		Deaths:      box.Deaths,
		Assists:     box.Assists,
		ADR:         box.ADR,
		KAST:        kast,
		TotalRounds: totalRounds,
	})

	clutchWins, clutchAttempts := 0, 0
	for _, c := range r.Clutches {
		if c.SteamID != mainSteamID {
			continue
		}
		clutchAttempts++
		if c.Won {
			clutchWins++
		}
	}

	aimScore, aimDetail := e.analyzeAim(r, mainSteamID, box)
	posScore, posDetail := e.analyzePositioning(r, mainSteamID, box)
	utilScore, utilDetail := e.analyzeUtility(r, mainSteamID, playerTeam)
	econScore, econDetail := e.analyzeEconomy(r, mainSteamID, playerTeam)
	timingScore, timingDetail := e.analyzeTiming(r, mainSteamID, box)
	decisionScore, decisionDetail := e.analyzeDecision(r, mainSteamID, box, clutchWins, clutchAttempts)
	moveScore, moveDetail := e.analyzeMovement(r, mainSteamID)
	awareScore, awareDetail := e.analyzeAwareness(r, mainSteamID, playerTeam, box)
	teamScore, teamDetail := e.analyzeTeamplay(r, mainSteamID, box)

	scores := map[string]int{
		CategoryAim:         aimScore,
		CategoryPositioning: posScore,
		CategoryUtility:     utilScore,
		CategoryEconomy:     econScore,
		CategoryTiming:      timingScore,
		CategoryDecision:    decisionScore,
		CategoryMovement:    moveScore,
		CategoryAwareness:   awareScore,
		CategoryTeamplay:    teamScore,
	}

	details := Details{
		Aim:         aimDetail,
		Positioning: posDetail,
		Utility:     utilDetail,
		Economy:     econDetail,
		Timing:      timingDetail,
		Decision:    decisionDetail,
		Movement:    moveDetail,
		Awareness:   awareDetail,
		Teamplay:    teamDetail,
	}

	strengths, weaknesses := identifyStrengthsWeaknesses(scores)

	return &Result{
		Version: replay.VersionCanonical,
		PlayerStats: PlayerPerformance{
			Kills:          box.Kills,
			Deaths:         box.Deaths,
			Assists:        box.Assists,
			Headshots:      box.Headshots,
			HeadshotPct:    box.HeadshotPct,
			ADR:            box.ADR,
			KAST:           kast,
			Rating:         rating,
			EntryKills:     box.EntryKills,
			EntryDeaths:    box.EntryDeaths,
			ClutchWins:     clutchWins,
			ClutchAttempts: clutchAttempts,
			TradesGiven:    box.TradesGiven,
			TradesReceived: box.TradesReceived,
		},
		Scores: Scores{
			Overall:     weightedOverall(scores),
			Aim:         aimScore,
			Positioning: posScore,
			Utility:     utilScore,
			Economy:     econScore,
			Timing:      timingScore,
			Decision:    decisionScore,
			Movement:    intPtr(moveScore),
			Awareness:   intPtr(awareScore),
			Teamplay:    intPtr(teamScore),
		},
		Details:         details,
		Strengths:       strengths,
		Weaknesses:      weaknesses,
		Recommendations: e.recommendations(scores, details),
		TotalRounds:     totalRounds,
		Map:             r.Metadata.Map,
		Duration:        r.Metadata.Duration,
	}, nil
}

// calculateKAST counts rounds where the player got a kill, survived, was
// traded, or assisted, as a percentage of rounds played.
func calculateKAST(r *replay.Replay, steamID string) float64 {
	if len(r.Rounds) == 0 {
		return 0
	}

	tickrate := r.Metadata.Tickrate
	if tickrate <= 0 {
		tickrate = 128
	}
	assistWindow := int(tickrate) * 5

	kastRounds := 0
	for _, round := range r.Rounds {
		hasKill, died, hasAssist := false, false, false
		for _, k := range r.Kills {
			if k.Round != round.RoundNumber {
				continue
			}
			if k.AttackerSteamID == steamID {
				hasKill = true
			}
			if k.VictimSteamID == steamID {
				died = true
			}
			if k.AttackerSteamID != steamID && assistedKill(r, steamID, k, assistWindow) {
				hasAssist = true
			}
		}

		traded := false
		for _, t := range r.Trades {
			if t.Round == round.RoundNumber && t.OriginalVictimID == steamID {
				traded = true
				break
			}
		}

		if hasKill || !died || traded || hasAssist {
			kastRounds++
		}
	}
	return float64(kastRounds) / float64(len(r.Rounds)) * 100
}

func assistedKill(r *replay.Replay, steamID string, k replay.KillEvent, window int) bool {
	for _, d := range r.Damages {
		if d.AttackerSteamID == steamID &&
			d.VictimSteamID == k.VictimSteamID &&
			d.Round == k.Round &&
			k.Tick-d.Tick >= 0 &&
			k.Tick-d.Tick < window {
			return true
		}
	}
	if !k.AssistedFlash {
		return false
	}
	for _, b := range r.PlayerBlinds {
		if b.AttackerSteamID == steamID && b.VictimSteamID == k.VictimSteamID && b.Round == k.Round {
			return true
		}
	}
	return false
}

func (e *EngineV2) analyzeAim(r *replay.Replay, steamID string, box stats.PlayerStats) (int, *AimDetail) {
	shots, hits := 0, 0
	for _, w := range r.WeaponFires {
		if w.SteamID == steamID {
			shots++
		}
	}
	for _, d := range r.Damages {
		if d.AttackerSteamID == steamID {
			hits++
		}
	}
	accuracy := 0.0
	if shots > 0 {
		accuracy = float64(hits) / float64(shots) * 100
	}

	kpr := 0.0
	if rounds := len(r.Rounds); rounds > 0 {
		kpr = float64(box.Kills) / float64(rounds)
	}

	entryWins, entryTotal := entryRecord(r, steamID)
	openingWinRate := 0.0
	if entryTotal > 0 {
		openingWinRate = float64(entryWins) / float64(entryTotal) * 100
	}

	score := clampScore(25 + box.HeadshotPct*0.45 + accuracy*0.2 + kpr*25)
	return score, &AimDetail{
		HeadshotPct:        box.HeadshotPct,
		Accuracy:           accuracy,
		KillsPerRound:      kpr,
		OpeningDuelWinRate: openingWinRate,
	}
}

func (e *EngineV2) analyzePositioning(r *replay.Replay, steamID string, box stats.PlayerStats) (int, *PositioningDetail) {
	tradedRate := 0.0
	if box.Deaths > 0 {
		tradedRate = float64(box.TradesReceived) / float64(box.Deaths) * 100
	}
	isolationRate := 0.0
	if box.Deaths > 0 {
		isolationRate = 100 - tradedRate
	}

	survivalRate := 0.0
	if rounds := len(r.Rounds); rounds > 0 {
		survived := rounds - box.Deaths
		if survived < 0 {
			survived = 0
		}
		survivalRate = float64(survived) / float64(rounds) * 100
	}

	score := clampScore(30 + tradedRate*0.35 + survivalRate*0.35)
	return score, &PositioningDetail{
		TradedDeathRate:    tradedRate,
		IsolationDeathRate: isolationRate,
		SurvivalRate:       survivalRate,
	}
}

func (e *EngineV2) analyzeUtility(r *replay.Replay, steamID string, playerTeam int) (int, *UtilityDetail) {
	thrown := 0
	for _, g := range r.Grenades {
		if g.ThrowerSteamID == steamID {
			thrown++
		}
	}

	teamByID := make(map[string]int, len(r.Players))
	for _, p := range r.Players {
		teamByID[p.SteamID] = p.Team
	}

	var enemyBlindTime float64
	blindsGiven, teamFlashes := 0, 0
	for _, b := range r.PlayerBlinds {
		if b.AttackerSteamID != steamID {
			continue
		}
		blindsGiven++
		if teamByID[b.VictimSteamID] == playerTeam && b.VictimSteamID != steamID {
			teamFlashes++
		} else {
			enemyBlindTime += b.Duration
		}
	}
	teamFlashRate := 0.0
	if blindsGiven > 0 {
		teamFlashRate = float64(teamFlashes) / float64(blindsGiven) * 100
	}

	utilityDamage := 0
	for _, d := range r.Damages {
		if d.AttackerSteamID != steamID {
			continue
		}
		switch stats.NormalizeWeaponName(d.Weapon) {
		case "HE Grenade", "Molotov", "Incendiary", "Fire":
			utilityDamage += d.Damage
		}
	}

	perRound := 0.0
	if rounds := len(r.Rounds); rounds > 0 {
		perRound = float64(thrown) / float64(rounds)
	}

	score := clampScore(30 + minFloat(perRound*25, 30) + minFloat(enemyBlindTime*2, 20) +
		minFloat(float64(utilityDamage)/10, 20) - teamFlashRate*0.3)
	return score, &UtilityDetail{
		GrenadesThrown:   thrown,
		GrenadesPerRound: perRound,
		EnemyBlindTime:   enemyBlindTime,
		TeamFlashRate:    teamFlashRate,
		UtilityDamage:    utilityDamage,
	}
}

// analyzeEconomy measures how closely the player's spending tracks the
// team's round to round. Without economy data the category stays neutral.
func (e *EngineV2) analyzeEconomy(r *replay.Replay, steamID string, playerTeam int) (int, *EconomyDetail) {
	if len(r.EconomyByRound) == 0 {
		return 50, nil
	}

	const buyThreshold = 1000

	var totalSpend float64
	rounds, synced := 0, 0
	for _, econ := range r.EconomyByRound {
		var playerSpent int
		playerFound := false
		teamSpent, teamCount := 0, 0
		for _, p := range econ.Players {
			if p.SteamID == steamID {
				playerSpent = p.SpentThisRound
				playerFound = true
			} else if p.Team == playerTeam {
				teamSpent += p.SpentThisRound
				teamCount++
			}
		}
		if !playerFound || teamCount == 0 {
			continue
		}
		rounds++
		totalSpend += float64(playerSpent)
		teamAvg := float64(teamSpent) / float64(teamCount)
		if (playerSpent >= buyThreshold) == (teamAvg >= buyThreshold) {
			synced++
		}
	}
	if rounds == 0 {
		return 50, nil
	}

	avgSpend := totalSpend / float64(rounds)
	syncRate := float64(synced) / float64(rounds) * 100

	score := clampScore(20 + syncRate*0.6)
	return score, &EconomyDetail{AvgSpend: avgSpend, BuySyncRate: syncRate}
}

func (e *EngineV2) analyzeTiming(r *replay.Replay, steamID string, box stats.PlayerStats) (int, *TimingDetail) {
	entryWins, entryTotal := entryRecord(r, steamID)
	involvement := 0.0
	if rounds := len(r.Rounds); rounds > 0 {
		involvement = float64(entryTotal) / float64(rounds) * 100
	}
	winRate := 0.0
	if entryTotal > 0 {
		winRate = float64(entryWins) / float64(entryTotal) * 100
	}

	var tradeTime float64
	tradeCount := 0
	for _, t := range r.Trades {
		if t.TraderID == steamID {
			tradeTime += t.TimeToTrade
			tradeCount++
		}
	}
	avgTradeTime := 0.0
	if tradeCount > 0 {
		avgTradeTime = tradeTime / float64(tradeCount)
	}

	score := clampScore(40 + winRate*0.3 + minFloat(involvement, 20) - avgTradeTime*3)
	return score, &TimingDetail{
		EntryInvolvement: involvement,
		EntryWinRate:     winRate,
		AvgTradeTime:     avgTradeTime,
	}
}

func (e *EngineV2) analyzeDecision(r *replay.Replay, steamID string, box stats.PlayerStats, clutchWins, clutchAttempts int) (int, *DecisionDetail) {
	entryWins, entryTotal := entryRecord(r, steamID)
	entryWinRate := 0.0
	if entryTotal > 0 {
		entryWinRate = float64(entryWins) / float64(entryTotal) * 100
	}
	clutchWinRate := 0.0
	if clutchAttempts > 0 {
		clutchWinRate = float64(clutchWins) / float64(clutchAttempts) * 100
	}

	score := clampScore(40 + entryWinRate*0.25 + clutchWinRate*0.25)
	return score, &DecisionDetail{
		EntryAttempts:  entryTotal,
		EntryWinRate:   entryWinRate,
		ClutchAttempts: clutchAttempts,
		ClutchWinRate:  clutchWinRate,
	}
}

func (e *EngineV2) analyzeMovement(r *replay.Replay, steamID string) (int, *MovementDetail) {
	shots, counterStrafed, moving, crouching := 0, 0, 0, 0
	for _, w := range r.WeaponFires {
		if w.SteamID != steamID {
			continue
		}
		shots++
		if w.IsCounterStrafed {
			counterStrafed++
		}
		if w.IsMoving {
			moving++
		}
		if w.IsCrouching {
			crouching++
		}
	}
	if shots == 0 {
		return 50, &MovementDetail{}
	}

	counterStrafeRate := float64(counterStrafed) / float64(shots) * 100
	movingRate := float64(moving) / float64(shots) * 100
	crouchRate := float64(crouching) / float64(shots) * 100

	score := clampScore(counterStrafeRate*0.6 + (100-movingRate)*0.4)
	return score, &MovementDetail{
		ShotsFired:       shots,
		CounterStrafeRate: counterStrafeRate,
		MovingFireRate:   movingRate,
		CrouchFireRate:   crouchRate,
	}
}

func (e *EngineV2) analyzeAwareness(r *replay.Replay, steamID string, playerTeam int, box stats.PlayerStats) (int, *AwarenessDetail) {
	tickrate := r.Metadata.Tickrate
	if tickrate <= 0 {
		tickrate = 128
	}

	blindDeaths := 0
	for _, k := range r.Kills {
		if k.VictimSteamID != steamID {
			continue
		}
		for _, b := range r.PlayerBlinds {
			if b.VictimSteamID == steamID && b.Round == k.Round &&
				b.Tick <= k.Tick &&
				float64(k.Tick-b.Tick) <= b.Duration*tickrate {
				blindDeaths++
				break
			}
		}
	}
	blindDeathRate := 0.0
	if box.Deaths > 0 {
		blindDeathRate = float64(blindDeaths) / float64(box.Deaths) * 100
	}

	avgBlind := 0.0
	if box.AvgBlindDuration != nil {
		avgBlind = *box.AvgBlindDuration
	}

	teamBombEvents, playerBombEvents := 0, 0
	teamByID := make(map[string]int, len(r.Players))
	for _, p := range r.Players {
		teamByID[p.SteamID] = p.Team
	}
	for _, b := range r.BombEvents {
		if b.Type != "planted" && b.Type != "defused" {
			continue
		}
		if teamByID[b.SteamID] == playerTeam {
			teamBombEvents++
			if b.SteamID == steamID {
				playerBombEvents++
			}
		}
	}
	bombParticipation := 0.0
	if teamBombEvents > 0 {
		bombParticipation = float64(playerBombEvents) / float64(teamBombEvents) * 100
	}

	score := clampScore(70 - blindDeathRate*0.5 - avgBlind*5 + bombParticipation*0.2)
	return score, &AwarenessDetail{
		BlindDeathRate:    blindDeathRate,
		AvgBlindDuration:  avgBlind,
		BombParticipation: bombParticipation,
	}
}

func (e *EngineV2) analyzeTeamplay(r *replay.Replay, steamID string, box stats.PlayerStats) (int, *TeamplayDetail) {
	var tradeTime float64
	for _, t := range r.Trades {
		if t.TraderID == steamID {
			tradeTime += t.TimeToTrade
		}
	}
	avgTradeTime := 0.0
	if box.TradesGiven > 0 {
		avgTradeTime = tradeTime / float64(box.TradesGiven)
	}

	apr := 0.0
	participation := 0.0
	if rounds := len(r.Rounds); rounds > 0 {
		apr = float64(box.Assists) / float64(rounds)
		participation = float64(box.TradesGiven+box.TradesReceived) / float64(rounds) * 100
	}

	score := clampScore(40 + minFloat(participation, 30) + apr*30 - maxFloat(avgTradeTime-2, 0)*5)
	return score, &TeamplayDetail{
		TradesGiven:     box.TradesGiven,
		TradesReceived:  box.TradesReceived,
		AvgTradeTime:    avgTradeTime,
		AssistsPerRound: apr,
	}
}

// recommendations emits suggestions for the three weakest categories below
// 70, capped at five, worst category first.
func (e *EngineV2) recommendations(scores map[string]int, details Details) []Recommendation {
	recs := []Recommendation{}
	for _, cs := range weakestCategories(scores, 3) {
		if cs.score >= 70 {
			continue
		}
		if rec := recommendationFor(cs.category, cs.score, details); rec != nil {
			recs = append(recs, *rec)
		}
	}
	if len(recs) > 5 {
		recs = recs[:5]
	}
	return recs
}

func recommendationFor(category string, score int, details Details) *Recommendation {
	priority := "low"
	switch {
	case score < 40:
		priority = "high"
	case score < 55:
		priority = "medium"
	}

	switch category {
	case CategoryMovement:
		if details.Movement != nil && details.Movement.CounterStrafeRate < 60 {
			return &Recommendation{
				Category:     "Movement",
				Priority:     priority,
				Title:        "Improve counter-strafing",
				Description:  "Practice stopping before you shoot. Tap the opposite movement key to halt instantly.",
				Metric:       "counterStrafeRate",
				CurrentValue: details.Movement.CounterStrafeRate,
				TargetValue:  70,
			}
		}
	case CategoryAwareness:
		if details.Awareness != nil && details.Awareness.BlindDeathRate > 15 {
			return &Recommendation{
				Category:     "Awareness",
				Priority:     priority,
				Title:        "Die blinded less often",
				Description:  "Anticipate enemy flashes and dodge them by turning away or breaking line of sight.",
				Metric:       "blindDeathRate",
				CurrentValue: details.Awareness.BlindDeathRate,
				TargetValue:  10,
			}
		}
	case CategoryTeamplay:
		if details.Teamplay != nil && details.Teamplay.AvgTradeTime > 3 {
			return &Recommendation{
				Category:     "Teamplay",
				Priority:     priority,
				Title:        "Trade teammates faster",
				Description:  "Stay closer to teammates so you can refrag them quickly.",
				Metric:       "avgTradeTime",
				CurrentValue: details.Teamplay.AvgTradeTime,
				TargetValue:  2,
			}
		}
	case CategoryUtility:
		if details.Utility != nil && details.Utility.TeamFlashRate > 25 {
			return &Recommendation{
				Category:     "Utility",
				Priority:     priority,
				Title:        "Reduce team flashes",
				Description:  "Call your flashes before throwing and favor pop-flashes over long setups.",
				Metric:       "teamFlashRate",
				CurrentValue: details.Utility.TeamFlashRate,
				TargetValue:  15,
			}
		}
	case CategoryEconomy:
		if details.Economy != nil && details.Economy.BuySyncRate < 80 {
			return &Recommendation{
				Category:     "Economy",
				Priority:     priority,
				Title:        "Buy with your team",
				Description:  "Match the team's economy: save when they save and full-buy together.",
				Metric:       "buySyncRate",
				CurrentValue: details.Economy.BuySyncRate,
				TargetValue:  90,
			}
		}
	case CategoryAim:
		current := 0.0
		if details.Aim != nil {
			current = details.Aim.HeadshotPct
		}
		return &Recommendation{
			Category:     "Aim",
			Priority:     priority,
			Title:        "Improve crosshair placement",
			Description:  "Keep your crosshair at head level and pre-aim common angles.",
			Metric:       "headshotPercentage",
			CurrentValue: current,
			TargetValue:  50,
		}
	case CategoryPositioning:
		current := 0.0
		if details.Positioning != nil {
			current = details.Positioning.IsolationDeathRate
		}
		return &Recommendation{
			Category:     "Positioning",
			Priority:     priority,
			Title:        "Take tradeable positions",
			Description:  "Avoid spots where nobody can trade your death. Hold angles near teammates.",
			Metric:       "isolationDeathRate",
			CurrentValue: current,
			TargetValue:  25,
		}
	}
	return nil
}

// entryRecord counts the entry duels the player won and was involved in.
func entryRecord(r *replay.Replay, steamID string) (wins, total int) {
	for _, e := range r.EntryDuels {
		if e.WinnerID == steamID {
			wins++
			total++
		} else if e.LoserID == steamID {
			total++
		}
	}
	return wins, total
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
