package replay

import "sort"

// tradeWindowSeconds is the window after a death in which a kill on the
// original killer counts as a trade.
const tradeWindowSeconds = 3.0

// defaultTickrate is used when metadata carries no tickrate.
const defaultTickrate = 128.0

// DeriveEvents fills trades, entry duels, and clutch situations from the
// kill stream when the parser did not populate them. Legacy-compat replays
// are left alone: their derived streams are empty by construction.
func DeriveEvents(r *Replay) {
	if r.Version == VersionLegacyCompat {
		return
	}
	if len(r.Trades) == 0 {
		r.Trades = deriveTrades(r)
	}
	if len(r.EntryDuels) == 0 {
		r.EntryDuels = deriveEntryDuels(r)
	}
	if len(r.Clutches) == 0 {
		r.Clutches = deriveClutches(r)
	}
}

func (m Metadata) ticksPerSecond() float64 {
	if m.Tickrate > 0 {
		return m.Tickrate
	}
	return defaultTickrate
}

func deriveTrades(r *Replay) []TradeEvent {
	tps := r.Metadata.ticksPerSecond()
	kills := sortedKills(r.Kills)
	trades := []TradeEvent{}

	for i, kill := range kills {
		for j := i + 1; j < len(kills); j++ {
			next := kills[j]
			if next.Round != kill.Round {
				break
			}
			elapsed := float64(next.Tick-kill.Tick) / tps
			if elapsed > tradeWindowSeconds {
				break
			}
			if next.VictimSteamID == kill.AttackerSteamID {
				trades = append(trades, TradeEvent{
					Round:            kill.Round,
					OriginalKillTick: kill.Tick,
					TradeTick:        next.Tick,
					TimeToTrade:      elapsed,
					OriginalVictimID: kill.VictimSteamID,
					OriginalKillerID: kill.AttackerSteamID,
					TraderID:         next.AttackerSteamID,
				})
				break
			}
		}
	}
	return trades
}

func deriveEntryDuels(r *Replay) []EntryDuel {
	byRound := killsByRound(r.Kills)
	rounds := make([]int, 0, len(byRound))
	for round := range byRound {
		rounds = append(rounds, round)
	}
	sort.Ints(rounds)

	entries := []EntryDuel{}
	for _, round := range rounds {
		first := byRound[round][0]
		entries = append(entries, EntryDuel{
			Round:    round,
			Tick:     first.Tick,
			WinnerID: first.AttackerSteamID,
			LoserID:  first.VictimSteamID,
			Weapon:   first.Weapon,
			Headshot: first.Headshot,
			Distance: first.Distance,
		})
	}
	return entries
}

// deriveClutches approximates clutch detection from the kill stream alone:
// an attacker who scores three or more of a round's closing kills is
// credited with a clutch starting at their first kill of the run. At most
// one clutch is recorded per round.
func deriveClutches(r *Replay) []ClutchSituation {
	byRound := killsByRound(r.Kills)
	rounds := make([]int, 0, len(byRound))
	for round := range byRound {
		rounds = append(rounds, round)
	}
	sort.Ints(rounds)

	clutches := []ClutchSituation{}
	for _, round := range rounds {
		kills := byRound[round]
		if len(kills) < 2 {
			continue
		}
		for i, kill := range kills {
			if len(kills)-i-1 < 2 {
				continue
			}
			laterBySame := 0
			for _, later := range kills[i+1:] {
				if later.AttackerSteamID == kill.AttackerSteamID {
					laterBySame++
				}
			}
			if laterBySame >= 2 {
				clutches = append(clutches, ClutchSituation{
					Round:         round,
					SteamID:       kill.AttackerSteamID,
					KillsInClutch: laterBySame + 1,
					StartTick:     kill.Tick,
					Won:           true,
				})
				break
			}
		}
	}
	return clutches
}

// sortedKills returns a copy ordered by round then tick.
func sortedKills(kills []KillEvent) []KillEvent {
	sorted := make([]KillEvent, len(kills))
	copy(sorted, kills)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Round != sorted[j].Round {
			return sorted[i].Round < sorted[j].Round
		}
		return sorted[i].Tick < sorted[j].Tick
	})
	return sorted
}

// killsByRound groups kills per round, each group ordered by tick.
func killsByRound(kills []KillEvent) map[int][]KillEvent {
	byRound := make(map[int][]KillEvent)
	for _, k := range kills {
		byRound[k.Round] = append(byRound[k.Round], k)
	}
	for round := range byRound {
		group := byRound[round]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Tick < group[j].Tick
		})
		byRound[round] = group
	}
	return byRound
}
