package stats

import (
	"sort"
	"strings"

	"github.com/demoscope/demoscope/internal/models"
	"github.com/demoscope/demoscope/internal/replay"
)

// assistWindowSeconds bounds how long before a teammate's kill the
// player's damage on the victim still counts as an assist.
const assistWindowSeconds = 5

// PlayerStats is the box score for one player in one demo.
type PlayerStats struct {
	Kills     int
	Deaths    int
	Assists   int
	Headshots int

	HeadshotPct float64
	TotalDamage int
	ADR         float64

	EntryKills  int
	EntryDeaths int

	TradesGiven    int
	TradesReceived int

	AvgBlindDuration *float64

	WeaponStats map[string]WeaponStat
}

type WeaponStat struct {
	Kills     int `json:"kills"`
	Headshots int `json:"headshots"`
	Damage    int `json:"damage"`
}

// Extract computes the box score for steamID. Every division is zero-safe:
// a player with no kills has 0% headshots, a demo with no rounds has 0 ADR.
func Extract(r *replay.Replay, steamID string) PlayerStats {
	s := PlayerStats{WeaponStats: make(map[string]WeaponStat)}

	for _, k := range r.Kills {
		if k.AttackerSteamID == steamID {
			s.Kills++
			if k.Headshot {
				s.Headshots++
			}
			name := NormalizeWeaponName(k.Weapon)
			w := s.WeaponStats[name]
			w.Kills++
			if k.Headshot {
				w.Headshots++
			}
			s.WeaponStats[name] = w
		}
		if k.VictimSteamID == steamID {
			s.Deaths++
		}
	}

	for _, d := range r.Damages {
		if d.AttackerSteamID != steamID {
			continue
		}
		s.TotalDamage += d.Damage
		name := NormalizeWeaponName(d.Weapon)
		w := s.WeaponStats[name]
		w.Damage += d.Damage
		s.WeaponStats[name] = w
	}

	s.Assists = countAssists(r, steamID)

	if s.Kills > 0 {
		s.HeadshotPct = float64(s.Headshots) / float64(s.Kills) * 100
	}
	if rounds := len(r.Rounds); rounds > 0 {
		s.ADR = float64(s.TotalDamage) / float64(rounds)
	}

	s.EntryKills, s.EntryDeaths = entryStats(r, steamID)
	s.TradesGiven, s.TradesReceived = tradeStats(r, steamID)
	s.AvgBlindDuration = avgBlindDuration(r, steamID)
	return s
}

// countAssists credits the player for damage dealt to a victim within the
// assist window before a teammate's kill, or for flashing the victim when
// the kill was flash-assisted.
func countAssists(r *replay.Replay, steamID string) int {
	tickrate := r.Metadata.Tickrate
	if tickrate <= 0 {
		tickrate = 64
	}
	window := int(tickrate) * assistWindowSeconds

	assists := 0
	for _, k := range r.Kills {
		if k.AttackerSteamID == steamID {
			continue
		}
		if damagedRecently(r.Damages, steamID, k, window) {
			assists++
			continue
		}
		if k.AssistedFlash && flashedVictim(r.PlayerBlinds, steamID, k) {
			assists++
		}
	}
	return assists
}

func damagedRecently(damages []replay.DamageEvent, steamID string, k replay.KillEvent, window int) bool {
	for _, d := range damages {
		if d.AttackerSteamID == steamID &&
			d.VictimSteamID == k.VictimSteamID &&
			d.Round == k.Round &&
			k.Tick-d.Tick >= 0 &&
			k.Tick-d.Tick < window {
			return true
		}
	}
	return false
}

func flashedVictim(blinds []replay.PlayerBlindEvent, steamID string, k replay.KillEvent) bool {
	for _, b := range blinds {
		if b.AttackerSteamID == steamID &&
			b.VictimSteamID == k.VictimSteamID &&
			b.Round == k.Round &&
			b.Tick <= k.Tick {
			return true
		}
	}
	return false
}

// entryStats counts how often the player won or lost the first duel of a
// round.
func entryStats(r *replay.Replay, steamID string) (entryKills, entryDeaths int) {
	byRound := make(map[int][]replay.KillEvent)
	for _, k := range r.Kills {
		byRound[k.Round] = append(byRound[k.Round], k)
	}
	for _, kills := range byRound {
		sort.SliceStable(kills, func(i, j int) bool { return kills[i].Tick < kills[j].Tick })
		first := kills[0]
		if first.AttackerSteamID == steamID {
			entryKills++
		}
		if first.VictimSteamID == steamID {
			entryDeaths++
		}
	}
	return entryKills, entryDeaths
}

// tradeStats attributes a trade to the player when they are either the
// trading killer or the original victim being avenged.
func tradeStats(r *replay.Replay, steamID string) (given, received int) {
	for _, t := range r.Trades {
		if t.TraderID == steamID {
			given++
		}
		if t.OriginalVictimID == steamID {
			received++
		}
	}
	return given, received
}

func avgBlindDuration(r *replay.Replay, steamID string) *float64 {
	var total float64
	count := 0
	for _, b := range r.PlayerBlinds {
		if b.VictimSteamID == steamID {
			total += b.Duration
			count++
		}
	}
	if count == 0 {
		return nil
	}
	avg := total / float64(count)
	return &avg
}

// PlayerTeam looks up the player's team number, defaulting to 1 when the
// player is absent from the roster.
func PlayerTeam(r *replay.Replay, steamID string) int {
	for _, p := range r.Players {
		if p.SteamID == steamID {
			return p.Team
		}
	}
	return 1
}

// MatchOutcome holds the scoreboard from the main player's perspective.
type MatchOutcome struct {
	ScoreTeam1 int
	ScoreTeam2 int
	Result     models.MatchResult
}

// DetermineMatchResult tallies round wins per side and reports the outcome
// relative to playerTeam. ScoreTeam1 is always the player's side.
func DetermineMatchResult(r *replay.Replay, playerTeam int) MatchOutcome {
	ctWins, tWins := 0, 0
	for _, round := range r.Rounds {
		switch round.Winner {
		case replay.TeamCT:
			ctWins++
		case replay.TeamT:
			tWins++
		}
	}

	playerWins, opponentWins := tWins, ctWins
	if playerTeam == replay.TeamCT {
		playerWins, opponentWins = ctWins, tWins
	}

	result := models.MatchResultTie
	switch {
	case playerWins > opponentWins:
		result = models.MatchResultWin
	case opponentWins > playerWins:
		result = models.MatchResultLoss
	}
	return MatchOutcome{ScoreTeam1: playerWins, ScoreTeam2: opponentWins, Result: result}
}

var weaponNames = map[string]string{
	"ak47":             "AK-47",
	"m4a1":             "M4A1-S",
	"m4a1_silencer":    "M4A1-S",
	"m4a4":             "M4A4",
	"awp":              "AWP",
	"deagle":           "Desert Eagle",
	"usp_silencer":     "USP-S",
	"glock":            "Glock-18",
	"p250":             "P250",
	"fiveseven":        "Five-SeveN",
	"tec9":             "Tec-9",
	"cz75a":            "CZ75-Auto",
	"sg556":            "SG 553",
	"aug":              "AUG",
	"famas":            "FAMAS",
	"galil":            "Galil AR",
	"ssg08":            "SSG 08",
	"scar20":           "SCAR-20",
	"g3sg1":            "G3SG1",
	"mac10":            "MAC-10",
	"mp9":              "MP9",
	"mp7":              "MP7",
	"mp5sd":            "MP5-SD",
	"ump45":            "UMP-45",
	"p90":              "P90",
	"bizon":            "PP-Bizon",
	"nova":             "Nova",
	"xm1014":           "XM1014",
	"sawedoff":         "Sawed-Off",
	"mag7":             "MAG-7",
	"m249":             "M249",
	"negev":            "Negev",
	"hegrenade":        "HE Grenade",
	"flashbang":        "Flashbang",
	"smokegrenade":     "Smoke",
	"molotov":          "Molotov",
	"incgrenade":       "Incendiary",
	"decoy":            "Decoy",
	"knife":            "Knife",
	"knife_t":          "Knife",
	"knife_default_ct": "Knife",
	"knife_default_t":  "Knife",
	"inferno":          "Fire",
}

// NormalizeWeaponName maps engine weapon identifiers to display names,
// passing unknown names through unchanged.
func NormalizeWeaponName(weapon string) string {
	key := strings.TrimPrefix(strings.ToLower(weapon), "weapon_")
	if name, ok := weaponNames[key]; ok {
		return name
	}
	return weapon
}
