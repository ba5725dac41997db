package coaching

import "github.com/demoscope/demoscope/internal/scoring"

// Rule ties a detectable problem to remediation advice. Priority 1 is the
// most urgent; severity is derived from it when the report is built.
type Rule struct {
	ID       string
	Category string
	Priority int

	Condition func(*scoring.Result) bool

	Title        string
	Description  string
	Exercises    []Exercise
	WorkshopMaps []string
}

// Severity levels for priority issues.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
)

func severityFor(priority int) string {
	switch {
	case priority <= 1:
		return SeverityCritical
	case priority <= 2:
		return SeverityHigh
	case priority <= 3:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// rules is the full table, grouped by category. Conditions only read the
// result, so evaluation order never matters; the table order breaks
// priority ties.
var rules = []Rule{
	// Aim
	{
		ID:       "low_headshot_percentage",
		Category: scoring.CategoryAim,
		Priority: 1,
		Condition: func(r *scoring.Result) bool {
			return r.PlayerStats.HeadshotPct < 35
		},
		Title: "Raise your headshot percentage",
		Description: "Your headshot rate is below 35%, which points to poor crosshair placement. " +
			"Keep your crosshair at head level at all times and pre-aim common angles.",
		Exercises: []Exercise{
			{Name: "Aim Botz - Head Level Only", Duration: 15, Type: ExerciseWorkshop, Description: "Disable bots that are not at head height"},
			{Name: "Prefire Practice", Duration: 10, Type: ExerciseWorkshop, Description: "Drill prefires on common angles"},
		},
		WorkshopMaps: []string{"Aim Botz", "Prefire Practice Maps", "Yprac Prefire"},
	},
	{
		ID:       "weak_opening_duels",
		Category: scoring.CategoryAim,
		Priority: 2,
		Condition: func(r *scoring.Result) bool {
			return r.Details.Aim != nil && r.Details.Aim.OpeningDuelWinRate < 35
		},
		Title: "Win more opening duels",
		Description: "You lose most of your first engagements. Work on raw duel mechanics and only " +
			"take opening fights where you hold the angle advantage.",
		Exercises: []Exercise{
			{Name: "DM HS Only", Duration: 20, Type: ExerciseCommunityServer, Description: "Play headshot-only deathmatch servers"},
			{Name: "Fast Aim / Reflex Training", Duration: 10, Type: ExerciseWorkshop, Description: "Train reaction speed and flick accuracy"},
		},
		WorkshopMaps: []string{"Fast Aim/Reflex Training", "Aim Botz"},
	},
	{
		ID:       "low_kills_per_round",
		Category: scoring.CategoryAim,
		Priority: 3,
		Condition: func(r *scoring.Result) bool {
			return r.Details.Aim != nil && r.Details.Aim.KillsPerRound < 0.5
		},
		Title:       "Increase your round impact",
		Description: "You average fewer than half a kill per round. Look for more fights instead of saving your spot for the whole round.",
		Exercises: []Exercise{
			{Name: "Aim Lab / Kovaaks", Duration: 15, Type: ExerciseExternal, Description: "Use a dedicated aim trainer for reflexes"},
			{Name: "DM Pistol Only", Duration: 15, Type: ExerciseCommunityServer, Description: "Pistol deathmatch forces fast reactions"},
		},
		WorkshopMaps: []string{"Aim Botz", "training_aim_csgo2"},
	},
	{
		ID:       "weak_overall_aim",
		Category: scoring.CategoryAim,
		Priority: 4,
		Condition: func(r *scoring.Result) bool {
			return r.Scores.Aim < 50
		},
		Title:       "Rebuild your aim fundamentals",
		Description: "Your aim score is below average. Learn spray patterns for your main weapons and drill them daily.",
		Exercises: []Exercise{
			{Name: "Recoil Master", Duration: 15, Type: ExerciseWorkshop, Description: "Learn the recoil pattern of each weapon"},
			{Name: "Spray Practice Wall", Duration: 10, Type: ExerciseWorkshop, Description: "Spray at a wall with visual feedback"},
		},
		WorkshopMaps: []string{"Recoil Master", "Aim Botz"},
	},

	// Positioning
	{
		ID:       "isolated_deaths",
		Category: scoring.CategoryPositioning,
		Priority: 1,
		Condition: func(r *scoring.Result) bool {
			return r.Details.Positioning != nil && r.Details.Positioning.IsolationDeathRate > 60
		},
		Title: "Stop dying without a trade",
		Description: "Most of your deaths happen where no teammate can punish the killer. Play closer to " +
			"your team and avoid predictable solo positions.",
		Exercises: []Exercise{
			{Name: "Personal demo review", Duration: 20, Type: ExerciseTheory, Description: "Review your deaths and identify the pattern"},
			{Name: "Off-angle practice", Duration: 15, Type: ExerciseWorkshop, Description: "Learn alternative positions"},
		},
		WorkshopMaps: []string{"Yprac Maps", "Prefire Practice"},
	},
	{
		ID:       "low_survival_rate",
		Category: scoring.CategoryPositioning,
		Priority: 2,
		Condition: func(r *scoring.Result) bool {
			return r.Details.Positioning != nil && r.Details.Positioning.SurvivalRate < 25
		},
		Title:       "Survive more rounds",
		Description: "You die in nearly every round. Read the game state before committing and keep an exit plan.",
		Exercises: []Exercise{
			{Name: "Watch pro matches", Duration: 30, Type: ExerciseTheory, Description: "Study how pro teams take map control"},
			{Name: "Retakes server", Duration: 20, Type: ExerciseCommunityServer, Description: "Practice rotations and retakes"},
		},
		WorkshopMaps: []string{"Yprac Maps"},
	},
	{
		ID:       "weak_overall_positioning",
		Category: scoring.CategoryPositioning,
		Priority: 3,
		Condition: func(r *scoring.Result) bool {
			return r.Scores.Positioning < 50
		},
		Title:       "Tighten your peeks",
		Description: "You expose yourself to several angles at once. Isolate duels and use jiggle and shoulder peeks to gather info.",
		Exercises: []Exercise{
			{Name: "Jiggle peek practice", Duration: 15, Type: ExerciseWorkshop, Description: "Master the jiggle movement"},
			{Name: "Angle isolation practice", Duration: 15, Type: ExerciseWorkshop, Description: "Practice clearing one angle at a time"},
		},
		WorkshopMaps: []string{"Aim Botz", "Yprac Maps"},
	},

	// Utility
	{
		ID:       "low_grenade_usage",
		Category: scoring.CategoryUtility,
		Priority: 2,
		Condition: func(r *scoring.Result) bool {
			return r.Details.Utility != nil && r.Details.Utility.GrenadesPerRound < 0.5
		},
		Title:       "Use your utility",
		Description: "You throw too few grenades. Flashes and smokes are what turn even fights into favorable ones.",
		Exercises: []Exercise{
			{Name: "Flash training map", Duration: 20, Type: ExerciseWorkshop, Description: "Learn pop flashes and self-flashes"},
			{Name: "Smoke lineups", Duration: 20, Type: ExerciseWorkshop, Description: "Learn the essential smoke lineups for your maps"},
		},
		WorkshopMaps: []string{"Yprac Flash Practice", "Smoke Practice"},
	},
	{
		ID:       "high_team_flash_rate",
		Category: scoring.CategoryUtility,
		Priority: 3,
		Condition: func(r *scoring.Result) bool {
			return r.Details.Utility != nil && r.Details.Utility.TeamFlashRate > 25
		},
		Title:       "Stop flashing your team",
		Description: "A quarter of your flashes blind teammates. Announce your flashes and learn lineups that pop behind enemy cover.",
		Exercises: []Exercise{
			{Name: "Pop flash tutorial", Duration: 15, Type: ExerciseTheory, Description: "Study pop flash mechanics and timings"},
			{Name: "Flash practice", Duration: 15, Type: ExerciseWorkshop, Description: "Practice the different flash types"},
		},
		WorkshopMaps: []string{"Yprac Maps", "Smoke Practice"},
	},
	{
		ID:       "ineffective_flashes",
		Category: scoring.CategoryUtility,
		Priority: 4,
		Condition: func(r *scoring.Result) bool {
			return r.Details.Utility != nil &&
				r.Details.Utility.GrenadesThrown > 0 && r.Details.Utility.EnemyBlindTime < 2
		},
		Title:       "Make your flashes count",
		Description: "Your flashbangs barely blind anyone. Work on pop flashes thrown for a teammate or yourself to swing off.",
		Exercises: []Exercise{
			{Name: "Execute practice", Duration: 15, Type: ExerciseWorkshop, Description: "Practice full site executes with utility"},
			{Name: "Flash timing drill", Duration: 10, Type: ExerciseWorkshop, Description: "Drill the flash-then-swing timing"},
		},
		WorkshopMaps: []string{"Yprac Maps", "Molotov Practice"},
	},

	// Economy
	{
		ID:       "desynced_buys",
		Category: scoring.CategoryEconomy,
		Priority: 2,
		Condition: func(r *scoring.Result) bool {
			return r.Details.Economy != nil && r.Details.Economy.BuySyncRate < 80
		},
		Title:       "Buy with your team",
		Description: "Your buys regularly diverge from your team's. A lone force or a lone eco wastes money either way.",
		Exercises: []Exercise{
			{Name: "Economy theory", Duration: 15, Type: ExerciseTheory, Description: "Study loss bonus math and standard buy thresholds"},
			{Name: "Demo economy review", Duration: 15, Type: ExerciseTheory, Description: "Review your buy rounds against the team's"},
		},
	},
	{
		ID:       "weak_overall_economy",
		Category: scoring.CategoryEconomy,
		Priority: 3,
		Condition: func(r *scoring.Result) bool {
			return r.Scores.Economy < 50
		},
		Title:       "Manage your money",
		Description: "Your economy decisions cost your team rounds. Learn when to force, when to save, and stop dying with unspent money.",
		Exercises: []Exercise{
			{Name: "Buy round drills", Duration: 10, Type: ExerciseTheory, Description: "Rehearse standard buys for each money bracket"},
			{Name: "Pro VOD economy analysis", Duration: 20, Type: ExerciseTheory, Description: "Watch how pro teams coordinate buys"},
		},
	},

	// Timing
	{
		ID:       "slow_trades",
		Category: scoring.CategoryTiming,
		Priority: 2,
		Condition: func(r *scoring.Result) bool {
			return r.Details.Timing != nil && r.Details.Timing.AvgTradeTime > 3
		},
		Title: "Trade faster",
		Description: "You take too long to refrag teammates. A trade has to land inside three seconds to " +
			"deny the enemy a repeek. Position for the trade before the fight starts.",
		Exercises: []Exercise{
			{Name: "Retakes practice", Duration: 20, Type: ExerciseCommunityServer, Description: "Practice fast trades on retake servers"},
			{Name: "Positioning for trades", Duration: 15, Type: ExerciseTheory, Description: "Learn pair spacing that enables instant trades"},
		},
	},
	{
		ID:       "low_entry_involvement",
		Category: scoring.CategoryTiming,
		Priority: 3,
		Condition: func(r *scoring.Result) bool {
			return r.Details.Timing != nil && r.Details.Timing.EntryInvolvement < 10
		},
		Title:       "Be part of the opening fight",
		Description: "You are almost never near the first duel of the round. Arrive with your team instead of lurking by default.",
		Exercises: []Exercise{
			{Name: "Pro VOD analysis - openings", Duration: 25, Type: ExerciseTheory, Description: "Study when pros commit to the first fight"},
			{Name: "2v2 practice", Duration: 20, Type: ExerciseCommunityServer, Description: "Practice coordinated opening duels"},
		},
	},

	// Decision
	{
		ID:       "losing_engagements",
		Category: scoring.CategoryDecision,
		Priority: 1,
		Condition: func(r *scoring.Result) bool {
			deaths := r.PlayerStats.Deaths
			kd := float64(r.PlayerStats.Kills)
			if deaths > 0 {
				kd = float64(r.PlayerStats.Kills) / float64(deaths)
			}
			return kd < 0.8 && deaths > 12
		},
		Title: "Pick better fights",
		Description: "You lose far more duels than you win, which usually means you engage from losing " +
			"positions. Learn to recognize when the angle, the timing, or the numbers are against you.",
		Exercises: []Exercise{
			{Name: "1v1 arena practice", Duration: 20, Type: ExerciseCommunityServer, Description: "Improve duels in a controlled setting"},
			{Name: "Angle advantage guide", Duration: 15, Type: ExerciseTheory, Description: "Understand when you hold the angle advantage"},
		},
	},
	{
		ID:       "weak_clutch_performance",
		Category: scoring.CategoryDecision,
		Priority: 2,
		Condition: func(r *scoring.Result) bool {
			return r.Details.Decision != nil &&
				r.Details.Decision.ClutchAttempts > 0 && r.Details.Decision.ClutchWinRate < 50
		},
		Title: "Convert your clutches",
		Description: "You rarely win the 1vX situations you end up in. Clutching is about time management " +
			"and isolating opponents one by one, not hero aim.",
		Exercises: []Exercise{
			{Name: "Clutch practice", Duration: 20, Type: ExerciseCommunityServer, Description: "Practice clutch scenarios on dedicated servers"},
			{Name: "Pro clutch analysis", Duration: 15, Type: ExerciseTheory, Description: "Note the decisions pros make in clutches"},
		},
	},
	{
		ID:       "weak_entry_success",
		Category: scoring.CategoryDecision,
		Priority: 3,
		Condition: func(r *scoring.Result) bool {
			return r.Details.Decision != nil &&
				r.Details.Decision.EntryAttempts > 2 && r.Details.Decision.EntryWinRate < 40
		},
		Title:       "Rethink your entries",
		Description: "You take the opening duel often but lose most of them. Either demand a flash before you swing or hand the entry role to a teammate.",
		Exercises: []Exercise{
			{Name: "Flash-supported entries", Duration: 15, Type: ExerciseWorkshop, Description: "Practice entering behind your own flash"},
			{Name: "Decision making analysis", Duration: 20, Type: ExerciseTheory, Description: "Review your entry attempts in demos"},
		},
	},

	// Movement
	{
		ID:       "poor_counter_strafing",
		Category: scoring.CategoryMovement,
		Priority: 2,
		Condition: func(r *scoring.Result) bool {
			return r.Details.Movement != nil &&
				r.Details.Movement.ShotsFired > 0 && r.Details.Movement.CounterStrafeRate < 60
		},
		Title:       "Counter-strafe before you shoot",
		Description: "Too many of your first shots leave while you are still moving. Practice stopping dead before the trigger pull.",
		Exercises: []Exercise{
			{Name: "Counter-strafe drill", Duration: 15, Type: ExerciseWorkshop, Description: "Strafe, stop, one-tap, repeat"},
			{Name: "Movement course", Duration: 15, Type: ExerciseWorkshop, Description: "Run a kz or movement map for control"},
		},
		WorkshopMaps: []string{"Aim Botz", "Yprac Maps"},
	},
	{
		ID:       "shooting_while_moving",
		Category: scoring.CategoryMovement,
		Priority: 3,
		Condition: func(r *scoring.Result) bool {
			return r.Details.Movement != nil && r.Details.Movement.MovingFireRate > 30
		},
		Title:       "Stop spraying on the move",
		Description: "A large share of your shots are fired at full speed and land nowhere. Moving fire is for spray transfers at point blank, not standard duels.",
		Exercises: []Exercise{
			{Name: "Stationary DM", Duration: 20, Type: ExerciseCommunityServer, Description: "Play deathmatch focusing on planted feet"},
			{Name: "Recoil Master", Duration: 10, Type: ExerciseWorkshop, Description: "Learn the recoil pattern of each weapon"},
		},
		WorkshopMaps: []string{"Recoil Master"},
	},

	// Awareness
	{
		ID:       "dying_blind",
		Category: scoring.CategoryAwareness,
		Priority: 2,
		Condition: func(r *scoring.Result) bool {
			return r.Details.Awareness != nil && r.Details.Awareness.BlindDeathRate > 15
		},
		Title:       "Back off when flashed",
		Description: "You die blind far too often. When a flash pops, retreat behind cover instead of holding the angle on sound alone.",
		Exercises: []Exercise{
			{Name: "Flash reaction drill", Duration: 10, Type: ExerciseWorkshop, Description: "Practice turning away and repositioning on flash"},
			{Name: "Personal demo review", Duration: 20, Type: ExerciseTheory, Description: "Review your deaths and identify the pattern"},
		},
	},
	{
		ID:       "low_objective_play",
		Category: scoring.CategoryAwareness,
		Priority: 3,
		Condition: func(r *scoring.Result) bool {
			return r.Details.Awareness != nil && r.Details.Awareness.BombParticipation < 10
		},
		Title:       "Play the objective",
		Description: "You are rarely involved in plants or defuses. Rounds are won on the bomb, not on the scoreboard.",
		Exercises: []Exercise{
			{Name: "Retakes server", Duration: 20, Type: ExerciseCommunityServer, Description: "Practice rotations and retakes"},
			{Name: "Post-plant theory", Duration: 15, Type: ExerciseTheory, Description: "Learn standard post-plant setups"},
		},
	},

	// Teamplay
	{
		ID:       "playing_alone",
		Category: scoring.CategoryTeamplay,
		Priority: 3,
		Condition: func(r *scoring.Result) bool {
			return r.Details.Teamplay != nil &&
				r.Details.Teamplay.AssistsPerRound < 0.1 && r.Details.Teamplay.TradesGiven == 0
		},
		Title:       "Fight with your team",
		Description: "No assists and no trades means your fights happen far from everyone else. Pair up and share your duels.",
		Exercises: []Exercise{
			{Name: "2v2 practice", Duration: 20, Type: ExerciseCommunityServer, Description: "Practice coordinated duels in pairs"},
			{Name: "Team communication", Duration: 15, Type: ExerciseTheory, Description: "Improve callouts for coordinated trades"},
		},
	},
}
