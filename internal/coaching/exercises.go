package coaching

// Exercise types. External means outside the game entirely (aim trainers,
// VOD review tooling).
const (
	ExerciseWorkshop        = "workshop"
	ExerciseCommunityServer = "community_server"
	ExerciseTheory          = "theory"
	ExerciseExternal        = "external"
)

// Exercise is a single practice drill. Duration is in minutes.
type Exercise struct {
	Name        string `json:"name"`
	Duration    int    `json:"duration"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// defaultExercises backs the weekly plan and exercise selection when no
// triggered rule covers a category.
var defaultExercises = map[string][]Exercise{
	"aim": {
		{Name: "Aim Botz warmup", Duration: 15, Type: ExerciseWorkshop, Description: "500 one-taps at head level"},
		{Name: "DM warmup", Duration: 15, Type: ExerciseCommunityServer, Description: "Deathmatch with your main rifle"},
	},
	"positioning": {
		{Name: "Prefire map run", Duration: 15, Type: ExerciseWorkshop, Description: "Clear every common angle of your main map"},
		{Name: "Retakes server", Duration: 20, Type: ExerciseCommunityServer, Description: "Practice rotations and retakes"},
	},
	"utility": {
		{Name: "Smoke lineups", Duration: 20, Type: ExerciseWorkshop, Description: "Rehearse the essential lineups for your maps"},
		{Name: "Flash training map", Duration: 15, Type: ExerciseWorkshop, Description: "Pop flashes and self-flashes"},
	},
	"economy": {
		{Name: "Economy theory", Duration: 15, Type: ExerciseTheory, Description: "Loss bonus math and buy thresholds"},
		{Name: "Demo economy review", Duration: 15, Type: ExerciseTheory, Description: "Review your buys against the team's"},
	},
	"timing": {
		{Name: "Retakes practice", Duration: 20, Type: ExerciseCommunityServer, Description: "Fast trades under time pressure"},
		{Name: "Prefire Practice", Duration: 10, Type: ExerciseWorkshop, Description: "Standard prefire timings per map"},
	},
	"decision": {
		{Name: "Personal demo review", Duration: 20, Type: ExerciseTheory, Description: "Review your deaths and identify the pattern"},
		{Name: "Clutch practice", Duration: 20, Type: ExerciseCommunityServer, Description: "Clutch scenarios on dedicated servers"},
	},
	"movement": {
		{Name: "Counter-strafe drill", Duration: 15, Type: ExerciseWorkshop, Description: "Strafe, stop, one-tap, repeat"},
		{Name: "Movement course", Duration: 15, Type: ExerciseWorkshop, Description: "Run a kz or movement map for control"},
	},
	"awareness": {
		{Name: "Sound positioning drill", Duration: 15, Type: ExerciseCommunityServer, Description: "Play one DM session on audio cues only"},
		{Name: "Minimap discipline", Duration: 10, Type: ExerciseTheory, Description: "Review rounds watching only the radar"},
	},
	"teamplay": {
		{Name: "2v2 practice", Duration: 20, Type: ExerciseCommunityServer, Description: "Coordinated duels in pairs"},
		{Name: "Team communication", Duration: 15, Type: ExerciseTheory, Description: "Improve callouts for coordinated trades"},
	},
}

// recoveryExercises fills the light final day of the weekly plan.
var recoveryExercises = []Exercise{
	{Name: "Casual DM", Duration: 10, Type: ExerciseCommunityServer, Description: "Low-pressure warmup, no score watching"},
	{Name: "Pro match viewing", Duration: 10, Type: ExerciseTheory, Description: "Watch one half of a pro match for fun"},
}
