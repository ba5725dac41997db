package scoring

// Category names used in scores, labels, and recommendations.
const (
	CategoryAim         = "aim"
	CategoryPositioning = "positioning"
	CategoryUtility     = "utility"
	CategoryEconomy     = "economy"
	CategoryTiming      = "timing"
	CategoryDecision    = "decision"
	CategoryMovement    = "movement"
	CategoryAwareness   = "awareness"
	CategoryTeamplay    = "teamplay"
)

// Result is the canonical scoring output. Both engine generations produce
// it: EngineV2 directly, EngineV1 through ConvertLegacyResult. Score range
// and rounding are identical across generations, so consumers only need
// the Version tag to tell them apart.
type Result struct {
	Version string `json:"version"`

	PlayerStats     PlayerPerformance `json:"playerStats"`
	Scores          Scores            `json:"scores"`
	Details         Details           `json:"analyses"`
	Strengths       []string          `json:"strengths"`
	Weaknesses      []string          `json:"weaknesses"`
	Recommendations []Recommendation  `json:"recommendations"`

	TotalRounds int     `json:"totalRounds"`
	Map         string  `json:"map"`
	Duration    float64 `json:"duration"`
}

// PlayerPerformance is the engine-refined view of the main player. Its
// rating and KAST supersede the extractor's naive values.
type PlayerPerformance struct {
	Kills     int `json:"kills"`
	Deaths    int `json:"deaths"`
	Assists   int `json:"assists"`
	Headshots int `json:"headshots"`

	HeadshotPct float64 `json:"hsPercentage"`
	ADR         float64 `json:"adr"`
	KAST        float64 `json:"kast"`
	Rating      float64 `json:"rating"`

	EntryKills     int `json:"entryKills"`
	EntryDeaths    int `json:"entryDeaths"`
	ClutchWins     int `json:"clutchWins"`
	ClutchAttempts int `json:"clutchAttempts"`
	TradesGiven    int `json:"tradesGiven"`
	TradesReceived int `json:"tradesReceived"`
}

// Scores holds the nine category scores plus the weighted overall, all in
// [0,100]. The three newer categories are pointers so a legacy conversion
// can carry its neutral defaults distinctly from a computed zero.
type Scores struct {
	Overall     int  `json:"overall"`
	Aim         int  `json:"aim"`
	Positioning int  `json:"positioning"`
	Utility     int  `json:"utility"`
	Economy     int  `json:"economy"`
	Timing      int  `json:"timing"`
	Decision    int  `json:"decision"`
	Movement    *int `json:"movement"`
	Awareness   *int `json:"awareness"`
	Teamplay    *int `json:"teamplay"`
}

// Details carries the per-category analysis payloads. Nil entries mean the
// category's generation never ran.
type Details struct {
	Aim         *AimDetail         `json:"aim,omitempty"`
	Positioning *PositioningDetail `json:"positioning,omitempty"`
	Utility     *UtilityDetail     `json:"utility,omitempty"`
	Economy     *EconomyDetail     `json:"economy,omitempty"`
	Timing      *TimingDetail      `json:"timing,omitempty"`
	Decision    *DecisionDetail    `json:"decision,omitempty"`
	Movement    *MovementDetail    `json:"movement,omitempty"`
	Awareness   *AwarenessDetail   `json:"awareness,omitempty"`
	Teamplay    *TeamplayDetail    `json:"teamplay,omitempty"`
}

type AimDetail struct {
	HeadshotPct        float64 `json:"headshotPercentage"`
	Accuracy           float64 `json:"accuracy"`
	KillsPerRound      float64 `json:"killsPerRound"`
	OpeningDuelWinRate float64 `json:"openingDuelWinRate"`
}

type PositioningDetail struct {
	TradedDeathRate    float64 `json:"tradedDeathRate"`
	IsolationDeathRate float64 `json:"isolationDeathRate"`
	SurvivalRate       float64 `json:"survivalRate"`
}

type UtilityDetail struct {
	GrenadesThrown   int     `json:"grenadesThrown"`
	GrenadesPerRound float64 `json:"grenadesPerRound"`
	EnemyBlindTime   float64 `json:"enemyBlindTime"`
	TeamFlashRate    float64 `json:"teamFlashRate"`
	UtilityDamage    int     `json:"utilityDamage"`
}

type EconomyDetail struct {
	AvgSpend    float64 `json:"avgSpend"`
	BuySyncRate float64 `json:"buySyncRate"`
}

type TimingDetail struct {
	EntryInvolvement float64 `json:"entryInvolvement"`
	EntryWinRate     float64 `json:"entryWinRate"`
	AvgTradeTime     float64 `json:"avgTradeTime"`
}

type DecisionDetail struct {
	EntryAttempts  int     `json:"entryAttempts"`
	EntryWinRate   float64 `json:"entryWinRate"`
	ClutchAttempts int     `json:"clutchAttempts"`
	ClutchWinRate  float64 `json:"clutchWinRate"`
}

type MovementDetail struct {
	ShotsFired       int     `json:"shotsFired"`
	CounterStrafeRate float64 `json:"counterStrafeRate"`
	MovingFireRate   float64 `json:"movingFireRate"`
	CrouchFireRate   float64 `json:"crouchFireRate"`
}

type AwarenessDetail struct {
	BlindDeathRate    float64 `json:"blindDeathRate"`
	AvgBlindDuration  float64 `json:"avgBlindDuration"`
	BombParticipation float64 `json:"bombParticipation"`
}

type TeamplayDetail struct {
	TradesGiven     int     `json:"tradesGiven"`
	TradesReceived  int     `json:"tradesReceived"`
	AvgTradeTime    float64 `json:"avgTradeTime"`
	AssistsPerRound float64 `json:"assistsPerRound"`
}

// Recommendation is one prioritized improvement suggestion.
type Recommendation struct {
	Category     string  `json:"category"`
	Priority     string  `json:"priority"` // high, medium, low
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Metric       string  `json:"metric"`
	CurrentValue float64 `json:"currentValue"`
	TargetValue  float64 `json:"targetValue"`
}
