package replay

// Team numbers as they appear in demo event streams.
const (
	TeamCT = 2
	TeamT  = 3
)

// Round end reasons carried in RoundInfo.Reason.
const (
	ReasonTargetBombed = 1
	ReasonBombDefused  = 7
	ReasonCTWin        = 8
	ReasonTWin         = 9
	ReasonDraw         = 10
	ReasonTargetSaved  = 12
)

// Hitgroup values carried in DamageEvent.Hitgroup.
const (
	HitgroupGeneric = 0
	HitgroupHead    = 1
)

// VersionCanonical marks replays parsed by the canonical generation.
// VersionLegacyCompat marks replays upgraded from the legacy generation
// by ConvertLegacyReplay.
const (
	VersionCanonical    = "2.0"
	VersionLegacyCompat = "1.0-compat"
)

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type Velocity struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type ViewAngles struct {
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
}

// Replay is the canonical structured model every parser generation
// ultimately produces. Collections are never nil; generations that cannot
// populate a stream leave it empty.
type Replay struct {
	Version  string   `json:"version"`
	Metadata Metadata `json:"metadata"`
	Players  []Player `json:"players"`
	Rounds   []RoundInfo `json:"rounds"`

	Kills    []KillEvent    `json:"kills"`
	Damages  []DamageEvent  `json:"damages"`
	Grenades []GrenadeEvent `json:"grenades"`

	PlayerBlinds   []PlayerBlindEvent `json:"playerBlinds"`
	BombEvents     []BombEvent        `json:"bombEvents"`
	EconomyByRound []RoundEconomy     `json:"economyByRound"`
	Purchases      []ItemPurchase     `json:"purchases"`
	WeaponFires    []WeaponFireEvent  `json:"weaponFires"`
	Positions      []PositionSnapshot `json:"positions"`

	Clutches   []ClutchSituation `json:"clutches"`
	EntryDuels []EntryDuel       `json:"entryDuels"`
	Trades     []TradeEvent      `json:"trades"`
}

type Metadata struct {
	Map       string  `json:"map"`
	Duration  float64 `json:"duration"`
	Tickrate  float64 `json:"tickrate"`
	MatchDate string  `json:"matchDate"`
}

type Player struct {
	SteamID string `json:"steamId"`
	Name    string `json:"name"`
	Team    int    `json:"team"`
}

type RoundInfo struct {
	RoundNumber int `json:"roundNumber"`
	Winner      int `json:"winner"`
	Reason      int `json:"reason"`
	Tick        int `json:"tick"`
}

type KillEvent struct {
	Tick  int `json:"tick"`
	Round int `json:"round"`

	AttackerSteamID  string   `json:"attackerSteamId"`
	AttackerName     string   `json:"attackerName"`
	AttackerPosition Position `json:"attackerPosition"`

	VictimSteamID  string   `json:"victimSteamId"`
	VictimName     string   `json:"victimName"`
	VictimPosition Position `json:"victimPosition"`

	Weapon         string `json:"weapon"`
	WeaponCategory string `json:"weaponCategory"`

	Headshot      bool `json:"headshot"`
	Penetrated    bool `json:"penetrated"`
	AttackerBlind bool `json:"attackerBlind"`
	NoScope       bool `json:"noScope"`
	ThroughSmoke  bool `json:"throughSmoke"`
	AssistedFlash bool `json:"assistedFlash"`

	Distance float64 `json:"distance"`
}

type DamageEvent struct {
	Tick  int `json:"tick"`
	Round int `json:"round"`

	AttackerSteamID string `json:"attackerSteamId"`
	VictimSteamID   string `json:"victimSteamId"`

	Damage          int `json:"damage"`
	DamageArmor     int `json:"damageArmor"`
	HealthRemaining int `json:"healthRemaining"`
	ArmorRemaining  int `json:"armorRemaining"`

	Weapon         string `json:"weapon"`
	WeaponCategory string `json:"weaponCategory"`
	Hitgroup       int    `json:"hitgroup"`
}

type GrenadeEvent struct {
	Type          string   `json:"type"`
	Tick          int      `json:"tick"`
	Round         int      `json:"round"`
	ThrowerSteamID string  `json:"throwerSteamId"`
	Position      Position `json:"position"`
}

type PlayerBlindEvent struct {
	Tick            int     `json:"tick"`
	Round           int     `json:"round"`
	VictimSteamID   string  `json:"victimSteamId"`
	AttackerSteamID string  `json:"attackerSteamId"`
	Duration        float64 `json:"duration"`
}

type BombEvent struct {
	Type    string `json:"type"`
	Tick    int    `json:"tick"`
	Round   int    `json:"round"`
	SteamID string `json:"steamId"`
	Site    int    `json:"site"`
	HasKit  bool   `json:"hasKit"`
}

type RoundEconomy struct {
	Round   int             `json:"round"`
	Tick    int             `json:"tick"`
	Players []PlayerEconomy `json:"players"`
}

type PlayerEconomy struct {
	SteamID        string `json:"steamId"`
	Balance        int    `json:"balance"`
	EquipmentValue int    `json:"equipmentValue"`
	SpentThisRound int    `json:"spentThisRound"`
	HasHelmet      bool   `json:"hasHelmet"`
	HasDefuser     bool   `json:"hasDefuser"`
	ArmorValue     int    `json:"armorValue"`
	Team           int    `json:"team"`
	Weapon         string `json:"weapon"`
}

type ItemPurchase struct {
	Tick         int    `json:"tick"`
	Round        int    `json:"round"`
	SteamID      string `json:"steamId"`
	Item         string `json:"item"`
	ItemCategory string `json:"itemCategory"`
	Team         int    `json:"team"`
}

type WeaponFireEvent struct {
	Tick  int `json:"tick"`
	Round int `json:"round"`

	SteamID        string `json:"steamId"`
	Weapon         string `json:"weapon"`
	WeaponCategory string `json:"weaponCategory"`
	Silencer       bool   `json:"silencer"`

	Position   Position   `json:"position"`
	Velocity   Velocity   `json:"velocity"`
	Speed      float64    `json:"speed"`
	ViewAngles ViewAngles `json:"viewAngles"`

	IsScoped        bool `json:"isScoped"`
	IsCrouching     bool `json:"isCrouching"`
	IsAirborne      bool `json:"isAirborne"`
	IsMoving        bool `json:"isMoving"`
	IsCounterStrafed bool `json:"isCounterStrafed"`
}

type PositionSnapshot struct {
	Tick    int                   `json:"tick"`
	Players []PlayerStateSnapshot `json:"players"`
}

type PlayerStateSnapshot struct {
	SteamID string  `json:"steamId"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Z       float64 `json:"z"`

	VelocityX float64 `json:"velocityX"`
	VelocityY float64 `json:"velocityY"`
	VelocityZ float64 `json:"velocityZ"`
	Speed     float64 `json:"speed"`

	Health int `json:"health"`
	Armor  int `json:"armor"`
	Team   int `json:"team"`

	IsScoped    bool `json:"isScoped"`
	IsWalking   bool `json:"isWalking"`
	IsCrouching bool `json:"isCrouching"`
	IsAirborne  bool `json:"isAirborne"`

	Weapon  string `json:"weapon"`
	Balance int    `json:"balance"`
}

type ClutchSituation struct {
	Round         int    `json:"round"`
	SteamID       string `json:"steamId"`
	KillsInClutch int    `json:"killsInClutch"`
	StartTick     int    `json:"startTick"`
	Won           bool   `json:"won"`
	Versus        int    `json:"versus"`
}

type EntryDuel struct {
	Round    int     `json:"round"`
	Tick     int     `json:"tick"`
	WinnerID string  `json:"winnerId"`
	LoserID  string  `json:"loserId"`
	Weapon   string  `json:"weapon"`
	Headshot bool    `json:"headshot"`
	Distance float64 `json:"distance"`
}

type TradeEvent struct {
	Round            int     `json:"round"`
	OriginalKillTick int     `json:"originalKillTick"`
	TradeTick        int     `json:"tradeTick"`
	TimeToTrade      float64 `json:"timeToTrade"`
	OriginalVictimID string  `json:"originalVictimId"`
	OriginalKillerID string  `json:"originalKillerId"`
	TraderID         string  `json:"traderId"`
}
