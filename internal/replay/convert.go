package replay

// Defaults applied when upgrading legacy events to the canonical shape.
// The legacy generation never recorded these fields, so the converter must
// not invent values: it stamps named, documented defaults instead.
const (
	defaultWeaponCategory  = "other"
	defaultKillDistance    = 0
	defaultDamageArmor     = 0
	defaultHealthRemaining = 100
	defaultArmorRemaining  = 0
)

// ConvertLegacyReplay upgrades a legacy parse into the canonical model.
// The conversion is total: every stream the legacy format lacks becomes an
// empty slice, never nil, and the result is stamped "1.0-compat" so
// downstream consumers can tell which generation produced it.
func ConvertLegacyReplay(legacy *LegacyReplay) *Replay {
	r := &Replay{
		Version:  VersionLegacyCompat,
		Metadata: legacy.Metadata,
		Players:  legacy.Players,
		Rounds:   legacy.Rounds,

		Kills:    make([]KillEvent, 0, len(legacy.Kills)),
		Damages:  make([]DamageEvent, 0, len(legacy.Damages)),
		Grenades: legacy.Grenades,

		PlayerBlinds:   []PlayerBlindEvent{},
		BombEvents:     []BombEvent{},
		EconomyByRound: []RoundEconomy{},
		Purchases:      []ItemPurchase{},
		WeaponFires:    []WeaponFireEvent{},
		Positions:      []PositionSnapshot{},
		Clutches:       []ClutchSituation{},
		EntryDuels:     []EntryDuel{},
		Trades:         []TradeEvent{},
	}
	if r.Players == nil {
		r.Players = []Player{}
	}
	if r.Rounds == nil {
		r.Rounds = []RoundInfo{}
	}
	if r.Grenades == nil {
		r.Grenades = []GrenadeEvent{}
	}

	for _, k := range legacy.Kills {
		r.Kills = append(r.Kills, upgradeKill(k))
	}
	for _, d := range legacy.Damages {
		r.Damages = append(r.Damages, upgradeDamage(d))
	}
	return r
}

func upgradeKill(k LegacyKill) KillEvent {
	return KillEvent{
		Tick:            k.Tick,
		Round:           k.Round,
		AttackerSteamID: k.AttackerSteamID,
		AttackerName:    k.AttackerName,
		VictimSteamID:   k.VictimSteamID,
		VictimName:      k.VictimName,
		Weapon:          k.Weapon,
		WeaponCategory:  defaultWeaponCategory,
		Headshot:        k.Headshot,
		Penetrated:      k.Penetrated,
		Distance:        defaultKillDistance,
	}
}

func upgradeDamage(d LegacyDamage) DamageEvent {
	return DamageEvent{
		Tick:            d.Tick,
		Round:           d.Round,
		AttackerSteamID: d.AttackerSteamID,
		VictimSteamID:   d.VictimSteamID,
		Damage:          d.Damage,
		DamageArmor:     defaultDamageArmor,
		HealthRemaining: defaultHealthRemaining,
		ArmorRemaining:  defaultArmorRemaining,
		Weapon:          d.Weapon,
		WeaponCategory:  defaultWeaponCategory,
		Hitgroup:        d.Hitgroup,
	}
}
