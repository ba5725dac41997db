package replay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertLegacyReplay_EmptyInput(t *testing.T) {
	out := ConvertLegacyReplay(&LegacyReplay{})

	assert.Equal(t, VersionLegacyCompat, out.Version)

	// Every collection exists, even when the legacy model had nothing.
	assert.NotNil(t, out.Players)
	assert.NotNil(t, out.Rounds)
	assert.NotNil(t, out.Kills)
	assert.NotNil(t, out.Damages)
	assert.NotNil(t, out.Grenades)
	assert.NotNil(t, out.PlayerBlinds)
	assert.NotNil(t, out.BombEvents)
	assert.NotNil(t, out.EconomyByRound)
	assert.NotNil(t, out.Purchases)
	assert.NotNil(t, out.WeaponFires)
	assert.NotNil(t, out.Positions)
	assert.NotNil(t, out.Clutches)
	assert.NotNil(t, out.EntryDuels)
	assert.NotNil(t, out.Trades)
}

func TestConvertLegacyReplay_UpgradesKills(t *testing.T) {
	legacy := &LegacyReplay{
		Kills: []LegacyKill{{
			Tick:            512,
			Round:           3,
			AttackerSteamID: "111",
			AttackerName:    "alpha",
			VictimSteamID:   "222",
			VictimName:      "bravo",
			Weapon:          "deagle",
			Headshot:        true,
			Penetrated:      true,
		}},
	}

	out := ConvertLegacyReplay(legacy)
	require.Len(t, out.Kills, 1)

	k := out.Kills[0]
	assert.Equal(t, 512, k.Tick)
	assert.Equal(t, 3, k.Round)
	assert.Equal(t, "alpha", k.AttackerName)
	assert.Equal(t, "deagle", k.Weapon)
	assert.True(t, k.Headshot)
	assert.True(t, k.Penetrated)

	// Fields the legacy generation never recorded get named defaults.
	assert.Equal(t, "other", k.WeaponCategory)
	assert.Zero(t, k.Distance)
	assert.False(t, k.AttackerBlind)
}

func TestConvertLegacyReplay_UpgradesDamages(t *testing.T) {
	legacy := &LegacyReplay{
		Damages: []LegacyDamage{{
			Tick:            512,
			Round:           3,
			AttackerSteamID: "111",
			VictimSteamID:   "222",
			Damage:          45,
			Weapon:          "glock",
			Hitgroup:        HitgroupHead,
		}},
	}

	out := ConvertLegacyReplay(legacy)
	require.Len(t, out.Damages, 1)

	d := out.Damages[0]
	assert.Equal(t, 45, d.Damage)
	assert.Equal(t, HitgroupHead, d.Hitgroup)
	assert.Equal(t, 0, d.DamageArmor)
	assert.Equal(t, 100, d.HealthRemaining)
	assert.Equal(t, 0, d.ArmorRemaining)
	assert.Equal(t, "other", d.WeaponCategory)
}

func TestConvertLegacyReplay_PreservesCoreStreams(t *testing.T) {
	legacy := &LegacyReplay{
		Metadata: Metadata{Map: "de_train", Duration: 2400, Tickrate: 64},
		Players:  []Player{{SteamID: "1", Name: "alpha", Team: TeamCT}},
		Rounds: []RoundInfo{
			{RoundNumber: 1, Winner: TeamCT, Reason: ReasonBombDefused},
			{RoundNumber: 2, Winner: TeamT, Reason: ReasonTWin},
		},
		Grenades: []GrenadeEvent{{Type: "smoke", Round: 1, ThrowerSteamID: "1"}},
	}

	out := ConvertLegacyReplay(legacy)

	assert.Equal(t, legacy.Metadata, out.Metadata)
	assert.Equal(t, legacy.Players, out.Players)
	assert.Equal(t, legacy.Rounds, out.Rounds)
	assert.Equal(t, legacy.Grenades, out.Grenades)
}
