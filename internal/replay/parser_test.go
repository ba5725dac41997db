package replay

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/demoscope/demoscope/internal/errors"
)

func TestRegistry_SelectsByMagic(t *testing.T) {
	registry := DefaultRegistry()

	v2Path := writeCanonicalDemo(t, &Replay{Metadata: Metadata{Map: "de_dust2"}})
	v1Path := writeLegacyDemo(t, &LegacyReplay{Metadata: Metadata{Map: "de_inferno"}})

	s, err := registry.Select(v2Path)
	require.NoError(t, err)
	assert.Equal(t, "parser-v2", s.Name())

	s, err = registry.Select(v1Path)
	require.NoError(t, err)
	assert.Equal(t, "parser-v1", s.Name())
}

func TestRegistry_NoStrategyMatches(t *testing.T) {
	path := writeFile(t, "bad.dem", []byte("NOTADEMO"))

	_, err := DefaultRegistry().Select(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no parser available")
}

func TestRegistry_PrefersHigherPriority(t *testing.T) {
	// Registration order must not matter.
	registry := NewRegistry(NewParserV1(), NewParserV2())
	path := writeCanonicalDemo(t, &Replay{})

	s, err := registry.Select(path)
	require.NoError(t, err)
	assert.Equal(t, "parser-v2", s.Name())
}

func TestParserV2_RoundTrip(t *testing.T) {
	in := &Replay{
		Metadata: Metadata{Map: "de_mirage", Duration: 1800, Tickrate: 64},
		Players: []Player{
			{SteamID: "7656111", Name: "alpha", Team: TeamCT},
			{SteamID: "7656222", Name: "bravo", Team: TeamT},
		},
		Rounds: []RoundInfo{{RoundNumber: 1, Winner: TeamCT, Reason: ReasonCTWin, Tick: 5000}},
		Kills: []KillEvent{{
			Tick: 1000, Round: 1,
			AttackerSteamID: "7656111", VictimSteamID: "7656222",
			Weapon: "ak47", WeaponCategory: "rifles", Headshot: true, Distance: 12.5,
		}},
	}
	path := writeCanonicalDemo(t, in)

	out, err := NewParserV2().Parse(path)
	require.NoError(t, err)

	assert.Equal(t, VersionCanonical, out.Version)
	assert.Equal(t, "de_mirage", out.Metadata.Map)
	assert.Len(t, out.Players, 2)
	assert.Len(t, out.Kills, 1)
	assert.True(t, out.Kills[0].Headshot)

	// Streams absent from the payload come back empty, never nil.
	assert.NotNil(t, out.PlayerBlinds)
	assert.NotNil(t, out.BombEvents)
	assert.NotNil(t, out.EconomyByRound)
	assert.NotNil(t, out.Purchases)
	assert.NotNil(t, out.WeaponFires)
	assert.NotNil(t, out.Positions)
	assert.NotNil(t, out.Clutches)
	assert.NotNil(t, out.Trades)
}

func TestParserV2_DerivesEntryDuels(t *testing.T) {
	in := &Replay{
		Metadata: Metadata{Tickrate: 64},
		Rounds:   []RoundInfo{{RoundNumber: 1, Winner: TeamT, Reason: ReasonTWin}},
		Kills: []KillEvent{
			{Tick: 2000, Round: 1, AttackerSteamID: "b", VictimSteamID: "c", Weapon: "m4a1"},
			{Tick: 900, Round: 1, AttackerSteamID: "a", VictimSteamID: "b", Weapon: "ak47", Headshot: true},
		},
	}
	path := writeCanonicalDemo(t, in)

	out, err := NewParserV2().Parse(path)
	require.NoError(t, err)

	require.Len(t, out.EntryDuels, 1)
	assert.Equal(t, "a", out.EntryDuels[0].WinnerID)
	assert.Equal(t, "b", out.EntryDuels[0].LoserID)
	assert.Equal(t, 900, out.EntryDuels[0].Tick)
}

func TestParserV2_TruncatedPayload(t *testing.T) {
	buf := paddedMagic(MagicCanonical)
	buf = binary.LittleEndian.AppendUint32(buf, 1)
	buf = binary.LittleEndian.AppendUint32(buf, 500) // declares more than is present
	buf = append(buf, []byte(`{"version":"2.0"}`)...)
	path := writeFile(t, "trunc.dem", buf)

	_, err := NewParserV2().Parse(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shorter than declared")
	assert.False(t, apperrors.IsFatal(err), "parse errors stay retryable")
}

func TestParserV2_MalformedPayload(t *testing.T) {
	payload := []byte("{not json")
	buf := paddedMagic(MagicCanonical)
	buf = binary.LittleEndian.AppendUint32(buf, 1)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(payload)))
	buf = append(buf, payload...)
	path := writeFile(t, "garbage.dem", buf)

	_, err := NewParserV2().Parse(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed demo payload")
}

func TestParserV1_ParseProducesCanonicalShape(t *testing.T) {
	legacy := &LegacyReplay{
		Metadata: Metadata{Map: "de_nuke", Duration: 2100, Tickrate: 64},
		Players: []Player{
			{SteamID: "1", Name: "alpha", Team: TeamCT},
			{SteamID: "2", Name: "bravo", Team: TeamT},
		},
		Rounds: []RoundInfo{{RoundNumber: 1, Winner: TeamT, Reason: ReasonTargetBombed}},
		Kills: []LegacyKill{{
			Tick: 100, Round: 1, AttackerSteamID: "1", VictimSteamID: "2", Weapon: "awp",
		}},
		Damages: []LegacyDamage{{
			Tick: 100, Round: 1, AttackerSteamID: "1", VictimSteamID: "2", Damage: 108, Weapon: "awp",
		}},
	}
	path := writeLegacyDemo(t, legacy)

	out, err := NewParserV1().Parse(path)
	require.NoError(t, err)

	assert.Equal(t, VersionLegacyCompat, out.Version)
	assert.Equal(t, "de_nuke", out.Metadata.Map)
	require.Len(t, out.Kills, 1)
	assert.Equal(t, "other", out.Kills[0].WeaponCategory)
	// Legacy replays never gain derived events.
	assert.Empty(t, out.Trades)
	assert.Empty(t, out.EntryDuels)
	assert.NotNil(t, out.Trades)
	assert.NotNil(t, out.EntryDuels)
}
