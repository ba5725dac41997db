package replay

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"

	apperrors "github.com/demoscope/demoscope/internal/errors"
)

// maxPayloadSize caps the declared payload length so a corrupt header
// cannot make us allocate gigabytes.
const maxPayloadSize = 256 << 20

// ParserV2 reads the canonical container: 8-byte magic, uint32 LE format
// revision, uint32 LE payload length, JSON payload with the full model.
type ParserV2 struct{}

func NewParserV2() *ParserV2 { return &ParserV2{} }

func (p *ParserV2) Name() string    { return "parser-v2" }
func (p *ParserV2) Version() string { return VersionCanonical }
func (p *ParserV2) Priority() int   { return 2 }

func (p *ParserV2) Probe(path string) bool {
	magic, err := readMagic(path)
	return err == nil && magic == MagicCanonical
}

func (p *ParserV2) Parse(path string) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewParseError(fmt.Sprintf("open demo: %v", err), err)
	}
	defer f.Close()

	var header [magicSize]byte
	if _, err := io.ReadFull(f, header[:]); err != nil {
		return nil, apperrors.NewParseError("demo truncated in header", err)
	}

	var revision, length uint32
	if err := binary.Read(f, binary.LittleEndian, &revision); err != nil {
		return nil, apperrors.NewParseError("demo truncated before format revision", err)
	}
	if err := binary.Read(f, binary.LittleEndian, &length); err != nil {
		return nil, apperrors.NewParseError("demo truncated before payload length", err)
	}
	if length == 0 || length > maxPayloadSize {
		return nil, apperrors.NewParseError(fmt.Sprintf("implausible payload length %d", length), nil)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(f, payload); err != nil {
		return nil, apperrors.NewParseError("demo payload shorter than declared length", err)
	}

	var r Replay
	if err := json.Unmarshal(payload, &r); err != nil {
		return nil, apperrors.NewParseError(fmt.Sprintf("malformed demo payload: %v", err), err)
	}
	if r.Version == "" {
		r.Version = VersionCanonical
	}
	normalize(&r)
	DeriveEvents(&r)
	return &r, nil
}

// normalize replaces nil event streams with empty slices so downstream
// consumers never see null collections.
func normalize(r *Replay) {
	if r.Players == nil {
		r.Players = []Player{}
	}
	if r.Rounds == nil {
		r.Rounds = []RoundInfo{}
	}
	if r.Kills == nil {
		r.Kills = []KillEvent{}
	}
	if r.Damages == nil {
		r.Damages = []DamageEvent{}
	}
	if r.Grenades == nil {
		r.Grenades = []GrenadeEvent{}
	}
	if r.PlayerBlinds == nil {
		r.PlayerBlinds = []PlayerBlindEvent{}
	}
	if r.BombEvents == nil {
		r.BombEvents = []BombEvent{}
	}
	if r.EconomyByRound == nil {
		r.EconomyByRound = []RoundEconomy{}
	}
	if r.Purchases == nil {
		r.Purchases = []ItemPurchase{}
	}
	if r.WeaponFires == nil {
		r.WeaponFires = []WeaponFireEvent{}
	}
	if r.Positions == nil {
		r.Positions = []PositionSnapshot{}
	}
	if r.Clutches == nil {
		r.Clutches = []ClutchSituation{}
	}
	if r.EntryDuels == nil {
		r.EntryDuels = []EntryDuel{}
	}
	if r.Trades == nil {
		r.Trades = []TradeEvent{}
	}
}
