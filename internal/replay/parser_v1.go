package replay

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"

	apperrors "github.com/demoscope/demoscope/internal/errors"
)

// LegacyReplay is the reduced model the legacy generation produces. Only
// the six core streams exist; everything newer is absent from the format.
type LegacyReplay struct {
	Metadata Metadata       `json:"metadata"`
	Players  []Player       `json:"players"`
	Rounds   []RoundInfo    `json:"rounds"`
	Kills    []LegacyKill   `json:"kills"`
	Damages  []LegacyDamage `json:"damages"`
	Grenades []GrenadeEvent `json:"grenades"`
}

type LegacyKill struct {
	Tick            int    `json:"tick"`
	Round           int    `json:"round"`
	AttackerSteamID string `json:"attackerSteamId"`
	AttackerName    string `json:"attackerName"`
	VictimSteamID   string `json:"victimSteamId"`
	VictimName      string `json:"victimName"`
	Weapon          string `json:"weapon"`
	Headshot        bool   `json:"headshot"`
	Penetrated      bool   `json:"penetrated"`
}

type LegacyDamage struct {
	Tick            int    `json:"tick"`
	Round           int    `json:"round"`
	AttackerSteamID string `json:"attackerSteamId"`
	VictimSteamID   string `json:"victimSteamId"`
	Damage          int    `json:"damage"`
	Weapon          string `json:"weapon"`
	Hitgroup        int    `json:"hitgroup"`
}

// ParserV1 reads the legacy container: 8-byte magic, uint32 LE payload
// length, JSON payload with the reduced model. Its output always passes
// through ConvertLegacyReplay before anything downstream sees it.
type ParserV1 struct{}

func NewParserV1() *ParserV1 { return &ParserV1{} }

func (p *ParserV1) Name() string    { return "parser-v1" }
func (p *ParserV1) Version() string { return VersionLegacyCompat }
func (p *ParserV1) Priority() int   { return 1 }

func (p *ParserV1) Probe(path string) bool {
	magic, err := readMagic(path)
	return err == nil && magic == MagicLegacy
}

func (p *ParserV1) Parse(path string) (*Replay, error) {
	legacy, err := p.parseLegacy(path)
	if err != nil {
		return nil, err
	}
	return ConvertLegacyReplay(legacy), nil
}

func (p *ParserV1) parseLegacy(path string) (*LegacyReplay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewParseError(fmt.Sprintf("open demo: %v", err), err)
	}
	defer f.Close()

	var header [magicSize]byte
	if _, err := io.ReadFull(f, header[:]); err != nil {
		return nil, apperrors.NewParseError("demo truncated in header", err)
	}

	var length uint32
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

	var legacy LegacyReplay
	if err := json.Unmarshal(payload, &legacy); err != nil {
		return nil, apperrors.NewParseError(fmt.Sprintf("malformed demo payload: %v", err), err)
	}
	return &legacy, nil
}
