package models

import "time"

type PlayerMatchStats struct {
	ID               int64    `json:"id"`
	DemoID           string   `json:"demo_id"`
	SteamID          string   `json:"steam_id"`
	Name             string   `json:"name"`
	Team             int      `json:"team"`
	IsMainPlayer     bool     `json:"is_main_player"`
	Kills            int      `json:"kills"`
	Deaths           int      `json:"deaths"`
	Assists          int      `json:"assists"`
	Headshots        int      `json:"headshots"`
	HeadshotPct      float64  `json:"headshot_pct"`
	ADR              float64  `json:"adr"`
	KAST             *float64 `json:"kast"`
	Rating           float64  `json:"rating"`
	EntryKills       int      `json:"entry_kills"`
	EntryDeaths      int      `json:"entry_deaths"`
	TradesGiven      int      `json:"trades_given"`
	TradesReceived   int      `json:"trades_received"`
	AvgBlindDuration *float64 `json:"avg_blind_duration"`
	CreatedAt        time.Time `json:"created_at"`
}

// MainPlayerRefinement holds the engine-refined values written onto the
// is_main_player row after scoring.
type MainPlayerRefinement struct {
	Rating         float64
	KAST           *float64
	TradesGiven    int
	TradesReceived int
}
