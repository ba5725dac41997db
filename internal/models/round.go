package models

import (
	"encoding/json"
	"time"
)

type Round struct {
	ID          int64           `json:"id"`
	DemoID      string          `json:"demo_id"`
	RoundNumber int             `json:"round_number"`
	WinnerTeam  int             `json:"winner_team"`
	WinReason   string          `json:"win_reason"`
	Events      json.RawMessage `json:"events"`
	CreatedAt   time.Time       `json:"created_at"`
}
