package models

import "time"

type User struct {
	ID        string    `json:"id"`
	SteamID   string    `json:"steam_id"`
	CreatedAt time.Time `json:"created_at"`
}

type UserStatsCache struct {
	UserID        string    `json:"user_id"`
	TotalDemos    int       `json:"total_demos"`
	AvgRating     float64   `json:"avg_rating"`
	AvgADR        float64   `json:"avg_adr"`
	AvgHeadshotPct float64  `json:"avg_headshot_pct"`
	WinRate       float64   `json:"win_rate"`
	RefreshedAt   time.Time `json:"refreshed_at"`
}
