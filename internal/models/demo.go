package models

import "time"

type DemoStatus string

const (
	DemoStatusPending    DemoStatus = "PENDING"
	DemoStatusProcessing DemoStatus = "PROCESSING"
	DemoStatusAnalyzing  DemoStatus = "ANALYZING"
	DemoStatusCompleted  DemoStatus = "COMPLETED"
	DemoStatusFailed     DemoStatus = "FAILED"
)

// Terminal reports whether no further pipeline transition is allowed.
func (s DemoStatus) Terminal() bool {
	return s == DemoStatusCompleted || s == DemoStatusFailed
}

type MatchResult string

const (
	MatchResultWin  MatchResult = "WIN"
	MatchResultLoss MatchResult = "LOSS"
	MatchResultTie  MatchResult = "TIE"
)

type Demo struct {
	ID              string      `json:"id"`
	UserID          string      `json:"user_id"`
	FilePath        string      `json:"file_path"`
	Status          DemoStatus  `json:"status"`
	StatusMessage   string      `json:"status_message"`
	MapName         string      `json:"map_name"`
	DurationSeconds float64     `json:"duration_seconds"`
	ScoreTeam1      int         `json:"score_team1"`
	ScoreTeam2      int         `json:"score_team2"`
	PlayerTeam      int         `json:"player_team"`
	MatchResult     MatchResult `json:"match_result"`
	MatchDate       *time.Time  `json:"match_date"`
	Archived        bool        `json:"archived"`
	UploadedAt      time.Time   `json:"uploaded_at"`
	ProcessingStartedAt   *time.Time `json:"processing_started_at"`
	ProcessingCompletedAt *time.Time `json:"processing_completed_at"`
}

// MatchFields carries the match-level values written onto the demo row
// during the persistence transaction.
type MatchFields struct {
	MapName         string
	DurationSeconds float64
	ScoreTeam1      int
	ScoreTeam2      int
	PlayerTeam      int
	MatchResult     MatchResult
	MatchDate       *time.Time
}
