package models

import (
	"encoding/json"
	"time"
)

// Analysis is the persisted 1:1 scoring result for a demo. The three newer
// category scores are nullable so legacy-generation results stay valid.
type Analysis struct {
	ID      int64  `json:"id"`
	DemoID  string `json:"demo_id"`
	Version string `json:"version"`

	OverallScore     int  `json:"overall_score"`
	AimScore         int  `json:"aim_score"`
	PositioningScore int  `json:"positioning_score"`
	UtilityScore     int  `json:"utility_score"`
	EconomyScore     int  `json:"economy_score"`
	TimingScore      int  `json:"timing_score"`
	DecisionScore    int  `json:"decision_score"`
	MovementScore    *int `json:"movement_score"`
	AwarenessScore   *int `json:"awareness_score"`
	TeamplayScore    *int `json:"teamplay_score"`

	AimDetail         json.RawMessage `json:"aim_detail"`
	PositioningDetail json.RawMessage `json:"positioning_detail"`
	UtilityDetail     json.RawMessage `json:"utility_detail"`
	EconomyDetail     json.RawMessage `json:"economy_detail"`
	TimingDetail      json.RawMessage `json:"timing_detail"`
	DecisionDetail    json.RawMessage `json:"decision_detail"`
	MovementDetail    json.RawMessage `json:"movement_detail"`
	AwarenessDetail   json.RawMessage `json:"awareness_detail"`
	TeamplayDetail    json.RawMessage `json:"teamplay_detail"`

	Strengths       json.RawMessage `json:"strengths"`
	Weaknesses      json.RawMessage `json:"weaknesses"`
	Recommendations json.RawMessage `json:"recommendations"`
	CoachingReport  json.RawMessage `json:"coaching_report"`

	CreatedAt time.Time `json:"created_at"`
}
