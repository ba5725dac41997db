package models

import (
	"encoding/json"
	"time"
)

type JobType string

const (
	JobTypeProcessDemo      JobType = "process-demo"
	JobTypeUserStatsRefresh JobType = "update-user-stats"
	JobTypeCleanup          JobType = "cleanup-files"
)

type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusActive    JobStatus = "active"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

type Job struct {
	ID         string          `json:"id"`
	Type       JobType         `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	Status     JobStatus       `json:"status"`
	RetryCount int             `json:"retry_count"`
	MaxRetries int             `json:"max_retries"`
	RunAt      time.Time       `json:"run_at"`
	ClaimedAt  *time.Time      `json:"claimed_at"`
	ExpiresAt  *time.Time      `json:"expires_at"`
	LastError  string          `json:"last_error"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type ProcessDemoPayload struct {
	DemoID   string `json:"demoId"`
	UserID   string `json:"userId"`
	FilePath string `json:"filePath"`
}

type UserStatsRefreshPayload struct {
	UserID string `json:"userId"`
}

type CleanupPayload struct {
	OlderThanDays int `json:"olderThanDays"`
}
