package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	apperrors "github.com/demoscope/demoscope/internal/errors"
	"github.com/demoscope/demoscope/internal/logger"
	"github.com/demoscope/demoscope/internal/models"
)

type createDemoRequest struct {
	SteamID  string `json:"steamId"`
	FilePath string `json:"filePath"`
}

// allowedPath reports whether path stays inside the configured demos
// directory. An empty DataDir disables the restriction.
func (s *Server) allowedPath(path string) bool {
	if s.DataDir == "" {
		return true
	}
	rel, err := filepath.Rel(s.DataDir, filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

type demoResponse struct {
	ID     string            `json:"id"`
	Status models.DemoStatus `json:"status"`
	JobID  string            `json:"jobId,omitempty"`
}

// handleCreateDemo registers an uploaded replay file and enqueues its
// processing job.
func (s *Server) handleCreateDemo(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req createDemoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, apperrors.NewBadRequestError("invalid JSON body"))
		return
	}
	if req.SteamID == "" {
		writeError(w, r, apperrors.NewValidationError("steamId", "cannot be empty"))
		return
	}
	if req.FilePath == "" {
		writeError(w, r, apperrors.NewValidationError("filePath", "cannot be empty"))
		return
	}
	if !s.allowedPath(req.FilePath) {
		writeError(w, r, apperrors.NewValidationError("filePath", "must point inside the demos directory"))
		return
	}

	user, err := s.Users.Upsert(r.Context(), req.SteamID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	demo := models.Demo{
		ID:       uuid.NewString(),
		UserID:   user.ID,
		FilePath: req.FilePath,
		Status:   models.DemoStatusPending,
	}
	if err := s.Demos.Insert(r.Context(), demo); err != nil {
		writeError(w, r, err)
		return
	}

	jobID, err := s.Queue.EnqueueProcessDemo(r.Context(), demo.ID, user.ID, demo.FilePath)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.Info("demo registered: id=%s, job=%s", demo.ID, jobID)
	writeJSON(w, http.StatusCreated, demoResponse{ID: demo.ID, Status: demo.Status, JobID: jobID})
}

// handleReprocessDemo re-enqueues an existing demo. Useful after a FAILED
// run or an engine upgrade; a COMPLETED demo is skipped by the processor
// itself unless its analysis was removed first.
func (s *Server) handleReprocessDemo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	demo, err := s.Demos.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, r, apperrors.NewNotFoundError("demo", id))
			return
		}
		writeError(w, r, err)
		return
	}

	if err := s.Demos.UpdateStatus(r.Context(), demo.ID, models.DemoStatusPending, ""); err != nil {
		writeError(w, r, err)
		return
	}

	jobID, err := s.Queue.EnqueueProcessDemo(r.Context(), demo.ID, demo.UserID, demo.FilePath)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, demoResponse{ID: demo.ID, Status: models.DemoStatusPending, JobID: jobID})
}

type demoStatusResponse struct {
	Status                models.DemoStatus `json:"status"`
	StatusMessage         string            `json:"statusMessage"`
	ProcessingStartedAt   *time.Time        `json:"processingStartedAt"`
	ProcessingCompletedAt *time.Time        `json:"processingCompletedAt"`
}

func (s *Server) handleDemoStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	demo, err := s.Demos.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, r, apperrors.NewNotFoundError("demo", id))
			return
		}
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, demoStatusResponse{
		Status:                demo.Status,
		StatusMessage:         demo.StatusMessage,
		ProcessingStartedAt:   demo.ProcessingStartedAt,
		ProcessingCompletedAt: demo.ProcessingCompletedAt,
	})
}

func (s *Server) handleDemoAnalysis(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	analysis, err := s.Analyses.ForDemo(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, r, apperrors.NewNotFoundError("analysis", id))
			return
		}
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleUserStats(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	cache, err := s.UserStats.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, r, apperrors.NewNotFoundError("user stats", id))
			return
		}
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cache)
}
