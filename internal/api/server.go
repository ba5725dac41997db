// Package api exposes the HTTP surface: demo registration, reprocessing,
// status polling and health.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/demoscope/demoscope/internal/jobs"
	"github.com/demoscope/demoscope/internal/repository"
)

type Server struct {
	Demos     repository.DemoRepository
	Users     repository.UserRepository
	Analyses  repository.AnalysisRepository
	UserStats repository.UserStatsRepository
	Queue     jobs.Queue

	// DataDir, when set, restricts registered file paths to that directory.
	DataDir string
}

func NewServer(
	demos repository.DemoRepository,
	users repository.UserRepository,
	analyses repository.AnalysisRepository,
	userStats repository.UserStatsRepository,
	queue jobs.Queue,
) *Server {
	return &Server{
		Demos:     demos,
		Users:     users,
		Analyses:  analyses,
		UserStats: userStats,
		Queue:     queue,
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Post("/demos", s.handleCreateDemo)
	r.Post("/demos/{id}/process", s.handleReprocessDemo)
	r.Get("/demos/{id}/status", s.handleDemoStatus)
	r.Get("/demos/{id}/analysis", s.handleDemoAnalysis)
	r.Get("/users/{id}/stats", s.handleUserStats)

	return r
}
