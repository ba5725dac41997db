// Package pipeline orchestrates demo processing end to end: validation,
// parsing, stats extraction, scoring, coaching, and the final atomic save.
package pipeline

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	apperrors "github.com/demoscope/demoscope/internal/errors"
	"github.com/demoscope/demoscope/internal/coaching"
	"github.com/demoscope/demoscope/internal/jobs"
	"github.com/demoscope/demoscope/internal/logger"
	"github.com/demoscope/demoscope/internal/models"
	"github.com/demoscope/demoscope/internal/replay"
	"github.com/demoscope/demoscope/internal/repository"
	"github.com/demoscope/demoscope/internal/scoring"
	"github.com/demoscope/demoscope/internal/stats"
)

// Processor drives one demo through the full pipeline.
type Processor struct {
	demos    repository.DemoRepository
	users    repository.UserRepository
	store    repository.DemoStore
	queue    jobs.Queue
	registry *replay.Registry
}

func NewProcessor(
	demos repository.DemoRepository,
	users repository.UserRepository,
	store repository.DemoStore,
	queue jobs.Queue,
	registry *replay.Registry,
) *Processor {
	if registry == nil {
		registry = replay.DefaultRegistry()
	}
	return &Processor{demos: demos, users: users, store: store, queue: queue, registry: registry}
}

// ProcessDemo runs the pipeline for one demo id. A missing or already
// completed demo is a silent no-op so redelivered jobs cannot corrupt
// state. Any failure after the demo enters PROCESSING leaves it FAILED
// with a stored reason; the error still propagates for retry accounting.
func (p *Processor) ProcessDemo(ctx context.Context, demoID string) error {
	log := logger.FromContext(ctx).WithField("demo_id", shortID(demoID))

	demo, err := p.demos.Get(ctx, demoID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Warn("demo no longer exists, skipping")
			return nil
		}
		return fmt.Errorf("load demo: %w", err)
	}
	if demo.Status == models.DemoStatusCompleted {
		log.Info("demo already completed, skipping")
		return nil
	}

	if err := p.demos.MarkProcessing(ctx, demoID, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}
	log.Info("processing demo: file=%s", demo.FilePath)

	if err := p.process(ctx, demo); err != nil {
		p.recordFailure(ctx, demoID, err)
		return err
	}

	if p.queue != nil {
		if _, err := p.queue.EnqueueUserStatsRefresh(ctx, demo.UserID); err != nil {
			// The demo itself is saved; the aggregate refresh will catch up
			// on the next completed demo.
			log.Warn("failed to enqueue stats refresh: %v", err)
		}
	}
	log.Info("demo processed successfully")
	return nil
}

func (p *Processor) process(ctx context.Context, demo *models.Demo) error {
	log := logger.FromContext(ctx)

	if err := replay.ValidateFile(demo.FilePath); err != nil {
		return err
	}

	r, err := p.registry.Parse(demo.FilePath)
	if err != nil {
		return err
	}
	log.Debug("parsed replay: version=%s, players=%d, rounds=%d, kills=%d",
		r.Version, len(r.Players), len(r.Rounds), len(r.Kills))

	mainSteamID, err := p.resolveMainPlayer(ctx, demo.UserID, r)
	if err != nil {
		return err
	}
	log.Debug("main player resolved: steam_id=%s", mainSteamID)

	players := make([]repository.PlayerRecord, 0, len(r.Players))
	for _, pl := range r.Players {
		players = append(players, repository.PlayerRecord{
			SteamID: pl.SteamID,
			Name:    pl.Name,
			Team:    pl.Team,
			Stats:   stats.Extract(r, pl.SteamID),
		})
	}

	engine := scoring.SelectEngine(r)
	log.Debug("scoring with engine %s (%s)", engine.Name(), engine.Version())
	result, err := engine.Analyze(r, mainSteamID)
	if err != nil {
		return apperrors.NewParseError(fmt.Sprintf("scoring failed: %v", err), err)
	}

	report, err := json.Marshal(coaching.GenerateReport(result))
	if err != nil {
		return fmt.Errorf("marshal coaching report: %w", err)
	}

	playerTeam := stats.PlayerTeam(r, mainSteamID)
	outcome := stats.DetermineMatchResult(r, playerTeam)

	return p.store.SaveProcessedDemo(ctx, repository.ProcessedDemo{
		DemoID:      demo.ID,
		OwnerUserID: demo.UserID,
		Match: models.MatchFields{
			MapName:         r.Metadata.Map,
			DurationSeconds: r.Metadata.Duration,
			ScoreTeam1:      outcome.ScoreTeam1,
			ScoreTeam2:      outcome.ScoreTeam2,
			PlayerTeam:      playerTeam,
			MatchResult:     outcome.Result,
			MatchDate:       parseMatchDate(r.Metadata.MatchDate),
		},
		Players:     players,
		MainSteamID: mainSteamID,
		TotalRounds: len(r.Rounds),
		Rounds:      buildRounds(demo.ID, r),
		Result:      result,
		Report:      report,
	})
}

// resolveMainPlayer prefers the demo owner's steam id; when the owner did
// not play in this match the first parsed player stands in. A replay with
// no players at all cannot be analyzed.
func (p *Processor) resolveMainPlayer(ctx context.Context, userID string, r *replay.Replay) (string, error) {
	if len(r.Players) == 0 {
		return "", apperrors.NewMainPlayerError()
	}

	owner, err := p.users.Get(ctx, userID)
	if err == nil && owner.SteamID != "" {
		for _, pl := range r.Players {
			if pl.SteamID == owner.SteamID {
				return pl.SteamID, nil
			}
		}
	}
	return r.Players[0].SteamID, nil
}

// recordFailure writes the FAILED state. Tolerates a concurrently deleted
// demo: the job outcome is what matters then.
func (p *Processor) recordFailure(ctx context.Context, demoID string, cause error) {
	log := logger.FromContext(ctx)
	log.Error("demo processing failed: %v", cause)

	if err := p.demos.MarkFailed(ctx, demoID, apperrors.UserMessage(cause)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return
		}
		log.Error("failed to record demo failure: %v", err)
	}
}

// roundEvents is the per-round payload stored on each round row.
type roundEvents struct {
	Kills []replay.KillEvent `json:"kills"`
}

func buildRounds(demoID string, r *replay.Replay) []models.Round {
	killsByRound := map[int][]replay.KillEvent{}
	for _, k := range r.Kills {
		killsByRound[k.Round] = append(killsByRound[k.Round], k)
	}

	rounds := make([]models.Round, 0, len(r.Rounds))
	for _, ri := range r.Rounds {
		events, err := json.Marshal(roundEvents{Kills: killsByRound[ri.RoundNumber]})
		if err != nil {
			events = []byte("{}")
		}
		rounds = append(rounds, models.Round{
			DemoID:      demoID,
			RoundNumber: ri.RoundNumber,
			WinnerTeam:  ri.Winner,
			WinReason:   reasonName(ri.Reason),
			Events:      events,
		})
	}
	return rounds
}

var reasonNames = map[int]string{
	replay.ReasonTargetBombed: "target_bombed",
	replay.ReasonBombDefused:  "bomb_defused",
	replay.ReasonCTWin:        "ct_win",
	replay.ReasonTWin:         "t_win",
	replay.ReasonDraw:         "draw",
	replay.ReasonTargetSaved:  "target_saved",
}

func reasonName(reason int) string {
	if name, ok := reasonNames[reason]; ok {
		return name
	}
	return strconv.Itoa(reason)
}

func parseMatchDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
