package replay

import (
	"sort"

	apperrors "github.com/demoscope/demoscope/internal/errors"
)

// Strategy is one parser generation. Probe must be cheap: it only inspects
// the container header, never the payload.
type Strategy interface {
	Name() string
	Version() string
	Priority() int
	Probe(path string) bool
	Parse(path string) (*Replay, error)
}

// Registry selects the highest-priority strategy able to parse a given
// file. Selection happens once per pipeline run.
type Registry struct {
	strategies []Strategy
}

func NewRegistry(strategies ...Strategy) *Registry {
	sorted := make([]Strategy, len(strategies))
	copy(sorted, strategies)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() > sorted[j].Priority()
	})
	return &Registry{strategies: sorted}
}

// DefaultRegistry holds both generations, canonical preferred.
func DefaultRegistry() *Registry {
	return NewRegistry(NewParserV2(), NewParserV1())
}

// Select returns the first strategy whose probe accepts the file.
func (r *Registry) Select(path string) (Strategy, error) {
	for _, s := range r.strategies {
		if s.Probe(path) {
			return s, nil
		}
	}
	return nil, apperrors.NewInvalidDemoError("no parser available for this demo format")
}

// Parse selects a strategy and runs it.
func (r *Registry) Parse(path string) (*Replay, error) {
	s, err := r.Select(path)
	if err != nil {
		return nil, err
	}
	return s.Parse(path)
}
