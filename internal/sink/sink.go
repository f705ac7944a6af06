// Package sink delivers generated incidents to downstream receivers. Sink
// failures never fail the execution; the orchestrator logs and counts them
// (at-least-once delivery, no retry in the core).
package sink

import (
	"context"

	"checklist-engine/internal/models"
)

// Sink receives automatically generated incidents.
type Sink interface {
	// Name identifies the sink in logs and metrics.
	Name() string
	Publish(ctx context.Context, incident *models.Incident) error
}

// Multi fans an incident out to every configured sink and returns the first
// error, after attempting all of them.
type Multi []Sink

func (m Multi) Name() string { return "multi" }

func (m Multi) Publish(ctx context.Context, incident *models.Incident) error {
	var firstErr error
	for _, s := range m {
		if err := s.Publish(ctx, incident); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Noop discards incidents; used when no sink is configured.
type Noop struct{}

func (Noop) Name() string                                    { return "noop" }
func (Noop) Publish(context.Context, *models.Incident) error { return nil }
