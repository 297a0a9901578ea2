package monitor

import (
	"context"

	"github.com/samvad-hq/relay-healthwatch/pkg/health"
	"github.com/samvad-hq/relay-healthwatch/pkg/publishers"
	"github.com/samvad-hq/relay-healthwatch/pkg/targets"
)

// Prober queries one backend. *health.Service implements it.
type Prober interface {
	GetHealth(ctx context.Context) (health.HealthResponse, error)
}

// ProberFactory builds the prober for a target.
type ProberFactory func(t targets.Target) (Prober, error)

// EventPublisher publishes status changes downstream. *publishers.Fanout implements it.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// StatusStore remembers the last status per target. storage.Store implements it.
type StatusStore interface {
	LastStatus(targetID string) (string, bool, error)
	RecordStatus(targetID, status string) error
}
