package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samvad-hq/relay-healthwatch/internal/logger"
	"github.com/samvad-hq/relay-healthwatch/pkg/health"
	"github.com/samvad-hq/relay-healthwatch/pkg/httpclient"
	"github.com/samvad-hq/relay-healthwatch/pkg/publishers"
	"github.com/samvad-hq/relay-healthwatch/pkg/targets"
)

// Observation is the outcome of probing one target.
type Observation struct {
	Target     targets.Target
	URL        string
	Status     health.Status
	StatusCode int
	Err        error
	Changed    bool
}

// Service probes targets and publishes status changes.
type Service struct {
	newProber ProberFactory
	publisher EventPublisher
	store     StatusStore
	log       logger.Logger
	now       func() time.Time
}

// NewService wires a watcher that probes through client.
func NewService(client httpclient.Client, pub EventPublisher, store StatusStore, log logger.Logger) *Service {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Service{
		newProber: HealthProberFactory(client, log),
		publisher: pub,
		store:     store,
		log:       log,
		now:       time.Now,
	}
}

// HealthProberFactory builds health services sharing one transport.
func HealthProberFactory(client httpclient.Client, log health.Logger) ProberFactory {
	return func(t targets.Target) (Prober, error) {
		return health.NewService(client, t.BaseURL,
			health.WithPath(t.HealthPath),
			health.WithHeaders(t.Headers),
			health.WithLogger(log),
		)
	}
}

// Run probes every target once. Probe failures are observations, not errors;
// the returned error joins store and publish failures.
func (s *Service) Run(ctx context.Context, list []targets.Target) ([]Observation, error) {
	if s == nil || s.newProber == nil {
		return nil, fmt.Errorf("monitor service is not initialized")
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("no targets configured for probing")
	}

	observations := make([]Observation, 0, len(list))
	var errs []error
	for _, t := range list {
		select {
		case <-ctx.Done():
			return observations, errors.Join(errs...)
		default:
		}

		obs, err := s.probeTarget(ctx, t)
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return observations, errors.Join(errs...)
		}
		if err != nil {
			errs = append(errs, err)
			s.log.ErrorObj("target processing failed", "target_error", map[string]any{
				"target_id": t.ID,
				"error":     err.Error(),
			})
		}
		observations = append(observations, obs)
	}
	return observations, errors.Join(errs...)
}

func (s *Service) probeTarget(ctx context.Context, t targets.Target) (Observation, error) {
	obs := Observation{Target: t}

	prober, err := s.newProber(t)
	if err != nil {
		return obs, fmt.Errorf("build prober for target %s: %w", t.ID, err)
	}
	if svc, ok := prober.(*health.Service); ok {
		obs.URL = svc.URL()
	}

	probeCtx, cancel := context.WithTimeout(ctx, t.Timeout())
	resp, err := prober.GetHealth(probeCtx)
	cancel()

	// Shutdown is not an outage; only the per-target deadline counts as down.
	if err != nil && ctx.Err() != nil {
		return obs, ctx.Err()
	}

	if err != nil {
		obs.Status = health.StatusDown
		obs.Err = err
		if te, ok := health.IsTransportError(err); ok {
			obs.StatusCode = te.StatusCode
			obs.URL = te.URL
		}
	} else {
		obs.Status = resp.Status
	}

	var prev string
	var seen bool
	if s.store != nil {
		prev, seen, err = s.store.LastStatus(t.ID)
		if err != nil {
			s.log.WarnObj("status lookup failed; treating as first observation", "store_error", map[string]any{
				"target_id": t.ID,
				"error":     err.Error(),
			})
			seen = false
		}
	}

	obs.Changed = !seen || prev != string(obs.Status)
	if obs.Changed {
		if err := s.publish(ctx, obs, prev); err != nil {
			// Not recorded, so the change is retried on the next pass.
			return obs, fmt.Errorf("publish status change for target %s: %w", t.ID, err)
		}
	}

	if s.store != nil {
		if err := s.store.RecordStatus(t.ID, string(obs.Status)); err != nil {
			return obs, fmt.Errorf("record status for target %s: %w", t.ID, err)
		}
	}

	s.log.InfoObj("target probed", "probe_result", map[string]any{
		"target_id":   t.ID,
		"status":      obs.Status,
		"status_code": obs.StatusCode,
		"changed":     obs.Changed,
	})
	return obs, nil
}

func (s *Service) publish(ctx context.Context, obs Observation, prev string) error {
	if s.publisher == nil {
		return nil
	}
	evt := publishers.Event{
		TargetID:       obs.Target.ID,
		TargetName:     obs.Target.Name,
		URL:            obs.URL,
		PreviousStatus: prev,
		Status:         string(obs.Status),
		StatusCode:     obs.StatusCode,
		ObservedAt:     s.now().UTC(),
	}
	if obs.Err != nil {
		evt.Error = obs.Err.Error()
	}

	delivered, err := s.publisher.Publish(ctx, evt)
	s.log.InfoObj("status change published", "status_change", map[string]any{
		"target_id":       evt.TargetID,
		"previous_status": evt.PreviousStatus,
		"status":          evt.Status,
		"delivered":       delivered,
	})
	if err != nil && delivered == 0 {
		return err
	}
	if err != nil {
		s.log.WarnObj("status change partially published", "publish_error", map[string]any{
			"target_id": evt.TargetID,
			"error":     err.Error(),
		})
	}
	return nil
}
