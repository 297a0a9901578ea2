package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samvad-hq/relay-healthwatch/internal/config"
	"github.com/samvad-hq/relay-healthwatch/internal/logger"
	"github.com/samvad-hq/relay-healthwatch/internal/monitor"
	"github.com/samvad-hq/relay-healthwatch/internal/storage"
	"github.com/samvad-hq/relay-healthwatch/pkg/httpclient"
	"github.com/samvad-hq/relay-healthwatch/pkg/publishers"
	"github.com/samvad-hq/relay-healthwatch/pkg/targets"
)

// Watcher is the long-running health watch runtime. It owns the target list,
// the publisher fanout, and the status store, and drives the poll loop.
type Watcher struct {
	cfg          *config.Config
	targets      []targets.Target
	fanout       *publishers.Fanout
	monitor      *monitor.Service
	store        storage.Store
	pollInterval time.Duration
	log          logger.Logger
}

// NewWatcher builds a watcher runtime from config files.
func NewWatcher(ctx context.Context, cfg *config.Config, log logger.Logger) (*Watcher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	targetReg, err := targets.Load(cfg.TargetsFile)
	if err != nil {
		return nil, fmt.Errorf("load targets registry: %w", err)
	}
	targetList := targetReg.All()
	targetIDs := make([]string, 0, len(targetList))
	for _, t := range targetList {
		targetIDs = append(targetIDs, t.ID)
	}
	log.InfoObj("targets registry loaded", "targets_meta", map[string]any{
		"count": len(targetIDs),
		"ids":   targetIDs,
	})

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabledPublishers := publisherReg.Enabled()
	if len(enabledPublishers) == 0 {
		return nil, fmt.Errorf("no publishers configured")
	}

	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabledPublishers, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	fanout := publishers.NewFanout(pubClients)
	publisherSummaries := make([]map[string]string, 0, len(enabledPublishers))
	for _, pubCfg := range enabledPublishers {
		publisherSummaries = append(publisherSummaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(publisherSummaries),
		"publishers": publisherSummaries,
	})

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		StatusTTL:       cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"status_ttl_seconds":       int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	client := httpclient.NewRestyClient(cfg.HTTPTimeout)

	return &Watcher{
		cfg:          cfg,
		targets:      targetList,
		fanout:       fanout,
		monitor:      monitor.NewService(client, fanout, store, log),
		store:        store,
		pollInterval: cfg.PollInterval,
		log:          log,
	}, nil
}

// Run probes once immediately, then every poll interval until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if w == nil || w.monitor == nil {
		return fmt.Errorf("watcher is not initialized")
	}
	defer w.close()

	w.log.InfoObj("watch loop starting", "watcher_state", map[string]any{
		"targets_count":    len(w.targets),
		"publishers_count": w.fanout.Size(),
		"poll_interval":    w.pollInterval.String(),
	})

	if err := w.runOnce(ctx); err != nil {
		w.log.ErrorObj("initial probe pass failed", "error", err)
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.InfoObj("watch loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if err := w.runOnce(ctx); err != nil {
				w.log.ErrorObj("scheduled probe pass failed", "error", err)
			}
		}
	}
}

func (w *Watcher) runOnce(ctx context.Context) error {
	start := time.Now()
	obs, err := w.monitor.Run(ctx, w.targets)

	healthy, changed := 0, 0
	for _, o := range obs {
		if o.Status.Healthy() {
			healthy++
		}
		if o.Changed {
			changed++
		}
	}
	w.log.InfoObj("probe pass completed", "probe_meta", map[string]any{
		"targets_count": len(obs),
		"healthy":       healthy,
		"changed":       changed,
		"elapsed_ms":    time.Since(start).Milliseconds(),
	})
	return err
}

func (w *Watcher) close() {
	var errs []error
	if w.store != nil {
		if err := w.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
	}
	if err := w.fanout.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		w.log.ErrorObj("watcher shutdown failed", "error", err)
	}
}
