package storage

import (
	"fmt"
	"strings"
	"time"
)

// Store remembers the last health status observed per target.
type Store interface {
	Close() error
	LastStatus(targetID string) (status string, ok bool, err error)
	RecordStatus(targetID, status string) error
}

// Options controls retention for concrete store implementations.
type Options struct {
	StatusTTL       time.Duration
	CleanupInterval time.Duration
}

const (
	defaultStatusTTL       = 7 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return newMemoryStore(opts), nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.StatusTTL <= 0 {
		opts.StatusTTL = defaultStatusTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}
