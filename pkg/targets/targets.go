// Package targets loads the set of backends whose health is watched.
package targets

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/samvad-hq/relay-healthwatch/pkg/health"
)

const defaultTimeoutMs = 5000

// Target is a backend with a health endpoint.
type Target struct {
	ID         string            `json:"id" yaml:"id"`
	Name       string            `json:"name" yaml:"name"`
	BaseURL    string            `json:"base_url" yaml:"base_url"`
	HealthPath string            `json:"health_path" yaml:"health_path"`
	Headers    map[string]string `json:"headers" yaml:"headers"`
	TimeoutMs  int               `json:"timeout_ms" yaml:"timeout_ms"`
}

// Timeout returns the per-probe deadline for the target.
func (t Target) Timeout() time.Duration {
	if t.TimeoutMs <= 0 {
		return defaultTimeoutMs * time.Millisecond
	}
	return time.Duration(t.TimeoutMs) * time.Millisecond
}

type fileRegistry struct {
	Targets []Target `json:"targets" yaml:"targets"`
}

// Registry is an immutable, validated set of targets.
type Registry struct {
	targets []Target
	idx     map[string]Target
}

// Load reads targets from a YAML or JSON file.
func Load(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("targets file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open targets file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read targets file: %w", err)
	}

	fr, err := parseRegistry(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	return NewRegistry(fr.Targets)
}

// NewRegistry sanitizes and validates targets.
func NewRegistry(list []Target) (*Registry, error) {
	if len(list) == 0 {
		return nil, errors.New("targets file contains no targets entries")
	}

	reg := &Registry{
		targets: make([]Target, 0, len(list)),
		idx:     make(map[string]Target, len(list)),
	}
	for i := range list {
		t := sanitizeTarget(list[i])
		if err := validateTarget(t); err != nil {
			return nil, fmt.Errorf("targets[%d]: %w", i, err)
		}
		if _, exists := reg.idx[t.ID]; exists {
			return nil, fmt.Errorf("duplicate target id %q", t.ID)
		}
		reg.targets = append(reg.targets, t)
		reg.idx[t.ID] = t
	}
	return reg, nil
}

func parseRegistry(data []byte, ext string) (fileRegistry, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var fr fileRegistry
		if err := d.fn(data, &fr); err == nil {
			return fr, nil
		}
	}

	return fileRegistry{}, errors.New("targets file format not recognized (expected YAML or JSON)")
}

func sanitizeTarget(t Target) Target {
	t.ID = strings.TrimSpace(t.ID)
	t.Name = strings.TrimSpace(t.Name)
	t.BaseURL = strings.TrimSpace(t.BaseURL)
	t.HealthPath = strings.TrimSpace(t.HealthPath)
	if t.HealthPath == "" {
		t.HealthPath = health.DefaultPath
	}
	if t.TimeoutMs <= 0 {
		t.TimeoutMs = defaultTimeoutMs
	}

	if len(t.Headers) > 0 {
		headers := make(map[string]string, len(t.Headers))
		for k, v := range t.Headers {
			k, v = strings.TrimSpace(k), strings.TrimSpace(v)
			if k == "" || v == "" {
				continue
			}
			headers[k] = v
		}
		t.Headers = headers
	}
	return t
}

func validateTarget(t Target) error {
	if t.ID == "" {
		return errors.New("id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("name is required for target %q", t.ID)
	}
	if t.BaseURL == "" {
		return fmt.Errorf("base_url is required for target %q", t.ID)
	}
	return nil
}

// All returns a copy of the registered targets in file order.
func (r *Registry) All() []Target {
	if r == nil {
		return nil
	}
	out := make([]Target, len(r.targets))
	copy(out, r.targets)
	return out
}

// ByID returns the target with the given id.
func (r *Registry) ByID(id string) (Target, bool) {
	if r == nil {
		return Target{}, false
	}
	t, ok := r.idx[strings.TrimSpace(id)]
	return t, ok
}
