// Package health queries a backend's health endpoint over an injected transport.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/samvad-hq/relay-healthwatch/pkg/httpclient"
)

// DefaultPath is the health endpoint path used when none is configured.
const DefaultPath = "/health"

// Service issues health queries against a single backend. It holds no mutable
// state and is safe for concurrent use.
type Service struct {
	client  httpclient.Client
	url     string
	headers map[string]string
	log     Logger
}

type options struct {
	path    string
	headers map[string]string
	log     Logger
}

// Option customizes a Service.
type Option func(*options)

// WithPath overrides DefaultPath.
func WithPath(path string) Option {
	return func(o *options) {
		if p := strings.TrimSpace(path); p != "" {
			o.path = p
		}
	}
}

// WithHeaders sets headers sent on every health request.
func WithHeaders(headers map[string]string) Option {
	return func(o *options) {
		if len(headers) == 0 {
			return
		}
		o.headers = make(map[string]string, len(headers))
		for k, v := range headers {
			o.headers[k] = v
		}
	}
}

// WithLogger attaches a logger for request outcomes.
func WithLogger(log Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// NewService builds a Service for the backend at baseURL. It performs no I/O.
func NewService(client httpclient.Client, baseURL string, opts ...Option) (*Service, error) {
	if client == nil {
		return nil, errors.New("health service requires an http client")
	}

	o := options{path: DefaultPath, log: noopLogger{}}
	for _, opt := range opts {
		opt(&o)
	}

	endpoint, err := resolveURL(baseURL, o.path)
	if err != nil {
		return nil, err
	}

	return &Service{
		client:  client,
		url:     endpoint,
		headers: o.headers,
		log:     o.log,
	}, nil
}

// URL returns the health endpoint the service queries.
func (s *Service) URL() string { return s.url }

// GetHealth performs exactly one GET against the health endpoint. Any failure
// is returned as a *TransportError and no partial response is produced.
func (s *Service) GetHealth(ctx context.Context) (HealthResponse, error) {
	resp, err := s.client.Get(ctx, s.url, s.headers)
	if err != nil {
		s.log.WarnObj("health request failed", "health_error", map[string]any{
			"url":   s.url,
			"error": err.Error(),
		})
		return HealthResponse{}, &TransportError{URL: s.url, Err: err}
	}

	code := resp.StatusCode()
	if code < 200 || code > 299 {
		te := &TransportError{URL: s.url, StatusCode: code, Body: summarizeBody(resp)}
		s.log.WarnObj("health endpoint returned error status", "health_error", map[string]any{
			"url":         s.url,
			"status_code": code,
			"body":        te.Body,
		})
		return HealthResponse{}, te
	}

	var out HealthResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return HealthResponse{}, &TransportError{
			URL:        s.url,
			StatusCode: code,
			Body:       summarizeBody(resp),
			Err:        fmt.Errorf("decode health response: %w", err),
		}
	}

	s.log.DebugObj("health response received", "health_result", map[string]any{
		"url":         s.url,
		"status_code": code,
		"status":      out.Status,
	})
	return out, nil
}

func resolveURL(baseURL, path string) (string, error) {
	base := strings.TrimSpace(baseURL)
	if base == "" {
		return "", errors.New("health base url is empty")
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse health base url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("health base url %q must be an absolute http(s) url", base)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	u.RawPath = ""
	return u.String(), nil
}
