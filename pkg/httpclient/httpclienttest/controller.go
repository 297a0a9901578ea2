// Package httpclienttest provides an expectation-driven fake for httpclient.Client.
//
// A test declares the requests it expects and how each one is answered. Any
// request nobody expected, and any expectation nobody consumed, fails the test
// when Verify runs. New registers Verify with t.Cleanup.
package httpclienttest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/samvad-hq/relay-healthwatch/pkg/httpclient"
)

// Request is a request observed by the Controller.
type Request struct {
	URL     string
	Headers map[string]string
}

// Expectation describes one anticipated GET and its canned outcome.
type Expectation struct {
	url     string
	headers map[string]string
	status  int
	body    []byte
	header  http.Header
	err     error
	used    bool
}

// Respond answers the request with status and body.
func (e *Expectation) Respond(status int, body string) *Expectation {
	e.status = status
	e.body = []byte(body)
	e.err = nil
	return e
}

// RespondJSON answers the request with status and v encoded as JSON.
func (e *Expectation) RespondJSON(status int, v any) *Expectation {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("httpclienttest: encode response: %v", err))
	}
	e.status = status
	e.body = raw
	e.err = nil
	if e.header == nil {
		e.header = http.Header{}
	}
	e.header.Set("Content-Type", "application/json")
	return e
}

// SetHeader adds a response header.
func (e *Expectation) SetHeader(key, value string) *Expectation {
	if e.header == nil {
		e.header = http.Header{}
	}
	e.header.Set(key, value)
	return e
}

// Fail makes the request fail at the transport level with err.
func (e *Expectation) Fail(err error) *Expectation {
	e.err = err
	return e
}

// WithHeader requires the request to carry header key=value.
func (e *Expectation) WithHeader(key, value string) *Expectation {
	if e.headers == nil {
		e.headers = map[string]string{}
	}
	e.headers[key] = value
	return e
}

// Controller implements httpclient.Client and records every call.
type Controller struct {
	t          testing.TB
	mu         sync.Mutex
	pending    []*Expectation
	requests   []Request
	unexpected []Request
}

var _ httpclient.Client = (*Controller)(nil)

// New returns a Controller bound to t. Verify runs automatically at cleanup.
func New(t testing.TB) *Controller {
	t.Helper()
	c := &Controller{t: t}
	t.Cleanup(c.Verify)
	return c
}

// Expect registers an expected GET for url. Unless configured otherwise it
// answers 200 with an empty body.
func (c *Controller) Expect(url string) *Expectation {
	e := &Expectation{url: url, status: http.StatusOK}
	c.mu.Lock()
	c.pending = append(c.pending, e)
	c.mu.Unlock()
	return e
}

// Get serves the first unused expectation for url, in registration order.
func (c *Controller) Get(ctx context.Context, url string, headers map[string]string) (httpclient.Response, error) {
	req := Request{URL: url, Headers: copyHeaders(headers)}

	c.mu.Lock()
	c.requests = append(c.requests, req)
	var match *Expectation
	for _, e := range c.pending {
		if !e.used && e.url == url {
			match = e
			break
		}
	}
	if match == nil {
		c.unexpected = append(c.unexpected, req)
		c.mu.Unlock()
		return nil, fmt.Errorf("httpclienttest: unexpected GET %s", url)
	}
	match.used = true
	c.mu.Unlock()

	for key, want := range match.headers {
		if got := headers[key]; got != want {
			c.t.Errorf("httpclienttest: GET %s header %s = %q, want %q", url, key, got, want)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if match.err != nil {
		return nil, match.err
	}
	return &response{status: match.status, body: match.body, header: match.header.Clone()}, nil
}

// Requests returns every request the controller has seen, in order.
func (c *Controller) Requests() []Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Request, len(c.requests))
	copy(out, c.requests)
	return out
}

// Verify fails the test for every unexpected request and every expectation
// that was never consumed.
func (c *Controller) Verify() {
	c.t.Helper()
	if msg := c.outstanding(); msg != "" {
		c.t.Errorf("httpclienttest: %s", msg)
	}
}

func (c *Controller) outstanding() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var problems []string
	for _, r := range c.unexpected {
		problems = append(problems, "unexpected GET "+r.URL)
	}
	for _, e := range c.pending {
		if !e.used {
			problems = append(problems, "unfulfilled GET "+e.url)
		}
	}
	return strings.Join(problems, "; ")
}

type response struct {
	status int
	body   []byte
	header http.Header
}

func (r *response) Body() []byte        { return r.body }
func (r *response) StatusCode() int     { return r.status }
func (r *response) Header() http.Header { return r.header }

func copyHeaders(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
