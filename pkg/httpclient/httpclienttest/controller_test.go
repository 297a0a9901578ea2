package httpclienttest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

// recordingTB captures failures so Verify itself can be asserted on.
type recordingTB struct {
	testing.TB
	errors   []string
	cleanups []func()
}

func (r *recordingTB) Helper() {}
func (r *recordingTB) Errorf(format string, args ...any) {
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}
func (r *recordingTB) Cleanup(fn func()) { r.cleanups = append(r.cleanups, fn) }

func TestControllerServesExpectationsInOrder(t *testing.T) {
	c := New(t)
	c.Expect("https://relay.example/health").Respond(http.StatusOK, `{"status":"ok"}`)
	c.Expect("https://relay.example/health").Respond(http.StatusInternalServerError, "boom")

	first, err := c.Get(context.Background(), "https://relay.example/health", nil)
	if err != nil {
		t.Fatalf("first Get: %v", err)
	}
	if first.StatusCode() != http.StatusOK || string(first.Body()) != `{"status":"ok"}` {
		t.Fatalf("unexpected first response %d %s", first.StatusCode(), first.Body())
	}

	second, err := c.Get(context.Background(), "https://relay.example/health", nil)
	if err != nil {
		t.Fatalf("second Get: %v", err)
	}
	if second.StatusCode() != http.StatusInternalServerError {
		t.Fatalf("second status = %d", second.StatusCode())
	}
	if got := len(c.Requests()); got != 2 {
		t.Fatalf("expected 2 recorded requests, got %d", got)
	}
}

func TestControllerFailReturnsError(t *testing.T) {
	c := New(t)
	want := errors.New("connection refused")
	c.Expect("https://relay.example/health").Fail(want)

	if _, err := c.Get(context.Background(), "https://relay.example/health", nil); !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
}

func TestControllerVerifyReportsUnexpectedAndUnfulfilled(t *testing.T) {
	tb := &recordingTB{}
	c := New(tb)
	c.Expect("https://relay.example/health")

	if _, err := c.Get(context.Background(), "https://relay.example/other", nil); err == nil {
		t.Fatalf("expected error for unexpected request")
	}

	if len(tb.cleanups) != 1 {
		t.Fatalf("expected Verify registered as cleanup, got %d", len(tb.cleanups))
	}
	tb.cleanups[0]()

	if len(tb.errors) != 1 {
		t.Fatalf("expected one failure, got %v", tb.errors)
	}
	msg := tb.errors[0]
	if !strings.Contains(msg, "unexpected GET https://relay.example/other") {
		t.Errorf("missing unexpected request in %q", msg)
	}
	if !strings.Contains(msg, "unfulfilled GET https://relay.example/health") {
		t.Errorf("missing unfulfilled expectation in %q", msg)
	}
}

func TestControllerVerifyCleanWhenAllConsumed(t *testing.T) {
	tb := &recordingTB{}
	c := New(tb)
	c.Expect("https://relay.example/health").RespondJSON(http.StatusOK, map[string]string{"status": "ok"})

	resp, err := c.Get(context.Background(), "https://relay.example/health", nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("Content-Type = %q", ct)
	}

	c.Verify()
	if len(tb.errors) != 0 {
		t.Fatalf("expected clean verify, got %v", tb.errors)
	}
}

func TestControllerChecksRequestHeaders(t *testing.T) {
	tb := &recordingTB{}
	c := New(tb)
	c.Expect("https://relay.example/health").WithHeader("Accept", "application/json")

	if _, err := c.Get(context.Background(), "https://relay.example/health", map[string]string{"Accept": "text/html"}); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(tb.errors) != 1 || !strings.Contains(tb.errors[0], "header Accept") {
		t.Fatalf("expected header mismatch failure, got %v", tb.errors)
	}
}
