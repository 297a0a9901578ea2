package main

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/samvad-hq/relay-healthwatch/pkg/health"
	"github.com/samvad-hq/relay-healthwatch/pkg/httpclient/httpclienttest"
)

func TestCheckPrintsResponse(t *testing.T) {
	c := httpclienttest.New(t)
	c.Expect("http://localhost:4317/health").Respond(http.StatusOK, `{"status":"ok","relays":2}`)
	svc, err := health.NewService(c, "http://localhost:4317")
	if err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	if code := check(context.Background(), svc, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code %d, stderr %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), `"status": "ok"`) || !strings.Contains(stdout.String(), `"relays": 2`) {
		t.Fatalf("stdout = %s", stdout.String())
	}
}

func TestCheckReportsStatusCode(t *testing.T) {
	c := httpclienttest.New(t)
	c.Expect("http://localhost:4317/health").Respond(http.StatusInternalServerError, "")
	svc, err := health.NewService(c, "http://localhost:4317")
	if err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	if code := check(context.Background(), svc, &stdout, &stderr); code != 1 {
		t.Fatalf("exit code %d", code)
	}
	if !strings.Contains(stderr.String(), "status 500") {
		t.Fatalf("stderr = %s", stderr.String())
	}
}
