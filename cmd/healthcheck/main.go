// Command healthcheck queries HEALTH_BASE_URL once and prints the response.
// It exits 1 when the backend could not be reached or reported an error
// status, and 2 on configuration problems.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/relay-healthwatch/internal/config"
	"github.com/samvad-hq/relay-healthwatch/internal/logger"
	"github.com/samvad-hq/relay-healthwatch/pkg/health"
	"github.com/samvad-hq/relay-healthwatch/pkg/httpclient"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 2
	}

	log := logger.Init(cfg.LogLevel)
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := health.NewService(
		httpclient.NewRestyClient(cfg.HTTPTimeout),
		cfg.HealthBaseURL,
		health.WithPath(cfg.HealthPath),
		health.WithLogger(log),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 2
	}

	return check(ctx, svc, os.Stdout, os.Stderr)
}

type healthGetter interface {
	GetHealth(ctx context.Context) (health.HealthResponse, error)
}

func check(ctx context.Context, svc healthGetter, stdout, stderr io.Writer) int {
	resp, err := svc.GetHealth(ctx)
	if err != nil {
		if te, ok := health.IsTransportError(err); ok && te.StatusCode != 0 {
			fmt.Fprintf(stderr, "unhealthy: status %d\n", te.StatusCode)
		}
		fmt.Fprintln(stderr, err)
		return 1
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		fmt.Fprintf(stderr, "encode response: %v\n", err)
		return 1
	}
	return 0
}
