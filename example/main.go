package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/livecheck"
)

func main() {
	// start mock channel site (see mock_server.go)
	go StartMockChannelSite(":9999")
	time.Sleep(100 * time.Millisecond)

	names := []string{"alice", "bob", "carol", "dave", "erin"}

	c, err := livecheck.New(names,
		livecheck.WithBaseURL("http://localhost:9999"),
		livecheck.WithMaxWorkers(2),
		livecheck.WithMaxRequestsPerSecond(3),
		livecheck.WithRetryLimit(3),
		livecheck.WithRetryInterval(time.Second),
		livecheck.WithListenAddr(":8080"),
		livecheck.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))),
	)
	if err != nil {
		slog.Error("failed to create checker", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  livecheck demo")
	fmt.Println()
	fmt.Println("  Status page: http://localhost:8080 (while the run lasts)")
	fmt.Println("  alice, carol are live; bob, dave are offline; erin is never found")
	fmt.Println("  Press Ctrl+C to stop")
	fmt.Println()
	time.Sleep(time.Second)

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("livecheck error", "error", err)
		os.Exit(1)
	}
}
