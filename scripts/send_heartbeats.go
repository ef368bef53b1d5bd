// send_heartbeats plays the monitored agent: it calls the heartbeat
// endpoint on a fixed interval so the monitor never alerts.
//
//	go run ./scripts/send_heartbeats.go --url http://localhost:3000/heartbeat/poop --every 5s
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "send_heartbeats",
		Usage: "send periodic heartbeats to a poop-monitor instance",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:3000/heartbeat/poop"},
			&cli.DurationFlag{Name: "every", Value: 5 * time.Second},
			&cli.IntFlag{Name: "count", Usage: "stop after this many heartbeats (0 = forever)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return send(ctx, cmd.String("url"), cmd.Duration("every"), int(cmd.Int("count")))
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("send_heartbeats failed", "error", err)
		os.Exit(1)
	}
}

func send(ctx context.Context, url string, every time.Duration, count int) error {
	client := &http.Client{Timeout: 10 * time.Second}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for sent := 0; count == 0 || sent < count; sent++ {
		if err := beat(ctx, client, url); err != nil {
			slog.Warn("heartbeat failed", "error", err)
		} else {
			slog.Info("heartbeat sent", "url", url, "n", sent+1)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
	return nil
}

func beat(ctx context.Context, client *http.Client, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create heartbeat request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send heartbeat: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("heartbeat returned status %d", resp.StatusCode)
	}
	return nil
}
