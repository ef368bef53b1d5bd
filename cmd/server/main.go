package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/andres10976/poop-monitor/internal/config"
	"github.com/andres10976/poop-monitor/internal/database"
	"github.com/andres10976/poop-monitor/internal/liveness"
	"github.com/andres10976/poop-monitor/internal/logging"
	"github.com/andres10976/poop-monitor/internal/repository"
	"github.com/andres10976/poop-monitor/internal/service/monitor"
	"github.com/andres10976/poop-monitor/internal/service/pushover"
	"github.com/andres10976/poop-monitor/internal/watchdog"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		slog.Error("poop-monitor exited", "error", err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "poop-monitor",
		Usage: "send a Pushover alert when heartbeats stop arriving",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env-file",
				Value:   ".env",
				Usage:   "dotenv file loaded before reading the environment",
				Sources: cli.EnvVars("ENV_FILE"),
			},
		},
		Action: run,
	}
}

// loadEnvFile loads path into the environment without overriding variables
// that are already set. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	if err := loadEnvFile(cmd.String("env-file")); err != nil {
		return err
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closeLog, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	// Services
	tracker := liveness.New()
	notifier := pushover.NewClient(cfg.PushoverAPIURL, cfg.PushoverToken, cfg.PushoverUser)
	monCfg := monitor.Config{
		Timeout:       cfg.HeartbeatTimeout,
		CheckInterval: cfg.CheckInterval,
		Debounce:      cfg.Debounce,
		Message:       cfg.AlertMessage,
	}

	var mon *monitor.Monitor
	if cfg.DatabaseURL != "" {
		pool, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		defer pool.Close()

		if err := database.Migrate(pool); err != nil {
			return err
		}
		mon = monitor.New(tracker, notifier, repository.NewAlertRepository(pool), monCfg)
		slog.Info("alert journal enabled")
	} else {
		mon = monitor.New(tracker, notifier, nil, monCfg)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Server
	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.ListenAddr, err)
	}

	srv := &http.Server{
		Handler:      newRouter(tracker),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if err := mon.Start(ctx); err != nil {
		ln.Close()
		return err
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	sd := watchdog.New()
	sd.Ready()
	stopPinger := sd.StartPinger(ctx)
	defer stopPinger()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			mon.Stop(context.Background())
			return fmt.Errorf("server error: %w", err)
		}
	}

	slog.Info("shutting down")
	sd.Stopping()

	stopCtx, cancelStop := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelStop()
	if err := mon.Stop(stopCtx); err != nil {
		slog.Warn("monitor did not stop cleanly", "error", err)
	}

	// Give in-flight requests time to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
