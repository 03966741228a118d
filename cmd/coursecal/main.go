package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/robfig/cron/v3"

	"coursecal/internal/app"
	"coursecal/internal/config"
	appLog "coursecal/internal/log"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	out        string
	once       bool
	debug      bool
}

func main() {
	flags := parseFlags()

	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI -out overrides the config file output path if provided.
	if flags.out != "" {
		conf.OutputPath = flags.out
	}

	appLog.Info("effective config",
		"source", conf.Source,
		"timezone", conf.Timezone,
		"calendar_name", conf.CalendarName,
		"output", conf.OutputPath,
		"window_before", conf.Window.Before,
		"window_after", conf.Window.After,
		"default_duration_minutes", conf.DefaultDurationMinutes,
		"refresh", conf.RefreshCron,
		"once", flags.once,
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	if flags.once || conf.RefreshCron == "" {
		if err := app.Run(ctx, conf); err != nil {
			appLog.Error("run failed", err)
			os.Exit(1)
		}
		return
	}

	if err := runDaemon(ctx, flags.configPath, conf); err != nil {
		appLog.Error("daemon failed", err)
		os.Exit(1)
	}
}

// runDaemon regenerates the calendar on the configured cron schedule
// and hot-reloads the config file on change. At most one refresh runs
// at a time; a schedule tick that lands while a refresh is in flight
// is skipped.
func runDaemon(ctx context.Context, configPath string, conf *config.Config) error {
	var (
		mu      sync.Mutex // guards current
		current = conf
		runMu   sync.Mutex // serializes refreshes
	)

	refresh := func() {
		if !runMu.TryLock() {
			appLog.Warn("previous refresh still running, skipping tick")
			return
		}
		defer runMu.Unlock()

		mu.Lock()
		cfg := current
		mu.Unlock()

		if err := app.Run(ctx, cfg); err != nil {
			// A failed cycle leaves the previous feed in place; the next
			// tick retries the whole pipeline.
			appLog.Error("refresh failed", err)
		}
	}

	c := cron.New()
	entryID, err := c.AddFunc(conf.RefreshCron, refresh)
	if err != nil {
		return err
	}

	stopWatch, err := config.Watch(configPath, func(cfg *config.Config) {
		mu.Lock()
		oldCron := current.RefreshCron
		current = cfg
		mu.Unlock()

		if cfg.RefreshCron != "" && cfg.RefreshCron != oldCron {
			if id, err := c.AddFunc(cfg.RefreshCron, refresh); err != nil {
				appLog.Error("invalid refresh schedule, keeping previous", err,
					"refresh", cfg.RefreshCron)
			} else {
				c.Remove(entryID)
				entryID = id
			}
		}
	})
	if err != nil {
		return err
	}
	defer stopWatch()

	// Publish immediately, then follow the schedule.
	refresh()

	c.Start()
	defer c.Stop()

	<-ctx.Done()
	return nil
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "config.yaml", "Path to config file")
	flag.StringVar(&cfg.out, "out", "", "Output .ics path (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Run one fetch+publish cycle and exit, ignoring any refresh schedule")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")

	flag.Parse()

	return cfg
}
