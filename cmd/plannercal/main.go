package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"plannercal/internal/capture"
	"plannercal/internal/compose"
	"plannercal/internal/config"
	"plannercal/internal/ics"
	appLog "plannercal/internal/log"
	"plannercal/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
	once       bool
	date       string
	week       bool
	out        string
	debug      bool
}

func main() {
	appLog.Info("plannercal starting", "version", "0.1.0")

	flags := parseFlags()
	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	if flags.out != "" {
		conf.ExportDir = flags.out
	}
	if flags.debug && flags.out == "" {
		conf.ExportDir = "./cache"
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"refresh", conf.RefreshCron,
		"export_dir", conf.ExportDir,
		"ics_count", len(conf.ICS),
		"once", flags.once,
	)

	composer, err := compose.NewComposer(conf)
	if err != nil {
		appLog.Error("failed to build composer", err)
		os.Exit(1)
	}
	supplier := ics.NewSupplier(conf, filepath.Join(conf.ExportDir, "ics-cache"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	if flags.once {
		if err := runExportCycle(ctx, conf, composer, supplier, flags); err != nil {
			appLog.Error("export cycle failed", err)
			os.Exit(1)
		}
		appLog.Info("plannercal exiting")
		return
	}

	// Daemon mode: periodic export cycle plus the HTTP surface.
	sched := cron.New()
	if _, err := sched.AddFunc(conf.RefreshCron, func() {
		if err := runExportCycle(ctx, conf, composer, supplier, flags); err != nil {
			appLog.Error("scheduled export cycle failed", err)
		}
	}); err != nil {
		appLog.Error("invalid refresh schedule", err, "refresh", conf.RefreshCron)
		os.Exit(1)
	}
	sched.Start()
	defer sched.Stop()

	go func() {
		if err := web.StartServer(ctx, conf, composer, supplier, flags.debug); err != nil {
			appLog.Error("HTTP server stopped", err)
			cancel()
		}
	}()

	// First cycle immediately so the preview and exports exist before the
	// first cron tick.
	if err := runExportCycle(ctx, conf, composer, supplier, flags); err != nil {
		appLog.Error("initial export cycle failed", err)
	}

	<-ctx.Done()
	time.Sleep(100 * time.Millisecond)
	appLog.Info("plannercal exiting")
}

// runExportCycle fetches events and writes the composed documents to the
// export directory: the daily PDF, the weekly PDF and the PNG preview of
// the screen view.
func runExportCycle(ctx context.Context, conf *config.Config, composer *compose.Composer, supplier *ics.Supplier, flags flagConfig) error {
	loc := conf.Location()

	day := time.Now().In(loc)
	if flags.date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", flags.date, loc)
		if err != nil {
			return fmt.Errorf("invalid -date %q: %w", flags.date, err)
		}
		day = parsed
	}
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)

	if err := os.MkdirAll(conf.ExportDir, 0o755); err != nil {
		return err
	}

	// A week of context covers both the daily page and the overview.
	events, err := supplier.EventsBetween(ctx, day.AddDate(0, 0, -7), day.AddDate(0, 0, 8))
	if err != nil {
		return err
	}

	daily, err := composer.ComposeDaily(events, day)
	if err != nil {
		return err
	}
	dailyPath := filepath.Join(conf.ExportDir, fmt.Sprintf("planner-%s.pdf", day.Format("2006-01-02")))
	if err := os.WriteFile(dailyPath, daily.Bytes, 0o644); err != nil {
		return err
	}
	appLog.Info("daily export written", "path", dailyPath, "pages", daily.PageCount, "warnings", len(daily.Warnings))

	if flags.week || !flags.once {
		weekly, err := composer.ComposeWeek(events, day)
		if err != nil {
			return err
		}
		weeklyPath := filepath.Join(conf.ExportDir, fmt.Sprintf("planner-week-%s.pdf", day.Format("2006-01-02")))
		if err := os.WriteFile(weeklyPath, weekly.Bytes, 0o644); err != nil {
			return err
		}
		appLog.Info("weekly export written", "path", weeklyPath, "pages", weekly.PageCount)
	}

	// Preview PNG through headless Chromium, only in daemon mode where
	// the HTTP view is up. One-shot runs skip it.
	if !flags.once {
		err := capture.CapturePlannerPNG(ctx, capture.Options{
			URL:        fmt.Sprintf("http://%s/planner?date=%s", conf.Listen, day.Format("2006-01-02")),
			OutputPath: filepath.Join(conf.ExportDir, "preview.png"),
		})
		if err != nil {
			// Preview is best effort; the PDF exports already succeeded.
			appLog.Warn("preview capture failed", "err", err)
		}
	}

	return nil
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/plannercal/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Run one export cycle and exit")
	flag.StringVar(&cfg.date, "date", "", "Planner date YYYY-MM-DD (default today)")
	flag.BoolVar(&cfg.week, "week", false, "Also export the weekly document in -once mode")
	flag.StringVar(&cfg.out, "out", "", "Export directory (overrides config if set)")
	flag.BoolVar(&cfg.debug, "debug", false, "Debug logging and local cache paths")

	flag.Parse()
	return cfg
}
