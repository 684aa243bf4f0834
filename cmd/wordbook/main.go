package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/go-scripts/wordbook/internal/config"
	"github.com/go-scripts/wordbook/internal/types"
)

// CLIFlags overrides values from the config file and environment
type CLIFlags struct {
	Config      string   `help:"Path to configuration file (default ./config.yaml or CONFIG_PATH)"`
	URL         string   `help:"Wordbook list URL" short:"u"`
	Name        []string `help:"Name of a collection to export; repeat to export several in one session" short:"n" sep:"none"`
	Pages       int      `help:"Number of pages to export" short:"p"`
	Output      string   `help:"Output CSV file" short:"o"`
	Headless    bool     `help:"Run Chrome without a window"`
	NoLoginWait bool     `help:"Start exporting without waiting for manual sign-in"`
	Debug       bool     `help:"Enable debug logging"`
	MetricsAddr string   `help:"Serve Prometheus metrics on this address (e.g. :9090)"`
}

func main() {
	var flags CLIFlags
	kong.Parse(&flags,
		kong.Name("wordbook"),
		kong.Description("Export a personal wordbook collection to CSV."),
		kong.UsageOnError(),
	)

	cfg, err := config.Load(flags.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	applyFlags(cfg, flags)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(2)
	}

	status := newStatusLine(os.Stderr)
	logger := newLogger(cfg.Log, status)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, buildJobs(cfg, flags.Name), logger, status, os.Stdin, os.Stdout)
	stop()
	if err != nil {
		logger.Error("export failed", "err", err, "type", types.ErrorLabel(err))
		os.Exit(1)
	}
}

// applyFlags copies every flag that was set onto cfg.
// The first collection name stands in for the configured one.
func applyFlags(cfg *config.Config, flags CLIFlags) {
	if flags.URL != "" {
		cfg.Wordbook.URL = flags.URL
	}
	for _, name := range flags.Name {
		if strings.TrimSpace(name) != "" {
			cfg.Wordbook.Collection = strings.TrimSpace(name)
			break
		}
	}
	if flags.Pages != 0 {
		cfg.Wordbook.Pages = flags.Pages
	}
	if flags.Output != "" {
		cfg.Wordbook.OutputDir = filepath.Dir(flags.Output)
		cfg.Wordbook.FileName = filepath.Base(flags.Output)
	}
	if flags.Headless {
		cfg.Browser.Headless = true
	}
	if flags.NoLoginWait {
		cfg.Wordbook.SkipLogin = true
	}
	if flags.Debug {
		cfg.Log.Level = "debug"
	}
	if flags.MetricsAddr != "" {
		cfg.Metrics.Addr = flags.MetricsAddr
	}
}

func newLogger(cfg config.LogConfig, w io.Writer) *log.Logger {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		level = log.InfoLevel
	}

	formatter := log.TextFormatter
	switch strings.ToLower(cfg.Format) {
	case "json":
		formatter = log.JSONFormatter
	case "logfmt":
		formatter = log.LogfmtFormatter
	}

	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          "wordbook",
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Formatter:       formatter,
	})
}
