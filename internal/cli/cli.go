package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/raphaelguye/srrc-calendar-scraper/internal/calendar"
	"github.com/raphaelguye/srrc-calendar-scraper/internal/config"
	"github.com/raphaelguye/srrc-calendar-scraper/internal/event"
	"github.com/raphaelguye/srrc-calendar-scraper/internal/logger"
	"github.com/raphaelguye/srrc-calendar-scraper/internal/metrics"
	"github.com/raphaelguye/srrc-calendar-scraper/internal/scraper"
	"github.com/raphaelguye/srrc-calendar-scraper/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// app carries the state shared by the root command and its subcommands
type app struct {
	v   *viper.Viper
	cfg *config.Config
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	config.SetDefaults(a.v)

	cmd := &cobra.Command{
		Use:   "srrc-events",
		Short: "Fetch all upcoming SRRC calendar events",
		Long: `A CLI tool to fetch every upcoming event of the SRRC calendar (srrc.ch).
Scans the next months window by window, prints the unique events and saves
them as a JSON array.`,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScrape(cmd.Context(), cmd.OutOrStdout(), a.cfg)
		},
	}

	pf := cmd.PersistentFlags()
	pf.String("config", "", "Path to a YAML config file")
	pf.String("log-level", "info", "Log level: debug, info, warn or error")
	pf.String("log-format", "console", "Log format: console or json")

	f := cmd.Flags()
	f.String("endpoint", config.DefaultEndpoint, "Calendar load-more endpoint")
	f.String("user-agent", config.DefaultUserAgent, "User-Agent header sent with every request")
	f.Int("months", config.DefaultMonths, "Number of month windows to scan, starting with the current month")
	f.Int("max-offset", config.DefaultMaxOffset, "Last page offset requested per window")
	f.Duration("timeout", config.DefaultTimeout, "Timeout of a single request")
	f.Int("retries", 0, "Retries of a failed request (network errors and 5xx)")
	f.Int("concurrency", config.DefaultConcurrency, "Number of windows fetched in parallel")
	f.StringP("output", "o", config.DefaultOutput, "Path of the JSON output file")
	f.String("ics", "", "Also write the events as an iCalendar file to this path")
	f.String("metrics-file", "", "Write run metrics in Prometheus text format to this path")

	bindFlags(a.v, pf, f)

	cmd.AddCommand(newShowCmd(a), newServeCmd(a))

	return cmd
}

// bindFlags exposes every flag to viper under its config key (dashes become
// underscores).
func bindFlags(v *viper.Viper, sets ...*pflag.FlagSet) {
	for _, fs := range sets {
		fs.VisitAll(func(f *pflag.Flag) {
			_ = v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
		})
	}
}

// setup resolves the configuration and installs the default logger
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	format, err := logger.ParseFormat(cfg.LogFormat)
	if err != nil {
		return err
	}
	logger.SetDefault(logger.New(level, cmd.ErrOrStderr(), format))

	a.cfg = cfg
	return nil
}

// runScrape is the main command logic
func runScrape(ctx context.Context, w io.Writer, cfg *config.Config) error {
	started := time.Now()

	store, err := storage.New(cfg.Output)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	rec := metrics.New()
	sc := scraper.New(scraper.Options{
		Endpoint:    cfg.Endpoint,
		UserAgent:   cfg.UserAgent,
		Timeout:     cfg.Timeout,
		Retries:     cfg.Retries,
		MaxOffset:   cfg.MaxOffset,
		Concurrency: cfg.Concurrency,
		Metrics:     rec,
	})

	writeBanner(w, "SRRC Calendar Event Scraper")

	windows := scraper.Windows(started, cfg.Months)
	fmt.Fprintf(w, "🔍 Scanning %d date ranges...\n\n", len(windows))

	events, err := sc.Collect(ctx, windows)
	if err != nil {
		return fmt.Errorf("collecting events: %w", err)
	}

	if len(events) == 0 {
		fmt.Fprintln(w, "\n❌ No events found!")
		return finishMetrics(rec, cfg.MetricsFile, started)
	}

	unique := event.Dedupe(events)
	rec.UniqueEvents.Set(float64(len(unique)))

	WriteSummary(w, len(events), len(unique))
	WriteListing(w, unique)

	if err := store.Save(unique); err != nil {
		return fmt.Errorf("saving events: %w", err)
	}

	writeRule(w)
	fmt.Fprintf(w, "✅ Events saved to: %s\n", store.Path())

	if cfg.ICS != "" {
		skipped, err := calendar.WriteFile(cfg.ICS, unique, time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "📆 Calendar saved to: %s\n", cfg.ICS)
		if skipped > 0 {
			logger.Warn("Events without a start date left out of the calendar", logger.Fields{
				"skipped": skipped,
			})
		}
	}
	writeRule(w)

	return finishMetrics(rec, cfg.MetricsFile, started)
}

// finishMetrics records the run duration, logs the snapshot and writes the
// textfile when one is configured.
func finishMetrics(rec *metrics.Recorder, path string, started time.Time) error {
	rec.RunDuration.Set(time.Since(started).Seconds())

	if snapshot, err := rec.Snapshot(); err == nil {
		fields := make(logger.Fields, len(snapshot))
		for name, value := range snapshot {
			fields[name] = value
		}
		logger.Debug("Run metrics", fields)
	}

	if path == "" {
		return nil
	}
	return rec.WriteTextfile(path)
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	logger.Default().Sync()

	if err == nil {
		os.Exit(ExitSuccess)
	}
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "\n\n⚠️  Interrupted by user")
		os.Exit(ExitError)
	}
	fmt.Fprintf(os.Stderr, "\n❌ Fatal error: %v\n", err)
	os.Exit(ExitError)
}
