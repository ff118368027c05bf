// Package main provides the CLI entry point for monthsort.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"monthsort/internal/audit"
	"monthsort/internal/config"
	"monthsort/internal/orchestrator"
	"monthsort/internal/output"
)

var appVersion = "dev"

// errFilesFailed marks a run that finished but left some files unsorted.
// The summary has already been printed, so main only sets the exit code.
var errFilesFailed = errors.New("some files could not be sorted")

var (
	flagConfig   string
	flagBase     string
	flagSources  []string
	flagDest     string
	flagYear     int
	flagMode     string
	flagLogLevel string
	flagVerbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "monthsort",
	Short: "Sort dated files into month folders",
	Long: "monthsort finds files whose names carry a date, appends a -YYYYMMDD suffix\n" +
		"and files them into (MM)Mon-YYYY folders for the chosen year.",
	Version:       appVersion,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagConfig, "config", "c", "monthsort.yaml", "path to config file")
	pf.StringVar(&flagBase, "base", "", "base directory holding the month folders")
	pf.StringArrayVarP(&flagSources, "source", "s", nil, "directory to scan (repeatable)")
	pf.StringVar(&flagDest, "dest", "", "destination root (default: base)")
	pf.IntVarP(&flagYear, "year", "y", 0, "year to sort (default: config or current year)")
	pf.StringVar(&flagMode, "mode", "", "transfer mode: move or copy")
	pf.StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "verbose output")
}

// app bundles what every command needs after flags and config are merged.
type app struct {
	cfg   *config.Config
	year  int
	log   *log.Logger
	out   *output.Output
	audit *audit.AuditWriter
}

// newApp loads the config, applies command-line overrides and sets up
// logging. The audit writer is opened only when withAudit is set.
func newApp(withAudit bool) (*app, error) {
	cfg, err := config.LoadOrDefault(flagConfig)
	if err != nil {
		return nil, err
	}
	applyFlags(cfg)
	cfg.ExpandPaths()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := output.NewLogger(os.Stderr, cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	outCfg := output.DefaultConfig()
	outCfg.Verbose = flagVerbose || cfg.Log.Level == "debug"

	a := &app{
		cfg:  cfg,
		year: cfg.EffectiveYear(time.Now()),
		log:  logger,
		out:  output.New(outCfg),
	}
	if withAudit && cfg.Audit.Enabled {
		a.openAudit()
	}
	return a, nil
}

func applyFlags(cfg *config.Config) {
	if flagBase != "" {
		cfg.Base = flagBase
	}
	if len(flagSources) > 0 {
		cfg.Sources = flagSources
	}
	if flagDest != "" {
		cfg.Destination = flagDest
	}
	if flagYear != 0 {
		cfg.Year = flagYear
	}
	if flagMode != "" {
		cfg.Mode = flagMode
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
}

// auditDir resolves a relative audit directory against the base directory.
func (a *app) auditDir() string {
	dir := a.cfg.Audit.LogDirectory
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(a.cfg.Base, dir)
}

// openAudit opens the journal. A journal that cannot be opened is reported
// and the command carries on without it.
func (a *app) openAudit() {
	auditCfg := a.cfg.Audit
	auditCfg.LogDirectory = a.auditDir()
	w, err := audit.NewAuditWriter(auditCfg)
	if err != nil {
		a.log.Warn("audit journal disabled", "err", err)
		return
	}
	a.audit = w

	pruned, err := w.Prune()
	if err != nil {
		a.log.Warn("audit retention check failed", "err", err)
	} else if pruned != nil && len(pruned.PrunedSegments) > 0 {
		a.log.Info("pruned audit segments", "count", len(pruned.PrunedSegments), "bytes", pruned.TotalBytesFreed)
	}
}

func (a *app) close() {
	if a.audit == nil {
		return
	}
	if err := a.audit.Close(); err != nil {
		a.log.Warn("failed to close audit journal", "err", err)
	}
}

// orchestrator builds an orchestrator for the merged configuration.
func (a *app) orchestrator() (*orchestrator.Orchestrator, error) {
	orch, err := orchestrator.NewFromConfig(a.cfg, a.year, a.log, a.audit)
	if err != nil {
		return nil, err
	}
	opts := orch.Options()
	opts.Progress = a.out
	opts.AppVersion = appVersion
	return orchestrator.New(opts), nil
}

func (a *app) requireSources() error {
	if len(a.cfg.Sources) == 0 {
		return errors.New("no source directories: pass --source or set sources in the config")
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errFilesFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
