// Package main is the entry point for the speed test dashboard. It loads the
// configuration and runs the TUI, the HTTP API or one of the batch commands.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/speed-dashboard/internal/app"
	"github.com/j-veylop/speed-dashboard/internal/config"
	"github.com/j-veylop/speed-dashboard/internal/logger"
	"github.com/j-veylop/speed-dashboard/internal/server"
	"github.com/j-veylop/speed-dashboard/internal/services"
	"github.com/j-veylop/speed-dashboard/internal/ui/components"
	"github.com/j-veylop/speed-dashboard/internal/ui/tabs/breakdown"
	"github.com/j-veylop/speed-dashboard/internal/ui/tabs/dashboard"
	"github.com/j-veylop/speed-dashboard/internal/ui/tabs/info"
	"github.com/j-veylop/speed-dashboard/internal/version"
)

func main() {
	command := ""
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	var err error
	switch command {
	case "-v", "--version":
		fmt.Println(version.Info())
		return
	case "-h", "--help", "help":
		printUsage()
		return
	case "":
		err = runUI()
	case "build":
		err = runBuild()
	case "serve":
		err = runServe()
	case "summary":
		err = runSummary(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", command)
		printUsage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads the configuration, points the logger at w (or the configured
// log file) and starts the service manager. One-shot commands pass
// watch=false so no file event can trigger a second reload mid-run.
func setup(w io.Writer, watch bool) (*config.Config, *services.Manager, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg.WatchData = cfg.WatchData && watch

	logCloser, err := logger.Init(cfg.LogLevel, cfg.LogFile, w)
	if err != nil {
		return nil, nil, nil, err
	}

	svcManager, err := services.NewManager(cfg)
	if err != nil {
		_ = logCloser.Close()
		return nil, nil, nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	cleanup := func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
		_ = logCloser.Close()
	}
	return cfg, svcManager, cleanup, nil
}

// runUI runs the Bubble Tea dashboard. Logs only go to LOG_FILE so they do
// not corrupt the alternate screen.
func runUI() error {
	cfg, svcManager, cleanup, err := setup(nil, true)
	if err != nil {
		return err
	}
	defer cleanup()

	model := app.NewModel(svcManager, cfg.RefreshInterval)

	state := model.GetState()
	model.SetTabs([]app.Tab{
		dashboard.New(state),
		breakdown.New(state),
		info.New(state, cfg),
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

// runBuild parses the JSON files and writes them to the database.
func runBuild() error {
	cfg, svcManager, cleanup, err := setup(os.Stderr, false)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	n, err := svcManager.Build(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Stored %s readings in %s\n", humanize.Comma(int64(n)), cfg.DatabasePath)
	return nil
}

// runServe loads the data once and serves the HTTP API until interrupted.
func runServe() error {
	cfg, svcManager, cleanup, err := setup(os.Stderr, true)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := svcManager.Reload(ctx); err != nil {
		// Serve anyway; /health reports the missing data and /reload can retry.
		logger.Error("Initial load failed", "error", err)
	}

	return server.New(svcManager, cfg.HTTPAddr).Run(ctx)
}

// runSummary prints the all-data summary table.
func runSummary(w io.Writer) error {
	_, svcManager, cleanup, err := setup(os.Stderr, false)
	if err != nil {
		return err
	}
	defer cleanup()

	snap, err := svcManager.Reload(context.Background())
	if err != nil {
		return err
	}
	if !snap.HasData() {
		return fmt.Errorf("no readings found")
	}

	fmt.Fprintf(w, "Analyzing %s data points over %s days\n\n",
		humanize.Comma(int64(snap.Count())), humanize.Comma(int64(snap.Days)))
	fmt.Fprintln(w, components.RenderOverallTable(snap.Overall))
	if snap.Report.Skipped > 0 {
		fmt.Fprintf(w, "\n%d records skipped\n", snap.Report.Skipped)
	}
	return nil
}

// printUsage prints the command-line usage information.
func printUsage() {
	fmt.Println(`Speed Dashboard - speed test analytics

Usage:
  speeddash [command]

Commands:
  (none)          Run the terminal dashboard
  build           Parse the JSON results and store them in SQLite
  serve           Serve the HTTP API on HTTP_ADDR
  summary         Print the all-data summary table

Flags:
  -h, --help      Show this help message
  -v, --version   Show version information

Keyboard Shortcuts:
  1-3             Switch between tabs (Dashboard, Breakdown, Info)
  Tab/Shift+Tab   Navigate between tabs
  j/k, Up/Down    Scroll
  m               Cycle the charted metric
  g               Cycle the grouping (Breakdown)
  r               Reload data
  ?               Toggle help
  q, Ctrl+C       Quit

Environment Variables:
  DATA_PATH         Glob of speed test JSON files
  DATABASE_PATH     SQLite database path
  DATA_SOURCE       json or sql (default: json)
  TIMEZONE          IANA zone for calendar grouping (default: UTC)
  RECOVERY_POLICY   timestamp or skip (default: timestamp)
  PERSIST_ON_LOAD   Write parsed readings to SQLite on every load
  WATCH_DATA        Reload when new files appear (default: true)
  NOTIFY_OUTAGES    Desktop notification on lost connection
  HTTP_ADDR         API listen address (default: 127.0.0.1:8050)
  REFRESH_INTERVAL  Periodic reload in the UI (default: 5m)
  LOG_LEVEL         debug, info, warn or error (default: info)
  LOG_FILE          Append logs to this file

Configuration:
  The application looks for .env files in the following locations:
  - Current directory
  - ~/.config/speed-dashboard/.env
  - Parent directories of the current directory`)
}
