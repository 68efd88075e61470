// Package cmd parses flags and starts the viewer in one of its modes.
package cmd

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/grissess/gscope/config"
	"github.com/grissess/gscope/engine"
	"github.com/grissess/gscope/gview"
	"github.com/grissess/gscope/model"
	"github.com/grissess/gscope/store"
	"github.com/grissess/gscope/ui"
)

// Version is set at build time via ldflags.
var Version = "0.2.0"

func printUsage() {
	fmt.Fprintf(os.Stderr, `gscope v%s - graph viewer for glosco connection-state databases

Usage:
  gscope [OPTIONS] [DATABASE]

Modes:
  (default)         Windowed graph view (drag hosts, edges fade with age)
  -tui              Terminal UI (connection table + ident interest page)
  -watch            Print the classified connection table with auto-refresh
  -json             Single classified snapshot to stdout, then exit
  -idents           List every reporting ident in the store, then exit
  -version          Print version and exit

Options:
  -db PATH          State database path (default: glosco.db)
  -config PATH      YAML config file
  -interest A,B     Only show rows reported by these idents (empty = all)
  -interval N       Poll period in milliseconds (default: 250)
  -history N        Fade window for ended connections, seconds (default: 5)
  -count N          Iterations for -watch mode (0 = infinite, default: 0)

Positional:
  DATABASE          First positional arg sets the database path

Examples:
  gscope                          Graph view of ./glosco.db
  gscope /var/lib/glosco.db       Graph view of a server database
  gscope -tui -interest web,dns   Terminal view of two reporters
  gscope -watch -count 10         Ten refreshes of the CLI table
  gscope -json | jq '.[].state'
`, Version)
}

// Run parses flags and starts the application.
func Run() error {
	var (
		dbPath      string
		configPath  string
		interest    string
		intervalMS  int
		history     float64
		tuiMode     bool
		watchMode   bool
		jsonMode    bool
		identsMode  bool
		watchCount  int
		showVersion bool
	)

	flag.StringVar(&dbPath, "db", "", "State database path")
	flag.StringVar(&configPath, "config", "", "YAML config file")
	flag.StringVar(&interest, "interest", "", "Comma-separated idents of interest (empty = all)")
	flag.IntVar(&intervalMS, "interval", 0, "Poll period in milliseconds")
	flag.Float64Var(&history, "history", 0, "Fade window in seconds")
	flag.BoolVar(&tuiMode, "tui", false, "Terminal UI mode")
	flag.BoolVar(&watchMode, "watch", false, "CLI output mode (prints to terminal)")
	flag.BoolVar(&jsonMode, "json", false, "Output a single classified snapshot and exit")
	flag.BoolVar(&identsMode, "idents", false, "List reporting idents and exit")
	flag.IntVar(&watchCount, "count", 0, "Iterations for -watch (0=infinite)")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")

	flag.Usage = printUsage
	flag.Parse()

	if showVersion {
		fmt.Printf("gscope v%s\n", Version)
		return nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// Flags and the positional database path override the config file.
	if args := flag.Args(); len(args) > 0 {
		cfg.Database = args[0]
	}
	if dbPath != "" {
		cfg.Database = dbPath
	}
	if intervalMS > 0 {
		cfg.UpdateMS = intervalMS
	}
	if history > 0 {
		cfg.HistorySec = history
	}
	if interest != "" {
		cfg.Idents = nil
		for _, id := range strings.Split(interest, ",") {
			if id = strings.TrimSpace(id); id != "" {
				cfg.Idents = append(cfg.Idents, id)
			}
		}
	}

	st := store.New()
	if err := st.SetInterest(cfg.Idents); err != nil {
		return err
	}
	// A missing or broken store is not fatal: the viewer starts empty and
	// retries when the file shows up.
	if err := st.Open(cfg.Database); err != nil {
		log.Printf("warning: %v", err)
	}
	defer st.Close()

	poller := engine.NewPoller(st,
		time.Duration(cfg.UpdateMS)*time.Millisecond, cfg.HistorySec)

	if identsMode {
		return runIdents(st)
	}
	if jsonMode {
		return runJSON(poller)
	}
	if watchMode {
		return runWatch(st, poller, watchCount)
	}

	watcher, err := store.WatchPath(cfg.Database)
	if err != nil {
		log.Printf("warning: cannot watch %s: %v", cfg.Database, err)
		watcher = nil
	} else {
		defer watcher.Stop()
	}

	if tuiMode {
		return ui.Run(st, poller, watcher)
	}

	return gview.Run(gview.Options{
		Store:   st,
		Poller:  poller,
		Palette: model.DefaultPalette(),
		Watcher: watcher,
		Width:   cfg.Width,
		Height:  cfg.Height,
	})
}

func runIdents(st *store.Store) error {
	idents, err := st.DistinctIdents()
	if err != nil {
		return err
	}
	if len(idents) == 0 && !st.Available() {
		return fmt.Errorf("no store at %s", st.Path())
	}
	for _, id := range idents {
		fmt.Println(id)
	}
	return nil
}
