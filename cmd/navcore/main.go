/*
Package main runs the UniNav client core as an IPC server or a debug CLI.

NavCore keeps the app's query cache honest while mutations are in flight
and powers the search bar's suggestions. It runs as a msgpack IPC server
for embedding hosts, or as an interactive CLI for testing and debugging.

# Usage

Start the server with default settings:

	navcore

Use a custom data directory and enable debug mode:

	navcore -data /path/to/store -d

Run in CLI mode for interactive testing:

	navcore -c -limit 5 -minchars 1

The data directory holds the BadgerDB store for search history and other
persisted client state. Without one, state lives in memory for the session.

# Configuration

Runtime configuration is managed through a TOML file:

	[suggest]
	max_results = 5
	min_characters = 1
	debounce_ms = 150
	enabled = true

	[cache]
	size = 512

The config file is automatically created with defaults if it doesn't exist.
The backend URL and token come from NAVCORE_API_URL and NAVCORE_API_TOKEN,
which a .env file may provide.

# IPC Protocol

The server communicates via MessagePack over stdin/stdout. Suggestion
requests are answered synchronously; mutation requests are answered after
the remote call settles, with the optimistic cache state visible to the
host throughout.

	{"id": "req1", "cmd": "suggest", "q": "csc"}
	{"id": "mut1", "cmd": "mutate", "target": "bookmark", "op": "delete", "tid": "bm-42"}

# CLI Mode

CLI mode reads partial queries from stdin and displays the ranked
suggestions with source and confidence information. Slash commands
exercise history save/clear and tab completion. This mode is primarily
intended for development; new behavior should be tested here first.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/uninav/navcore/internal/cli"
	"github.com/uninav/navcore/pkg/cache"
	cachemem "github.com/uninav/navcore/pkg/cache/memory"
	"github.com/uninav/navcore/pkg/config"
	"github.com/uninav/navcore/pkg/dictionary"
	"github.com/uninav/navcore/pkg/localstore"
	badgerstore "github.com/uninav/navcore/pkg/localstore/badger"
	memstore "github.com/uninav/navcore/pkg/localstore/memory"
	"github.com/uninav/navcore/pkg/mutation"
	"github.com/uninav/navcore/pkg/notify"
	"github.com/uninav/navcore/pkg/remote"
	"github.com/uninav/navcore/pkg/server"
	"github.com/uninav/navcore/pkg/suggest"
)

const (
	Version = "0.4.0-beta"
	AppName = "navcore"
	gh      = "https://github.com/uninav/navcore"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main calls other packages to initialize the server or CLI inputs.
// main() does not implement logic for them and only manages the flow.
func main() {
	sigHandler()
	defaultConfig := config.DefaultConfig()

	// custom Flags
	showVersion := flag.Bool("version", false, "Show current version")
	dataDir := flag.String("data", "", "Directory for persisted client state (empty runs in-memory)")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	configPath := flag.String("config", "", "Path to config.toml")
	limit := flag.Int("limit", defaultConfig.Suggest.MaxResults, "Maximum number of suggestions to return")
	minChars := flag.Int("minchars", defaultConfig.Suggest.MinCharacters, "Minimum query length for suggestions")

	flag.Parse()

	if *showVersion {
		showVersionInfo()
		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	// .env is optional; the environment itself may carry the values.
	if err := godotenv.Load(); err != nil {
		log.Debugf("No .env file loaded: %v", err)
	}

	appConfig, activePath, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
		os.Exit(1)
	}
	if activePath != "" {
		log.Debugf("Using config file: (%s)", activePath)
	}

	local := openLocalStore(*dataDir, appConfig)
	defer local.Close()

	baseURL := appConfig.Remote.BaseURL
	if env := os.Getenv("NAVCORE_API_URL"); env != "" {
		baseURL = env
	}
	client := remote.NewClient(baseURL, os.Getenv("NAVCORE_API_TOKEN"))
	if raw := os.Getenv("NAVCORE_DRIVE_KEYS"); raw != "" {
		rotator := localstore.NewKeyRotator(local, strings.Split(raw, ","))
		client.SetKeyProvider(rotator.Next)
		log.Debugf("Drive key rotation enabled, starting at index %d", rotator.Index())
	}

	store, err := buildCacheStore(appConfig.Cache.Size, client)
	if err != nil {
		log.Fatalf("Failed to init cache: %v", err)
		os.Exit(1)
	}
	executor := mutation.NewExecutor(store, client, notify.Logger{})

	history := suggest.NewHistoryStore(local, appConfig.History.MaxEntries)
	engine := suggest.NewEngine(history, dictionary.NewPrefixTable(), dictionary.NewAliasTable(), suggest.Options{
		Enabled:       appConfig.Suggest.Enabled,
		MinCharacters: appConfig.Suggest.MinCharacters,
	})

	opts := suggest.Options{
		Enabled:       appConfig.Suggest.Enabled,
		MinCharacters: *minChars,
		MaxResults:    *limit,
	}

	// CLI would be mainly used for testing and dbg purposes.
	// Any new features or changes should be tested in CLI mode first.
	if *cliMode {
		log.SetReportTimestamp(false)
		log.Debug("Input info:",
			"minChars", *minChars,
			"limit", *limit,
			"debounceMS", appConfig.Suggest.DebounceMS)

		handler := cli.NewInputHandler(engine, opts, 120, time.Duration(appConfig.Suggest.DebounceMS)*time.Millisecond)
		if err := handler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
			os.Exit(1)
		}
		return
	}

	log.Debug("spawning IPC")
	srv := server.NewServer(engine, executor, opts)

	showStartupInfo(*dataDir, baseURL)

	if err := srv.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
		os.Exit(1)
	}
}

// buildCacheStore creates the query cache and registers the refetcher that
// reconciles stale entries against the backend.
func buildCacheStore(size int, client *remote.Client) (*cachemem.Store, error) {
	store, err := cachemem.New(size)
	if err != nil {
		return nil, err
	}
	store.SetRefetcher(func(ctx context.Context, key cache.Key) (any, error) {
		switch {
		case key.String() == "bookmarks":
			return client.ListBookmarks(ctx)
		case key.String() == "materials":
			return client.ListMaterials(ctx, "")
		case len(key) == 2 && key[0] == "materials":
			return client.ListMaterials(ctx, key[1])
		case key.String() == "courses":
			return client.ListCourses(ctx)
		case len(key) == 3 && key[0] == "departments" && key[2] == "courses":
			return client.ListDepartmentCourses(ctx, key[1])
		}
		return nil, fmt.Errorf("no refetch source for %q", key.String())
	})
	return store, nil
}

// openLocalStore opens BadgerDB under the data dir, or falls back to the
// in-memory store so the app still runs without persistence.
func openLocalStore(dataDir string, appConfig *config.Config) localstore.Store {
	if dataDir == "" {
		dataDir = appConfig.History.DataDir
	}
	if dataDir == "" {
		log.Warn("No data dir specified, history will not persist across sessions")
		return memstore.New()
	}

	store, err := badgerstore.New(&badgerstore.Config{DataDir: dataDir})
	if err != nil {
		log.Warnf("Failed to open local store at %s: %v. Falling back to in-memory.", dataDir, err)
		return memstore.New()
	}
	log.Debugf("Using data dir at: %s", dataDir)
	return store
}

// showVersionInfo prints the styled version banner.
func showVersionInfo() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()

	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})

	logger.SetStyles(styles)

	logger.Print("")
	logger.Print("[ NavCore ] Optimistic cache + smart search for UniNav")
	logger.Print("", "version", Version)
	logger.Print("")
	logger.Print("use -h or --help to see available options")
	logger.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(dataDir, baseURL string) {
	pid := os.Getpid()
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	println("===========")
	println("  NavCore  ")
	println("===========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", pid)
	log.Info("init: OK")
	if dataDir != "" {
		log.Infof("data dir: ( %s )", dataDir)
	}
	log.Infof("backend: ( %s )", baseURL)
	log.Info("status: ready")
	println("===========")
	println("Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
