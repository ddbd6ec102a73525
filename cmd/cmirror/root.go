package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dishar7753/cmirror/internal/backup"
	"github.com/dishar7753/cmirror/internal/catalog"
	"github.com/dishar7753/cmirror/internal/config"
	"github.com/dishar7753/cmirror/internal/mirror"
	"github.com/dishar7753/cmirror/internal/source"
	"github.com/dishar7753/cmirror/internal/store"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgPath      string
	logLevel     string
	logFormat    string
	probeTimeout time.Duration
	globalCfg    *config.Config
	logger       *slog.Logger

	// sessionID tags log lines and history records of one invocation
	sessionID string

	// Global components
	globalStore       *store.Store
	globalBackups     *backup.Store
	globalRegistry    *source.Registry
	globalBenchmarker *mirror.Benchmarker
)

// initializeComponents wires the catalog, adapters, prober and history store
func initializeComponents() error {
	if globalCfg == nil {
		return fmt.Errorf("config not loaded")
	}

	cat := catalog.Default(logger, catalog.UserPaths(globalCfg.Catalog.Path)...)
	logger.Debug("mirror catalog loaded", "source", cat.Source())

	globalBackups = backup.New(logger)
	globalRegistry = source.NewRegistry(source.Options{
		Catalog: cat,
		Backups: globalBackups,
		Logger:  logger,
		Paths:   globalCfg.ToolPaths(),
		Out:     os.Stdout,
	})

	timeout := globalCfg.Benchmark.Timeout
	if probeTimeout > 0 {
		timeout = probeTimeout
	}
	prober := mirror.NewProber(timeout, globalCfg.Benchmark.UserAgent)
	globalBenchmarker = mirror.NewBenchmarker(prober, logger)

	// History is best effort: a broken database never blocks switching mirrors
	if globalCfg.History.Enabled {
		st, err := store.New(globalCfg.HistoryDBPath(), logger)
		if err != nil {
			logger.Warn("history disabled: failed to open store", "error", err)
		} else {
			globalStore = st
		}
	}

	logger.Debug("components initialized", "timeout", timeout)
	return nil
}

// shouldSkipComponentInit checks if a command should skip component initialization
func shouldSkipComponentInit(cmdName string) bool {
	skipInitCmds := map[string]bool{
		"help":       true,
		"version":    true,
		"config":     true,
		"show":       true,
		"completion": true,
	}
	return skipInitCmds[cmdName]
}

// closeStore closes the global store connection
func closeStore() {
	if globalStore != nil {
		if err := globalStore.Close(); err != nil {
			logger.Error("failed to close store", "error", err)
		}
		globalStore = nil
	}
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cmirror",
		Short: "Benchmark and switch package manager mirrors",
		Long: `cmirror measures the latency of known mirrors for pip, npm, docker, go,
cargo, brew and apt, and switches each tool's configuration to the mirror you
pick. Every file it rewrites is backed up first and can be restored.`,
		Example: `  cmirror status
  cmirror test pip
  cmirror use npm Taobao
  cmirror use cargo --fastest
  cmirror restore pip
  cmirror history --limit 5`,
		Version:      "0.1.0",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging()

			if shouldSkipConfig(cmd.Name()) {
				return nil
			}

			if cfgPath == "" {
				var err error
				cfgPath, err = config.FindConfigFile()
				if err != nil {
					logger.Debug("config file not found, using defaults", "error", err)
				}
			}

			if cfgPath != "" {
				var err error
				globalCfg, err = config.Load(cfgPath)
				if err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
			} else {
				globalCfg = config.DefaultConfig()
			}

			if probeTimeout > 0 {
				globalCfg.Benchmark.Timeout = probeTimeout
			}

			logger.Debug("config loaded", "path", cfgPath)

			if !shouldSkipComponentInit(cmd.Name()) {
				if err := initializeComponents(); err != nil {
					return fmt.Errorf("failed to initialize components: %w", err)
				}
			}

			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			closeStore()
		},
	}

	cmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (auto-discovered if not specified)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text or json)")
	cmd.PersistentFlags().DurationVar(&probeTimeout, "timeout", 0, "per-mirror probe timeout (default from config, 3s)")

	cmd.AddCommand(
		newStatusCmd(),
		newTestCmd(),
		newUseCmd(),
		newRestoreCmd(),
		newListCmd(),
		newHistoryCmd(),
		newConfigCmd(),
	)

	return cmd
}

// setupLogging initializes the slog logger based on flags
func setupLogging() {
	var level slog.Level
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}

	var handler slog.Handler
	if strings.ToLower(logFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}

	if sessionID == "" {
		sessionID = uuid.NewString()[:8]
	}
	logger = slog.New(handler).With("session", sessionID)
	slog.SetDefault(logger)
}

// shouldSkipConfig checks if a command should skip config loading
func shouldSkipConfig(cmdName string) bool {
	skipConfigCmds := map[string]bool{
		"help":    true,
		"version": true,
	}
	return skipConfigCmds[cmdName]
}

// commandContext returns the command's context, or a background context for
// direct calls from tests
func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}

// lookupAdapter resolves a tool name against the global registry
func lookupAdapter(name string) (source.Adapter, error) {
	if globalRegistry == nil {
		return nil, fmt.Errorf("adapters not initialized")
	}
	return globalRegistry.Get(name)
}
