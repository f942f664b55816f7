package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/vitals/internal/common"
	"github.com/ternarybob/vitals/internal/models"
	"github.com/ternarybob/vitals/internal/output"
	"github.com/ternarybob/vitals/internal/pipeline"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	// Command-line flags
	configFiles  configPaths // Multiple -config flags supported
	archivePath  = flag.String("input", "", "Export archive path (overrides config)")
	archivePathI = flag.String("i", "", "Export archive path (shorthand, overrides config)")
	workerCount  = flag.Int("workers", 0, "Parallel parse workers (overrides config)")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")

	// Global state
	config *common.Config
	logger arbor.ILogger
)

func init() {
	// Register custom flag for multiple config files
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("Vitals version %s\n", common.GetVersion())
		os.Exit(0)
	}

	// Merge input flags (shorthand takes precedence)
	finalArchive := *archivePath
	if *archivePathI != "" {
		finalArchive = *archivePathI
	}

	// Startup sequence (REQUIRED ORDER):
	// 1. Load config (defaults -> file1 -> file2 -> ... -> env)
	// 2. Apply CLI overrides (highest priority)
	// 3. Initialize logger
	// 4. Print banner

	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("vitals.toml"); err == nil {
			configFiles = append(configFiles, "vitals.toml")
		}
	}

	var err error
	config, err = common.LoadFromFiles(configFiles...)
	if err != nil {
		// Use temporary logger for startup errors
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	common.ApplyFlagOverrides(config, finalArchive, *workerCount)

	logger = common.InitLogger(config)

	common.PrintBanner(common.GetVersion())

	logger.Info().
		Strs("config_files", configFiles).
		Str("archive", config.Input.ArchivePath).
		Str("cache_dir", config.Cache.Dir).
		Int("allowed_types", len(config.Parser.AllowedTypes)).
		Msg("Application configuration loaded")

	svc := pipeline.NewService(config, logger)

	result, err := svc.Run(context.Background())
	if err != nil {
		logger.Fatal().Err(err).Msg("Extraction failed")
		os.Exit(1)
	}

	tSerialize := time.Now()
	if config.Output.JSONPath != "" {
		if err := output.WriteJSON(config.Output.JSONPath, result.Records); err != nil {
			logger.Fatal().Err(err).Msg("Failed to write JSON output")
			os.Exit(1)
		}
		logger.Info().Str("path", config.Output.JSONPath).Msg("JSON output written")
	}
	if config.Output.CSVPath != "" {
		if err := output.WriteCSV(config.Output.CSVPath, result.Records); err != nil {
			logger.Fatal().Err(err).Msg("Failed to write CSV output")
			os.Exit(1)
		}
		logger.Info().Str("path", config.Output.CSVPath).Msg("CSV output written")
	}
	result.Timing.MarkPhase(models.PhaseSerialize, time.Since(tSerialize))

	logger.Info().
		Str("run_id", result.Timing.RunID).
		Int("units", result.UnitCount).
		Int("records", len(result.Records)).
		Bool("cache_hit", result.CacheHit).
		Int("total_ms", int(result.Timing.TotalMs)).
		Msg("Extraction completed")
}
