package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Input   InputConfig   `toml:"input"`
	Cache   CacheConfig   `toml:"cache"`
	Parser  ParserConfig  `toml:"parser"`
	Workers WorkersConfig `toml:"workers"`
	Output  OutputConfig  `toml:"output"`
	Logging LoggingConfig `toml:"logging"`
}

// InputConfig locates the export archive and the document inside it.
type InputConfig struct {
	ArchivePath string `toml:"archive_path" validate:"required"` // Path to the export zip
	EntryName   string `toml:"entry_name" validate:"required"`   // Document path inside the archive
}

// CacheConfig controls the decompressed-document content cache.
type CacheConfig struct {
	Dir string `toml:"dir" validate:"required"` // Cache root directory, created lazily
}

// ParserConfig controls record filtering.
type ParserConfig struct {
	AllowedTypes []string `toml:"allowed_types"`                    // Record types to keep (empty = keep all)
	RecencyDays  int      `toml:"recency_days" validate:"gte=1"`    // Sliding window size in days
}

// WorkersConfig controls parse parallelism.
type WorkersConfig struct {
	Count int `toml:"count" validate:"gte=0"` // Parallel parse workers (0 = number of CPUs)
}

// OutputConfig controls the serialized outputs. An empty path disables
// that output format.
type OutputConfig struct {
	JSONPath string `toml:"json_path"`
	CSVPath  string `toml:"csv_path"`
}

type LoggingConfig struct {
	Level      string   `toml:"level" validate:"oneof=debug info warn error"` // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`                                       // "stdout", "file"
	TimeFormat string   `toml:"time_format"`                                  // Time format for logs
}

// NewDefaultConfig creates a configuration with default values.
// The default allowed-type set matches the record types the export
// pipeline was built for; an empty config file reproduces it.
func NewDefaultConfig() *Config {
	return &Config{
		Input: InputConfig{
			ArchivePath: "./export.zip",
			EntryName:   "apple_health_export/export.xml",
		},
		Cache: CacheConfig{
			Dir: filepath.Join(os.TempDir(), "vitals_export_cache"),
		},
		Parser: ParserConfig{
			AllowedTypes: []string{
				"HKQuantityTypeIdentifierHeartRate",
				"HKCategoryTypeIdentifierHighHeartRateEvent",
				"HKQuantityTypeIdentifierRestingHeartRate",
				"HKQuantityTypeIdentifierPhysicalEffort",
				"HKQuantityTypeIdentifierBasalEnergyBurned",
				"HKQuantityTypeIdentifierActiveEnergyBurned",
				"HKQuantityTypeIdentifierDistanceWalkingRunning",
				"HKQuantityTypeIdentifierWalkingSpeed",
				"HKQuantityTypeIdentifierAppleStandTime",
				"HKQuantityTypeIdentifierAppleExerciseTime",
				"HKQuantityTypeIdentifierWalkingStepLength",
				"HKQuantityTypeIdentifierStepCount",
				"HKQuantityTypeIdentifierFlightsClimbed",
				"HKCategoryTypeIdentifierSleepAnalysis",
				"HKQuantityTypeIdentifierBodyMass",
				"HKCategoryTypeIdentifierToothbrushingEvent",
				"HKQuantityTypeIdentifierSixMinuteWalkTestDistance",
				"HKQuantityTypeIdentifierDietaryCaffeine",
				"HKQuantityTypeIdentifierDietaryWater",
			},
			RecencyDays: 365,
		},
		Workers: WorkersConfig{
			Count: 0, // 0 = number of CPUs
		},
		Output: OutputConfig{
			JSONPath: "./output.json",
			CSVPath:  "./output.csv",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05",
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority:
// default -> file1 -> file2 -> ... -> env. Later files override earlier
// files; environment variables override all files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	// Input configuration
	if path := os.Getenv("VITALS_INPUT_ARCHIVE_PATH"); path != "" {
		config.Input.ArchivePath = path
	}
	if entry := os.Getenv("VITALS_INPUT_ENTRY_NAME"); entry != "" {
		config.Input.EntryName = entry
	}

	// Cache configuration
	if dir := os.Getenv("VITALS_CACHE_DIR"); dir != "" {
		config.Cache.Dir = dir
	}

	// Parser configuration
	if types := os.Getenv("VITALS_PARSER_ALLOWED_TYPES"); types != "" {
		allowed := []string{}
		for _, t := range strings.Split(types, ",") {
			if trimmed := strings.TrimSpace(t); trimmed != "" {
				allowed = append(allowed, trimmed)
			}
		}
		config.Parser.AllowedTypes = allowed
	}
	if days := os.Getenv("VITALS_PARSER_RECENCY_DAYS"); days != "" {
		if d, err := strconv.Atoi(days); err == nil {
			config.Parser.RecencyDays = d
		}
	}

	// Workers configuration
	if count := os.Getenv("VITALS_WORKERS_COUNT"); count != "" {
		if c, err := strconv.Atoi(count); err == nil {
			config.Workers.Count = c
		}
	}

	// Output configuration
	if path := os.Getenv("VITALS_OUTPUT_JSON_PATH"); path != "" {
		config.Output.JSONPath = path
	}
	if path := os.Getenv("VITALS_OUTPUT_CSV_PATH"); path != "" {
		config.Output.CSVPath = path
	}

	// Logging configuration
	if level := os.Getenv("VITALS_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("VITALS_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, archivePath string, workers int) {
	// Command-line flags have highest priority
	if archivePath != "" {
		config.Input.ArchivePath = archivePath
	}
	if workers > 0 {
		config.Workers.Count = workers
	}
}
