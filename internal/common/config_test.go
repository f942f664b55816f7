package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	assert.Equal(t, "./export.zip", config.Input.ArchivePath)
	assert.Equal(t, "apple_health_export/export.xml", config.Input.EntryName)
	assert.Equal(t, 365, config.Parser.RecencyDays)
	assert.Equal(t, 0, config.Workers.Count)
	assert.NotEmpty(t, config.Parser.AllowedTypes)
	assert.Contains(t, config.Parser.AllowedTypes, "HKQuantityTypeIdentifierHeartRate")
	assert.NoError(t, config.Validate())
}

func TestLoadFromFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vitals.toml")
	content := `
[input]
archive_path = "/data/export.zip"

[parser]
allowed_types = ["HKQuantityTypeIdentifierStepCount"]
recency_days = 90

[workers]
count = 8
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := LoadFromFiles(path)

	require.NoError(t, err)
	assert.Equal(t, "/data/export.zip", config.Input.ArchivePath)
	assert.Equal(t, []string{"HKQuantityTypeIdentifierStepCount"}, config.Parser.AllowedTypes)
	assert.Equal(t, 90, config.Parser.RecencyDays)
	assert.Equal(t, 8, config.Workers.Count)
	// Untouched sections keep their defaults.
	assert.Equal(t, "apple_health_export/export.xml", config.Input.EntryName)
}

func TestLoadFromFilesLaterOverridesEarlier(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.toml")
	override := filepath.Join(dir, "override.toml")
	require.NoError(t, os.WriteFile(base, []byte("[workers]\ncount = 2\n"), 0644))
	require.NoError(t, os.WriteFile(override, []byte("[workers]\ncount = 6\n"), 0644))

	config, err := LoadFromFiles(base, override)

	require.NoError(t, err)
	assert.Equal(t, 6, config.Workers.Count)
}

func TestLoadFromFilesMissingFile(t *testing.T) {
	_, err := LoadFromFiles(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("VITALS_INPUT_ARCHIVE_PATH", "/env/export.zip")
	t.Setenv("VITALS_PARSER_ALLOWED_TYPES", "A, B ,C")
	t.Setenv("VITALS_PARSER_RECENCY_DAYS", "30")
	t.Setenv("VITALS_WORKERS_COUNT", "3")
	t.Setenv("VITALS_LOG_LEVEL", "debug")

	config, err := LoadFromFiles()

	require.NoError(t, err)
	assert.Equal(t, "/env/export.zip", config.Input.ArchivePath)
	assert.Equal(t, []string{"A", "B", "C"}, config.Parser.AllowedTypes)
	assert.Equal(t, 30, config.Parser.RecencyDays)
	assert.Equal(t, 3, config.Workers.Count)
	assert.Equal(t, "debug", config.Logging.Level)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty archive path", func(c *Config) { c.Input.ArchivePath = "" }},
		{"empty entry name", func(c *Config) { c.Input.EntryName = "" }},
		{"zero recency days", func(c *Config) { c.Parser.RecencyDays = 0 }},
		{"negative workers", func(c *Config) { c.Workers.Count = -1 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := NewDefaultConfig()
			tt.mutate(config)
			assert.Error(t, config.Validate())
		})
	}
}

func TestApplyFlagOverrides(t *testing.T) {
	config := NewDefaultConfig()

	ApplyFlagOverrides(config, "/cli/export.zip", 12)
	assert.Equal(t, "/cli/export.zip", config.Input.ArchivePath)
	assert.Equal(t, 12, config.Workers.Count)

	// Empty flag values leave config untouched.
	ApplyFlagOverrides(config, "", 0)
	assert.Equal(t, "/cli/export.zip", config.Input.ArchivePath)
	assert.Equal(t, 12, config.Workers.Count)
}
