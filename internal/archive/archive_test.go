package archive

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeZipFixture(t *testing.T, entries map[string]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "export.zip")
	f, err := os.Create(path)
	require.NoError(t, err)

	w := zip.NewWriter(f)
	for name, content := range entries {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	return path
}

func TestExtractEntry(t *testing.T) {
	path := writeZipFixture(t, map[string]string{
		"apple_health_export/export.xml": "<HealthData><Record type=\"A\"/></HealthData>",
		"apple_health_export/export_cda.xml": "<ClinicalDocument/>",
	})

	text, err := ExtractEntry(path, "apple_health_export/export.xml")

	require.NoError(t, err)
	assert.Equal(t, "<HealthData><Record type=\"A\"/></HealthData>", text)
}

func TestExtractEntryMissing(t *testing.T) {
	path := writeZipFixture(t, map[string]string{
		"something_else.txt": "hello",
	})

	_, err := ExtractEntry(path, "apple_health_export/export.xml")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "apple_health_export/export.xml")
}

func TestExtractEntryArchiveMissing(t *testing.T) {
	_, err := ExtractEntry(filepath.Join(t.TempDir(), "missing.zip"), "export.xml")
	assert.Error(t, err)
}

func TestExtractEntryNotAZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not.zip")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0644))

	_, err := ExtractEntry(path, "export.xml")
	assert.Error(t, err)
}
