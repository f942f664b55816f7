package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func writeArchiveFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.zip")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestResolveMissThenHit(t *testing.T) {
	logger := arbor.NewLogger()
	cacheDir := t.TempDir()
	archivePath := writeArchiveFixture(t, "archive-bytes")

	loads := 0
	loader := func(path string) (string, error) {
		loads++
		return "<HealthData/>", nil
	}

	svc := NewService(cacheDir, loader, logger)

	// First resolve: miss, loader invoked, entry persisted.
	text, hit, err := svc.Resolve(archivePath)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "<HealthData/>", text)
	assert.Equal(t, 1, loads)

	// Second resolve: hit, loader not touched.
	text, hit, err = svc.Resolve(archivePath)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "<HealthData/>", text)
	assert.Equal(t, 1, loads)
}

func TestResolveEntryFileNaming(t *testing.T) {
	logger := arbor.NewLogger()
	cacheDir := t.TempDir()
	archivePath := writeArchiveFixture(t, "archive-bytes")

	svc := NewService(cacheDir, func(string) (string, error) { return "doc", nil }, logger)

	_, _, err := svc.Resolve(archivePath)
	require.NoError(t, err)

	digest, err := DigestFile(archivePath)
	require.NoError(t, err)

	entry := filepath.Join(cacheDir, digest+cacheExtension)
	data, err := os.ReadFile(entry)
	require.NoError(t, err)
	assert.Equal(t, "doc", string(data))

	// No temp files left behind after a finalized write.
	entries, err := os.ReadDir(cacheDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestResolveLoaderErrorPropagates(t *testing.T) {
	logger := arbor.NewLogger()
	cacheDir := t.TempDir()
	archivePath := writeArchiveFixture(t, "archive-bytes")

	svc := NewService(cacheDir, func(string) (string, error) {
		return "", os.ErrNotExist
	}, logger)

	_, _, err := svc.Resolve(archivePath)
	assert.Error(t, err)

	// A failed load must not leave a cache entry behind.
	entries, readErr := os.ReadDir(cacheDir)
	if readErr == nil {
		assert.Empty(t, entries)
	}
}

func TestResolveMissingArchive(t *testing.T) {
	logger := arbor.NewLogger()
	svc := NewService(t.TempDir(), func(string) (string, error) { return "doc", nil }, logger)

	_, _, err := svc.Resolve(filepath.Join(t.TempDir(), "nope.zip"))
	assert.Error(t, err)
}

// Byte-identical inputs produce byte-identical cache keys regardless of
// file name or location.
func TestDigestFileDeterministic(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.zip")
	pathB := filepath.Join(dir, "b.zip")
	require.NoError(t, os.WriteFile(pathA, []byte("same content"), 0644))
	require.NoError(t, os.WriteFile(pathB, []byte("same content"), 0644))

	digestA, err := DigestFile(pathA)
	require.NoError(t, err)
	digestB, err := DigestFile(pathB)
	require.NoError(t, err)

	assert.Equal(t, digestA, digestB)
	assert.Len(t, digestA, 64) // 32-byte BLAKE3 digest, hex encoded

	pathC := filepath.Join(dir, "c.zip")
	require.NoError(t, os.WriteFile(pathC, []byte("different content"), 0644))
	digestC, err := DigestFile(pathC)
	require.NoError(t, err)
	assert.NotEqual(t, digestA, digestC)
}
