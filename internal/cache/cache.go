// Package cache provides a content-addressed cache for the decompressed
// export document. Entries are keyed by the BLAKE3 digest of the archive
// bytes, so a re-exported archive with identical content resolves to the
// same entry and never touches the loader again.
package cache

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"
	"github.com/zeebo/blake3"
)

// cacheExtension is appended to the hex digest to form the entry filename.
const cacheExtension = ".xml"

// LoadFunc produces the raw document text on a cache miss.
type LoadFunc func(path string) (string, error)

// Service resolves an archive path to its decompressed document text,
// loading through to the archive on a miss. The root directory is injected
// so tests can isolate each run in a temporary directory.
type Service struct {
	dir    string
	load   LoadFunc
	logger arbor.ILogger
}

// NewService creates a new content cache service rooted at dir.
func NewService(dir string, load LoadFunc, logger arbor.ILogger) *Service {
	return &Service{
		dir:    dir,
		load:   load,
		logger: logger,
	}
}

// Resolve returns the document text for the archive at path. On a hit the
// stored text is returned without invoking the loader; on a miss the
// loader runs and its result is persisted keyed by the archive's digest.
// All I/O failures are fatal for the run.
func (s *Service) Resolve(path string) (string, bool, error) {
	digest, err := DigestFile(path)
	if err != nil {
		return "", false, err
	}

	entryPath := filepath.Join(s.dir, digest+cacheExtension)

	if data, err := os.ReadFile(entryPath); err == nil {
		s.logger.Debug().
			Str("digest", digest).
			Str("path", entryPath).
			Msg("Cache hit")
		return string(data), true, nil
	}

	text, err := s.load(path)
	if err != nil {
		return "", false, err
	}

	if err := s.store(entryPath, text); err != nil {
		return "", false, err
	}

	s.logger.Debug().
		Str("digest", digest).
		Str("path", entryPath).
		Int("bytes", len(text)).
		Msg("Cache entry stored")

	return text, false, nil
}

// store writes the entry to a temp file in the cache directory and then
// renames it into place. A crashed run can never leave a partial entry
// visible at the final path.
func (s *Service) store(entryPath string, text string) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create cache directory %s: %w", s.dir, err)
	}

	tmp, err := os.CreateTemp(s.dir, filepath.Base(entryPath)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create cache temp file: %w", err)
	}

	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close cache temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), entryPath); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("finalize cache entry: %w", err)
	}

	return nil
}

// DigestFile computes the hex-encoded BLAKE3 digest of the file at path.
// The file is streamed through the hasher, so the digest is independent
// of read buffering.
func DigestFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s for hashing: %w", path, err)
	}
	defer f.Close()

	hasher := blake3.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}
