// Package archive extracts the export document from the health export
// zip archive. The archive contains exactly one document of interest;
// everything else in it is ignored.
package archive

import (
	"archive/zip"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
)

// ExtractEntry opens the zip archive at path and returns the contents of
// the named entry as text. The entry is decompressed with the klauspost
// flate decoder, which is measurably faster than the stdlib on the
// multi-hundred-megabyte payloads these exports produce.
func ExtractEntry(path string, entryName string) (string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open archive %s: %w", path, err)
	}
	defer r.Close()

	r.RegisterDecompressor(zip.Deflate, func(in io.Reader) io.ReadCloser {
		return flate.NewReader(in)
	})

	var entry *zip.File
	for _, f := range r.File {
		if f.Name == entryName {
			entry = f
			break
		}
	}
	if entry == nil {
		return "", fmt.Errorf("could not find %q in archive %s", entryName, path)
	}

	rc, err := entry.Open()
	if err != nil {
		return "", fmt.Errorf("open entry %q: %w", entryName, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read entry %q: %w", entryName, err)
	}

	return string(data), nil
}
