package verify

import (
	"fmt"
	"io"
	"os"
)

// spoolProbe copies the probe image to a temp file so the upload
// stream is consumed exactly once regardless of how the extractor
// reads it. cleanup is always safe to call and removes the file.
func spoolProbe(image io.Reader) (*os.File, func(), error) {
	f, err := os.CreateTemp("", "facegate-probe-*")
	if err != nil {
		return nil, func() {}, fmt.Errorf("create temp file: %w", err)
	}

	cleanup := func() {
		f.Close()
		os.Remove(f.Name())
	}

	if _, err := io.Copy(f, image); err != nil {
		cleanup()
		return nil, func() {}, fmt.Errorf("spool probe image: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		cleanup()
		return nil, func() {}, fmt.Errorf("rewind probe image: %w", err)
	}

	return f, cleanup, nil
}
