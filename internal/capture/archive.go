// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package capture

import (
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"time"
)

const (
	dirPerm  os.FileMode = 0o755
	filePerm os.FileMode = 0o644

	dateLayout  = "2006-01-02"
	stampLayout = "20060102_150405"
)

// Archive lays out captures as <root>/<YYYY-MM-DD>/<prefix>_<YYYYMMDD_HHMMSS>.jpg.
//
// File names have one-second resolution; two captures within the same
// second share a path and the later one overwrites the earlier.
type Archive struct {
	Root   string
	Prefix string
}

// EnsureArchiveRoot creates root if needed and makes it world-readable.
func EnsureArchiveRoot(root string) error {
	if err := os.MkdirAll(root, dirPerm); err != nil {
		return fmt.Errorf("%w: create archive root %s: %w", ErrFilesystem, root, err)
	}
	if err := os.Chmod(root, dirPerm); err != nil {
		return fmt.Errorf("%w: chmod archive root %s: %w", ErrFilesystem, root, err)
	}
	return nil
}

// DateDir returns the folder holding captures taken on t's calendar day.
func (a Archive) DateDir(t time.Time) string {
	return filepath.Join(a.Root, t.Format(dateLayout))
}

// PathFor returns the destination path for a capture taken at t.
func (a Archive) PathFor(t time.Time) string {
	name := fmt.Sprintf("%s_%s.jpg", a.Prefix, t.Format(stampLayout))
	return filepath.Join(a.DateDir(t), name)
}

// EnsureDateDir creates the date folder for t. It is a no-op when the folder
// already exists.
func (a Archive) EnsureDateDir(t time.Time) (string, error) {
	dir := a.DateDir(t)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", fmt.Errorf("%w: create %s: %w", ErrFilesystem, dir, err)
	}
	return dir, nil
}

// writeJPEG encodes img to path. A failed write leaves no partial file.
func writeJPEG(path string, img image.Image, quality int) (err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm)
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", ErrFilesystem, path, err)
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(path)
		}
	}()

	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrFilesystem, path, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("%w: sync %s: %w", ErrFilesystem, path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", ErrFilesystem, path, err)
	}
	return nil
}
