package core

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
)

// Extractor unpacks downloaded archives
type Extractor struct{}

// NewExtractor creates a new Extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract extracts an archive to the destination directory.
// Supports .zip and .7z.
func (e *Extractor) Extract(archivePath, destDir string) error {
	format := e.DetectFormat(archivePath)
	if format == "" {
		return fmt.Errorf("unsupported archive format: %s", filepath.Ext(archivePath))
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("creating destination directory: %w", err)
	}

	switch format {
	case "zip":
		return e.extractZip(archivePath, destDir)
	default:
		return e.extract7z(archivePath, destDir)
	}
}

// CanExtract returns true if the extractor can handle the given filename
func (e *Extractor) CanExtract(filename string) bool {
	return e.DetectFormat(filename) != ""
}

// DetectFormat returns the archive format based on filename extension
func (e *Extractor) DetectFormat(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".zip":
		return "zip"
	case ".7z":
		return "7z"
	default:
		return ""
	}
}

// archiveEntry is the subset of a zip or 7z member needed to write it out.
type archiveEntry struct {
	name  string
	isDir bool
	mode  fs.FileMode
	open  func() (io.ReadCloser, error)
}

func (e *Extractor) extractZip(archivePath, destDir string) (err error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("opening zip: %w", err)
	}
	defer func() {
		if cerr := r.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing zip: %w", cerr)
		}
	}()

	for _, f := range r.File {
		entry := archiveEntry{
			name:  f.Name,
			isDir: f.FileInfo().IsDir(),
			mode:  f.Mode(),
			open:  f.Open,
		}
		if err := e.writeEntry(entry, destDir); err != nil {
			return err
		}
	}
	return nil
}

func (e *Extractor) extract7z(archivePath, destDir string) (err error) {
	r, err := sevenzip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("opening 7z: %w", err)
	}
	defer func() {
		if cerr := r.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing 7z: %w", cerr)
		}
	}()

	for _, f := range r.File {
		entry := archiveEntry{
			name:  f.Name,
			isDir: f.FileInfo().IsDir(),
			mode:  f.Mode(),
			open:  f.Open,
		}
		if err := e.writeEntry(entry, destDir); err != nil {
			return err
		}
	}
	return nil
}

// writeEntry writes a single archive member under destDir
func (e *Extractor) writeEntry(entry archiveEntry, destDir string) (err error) {
	destPath, err := e.sanitizePath(destDir, entry.name)
	if err != nil {
		return err
	}

	if entry.isDir {
		return os.MkdirAll(destPath, 0755)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", entry.name, err)
	}

	rc, err := entry.open()
	if err != nil {
		return fmt.Errorf("opening %s in archive: %w", entry.name, err)
	}
	defer func() {
		if cerr := rc.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing archive entry %s: %w", entry.name, cerr)
		}
	}()

	perm := entry.mode.Perm()
	if perm == 0 {
		perm = 0644
	}
	outFile, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("creating file %s: %w", destPath, err)
	}
	defer func() {
		if cerr := outFile.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing file %s: %w", destPath, cerr)
		}
	}()

	if _, err = io.Copy(outFile, rc); err != nil {
		return fmt.Errorf("writing file %s: %w", destPath, err)
	}
	return nil
}

// sanitizePath resolves an archive member name under destDir, rejecting
// names such as "../../etc/passwd" that would escape it.
func (e *Extractor) sanitizePath(destDir, name string) (string, error) {
	destPath := filepath.Join(destDir, filepath.Clean(filepath.FromSlash(name)))

	root := filepath.Clean(destDir)
	if destPath != root && !strings.HasPrefix(destPath, root+string(os.PathSeparator)) {
		return "", fmt.Errorf("path traversal detected: %s", name)
	}
	return destPath, nil
}
