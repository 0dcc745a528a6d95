package core

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"hcf/internal/domain"
)

// DownloadProgress represents the current state of a download
type DownloadProgress struct {
	TotalBytes int64   // Total size in bytes (0 if unknown)
	Downloaded int64   // Bytes downloaded so far
	Percentage float64 // Completion percentage (0-100), only set when TotalBytes is known
}

// ProgressFunc is called periodically during download with progress updates
type ProgressFunc func(DownloadProgress)

// DownloadResult contains the outcome of a download
type DownloadResult struct {
	Path     string // Final file path
	Size     int64  // Bytes downloaded
	Checksum string // MD5 hash of downloaded file
}

const (
	defaultMaxAttempts = 3
	retryBackoff       = 200 * time.Millisecond
)

// Downloader streams remote files to disk with progress tracking
type Downloader struct {
	httpClient  *http.Client
	maxAttempts int
}

// NewDownloader creates a new Downloader with the given HTTP client
// If httpClient is nil, http.DefaultClient is used
func NewDownloader(httpClient *http.Client) *Downloader {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Downloader{
		httpClient:  httpClient,
		maxAttempts: defaultMaxAttempts,
	}
}

// Download fetches url into destPath. The file is written to destPath+".tmp"
// and renamed on success, so destPath is either replaced whole or untouched.
// Network and HTTP status failures wrap domain.ErrTransportFailure. Connection
// errors and 5xx responses are retried before any body bytes are read.
func (d *Downloader) Download(ctx context.Context, url, destPath string, progressFn ProgressFunc) (*DownloadResult, error) {
	var lastErr error
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		result, retry, err := d.downloadOnce(ctx, url, destPath, progressFn)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !retry || ctx.Err() != nil {
			break
		}

		log.Debug().Err(err).Int("attempt", attempt).Msg("download failed, retrying")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryBackoff * time.Duration(attempt)):
		}
	}
	return nil, lastErr
}

func (d *Downloader) downloadOnce(ctx context.Context, url, destPath string, progressFn ProgressFunc) (*DownloadResult, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("creating request: %w", err)
	}

	log.Debug().Str("url", url).Str("dest", destPath).Msg("downloading")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("%w: %w", domain.ErrTransportFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode >= 500, fmt.Errorf("%w: HTTP %s", domain.ErrTransportFailure, resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return nil, false, fmt.Errorf("creating directory: %w", err)
	}

	tempPath := destPath + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return nil, false, fmt.Errorf("creating file: %w", err)
	}
	defer func() {
		file.Close()
		os.Remove(tempPath) // no-op after a successful rename
	}()

	hasher := md5.New()
	reader := &progressReader{
		reader:     resp.Body,
		totalBytes: resp.ContentLength,
		progressFn: progressFn,
	}

	written, err := io.Copy(file, io.TeeReader(reader, hasher))
	if err != nil {
		return nil, false, fmt.Errorf("%w: reading body: %w", domain.ErrTransportFailure, err)
	}

	if err := file.Close(); err != nil {
		return nil, false, fmt.Errorf("closing file: %w", err)
	}

	if err := os.Rename(tempPath, destPath); err != nil {
		return nil, false, fmt.Errorf("renaming file: %w", err)
	}

	return &DownloadResult{
		Path:     destPath,
		Size:     written,
		Checksum: hex.EncodeToString(hasher.Sum(nil)),
	}, false, nil
}

// progressReader wraps an io.Reader to track download progress
type progressReader struct {
	reader     io.Reader
	totalBytes int64
	downloaded int64
	progressFn ProgressFunc
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	if n > 0 {
		r.downloaded += int64(n)
		if r.progressFn != nil {
			progress := DownloadProgress{
				TotalBytes: r.totalBytes,
				Downloaded: r.downloaded,
			}
			if r.totalBytes > 0 {
				progress.Percentage = float64(r.downloaded) / float64(r.totalBytes) * 100
			} else {
				progress.TotalBytes = 0
			}
			r.progressFn(progress)
		}
	}
	return n, err
}
