package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"hcf/internal/domain"
	"hcf/internal/metrics"
	"hcf/internal/source"
)

// InstallResult describes the artifact placed by a successful install.
type InstallResult struct {
	FileName string // artifact name inside the category directory
	FileID   int
	FileDate string
	Path     string
	Size     int64
}

// Installer downloads an item's latest file into a category directory.
// It never touches the registry.
type Installer struct {
	source     source.ContentSource
	downloader *Downloader
	steps      PostSteps
	metrics    *metrics.Metrics
}

// NewInstaller creates an installer. A nil downloader uses http.DefaultClient;
// nil steps means no post-download processing.
func NewInstaller(src source.ContentSource, downloader *Downloader, steps PostSteps, m *metrics.Metrics) *Installer {
	if downloader == nil {
		downloader = NewDownloader(nil)
	}
	return &Installer{
		source:     src,
		downloader: downloader,
		steps:      steps,
		metrics:    m,
	}
}

// ResolveLatest returns the newest remote file of an item.
func (i *Installer) ResolveLatest(ctx context.Context, contentID int) (domain.RemoteFile, error) {
	files, err := i.source.GetFiles(ctx, contentID)
	if err != nil {
		return domain.RemoteFile{}, fmt.Errorf("listing files: %w", err)
	}
	latest, ok := domain.LatestFile(files)
	if !ok {
		return domain.RemoteFile{}, fmt.Errorf("item %d: %w", contentID, domain.ErrNoFilesAvailable)
	}
	return latest, nil
}

// resolveURL prefers the URL embedded in the file record, then asks the source.
func (i *Installer) resolveURL(ctx context.Context, contentID int, file domain.RemoteFile) (string, error) {
	if file.DownloadURL != "" {
		return file.DownloadURL, nil
	}
	u, err := i.source.GetDownloadURL(ctx, contentID, file.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNoDownloadURL) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", domain.ErrNoDownloadURL, err)
	}
	if u == "" {
		return "", domain.ErrNoDownloadURL
	}
	return u, nil
}

// Install downloads the latest file of contentID into targetDir and runs the
// post-download step for classID.
func (i *Installer) Install(ctx context.Context, contentID, classID int, targetDir string, progressFn ProgressFunc) (*InstallResult, error) {
	start := time.Now()

	file, err := i.ResolveLatest(ctx, contentID)
	if err != nil {
		return nil, err
	}

	url, err := i.resolveURL(ctx, contentID, file)
	if err != nil {
		return nil, fmt.Errorf("item %d file %d: %w", contentID, file.ID, err)
	}

	fileName := filepath.Base(file.FileName)
	if fileName == "" || fileName == "." || fileName == string(filepath.Separator) || strings.HasPrefix(fileName, "..") {
		return nil, fmt.Errorf("item %d file %d: unusable file name %q", contentID, file.ID, file.FileName)
	}

	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", targetDir, err)
	}

	destPath := filepath.Join(targetDir, fileName)
	dl, err := i.downloader.Download(ctx, url, destPath, progressFn)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", fileName, err)
	}
	i.metrics.AddBytesDownloaded(dl.Size)

	if file.MD5 != "" && !strings.EqualFold(file.MD5, dl.Checksum) {
		os.Remove(destPath)
		return nil, fmt.Errorf("%w: checksum mismatch for %s (expected %s, got %s)",
			domain.ErrTransportFailure, fileName, file.MD5, dl.Checksum)
	}

	artifact, err := i.steps.Apply(classID, destPath)
	if err != nil {
		return nil, err
	}

	i.metrics.ObserveInstallDuration(time.Since(start))
	log.Debug().Int("content_id", contentID).Int("file_id", file.ID).Str("artifact", artifact).Msg("installed")

	return &InstallResult{
		FileName: artifact,
		FileID:   file.ID,
		FileDate: file.FileDate,
		Path:     filepath.Join(targetDir, artifact),
		Size:     dl.Size,
	}, nil
}
