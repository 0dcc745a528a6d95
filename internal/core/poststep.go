package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"hcf/internal/domain"
)

// PostStep transforms a freshly downloaded file in place and returns the
// name of the resulting artifact within the same directory.
type PostStep func(downloadedPath string) (artifactName string, err error)

// PostSteps maps class IDs to the step run after download.
type PostSteps map[int]PostStep

// DefaultPostSteps returns the steps for the built-in categories.
func DefaultPostSteps(ex *Extractor) PostSteps {
	return PostSteps{
		domain.ClassWorlds: ExtractArchive(ex),
	}
}

// Apply runs the step registered for classID, if any.
func (p PostSteps) Apply(classID int, downloadedPath string) (string, error) {
	step, ok := p[classID]
	if !ok || step == nil {
		return filepath.Base(downloadedPath), nil
	}
	return step(downloadedPath)
}

// ExtractArchive unpacks an archive into a sibling directory named after the
// archive without its extension, then deletes the archive. Files the
// extractor does not recognize are left as they are.
func ExtractArchive(ex *Extractor) PostStep {
	return func(downloadedPath string) (string, error) {
		name := filepath.Base(downloadedPath)
		if !ex.CanExtract(name) {
			return name, nil
		}

		dirName := strings.TrimSuffix(name, filepath.Ext(name))
		destDir := filepath.Join(filepath.Dir(downloadedPath), dirName)

		// A previous install of the same world is replaced whole.
		if err := os.RemoveAll(destDir); err != nil {
			return "", fmt.Errorf("clearing %s: %w", dirName, err)
		}

		if err := ex.Extract(downloadedPath, destDir); err != nil {
			os.RemoveAll(destDir)
			return "", fmt.Errorf("extracting %s: %w", name, err)
		}

		if err := os.Remove(downloadedPath); err != nil {
			log.Warn().Err(err).Str("path", downloadedPath).Msg("could not remove extracted archive")
		}

		log.Debug().Str("archive", name).Str("dir", dirName).Msg("extracted archive")
		return dirName, nil
	}
}
