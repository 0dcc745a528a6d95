package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"hcf/internal/domain"
)

// RemoveStatus is the outcome of deleting an artifact.
type RemoveStatus int

const (
	RemoveDeleted      RemoveStatus = iota // the artifact existed and was deleted
	RemoveAlreadyClean                     // nothing was on disk
)

func (s RemoveStatus) String() string {
	if s == RemoveAlreadyClean {
		return "already clean"
	}
	return "deleted"
}

// resolvePath joins a slash-separated relative path onto gameDir and rejects
// paths that would leave it.
func resolvePath(gameDir, relPath string) (string, error) {
	root := filepath.Clean(gameDir)
	full := filepath.Join(root, filepath.FromSlash(relPath))
	if full == root || !strings.HasPrefix(full, root+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %s", domain.ErrInvalidPath, relPath)
	}
	return full, nil
}

// removeArtifact deletes a file or directory tree. A missing artifact is not an error.
func removeArtifact(gameDir, relPath string) (RemoveStatus, error) {
	full, err := resolvePath(gameDir, relPath)
	if err != nil {
		return 0, err
	}

	if _, err := os.Lstat(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return RemoveAlreadyClean, nil
		}
		return 0, fmt.Errorf("checking %s: %w", relPath, err)
	}

	if err := os.RemoveAll(full); err != nil {
		return 0, fmt.Errorf("removing %s: %w", relPath, err)
	}
	return RemoveDeleted, nil
}
