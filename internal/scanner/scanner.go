// Package scanner enumerates installed artifacts under a game directory.
package scanner

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode"

	"hcf/internal/domain"
)

// Scan lists candidate artifacts in every category directory, in category table order.
// Category directories that do not exist are skipped.
func Scan(gameDir string) ([]domain.InstalledArtifact, error) {
	var out []domain.InstalledArtifact
	for _, c := range domain.Categories {
		found, err := ScanCategory(gameDir, c.ClassID)
		if err != nil {
			return nil, err
		}
		out = append(out, found...)
	}
	return out, nil
}

// ScanCategory lists candidate artifacts directly under one category directory.
func ScanCategory(gameDir string, classID int) ([]domain.InstalledArtifact, error) {
	c := domain.CategoryFor(classID)
	dir := filepath.Join(gameDir, filepath.FromSlash(c.Subdir))

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var out []domain.InstalledArtifact
	for _, e := range entries {
		if !IsCandidate(e) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue // removed between ReadDir and Info
		}

		size := info.Size()
		if e.IsDir() {
			size = dirSize(filepath.Join(dir, e.Name()))
		}

		out = append(out, domain.InstalledArtifact{
			ClassID:      c.ClassID,
			RelativePath: path.Join(c.Subdir, e.Name()),
			Name:         e.Name(),
			IsDir:        e.IsDir(),
			SizeBytes:    size,
			CreatedAt:    createdAt(info),
		})
	}
	return out, nil
}

// IsCandidate reports whether a directory entry counts as an installed artifact.
func IsCandidate(e fs.DirEntry) bool {
	if e.IsDir() {
		return true
	}
	return e.Type().IsRegular() && domain.HasRecognizedExtension(e.Name())
}

func dirSize(root string) int64 {
	var total int64
	filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.Type().IsRegular() {
			if info, err := d.Info(); err == nil {
				total += info.Size()
			}
		}
		return nil
	})
	return total
}

// Normalize lowercases name and strips all whitespace.
func Normalize(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, name)
}

// Matcher decides whether a local file name belongs to a remote item name.
type Matcher func(remoteName, localName string) bool

// MatchSubstring is the default matcher: the normalized remote name is contained
// in the normalized local name. It can bind the wrong item when one name is a
// substring of another; the first match in directory order wins.
func MatchSubstring(remoteName, localName string) bool {
	remote := Normalize(remoteName)
	if remote == "" {
		return false
	}
	return strings.Contains(Normalize(localName), remote)
}

// MatchStrict requires the normalized remote name to equal the local name with
// its extension and any trailing version suffix removed.
func MatchStrict(remoteName, localName string) bool {
	remote := Normalize(remoteName)
	if remote == "" {
		return false
	}
	base := Normalize(strings.TrimSuffix(localName, filepath.Ext(localName)))
	if base == remote {
		return true
	}
	if i := strings.LastIndexAny(base, "_-"); i > 0 {
		return base[:i] == remote
	}
	return false
}

// FindLocal looks for an artifact in the item's category directory whose name
// matches remoteName. It returns the artifact's file name.
func FindLocal(gameDir string, classID int, remoteName string, match Matcher) (string, bool) {
	if match == nil {
		match = MatchSubstring
	}
	c := domain.CategoryFor(classID)
	entries, err := os.ReadDir(filepath.Join(gameDir, filepath.FromSlash(c.Subdir)))
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if IsCandidate(e) && match(remoteName, e.Name()) {
			return e.Name(), true
		}
	}
	return "", false
}

// Exists reports whether the relative artifact path exists under gameDir.
func Exists(gameDir, relPath string) bool {
	_, err := os.Lstat(filepath.Join(gameDir, filepath.FromSlash(relPath)))
	return err == nil
}
