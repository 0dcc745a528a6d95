package domain

import (
	"sort"
	"time"
)

// UpdateProgressFunc is called during update checks with (current 1-based index, total count, item name).
type UpdateProgressFunc func(n, total int, name string)

// RemoteFile is one downloadable file of a remote item.
type RemoteFile struct {
	ID          int
	FileName    string
	DisplayName string
	FileDate    string // RFC 3339 as returned by the API
	FileLength  int64
	DownloadURL string
	MD5         string // hex digest, empty when the source publishes none
}

// Date parses FileDate, returning the zero time when it is empty or malformed.
func (f RemoteFile) Date() time.Time {
	t, err := time.Parse(time.RFC3339, f.FileDate)
	if err != nil {
		return time.Time{}
	}
	return t
}

// RemoteItem is a content item as described by the remote source.
type RemoteItem struct {
	ID            int
	Name          string
	Summary       string
	ClassID       int
	Authors       []string
	DownloadCount int64
	WebsiteURL    string
	ThumbnailURL  string
	DateModified  string
	LatestFiles   []RemoteFile
}

// Category returns the category the item installs into.
func (i RemoteItem) Category() Category {
	return CategoryFor(i.ClassID)
}

// LatestFile returns the file with the newest FileDate.
func LatestFile(files []RemoteFile) (RemoteFile, bool) {
	if len(files) == 0 {
		return RemoteFile{}, false
	}
	sorted := make([]RemoteFile, len(files))
	copy(sorted, files)
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].Date().After(sorted[b].Date())
	})
	return sorted[0], true
}

// RegistryEntry records one installed item in a game directory.
type RegistryEntry struct {
	ContentID int
	Name      string
	FileName  string
	FileID    *int // nil when the installed version is unknown
	FileDate  string
	ClassID   int
}

// Category returns the category the entry's artifact lives in.
func (e RegistryEntry) Category() Category {
	return CategoryFor(e.ClassID)
}

// RelativePath is the artifact path relative to the game directory.
func (e RegistryEntry) RelativePath() string {
	return e.Category().Subdir + "/" + e.FileName
}

// HasUpdate reports whether latest supersedes the recorded file version.
// Entries with an unknown file version never report an update.
func (e RegistryEntry) HasUpdate(latest RemoteFile) bool {
	if e.FileID == nil || latest.ID == 0 {
		return false
	}
	return *e.FileID != latest.ID
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}

// InstalledArtifact is an item found on disk under a category directory.
type InstalledArtifact struct {
	ClassID      int
	RelativePath string // subdir/name
	Name         string
	IsDir        bool
	SizeBytes    int64
	CreatedAt    time.Time
}

// ItemStatus is the reconciled install state of a remote item.
type ItemStatus int

const (
	StatusNotInstalled ItemStatus = iota
	StatusInstalled
	StatusUpdateAvailable
)

func (s ItemStatus) String() string {
	switch s {
	case StatusInstalled:
		return "installed"
	case StatusUpdateAvailable:
		return "update available"
	default:
		return "not installed"
	}
}

// UpdateSet maps content IDs to remote items that have a newer file.
type UpdateSet map[int]RemoteItem

// IDs returns the content IDs in ascending order.
func (u UpdateSet) IDs() []int {
	ids := make([]int, 0, len(u))
	for id := range u {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
