package domain

import "time"

// Actions recorded in the install history.
const (
	ActionInstall   = "install"
	ActionUpdate    = "update"
	ActionUninstall = "uninstall"
	ActionAdopt     = "adopt" // a local file bound to an item by name matching
)

// HistoryRecord is one install-history row.
type HistoryRecord struct {
	ID        string
	GameDir   string
	ContentID int
	Name      string
	Action    string
	FileID    *int
	FileName  string
	Error     string // empty on success
	At        time.Time
}

// Succeeded reports whether the recorded operation succeeded.
func (h HistoryRecord) Succeeded() bool {
	return h.Error == ""
}
