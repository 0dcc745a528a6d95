package views

import (
	"hcf/internal/core"
	"hcf/internal/domain"
)

// Requests emitted by views and carried out by the app.

// SearchRequestMsg asks for a search. Page is zero-based.
type SearchRequestMsg struct {
	Query   string
	ClassID int
	Page    int
}

// SearchResultsMsg contains reconciled search results
type SearchResultsMsg struct {
	States []core.ItemState
	Total  int
	Page   int
}

// SearchErrorMsg indicates a search error
type SearchErrorMsg struct {
	Err error
}

// InstallRequestMsg is sent when the user wants to install an item
type InstallRequestMsg struct {
	State core.ItemState
}

// UninstallRequestMsg removes a registered item by content ID.
type UninstallRequestMsg struct {
	ContentID int
	Name      string
}

// RemovePathRequestMsg removes an artifact no registry entry owns.
type RemovePathRequestMsg struct {
	RelativePath string
}

// RefreshRequestMsg asks for the installed list to be rescanned.
type RefreshRequestMsg struct{}

// CheckUpdatesRequestMsg asks for an update check over the registry.
type CheckUpdatesRequestMsg struct{}

// UpdateAllRequestMsg asks to update every item with a pending update.
type UpdateAllRequestMsg struct{}

// InstalledLoadedMsg carries a fresh scan of the game directory.
type InstalledLoadedMsg struct {
	Items   []core.InstalledItem
	Missing []domain.RegistryEntry
	Err     error
}
