package core

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"hcf/internal/domain"
	"hcf/internal/registry"
	"hcf/internal/scanner"
)

// ItemState is the reconciled local state of one remote item.
type ItemState struct {
	Item         domain.RemoteItem
	Status       domain.ItemStatus
	Entry        *domain.RegistryEntry
	Latest       *domain.RemoteFile
	RelativePath string // artifact path under the game directory, empty if unknown
	OnDisk       bool
	Conflict     bool // a local file matched but is owned by another item
	Adopted      bool // a local file was bound to the item during this pass
}

// Installed reports whether the item counts as installed.
func (s ItemState) Installed() bool {
	return s.Status != domain.StatusNotInstalled
}

// Reconciler derives install status from the registry, the filesystem and
// remote metadata. Items with no registry entry are matched against local
// files by name, and a unique match is recorded in the registry.
type Reconciler struct {
	gameDir  string
	registry *registry.Store
	match    scanner.Matcher
	onAdopt  func(domain.RegistryEntry)
}

// NewReconciler creates a reconciler. A nil matcher uses scanner.MatchSubstring.
func NewReconciler(gameDir string, reg *registry.Store, match scanner.Matcher) *Reconciler {
	if match == nil {
		match = scanner.MatchSubstring
	}
	return &Reconciler{
		gameDir:  gameDir,
		registry: reg,
		match:    match,
	}
}

// Resolve reconciles a list of remote items in order.
func (r *Reconciler) Resolve(items []domain.RemoteItem) []ItemState {
	out := make([]ItemState, len(items))
	for i, item := range items {
		out[i] = r.ResolveOne(item)
	}
	return out
}

// ResolveOne reconciles a single remote item.
func (r *Reconciler) ResolveOne(item domain.RemoteItem) ItemState {
	state := ItemState{Item: item, Status: domain.StatusNotInstalled}
	if latest, ok := domain.LatestFile(item.LatestFiles); ok {
		state.Latest = &latest
	}

	if entry, ok := r.registry.Get(item.ID); ok {
		state.Entry = &entry
		state.Status = domain.StatusInstalled
		state.RelativePath = entry.RelativePath()
		state.OnDisk = scanner.Exists(r.gameDir, state.RelativePath)
		if state.Latest != nil && entry.HasUpdate(*state.Latest) {
			state.Status = domain.StatusUpdateAvailable
		}
		return state
	}

	classID := item.ClassID
	if !domain.KnownClass(classID) {
		classID = domain.DefaultClassID
	}

	name, ok := scanner.FindLocal(r.gameDir, classID, item.Name, r.match)
	if !ok {
		return state
	}

	if owner, owned := r.registry.FindByFileName(name); owned && owner.ContentID != item.ID {
		log.Debug().
			Err(fmt.Errorf("%s: %w", name, domain.ErrOwnershipConflict)).
			Int("content_id", item.ID).
			Int("owner", owner.ContentID).
			Msg("local match refused")
		state.Conflict = true
		return state
	}

	entry := domain.RegistryEntry{
		ContentID: item.ID,
		Name:      item.Name,
		FileName:  name,
		ClassID:   classID,
	}
	if err := r.registry.Add(entry); err != nil {
		log.Error().Err(err).Int("content_id", item.ID).Msg("saving adopted registry entry")
	}
	if r.onAdopt != nil {
		r.onAdopt(entry)
	}

	state.Entry = &entry
	state.Status = domain.StatusInstalled
	state.RelativePath = entry.RelativePath()
	state.OnDisk = true
	state.Adopted = true
	return state
}
