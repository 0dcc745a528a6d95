package core

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"hcf/internal/domain"
	"hcf/internal/metrics"
	"hcf/internal/registry"
	"hcf/internal/scanner"
	"hcf/internal/source"
)

// Journal records completed operations.
type Journal interface {
	RecordAction(rec domain.HistoryRecord) error
}

// ItemCache stores remote item metadata seen during a session.
type ItemCache interface {
	CacheItems(items []domain.RemoteItem) error
}

// Session binds one game directory to a content source. All mutating
// operations are serialized; the registry is saved after each one.
type Session struct {
	mu sync.Mutex

	gameDir    string
	source     source.ContentSource
	registry   *registry.Store
	installer  *Installer
	updater    *Updater
	reconciler *Reconciler

	journal Journal
	cache   ItemCache
	metrics *metrics.Metrics

	updates domain.UpdateSet // from the last CheckUpdates, nil before
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithJournal records every install, update and removal.
func WithJournal(j Journal) SessionOption {
	return func(s *Session) { s.journal = j }
}

// WithItemCache stores remote metadata returned by searches and lookups.
func WithItemCache(c ItemCache) SessionOption {
	return func(s *Session) { s.cache = c }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) SessionOption {
	return func(s *Session) { s.metrics = m }
}

// WithDownloader overrides the HTTP downloader.
func WithDownloader(d *Downloader) SessionOption {
	return func(s *Session) { s.installer.downloader = d }
}

// WithMatcher overrides the local file name matcher.
func WithMatcher(m scanner.Matcher) SessionOption {
	return func(s *Session) {
		if m != nil {
			s.reconciler.match = m
		}
	}
}

// NewSession loads the registry for gameDir.
func NewSession(gameDir string, src source.ContentSource, opts ...SessionOption) (*Session, error) {
	if gameDir == "" {
		return nil, domain.ErrGameDirNotSet
	}
	gameDir = filepath.Clean(gameDir)
	reg := registry.Load(gameDir)

	s := &Session{
		gameDir:    gameDir,
		source:     src,
		registry:   reg,
		installer:  NewInstaller(src, nil, DefaultPostSteps(NewExtractor()), nil),
		updater:    NewUpdater(src),
		reconciler: NewReconciler(gameDir, reg, nil),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.installer.metrics = s.metrics
	s.reconciler.onAdopt = func(e domain.RegistryEntry) {
		s.record(domain.ActionAdopt, e.ContentID, e.Name, e.FileID, e.FileName, nil)
	}
	s.metrics.SetRegistryEntries(reg.Len())
	return s, nil
}

// GameDir returns the game directory.
func (s *Session) GameDir() string {
	return s.gameDir
}

// Registry returns the registry store.
func (s *Session) Registry() *registry.Store {
	return s.registry
}

// Source returns the content source.
func (s *Session) Source() source.ContentSource {
	return s.source
}

// CategoryDir returns the absolute directory for a class ID.
func (s *Session) CategoryDir(classID int) string {
	return filepath.Join(s.gameDir, filepath.FromSlash(domain.CategoryFor(classID).Subdir))
}

// Search queries the source and reconciles each result.
func (s *Session) Search(ctx context.Context, q source.SearchQuery) ([]ItemState, source.SearchResult, error) {
	res, err := s.source.Search(ctx, q)
	if err != nil {
		return nil, res, err
	}
	s.cacheItems(res.Items)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reconciler.Resolve(res.Items), res, nil
}

// Lookup fetches one item and reconciles it.
func (s *Session) Lookup(ctx context.Context, contentID int) (ItemState, error) {
	item, err := s.source.GetItem(ctx, contentID)
	if err != nil {
		return ItemState{}, err
	}
	s.cacheItems([]domain.RemoteItem{*item})

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reconciler.ResolveOne(*item), nil
}

// Install fetches item metadata and installs its latest file.
func (s *Session) Install(ctx context.Context, contentID int, progressFn ProgressFunc) (domain.RegistryEntry, error) {
	item, err := s.source.GetItem(ctx, contentID)
	if err != nil {
		return domain.RegistryEntry{}, fmt.Errorf("looking up item %d: %w", contentID, err)
	}
	s.cacheItems([]domain.RemoteItem{*item})
	return s.InstallItem(ctx, *item, progressFn)
}

// InstallItem installs the latest file of item and records it. An existing
// entry for the item is replaced; its old artifact is removed if the new one
// has a different name.
func (s *Session) InstallItem(ctx context.Context, item domain.RemoteItem, progressFn ProgressFunc) (domain.RegistryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	classID := item.ClassID
	if !domain.KnownClass(classID) {
		classID = domain.DefaultClassID
	}

	prev, hadPrev := s.registry.Get(item.ID)

	result, err := s.installer.Install(ctx, item.ID, classID, s.CategoryDir(classID), progressFn)
	s.metrics.ObserveOperation(domain.ActionInstall, err)
	if err != nil {
		s.record(domain.ActionInstall, item.ID, item.Name, nil, "", err)
		return domain.RegistryEntry{}, err
	}

	entry := domain.RegistryEntry{
		ContentID: item.ID,
		Name:      item.Name,
		FileName:  result.FileName,
		FileID:    domain.IntPtr(result.FileID),
		FileDate:  result.FileDate,
		ClassID:   classID,
	}
	if err := s.commit(entry); err != nil {
		return domain.RegistryEntry{}, err
	}

	if hadPrev && prev.RelativePath() != entry.RelativePath() {
		if _, err := removeArtifact(s.gameDir, prev.RelativePath()); err != nil {
			log.Warn().Err(err).Str("path", prev.RelativePath()).Msg("could not remove replaced artifact")
		}
	}

	s.record(domain.ActionInstall, entry.ContentID, entry.Name, entry.FileID, entry.FileName, nil)
	return entry, nil
}

// Update replaces an installed item with its latest remote file: the old
// artifact is deleted, the new one downloaded, then the entry overwritten.
// A failure after the delete leaves the entry untouched and the artifact gone.
func (s *Session) Update(ctx context.Context, contentID int, progressFn ProgressFunc) (domain.RegistryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.registry.Get(contentID)
	if !ok {
		err := fmt.Errorf("item %d: %w", contentID, domain.ErrNotFoundLocally)
		s.metrics.ObserveOperation(domain.ActionUpdate, err)
		return domain.RegistryEntry{}, err
	}

	if _, err := removeArtifact(s.gameDir, entry.RelativePath()); err != nil {
		s.metrics.ObserveOperation(domain.ActionUpdate, err)
		s.record(domain.ActionUpdate, entry.ContentID, entry.Name, entry.FileID, entry.FileName, err)
		return entry, err
	}

	result, err := s.installer.Install(ctx, contentID, entry.ClassID, s.CategoryDir(entry.ClassID), progressFn)
	s.metrics.ObserveOperation(domain.ActionUpdate, err)
	if err != nil {
		s.record(domain.ActionUpdate, entry.ContentID, entry.Name, entry.FileID, entry.FileName, err)
		return entry, err
	}

	entry.FileName = result.FileName
	entry.FileID = domain.IntPtr(result.FileID)
	entry.FileDate = result.FileDate
	if err := s.commit(entry); err != nil {
		return entry, err
	}

	s.record(domain.ActionUpdate, entry.ContentID, entry.Name, entry.FileID, entry.FileName, nil)
	return entry, nil
}

// Uninstall deletes an item's artifact, if present, and its registry entry.
func (s *Session) Uninstall(contentID int) (RemoveStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.registry.Get(contentID)
	if !ok {
		return 0, fmt.Errorf("item %d: %w", contentID, domain.ErrNotFoundLocally)
	}
	return s.removeLocked(entry.RelativePath(), &entry)
}

// RemovePath deletes the artifact at a game-relative path and, if a registry
// entry owns it, that entry too.
func (s *Session) RemovePath(relPath string) (RemoveStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var owner *domain.RegistryEntry
	if e, ok := s.registry.FindByRelativePath(relPath); ok {
		owner = &e
	}
	return s.removeLocked(relPath, owner)
}

func (s *Session) removeLocked(relPath string, entry *domain.RegistryEntry) (RemoveStatus, error) {
	status, err := removeArtifact(s.gameDir, relPath)
	s.metrics.ObserveOperation(domain.ActionUninstall, err)
	if err != nil {
		if entry != nil {
			s.record(domain.ActionUninstall, entry.ContentID, entry.Name, entry.FileID, entry.FileName, err)
		}
		return 0, err
	}

	if entry != nil {
		if err := s.registry.Remove(entry.ContentID); err != nil {
			return status, fmt.Errorf("saving registry: %w", err)
		}
		delete(s.updates, entry.ContentID)
		s.metrics.SetRegistryEntries(s.registry.Len())
		s.record(domain.ActionUninstall, entry.ContentID, entry.Name, entry.FileID, entry.FileName, nil)
	}

	log.Debug().Str("path", relPath).Stringer("status", status).Msg("removed artifact")
	return status, nil
}

// CheckUpdates scans every registry entry against the source and caches the
// resulting set for Updates. Per-item failures are returned joined alongside
// a usable set.
func (s *Session) CheckUpdates(ctx context.Context, progressFn domain.UpdateProgressFunc) (domain.UpdateSet, error) {
	updates, err := s.updater.CheckUpdates(ctx, s.registry.Entries(), progressFn)

	s.mu.Lock()
	s.updates = updates
	s.mu.Unlock()

	s.metrics.SetUpdatesAvailable(len(updates))
	return updates, err
}

// Updates returns a copy of the last computed update set, or nil if no check ran.
func (s *Session) Updates() domain.UpdateSet {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.updates == nil {
		return nil
	}
	out := make(domain.UpdateSet, len(s.updates))
	for id, item := range s.updates {
		out[id] = item
	}
	return out
}

// RunUpdates updates ids one at a time and reports the batch outcome.
func (s *Session) RunUpdates(ctx context.Context, ids []int, obs BatchObserver) BatchReport {
	seq := NewSequencer(func(ctx context.Context, id int, progressFn ProgressFunc) (string, error) {
		entry, err := s.Update(ctx, id, progressFn)
		return entry.Name, err
	}, s.metrics)
	return seq.Run(ctx, ids, obs)
}

// InstalledItem pairs an on-disk artifact with the registry entry owning it.
type InstalledItem struct {
	Artifact        domain.InstalledArtifact
	Entry           *domain.RegistryEntry
	UpdateAvailable bool
}

// Installed scans the game directory and matches artifacts to the registry by
// relative path. Update markers come from the last CheckUpdates.
func (s *Session) Installed() ([]InstalledItem, error) {
	artifacts, err := scanner.Scan(s.gameDir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", s.gameDir, err)
	}

	owners := make(map[string]domain.RegistryEntry)
	for _, e := range s.registry.Entries() {
		if _, seen := owners[e.RelativePath()]; !seen {
			owners[e.RelativePath()] = e
		}
	}

	updates := s.Updates()
	out := make([]InstalledItem, len(artifacts))
	for i, a := range artifacts {
		out[i].Artifact = a
		if e, ok := owners[a.RelativePath]; ok {
			out[i].Entry = &e
			_, out[i].UpdateAvailable = updates[e.ContentID]
		}
	}
	return out, nil
}

// MissingEntries returns registry entries whose artifact is not on disk.
func (s *Session) MissingEntries() []domain.RegistryEntry {
	var out []domain.RegistryEntry
	for _, e := range s.registry.Entries() {
		if !scanner.Exists(s.gameDir, e.RelativePath()) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ContentID < out[j].ContentID })
	return out
}

func (s *Session) commit(entry domain.RegistryEntry) error {
	if err := s.registry.Add(entry); err != nil {
		return fmt.Errorf("saving registry: %w", err)
	}
	delete(s.updates, entry.ContentID)
	s.metrics.SetRegistryEntries(s.registry.Len())
	return nil
}

func (s *Session) cacheItems(items []domain.RemoteItem) {
	if s.cache == nil || len(items) == 0 {
		return
	}
	if err := s.cache.CacheItems(items); err != nil {
		log.Warn().Err(err).Msg("caching item metadata")
	}
}

func (s *Session) record(action string, contentID int, name string, fileID *int, fileName string, opErr error) {
	if s.journal == nil {
		return
	}
	rec := domain.HistoryRecord{
		GameDir:   s.gameDir,
		ContentID: contentID,
		Name:      name,
		Action:    action,
		FileID:    fileID,
		FileName:  fileName,
		At:        time.Now(),
	}
	if opErr != nil {
		rec.Error = opErr.Error()
	}
	if err := s.journal.RecordAction(rec); err != nil {
		log.Warn().Err(err).Msg("recording history")
	}
}
