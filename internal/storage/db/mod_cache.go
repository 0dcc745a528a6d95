package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hcf/internal/domain"
)

// CacheSource is the source ID under which CurseForge items are cached.
const CacheSource = "curseforge"

// CachedItem is a remote item snapshot with the time it was stored.
type CachedItem struct {
	Item     domain.RemoteItem
	CachedAt time.Time
}

// CacheItems upserts remote item metadata.
func (d *DB) CacheItems(items []domain.RemoteItem) (err error) {
	tx, err := d.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	stmt, err := tx.Prepare(`
		INSERT INTO mod_cache (source_id, content_id, name, class_id, metadata, cached_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_id, content_id) DO UPDATE SET
			name = excluded.name,
			class_id = excluded.class_id,
			metadata = excluded.metadata,
			cached_at = excluded.cached_at
	`)
	if err != nil {
		return fmt.Errorf("preparing cache insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("encoding item %d: %w", item.ID, err)
		}
		if _, err := stmt.Exec(CacheSource, item.ID, item.Name, item.ClassID, string(data), now); err != nil {
			return fmt.Errorf("caching item %d: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing cache: %w", err)
	}
	return nil
}

// GetCachedItem returns the cached snapshot of an item, or nil if none is stored.
func (d *DB) GetCachedItem(contentID int) (*CachedItem, error) {
	var (
		metadata string
		cachedAt time.Time
	)
	err := d.QueryRow(
		"SELECT metadata, cached_at FROM mod_cache WHERE source_id = ? AND content_id = ?",
		CacheSource, contentID,
	).Scan(&metadata, &cachedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting cached item: %w", err)
	}

	var item domain.RemoteItem
	if err := json.Unmarshal([]byte(metadata), &item); err != nil {
		return nil, fmt.Errorf("decoding cached item %d: %w", contentID, err)
	}
	return &CachedItem{Item: item, CachedAt: cachedAt}, nil
}

// PruneCache deletes snapshots older than maxAge and returns how many were removed.
func (d *DB) PruneCache(maxAge time.Duration) (int64, error) {
	res, err := d.Exec("DELETE FROM mod_cache WHERE cached_at < ?", time.Now().UTC().Add(-maxAge))
	if err != nil {
		return 0, fmt.Errorf("pruning cache: %w", err)
	}
	return res.RowsAffected()
}
