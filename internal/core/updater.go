package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"hcf/internal/domain"
	"hcf/internal/source"
)

// Updater finds installed items whose remote latest file differs from the
// recorded one.
type Updater struct {
	source source.ContentSource
}

// NewUpdater creates a new updater
func NewUpdater(src source.ContentSource) *Updater {
	return &Updater{source: src}
}

// CheckUpdates fetches every entry's remote item once. Entries whose fetch
// fails are skipped and reported in the joined error; the returned set is
// still valid. Entries without a recorded file ID are never included.
func (u *Updater) CheckUpdates(ctx context.Context, entries []domain.RegistryEntry, progressFn domain.UpdateProgressFunc) (domain.UpdateSet, error) {
	updates := make(domain.UpdateSet)
	var errs []error

	for n, entry := range entries {
		if err := ctx.Err(); err != nil {
			return updates, err
		}
		if progressFn != nil {
			progressFn(n+1, len(entries), entry.Name)
		}

		item, err := u.source.GetItem(ctx, entry.ContentID)
		if err != nil {
			log.Warn().Err(err).Int("content_id", entry.ContentID).Msg("update check failed")
			errs = append(errs, fmt.Errorf("%s (id %d): %w", entry.Name, entry.ContentID, err))
			continue
		}

		latest, ok := domain.LatestFile(item.LatestFiles)
		if !ok {
			continue
		}
		if entry.HasUpdate(latest) {
			updates[entry.ContentID] = *item
		}
	}

	if len(errs) > 0 {
		return updates, fmt.Errorf("update check skipped %d item(s): %w", len(errs), errors.Join(errs...))
	}
	return updates, nil
}
