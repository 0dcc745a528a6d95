package core

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"

	"hcf/internal/metrics"
)

// BatchProgress is emitted after each item of a bulk update.
type BatchProgress struct {
	Completed int
	Total     int
	ContentID int
	Name      string
	Err       error // nil when the item succeeded
}

// BatchReport is the terminal state of a bulk update.
type BatchReport struct {
	Total     int
	Succeeded int
	Failed    map[int]error
	Cancelled bool // the queue was abandoned before every item ran
}

// AllSucceeded reports whether every queued item was updated.
func (r BatchReport) AllSucceeded() bool {
	return r.Succeeded == r.Total
}

// Remaining is the number of items that were not updated.
func (r BatchReport) Remaining() int {
	return r.Total - r.Succeeded
}

// FailedIDs returns the failed content IDs in ascending order.
func (r BatchReport) FailedIDs() []int {
	ids := make([]int, 0, len(r.Failed))
	for id := range r.Failed {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// BatchObserver receives sequencer events. Every field is optional.
type BatchObserver struct {
	OnItemStart func(n, total, contentID int)
	OnDownload  ProgressFunc
	OnItemDone  func(BatchProgress)
}

// ItemUpdater updates one item and returns its display name.
type ItemUpdater func(ctx context.Context, contentID int, progressFn ProgressFunc) (string, error)

// Sequencer applies updates one item at a time from an explicit queue.
// A failed item is recorded and the queue moves on.
type Sequencer struct {
	update  ItemUpdater
	metrics *metrics.Metrics
}

// NewSequencer creates a sequencer that applies update to each queued item.
func NewSequencer(update ItemUpdater, m *metrics.Metrics) *Sequencer {
	return &Sequencer{update: update, metrics: m}
}

// Run drains ids in order. Cancelling ctx stops the queue before the next item;
// unprocessed items are counted as remaining.
func (s *Sequencer) Run(ctx context.Context, ids []int, obs BatchObserver) BatchReport {
	queue := append([]int(nil), ids...)
	report := BatchReport{Total: len(queue), Failed: make(map[int]error)}

	completed := 0
	for len(queue) > 0 {
		if ctx.Err() != nil {
			report.Cancelled = true
			break
		}

		id := queue[0]
		queue = queue[1:]

		if obs.OnItemStart != nil {
			obs.OnItemStart(completed+1, report.Total, id)
		}

		name, err := s.update(ctx, id, obs.OnDownload)
		completed++
		s.metrics.ObserveBatchItem(err)

		if err != nil {
			log.Error().Err(err).Int("content_id", id).Msg("update failed, continuing")
			report.Failed[id] = err
		} else {
			report.Succeeded++
		}

		if obs.OnItemDone != nil {
			obs.OnItemDone(BatchProgress{
				Completed: completed,
				Total:     report.Total,
				ContentID: id,
				Name:      name,
				Err:       err,
			})
		}
	}

	return report
}
