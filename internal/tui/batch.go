package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"hcf/internal/core"
)

// UpdateRunner applies updates for ids, reporting through obs.
type UpdateRunner func(ctx context.Context, ids []int, obs core.BatchObserver) core.BatchReport

// BatchItemStartMsg is sent when the sequencer picks up an item.
type BatchItemStartMsg struct {
	N, Total  int
	ContentID int
}

// BatchDownloadMsg carries download progress of the current item.
type BatchDownloadMsg struct {
	Progress core.DownloadProgress
}

// BatchItemDoneMsg is sent after each item, successful or not.
type BatchItemDoneMsg struct {
	Progress core.BatchProgress
}

// BatchDoneMsg is the last message of a batch.
type BatchDoneMsg struct {
	Report core.BatchReport
}

// startBatch runs the updates on one goroutine and streams its events.
// The channel is closed after BatchDoneMsg. Cancelling ctx stops the queue
// and unblocks pending sends.
func startBatch(ctx context.Context, ids []int, run UpdateRunner) <-chan tea.Msg {
	ch := make(chan tea.Msg, 16)

	send := func(msg tea.Msg) {
		select {
		case ch <- msg:
		case <-ctx.Done():
		}
	}

	go func() {
		defer close(ch)
		report := run(ctx, ids, core.BatchObserver{
			OnItemStart: func(n, total, id int) {
				send(BatchItemStartMsg{N: n, Total: total, ContentID: id})
			},
			OnDownload: func(p core.DownloadProgress) {
				// Progress is lossy; a full buffer drops the sample.
				select {
				case ch <- BatchDownloadMsg{Progress: p}:
				default:
				}
			},
			OnItemDone: func(p core.BatchProgress) {
				send(BatchItemDoneMsg{Progress: p})
			},
		})
		send(BatchDoneMsg{Report: report})
	}()

	return ch
}

// waitForBatch returns the next batch event, or nil once the channel closes.
func waitForBatch(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}
