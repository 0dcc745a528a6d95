package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"

	"hcf/internal/core"
	"hcf/internal/domain"
)

// stdin is where prompts read answers from; tests replace it.
var stdin io.Reader = os.Stdin

// confirm asks a y/N question. With --yes style flags callers skip it.
func confirm(prompt string) bool {
	out := os.Stdout
	if jsonOutput {
		out = os.Stderr // keep stdout parseable
	}
	fmt.Fprintf(out, "%s [y/N] ", prompt)
	line, _ := bufio.NewReader(stdin).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// newTable returns a left-aligned, unwrapped table writing to stdout.
func newTable(header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	table.SetRowLine(false)
	return table
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

// downloadProgress returns a progress callback drawing a byte bar on stderr
// and a func that finishes the bar. In JSON mode both are no-ops.
func downloadProgress(label string) (core.ProgressFunc, func()) {
	if jsonOutput {
		return nil, func() {}
	}

	bar := progressbar.NewOptions64(-1,
		progressbar.OptionSetDescription(label),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSpinnerType(14),
	)

	sized := false
	update := func(p core.DownloadProgress) {
		if !sized && p.TotalBytes > 0 {
			bar.ChangeMax64(p.TotalBytes)
			sized = true
		}
		_ = bar.Set64(p.Downloaded)
	}
	return update, func() { _ = bar.Finish() }
}

// countProgress returns an item-count bar on stderr for n steps.
func countProgress(label string, n int) (domain.UpdateProgressFunc, func()) {
	if jsonOutput || n == 0 {
		return nil, func() {}
	}

	bar := progressbar.NewOptions(n,
		progressbar.OptionSetDescription(label),
		progressbar.OptionSetWidth(20),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionClearOnFinish(),
	)
	update := func(done, total int, name string) {
		bar.Describe(fmt.Sprintf("%s %s", label, truncate(name, 30)))
		_ = bar.Set(done)
	}
	return update, func() { _ = bar.Finish() }
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// parseContentID parses a positive numeric content ID.
func parseContentID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid content ID %q", arg)
	}
	return id, nil
}

// formatFileID renders an optional file ID.
func formatFileID(id *int) string {
	if id == nil {
		return "-"
	}
	return strconv.Itoa(*id)
}

// formatSize renders a byte count for tables.
func formatSize(n int64) string {
	if n < 0 {
		return "-"
	}
	return humanize.Bytes(uint64(n))
}

// formatDate renders an ISO 8601 timestamp as a date, or the raw value if it does not parse.
func formatDate(s string) string {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format("2006-01-02")
	}
	if s == "" {
		return "-"
	}
	return s
}

// statusLabel renders an item status for tables.
func statusLabel(s domain.ItemStatus) string {
	switch s {
	case domain.StatusInstalled:
		return colorGreen("installed")
	case domain.StatusUpdateAvailable:
		return colorYellow("update")
	default:
		return ""
	}
}
