package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"hcf/internal/core"
	"hcf/internal/domain"
	"hcf/internal/registry"
	"hcf/internal/scanner"
)

var infoOffline bool

var infoCmd = &cobra.Command{
	Use:   "info <id>",
	Short: "Show details of a CurseForge item",
	Long: `Show the details of a CurseForge item: summary, latest file and install state.

With --offline the last metadata seen by search, info or install is shown
from the local cache without contacting CurseForge.

Examples:
  hcf info 1032
  hcf info 1032 --offline`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	infoCmd.Flags().BoolVar(&infoOffline, "offline", false, "use cached metadata only")

	rootCmd.AddCommand(infoCmd)
}

type infoJSON struct {
	searchItemJSON
	Authors    []string `json:"authors,omitempty"`
	WebsiteURL string   `json:"website_url,omitempty"`
	LatestFile string   `json:"latest_file,omitempty"`
	FileName   string   `json:"installed_file,omitempty"`
	OnDisk     bool     `json:"on_disk"`
	CachedAt   string   `json:"cached_at,omitempty"`
}

func runInfo(cmd *cobra.Command, args []string) error {
	id, err := parseContentID(args[0])
	if err != nil {
		return err
	}

	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(service)

	var (
		state    core.ItemState
		cachedAt string
	)

	if infoOffline {
		cached, err := service.DB().GetCachedItem(id)
		if err != nil {
			return err
		}
		if cached == nil {
			return fmt.Errorf("item %d is not cached; run 'hcf info %d' online first", id, id)
		}
		cachedAt = cached.CachedAt.Local().Format("2006-01-02 15:04")
		dir, _ := service.GameDir(gameDir) // status is optional offline
		state = offlineState(dir, cached.Item)
	} else {
		session, err := openSession(service)
		if err != nil {
			return err
		}
		if state, err = session.Lookup(cmd.Context(), id); err != nil {
			return fmt.Errorf("looking up item %d: %w", id, err)
		}
	}

	if jsonOutput {
		out := infoJSON{
			searchItemJSON: toSearchItemJSON(state),
			Authors:        state.Item.Authors,
			WebsiteURL:     state.Item.WebsiteURL,
			OnDisk:         state.OnDisk,
			CachedAt:       cachedAt,
		}
		if state.Latest != nil {
			out.LatestFile = state.Latest.FileName
		}
		if state.Entry != nil {
			out.FileName = state.Entry.FileName
		}
		return printJSON(out)
	}

	printItemDetails(state)
	if cachedAt != "" {
		fmt.Printf("\n(cached %s)\n", cachedAt)
	}
	return nil
}

// offlineState reconciles against the registry only. Unclaimed local files are
// not matched.
func offlineState(gamePath string, item domain.RemoteItem) core.ItemState {
	state := core.ItemState{Item: item, Status: domain.StatusNotInstalled}
	if latest, ok := domain.LatestFile(item.LatestFiles); ok {
		state.Latest = &latest
	}
	if gamePath == "" {
		return state
	}
	if entry, ok := registry.Load(gamePath).Get(item.ID); ok {
		state.Entry = &entry
		state.Status = domain.StatusInstalled
		state.RelativePath = entry.RelativePath()
		state.OnDisk = scanner.Exists(gamePath, state.RelativePath)
		if state.Latest != nil && entry.HasUpdate(*state.Latest) {
			state.Status = domain.StatusUpdateAvailable
		}
	}
	return state
}

func printItemDetails(st core.ItemState) {
	item := st.Item
	fmt.Printf("%s (%d)\n", item.Name, item.ID)
	fmt.Printf("  Category:  %s\n", item.Category().Name)
	if len(item.Authors) > 0 {
		fmt.Printf("  Authors:   %s\n", strings.Join(item.Authors, ", "))
	}
	fmt.Printf("  Downloads: %d\n", item.DownloadCount)
	if item.WebsiteURL != "" {
		fmt.Printf("  Website:   %s\n", item.WebsiteURL)
	}
	if item.Summary != "" {
		fmt.Printf("\n  %s\n\n", item.Summary)
	}

	if st.Latest != nil {
		fmt.Printf("  Latest:    %s (file %d, %s, %s)\n",
			st.Latest.FileName, st.Latest.ID, formatDate(st.Latest.FileDate), formatSize(st.Latest.FileLength))
	} else {
		fmt.Println("  Latest:    no files published")
	}

	status := st.Status.String()
	switch {
	case st.Conflict:
		status += " (a matching local file belongs to another item)"
	case st.Adopted:
		status += " (matched local file)"
	case st.Entry != nil && !st.OnDisk:
		status += colorYellow(" (file missing on disk)")
	}
	fmt.Printf("  Status:    %s\n", status)
	if st.Entry != nil {
		fmt.Printf("  Installed: %s (file %s)\n", st.Entry.RelativePath(), formatFileID(st.Entry.FileID))
	}
}
