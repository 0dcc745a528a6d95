package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"hcf/internal/domain"
	"hcf/internal/registry"
	"hcf/internal/scanner"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List items recorded in the registry",
	Long: `List the items recorded in installed_mods.json for the game directory.

With --verbose the cached summary of each item is shown as well.
No network access is needed.

Examples:
  hcf list
  hcf list -v --json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

type listEntryJSON struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Path     string `json:"path"`
	FileID   *int   `json:"file_id"`
	FileDate string `json:"file_date,omitempty"`
	OnDisk   bool   `json:"on_disk"`
	Summary  string `json:"summary,omitempty"`
}

func runList(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(service)

	dir, err := service.GameDir(gameDir)
	if err != nil {
		return err
	}

	entries := registry.Load(dir).Entries()
	out := make([]listEntryJSON, len(entries))
	for i, e := range entries {
		out[i] = listEntryJSON{
			ID:       e.ContentID,
			Name:     e.Name,
			Category: e.Category().Name,
			Path:     e.RelativePath(),
			FileID:   e.FileID,
			FileDate: e.FileDate,
			OnDisk:   scanner.Exists(dir, e.RelativePath()),
		}
		if verbose {
			if cached, err := service.DB().GetCachedItem(e.ContentID); err == nil && cached != nil {
				out[i].Summary = cached.Item.Summary
			}
		}
	}

	if jsonOutput {
		return printJSON(out)
	}

	if len(out) == 0 {
		fmt.Println("Nothing installed.")
		return nil
	}

	header := []string{"ID", "Name", "Category", "File", "File ID", "Date"}
	if verbose {
		header = append(header, "Summary")
	}
	table := newTable(header...)
	for _, e := range out {
		file := e.Path
		if !e.OnDisk {
			file += colorRed(" (missing)")
		}
		row := []string{strconv.Itoa(e.ID), truncate(e.Name, 40), e.Category, file, formatFileID(e.FileID), formatDate(e.FileDate)}
		if verbose {
			row = append(row, truncate(e.Summary, 50))
		}
		table.Append(row)
	}
	table.Render()

	if verbose {
		fmt.Printf("\nTotal: %d item(s) in %s\n", len(out), registry.Path(dir))
	}
	return nil
}

// categoryFilter parses an optional category flag; nil means every category.
func categoryFilter(name string) (*domain.Category, error) {
	if name == "" {
		return nil, nil
	}
	cat, ok := domain.ParseCategory(name)
	if !ok {
		return nil, fmt.Errorf("unknown category %q", name)
	}
	return &cat, nil
}
