package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"hcf/internal/domain"
)

var (
	scanCategory string
	scanCheck    bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List content found in the game directory",
	Long: `Scan the category directories of the game directory and list every
installed artifact (directories and .jar/.zip files), with the registry item
that owns it.

With --check, CurseForge is asked for newer files first and artifacts with an
update are marked.

Examples:
  hcf scan
  hcf scan -c worlds
  hcf scan --check`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVarP(&scanCategory, "category", "c", "", "only scan one category")
	scanCmd.Flags().BoolVar(&scanCheck, "check", false, "check CurseForge for updates")

	rootCmd.AddCommand(scanCmd)
}

type scanItemJSON struct {
	Path      string `json:"path"`
	Category  string `json:"category"`
	IsDir     bool   `json:"is_dir"`
	Size      int64  `json:"size"`
	ContentID int    `json:"content_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Update    bool   `json:"update_available"`
}

type scanJSON struct {
	Items   []scanItemJSON  `json:"items"`
	Missing []listEntryJSON `json:"missing"`
}

func runScan(cmd *cobra.Command, args []string) error {
	cat, err := categoryFilter(scanCategory)
	if err != nil {
		return err
	}

	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(service)

	session, err := openLocalSession(service)
	if err != nil {
		return err
	}

	if scanCheck {
		if _, err := requireSource(service); err != nil {
			return err
		}
		progress, finish := countProgress("Checking", session.Registry().Len())
		_, err := session.CheckUpdates(cmd.Context(), progress)
		finish()
		if err != nil {
			fmt.Printf("%s %v\n", colorYellow("!"), err)
		}
	}

	items, err := session.Installed()
	if err != nil {
		return err
	}

	out := scanJSON{Items: []scanItemJSON{}, Missing: []listEntryJSON{}}
	for _, it := range items {
		if cat != nil && it.Artifact.ClassID != cat.ClassID {
			continue
		}
		row := scanItemJSON{
			Path:     it.Artifact.RelativePath,
			Category: domain.CategoryFor(it.Artifact.ClassID).Name,
			IsDir:    it.Artifact.IsDir,
			Size:     it.Artifact.SizeBytes,
			Update:   it.UpdateAvailable,
		}
		if it.Entry != nil {
			row.ContentID = it.Entry.ContentID
			row.Name = it.Entry.Name
		}
		out.Items = append(out.Items, row)
	}
	for _, e := range session.MissingEntries() {
		if cat != nil && e.ClassID != cat.ClassID {
			continue
		}
		out.Missing = append(out.Missing, listEntryJSON{
			ID: e.ContentID, Name: e.Name, Category: e.Category().Name, Path: e.RelativePath(), FileID: e.FileID,
		})
	}

	if jsonOutput {
		return printJSON(out)
	}

	if len(out.Items) == 0 {
		fmt.Println("No content found.")
	} else {
		table := newTable("Path", "Category", "Size", "ID", "Name", "")
		for _, it := range out.Items {
			id, marker := "", ""
			if it.ContentID != 0 {
				id = strconv.Itoa(it.ContentID)
			}
			if it.Update {
				marker = colorYellow("update")
			}
			table.Append([]string{it.Path, it.Category, formatSize(it.Size), id, truncate(it.Name, 30), marker})
		}
		table.Render()
	}

	for _, m := range out.Missing {
		fmt.Printf("%s %s (%d) is recorded but %s is missing\n", colorYellow("!"), m.Name, m.ID, m.Path)
	}
	return nil
}
