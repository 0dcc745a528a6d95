package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"hcf/internal/core"
	"hcf/internal/domain"
)

var (
	updateCheck bool
	updateYes   bool
)

var updateCmd = &cobra.Command{
	Use:   "update [id...]",
	Short: "Check for and apply updates",
	Long: `Check every registry item for a newer file on CurseForge and apply the
updates one at a time.

Each update deletes the old file, downloads the new one and records it. A
failed item is reported and the rest of the queue still runs.

Examples:
  hcf update --check       # only list available updates
  hcf update               # update everything after confirming
  hcf update 1032 -y       # update one item without asking`,
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().BoolVar(&updateCheck, "check", false, "only check, do not update")
	updateCmd.Flags().BoolVarP(&updateYes, "yes", "y", false, "skip confirmation prompt")

	rootCmd.AddCommand(updateCmd)
}

type updateJSON struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Installed *int   `json:"installed_file_id"`
	Latest    int    `json:"latest_file_id"`
	FileName  string `json:"latest_file"`
	Updated   bool   `json:"updated"`
	Error     string `json:"error,omitempty"`
}

func runUpdate(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(service)

	session, err := openSession(service)
	if err != nil {
		return err
	}

	reg := session.Registry()
	if reg.Len() == 0 {
		if jsonOutput {
			return printJSON([]updateJSON{})
		}
		fmt.Println("Nothing installed.")
		return nil
	}

	ctx := cmd.Context()
	progress, finish := countProgress("Checking", reg.Len())
	updates, checkErr := session.CheckUpdates(ctx, progress)
	finish()
	if checkErr != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		fmt.Printf("%s %v\n", colorYellow("!"), checkErr)
	}

	ids := updates.IDs()
	if len(args) > 0 {
		ids = ids[:0]
		for _, arg := range args {
			id, err := parseContentID(arg)
			if err != nil {
				return err
			}
			if _, ok := reg.Get(id); !ok {
				return fmt.Errorf("item %d: %w", id, domain.ErrNotFoundLocally)
			}
			if _, ok := updates[id]; ok {
				ids = append(ids, id)
			} else if !jsonOutput {
				fmt.Printf("%d is up to date.\n", id)
			}
		}
	}

	rows := make([]updateJSON, len(ids))
	for i, id := range ids {
		entry, _ := reg.Get(id)
		latest, _ := domain.LatestFile(updates[id].LatestFiles)
		rows[i] = updateJSON{ID: id, Name: entry.Name, Installed: entry.FileID, Latest: latest.ID, FileName: latest.FileName}
	}

	if len(ids) == 0 {
		if jsonOutput {
			return printJSON(rows)
		}
		fmt.Println("Everything is up to date.")
		return nil
	}

	if !jsonOutput {
		table := newTable("ID", "Name", "Installed", "Latest", "File")
		for _, r := range rows {
			table.Append([]string{strconv.Itoa(r.ID), truncate(r.Name, 40), formatFileID(r.Installed), strconv.Itoa(r.Latest), r.FileName})
		}
		table.Render()
	}

	if updateCheck {
		if jsonOutput {
			return printJSON(rows)
		}
		fmt.Printf("%d update(s) available. Run 'hcf update' to apply.\n", len(ids))
		return nil
	}

	if !updateYes && !confirm(fmt.Sprintf("Apply %d update(s)?", len(ids))) {
		if !jsonOutput {
			fmt.Println("Aborted.")
		}
		return ErrCancelled
	}

	var (
		download  core.ProgressFunc
		finishBar = func() {}
		updated   = make(map[int]bool)
	)
	report := session.RunUpdates(ctx, ids, core.BatchObserver{
		OnItemStart: func(n, total, id int) {
			entry, _ := reg.Get(id)
			download, finishBar = downloadProgress(fmt.Sprintf("[%d/%d] %s", n, total, truncate(entry.Name, 24)))
		},
		OnDownload: func(p core.DownloadProgress) {
			if download != nil {
				download(p)
			}
		},
		OnItemDone: func(p core.BatchProgress) {
			finishBar()
			updated[p.ContentID] = p.Err == nil
			if jsonOutput {
				return
			}
			if p.Err != nil {
				fmt.Printf("%s %s: %v\n", colorRed("✗"), p.Name, p.Err)
			} else {
				fmt.Printf("%s Updated %s\n", colorGreen("✓"), p.Name)
			}
		},
	})

	if jsonOutput {
		for i := range rows {
			rows[i].Updated = updated[rows[i].ID]
			if err, failed := report.Failed[rows[i].ID]; failed {
				rows[i].Error = err.Error()
			}
		}
		if err := printJSON(rows); err != nil {
			return err
		}
	} else {
		fmt.Printf("\n%d of %d updated", report.Succeeded, report.Total)
		if r := report.Remaining(); r > 0 {
			fmt.Printf(", %d remaining", r)
		}
		fmt.Println()
	}

	if report.Cancelled {
		return ErrCancelled
	}
	if !report.AllSucceeded() {
		return fmt.Errorf("%d update(s) failed", len(report.Failed))
	}
	return nil
}
