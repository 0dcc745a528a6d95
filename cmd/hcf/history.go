package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"hcf/internal/domain"
	"hcf/internal/storage/db"
)

var (
	historyLimit    int
	historyAllGames bool
)

var historyCmd = &cobra.Command{
	Use:   "history [id]",
	Short: "Show recent installs, updates and removals",
	Long: `Show the operations hcf has performed, newest first.

By default only the current game directory is shown. Pass an ID to show
the history of a single item.

Examples:
  hcf history
  hcf history -n 50 --all-games
  hcf history 123456`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of entries")
	historyCmd.Flags().BoolVar(&historyAllGames, "all-games", false, "include every game directory")
	rootCmd.AddCommand(historyCmd)
}

type historyJSON struct {
	ID       string `json:"id"`
	GameDir  string `json:"game_dir"`
	ItemID   int    `json:"item_id"`
	Name     string `json:"name"`
	Action   string `json:"action"`
	FileID   *int   `json:"file_id"`
	FileName string `json:"file_name,omitempty"`
	Error    string `json:"error,omitempty"`
	At       string `json:"at"`
}

func runHistory(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(service)

	filter := db.HistoryFilter{Limit: historyLimit}
	if !historyAllGames {
		dir, err := service.GameDir(gameDir)
		if err != nil {
			return err
		}
		filter.GameDir = dir
	}
	if len(args) == 1 {
		id, err := parseContentID(args[0])
		if err != nil {
			return err
		}
		filter.ContentID = id
	}

	records, err := service.History(filter)
	if err != nil {
		return fmt.Errorf("reading history: %w", err)
	}

	if jsonOutput {
		out := make([]historyJSON, len(records))
		for i, r := range records {
			out[i] = toHistoryJSON(r)
		}
		return printJSON(out)
	}

	if len(records) == 0 {
		fmt.Println("No history yet.")
		return nil
	}

	header := []string{"WHEN", "ACTION", "ID", "NAME", "FILE", "RESULT"}
	if historyAllGames {
		header = append(header, "GAME DIR")
	}
	table := newTable(header...)
	for _, r := range records {
		result := colorGreen("ok")
		if !r.Succeeded() {
			result = colorRed(truncate(r.Error, 40))
		}
		row := []string{
			r.At.Local().Format("2006-01-02 15:04"),
			r.Action,
			strconv.Itoa(r.ContentID),
			truncate(r.Name, 30),
			truncate(r.FileName, 30),
			result,
		}
		if historyAllGames {
			row = append(row, r.GameDir)
		}
		table.Append(row)
	}
	table.Render()
	return nil
}

func toHistoryJSON(r domain.HistoryRecord) historyJSON {
	return historyJSON{
		ID:       r.ID,
		GameDir:  r.GameDir,
		ItemID:   r.ContentID,
		Name:     r.Name,
		Action:   r.Action,
		FileID:   r.FileID,
		FileName: r.FileName,
		Error:    r.Error,
		At:       r.At.UTC().Format("2006-01-02T15:04:05Z"),
	}
}
