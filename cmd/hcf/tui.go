package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"hcf/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse, install and update content interactively",
	Long: `Start the interactive interface.

The Search view queries CurseForge; the Installed view lists what is in the
game directory and refreshes when files change. Press ? for key bindings.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(service)

	session, err := openSession(service)
	if err != nil {
		return err
	}

	// The alternate screen owns the terminal; send logs to a file instead.
	logPath := filepath.Join(service.DataDirPath(), "tui.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()

	prevLogger := log.Logger
	log.Logger = zerolog.New(logFile).With().Timestamp().Logger()
	defer func() { log.Logger = prevLogger }()

	cfg := service.Config()
	return tui.Run(cmd.Context(), session, tui.Options{
		PageSize:    cfg.PageSize,
		SortField:   cfg.SortField,
		SortOrder:   cfg.SortOrder,
		ClassID:     cfg.Category().ClassID,
		Keybindings: cfg.Keybindings,
	})
}
