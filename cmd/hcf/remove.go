package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"hcf/internal/core"
	"hcf/internal/domain"
)

var removeYes bool

var removeCmd = &cobra.Command{
	Use:     "remove <id|path>",
	Aliases: []string{"uninstall", "rm"},
	Short:   "Remove installed content",
	Long: `Remove an installed item by content ID, or any artifact by its path
relative to the game directory (as shown by 'hcf scan').

The registry entry is removed as well. A file that was already deleted by hand
is reported as already clean.

Examples:
  hcf remove 1032
  hcf remove UserData/Mods/SomeMod.jar -y`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func init() {
	removeCmd.Flags().BoolVarP(&removeYes, "yes", "y", false, "skip confirmation prompt")

	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(service)

	session, err := openLocalSession(service)
	if err != nil {
		return err
	}

	target := args[0]
	id, numErr := strconv.Atoi(target)

	label := target
	if numErr == nil {
		entry, ok := session.Registry().Get(id)
		if !ok {
			return fmt.Errorf("item %d: %w", id, domain.ErrNotFoundLocally)
		}
		label = fmt.Sprintf("%s (%s)", entry.Name, entry.RelativePath())
	}

	if !removeYes && !confirm(fmt.Sprintf("Remove %s?", label)) {
		fmt.Println("Aborted.")
		return ErrCancelled
	}

	var status core.RemoveStatus
	tracked := numErr == nil
	if tracked {
		status, err = session.Uninstall(id)
	} else {
		_, tracked = session.Registry().FindByRelativePath(target)
		status, err = session.RemovePath(target)
	}
	if err != nil {
		return fmt.Errorf("removing %s: %w", label, err)
	}

	if status == core.RemoveAlreadyClean {
		if tracked {
			fmt.Printf("%s %s was already gone from disk; registry cleaned up.\n", colorYellow("!"), label)
		} else {
			fmt.Printf("%s Nothing at %s.\n", colorYellow("!"), label)
		}
		return nil
	}
	fmt.Printf("%s Removed %s\n", colorGreen("✓"), label)
	return nil
}
