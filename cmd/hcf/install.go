package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var installYes bool

var installCmd = &cobra.Command{
	Use:   "install <id>...",
	Short: "Install the latest file of one or more items",
	Long: `Download the latest file of each item into its category directory and
record it in installed_mods.json.

Worlds are extracted into UserData/Saves. Installing an item that is already
installed asks before reinstalling it.

Examples:
  hcf install 1032
  hcf install 1032 2048 -y`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInstall,
}

func init() {
	installCmd.Flags().BoolVarP(&installYes, "yes", "y", false, "reinstall without asking")

	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	ids := make([]int, len(args))
	for i, arg := range args {
		id, err := parseContentID(arg)
		if err != nil {
			return err
		}
		ids[i] = id
	}

	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(service)

	session, err := openSession(service)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	var failed int
	for _, id := range ids {
		state, err := session.Lookup(ctx, id)
		if err != nil {
			fmt.Printf("%s %d: %v\n", colorRed("✗"), id, err)
			failed++
			continue
		}

		if state.Installed() && !installYes && !jsonOutput {
			if !confirm(fmt.Sprintf("%s is already installed. Reinstall?", state.Item.Name)) {
				fmt.Println("Skipped.")
				continue
			}
		}

		progress, finish := downloadProgress(truncate(state.Item.Name, 30))
		entry, err := session.InstallItem(ctx, state.Item, progress)
		finish()
		if err != nil {
			fmt.Printf("%s %s: %v\n", colorRed("✗"), state.Item.Name, err)
			failed++
			continue
		}

		fmt.Printf("%s Installed %s -> %s\n", colorGreen("✓"), entry.Name, entry.RelativePath())
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d install(s) failed", failed, len(ids))
	}
	return nil
}
