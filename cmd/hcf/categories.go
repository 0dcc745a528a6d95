package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"hcf/internal/domain"
)

var categoriesRemote bool

var categoriesCmd = &cobra.Command{
	Use:     "categories",
	Aliases: []string{"classes"},
	Short:   "List content categories and where they install",
	Long: `List the content categories hcf installs and the directory each one uses.

With --remote the classes CurseForge defines for Hytale are listed instead,
marking the ones hcf can install.`,
	Args: cobra.NoArgs,
	RunE: runCategories,
}

func init() {
	categoriesCmd.Flags().BoolVar(&categoriesRemote, "remote", false, "list the classes CurseForge reports")
	rootCmd.AddCommand(categoriesCmd)
}

type categoryJSON struct {
	Name      string `json:"name"`
	ClassID   int    `json:"class_id"`
	Directory string `json:"directory,omitempty"`
	Supported bool   `json:"supported"`
}

func runCategories(cmd *cobra.Command, args []string) error {
	if categoriesRemote {
		return runRemoteCategories(cmd)
	}

	out := make([]categoryJSON, len(domain.Categories))
	for i, c := range domain.Categories {
		out[i] = categoryJSON{Name: c.Name, ClassID: c.ClassID, Directory: c.Subdir, Supported: true}
	}
	if jsonOutput {
		return printJSON(out)
	}

	table := newTable("NAME", "CLASS", "DIRECTORY")
	for _, c := range out {
		table.Append([]string{c.Name, strconv.Itoa(c.ClassID), c.Directory})
	}
	table.Render()
	return nil
}

func runRemoteCategories(cmd *cobra.Command) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(service)

	src, err := requireSource(service)
	if err != nil {
		return err
	}

	classes, err := src.Classes(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing classes: %w", err)
	}

	out := make([]categoryJSON, len(classes))
	for i, c := range classes {
		out[i] = categoryJSON{Name: c.Name, ClassID: c.ID, Supported: domain.KnownClass(c.ID)}
		if out[i].Supported {
			out[i].Directory = domain.CategoryFor(c.ID).Subdir
		}
	}
	if jsonOutput {
		return printJSON(out)
	}

	table := newTable("NAME", "CLASS", "DIRECTORY", "SUPPORTED")
	for _, c := range out {
		supported := colorYellow("no")
		if c.Supported {
			supported = colorGreen("yes")
		}
		table.Append([]string{c.Name, strconv.Itoa(c.ClassID), c.Directory, supported})
	}
	table.Render()
	return nil
}
