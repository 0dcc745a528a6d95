package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"hcf/internal/core"
	"hcf/internal/domain"
	"hcf/internal/source"
)

var (
	searchCategory string
	searchAll      bool
	searchLimit    int
	searchPage     int
	searchSort     string
)

// sortFields maps --sort names to CurseForge sort field IDs.
var sortFields = map[string]int{
	"featured":   source.SortFeatured,
	"popularity": source.SortPopularity,
	"updated":    source.SortLastUpdated,
	"name":       source.SortName,
	"author":     source.SortAuthor,
	"downloads":  source.SortTotalDownload,
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search CurseForge for Hytale content",
	Long: `Search CurseForge for Hytale content in one category.

Results are marked installed or update when they match the registry or a
file already in the game directory.

Examples:
  hcf search "better swords"
  hcf search castle -c prefabs --sort downloads
  hcf search lantern --all --page 2`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchCategory, "category", "c", "", "category to search (default: default_category from config)")
	searchCmd.Flags().BoolVar(&searchAll, "all", false, "search every category")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "results per page (default: page_size from config)")
	searchCmd.Flags().IntVar(&searchPage, "page", 1, "result page, starting at 1")
	searchCmd.Flags().StringVar(&searchSort, "sort", "", "sort by "+strings.Join(sortFieldNames(), ", "))

	rootCmd.AddCommand(searchCmd)
}

func sortFieldNames() []string {
	names := make([]string, 0, len(sortFields))
	for name := range sortFields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type searchItemJSON struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Summary   string `json:"summary,omitempty"`
	Downloads int64  `json:"downloads"`
	Status    string `json:"status"`
	Installed *int   `json:"installed_file_id,omitempty"`
	Latest    *int   `json:"latest_file_id,omitempty"`
}

type searchJSON struct {
	Query string           `json:"query"`
	Page  int              `json:"page"`
	Pages int              `json:"pages"`
	Total int              `json:"total"`
	Items []searchItemJSON `json:"items"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	if searchPage < 1 {
		return fmt.Errorf("--page must be at least 1")
	}

	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(service)

	cfg := service.Config()
	q := source.SearchQuery{
		Query:     query,
		Page:      searchPage - 1,
		PageSize:  cfg.PageSize,
		SortField: cfg.SortField,
		SortOrder: cfg.SortOrder,
	}
	if searchLimit > 0 {
		q.PageSize = searchLimit
	}
	if searchSort != "" {
		field, ok := sortFields[strings.ToLower(searchSort)]
		if !ok {
			return fmt.Errorf("unknown sort %q (valid: %s)", searchSort, strings.Join(sortFieldNames(), ", "))
		}
		q.SortField = field
	}
	if !searchAll {
		cat := cfg.Category()
		if searchCategory != "" {
			var ok bool
			if cat, ok = domain.ParseCategory(searchCategory); !ok {
				return fmt.Errorf("unknown category %q (valid: %s)", searchCategory, strings.Join(domain.CategoryNames(), ", "))
			}
		}
		q.ClassID = cat.ClassID
	}

	session, err := openSession(service)
	if err != nil {
		return err
	}

	if verbose && !jsonOutput {
		fmt.Printf("Searching for %q in %s...\n", query, session.GameDir())
	}

	states, res, err := session.Search(cmd.Context(), q)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if jsonOutput {
		out := searchJSON{Query: query, Page: searchPage, Pages: res.Pages(), Total: res.TotalCount, Items: []searchItemJSON{}}
		for _, st := range states {
			out.Items = append(out.Items, toSearchItemJSON(st))
		}
		return printJSON(out)
	}

	if len(states) == 0 {
		fmt.Println("No results.")
		return nil
	}

	table := newTable("ID", "Name", "Category", "Downloads", "Status")
	for _, st := range states {
		table.Append([]string{
			strconv.Itoa(st.Item.ID),
			truncate(st.Item.Name, 40),
			st.Item.Category().Name,
			strconv.FormatInt(st.Item.DownloadCount, 10),
			statusLabel(st.Status),
		})
	}
	table.Render()

	fmt.Printf("Page %d of %d (%d results)\n", searchPage, res.Pages(), res.TotalCount)
	return nil
}

func toSearchItemJSON(st core.ItemState) searchItemJSON {
	item := searchItemJSON{
		ID:        st.Item.ID,
		Name:      st.Item.Name,
		Category:  st.Item.Category().Name,
		Summary:   st.Item.Summary,
		Downloads: st.Item.DownloadCount,
		Status:    st.Status.String(),
	}
	if st.Entry != nil {
		item.Installed = st.Entry.FileID
	}
	if st.Latest != nil {
		item.Latest = domain.IntPtr(st.Latest.ID)
	}
	return item
}
