package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"hcf/internal/core"
	"hcf/internal/domain"
)

// Search is the remote search view
type Search struct {
	keys          *KeyMap
	searchInput   textinput.Model
	spinner       spinner.Model
	searchFocused bool

	// categoryIdx indexes domain.Categories; -1 searches every category
	categoryIdx int

	results  []core.ItemState
	query    string
	page     int
	total    int
	pageSize int
	selected int
	loading  bool
	err      error
	width    int
	height   int
}

// NewSearch creates a search view. classID preselects a category; 0 selects all.
func NewSearch(keys *KeyMap, classID, pageSize int) Search {
	ti := textinput.New()
	ti.Placeholder = "Search Hytale content..."
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	idx := -1
	for i, c := range domain.Categories {
		if c.ClassID == classID {
			idx = i
		}
	}

	return Search{
		keys:          keys,
		searchInput:   ti,
		spinner:       sp,
		searchFocused: true,
		categoryIdx:   idx,
		pageSize:      pageSize,
		width:         80,
		height:        24,
	}
}

// SearchQuery returns the current search query
func (m Search) SearchQuery() string {
	return m.searchInput.Value()
}

// IsSearchFocused returns whether the search input is focused
func (m Search) IsSearchFocused() bool {
	return m.searchFocused
}

// ResultCount returns the number of search results
func (m Search) ResultCount() int {
	return len(m.results)
}

// Selected returns the currently selected result index
func (m Search) Selected() int {
	return m.selected
}

// Page returns the zero-based page of the current results.
func (m Search) Page() int {
	return m.page
}

// Loading reports whether a search is in flight.
func (m Search) Loading() bool {
	return m.loading
}

// ClassID returns the category filter, 0 for all categories.
func (m Search) ClassID() int {
	if m.categoryIdx < 0 {
		return 0
	}
	return domain.Categories[m.categoryIdx].ClassID
}

// SelectedItem returns the currently selected result
func (m Search) SelectedItem() *core.ItemState {
	if len(m.results) == 0 || m.selected >= len(m.results) {
		return nil
	}
	return &m.results[m.selected]
}

// Refresh repeats the last search so install state is current.
func (m Search) Refresh() (Search, tea.Cmd) {
	if m.query == "" && len(m.results) == 0 {
		return m, nil
	}
	return m.request(m.page)
}

// Init implements tea.Model
func (m Search) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (m Search) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case SearchResultsMsg:
		m.results = msg.States
		m.total = msg.Total
		m.page = msg.Page
		m.loading = false
		m.err = nil
		if m.selected >= len(m.results) {
			m.selected = 0
		}
		return m, nil

	case SearchErrorMsg:
		m.err = msg.Err
		m.loading = false
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.searchFocused {
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Search) request(page int) (Search, tea.Cmd) {
	m.loading = true
	m.err = nil
	req := SearchRequestMsg{Query: m.query, ClassID: m.ClassID(), Page: page}
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg { return req })
}

func (m Search) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searchFocused {
		switch msg.Type {
		case tea.KeyEsc:
			m.searchFocused = false
			m.searchInput.Blur()
			return m, nil

		case tea.KeyEnter:
			m.searchFocused = false
			m.searchInput.Blur()
			m.query = strings.TrimSpace(m.searchInput.Value())
			m.selected = 0
			return m.request(0)

		default:
			var cmd tea.Cmd
			m.searchInput, cmd = m.searchInput.Update(msg)
			return m, cmd
		}
	}

	k := m.keys
	switch {
	case k.IsSearch(msg):
		m.searchFocused = true
		m.searchInput.Focus()
		return m, textinput.Blink

	case k.IsUp(msg):
		if len(m.results) > 0 {
			m.selected--
			if m.selected < 0 {
				m.selected = len(m.results) - 1
			}
		}
		return m, nil

	case k.IsDown(msg):
		if len(m.results) > 0 {
			m.selected++
			if m.selected >= len(m.results) {
				m.selected = 0
			}
		}
		return m, nil

	case k.IsHome(msg):
		m.selected = 0
		return m, nil

	case k.IsEnd(msg):
		if len(m.results) > 0 {
			m.selected = len(m.results) - 1
		}
		return m, nil

	case k.IsLeft(msg), k.IsRight(msg):
		// Cycle through "all" followed by each category.
		n := len(domain.Categories) + 1
		step := 1
		if k.IsLeft(msg) {
			step = n - 1
		}
		m.categoryIdx = (m.categoryIdx+1+step)%n - 1
		m.selected = 0
		return m.request(0)

	case k.IsNextPage(msg):
		if m.hasNextPage() {
			m.selected = 0
			return m.request(m.page + 1)
		}
		return m, nil

	case k.IsPrevPage(msg):
		if m.page > 0 {
			m.selected = 0
			return m.request(m.page - 1)
		}
		return m, nil

	case k.IsConfirm(msg), k.IsInstall(msg):
		if st := m.SelectedItem(); st != nil {
			state := *st
			return m, func() tea.Msg { return InstallRequestMsg{State: state} }
		}
		return m, nil

	case k.IsDelete(msg):
		if st := m.SelectedItem(); st != nil && st.Entry != nil {
			req := UninstallRequestMsg{ContentID: st.Item.ID, Name: st.Item.Name}
			return m, func() tea.Msg { return req }
		}
		return m, nil
	}

	return m, nil
}

func (m Search) hasNextPage() bool {
	if m.pageSize <= 0 {
		return false
	}
	if m.total > 0 {
		return (m.page+1)*m.pageSize < m.total
	}
	return len(m.results) == m.pageSize
}

// View implements tea.Model
func (m Search) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("69")).
		MarginBottom(1)

	infoStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	itemStyle := lipgloss.NewStyle().
		PaddingLeft(2)

	selectedStyle := lipgloss.NewStyle().
		PaddingLeft(2).
		Foreground(lipgloss.Color("205")).
		Bold(true)

	detailStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		PaddingLeft(4)

	loadingStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("214"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("196"))

	output := titleStyle.Render("Search CurseForge") + "\n"
	output += infoStyle.Render("Category: "+m.categoryLabel()) + "\n\n"

	searchLabel := "Search: "
	if m.searchFocused {
		searchLabel = "Search (esc to exit): "
	}
	output += searchLabel + m.searchInput.View() + "\n\n"

	if m.loading {
		output += loadingStyle.Render(m.spinner.View()+" Searching...") + "\n"
		return output
	}

	if m.err != nil {
		output += errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n"
		return output
	}

	if len(m.results) == 0 {
		if m.query != "" {
			output += itemStyle.Render("Nothing found.") + "\n"
		} else {
			output += itemStyle.Render("Enter a search term and press Enter.") + "\n"
		}
	} else {
		header := fmt.Sprintf("Page %d", m.page+1)
		if m.total > 0 && m.pageSize > 0 {
			header += fmt.Sprintf(" of %d (%d results)", (m.total+m.pageSize-1)/m.pageSize, m.total)
		}
		output += infoStyle.Render(header) + "\n\n"

		for i, st := range m.results {
			cursor := "  "
			style := itemStyle
			if i == m.selected {
				cursor = "▸ "
				style = selectedStyle
			}

			line := fmt.Sprintf("%s%s %s", cursor, statusMark(st.Status), st.Item.Name)
			output += style.Render(line) + "\n"

			if i == m.selected {
				if len(st.Item.Authors) > 0 {
					output += detailStyle.Render("by "+strings.Join(st.Item.Authors, ", ")) + "\n"
				}
				if st.Item.Summary != "" {
					output += detailStyle.Render(st.Item.Summary) + "\n"
				}
				output += detailStyle.Render(fmt.Sprintf("ID: %d  %s  Downloads: %d  Status: %s",
					st.Item.ID, st.Item.Category().Name, st.Item.DownloadCount, st.Status)) + "\n"
				if st.Conflict {
					output += detailStyle.Render("A matching local file belongs to another item") + "\n"
				}
				output += "\n"
			}
		}
	}

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		MarginTop(1)

	if m.searchFocused {
		output += helpStyle.Render("enter: search  esc: exit search")
	} else {
		k := m.keys
		output += helpStyle.Render(k.NavigationHelp() + "  " + HelpLine(k.Search, k.Install, k.Delete, k.NextPage, k.PrevPage))
	}

	return output
}

func (m Search) categoryLabel() string {
	if m.categoryIdx < 0 {
		return "all"
	}
	return domain.Categories[m.categoryIdx].Name
}

func statusMark(s domain.ItemStatus) string {
	switch s {
	case domain.StatusInstalled:
		return "[✓]"
	case domain.StatusUpdateAvailable:
		return "[↑]"
	default:
		return "[ ]"
	}
}
