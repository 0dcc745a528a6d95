package views

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"hcf/internal/core"
	"hcf/internal/domain"
)

// Installed lists the artifacts found in the game directory
type Installed struct {
	keys     *KeyMap
	gameDir  string
	items    []core.InstalledItem
	missing  []domain.RegistryEntry
	selected int
	loaded   bool
	err      error
	width    int
	height   int
}

// NewInstalled creates a new installed view
func NewInstalled(keys *KeyMap, gameDir string) Installed {
	return Installed{
		keys:    keys,
		gameDir: gameDir,
		width:   80,
		height:  24,
	}
}

// Selected returns the currently selected index
func (m Installed) Selected() int {
	return m.selected
}

// ItemCount returns the number of artifacts on disk
func (m Installed) ItemCount() int {
	return len(m.items)
}

// UpdateCount returns how many listed items have an update pending.
func (m Installed) UpdateCount() int {
	n := 0
	for _, it := range m.items {
		if it.UpdateAvailable {
			n++
		}
	}
	return n
}

// SelectedItem returns the currently selected artifact
func (m Installed) SelectedItem() *core.InstalledItem {
	if len(m.items) == 0 || m.selected >= len(m.items) {
		return nil
	}
	return &m.items[m.selected]
}

// Init implements tea.Model
func (m Installed) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Installed) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case InstalledLoadedMsg:
		m.loaded = true
		m.err = msg.Err
		if msg.Err == nil {
			m.items = msg.Items
			m.missing = msg.Missing
		}
		if m.selected >= len(m.items) {
			m.selected = max(len(m.items)-1, 0)
		}
		return m, nil
	}

	return m, nil
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

func (m Installed) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case k.IsRefresh(msg):
		return m, emit(RefreshRequestMsg{})
	case k.IsCheck(msg):
		return m, emit(CheckUpdatesRequestMsg{})
	case k.IsUpdateAll(msg):
		return m, emit(UpdateAllRequestMsg{})
	}

	if len(m.items) == 0 {
		return m, nil
	}

	switch {
	case k.IsUp(msg):
		m.selected--
		if m.selected < 0 {
			m.selected = len(m.items) - 1
		}
		return m, nil

	case k.IsDown(msg):
		m.selected++
		if m.selected >= len(m.items) {
			m.selected = 0
		}
		return m, nil

	case k.IsHome(msg):
		m.selected = 0
		return m, nil

	case k.IsEnd(msg):
		m.selected = len(m.items) - 1
		return m, nil

	case k.IsDelete(msg):
		it := m.items[m.selected]
		if it.Entry != nil {
			return m, emit(UninstallRequestMsg{ContentID: it.Entry.ContentID, Name: it.Entry.Name})
		}
		return m, emit(RemovePathRequestMsg{RelativePath: it.Artifact.RelativePath})
	}

	return m, nil
}

// View implements tea.Model
func (m Installed) View() string {
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

	untrackedStyle := lipgloss.NewStyle().
		PaddingLeft(2).
		Foreground(lipgloss.Color("241"))

	updateStyle := lipgloss.NewStyle().
		PaddingLeft(2).
		Foreground(lipgloss.Color("214"))

	detailStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		PaddingLeft(4)

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("196"))

	output := titleStyle.Render("Installed") + "\n"
	output += infoStyle.Render("Game directory: "+m.gameDir) + "\n\n"

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		MarginTop(1)
	k := m.keys
	help := helpStyle.Render(k.NavigationHelp() + "  " + HelpLine(k.Delete, k.Check, k.UpdateAll, k.Refresh))

	if m.err != nil {
		output += errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n"
	}

	if !m.loaded {
		return output + itemStyle.Render("Scanning...") + "\n"
	}

	if len(m.items) == 0 {
		output += itemStyle.Render("Nothing installed in this game directory.") + "\n\n"
		output += infoStyle.Render("Find content in the Search view (tab)") + "\n"
	} else {
		summary := fmt.Sprintf("%d item(s)", len(m.items))
		if n := m.UpdateCount(); n > 0 {
			summary += fmt.Sprintf(", %d update(s) available", n)
		}
		output += infoStyle.Render(summary) + "\n\n"

		for i, it := range m.items {
			cursor := "  "
			style := itemStyle
			mark := "[✓]"
			name := it.Artifact.Name

			switch {
			case it.Entry == nil:
				style = untrackedStyle
				mark = "[?]"
			case it.UpdateAvailable:
				style = updateStyle
				mark = "[↑]"
			}
			if it.Entry != nil {
				name = it.Entry.Name
			}
			if i == m.selected {
				cursor = "▸ "
				style = selectedStyle
			}

			output += style.Render(fmt.Sprintf("%s%s %s", cursor, mark, name)) + "\n"

			if i == m.selected {
				output += detailStyle.Render(it.Artifact.RelativePath) + "\n"
				if it.Entry != nil {
					output += detailStyle.Render(fmt.Sprintf("ID: %d  File: %s", it.Entry.ContentID, it.Entry.FileName)) + "\n"
				} else {
					output += detailStyle.Render("Not tracked in installed_mods.json") + "\n"
				}
				if !it.Artifact.IsDir {
					output += detailStyle.Render("Size: "+humanize.Bytes(uint64(it.Artifact.SizeBytes))) + "\n"
				}
				if it.UpdateAvailable {
					output += detailStyle.Render("Update available") + "\n"
				}
				output += "\n"
			}
		}
	}

	if len(m.missing) > 0 {
		output += "\n" + infoStyle.Render(fmt.Sprintf("Registered but missing on disk (%d):", len(m.missing))) + "\n"
		for _, e := range m.missing {
			output += untrackedStyle.Render(fmt.Sprintf("  %s (%s)", e.Name, e.RelativePath())) + "\n"
		}
	}

	return output + help
}
