package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// KeyMap defines keybindings for the TUI
type KeyMap struct {
	mode string

	Up         key.Binding
	Down       key.Binding
	Left       key.Binding
	Right      key.Binding
	Home       key.Binding
	End        key.Binding
	Confirm    key.Binding
	Cancel     key.Binding
	Quit       key.Binding
	Search     key.Binding
	Help       key.Binding
	Delete     key.Binding
	Install    key.Binding
	Refresh    key.Binding
	Check      key.Binding
	UpdateAll  key.Binding
	NextPage   key.Binding
	PrevPage   key.Binding
	SwitchView key.Binding
}

// NewKeyMap creates a new keymap for the given mode ("vim" or "standard")
func NewKeyMap(mode string) *KeyMap {
	if mode == "" {
		mode = "vim"
	}
	vim := mode == "vim"

	nav := func(arrow, vimKey, help, desc string) key.Binding {
		keys := []string{arrow}
		if vim {
			keys = append(keys, vimKey)
			help = vimKey
		}
		return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
	}

	return &KeyMap{
		mode:       mode,
		Up:         nav("up", "k", "↑", "up"),
		Down:       nav("down", "j", "↓", "down"),
		Left:       nav("left", "h", "←", "prev category"),
		Right:      nav("right", "l", "→", "next category"),
		Home:       nav("home", "g", "home", "first"),
		End:        nav("end", "G", "end", "last"),
		Confirm:    key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "select")),
		Cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Delete:     key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "remove")),
		Install:    key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "install")),
		Refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Check:      key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "check updates")),
		UpdateAll:  key.NewBinding(key.WithKeys("U"), key.WithHelp("U", "update all")),
		NextPage:   key.NewBinding(key.WithKeys("n", "pgdown"), key.WithHelp("n", "next page")),
		PrevPage:   key.NewBinding(key.WithKeys("p", "pgup"), key.WithHelp("p", "prev page")),
		SwitchView: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch view")),
	}
}

// Mode returns the current keybinding mode
func (k *KeyMap) Mode() string {
	return k.mode
}

// IsUp returns true if the key is an "up" navigation key
func (k *KeyMap) IsUp(msg tea.KeyMsg) bool { return key.Matches(msg, k.Up) }

// IsDown returns true if the key is a "down" navigation key
func (k *KeyMap) IsDown(msg tea.KeyMsg) bool { return key.Matches(msg, k.Down) }

// IsLeft returns true if the key is a "left" navigation key
func (k *KeyMap) IsLeft(msg tea.KeyMsg) bool { return key.Matches(msg, k.Left) }

// IsRight returns true if the key is a "right" navigation key
func (k *KeyMap) IsRight(msg tea.KeyMsg) bool { return key.Matches(msg, k.Right) }

// IsHome returns true if the key should go to first item
func (k *KeyMap) IsHome(msg tea.KeyMsg) bool { return key.Matches(msg, k.Home) }

// IsEnd returns true if the key should go to last item
func (k *KeyMap) IsEnd(msg tea.KeyMsg) bool { return key.Matches(msg, k.End) }

// IsConfirm returns true if the key is a confirm/select key
func (k *KeyMap) IsConfirm(msg tea.KeyMsg) bool { return key.Matches(msg, k.Confirm) }

// IsCancel returns true if the key is a cancel/back key
func (k *KeyMap) IsCancel(msg tea.KeyMsg) bool { return key.Matches(msg, k.Cancel) }

// IsQuit returns true if the key is a quit key
func (k *KeyMap) IsQuit(msg tea.KeyMsg) bool { return key.Matches(msg, k.Quit) }

// IsSearch returns true if the key should focus search
func (k *KeyMap) IsSearch(msg tea.KeyMsg) bool { return key.Matches(msg, k.Search) }

// IsHelp returns true if the key should show help
func (k *KeyMap) IsHelp(msg tea.KeyMsg) bool { return key.Matches(msg, k.Help) }

// IsDelete returns true if the key is a delete key
func (k *KeyMap) IsDelete(msg tea.KeyMsg) bool { return key.Matches(msg, k.Delete) }

// IsInstall returns true if the key installs the selection
func (k *KeyMap) IsInstall(msg tea.KeyMsg) bool { return key.Matches(msg, k.Install) }

// IsRefresh returns true if the key rescans the game directory
func (k *KeyMap) IsRefresh(msg tea.KeyMsg) bool { return key.Matches(msg, k.Refresh) }

// IsCheck returns true if the key starts an update check
func (k *KeyMap) IsCheck(msg tea.KeyMsg) bool { return key.Matches(msg, k.Check) }

// IsUpdateAll returns true if the key updates everything pending
func (k *KeyMap) IsUpdateAll(msg tea.KeyMsg) bool { return key.Matches(msg, k.UpdateAll) }

// IsNextPage returns true if the key moves to the next result page
func (k *KeyMap) IsNextPage(msg tea.KeyMsg) bool { return key.Matches(msg, k.NextPage) }

// IsPrevPage returns true if the key moves to the previous result page
func (k *KeyMap) IsPrevPage(msg tea.KeyMsg) bool { return key.Matches(msg, k.PrevPage) }

// IsSwitchView returns true if the key toggles between views
func (k *KeyMap) IsSwitchView(msg tea.KeyMsg) bool { return key.Matches(msg, k.SwitchView) }

// NavigationHelp returns help text for navigation keys
func (k *KeyMap) NavigationHelp() string {
	if k.mode == "vim" {
		return "j/k: navigate  h/l: category"
	}
	return "↑/↓: navigate  ←/→: category"
}

// HelpLine renders bindings as "key: desc" pairs.
func HelpLine(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+": "+h.Desc)
	}
	return strings.Join(parts, "  ")
}

// FullHelp returns complete help text
func (k *KeyMap) FullHelp() string {
	first, last := "g/G", "Go to first/last item"
	if k.mode != "vim" {
		first, last = "Home/End", "Go to first/last item"
	}

	var b strings.Builder
	b.WriteString("Navigation:\n")
	b.WriteString("  " + k.NavigationHelp() + "\n")
	b.WriteString("  " + first + "  " + last + "\n")
	b.WriteString("  tab  Switch between Search and Installed\n\n")
	b.WriteString("Search:\n")
	b.WriteString("  " + HelpLine(k.Search, k.NextPage, k.PrevPage) + "\n")
	b.WriteString("  " + HelpLine(k.Install, k.Delete) + "\n\n")
	b.WriteString("Installed:\n")
	b.WriteString("  " + HelpLine(k.Check, k.UpdateAll, k.Refresh, k.Delete) + "\n\n")
	b.WriteString("  " + HelpLine(k.Help, k.Quit))
	return b.String()
}
