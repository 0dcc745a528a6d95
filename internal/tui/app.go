package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"hcf/internal/core"
	"hcf/internal/domain"
	"hcf/internal/source"
	"hcf/internal/tui/views"
)

// ViewType represents different screens in the TUI
type ViewType int

const (
	ViewSearch ViewType = iota
	ViewInstalled
)

// NavigateMsg is sent to change views
type NavigateMsg struct {
	View ViewType
}

// ErrorMsg is sent when an error occurs
type ErrorMsg struct {
	Err error
}

// Options controls search defaults and key bindings.
type Options struct {
	PageSize    int
	SortField   int
	SortOrder   string
	ClassID     int // preselected search category, 0 for all
	Keybindings string
}

// Internal messages: confirmed actions and their results.
type (
	runInstallMsg    struct{ item domain.RemoteItem }
	runUninstallMsg  struct{ id int }
	runRemovePathMsg struct{ path string }
	runBatchMsg      struct{ ids []int }

	opDoneMsg struct {
		status string
		err    error
	}

	updatesCheckedMsg struct {
		updates domain.UpdateSet
		err     error
	}
)

type batchState struct {
	ch        <-chan tea.Msg
	cancel    context.CancelFunc
	bar       progress.Model
	total     int
	completed int
	failed    int
	current   string
	download  float64 // current item, 0-1
}

// App is the main TUI application model
type App struct {
	ctx     context.Context
	session *core.Session
	opts    Options
	keys    *views.KeyMap

	currentView ViewType
	width       int
	height      int
	err         error
	status      string
	showHelp    bool
	busy        bool

	search    views.Search
	installed views.Installed
	modal     *views.Confirm
	batch     *batchState
	watcher   *dirWatcher
}

// NewApp creates a new TUI application. A nil session renders the views but
// cannot run any operation.
func NewApp(ctx context.Context, session *core.Session, opts Options) App {
	if opts.PageSize <= 0 {
		opts.PageSize = 20
	}
	keys := views.NewKeyMap(opts.Keybindings)

	gameDir := ""
	if session != nil {
		gameDir = session.GameDir()
	}

	return App{
		ctx:         ctx,
		session:     session,
		opts:        opts,
		keys:        keys,
		currentView: ViewSearch,
		width:       80,
		height:      24,
		search:      views.NewSearch(keys, opts.ClassID, opts.PageSize),
		installed:   views.NewInstalled(keys, gameDir),
	}
}

// CurrentView returns the current view type
func (a App) CurrentView() ViewType {
	return a.currentView
}

// Status returns the last status line.
func (a App) Status() string {
	return a.status
}

// Busy reports whether a batch update is running.
func (a App) Busy() bool {
	return a.busy
}

// ModalOpen reports whether a confirmation is pending.
func (a App) ModalOpen() bool {
	return a.modal != nil
}

// Init implements tea.Model
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.search.Init(), a.loadInstalled()}
	if a.watcher != nil {
		cmds = append(cmds, a.watcher.wait())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.search = updateView(a.search, msg)
		a.installed = updateView(a.installed, msg)
		if a.batch != nil {
			a.batch.bar.Width = min(msg.Width-4, 60)
		}
		return a, nil

	case NavigateMsg:
		a.currentView = msg.View
		return a, nil

	case ErrorMsg:
		a.err = msg.Err
		return a, nil

	case spinner.TickMsg, views.SearchResultsMsg, views.SearchErrorMsg:
		var cmd tea.Cmd
		var m tea.Model
		m, cmd = a.search.Update(msg)
		a.search = m.(views.Search)
		return a, cmd

	case views.InstalledLoadedMsg:
		a.installed = updateView(a.installed, msg)
		return a, nil

	case views.ConfirmCancelledMsg:
		a.status = "Cancelled."
		return a, nil

	case DirChangedMsg:
		cmds := []tea.Cmd{a.loadInstalled()}
		if a.watcher != nil {
			cmds = append(cmds, a.watcher.wait())
		}
		return a, tea.Batch(cmds...)
	}

	if a.session == nil {
		return a.updateCurrentView(msg)
	}
	return a.handleOperation(msg)
}

func (a App) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return a.quit()
	}

	if a.modal != nil {
		m, cmd := a.modal.Update(msg)
		confirm := m.(views.Confirm)
		if confirm.Done() {
			a.modal = nil
		} else {
			a.modal = &confirm
		}
		return a, cmd
	}

	// Typing in the search box takes every key except view switching.
	if a.currentView == ViewSearch && a.search.IsSearchFocused() {
		if a.keys.IsSwitchView(msg) {
			a.currentView = ViewInstalled
			return a, nil
		}
		return a.updateCurrentView(msg)
	}

	switch {
	case a.keys.IsQuit(msg):
		return a.quit()

	case a.keys.IsHelp(msg):
		a.showHelp = !a.showHelp
		return a, nil

	case a.keys.IsSwitchView(msg):
		if a.currentView == ViewSearch {
			a.currentView = ViewInstalled
		} else {
			a.currentView = ViewSearch
		}
		return a, nil
	}

	switch msg.String() {
	case "1":
		a.currentView = ViewSearch
		return a, nil
	case "2":
		a.currentView = ViewInstalled
		return a, nil
	}

	if a.showHelp && a.keys.IsCancel(msg) {
		a.showHelp = false
		return a, nil
	}

	return a.updateCurrentView(msg)
}

func (a App) quit() (tea.Model, tea.Cmd) {
	if a.batch != nil {
		a.batch.cancel()
	}
	return a, tea.Quit
}

func (a App) updateCurrentView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var m tea.Model
	var cmd tea.Cmd

	switch a.currentView {
	case ViewSearch:
		m, cmd = a.search.Update(msg)
		a.search = m.(views.Search)
	case ViewInstalled:
		m, cmd = a.installed.Update(msg)
		a.installed = m.(views.Installed)
	}

	return a, cmd
}

func updateView[M tea.Model](v M, msg tea.Msg) M {
	m, _ := v.Update(msg)
	return m.(M)
}

// handleOperation turns view requests into session work.
func (a App) handleOperation(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case views.SearchRequestMsg:
		return a, a.runSearch(msg)

	case views.InstallRequestMsg:
		if a.busy {
			a.status = "Wait for the running update to finish."
			return a, nil
		}
		st := msg.State
		if st.Conflict {
			return a.openModal(fmt.Sprintf("A local file matching %s belongs to another item. Install anyway?", st.Item.Name), runInstallMsg{item: st.Item})
		}
		if st.Installed() {
			return a.openModal(fmt.Sprintf("Reinstall %s?", st.Item.Name), runInstallMsg{item: st.Item})
		}
		return a.Update(runInstallMsg{item: st.Item})

	case views.UninstallRequestMsg:
		if a.busy {
			a.status = "Wait for the running update to finish."
			return a, nil
		}
		return a.openModal(fmt.Sprintf("Remove %s (ID %d)?", msg.Name, msg.ContentID), runUninstallMsg{id: msg.ContentID})

	case views.RemovePathRequestMsg:
		if a.busy {
			a.status = "Wait for the running update to finish."
			return a, nil
		}
		return a.openModal(fmt.Sprintf("Delete %s?", msg.RelativePath), runRemovePathMsg{path: msg.RelativePath})

	case views.RefreshRequestMsg:
		return a, a.loadInstalled()

	case views.CheckUpdatesRequestMsg:
		a.status = "Checking for updates..."
		return a, a.checkUpdates()

	case views.UpdateAllRequestMsg:
		if a.busy {
			a.status = "An update is already running."
			return a, nil
		}
		updates := a.session.Updates()
		if updates == nil {
			a.status = fmt.Sprintf("Check for updates first (%s).", a.keys.Check.Help().Key)
			return a, nil
		}
		if len(updates) == 0 {
			a.status = "Everything is up to date."
			return a, nil
		}
		return a.openModal(fmt.Sprintf("Update %d item(s)?", len(updates)), runBatchMsg{ids: updates.IDs()})

	case runInstallMsg:
		a.status = fmt.Sprintf("Installing %s...", msg.item.Name)
		return a, a.install(msg.item)

	case runUninstallMsg:
		return a, a.uninstall(msg.id)

	case runRemovePathMsg:
		return a, a.removePath(msg.path)

	case opDoneMsg:
		a.err = msg.err
		if msg.err == nil {
			a.status = msg.status
		} else {
			a.status = ""
		}
		var refresh tea.Cmd
		a.search, refresh = a.search.Refresh()
		return a, tea.Batch(a.loadInstalled(), refresh)

	case updatesCheckedMsg:
		a.err = msg.err
		switch n := len(msg.updates); {
		case n == 0 && msg.err == nil:
			a.status = "Everything is up to date."
		case n > 0:
			a.status = fmt.Sprintf("%d update(s) available; press %s to apply.", n, a.keys.UpdateAll.Help().Key)
		default:
			a.status = ""
		}
		return a, a.loadInstalled()

	case runBatchMsg:
		return a.beginBatch(msg.ids)

	case BatchItemStartMsg:
		if a.batch == nil {
			return a, nil
		}
		name := fmt.Sprintf("ID %d", msg.ContentID)
		if e, ok := a.session.Registry().Get(msg.ContentID); ok {
			name = e.Name
		}
		a.batch.current = name
		a.batch.download = 0
		a.status = fmt.Sprintf("[%d/%d] Updating %s...", msg.N, msg.Total, name)
		return a, waitForBatch(a.batch.ch)

	case BatchDownloadMsg:
		if a.batch == nil {
			return a, nil
		}
		if msg.Progress.TotalBytes > 0 {
			a.batch.download = msg.Progress.Percentage / 100
		}
		return a, waitForBatch(a.batch.ch)

	case BatchItemDoneMsg:
		if a.batch == nil {
			return a, nil
		}
		a.batch.completed = msg.Progress.Completed
		if msg.Progress.Err != nil {
			a.batch.failed++
			log.Warn().Err(msg.Progress.Err).Int("content_id", msg.Progress.ContentID).Msg("update failed")
		}
		return a, tea.Batch(waitForBatch(a.batch.ch), a.loadInstalled())

	case BatchDoneMsg:
		if a.batch == nil {
			return a, nil
		}
		a.batch = nil
		a.busy = false
		a.status = batchSummary(msg.Report)
		if !msg.Report.AllSucceeded() && !msg.Report.Cancelled {
			a.err = fmt.Errorf("%d update(s) failed", len(msg.Report.Failed))
		}
		return a, a.loadInstalled()
	}

	return a.updateCurrentView(msg)
}

func (a App) openModal(prompt string, action tea.Msg) (tea.Model, tea.Cmd) {
	m := views.NewConfirm(prompt, action)
	a.modal = &m
	a.err = nil
	return a, nil
}

func (a App) beginBatch(ids []int) (tea.Model, tea.Cmd) {
	ctx, cancel := context.WithCancel(a.ctx)
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = min(a.width-4, 60)

	a.batch = &batchState{
		ch:     startBatch(ctx, ids, a.session.RunUpdates),
		cancel: cancel,
		bar:    bar,
		total:  len(ids),
	}
	a.busy = true
	a.err = nil
	a.status = fmt.Sprintf("Updating %d item(s)...", len(ids))
	return a, waitForBatch(a.batch.ch)
}

func batchSummary(r core.BatchReport) string {
	switch {
	case r.Cancelled:
		return fmt.Sprintf("Stopped: %d of %d updated.", r.Succeeded, r.Total)
	case r.AllSucceeded():
		return fmt.Sprintf("Updated %d item(s).", r.Succeeded)
	default:
		return fmt.Sprintf("Updated %d of %d item(s).", r.Succeeded, r.Total)
	}
}

func (a App) runSearch(req views.SearchRequestMsg) tea.Cmd {
	session, ctx := a.session, a.ctx
	q := source.SearchQuery{
		Query:     req.Query,
		ClassID:   req.ClassID,
		Page:      req.Page,
		PageSize:  a.opts.PageSize,
		SortField: a.opts.SortField,
		SortOrder: a.opts.SortOrder,
	}
	return func() tea.Msg {
		states, res, err := session.Search(ctx, q)
		if err != nil {
			return views.SearchErrorMsg{Err: err}
		}
		return views.SearchResultsMsg{States: states, Total: res.TotalCount, Page: req.Page}
	}
}

func (a App) loadInstalled() tea.Cmd {
	session := a.session
	if session == nil {
		return nil
	}
	return func() tea.Msg {
		items, err := session.Installed()
		return views.InstalledLoadedMsg{Items: items, Missing: session.MissingEntries(), Err: err}
	}
}

func (a App) install(item domain.RemoteItem) tea.Cmd {
	session, ctx := a.session, a.ctx
	return func() tea.Msg {
		entry, err := session.InstallItem(ctx, item, nil)
		if err != nil {
			return opDoneMsg{err: fmt.Errorf("installing %s: %w", item.Name, err)}
		}
		return opDoneMsg{status: fmt.Sprintf("Installed %s to %s.", entry.Name, entry.RelativePath())}
	}
}

func (a App) uninstall(id int) tea.Cmd {
	session := a.session
	return func() tea.Msg {
		name := fmt.Sprintf("ID %d", id)
		if e, ok := session.Registry().Get(id); ok {
			name = e.Name
		}
		status, err := session.Uninstall(id)
		if err != nil {
			return opDoneMsg{err: fmt.Errorf("removing %s: %w", name, err)}
		}
		return opDoneMsg{status: removedStatus(name, status)}
	}
}

func (a App) removePath(path string) tea.Cmd {
	session := a.session
	return func() tea.Msg {
		status, err := session.RemovePath(path)
		if err != nil {
			return opDoneMsg{err: fmt.Errorf("removing %s: %w", path, err)}
		}
		return opDoneMsg{status: removedStatus(path, status)}
	}
}

func removedStatus(name string, status core.RemoveStatus) string {
	if status == core.RemoveAlreadyClean {
		return fmt.Sprintf("%s was already gone; registry cleaned up.", name)
	}
	return fmt.Sprintf("Removed %s.", name)
}

func (a App) checkUpdates() tea.Cmd {
	session, ctx := a.session, a.ctx
	return func() tea.Msg {
		updates, err := session.CheckUpdates(ctx, nil)
		if err != nil && updates == nil {
			return updatesCheckedMsg{err: err}
		}
		return updatesCheckedMsg{updates: updates, err: err}
	}
}

// View implements tea.Model
func (a App) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		MarginBottom(1)

	tabStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	activeTabStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("205")).
		Bold(true)

	header := titleStyle.Render("hcf - Hytale CurseForge")

	tabs := []string{"[1]Search", "[2]Installed"}
	var tabBar strings.Builder
	for i, tab := range tabs {
		if ViewType(i) == a.currentView {
			tabBar.WriteString(activeTabStyle.Render(tab) + "  ")
		} else {
			tabBar.WriteString(tabStyle.Render(tab) + "  ")
		}
	}

	var content string
	switch {
	case a.modal != nil:
		content = lipgloss.Place(a.width, max(a.height-8, 5), lipgloss.Center, lipgloss.Center, a.modal.View())
	case a.showHelp:
		content = a.keys.FullHelp()
	default:
		content = a.renderCurrentView()
	}

	var lines []string
	if a.batch != nil {
		overall := 0.0
		if a.batch.total > 0 {
			overall = (float64(a.batch.completed) + a.batch.download) / float64(a.batch.total)
		}
		lines = append(lines, a.batch.bar.ViewAs(overall))
	}
	if a.status != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Render(a.status))
	}
	if a.err != nil {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
		lines = append(lines, errStyle.Render(fmt.Sprintf("Error: %v", a.err)))
	}

	footerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		MarginTop(1)
	footer := footerStyle.Render(views.HelpLine(a.keys.SwitchView, a.keys.Help, a.keys.Quit))

	out := fmt.Sprintf("%s\n%s\n\n%s\n", header, tabBar.String(), content)
	if len(lines) > 0 {
		out += "\n" + strings.Join(lines, "\n") + "\n"
	}
	return out + "\n" + footer
}

func (a App) renderCurrentView() string {
	switch a.currentView {
	case ViewSearch:
		return a.search.View()
	case ViewInstalled:
		return a.installed.View()
	default:
		return "Unknown view"
	}
}

// Run starts the TUI application on session. Category directories are
// watched so the Installed view follows changes made outside the TUI.
func Run(ctx context.Context, session *core.Session, opts Options) error {
	if session == nil {
		return errors.New("tui: no session")
	}
	app := NewApp(ctx, session, opts)

	w, err := newDirWatcher(session.GameDir())
	if err != nil {
		log.Warn().Err(err).Msg("file watching disabled")
	} else {
		defer w.Close()
		app.watcher = w
	}

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}
