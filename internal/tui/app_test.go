package tui_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hcf/internal/core"
	"hcf/internal/domain"
	"hcf/internal/registry"
	"hcf/internal/source"
	"hcf/internal/tui"
	"hcf/internal/tui/views"
)

// stubSource answers searches from a fixed list and knows nothing else.
type stubSource struct {
	items []domain.RemoteItem
}

func (s *stubSource) ID() string   { return "stub" }
func (s *stubSource) Name() string { return "Stub" }

func (s *stubSource) Search(ctx context.Context, q source.SearchQuery) (source.SearchResult, error) {
	return source.SearchResult{Items: s.items, TotalCount: len(s.items), PageSize: q.PageSize}, nil
}

func (s *stubSource) GetItem(ctx context.Context, id int) (*domain.RemoteItem, error) {
	return nil, domain.ErrItemNotFound
}

func (s *stubSource) GetFiles(ctx context.Context, id int) ([]domain.RemoteFile, error) {
	return nil, domain.ErrItemNotFound
}

func (s *stubSource) GetDownloadURL(ctx context.Context, id, fileID int) (string, error) {
	return "", domain.ErrNoDownloadURL
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func update(t *testing.T, app tui.App, msg tea.Msg) (tui.App, tea.Cmd) {
	t.Helper()
	m, cmd := app.Update(msg)
	next, ok := m.(tui.App)
	require.True(t, ok)
	return next, cmd
}

// newGameSession creates a game directory holding one registered mod.
func newGameSession(t *testing.T, src source.ContentSource) *core.Session {
	t.Helper()
	gameDir := t.TempDir()
	modsDir := filepath.Join(gameDir, "UserData", "Mods")
	require.NoError(t, os.MkdirAll(modsDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(modsDir, "cool-mod.jar"), []byte("jar"), 0644))
	require.NoError(t, registry.Load(gameDir).Add(domain.RegistryEntry{
		ContentID: 42,
		Name:      "Cool Mod",
		FileName:  "cool-mod.jar",
		FileID:    domain.IntPtr(100),
		ClassID:   domain.ClassMods,
	}))

	session, err := core.NewSession(gameDir, src)
	require.NoError(t, err)
	return session
}

func TestNewApp_InitialState(t *testing.T) {
	app := tui.NewApp(context.Background(), nil, tui.Options{})

	assert.Equal(t, tui.ViewSearch, app.CurrentView())
	assert.False(t, app.ModalOpen())
	assert.Contains(t, app.View(), "hcf - Hytale CurseForge")
}

func TestApp_NavigateToView(t *testing.T) {
	app := tui.NewApp(context.Background(), nil, tui.Options{})

	app, _ = update(t, app, tui.NavigateMsg{View: tui.ViewInstalled})
	assert.Equal(t, tui.ViewInstalled, app.CurrentView())
}

func TestApp_TabSwitchesViews(t *testing.T) {
	app := tui.NewApp(context.Background(), nil, tui.Options{})

	// Tab works even while the search box has focus.
	app, _ = update(t, app, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, tui.ViewInstalled, app.CurrentView())

	app, _ = update(t, app, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, tui.ViewSearch, app.CurrentView())
}

func TestApp_QuitOnQ(t *testing.T) {
	app := tui.NewApp(context.Background(), nil, tui.Options{})
	app, _ = update(t, app, tui.NavigateMsg{View: tui.ViewInstalled})

	_, cmd := update(t, app, runeKey('q'))
	require.NotNil(t, cmd)
	_, isQuit := cmd().(tea.QuitMsg)
	assert.True(t, isQuit)
}

func TestApp_QTypesIntoFocusedSearch(t *testing.T) {
	app := tui.NewApp(context.Background(), nil, tui.Options{})

	app, _ = update(t, app, runeKey('q'))
	_, cmd := update(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	var req *views.SearchRequestMsg
	for _, c := range batch {
		if r, ok := c().(views.SearchRequestMsg); ok {
			req = &r
		}
	}
	require.NotNil(t, req, "enter should request a search")
	assert.Equal(t, "q", req.Query)
}

func TestApp_CtrlCAlwaysQuits(t *testing.T) {
	app := tui.NewApp(context.Background(), nil, tui.Options{})

	_, cmd := update(t, app, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	_, isQuit := cmd().(tea.QuitMsg)
	assert.True(t, isQuit)
}

func TestApp_HelpToggle(t *testing.T) {
	app := tui.NewApp(context.Background(), nil, tui.Options{})
	app, _ = update(t, app, tui.NavigateMsg{View: tui.ViewInstalled})

	app, _ = update(t, app, runeKey('?'))
	assert.Contains(t, app.View(), "Navigation:")

	app, _ = update(t, app, runeKey('?'))
	assert.NotContains(t, app.View(), "Navigation:")
}

func TestApp_SearchRoundTrip(t *testing.T) {
	src := &stubSource{items: []domain.RemoteItem{
		{ID: 42, Name: "Cool Mod", ClassID: domain.ClassMods},
		{ID: 7, Name: "Other", ClassID: domain.ClassMods},
	}}
	app := tui.NewApp(context.Background(), newGameSession(t, src), tui.Options{PageSize: 10})

	app, cmd := update(t, app, views.SearchRequestMsg{Query: "cool"})
	require.NotNil(t, cmd)
	results, ok := cmd().(views.SearchResultsMsg)
	require.True(t, ok)
	require.Len(t, results.States, 2)
	assert.Equal(t, domain.StatusInstalled, results.States[0].Status)

	app, _ = update(t, app, results)
	view := app.View()
	assert.Contains(t, view, "[✓] Cool Mod")
	assert.Contains(t, view, "Other")
}

func TestApp_UninstallConfirmed(t *testing.T) {
	session := newGameSession(t, &stubSource{})
	app := tui.NewApp(context.Background(), session, tui.Options{})

	app, cmd := update(t, app, views.UninstallRequestMsg{ContentID: 42, Name: "Cool Mod"})
	assert.Nil(t, cmd)
	require.True(t, app.ModalOpen())
	assert.Contains(t, app.View(), "Remove Cool Mod (ID 42)?")

	app, cmd = update(t, app, runeKey('y'))
	assert.False(t, app.ModalOpen())
	require.NotNil(t, cmd)

	// The modal emits the confirmed action, which runs the removal.
	app, cmd = update(t, app, cmd())
	require.NotNil(t, cmd)
	app, _ = update(t, app, cmd())

	assert.Equal(t, "Removed Cool Mod.", app.Status())
	_, ok := session.Registry().Get(42)
	assert.False(t, ok)
	assert.NoFileExists(t, filepath.Join(session.GameDir(), "UserData", "Mods", "cool-mod.jar"))
}

func TestApp_UninstallDeclined(t *testing.T) {
	session := newGameSession(t, &stubSource{})
	app := tui.NewApp(context.Background(), session, tui.Options{})

	app, _ = update(t, app, views.UninstallRequestMsg{ContentID: 42, Name: "Cool Mod"})
	app, cmd := update(t, app, runeKey('n'))
	require.NotNil(t, cmd)
	app, _ = update(t, app, cmd())

	assert.False(t, app.ModalOpen())
	assert.Equal(t, "Cancelled.", app.Status())
	_, ok := session.Registry().Get(42)
	assert.True(t, ok)
}

func TestApp_UpdateAllNeedsCheck(t *testing.T) {
	app := tui.NewApp(context.Background(), newGameSession(t, &stubSource{}), tui.Options{})

	app, cmd := update(t, app, views.UpdateAllRequestMsg{})
	assert.Nil(t, cmd)
	assert.False(t, app.ModalOpen())
	assert.Contains(t, app.Status(), "Check for updates first")
}

func TestApp_InstalledLoads(t *testing.T) {
	app := tui.NewApp(context.Background(), newGameSession(t, &stubSource{}), tui.Options{})
	app, _ = update(t, app, tui.NavigateMsg{View: tui.ViewInstalled})

	app, cmd := update(t, app, views.RefreshRequestMsg{})
	require.NotNil(t, cmd)
	app, _ = update(t, app, cmd())

	assert.Contains(t, app.View(), "Cool Mod")
}
