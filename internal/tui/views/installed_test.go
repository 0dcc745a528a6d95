package views_test

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hcf/internal/core"
	"hcf/internal/domain"
	"hcf/internal/tui/views"
)

func loadedInstalled(t *testing.T) views.Installed {
	t.Helper()
	tracked := domain.RegistryEntry{ContentID: 10, Name: "Tracked Mod", FileName: "tracked.jar", ClassID: domain.ClassMods}
	missing := domain.RegistryEntry{ContentID: 11, Name: "Gone", FileName: "gone.jar", ClassID: domain.ClassMods}

	m := views.NewInstalled(views.NewKeyMap("vim"), "/games/hytale")
	next, _ := m.Update(views.InstalledLoadedMsg{
		Items: []core.InstalledItem{
			{
				Artifact:        domain.InstalledArtifact{ClassID: domain.ClassMods, RelativePath: "UserData/Mods/tracked.jar", Name: "tracked.jar", SizeBytes: 2048},
				Entry:           &tracked,
				UpdateAvailable: true,
			},
			{
				Artifact: domain.InstalledArtifact{ClassID: domain.ClassWorlds, RelativePath: "UserData/Saves/Island", Name: "Island", IsDir: true},
			},
		},
		Missing: []domain.RegistryEntry{missing},
	})
	return next.(views.Installed)
}

func TestInstalled_InitialState(t *testing.T) {
	m := views.NewInstalled(views.NewKeyMap("vim"), "/games/hytale")

	assert.Equal(t, 0, m.Selected())
	assert.Nil(t, m.SelectedItem())
	assert.Contains(t, m.View(), "Scanning")
}

func TestInstalled_Empty(t *testing.T) {
	m := views.NewInstalled(views.NewKeyMap("vim"), "/games/hytale")
	next, _ := m.Update(views.InstalledLoadedMsg{})
	m = next.(views.Installed)

	assert.Contains(t, m.View(), "Nothing installed")
}

func TestInstalled_WithItems(t *testing.T) {
	m := loadedInstalled(t)

	assert.Equal(t, 2, m.ItemCount())
	assert.Equal(t, 1, m.UpdateCount())

	view := m.View()
	assert.Contains(t, view, "Tracked Mod")
	assert.Contains(t, view, "Island")
	assert.Contains(t, view, "1 update(s) available")
	assert.Contains(t, view, "2.0 kB")
	assert.Contains(t, view, "missing on disk (1)")
	assert.Contains(t, view, "Gone")
}

func TestInstalled_Navigate(t *testing.T) {
	m := loadedInstalled(t)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(views.Installed)
	assert.Equal(t, 1, m.Selected())
	assert.Contains(t, m.View(), "Not tracked")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(views.Installed)
	assert.Equal(t, 0, m.Selected(), "wraps to the top")

	next, _ = m.Update(runeKey('G'))
	m = next.(views.Installed)
	assert.Equal(t, 1, m.Selected())
}

func TestInstalled_DeleteTracked(t *testing.T) {
	m := loadedInstalled(t)

	_, cmd := m.Update(runeKey('d'))
	require.NotNil(t, cmd)
	assert.Equal(t, views.UninstallRequestMsg{ContentID: 10, Name: "Tracked Mod"}, cmd())
}

func TestInstalled_DeleteUntracked(t *testing.T) {
	m := loadedInstalled(t)
	next, _ := m.Update(runeKey('j'))
	m = next.(views.Installed)

	_, cmd := m.Update(runeKey('d'))
	require.NotNil(t, cmd)
	assert.Equal(t, views.RemovePathRequestMsg{RelativePath: "UserData/Saves/Island"}, cmd())
}

func TestInstalled_ActionKeys(t *testing.T) {
	m := views.NewInstalled(views.NewKeyMap("vim"), "/games/hytale")

	tests := []struct {
		key  rune
		want tea.Msg
	}{
		{'u', views.CheckUpdatesRequestMsg{}},
		{'U', views.UpdateAllRequestMsg{}},
		{'r', views.RefreshRequestMsg{}},
	}
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			_, cmd := m.Update(runeKey(tt.key))
			require.NotNil(t, cmd)
			assert.Equal(t, tt.want, cmd())
		})
	}
}

func TestInstalled_SelectionClampedOnReload(t *testing.T) {
	m := loadedInstalled(t)
	next, _ := m.Update(runeKey('j'))
	m = next.(views.Installed)

	next, _ = m.Update(views.InstalledLoadedMsg{Items: []core.InstalledItem{{Artifact: domain.InstalledArtifact{Name: "a.jar"}}}})
	m = next.(views.Installed)
	assert.Equal(t, 0, m.Selected())
}
