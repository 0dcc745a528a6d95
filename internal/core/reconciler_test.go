package core_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hcf/internal/core"
	"hcf/internal/domain"
	"hcf/internal/registry"
	"hcf/internal/scanner"
)

func writeArtifact(t *testing.T, gameDir, relPath string) {
	t.Helper()
	full := filepath.Join(gameDir, filepath.FromSlash(relPath))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
	require.NoError(t, os.WriteFile(full, []byte(relPath), 0644))
}

func remoteItem(id int, name string, classID, latestFileID int) domain.RemoteItem {
	item := domain.RemoteItem{ID: id, Name: name, ClassID: classID}
	if latestFileID != 0 {
		item.LatestFiles = []domain.RemoteFile{{ID: latestFileID, FileDate: "2026-01-01T00:00:00Z"}}
	}
	return item
}

func TestReconciler_RegisteredItem(t *testing.T) {
	gameDir := t.TempDir()
	reg := registry.Load(gameDir)
	require.NoError(t, reg.Add(domain.RegistryEntry{
		ContentID: 1, Name: "Swords", FileName: "swords.jar", FileID: domain.IntPtr(10), ClassID: domain.ClassMods,
	}))
	writeArtifact(t, gameDir, "UserData/Mods/swords.jar")

	r := core.NewReconciler(gameDir, reg, nil)

	state := r.ResolveOne(remoteItem(1, "Swords", domain.ClassMods, 10))
	assert.Equal(t, domain.StatusInstalled, state.Status)
	assert.True(t, state.OnDisk)
	assert.Equal(t, "UserData/Mods/swords.jar", state.RelativePath)

	state = r.ResolveOne(remoteItem(1, "Swords", domain.ClassMods, 11))
	assert.Equal(t, domain.StatusUpdateAvailable, state.Status)
	require.NotNil(t, state.Latest)
	assert.Equal(t, 11, state.Latest.ID)
}

func TestReconciler_RegisteredButMissingOnDisk(t *testing.T) {
	gameDir := t.TempDir()
	reg := registry.Load(gameDir)
	require.NoError(t, reg.Add(domain.RegistryEntry{ContentID: 1, Name: "Gone", FileName: "gone.jar", ClassID: domain.ClassMods}))

	state := core.NewReconciler(gameDir, reg, nil).ResolveOne(remoteItem(1, "Gone", domain.ClassMods, 5))
	assert.Equal(t, domain.StatusInstalled, state.Status)
	assert.False(t, state.OnDisk)
}

func TestReconciler_AdoptsLocalFile(t *testing.T) {
	gameDir := t.TempDir()
	writeArtifact(t, gameDir, "UserData/Mods/BetterSwords-1.2.jar")
	reg := registry.Load(gameDir)

	state := core.NewReconciler(gameDir, reg, nil).ResolveOne(remoteItem(7, "Better Swords", domain.ClassMods, 99))
	assert.Equal(t, domain.StatusInstalled, state.Status)
	assert.True(t, state.Adopted)

	entry, ok := reg.Get(7)
	require.True(t, ok)
	assert.Equal(t, "BetterSwords-1.2.jar", entry.FileName)
	assert.Nil(t, entry.FileID)

	// Persisted, and an unknown version never reports an update.
	reloaded := registry.Load(gameDir)
	_, ok = reloaded.Get(7)
	assert.True(t, ok)
	state = core.NewReconciler(gameDir, reloaded, nil).ResolveOne(remoteItem(7, "Better Swords", domain.ClassMods, 100))
	assert.Equal(t, domain.StatusInstalled, state.Status)
	assert.False(t, state.Adopted)
}

func TestReconciler_OwnershipConflict(t *testing.T) {
	gameDir := t.TempDir()
	writeArtifact(t, gameDir, "UserData/Mods/swords-plus.jar")
	reg := registry.Load(gameDir)
	require.NoError(t, reg.Add(domain.RegistryEntry{
		ContentID: 1, Name: "Swords Plus", FileName: "swords-plus.jar", ClassID: domain.ClassMods,
	}))

	state := core.NewReconciler(gameDir, reg, nil).ResolveOne(remoteItem(2, "Swords", domain.ClassMods, 3))
	assert.Equal(t, domain.StatusNotInstalled, state.Status)
	assert.True(t, state.Conflict)

	_, ok := reg.Get(2)
	assert.False(t, ok)
}

func TestReconciler_NoMatch(t *testing.T) {
	gameDir := t.TempDir()
	writeArtifact(t, gameDir, "UserData/Mods/other.jar")
	writeArtifact(t, gameDir, "UserData/Mods/swords.txt")
	reg := registry.Load(gameDir)

	state := core.NewReconciler(gameDir, reg, nil).ResolveOne(remoteItem(2, "Swords", domain.ClassMods, 3))
	assert.Equal(t, domain.StatusNotInstalled, state.Status)
	assert.Zero(t, reg.Len())
}

func TestReconciler_UnknownClassUsesMods(t *testing.T) {
	gameDir := t.TempDir()
	writeArtifact(t, gameDir, "UserData/Mods/mystery.jar")

	state := core.NewReconciler(gameDir, registry.Load(gameDir), nil).ResolveOne(remoteItem(3, "Mystery", 424242, 0))
	assert.True(t, state.Installed())
	assert.Equal(t, domain.ClassMods, state.Entry.ClassID)
}

func TestReconciler_StrictMatcher(t *testing.T) {
	gameDir := t.TempDir()
	writeArtifact(t, gameDir, "UserData/Mods/SwordsReforged-2.0.jar")

	strict := core.NewReconciler(gameDir, registry.Load(gameDir), scanner.MatchStrict)
	state := strict.ResolveOne(remoteItem(1, "Swords", domain.ClassMods, 0))
	assert.False(t, state.Installed())

	loose := core.NewReconciler(gameDir, registry.Load(gameDir), nil)
	state = loose.ResolveOne(remoteItem(1, "Swords", domain.ClassMods, 0))
	assert.True(t, state.Installed())
}

func TestReconciler_ResolvePreservesOrder(t *testing.T) {
	gameDir := t.TempDir()
	states := core.NewReconciler(gameDir, registry.Load(gameDir), nil).Resolve([]domain.RemoteItem{
		remoteItem(3, "c", domain.ClassMods, 0),
		remoteItem(1, "a", domain.ClassMods, 0),
	})
	require.Len(t, states, 2)
	assert.Equal(t, 3, states[0].Item.ID)
	assert.Equal(t, 1, states[1].Item.ID)
}
