package core_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hcf/internal/core"
	"hcf/internal/domain"
)

func TestUpdater_CheckUpdates(t *testing.T) {
	src := newMockSource()
	src.AddItem(1, "Outdated", domain.ClassMods)
	src.AddFile(1, domain.RemoteFile{ID: 11, FileDate: "2026-02-01T00:00:00Z"}, nil)
	src.AddItem(2, "Current", domain.ClassMods)
	src.AddFile(2, domain.RemoteFile{ID: 20, FileDate: "2026-02-01T00:00:00Z"}, nil)
	src.AddItem(3, "Adopted", domain.ClassMods)
	src.AddFile(3, domain.RemoteFile{ID: 31, FileDate: "2026-02-01T00:00:00Z"}, nil)
	src.AddItem(4, "No Files", domain.ClassMods)

	entries := []domain.RegistryEntry{
		{ContentID: 1, Name: "Outdated", FileID: domain.IntPtr(10)},
		{ContentID: 2, Name: "Current", FileID: domain.IntPtr(20)},
		{ContentID: 3, Name: "Adopted"},
		{ContentID: 4, Name: "No Files", FileID: domain.IntPtr(40)},
	}

	var progress []string
	updates, err := core.NewUpdater(src).CheckUpdates(context.Background(), entries, func(n, total int, name string) {
		assert.Equal(t, 4, total)
		progress = append(progress, name)
	})
	require.NoError(t, err)

	assert.Equal(t, []int{1}, updates.IDs())
	assert.Equal(t, "Outdated", updates[1].Name)
	assert.Equal(t, []string{"Outdated", "Current", "Adopted", "No Files"}, progress)
}

func TestUpdater_CheckUpdates_PartialFailure(t *testing.T) {
	src := newMockSource()
	src.AddItem(1, "Outdated", domain.ClassMods)
	src.AddFile(1, domain.RemoteFile{ID: 11, FileDate: "2026-02-01T00:00:00Z"}, nil)
	src.AddItem(2, "Flaky", domain.ClassMods)
	src.SetItemError(2, domain.ErrTransportFailure)

	entries := []domain.RegistryEntry{
		{ContentID: 1, Name: "Outdated", FileID: domain.IntPtr(10)},
		{ContentID: 2, Name: "Flaky", FileID: domain.IntPtr(20)},
	}

	updates, err := core.NewUpdater(src).CheckUpdates(context.Background(), entries, nil)
	assert.ErrorIs(t, err, domain.ErrTransportFailure)
	assert.Contains(t, err.Error(), "Flaky")
	assert.Equal(t, []int{1}, updates.IDs())
}

func TestUpdater_CheckUpdates_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := core.NewUpdater(newMockSource()).CheckUpdates(ctx, []domain.RegistryEntry{{ContentID: 1}}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
