package views_test

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hcf/internal/tui/views"
)

type testAction struct{ id int }

func TestConfirm_Yes(t *testing.T) {
	m := views.NewConfirm("Remove Foo?", testAction{id: 7})
	assert.Contains(t, m.View(), "Remove Foo?")

	next, cmd := m.Update(runeKey('y'))
	require.NotNil(t, cmd)
	assert.True(t, next.(views.Confirm).Done())
	assert.Equal(t, testAction{id: 7}, cmd())
}

func TestConfirm_No(t *testing.T) {
	for _, key := range []tea.KeyMsg{runeKey('n'), {Type: tea.KeyEsc}} {
		m := views.NewConfirm("Remove Foo?", testAction{id: 7})
		next, cmd := m.Update(key)
		require.NotNil(t, cmd)
		assert.True(t, next.(views.Confirm).Done())
		assert.Equal(t, views.ConfirmCancelledMsg{}, cmd())
	}
}

func TestConfirm_IgnoresOtherKeys(t *testing.T) {
	m := views.NewConfirm("Remove Foo?", testAction{id: 7})

	next, cmd := m.Update(runeKey('x'))
	assert.Nil(t, cmd)
	assert.False(t, next.(views.Confirm).Done())
}
