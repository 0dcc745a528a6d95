package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootCmd_Subcommands(t *testing.T) {
	want := []string{"auth", "categories", "config", "history", "info", "install", "list", "remove", "scan", "search", "tui", "update"}

	var got []string
	for _, c := range rootCmd.Commands() {
		got = append(got, c.Name())
	}
	for _, name := range want {
		assert.Contains(t, got, name)
	}
}

// TestSearchCmd_Structure tests the search command structure
func TestSearchCmd_Structure(t *testing.T) {
	assert.NotEmpty(t, searchCmd.Short)
	assert.NotEmpty(t, searchCmd.Long)

	assert.NotNil(t, searchCmd.Flags().Lookup("category"))
	assert.NotNil(t, searchCmd.Flags().Lookup("all"))
	assert.NotNil(t, searchCmd.Flags().Lookup("limit"))
	assert.NotNil(t, searchCmd.Flags().Lookup("page"))
	assert.NotNil(t, searchCmd.Flags().Lookup("sort"))

	assert.Equal(t, "1", searchCmd.Flags().Lookup("page").DefValue)
}

func TestUpdateCmd_Structure(t *testing.T) {
	assert.NotNil(t, updateCmd.Flags().Lookup("check"))
	yes := updateCmd.Flags().Lookup("yes")
	if assert.NotNil(t, yes) {
		assert.Equal(t, "y", yes.Shorthand)
	}
}

func TestRemoveCmd_Aliases(t *testing.T) {
	assert.Contains(t, removeCmd.Aliases, "uninstall")
	assert.Contains(t, removeCmd.Aliases, "rm")
}

func TestAuthCmd_Structure(t *testing.T) {
	var names []string
	for _, c := range authCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"set-key", "status", "logout"}, names)
	assert.NotNil(t, authSetKeyCmd.Flags().Lookup("no-verify"))
}

func TestConfigCmd_Structure(t *testing.T) {
	var names []string
	for _, c := range configCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"show", "set", "path"}, names)
	assert.Contains(t, configSetCmd.Long, "game_path")
}

func TestHistoryCmd_DefaultFlags(t *testing.T) {
	assert.Equal(t, "20", historyCmd.Flags().Lookup("limit").DefValue)
	assert.Equal(t, "false", historyCmd.Flags().Lookup("all-games").DefValue)
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	for _, name := range []string{"config", "config-file", "data", "game-dir", "metrics-file", "verbose", "json", "no-color", "strict-match"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}
	assert.Equal(t, "d", rootCmd.PersistentFlags().Lookup("game-dir").Shorthand)
}
