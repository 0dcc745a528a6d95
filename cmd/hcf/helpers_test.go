package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hcf/internal/domain"
)

// TestTruncate tests the string truncation helper function
func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{
			name:     "no truncation needed",
			input:    "short",
			maxLen:   10,
			expected: "short",
		},
		{
			name:     "exact length",
			input:    "exactly10!",
			maxLen:   10,
			expected: "exactly10!",
		},
		{
			name:     "needs truncation",
			input:    "this is a long string that needs truncation",
			maxLen:   20,
			expected: "this is a long st...",
		},
		{
			name:     "maxLen equals 3",
			input:    "hello",
			maxLen:   3,
			expected: "hel",
		},
		{
			name:     "maxLen of 4",
			input:    "hello world",
			maxLen:   4,
			expected: "h...",
		},
		{
			name:     "empty string",
			input:    "",
			maxLen:   10,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, truncate(tt.input, tt.maxLen))
		})
	}
}

func TestParseContentID(t *testing.T) {
	id, err := parseContentID("1032")
	require.NoError(t, err)
	assert.Equal(t, 1032, id)

	for _, bad := range []string{"", "abc", "0", "-4", "12x"} {
		_, err := parseContentID(bad)
		assert.Error(t, err, bad)
	}
}

func TestFormatFileID(t *testing.T) {
	assert.Equal(t, "-", formatFileID(nil))
	assert.Equal(t, "7313", formatFileID(domain.IntPtr(7313)))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "2026-01-13", formatDate("2026-01-13T21:04:05Z"))
	assert.Equal(t, "-", formatDate(""))
	assert.Equal(t, "yesterday", formatDate("yesterday"))
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "-", formatSize(-1))
	assert.Equal(t, "0 B", formatSize(0))
	assert.Equal(t, "1.5 MB", formatSize(1_500_000))
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"  y  \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"maybe\n", false},
	}

	old := stdin
	t.Cleanup(func() { stdin = old })

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			stdin = strings.NewReader(tt.input)
			assert.Equal(t, tt.want, confirm("Proceed?"))
		})
	}
}

// TestMaskAPIKey tests the API key masking function
func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"normal key", "abcdefghijklmnop", "abc...nop"},
		{"exactly 7 chars", "1234567", "123...567"},
		{"6 chars or less returns ***", "123456", "***"},
		{"empty key", "", "***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, maskAPIKey(tt.input))
		})
	}
}

func TestReadAPIKey_Piped(t *testing.T) {
	old := stdin
	t.Cleanup(func() { stdin = old })

	stdin = strings.NewReader("  secret-key  \n")
	key, err := readAPIKey()
	require.NoError(t, err)
	assert.Equal(t, "secret-key", key)
}

func TestCategoryFilter(t *testing.T) {
	cat, err := categoryFilter("")
	require.NoError(t, err)
	assert.Nil(t, cat)

	cat, err = categoryFilter("Worlds")
	require.NoError(t, err)
	require.NotNil(t, cat)
	assert.Equal(t, domain.ClassWorlds, cat.ClassID)

	_, err = categoryFilter("skins")
	assert.Error(t, err)
}
