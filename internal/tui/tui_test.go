package tui

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var vendorItems = []MenuItem{
	{Label: "OpenAI"},
	{Label: "Claude", Description: "XML structure"},
	{Label: "Grok"},
}

func TestSelectMenu_Numbered(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminalWith(strings.NewReader("2\n"), &out)

	idx, err := term.SelectMenu("Pick a vendor", vendorItems)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Contains(t, out.String(), "Pick a vendor")
	assert.Contains(t, out.String(), "XML structure")
}

func TestSelectMenu_RetriesInvalidInput(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminalWith(strings.NewReader("9\nabc\n3\n"), &out)

	idx, err := term.SelectMenu("Pick", vendorItems)
	require.NoError(t, err)
	assert.Equal(t, 2, idx)
	assert.Equal(t, 2, strings.Count(out.String(), "Invalid choice"))
}

func TestSelectMenu_Cancel(t *testing.T) {
	for _, input := range []string{"0\n", "q\n"} {
		term := NewTerminalWith(strings.NewReader(input), io.Discard)
		idx, err := term.SelectMenu("Pick", vendorItems)
		assert.ErrorIs(t, err, ErrCancelled)
		assert.Equal(t, -1, idx)
	}
}

func TestSelectMenu_EOF(t *testing.T) {
	term := NewTerminalWith(strings.NewReader(""), io.Discard)
	_, err := term.SelectMenu("Pick", vendorItems)
	assert.ErrorIs(t, err, io.EOF)
}

func TestSelectMenu_Empty(t *testing.T) {
	term := NewTerminalWith(strings.NewReader("1\n"), io.Discard)
	_, err := term.SelectMenu("Pick", nil)
	assert.Error(t, err)
}

func TestPrompts_ShareOneReader(t *testing.T) {
	term := NewTerminalWith(strings.NewReader("  first  \n1\nlast"), io.Discard)

	first, err := term.PromptString("> ")
	require.NoError(t, err)
	assert.Equal(t, "first", first)

	idx, err := term.SelectMenu("Pick", vendorItems)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	last, err := term.PromptString("> ")
	require.NoError(t, err)
	assert.Equal(t, "last", last)

	_, err = term.PromptString("> ")
	assert.ErrorIs(t, err, io.EOF)
}

func TestPromptYesNo(t *testing.T) {
	tests := []struct {
		input      string
		defaultYes bool
		want       bool
	}{
		{"y\n", false, true},
		{"YES\n", false, true},
		{"n\n", true, false},
		{"\n", true, true},
		{"\n", false, false},
		{"", true, true},
	}
	for _, tt := range tests {
		term := NewTerminalWith(strings.NewReader(tt.input), io.Discard)
		assert.Equal(t, tt.want, term.PromptYesNo("Continue?", tt.defaultYes), "input %q", tt.input)
	}
}

func TestReadAll(t *testing.T) {
	term := NewTerminalWith(strings.NewReader("line one\nline two\n\n"), io.Discard)
	text, err := term.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", text)
	assert.False(t, term.Interactive())
}
