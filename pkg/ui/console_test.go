package ui_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/arthur-debert/appsync/pkg/errors"
	"github.com/arthur-debert/appsync/pkg/types"
	"github.com/arthur-debert/appsync/pkg/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConsole(input string, interactive bool) (*ui.Console, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	c := ui.NewConsole(
		ui.WithOutput(out, errOut),
		ui.WithInput(strings.NewReader(input), interactive),
		ui.WithColor(false),
		ui.WithWidth(80),
	)
	return c, out, errOut
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected ui.Format
		wantErr  bool
	}{
		{"", ui.FormatTable, false},
		{"table", ui.FormatTable, false},
		{"JSON", ui.FormatJSON, false},
		{"yaml", ui.FormatYAML, false},
		{"yml", ui.FormatYAML, false},
		{"xml", ui.FormatTable, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ui.ParseFormat(tt.input)
			if tt.wantErr {
				assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	assert.Equal(t, []string{"table", "json", "yaml"}, ui.FormatNames())
}

func TestStatusLines(t *testing.T) {
	c, out, errOut := newConsole("", false)

	c.Success("Added %s", "bat")
	c.Info("Nothing to do")
	c.Result(types.Skipped("bat is already installed"))
	c.Warning("careful")
	c.Result(types.Failed(nil, "boom"))

	assert.Equal(t, "✓ Added bat\n• Nothing to do\n- bat is already installed\n", out.String())
	assert.Equal(t, "! careful\n✗ boom\n", errOut.String())
}

func TestPickGroup(t *testing.T) {
	groups := []string{"dev", "Media"}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"by number", "2\n", "Media"},
		{"by name ignoring case", "media\n", "Media"},
		{"new name", "tools\n", "tools"},
		{"zero then name", "0\n\nfonts\n", "fonts"},
		{"empty input re-prompts", "\n\n1\n", "dev"},
		{"out of range re-prompts", "7\ndev\n", "dev"},
		{"last line without newline", "1", "dev"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, out, _ := newConsole(tt.input, true)
			got, err := c.PickGroup(groups)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), " 0. <create a new group>")
			assert.Contains(t, out.String(), " 2. Media")
		})
	}
}

func TestPickGroupNoGroups(t *testing.T) {
	c, _, _ := newConsole("\ncli\n", true)
	got, err := c.PickGroup(nil)
	require.NoError(t, err)
	assert.Equal(t, "cli", got)
}

func TestPickGroupEndOfInput(t *testing.T) {
	c, _, _ := newConsole("", true)
	_, err := c.PickGroup([]string{"dev"})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	assert.Contains(t, err.Error(), "No group selected.")
}

func TestPickGroupNotInteractive(t *testing.T) {
	c, _, _ := newConsole("1\n", false)
	_, err := c.PickGroup([]string{"dev"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotInteractive))
}

func TestConfirm(t *testing.T) {
	tests := map[string]bool{
		"y\n":   true,
		"YES\n": true,
		"n\n":   false,
		"\n":    false,
		"":      false,
	}

	for input, want := range tests {
		c, _, _ := newConsole(input, true)
		got, err := c.Confirm("Uninstall them?")
		require.NoError(t, err)
		assert.Equal(t, want, got, "input %q", input)
	}

	c, _, _ := newConsole("y\n", false)
	_, err := c.Confirm("Uninstall them?")
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotInteractive))
}

var sampleGroups = []types.Group{
	{Name: "dev", Apps: []types.AppRecord{
		{Group: "dev", Key: "bat", Source: "formula", Description: "Clone of cat(1) with syntax highlighting"},
		{Group: "dev", Key: "ruff", Source: "uv", Description: "Python linter"},
	}},
	{Name: "media", Apps: []types.AppRecord{
		{Group: "media", Key: "iina", Source: "cask", Description: strings.Repeat("very long description ", 10)},
	}},
}

func TestRenderRecordsTable(t *testing.T) {
	c, out, _ := newConsole("", false)

	require.NoError(t, c.RenderRecords(sampleGroups, ui.FormatTable))

	text := out.String()
	for _, want := range []string{"dev", "media", "Source", "Description", "bat", "formula", "ruff", "Python linter", "iina", "…"} {
		assert.Contains(t, text, want)
	}
	assert.NotContains(t, text, strings.Repeat("very long description ", 10))
}

func TestRenderRecordsEmpty(t *testing.T) {
	c, out, _ := newConsole("", false)

	require.NoError(t, c.RenderRecords([]types.Group{{Name: "empty"}}, ui.FormatTable))
	assert.Equal(t, "No apps found.\n", out.String())
}

func TestRenderRecordsJSON(t *testing.T) {
	c, out, _ := newConsole("", false)

	require.NoError(t, c.RenderRecords(sampleGroups, ui.FormatJSON))

	var decoded []types.Group
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, sampleGroups, decoded)
}

func TestRenderRecordsYAML(t *testing.T) {
	c, out, _ := newConsole("", false)

	require.NoError(t, c.RenderRecords(sampleGroups, ui.FormatYAML))
	assert.Contains(t, out.String(), "- name: dev")
	assert.Contains(t, out.String(), "key: ruff")
}

func TestRenderInfoPlain(t *testing.T) {
	c, out, _ := newConsole("", false)

	info := types.AppInfo{
		Name:          "firefox",
		Source:        "cask",
		Description:   "Web browser",
		Website:       "https://www.mozilla.org/firefox/",
		Version:       "130.0",
		LatestVersion: "131.0",
		Installed:     true,
		Outdated:      true,
	}
	require.NoError(t, c.RenderInfo(info, ui.FormatTable))

	assert.Equal(t, `Name:        firefox
Source:      cask
Description: Web browser
Website:     https://www.mozilla.org/firefox/
Installed:   yes (130.0)
Latest:      131.0 (update available)
`, out.String())
}

func TestRenderInfoJSON(t *testing.T) {
	c, out, _ := newConsole("", false)

	require.NoError(t, c.RenderInfo(types.AppInfo{Name: "ruff", Source: "uv"}, ui.FormatJSON))
	assert.Contains(t, out.String(), `"name": "ruff"`)
	assert.Contains(t, out.String(), `"installed": false`)
}

func TestRenderUnmanaged(t *testing.T) {
	c, out, _ := newConsole("", false)

	c.RenderUnmanaged([]types.UnmanagedApp{
		{Source: "cask", Identifier: "zed", Display: "zed"},
		{Source: "mas", Identifier: "904280696", Display: "Things 3"},
	})
	assert.Equal(t, "  - zed [cask]\n  - Things 3 (904280696) [mas]\n", out.String())
}
