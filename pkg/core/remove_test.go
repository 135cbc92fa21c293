package core

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/arthur-debert/appsync/pkg/errors"
	"github.com/arthur-debert/appsync/pkg/types"
	"github.com/arthur-debert/appsync/pkg/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveUninstallsAndDeletesEmptyGroup(t *testing.T) {
	h := newHarness(t, devTools, "", false)
	h.fake.Stdout("foo\n", "brew", "list", "--formula", "-1")

	outcome, err := h.manager.RemoveApp(context.Background(), RemoveOptions{App: "FOO"})
	require.NoError(t, err)

	assert.True(t, outcome.Removed)
	assert.True(t, outcome.GroupDeleted)
	assert.Equal(t, "[tools]\nbar = \"cask\"  # Bar\n", h.manifest())
	assert.True(t, h.fake.Called("brew", "uninstall", "--formula", "foo"))
	assert.Contains(t, h.out.String(), "Removed 'foo' from [dev].")
}

func TestRemoveMissingAppWarns(t *testing.T) {
	h := newHarness(t, devTools, "", false)

	outcome, err := h.manager.RemoveApp(context.Background(), RemoveOptions{App: "nope"})
	require.NoError(t, err)

	assert.False(t, outcome.Removed)
	assert.Equal(t, devTools, h.manifest())
	assert.Contains(t, h.errOut.String(), "'nope' not found in apps.toml.")
	assert.Empty(t, h.fake.Calls())
}

func TestRemoveKeepsManifestWhenUninstallFails(t *testing.T) {
	h := newHarness(t, devTools, "", false)
	h.fake.Stdout("bar\n", "brew", "list", "--cask", "-1")
	h.fake.Fail("Error: permission denied", "brew", "uninstall", "--cask", "bar")

	_, err := h.manager.RemoveApp(context.Background(), RemoveOptions{App: "bar"})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCommandFailed))
	assert.Contains(t, err.Error(), "permission denied")

	assert.Equal(t, []types.AppRecord{
		{Group: "dev", Key: "foo", Source: "formula", Description: "Foo tool"},
	}, h.records())
}

func TestRemoveWithoutInstall(t *testing.T) {
	h := newHarness(t, devTools, "", false)

	_, err := h.manager.RemoveApp(context.Background(), RemoveOptions{App: "bar", NoInstall: true})
	require.NoError(t, err)
	assert.Empty(t, h.fake.Calls())
	assert.NotContains(t, h.manifest(), "bar")
}

func TestListFiltersRecords(t *testing.T) {
	src := "[dev]\nbat = \"formula\"  # Cat clone\nripgrep = \"formula\"  # Fast grep\n\n[media]\nvlc = \"cask\"  # Video player\n"
	h := newHarness(t, src, "", false)

	groups, err := h.manager.ListApps(ListOptions{Filter: "grep", Format: ui.FormatJSON})
	require.NoError(t, err)

	expected := []types.Group{{Name: "dev", Apps: []types.AppRecord{
		{Group: "dev", Key: "ripgrep", Source: "formula", Description: "Fast grep"},
	}}}
	assert.Equal(t, expected, groups)

	var decoded []types.Group
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &decoded))
	assert.Equal(t, expected, decoded)
}

func TestListAll(t *testing.T) {
	h := newHarness(t, devTools, "", false)

	groups, err := h.manager.ListApps(ListOptions{Format: ui.FormatTable})
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Contains(t, h.out.String(), "Foo tool")
	assert.Contains(t, h.out.String(), "tools")
}

func TestInfoFallsBackToStoredDescription(t *testing.T) {
	h := newHarness(t, "[python]\nruff = \"uv\"  # Python linter\n", "", false)
	h.fake.Stdout("ruff v0.6.9\n- ruff\n", "uv", "tool", "list")

	info, err := h.manager.Info(context.Background(), InfoOptions{App: "ruff", Source: "uv", Format: ui.FormatTable})
	require.NoError(t, err)

	assert.Equal(t, "Python linter", info.Description)
	assert.True(t, info.Installed)
	assert.Equal(t, "0.6.9", info.Version)
	assert.Contains(t, h.out.String(), "Description: Python linter")
	assert.Contains(t, h.out.String(), "Installed:   yes (0.6.9)")
}

func TestInfoUnknownSource(t *testing.T) {
	h := newHarness(t, "", "", false)

	_, err := h.manager.Info(context.Background(), InfoOptions{App: "htop", Source: "apt"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnknownSource))
}
