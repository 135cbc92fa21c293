package core

import (
	"context"
	"testing"

	"github.com/arthur-debert/appsync/pkg/errors"
	"github.com/arthur-debert/appsync/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const devTools = "[dev]\nfoo = \"formula\"  # Foo tool\n\n[tools]\nbar = \"cask\"  # Bar\n"

const firefoxInfo = `{"formulae": [], "casks": [{
  "token": "firefox",
  "name": ["Mozilla Firefox"],
  "desc": "Web browser",
  "homepage": "https://www.mozilla.org/firefox/",
  "version": "131.0",
  "installed": null
}]}`

func TestAddNewAppFetchesDescription(t *testing.T) {
	h := newHarness(t, "[browsers]\nchrome = \"cask\"  # Browser\n", "", false)
	h.fake.Stdout(firefoxInfo, "brew", "info", "--json=v2", "--cask", "firefox")

	outcome, err := h.manager.AddApp(context.Background(), AddOptions{
		App:    "firefox",
		Source: "Cask",
		Group:  "Browsers",
	})
	require.NoError(t, err)

	assert.True(t, outcome.Created())
	assert.Equal(t, "browsers", outcome.Group)
	assert.Equal(t, "cask", outcome.Source)
	assert.Contains(t, h.manifest(), "firefox = \"cask\"  # Web browser")
	assert.True(t, h.fake.Called("brew", "install", "--cask", "firefox"))
	assert.Contains(t, h.out.String(), "Added 'firefox' to [browsers] with source 'cask' and description \"Web browser\".")
}

func TestAddMovesAppBetweenGroupsAndSources(t *testing.T) {
	h := newHarness(t, devTools, "", false)
	h.fake.Stdout("foo\n", "brew", "list", "--formula", "-1")
	h.fake.Stdout("bar\n", "brew", "list", "--cask", "-1")

	outcome, err := h.manager.AddApp(context.Background(), AddOptions{
		App:         "foo",
		Source:      "cask",
		Group:       "tools",
		Description: "Foo tool",
	})
	require.NoError(t, err)

	assert.Equal(t, "dev", outcome.MovedFrom)
	assert.True(t, outcome.SourceChanged())
	assert.Equal(t, []types.AppRecord{
		{Group: "tools", Key: "bar", Source: "cask", Description: "Bar"},
		{Group: "tools", Key: "foo", Source: "cask", Description: "Foo tool"},
	}, h.records())
	assert.NotContains(t, h.manifest(), "[dev]")

	assert.Equal(t, []string{
		"brew list --formula -1",
		"brew uninstall --formula foo",
		"brew list --cask -1",
		"brew install --cask foo",
	}, h.fake.CommandLines())
	assert.Contains(t, h.out.String(), "Moved 'foo' from [dev] to [tools]")
}

func TestAddRollsBackWhenInstallFails(t *testing.T) {
	h := newHarness(t, devTools, "", false)
	h.fake.Stdout("foo\n", "brew", "list", "--formula", "-1")
	h.fake.Fail("Error: Cask 'foo' is unavailable", "brew", "install", "--cask", "foo")

	_, err := h.manager.AddApp(context.Background(), AddOptions{
		App:         "foo",
		Source:      "cask",
		Group:       "tools",
		Description: "Foo tool",
	})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCommandFailed))
	assert.Contains(t, err.Error(), "Cask 'foo' is unavailable")

	assert.Equal(t, devTools, h.manifest())
	assert.True(t, h.fake.Called("brew", "install", "--formula", "foo"), "previous source is reinstalled")
	assert.Contains(t, h.errOut.String(), "Rolled back: "+manifestPath+" was not changed.")
}

func TestAddIsIdempotent(t *testing.T) {
	src := "[dev]\nbat = \"formula\"  # Cat clone\n"
	h := newHarness(t, src, "", false)
	h.fake.Stdout("bat\n", "brew", "list", "--formula", "-1")

	for i := 0; i < 2; i++ {
		outcome, err := h.manager.AddApp(context.Background(), AddOptions{
			App:         "BAT",
			Source:      "formula",
			Group:       "DEV",
			Description: "Cat clone",
		})
		require.NoError(t, err)
		assert.False(t, outcome.Changed)
		assert.Equal(t, "bat", outcome.Key)
	}

	assert.Equal(t, src, h.manifest())
	assert.False(t, h.fake.Called("brew", "install", "--formula", "bat"))
	assert.Contains(t, h.out.String(), "bat is already installed")
}

func TestAddSameSourceDifferentSpellingKeepsInstall(t *testing.T) {
	h := newHarness(t, "[tools]\nfirefox = \"Cask\"  # Web browser\n", "", false)
	h.fake.Stdout("firefox\n", "brew", "list", "--cask", "-1")

	outcome, err := h.manager.AddApp(context.Background(), AddOptions{
		App:         "firefox",
		Source:      "cask",
		Group:       "tools",
		Description: "Web browser",
	})
	require.NoError(t, err)

	assert.Equal(t, "Cask", outcome.PreviousSource)
	assert.False(t, h.fake.Called("brew", "uninstall", "--cask", "firefox"))
	assert.False(t, h.fake.Called("brew", "install", "--cask", "firefox"))
	assert.Equal(t, "[tools]\nfirefox = \"cask\"  # Web browser\n", h.manifest())
}

func TestAddWithoutInstall(t *testing.T) {
	h := newHarness(t, "", "", false)

	_, err := h.manager.AddApp(context.Background(), AddOptions{
		App:         "ruff",
		Source:      "uv",
		Group:       "python",
		Description: "Python linter",
		NoInstall:   true,
	})
	require.NoError(t, err)

	assert.Equal(t, "[python]\nruff = \"uv\"  # Python linter\n", h.manifest())
	assert.Empty(t, h.fake.Calls())
}

func TestAddUpdatesDescriptionFromStoredRecord(t *testing.T) {
	src := "[dev]\nbat = \"cask\"  # Cat clone\n"
	h := newHarness(t, src, "", false)
	h.fake.Fail("Error: No available cask", "brew", "info", "--json=v2", "--formula", "bat")
	h.fake.Stdout("bat\n", "brew", "list", "--cask", "-1")

	outcome, err := h.manager.AddApp(context.Background(), AddOptions{App: "bat", Source: "formula", Group: "dev", NoInstall: true})
	require.NoError(t, err)

	assert.True(t, outcome.Existed)
	assert.Equal(t, "Cat clone", outcome.Description)
	assert.Contains(t, h.manifest(), "bat = \"formula\"  # Cat clone")
	assert.Contains(t, h.out.String(), "Updated 'bat' in [dev]")
}

func TestAddErrors(t *testing.T) {
	tests := []struct {
		name string
		opts AddOptions
		code errors.ErrorCode
	}{
		{"unknown source", AddOptions{App: "htop", Source: "apt", Group: "dev"}, errors.ErrUnknownSource},
		{"uv without description", AddOptions{App: "ruff", Source: "uv", Group: "dev"}, errors.ErrMissingDescription},
		{"no description available", AddOptions{App: "ghost", Source: "cask", Group: "dev"}, errors.ErrDescriptionUnavailable},
		{"no group without terminal", AddOptions{App: "ruff", Source: "uv", Description: "Linter"}, errors.ErrNotInteractive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "[dev]\nbat = \"formula\"  # Cat clone\n"
			h := newHarness(t, src, "", false)
			h.fake.Stdout(`{"formulae": [], "casks": []}`, "brew", "info", "--json=v2", "--cask", "ghost")

			_, err := h.manager.AddApp(context.Background(), tt.opts)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, tt.code), err.Error())
			assert.Equal(t, src, h.manifest())
		})
	}
}

func TestAddPicksGroupInteractively(t *testing.T) {
	h := newHarness(t, "[dev]\nbat = \"formula\"  # Cat clone\n\n[media]\nvlc = \"cask\"  # Player\n", "2\n", true)

	outcome, err := h.manager.AddApp(context.Background(), AddOptions{
		App:         "mpv",
		Source:      "formula",
		Description: "Media player",
		NoInstall:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, "media", outcome.Group)
	assert.Contains(t, h.out.String(), " 2. media")
}
