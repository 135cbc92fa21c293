package core

import (
	"bytes"
	"strings"
	"testing"

	"github.com/arthur-debert/appsync/pkg/filesystem"
	"github.com/arthur-debert/appsync/pkg/manifest"
	"github.com/arthur-debert/appsync/pkg/runner/runnertest"
	"github.com/arthur-debert/appsync/pkg/sources"
	"github.com/arthur-debert/appsync/pkg/types"
	"github.com/arthur-debert/appsync/pkg/ui"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const manifestPath = "/home/me/.dotfiles/apps.toml"

// harness wires a Manager to an in-memory manifest, a scripted runner and
// buffered console output.
type harness struct {
	t       *testing.T
	manager *Manager
	fs      afero.Fs
	fake    *runnertest.Fake
	out     *bytes.Buffer
	errOut  *bytes.Buffer
}

func newHarness(t *testing.T, src, input string, interactive bool) *harness {
	t.Helper()

	fs := filesystem.NewMemory()
	if src != "" {
		require.NoError(t, afero.WriteFile(fs, manifestPath, []byte(src), 0644))
	}

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	console := ui.NewConsole(
		ui.WithOutput(out, errOut),
		ui.WithInput(strings.NewReader(input), interactive),
		ui.WithColor(false),
		ui.WithWidth(100),
	)

	fake := runnertest.New()
	m := NewManager(
		manifest.NewRepository(fs, manifestPath),
		sources.DefaultRegistry(),
		fake,
		console,
		sources.WithGOOS("darwin"),
		sources.WithOutput(out, errOut),
	)

	return &harness{t: t, manager: m, fs: fs, fake: fake, out: out, errOut: errOut}
}

func (h *harness) manifest() string {
	h.t.Helper()
	data, err := afero.ReadFile(h.fs, manifestPath)
	require.NoError(h.t, err)
	return string(data)
}

func (h *harness) records() []types.AppRecord {
	h.t.Helper()
	doc, err := h.manager.Repository().Load()
	require.NoError(h.t, err)
	return doc.Records()
}
