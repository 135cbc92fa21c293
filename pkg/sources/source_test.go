package sources

import (
	"context"
	"testing"

	"github.com/arthur-debert/appsync/pkg/errors"
	"github.com/arthur-debert/appsync/pkg/runner/runnertest"
	"github.com/arthur-debert/appsync/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const uvList = "ruff v0.6.9\n- ruff\nhttpie v3.2.4\n- http\n- https\n"

func newStrategy(t *testing.T, name string, fake *runnertest.Fake, opts ...Option) Strategy {
	t.Helper()
	s, err := DefaultRegistry().Create(name, fake, opts...)
	require.NoError(t, err)
	return s
}

func TestEnsureInstalledSkipsInstalledApp(t *testing.T) {
	ctx := context.Background()
	fake := runnertest.New().Stdout(uvList, "uv", "tool", "list")
	s := newStrategy(t, "uv", fake)

	res := s.EnsureInstalled(ctx, "Ruff")
	assert.Equal(t, types.StatusSkipped, res.Status)
	assert.False(t, fake.Called("uv", "tool", "install", "Ruff"))

	// the listing is cached
	s.EnsureInstalled(ctx, "httpie")
	assert.Equal(t, 1, fake.CallCount("uv", "tool", "list"))
}

func TestEnsureInstalledInstallsOnce(t *testing.T) {
	ctx := context.Background()
	fake := runnertest.New().Stdout(uvList, "uv", "tool", "list")
	s := newStrategy(t, "uv", fake)

	first := s.EnsureInstalled(ctx, "black")
	assert.Equal(t, types.StatusSucceeded, first.Status)
	assert.True(t, first.Changed())

	second := s.EnsureInstalled(ctx, "black")
	assert.Equal(t, types.StatusSkipped, second.Status)
	assert.Equal(t, 1, fake.CallCount("uv", "tool", "install", "black"))
}

func TestEnsureInstalledReportsInstallFailure(t *testing.T) {
	fake := runnertest.New().
		Stdout(uvList, "uv", "tool", "list").
		Fail("error: package not found", "uv", "tool", "install", "nope")
	s := newStrategy(t, "uv", fake)

	res := s.EnsureInstalled(context.Background(), "nope")
	assert.Equal(t, types.StatusFailed, res.Status)
	assert.Contains(t, res.Message, "package not found")
	assert.True(t, errors.IsErrorCode(res.Err, errors.ErrCommandFailed))
}

func TestEnsureInstalledMissingExecutable(t *testing.T) {
	fake := runnertest.New().Missing("uv")
	s := newStrategy(t, "uv", fake)

	res := s.EnsureInstalled(context.Background(), "ruff")
	assert.Equal(t, types.StatusFailed, res.Status)
	assert.True(t, errors.IsErrorCode(res.Err, errors.ErrMissingExecutable))
}

func TestEnsureUninstalled(t *testing.T) {
	ctx := context.Background()

	t.Run("not installed is skipped", func(t *testing.T) {
		fake := runnertest.New().Stdout(uvList, "uv", "tool", "list")
		s := newStrategy(t, "uv", fake)

		res := s.EnsureUninstalled(ctx, "black")
		assert.Equal(t, types.StatusSkipped, res.Status)
		assert.False(t, fake.Called("uv", "tool", "uninstall", "black"))
	})

	t.Run("installed is removed once", func(t *testing.T) {
		fake := runnertest.New().Stdout(uvList, "uv", "tool", "list")
		s := newStrategy(t, "uv", fake)

		res := s.EnsureUninstalled(ctx, "ruff")
		assert.Equal(t, types.StatusSucceeded, res.Status)

		again := s.EnsureUninstalled(ctx, "ruff")
		assert.Equal(t, types.StatusSkipped, again.Status)
		assert.Equal(t, 1, fake.CallCount("uv", "tool", "uninstall", "ruff"))
	})

	t.Run("failure is a result", func(t *testing.T) {
		fake := runnertest.New().
			Stdout(uvList, "uv", "tool", "list").
			Fail("permission denied", "uv", "tool", "uninstall", "ruff")
		s := newStrategy(t, "uv", fake)

		res := s.EnsureUninstalled(ctx, "ruff")
		assert.Equal(t, types.StatusFailed, res.Status)
		assert.Contains(t, res.Message, "permission denied")

		installed, err := s.IsInstalled(ctx, "ruff")
		require.NoError(t, err)
		assert.True(t, installed)
	})
}

func TestFindUnmanaged(t *testing.T) {
	fake := runnertest.New().Stdout("a\nb\n", "brew", "list", "--cask", "-1")
	s := newStrategy(t, "cask", fake)

	managed := map[string]bool{}
	for _, alias := range s.ManagedAliases("A") {
		managed[alias] = true
	}

	unmanaged, err := s.FindUnmanaged(context.Background(), managed)
	require.NoError(t, err)
	require.Len(t, unmanaged, 1)
	assert.Equal(t, "b", unmanaged[0].Identifier)
	assert.Equal(t, "cask", unmanaged[0].Source)
}

func TestFindUnmanagedSortsAndMatchesTappedNames(t *testing.T) {
	fake := runnertest.New().Stdout("zed\nfont-fira-code\nalacritty\n", "brew", "list", "--cask", "-1")
	s := newStrategy(t, "cask", fake)

	managed := map[string]bool{}
	for _, alias := range s.ManagedAliases("homebrew/cask-fonts/font-fira-code") {
		managed[alias] = true
	}

	unmanaged, err := s.FindUnmanaged(context.Background(), managed)
	require.NoError(t, err)
	require.Len(t, unmanaged, 2)
	assert.Equal(t, "alacritty", unmanaged[0].Identifier)
	assert.Equal(t, "zed", unmanaged[1].Identifier)
}

func TestManagedAliasesFolded(t *testing.T) {
	s := newStrategy(t, "cask", runnertest.New())
	assert.Equal(t, []string{"user/tap/firefox", "firefox"}, s.ManagedAliases("User/Tap/Firefox"))
	assert.Equal(t, []string{"ruff"}, newStrategy(t, "uv", runnertest.New()).ManagedAliases("RUFF"))
}

func TestFetchInfoFallsBackToStoredDescription(t *testing.T) {
	fake := runnertest.New().Stdout(uvList, "uv", "tool", "list")
	s := newStrategy(t, "uv", fake)

	info, err := s.FetchInfo(context.Background(), "ruff", "Python linter")
	require.NoError(t, err)
	assert.Equal(t, "ruff", info.Name)
	assert.Equal(t, "uv", info.Source)
	assert.Equal(t, "Python linter", info.Description)
	assert.True(t, info.Installed)
	assert.Equal(t, "0.6.9", info.Version)
}
