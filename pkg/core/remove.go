package core

import (
	"context"

	"github.com/arthur-debert/appsync/pkg/logging"
	"github.com/arthur-debert/appsync/pkg/manifest"
)

// RemoveOptions holds the parameters of RemoveApp
type RemoveOptions struct {
	App       string
	NoInstall bool
}

// RemoveApp deletes the record for an app and uninstalls it. The manifest
// is saved before uninstalling, so a failed uninstall leaves it updated.
func (m *Manager) RemoveApp(ctx context.Context, opts RemoveOptions) (manifest.RemoveOutcome, error) {
	done := logging.LogOperationStart(m.logger, "remove")
	defer done()

	doc, err := m.repo.Load()
	if err != nil {
		return manifest.RemoveOutcome{}, err
	}

	outcome, err := m.repo.Remove(doc, opts.App)
	if err != nil {
		return outcome, err
	}
	if !outcome.Removed {
		m.console.Warning("'%s' not found in apps.toml.", opts.App)
		return outcome, nil
	}

	if err := m.repo.Save(doc); err != nil {
		return outcome, err
	}
	m.console.Success("Removed '%s' from [%s].", outcome.Key, outcome.Group)
	if outcome.GroupDeleted {
		m.console.Info("Group [%s] is now empty and was deleted.", outcome.Group)
	}

	if opts.NoInstall {
		return outcome, nil
	}

	strategy, err := m.strategy(outcome.Source)
	if err != nil {
		m.console.Warning("'%s' used unknown source '%s'; nothing to uninstall.", outcome.Key, outcome.Source)
		return outcome, nil
	}

	res := strategy.EnsureUninstalled(ctx, outcome.Key)
	m.console.Result(res)
	if !res.OK() {
		return outcome, resultError(res)
	}
	return outcome, nil
}
