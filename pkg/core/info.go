package core

import (
	"context"

	"github.com/arthur-debert/appsync/pkg/types"
	"github.com/arthur-debert/appsync/pkg/ui"
)

// InfoOptions holds the parameters of Info
type InfoOptions struct {
	App    string
	Source string
	Format ui.Format
}

// Info shows installer metadata for an app. The manifest description is
// used when the installer has none.
func (m *Manager) Info(ctx context.Context, opts InfoOptions) (types.AppInfo, error) {
	strategy, err := m.strategy(opts.Source)
	if err != nil {
		return types.AppInfo{}, err
	}

	doc, err := m.repo.Load()
	if err != nil {
		return types.AppInfo{}, err
	}
	var stored string
	if rec, ok := m.repo.FindApp(doc, opts.App); ok {
		stored = rec.Description
	}

	info, err := strategy.FetchInfo(ctx, opts.App, stored)
	if err != nil {
		return types.AppInfo{}, err
	}

	if err := m.console.RenderInfo(info, opts.Format); err != nil {
		return types.AppInfo{}, err
	}
	return info, nil
}
