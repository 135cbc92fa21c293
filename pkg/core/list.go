package core

import (
	"github.com/arthur-debert/appsync/pkg/types"
	"github.com/arthur-debert/appsync/pkg/ui"
	"github.com/sahilm/fuzzy"
)

// ListOptions holds the parameters of ListApps
type ListOptions struct {
	// Filter fuzzy-matches key, group and description
	Filter string
	Format ui.Format
}

// recordSource adapts records for fuzzy.FindFrom
type recordSource []types.AppRecord

func (s recordSource) String(i int) string {
	r := s[i]
	return r.Key + " " + r.Group + " " + r.Description
}

func (s recordSource) Len() int { return len(s) }

// ListApps renders the manifest grouped in document order
func (m *Manager) ListApps(opts ListOptions) ([]types.Group, error) {
	doc, err := m.repo.Load()
	if err != nil {
		return nil, err
	}

	groups := m.repo.ListGrouped(doc)
	if opts.Filter != "" {
		groups = filterGroups(groups, opts.Filter)
		m.logger.Debug().Str("filter", opts.Filter).Int("groups", len(groups)).Msg("Filtered records")
	}

	if err := m.console.RenderRecords(groups, opts.Format); err != nil {
		return nil, err
	}
	return groups, nil
}

// filterGroups keeps matching records in their original order and drops
// groups left empty.
func filterGroups(groups []types.Group, pattern string) []types.Group {
	var records recordSource
	for _, g := range groups {
		records = append(records, g.Apps...)
	}

	keep := make(map[int]bool)
	for _, match := range fuzzy.FindFrom(pattern, records) {
		keep[match.Index] = true
	}

	var out []types.Group
	i := 0
	for _, g := range groups {
		var apps []types.AppRecord
		for _, r := range g.Apps {
			if keep[i] {
				apps = append(apps, r)
			}
			i++
		}
		if len(apps) > 0 {
			out = append(out, types.Group{Name: g.Name, Apps: apps})
		}
	}
	return out
}
