package core

import (
	"context"
	"fmt"
	"sort"

	"github.com/arthur-debert/appsync/pkg/errors"
	"github.com/arthur-debert/appsync/pkg/logging"
	"github.com/arthur-debert/appsync/pkg/sources"
	"github.com/arthur-debert/appsync/pkg/types"
)

// SyncOptions holds the parameters of Sync
type SyncOptions struct {
	// AutoConfirm uninstalls unmanaged apps without asking
	AutoConfirm bool
	// EnabledSources limits sync to these sources; empty means all
	EnabledSources []string
}

// SyncReport counts what Sync did
type SyncReport struct {
	Installed int      `json:"installed" yaml:"installed"`
	Skipped   int      `json:"skipped" yaml:"skipped"`
	Failed    int      `json:"failed" yaml:"failed"`
	Removed   int      `json:"removed" yaml:"removed"`
	Upgraded  int      `json:"upgraded" yaml:"upgraded"`
	Failures  []string `json:"failures,omitempty" yaml:"failures,omitempty"`
}

func (r *SyncReport) record(res types.Result) {
	switch res.Status {
	case types.StatusSucceeded:
		r.Installed++
	case types.StatusSkipped:
		r.Skipped++
	default:
		r.fail(res.Message)
	}
}

func (r *SyncReport) fail(format string, args ...interface{}) {
	r.Failed++
	r.Failures = append(r.Failures, fmt.Sprintf(format, args...))
}

// syncPlan is the enabled sources resolved against the registry
type syncPlan struct {
	sources    []string
	enabled    map[string]sources.Strategy
	byProvider map[string][]sources.Strategy
	providers  []string
}

// Sync installs every declared app, offers to remove unmanaged ones and
// upgrades each provider. Failures are collected; the remaining items and
// phases still run.
func (m *Manager) Sync(ctx context.Context, opts SyncOptions) (*SyncReport, error) {
	done := logging.LogOperationStart(m.logger, "sync")
	defer done()

	doc, err := m.repo.Load()
	if err != nil {
		return nil, err
	}
	records := doc.Records()

	plan, err := m.plan(opts.EnabledSources)
	if err != nil {
		return nil, err
	}

	report := &SyncReport{}

	m.prime(ctx, plan, records)

	if err := m.installDeclared(ctx, plan, records, report); err != nil {
		return report, err
	}
	if err := m.removeUnmanaged(ctx, plan, records, opts.AutoConfirm, report); err != nil {
		return report, err
	}
	if err := m.upgrade(ctx, plan, report); err != nil {
		return report, err
	}

	m.summarize(report)

	if report.Failed > 0 {
		return report, errors.Newf(errors.ErrCommandFailed, "sync finished with %d failure(s)", report.Failed).
			WithDetail("failures", report.Failures)
	}
	return report, nil
}

func (m *Manager) plan(enabled []string) (*syncPlan, error) {
	names := enabled
	if len(names) == 0 {
		names = m.registry.Names()
	}

	plan := &syncPlan{
		enabled:    make(map[string]sources.Strategy),
		byProvider: make(map[string][]sources.Strategy),
	}
	for _, name := range names {
		s, err := m.strategy(name)
		if err != nil {
			return nil, err
		}
		if _, dup := plan.enabled[s.Name()]; dup {
			continue
		}
		plan.enabled[s.Name()] = s
		plan.sources = append(plan.sources, s.Name())
		plan.byProvider[s.Provider()] = append(plan.byProvider[s.Provider()], s)
	}
	sort.Strings(plan.sources)

	for p := range plan.byProvider {
		plan.providers = append(plan.providers, p)
	}
	sort.Strings(plan.providers)

	m.logger.Debug().Strs("sources", plan.sources).Strs("providers", plan.providers).Msg("Sync plan")
	return plan, nil
}

// canonical returns the registered spelling of a record's source, or ""
func (m *Manager) canonical(source string) string {
	entry, err := m.registry.Lookup(source)
	if err != nil {
		return ""
	}
	return entry.Name
}

func (m *Manager) prime(ctx context.Context, plan *syncPlan, records []types.AppRecord) {
	keys := make(map[string][]string)
	for _, r := range records {
		if name := m.canonical(r.Source); name != "" {
			keys[name] = append(keys[name], r.Key)
		}
	}
	for _, name := range plan.sources {
		plan.enabled[name].Prime(ctx, keys[name])
	}
}

func (m *Manager) installDeclared(ctx context.Context, plan *syncPlan, records []types.AppRecord, report *SyncReport) error {
	m.console.Header("Installing declared apps")

	for _, r := range records {
		if err := interrupted(ctx); err != nil {
			return err
		}

		name := m.canonical(r.Source)
		if name == "" {
			msg := fmt.Sprintf("Unknown source '%s' for '%s' in [%s]", r.Source, r.Key, r.Group)
			m.console.Error("%s", msg)
			report.fail("%s", msg)
			continue
		}

		strategy, ok := plan.enabled[name]
		if !ok {
			m.logger.Debug().Str("app", r.Key).Str("source", name).Msg("Source disabled, skipping")
			continue
		}

		res := strategy.EnsureInstalled(ctx, r.Key)
		m.console.Result(res)
		report.record(res)
	}
	return nil
}

func (m *Manager) removeUnmanaged(ctx context.Context, plan *syncPlan, records []types.AppRecord, autoConfirm bool, report *SyncReport) error {
	for _, provider := range plan.providers {
		if err := interrupted(ctx); err != nil {
			return err
		}

		label := sources.ProviderLabel(provider)
		m.console.Header("Checking unmanaged %s apps", label)

		managed := m.managedAliases(provider, records, plan.byProvider[provider][0])

		var unmanaged []types.UnmanagedApp
		strategies := make(map[string]sources.Strategy)
		for _, s := range plan.byProvider[provider] {
			found, err := s.FindUnmanaged(ctx, managed)
			if err != nil {
				m.console.Error("Could not list unmanaged %s apps: %s", s.Name(), errors.UserMessage(err))
				report.fail("Could not list unmanaged %s apps: %s", s.Name(), errors.UserMessage(err))
				continue
			}
			strategies[s.Name()] = s
			unmanaged = append(unmanaged, found...)
		}

		if len(unmanaged) == 0 {
			m.console.Success("All %s apps are present in the manifest", label)
			continue
		}

		m.console.Println("The following %s apps are installed but not in the manifest:", label)
		m.console.RenderUnmanaged(unmanaged)

		if !m.confirmUninstall(label, autoConfirm) {
			m.console.Info("No apps were uninstalled.")
			continue
		}

		for _, u := range unmanaged {
			if err := interrupted(ctx); err != nil {
				return err
			}
			res := strategies[u.Source].UninstallUnmanaged(ctx, u.Identifier)
			m.console.Result(res)
			switch res.Status {
			case types.StatusSucceeded:
				report.Removed++
			case types.StatusFailed:
				report.fail("%s", res.Message)
			}
		}
	}
	return nil
}

// managedAliases collects the folded aliases of every record installed by
// provider, whether or not its source is enabled.
func (m *Manager) managedAliases(provider string, records []types.AppRecord, fallback sources.Strategy) map[string]bool {
	managed := make(map[string]bool)
	for _, r := range records {
		name := m.canonical(r.Source)
		if name == "" || m.registry.ProviderOf(name) != provider {
			continue
		}
		s, err := m.strategy(name)
		if err != nil {
			s = fallback
		}
		for _, alias := range s.ManagedAliases(r.Key) {
			managed[alias] = true
		}
	}
	return managed
}

func (m *Manager) confirmUninstall(label string, autoConfirm bool) bool {
	if autoConfirm {
		return true
	}
	if !m.console.Interactive() {
		m.console.Warning("stdin is not interactive; skipping removal of unmanaged %s apps. Use --yes to remove them.", label)
		return false
	}

	ok, err := m.console.Confirm(fmt.Sprintf("Uninstall these %s apps?", label))
	if err != nil {
		m.logger.Warn().Err(err).Msg("Confirmation failed")
		return false
	}
	return ok
}

func (m *Manager) upgrade(ctx context.Context, plan *syncPlan, report *SyncReport) error {
	for _, provider := range plan.providers {
		if err := interrupted(ctx); err != nil {
			return err
		}

		label := sources.ProviderLabel(provider)
		m.console.Header("Upgrading %s apps", label)

		if err := plan.byProvider[provider][0].UpgradeAll(ctx); err != nil {
			if errors.IsErrorCode(err, errors.ErrInterrupted) {
				return err
			}
			m.console.Error("Failed to upgrade %s apps: %s", label, errors.UserMessage(err))
			report.fail("Failed to upgrade %s apps: %s", label, errors.UserMessage(err))
			continue
		}
		report.Upgraded++
		m.console.Success("Upgraded %s apps", label)
	}
	return nil
}

func (m *Manager) summarize(r *SyncReport) {
	m.console.Header("Summary")
	m.console.Println("Installed: %d  Already present: %d  Removed: %d  Upgraded: %d  Failed: %d",
		r.Installed, r.Skipped, r.Removed, r.Upgraded, r.Failed)
	for _, f := range r.Failures {
		m.console.Println("  - %s", f)
	}
}
