package core

import (
	"context"

	"github.com/arthur-debert/appsync/pkg/errors"
	"github.com/arthur-debert/appsync/pkg/logging"
	"github.com/arthur-debert/appsync/pkg/manifest"
	"github.com/arthur-debert/appsync/pkg/sources"
	"github.com/arthur-debert/appsync/pkg/types"
)

// AddOptions holds the parameters of AddApp
type AddOptions struct {
	App    string
	Source string
	// Group is prompted for when empty
	Group       string
	Description string
	NoInstall   bool
}

// AddApp declares an app in the manifest and installs it. The manifest is
// saved only when the install phase succeeded or was skipped.
func (m *Manager) AddApp(ctx context.Context, opts AddOptions) (manifest.AddOutcome, error) {
	done := logging.LogOperationStart(m.logger, "add")
	defer done()

	doc, err := m.repo.Load()
	if err != nil {
		return manifest.AddOutcome{}, err
	}

	entry, err := m.registry.Lookup(opts.Source)
	if err != nil {
		return manifest.AddOutcome{}, err
	}
	strategy, err := m.strategy(entry.Name)
	if err != nil {
		return manifest.AddOutcome{}, err
	}

	group, err := m.chooseGroup(doc, opts.Group)
	if err != nil {
		return manifest.AddOutcome{}, err
	}

	description, err := m.describe(ctx, doc, strategy, opts.App, opts.Description)
	if err != nil {
		return manifest.AddOutcome{}, err
	}

	outcome, err := m.repo.AddOrUpdate(doc, opts.App, entry.Name, group, description)
	if err != nil {
		return manifest.AddOutcome{}, err
	}
	m.reportAdd(outcome)

	if !opts.NoInstall {
		if err := m.installAdded(ctx, outcome, strategy); err != nil {
			m.console.Warning("Rolled back: %s was not changed.", m.repo.Path())
			return outcome, err
		}
	}

	if !outcome.Changed {
		return outcome, nil
	}
	if err := m.repo.Save(doc); err != nil {
		return outcome, err
	}
	return outcome, nil
}

func (m *Manager) chooseGroup(doc *manifest.Document, group string) (string, error) {
	if group == "" {
		picked, err := m.console.PickGroup(doc.GroupNames())
		if err != nil {
			return "", err
		}
		group = picked
	}
	return m.repo.ResolveGroupName(doc, group)
}

// describe picks the description of a new or updated record: the explicit
// one, else the installer's, else the one already stored.
func (m *Manager) describe(ctx context.Context, doc *manifest.Document, strategy sources.Strategy, app, explicit string) (string, error) {
	if d := manifest.SanitizeDescription(explicit); d != "" {
		return d, nil
	}

	if strategy.RequiresDescription() {
		return "", errors.Newf(errors.ErrMissingDescription,
			"Description is required for %s-installed apps. Use --description/-d.", strategy.Name())
	}

	var stored string
	if rec, ok := m.repo.FindApp(doc, app); ok {
		stored = rec.Description
	}

	info, err := strategy.FetchInfo(ctx, app, stored)
	if err != nil {
		m.logger.Debug().Err(err).Str("app", app).Msg("Metadata lookup failed")
		if errors.IsErrorCode(err, errors.ErrInterrupted) {
			return "", err
		}
		info.Description = stored
	}
	if d := manifest.SanitizeDescription(info.Description); d != "" {
		return d, nil
	}

	unavailable := errors.Newf(errors.ErrDescriptionUnavailable,
		"Could not determine description for %s. Provide --description explicitly.", app)
	if err != nil {
		unavailable = errors.Wrapf(err, errors.ErrDescriptionUnavailable,
			"Could not determine description for %s. Provide --description explicitly.", app)
	}
	return "", unavailable
}

func (m *Manager) reportAdd(o manifest.AddOutcome) {
	switch {
	case !o.Changed:
		m.console.Info("'%s' is already in [%s] with source '%s'.", o.Key, o.Group, o.Source)
	case o.MovedFrom != "":
		m.console.Success("Moved '%s' from [%s] to [%s] with source '%s' and description %q.",
			o.Key, o.MovedFrom, o.Group, o.Source, o.Description)
	case o.Existed:
		m.console.Success("Updated '%s' in [%s] with source '%s' and description %q.",
			o.Key, o.Group, o.Source, o.Description)
	default:
		m.console.Success("Added '%s' to [%s] with source '%s' and description %q.",
			o.Key, o.Group, o.Source, o.Description)
	}
}

// installAdded brings the machine in line with the edited record. When the
// source changed, the previous package goes first; if the new install then
// fails it is put back.
func (m *Manager) installAdded(ctx context.Context, o manifest.AddOutcome, strategy sources.Strategy) error {
	var previous sources.Strategy
	var removedPrevious bool

	if m.sourceSwitched(o) {
		prev, err := m.strategy(o.PreviousSource)
		if err != nil {
			m.console.Warning("Previous source '%s' is unknown; not uninstalling %s.", o.PreviousSource, o.Key)
		} else {
			previous = prev
			res := previous.EnsureUninstalled(ctx, o.Key)
			m.console.Result(res)
			if !res.OK() {
				return resultError(res)
			}
			removedPrevious = res.Changed()
		}
	}

	res := strategy.EnsureInstalled(ctx, o.Key)
	m.console.Result(res)
	if res.OK() {
		return nil
	}

	if removedPrevious {
		m.compensate(ctx, previous, o.Key)
	}
	return resultError(res)
}

// sourceSwitched reports whether the record moved to another installer. A
// stored source spelled differently but naming the same installer is not a
// switch.
func (m *Manager) sourceSwitched(o manifest.AddOutcome) bool {
	if !o.SourceChanged() {
		return false
	}
	if prev, err := m.registry.Lookup(o.PreviousSource); err == nil {
		return prev.Name != o.Source
	}
	return true
}

// compensate reinstalls app via the source it was just removed from
func (m *Manager) compensate(ctx context.Context, previous sources.Strategy, app string) {
	m.logger.Info().Str("app", app).Str("source", previous.Name()).Msg("Reinstalling via previous source")
	res := previous.EnsureInstalled(context.WithoutCancel(ctx), app)
	if res.Status == types.StatusFailed {
		m.console.Error("Could not reinstall %s via %s: %s", app, previous.Name(), res.Message)
		return
	}
	m.console.Result(res)
}
