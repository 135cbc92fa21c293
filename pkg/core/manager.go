package core

import (
	"context"

	"github.com/arthur-debert/appsync/pkg/errors"
	"github.com/arthur-debert/appsync/pkg/logging"
	"github.com/arthur-debert/appsync/pkg/manifest"
	"github.com/arthur-debert/appsync/pkg/runner"
	"github.com/arthur-debert/appsync/pkg/sources"
	"github.com/arthur-debert/appsync/pkg/types"
	"github.com/arthur-debert/appsync/pkg/ui"
	"github.com/rs/zerolog"
)

// Manager implements the appsync operations
type Manager struct {
	repo       *manifest.Repository
	registry   *sources.Registry
	runner     runner.Runner
	console    *ui.Console
	sourceOpts []sources.Option
	strategies map[string]sources.Strategy
	logger     zerolog.Logger
}

// NewManager creates a manager. opts are handed to every source it creates.
func NewManager(repo *manifest.Repository, registry *sources.Registry, run runner.Runner, console *ui.Console, opts ...sources.Option) *Manager {
	return &Manager{
		repo:       repo,
		registry:   registry,
		runner:     run,
		console:    console,
		sourceOpts: opts,
		strategies: make(map[string]sources.Strategy),
		logger:     logging.GetLogger("core"),
	}
}

// Repository returns the manifest repository
func (m *Manager) Repository() *manifest.Repository { return m.repo }

// strategy returns the cached strategy for a source id
func (m *Manager) strategy(name string) (sources.Strategy, error) {
	entry, err := m.registry.Lookup(name)
	if err != nil {
		return nil, err
	}
	if s, ok := m.strategies[entry.Name]; ok {
		return s, nil
	}

	s, err := m.registry.Create(entry.Name, m.runner, m.sourceOpts...)
	if err != nil {
		return nil, err
	}
	m.strategies[entry.Name] = s
	return s, nil
}

// resultError turns a failed Result into the command error. The result
// message already names the app, the source and the installer's output.
func resultError(res types.Result) error {
	code := errors.GetErrorCode(res.Err)
	if res.Err == nil || code == errors.ErrUnknown {
		code = errors.ErrCommandFailed
	}
	return errors.New(code, res.Message).WithDetails(errors.GetErrorDetails(res.Err))
}

// interrupted wraps a context error
func interrupted(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, errors.ErrInterrupted, "Interrupted")
	}
	return nil
}
