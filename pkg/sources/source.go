package sources

import (
	"context"
	"sort"

	"github.com/arthur-debert/appsync/pkg/errors"
	"github.com/arthur-debert/appsync/pkg/logging"
	"github.com/arthur-debert/appsync/pkg/types"
	"github.com/rs/zerolog"
)

// Strategy is what the reconciler needs from an installer
type Strategy interface {
	Name() string
	Provider() string

	// IsInstalled reports whether any alias of app is present on the machine
	IsInstalled(ctx context.Context, app string) (bool, error)

	// EnsureInstalled installs app unless it is already present
	EnsureInstalled(ctx context.Context, app string) types.Result

	// EnsureUninstalled removes app if it is present
	EnsureUninstalled(ctx context.Context, app string) types.Result

	// FindUnmanaged lists installed packages whose aliases are all missing
	// from managed, a set of folded aliases.
	FindUnmanaged(ctx context.Context, managed map[string]bool) ([]types.UnmanagedApp, error)

	// ManagedAliases returns the folded names app may appear under
	ManagedAliases(app string) []string

	// UninstallUnmanaged removes a package found by FindUnmanaged
	UninstallUnmanaged(ctx context.Context, identifier string) types.Result

	// Prime lets the installer batch lookups for the apps about to be installed
	Prime(ctx context.Context, apps []string)

	// UpgradeAll upgrades every package of the provider
	UpgradeAll(ctx context.Context) error

	// FetchInfo returns metadata for app. stored is the manifest description,
	// used when the installer has none.
	FetchInfo(ctx context.Context, app, stored string) (types.AppInfo, error)

	// RequiresDescription reports whether new records must carry an explicit
	// description because the installer has no metadata to offer.
	RequiresDescription() bool
}

// Driver holds the installer-specific commands
type Driver interface {
	Name() string
	Provider() string

	// ListInstalled maps identifiers to display names
	ListInstalled(ctx context.Context) (map[string]string, error)
	Install(ctx context.Context, app string) error
	Uninstall(ctx context.Context, app string) types.Result
	UpgradeAll(ctx context.Context) error
	FetchInfo(ctx context.Context, app, stored string) (types.AppInfo, error)
	Aliases(app string) []string
}

// PreInstallChecker can veto an install. A non-nil result is returned as is.
type PreInstallChecker interface {
	PreInstallCheck(ctx context.Context, app string) *types.Result
}

// Primer batches lookups ahead of installs
type Primer interface {
	Prime(ctx context.Context, apps []string)
}

// UnmanagedLister narrows the packages considered for unmanaged detection
type UnmanagedLister interface {
	ListUnmanagedCandidates(ctx context.Context) ([]types.UnmanagedApp, error)
}

// UnmanagedUninstaller removes unmanaged packages differently from declared ones
type UnmanagedUninstaller interface {
	UninstallUnmanaged(ctx context.Context, identifier string) types.Result
}

// DescriptionRequirer is implemented by drivers without package metadata
type DescriptionRequirer interface {
	RequiresDescription() bool
}

// Source wraps a Driver with the installed-state cache and the idempotent
// ensure operations shared by every installer.
type Source struct {
	driver    Driver
	logger    zerolog.Logger
	installed map[string]string
}

var _ Strategy = (*Source)(nil)

// NewSource wraps driver
func NewSource(driver Driver) *Source {
	return &Source{
		driver: driver,
		logger: logging.GetLogger("sources").With().Str("source", driver.Name()).Logger(),
	}
}

// Name returns the source id, e.g. "cask"
func (s *Source) Name() string { return s.driver.Name() }

// Provider returns the package manager behind the source, e.g. "brew"
func (s *Source) Provider() string { return s.driver.Provider() }

// Driver returns the wrapped driver
func (s *Source) Driver() Driver { return s.driver }

func (s *Source) loadInstalled(ctx context.Context) (map[string]string, error) {
	if s.installed != nil {
		return s.installed, nil
	}

	installed, err := s.driver.ListInstalled(ctx)
	if err != nil {
		return nil, err
	}
	if installed == nil {
		installed = make(map[string]string)
	}
	s.installed = installed

	s.logger.Debug().Int("count", len(installed)).Msg("Listed installed packages")
	return s.installed, nil
}

// IsInstalled implements Strategy
func (s *Source) IsInstalled(ctx context.Context, app string) (bool, error) {
	installed, err := s.loadInstalled(ctx)
	if err != nil {
		return false, err
	}

	aliases := s.ManagedAliases(app)
	for id, display := range installed {
		for _, alias := range aliases {
			if alias == types.Fold(id) || (display != "" && alias == types.Fold(display)) {
				return true, nil
			}
		}
	}
	return false, nil
}

// EnsureInstalled implements Strategy
func (s *Source) EnsureInstalled(ctx context.Context, app string) types.Result {
	installed, err := s.IsInstalled(ctx, app)
	if err != nil {
		return types.Failed(err, "Could not list %s packages: %s", s.Name(), errors.UserMessage(err))
	}
	if installed {
		return types.Skipped("%s is already installed", app)
	}

	if checker, ok := s.driver.(PreInstallChecker); ok {
		if res := checker.PreInstallCheck(ctx, app); res != nil {
			s.logger.Debug().Str("app", app).Str("status", string(res.Status)).Msg("Install vetoed by pre-install check")
			return *res
		}
	}

	s.logger.Info().Str("app", app).Msg("Installing")
	if err := s.driver.Install(ctx, app); err != nil {
		return types.Failed(err, "Failed to install %s via %s: %s", app, s.Name(), errors.UserMessage(err))
	}

	s.installed[app] = app
	return types.Succeeded("Installed %s via %s", app, s.Name())
}

// EnsureUninstalled implements Strategy
func (s *Source) EnsureUninstalled(ctx context.Context, app string) types.Result {
	installed, err := s.IsInstalled(ctx, app)
	if err != nil {
		return types.Failed(err, "Could not list %s packages: %s", s.Name(), errors.UserMessage(err))
	}
	if !installed {
		return types.Skipped("%s is not installed", app)
	}

	s.logger.Info().Str("app", app).Msg("Uninstalling")
	res := s.driver.Uninstall(ctx, app)
	if res.Status == types.StatusSucceeded {
		s.forget(app)
	}
	return res
}

// forget drops every cache entry matching an alias of app
func (s *Source) forget(app string) {
	aliases := make(map[string]bool)
	for _, a := range s.ManagedAliases(app) {
		aliases[a] = true
	}
	for id, display := range s.installed {
		if aliases[types.Fold(id)] || aliases[types.Fold(display)] {
			delete(s.installed, id)
		}
	}
}

// ManagedAliases implements Strategy
func (s *Source) ManagedAliases(app string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, a := range s.driver.Aliases(app) {
		f := types.Fold(a)
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// FindUnmanaged implements Strategy
func (s *Source) FindUnmanaged(ctx context.Context, managed map[string]bool) ([]types.UnmanagedApp, error) {
	var candidates []types.UnmanagedApp

	if lister, ok := s.driver.(UnmanagedLister); ok {
		listed, err := lister.ListUnmanagedCandidates(ctx)
		if err != nil {
			return nil, err
		}
		candidates = listed
	} else {
		installed, err := s.loadInstalled(ctx)
		if err != nil {
			return nil, err
		}
		for id, display := range installed {
			candidates = append(candidates, types.UnmanagedApp{Source: s.Name(), Identifier: id, Display: display})
		}
	}

	var out []types.UnmanagedApp
	for _, c := range candidates {
		if s.isManaged(c, managed) {
			continue
		}
		c.Source = s.Name()
		out = append(out, c)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Identifier < out[j].Identifier })

	s.logger.Debug().
		Int("candidates", len(candidates)).
		Int("unmanaged", len(out)).
		Msg("Unmanaged packages detected")
	return out, nil
}

func (s *Source) isManaged(c types.UnmanagedApp, managed map[string]bool) bool {
	for _, alias := range s.ManagedAliases(c.Identifier) {
		if managed[alias] {
			return true
		}
	}
	return false
}

// UninstallUnmanaged implements Strategy
func (s *Source) UninstallUnmanaged(ctx context.Context, identifier string) types.Result {
	var res types.Result
	if u, ok := s.driver.(UnmanagedUninstaller); ok {
		res = u.UninstallUnmanaged(ctx, identifier)
	} else {
		res = s.driver.Uninstall(ctx, identifier)
	}
	if res.Status == types.StatusSucceeded && s.installed != nil {
		s.forget(identifier)
	}
	return res
}

// Prime implements Strategy
func (s *Source) Prime(ctx context.Context, apps []string) {
	if p, ok := s.driver.(Primer); ok && len(apps) > 0 {
		p.Prime(ctx, apps)
	}
}

// UpgradeAll implements Strategy
func (s *Source) UpgradeAll(ctx context.Context) error {
	s.logger.Info().Msg("Upgrading")
	return s.driver.UpgradeAll(ctx)
}

// RequiresDescription implements Strategy
func (s *Source) RequiresDescription() bool {
	if d, ok := s.driver.(DescriptionRequirer); ok {
		return d.RequiresDescription()
	}
	return false
}

// FetchInfo implements Strategy
func (s *Source) FetchInfo(ctx context.Context, app, stored string) (types.AppInfo, error) {
	info, err := s.driver.FetchInfo(ctx, app, stored)
	if err != nil {
		return types.AppInfo{}, err
	}
	if info.Name == "" {
		info.Name = app
	}
	info.Source = s.Name()
	if info.Description == "" {
		info.Description = stored
	}
	info.Outdated = info.Installed && Outdated(info.Version, info.LatestVersion)
	return info, nil
}
