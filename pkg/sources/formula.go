package sources

import (
	"context"

	"github.com/arthur-debert/appsync/pkg/types"
)

// Formula installs Homebrew formulae. Off macOS it skips formulae that only
// build there.
type Formula struct {
	brew
	// macOnly holds folded names found by Prime; nil until primed
	macOnly map[string]bool
}

var (
	_ PreInstallChecker = (*Formula)(nil)
	_ Primer            = (*Formula)(nil)
	_ UnmanagedLister   = (*Formula)(nil)
)

// NewFormula creates the formula driver
func NewFormula(env Env) Driver {
	return &Formula{brew: newBrew(env, "formula")}
}

// FetchInfo implements Driver
func (f *Formula) FetchInfo(ctx context.Context, app, stored string) (types.AppInfo, error) {
	data, err := f.info(ctx, app)
	if err != nil {
		return types.AppInfo{}, err
	}
	if len(data.Formulae) == 0 {
		return types.AppInfo{}, notFound(f.kind, "formulae", app)
	}

	formula := data.Formulae[0]
	info := types.AppInfo{
		Name:          app,
		Description:   formula.Desc,
		Website:       formula.Homepage,
		LatestVersion: formula.Versions.Stable,
	}
	if n := len(formula.Installed); n > 0 {
		info.Installed = true
		info.Version = formula.Installed[n-1].Version
	}
	return info, nil
}

// ListUnmanagedCandidates returns formulae installed on request. Dependencies
// pulled in by other formulae are never offered for removal.
func (f *Formula) ListUnmanagedCandidates(ctx context.Context) ([]types.UnmanagedApp, error) {
	out, err := f.env.output(ctx, "brew", "leaves", "--installed-on-request")
	if err != nil {
		return nil, err
	}

	var candidates []types.UnmanagedApp
	for name := range parseNameList(out) {
		candidates = append(candidates, types.UnmanagedApp{Source: f.kind, Identifier: name, Display: name})
	}
	return candidates, nil
}

// Prime looks up every app in one brew call so PreInstallCheck does not
// shell out per formula.
func (f *Formula) Prime(ctx context.Context, apps []string) {
	if f.env.GOOS == "darwin" {
		return
	}
	f.macOnly = f.lookupMacOnly(ctx, apps)
	f.logger.Debug().Int("apps", len(apps)).Int("macOnly", len(f.macOnly)).Msg("Primed platform check")
}

// PreInstallCheck skips macOS-only formulae on other hosts
func (f *Formula) PreInstallCheck(ctx context.Context, app string) *types.Result {
	if f.env.GOOS == "darwin" {
		return nil
	}

	macOnly := f.macOnly
	if macOnly == nil {
		macOnly = f.lookupMacOnly(ctx, []string{app})
	}
	if !macOnly[types.Fold(app)] {
		return nil
	}

	res := types.Skipped("Skipping %s (macOS only)", app)
	return &res
}

// lookupMacOnly returns the folded names of the macOS-only formulae among
// apps. Lookup failures yield an empty set.
func (f *Formula) lookupMacOnly(ctx context.Context, apps []string) map[string]bool {
	set := make(map[string]bool)

	data, err := f.info(ctx, apps...)
	if err != nil {
		f.logger.Debug().Err(err).Msg("Platform lookup failed, assuming formulae are portable")
		return set
	}

	for _, formula := range data.Formulae {
		if !formula.macOSOnly() {
			continue
		}
		set[types.Fold(formula.Name)] = true
		if formula.FullName != "" {
			set[types.Fold(formula.FullName)] = true
		}
	}
	return set
}
