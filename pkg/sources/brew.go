package sources

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/arthur-debert/appsync/pkg/errors"
	"github.com/arthur-debert/appsync/pkg/logging"
	"github.com/arthur-debert/appsync/pkg/types"
	"github.com/rs/zerolog"
)

// ProviderBrew is the provider id shared by casks and formulae
const ProviderBrew = "brew"

// brewInfo is the subset of `brew info --json=v2` appsync reads
type brewInfo struct {
	Formulae []brewFormula `json:"formulae"`
	Casks    []brewCask    `json:"casks"`
}

type brewFormula struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Desc     string `json:"desc"`
	Homepage string `json:"homepage"`
	Versions struct {
		Stable string `json:"stable"`
	} `json:"versions"`
	Installed []struct {
		Version string `json:"version"`
	} `json:"installed"`
	Requirements []struct {
		Name string `json:"name"`
	} `json:"requirements"`
	Bottle struct {
		Stable struct {
			Files map[string]json.RawMessage `json:"files"`
		} `json:"stable"`
	} `json:"bottle"`
}

type brewCask struct {
	Token     string   `json:"token"`
	FullToken string   `json:"full_token"`
	Name      []string `json:"name"`
	Desc      string   `json:"desc"`
	Homepage  string   `json:"homepage"`
	Version   string   `json:"version"`
	Installed *string  `json:"installed"`
}

// macOSOnly reports whether a formula requires macOS and ships no Linux bottle
func (f brewFormula) macOSOnly() bool {
	requiresMacOS := false
	for _, r := range f.Requirements {
		if r.Name == "macos" {
			requiresMacOS = true
			break
		}
	}
	if !requiresMacOS {
		return false
	}
	for platform := range f.Bottle.Stable.Files {
		if strings.HasSuffix(platform, "_linux") {
			return false
		}
	}
	return true
}

// brew holds the commands casks and formulae share. kind is "cask" or
// "formula" and doubles as the brew flag.
type brew struct {
	env    Env
	kind   string
	logger zerolog.Logger
}

func newBrew(env Env, kind string) brew {
	return brew{
		env:    env,
		kind:   kind,
		logger: logging.GetLogger("sources").With().Str("source", kind).Logger(),
	}
}

func (b brew) flag() string { return "--" + b.kind }

// Name implements Driver
func (b brew) Name() string { return b.kind }

// Provider implements Driver
func (b brew) Provider() string { return ProviderBrew }

// Aliases implements Driver. Tapped names also match their short form.
func (b brew) Aliases(app string) []string {
	aliases := []string{app}
	if i := strings.LastIndex(app, "/"); i >= 0 && i < len(app)-1 {
		aliases = append(aliases, app[i+1:])
	}
	return aliases
}

// ListInstalled implements Driver
func (b brew) ListInstalled(ctx context.Context) (map[string]string, error) {
	out, err := b.env.output(ctx, "brew", "list", b.flag(), "-1")
	if err != nil {
		return nil, err
	}
	return parseNameList(out), nil
}

// Install implements Driver
func (b brew) Install(ctx context.Context, app string) error {
	return b.env.stream(ctx, "brew", "install", b.flag(), app)
}

// Uninstall implements Driver
func (b brew) Uninstall(ctx context.Context, app string) types.Result {
	if err := b.env.stream(ctx, "brew", "uninstall", b.flag(), app); err != nil {
		return types.Failed(err, "Failed to uninstall %s via %s: %s", app, b.kind, errors.UserMessage(err))
	}
	return types.Succeeded("Uninstalled %s via %s", app, b.kind)
}

// UpgradeAll implements Driver
func (b brew) UpgradeAll(ctx context.Context) error {
	if err := b.env.stream(ctx, "brew", "update"); err != nil {
		return err
	}
	return b.env.stream(ctx, "brew", "upgrade")
}

// info runs `brew info --json=v2` for the given names
func (b brew) info(ctx context.Context, names ...string) (brewInfo, error) {
	argv := append([]string{"brew", "info", "--json=v2", b.flag()}, names...)
	out, err := b.env.output(ctx, argv...)
	if err != nil {
		return brewInfo{}, err
	}

	var info brewInfo
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		return brewInfo{}, errors.Wrapf(err, errors.ErrParse, "could not parse brew info output for %s", strings.Join(names, ", "))
	}
	return info, nil
}

func notFound(kind, plural, app string) error {
	return errors.Newf(errors.ErrNotFound, "No %s information returned for %s", plural, app).
		WithDetail("source", kind).
		WithDetail("app", app)
}

// parseNameList reads one package name per line
func parseNameList(out string) map[string]string {
	names := make(map[string]string)
	for _, line := range strings.Split(out, "\n") {
		name := strings.TrimSpace(line)
		if name == "" || strings.ContainsAny(name, " \t") {
			continue
		}
		names[name] = name
	}
	return names
}
