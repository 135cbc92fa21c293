package sources

import (
	"context"
	"regexp"
	"strings"

	"github.com/arthur-debert/appsync/pkg/errors"
	"github.com/arthur-debert/appsync/pkg/types"
)

// ProviderMAS is the provider id of Mac App Store apps
const ProviderMAS = "mas"

var (
	// 497799835  Xcode  (15.0)
	masListLine = regexp.MustCompile(`^(\d+)\s+(.+?)\s+\(([^)]*)\)$`)
	// Xcode 15.0 [Free]
	masInfoHeader = regexp.MustCompile(`^(?P<name>.+?)\s+(?P<version>\d[\w.\-]+)(?:\s+\[.*\])?$`)
	masAppID      = regexp.MustCompile(`^\d+$`)
)

// MAS installs Mac App Store apps by numeric id
type MAS struct {
	env Env
}

var _ PreInstallChecker = (*MAS)(nil)

// NewMAS creates the mas driver
func NewMAS(env Env) Driver {
	return &MAS{env: env}
}

func (m *MAS) Name() string     { return "mas" }
func (m *MAS) Provider() string { return ProviderMAS }

// Aliases implements Driver
func (m *MAS) Aliases(app string) []string { return []string{app} }

type masApp struct {
	name    string
	version string
}

// ListInstalled implements Driver
func (m *MAS) ListInstalled(ctx context.Context) (map[string]string, error) {
	apps, err := m.list(ctx)
	if err != nil {
		return nil, err
	}
	installed := make(map[string]string, len(apps))
	for id, app := range apps {
		installed[id] = app.name
	}
	return installed, nil
}

// list parses `mas list`. Lines that do not parse are skipped.
func (m *MAS) list(ctx context.Context) (map[string]masApp, error) {
	out, err := m.env.output(ctx, "mas", "list")
	if err != nil {
		return nil, err
	}

	apps := make(map[string]masApp)
	for _, line := range strings.Split(out, "\n") {
		match := masListLine.FindStringSubmatch(strings.TrimSpace(line))
		if match == nil {
			continue
		}
		apps[match[1]] = masApp{name: strings.TrimSpace(match[2]), version: strings.TrimSpace(match[3])}
	}
	return apps, nil
}

// PreInstallCheck rejects keys that are not App Store ids
func (m *MAS) PreInstallCheck(ctx context.Context, app string) *types.Result {
	if masAppID.MatchString(app) {
		return nil
	}
	err := errors.Newf(errors.ErrInvalidInput, "mas apps are declared by numeric App Store id, got %q", app).
		WithDetail("app", app)
	res := types.Failed(err, "Cannot install %s via mas: not an App Store id", app)
	return &res
}

// Install implements Driver
func (m *MAS) Install(ctx context.Context, app string) error {
	return m.env.stream(ctx, "mas", "install", app)
}

// Uninstall implements Driver
func (m *MAS) Uninstall(ctx context.Context, app string) types.Result {
	if err := m.env.stream(ctx, "mas", "uninstall", app); err != nil {
		return types.Failed(err, "Failed to uninstall %s via mas: %s", app, errors.UserMessage(err))
	}
	return types.Succeeded("Uninstalled %s via mas", app)
}

// UpgradeAll implements Driver
func (m *MAS) UpgradeAll(ctx context.Context) error {
	return m.env.stream(ctx, "mas", "upgrade")
}

// FetchInfo implements Driver
func (m *MAS) FetchInfo(ctx context.Context, app, stored string) (types.AppInfo, error) {
	out, err := m.env.output(ctx, "mas", "info", app)
	if err != nil {
		return types.AppInfo{}, err
	}

	info, err := parseMasInfo(app, out)
	if err != nil {
		return types.AppInfo{}, err
	}

	if apps, err := m.list(ctx); err == nil {
		if installed, ok := apps[app]; ok {
			info.Installed = true
			info.Version = installed.version
		}
	}
	return info, nil
}

// parseMasInfo reads the header line and the "From:" line of `mas info`.
// A header without a version is taken whole as the name.
func parseMasInfo(app, out string) (types.AppInfo, error) {
	info := types.AppInfo{Name: app}

	header := ""
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if header == "" {
			header = line
			continue
		}
		if rest, ok := strings.CutPrefix(line, "From:"); ok {
			info.Website = strings.TrimSpace(rest)
		}
	}
	if header == "" {
		return types.AppInfo{}, errors.New(errors.ErrParse, "Could not parse mas info output").
			WithDetail("app", app)
	}

	if match := masInfoHeader.FindStringSubmatch(header); match != nil {
		info.Description = strings.TrimSpace(match[1])
		info.LatestVersion = match[2]
	} else {
		info.Description = header
	}
	return info, nil
}
