package sources

import (
	"context"
	"strings"

	"github.com/arthur-debert/appsync/pkg/errors"
	"github.com/arthur-debert/appsync/pkg/types"
)

// ProviderUV is the provider id of uv tools
const ProviderUV = "uv"

// UV installs Python command-line tools with `uv tool`
type UV struct {
	env Env
}

var _ DescriptionRequirer = (*UV)(nil)

// NewUV creates the uv driver
func NewUV(env Env) Driver {
	return &UV{env: env}
}

func (u *UV) Name() string     { return "uv" }
func (u *UV) Provider() string { return ProviderUV }

// Aliases implements Driver
func (u *UV) Aliases(app string) []string { return []string{app} }

// RequiresDescription is always true: uv has no package metadata command
func (u *UV) RequiresDescription() bool { return true }

// ListInstalled implements Driver
func (u *UV) ListInstalled(ctx context.Context) (map[string]string, error) {
	tools, err := u.tools(ctx)
	if err != nil {
		return nil, err
	}
	installed := make(map[string]string, len(tools))
	for name := range tools {
		installed[name] = name
	}
	return installed, nil
}

// tools maps installed tool names to versions. Lines listing a tool's
// executables start with "-".
func (u *UV) tools(ctx context.Context) (map[string]string, error) {
	out, err := u.env.output(ctx, "uv", "tool", "list")
	if err != nil {
		return nil, err
	}

	tools := make(map[string]string)
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "-") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		tools[fields[0]] = strings.TrimPrefix(fields[1], "v")
	}
	return tools, nil
}

// Install implements Driver
func (u *UV) Install(ctx context.Context, app string) error {
	return u.env.stream(ctx, "uv", "tool", "install", app)
}

// Uninstall implements Driver
func (u *UV) Uninstall(ctx context.Context, app string) types.Result {
	if err := u.env.stream(ctx, "uv", "tool", "uninstall", app); err != nil {
		return types.Failed(err, "Failed to uninstall %s via uv: %s", app, errors.UserMessage(err))
	}
	return types.Succeeded("Uninstalled %s via uv", app)
}

// UpgradeAll implements Driver
func (u *UV) UpgradeAll(ctx context.Context) error {
	return u.env.stream(ctx, "uv", "tool", "upgrade", "--all")
}

// FetchInfo implements Driver. uv has no metadata command, so the
// description always comes from the manifest.
func (u *UV) FetchInfo(ctx context.Context, app, stored string) (types.AppInfo, error) {
	info := types.AppInfo{
		Name:        app,
		Description: stored,
		Website:     "https://pypi.org/project/" + app + "/",
	}

	tools, err := u.tools(ctx)
	if err != nil {
		return types.AppInfo{}, err
	}
	for name, version := range tools {
		if types.Fold(name) == types.Fold(app) {
			info.Installed = true
			info.Version = version
			break
		}
	}
	return info, nil
}
