package sources

import (
	"context"

	"github.com/arthur-debert/appsync/pkg/errors"
	"github.com/arthur-debert/appsync/pkg/types"
)

// Cask installs Homebrew casks
type Cask struct {
	brew
}

var _ UnmanagedUninstaller = (*Cask)(nil)

// NewCask creates the cask driver
func NewCask(env Env) Driver {
	return &Cask{brew: newBrew(env, "cask")}
}

// FetchInfo implements Driver
func (c *Cask) FetchInfo(ctx context.Context, app, stored string) (types.AppInfo, error) {
	data, err := c.info(ctx, app)
	if err != nil {
		return types.AppInfo{}, err
	}
	if len(data.Casks) == 0 {
		return types.AppInfo{}, notFound(c.kind, "casks", app)
	}

	cask := data.Casks[0]
	info := types.AppInfo{
		Name:          app,
		Description:   cask.Desc,
		Website:       cask.Homepage,
		LatestVersion: cask.Version,
	}
	if cask.Installed != nil && *cask.Installed != "" {
		info.Installed = true
		info.Version = *cask.Installed
	}
	if info.Description == "" && len(cask.Name) > 0 && stored == "" {
		info.Description = cask.Name[0]
	}
	return info, nil
}

// UninstallUnmanaged removes the cask together with its support files
func (c *Cask) UninstallUnmanaged(ctx context.Context, identifier string) types.Result {
	if err := c.env.stream(ctx, "brew", "uninstall", c.flag(), "--zap", identifier); err != nil {
		return types.Failed(err, "Failed to uninstall %s via %s: %s", identifier, c.kind, errors.UserMessage(err))
	}
	return types.Succeeded("Uninstalled %s via %s", identifier, c.kind)
}
