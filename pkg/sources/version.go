package sources

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Outdated reports whether installed is older than latest. Versions that are
// not semver (cask builds like "1.2,345") fall back to plain inequality.
func Outdated(installed, latest string) bool {
	installed = strings.TrimSpace(installed)
	latest = strings.TrimSpace(latest)
	if installed == "" || latest == "" || latest == "latest" {
		return false
	}

	iv, ierr := semver.NewVersion(installed)
	lv, lerr := semver.NewVersion(latest)
	if ierr != nil || lerr != nil {
		return installed != latest
	}
	return iv.LessThan(lv)
}
