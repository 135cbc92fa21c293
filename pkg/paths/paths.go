// Package paths resolves the directories and files appsync reads and writes.
// It follows the XDG Base Directory specification, with environment
// overrides for each location.
package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// Environment variable names
const (
	// EnvDotPath points at a dotfiles checkout that holds apps.toml
	EnvDotPath = "DOTPATH"

	// EnvConfigDir overrides the XDG config directory for appsync
	EnvConfigDir = "APPSYNC_CONFIG_DIR"

	// EnvStateDir overrides the XDG state directory for appsync
	EnvStateDir = "APPSYNC_STATE_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

const (
	// AppDirName is the directory name used under each XDG base directory
	AppDirName = "appsync"

	// ManifestFileName is the file name of the manifest
	ManifestFileName = "apps.toml"

	// ConfigFileName is the file name of the user configuration
	ConfigFileName = "config.toml"

	// LogFileName is the file name of the log written under the state directory
	LogFileName = "appsync.log"
)

// ConfigDir returns the appsync configuration directory
func ConfigDir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return ExpandHome(dir)
	}
	return filepath.Join(xdg.ConfigHome, AppDirName)
}

// StateDir returns the appsync state directory
func StateDir() string {
	if dir := os.Getenv(EnvStateDir); dir != "" {
		return ExpandHome(dir)
	}
	return filepath.Join(xdg.StateHome, AppDirName)
}

// ConfigFile returns the default user configuration file path
func ConfigFile() string {
	return filepath.Join(ConfigDir(), ConfigFileName)
}

// LogFile returns the default log file path
func LogFile() string {
	return filepath.Join(StateDir(), LogFileName)
}

// DefaultManifestFile returns $DOTPATH/apps.toml when DOTPATH is set and the
// file inside the config directory otherwise.
func DefaultManifestFile() string {
	if dot := os.Getenv(EnvDotPath); dot != "" {
		return filepath.Join(ExpandHome(dot), ManifestFileName)
	}
	return filepath.Join(ConfigDir(), ManifestFileName)
}

// ExpandHome expands a leading ~ to the home directory
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			return path
		}
	}

	if len(path) == 1 {
		return homeDir
	}

	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}

	// ~user is not expanded
	return path
}
