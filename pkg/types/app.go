package types

import "golang.org/x/text/cases"

// Fold returns the identity form of an app key or group name: Unicode full
// case folding, so "Straße" and "STRASSE" compare equal.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// AppRecord is one declared package in the manifest.
// Key casing is preserved for display; identity is the case-folded key.
type AppRecord struct {
	Group       string `json:"group" yaml:"group"`
	Key         string `json:"key" yaml:"key"`
	Source      string `json:"source" yaml:"source"`
	Description string `json:"description" yaml:"description"`
}

// Group is a named section of the manifest with its records in stored order.
type Group struct {
	Name string      `json:"name" yaml:"name"`
	Apps []AppRecord `json:"apps" yaml:"apps"`
}

// AppInfo is metadata about a package as reported by its installer.
type AppInfo struct {
	Name          string `json:"name" yaml:"name"`
	Source        string `json:"source" yaml:"source"`
	Description   string `json:"description,omitempty" yaml:"description,omitempty"`
	Website       string `json:"website,omitempty" yaml:"website,omitempty"`
	Version       string `json:"version,omitempty" yaml:"version,omitempty"`
	LatestVersion string `json:"latest_version,omitempty" yaml:"latest_version,omitempty"`
	Installed     bool   `json:"installed" yaml:"installed"`
	Outdated      bool   `json:"outdated" yaml:"outdated"`
}

// UnmanagedApp is a package present on the machine but absent from the manifest.
type UnmanagedApp struct {
	Source     string `json:"source" yaml:"source"`
	Identifier string `json:"identifier" yaml:"identifier"`
	Display    string `json:"display" yaml:"display"`
}

// Label returns the display name, falling back to the identifier.
func (u UnmanagedApp) Label() string {
	if u.Display == "" || u.Display == u.Identifier {
		return u.Identifier
	}
	return u.Display + " (" + u.Identifier + ")"
}
