// Package manifest reads and writes apps.toml, the declared list of packages.
//
// Each TOML table is a group and each entry maps an app key to the source
// that installs it, with the description kept as the entry's inline comment:
//
//	[dev]
//	ripgrep = "formula"  # Fast grep
//	"homebrew/core/gh" = "formula"  # GitHub CLI
//
// Keys are unique across the whole file, ignoring case. Edits preserve the
// file's formatting: untouched groups are written back verbatim and changed
// groups are re-sorted by key.
package manifest
