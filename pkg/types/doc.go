// Package types defines the values passed between the manifest, the installer
// sources and the reconciliation layer: app records and groups, package
// metadata, unmanaged packages and operation results.
package types
