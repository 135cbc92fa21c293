// Package registry provides a generic, type-safe registry keyed by name.
// appsync uses it to hold the installer source factories.
package registry
