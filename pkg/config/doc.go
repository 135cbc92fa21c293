// Package config handles configuration management for appsync.
// It layers embedded defaults, computed defaults, the user's TOML file and
// APPSYNC_ environment variables, then decodes the result into Config.
package config
