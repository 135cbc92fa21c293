package config

import (
	_ "embed"
	stderrors "errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/appsync/pkg/errors"
	"github.com/arthur-debert/appsync/pkg/logging"
	"github.com/arthur-debert/appsync/pkg/paths"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// EnvPrefix is the prefix of environment variables read as configuration
const EnvPrefix = "APPSYNC_"

// Output formats accepted by output.format
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Config is the resolved appsync configuration
type Config struct {
	AppsFile string       `koanf:"apps_file"`
	Sync     SyncConfig   `koanf:"sync"`
	Output   OutputConfig `koanf:"output"`
	Log      LogConfig    `koanf:"log"`
}

// SyncConfig holds defaults for the sync command
type SyncConfig struct {
	SkipSources []string `koanf:"skip_sources"`
	AssumeYes   bool     `koanf:"assume_yes"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Format string `koanf:"format"`
}

// LogConfig controls the log file
type LogConfig struct {
	File string `koanf:"file"`
}

// Options tune Load
type Options struct {
	// ConfigFile is an explicit config path. It must exist when set.
	ConfigFile string
	// Overrides are applied last, keyed by dotted config keys (e.g. "output.format")
	Overrides map[string]interface{}
}

// SkipsSource reports whether sync should leave the named source alone
func (c *Config) SkipsSource(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, s := range c.Sync.SkipSources {
		if s == name {
			return true
		}
	}
	return false
}

// rawBytesProvider implements koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, stderrors.New("not implemented")
}

// Load builds the configuration from, in increasing precedence: embedded
// defaults, computed defaults, the user config file, APPSYNC_ environment
// variables and opts.Overrides.
func Load(opts Options) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	// 2. Defaults that depend on the environment
	computed := map[string]interface{}{
		"apps_file": paths.DefaultManifestFile(),
		"log.file":  paths.LogFile(),
	}
	if err := k.Load(confmap.Provider(computed, "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load computed defaults")
	}

	// 3. User config file
	configFile, err := resolveConfigFile(opts.ConfigFile)
	if err != nil {
		return nil, err
	}
	if configFile != "" {
		if err := k.Load(file.Provider(configFile), parserFor(configFile)); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load config from %s", configFile).
				WithDetail("file", configFile)
		}
		logger.Debug().Str("path", configFile).Msg("Loaded config file")
	}

	// 4. Environment
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment variables")
	}

	// 5. Explicit overrides (command-line flags)
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to unmarshal configuration")
	}

	if err := postProcessConfig(&cfg); err != nil {
		return nil, err
	}

	logger.Debug().
		Str("appsFile", cfg.AppsFile).
		Strs("skipSources", cfg.Sync.SkipSources).
		Str("format", cfg.Output.Format).
		Msg("Configuration loaded")
	return &cfg, nil
}

// envKey maps APPSYNC_SYNC__ASSUME_YES to sync.assume_yes. Path overrides
// consumed by pkg/paths are not configuration keys.
func envKey(s string) string {
	switch s {
	case paths.EnvConfigDir, paths.EnvStateDir:
		return ""
	}
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// parserFor picks the parser from the file extension; TOML is the default
func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	}
	return toml.Parser()
}

func resolveConfigFile(explicit string) (string, error) {
	if explicit != "" {
		path := paths.ExpandHome(explicit)
		if _, err := os.Stat(path); err != nil {
			return "", errors.Wrapf(err, errors.ErrConfigLoad, "config file %s is not readable", path).
				WithDetail("file", path)
		}
		return path, nil
	}

	path := paths.ConfigFile()
	if _, err := os.Stat(path); err != nil {
		return "", nil
	}
	return path, nil
}

func postProcessConfig(cfg *Config) error {
	cfg.AppsFile = paths.ExpandHome(strings.TrimSpace(cfg.AppsFile))
	if cfg.AppsFile == "" {
		cfg.AppsFile = paths.DefaultManifestFile()
	}

	cfg.Log.File = paths.ExpandHome(strings.TrimSpace(cfg.Log.File))
	if cfg.Log.File == "" {
		cfg.Log.File = paths.LogFile()
	}

	cfg.Output.Format = strings.ToLower(strings.TrimSpace(cfg.Output.Format))
	switch cfg.Output.Format {
	case "":
		cfg.Output.Format = FormatTable
	case FormatTable, FormatJSON, FormatYAML:
	default:
		return errors.Newf(errors.ErrConfigLoad,
			"unknown output format %q (use %s, %s or %s)", cfg.Output.Format, FormatTable, FormatJSON, FormatYAML).
			WithDetail("format", cfg.Output.Format)
	}

	seen := make(map[string]bool)
	skip := make([]string, 0, len(cfg.Sync.SkipSources))
	for _, s := range cfg.Sync.SkipSources {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		skip = append(skip, s)
	}
	sort.Strings(skip)
	cfg.Sync.SkipSources = skip

	return nil
}
