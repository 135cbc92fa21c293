package appsync

import (
	"fmt"
	"sort"

	"github.com/arthur-debert/appsync/internal/version"
	"github.com/arthur-debert/appsync/pkg/config"
	"github.com/arthur-debert/appsync/pkg/core"
	"github.com/arthur-debert/appsync/pkg/errors"
	"github.com/arthur-debert/appsync/pkg/filesystem"
	"github.com/arthur-debert/appsync/pkg/logging"
	"github.com/arthur-debert/appsync/pkg/manifest"
	"github.com/arthur-debert/appsync/pkg/runner"
	"github.com/arthur-debert/appsync/pkg/sources"
	"github.com/arthur-debert/appsync/pkg/types"
	"github.com/arthur-debert/appsync/pkg/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// annotationNoConfig marks commands that run without loading configuration
const annotationNoConfig = "appsync/no-config"

// Deps are the machine-facing parts of the CLI. Zero values select the
// real filesystem, process runner, terminal and built-in sources.
type Deps struct {
	Fs       afero.Fs
	Runner   runner.Runner
	Console  *ui.Console
	Registry *sources.Registry
}

// app carries the state shared by the commands of one invocation
type app struct {
	deps Deps

	verbosity  int
	configFile string
	appsFile   string

	cfg     *config.Config
	console *ui.Console
	manager *core.Manager
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return NewRootCmdWithDeps(Deps{})
}

// NewRootCmdWithDeps is NewRootCmd with injected dependencies
func NewRootCmdWithDeps(deps Deps) *cobra.Command {
	initTemplateFormatting()

	if deps.Fs == nil {
		deps.Fs = filesystem.NewOS()
	}
	if deps.Runner == nil {
		deps.Runner = runner.NewExec()
	}
	if deps.Registry == nil {
		deps.Registry = sources.DefaultRegistry()
	}
	a := &app{deps: deps}

	rootCmd := &cobra.Command{
		Use:     "appsync",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[annotationNoConfig] != "" {
				logging.SetupLogger(a.verbosity)
				return nil
			}
			if err := a.loadConfig(cmd); err != nil {
				return err
			}
			logging.SetupLoggerWithFile(a.verbosity, a.cfg.Log.File)
			log.Debug().Str("command", cmd.Name()).Str("appsFile", a.cfg.AppsFile).Msg("Command started")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errors.New(errors.ErrInvalidInput, MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&a.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", MsgFlagConfig)
	rootCmd.PersistentFlags().StringVar(&a.appsFile, "apps-file", "", MsgFlagAppsFile)

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "COMMANDS:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "misc",
		Title: "MISC:",
	})

	rootCmd.SetHelpCommandGroupID("misc")
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(a.newAddCmd())
	rootCmd.AddCommand(a.newRemoveCmd())
	rootCmd.AddCommand(a.newListCmd())
	rootCmd.AddCommand(a.newInfoCmd())
	rootCmd.AddCommand(a.newSyncCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

// loadConfig resolves configuration and builds the manager. Flags win over
// every other layer.
func (a *app) loadConfig(cmd *cobra.Command) error {
	if a.manager != nil {
		return nil
	}

	overrides := make(map[string]interface{})
	if a.appsFile != "" {
		overrides["apps_file"] = a.appsFile
	}
	if f := cmd.Flags().Lookup("format"); f != nil && f.Changed {
		overrides["output.format"] = f.Value.String()
	}

	cfg, err := config.Load(config.Options{ConfigFile: a.configFile, Overrides: overrides})
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.console = a.deps.Console
	if a.console == nil {
		a.console = ui.NewConsole()
	}

	a.manager = core.NewManager(
		manifest.NewRepository(a.deps.Fs, cfg.AppsFile),
		a.deps.Registry,
		a.deps.Runner,
		a.console,
		sources.WithOutput(a.console.Out(), a.console.ErrOut()),
	)
	return nil
}

func (a *app) format() (ui.Format, error) {
	return ui.ParseFormat(a.cfg.Output.Format)
}

// sourceCompletion completes the source argument from the registry
func (a *app) sourceCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 1 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return a.deps.Registry.Names(), cobra.ShellCompDirectiveNoFileComp
}

// appCompletion completes declared app keys
func (a *app) appCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	if err := a.loadConfig(cmd); err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	repo := a.manager.Repository()
	exists, err := filesystem.Exists(a.deps.Fs, repo.Path())
	if err != nil || !exists {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	doc, err := repo.Load()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	keys := recordKeys(doc.Records())
	sort.Strings(keys)
	return keys, cobra.ShellCompDirectiveNoFileComp
}

func (a *app) newAddCmd() *cobra.Command {
	var opts core.AddOptions

	cmd := &cobra.Command{
		Use:               "add <app> <source>",
		Short:             MsgAddShort,
		Long:              MsgAddLong,
		Example:           MsgAddExample,
		GroupID:           "core",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: a.sourceCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.App = args[0]
			opts.Source = args[1]

			log.Info().
				Str("app", opts.App).
				Str("source", opts.Source).
				Str("group", opts.Group).
				Bool("noInstall", opts.NoInstall).
				Msg("Adding app")

			_, err := a.manager.AddApp(cmd.Context(), opts)
			return err
		},
	}

	cmd.Flags().StringVarP(&opts.Group, "group", "g", "", MsgFlagGroup)
	cmd.Flags().StringVarP(&opts.Description, "description", "d", "", MsgFlagDescription)
	cmd.Flags().BoolVar(&opts.NoInstall, "no-install", false, MsgFlagNoInstall)

	return cmd
}

func (a *app) newRemoveCmd() *cobra.Command {
	var opts core.RemoveOptions

	cmd := &cobra.Command{
		Use:               "remove <app>",
		Aliases:           []string{"rm"},
		Short:             MsgRemoveShort,
		Long:              MsgRemoveLong,
		Example:           MsgRemoveExample,
		GroupID:           "core",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: a.appCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.App = args[0]
			log.Info().Str("app", opts.App).Bool("noInstall", opts.NoInstall).Msg("Removing app")

			_, err := a.manager.RemoveApp(cmd.Context(), opts)
			return err
		},
	}

	cmd.Flags().BoolVar(&opts.NoInstall, "no-install", false, MsgFlagNoInstall)

	return cmd
}

func (a *app) newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list [filter]",
		Aliases: []string{"ls"},
		Short:   MsgListShort,
		Long:    MsgListLong,
		Example: MsgListExample,
		GroupID: "core",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := a.format()
			if err != nil {
				return err
			}

			opts := core.ListOptions{Format: format}
			if len(args) == 1 {
				opts.Filter = args[0]
			}

			_, err = a.manager.ListApps(opts)
			return err
		},
	}

	cmd.Flags().String("format", config.FormatTable, MsgFlagFormat)

	return cmd
}

func (a *app) newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "info <app> <source>",
		Short:             MsgInfoShort,
		Long:              MsgInfoLong,
		Example:           MsgInfoExample,
		GroupID:           "core",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: a.sourceCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := a.format()
			if err != nil {
				return err
			}

			_, err = a.manager.Info(cmd.Context(), core.InfoOptions{
				App:    args[0],
				Source: args[1],
				Format: format,
			})
			return err
		},
	}

	cmd.Flags().String("format", config.FormatTable, MsgFlagFormat)

	return cmd
}

func (a *app) newSyncCmd() *cobra.Command {
	var yes bool
	skip := make(map[string]*bool)

	cmd := &cobra.Command{
		Use:     "sync",
		Short:   MsgSyncShort,
		Long:    MsgSyncLong,
		Example: MsgSyncExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enabled, err := a.enabledSources(skip)
			if err != nil {
				return err
			}

			opts := core.SyncOptions{
				AutoConfirm:    yes || a.cfg.Sync.AssumeYes,
				EnabledSources: enabled,
			}
			log.Info().Strs("sources", enabled).Bool("autoConfirm", opts.AutoConfirm).Msg("Syncing")

			_, err = a.manager.Sync(cmd.Context(), opts)
			return err
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, MsgFlagYes)
	for _, name := range a.deps.Registry.Names() {
		skip[name] = cmd.Flags().Bool("no-"+name, false, fmt.Sprintf(MsgFlagNoSource, name))
	}

	return cmd
}

// enabledSources drops the sources turned off by --no-<source> flags or by
// sync.skip_sources.
func (a *app) enabledSources(skip map[string]*bool) ([]string, error) {
	for _, name := range a.cfg.Sync.SkipSources {
		if !a.deps.Registry.Has(name) {
			log.Warn().Str("source", name).Msgf(MsgErrUnknownSkip, name)
		}
	}

	var enabled []string
	for _, name := range a.deps.Registry.Names() {
		if off, ok := skip[name]; ok && *off {
			continue
		}
		if a.cfg.SkipsSource(name) {
			continue
		}
		enabled = append(enabled, name)
	}

	if len(enabled) == 0 {
		return nil, errors.New(errors.ErrInvalidInput, MsgErrNoSources)
	}
	return enabled, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       MsgVersionShort,
		GroupID:     "misc",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationNoConfig: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat, version.Version, version.Commit, version.Date)
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		Annotations:           map[string]string{annotationNoConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return errors.Newf(errors.ErrInvalidInput, MsgErrCompletionShell, args[0])
		},
	}
}

// ExitStatus renders err for the terminal and picks the process exit code
func ExitStatus(err error) (string, int) {
	if errors.IsErrorCode(err, errors.ErrInterrupted) {
		return MsgInterrupted, 130
	}
	return fmt.Sprintf(MsgErrorFormat, errors.UserMessage(err)), 1
}

func recordKeys(records []types.AppRecord) []string {
	keys := make([]string, len(records))
	for i, r := range records {
		keys[i] = r.Key
	}
	return keys
}
