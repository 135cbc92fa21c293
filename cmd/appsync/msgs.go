package appsync

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Keep installed apps in line with a declarative manifest"
	MsgAddShort        = "Declare an app in apps.toml and install it"
	MsgRemoveShort     = "Remove an app from apps.toml and uninstall it"
	MsgListShort       = "List the apps declared in apps.toml"
	MsgListLong        = "List shows every app in apps.toml grouped by section, optionally fuzzy-filtered on name, group and description."
	MsgInfoShort       = "Show what a source knows about an app"
	MsgInfoLong        = "Info asks the source for an app's description, website and versions. The description in apps.toml is used when the source has none."
	MsgSyncShort       = "Install, prune and upgrade apps to match apps.toml"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"

	// Status messages
	MsgVersionFormat = "appsync version %s\n  commit: %s\n  built:  %s\n"
	MsgInterrupted   = "Interrupted"
	MsgErrorFormat   = "Error: %s"

	// Error messages
	MsgErrNoCommand       = "no command specified"
	MsgErrNoSources       = "every source is disabled; nothing to sync"
	MsgErrUnknownSkip     = "unknown source %q in sync.skip_sources"
	MsgErrCompletionShell = "unsupported shell %q"

	// Flag descriptions
	MsgFlagVerbose     = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig      = "Config file (default $XDG_CONFIG_HOME/appsync/config.toml)"
	MsgFlagAppsFile    = "Manifest to use instead of the configured apps.toml"
	MsgFlagFormat      = "Output format: table, json or yaml"
	MsgFlagGroup       = "Group to add the app to (prompted for when omitted)"
	MsgFlagDescription = "Description stored as the entry's comment"
	MsgFlagNoInstall   = "Only edit apps.toml, do not touch the machine"
	MsgFlagYes         = "Uninstall unmanaged apps without asking"
	MsgFlagNoSource    = "Skip %s apps"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/add-long.txt
	msgAddLongRaw string
	MsgAddLong    = strings.TrimSpace(msgAddLongRaw)

	//go:embed msgs/add-example.txt
	msgAddExampleRaw string
	MsgAddExample    = strings.TrimRight(msgAddExampleRaw, "\n")

	//go:embed msgs/remove-long.txt
	msgRemoveLongRaw string
	MsgRemoveLong    = strings.TrimSpace(msgRemoveLongRaw)

	//go:embed msgs/remove-example.txt
	msgRemoveExampleRaw string
	MsgRemoveExample    = strings.TrimRight(msgRemoveExampleRaw, "\n")

	//go:embed msgs/list-example.txt
	msgListExampleRaw string
	MsgListExample    = strings.TrimRight(msgListExampleRaw, "\n")

	//go:embed msgs/info-example.txt
	msgInfoExampleRaw string
	MsgInfoExample    = strings.TrimRight(msgInfoExampleRaw, "\n")

	//go:embed msgs/sync-long.txt
	msgSyncLongRaw string
	MsgSyncLong    = strings.TrimSpace(msgSyncLongRaw)

	//go:embed msgs/sync-example.txt
	msgSyncExampleRaw string
	MsgSyncExample    = strings.TrimRight(msgSyncExampleRaw, "\n")

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw) + "\n"
)
