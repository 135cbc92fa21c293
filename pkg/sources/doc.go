// Package sources drives the package managers appsync reconciles against.
//
// Each installer is a Driver that knows its own commands: uv tools,
// Homebrew casks and formulae, and Mac App Store apps through mas. A Source
// wraps a Driver and adds what every installer shares: a cached view of
// what is installed, idempotent ensure-installed and ensure-uninstalled
// operations that return types.Result values instead of failing, and
// detection of packages missing from the manifest.
//
// Drivers are built through a Registry so that nothing outside this
// package hard-codes the set of sources:
//
//	reg := sources.DefaultRegistry()
//	cask, err := reg.Create("cask", runner.NewExec(), sources.WithOutput(os.Stdout, os.Stderr))
//	res := cask.EnsureInstalled(ctx, "firefox")
package sources
