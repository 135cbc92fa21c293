// Package runnertest provides a scripted runner.Runner for tests.
package runnertest

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/arthur-debert/appsync/pkg/errors"
	"github.com/arthur-debert/appsync/pkg/runner"
)

// Response is the scripted outcome of one command
type Response struct {
	Stdout   string
	Stderr   string
	ExitCode int
	// Err, when set, is returned as-is instead of a result
	Err error
}

// Fake is a runner.Runner returning scripted responses keyed by argv.
// Unscripted commands succeed with empty output. Every call is recorded.
type Fake struct {
	mu        sync.Mutex
	responses map[string][]Response
	missing   map[string]bool
	calls     [][]string
}

// New creates an empty Fake
func New() *Fake {
	return &Fake{
		responses: make(map[string][]Response),
		missing:   make(map[string]bool),
	}
}

func key(argv []string) string {
	return strings.Join(argv, "\x00")
}

// On queues responses for argv. Responses are consumed in order; the last
// one repeats.
func (f *Fake) On(argv []string, responses ...Response) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[key(argv)] = append(f.responses[key(argv)], responses...)
	return f
}

// Stdout is shorthand for a successful command printing out
func (f *Fake) Stdout(out string, argv ...string) *Fake {
	return f.On(argv, Response{Stdout: out})
}

// Fail is shorthand for a command exiting 1 with stderr
func (f *Fake) Fail(stderr string, argv ...string) *Fake {
	return f.On(argv, Response{Stderr: stderr, ExitCode: 1})
}

// Missing marks executables that LookPath cannot find
func (f *Fake) Missing(names ...string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range names {
		f.missing[n] = true
	}
	return f
}

// LookPath implements runner.Runner
func (f *Fake) LookPath(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.missing[name] {
		return "", runner.MissingExecutable(name, nil)
	}
	return "/usr/local/bin/" + name, nil
}

// Run implements runner.Runner
func (f *Fake) Run(ctx context.Context, argv []string, opts ...runner.Option) (*runner.Result, error) {
	if _, err := f.LookPath(argv[0]); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrapf(err, errors.ErrInterrupted, "%s interrupted", strings.Join(argv, " "))
	}

	f.mu.Lock()
	f.calls = append(f.calls, append([]string(nil), argv...))
	resp := Response{}
	if queued := f.responses[key(argv)]; len(queued) > 0 {
		resp = queued[0]
		if len(queued) > 1 {
			f.responses[key(argv)] = queued[1:]
		}
	}
	f.mu.Unlock()

	if resp.Err != nil {
		return nil, resp.Err
	}

	stdout, stderr, _ := runner.Apply(opts...)
	if stdout != nil {
		_, _ = io.WriteString(stdout, resp.Stdout)
	}
	if stderr != nil {
		_, _ = io.WriteString(stderr, resp.Stderr)
	}

	res := &runner.Result{
		Args:     append([]string(nil), argv...),
		Stdout:   resp.Stdout,
		Stderr:   resp.Stderr,
		ExitCode: resp.ExitCode,
	}
	if resp.ExitCode != 0 {
		return res, runner.CommandFailed(res)
	}
	return res, nil
}

// Calls returns every argv run so far
func (f *Fake) Calls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount returns how many times argv was run
func (f *Fake) CallCount(argv ...string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if key(c) == key(argv) {
			n++
		}
	}
	return n
}

// Called reports whether argv was run at least once
func (f *Fake) Called(argv ...string) bool {
	return f.CallCount(argv...) > 0
}

// CommandLines returns the recorded calls joined with spaces
func (f *Fake) CommandLines() []string {
	calls := f.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = strings.Join(c, " ")
	}
	return out
}
