package sources

import (
	"context"
	"io"
	"runtime"

	"github.com/arthur-debert/appsync/pkg/runner"
)

// Env is what a driver needs from its host
type Env struct {
	Runner runner.Runner
	// Stdout and Stderr receive the live output of installs and upgrades
	Stdout io.Writer
	Stderr io.Writer
	// GOOS is the host operating system
	GOOS string
}

// Option configures the Env handed to drivers
type Option func(*Env)

// WithOutput streams install and upgrade output to stdout and stderr
func WithOutput(stdout, stderr io.Writer) Option {
	return func(e *Env) {
		e.Stdout = stdout
		e.Stderr = stderr
	}
}

// WithGOOS overrides the host operating system
func WithGOOS(goos string) Option {
	return func(e *Env) { e.GOOS = goos }
}

func newEnv(r runner.Runner, opts ...Option) Env {
	env := Env{Runner: r, GOOS: runtime.GOOS}
	for _, opt := range opts {
		opt(&env)
	}
	return env
}

// output runs argv and returns its stdout
func (e Env) output(ctx context.Context, argv ...string) (string, error) {
	res, err := e.Runner.Run(ctx, argv)
	if err != nil {
		return "", err
	}
	return res.Stdout, nil
}

// stream runs argv with its output passed through to the user
func (e Env) stream(ctx context.Context, argv ...string) error {
	_, err := e.Runner.Run(ctx, argv, runner.WithPassthrough(e.Stdout, e.Stderr))
	return err
}
