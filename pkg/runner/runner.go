// Package runner executes installer commands. It is the only place appsync
// starts external processes.
package runner

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/arthur-debert/appsync/pkg/errors"
	"github.com/arthur-debert/appsync/pkg/logging"
	"github.com/rs/zerolog"
)

// Runner locates executables and runs argument vectors
type Runner interface {
	// LookPath resolves an executable name, failing with ErrMissingExecutable
	LookPath(name string) (string, error)

	// Run executes argv and waits for it. A non-zero exit returns the captured
	// result together with an ErrCommandFailed error.
	Run(ctx context.Context, argv []string, opts ...Option) (*Result, error)
}

// Result holds the captured output of a finished command
type Result struct {
	Args     []string
	Stdout   string
	Stderr   string
	ExitCode int
}

// Command returns the argv joined for display
func (r *Result) Command() string {
	return strings.Join(r.Args, " ")
}

// Option configures a single Run call
type Option func(*runOptions)

type runOptions struct {
	stdout io.Writer
	stderr io.Writer
	stdin  io.Reader
}

// WithPassthrough streams output to the given writers while still capturing it.
// Used for installs and upgrades, where installer progress should be visible.
func WithPassthrough(stdout, stderr io.Writer) Option {
	return func(o *runOptions) {
		o.stdout = stdout
		o.stderr = stderr
	}
}

// WithStdin connects the command's standard input
func WithStdin(r io.Reader) Option {
	return func(o *runOptions) { o.stdin = r }
}

// Apply resolves options into the writers a runner should use. It is exported
// for alternative Runner implementations.
func Apply(opts ...Option) (stdout, stderr io.Writer, stdin io.Reader) {
	var o runOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o.stdout, o.stderr, o.stdin
}

// Exec runs commands with os/exec
type Exec struct {
	logger   zerolog.Logger
	lookPath func(string) (string, error)
}

// NewExec creates a runner backed by the operating system
func NewExec() *Exec {
	return &Exec{
		logger:   logging.GetLogger("runner"),
		lookPath: exec.LookPath,
	}
}

// LookPath resolves an executable on PATH
func (e *Exec) LookPath(name string) (string, error) {
	path, err := e.lookPath(name)
	if err != nil {
		return "", MissingExecutable(name, err)
	}
	return path, nil
}

// Run executes argv, capturing stdout and stderr
func (e *Exec) Run(ctx context.Context, argv []string, opts ...Option) (*Result, error) {
	if len(argv) == 0 {
		return nil, errors.New(errors.ErrInvalidInput, "command requires at least one argument")
	}

	path, err := e.LookPath(argv[0])
	if err != nil {
		return nil, err
	}

	passOut, passErr, stdin := Apply(opts...)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, argv[1:]...)
	cmd.Stdout = teeTo(&stdout, passOut)
	cmd.Stderr = teeTo(&stderr, passErr)
	cmd.Stdin = stdin

	logging.LogCommand(e.logger, argv)

	runErr := cmd.Run()
	result := &Result{
		Args:     append([]string(nil), argv...),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: cmd.ProcessState.ExitCode(),
	}

	if ctx.Err() != nil {
		return result, errors.Wrapf(ctx.Err(), errors.ErrInterrupted, "%s interrupted", result.Command())
	}

	if runErr != nil {
		e.logger.Debug().
			Strs("argv", argv).
			Int("exitCode", result.ExitCode).
			Str("stderr", strings.TrimSpace(result.Stderr)).
			Msg("Command failed")

		var exitErr *exec.ExitError
		if !stderrors.As(runErr, &exitErr) {
			return result, errors.Wrapf(runErr, errors.ErrCommandFailed, "%s could not be started", result.Command())
		}
		return result, CommandFailed(result)
	}

	e.logger.Trace().
		Strs("argv", argv).
		Int("stdoutBytes", len(result.Stdout)).
		Msg("Command completed")

	return result, nil
}

func teeTo(buf *bytes.Buffer, w io.Writer) io.Writer {
	if w == nil {
		return buf
	}
	return io.MultiWriter(buf, w)
}

// MissingExecutable builds the error returned when a binary is not on PATH
func MissingExecutable(name string, cause error) error {
	err := errors.Newf(errors.ErrMissingExecutable, "%s is not installed or not on PATH", name).
		WithDetail("executable", name)
	err.Wrapped = cause
	return err
}

// CommandFailed builds the error for a command that exited non-zero. The
// message carries the installer's own explanation.
func CommandFailed(res *Result) error {
	reason := strings.TrimSpace(res.Stderr)
	if reason == "" {
		reason = strings.TrimSpace(res.Stdout)
	}
	if reason == "" {
		reason = "exit status " + strconv.Itoa(res.ExitCode)
	}

	return errors.Newf(errors.ErrCommandFailed, "%s failed: %s", res.Command(), reason).
		WithDetail("args", res.Args).
		WithDetail("exit_code", res.ExitCode).
		WithDetail("stdout", res.Stdout).
		WithDetail("stderr", res.Stderr)
}
