package runner

import (
	"bytes"
	"context"
	stderrors "errors"
	"os/exec"
	"testing"

	"github.com/arthur-debert/appsync/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestExecRunCapturesOutput(t *testing.T) {
	requireShell(t)
	r := NewExec()

	res, err := r.Run(context.Background(), []string{"sh", "-c", "echo out; echo err >&2"})
	require.NoError(t, err)
	assert.Equal(t, "out\n", res.Stdout)
	assert.Equal(t, "err\n", res.Stderr)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "sh -c echo out; echo err >&2", res.Command())
}

func TestExecRunNonZeroExit(t *testing.T) {
	requireShell(t)
	r := NewExec()

	res, err := r.Run(context.Background(), []string{"sh", "-c", "echo nope >&2; exit 3"})
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 3, res.ExitCode)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCommandFailed))
	assert.Contains(t, err.Error(), "nope")

	details := errors.GetErrorDetails(err)
	assert.Equal(t, 3, details["exit_code"])
}

func TestExecRunPassthrough(t *testing.T) {
	requireShell(t)
	r := NewExec()
	var out, errOut bytes.Buffer

	res, err := r.Run(context.Background(), []string{"sh", "-c", "echo live; echo warn >&2"}, WithPassthrough(&out, &errOut))
	require.NoError(t, err)
	assert.Equal(t, "live\n", out.String())
	assert.Equal(t, "warn\n", errOut.String())
	assert.Equal(t, "live\n", res.Stdout)
}

func TestExecMissingExecutable(t *testing.T) {
	r := NewExec()
	r.lookPath = func(string) (string, error) { return "", exec.ErrNotFound }

	_, err := r.Run(context.Background(), []string{"mas", "list"})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrMissingExecutable))
	assert.Equal(t, "mas", errors.GetErrorDetails(err)["executable"])
}

func TestExecRunEmptyArgv(t *testing.T) {
	_, err := NewExec().Run(context.Background(), nil)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestExecRunCancelled(t *testing.T) {
	requireShell(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExec().Run(ctx, []string{"sh", "-c", "sleep 5"})
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, context.Canceled))
	assert.True(t, errors.IsErrorCode(err, errors.ErrInterrupted))
}

func TestCommandFailedFallsBackToStdoutAndExitCode(t *testing.T) {
	err := CommandFailed(&Result{Args: []string{"brew", "upgrade"}, Stdout: "only stdout\n", ExitCode: 1})
	assert.Contains(t, err.Error(), "brew upgrade failed: only stdout")

	err = CommandFailed(&Result{Args: []string{"brew", "upgrade"}, ExitCode: 2})
	assert.Contains(t, err.Error(), "brew upgrade failed: exit status 2")
}
