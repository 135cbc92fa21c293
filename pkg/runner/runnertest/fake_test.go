package runnertest

import (
	"bytes"
	"context"
	"testing"

	"github.com/arthur-debert/appsync/pkg/errors"
	"github.com/arthur-debert/appsync/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeScriptedResponses(t *testing.T) {
	f := New().
		On([]string{"uv", "tool", "list"}, Response{Stdout: "first"}, Response{Stdout: "second"})
	ctx := context.Background()

	res, err := f.Run(ctx, []string{"uv", "tool", "list"})
	require.NoError(t, err)
	assert.Equal(t, "first", res.Stdout)

	res, err = f.Run(ctx, []string{"uv", "tool", "list"})
	require.NoError(t, err)
	assert.Equal(t, "second", res.Stdout)

	res, err = f.Run(ctx, []string{"uv", "tool", "list"})
	require.NoError(t, err)
	assert.Equal(t, "second", res.Stdout, "last response repeats")

	assert.Equal(t, 3, f.CallCount("uv", "tool", "list"))
}

func TestFakeFailureAndMissing(t *testing.T) {
	f := New().Fail("Error: No available formula", "brew", "install", "--formula", "nope").Missing("mas")
	ctx := context.Background()

	_, err := f.Run(ctx, []string{"brew", "install", "--formula", "nope"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrCommandFailed))

	_, err = f.Run(ctx, []string{"mas", "list"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrMissingExecutable))
	assert.False(t, f.Called("mas", "list"))
}

func TestFakePassthroughAndDefaults(t *testing.T) {
	f := New().Stdout("==> Upgrading", "brew", "upgrade")
	var out bytes.Buffer

	_, err := f.Run(context.Background(), []string{"brew", "upgrade"}, runner.WithPassthrough(&out, nil))
	require.NoError(t, err)
	assert.Equal(t, "==> Upgrading", out.String())

	res, err := f.Run(context.Background(), []string{"brew", "update"})
	require.NoError(t, err)
	assert.Empty(t, res.Stdout)
	assert.Equal(t, []string{"brew upgrade", "brew update"}, f.CommandLines())
}
