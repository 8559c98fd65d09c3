package process

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func TestRunner_Execute(t *testing.T) {
	skipWithoutShell(t)

	var out bytes.Buffer
	runner := NewRunner(
		WithOutput(&out),
		WithParamNames(func(op string) []string {
			if op == "echo_env" {
				return []string{"who", "to"}
			}
			return nil
		}),
	)
	runner.Register("echo_env", "sh", "-c", `echo "$ARBOR_OPERATOR $ARBOR_ARGC $ARBOR_ARG_0 $ARBOR_ARG_TO"`)

	t.Run("Passes Parameters via Env Vars", func(t *testing.T) {
		out.Reset()
		err := runner.Execute(context.Background(), "echo_env", domain.MustParams("me", "park"))
		require.NoError(t, err)
		assert.Equal(t, "echo_env 2 me park\n", out.String())
	})

	t.Run("Fails For Unregistered Operator", func(t *testing.T) {
		err := runner.Execute(context.Background(), "hacker_script", nil)
		assert.True(t, errors.Is(err, registry.ErrHandlerNotFound))
		assert.False(t, runner.Has("hacker_script"))
	})

	t.Run("Reports Exit Status And Stderr", func(t *testing.T) {
		runner.Register("fail", "sh", "-c", "echo broken >&2; exit 3")
		err := runner.Execute(context.Background(), "fail", nil)
		var exit *ExitError
		require.ErrorAs(t, err, &exit)
		assert.Equal(t, "fail", exit.Operator)
		assert.Contains(t, err.Error(), "broken")
	})

	t.Run("Stops On Cancellation", func(t *testing.T) {
		runner.Register("slow", "sleep", "5")
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		start := time.Now()
		err := runner.Execute(ctx, "slow", nil)
		assert.Error(t, err)
		assert.Less(t, time.Since(start), 4*time.Second)
	})
}

func TestRunner_AppendParams(t *testing.T) {
	skipWithoutShell(t)

	var out bytes.Buffer
	runner := NewRunner(WithOutput(&out), WithRegistry(map[string]ProcessConfig{
		"move": {Operator: "move", Command: "echo", Args: []string{"moving"}, AppendParams: true},
	}))

	require.NoError(t, runner.Execute(context.Background(), "move", domain.MustParams("ann", 3)))
	assert.Equal(t, "moving ann 3\n", out.String())
}

func TestLoadCommands(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "commands.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
commands:
  - operator: walk
    command: echo
    args: [walking]
    env: {PACE: slow}
`), 0o644))

	commands, err := LoadCommands(path)
	require.NoError(t, err)
	require.Contains(t, commands, "walk")
	assert.Equal(t, "slow", commands["walk"].Environment["PACE"])

	missing, err := LoadCommands(filepath.Join(dir, "nope.yaml"))
	require.NoError(t, err)
	assert.Empty(t, missing)

	require.NoError(t, os.WriteFile(path, []byte("commands:\n  - command: echo\n"), 0o644))
	_, err = LoadCommands(path)
	assert.ErrorContains(t, err, "no operator")
}
