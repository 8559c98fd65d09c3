package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/arbor/pkg/executor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func travelExec() ExecOptions {
	return ExecOptions{
		PlanOptions: PlanOptions{
			Options: Options{Dir: travelDir},
			Args:    []string{"me", "home", "park"},
		},
		Agent: "me",
	}
}

func TestRunExecute_DryRun(t *testing.T) {
	opts := travelExec()
	opts.DryRun = true

	var out bytes.Buffer
	rec, err := RunExecute(context.Background(), opts, &out)
	require.NoError(t, err)
	assert.True(t, rec.Done())
	assert.Contains(t, out.String(), "would run call_taxi(me, home, park)\n")
	assert.Contains(t, out.String(), ">>> Completed 3/3 steps of travel for me.")
}

func TestRunExecute_Commands(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	var out bytes.Buffer
	_, err := RunExecute(context.Background(), travelExec(), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "me calls a taxi at home\n")
	assert.Contains(t, out.String(), "me rides to park\n")
	assert.Contains(t, out.String(), "paying driver for me home park\n")
}

func TestRunExecute_ResumeAfterFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	mr := miniredis.RunT(t)
	key := bytes.Repeat([]byte{7}, 32)

	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte(`
commands:
  - {operator: call_taxi, command: "true"}
  - {operator: ride_taxi, command: "true"}
  - {operator: pay_driver, command: sh, args: ["-c", "echo no card >&2; exit 1"]}
  - {operator: walk, command: "true"}
`), 0o644))

	opts := travelExec()
	opts.RedisAddr = mr.Addr()
	opts.StoreKey = key
	opts.CommandsPath = broken

	var out bytes.Buffer
	rec, err := RunExecute(context.Background(), opts, &out)
	var stepErr *executor.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, 2, stepErr.Index)
	assert.Equal(t, 2, rec.Cursor)
	assert.Contains(t, out.String(), "Stopped at step 3 (pay_driver(me, home, park))")

	opts.CommandsPath = ""
	opts.Resume = true
	out.Reset()
	rec, err = RunExecute(context.Background(), opts, &out)
	require.NoError(t, err)
	assert.True(t, rec.Done())
	assert.Contains(t, out.String(), "paying driver for me home park\n")
	assert.NotContains(t, out.String(), "calls a taxi")
}

func TestRunExecute_MissingCommand(t *testing.T) {
	opts := travelExec()
	opts.CommandsPath = filepath.Join(t.TempDir(), "none.yaml")

	_, err := RunExecute(context.Background(), opts, &bytes.Buffer{})
	assert.ErrorContains(t, err, "handler not found")
}
