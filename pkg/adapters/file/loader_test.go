package file_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/adapters/file"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/facts"
	"github.com/aretw0/arbor/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const examples = "../../../examples"

func plan(t *testing.T, b *file.Bundle, state facts.Facts, goal string, args ...domain.Value) []string {
	t.Helper()
	planner, err := arbor.New(b.Domain)
	require.NoError(t, err)
	res, err := planner.PlanTask(context.Background(), state, goal, args...)
	require.NoError(t, err)
	require.True(t, res.Found, "expected a plan for %s", goal)
	return res.Plan.Names()
}

func TestLoadDir_Travel(t *testing.T) {
	dir := filepath.Join(examples, "travel")
	b, err := file.LoadDir(dir)
	require.NoError(t, err)

	assert.Equal(t, "travel", b.Domain.Name)
	assert.Equal(t, "travel", b.Root)
	assert.Equal(t, []string{"who:text", "from:text", "to:text"}, b.Params["travel"].Strings())
	assert.NotEmpty(t, b.Descriptions["travel"])

	statePath, ok := file.FindState(dir)
	require.True(t, ok)
	state, err := file.LoadFacts(statePath)
	require.NoError(t, err)

	trip := []domain.Value{domain.Text("me"), domain.Text("home"), domain.Text("park")}
	assert.Equal(t, []string{"call_taxi", "ride_taxi", "pay_driver"}, plan(t, b, state, "travel", trip...))

	short := state.Clone()
	short["dist"]["home"] = map[string]any{"park": 1}
	assert.Equal(t, []string{"walk"}, plan(t, b, short, "travel", trip...))

	broke := state.Clone()
	broke.Set("cash", "me", 1)
	assert.Equal(t, []string{"walk"}, plan(t, b, broke, "travel", trip...))

	// No distance row for the destination: the route counts as long, not as an error.
	zoo := []domain.Value{domain.Text("me"), domain.Text("home"), domain.Text("zoo")}
	assert.Equal(t, []string{"call_taxi", "ride_taxi", "pay_driver"}, plan(t, b, state, "travel", zoo...))
}

func TestLoadDir_TravelReplay(t *testing.T) {
	dir := filepath.Join(examples, "travel")
	b, err := file.LoadDir(dir)
	require.NoError(t, err)
	state, err := file.LoadFacts(filepath.Join(dir, "state.yaml"))
	require.NoError(t, err)

	planner, err := arbor.New(b.Domain)
	require.NoError(t, err)
	res, err := planner.PlanTask(context.Background(), state, "travel",
		domain.Text("me"), domain.Text("home"), domain.Text("park"))
	require.NoError(t, err)

	end, err := res.Plan.Replay(state)
	require.NoError(t, err)
	loc, _ := end.Get("loc", "me")
	cash, _ := end.Get("cash", "me")
	assert.Equal(t, "park", loc)
	assert.Equal(t, 9, cash)

	before, _ := state.Get("cash", "me")
	assert.Equal(t, 20, before, "planning never mutates the caller's state")
}

func TestLoad_GatherWood(t *testing.T) {
	dir := filepath.Join(examples, "gather-wood")
	b, err := file.Load(dir)
	require.NoError(t, err)
	state, err := file.LoadFacts(filepath.Join(dir, "state.yaml"))
	require.NoError(t, err)

	got := plan(t, b, state, b.Root, domain.Text("ann"))
	assert.Equal(t, []string{"move_to", "chop", "move_to", "drop_wood"}, got)

	carrying := state.Clone()
	carrying.Set("has_wood", "ann", true)
	carrying.Set("loc", "ann", "forest")
	assert.Equal(t, []string{"move_to", "drop_wood"}, plan(t, b, carrying, b.Root, domain.Text("ann")))

	bare := state.Clone()
	bare.Delete("nearest", "base")
	assert.Empty(t, plan(t, b, bare, b.Root, domain.Text("ann")), "idle is an empty plan")
}

func TestDecodeBytes_SubtaskForms(t *testing.T) {
	doc, err := file.DecodeBytes([]byte(`
tasks:
  - name: t
    methods:
      - name: m
        subtasks:
          - a
          - {task: b, args: [1, "'x'"]}
          - {task: c, args: []}
`))
	require.NoError(t, err)
	subs := doc.Tasks[0].Methods[0].Subtasks
	require.Len(t, subs, 3)
	assert.Equal(t, "a", subs[0].Task)
	assert.True(t, subs[0].Forwards())
	assert.Equal(t, []string{"1", "'x'"}, subs[1].Args)
	assert.False(t, subs[2].Forwards(), "an explicit empty list passes no arguments")
}

func TestDecodeBytes_JSON(t *testing.T) {
	doc, err := file.DecodeBytes([]byte(`{"domain": "j", "operators": [{"name": "noop"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "j", doc.Domain)
	assert.Equal(t, "noop", doc.Operators[0].Name)
}

func TestDecodeBytes_UnknownField(t *testing.T) {
	_, err := file.DecodeBytes([]byte("operators:\n  - name: a\n    precondition: x\n"))
	assert.ErrorContains(t, err, "precondition")
}

func TestCompile_AggregatesErrors(t *testing.T) {
	doc, err := file.DecodeBytes([]byte(`
operators:
  - name: bad_pre
    pre: "loc[who] =="
  - name: bad_params
    params: [a:bool]
  - name: dup
  - name: dup
tasks:
  - name: bad_arg
    methods:
      - name: m
        subtasks: [{task: dup, args: ["1 +"]}]
`))
	require.NoError(t, err)

	_, err = file.Compile(doc)
	require.Error(t, err)
	errs := schema.ValidationErrors(err)
	assert.Len(t, errs, 4)
	assert.True(t, errors.Is(err, domain.ErrDuplicateName))
}

func TestLoadDir_MergesFiles(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write("a_ops.yaml", `
domain: split
operators:
  - name: mark
    params: [k:text]
    effects: [{set: done, key: k, value: "true"}]
`)
	write("b_tasks.yml", `
root: go
tasks:
  - name: go
    methods:
      - name: only
        subtasks: [{task: mark, args: ["'x'"]}, {task: mark, args: ["'y'"]}]
`)
	write("state.yaml", "done: {}\n")
	write("notes.txt", "ignored")

	b, err := file.LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, "split", b.Domain.Name)
	assert.Equal(t, "go", b.Root)

	planner, err := arbor.New(b.Domain)
	require.NoError(t, err)
	res, err := planner.PlanTask(context.Background(), facts.New(), "go")
	require.NoError(t, err)
	assert.Equal(t, "[mark(x), mark(y)]", res.Plan.String())
}

func TestLoadDir_Empty(t *testing.T) {
	_, err := file.LoadDir(t.TempDir())
	assert.ErrorIs(t, err, file.ErrNoDocuments)
}

func TestLoadFiles_ReportsEveryFile(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.yaml")
	require.NoError(t, os.WriteFile(a, []byte("operators: [\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("tasks: 3\n"), 0o644))

	_, err := file.LoadFiles(a, b)
	require.Error(t, err)
	assert.Len(t, schema.ValidationErrors(err), 2)
	assert.True(t, strings.Contains(err.Error(), "a.yaml") && strings.Contains(err.Error(), "b.yaml"))
}
