package dsl

import (
	"errors"
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
)

type tally struct{ N int }

func TestBuilder_SimpleDomain(t *testing.T) {
	b := New[tally]("tally")

	b.Operator("inc").
		Params(domain.KindInt).
		If(func(s tally, p domain.Params) bool { return s.N < 10 }).
		Then(func(s tally, p domain.Params) tally {
			n, _ := p.Int(0)
			s.N += n
			return s
		})

	b.Task("count").
		Params(domain.KindInt).
		Method("twice").Do("inc", "inc").
		Method("fixed").DoWith("inc", domain.Int(1)).
		Method("done")

	d, err := b.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	if d.Name != "tally" {
		t.Errorf("Expected domain name 'tally', got %q", d.Name)
	}

	op, ok := d.Operator("inc")
	if !ok {
		t.Fatal("Expected operator 'inc' to be registered")
	}
	if len(op.Signature) != 1 || op.Signature[0] != domain.KindInt {
		t.Errorf("Unexpected operator signature %v", op.Signature)
	}

	task, ok := d.Task("count")
	if !ok {
		t.Fatal("Expected task 'count' to be registered")
	}
	if len(task.Methods) != 3 {
		t.Fatalf("Expected 3 methods, got %d", len(task.Methods))
	}
	wantOrder := []string{"twice", "fixed", "done"}
	for i, m := range task.Methods {
		if m.Name != wantOrder[i] {
			t.Errorf("Method %d: expected %q, got %q", i, wantOrder[i], m.Name)
		}
	}
	if got := len(task.Methods[0].Subtasks); got != 2 {
		t.Errorf("Expected 2 subtasks in 'twice', got %d", got)
	}
	if fixed, ok := task.Methods[1].Subtasks[0].Fixed(); !ok || !fixed.Equal(domain.Params{domain.Int(1)}) {
		t.Errorf("Expected fixed args [1], got %v (set=%v)", fixed, ok)
	}
}

func TestBuilder_ReusesDeclarations(t *testing.T) {
	b := New[tally]("reuse")
	b.Task("t").Method("a")
	b.Task("t").Method("b")

	d := b.MustBuild()
	task, _ := d.Task("t")
	if len(task.Methods) != 2 {
		t.Errorf("Expected methods to accumulate, got %d", len(task.Methods))
	}
}

func TestBuilder_ReportsErrors(t *testing.T) {
	b := New[tally]("broken")
	b.Operator("wide").Params(domain.KindInt, domain.KindInt, domain.KindInt, domain.KindInt, domain.KindInt, domain.KindInt)
	b.Operator("clash")
	b.Task("clash").Method("m")

	if _, err := b.Build(); err == nil {
		t.Fatal("Expected Build() to fail")
	}
}

func TestBuilder_EmptyParamsIsZeroArity(t *testing.T) {
	b := New[tally]("idle")
	b.Operator("noop").Params()
	b.Task("idle").Params().Method("rest").Do("noop")
	b.Task("loose").Method("rest").Do("noop")

	d, err := b.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	for _, name := range []string{"noop", "idle"} {
		sig, ok := d.SignatureOf(name)
		if !ok || sig == nil {
			t.Fatalf("Expected %q to declare an empty signature, got %v", name, sig)
		}
		if _, err := sig.Bind(domain.MustParams(1)); !errors.Is(err, domain.ErrSignature) {
			t.Errorf("Expected %q to reject arguments, got %v", name, err)
		}
	}

	if sig, _ := d.SignatureOf("loose"); sig != nil {
		t.Errorf("Expected unset Params to leave the signature unchecked, got %v", sig)
	}
}
