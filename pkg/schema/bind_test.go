package schema

import (
	"errors"
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
)

func bindDomain() *domain.Domain[int] {
	d := domain.New[int]()
	d.RegisterOperator("move", nil, nil, domain.MustSignature(domain.KindText, domain.KindInt))
	d.RegisterOperator("free", nil, nil, nil)
	return d
}

func TestBindJSON(t *testing.T) {
	d := bindDomain()
	named := func(name string) (Schema, bool) {
		if name != "move" {
			return nil, false
		}
		s, _ := Parse([]string{"who", "steps:int"})
		return s, true
	}

	params, err := BindJSON(d, named, "move", []byte(`{"steps": 3, "who": "ann"}`))
	if err != nil {
		t.Fatalf("named: %v", err)
	}
	if !params.Equal(domain.MustParams("ann", 3)) {
		t.Errorf("named = %v", params)
	}

	params, err = BindJSON(d, nil, "move", []byte(`["ann", 3]`))
	if err != nil || !params.Equal(domain.MustParams("ann", 3)) {
		t.Errorf("positional = %v, %v", params, err)
	}

	params, err = BindJSON(d, nil, "free", []byte(`[1, 2.5, "x"]`))
	if err != nil || !params.Equal(domain.MustParams(1, 2.5, "x")) {
		t.Errorf("undeclared = %v, %v", params, err)
	}

	if _, err := BindJSON(d, nil, "move", nil); !errors.Is(err, domain.ErrSignature) {
		t.Errorf("missing args: got %v", err)
	}
	if _, err := BindJSON(d, nil, "nope", nil); !errors.Is(err, domain.ErrUnknownTask) {
		t.Errorf("unknown goal: got %v", err)
	}
	var malformed *MalformedError
	if _, err := BindJSON(d, nil, "move", []byte(`[1,`)); !errors.As(err, &malformed) {
		t.Errorf("malformed: got %v", err)
	}
	if _, err := BindJSON(d, nil, "free", []byte(`{"a": 1}`)); !errors.As(err, &malformed) {
		t.Errorf("named args without names: got %v", err)
	}
}

func TestBindStrings(t *testing.T) {
	d := bindDomain()

	params, err := BindStrings(d, nil, "move", []string{"ann", "4"})
	if err != nil || !params.Equal(domain.MustParams("ann", 4)) {
		t.Errorf("declared = %v, %v", params, err)
	}
	params, err = BindStrings(d, nil, "free", []string{"4"})
	if err != nil || !params.Equal(domain.MustParams("4")) {
		t.Errorf("undeclared = %v, %v", params, err)
	}
	if _, err := BindStrings(d, nil, "move", []string{"ann", "four"}); err == nil {
		t.Error("expected parse error")
	}
}
