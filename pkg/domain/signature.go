package domain

import (
	"slices"
	"strings"
)

// MaxParams is the largest number of parameters a signature may declare.
const MaxParams = 5

// Signature is the ordered list of kinds a task or operator accepts.
type Signature []Kind

// NewSignature validates and returns a signature.
func NewSignature(kinds ...Kind) (Signature, error) {
	sig := Signature(kinds)
	if err := sig.Validate(); err != nil {
		return nil, err
	}
	return sig, nil
}

// MustSignature is like NewSignature but panics on error.
func MustSignature(kinds ...Kind) Signature {
	sig, err := NewSignature(kinds...)
	if err != nil {
		panic(err)
	}
	return sig
}

// Validate checks the capacity bound and that every tag is a real kind.
func (s Signature) Validate() error {
	if len(s) > MaxParams {
		return &CapacityError{Max: MaxParams, Got: len(s)}
	}
	for i, k := range s {
		if k == KindInvalid || k > KindText {
			return &TypeMismatchError{Position: i, Want: KindInvalid, Got: k}
		}
	}
	return nil
}

// Bind checks values against the signature and returns an independent copy.
// It returns *ArityError on a length mismatch and *TypeMismatchError at the
// first position whose tag differs.
func (s Signature) Bind(values Params) (Params, error) {
	if len(values) != len(s) {
		return nil, &ArityError{Want: len(s), Got: len(values)}
	}
	for i, k := range s {
		if values[i].Kind() != k {
			return nil, &TypeMismatchError{Position: i, Want: k, Got: values[i].Kind()}
		}
	}
	return slices.Clone(values), nil
}

// Matches reports whether values would bind without error.
func (s Signature) Matches(values Params) bool {
	_, err := s.Bind(values)
	return err == nil
}

func (s Signature) String() string {
	parts := make([]string, len(s))
	for i, k := range s {
		parts[i] = k.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
