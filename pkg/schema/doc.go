// Package schema describes named, typed parameter lists and converts loosely
// typed input into planner values.
//
// Parameters are declared as "name:type" strings, where type is one of int,
// float or text. A bare name is text:
//
//	s, err := schema.Parse([]string{"who:text", "from", "to", "budget:int"})
//
//	params, err := s.Coerce([]any{"me", "home", "park", 20})     // decoded JSON/YAML
//	params, err := s.ParseArgs([]string{"me", "home", "park", "20"}) // CLI flags
//
// Conversion failures for every parameter are reported together as an
// *AggregateError of *ValidationError values. The same AggregateError is used
// by the file adapter to report every broken declaration of a domain file.
//
// This package has no dependencies beyond the standard library and
// pkg/domain.
package schema
