/*
Package dsl provides a Go DSL for programmatically constructing arbor domains.

It lets developers declare operators and compound tasks with a type-safe, fluent
builder instead of registering each piece by hand or loading YAML files. Subtasks
are referenced by name and resolved when planning, so tasks may refer to each
other (or to themselves) in any order.

Example usage:

	b := dsl.New[World]("travel")

	b.Operator("walk").
		Params(domain.KindText, domain.KindText, domain.KindText).
		If(atOrigin).
		Then(moveAgent)

	b.Task("travel").
		Method("by_foot").If(shortTrip).Do("walk").
		Method("by_taxi").If(atOrigin).Do("call_taxi", "ride_taxi", "pay_driver")

	d, err := b.Build()
*/
package dsl
