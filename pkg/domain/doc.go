/*
Package domain contains the core model of the arbor planner.

It defines the building blocks of a hierarchical task network: typed parameter
values, operators (primitive, state-changing tasks), methods and compound tasks
(ways of decomposing a goal), and the Domain registry that resolves task names.
It also defines the outputs of planning (Action, Plan, Result) and the error
kinds the planner reports. The package is pure and free of I/O.

# Key Entities

  - Value / Params: a tagged union of int, float and text, and positional lists of them.
  - Signature: the ordered kinds a task accepts, bounded by MaxParams.
  - Operator: precondition plus effect over an opaque state type S.
  - Method / CompoundTask: ordered alternatives, each expanding into subtasks.
  - TaskRef: an agenda entry referencing an operator, a compound task, or a name.
  - Plan: the ordered, bound actions returned by the planner.

State is a type parameter. States that hold maps or slices should implement
Cloner so the planner can keep branches isolated from one another.
*/
package domain
