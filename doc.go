/*
Package arbor is a domain-agnostic hierarchical task network (HTN) planner.

A caller describes a domain once: operators (primitive tasks with a precondition
and an effect on the state) and compound tasks (goals with an ordered list of
methods, each expanding into subtasks). Then, from any state snapshot, the
Planner decomposes a goal into an ordered plan of bound actions ready to be
executed.

# Concept

The search is depth-first and left-to-right. A compound task tries its methods
in declaration order, so method order is the domain author's priority list. An
operator whose precondition fails makes the current branch fail, and the most
recent compound task moves on to its next method. The first complete plan found
is returned. Branches never see each other's state: states that hold references
implement domain.Cloner.

"No plan" is an ordinary outcome (Result.Found == false). Errors are reserved for
defects: unknown task names, parameter signature mismatches, failing callbacks,
the depth and node guards, and context cancellation.

# Usage

	d := domain.New[World]()
	walk, _ := d.RegisterOperator("walk", atOrigin, move,
		domain.MustSignature(domain.KindText, domain.KindText, domain.KindText))
	d.RegisterCompoundTask("travel",
		domain.Method[World]{Name: "by_foot", Precondition: shortTrip,
			Subtasks: []domain.TaskRef[World]{domain.OperatorRef(walk)}},
	)

	planner, err := arbor.New(d, arbor.WithMaxDepth(256))
	if err != nil {
		log.Fatal(err)
	}
	res, err := planner.PlanTask(ctx, world, "travel",
		domain.Text("me"), domain.Text("home"), domain.Text("park"))
	if err != nil {
		log.Fatal(err) // a defect in the domain, not "no plan"
	}
	if res.Found {
		for _, step := range res.Plan.Steps() {
			fmt.Println(step)
		}
	}

Domains can also be declared in YAML (see pkg/adapters/file) and served over
HTTP or MCP with the arbor CLI.
*/
package arbor
