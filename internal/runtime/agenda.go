package runtime

import "github.com/aretw0/arbor/pkg/domain"

// agenda is an immutable singly linked list of pending tasks. Prepending a
// method's subtasks allocates new cells only, so sibling branches share the
// tail without ever observing each other's additions.
type agenda[S any] struct {
	ref    domain.TaskRef[S]
	params domain.Params
	parent string
	next   *agenda[S]
}

func (a *agenda[S]) push(ref domain.TaskRef[S], params domain.Params, parent string) *agenda[S] {
	return &agenda[S]{ref: ref, params: params, parent: parent, next: a}
}

func (a *agenda[S]) size() int {
	n := 0
	for c := a; c != nil; c = c.next {
		n++
	}
	return n
}

// trail is the plan found so far, stored newest first.
type trail[S any] struct {
	action domain.Action[S]
	prev   *trail[S]
	size   int
}

func (t *trail[S]) append(a domain.Action[S]) *trail[S] {
	size := 1
	if t != nil {
		size = t.size + 1
	}
	return &trail[S]{action: a, prev: t, size: size}
}

func (t *trail[S]) plan() domain.Plan[S] {
	if t == nil {
		return domain.Plan[S]{}
	}
	out := make(domain.Plan[S], t.size)
	for c := t; c != nil; c = c.prev {
		out[c.size-1] = c.action
	}
	return out
}
