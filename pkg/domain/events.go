package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventExpand    EventType = "task_expand"
	EventMethod    EventType = "method_check"
	EventOperator  EventType = "operator_apply"
	EventBacktrack EventType = "backtrack"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Goal      string    `json:"goal"`
	Depth     int       `json:"depth"`
}

// ExpandEvent is emitted when a compound task is about to be decomposed.
type ExpandEvent struct {
	EventBase
	Task    string `json:"task"`
	Params  Params `json:"params,omitempty"`
	Methods int    `json:"methods"`
}

// MethodEvent is emitted after a method's precondition is evaluated.
type MethodEvent struct {
	EventBase
	Task       string `json:"task"`
	Method     string `json:"method"`
	Applicable bool   `json:"applicable"`
}

// OperatorEvent is emitted after an operator is tried.
type OperatorEvent struct {
	EventBase
	Operator string `json:"operator"`
	Params   Params `json:"params,omitempty"`
	Applied  bool   `json:"applied"`
}

// BacktrackEvent is emitted when an applicable method's subtree failed to produce a plan.
type BacktrackEvent struct {
	EventBase
	Task   string `json:"task"`
	Method string `json:"method"`
}

// LifecycleHooks defines callbacks for planner observability.
// Hooks run synchronously on the planning goroutine.
type LifecycleHooks struct {
	OnExpand    func(context.Context, *ExpandEvent)
	OnMethod    func(context.Context, *MethodEvent)
	OnOperator  func(context.Context, *OperatorEvent)
	OnBacktrack func(context.Context, *BacktrackEvent)
}

// Empty reports whether no hook is set.
func (h LifecycleHooks) Empty() bool {
	return h.OnExpand == nil && h.OnMethod == nil && h.OnOperator == nil && h.OnBacktrack == nil
}
