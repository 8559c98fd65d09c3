package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownTask is returned when a task name resolves to neither an operator nor a compound task.
	ErrUnknownTask = errors.New("unknown task")

	// ErrSignature is returned when arguments do not match a declared signature.
	ErrSignature = errors.New("parameter signature mismatch")

	// ErrCapacity is returned when a signature declares more than MaxParams parameters.
	ErrCapacity = errors.New("too many parameters")

	// ErrDepthExceeded is returned when decomposition goes deeper than the configured limit.
	ErrDepthExceeded = errors.New("decomposition depth exceeded")

	// ErrBudgetExceeded is returned when the search visits more nodes than allowed.
	ErrBudgetExceeded = errors.New("search budget exceeded")

	// ErrCancelled is returned when the caller's context ends during planning.
	ErrCancelled = errors.New("planning cancelled")

	// ErrDuplicateName is returned when registering a name that is already taken.
	ErrDuplicateName = errors.New("duplicate name")

	// ErrEmptyName is returned when registering an operator or task without a name.
	ErrEmptyName = errors.New("name must not be empty")

	// ErrSealed is returned when registering into a domain that is already in use by a planner.
	ErrSealed = errors.New("domain is sealed")

	// ErrPreconditionFailed is returned by Plan.Replay when a step is not applicable.
	ErrPreconditionFailed = errors.New("precondition failed")

	// ErrPlanNotFound is returned when a plan record cannot be found in the store.
	ErrPlanNotFound = errors.New("plan not found")
)

// UnknownTaskError names the reference that failed to resolve.
type UnknownTaskError struct {
	Name   string
	Parent string // Task whose method referenced Name, empty for the goal
}

func (e *UnknownTaskError) Error() string {
	if e.Parent != "" {
		return fmt.Sprintf("unknown task %q (referenced by %q)", e.Name, e.Parent)
	}
	return fmt.Sprintf("unknown task %q", e.Name)
}

func (e *UnknownTaskError) Unwrap() error { return ErrUnknownTask }

// ArityError reports a parameter count mismatch.
type ArityError struct {
	Want int
	Got  int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("expected %d parameters, got %d", e.Want, e.Got)
}

func (e *ArityError) Unwrap() error { return ErrSignature }

// TypeMismatchError reports the first position whose tag differs.
type TypeMismatchError struct {
	Position int
	Want     Kind
	Got      Kind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("parameter %d: expected %s, got %s", e.Position, e.Want, e.Got)
}

func (e *TypeMismatchError) Unwrap() error { return ErrSignature }

// SignatureError ties a binding failure to the operator or method that declared the signature.
type SignatureError struct {
	Subject string // "operator", "task" or "method"
	Name    string
	Err     error
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Subject, e.Name, e.Err)
}

func (e *SignatureError) Unwrap() error { return e.Err }

// CapacityError reports a signature above MaxParams.
type CapacityError struct {
	Max int
	Got int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("signature declares %d parameters, at most %d allowed", e.Got, e.Max)
}

func (e *CapacityError) Unwrap() error { return ErrCapacity }

// DepthExceededError carries the limit and the task being expanded when it was hit.
type DepthExceededError struct {
	Limit int
	Task  string
}

func (e *DepthExceededError) Error() string {
	return fmt.Sprintf("decomposition depth exceeded limit %d at task %q", e.Limit, e.Task)
}

func (e *DepthExceededError) Unwrap() error { return ErrDepthExceeded }

// BudgetExceededError carries the node budget that was exhausted.
type BudgetExceededError struct {
	Limit int
}

func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("search budget of %d nodes exceeded", e.Limit)
}

func (e *BudgetExceededError) Unwrap() error { return ErrBudgetExceeded }

// CancelledError wraps the context error that stopped the search.
// It matches both ErrCancelled and the context cause.
type CancelledError struct {
	Cause error
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("planning cancelled: %v", e.Cause)
}

func (e *CancelledError) Unwrap() []error { return []error{ErrCancelled, e.Cause} }

// DuplicateNameError reports a name registered twice.
type DuplicateNameError struct {
	Name     string
	Existing string // "operator" or "task"
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("name %q already registered as %s", e.Name, e.Existing)
}

func (e *DuplicateNameError) Unwrap() error { return ErrDuplicateName }

// Callback phases reported by CallbackError.
const (
	PhasePrecondition = "precondition"
	PhaseEffect       = "effect"
	PhaseArgs         = "args"
)

// CallbackError wraps a failure raised by user-supplied code.
// It aborts planning rather than triggering backtracking.
type CallbackError struct {
	Name  string
	Phase string
	Err   error
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("%s of %q failed: %v", e.Phase, e.Name, e.Err)
}

func (e *CallbackError) Unwrap() error { return e.Err }
