package graph

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidGraph matches every error Build can return.
var ErrInvalidGraph = errors.New("invalid workflow graph")

// ValidationError reports a malformed task field.
type ValidationError struct {
	TaskID string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.TaskID == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("task %q: invalid %s: %s", e.TaskID, e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidGraph }

// UnknownDependencyError reports a dependency on a task that is not in the graph.
type UnknownDependencyError struct {
	TaskID              string
	MissingDependencyID string
}

func (e *UnknownDependencyError) Error() string {
	return fmt.Sprintf("task %q depends on unknown task %q", e.TaskID, e.MissingDependencyID)
}

func (e *UnknownDependencyError) Is(target error) bool { return target == ErrInvalidGraph }

// CycleError reports a dependency cycle. TaskIDs is closed: the first and
// last entries are the same task.
type CycleError struct {
	TaskIDs []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.TaskIDs, " -> "))
}

func (e *CycleError) Is(target error) bool { return target == ErrInvalidGraph }
