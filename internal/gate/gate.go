// Package gate reports checkpoint tasks: regulatory inspections that block
// the work depending on them.
//
// Ordering is already enforced by the scheduler, since a gated task is an
// ordinary dependent of its checkpoint. This package only answers "what does
// this inspection wait on, and what does it hold up".
package gate

import (
	"fmt"
	"sort"

	"github.com/joshharrison/sitegraph/internal/cpm"
	"github.com/joshharrison/sitegraph/internal/graph"
)

// Checkpoint is the report for one checkpoint task.
type Checkpoint struct {
	TaskID         string
	Name           string
	EarliestStart  int
	EarliestFinish int
	Prerequisites  []string         // direct dependencies, sorted
	GatedTasks     []string         // direct dependents, sorted
	OpenTrades     []graph.Category // distinct prerequisite categories, vocabulary order
	IsCritical     bool
}

// Report lists every checkpoint in the graph, ordered by earliest start and
// then by id.
func Report(g *graph.WorkflowGraph, res *cpm.Result) []Checkpoint {
	var out []Checkpoint
	for _, id := range g.Checkpoints() {
		t := g.Tasks[id]
		ts := res.Tasks[id]
		out = append(out, Checkpoint{
			TaskID:         id,
			Name:           t.Name,
			EarliestStart:  ts.ES,
			EarliestFinish: ts.EF,
			Prerequisites:  append([]string(nil), g.RevAdj[id]...),
			GatedTasks:     append([]string(nil), g.Adj[id]...),
			OpenTrades:     trades(g, g.RevAdj[id]),
			IsCritical:     ts.IsCritical,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].EarliestStart != out[j].EarliestStart {
			return out[i].EarliestStart < out[j].EarliestStart
		}
		return out[i].TaskID < out[j].TaskID
	})
	return out
}

// GatesFor returns the checkpoints a task directly waits on.
func GatesFor(g *graph.WorkflowGraph, taskID string) []string {
	var out []string
	for _, dep := range g.RevAdj[taskID] {
		if g.Tasks[dep].IsCheckpoint {
			out = append(out, dep)
		}
	}
	return out
}

func trades(g *graph.WorkflowGraph, ids []string) []graph.Category {
	seen := make(map[graph.Category]bool)
	for _, id := range ids {
		seen[g.Tasks[id].Category] = true
	}
	var out []graph.Category
	for _, c := range graph.Categories {
		if seen[c] {
			out = append(out, c)
		}
	}
	return out
}

// GateViolationError reports a gated task scheduled to start before its
// checkpoint has finished.
type GateViolationError struct {
	CheckpointID string
	TaskID       string
	GateFinish   int
	TaskStart    int
}

func (e *GateViolationError) Error() string {
	return fmt.Sprintf("task %q starts on day %d before checkpoint %q finishes on day %d",
		e.TaskID, e.TaskStart, e.CheckpointID, e.GateFinish)
}

// Verify checks that every gated task starts after its checkpoint finishes.
// A result produced by cpm always passes; this guards schedules that were
// edited or loaded from elsewhere.
func Verify(g *graph.WorkflowGraph, res *cpm.Result) error {
	for _, id := range g.Checkpoints() {
		gate, ok := res.Tasks[id]
		if !ok {
			return fmt.Errorf("checkpoint %q missing from schedule", id)
		}
		for _, dep := range g.Adj[id] {
			ts, ok := res.Tasks[dep]
			if !ok {
				return fmt.Errorf("gated task %q missing from schedule", dep)
			}
			if ts.ES <= gate.EF {
				return &GateViolationError{CheckpointID: id, TaskID: dep, GateFinish: gate.EF, TaskStart: ts.ES}
			}
		}
	}
	return nil
}
