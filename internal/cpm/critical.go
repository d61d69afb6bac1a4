package cpm

import "github.com/joshharrison/sitegraph/internal/graph"

// CriticalPath returns the chain of tasks that fixes the project duration,
// in chronological order. The sum of their durations equals
// result.TotalDuration.
//
// The walk starts at a task finishing on the last project day and steps
// backward to the dependency that finishes the day before the current task
// starts. Ties go to the lexicographically smallest id.
func CriticalPath(g *graph.WorkflowGraph, result *Result) []string {
	end := lastTask(result)
	if end == "" {
		return nil
	}

	path := []string{end}
	for cur := end; ; {
		next := tightDependency(g, result, cur)
		if next == "" {
			break
		}
		path = append(path, next)
		cur = next
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// lastTask picks the task the backward walk starts from. Among tasks
// finishing on the last day, the latest starter wins so a trailing
// milestone stays on the path.
func lastTask(result *Result) string {
	best := ""
	for _, id := range result.TopoOrder {
		ts := result.Tasks[id]
		if ts.EF != result.TotalDuration {
			continue
		}
		if best == "" {
			best = id
			continue
		}
		b := result.Tasks[best]
		if ts.ES > b.ES || (ts.ES == b.ES && id < best) {
			best = id
		}
	}
	return best
}

// tightDependency returns the dependency of id with zero slack relative to
// it, or "" when id has no dependencies.
func tightDependency(g *graph.WorkflowGraph, result *Result, id string) string {
	want := result.Tasks[id].ES - 1
	// RevAdj is sorted, so the first match is the smallest id.
	for _, dep := range g.RevAdj[id] {
		if result.Tasks[dep].EF == want {
			return dep
		}
	}
	return ""
}
