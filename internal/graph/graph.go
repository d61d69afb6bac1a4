package graph

import (
	"fmt"
	"sort"
)

// Build validates raw task records and constructs a WorkflowGraph.
//
// Checks run in a fixed order and the first failure wins: task ids, then
// dependency resolution, then acyclicity, then durations, then categories
// and cost components.
func Build(raw []RawTask) (*WorkflowGraph, error) {
	g := &WorkflowGraph{
		Tasks:  make(map[string]*Task, len(raw)),
		Adj:    make(map[string][]string),
		RevAdj: make(map[string][]string),
	}

	for i := range raw {
		rt := &raw[i]
		if rt.ID == "" {
			return nil, &ValidationError{Field: "id", Reason: fmt.Sprintf("task at index %d has an empty id", i)}
		}
		if _, dup := g.Tasks[rt.ID]; dup {
			return nil, &ValidationError{TaskID: rt.ID, Field: "id", Reason: "duplicate task id"}
		}
		category := Category(rt.Category)
		if category == "" {
			category = CategoryOther
		}
		g.Tasks[rt.ID] = &Task{
			ID:           rt.ID,
			Name:         rt.Name,
			DurationDays: rt.DurationDays,
			Dependencies: dedupe(rt.Dependencies),
			Category:     category,
			IsCheckpoint: rt.IsCheckpoint,
			Costs:        rt.CostComponents,
		}
		g.order = append(g.order, rt.ID)
	}

	for i := range raw {
		for _, dep := range raw[i].Dependencies {
			if _, ok := g.Tasks[dep]; !ok {
				return nil, &UnknownDependencyError{TaskID: raw[i].ID, MissingDependencyID: dep}
			}
		}
	}

	for _, id := range g.order {
		for _, dep := range g.Tasks[id].Dependencies {
			g.Adj[dep] = append(g.Adj[dep], id)
			g.RevAdj[id] = append(g.RevAdj[id], dep)
		}
	}
	for k := range g.Adj {
		sort.Strings(g.Adj[k])
	}

	if cycle := g.DetectCycle(); cycle != nil {
		return nil, &CycleError{TaskIDs: cycle}
	}

	for _, id := range g.order {
		if t := g.Tasks[id]; t.DurationDays < 0 {
			return nil, &ValidationError{TaskID: id, Field: "durationDays", Reason: fmt.Sprintf("must be >= 0, got %d", t.DurationDays)}
		}
	}

	for _, id := range g.order {
		if err := validateTask(g.Tasks[id]); err != nil {
			return nil, err
		}
	}

	for _, id := range g.IDs() {
		if len(g.RevAdj[id]) == 0 {
			g.Roots = append(g.Roots, id)
		}
		if len(g.Adj[id]) == 0 {
			g.Leaves = append(g.Leaves, id)
		}
	}

	return g, nil
}

func validateTask(t *Task) error {
	if !t.Category.Valid() {
		return &ValidationError{TaskID: t.ID, Field: "category", Reason: fmt.Sprintf("unknown category %q", t.Category)}
	}
	components := []struct {
		name  string
		value float64
	}{
		{"labor", t.Costs.Labor},
		{"materials", t.Costs.Materials},
		{"equipment", t.Costs.Equipment},
		{"permits", t.Costs.Permits},
	}
	for _, c := range components {
		// written this way so NaN fails too
		if !(c.value >= 0) {
			return &ValidationError{TaskID: t.ID, Field: "costComponents." + c.name, Reason: fmt.Sprintf("must be >= 0, got %v", c.value)}
		}
	}
	return nil
}

func dedupe(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// DetectCycle returns a closed cycle path if one exists, or nil if the graph
// is acyclic. Uses DFS with white/gray/black coloring.
func (g *WorkflowGraph) DetectCycle() []string {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(g.Tasks))
	parent := make(map[string]string)

	var visit func(node string) []string
	visit = func(node string) []string {
		color[node] = gray
		for _, next := range g.Adj[node] {
			switch color[next] {
			case gray:
				// walk parents back from node to next, then close the loop
				path := []string{next}
				for cur := node; cur != next; cur = parent[cur] {
					path = append(path, cur)
				}
				path = append(path, next)
				for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
					path[i], path[j] = path[j], path[i]
				}
				return path
			case white:
				parent[next] = node
				if cycle := visit(next); cycle != nil {
					return cycle
				}
			}
		}
		color[node] = black
		return nil
	}

	for _, id := range g.IDs() {
		if color[id] == white {
			if cycle := visit(id); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// IDs returns every task id in lexicographic order.
func (g *WorkflowGraph) IDs() []string {
	ids := make([]string, 0, len(g.Tasks))
	for id := range g.Tasks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// TaskCount returns the number of tasks in the graph.
func (g *WorkflowGraph) TaskCount() int {
	return len(g.Tasks)
}

// Checkpoints returns the ids of checkpoint tasks in lexicographic order.
func (g *WorkflowGraph) Checkpoints() []string {
	var ids []string
	for _, id := range g.IDs() {
		if g.Tasks[id].IsCheckpoint {
			ids = append(ids, id)
		}
	}
	return ids
}

// Raw converts the graph back into input records, in original input order.
func (g *WorkflowGraph) Raw() []RawTask {
	out := make([]RawTask, 0, len(g.order))
	for _, id := range g.order {
		t := g.Tasks[id]
		out = append(out, RawTask{
			ID:             t.ID,
			Name:           t.Name,
			DurationDays:   t.DurationDays,
			Dependencies:   append([]string(nil), t.Dependencies...),
			Category:       string(t.Category),
			IsCheckpoint:   t.IsCheckpoint,
			CostComponents: t.Costs,
		})
	}
	return out
}

// Filter returns a new graph containing only tasks matching pred.
// Dependencies through removed tasks are rewired to their nearest kept
// ancestors so the remaining ordering is preserved.
func (g *WorkflowGraph) Filter(pred func(*Task) bool) (*WorkflowGraph, error) {
	keep := make(map[string]bool, len(g.Tasks))
	for id, t := range g.Tasks {
		keep[id] = pred(t)
	}

	// Memoized entries are deduplicated, so each one holds at most one entry
	// per kept task no matter how densely the removed tasks interconnect.
	memo := make(map[string][]string)
	var keptAncestors func(id string) []string
	keptAncestors = func(id string) []string {
		if got, ok := memo[id]; ok {
			return got
		}
		var out []string
		for _, dep := range g.RevAdj[id] {
			if keep[dep] {
				out = append(out, dep)
			} else {
				out = append(out, keptAncestors(dep)...)
			}
		}
		out = dedupe(out)
		memo[id] = out
		return out
	}

	var filtered []RawTask
	for _, rt := range g.Raw() {
		if !keep[rt.ID] {
			continue
		}
		rt.Dependencies = keptAncestors(rt.ID)
		filtered = append(filtered, rt)
	}
	return Build(filtered)
}
