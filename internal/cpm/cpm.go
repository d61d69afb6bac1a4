package cpm

import (
	"sort"

	"github.com/joshharrison/sitegraph/internal/graph"
)

// Analyze schedules the graph and derives its critical path and start waves.
func Analyze(g *graph.WorkflowGraph) (*Result, error) {
	result, err := Schedule(g)
	if err != nil {
		return nil, err
	}
	result.CriticalPath = CriticalPath(g, result)
	result.Waves = computeWaves(result)
	return result, nil
}

// Schedule computes earliest and latest start/finish days for every task.
// It sorts the graph topologically and then runs a single forward pass
// followed by a single backward pass. The graph is not modified.
func Schedule(g *graph.WorkflowGraph) (*Result, error) {
	order, err := topoSort(g)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Tasks:     make(map[string]*TaskSchedule, len(order)),
		TopoOrder: order,
	}
	for _, id := range order {
		result.Tasks[id] = &TaskSchedule{TaskID: id}
	}

	for _, id := range order {
		es, ef := earliest(g, id, result.Tasks)
		result.Tasks[id].ES = es
		result.Tasks[id].EF = ef
	}

	finishBackward(g, result)
	return result, nil
}

// earliest computes ES/EF for one task from its dependencies' finished
// schedules: ES = max(EF(dep)) + 1, or 1 with no dependencies.
func earliest(g *graph.WorkflowGraph, id string, done map[string]*TaskSchedule) (es, ef int) {
	es = 1
	for _, dep := range g.RevAdj[id] {
		if next := done[dep].EF + 1; next > es {
			es = next
		}
	}
	return es, es + g.Tasks[id].DurationDays - 1
}

// finishBackward sets the total duration and runs the backward pass.
func finishBackward(g *graph.WorkflowGraph, result *Result) {
	total := 0
	for _, ts := range result.Tasks {
		if ts.EF > total {
			total = ts.EF
		}
	}
	result.TotalDuration = total

	order := result.TopoOrder
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		ts := result.Tasks[id]

		lf := total
		if succs := g.Adj[id]; len(succs) > 0 {
			minLS := result.Tasks[succs[0]].LS
			for _, succ := range succs[1:] {
				if ls := result.Tasks[succ].LS; ls < minLS {
					minLS = ls
				}
			}
			lf = minLS - 1
		}
		ts.LF = lf
		ts.LS = lf - g.Tasks[id].DurationDays + 1
		ts.Slack = ts.LS - ts.ES
		ts.IsCritical = ts.Slack == 0
	}
}

// topoSort orders tasks so every dependency precedes its dependents. The
// ready set is kept sorted and the smallest ready id is always taken next,
// which makes the order a pure function of the graph.
func topoSort(g *graph.WorkflowGraph) ([]string, error) {
	pending := make(map[string]int, len(g.Tasks))
	var ready []string
	for _, id := range g.IDs() {
		pending[id] = len(g.RevAdj[id])
		if pending[id] == 0 {
			ready = append(ready, id)
		}
	}

	order := make([]string, 0, len(g.Tasks))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)

		for _, next := range g.Adj[id] {
			if pending[next]--; pending[next] == 0 {
				i := sort.SearchStrings(ready, next)
				ready = append(ready, "")
				copy(ready[i+1:], ready[i:])
				ready[i] = next
			}
		}
	}

	if len(order) < len(g.Tasks) {
		var blocked []string
		for _, id := range g.IDs() {
			if pending[id] > 0 {
				blocked = append(blocked, id)
			}
		}
		return nil, &graph.CycleError{TaskIDs: blocked}
	}
	return order, nil
}

// computeWaves groups tasks by earliest start day. Waves run in day order;
// inside a wave critical tasks come first, then ids in order.
func computeWaves(result *Result) []Wave {
	ids := make([]string, 0, len(result.Tasks))
	for id := range result.Tasks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := result.Tasks[ids[i]], result.Tasks[ids[j]]
		if a.ES != b.ES {
			return a.ES < b.ES
		}
		if a.IsCritical != b.IsCritical {
			return a.IsCritical
		}
		return ids[i] < ids[j]
	})

	var waves []Wave
	for _, id := range ids {
		ts := result.Tasks[id]
		if n := len(waves); n == 0 || waves[n-1].StartDay != ts.ES {
			waves = append(waves, Wave{Index: n, StartDay: ts.ES})
		}
		w := &waves[len(waves)-1]
		w.TaskIDs = append(w.TaskIDs, id)
		w.IsCritical = w.IsCritical || ts.IsCritical
		ts.Wave = w.Index
	}
	return waves
}
