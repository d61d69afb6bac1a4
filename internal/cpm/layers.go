package cpm

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/joshharrison/sitegraph/internal/graph"
)

// AnalyzeParallel is Analyze on top of ScheduleParallel.
func AnalyzeParallel(ctx context.Context, g *graph.WorkflowGraph, workers int) (*Result, error) {
	result, err := ScheduleParallel(ctx, g, workers)
	if err != nil {
		return nil, err
	}
	result.CriticalPath = CriticalPath(g, result)
	result.Waves = computeWaves(result)
	return result, nil
}

// ScheduleParallel is Schedule with the forward pass fanned out over the
// graph's topological layers. A layer only reads schedules of earlier layers,
// and its results are buffered and merged after the whole layer finishes, so
// the output is identical to Schedule. workers <= 0 means no limit.
func ScheduleParallel(ctx context.Context, g *graph.WorkflowGraph, workers int) (*Result, error) {
	order, err := topoSort(g)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Tasks:     make(map[string]*TaskSchedule, len(order)),
		TopoOrder: order,
	}

	for _, layer := range Layers(g, order) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		buf := make([]TaskSchedule, len(layer))
		eg, _ := errgroup.WithContext(ctx)
		if workers > 0 {
			eg.SetLimit(workers)
		}
		for i, id := range layer {
			i, id := i, id
			eg.Go(func() error {
				es, ef := earliest(g, id, result.Tasks)
				buf[i] = TaskSchedule{TaskID: id, ES: es, EF: ef}
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return nil, err
		}

		for i := range buf {
			ts := buf[i]
			result.Tasks[ts.TaskID] = &ts
		}
	}

	finishBackward(g, result)
	return result, nil
}

// Layers splits a topological order into dependency layers: layer 0 holds
// tasks without dependencies, layer n holds tasks whose deepest dependency
// sits in layer n-1. Ids keep their topological order within a layer.
func Layers(g *graph.WorkflowGraph, order []string) [][]string {
	depth := make(map[string]int, len(order))
	maxDepth := -1
	for _, id := range order {
		d := 0
		for _, dep := range g.RevAdj[id] {
			if depth[dep]+1 > d {
				d = depth[dep] + 1
			}
		}
		depth[id] = d
		if d > maxDepth {
			maxDepth = d
		}
	}

	layers := make([][]string, maxDepth+1)
	for _, id := range order {
		layers[depth[id]] = append(layers[depth[id]], id)
	}
	return layers
}
