package planner

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/joshharrison/sitegraph/internal/cost"
	"github.com/joshharrison/sitegraph/internal/cpm"
	"github.com/joshharrison/sitegraph/internal/gate"
	"github.com/joshharrison/sitegraph/internal/graph"
	"github.com/joshharrison/sitegraph/internal/log"
	"github.com/joshharrison/sitegraph/internal/parallel"
)

// Generate schedules a validated graph and assembles the full plan:
// timeline, critical path, checkpoint gates, parallel groups and costs.
// Any error is terminal; no partial plan is returned.
func Generate(ctx context.Context, g *graph.WorkflowGraph, config PlanConfig) (*Plan, error) {
	if config.Catalog == nil {
		return nil, fmt.Errorf("generate plan: no region catalog")
	}
	logger := config.Logger
	if logger == nil {
		logger = log.Discard()
	}

	// Costs do not depend on the schedule; an unknown region fails fast.
	rollup, err := cost.Aggregate(g, config.Catalog, config.RegionID)
	if err != nil {
		return nil, fmt.Errorf("aggregate costs: %w", err)
	}

	result, err := schedule(ctx, g, config)
	if err != nil {
		return nil, fmt.Errorf("schedule: %w", err)
	}
	if err := gate.Verify(g, result); err != nil {
		return nil, fmt.Errorf("verify checkpoints: %w", err)
	}

	plan := &Plan{
		ID:                uuid.NewString(),
		CreatedAt:         time.Now().UTC(),
		RegionID:          rollup.RegionID,
		TotalDurationDays: result.TotalDuration,
		CriticalPath:      append([]string{}, result.CriticalPath...),
		Tasks:             plannedTasks(g, result),
		ParallelGroups:    []ParallelGroup{},
		Checkpoints:       []CheckpointGate{},
		Waves:             []StartWave{},
		Costs:             costs(rollup),
	}

	for _, grp := range parallel.Analyze(g, result) {
		plan.ParallelGroups = append(plan.ParallelGroups, ParallelGroup(grp))
	}
	for _, cp := range gate.Report(g, result) {
		plan.Checkpoints = append(plan.Checkpoints, checkpointGate(cp))
	}
	plan.index = make(map[string]int, len(plan.Tasks))
	for i, t := range plan.Tasks {
		plan.index[t.ID] = i
	}
	for _, w := range result.Waves {
		plan.Waves = append(plan.Waves, StartWave{
			Index:      w.Index,
			StartDay:   w.StartDay,
			TaskIDs:    w.TaskIDs,
			IsCritical: w.IsCritical,
		})
	}

	logger.Info("plan generated",
		"plan_id", plan.ID,
		"tasks", g.TaskCount(),
		"duration_days", plan.TotalDurationDays,
		"critical_tasks", len(plan.CriticalPath),
		"parallel_groups", len(plan.ParallelGroups),
		"checkpoints", len(plan.Checkpoints),
		"region", plan.RegionID,
		"total_cost", rollup.Total.Total,
	)
	return plan, nil
}

// schedule runs the sequential pass for ordinary graphs and the layered
// parallel pass for large ones. Both produce the same result.
func schedule(ctx context.Context, g *graph.WorkflowGraph, config PlanConfig) (*cpm.Result, error) {
	logger := config.Logger
	if logger == nil {
		logger = log.Discard()
	}

	if config.ParallelThreshold > 0 && g.TaskCount() >= config.ParallelThreshold {
		logger.Debug("using layered forward pass", "tasks", g.TaskCount(), "workers", config.ParallelWorkers)
		return cpm.AnalyzeParallel(ctx, g, config.ParallelWorkers)
	}
	return cpm.Analyze(g)
}

func plannedTasks(g *graph.WorkflowGraph, result *cpm.Result) []PlannedTask {
	out := make([]PlannedTask, 0, g.TaskCount())
	for _, id := range g.IDs() {
		t := g.Tasks[id]
		ts := result.Tasks[id]
		out = append(out, PlannedTask{
			ID:             id,
			Name:           t.Name,
			Category:       string(t.Category),
			DurationDays:   t.DurationDays,
			EarliestStart:  ts.ES,
			EarliestFinish: ts.EF,
			LatestStart:    ts.LS,
			LatestFinish:   ts.LF,
			Slack:          ts.Slack,
			IsCritical:     ts.IsCritical,
			IsCheckpoint:   t.IsCheckpoint,
			Wave:           ts.Wave,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EarliestStart < out[j].EarliestStart
	})
	return out
}

func checkpointGate(cp gate.Checkpoint) CheckpointGate {
	out := CheckpointGate{
		ID:             cp.TaskID,
		Name:           cp.Name,
		EarliestStart:  cp.EarliestStart,
		EarliestFinish: cp.EarliestFinish,
		Prerequisites:  append([]string{}, cp.Prerequisites...),
		GatedTasks:     append([]string{}, cp.GatedTasks...),
		IsCritical:     cp.IsCritical,
	}
	for _, c := range cp.OpenTrades {
		out.OpenTrades = append(out.OpenTrades, string(c))
	}
	return out
}

func costs(r *cost.Rollup) Costs {
	out := Costs{
		PerTask:    r.PerTask,
		ByCategory: make(map[string]cost.Estimate, len(r.ByCategory)),
		Total:      r.Total,
	}
	for c, e := range r.ByCategory {
		out.ByCategory[string(c)] = e
	}
	return out
}

// Task returns the planned task with the given id. It never writes to the
// plan, so concurrent readers are safe. Plans built outside Generate (for
// example decoded from JSON) have no index and are scanned instead.
func (p *Plan) Task(id string) (PlannedTask, bool) {
	if p.index == nil {
		for _, t := range p.Tasks {
			if t.ID == id {
				return t, true
			}
		}
		return PlannedTask{}, false
	}
	i, ok := p.index[id]
	if !ok {
		return PlannedTask{}, false
	}
	return p.Tasks[i], true
}
