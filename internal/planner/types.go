package planner

import (
	"log/slog"
	"time"

	"github.com/joshharrison/sitegraph/internal/cost"
)

// Plan is the complete schedule and estimate for one project. Its JSON form
// is the output document handed to presentation and export.
type Plan struct {
	ID                string           `json:"planId"`
	CreatedAt         time.Time        `json:"createdAt"`
	RegionID          string           `json:"regionId"`
	Tasks             []PlannedTask    `json:"tasks"`
	TotalDurationDays int              `json:"totalDurationDays"`
	CriticalPath      []string         `json:"criticalPath"`
	ParallelGroups    []ParallelGroup  `json:"parallelGroups"`
	Checkpoints       []CheckpointGate `json:"checkpoints"`
	Waves             []StartWave      `json:"waves"`
	Costs             Costs            `json:"costs"`

	index map[string]int
}

// PlannedTask is one task's computed schedule.
type PlannedTask struct {
	ID             string `json:"id"`
	Name           string `json:"name,omitempty"`
	Category       string `json:"category"`
	DurationDays   int    `json:"durationDays"`
	EarliestStart  int    `json:"earliestStart"`
	EarliestFinish int    `json:"earliestFinish"`
	LatestStart    int    `json:"latestStart"`
	LatestFinish   int    `json:"latestFinish"`
	Slack          int    `json:"slack"`
	IsCritical     bool   `json:"critical"`
	IsCheckpoint   bool   `json:"isCheckpoint,omitempty"`
	Wave           int    `json:"wave"`
}

// ParallelGroup is a set of tasks that may proceed concurrently.
type ParallelGroup struct {
	TaskIDs         []string `json:"taskIds"`
	OverlapStartDay int      `json:"overlapStartDay"`
	OverlapEndDay   int      `json:"overlapEndDay"`
}

// CheckpointGate reports what an inspection waits on and what it blocks.
type CheckpointGate struct {
	ID             string   `json:"id"`
	Name           string   `json:"name,omitempty"`
	EarliestStart  int      `json:"earliestStart"`
	EarliestFinish int      `json:"earliestFinish"`
	Prerequisites  []string `json:"prerequisites"`
	GatedTasks     []string `json:"gatedTasks"`
	OpenTrades     []string `json:"openTrades,omitempty"`
	IsCritical     bool     `json:"critical"`
}

// StartWave groups tasks that start on the same day.
type StartWave struct {
	Index      int      `json:"index"`
	StartDay   int      `json:"startDay"`
	TaskIDs    []string `json:"taskIds"`
	IsCritical bool     `json:"critical"`
}

// Costs holds per-task and aggregate estimates.
type Costs struct {
	PerTask    map[string]cost.Estimate `json:"perTask"`
	ByCategory map[string]cost.Estimate `json:"byCategory,omitempty"`
	Total      cost.Estimate            `json:"total"`
}

// PlanConfig controls plan generation.
type PlanConfig struct {
	Catalog  *cost.Catalog
	RegionID string
	// ParallelThreshold is the task count from which the layered forward
	// pass is used; 0 disables it.
	ParallelThreshold int
	ParallelWorkers   int
	Logger            *slog.Logger
}
