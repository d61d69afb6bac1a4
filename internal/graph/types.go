package graph

import "sync"

// Category tags a task for reporting and cost defaults. It plays no part in
// scheduling.
type Category string

const (
	CategoryDemolition Category = "demolition"
	CategorySitePrep   Category = "site_prep"
	CategoryFraming    Category = "framing"
	CategoryElectrical Category = "electrical"
	CategoryPlumbing   Category = "plumbing"
	CategoryHVAC       Category = "hvac"
	CategoryInsulation Category = "insulation"
	CategoryInspection Category = "inspection"
	CategoryDrywall    Category = "drywall"
	CategoryFinishing  Category = "finishing"
	CategoryFlooring   Category = "flooring"
	CategoryCabinetry  Category = "cabinetry"
	CategoryPainting   Category = "painting"
	CategoryCleanup    Category = "cleanup"
	CategoryOther      Category = "other"
)

// Categories lists the fixed category vocabulary in display order.
var Categories = []Category{
	CategoryDemolition,
	CategorySitePrep,
	CategoryFraming,
	CategoryElectrical,
	CategoryPlumbing,
	CategoryHVAC,
	CategoryInsulation,
	CategoryInspection,
	CategoryDrywall,
	CategoryFinishing,
	CategoryFlooring,
	CategoryCabinetry,
	CategoryPainting,
	CategoryCleanup,
	CategoryOther,
}

// Valid reports whether c is part of the vocabulary.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// CostComponents are the four base-region cost fields of a task.
type CostComponents struct {
	Labor     float64 `json:"labor"`
	Materials float64 `json:"materials"`
	Equipment float64 `json:"equipment"`
	Permits   float64 `json:"permits"`
}

// RawTask is a task record as supplied by the planning collaborator.
type RawTask struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	DurationDays   int            `json:"durationDays"`
	Dependencies   []string       `json:"dependencies"`
	Category       string         `json:"category"`
	IsCheckpoint   bool           `json:"isCheckpoint"`
	CostComponents CostComponents `json:"costComponents"`
}

// Task is a validated unit of schedulable work.
type Task struct {
	ID           string
	Name         string
	DurationDays int
	Dependencies []string // sorted, deduplicated
	Category     Category
	IsCheckpoint bool
	Costs        CostComponents
}

// IsMilestone reports whether the task takes no days.
func (t *Task) IsMilestone() bool {
	return t.DurationDays == 0
}

// WorkflowGraph owns every task of one project. It is never mutated after
// Build returns.
type WorkflowGraph struct {
	Tasks  map[string]*Task
	Adj    map[string][]string // task -> tasks that depend on it
	RevAdj map[string][]string // task -> tasks it depends on
	Roots  []string            // tasks with no dependencies
	Leaves []string            // tasks nothing depends on

	order []string // input order, for deterministic error reporting

	reachOnce sync.Once
	ancestors map[string]map[string]bool
}
