// Package cost rolls up task cost components under a regional pricing
// multiplier.
package cost

import (
	"github.com/joshharrison/sitegraph/internal/graph"
)

// Estimate is a regionally adjusted cost breakdown.
type Estimate struct {
	Labor     float64 `json:"labor"`
	Materials float64 `json:"materials"`
	Equipment float64 `json:"equipment"`
	Permits   float64 `json:"permits"`
	Total     float64 `json:"total"`
}

func (e *Estimate) add(o Estimate) {
	e.Labor += o.Labor
	e.Materials += o.Materials
	e.Equipment += o.Equipment
	e.Permits += o.Permits
	e.Total += o.Total
}

// Rollup is the per-task and aggregate cost of one graph.
type Rollup struct {
	RegionID   string
	PerTask    map[string]Estimate
	ByCategory map[graph.Category]Estimate
	Total      Estimate
}

// Adjust applies a region's multipliers to one task's base costs.
// Equipment passes through unscaled.
func Adjust(c graph.CostComponents, r Region) Estimate {
	e := Estimate{
		Labor:     c.Labor * r.LaborMultiplier,
		Materials: c.Materials * r.MaterialMultiplier,
		Equipment: c.Equipment,
		Permits:   c.Permits * r.PermitMultiplier,
	}
	e.Total = e.Labor + e.Materials + e.Equipment + e.Permits
	return e
}

// Aggregate prices every task in the graph for the named region. It fails
// with UnknownRegionError if the catalog has no such region; there is no
// implicit fallback.
func Aggregate(g *graph.WorkflowGraph, catalog *Catalog, regionID string) (*Rollup, error) {
	region, err := catalog.Lookup(regionID)
	if err != nil {
		return nil, err
	}

	rollup := &Rollup{
		RegionID:   region.ID,
		PerTask:    make(map[string]Estimate, g.TaskCount()),
		ByCategory: make(map[graph.Category]Estimate),
	}
	// sorted ids keep float summation order stable
	for _, id := range g.IDs() {
		t := g.Tasks[id]
		est := Adjust(t.Costs, region)
		rollup.PerTask[id] = est

		cat := rollup.ByCategory[t.Category]
		cat.add(est)
		rollup.ByCategory[t.Category] = cat

		rollup.Total.add(est)
	}
	return rollup, nil
}
