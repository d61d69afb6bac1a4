package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshharrison/sitegraph/internal/cost"
	"github.com/joshharrison/sitegraph/internal/graph"
)

const threeTasks = `{
  "regionId": "calgary",
  "tasks": [
    {"id": "A", "name": "Demo", "durationDays": 2, "category": "demolition",
     "costComponents": {"labor": 1000, "materials": 0, "equipment": 300, "permits": 50}},
    {"id": "B", "name": "Framing", "durationDays": 3, "dependencies": ["A"], "category": "framing",
     "costComponents": {"labor": 2000, "materials": 1500, "equipment": 0, "permits": 0}},
    {"id": "C", "name": "Electrical rough-in", "durationDays": 1, "dependencies": ["A"], "category": "electrical",
     "costComponents": {"labor": 500, "materials": 200, "equipment": 0, "permits": 100}}
  ]
}`

const regionsYAML = `regions:
  - id: calgary
    name: Calgary
    labor_multiplier: 1.2
    material_multiplier: 1.1
    permit_multiplier: 1.5
`

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append(args, "--no-color"))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestSchedule_JSON(t *testing.T) {
	regions := writeTemp(t, "regions.yaml", regionsYAML)

	out, err := execute(t, threeTasks, "schedule", "--json", "--regions", regions)
	require.NoError(t, err)

	var doc struct {
		RegionID          string   `json:"regionId"`
		TotalDurationDays int      `json:"totalDurationDays"`
		CriticalPath      []string `json:"criticalPath"`
		ParallelGroups    []struct {
			TaskIDs         []string `json:"taskIds"`
			OverlapStartDay int      `json:"overlapStartDay"`
			OverlapEndDay   int      `json:"overlapEndDay"`
		} `json:"parallelGroups"`
		Costs struct {
			PerTask map[string]cost.Estimate `json:"perTask"`
		} `json:"costs"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	assert.Equal(t, "calgary", doc.RegionID)
	assert.Equal(t, 5, doc.TotalDurationDays)
	assert.Equal(t, []string{"A", "B"}, doc.CriticalPath)
	require.Len(t, doc.ParallelGroups, 1)
	assert.Equal(t, []string{"B", "C"}, doc.ParallelGroups[0].TaskIDs)
	assert.Equal(t, 3, doc.ParallelGroups[0].OverlapStartDay)
	assert.Equal(t, 3, doc.ParallelGroups[0].OverlapEndDay)
	assert.InDelta(t, 1000*1.2+300+50*1.5, doc.Costs.PerTask["A"].Total, 1e-9)
}

func TestSchedule_TextAndOutputFile(t *testing.T) {
	input := writeTemp(t, "project.json", threeTasks)
	saved := filepath.Join(t.TempDir(), "plan.json")

	out, err := execute(t, "", "schedule", "-f", input, "--region", cost.BaselineRegionID, "-o", saved)
	require.NoError(t, err)
	assert.Contains(t, out, "Sitegraph Schedule")
	assert.Contains(t, out, "A → B")

	data, err := os.ReadFile(saved)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"planId"`)
}

func TestValidate_Cycle(t *testing.T) {
	input := `{"tasks": [
		{"id": "a", "durationDays": 1, "dependencies": ["b"]},
		{"id": "b", "durationDays": 1, "dependencies": ["a"]}
	]}`

	_, err := execute(t, input, "validate")
	require.Error(t, err)
	assert.ErrorIs(t, err, graph.ErrInvalidGraph)

	var cycle *graph.CycleError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, []string{"a", "b", "a"}, cycle.TaskIDs)
}

func TestValidate_OK(t *testing.T) {
	out, err := execute(t, threeTasks, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "3 tasks, 0 checkpoints")
}

func TestCost_UnknownRegion(t *testing.T) {
	_, err := execute(t, threeTasks, "cost", "--region", "atlantis")
	assert.ErrorIs(t, err, cost.ErrUnknownRegion)
}

func TestCost_InputRegionNeedsCatalog(t *testing.T) {
	// calgary comes from the input but only the built-in catalog is loaded
	_, err := execute(t, threeTasks, "cost")
	assert.ErrorIs(t, err, cost.ErrUnknownRegion)
}

func TestCost_SnakeCaseFlags(t *testing.T) {
	regions := writeTemp(t, "regions.yaml", regionsYAML)

	out, err := execute(t, threeTasks, "cost", "--json", "--regions_file", regions, "--region_id", cost.BaselineRegionID)
	require.NoError(t, err)

	var doc struct {
		RegionID string `json:"regionId"`
		Costs    struct {
			Total cost.Estimate `json:"total"`
		} `json:"costs"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, cost.BaselineRegionID, doc.RegionID)
	assert.InDelta(t, 5650, doc.Costs.Total.Total, 1e-9)
}

func TestCritical_CategoryFilter(t *testing.T) {
	out, err := execute(t, threeTasks, "critical", "--json", "--region", cost.BaselineRegionID, "--category", "demolition,electrical")
	require.NoError(t, err)

	var doc struct {
		CriticalPath      []string `json:"criticalPath"`
		TotalDurationDays int      `json:"totalDurationDays"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, []string{"A", "C"}, doc.CriticalPath)
	assert.Equal(t, 3, doc.TotalDurationDays)
}

func TestCritical_UnknownCategory(t *testing.T) {
	_, err := execute(t, threeTasks, "critical", "--category", "roofing")
	assert.ErrorContains(t, err, "unknown category")
}

func TestViz(t *testing.T) {
	out, err := execute(t, threeTasks, "viz", "--format", "dot", "--region", cost.BaselineRegionID)
	require.NoError(t, err)
	assert.Contains(t, out, `"A" -> "B" [color=red, penwidth=2];`)

	_, err = execute(t, threeTasks, "viz", "--format", "svg")
	assert.ErrorContains(t, err, "unsupported format")
}

func TestRegions(t *testing.T) {
	regions := writeTemp(t, "regions.yaml", regionsYAML)

	out, err := execute(t, "", "regions", "--regions", regions)
	require.NoError(t, err)
	assert.Contains(t, out, "baseline")
	assert.Contains(t, out, "calgary")
	assert.Contains(t, out, "1.20")
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "regions.yaml"), []byte(regionsYAML), 0o644))
	cfg := filepath.Join(dir, "sitegraph.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("default_region: calgary\nregions_file: regions.yaml\n"), 0o644))

	input := `{"tasks": [{"id": "a", "durationDays": 1, "costComponents": {"labor": 100}}]}`
	out, err := execute(t, input, "cost", "--json", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, `"regionId": "calgary"`)

	_, err = execute(t, input, "cost", "--config", filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err, "an explicit config path must exist")
}

func TestSchedule_ShippedExample(t *testing.T) {
	examples := filepath.Join("..", "..", "examples")

	out, err := execute(t, "", "schedule", "--json",
		"--config", filepath.Join(examples, "sitegraph.yaml"),
		"-f", filepath.Join(examples, "renovation.json"))
	require.NoError(t, err)

	var doc struct {
		TotalDurationDays int      `json:"totalDurationDays"`
		CriticalPath      []string `json:"criticalPath"`
		Checkpoints       []struct {
			ID string `json:"id"`
		} `json:"checkpoints"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, 14, doc.TotalDurationDays)
	assert.Equal(t, []string{"demo", "plumb-rough", "rough-inspect", "insulate", "drywall", "cabinets", "final-inspect", "handover"}, doc.CriticalPath)
	assert.Len(t, doc.Checkpoints, 2)
}
