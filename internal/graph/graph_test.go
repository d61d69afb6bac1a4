package graph

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_SimpleDAG(t *testing.T) {
	// A -> B -> D
	// A -> C -> D
	raw := []RawTask{
		{ID: "a", Name: "Demo", DurationDays: 1, Category: "demolition"},
		{ID: "b", Name: "Electrical", DurationDays: 2, Category: "electrical", Dependencies: []string{"a"}},
		{ID: "c", Name: "Plumbing", DurationDays: 3, Category: "plumbing", Dependencies: []string{"a"}},
		{ID: "d", Name: "Inspect", DurationDays: 1, Category: "inspection", IsCheckpoint: true, Dependencies: []string{"c", "b"}},
	}

	g, err := Build(raw)
	require.NoError(t, err)

	assert.Equal(t, 4, g.TaskCount())
	assert.Equal(t, []string{"a"}, g.Roots)
	assert.Equal(t, []string{"d"}, g.Leaves)
	assert.Equal(t, []string{"b", "c"}, g.Adj["a"])
	assert.Equal(t, []string{"b", "c"}, g.RevAdj["d"])
	assert.Equal(t, []string{"d"}, g.Checkpoints())
}

func TestBuild_Empty(t *testing.T) {
	g, err := Build(nil)
	require.NoError(t, err)
	assert.Zero(t, g.TaskCount())
}

func TestBuild_DefaultsCategoryAndDedupesDeps(t *testing.T) {
	raw := []RawTask{
		{ID: "a", DurationDays: 1},
		{ID: "b", DurationDays: 1, Dependencies: []string{"a", "a"}},
	}
	g, err := Build(raw)
	require.NoError(t, err)

	assert.Equal(t, CategoryOther, g.Tasks["a"].Category, "empty category defaults to other")
	assert.Equal(t, []string{"a"}, g.Tasks["b"].Dependencies)
}

func TestBuild_UnknownDependency(t *testing.T) {
	raw := []RawTask{
		{ID: "a", DurationDays: 1},
		{ID: "b", DurationDays: 1, Dependencies: []string{"a", "ghost"}},
	}

	_, err := Build(raw)
	var depErr *UnknownDependencyError
	require.ErrorAs(t, err, &depErr)
	assert.Equal(t, "b", depErr.TaskID)
	assert.Equal(t, "ghost", depErr.MissingDependencyID)
	assert.ErrorIs(t, err, ErrInvalidGraph)
}

func TestBuild_CycleDetection(t *testing.T) {
	// A -> B -> C -> A
	raw := []RawTask{
		{ID: "a", DurationDays: 1, Dependencies: []string{"c"}},
		{ID: "b", DurationDays: 1, Dependencies: []string{"a"}},
		{ID: "c", DurationDays: 1, Dependencies: []string{"b"}},
	}

	_, err := Build(raw)
	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, []string{"a", "b", "c", "a"}, cycleErr.TaskIDs)
}

func TestBuild_SelfDependency(t *testing.T) {
	raw := []RawTask{
		{ID: "loop", DurationDays: 1, Dependencies: []string{"loop"}},
	}

	_, err := Build(raw)
	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, []string{"loop", "loop"}, cycleErr.TaskIDs)
}

func TestBuild_ValidationOrder(t *testing.T) {
	tests := []struct {
		name string
		raw  []RawTask
		want any
	}{
		{
			name: "unknown dependency beats cycle",
			raw: []RawTask{
				{ID: "a", DurationDays: 1, Dependencies: []string{"b"}},
				{ID: "b", DurationDays: 1, Dependencies: []string{"a", "x"}},
			},
			want: &UnknownDependencyError{},
		},
		{
			name: "cycle beats negative duration",
			raw: []RawTask{
				{ID: "a", DurationDays: -1, Dependencies: []string{"b"}},
				{ID: "b", DurationDays: 1, Dependencies: []string{"a"}},
			},
			want: &CycleError{},
		},
		{
			name: "negative duration",
			raw: []RawTask{
				{ID: "a", DurationDays: -2},
			},
			want: &ValidationError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.raw)
			require.Error(t, err)
			assert.IsType(t, tt.want, err)
		})
	}
}

func TestBuild_FieldValidation(t *testing.T) {
	tests := []struct {
		name  string
		raw   []RawTask
		field string
	}{
		{"negative duration", []RawTask{{ID: "a", DurationDays: -1}}, "durationDays"},
		{"empty id", []RawTask{{ID: "", DurationDays: 1}}, "id"},
		{"duplicate id", []RawTask{{ID: "a"}, {ID: "a"}}, "id"},
		{"unknown category", []RawTask{{ID: "a", Category: "roofing-ish"}}, "category"},
		{"negative labor", []RawTask{{ID: "a", CostComponents: CostComponents{Labor: -5}}}, "costComponents.labor"},
		{"NaN permits", []RawTask{{ID: "a", CostComponents: CostComponents{Permits: math.NaN()}}}, "costComponents.permits"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.raw)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestDetectCycle_NoCycle(t *testing.T) {
	g := &WorkflowGraph{
		Tasks: map[string]*Task{
			"a": {ID: "a"},
			"b": {ID: "b"},
		},
		Adj: map[string][]string{
			"a": {"b"},
		},
	}

	assert.Nil(t, g.DetectCycle())
}

func TestAncestors(t *testing.T) {
	// a -> b -> c, d independent
	raw := []RawTask{
		{ID: "a", DurationDays: 1},
		{ID: "b", DurationDays: 1, Dependencies: []string{"a"}},
		{ID: "c", DurationDays: 1, Dependencies: []string{"b"}},
		{ID: "d", DurationDays: 1},
	}
	g, err := Build(raw)
	require.NoError(t, err)

	assert.True(t, g.DependsOn("c", "a"), "c transitively depends on a")
	assert.False(t, g.DependsOn("a", "c"))
	assert.True(t, g.Related("a", "c"))
	assert.True(t, g.Related("c", "a"))
	assert.False(t, g.Related("d", "b"))
	assert.Len(t, g.Ancestors("c"), 2)
}

func TestFilter_RewiresThroughRemovedTasks(t *testing.T) {
	// framing -> electrical -> inspect -> drywall
	raw := []RawTask{
		{ID: "framing", DurationDays: 3, Category: "framing"},
		{ID: "electrical", DurationDays: 2, Category: "electrical", Dependencies: []string{"framing"}},
		{ID: "inspect", DurationDays: 1, Category: "inspection", Dependencies: []string{"electrical"}},
		{ID: "drywall", DurationDays: 4, Category: "drywall", Dependencies: []string{"inspect"}},
	}
	g, err := Build(raw)
	require.NoError(t, err)

	filtered, err := g.Filter(func(t *Task) bool {
		return t.Category != CategoryElectrical && t.Category != CategoryInspection
	})
	require.NoError(t, err)

	assert.Equal(t, 2, filtered.TaskCount())
	assert.Equal(t, []string{"framing"}, filtered.Tasks["drywall"].Dependencies)
	assert.Equal(t, 4, g.TaskCount(), "filter must not modify the source graph")
}

func TestFilter_DenseRemovedLayers(t *testing.T) {
	// frame -> 40 layers of two electrical tasks, each layer fully
	// connected to the previous one -> finish. Every path from finish back
	// to frame runs through removed tasks, and there are 2^40 of them.
	const layers = 40
	raw := []RawTask{{ID: "frame", DurationDays: 1, Category: "framing"}}
	prev := []string{"frame"}
	for i := 0; i < layers; i++ {
		cur := []string{fmt.Sprintf("l%02d-a", i), fmt.Sprintf("l%02d-b", i)}
		for _, id := range cur {
			raw = append(raw, RawTask{ID: id, DurationDays: 1, Category: "electrical", Dependencies: prev})
		}
		prev = cur
	}
	raw = append(raw, RawTask{ID: "finish", DurationDays: 1, Category: "framing", Dependencies: prev})

	g, err := Build(raw)
	require.NoError(t, err)

	filtered, err := g.Filter(func(t *Task) bool { return t.Category == CategoryFraming })
	require.NoError(t, err)

	assert.Equal(t, 2, filtered.TaskCount())
	assert.Equal(t, []string{"frame"}, filtered.Tasks["finish"].Dependencies)
}

func TestRaw_RoundTripsInputOrder(t *testing.T) {
	raw := []RawTask{
		{ID: "z", DurationDays: 1, Category: "cleanup"},
		{ID: "a", DurationDays: 2, Category: "framing", Dependencies: []string{"z"}},
	}
	g, err := Build(raw)
	require.NoError(t, err)

	back := g.Raw()
	require.Len(t, back, 2)
	assert.Equal(t, "z", back[0].ID)
	assert.Equal(t, "a", back[1].ID)
}
