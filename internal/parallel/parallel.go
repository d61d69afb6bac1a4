// Package parallel finds groups of tasks that can legitimately run at the
// same time.
//
// Two tasks are parallel-eligible when neither transitively depends on the
// other and their scheduled windows share at least one day. Groups are the
// maximal sets of mutually eligible tasks; a task may belong to several
// groups. Zero-duration tasks occupy no day and never appear.
package parallel

import (
	"sort"

	"github.com/joshharrison/sitegraph/internal/cpm"
	"github.com/joshharrison/sitegraph/internal/graph"
)

// Group is a set of mutually parallel-eligible tasks and the day range all
// of them are in progress.
type Group struct {
	TaskIDs         []string
	OverlapStartDay int
	OverlapEndDay   int
}

// Eligible reports whether tasks a and b may proceed concurrently.
func Eligible(g *graph.WorkflowGraph, res *cpm.Result, a, b string) bool {
	if a == b {
		return false
	}
	as, ae, aok := res.Tasks[a].Window()
	bs, be, bok := res.Tasks[b].Window()
	if !aok || !bok {
		return false
	}
	if max(as, bs) > min(ae, be) {
		return false
	}
	return !g.Related(a, b)
}

// Analyze returns every maximal group of two or more parallel-eligible
// tasks, ordered by overlap start day and then by member ids.
func Analyze(g *graph.WorkflowGraph, res *cpm.Result) []Group {
	var ids []string
	for _, id := range g.IDs() {
		if _, _, ok := res.Tasks[id].Window(); ok {
			ids = append(ids, id)
		}
	}

	n := len(ids)
	adj := make([][]bool, n)
	for i := range adj {
		adj[i] = make([]bool, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if Eligible(g, res, ids[i], ids[j]) {
				adj[i][j] = true
				adj[j][i] = true
			}
		}
	}

	var groups []Group
	all := make([]int, n)
	for i := range all {
		all[i] = i
	}
	maximalCliques(nil, all, nil, adj, func(clique []int) {
		if len(clique) < 2 {
			return
		}
		groups = append(groups, newGroup(res, ids, clique))
	})

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].OverlapStartDay != groups[j].OverlapStartDay {
			return groups[i].OverlapStartDay < groups[j].OverlapStartDay
		}
		return lessIDs(groups[i].TaskIDs, groups[j].TaskIDs)
	})
	return groups
}

// newGroup builds the report for one clique. Pairwise-overlapping intervals
// always share a common day, so the overlap range is never empty.
func newGroup(res *cpm.Result, ids []string, clique []int) Group {
	grp := Group{TaskIDs: make([]string, 0, len(clique))}
	for k, idx := range clique {
		id := ids[idx]
		ts := res.Tasks[id]
		grp.TaskIDs = append(grp.TaskIDs, id)
		if k == 0 || ts.ES > grp.OverlapStartDay {
			grp.OverlapStartDay = ts.ES
		}
		if k == 0 || ts.EF < grp.OverlapEndDay {
			grp.OverlapEndDay = ts.EF
		}
	}
	sort.Strings(grp.TaskIDs)
	return grp
}

// maximalCliques is Bron–Kerbosch with pivoting. r, p and x hold vertex
// indices in ascending order.
func maximalCliques(r, p, x []int, adj [][]bool, emit func([]int)) {
	if len(p) == 0 && len(x) == 0 {
		emit(append([]int(nil), r...))
		return
	}

	pivot, best := -1, -1
	for _, cand := range [][]int{p, x} {
		for _, u := range cand {
			if c := countNeighbors(u, p, adj); c > best {
				pivot, best = u, c
			}
		}
	}

	candidates := make([]int, 0, len(p))
	for _, v := range p {
		if !adj[pivot][v] {
			candidates = append(candidates, v)
		}
	}

	for _, v := range candidates {
		maximalCliques(
			append(append([]int(nil), r...), v),
			neighbors(v, p, adj),
			neighbors(v, x, adj),
			adj, emit,
		)
		p = without(p, v)
		x = insertSorted(x, v)
	}
}

func countNeighbors(u int, set []int, adj [][]bool) int {
	n := 0
	for _, v := range set {
		if adj[u][v] {
			n++
		}
	}
	return n
}

func neighbors(v int, set []int, adj [][]bool) []int {
	var out []int
	for _, u := range set {
		if adj[v][u] {
			out = append(out, u)
		}
	}
	return out
}

func without(set []int, v int) []int {
	out := make([]int, 0, len(set))
	for _, u := range set {
		if u != v {
			out = append(out, u)
		}
	}
	return out
}

func insertSorted(set []int, v int) []int {
	i := sort.SearchInts(set, v)
	out := make([]int, 0, len(set)+1)
	out = append(out, set[:i]...)
	out = append(out, v)
	return append(out, set[i:]...)
}

func lessIDs(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
