package graph

// Ancestors returns the set of tasks id transitively depends on. The closure
// for the whole graph is computed on first use and cached.
func (g *WorkflowGraph) Ancestors(id string) map[string]bool {
	g.reachOnce.Do(g.computeAncestors)
	return g.ancestors[id]
}

// DependsOn reports whether task a transitively depends on task b.
func (g *WorkflowGraph) DependsOn(a, b string) bool {
	return g.Ancestors(a)[b]
}

// Related reports whether either task transitively depends on the other.
func (g *WorkflowGraph) Related(a, b string) bool {
	return g.DependsOn(a, b) || g.DependsOn(b, a)
}

func (g *WorkflowGraph) computeAncestors() {
	g.ancestors = make(map[string]map[string]bool, len(g.Tasks))

	var visit func(id string) map[string]bool
	visit = func(id string) map[string]bool {
		if set, ok := g.ancestors[id]; ok {
			return set
		}
		set := make(map[string]bool)
		for _, dep := range g.RevAdj[id] {
			set[dep] = true
			for a := range visit(dep) {
				set[a] = true
			}
		}
		g.ancestors[id] = set
		return set
	}

	for _, id := range g.IDs() {
		visit(id)
	}
}
