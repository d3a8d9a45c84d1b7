package elaborate

import "sort"

// CycleError reports a strong-dependency cycle discovered while computing an
// elaboration order, listing every unit on the cycle.
type CycleError struct {
	Units []Vertex
}

func (e *CycleError) Error() string {
	msg := "cyclic elaboration dependency: "

	for i, v := range e.Units {
		if i > 0 {
			msg += " -> "
		}

		msg += v.Unit.String() + " (" + v.Part.String() + ")"
	}

	return msg
}

// Order computes a legal elaboration order for every vertex in the graph:
// a sequence in which every strong edge (with, elaborate, elaborate_all,
// spec_before_body) is respected. Components follow one another in the
// reverse of the order Tarjan's algorithm finds them; inside a component of
// more than one vertex, ties are broken deterministically (preelaborate/pure
// units first, then alphabetically). Units in separate components are not
// reordered by that tie-break.
// Returns a *CycleError if the strong edges contain a cycle that makes no
// legal order possible.
func (g *Graph) Order() ([]Vertex, error) {
	comps := g.sccAll()

	// sccAll returns components in Tarjan's natural (reverse-topological)
	// order; reverse to get "earlier in the result must elaborate first".
	for i, j := 0, len(comps)-1; i < j; i, j = i+1, j-1 {
		comps[i], comps[j] = comps[j], comps[i]
	}

	var order []Vertex

	for _, comp := range comps {
		if len(comp) == 1 {
			order = append(order, g.vertices[comp[0]])
			continue
		}

		ordered, err := g.orderComponent(comp)
		if err != nil {
			return nil, err
		}

		order = append(order, ordered...)
	}

	return order, nil
}

// orderComponent topologically sorts the vertices of one (weak-edge-induced)
// component using only the strong edges among them, reporting a CycleError
// if the strong edges alone still form a cycle inside the component.
func (g *Graph) orderComponent(comp []VertexID) ([]Vertex, error) {
	strongComps := g.sccStrong(comp)

	for _, sc := range strongComps {
		if len(sc) > 1 {
			units := make([]Vertex, len(sc))
			for i, v := range sc {
				units[i] = g.vertices[v]
			}

			return nil, &CycleError{Units: units}
		}
	}

	inSet := make(map[VertexID]bool, len(comp))
	for _, v := range comp {
		inSet[v] = true
	}

	indegree := make(map[VertexID]int, len(comp))
	for _, v := range comp {
		indegree[v] = 0
	}

	for _, v := range comp {
		for _, e := range g.out[v] {
			if e.Kind.IsStrong() && inSet[e.To] {
				indegree[e.To]++
			}
		}
	}

	var available []VertexID

	for _, v := range comp {
		if indegree[v] == 0 {
			available = append(available, v)
		}
	}

	var result []Vertex

	for len(available) > 0 {
		sort.Slice(available, func(i, j int) bool {
			return lessVertex(g.vertices[available[i]], g.vertices[available[j]])
		})

		next := available[0]
		available = available[1:]
		result = append(result, g.vertices[next])

		for _, e := range g.out[next] {
			if e.Kind.IsStrong() && inSet[e.To] {
				indegree[e.To]--
				if indegree[e.To] == 0 {
					available = append(available, e.To)
				}
			}
		}
	}

	return result, nil
}

// lessVertex implements the deterministic tie-break order: preelaborate or
// pure units sort first, then alphabetically by dotted unit name, then spec
// before body.
func lessVertex(a, b Vertex) bool {
	ap, bp := a.Preelaborate || a.Pure, b.Preelaborate || b.Pure
	if ap != bp {
		return ap
	}

	an, bn := a.Unit.String(), b.Unit.String()
	if an != bn {
		return an < bn
	}

	return a.Part == Spec && b.Part == Body
}
