package elaborate

// sccAll computes the strongly connected components of the whole graph
// (every edge kind, strong and weak). It uses Tarjan's algorithm, iterative
// to avoid recursion-depth limits on large with-graphs. Components are
// returned in reverse topological order, as Tarjan naturally produces them.
func (g *Graph) sccAll() [][]VertexID {
	edgesOf := func(v VertexID) []Edge { return g.out[v] }

	return tarjan(allVertices(len(g.vertices)), edgesOf)
}

// sccStrong computes the strongly connected components of the subgraph
// induced by the given vertex subset, considering only strong edges whose
// endpoints both lie within that subset. Any resulting component of
// size > 1 is a genuine strong-dependency cycle and makes ordering
// impossible.
func (g *Graph) sccStrong(vertices []VertexID) [][]VertexID {
	in := make(map[VertexID]bool, len(vertices))
	for _, v := range vertices {
		in[v] = true
	}

	edgesOf := func(v VertexID) []Edge {
		var out []Edge

		for _, e := range g.out[v] {
			if e.Kind.IsStrong() && in[e.To] {
				out = append(out, e)
			}
		}

		return out
	}

	return tarjan(vertices, edgesOf)
}

func allVertices(n int) []VertexID {
	vs := make([]VertexID, n)
	for i := range vs {
		vs[i] = VertexID(i)
	}

	return vs
}

// tarjan is the shared iterative Tarjan SCC implementation, parameterised
// over the vertex set to visit and an edge-enumeration function so it can be
// reused both for the whole graph and for a strong-edges-only subgraph.
func tarjan(vertices []VertexID, edgesOf func(VertexID) []Edge) [][]VertexID {
	index := make(map[VertexID]int)
	low := make(map[VertexID]int)
	onStack := make(map[VertexID]bool)

	var (
		stack   []VertexID
		result  [][]VertexID
		counter int
	)

	type frame struct {
		v       VertexID
		edgeIdx int
	}

	for _, start := range vertices {
		if _, visited := index[start]; visited {
			continue
		}

		callStack := []frame{{start, 0}}
		index[start] = counter
		low[start] = counter
		counter++
		stack = append(stack, start)
		onStack[start] = true

		for len(callStack) > 0 {
			top := &callStack[len(callStack)-1]
			v := top.v
			out := edgesOf(v)

			if top.edgeIdx < len(out) {
				w := out[top.edgeIdx].To
				top.edgeIdx++

				if _, visited := index[w]; !visited {
					index[w] = counter
					low[w] = counter
					counter++
					stack = append(stack, w)
					onStack[w] = true
					callStack = append(callStack, frame{w, 0})
				} else if onStack[w] {
					if index[w] < low[v] {
						low[v] = index[w]
					}
				}

				continue
			}

			callStack = callStack[:len(callStack)-1]

			if len(callStack) > 0 {
				parent := &callStack[len(callStack)-1]
				if low[v] < low[parent.v] {
					low[parent.v] = low[v]
				}
			}

			if low[v] == index[v] {
				var comp []VertexID

				for {
					w := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[w] = false
					comp = append(comp, w)

					if w == v {
						break
					}
				}

				result = append(result, comp)
			}
		}
	}

	return result
}
