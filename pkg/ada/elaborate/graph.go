// Package elaborate builds the cross-unit dependency graph and computes a
// legal elaboration order for the units known at link time: vertices are
// one per compilation unit spec/body, edges are tagged by dependency kind,
// and the order is produced by finding strongly connected components
// (Tarjan) and topologically sorting them, breaking ties deterministically.
package elaborate

import "github.com/adalore/adac/pkg/util/adapath"

// UnitPart distinguishes a compilation unit's spec from its body; both are
// separate vertices in the elaboration graph.
type UnitPart uint8

const (
	// Spec is a package/subprogram declaration (the ".ads"-equivalent part).
	Spec UnitPart = iota
	// Body is a package/subprogram body (the ".adb"-equivalent part).
	Body
)

func (p UnitPart) String() string {
	if p == Body {
		return "body"
	}

	return "spec"
}

// VertexID identifies one (unit, part) pair within a Graph.
type VertexID uint32

// Vertex is one compilation-unit spec or body known to the elaboration
// graph, carrying the pragma attributes the ordering tie-break needs.
type Vertex struct {
	Unit adapath.Path
	Part UnitPart

	// Preelaborate and Pure mirror the pragma-derived attributes the ALI
	// file records; the ordering tie-break prefers preelaborate/pure units
	// first.
	Preelaborate bool
	Pure         bool
}

// EdgeKind classifies a dependency edge. Strong kinds block elaboration
// ordering (a strong-edge cycle is an error); the weak kind only influences
// ordering when no strong constraint applies.
type EdgeKind uint8

const (
	// With is a strong edge from a withed unit to the withing unit.
	With EdgeKind = iota
	// Elaborate is a strong edge induced by pragma Elaborate(U).
	Elaborate
	// ElaborateAll is a strong, transitively-closed edge induced by pragma
	// Elaborate_All(U).
	ElaborateAll
	// SpecBeforeBody is a strong edge from a unit's spec to its own body.
	SpecBeforeBody
	// Invocation is a weak edge from a callee's body to a caller's spec.
	Invocation
	// Forced is a strong edge added directly by a caller (e.g. the driver
	// forcing a particular elaboration order for externally-known reasons).
	Forced
)

// IsStrong reports whether this edge kind blocks elaboration ordering.
func (k EdgeKind) IsStrong() bool {
	return k != Invocation
}

func (k EdgeKind) String() string {
	switch k {
	case With:
		return "with"
	case Elaborate:
		return "elaborate"
	case ElaborateAll:
		return "elaborate_all"
	case SpecBeforeBody:
		return "spec_before_body"
	case Invocation:
		return "invocation"
	case Forced:
		return "forced"
	default:
		return "unknown"
	}
}

// Edge is one dependency edge: From must elaborate before To.
type Edge struct {
	From, To VertexID
	Kind     EdgeKind
}

// Graph is the directed multigraph of compilation-unit elaboration
// dependencies.
type Graph struct {
	vertices []Vertex
	byKey    map[vertexKey]VertexID
	out      map[VertexID][]Edge
	in       map[VertexID][]Edge
	edges    []Edge
}

type vertexKey struct {
	unit string
	part UnitPart
}

// New constructs an empty elaboration graph.
func New() *Graph {
	return &Graph{
		byKey: make(map[vertexKey]VertexID),
		out:   make(map[VertexID][]Edge),
		in:    make(map[VertexID][]Edge),
	}
}

// AddUnit ensures a vertex exists for the given unit/part and returns its
// id, creating it (with the given pragma attributes) on first use. A later
// call for a (unit, part) pair already added returns the existing vertex
// unchanged — attributes are only taken from the first AddUnit call.
func (g *Graph) AddUnit(unit adapath.Path, part UnitPart, preelaborate, pure bool) VertexID {
	key := vertexKey{unit.String(), part}

	if id, ok := g.byKey[key]; ok {
		return id
	}

	id := VertexID(len(g.vertices))
	g.vertices = append(g.vertices, Vertex{Unit: unit, Part: part, Preelaborate: preelaborate, Pure: pure})
	g.byKey[key] = id

	return id
}

// Vertex returns the vertex for the given id.
func (g *Graph) Vertex(id VertexID) Vertex {
	return g.vertices[id]
}

// Len returns the number of vertices in the graph.
func (g *Graph) Len() int {
	return len(g.vertices)
}

// AddEdge records a dependency edge: from must elaborate before to.
func (g *Graph) AddEdge(from, to VertexID, kind EdgeKind) {
	e := Edge{from, to, kind}
	g.out[from] = append(g.out[from], e)
	g.in[to] = append(g.in[to], e)
	g.edges = append(g.edges, e)
}

// Edges returns every edge in the graph, in insertion order.
func (g *Graph) Edges() []Edge {
	return g.edges
}

// OutEdges returns the edges leaving the given vertex.
func (g *Graph) OutEdges(id VertexID) []Edge {
	return g.out[id]
}

// InEdges returns the edges entering the given vertex.
func (g *Graph) InEdges(id VertexID) []Edge {
	return g.in[id]
}

// WithedUnits returns the vertices directly named in a with-clause of the
// given (withing) vertex: the source ends of its incoming With edges.
func (g *Graph) WithedUnits(withing VertexID) []VertexID {
	var out []VertexID

	for _, e := range g.in[withing] {
		if e.Kind == With {
			out = append(out, e.From)
		}
	}

	return out
}

// AddElaborateAll adds the strong, transitively-closed edges for
// `pragma Elaborate_All` on the given withing unit's spec. It applies to
// every unit withingSpec withs, not to one named unit: an edge runs to
// withingSpec from the body of each such unit and of every unit they
// transitively with. It walks
// the With edges already present in the graph, so With edges for the
// withing unit must be added before this is called.
func (g *Graph) AddElaborateAll(withingSpec VertexID) {
	seen := map[VertexID]bool{}
	var visit func(VertexID)

	visit = func(v VertexID) {
		if seen[v] {
			return
		}

		seen[v] = true

		unit := g.vertices[v].Unit
		body := g.AddUnit(unit, Body, g.vertices[v].Preelaborate, g.vertices[v].Pure)
		g.AddEdge(body, withingSpec, ElaborateAll)

		for _, w := range g.WithedUnits(v) {
			visit(w)
		}
	}

	for _, w := range g.WithedUnits(withingSpec) {
		visit(w)
	}
}
