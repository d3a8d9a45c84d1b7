package elaborate

import (
	"testing"

	"github.com/adalore/adac/pkg/util/adapath"
)

func unit(name string) adapath.Path {
	return adapath.NewAbsolutePath(name)
}

func TestOrderRespectsSpecBeforeBodyAndWith(t *testing.T) {
	g := New()

	textIOSpec := g.AddUnit(unit("Text_IO"), Spec, true, false)
	helloSpec := g.AddUnit(unit("Hello"), Spec, false, false)
	helloBody := g.AddUnit(unit("Hello"), Body, false, false)

	g.AddEdge(helloSpec, helloBody, SpecBeforeBody)
	g.AddEdge(textIOSpec, helloSpec, With)

	order, err := g.Order()
	if err != nil {
		t.Fatalf("Order: %v", err)
	}

	pos := make(map[string]int)
	for i, v := range order {
		pos[v.Unit.String()+"/"+v.Part.String()] = i
	}

	if pos["Text_IO/spec"] >= pos["Hello/spec"] {
		t.Fatalf("Text_IO spec must elaborate before Hello spec")
	}

	if pos["Hello/spec"] >= pos["Hello/body"] {
		t.Fatalf("Hello spec must elaborate before Hello body")
	}
}

func TestOrderDetectsElaborationCycle(t *testing.T) {
	g := New()

	aSpec := g.AddUnit(unit("A"), Spec, false, false)
	aBody := g.AddUnit(unit("A"), Body, false, false)
	bSpec := g.AddUnit(unit("B"), Spec, false, false)
	bBody := g.AddUnit(unit("B"), Body, false, false)

	g.AddEdge(aSpec, aBody, SpecBeforeBody)
	g.AddEdge(bSpec, bBody, SpecBeforeBody)

	// A withs B, B withs A: with edges run withed-unit -> withing-unit.
	g.AddEdge(bSpec, aSpec, With)
	g.AddEdge(aSpec, bSpec, With)

	_, err := g.Order()
	if err == nil {
		t.Fatalf("expected a cyclic elaboration error")
	}

	cyc, ok := err.(*CycleError)
	if !ok {
		t.Fatalf("expected *CycleError, got %T", err)
	}

	if len(cyc.Units) < 2 {
		t.Fatalf("expected cycle listing to include both units, got %v", cyc.Units)
	}
}

func TestOrderWeakEdgesDoNotForceACycleError(t *testing.T) {
	g := New()

	callerSpec := g.AddUnit(unit("Caller"), Spec, false, false)
	calleeBody := g.AddUnit(unit("Callee"), Body, false, false)

	// Invocation edges are weak: a mutual call relationship is not an error.
	g.AddEdge(calleeBody, callerSpec, Invocation)

	order, err := g.Order()
	if err != nil {
		t.Fatalf("Order: %v", err)
	}

	if len(order) != 2 {
		t.Fatalf("expected both units present in order, got %d", len(order))
	}
}

func TestElaborateAllTransitiveClosure(t *testing.T) {
	g := New()

	aSpec := g.AddUnit(unit("A"), Spec, false, false)
	aBody := g.AddUnit(unit("A"), Body, false, false)
	bSpec := g.AddUnit(unit("B"), Spec, false, false)
	bBody := g.AddUnit(unit("B"), Body, false, false)
	cSpec := g.AddUnit(unit("C"), Spec, false, false)
	cBody := g.AddUnit(unit("C"), Body, false, false)

	g.AddEdge(aSpec, aBody, SpecBeforeBody)
	g.AddEdge(bSpec, bBody, SpecBeforeBody)
	g.AddEdge(cSpec, cBody, SpecBeforeBody)

	// C withs B, B withs A.
	g.AddEdge(bSpec, cSpec, With)
	g.AddEdge(aSpec, bSpec, With)

	// pragma Elaborate_All(B) in C forces A's and B's bodies before C's spec.
	g.AddElaborateAll(cSpec)

	order, err := g.Order()
	if err != nil {
		t.Fatalf("Order: %v", err)
	}

	pos := make(map[string]int)
	for i, v := range order {
		pos[v.Unit.String()+"/"+v.Part.String()] = i
	}

	if pos["A/body"] >= pos["C/spec"] {
		t.Fatalf("Elaborate_All(B) on C must force A's body before C's spec")
	}

	if pos["B/body"] >= pos["C/spec"] {
		t.Fatalf("Elaborate_All(B) on C must force B's body before C's spec")
	}
}
