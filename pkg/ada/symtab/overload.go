package symtab

import (
	"fmt"

	"github.com/adalore/adac/pkg/ada/core"
	"github.com/adalore/adac/pkg/ada/types"
)

// ResolveResult is the outcome of overload resolution at a call site.
type ResolveResult struct {
	// Symbol is the chosen candidate; NoSymbol if resolution failed.
	Symbol core.SymbolID
	// Ambiguous lists every tied top-scoring candidate when resolution
	// could not pick a unique winner (len > 1); nil on success or on a
	// "no matching profile" failure.
	Ambiguous []core.SymbolID
}

// ResolveCall runs the five-step overload resolution algorithm against the
// given candidate set.
//
//  1. candidates are assumed already collected by the caller (via
//     Table.LookupAll), filtered to subprogram/enumeration-literal kinds.
//  2. drop candidates whose arity does not match argCount, accounting for
//     defaulted trailing parameters.
//  3. drop candidates whose formal types do not cover the actual argument
//     types.
//  4. if contextType is valid, drop candidates whose result type it does
//     not cover.
//  5. score the survivors and pick the unique maximum.
func ResolveCall(table *Table, reg *types.Registry, candidates []core.SymbolID, argTypes []core.TypeID, contextType core.TypeID) ResolveResult {
	var step2 []core.SymbolID

	for _, id := range candidates {
		sym := table.Get(id)
		if !sym.Kind.IsSubprogram() && sym.Kind != Literal {
			continue
		}

		if len(argTypes) < sym.MinArgs() || len(argTypes) > sym.Arity() {
			continue
		}

		step2 = append(step2, id)
	}

	var step3 []core.SymbolID

	for _, id := range step2 {
		sym := table.Get(id)

		ok := true

		for i, argTy := range argTypes {
			if !reg.Covers(sym.Params[i].Type, argTy) {
				ok = false
				break
			}
		}

		if ok {
			step3 = append(step3, id)
		}
	}

	step4 := step3

	if contextType.Valid() {
		step4 = nil

		for _, id := range step3 {
			sym := table.Get(id)
			if sym.Result.Valid() && reg.Covers(contextType, sym.Result) {
				step4 = append(step4, id)
			}
		}
	}

	switch len(step4) {
	case 0:
		return ResolveResult{Symbol: core.NoSymbol}
	case 1:
		return ResolveResult{Symbol: step4[0]}
	}

	return scoreCandidates(table, reg, step4, argTypes)
}

// scoreCandidates implements step 5's tie-break: an exact type match on an
// argument outscores a universal-type conversion, and a candidate declared
// in an inner (higher-level) scope outscores one in an outer scope.
func scoreCandidates(table *Table, reg *types.Registry, candidates []core.SymbolID, argTypes []core.TypeID) ResolveResult {
	type scored struct {
		id    core.SymbolID
		score int
	}

	scores := make([]scored, len(candidates))

	for i, id := range candidates {
		sym := table.Get(id)

		s := int(table.Scope(sym.DefiningScope).Level)

		for j, argTy := range argTypes {
			if sym.Params[j].Type == argTy {
				s += 1000
			}
		}

		scores[i] = scored{id, s}
	}

	best := scores[0].score
	for _, s := range scores[1:] {
		if s.score > best {
			best = s.score
		}
	}

	var winners []core.SymbolID

	for _, s := range scores {
		if s.score == best {
			winners = append(winners, s.id)
		}
	}

	if len(winners) == 1 {
		return ResolveResult{Symbol: winners[0]}
	}

	return ResolveResult{Ambiguous: winners}
}

// ErrNoMatchingProfile reports that overload resolution eliminated every
// candidate.
var ErrNoMatchingProfile = fmt.Errorf("no matching profile")
