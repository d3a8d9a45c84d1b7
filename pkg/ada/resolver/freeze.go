package resolver

import (
	"github.com/adalore/adac/pkg/ada/core"
	"github.com/adalore/adac/pkg/diagnostics"
)

// FreezeReason records which of the four freeze conditions fired for a type:
// an object declaration of the type, a subprogram body using the type, the
// end of the enclosing declarative part, or an explicit freeze point.
// Recording the reason keeps each freeze site self-describing, so the
// premature-freeze interaction between a subprogram body and a pair of
// mutually referencing type declarations can be revisited without
// re-deriving where the freeze came from.
type FreezeReason uint8

const (
	// FreezeObjectDecl fires when an object of the type is declared.
	FreezeObjectDecl FreezeReason = iota
	// FreezeSubprogramBody fires when a subprogram body mentions the type
	// in its profile.
	FreezeSubprogramBody
	// FreezeEndOfRegion fires for every type still unfrozen at the end of
	// its declarative part.
	FreezeEndOfRegion
	// FreezeExplicit fires for an explicit freeze point, and for types
	// declared outside any tracked declarative region.
	FreezeExplicit
)

func (r FreezeReason) String() string {
	switch r {
	case FreezeObjectDecl:
		return "object declaration"
	case FreezeSubprogramBody:
		return "subprogram body"
	case FreezeEndOfRegion:
		return "end of declarative part"
	default:
		return "explicit freeze point"
	}
}

// pendingFreeze is one declared-but-not-yet-frozen type, remembered together
// with its declaration node so a representation error surfacing at the
// freeze point is still anchored to the declaration that caused it.
type pendingFreeze struct {
	ty   core.TypeID
	node core.NodeID
}

// pushFreezeRegion opens a declarative region: type declarations made while
// it is open defer their freezing until one of the freeze conditions fires.
func (c *Context) pushFreezeRegion() {
	c.freezeRegions = append(c.freezeRegions, nil)
}

// popFreezeRegion closes the current declarative region, freezing every type
// declared in it that no earlier condition froze.
func (c *Context) popFreezeRegion() {
	last := len(c.freezeRegions) - 1
	pending := c.freezeRegions[last]
	c.freezeRegions = c.freezeRegions[:last]

	for _, p := range pending {
		c.FreezeAt(p.ty, FreezeEndOfRegion, p.node)
	}
}

// deferFreeze registers a newly declared type with the current declarative
// region.  Outside any region (e.g. a declaration resolved in isolation) the
// type is frozen on the spot instead.
func (c *Context) deferFreeze(ty core.TypeID, node core.NodeID) {
	if len(c.freezeRegions) == 0 {
		c.FreezeAt(ty, FreezeExplicit, node)
		return
	}

	last := len(c.freezeRegions) - 1
	c.freezeRegions[last] = append(c.freezeRegions[last], pendingFreeze{ty, node})
}

// FreezeAt freezes a type because the given condition fired, reporting any
// representation error at node (per the error taxonomy, representation
// errors surface at the type's freezing point).  Freezing an already-frozen
// type is a no-op.  The first successful freeze of a derived type also
// synthesizes its inherited primitive operations, since derivation is only
// complete once the parent's representation is final.
func (c *Context) FreezeAt(ty core.TypeID, reason FreezeReason, node core.NodeID) {
	if !ty.Valid() {
		return
	}

	t := c.Types.Get(ty)

	if !t.Frozen {
		if err := c.Types.Freeze(ty); err != nil {
			c.report(diagnostics.Error, node, err.Error()+" (frozen at "+reason.String()+")")
			return
		}
	}

	// Derivation completes at the freeze point even when the descriptor
	// itself was already frozen transitively (e.g. as another composite's
	// component type before its own freeze condition fired).
	if t.IsDerived() && t.DefiningSymbol.Valid() && !c.derivedOpsDone[ty] {
		c.derivedOpsDone[ty] = true
		c.deriveOperations(t.DefiningSymbol, t.ParentType)
	}
}
