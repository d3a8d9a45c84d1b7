// Package adapath provides a representation of Ada selected-component names
// (e.g. "Outer.Inner.Widget"), used both for symbol table lookups and for the
// file-naming convention of a library unit ("outer-inner-widget.adb").
package adapath

import (
	"fmt"
	"strings"
)

// Path represents a dotted Ada name such as "Outer.Inner.Widget", or a
// fragment thereof.  A Path is either *absolute* (anchored at a library-level
// unit) or *relative* (resolved relative to some enclosing scope).
type Path struct {
	// Indicates whether this name is anchored at a library unit.
	absolute bool
	// Segments of the dotted name, outermost first.
	segments []string
}

// NewAbsolutePath constructs a new absolute name from the given segments.
func NewAbsolutePath(segments ...string) Path {
	return Path{true, segments}
}

// NewRelativePath constructs a new relative name from the given segments.
func NewRelativePath(segments ...string) Path {
	return Path{false, segments}
}

// Depth returns the number of segments in this name.
func (p *Path) Depth() uint {
	return uint(len(p.segments))
}

// IsAbsolute determines whether or not this is an absolute (library-unit
// anchored) name.
func (p *Path) IsAbsolute() bool {
	return p.absolute
}

// Head returns the first (outermost) segment of this name.
func (p *Path) Head() string {
	return p.segments[0]
}

// Dehead returns this name with its outermost segment removed.  The result
// is always relative, since an absolute name with its library unit stripped
// no longer identifies a compilation unit on its own.
func (p *Path) Dehead() Path {
	return Path{false, p.segments[1:]}
}

// Tail returns the last (innermost) segment of this name, e.g. the simple
// identifier being referenced.
func (p *Path) Tail() string {
	return p.segments[len(p.segments)-1]
}

// Get returns the nth segment of this name, counting from the outermost.
func (p *Path) Get(nth uint) string {
	return p.segments[nth]
}

// Parent returns the name with its innermost segment removed, i.e. the
// enclosing unit or package.
func (p *Path) Parent() Path {
	n := len(p.segments) - 1
	return Path{p.absolute, p.segments[0:n]}
}

// Extend returns this name extended with a new innermost segment.
func (p *Path) Extend(tail string) Path {
	segs := make([]string, len(p.segments), len(p.segments)+1)
	copy(segs, p.segments)
	segs = append(segs, tail)

	return Path{p.absolute, segs}
}

// Equals determines whether two names denote the same dotted identifier.
func (p Path) Equals(other Path) bool {
	if p.absolute != other.absolute || len(p.segments) != len(other.segments) {
		return false
	}

	for i := range p.segments {
		if !strings.EqualFold(p.segments[i], other.segments[i]) {
			return false
		}
	}

	return true
}

// PrefixOf checks whether this name is a (not necessarily proper) prefix of
// the other, e.g. "Outer" is a prefix of "Outer.Inner".
func (p *Path) PrefixOf(other Path) bool {
	if len(p.segments) > len(other.segments) {
		return false
	}

	for i := range p.segments {
		if !strings.EqualFold(p.segments[i], other.segments[i]) {
			return false
		}
	}

	return true
}

// String returns the dotted-name representation, e.g. "Outer.Inner.Widget".
func (p Path) String() string {
	return strings.Join(p.segments, ".")
}

// FileBaseName returns the GNAT-style file-naming convention for a
// compilation unit with this name: dots replaced with hyphens, folded to
// lowercase (e.g. "Outer.Inner.Widget" becomes "outer-inner-widget").
func (p Path) FileBaseName() string {
	segs := make([]string, len(p.segments))

	for i, s := range p.segments {
		segs[i] = strings.ToLower(s)
	}

	return strings.Join(segs, "-")
}

// String representation including absolute/relative markers, useful for
// diagnostics that need to distinguish the two.
func (p Path) DebugString() string {
	if p.absolute {
		return p.String()
	}

	return fmt.Sprintf(".%s", p.String())
}
