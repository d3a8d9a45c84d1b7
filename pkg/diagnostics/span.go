package diagnostics

// Span represents a contiguous slice of a source file's decoded rune
// sequence.  Physical indices are retained (rather than a string slice) so
// that the enclosing line, column, etc can be recovered on demand.
type Span struct {
	// The first character of this span in the original string.
	start int
	// One past the final character of this span in the original string.
	end int
}

// NewSpan constructs a new span, checking that start does not exceed end.
func NewSpan(start int, end int) Span {
	if start > end {
		panic("invalid span")
	}

	return Span{start, end}
}

// Start returns the starting index of this span.
func (p *Span) Start() int {
	return p.start
}

// End returns one past the last index of this span.
func (p *Span) End() int {
	return p.end
}

// Length returns the number of characters covered by this span.
func (p *Span) Length() int {
	return p.end - p.start
}

// SourceMap maps terms from an AST to spans in their originating file.  This
// underlies "where did this symbol come from" queries during resolution and
// code generation (e.g. to anchor an overload-resolution failure on the
// offending subexpression rather than the whole statement).
type SourceMap[T comparable] struct {
	mapping map[T]Span
	srcfile SourceFile
}

// NewSourceMap constructs an initially empty source map over the given
// file.
func NewSourceMap[T comparable](srcfile SourceFile) *SourceMap[T] {
	return &SourceMap[T]{make(map[T]Span), srcfile}
}

// Source returns the file this source map annotates.
func (p *SourceMap[T]) Source() SourceFile {
	return p.srcfile
}

// Put registers a span for the given AST node.  Panics if the node is
// already registered, since this indicates a parser bug (a node identity
// reused across two positions).
func (p *SourceMap[T]) Put(item T, span Span) {
	if _, ok := p.mapping[item]; ok {
		panic("source map key already exists")
	}

	p.mapping[item] = span
}

// Has checks whether the given node has a registered span.
func (p *SourceMap[T]) Has(item T) bool {
	_, ok := p.mapping[item]
	return ok
}

// Get returns the span registered for the given node, panicking if none is
// registered.
func (p *SourceMap[T]) Get(item T) Span {
	if s, ok := p.mapping[item]; ok {
		return s
	}

	panic("missing source map entry")
}

// Diagnostic constructs a diagnostic for the given node, looking up its
// registered span.
func (p *SourceMap[T]) Diagnostic(sev Severity, item T, msg string) *Diagnostic {
	span := p.Get(item)
	return p.srcfile.Diagnostic(sev, span, msg)
}
