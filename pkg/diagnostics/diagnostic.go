package diagnostics

import "fmt"

// Severity classifies how serious a diagnostic is.  A compilation unit
// accumulates diagnostics of mixed severity and only fails the unit on
// encountering at least one Error.
type Severity uint8

const (
	// Note is purely informational, e.g. "declared here".
	Note Severity = iota
	// Warning flags a legal but suspicious construct.
	Warning
	// Error flags an illegal construct; accumulating one or more Errors
	// against a compilation unit prevents code generation for it.
	Error
)

func (s Severity) String() string {
	switch s {
	case Note:
		return "note"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Diagnostic is a structured report anchored at a span of a source file,
// optionally carrying follow-up notes (e.g. "did you mean ...?" suggestions
// or "declared here" cross-references).
type Diagnostic struct {
	srcfile  *SourceFile
	severity Severity
	span     Span
	msg      string
	notes    []Diagnostic
}

// SourceFile returns the file this diagnostic is anchored to.
func (d *Diagnostic) SourceFile() *SourceFile {
	return d.srcfile
}

// Severity returns this diagnostic's severity.
func (d *Diagnostic) Severity() Severity {
	return d.severity
}

// Span returns the span of the original text this diagnostic covers.
func (d *Diagnostic) Span() Span {
	return d.span
}

// Message returns the diagnostic's message text.
func (d *Diagnostic) Message() string {
	return d.msg
}

// Notes returns any follow-up notes attached to this diagnostic.
func (d *Diagnostic) Notes() []Diagnostic {
	return d.notes
}

// WithNote attaches a follow-up note and returns the receiver, to allow
// fluent construction at the call site.
func (d *Diagnostic) WithNote(span Span, msg string) *Diagnostic {
	d.notes = append(d.notes, Diagnostic{d.srcfile, Note, span, msg, nil})
	return d
}

// Error implements the error interface, producing a "file:line:col:severity:
// message" rendering.
func (d *Diagnostic) Error() string {
	line := d.srcfile.FindFirstEnclosingLine(d.span)
	col := d.span.start - line.Start() + 1

	return fmt.Sprintf("%s:%d:%d: %s: %s", d.srcfile.Filename(), line.Number(), col, d.severity, d.msg)
}

// FirstEnclosingLine returns the first physical line to which this
// diagnostic's span is anchored.
func (d *Diagnostic) FirstEnclosingLine() Line {
	return d.srcfile.FindFirstEnclosingLine(d.span)
}

// Bag accumulates diagnostics raised over the course of compiling one or
// more units, and reports whether any of them are fatal.
type Bag struct {
	diags []Diagnostic
}

// Add appends a diagnostic to the bag.
func (b *Bag) Add(d *Diagnostic) {
	b.diags = append(b.diags, *d)
}

// All returns every diagnostic accumulated so far, in report order.
func (b *Bag) All() []Diagnostic {
	return b.diags
}

// HasErrors reports whether any accumulated diagnostic is of Error severity.
// A driver uses this to decide whether to proceed to code generation.
func (b *Bag) HasErrors() bool {
	for _, d := range b.diags {
		if d.severity == Error {
			return true
		}
	}

	return false
}

// Count returns the number of diagnostics of the given severity.
func (b *Bag) Count(sev Severity) int {
	n := 0

	for _, d := range b.diags {
		if d.severity == sev {
			n++
		}
	}

	return n
}
