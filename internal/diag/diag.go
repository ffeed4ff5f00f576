// Package diag defines the diagnostic types shared by the lexer, parser,
// importer, and resolver, plus the CLI's caret-snippet rendering.
package diag

import (
	"fmt"
	"strings"

	"reqcraft/internal/token"
)

// Kind names a diagnostic's taxonomy entry. Kinds are plain strings
// rather than an enum so each stage can introduce its own without a
// shared registry.
type Kind string

const (
	// Lex errors.
	UnterminatedString       Kind = "UnterminatedString"
	UnterminatedBlockComment Kind = "UnterminatedBlockComment"
	InvalidEscape            Kind = "InvalidEscape"

	// Parse errors.
	UnexpectedToken     Kind = "UnexpectedToken"
	DuplicateMethod     Kind = "DuplicateMethod"
	UnknownAnnotation   Kind = "UnknownAnnotation"
	LiteralTypeMismatch Kind = "LiteralTypeMismatch"

	// Import errors.
	FileNotFound      Kind = "FileNotFound"
	NetworkFailure    Kind = "NetworkFailure"
	UnsupportedSuffix Kind = "UnsupportedSuffix"
	ImportCycle       Kind = "ImportCycle"
	ImportTimeout     Kind = "ImportTimeout"

	// Resolve errors.
	DuplicateEndpoint        Kind = "DuplicateEndpoint"
	DuplicateVariableDefault Kind = "DuplicateVariableDefault"
	InvalidBaseUrl           Kind = "InvalidBaseUrl"
)

// Severity distinguishes diagnostics that fail a build from ones that are
// merely reported alongside a successful one.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

// Diagnostic is one error or warning with enough context to render a
// caret-annotated snippet.
type Diagnostic struct {
	Kind     Kind
	Severity Severity
	Message  string
	File     string
	Span     token.Span
	// Related carries secondary spans for diagnostics that name more than
	// one location, such as DuplicateEndpoint or ImportCycle.
	Related []RelatedSpan
}

// RelatedSpan names an auxiliary location referenced by a Diagnostic, with
// a short label describing its role (e.g. "first declared here").
type RelatedSpan struct {
	File  string
	Span  token.Span
	Label string
}

func (d Diagnostic) Error() string {
	return d.Render("")
}

// Render formats the diagnostic as the CLI does: file:line:column, the
// message, and (if src is non-empty) a two-line snippet with a caret under
// the offending token's start column.
func (d Diagnostic) Render(src string) string {
	var b strings.Builder
	loc := d.File
	if loc == "" {
		loc = "<input>"
	}
	fmt.Fprintf(&b, "%s:%d:%d: %s: %s", loc, d.Span.Line, d.Span.Column, d.Kind, d.Message)
	if src != "" {
		if snippet := caretSnippet(src, d.Span); snippet != "" {
			b.WriteByte('\n')
			b.WriteString(snippet)
		}
	}
	for _, r := range d.Related {
		rloc := r.File
		if rloc == "" {
			rloc = "<input>"
		}
		fmt.Fprintf(&b, "\n  %s: %s:%d:%d", r.Label, rloc, r.Span.Line, r.Span.Column)
	}
	return b.String()
}

func caretSnippet(src string, span token.Span) string {
	lines := strings.Split(src, "\n")
	idx := span.Line - 1
	if idx < 0 || idx >= len(lines) {
		return ""
	}
	line := lines[idx]
	col := span.Column - 1
	if col < 0 {
		col = 0
	}
	if col > len(line) {
		col = len(line)
	}
	caret := strings.Repeat(" ", col) + "^"
	return line + "\n" + caret
}

// Diagnostics is an ordered collection of Diagnostic, returned by every
// build stage alongside its (possibly partial) result.
type Diagnostics []Diagnostic

// HasErrors reports whether any diagnostic has SeverityError.
func (ds Diagnostics) HasErrors() bool {
	for _, d := range ds {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns only the error-severity diagnostics.
func (ds Diagnostics) Errors() Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if d.Severity == SeverityError {
			out = append(out, d)
		}
	}
	return out
}

// First returns the first error-severity diagnostic, or nil if there are
// none. The notification channel's error frame carries this diagnostic's
// rendered text.
func (ds Diagnostics) First() *Diagnostic {
	for i := range ds {
		if ds[i].Severity == SeverityError {
			return &ds[i]
		}
	}
	return nil
}

func (ds Diagnostics) Error() string {
	var parts []string
	for _, d := range ds {
		parts = append(parts, d.Render(""))
	}
	return strings.Join(parts, "\n")
}
