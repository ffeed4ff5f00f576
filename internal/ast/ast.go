// Package ast defines the raw AST produced by internal/parser (component
// C2's output) and consumed by internal/importer and internal/model.
//
// These nodes mirror the source text closely: prefixes are not yet
// composed, imports are not yet inlined, and schema fields still carry
// their declared (not normalized) shape. internal/model resolves a merged
// tree of these nodes into the API Model.
package ast

import "reqcraft/internal/token"

// Node is implemented by every raw AST node that carries a source span, so
// diagnostics can point at the exact declaration.
type Node interface {
	Span() token.Span
}

// Item is one top-level or category-level declaration: Import, *ConfigBlock,
// *Category, *Api, *Ws, *Socketio, or *Sse.
type Item interface {
	Node
	itemNode()
}

// SourceFile is one parsed .rqc file: an ordered list of top-level items.
type SourceFile struct {
	Path  string // absolute path or URL this file was loaded from
	Items []Item
	Span_ token.Span
}

func (f *SourceFile) Span() token.Span { return f.Span_ }

// Import is a bare `import "path-or-url"` statement. The importer resolves
// and inlines it; it never survives into a merged tree.
type Import struct {
	Target string
	Span_  token.Span
}

func (i Import) Span() token.Span { return i.Span_ }
func (Import) itemNode()          {}

// ConfigBlock is an ordered sequence of ConfigEntry values.
type ConfigBlock struct {
	Entries []ConfigEntry
	Span_   token.Span
}

func (c *ConfigBlock) Span() token.Span { return c.Span_ }
func (*ConfigBlock) itemNode()          {}

// ConfigEntry is one of BaseUrl, Variable, Header, Mock, Cors.
type ConfigEntry interface {
	Node
	configEntryNode()
}

// BaseUrl declares one or more comma-separated base URLs.
type BaseUrl struct {
	Urls  []string
	Span_ token.Span
}

func (b BaseUrl) Span() token.Span { return b.Span_ }
func (BaseUrl) configEntryNode()   {}

// Variable declares a template variable with an optional type name and
// default value.
type Variable struct {
	Name    string
	Type    string // "" if unspecified
	Default string
	HasDef  bool
	Span_   token.Span
}

func (v Variable) Span() token.Span { return v.Span_ }
func (Variable) configEntryNode()   {}

// Header declares a default outbound header.
type Header struct {
	Name    string
	Default string
	HasDef  bool
	Span_   token.Span
}

func (h Header) Span() token.Span { return h.Span_ }
func (Header) configEntryNode()   {}

// Mock toggles mock mode.
type Mock struct {
	Value bool
	Span_ token.Span
}

func (m Mock) Span() token.Span { return m.Span_ }
func (Mock) configEntryNode()   {}

// Cors toggles CORS proxy mode.
type Cors struct {
	Value bool
	Span_ token.Span
}

func (c Cors) Span() token.Span { return c.Span_ }
func (Cors) configEntryNode()   {}

// Category groups endpoints and optionally contributes a URL prefix to its
// descendants.
type Category struct {
	ID       string // lexical identifier, e.g. "users"
	Name     string // catAttr "name", defaults to ID
	Desc     string
	Prefix   string
	Doc      string
	Children []Item
	Span_    token.Span
}

func (c *Category) Span() token.Span { return c.Span_ }
func (*Category) itemNode()          {}

// Api is a declared HTTP path with one block per method.
type Api struct {
	Path    string
	Methods []Method
	Doc     string
	Span_   token.Span
}

func (a *Api) Span() token.Span { return a.Span_ }
func (*Api) itemNode()          {}

// Method is one HTTP verb block within an Api.
type Method struct {
	Verb     string // get | post | put | delete | patch
	Name     string
	Doc      string
	Request  *Schema
	Response *Schema
	Span_    token.Span
}

func (m Method) Span() token.Span { return m.Span_ }

// Ws is a declared WebSocket endpoint.
type Ws struct {
	Url    string
	Events []Event
	Doc    string
	Span_  token.Span
}

func (w *Ws) Span() token.Span { return w.Span_ }
func (*Ws) itemNode()          {}

// Socketio is a declared Socket.IO endpoint.
type Socketio struct {
	Url     string
	Auth    *Schema
	Headers *Schema
	Events  []Event
	Doc     string
	Span_   token.Span
}

func (s *Socketio) Span() token.Span { return s.Span_ }
func (*Socketio) itemNode()          {}

// Event is one named request/response pair inside a Ws or Socketio block.
type Event struct {
	Name     string
	Request  *Schema
	Response *Schema
	Doc      string
	Span_    token.Span
}

func (e Event) Span() token.Span { return e.Span_ }

// Sse is a declared server-sent-events endpoint.
type Sse struct {
	Path     string
	Name     string
	Doc      string
	Request  *Schema
	Response SseResponse
	Span_    token.Span
}

func (s *Sse) Span() token.Span { return s.Span_ }
func (*Sse) itemNode()          {}

// SseResponse is the `response { event ... }*` block of an Sse declaration.
type SseResponse struct {
	Events []SseEvent
	Span_  token.Span
}

func (r SseResponse) Span() token.Span { return r.Span_ }

// SseEvent is one named event payload inside an Sse response block. Unlike
// Ws/Socketio events, an SseEvent's body is a flat field list (its own
// Schema), not a request/response pair, per the sseEvent grammar rule.
type SseEvent struct {
	Name   string
	Fields []Field
	Doc    string
	Span_  token.Span
}

func (e SseEvent) Span() token.Span { return e.Span_ }

// Schema is an ordered field list, optionally marked optional as a whole
// (a nested schema written as `{ ... }?`).
type Schema struct {
	Fields   []Field
	Optional bool
	Span_    token.Span
}

func (s Schema) Span() token.Span { return s.Span_ }

// Field is one declared schema field, still in source form: TypeName holds
// a primitive type name ("String"|"Number"|"Boolean"|"Any") when the field
// is primitive, and Nested holds the schema when the field's type is
// written as a `{ ... }` block instead.
type Field struct {
	Name     string
	TypeName string
	Nested   *Schema
	// IsArray marks Nested as an array's element schema rather than an
	// object's field list. The .rqc grammar has no array type literal;
	// only the OpenAPI translator (C5) produces this shape, since OpenAPI
	// schemas can be arrays. Nested holds exactly one field (the element)
	// when IsArray is set.
	IsArray     bool
	Optional    bool
	Annotations []Annotation
	Doc         string
	Span_       token.Span
}

func (f Field) Span() token.Span { return f.Span_ }

// AnnotationKind distinguishes the three annotation forms the grammar
// allows on a field.
type AnnotationKind int

const (
	AnnotationMock AnnotationKind = iota
	AnnotationExample
	AnnotationParams
)

// Annotation is `@mock(lit)`, `@example(lit)`, or `@params`.
type Annotation struct {
	Kind    AnnotationKind
	Literal Literal // zero value unused for AnnotationParams
	Span_   token.Span
}

func (a Annotation) Span() token.Span { return a.Span_ }

// LiteralKind distinguishes the three shapes a Literal can take.
type LiteralKind int

const (
	LiteralString LiteralKind = iota
	LiteralNumber
	LiteralBool
)

// Literal is a tagged variant: String, Number, or Bool. Number preserves an
// integer/float discriminant (IsFloat) so that mock synthesis reproduces
// the written numeric form, matching token.Token.IsFloat.
type Literal struct {
	Kind    LiteralKind
	Str     string
	Num     float64
	IsFloat bool
	Bool    bool
	Span_   token.Span
}

func (l Literal) Span() token.Span { return l.Span_ }

// String renders the literal the way it would have appeared in source,
// escaping string content. The parser stores variable and header defaults
// in this form, and Print writes them back unchanged, so round-tripped
// output re-lexes to the same Literal. format.go's printLiteral renders
// annotation literals the same way.
func (l Literal) String() string {
	switch l.Kind {
	case LiteralString:
		return quoteString(l.Str)
	case LiteralBool:
		if l.Bool {
			return "true"
		}
		return "false"
	default:
		return formatNumber(l.Num, l.IsFloat)
	}
}
