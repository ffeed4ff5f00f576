// Package model defines the normalized API Model (component C4's output):
// the resolver's flattened, ID-assigned view of a merged raw AST, consumed
// by the mock synthesizer and the serving engine.
package model

// EndpointKind distinguishes the four endpoint shapes the resolver emits.
type EndpointKind string

const (
	KindHTTP      EndpointKind = "Http"
	KindWebSocket EndpointKind = "WebSocket"
	KindSocketio  EndpointKind = "Socketio"
	KindSse       EndpointKind = "Sse"
)

// FieldType is a normalized field type, distinct from the raw AST's
// source-form TypeName/Nested split.
type FieldType string

const (
	TypeString FieldType = "String"
	TypeNumber FieldType = "Number"
	TypeBool   FieldType = "Boolean"
	TypeArray  FieldType = "Array"
	TypeObject FieldType = "Object"
	TypeAny    FieldType = "Any"
)

// Literal mirrors ast.Literal in the resolved model, kept independent so
// internal/model never imports internal/ast's source-span-carrying types.
type Literal struct {
	Kind    LiteralKind
	Str     string
	Num     float64
	IsFloat bool
	Bool    bool
}

type LiteralKind int

const (
	LiteralString LiteralKind = iota
	LiteralNumber
	LiteralBool
)

// Field is one normalized schema field. Nested is non-nil iff
// Type is Array or Object.
type Field struct {
	Name     string
	Type     FieldType
	Optional bool
	IsParams bool
	Example  *Literal
	Mock     *Literal
	Comment  string
	Nested   *Schema
}

// Schema is an ordered field list.
type Schema struct {
	Fields []Field
}

// WsEvent is one named request/response pair on a WebSocket or Socket.IO
// endpoint.
type WsEvent struct {
	Name     string
	Request  *Schema
	Response *Schema
}

// Endpoint is one resolved, flattened endpoint.
type Endpoint struct {
	ID             string
	Kind           EndpointKind
	Path           string
	FullURL        string // set iff the endpoint's path is a declared absolute URL
	Method         string // always set for Http and Sse; empty otherwise
	Name           string
	Description    string
	CategoryID     string
	CategoryName   string
	Request        *Schema
	Response       *Schema
	Events         []WsEvent
	Auth           *Schema
	ConnectHeaders *Schema
}

// Category is one node of the resolved category tree, carrying an
// aggregate endpoint count for client display.
type Category struct {
	ID            string
	Name          string
	Description   string
	EndpointCount int
	Children      []*Category
}

// VarDef is a declared template variable.
type VarDef struct {
	Name    string
	Type    string
	Default string
	HasDef  bool
}

// HeaderDef is a declared default outbound header.
type HeaderDef struct {
	Name    string
	Default string
	HasDef  bool
}

// ApiModel is the fully resolved view published by the resolver and read
// by the serving engine. It is replaced whole on every successful rebuild,
// so in-flight readers always see a complete, consistent model.
type ApiModel struct {
	BaseUrls   []string
	Variables  []VarDef
	Headers    []HeaderDef
	Mock       bool
	Cors       bool
	Categories []*Category
	Endpoints  []Endpoint
}
