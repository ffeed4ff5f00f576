package model

import (
	"fmt"
	"net/url"
	"strings"

	"reqcraft/internal/ast"
	"reqcraft/internal/diag"
	"reqcraft/internal/token"
)

// Resolve walks a merged raw AST (the importer's output) into an ApiModel.
// It never mutates file.
func Resolve(file *ast.SourceFile) (*ApiModel, diag.Diagnostics) {
	r := &resolveState{
		varSeen:    map[string]int{},
		headerSeen: map[string]int{},
		endpointAt: map[string]token.Span{},
	}
	r.gatherConfig(file.Items)

	m := &ApiModel{
		BaseUrls: r.baseUrls,
		Mock:     r.mock,
		Cors:     r.cors,
	}
	for _, name := range r.varOrder {
		m.Variables = append(m.Variables, r.vars[name])
	}
	for _, name := range r.headerOrder {
		m.Headers = append(m.Headers, r.headers[name])
	}

	m.Categories, m.Endpoints = r.walkItems(file.Items, "", "", "")
	return m, r.diags
}

type resolveState struct {
	baseUrls []string
	mock     bool
	cors     bool

	varOrder   []string
	vars       map[string]VarDef
	varSeen    map[string]int // allocated by Resolve; not otherwise read or written
	headerOrder []string
	headers     map[string]HeaderDef
	headerSeen  map[string]int

	endpointAt map[string]token.Span
	diags      diag.Diagnostics
}

// gatherConfig collects ConfigBlock entries across the whole tree (config blocks may appear nested inside
// categories, since the grammar treats them as an ordinary Item), applying
// last-wins for scalars, concatenation for baseUrl, and union-by-name for
// variable/header.
func (r *resolveState) gatherConfig(items []ast.Item) {
	r.vars = map[string]VarDef{}
	r.headers = map[string]HeaderDef{}
	var walk func(items []ast.Item)
	walk = func(items []ast.Item) {
		for _, item := range items {
			switch v := item.(type) {
			case *ast.ConfigBlock:
				r.applyConfigBlock(v)
			case *ast.Category:
				walk(v.Children)
			}
		}
	}
	walk(items)
}

func validBaseURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func (r *resolveState) applyConfigBlock(block *ast.ConfigBlock) {
	for _, entry := range block.Entries {
		switch e := entry.(type) {
		case ast.BaseUrl:
			for _, u := range e.Urls {
				if !validBaseURL(u) {
					r.diags = append(r.diags, diag.Diagnostic{
						Kind: diag.InvalidBaseUrl, Severity: diag.SeverityError, Span: e.Span_,
						Message: fmt.Sprintf("invalid baseUrl %q: must be an absolute http(s) URL", u),
					})
					continue
				}
				r.baseUrls = append(r.baseUrls, u)
			}
		case ast.Mock:
			r.mock = e.Value
		case ast.Cors:
			r.cors = e.Value
		case ast.Variable:
			if _, seen := r.vars[e.Name]; !seen {
				r.varOrder = append(r.varOrder, e.Name)
			} else if existing := r.vars[e.Name]; existing.HasDef && e.HasDef && existing.Default != e.Default {
				// Non-fatal: the last declaration still wins on value
				// (see DESIGN.md); conflicting defaults are surfaced,
				// not build-failing.
				r.diags = append(r.diags, diag.Diagnostic{
					Kind: diag.DuplicateVariableDefault, Severity: diag.SeverityWarning, Span: e.Span_,
					Message: fmt.Sprintf("variable %q redeclared with a different default (%q vs %q)", e.Name, existing.Default, e.Default),
				})
			}
			r.vars[e.Name] = VarDef{Name: e.Name, Type: e.Type, Default: e.Default, HasDef: e.HasDef}
		case ast.Header:
			if _, seen := r.headers[e.Name]; !seen {
				r.headerOrder = append(r.headerOrder, e.Name)
			}
			r.headers[e.Name] = HeaderDef{Name: e.Name, Default: e.Default, HasDef: e.HasDef}
		}
	}
}

// walkItems accumulates the prefix chain, flattens endpoints, and builds
// the category tree. prefix
// is the joined prefix_chain inherited from ancestors; categoryID/Name are
// the nearest enclosing category's identity, propagated onto endpoints.
func (r *resolveState) walkItems(items []ast.Item, prefix, categoryID, categoryName string) ([]*Category, []Endpoint) {
	var cats []*Category
	var endpoints []Endpoint
	for _, item := range items {
		switch v := item.(type) {
		case *ast.ConfigBlock, ast.Import:
			continue
		case *ast.Category:
			cat, childEndpoints := r.resolveCategory(v, prefix)
			cats = append(cats, cat)
			endpoints = append(endpoints, childEndpoints...)
		case *ast.Api:
			endpoints = append(endpoints, r.resolveApi(v, prefix, categoryID, categoryName)...)
		case *ast.Ws:
			endpoints = append(endpoints, r.resolveWs(v, categoryID, categoryName))
		case *ast.Socketio:
			endpoints = append(endpoints, r.resolveSocketio(v, categoryID, categoryName))
		case *ast.Sse:
			endpoints = append(endpoints, r.resolveSse(v, prefix, categoryID, categoryName))
		}
	}
	return cats, endpoints
}

func (r *resolveState) resolveCategory(cat *ast.Category, parentPrefix string) (*Category, []Endpoint) {
	name := cat.Name
	if name == "" {
		name = cat.ID
	}
	childPrefix := joinPath(parentPrefix, cat.Prefix)
	childCats, endpoints := r.walkItems(cat.Children, childPrefix, cat.ID, name)

	out := &Category{ID: cat.ID, Name: name, Description: cat.Desc, Children: childCats}
	// endpoints already holds the endpoints of nested categories too.
	out.EndpointCount = len(endpoints)
	return out, endpoints
}

func (r *resolveState) resolveApi(api *ast.Api, prefix, categoryID, categoryName string) []Endpoint {
	path, fullURL := resolvePath(api.Path, prefix)
	var out []Endpoint
	for _, method := range api.Methods {
		verb := strings.ToUpper(method.Verb)
		id := EndpointID(KindHTTP, idSubject(path, fullURL), verb)
		r.checkDuplicate(id, method.Span_)
		name := method.Name
		desc := method.Doc
		if desc == "" {
			desc = api.Doc
		}
		out = append(out, Endpoint{
			ID: id, Kind: KindHTTP, Path: path, FullURL: fullURL, Method: verb,
			Name: name, Description: desc, CategoryID: categoryID, CategoryName: categoryName,
			Request:  normalizeSchema(method.Request),
			Response: normalizeSchema(method.Response),
		})
	}
	return out
}

func (r *resolveState) resolveWs(ws *ast.Ws, categoryID, categoryName string) Endpoint {
	id := EndpointID(KindWebSocket, ws.Url, "")
	r.checkDuplicate(id, ws.Span_)
	return Endpoint{
		ID: id, Kind: KindWebSocket, Path: ws.Url, FullURL: ws.Url,
		Description: ws.Doc, CategoryID: categoryID, CategoryName: categoryName,
		Events: resolveEvents(ws.Events),
	}
}

func (r *resolveState) resolveSocketio(sio *ast.Socketio, categoryID, categoryName string) Endpoint {
	id := EndpointID(KindSocketio, sio.Url, "")
	r.checkDuplicate(id, sio.Span_)
	return Endpoint{
		ID: id, Kind: KindSocketio, Path: sio.Url, FullURL: sio.Url,
		Description: sio.Doc, CategoryID: categoryID, CategoryName: categoryName,
		Events:         resolveEvents(sio.Events),
		Auth:           normalizeSchema(sio.Auth),
		ConnectHeaders: normalizeSchema(sio.Headers),
	}
}

func (r *resolveState) resolveSse(sse *ast.Sse, prefix, categoryID, categoryName string) Endpoint {
	path, fullURL := resolvePath(sse.Path, prefix)
	id := EndpointID(KindSse, idSubject(path, fullURL), "GET")
	r.checkDuplicate(id, sse.Span_)
	var events []WsEvent
	for _, e := range sse.Response.Events {
		events = append(events, WsEvent{Name: e.Name, Response: normalizeSchema(&ast.Schema{Fields: e.Fields})})
	}
	return Endpoint{
		ID: id, Kind: KindSse, Path: path, FullURL: fullURL, Method: "GET",
		Name: sse.Name, Description: sse.Doc, CategoryID: categoryID, CategoryName: categoryName,
		Request: normalizeSchema(sse.Request),
		Events:  events,
	}
}

func resolveEvents(events []ast.Event) []WsEvent {
	out := make([]WsEvent, 0, len(events))
	for _, e := range events {
		out = append(out, WsEvent{Name: e.Name, Request: normalizeSchema(e.Request), Response: normalizeSchema(e.Response)})
	}
	return out
}

func (r *resolveState) checkDuplicate(id string, span token.Span) {
	if first, ok := r.endpointAt[id]; ok {
		r.diags = append(r.diags, diag.Diagnostic{
			Kind: diag.DuplicateEndpoint, Severity: diag.SeverityError, Span: span,
			Message: fmt.Sprintf("duplicate endpoint id %s", id),
			Related: []diag.RelatedSpan{{Span: first, Label: "first declared here"}},
		})
		return
	}
	r.endpointAt[id] = span
}

// idSubject is the "resolved path/url" EndpointID hashes: the absolute
// URL when one is declared, the resolved path otherwise.
func idSubject(path, fullURL string) string {
	if fullURL != "" {
		return fullURL
	}
	return path
}

// resolvePath handles an absolute declared path (containing "://") by
// leaving it untouched and not joining it with any prefix; otherwise
// prefix and path are joined with a single "/".
func resolvePath(declared, prefix string) (path, fullURL string) {
	if strings.Contains(declared, "://") {
		return declared, declared
	}
	return joinPath(prefix, declared), ""
}

// joinPath concatenates a and b with exactly one "/" between them,
// collapsing any duplicate slash at the seam.
func joinPath(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	return strings.TrimRight(a, "/") + "/" + strings.TrimLeft(b, "/")
}

// normalizeSchema converts a raw ast.Schema into the normalized
// model.Schema, resolving each field's FieldType.
func normalizeSchema(s *ast.Schema) *Schema {
	if s == nil {
		return nil
	}
	out := &Schema{Fields: make([]Field, 0, len(s.Fields))}
	for _, f := range s.Fields {
		out.Fields = append(out.Fields, normalizeField(f))
	}
	return out
}

func normalizeField(f ast.Field) Field {
	nf := Field{Name: f.Name, Optional: f.Optional, Comment: f.Doc}
	for _, a := range f.Annotations {
		switch a.Kind {
		case ast.AnnotationParams:
			nf.IsParams = true
		case ast.AnnotationExample:
			lit := normalizeLiteral(a.Literal)
			nf.Example = &lit
		case ast.AnnotationMock:
			lit := normalizeLiteral(a.Literal)
			nf.Mock = &lit
		}
	}

	switch {
	case f.IsArray:
		nf.Type = TypeArray
		nf.Nested = normalizeSchema(f.Nested)
	case f.Nested != nil:
		nf.Type = TypeObject
		nf.Nested = normalizeSchema(f.Nested)
	default:
		nf.Type = primitiveFieldType(f.TypeName)
	}
	return nf
}

func primitiveFieldType(typeName string) FieldType {
	switch typeName {
	case "String":
		return TypeString
	case "Number":
		return TypeNumber
	case "Boolean":
		return TypeBool
	default:
		return TypeAny
	}
}

func normalizeLiteral(l ast.Literal) Literal {
	return Literal{Kind: LiteralKind(l.Kind), Str: l.Str, Num: l.Num, IsFloat: l.IsFloat, Bool: l.Bool}
}
