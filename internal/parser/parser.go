// Package parser implements the recursive-descent, one-token-lookahead
// parser for .rqc source.
package parser

import (
	"strconv"
	"strings"

	"reqcraft/internal/ast"
	"reqcraft/internal/diag"
	"reqcraft/internal/lexer"
	"reqcraft/internal/token"
)

var methodVerbs = map[string]bool{
	"get": true, "post": true, "put": true, "delete": true, "patch": true,
}

var typeNames = map[string]bool{
	"String": true, "Number": true, "Boolean": true, "Any": true,
}

// Parser holds one file's mutable parse state.
type Parser struct {
	lx   *lexer.Lexer
	file string
	src  string

	tok token.Token

	diags diag.Diagnostics
}

// New creates a Parser over src, attributing diagnostics to file.
func New(src, file string) *Parser {
	p := &Parser{lx: lexer.New(src), file: file, src: src}
	p.advance()
	return p
}

// Parse parses a complete file into a SourceFile, returning any diagnostics
// collected along the way. Parsing never aborts outright: a malformed
// top-level item is recorded as a diagnostic and skipped so that sibling
// items still parse.
func (p *Parser) Parse() (*ast.SourceFile, diag.Diagnostics) {
	start := p.tok.Span
	file := &ast.SourceFile{Path: p.file}
	for p.tok.Kind != token.EOF {
		doc := p.consumeDocComments()
		if p.tok.Kind == token.EOF {
			break
		}
		item, err := p.parseItem(doc)
		if err != nil {
			p.recordErr(err)
			p.syncToNextItem()
			continue
		}
		if item != nil {
			file.Items = append(file.Items, item)
		}
	}
	file.Span_ = token.Span{ByteStart: start.ByteStart, ByteEnd: p.tok.Span.ByteEnd, Line: start.Line, Column: start.Column}
	return file, p.diags
}

// advance pulls the next non-comment token into p.tok, recording any lex
// error as a diagnostic immediately (lex errors are unconditionally fatal
// for the current item, but parsing continues with the synchronizer).
func (p *Parser) advance() {
	for {
		tok, err := p.lx.Next()
		if err != nil {
			if lexErr, ok := err.(*lexer.Error); ok {
				p.diags = append(p.diags, diag.Diagnostic{
					Kind: diag.Kind(lexErr.Kind), Severity: diag.SeverityError,
					Message: lexErr.Msg, File: p.file, Span: lexErr.Span,
				})
			}
			p.tok = token.Token{Kind: token.Illegal, Span: tok.Span}
			continue
		}
		if tok.Kind == token.Comment {
			continue
		}
		p.tok = tok
		return
	}
}

// consumeDocComments advances past any run of doc comments immediately
// preceding the next token, returning the last one's cleaned text (the one
// attaching to the declaration that follows).
func (p *Parser) consumeDocComments() string {
	doc := ""
	for p.tok.Kind == token.DocComment {
		doc = p.tok.Literal
		p.advance()
	}
	return doc
}

func (p *Parser) recordErr(err error) {
	if d, ok := err.(parseError); ok {
		p.diags = append(p.diags, diag.Diagnostic(d))
		return
	}
	p.diags = append(p.diags, diag.Diagnostic{
		Kind: diag.UnexpectedToken, Severity: diag.SeverityError,
		Message: err.Error(), File: p.file, Span: p.tok.Span,
	})
}

// syncToNextItem skips tokens until brace depth returns to zero and the
// next token starts a new top-level item (or EOF), so a malformed block
// does not mask diagnostics in sibling items.
func (p *Parser) syncToNextItem() {
	depth := 0
	for p.tok.Kind != token.EOF {
		if p.tok.Is(token.Symbol, "{") {
			depth++
			p.advance()
			continue
		}
		if p.tok.Is(token.Symbol, "}") {
			if depth == 0 {
				p.advance()
				return
			}
			depth--
			p.advance()
			continue
		}
		if depth == 0 && p.tok.Kind == token.Ident && isItemKeyword(p.tok.Literal) {
			return
		}
		p.advance()
	}
}

func isItemKeyword(lit string) bool {
	switch lit {
	case "import", "config", "category", "api", "ws", "socketio", "sse":
		return true
	}
	return false
}

type parseError diag.Diagnostic

func (e parseError) Error() string { return diag.Diagnostic(e).Message }

func (p *Parser) errf(kind diag.Kind, format string, args ...any) parseError {
	return parseError{
		Kind: kind, Severity: diag.SeverityError, File: p.file, Span: p.tok.Span,
		Message: sprintf(format, args...),
	}
}

func (p *Parser) unexpected(expected string) parseError {
	return parseError{
		Kind: diag.UnexpectedToken, Severity: diag.SeverityError, File: p.file, Span: p.tok.Span,
		Message: sprintf("expected %s, found %s %q", expected, p.tok.Kind, p.tok.Literal),
	}
}

func (p *Parser) expectSymbol(sym string) error {
	if p.tok.Kind == token.Symbol && p.tok.Literal == sym {
		p.advance()
		return nil
	}
	return p.unexpected(sprintf("%q", sym))
}

func (p *Parser) expectIdent() (string, token.Span, error) {
	if p.tok.Kind == token.Ident {
		lit, span := p.tok.Literal, p.tok.Span
		p.advance()
		return lit, span, nil
	}
	return "", token.Span{}, p.unexpected("identifier")
}

func (p *Parser) expectString() (string, error) {
	if p.tok.Kind == token.String {
		lit := p.tok.Literal
		p.advance()
		return lit, nil
	}
	return "", p.unexpected("string literal")
}

func (p *Parser) at(sym string) bool  { return p.tok.Kind == token.Symbol && p.tok.Literal == sym }
func (p *Parser) kw(lit string) bool  { return p.tok.Kind == token.Ident && p.tok.Literal == lit }

func (p *Parser) parseItem(doc string) (ast.Item, error) {
	switch {
	case p.kw("import"):
		return p.parseImport()
	case p.kw("config"):
		return p.parseConfigBlock()
	case p.kw("category"):
		return p.parseCategory(doc)
	case p.kw("api"):
		return p.parseApi(doc)
	case p.kw("ws"):
		return p.parseWs(doc)
	case p.kw("socketio"):
		return p.parseSocketio(doc)
	case p.kw("sse"):
		return p.parseSse(doc)
	default:
		return nil, p.unexpected("import, config, category, api, ws, socketio, or sse")
	}
}

func (p *Parser) parseImport() (ast.Item, error) {
	start := p.tok.Span
	p.advance() // 'import'
	target, err := p.expectString()
	if err != nil {
		return nil, err
	}
	return ast.Import{Target: target, Span_: spanFrom(start, p.tok.Span)}, nil
}

func (p *Parser) parseConfigBlock() (ast.Item, error) {
	start := p.tok.Span
	p.advance() // 'config'
	if err := p.expectSymbol("{"); err != nil {
		return nil, err
	}
	block := &ast.ConfigBlock{}
	for !p.at("}") && p.tok.Kind != token.EOF {
		entry, err := p.parseConfigEntry()
		if err != nil {
			return nil, err
		}
		block.Entries = append(block.Entries, entry)
	}
	if err := p.expectSymbol("}"); err != nil {
		return nil, err
	}
	block.Span_ = spanFrom(start, p.tok.Span)
	return block, nil
}

func (p *Parser) parseConfigEntry() (ast.ConfigEntry, error) {
	start := p.tok.Span
	switch {
	case p.kw("baseUrl"):
		p.advance()
		urls, err := p.parseUrlList()
		if err != nil {
			return nil, err
		}
		return ast.BaseUrl{Urls: urls, Span_: spanFrom(start, p.tok.Span)}, nil
	case p.kw("variable"):
		return p.parseVariable(start)
	case p.kw("header"):
		return p.parseHeaderDecl(start)
	case p.kw("mock"):
		p.advance()
		v, err := p.parseBool()
		if err != nil {
			return nil, err
		}
		return ast.Mock{Value: v, Span_: spanFrom(start, p.tok.Span)}, nil
	case p.kw("cors"):
		p.advance()
		v, err := p.parseBool()
		if err != nil {
			return nil, err
		}
		return ast.Cors{Value: v, Span_: spanFrom(start, p.tok.Span)}, nil
	default:
		return nil, p.unexpected("baseUrl, variable, header, mock, or cors")
	}
}

// parseUrlList reads a comma-separated list of URL tokens, per the
// baseUrl grammar rule. Each URL is a bare identifier-like token (possibly
// containing "://") rather than a string literal.
func (p *Parser) parseUrlList() ([]string, error) {
	var urls []string
	for {
		if p.tok.Kind != token.Ident {
			return nil, p.unexpected("URL")
		}
		urls = append(urls, p.tok.Literal)
		p.advance()
		if p.at(",") {
			p.advance()
			continue
		}
		break
	}
	return urls, nil
}

func (p *Parser) parseBool() (bool, error) {
	if p.tok.Kind == token.Ident && (p.tok.Literal == "true" || p.tok.Literal == "false") {
		v := p.tok.Literal == "true"
		p.advance()
		return v, nil
	}
	return false, p.unexpected("true or false")
}

func (p *Parser) parseVariable(start token.Span) (ast.ConfigEntry, error) {
	p.advance() // 'variable'
	name, _, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	v := ast.Variable{Name: name}
	if p.tok.Kind == token.Ident && typeNames[p.tok.Literal] {
		v.Type = p.tok.Literal
		p.advance()
	}
	if p.kw("default") {
		p.advance()
		if err := p.expectSymbol("("); err != nil {
			return nil, err
		}
		lit, err := p.parseLiteralToken()
		if err != nil {
			return nil, err
		}
		v.Default = lit.String()
		v.HasDef = true
		if err := p.expectSymbol(")"); err != nil {
			return nil, err
		}
	}
	v.Span_ = spanFrom(start, p.tok.Span)
	return v, nil
}

func (p *Parser) parseHeaderDecl(start token.Span) (ast.ConfigEntry, error) {
	p.advance() // 'header'
	name, _, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	h := ast.Header{Name: name}
	if p.at("@") {
		p.advance()
		if !p.kw("default") {
			return nil, p.unexpected("default")
		}
		p.advance()
		if err := p.expectSymbol("("); err != nil {
			return nil, err
		}
		lit, err := p.parseLiteralToken()
		if err != nil {
			return nil, err
		}
		h.Default = lit.String()
		h.HasDef = true
		if err := p.expectSymbol(")"); err != nil {
			return nil, err
		}
	}
	h.Span_ = spanFrom(start, p.tok.Span)
	return h, nil
}

func (p *Parser) parseCategory(doc string) (ast.Item, error) {
	start := p.tok.Span
	p.advance() // 'category'
	id, _, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol("{"); err != nil {
		return nil, err
	}
	cat := &ast.Category{ID: id, Name: id, Doc: doc}
	for !p.at("}") && p.tok.Kind != token.EOF {
		childDoc := p.consumeDocComments()
		switch {
		case p.kw("name"):
			p.advance()
			s, err := p.expectString()
			if err != nil {
				return nil, err
			}
			cat.Name = s
		case p.kw("desc"):
			p.advance()
			s, err := p.expectString()
			if err != nil {
				return nil, err
			}
			cat.Desc = s
		case p.kw("prefix"):
			p.advance()
			s, err := p.expectString()
			if err != nil {
				return nil, err
			}
			cat.Prefix = s
		default:
			item, err := p.parseItem(childDoc)
			if err != nil {
				return nil, err
			}
			cat.Children = append(cat.Children, item)
		}
	}
	if err := p.expectSymbol("}"); err != nil {
		return nil, err
	}
	cat.Span_ = spanFrom(start, p.tok.Span)
	return cat, nil
}

func (p *Parser) parsePathOrUrl() (string, error) {
	if p.tok.Kind != token.Ident {
		return "", p.unexpected("path")
	}
	lit := p.tok.Literal
	p.advance()
	return lit, nil
}

func (p *Parser) parseApi(doc string) (ast.Item, error) {
	start := p.tok.Span
	p.advance() // 'api'
	path, err := p.parsePathOrUrl()
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol("{"); err != nil {
		return nil, err
	}
	api := &ast.Api{Path: path, Doc: doc}
	seen := map[string]token.Span{}
	for !p.at("}") && p.tok.Kind != token.EOF {
		methodDoc := p.consumeDocComments()
		if p.tok.Kind != token.Ident || !methodVerbs[strings.ToLower(p.tok.Literal)] {
			return nil, p.unexpected("get, post, put, delete, or patch")
		}
		verb := strings.ToLower(p.tok.Literal)
		if prev, dup := seen[verb]; dup {
			return nil, parseError{
				Kind: diag.DuplicateMethod, Severity: diag.SeverityError, File: p.file, Span: p.tok.Span,
				Message: sprintf("duplicate method %q in api %q", verb, path),
				Related: []diag.RelatedSpan{{File: p.file, Span: prev, Label: "first declared here"}},
			}
		}
		method, err := p.parseMethod(verb, methodDoc)
		if err != nil {
			return nil, err
		}
		seen[verb] = method.Span_
		api.Methods = append(api.Methods, method)
	}
	if err := p.expectSymbol("}"); err != nil {
		return nil, err
	}
	api.Span_ = spanFrom(start, p.tok.Span)
	return api, nil
}

func (p *Parser) parseMethod(verb, doc string) (ast.Method, error) {
	start := p.tok.Span
	p.advance() // verb
	if err := p.expectSymbol("{"); err != nil {
		return ast.Method{}, err
	}
	m := ast.Method{Verb: verb, Doc: doc}
	for !p.at("}") && p.tok.Kind != token.EOF {
		switch {
		case p.kw("name"):
			p.advance()
			s, err := p.expectString()
			if err != nil {
				return ast.Method{}, err
			}
			m.Name = s
		case p.kw("request"):
			p.advance()
			s, err := p.parseSchema()
			if err != nil {
				return ast.Method{}, err
			}
			m.Request = s
		case p.kw("response"):
			p.advance()
			s, err := p.parseSchema()
			if err != nil {
				return ast.Method{}, err
			}
			m.Response = s
		default:
			return ast.Method{}, p.unexpected("name, request, or response")
		}
	}
	if err := p.expectSymbol("}"); err != nil {
		return ast.Method{}, err
	}
	m.Span_ = spanFrom(start, p.tok.Span)
	return m, nil
}

func (p *Parser) parseWs(doc string) (ast.Item, error) {
	start := p.tok.Span
	p.advance() // 'ws'
	url, err := p.parsePathOrUrl()
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol("{"); err != nil {
		return nil, err
	}
	w := &ast.Ws{Url: url, Doc: doc}
	for !p.at("}") && p.tok.Kind != token.EOF {
		eventDoc := p.consumeDocComments()
		if !p.kw("event") {
			return nil, p.unexpected("event")
		}
		ev, err := p.parseEvent(eventDoc)
		if err != nil {
			return nil, err
		}
		w.Events = append(w.Events, ev)
	}
	if err := p.expectSymbol("}"); err != nil {
		return nil, err
	}
	w.Span_ = spanFrom(start, p.tok.Span)
	return w, nil
}

func (p *Parser) parseSocketio(doc string) (ast.Item, error) {
	start := p.tok.Span
	p.advance() // 'socketio'
	url, err := p.parsePathOrUrl()
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol("{"); err != nil {
		return nil, err
	}
	s := &ast.Socketio{Url: url, Doc: doc}
	for !p.at("}") && p.tok.Kind != token.EOF {
		eventDoc := p.consumeDocComments()
		switch {
		case p.kw("auth"):
			p.advance()
			schema, err := p.parseSchema()
			if err != nil {
				return nil, err
			}
			s.Auth = schema
		case p.kw("headers"):
			p.advance()
			schema, err := p.parseSchema()
			if err != nil {
				return nil, err
			}
			s.Headers = schema
		case p.kw("event"):
			ev, err := p.parseEvent(eventDoc)
			if err != nil {
				return nil, err
			}
			s.Events = append(s.Events, ev)
		default:
			return nil, p.unexpected("auth, headers, or event")
		}
	}
	if err := p.expectSymbol("}"); err != nil {
		return nil, err
	}
	s.Span_ = spanFrom(start, p.tok.Span)
	return s, nil
}

func (p *Parser) parseEvent(doc string) (ast.Event, error) {
	start := p.tok.Span
	p.advance() // 'event'
	name, _, err := p.expectIdent()
	if err != nil {
		return ast.Event{}, err
	}
	if err := p.expectSymbol("{"); err != nil {
		return ast.Event{}, err
	}
	ev := ast.Event{Name: name, Doc: doc}
	for !p.at("}") && p.tok.Kind != token.EOF {
		switch {
		case p.kw("request"):
			p.advance()
			s, err := p.parseSchema()
			if err != nil {
				return ast.Event{}, err
			}
			ev.Request = s
		case p.kw("response"):
			p.advance()
			s, err := p.parseSchema()
			if err != nil {
				return ast.Event{}, err
			}
			ev.Response = s
		default:
			return ast.Event{}, p.unexpected("request or response")
		}
	}
	if err := p.expectSymbol("}"); err != nil {
		return ast.Event{}, err
	}
	ev.Span_ = spanFrom(start, p.tok.Span)
	return ev, nil
}

func (p *Parser) parseSse(doc string) (ast.Item, error) {
	start := p.tok.Span
	p.advance() // 'sse'
	path, err := p.parsePathOrUrl()
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol("{"); err != nil {
		return nil, err
	}
	s := &ast.Sse{Path: path, Doc: doc}
	sawResponse := false
	for !p.at("}") && p.tok.Kind != token.EOF {
		switch {
		case p.kw("name"):
			p.advance()
			str, err := p.expectString()
			if err != nil {
				return nil, err
			}
			s.Name = str
		case p.kw("request"):
			p.advance()
			schema, err := p.parseSchema()
			if err != nil {
				return nil, err
			}
			s.Request = schema
		case p.kw("response"):
			resp, err := p.parseSseResponse()
			if err != nil {
				return nil, err
			}
			s.Response = resp
			sawResponse = true
		default:
			return nil, p.unexpected("name, request, or response")
		}
	}
	if !sawResponse {
		return nil, p.errf(diag.UnexpectedToken, "sse %q is missing its response block", path)
	}
	if err := p.expectSymbol("}"); err != nil {
		return nil, err
	}
	s.Span_ = spanFrom(start, p.tok.Span)
	return s, nil
}

func (p *Parser) parseSseResponse() (ast.SseResponse, error) {
	start := p.tok.Span
	p.advance() // 'response'
	if err := p.expectSymbol("{"); err != nil {
		return ast.SseResponse{}, err
	}
	var resp ast.SseResponse
	for !p.at("}") && p.tok.Kind != token.EOF {
		doc := p.consumeDocComments()
		if !p.kw("event") {
			return ast.SseResponse{}, p.unexpected("event")
		}
		ev, err := p.parseSseEvent(doc)
		if err != nil {
			return ast.SseResponse{}, err
		}
		resp.Events = append(resp.Events, ev)
	}
	if err := p.expectSymbol("}"); err != nil {
		return ast.SseResponse{}, err
	}
	resp.Span_ = spanFrom(start, p.tok.Span)
	return resp, nil
}

func (p *Parser) parseSseEvent(doc string) (ast.SseEvent, error) {
	start := p.tok.Span
	p.advance() // 'event'
	name, _, err := p.expectIdent()
	if err != nil {
		return ast.SseEvent{}, err
	}
	if err := p.expectSymbol("{"); err != nil {
		return ast.SseEvent{}, err
	}
	ev := ast.SseEvent{Name: name, Doc: doc}
	for !p.at("}") && p.tok.Kind != token.EOF {
		fieldDoc := p.consumeDocComments()
		if p.at("}") {
			break
		}
		if p.tok.Kind != token.Ident {
			return ast.SseEvent{}, p.unexpected("field")
		}
		f, err := p.parseFieldBody(fieldDoc)
		if err != nil {
			return ast.SseEvent{}, err
		}
		ev.Fields = append(ev.Fields, f)
	}
	if err := p.expectSymbol("}"); err != nil {
		return ast.SseEvent{}, err
	}
	ev.Span_ = spanFrom(start, p.tok.Span)
	return ev, nil
}

// parseSchema parses `"{" { field }* "}" [ "?" ]?`.
func (p *Parser) parseSchema() (*ast.Schema, error) {
	start := p.tok.Span
	if err := p.expectSymbol("{"); err != nil {
		return nil, err
	}
	schema := &ast.Schema{}
	for !p.at("}") && p.tok.Kind != token.EOF {
		doc := p.consumeDocComments()
		if p.at("}") {
			break
		}
		if p.tok.Kind != token.Ident {
			return nil, p.unexpected("field")
		}
		f, err := p.parseFieldBody(doc)
		if err != nil {
			return nil, err
		}
		schema.Fields = append(schema.Fields, f)
	}
	if err := p.expectSymbol("}"); err != nil {
		return nil, err
	}
	if p.at("?") {
		p.advance()
		schema.Optional = true
	}
	schema.Span_ = spanFrom(start, p.tok.Span)
	return schema, nil
}

// parseFieldBody parses `field := IDENT ( typeName | schema ) [ "?" ]? { annotation }*`.
// The caller has already consumed any doc comment immediately preceding the
// field and passes its text in doc.
func (p *Parser) parseFieldBody(doc string) (ast.Field, error) {
	start := p.tok.Span
	name, _, err := p.expectIdent()
	if err != nil {
		return ast.Field{}, err
	}
	f := ast.Field{Name: name, Doc: doc}
	if p.at("{") {
		nested, err := p.parseSchema()
		if err != nil {
			return ast.Field{}, err
		}
		f.Nested = nested
		f.Optional = nested.Optional
	} else {
		if p.tok.Kind != token.Ident || !typeNames[p.tok.Literal] {
			return ast.Field{}, p.unexpected("String, Number, Boolean, or Any")
		}
		f.TypeName = p.tok.Literal
		p.advance()
		if p.at("?") {
			p.advance()
			f.Optional = true
		}
	}
	for p.at("@") {
		ann, err := p.parseAnnotation(f.TypeName)
		if err != nil {
			return ast.Field{}, err
		}
		f.Annotations = append(f.Annotations, ann)
	}
	f.Span_ = spanFrom(start, p.tok.Span)
	return f, nil
}

func (p *Parser) parseAnnotation(fieldType string) (ast.Annotation, error) {
	start := p.tok.Span
	p.advance() // '@'
	name, _, err := p.expectIdent()
	if err != nil {
		return ast.Annotation{}, err
	}
	switch name {
	case "params":
		return ast.Annotation{Kind: ast.AnnotationParams, Span_: spanFrom(start, p.tok.Span)}, nil
	case "mock", "example":
		if err := p.expectSymbol("("); err != nil {
			return ast.Annotation{}, err
		}
		lit, err := p.parseLiteralToken()
		if err != nil {
			return ast.Annotation{}, err
		}
		if err := typeCheckLiteral(fieldType, lit); err != nil {
			return ast.Annotation{}, parseError{
				Kind: diag.LiteralTypeMismatch, Severity: diag.SeverityError, File: p.file, Span: lit.Span_,
				Message: err.Error(),
			}
		}
		if err := p.expectSymbol(")"); err != nil {
			return ast.Annotation{}, err
		}
		kind := ast.AnnotationMock
		if name == "example" {
			kind = ast.AnnotationExample
		}
		return ast.Annotation{Kind: kind, Literal: lit, Span_: spanFrom(start, p.tok.Span)}, nil
	default:
		return ast.Annotation{}, parseError{
			Kind: diag.UnknownAnnotation, Severity: diag.SeverityError, File: p.file, Span: start,
			Message: sprintf("unknown annotation @%s", name),
		}
	}
}

func typeCheckLiteral(fieldType string, lit ast.Literal) error {
	if fieldType == "" || fieldType == "Any" {
		return nil
	}
	switch fieldType {
	case "String":
		if lit.Kind != ast.LiteralString {
			return sprintfErr("@mock/@example value must be a string for a String field")
		}
	case "Number":
		if lit.Kind != ast.LiteralNumber {
			return sprintfErr("@mock/@example value must be a number for a Number field")
		}
	case "Boolean":
		if lit.Kind != ast.LiteralBool {
			return sprintfErr("@mock/@example value must be a boolean for a Boolean field")
		}
	}
	return nil
}

func (p *Parser) parseLiteralToken() (ast.Literal, error) {
	span := p.tok.Span
	switch p.tok.Kind {
	case token.String:
		lit := ast.Literal{Kind: ast.LiteralString, Str: p.tok.Literal, Span_: span}
		p.advance()
		return lit, nil
	case token.Number:
		n, _ := strconv.ParseFloat(p.tok.Literal, 64)
		lit := ast.Literal{Kind: ast.LiteralNumber, Num: n, IsFloat: p.tok.IsFloat, Span_: span}
		p.advance()
		return lit, nil
	case token.Ident:
		if p.tok.Literal == "true" || p.tok.Literal == "false" {
			lit := ast.Literal{Kind: ast.LiteralBool, Bool: p.tok.Literal == "true", Span_: span}
			p.advance()
			return lit, nil
		}
		return ast.Literal{}, p.unexpected("string, number, or boolean literal")
	default:
		return ast.Literal{}, p.unexpected("string, number, or boolean literal")
	}
}

func spanFrom(start, end token.Span) token.Span {
	return token.Span{ByteStart: start.ByteStart, ByteEnd: end.ByteEnd, Line: start.Line, Column: start.Column}
}
