package ast

import (
	"strconv"
	"strings"
)

// formatNumber renders a float64 the way the lexer's original digits would
// have looked: integers print without a decimal point, floats always keep
// one, matching Literal.IsFloat / token.Token.IsFloat.
func formatNumber(n float64, isFloat bool) string {
	if !isFloat {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}

// Print renders file as canonical .rqc source text: re-parsing the result
// produces a SourceFile resolving to the same ApiModel as file, though
// byte spans and comment whitespace are not preserved. A field whose value
// equals its parsed default (a category's name equal to its id, an empty
// desc/prefix) is omitted rather than printed redundantly.
//
// Print has no branch for Field.IsArray: that shape is produced only by
// the OpenAPI translator building ast.Field values directly, never by
// parsing .rqc source, so it never reaches this printer in a round trip.
func Print(file *SourceFile) string {
	var b strings.Builder
	for _, item := range file.Items {
		printItem(&b, item, 0)
	}
	return b.String()
}

func indentStr(level int) string {
	return strings.Repeat("  ", level)
}

func writeDoc(b *strings.Builder, doc string, level int) {
	if doc == "" {
		return
	}
	b.WriteString(indentStr(level))
	b.WriteString("/** ")
	b.WriteString(doc)
	b.WriteString(" */\n")
}

// quoteString renders s as a .rqc string literal, escaping only the
// sequences the lexer understands (readString); everything else, including
// multi-byte runes, is written through unescaped.
func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func boolLit(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

// printLiteral renders an annotation's literal argument. Like
// Literal.String(), it escapes string content so the result always
// re-lexes to the same Literal.
func printLiteral(l Literal) string {
	switch l.Kind {
	case LiteralString:
		return quoteString(l.Str)
	case LiteralBool:
		return boolLit(l.Bool)
	default:
		return formatNumber(l.Num, l.IsFloat)
	}
}

func printItem(b *strings.Builder, item Item, level int) {
	switch v := item.(type) {
	case Import:
		b.WriteString(indentStr(level) + "import " + quoteString(v.Target) + "\n")
	case *ConfigBlock:
		printConfigBlock(b, v, level)
	case *Category:
		printCategory(b, v, level)
	case *Api:
		printApi(b, v, level)
	case *Ws:
		printWs(b, v, level)
	case *Socketio:
		printSocketio(b, v, level)
	case *Sse:
		printSse(b, v, level)
	}
}

func printConfigBlock(b *strings.Builder, c *ConfigBlock, level int) {
	ind := indentStr(level)
	b.WriteString(ind + "config {\n")
	for _, e := range c.Entries {
		printConfigEntry(b, e, level+1)
	}
	b.WriteString(ind + "}\n")
}

func printConfigEntry(b *strings.Builder, e ConfigEntry, level int) {
	ind := indentStr(level)
	switch v := e.(type) {
	case BaseUrl:
		b.WriteString(ind + "baseUrl " + strings.Join(v.Urls, ", ") + "\n")
	case Variable:
		line := ind + "variable " + v.Name
		if v.Type != "" {
			line += " " + v.Type
		}
		if v.HasDef {
			line += " default(" + v.Default + ")"
		}
		b.WriteString(line + "\n")
	case Header:
		line := ind + "header " + v.Name
		if v.HasDef {
			line += " @default(" + v.Default + ")"
		}
		b.WriteString(line + "\n")
	case Mock:
		b.WriteString(ind + "mock " + boolLit(v.Value) + "\n")
	case Cors:
		b.WriteString(ind + "cors " + boolLit(v.Value) + "\n")
	}
}

func printCategory(b *strings.Builder, c *Category, level int) {
	ind := indentStr(level)
	writeDoc(b, c.Doc, level)
	b.WriteString(ind + "category " + c.ID + " {\n")
	inner := level + 1
	innerInd := indentStr(inner)
	if c.Name != "" && c.Name != c.ID {
		b.WriteString(innerInd + "name " + quoteString(c.Name) + "\n")
	}
	if c.Desc != "" {
		b.WriteString(innerInd + "desc " + quoteString(c.Desc) + "\n")
	}
	if c.Prefix != "" {
		b.WriteString(innerInd + "prefix " + quoteString(c.Prefix) + "\n")
	}
	for _, child := range c.Children {
		printItem(b, child, inner)
	}
	b.WriteString(ind + "}\n")
}

func printApi(b *strings.Builder, a *Api, level int) {
	ind := indentStr(level)
	writeDoc(b, a.Doc, level)
	b.WriteString(ind + "api " + a.Path + " {\n")
	inner := level + 1
	for _, m := range a.Methods {
		printMethod(b, m, inner)
	}
	b.WriteString(ind + "}\n")
}

func printMethod(b *strings.Builder, m Method, level int) {
	ind := indentStr(level)
	writeDoc(b, m.Doc, level)
	b.WriteString(ind + m.Verb + " {\n")
	inner := level + 1
	innerInd := indentStr(inner)
	if m.Name != "" {
		b.WriteString(innerInd + "name " + quoteString(m.Name) + "\n")
	}
	if m.Request != nil {
		b.WriteString(innerInd + "request ")
		printSchema(b, m.Request, inner)
		b.WriteString("\n")
	}
	if m.Response != nil {
		b.WriteString(innerInd + "response ")
		printSchema(b, m.Response, inner)
		b.WriteString("\n")
	}
	b.WriteString(ind + "}\n")
}

func printWs(b *strings.Builder, w *Ws, level int) {
	ind := indentStr(level)
	writeDoc(b, w.Doc, level)
	b.WriteString(ind + "ws " + w.Url + " {\n")
	inner := level + 1
	for _, e := range w.Events {
		printEvent(b, e, inner)
	}
	b.WriteString(ind + "}\n")
}

func printSocketio(b *strings.Builder, s *Socketio, level int) {
	ind := indentStr(level)
	writeDoc(b, s.Doc, level)
	b.WriteString(ind + "socketio " + s.Url + " {\n")
	inner := level + 1
	innerInd := indentStr(inner)
	if s.Auth != nil {
		b.WriteString(innerInd + "auth ")
		printSchema(b, s.Auth, inner)
		b.WriteString("\n")
	}
	if s.Headers != nil {
		b.WriteString(innerInd + "headers ")
		printSchema(b, s.Headers, inner)
		b.WriteString("\n")
	}
	for _, e := range s.Events {
		printEvent(b, e, inner)
	}
	b.WriteString(ind + "}\n")
}

func printEvent(b *strings.Builder, e Event, level int) {
	ind := indentStr(level)
	writeDoc(b, e.Doc, level)
	b.WriteString(ind + "event " + e.Name + " {\n")
	inner := level + 1
	innerInd := indentStr(inner)
	if e.Request != nil {
		b.WriteString(innerInd + "request ")
		printSchema(b, e.Request, inner)
		b.WriteString("\n")
	}
	if e.Response != nil {
		b.WriteString(innerInd + "response ")
		printSchema(b, e.Response, inner)
		b.WriteString("\n")
	}
	b.WriteString(ind + "}\n")
}

func printSse(b *strings.Builder, s *Sse, level int) {
	ind := indentStr(level)
	writeDoc(b, s.Doc, level)
	b.WriteString(ind + "sse " + s.Path + " {\n")
	inner := level + 1
	innerInd := indentStr(inner)
	if s.Name != "" {
		b.WriteString(innerInd + "name " + quoteString(s.Name) + "\n")
	}
	if s.Request != nil {
		b.WriteString(innerInd + "request ")
		printSchema(b, s.Request, inner)
		b.WriteString("\n")
	}
	b.WriteString(innerInd + "response {\n")
	respInner := inner + 1
	for _, e := range s.Response.Events {
		printSseEvent(b, e, respInner)
	}
	b.WriteString(innerInd + "}\n")
	b.WriteString(ind + "}\n")
}

func printSseEvent(b *strings.Builder, e SseEvent, level int) {
	ind := indentStr(level)
	writeDoc(b, e.Doc, level)
	b.WriteString(ind + "event " + e.Name + " {\n")
	inner := level + 1
	for _, f := range e.Fields {
		printField(b, f, inner)
	}
	b.WriteString(ind + "}\n")
}

// printSchema writes a `{ field* }` block, optionally suffixed with `?`; it
// does not emit a trailing newline so callers can append annotations
// (field context) or one themselves (request/response context).
func printSchema(b *strings.Builder, s *Schema, level int) {
	b.WriteString("{\n")
	inner := level + 1
	for _, f := range s.Fields {
		printField(b, f, inner)
	}
	b.WriteString(indentStr(level) + "}")
	if s.Optional {
		b.WriteString("?")
	}
}

func printField(b *strings.Builder, f Field, level int) {
	ind := indentStr(level)
	writeDoc(b, f.Doc, level)
	b.WriteString(ind + f.Name + " ")
	if f.Nested != nil {
		printSchema(b, f.Nested, level)
	} else {
		b.WriteString(f.TypeName)
		if f.Optional {
			b.WriteString("?")
		}
	}
	for _, a := range f.Annotations {
		b.WriteString(" " + printAnnotation(a))
	}
	b.WriteString("\n")
}

func printAnnotation(a Annotation) string {
	switch a.Kind {
	case AnnotationParams:
		return "@params"
	case AnnotationExample:
		return "@example(" + printLiteral(a.Literal) + ")"
	default:
		return "@mock(" + printLiteral(a.Literal) + ")"
	}
}
