// Package openapi translates an OpenAPI 3.x (or Swagger 2.0, upgraded via
// kin-openapi) document into the raw AST shape produced by internal/parser,
// so internal/importer can splice it into a merged tree alongside .rqc
// sources (component C5).
package openapi

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"reqcraft/internal/ast"
	"reqcraft/internal/diag"
)

// Translate decodes an OpenAPI document (JSON or YAML bytes, 3.x or 2.0)
// and produces the category tree rooted at the document.
// sourceLocation is the path or URL the bytes were fetched from; it seeds
// the deterministic root category ID.
func Translate(data []byte, sourceLocation string) (*ast.Category, diag.Diagnostics) {
	doc, diags := load(data, sourceLocation)
	if doc == nil {
		return nil, diags
	}

	root := &ast.Category{
		ID:   "openapi-" + hashLocation(sourceLocation),
		Name: docTitle(doc, sourceLocation),
	}
	if doc.Info != nil {
		root.Doc = doc.Info.Description
	}

	tagCats := map[string]*ast.Category{}
	var tagOrder []string
	ensureTagCategory := func(tag string) *ast.Category {
		if c, ok := tagCats[tag]; ok {
			return c
		}
		c := &ast.Category{ID: slug(tag), Name: tag}
		tagCats[tag] = c
		tagOrder = append(tagOrder, tag)
		return c
	}

	var pathKeys []string
	for p := range doc.Paths {
		pathKeys = append(pathKeys, p)
	}
	sort.Strings(pathKeys)

	for _, p := range pathKeys {
		item := doc.Paths[p]
		if item == nil {
			continue
		}
		api := translatePath(p, item)
		if api == nil {
			continue
		}
		tag := firstTag(item)
		if tag == "" {
			root.Children = append(root.Children, api)
			continue
		}
		cat := ensureTagCategory(tag)
		cat.Children = append(cat.Children, api)
	}

	sort.Strings(tagOrder)
	for _, t := range tagOrder {
		root.Children = append(root.Children, tagCats[t])
	}
	return root, diags
}

func docTitle(doc *openapi3.T, fallback string) string {
	if doc.Info != nil && doc.Info.Title != "" {
		return doc.Info.Title
	}
	return fallback
}

func hashLocation(loc string) string {
	sum := sha256.Sum256([]byte(loc))
	return hex.EncodeToString(sum[:])[:16]
}

func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), "-")
}

var verbOrder = []struct {
	verb string
	get  func(*openapi3.PathItem) *openapi3.Operation
}{
	{"get", func(i *openapi3.PathItem) *openapi3.Operation { return i.Get }},
	{"post", func(i *openapi3.PathItem) *openapi3.Operation { return i.Post }},
	{"put", func(i *openapi3.PathItem) *openapi3.Operation { return i.Put }},
	{"delete", func(i *openapi3.PathItem) *openapi3.Operation { return i.Delete }},
	{"patch", func(i *openapi3.PathItem) *openapi3.Operation { return i.Patch }},
}

// firstTag implements a "union of tags -> shared placement under the
// first tag" rule: the first operation (in verb order) carrying a tag
// decides the path's placement.
func firstTag(item *openapi3.PathItem) string {
	for _, v := range verbOrder {
		op := v.get(item)
		if op != nil && len(op.Tags) > 0 {
			return op.Tags[0]
		}
	}
	return ""
}

func translatePath(path string, item *openapi3.PathItem) *ast.Api {
	api := &ast.Api{Path: path}
	for _, v := range verbOrder {
		op := v.get(item)
		if op == nil {
			continue
		}
		api.Methods = append(api.Methods, translateOperation(v.verb, op))
	}
	if len(api.Methods) == 0 {
		return nil
	}
	return api
}

func translateOperation(verb string, op *openapi3.Operation) ast.Method {
	m := ast.Method{Verb: verb, Name: op.OperationID}
	if op.Description != "" {
		m.Doc = op.Description
	} else {
		m.Doc = op.Summary
	}

	var requestFields []ast.Field
	for _, paramRef := range op.Parameters {
		param := paramRef.Value
		if param == nil || param.In == openapi3.ParameterInPath {
			continue // path params stay in the path's {name} placeholder
		}
		requestFields = append(requestFields, paramToField(param))
	}

	var bodySchema *ast.Schema
	if op.RequestBody != nil && op.RequestBody.Value != nil {
		if media := op.RequestBody.Value.Content["application/json"]; media != nil && media.Schema != nil {
			bodySchema = topLevelSchema(media.Schema)
		}
	}
	switch {
	case bodySchema != nil:
		bodySchema.Fields = append(requestFields, bodySchema.Fields...)
		m.Request = bodySchema
	case len(requestFields) > 0:
		m.Request = &ast.Schema{Fields: requestFields}
	}

	m.Response = translateResponse(op)
	return m
}

func paramToField(param *openapi3.Parameter) ast.Field {
	f := ast.Field{Name: param.Name, TypeName: "Any", Optional: !param.Required}
	if param.Schema != nil && param.Schema.Value != nil {
		s := schemaToAST(param.Schema, map[string]bool{})
		if len(s.Fields) == 0 {
			f.TypeName = primitiveTypeName(param.Schema.Value)
		} else {
			f.Nested = s
			f.TypeName = ""
		}
	}
	// in: query and in: header parameters are both translated as @params;
	// the DSL has no distinct header-parameter annotation.
	f.Annotations = append(f.Annotations, ast.Annotation{Kind: ast.AnnotationParams})
	return f
}

func translateResponse(op *openapi3.Operation) *ast.Schema {
	if op.Responses == nil {
		return nil
	}
	for _, code := range []string{"200", "201"} {
		if r := op.Responses[code]; r != nil && r.Value != nil {
			if s := responseToSchema(r.Value); s != nil {
				return s
			}
		}
	}
	var codes []string
	for code := range op.Responses {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		if !strings.HasPrefix(code, "2") {
			continue
		}
		r := op.Responses[code]
		if r == nil || r.Value == nil {
			continue
		}
		if s := responseToSchema(r.Value); s != nil {
			return s
		}
	}
	return nil
}

func responseToSchema(resp *openapi3.Response) *ast.Schema {
	if resp.Content == nil {
		return nil
	}
	media := resp.Content["application/json"]
	if media == nil || media.Schema == nil {
		return nil
	}
	return topLevelSchema(media.Schema)
}

// topLevelSchema converts a request/response schema to the shape
// Method.Request/Response require: an ast.Schema (a field list), since the
// .rqc grammar only ever writes a response/request body as a `{ field* }`
// block. A top-level OpenAPI array (no field list of its own) has no
// grammar equivalent, so it is wrapped as a single synthetic "items" field
// carrying IsArray, matching the convention fieldFromSchemaRef already
// uses for array-typed properties.
func topLevelSchema(ref *openapi3.SchemaRef) *ast.Schema {
	if ref != nil && ref.Value != nil && ref.Value.Type == "array" {
		return &ast.Schema{Fields: []ast.Field{fieldFromSchemaRef("items", ref, map[string]bool{}, false)}}
	}
	return schemaToAST(ref, map[string]bool{})
}

func primitiveTypeName(s *openapi3.Schema) string {
	switch s.Type {
	case "string":
		return "String"
	case "integer", "number":
		return "Number"
	case "boolean":
		return "Boolean"
	default:
		return "Any"
	}
}

// schemaToAST converts an OpenAPI schema into an ast.Schema. $ref loops are
// broken by tracking visited ref names; re-entry degrades to an empty
// schema, rendered as an Any field by the caller.
func schemaToAST(ref *openapi3.SchemaRef, visited map[string]bool) *ast.Schema {
	if ref == nil || ref.Value == nil {
		return &ast.Schema{}
	}
	if ref.Ref != "" {
		if visited[ref.Ref] {
			return &ast.Schema{}
		}
		visited = cloneVisited(visited)
		visited[ref.Ref] = true
	}
	s := ref.Value
	schema := &ast.Schema{}
	if s.Type == "array" && s.Items != nil {
		elem := fieldFromSchemaRef("element", s.Items, visited, false)
		schema.Fields = []ast.Field{elem}
		return schema
	}

	var names []string
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	required := map[string]bool{}
	for _, r := range s.Required {
		required[r] = true
	}
	for _, name := range names {
		prop := s.Properties[name]
		schema.Fields = append(schema.Fields, fieldFromSchemaRef(name, prop, visited, !required[name]))
	}
	return schema
}

func cloneVisited(v map[string]bool) map[string]bool {
	out := make(map[string]bool, len(v)+1)
	for k := range v {
		out[k] = true
	}
	return out
}

func fieldFromSchemaRef(name string, ref *openapi3.SchemaRef, visited map[string]bool, optional bool) ast.Field {
	f := ast.Field{Name: name, Optional: optional}
	if ref == nil || ref.Value == nil {
		f.TypeName = "Any"
		return f
	}
	if ref.Ref != "" && visited[ref.Ref] {
		// Re-entrant $ref: stop the cycle here.
		f.TypeName = "Any"
		return f
	}
	s := ref.Value
	switch {
	case len(s.AllOf) > 0, len(s.OneOf) > 0, len(s.AnyOf) > 0:
		// Unions lacking a discriminant degrade to Any.
		f.TypeName = "Any"
	case s.Type == "object" || len(s.Properties) > 0:
		f.Nested = schemaToAST(ref, visited)
	case s.Type == "array":
		f.Nested = schemaToAST(ref, visited)
		f.IsArray = true
	default:
		f.TypeName = primitiveTypeName(s)
	}
	if s.Example != nil {
		if lit, ok := literalFromAny(s.Example); ok {
			f.Annotations = append(f.Annotations, ast.Annotation{Kind: ast.AnnotationExample, Literal: lit})
		}
	}
	return f
}

func literalFromAny(v any) (ast.Literal, bool) {
	switch x := v.(type) {
	case string:
		return ast.Literal{Kind: ast.LiteralString, Str: x}, true
	case bool:
		return ast.Literal{Kind: ast.LiteralBool, Bool: x}, true
	case float64:
		return ast.Literal{Kind: ast.LiteralNumber, Num: x, IsFloat: x != float64(int64(x))}, true
	case int:
		return ast.Literal{Kind: ast.LiteralNumber, Num: float64(x)}, true
	default:
		return ast.Literal{}, false
	}
}

// load decodes data as either OpenAPI 3.x or Swagger 2.0, upgrading the
// latter via openapi2conv before the rest of the pipeline sees it.
func load(data []byte, location string) (*openapi3.T, diag.Diagnostics) {
	var probe map[string]any
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, diag.Diagnostics{{
			Kind: diag.UnsupportedSuffix, Severity: diag.SeverityError, File: location,
			Message: fmt.Sprintf("openapi: could not parse %s as JSON or YAML: %v", location, err),
		}}
	}

	if v, ok := probe["openapi"].(string); ok && strings.HasPrefix(strings.TrimSpace(v), "3.") {
		loader := openapi3.NewLoader()
		loader.IsExternalRefsAllowed = false
		doc, err := loader.LoadFromData(data)
		if err != nil {
			return nil, diag.Diagnostics{{
				Kind: diag.UnsupportedSuffix, Severity: diag.SeverityError, File: location,
				Message: fmt.Sprintf("openapi: %v", err),
			}}
		}
		if err := doc.Validate(context.Background()); err != nil && !permissive(err) {
			return nil, diag.Diagnostics{{
				Kind: diag.UnsupportedSuffix, Severity: diag.SeverityError, File: location,
				Message: fmt.Sprintf("openapi: validation failed: %v", err),
			}}
		}
		return doc, nil
	}

	if v, ok := probe["swagger"].(string); ok && strings.HasPrefix(strings.TrimSpace(v), "2.") {
		var v2 openapi2.T
		if err := yaml.Unmarshal(data, &v2); err != nil {
			return nil, diag.Diagnostics{{
				Kind: diag.UnsupportedSuffix, Severity: diag.SeverityError, File: location,
				Message: fmt.Sprintf("swagger: %v", err),
			}}
		}
		doc, err := openapi2conv.ToV3(&v2)
		if err != nil {
			return nil, diag.Diagnostics{{
				Kind: diag.UnsupportedSuffix, Severity: diag.SeverityError, File: location,
				Message: fmt.Sprintf("swagger: convert v2 to v3: %v", err),
			}}
		}
		return doc, nil
	}

	return nil, diag.Diagnostics{{
		Kind: diag.UnsupportedSuffix, Severity: diag.SeverityError, File: location,
		Message: "openapi: missing or unknown version (expected 'openapi: 3.x' or 'swagger: 2.0')",
	}}
}

func permissive(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unresolved ref") || strings.Contains(s, "found unresolved ref")
}
