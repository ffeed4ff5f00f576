package openapi

import (
	"strings"
	"testing"

	"reqcraft/internal/ast"
)

const sampleV3 = `openapi: 3.0.0
info:
  title: Sample API
  version: "1.0.0"
paths:
  /users/{id}:
    get:
      operationId: getUser
      tags: [Users]
      summary: Fetch a user
      parameters:
        - name: id
          in: path
          required: true
          schema: { type: string }
        - name: verbose
          in: query
          schema: { type: boolean }
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                type: object
                required: [id, name]
                properties:
                  id: { type: string }
                  name: { type: string }
                  age: { type: integer, example: 30 }
  /ping:
    get:
      operationId: ping
      responses:
        "200":
          description: ok
`

func TestTranslateGroupsByTag(t *testing.T) {
	t.Parallel()
	root, diags := Translate([]byte(sampleV3), "sample.yaml")
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if len(root.Children) != 2 {
		t.Fatalf("got %d children, want 2 (Users category + untagged /ping)", len(root.Children))
	}

	var usersCat *ast.Category
	var pingApi *ast.Api
	for _, c := range root.Children {
		switch v := c.(type) {
		case *ast.Category:
			usersCat = v
		case *ast.Api:
			pingApi = v
		}
	}
	if usersCat == nil {
		t.Fatal("expected a Users category")
	}
	if usersCat.Name != "Users" {
		t.Fatalf("got category name %q", usersCat.Name)
	}
	if pingApi == nil || pingApi.Path != "/ping" {
		t.Fatalf("expected untagged /ping as a direct root child, got %#v", pingApi)
	}
}

func TestTranslateOperationFields(t *testing.T) {
	t.Parallel()
	root, diags := Translate([]byte(sampleV3), "sample.yaml")
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	var usersApi *ast.Api
	for _, c := range root.Children {
		if cat, ok := c.(*ast.Category); ok {
			for _, child := range cat.Children {
				if api, ok := child.(*ast.Api); ok {
					usersApi = api
				}
			}
		}
	}
	if usersApi == nil {
		t.Fatal("expected /users/{id} under the Users category")
	}
	if usersApi.Path != "/users/{id}" {
		t.Fatalf("got path %q", usersApi.Path)
	}
	if len(usersApi.Methods) != 1 {
		t.Fatalf("got %d methods, want 1", len(usersApi.Methods))
	}
	get := usersApi.Methods[0]
	if get.Verb != "get" || get.Name != "getUser" {
		t.Fatalf("got %#v", get)
	}

	if get.Request == nil || len(get.Request.Fields) != 1 {
		t.Fatalf("expected one @params field for the query parameter, got %#v", get.Request)
	}
	if get.Request.Fields[0].Name != "verbose" {
		t.Fatalf("got request field %#v", get.Request.Fields[0])
	}

	if get.Response == nil || len(get.Response.Fields) != 3 {
		t.Fatalf("got response %#v", get.Response)
	}
	byName := map[string]ast.Field{}
	for _, f := range get.Response.Fields {
		byName[f.Name] = f
	}
	if byName["id"].Optional {
		t.Fatal("id is required, should not be optional")
	}
	if !byName["age"].Optional {
		t.Fatal("age is not required, should be optional")
	}
	hasExample := false
	for _, a := range byName["age"].Annotations {
		if a.Kind == ast.AnnotationExample {
			hasExample = true
		}
	}
	if !hasExample {
		t.Fatalf("expected age to carry an @example annotation from its OpenAPI example, got %#v", byName["age"])
	}
}

func TestTranslateRefCycleDegradesToAny(t *testing.T) {
	t.Parallel()
	const cyclic = `openapi: 3.0.0
info: { title: Cyclic, version: "1.0" }
paths:
  /node:
    get:
      operationId: getNode
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema: { "$ref": "#/components/schemas/Node" }
components:
  schemas:
    Node:
      type: object
      properties:
        name: { type: string }
        child: { "$ref": "#/components/schemas/Node" }
`
	root, diags := Translate([]byte(cyclic), "cyclic.yaml")
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	api := root.Children[0].(*ast.Api)
	resp := api.Methods[0].Response
	var childField ast.Field
	for _, f := range resp.Fields {
		if f.Name == "child" {
			childField = f
		}
	}
	if childField.Nested != nil {
		t.Fatalf("expected the re-entrant $ref not to be expanded into a nested schema, got %#v", childField)
	}
	if childField.TypeName != "Any" {
		t.Fatalf("expected the re-entrant $ref to degrade to an Any field, got %#v", childField)
	}
}

func TestTranslateSwagger2IsUpgraded(t *testing.T) {
	t.Parallel()
	const v2 = `swagger: "2.0"
info:
  title: Legacy
  version: "1.0.0"
paths:
  /hello:
    get:
      operationId: hello
      responses:
        "200":
          description: ok
`
	root, diags := Translate([]byte(v2), "legacy.yaml")
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if len(root.Children) != 1 {
		t.Fatalf("got %d children, want 1", len(root.Children))
	}
	api, ok := root.Children[0].(*ast.Api)
	if !ok || api.Path != "/hello" {
		t.Fatalf("got %#v", root.Children[0])
	}
}

func TestTranslateUnknownVersionFails(t *testing.T) {
	t.Parallel()
	_, diags := Translate([]byte("foo: bar\n"), "bad.yaml")
	if !diags.HasErrors() {
		t.Fatal("expected a diagnostic for a document with no openapi/swagger version key")
	}
	if !strings.Contains(diags[0].Message, "missing or unknown version") {
		t.Fatalf("got message %q", diags[0].Message)
	}
}
