package model

import (
	"testing"

	"reqcraft/internal/diag"
	"reqcraft/internal/parser"
)

func mustResolve(t *testing.T, src string) *ApiModel {
	t.Helper()
	p := parser.New(src, "test.rqc")
	file, diags := p.Parse()
	if diags.HasErrors() {
		t.Fatalf("parse diagnostics: %v", diags)
	}
	model, diags := Resolve(file)
	if diags.HasErrors() {
		t.Fatalf("resolve diagnostics: %v", diags)
	}
	return model
}

func TestResolvePrefixComposition(t *testing.T) {
	t.Parallel()
	m := mustResolve(t, `category a {
		prefix "/a"
		category b {
			prefix "/b"
			category c {
				prefix "/c"
				api /d { get { response {} } }
			}
		}
	}`)
	if len(m.Endpoints) != 1 {
		t.Fatalf("got %d endpoints, want 1", len(m.Endpoints))
	}
	if m.Endpoints[0].Path != "/a/b/c/d" {
		t.Fatalf("got path %q, want /a/b/c/d", m.Endpoints[0].Path)
	}
}

func TestResolveAbsoluteUrlNotJoined(t *testing.T) {
	t.Parallel()
	m := mustResolve(t, `category a {
		prefix "/a"
		api https://x.example/y { get { response {} } }
	}`)
	ep := m.Endpoints[0]
	if ep.Path != "https://x.example/y" || ep.FullURL != "https://x.example/y" {
		t.Fatalf("got %#v", ep)
	}
}

func TestResolveEndpointIDStableAcrossReorder(t *testing.T) {
	t.Parallel()
	m1 := mustResolve(t, `api /a { get { response {} } }
api /b { get { response {} } }`)
	m2 := mustResolve(t, `api /b { get { response {} } }
api /a { get { response {} } }`)
	ids1 := map[string]bool{}
	for _, e := range m1.Endpoints {
		ids1[e.ID] = true
	}
	for _, e := range m2.Endpoints {
		if !ids1[e.ID] {
			t.Fatalf("id %s from reordered input not found in original set", e.ID)
		}
	}
}

func TestResolveDuplicateEndpointError(t *testing.T) {
	t.Parallel()
	p := parser.New(`api /a { get { response {} } }
api /a { get { response {} } }`, "t.rqc")
	file, diags := p.Parse()
	if diags.HasErrors() {
		t.Fatalf("unexpected parse diagnostics: %v", diags)
	}
	_, diags = Resolve(file)
	if !diags.HasErrors() {
		t.Fatal("expected a DuplicateEndpoint diagnostic")
	}
	if diags[0].Kind != "DuplicateEndpoint" {
		t.Fatalf("got %v", diags[0])
	}
}

func TestResolveConfigMergeLastWins(t *testing.T) {
	t.Parallel()
	m := mustResolve(t, `config {
		baseUrl http://localhost:3000
		mock true
	}
	category a {
		config {
			baseUrl http://localhost:4000
			mock false
		}
	}`)
	if len(m.BaseUrls) != 2 {
		t.Fatalf("got %d base urls, want 2 (concatenated)", len(m.BaseUrls))
	}
	if m.Mock {
		t.Fatal("expected mock=false (last config block wins)")
	}
}

func TestResolveDuplicateVariableDifferentDefaults(t *testing.T) {
	t.Parallel()
	p := parser.New(`config {
		variable token String default("a")
	}
	category x {
		config {
			variable token String default("b")
		}
	}`, "t.rqc")
	file, diags := p.Parse()
	if diags.HasErrors() {
		t.Fatalf("unexpected parse diagnostics: %v", diags)
	}
	m, diags := Resolve(file)
	if len(diags) == 0 {
		t.Fatal("expected a DuplicateVariableDefault diagnostic")
	}
	if diags[0].Kind != "DuplicateVariableDefault" || diags[0].Severity != diag.SeverityWarning {
		t.Fatalf("got %v, want a warning-level DuplicateVariableDefault", diags[0])
	}
	if diags.HasErrors() {
		t.Fatal("a conflicting default must not fail the build")
	}
	if len(m.Variables) != 1 || m.Variables[0].Default != `"b"` {
		t.Fatalf("expected last default to win despite the warning, got %#v", m.Variables)
	}
}

func TestResolveInvalidBaseUrl(t *testing.T) {
	t.Parallel()
	p := parser.New(`config {
		baseUrl not-a-url
	}`, "t.rqc")
	file, diags := p.Parse()
	if diags.HasErrors() {
		t.Fatalf("unexpected parse diagnostics: %v", diags)
	}
	_, diags = Resolve(file)
	if !diags.HasErrors() {
		t.Fatal("expected an InvalidBaseUrl diagnostic")
	}
	if diags[0].Kind != "InvalidBaseUrl" {
		t.Fatalf("got %v", diags[0])
	}
}

func TestResolveCategoryEndpointCount(t *testing.T) {
	t.Parallel()
	m := mustResolve(t, `category a {
		api /x { get { response {} } post { response {} } }
		category b {
			api /y { get { response {} } }
		}
	}`)
	if len(m.Categories) != 1 {
		t.Fatalf("got %d top categories, want 1", len(m.Categories))
	}
	top := m.Categories[0]
	if top.EndpointCount != 3 {
		t.Fatalf("got endpoint count %d, want 3 (2 own + 1 nested)", top.EndpointCount)
	}
	if len(top.Children) != 1 || top.Children[0].EndpointCount != 1 {
		t.Fatalf("got children %#v", top.Children)
	}
}

func TestResolveSchemaFieldTypes(t *testing.T) {
	t.Parallel()
	m := mustResolve(t, `api /u { get { response {
		id Number @mock(1)
		name String?
		meta { k String }
	} } }`)
	resp := m.Endpoints[0].Response
	if len(resp.Fields) != 3 {
		t.Fatalf("got %d fields, want 3", len(resp.Fields))
	}
	if resp.Fields[0].Type != TypeNumber || resp.Fields[0].Mock == nil {
		t.Fatalf("got %#v", resp.Fields[0])
	}
	if resp.Fields[1].Type != TypeString || !resp.Fields[1].Optional {
		t.Fatalf("got %#v", resp.Fields[1])
	}
	if resp.Fields[2].Type != TypeObject || resp.Fields[2].Nested == nil {
		t.Fatalf("got %#v", resp.Fields[2])
	}
}

func TestResolveWsEvents(t *testing.T) {
	t.Parallel()
	m := mustResolve(t, `ws wss://host/socket {
		event message {
			request { text String }
			response { text String }
		}
	}`)
	ep := m.Endpoints[0]
	if ep.Kind != KindWebSocket || ep.Method != "" {
		t.Fatalf("got %#v", ep)
	}
	if len(ep.Events) != 1 || ep.Events[0].Name != "message" {
		t.Fatalf("got %#v", ep.Events)
	}
}
