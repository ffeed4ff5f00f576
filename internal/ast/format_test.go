package ast

import "testing"

func TestPrintEscapesStringLiterals(t *testing.T) {
	t.Parallel()
	file := &SourceFile{Items: []Item{
		&ConfigBlock{Entries: []ConfigEntry{
			Variable{
				Name: "greeting", Type: "String",
				Default: `"she said \"hi\" then\nleft"`, HasDef: true,
			},
		}},
	}}
	out := Print(file)
	want := "config {\n  variable greeting String default(\"she said \\\"hi\\\" then\\nleft\")\n}\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestPrintAnnotationEscapesQuotesAndBackslashes(t *testing.T) {
	t.Parallel()
	field := Field{
		Name: "note", TypeName: "String",
		Annotations: []Annotation{
			{Kind: AnnotationExample, Literal: Literal{Kind: LiteralString, Str: `a "quoted" C:\path`}},
		},
	}
	got := printAnnotation(field.Annotations[0])
	want := `@example("a \"quoted\" C:\\path")`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestPrintNumberAndBoolLiterals(t *testing.T) {
	t.Parallel()
	cases := []struct {
		lit  Literal
		want string
	}{
		{Literal{Kind: LiteralNumber, Num: 3, IsFloat: false}, "3"},
		{Literal{Kind: LiteralNumber, Num: 3.5, IsFloat: true}, "3.5"},
		{Literal{Kind: LiteralBool, Bool: true}, "true"},
		{Literal{Kind: LiteralBool, Bool: false}, "false"},
	}
	for _, c := range cases {
		if got := printLiteral(c.lit); got != c.want {
			t.Fatalf("got %q, want %q", got, c.want)
		}
	}
}

func TestPrintCategorySkipsDefaultedName(t *testing.T) {
	t.Parallel()
	file := &SourceFile{Items: []Item{
		&Category{ID: "widgets", Name: "widgets", Children: []Item{
			&Api{Path: "/w", Methods: []Method{{Verb: "get", Response: &Schema{}}}},
		}},
	}}
	out := Print(file)
	want := "category widgets {\n  api /w {\n    get {\n      response {\n      }\n    }\n  }\n}\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestPrintCategoryKeepsOverriddenName(t *testing.T) {
	t.Parallel()
	file := &SourceFile{Items: []Item{
		&Category{ID: "widgets", Name: "Widgets API", Children: nil},
	}}
	out := Print(file)
	want := "category widgets {\n  name \"Widgets API\"\n}\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}
