// Package mock synthesizes JSON values from a resolved Schema (component
// C6), used both by the serving engine's mock plane and by the "Load
// Example" affordance for request bodies.
package mock

import "reqcraft/internal/model"

// Mode selects which fields synth walks: request bodies skip @params
// fields (they belong in the query string), responses include everything.
type Mode int

const (
	ModeResponse Mode = iota
	ModeRequest
)

// Synthesize produces a JSON-ready value (map[string]any, []any, or a
// primitive) from schema by depth-first traversal: @mock wins, then
// @example, then a type default. Optional fields are always emitted so
// the client never has to guess a shape it wasn't shown.
func Synthesize(schema *model.Schema, mode Mode) any {
	if schema == nil {
		return map[string]any{}
	}
	return synthesizeObject(schema, mode)
}

func synthesizeObject(schema *model.Schema, mode Mode) map[string]any {
	obj := map[string]any{}
	for _, f := range schema.Fields {
		if mode == ModeRequest && f.IsParams {
			continue
		}
		obj[f.Name] = synthesizeField(f, mode)
	}
	return obj
}

func synthesizeField(f model.Field, mode Mode) any {
	if f.Mock != nil {
		return literalValue(*f.Mock)
	}
	if f.Example != nil {
		return literalValue(*f.Example)
	}

	switch f.Type {
	case model.TypeArray:
		return []any{synthesizeArrayElement(f.Nested, mode)}
	case model.TypeObject:
		return synthesizeObject(f.Nested, mode)
	case model.TypeString:
		return ""
	case model.TypeNumber:
		return 0
	case model.TypeBool:
		return false
	default: // model.TypeAny
		return nil
	}
}

// synthesizeArrayElement synthesizes the single element of a one-element
// array. An array's Nested schema holds exactly one field (the element,
// per ast.Field.IsArray's contract in internal/openapi) rather than a
// named object field list, so the element's own value is what's repeated.
func synthesizeArrayElement(elementSchema *model.Schema, mode Mode) any {
	if elementSchema == nil || len(elementSchema.Fields) == 0 {
		return nil
	}
	return synthesizeField(elementSchema.Fields[0], mode)
}

func literalValue(l model.Literal) any {
	switch l.Kind {
	case model.LiteralString:
		return l.Str
	case model.LiteralBool:
		return l.Bool
	default:
		if l.IsFloat {
			return l.Num
		}
		return int64(l.Num)
	}
}
