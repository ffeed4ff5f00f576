package server

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"reqcraft/internal/model"
)

func numLit(n float64) *model.Literal { l := model.Literal{Kind: model.LiteralNumber, Num: n}; return &l }

func TestPathMatchesPlaceholder(t *testing.T) {
	t.Parallel()
	if !pathMatches("/users/{id}", "/users/42") {
		t.Fatal("expected placeholder segment to match")
	}
	if pathMatches("/users/{id}", "/users") {
		t.Fatal("missing segment must not match")
	}
	if !pathMatches("/files/{rest}", "/files/a/b/c") {
		t.Fatal("trailing placeholder must absorb remaining segments")
	}
	if pathMatches("/users/{id}/x", "/users/42/y") {
		t.Fatal("non-placeholder segment after a placeholder must still match literally")
	}
}

func TestHandleMockSynthesizesResponse(t *testing.T) {
	t.Parallel()
	m := &model.ApiModel{Endpoints: []model.Endpoint{
		{Kind: model.KindHTTP, Method: "GET", Path: "/u",
			Response: &model.Schema{Fields: []model.Field{{Name: "id", Type: model.TypeNumber, Mock: numLit(7)}}}},
	}}
	s := testServer(t, m)

	req := httptest.NewRequest("GET", "/mock/u", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("got %d", rec.Code)
	}
	var got map[string]any
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got["id"] != float64(7) {
		t.Fatalf("got %#v", got)
	}
}

func TestHandleMockNoMatchReturns404(t *testing.T) {
	t.Parallel()
	s := testServer(t, &model.ApiModel{})
	req := httptest.NewRequest("GET", "/mock/missing", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != 404 {
		t.Fatalf("got %d, want 404", rec.Code)
	}
}

func TestHandleMockVerbMismatchReturns404(t *testing.T) {
	t.Parallel()
	m := &model.ApiModel{Endpoints: []model.Endpoint{
		{Kind: model.KindHTTP, Method: "POST", Path: "/u", Response: &model.Schema{}},
	}}
	s := testServer(t, m)
	req := httptest.NewRequest("GET", "/mock/u", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != 404 {
		t.Fatalf("got %d, want 404", rec.Code)
	}
}

func TestHandleMockNoResponseSchemaReturns404(t *testing.T) {
	t.Parallel()
	m := &model.ApiModel{Endpoints: []model.Endpoint{
		{Kind: model.KindHTTP, Method: "GET", Path: "/u"},
	}}
	s := testServer(t, m)
	req := httptest.NewRequest("GET", "/mock/u", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != 404 {
		t.Fatalf("got %d, want 404", rec.Code)
	}
}
