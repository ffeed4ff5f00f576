package server

import (
	"encoding/json"
	"net/http"

	"reqcraft/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type infoResponse struct {
	Name          string   `json:"name"`
	Version       string   `json:"version"`
	BaseUrls      []string `json:"baseUrls"`
	EndpointCount int      `json:"endpointCount"`
	MockMode      bool     `json:"mockMode"`
	CorsMode      bool     `json:"corsMode"`
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	m := s.currentModel()
	resp := infoResponse{Name: s.name, Version: s.version}
	if m != nil {
		resp.BaseUrls = m.BaseUrls
		resp.EndpointCount = len(m.Endpoints)
		resp.MockMode = m.Mock
		resp.CorsMode = m.Cors
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEndpoints(w http.ResponseWriter, r *http.Request) {
	m := s.currentModel()
	endpoints := []model.Endpoint{}
	if m != nil {
		endpoints = m.Endpoints
	}
	writeJSON(w, http.StatusOK, endpoints)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	m := s.currentModel()
	cats := []*model.Category{}
	if m != nil {
		cats = m.Categories
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleVariables(w http.ResponseWriter, r *http.Request) {
	m := s.currentModel()
	vars := []model.VarDef{}
	if m != nil {
		vars = m.Variables
	}
	writeJSON(w, http.StatusOK, vars)
}

func (s *Server) handleHeaders(w http.ResponseWriter, r *http.Request) {
	m := s.currentModel()
	headers := []model.HeaderDef{}
	if m != nil {
		headers = m.Headers
	}
	writeJSON(w, http.StatusOK, headers)
}

// handleConfigSummary bundles mock/cors/baseUrls/variables/headers in one
// call for clients that render a single settings panel instead of five
// requests.
func (s *Server) handleConfigSummary(w http.ResponseWriter, r *http.Request) {
	m := s.currentModel()
	if m == nil {
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"baseUrls":  m.BaseUrls,
		"mock":      m.Mock,
		"cors":      m.Cors,
		"variables": m.Variables,
		"headers":   m.Headers,
	})
}
